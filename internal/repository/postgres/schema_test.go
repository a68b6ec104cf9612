// internal/repository/postgres/schema_test.go
package postgres

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// migrationColumns parses the CREATE TABLE statements of the init migration
// into a table -> column set map. Constraint lines are skipped.
func migrationColumns(t *testing.T) map[string]map[string]bool {
	t.Helper()

	path := filepath.Join("..", "..", "..", "migrations", "0001_init.sql")
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	tables := map[string]map[string]bool{}
	var current string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "CREATE TABLE IF NOT EXISTS ") {
			rest := strings.TrimPrefix(line, "CREATE TABLE IF NOT EXISTS ")
			current = strings.Fields(rest)[0]
			tables[current] = map[string]bool{}
			continue
		}
		if current == "" {
			continue
		}
		if strings.HasPrefix(line, ");") {
			current = ""
			continue
		}
		if line == "" {
			continue
		}

		first := strings.Fields(line)[0]
		switch first {
		case "CHECK", "UNIQUE", "PRIMARY", "FOREIGN", "CONSTRAINT":
			continue
		}
		tables[current][first] = true
	}
	require.NoError(t, scanner.Err())
	require.NotEmpty(t, tables)

	return tables
}

func columnList(columns, prefix string) []string {
	parts := strings.Split(columns, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.TrimPrefix(p, prefix)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Every column the repository layer names in its SQL must exist in the
// migration, including the ones only touched by UPDATE statements.
func TestMigrationCoversRepositoryColumns(t *testing.T) {
	tables := migrationColumns(t)

	required := map[string][]string{
		// tierColumns plus the Update/ToggleActive assignments.
		"subscription_tiers": append(columnList(tierColumns, ""), "updated_at"),

		// subscriptionColumns is aliased; strip the prefix.
		"user_subscriptions": columnList(subscriptionColumns, "s."),

		// UserRepository reads the read model and writes the pointer
		// alongside updated_at in subscribe/activate/cancel/sweep.
		"users": {"id", "full_name", "email", "institution_id",
			"active_subscription_id", "created_at", "updated_at"},

		// CatalogRepository reads.
		"institutions":        {"id", "subscription_tier_id"},
		"courses":             {"id", "price", "subscription_tier_id"},
		"pathways":            {"id", "price", "subscription_tier_id", "institution_id"},
		"course_enrollments":  {"user_id", "course_id"},
		"pathway_enrollments": {"user_id", "pathway_id"},
	}

	for table, columns := range required {
		migrated, ok := tables[table]
		require.True(t, ok, "table %s missing from migration", table)
		for _, column := range columns {
			require.True(t, migrated[column],
				"column %s.%s referenced by repository SQL but missing from migration", table, column)
		}
	}
}
