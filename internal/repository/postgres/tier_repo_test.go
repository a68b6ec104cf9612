// internal/repository/postgres/tier_repo_test.go
package postgres

import (
	"context"
	"errors"
	"testing"

	"campus-service/internal/domain/tier"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

type stubRow struct {
	err  error
	id   int64
	name string
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.id
	*dest[1].(*string) = r.name
	return nil
}

type stubQuerier struct {
	row stubRow
}

func (q stubQuerier) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return q.row
}

func TestScanMostPopularTier(t *testing.T) {
	t.Run("fills stats from the winning row", func(t *testing.T) {
		var stats tier.TierStats
		q := stubQuerier{row: stubRow{id: 3, name: "Pro"}}

		require.NoError(t, scanMostPopularTier(context.Background(), q, &stats))
		require.Equal(t, int64(3), stats.MostPopularTierID)
		require.Equal(t, "Pro", stats.MostPopularTierName)
	})

	t.Run("no active subscribers is not an error", func(t *testing.T) {
		var stats tier.TierStats
		q := stubQuerier{row: stubRow{err: pgx.ErrNoRows}}

		require.NoError(t, scanMostPopularTier(context.Background(), q, &stats))
		require.Zero(t, stats.MostPopularTierID)
		require.Empty(t, stats.MostPopularTierName)
	})

	t.Run("query failure propagates", func(t *testing.T) {
		var stats tier.TierStats
		boom := errors.New("connection reset")
		q := stubQuerier{row: stubRow{err: boom}}

		err := scanMostPopularTier(context.Background(), q, &stats)
		require.ErrorIs(t, err, boom)
	})
}
