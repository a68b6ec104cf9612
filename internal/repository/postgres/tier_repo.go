// internal/repository/postgres/tier_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus-service/internal/domain/tier"
	xerrors "campus-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const tierColumns = `id, slug, name, description, price, currency,
	       billing_cycle_months, billing_cycle_days, features, is_popular,
	       max_users, is_active, display_order, entitlement_rank,
	       stripe_price_id, created_at, updated_at`

type TierRepository struct {
	db *pgxpool.Pool
}

func NewTierRepository(db *pgxpool.Pool) *TierRepository {
	return &TierRepository{db: db}
}

func scanTier(row pgx.Row) (*tier.Tier, error) {
	var t tier.Tier
	err := row.Scan(
		&t.ID, &t.Slug, &t.Name, &t.Description, &t.Price, &t.Currency,
		&t.BillingCycleMonths, &t.BillingCycleDays, &t.Features, &t.IsPopular,
		&t.MaxUsers, &t.IsActive, &t.DisplayOrder, &t.EntitlementRank,
		&t.StripePriceID, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan tier: %w", err)
	}
	return &t, nil
}

// Create inserts a new tier. The unique constraint on slug is the last line
// of defense against concurrent duplicate inserts; violations surface as
// ErrConflict.
func (r *TierRepository) Create(ctx context.Context, t *tier.Tier) error {
	query := `
		INSERT INTO subscription_tiers (
			slug, name, description, price, currency,
			billing_cycle_months, billing_cycle_days, features, is_popular,
			max_users, is_active, display_order, entitlement_rank, stripe_price_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`

	if t.Features == nil {
		t.Features = pq.StringArray{}
	}

	err := r.db.QueryRow(
		ctx, query,
		t.Slug, t.Name, t.Description, t.Price, t.Currency,
		t.BillingCycleMonths, t.BillingCycleDays, t.Features, t.IsPopular,
		t.MaxUsers, t.IsActive, t.DisplayOrder, t.EntitlementRank, t.StripePriceID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	if isUniqueViolation(err) {
		return xerrors.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create tier: %w", err)
	}

	return nil
}

// FindByID retrieves a tier by ID
func (r *TierRepository) FindByID(ctx context.Context, id int64) (*tier.Tier, error) {
	query := fmt.Sprintf(`SELECT %s FROM subscription_tiers WHERE id = $1`, tierColumns)
	return scanTier(r.db.QueryRow(ctx, query, id))
}

// FindBySlug retrieves a tier by slug
func (r *TierRepository) FindBySlug(ctx context.Context, slug string) (*tier.Tier, error) {
	query := fmt.Sprintf(`SELECT %s FROM subscription_tiers WHERE slug = $1`, tierColumns)
	return scanTier(r.db.QueryRow(ctx, query, slug))
}

// ExistsBySlug checks if a tier with the given slug exists
func (r *TierRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM subscription_tiers WHERE slug = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, slug).Scan(&exists)
	return exists, err
}

// Update applies only the fields present in the partial update request.
func (r *TierRepository) Update(ctx context.Context, id int64, req *tier.UpdateTierRequest) error {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	set := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.Price != nil {
		set("price", *req.Price)
	}
	if req.Currency != nil {
		set("currency", strings.ToUpper(*req.Currency))
	}
	if req.BillingCycleMonths != nil {
		set("billing_cycle_months", *req.BillingCycleMonths)
	}
	if req.BillingCycleDays != nil {
		set("billing_cycle_days", *req.BillingCycleDays)
	}
	if req.Features != nil {
		set("features", pq.StringArray(req.Features))
	}
	if req.IsPopular != nil {
		set("is_popular", *req.IsPopular)
	}
	if req.MaxUsers != nil {
		set("max_users", *req.MaxUsers)
	}
	if req.DisplayOrder != nil {
		set("display_order", *req.DisplayOrder)
	}
	if req.EntitlementRank != nil {
		set("entitlement_rank", *req.EntitlementRank)
	}
	if req.StripePriceID != nil {
		set("stripe_price_id", *req.StripePriceID)
	}

	if len(sets) == 0 {
		return nil
	}

	set("updated_at", time.Now())
	query := fmt.Sprintf(`UPDATE subscription_tiers SET %s WHERE id = $%d`,
		strings.Join(sets, ", "), argPos)
	args = append(args, id)

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update tier: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Delete deletes a tier
func (r *TierRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM subscription_tiers WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete tier: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// ToggleActive flips is_active in a single statement to avoid
// read-then-write races.
func (r *TierRepository) ToggleActive(ctx context.Context, id int64) (*tier.Tier, error) {
	query := fmt.Sprintf(`
		UPDATE subscription_tiers
		SET is_active = NOT is_active, updated_at = $1
		WHERE id = $2
		RETURNING %s
	`, tierColumns)

	return scanTier(r.db.QueryRow(ctx, query, time.Now(), id))
}

// Reorder applies a batch of display_order updates inside a single
// transaction, all-or-nothing. Entitlement ranks are never touched here.
func (r *TierRepository) Reorder(ctx context.Context, items []tier.ReorderItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `UPDATE subscription_tiers SET display_order = $1, updated_at = $2 WHERE id = $3`
	now := time.Now()

	for _, item := range items {
		result, err := tx.Exec(ctx, query, item.DisplayOrder, now, item.ID)
		if err != nil {
			return fmt.Errorf("failed to reorder tier %d: %w", item.ID, err)
		}
		if result.RowsAffected() == 0 {
			return xerrors.ErrNotFound
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// List retrieves tiers with filters. The count query runs separately from
// the data query; tier counts are small enough that the extra round trip
// is irrelevant.
func (r *TierRepository) List(ctx context.Context, filters *tier.TierListFilters) ([]tier.Tier, int64, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	if filters.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *filters.IsActive)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM subscription_tiers %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tiers: %w", err)
	}

	// Pagination
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}

	offset := (filters.Page - 1) * filters.PageSize
	limit := filters.PageSize

	// Sorting; sort_by is validated at the binding layer against a fixed
	// column list, so interpolation is safe here.
	sortBy := "display_order"
	if filters.SortBy != "" {
		sortBy = filters.SortBy
	}
	sortOrder := "ASC"
	if filters.SortOrder != "" {
		sortOrder = strings.ToUpper(filters.SortOrder)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM subscription_tiers
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, tierColumns, whereClause, sortBy, sortOrder, argPos, argPos+1)

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tiers: %w", err)
	}
	defer rows.Close()

	tiers := []tier.Tier{}
	for rows.Next() {
		t, err := scanTier(rows)
		if err != nil {
			return nil, 0, err
		}
		tiers = append(tiers, *t)
	}

	return tiers, total, nil
}

// GetStats retrieves statistics about tiers and their subscribers
func (r *TierRepository) GetStats(ctx context.Context) (*tier.TierStats, error) {
	query := `
		SELECT
			COUNT(*) as total_tiers,
			COUNT(CASE WHEN is_active THEN 1 END) as active_tiers,
			COUNT(CASE WHEN NOT is_active THEN 1 END) as inactive_tiers,
			COALESCE(AVG(price), 0) as average_price,
			(SELECT COUNT(*) FROM user_subscriptions WHERE status = 'active') as total_subscribers
		FROM subscription_tiers
	`

	var stats tier.TierStats
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalTiers,
		&stats.ActiveTiers,
		&stats.InactiveTiers,
		&stats.AveragePrice,
		&stats.TotalSubscribers,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get tier stats: %w", err)
	}

	if err := scanMostPopularTier(ctx, r.db, &stats); err != nil {
		return nil, err
	}

	return &stats, nil
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// scanMostPopularTier fills the most-popular fields of stats. Zero active
// subscribers leaves them empty; any other scan failure is an error.
func scanMostPopularTier(ctx context.Context, q rowQuerier, stats *tier.TierStats) error {
	query := `
		SELECT t.id, t.name
		FROM subscription_tiers t
		JOIN user_subscriptions s ON s.tier_id = t.id AND s.status = 'active'
		GROUP BY t.id, t.name
		ORDER BY COUNT(s.id) DESC
		LIMIT 1
	`

	err := q.QueryRow(ctx, query).Scan(&stats.MostPopularTierID, &stats.MostPopularTierName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get most popular tier: %w", err)
	}

	return nil
}
