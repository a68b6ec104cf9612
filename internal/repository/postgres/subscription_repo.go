// internal/repository/postgres/subscription_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus-service/internal/domain/subscription"
	xerrors "campus-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const subscriptionColumns = `s.id, s.subscription_reference, s.user_id, s.tier_id,
	       s.status, s.started_at, s.expires_at, s.cancelled_at,
	       s.payment_provider, s.provider_subscription_id, s.amount_paid, s.currency,
	       s.metadata, s.created_at, s.updated_at`

const detailColumns = subscriptionColumns + `,
	       t.name, t.slug, t.price, t.entitlement_rank,
	       u.full_name, u.email`

const detailJoins = `
	FROM user_subscriptions s
	JOIN subscription_tiers t ON t.id = s.tier_id
	JOIN users u ON u.id = s.user_id`

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func scanSubscription(row pgx.Row) (*subscription.UserSubscription, error) {
	var sub subscription.UserSubscription
	var metadataJSON []byte

	err := row.Scan(
		&sub.ID, &sub.Reference, &sub.UserID, &sub.TierID,
		&sub.Status, &sub.StartedAt, &sub.ExpiresAt, &sub.CancelledAt,
		&sub.PaymentProvider, &sub.ProviderSubscriptionID, &sub.AmountPaid, &sub.Currency,
		&metadataJSON, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscription: %w", err)
	}

	if len(metadataJSON) > 0 {
		json.Unmarshal(metadataJSON, &sub.Metadata)
	}

	return &sub, nil
}

func scanSubscriptionDetails(row pgx.Row) (*subscription.SubscriptionDetails, error) {
	var d subscription.SubscriptionDetails
	var metadataJSON []byte

	err := row.Scan(
		&d.ID, &d.Reference, &d.UserID, &d.TierID,
		&d.Status, &d.StartedAt, &d.ExpiresAt, &d.CancelledAt,
		&d.PaymentProvider, &d.ProviderSubscriptionID, &d.AmountPaid, &d.Currency,
		&metadataJSON, &d.CreatedAt, &d.UpdatedAt,
		&d.TierName, &d.TierSlug, &d.TierPrice, &d.EntitlementRank,
		&d.UserName, &d.UserEmail,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscription details: %w", err)
	}

	if len(metadataJSON) > 0 {
		json.Unmarshal(metadataJSON, &d.Metadata)
	}

	return &d, nil
}

// CreateWithTx inserts a subscription within a transaction. The partial
// unique index on active (user_id, tier_id) rows surfaces concurrent
// duplicate activations as ErrConflict.
func (r *SubscriptionRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, sub *subscription.UserSubscription) error {
	query := `
		INSERT INTO user_subscriptions (
			subscription_reference, user_id, tier_id, status,
			started_at, expires_at,
			payment_provider, provider_subscription_id, amount_paid, currency,
			metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	var metadataJSON []byte
	var err error

	if sub.Metadata != nil {
		metadataJSON, err = json.Marshal(sub.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	err = tx.QueryRow(
		ctx, query,
		sub.Reference, sub.UserID, sub.TierID, sub.Status,
		sub.StartedAt, sub.ExpiresAt,
		sub.PaymentProvider, sub.ProviderSubscriptionID, sub.AmountPaid, sub.Currency,
		metadataJSON,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)

	if isUniqueViolation(err) {
		return xerrors.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// FindByID retrieves a subscription by ID
func (r *SubscriptionRepository) FindByID(ctx context.Context, id int64) (*subscription.UserSubscription, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_subscriptions s WHERE s.id = $1`, subscriptionColumns)
	return scanSubscription(r.db.QueryRow(ctx, query, id))
}

// FindDetailsByID retrieves a subscription joined with tier and user fields
func (r *SubscriptionRepository) FindDetailsByID(ctx context.Context, id int64) (*subscription.SubscriptionDetails, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE s.id = $1`, detailColumns, detailJoins)
	return scanSubscriptionDetails(r.db.QueryRow(ctx, query, id))
}

// FindActiveByUserAndTier retrieves the active subscription for a
// (user, tier) pair, if any.
func (r *SubscriptionRepository) FindActiveByUserAndTier(ctx context.Context, userID, tierID int64) (*subscription.UserSubscription, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM user_subscriptions s
		WHERE s.user_id = $1 AND s.tier_id = $2 AND s.status = 'active'
		LIMIT 1
	`, subscriptionColumns)
	return scanSubscription(r.db.QueryRow(ctx, query, userID, tierID))
}

// FindActiveByUser retrieves a user's active subscription. When more than
// one row is somehow active, the most distant expiry wins.
func (r *SubscriptionRepository) FindActiveByUser(ctx context.Context, userID int64) (*subscription.SubscriptionDetails, error) {
	query := fmt.Sprintf(`
		SELECT %s %s
		WHERE s.user_id = $1 AND s.status = 'active'
		ORDER BY s.expires_at DESC NULLS FIRST
		LIMIT 1
	`, detailColumns, detailJoins)
	return scanSubscriptionDetails(r.db.QueryRow(ctx, query, userID))
}

// ActivateWithTx transitions a subscription to active within a transaction,
// setting lifecycle dates and any payment detail overrides.
func (r *SubscriptionRepository) ActivateWithTx(ctx context.Context, tx pgx.Tx, id int64, startedAt, expiresAt time.Time, details *subscription.ActivateRequest) error {
	sets := []string{"status = 'active'", "started_at = $1", "expires_at = $2", "updated_at = $3"}
	args := []interface{}{startedAt, expiresAt, time.Now()}
	argPos := 4

	if details != nil {
		if details.AmountPaid != nil {
			sets = append(sets, fmt.Sprintf("amount_paid = $%d", argPos))
			args = append(args, *details.AmountPaid)
			argPos++
		}
		if details.PaymentProvider != "" {
			sets = append(sets, fmt.Sprintf("payment_provider = $%d", argPos))
			args = append(args, details.PaymentProvider)
			argPos++
		}
		if details.ProviderSubscriptionID != "" {
			sets = append(sets, fmt.Sprintf("provider_subscription_id = $%d", argPos))
			args = append(args, details.ProviderSubscriptionID)
			argPos++
		}
	}

	query := fmt.Sprintf(`UPDATE user_subscriptions SET %s WHERE id = $%d`,
		strings.Join(sets, ", "), argPos)
	args = append(args, id)

	result, err := tx.Exec(ctx, query, args...)
	if isUniqueViolation(err) {
		return xerrors.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// CancelWithTx transitions a subscription to cancelled. The caller passes
// the already-merged metadata map; this write replaces the column with it.
func (r *SubscriptionRepository) CancelWithTx(ctx context.Context, tx pgx.Tx, id int64, cancelledAt time.Time, metadata map[string]interface{}) error {
	query := `
		UPDATE user_subscriptions
		SET status = 'cancelled', cancelled_at = $1, metadata = $2, updated_at = $3
		WHERE id = $4
	`

	var metadataJSON []byte
	var err error

	if metadata != nil {
		metadataJSON, err = json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	result, err := tx.Exec(ctx, query, cancelledAt, metadataJSON, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// RenewWithTx extends the expiry and forces status back to active.
// started_at is deliberately left untouched.
func (r *SubscriptionRepository) RenewWithTx(ctx context.Context, tx pgx.Tx, id int64, newExpiry time.Time) error {
	query := `
		UPDATE user_subscriptions
		SET status = 'active', expires_at = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := tx.Exec(ctx, query, newExpiry, time.Now(), id)
	if isUniqueViolation(err) {
		return xerrors.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to renew subscription: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// SetProviderReference stores the payment provider correlation id returned
// by payment initiation.
func (r *SubscriptionRepository) SetProviderReference(ctx context.Context, id int64, provider, externalID string) error {
	query := `
		UPDATE user_subscriptions
		SET payment_provider = $1, provider_subscription_id = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.db.Exec(ctx, query, provider, externalID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set provider reference: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// FindExpiredActiveByUser retrieves a user's subscriptions that are still
// marked active but whose expiry has passed.
func (r *SubscriptionRepository) FindExpiredActiveByUser(ctx context.Context, userID int64) ([]subscription.UserSubscription, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM user_subscriptions s
		WHERE s.user_id = $1 AND s.status = 'active' AND s.expires_at IS NOT NULL AND s.expires_at < NOW()
	`, subscriptionColumns)

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find expired subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []subscription.UserSubscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}

	return subs, nil
}

// MarkExpiredWithTx bulk-transitions active subscriptions to expired.
func (r *SubscriptionRepository) MarkExpiredWithTx(ctx context.Context, tx pgx.Tx, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `
		UPDATE user_subscriptions
		SET status = 'expired', updated_at = $1
		WHERE id = ANY($2) AND status = 'active'
	`

	result, err := tx.Exec(ctx, query, time.Now(), ids)
	if err != nil {
		return 0, fmt.Errorf("failed to mark subscriptions expired: %w", err)
	}

	return result.RowsAffected(), nil
}

// List retrieves subscriptions joined with tier and user display fields.
// The total is computed by a separate count over the base table with the
// same filters, so the joins cannot multiply the count.
func (r *SubscriptionRepository) List(ctx context.Context, filters *subscription.ListFilters) ([]subscription.SubscriptionDetails, int64, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	if filters.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("s.user_id = $%d", argPos))
		args = append(args, *filters.UserID)
		argPos++
	}

	if filters.TierID != nil {
		conditions = append(conditions, fmt.Sprintf("s.tier_id = $%d", argPos))
		args = append(args, *filters.TierID)
		argPos++
	}

	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", argPos))
		args = append(args, *filters.Status)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Count total against the base table only
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM user_subscriptions s %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
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

	sortBy := "s.created_at"
	if filters.SortBy != "" {
		sortBy = "s." + filters.SortBy
	}
	sortOrder := "DESC"
	if filters.SortOrder != "" {
		sortOrder = strings.ToUpper(filters.SortOrder)
	}

	query := fmt.Sprintf(`
		SELECT %s %s
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, detailColumns, detailJoins, whereClause, sortBy, sortOrder, argPos, argPos+1)

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []subscription.SubscriptionDetails{}
	for rows.Next() {
		d, err := scanSubscriptionDetails(rows)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, *d)
	}

	return subs, total, nil
}

// CountActiveByTier counts active subscriptions referencing a tier.
func (r *SubscriptionRepository) CountActiveByTier(ctx context.Context, tierID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM user_subscriptions WHERE tier_id = $1 AND status = 'active'`
	var count int64
	err := r.db.QueryRow(ctx, query, tierID).Scan(&count)
	return count, err
}

// GetStats aggregates subscription counts by status and by tier.
func (r *SubscriptionRepository) GetStats(ctx context.Context) (*subscription.Stats, error) {
	query := `
		SELECT
			COUNT(*) as total,
			COUNT(CASE WHEN status = 'pending' THEN 1 END) as pending,
			COUNT(CASE WHEN status = 'active' THEN 1 END) as active,
			COUNT(CASE WHEN status = 'cancelled' THEN 1 END) as cancelled,
			COUNT(CASE WHEN status = 'expired' THEN 1 END) as expired,
			COALESCE(SUM(amount_paid), 0) as revenue
		FROM user_subscriptions
	`

	var stats subscription.Stats
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalSubscriptions,
		&stats.PendingSubscriptions,
		&stats.ActiveSubscriptions,
		&stats.CancelledSubscriptions,
		&stats.ExpiredSubscriptions,
		&stats.TotalRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription stats: %w", err)
	}

	tierQuery := `
		SELECT t.id, t.name, COUNT(s.id)
		FROM subscription_tiers t
		LEFT JOIN user_subscriptions s ON s.tier_id = t.id AND s.status = 'active'
		GROUP BY t.id, t.name
		ORDER BY COUNT(s.id) DESC
	`

	rows, err := r.db.Query(ctx, tierQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to get tier breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b subscription.TierBreakdown
		if err := rows.Scan(&b.TierID, &b.TierName, &b.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tier breakdown: %w", err)
		}
		stats.ByTier = append(stats.ByTier, b)
	}

	return &stats, nil
}
