// internal/service/subscription/subscription_service.go
package subscription

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"campus-service/internal/domain/catalog"
	"campus-service/internal/domain/subscription"
	"campus-service/internal/domain/tier"
	"campus-service/internal/events"
	xerrors "campus-service/internal/pkg/errors"
	"campus-service/internal/service/payment"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// SubscriptionStore is the persistence surface for subscription rows;
// implemented by postgres.SubscriptionRepository.
type SubscriptionStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, sub *subscription.UserSubscription) error
	FindByID(ctx context.Context, id int64) (*subscription.UserSubscription, error)
	FindDetailsByID(ctx context.Context, id int64) (*subscription.SubscriptionDetails, error)
	FindActiveByUserAndTier(ctx context.Context, userID, tierID int64) (*subscription.UserSubscription, error)
	FindActiveByUser(ctx context.Context, userID int64) (*subscription.SubscriptionDetails, error)
	ActivateWithTx(ctx context.Context, tx pgx.Tx, id int64, startedAt, expiresAt time.Time, details *subscription.ActivateRequest) error
	CancelWithTx(ctx context.Context, tx pgx.Tx, id int64, cancelledAt time.Time, metadata map[string]interface{}) error
	RenewWithTx(ctx context.Context, tx pgx.Tx, id int64, newExpiry time.Time) error
	SetProviderReference(ctx context.Context, id int64, provider, externalID string) error
	FindExpiredActiveByUser(ctx context.Context, userID int64) ([]subscription.UserSubscription, error)
	MarkExpiredWithTx(ctx context.Context, tx pgx.Tx, ids []int64) (int64, error)
	List(ctx context.Context, filters *subscription.ListFilters) ([]subscription.SubscriptionDetails, int64, error)
	GetStats(ctx context.Context) (*subscription.Stats, error)
}

// TierStore supplies tier pricing and billing cadence.
type TierStore interface {
	FindByID(ctx context.Context, id int64) (*tier.Tier, error)
}

// UserStore maintains the denormalized active_subscription_id pointer on
// the user row; every lifecycle transition has to keep it consistent.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*catalog.User, error)
	SetActiveSubscriptionWithTx(ctx context.Context, tx pgx.Tx, userID int64, subscriptionID sql.NullInt64) error
	ClearActiveSubscriptionRefWithTx(ctx context.Context, tx pgx.Tx, subscriptionID int64) error
}

// TxBeginner opens database transactions; implemented by postgres.DB.
type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// Publisher pushes lifecycle events to connected clients.
type Publisher interface {
	Publish(ev events.Event)
}

// Invalidator drops cached entitlement decisions after a transition.
type Invalidator interface {
	InvalidateUser(ctx context.Context, userID int64) error
}

type SubscriptionService struct {
	store    SubscriptionStore
	tiers    TierStore
	users    UserStore
	db       TxBeginner
	gateway  payment.Gateway
	provider string // default provider label for paid tiers
	events   Publisher
	cache    Invalidator
	logger   *zap.Logger
}

func NewSubscriptionService(
	store SubscriptionStore,
	tiers TierStore,
	users UserStore,
	db TxBeginner,
	gateway payment.Gateway,
	provider string,
	publisher Publisher,
	cache Invalidator,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		store:    store,
		tiers:    tiers,
		users:    users,
		db:       db,
		gateway:  gateway,
		provider: provider,
		events:   publisher,
		cache:    cache,
		logger:   logger,
	}
}

// newReference generates a unique subscription reference.
func newReference() string {
	return fmt.Sprintf("SUB-%s", ulid.Make().String())
}

// gatewayProviders are the providers that require payment initiation.
var gatewayProviders = map[string]bool{
	subscription.ProviderStripe:   true,
	subscription.ProviderPaystack: true,
}

// Subscribe creates a subscription for a user. Free tiers (and explicit
// status overrides) go straight to active; paid tiers start pending and
// trigger payment initiation. A failed initiation leaves the pending row
// in place and reports ErrPaymentInitiation so the caller can retry
// payment without resubscribing.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID int64, req *subscription.SubscribeRequest) (*subscription.SubscriptionDetails, error) {
	t, err := s.tiers.FindByID(ctx, req.TierID)
	if err != nil {
		return nil, fmt.Errorf("tier not found: %w", err)
	}

	if !t.IsActive {
		return nil, fmt.Errorf("%w: tier %q is not available", xerrors.ErrInvalidInput, t.Slug)
	}

	// Pre-check; the partial unique index backs this up under concurrency.
	if existing, _ := s.store.FindActiveByUserAndTier(ctx, userID, req.TierID); existing != nil {
		return nil, fmt.Errorf("%w: user already has an active subscription to this tier", xerrors.ErrConflict)
	}

	status := req.Status
	if status == "" {
		if t.IsFree() {
			status = subscription.StatusActive
		} else {
			status = subscription.StatusPending
		}
	}

	provider := req.PaymentProvider
	if provider == "" {
		if t.IsFree() {
			provider = subscription.ProviderNone
		} else {
			provider = s.provider
		}
	}

	sub := &subscription.UserSubscription{
		Reference:       newReference(),
		UserID:          userID,
		TierID:          t.ID,
		Status:          status,
		PaymentProvider: provider,
		Currency:        t.Currency,
		Metadata:        req.Metadata,
	}

	if req.ProviderSubscriptionID != "" {
		sub.ProviderSubscriptionID = sql.NullString{String: req.ProviderSubscriptionID, Valid: true}
	}

	if status == subscription.StatusActive {
		now := time.Now()
		sub.StartedAt = sql.NullTime{Time: now, Valid: true}
		sub.ExpiresAt = sql.NullTime{Time: addMonthsClamped(now, t.BillingCycleMonths), Valid: true}

		amount := t.Price
		if req.AmountPaid != nil {
			amount = *req.AmountPaid
		}
		sub.AmountPaid = sql.NullFloat64{Float64: amount, Valid: true}
	} else if req.AmountPaid != nil {
		sub.AmountPaid = sql.NullFloat64{Float64: *req.AmountPaid, Valid: true}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.store.CreateWithTx(ctx, tx, sub); err != nil {
		if xerrors.Is(err, xerrors.ErrConflict) {
			return nil, fmt.Errorf("%w: user already has an active subscription to this tier", xerrors.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	if sub.Status == subscription.StatusActive {
		if err := s.users.SetActiveSubscriptionWithTx(ctx, tx, userID, sql.NullInt64{Int64: sub.ID, Valid: true}); err != nil {
			return nil, fmt.Errorf("failed to update active subscription pointer: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidate(ctx, userID)
	s.events.Publish(events.Event{
		Type:           events.EventSubscriptionCreated,
		SubscriptionID: sub.ID,
		UserID:         userID,
		TierID:         t.ID,
		Status:         string(sub.Status),
		At:             time.Now(),
	})

	s.logger.Info("subscription created",
		zap.Int64("subscription_id", sub.ID),
		zap.String("reference", sub.Reference),
		zap.Int64("user_id", userID),
		zap.Int64("tier_id", t.ID),
		zap.String("status", string(sub.Status)),
	)

	// Paid tiers: initiate payment after the pending row is durable. The
	// subscription stays pending whatever happens here.
	if !t.IsFree() && sub.Status == subscription.StatusPending && gatewayProviders[provider] && s.gateway != nil {
		result, err := s.gateway.CreatePayment(ctx, &payment.Request{
			UserID:         userID,
			SubscriptionID: sub.ID,
			Reference:      sub.Reference,
			Amount:         t.Price,
			Currency:       t.Currency,
		})
		if err != nil {
			s.logger.Error("payment initiation failed",
				zap.Int64("subscription_id", sub.ID),
				zap.String("provider", provider),
				zap.Error(err),
			)
			details, _ := s.store.FindDetailsByID(ctx, sub.ID)
			return details, xerrors.ErrPaymentInitiation
		}

		if err := s.store.SetProviderReference(ctx, sub.ID, result.Provider, result.TransactionID); err != nil {
			s.logger.Warn("failed to store provider reference",
				zap.Int64("subscription_id", sub.ID),
				zap.Error(err),
			)
		}
	}

	return s.store.FindDetailsByID(ctx, sub.ID)
}

// Activate transitions a pending (or expired/cancelled) subscription to
// active. Idempotent: an already-active subscription is returned unchanged,
// with no double-extension of its expiry.
func (s *SubscriptionService) Activate(ctx context.Context, subscriptionID int64, req *subscription.ActivateRequest) (*subscription.SubscriptionDetails, error) {
	sub, err := s.store.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	if sub.Status == subscription.StatusActive {
		return s.store.FindDetailsByID(ctx, subscriptionID)
	}

	t, err := s.tiers.FindByID(ctx, sub.TierID)
	if err != nil {
		return nil, fmt.Errorf("tier not found: %w", err)
	}

	now := time.Now()
	expiresAt := addMonthsClamped(now, t.BillingCycleMonths)

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.store.ActivateWithTx(ctx, tx, subscriptionID, now, expiresAt, req); err != nil {
		return nil, err
	}

	if err := s.users.SetActiveSubscriptionWithTx(ctx, tx, sub.UserID, sql.NullInt64{Int64: subscriptionID, Valid: true}); err != nil {
		return nil, fmt.Errorf("failed to update active subscription pointer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidate(ctx, sub.UserID)
	s.events.Publish(events.Event{
		Type:           events.EventSubscriptionActivated,
		SubscriptionID: subscriptionID,
		UserID:         sub.UserID,
		TierID:         sub.TierID,
		Status:         string(subscription.StatusActive),
		At:             now,
	})

	s.logger.Info("subscription activated",
		zap.Int64("subscription_id", subscriptionID),
		zap.Int64("user_id", sub.UserID),
		zap.Time("expires_at", expiresAt),
	)

	return s.store.FindDetailsByID(ctx, subscriptionID)
}

// Cancel transitions a subscription to cancelled. The cancellation reason
// is merged into existing metadata, and any user row still pointing at
// this subscription has its pointer cleared inside the same transaction so
// no reader can observe a cancelled-but-still-pointed-at state.
func (s *SubscriptionService) Cancel(ctx context.Context, userID, subscriptionID int64, reason string, isAdmin bool) (*subscription.SubscriptionDetails, error) {
	sub, err := s.store.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && sub.UserID != userID {
		return nil, xerrors.ErrForbidden
	}

	if sub.Status == subscription.StatusCancelled {
		return nil, fmt.Errorf("%w: subscription is already cancelled", xerrors.ErrConflict)
	}

	now := time.Now()

	// Merge, never overwrite: pre-existing metadata keys survive.
	metadata := make(map[string]interface{}, len(sub.Metadata)+2)
	for k, v := range sub.Metadata {
		metadata[k] = v
	}
	metadata["cancellation_reason"] = reason
	metadata["cancelled_at"] = now.Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.store.CancelWithTx(ctx, tx, subscriptionID, now, metadata); err != nil {
		return nil, err
	}

	// Fix-up scans by value across all user rows, not just the owner's.
	if err := s.users.ClearActiveSubscriptionRefWithTx(ctx, tx, subscriptionID); err != nil {
		return nil, fmt.Errorf("failed to clear active subscription pointer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidate(ctx, sub.UserID)
	s.events.Publish(events.Event{
		Type:           events.EventSubscriptionCancelled,
		SubscriptionID: subscriptionID,
		UserID:         sub.UserID,
		TierID:         sub.TierID,
		Status:         string(subscription.StatusCancelled),
		At:             now,
	})

	s.logger.Info("subscription cancelled",
		zap.Int64("subscription_id", subscriptionID),
		zap.Int64("user_id", sub.UserID),
		zap.String("reason", reason),
	)

	return s.store.FindDetailsByID(ctx, subscriptionID)
}

// Renew extends a subscription's expiry by the tier's billing cycle, or by
// an explicit month override, and forces status back to active. started_at
// and the active-subscription pointer are left untouched.
func (s *SubscriptionService) Renew(ctx context.Context, subscriptionID int64, extendMonths *int) (*subscription.SubscriptionDetails, error) {
	sub, err := s.store.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	t, err := s.tiers.FindByID(ctx, sub.TierID)
	if err != nil {
		return nil, fmt.Errorf("tier not found: %w", err)
	}

	months := t.BillingCycleMonths
	if extendMonths != nil {
		months = *extendMonths
	}

	base := time.Now()
	if sub.ExpiresAt.Valid {
		base = sub.ExpiresAt.Time
	}
	newExpiry := addMonthsClamped(base, months)

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.store.RenewWithTx(ctx, tx, subscriptionID, newExpiry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidate(ctx, sub.UserID)
	s.events.Publish(events.Event{
		Type:           events.EventSubscriptionRenewed,
		SubscriptionID: subscriptionID,
		UserID:         sub.UserID,
		TierID:         sub.TierID,
		Status:         string(subscription.StatusActive),
		At:             time.Now(),
	})

	s.logger.Info("subscription renewed",
		zap.Int64("subscription_id", subscriptionID),
		zap.Int("extend_months", months),
		zap.Time("expires_at", newExpiry),
	)

	return s.store.FindDetailsByID(ctx, subscriptionID)
}

// CheckExpired sweeps a user's active-but-expired subscriptions to the
// expired status and clears the active pointer where it referenced one of
// them. Pull-based: callers invoke it on login or on a schedule.
func (s *SubscriptionService) CheckExpired(ctx context.Context, userID int64) (int64, error) {
	expired, err := s.store.FindExpiredActiveByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to find expired subscriptions: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(expired))
	for _, sub := range expired {
		ids = append(ids, sub.ID)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	count, err := s.store.MarkExpiredWithTx(ctx, tx, ids)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		if err := s.users.ClearActiveSubscriptionRefWithTx(ctx, tx, id); err != nil {
			return 0, fmt.Errorf("failed to clear active subscription pointer: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidate(ctx, userID)
	now := time.Now()
	for _, sub := range expired {
		s.events.Publish(events.Event{
			Type:           events.EventSubscriptionExpired,
			SubscriptionID: sub.ID,
			UserID:         sub.UserID,
			TierID:         sub.TierID,
			Status:         string(subscription.StatusExpired),
			At:             now,
		})
	}

	s.logger.Info("expired subscriptions swept",
		zap.Int64("user_id", userID),
		zap.Int64("count", count),
	)

	return count, nil
}

// GetSubscription retrieves a subscription, enforcing ownership unless the
// caller is an admin.
func (s *SubscriptionService) GetSubscription(ctx context.Context, userID, subscriptionID int64, isAdmin bool) (*subscription.SubscriptionDetails, error) {
	details, err := s.store.FindDetailsByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && details.UserID != userID {
		return nil, xerrors.ErrForbidden
	}

	return details, nil
}

// GetActiveSubscription retrieves a user's current active subscription.
func (s *SubscriptionService) GetActiveSubscription(ctx context.Context, userID int64) (*subscription.SubscriptionDetails, error) {
	return s.store.FindActiveByUser(ctx, userID)
}

// ListSubscriptions retrieves subscriptions with filters and pagination.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, filters *subscription.ListFilters) (*subscription.ListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	if filters.PageSize > 100 {
		filters.PageSize = 100
	}

	subs, total, err := s.store.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	totalPages := int(total) / filters.PageSize
	if int(total)%filters.PageSize > 0 {
		totalPages++
	}

	return &subscription.ListResponse{
		Subscriptions: subs,
		Total:         total,
		Page:          filters.Page,
		PageSize:      filters.PageSize,
		TotalPages:    totalPages,
	}, nil
}

// GetStats retrieves subscription statistics
func (s *SubscriptionService) GetStats(ctx context.Context) (*subscription.Stats, error) {
	stats, err := s.store.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription stats: %w", err)
	}
	return stats, nil
}

func (s *SubscriptionService) invalidate(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.logger.Warn("failed to invalidate entitlement cache",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}
