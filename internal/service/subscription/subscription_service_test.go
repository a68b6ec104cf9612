// internal/service/subscription/subscription_service_test.go
package subscription

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"campus-service/internal/domain/catalog"
	"campus-service/internal/domain/subscription"
	"campus-service/internal/domain/tier"
	"campus-service/internal/events"
	xerrors "campus-service/internal/pkg/errors"
	"campus-service/internal/service/payment"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeTx satisfies pgx.Tx through embedding; only Commit and Rollback are
// ever called by the service.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeTxBeginner struct {
	last *fakeTx
}

func (f *fakeTxBeginner) BeginTx(ctx context.Context) (pgx.Tx, error) {
	f.last = &fakeTx{}
	return f.last, nil
}

type fakeSubStore struct {
	subs   map[int64]*subscription.UserSubscription
	nextID int64

	providerRefs map[int64]string

	// blindPrecheck makes FindActiveByUserAndTier report nothing, modelling
	// the window where a concurrent insert lands after the pre-check read.
	blindPrecheck bool
}

func newFakeSubStore() *fakeSubStore {
	return &fakeSubStore{
		subs:         make(map[int64]*subscription.UserSubscription),
		nextID:       1,
		providerRefs: make(map[int64]string),
	}
}

func (f *fakeSubStore) CreateWithTx(ctx context.Context, tx pgx.Tx, sub *subscription.UserSubscription) error {
	if sub.Status == subscription.StatusActive {
		for _, existing := range f.subs {
			if existing.UserID == sub.UserID && existing.TierID == sub.TierID &&
				existing.Status == subscription.StatusActive {
				return xerrors.ErrConflict
			}
		}
	}
	sub.ID = f.nextID
	f.nextID++
	sub.CreatedAt = time.Now()
	f.subs[sub.ID] = sub
	return nil
}

func (f *fakeSubStore) FindByID(ctx context.Context, id int64) (*subscription.UserSubscription, error) {
	sub, ok := f.subs[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (f *fakeSubStore) FindDetailsByID(ctx context.Context, id int64) (*subscription.SubscriptionDetails, error) {
	sub, ok := f.subs[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return &subscription.SubscriptionDetails{UserSubscription: *sub}, nil
}

func (f *fakeSubStore) FindActiveByUserAndTier(ctx context.Context, userID, tierID int64) (*subscription.UserSubscription, error) {
	if f.blindPrecheck {
		return nil, xerrors.ErrNotFound
	}
	for _, sub := range f.subs {
		if sub.UserID == userID && sub.TierID == tierID && sub.Status == subscription.StatusActive {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeSubStore) FindActiveByUser(ctx context.Context, userID int64) (*subscription.SubscriptionDetails, error) {
	for _, sub := range f.subs {
		if sub.UserID == userID && sub.Status == subscription.StatusActive {
			return &subscription.SubscriptionDetails{UserSubscription: *sub}, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeSubStore) ActivateWithTx(ctx context.Context, tx pgx.Tx, id int64, startedAt, expiresAt time.Time, details *subscription.ActivateRequest) error {
	sub, ok := f.subs[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	sub.Status = subscription.StatusActive
	sub.StartedAt = sql.NullTime{Time: startedAt, Valid: true}
	sub.ExpiresAt = sql.NullTime{Time: expiresAt, Valid: true}
	if details != nil {
		if details.AmountPaid != nil {
			sub.AmountPaid = sql.NullFloat64{Float64: *details.AmountPaid, Valid: true}
		}
		if details.PaymentProvider != "" {
			sub.PaymentProvider = details.PaymentProvider
		}
		if details.ProviderSubscriptionID != "" {
			sub.ProviderSubscriptionID = sql.NullString{String: details.ProviderSubscriptionID, Valid: true}
		}
	}
	return nil
}

func (f *fakeSubStore) CancelWithTx(ctx context.Context, tx pgx.Tx, id int64, cancelledAt time.Time, metadata map[string]interface{}) error {
	sub, ok := f.subs[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	sub.Status = subscription.StatusCancelled
	sub.CancelledAt = sql.NullTime{Time: cancelledAt, Valid: true}
	sub.Metadata = metadata
	return nil
}

func (f *fakeSubStore) RenewWithTx(ctx context.Context, tx pgx.Tx, id int64, newExpiry time.Time) error {
	sub, ok := f.subs[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	sub.Status = subscription.StatusActive
	sub.ExpiresAt = sql.NullTime{Time: newExpiry, Valid: true}
	return nil
}

func (f *fakeSubStore) SetProviderReference(ctx context.Context, id int64, provider, externalID string) error {
	f.providerRefs[id] = externalID
	sub, ok := f.subs[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	sub.PaymentProvider = provider
	sub.ProviderSubscriptionID = sql.NullString{String: externalID, Valid: true}
	return nil
}

func (f *fakeSubStore) FindExpiredActiveByUser(ctx context.Context, userID int64) ([]subscription.UserSubscription, error) {
	var out []subscription.UserSubscription
	now := time.Now()
	for _, sub := range f.subs {
		if sub.UserID == userID && sub.Status == subscription.StatusActive && sub.IsExpired(now) {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeSubStore) MarkExpiredWithTx(ctx context.Context, tx pgx.Tx, ids []int64) (int64, error) {
	var count int64
	for _, id := range ids {
		sub, ok := f.subs[id]
		if ok && sub.Status == subscription.StatusActive {
			sub.Status = subscription.StatusExpired
			count++
		}
	}
	return count, nil
}

func (f *fakeSubStore) List(ctx context.Context, filters *subscription.ListFilters) ([]subscription.SubscriptionDetails, int64, error) {
	var out []subscription.SubscriptionDetails
	for _, sub := range f.subs {
		if filters.UserID != nil && sub.UserID != *filters.UserID {
			continue
		}
		if filters.Status != nil && sub.Status != *filters.Status {
			continue
		}
		out = append(out, subscription.SubscriptionDetails{UserSubscription: *sub})
	}
	return out, int64(len(out)), nil
}

func (f *fakeSubStore) GetStats(ctx context.Context) (*subscription.Stats, error) {
	stats := &subscription.Stats{}
	for _, sub := range f.subs {
		stats.TotalSubscriptions++
		switch sub.Status {
		case subscription.StatusActive:
			stats.ActiveSubscriptions++
		case subscription.StatusPending:
			stats.PendingSubscriptions++
		case subscription.StatusCancelled:
			stats.CancelledSubscriptions++
		case subscription.StatusExpired:
			stats.ExpiredSubscriptions++
		}
	}
	return stats, nil
}

type fakeTierStore struct {
	tiers map[int64]*tier.Tier
}

func (f *fakeTierStore) FindByID(ctx context.Context, id int64) (*tier.Tier, error) {
	t, ok := f.tiers[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return t, nil
}

type fakeUserStore struct {
	users map[int64]*catalog.User
}

func (f *fakeUserStore) FindByID(ctx context.Context, id int64) (*catalog.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) SetActiveSubscriptionWithTx(ctx context.Context, tx pgx.Tx, userID int64, subscriptionID sql.NullInt64) error {
	u, ok := f.users[userID]
	if !ok {
		return xerrors.ErrNotFound
	}
	u.ActiveSubscriptionID = subscriptionID
	return nil
}

func (f *fakeUserStore) ClearActiveSubscriptionRefWithTx(ctx context.Context, tx pgx.Tx, subscriptionID int64) error {
	for _, u := range f.users {
		if u.ActiveSubscriptionID.Valid && u.ActiveSubscriptionID.Int64 == subscriptionID {
			u.ActiveSubscriptionID = sql.NullInt64{}
		}
	}
	return nil
}

type fakePublisher struct {
	published []events.Event
}

func (f *fakePublisher) Publish(ev events.Event) {
	f.published = append(f.published, ev)
}

func (f *fakePublisher) lastType() events.EventType {
	if len(f.published) == 0 {
		return ""
	}
	return f.published[len(f.published)-1].Type
}

type fakeInvalidator struct {
	invalidated []int64
}

func (f *fakeInvalidator) InvalidateUser(ctx context.Context, userID int64) error {
	f.invalidated = append(f.invalidated, userID)
	return nil
}

type fakeGateway struct {
	calls []*payment.Request
	fail  bool
}

func (f *fakeGateway) CreatePayment(ctx context.Context, req *payment.Request) (*payment.Result, error) {
	f.calls = append(f.calls, req)
	if f.fail {
		return nil, errors.New("gateway unavailable")
	}
	return &payment.Result{TransactionID: "pi_test_123", Provider: subscription.ProviderStripe}, nil
}

type harness struct {
	svc       *SubscriptionService
	subs      *fakeSubStore
	tiers     *fakeTierStore
	users     *fakeUserStore
	db        *fakeTxBeginner
	gateway   *fakeGateway
	publisher *fakePublisher
	cache     *fakeInvalidator
}

func newHarness() *harness {
	h := &harness{
		subs: newFakeSubStore(),
		tiers: &fakeTierStore{tiers: map[int64]*tier.Tier{
			1: {ID: 1, Slug: "free", Name: "Free", Price: 0, Currency: "USD", BillingCycleMonths: 1, IsActive: true, EntitlementRank: 1},
			2: {ID: 2, Slug: "pro", Name: "Pro", Price: 29.99, Currency: "USD", BillingCycleMonths: 1, IsActive: true, EntitlementRank: 5},
			3: {ID: 3, Slug: "legacy", Name: "Legacy", Price: 9.99, Currency: "USD", BillingCycleMonths: 1, IsActive: false, EntitlementRank: 2},
		}},
		users: &fakeUserStore{users: map[int64]*catalog.User{
			10: {ID: 10, FullName: "Jordan Otieno", Email: "jordan@example.com"},
			11: {ID: 11, FullName: "Sam Wanjiru", Email: "sam@example.com"},
		}},
		db:        &fakeTxBeginner{},
		gateway:   &fakeGateway{},
		publisher: &fakePublisher{},
		cache:     &fakeInvalidator{},
	}
	h.svc = NewSubscriptionService(
		h.subs, h.tiers, h.users, h.db,
		h.gateway, subscription.ProviderStripe,
		h.publisher, h.cache, zap.NewNop(),
	)
	return h
}

func TestSubscribeFreeTierIsImmediatelyActive(t *testing.T) {
	h := newHarness()

	details, err := h.svc.Subscribe(context.Background(), 10, &subscription.SubscribeRequest{TierID: 1})
	require.NoError(t, err)

	assert.Equal(t, subscription.StatusActive, details.Status)
	assert.True(t, details.StartedAt.Valid)
	assert.True(t, details.ExpiresAt.Valid)
	assert.Equal(t, addMonthsClamped(details.StartedAt.Time, 1), details.ExpiresAt.Time)
	require.True(t, details.AmountPaid.Valid)
	assert.Equal(t, 0.0, details.AmountPaid.Float64)
	assert.Equal(t, subscription.ProviderNone, details.PaymentProvider)
	assert.Contains(t, details.Reference, "SUB-")

	// Active pointer set in the same transaction.
	assert.Equal(t, details.ID, h.users.users[10].ActiveSubscriptionID.Int64)
	assert.True(t, h.db.last.committed)

	// No payment initiation for free tiers.
	assert.Empty(t, h.gateway.calls)

	assert.Equal(t, events.EventSubscriptionCreated, h.publisher.lastType())
	assert.Contains(t, h.cache.invalidated, int64(10))
}

func TestSubscribePaidTierStaysPending(t *testing.T) {
	h := newHarness()

	details, err := h.svc.Subscribe(context.Background(), 10, &subscription.SubscribeRequest{TierID: 2})
	require.NoError(t, err)

	assert.Equal(t, subscription.StatusPending, details.Status)
	assert.False(t, details.StartedAt.Valid)
	assert.False(t, details.ExpiresAt.Valid)

	// Pending subscriptions never become the active pointer.
	assert.False(t, h.users.users[10].ActiveSubscriptionID.Valid)

	// Payment initiated with the subscription as correlation.
	require.Len(t, h.gateway.calls, 1)
	assert.Equal(t, details.ID, h.gateway.calls[0].SubscriptionID)
	assert.Equal(t, 29.99, h.gateway.calls[0].Amount)

	// Provider reference recorded after initiation.
	assert.Equal(t, "pi_test_123", h.subs.providerRefs[details.ID])
}

func TestSubscribePaymentFailureKeepsPendingRow(t *testing.T) {
	h := newHarness()
	h.gateway.fail = true

	details, err := h.svc.Subscribe(context.Background(), 10, &subscription.SubscribeRequest{TierID: 2})
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, xerrors.ErrPaymentInitiation))

	// The pending row survives so the client can retry payment.
	require.NotNil(t, details)
	assert.Equal(t, subscription.StatusPending, details.Status)
	stored, storeErr := h.subs.FindByID(context.Background(), details.ID)
	require.NoError(t, storeErr)
	assert.Equal(t, subscription.StatusPending, stored.Status)
}

func TestSubscribeManualProviderSkipsGateway(t *testing.T) {
	h := newHarness()

	details, err := h.svc.Subscribe(context.Background(), 10, &subscription.SubscribeRequest{
		TierID:          2,
		PaymentProvider: subscription.ProviderManual,
	})
	require.NoError(t, err)

	assert.Equal(t, subscription.StatusPending, details.Status)
	assert.Empty(t, h.gateway.calls)
}

func TestSubscribeDuplicateActiveConflicts(t *testing.T) {
	h := newHarness()

	_, err := h.svc.Subscribe(context.Background(), 10, &subscription.SubscribeRequest{TierID: 1})
	require.NoError(t, err)

	_, err = h.svc.Subscribe(context.Background(), 10, &subscription.SubscribeRequest{TierID: 1})
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, xerrors.ErrConflict))
}

// Two concurrent subscribes can both pass the read pre-check; the store's
// partial unique index is what actually rejects the second insert. The
// fake mimics the constraint, and the service must surface Conflict.
func TestSubscribeRaceIsCaughtByUniqueConstraint(t *testing.T) {
	h := newHarness()

	// The concurrent winner's active row is already in the store, but the
	// pre-check read can't see it.
	err := h.subs.CreateWithTx(context.Background(), &fakeTx{}, &subscription.UserSubscription{
		Reference: "SUB-EXISTING",
		UserID:    11,
		TierID:    1,
		Status:    subscription.StatusActive,
	})
	require.NoError(t, err)
	h.subs.blindPrecheck = true

	_, err = h.svc.Subscribe(context.Background(), 11, &subscription.SubscribeRequest{TierID: 1})
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, xerrors.ErrConflict))
}

func TestSubscribeInactiveTierRejected(t *testing.T) {
	h := newHarness()

	_, err := h.svc.Subscribe(context.Background(), 10, &subscription.SubscribeRequest{TierID: 3})
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, xerrors.ErrInvalidInput))
}

func TestSubscribeUnknownTier(t *testing.T) {
	h := newHarness()

	_, err := h.svc.Subscribe(context.Background(), 10, &subscription.SubscribeRequest{TierID: 404})
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, xerrors.ErrNotFound))
}

func TestActivateSetsDatesAndPointer(t *testing.T) {
	h := newHarness()

	created, err := h.svc.Subscribe(context.Background(), 10, &subscription.SubscribeRequest{TierID: 2})
	require.NoError(t, err)
	require.Equal(t, subscription.StatusPending, created.Status)

	amount := 29.99
	activated, err := h.svc.Activate(context.Background(), created.ID, &subscription.ActivateRequest{
		AmountPaid: &amount,
	})
	require.NoError(t, err)

	assert.Equal(t, subscription.StatusActive, activated.Status)
	assert.True(t, activated.StartedAt.Valid)
	require.True(t, activated.ExpiresAt.Valid)
	assert.Equal(t, addMonthsClamped(activated.StartedAt.Time, 1), activated.ExpiresAt.Time)
	assert.Equal(t, created.ID, h.users.users[10].ActiveSubscriptionID.Int64)
	assert.Equal(t, events.EventSubscriptionActivated, h.publisher.lastType())
}

func TestActivateIsIdempotent(t *testing.T) {
	h := newHarness()

	created, err := h.svc.Subscribe(context.Background(), 10, &subscription.SubscribeRequest{TierID: 2})
	require.NoError(t, err)

	first, err := h.svc.Activate(context.Background(), created.ID, &subscription.ActivateRequest{})
	require.NoError(t, err)

	second, err := h.svc.Activate(context.Background(), created.ID, &subscription.ActivateRequest{})
	require.NoError(t, err)

	// No double-extension of the expiry.
	assert.Equal(t, first.ExpiresAt.Time, second.ExpiresAt.Time)
	assert.Equal(t, first.StartedAt.Time, second.StartedAt.Time)
}

func TestCancelMergesMetadataAndClearsPointer(t *testing.T) {
	h := newHarness()

	created, err := h.svc.Subscribe(context.Background(), 10, &subscription.SubscribeRequest{
		TierID:   1,
		Metadata: map[string]interface{}{"campaign": "back-to-school"},
	})
	require.NoError(t, err)
	require.True(t, h.users.users[10].ActiveSubscriptionID.Valid)

	cancelled, err := h.svc.Cancel(context.Background(), 10, created.ID, "no longer needed", false)
	require.NoError(t, err)

	assert.Equal(t, subscription.StatusCancelled, cancelled.Status)
	assert.True(t, cancelled.CancelledAt.Valid)

	// Merge, not replace.
	assert.Equal(t, "back-to-school", cancelled.Metadata["campaign"])
	assert.Equal(t, "no longer needed", cancelled.Metadata["cancellation_reason"])
	assert.NotEmpty(t, cancelled.Metadata["cancelled_at"])

	assert.False(t, h.users.users[10].ActiveSubscriptionID.Valid)
	assert.Equal(t, events.EventSubscriptionCancelled, h.publisher.lastType())
}

func TestCancelClearsStalePointerOnOtherUsers(t *testing.T) {
	h := newHarness()

	created, err := h.svc.Subscribe(context.Background(), 10, &subscription.SubscribeRequest{TierID: 1})
	require.NoError(t, err)

	// Inconsistent data: another user's row points at this subscription.
	h.users.users[11].ActiveSubscriptionID = sql.NullInt64{Int64: created.ID, Valid: true}

	_, err = h.svc.Cancel(context.Background(), 10, created.ID, "cleanup", false)
	require.NoError(t, err)

	assert.False(t, h.users.users[10].ActiveSubscriptionID.Valid)
	assert.False(t, h.users.users[11].ActiveSubscriptionID.Valid)
}

func TestCancelRequiresOwnershipUnlessAdmin(t *testing.T) {
	h := newHarness()

	created, err := h.svc.Subscribe(context.Background(), 10, &subscription.SubscribeRequest{TierID: 1})
	require.NoError(t, err)

	_, err = h.svc.Cancel(context.Background(), 11, created.ID, "not mine", false)
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, xerrors.ErrForbidden))

	_, err = h.svc.Cancel(context.Background(), 11, created.ID, "admin action", true)
	assert.NoError(t, err)
}

func TestCancelAlreadyCancelled(t *testing.T) {
	h := newHarness()

	created, err := h.svc.Subscribe(context.Background(), 10, &subscription.SubscribeRequest{TierID: 1})
	require.NoError(t, err)

	_, err = h.svc.Cancel(context.Background(), 10, created.ID, "first", false)
	require.NoError(t, err)

	_, err = h.svc.Cancel(context.Background(), 10, created.ID, "second", false)
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, xerrors.ErrConflict))
}

func TestRenewExtendsByBillingCycle(t *testing.T) {
	h := newHarness()

	created, err := h.svc.Subscribe(context.Background(), 10, &subscription.SubscribeRequest{TierID: 1})
	require.NoError(t, err)
	base := created.ExpiresAt.Time
	startedAt := created.StartedAt.Time

	renewed, err := h.svc.Renew(context.Background(), created.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, addMonthsClamped(base, 1), renewed.ExpiresAt.Time)
	assert.Equal(t, subscription.StatusActive, renewed.Status)
	// started_at untouched by renewal.
	assert.Equal(t, startedAt, renewed.StartedAt.Time)
}

func TestRenewWithExplicitOverride(t *testing.T) {
	h := newHarness()

	created, err := h.svc.Subscribe(context.Background(), 10, &subscription.SubscribeRequest{TierID: 1})
	require.NoError(t, err)
	base := created.ExpiresAt.Time

	months := 3
	renewed, err := h.svc.Renew(context.Background(), created.ID, &months)
	require.NoError(t, err)

	assert.Equal(t, addMonthsClamped(base, 3), renewed.ExpiresAt.Time)
}

func TestRenewExpiredSubscriptionReactivates(t *testing.T) {
	h := newHarness()

	created, err := h.svc.Subscribe(context.Background(), 10, &subscription.SubscribeRequest{TierID: 1})
	require.NoError(t, err)

	// Push the subscription into the past and mark it expired.
	h.subs.subs[created.ID].ExpiresAt = sql.NullTime{Time: time.Now().Add(-48 * time.Hour), Valid: true}
	h.subs.subs[created.ID].Status = subscription.StatusExpired
	pastExpiry := h.subs.subs[created.ID].ExpiresAt.Time

	renewed, err := h.svc.Renew(context.Background(), created.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, subscription.StatusActive, renewed.Status)
	assert.Equal(t, addMonthsClamped(pastExpiry, 1), renewed.ExpiresAt.Time)
}

func TestCheckExpiredSweepsAndClearsPointer(t *testing.T) {
	h := newHarness()

	created, err := h.svc.Subscribe(context.Background(), 10, &subscription.SubscribeRequest{TierID: 1})
	require.NoError(t, err)
	require.True(t, h.users.users[10].ActiveSubscriptionID.Valid)

	// Force the expiry into the past while still marked active.
	h.subs.subs[created.ID].ExpiresAt = sql.NullTime{Time: time.Now().Add(-time.Hour), Valid: true}

	count, err := h.svc.CheckExpired(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	stored, err := h.subs.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusExpired, stored.Status)
	assert.False(t, h.users.users[10].ActiveSubscriptionID.Valid)
	assert.Equal(t, events.EventSubscriptionExpired, h.publisher.lastType())
}

func TestCheckExpiredNoop(t *testing.T) {
	h := newHarness()

	count, err := h.svc.CheckExpired(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, h.publisher.published)
}

func TestGetSubscriptionOwnership(t *testing.T) {
	h := newHarness()

	created, err := h.svc.Subscribe(context.Background(), 10, &subscription.SubscribeRequest{TierID: 1})
	require.NoError(t, err)

	_, err = h.svc.GetSubscription(context.Background(), 11, created.ID, false)
	assert.True(t, xerrors.Is(err, xerrors.ErrForbidden))

	_, err = h.svc.GetSubscription(context.Background(), 11, created.ID, true)
	assert.NoError(t, err)

	_, err = h.svc.GetSubscription(context.Background(), 10, created.ID, false)
	assert.NoError(t, err)
}

func TestListSubscriptionsPagination(t *testing.T) {
	h := newHarness()

	resp, err := h.svc.ListSubscriptions(context.Background(), &subscription.ListFilters{Page: 0, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 100, resp.PageSize)
}
