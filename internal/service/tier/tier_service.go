// internal/service/tier/tier_service.go
package tier

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"campus-service/internal/domain/tier"
	xerrors "campus-service/internal/pkg/errors"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// TierStore is the persistence surface the service needs; implemented by
// postgres.TierRepository.
type TierStore interface {
	Create(ctx context.Context, t *tier.Tier) error
	FindByID(ctx context.Context, id int64) (*tier.Tier, error)
	FindBySlug(ctx context.Context, slug string) (*tier.Tier, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, id int64, req *tier.UpdateTierRequest) error
	Delete(ctx context.Context, id int64) error
	ToggleActive(ctx context.Context, id int64) (*tier.Tier, error)
	Reorder(ctx context.Context, items []tier.ReorderItem) error
	List(ctx context.Context, filters *tier.TierListFilters) ([]tier.Tier, int64, error)
	GetStats(ctx context.Context) (*tier.TierStats, error)
}

// SubscriptionCounter answers "does anyone actively subscribe to this
// tier"; implemented by postgres.SubscriptionRepository.
type SubscriptionCounter interface {
	CountActiveByTier(ctx context.Context, tierID int64) (int64, error)
}

type TierService struct {
	tierStore TierStore
	subCount  SubscriptionCounter
	logger    *zap.Logger
}

func NewTierService(tierStore TierStore, subCount SubscriptionCounter, logger *zap.Logger) *TierService {
	return &TierService{
		tierStore: tierStore,
		subCount:  subCount,
		logger:    logger,
	}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives a URL-safe slug from a display name.
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// CreateTier creates a new subscription tier with catalog defaults.
func (s *TierService) CreateTier(ctx context.Context, req *tier.CreateTierRequest) (*tier.Tier, error) {
	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: tier slug cannot be empty", xerrors.ErrInvalidInput)
	}

	// Pre-check for a friendlier error; the unique constraint still backs
	// this up under concurrency.
	exists, err := s.tierStore.ExistsBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to check tier slug: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: tier slug %q already in use", xerrors.ErrConflict, slug)
	}

	currency := "USD"
	if req.Currency != "" {
		currency = strings.ToUpper(req.Currency)
	}
	cycleMonths := req.BillingCycleMonths
	if cycleMonths == 0 {
		cycleMonths = 1
	}
	cycleDays := req.BillingCycleDays
	if cycleDays == 0 {
		cycleDays = 30
	}
	maxUsers := int32(-1) // unlimited
	if req.MaxUsers != nil {
		maxUsers = *req.MaxUsers
	}

	t := &tier.Tier{
		Slug:               slug,
		Name:               req.Name,
		Description:        sql.NullString{String: req.Description, Valid: req.Description != ""},
		Price:              req.Price,
		Currency:           currency,
		BillingCycleMonths: cycleMonths,
		BillingCycleDays:   cycleDays,
		Features:           pq.StringArray(req.Features),
		IsPopular:          req.IsPopular,
		MaxUsers:           maxUsers,
		IsActive:           true,
		DisplayOrder:       req.DisplayOrder,
		EntitlementRank:    req.EntitlementRank,
		StripePriceID:      sql.NullString{String: req.StripePriceID, Valid: req.StripePriceID != ""},
	}

	if err := s.tierStore.Create(ctx, t); err != nil {
		if xerrors.Is(err, xerrors.ErrConflict) {
			return nil, fmt.Errorf("%w: tier slug %q already in use", xerrors.ErrConflict, slug)
		}
		s.logger.Error("failed to create tier", zap.String("slug", slug), zap.Error(err))
		return nil, fmt.Errorf("failed to create tier: %w", err)
	}

	s.logger.Info("tier created",
		zap.Int64("tier_id", t.ID),
		zap.String("slug", t.Slug),
		zap.Float64("price", t.Price),
		zap.Int("entitlement_rank", t.EntitlementRank),
	)

	return t, nil
}

// GetTier retrieves a tier by ID
func (s *TierService) GetTier(ctx context.Context, id int64) (*tier.Tier, error) {
	return s.tierStore.FindByID(ctx, id)
}

// GetTierBySlug retrieves a tier by slug
func (s *TierService) GetTierBySlug(ctx context.Context, slug string) (*tier.Tier, error) {
	return s.tierStore.FindBySlug(ctx, slug)
}

// UpdateTier applies a partial update and returns the updated tier.
func (s *TierService) UpdateTier(ctx context.Context, id int64, req *tier.UpdateTierRequest) (*tier.Tier, error) {
	if err := s.tierStore.Update(ctx, id, req); err != nil {
		if !xerrors.Is(err, xerrors.ErrNotFound) {
			s.logger.Error("failed to update tier", zap.Int64("tier_id", id), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("tier updated", zap.Int64("tier_id", id))

	return s.tierStore.FindByID(ctx, id)
}

// DeleteTier removes a tier unless active subscriptions still reference it.
func (s *TierService) DeleteTier(ctx context.Context, id int64) error {
	count, err := s.subCount.CountActiveByTier(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check tier subscriptions: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: tier has %d active subscriptions", xerrors.ErrConflict, count)
	}

	if err := s.tierStore.Delete(ctx, id); err != nil {
		if !xerrors.Is(err, xerrors.ErrNotFound) {
			s.logger.Error("failed to delete tier", zap.Int64("tier_id", id), zap.Error(err))
		}
		return err
	}

	s.logger.Info("tier deleted", zap.Int64("tier_id", id))
	return nil
}

// ToggleActive flips a tier's availability.
func (s *TierService) ToggleActive(ctx context.Context, id int64) (*tier.Tier, error) {
	t, err := s.tierStore.ToggleActive(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("tier toggled",
		zap.Int64("tier_id", id),
		zap.Bool("is_active", t.IsActive),
	)

	return t, nil
}

// ReorderTiers applies a batch of display_order changes atomically.
func (s *TierService) ReorderTiers(ctx context.Context, req *tier.ReorderRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: no reorder items supplied", xerrors.ErrInvalidInput)
	}

	if err := s.tierStore.Reorder(ctx, req.Items); err != nil {
		if !xerrors.Is(err, xerrors.ErrNotFound) {
			s.logger.Error("failed to reorder tiers", zap.Error(err))
		}
		return err
	}

	s.logger.Info("tiers reordered", zap.Int("count", len(req.Items)))
	return nil
}

// ListTiers retrieves tiers with filters and pagination.
func (s *TierService) ListTiers(ctx context.Context, filters *tier.TierListFilters) (*tier.TierListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	if filters.PageSize > 100 {
		filters.PageSize = 100
	}

	tiers, total, err := s.tierStore.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiers: %w", err)
	}

	totalPages := int(total) / filters.PageSize
	if int(total)%filters.PageSize > 0 {
		totalPages++
	}

	return &tier.TierListResponse{
		Tiers:      tiers,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: totalPages,
	}, nil
}

// GetStats retrieves tier statistics
func (s *TierService) GetStats(ctx context.Context) (*tier.TierStats, error) {
	stats, err := s.tierStore.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tier stats: %w", err)
	}
	return stats, nil
}
