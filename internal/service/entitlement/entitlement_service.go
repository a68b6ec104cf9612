// internal/service/entitlement/entitlement_service.go
package entitlement

import (
	"context"
	"database/sql"
	"time"

	"campus-service/internal/domain/catalog"
	"campus-service/internal/domain/subscription"
	"campus-service/internal/domain/tier"
	xerrors "campus-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// ContentStore reads course/pathway access requirements and enrollments.
type ContentStore interface {
	ContentAccessInfo(ctx context.Context, kind catalog.ContentKind, contentID int64) (*catalog.ContentAccessInfo, error)
	IsEnrolled(ctx context.Context, userID, contentID int64, kind catalog.ContentKind) (bool, error)
	InstitutionTierID(ctx context.Context, institutionID int64) (sql.NullInt64, error)
}

// UserStore reads the user's institution membership.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*catalog.User, error)
}

// SubscriptionStore reads the user's current active subscription.
type SubscriptionStore interface {
	FindActiveByUser(ctx context.Context, userID int64) (*subscription.SubscriptionDetails, error)
}

// TierStore reads tier entitlement ranks.
type TierStore interface {
	FindByID(ctx context.Context, id int64) (*tier.Tier, error)
}

// DecisionCache stores positive grants for a short window and supports
// per-user invalidation on subscription transitions.
type DecisionCache interface {
	Get(ctx context.Context, userID int64, kind catalog.ContentKind, contentID int64) (bool, error)
	Set(ctx context.Context, userID int64, kind catalog.ContentKind, contentID int64) error
	InvalidateUser(ctx context.Context, userID int64) error
}

type EntitlementService struct {
	content ContentStore
	users   UserStore
	subs    SubscriptionStore
	tiers   TierStore
	cache   DecisionCache
	logger  *zap.Logger
}

func NewEntitlementService(
	content ContentStore,
	users UserStore,
	subs SubscriptionStore,
	tiers TierStore,
	cache DecisionCache,
	logger *zap.Logger,
) *EntitlementService {
	return &EntitlementService{
		content: content,
		users:   users,
		subs:    subs,
		tiers:   tiers,
		cache:   cache,
		logger:  logger,
	}
}

// HasAccess decides whether a user may access a course or pathway. It
// never returns an error to the caller: any failure during resolution
// denies access. Only grants are cached; denials are always recomputed.
func (s *EntitlementService) HasAccess(ctx context.Context, userID int64, kind catalog.ContentKind, contentID int64) bool {
	if !kind.Valid() {
		return false
	}

	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, userID, kind, contentID); err == nil && hit {
			return true
		}
	}

	granted, err := s.resolve(ctx, userID, kind, contentID)
	if err != nil {
		s.logger.Warn("entitlement resolution failed, denying access",
			zap.Int64("user_id", userID),
			zap.String("content_kind", string(kind)),
			zap.Int64("content_id", contentID),
			zap.Error(err),
		)
		return false
	}

	if granted && s.cache != nil {
		if err := s.cache.Set(ctx, userID, kind, contentID); err != nil {
			s.logger.Warn("failed to cache entitlement grant",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
	}

	return granted
}

// resolve runs the ordered checks. ErrNotFound from the subscription or
// institution lookups means "this source does not apply, keep going";
// every other error aborts resolution.
func (s *EntitlementService) resolve(ctx context.Context, userID int64, kind catalog.ContentKind, contentID int64) (bool, error) {
	// 1. Direct enrollment.
	enrolled, err := s.content.IsEnrolled(ctx, userID, contentID, kind)
	if err != nil {
		return false, err
	}
	if enrolled {
		return true, nil
	}

	info, err := s.content.ContentAccessInfo(ctx, kind, contentID)
	if err != nil {
		return false, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}

	// 2. Pathways owned by the user's own institution are always open to
	// its members. Courses carry no institution ownership, so they have no
	// equivalent shortcut.
	if kind == catalog.KindPathway &&
		user.InstitutionID.Valid && info.InstitutionID.Valid &&
		user.InstitutionID.Int64 == info.InstitutionID.Int64 {
		return true, nil
	}

	if info.RequiredTierID.Valid {
		requiredTier, err := s.tiers.FindByID(ctx, info.RequiredTierID.Int64)
		if err != nil {
			return false, err
		}

		// 3. Personal active, unexpired subscription.
		now := time.Now()
		active, err := s.subs.FindActiveByUser(ctx, userID)
		if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
			return false, err
		}
		if active != nil && !active.IsExpired(now) && active.EntitlementRank >= requiredTier.EntitlementRank {
			return true, nil
		}

		// 4. Institutional tier assignment.
		if user.InstitutionID.Valid {
			instTierID, err := s.content.InstitutionTierID(ctx, user.InstitutionID.Int64)
			if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
				return false, err
			}
			if instTierID.Valid {
				instTier, err := s.tiers.FindByID(ctx, instTierID.Int64)
				if err != nil {
					return false, err
				}
				if instTier.EntitlementRank >= requiredTier.EntitlementRank {
					return true, nil
				}
			}
		}

		return false, nil
	}

	// 5. No required tier and free: public content.
	if info.Price == 0 {
		return true, nil
	}

	return false, nil
}
