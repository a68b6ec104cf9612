// internal/repository/postgres/catalog_repo.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campus-service/internal/domain/catalog"
	xerrors "campus-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepository reads course, pathway, enrollment and institution data
// owned by the catalog side of the platform. All reads, no writes.
type CatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ContentAccessInfo loads the entitlement-relevant fields of a course or
// pathway. Courses carry no institution ownership here; only pathways do.
func (r *CatalogRepository) ContentAccessInfo(ctx context.Context, kind catalog.ContentKind, contentID int64) (*catalog.ContentAccessInfo, error) {
	var query string

	switch kind {
	case catalog.KindCourse:
		query = `SELECT subscription_tier_id, price, NULL::bigint FROM courses WHERE id = $1`
	case catalog.KindPathway:
		query = `SELECT subscription_tier_id, price, institution_id FROM pathways WHERE id = $1`
	default:
		return nil, fmt.Errorf("%w: unknown content kind %q", xerrors.ErrInvalidInput, kind)
	}

	var info catalog.ContentAccessInfo
	err := r.db.QueryRow(ctx, query, contentID).Scan(&info.RequiredTierID, &info.Price, &info.InstitutionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load content access info: %w", err)
	}

	return &info, nil
}

// IsEnrolled checks direct enrollment in a course or pathway.
func (r *CatalogRepository) IsEnrolled(ctx context.Context, userID, contentID int64, kind catalog.ContentKind) (bool, error) {
	var query string

	switch kind {
	case catalog.KindCourse:
		query = `SELECT EXISTS(SELECT 1 FROM course_enrollments WHERE user_id = $1 AND course_id = $2)`
	case catalog.KindPathway:
		query = `SELECT EXISTS(SELECT 1 FROM pathway_enrollments WHERE user_id = $1 AND pathway_id = $2)`
	default:
		return false, fmt.Errorf("%w: unknown content kind %q", xerrors.ErrInvalidInput, kind)
	}

	var enrolled bool
	if err := r.db.QueryRow(ctx, query, userID, contentID).Scan(&enrolled); err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}

	return enrolled, nil
}

// InstitutionTierID returns the tier assigned to an institution, if any.
func (r *CatalogRepository) InstitutionTierID(ctx context.Context, institutionID int64) (sql.NullInt64, error) {
	query := `SELECT subscription_tier_id FROM institutions WHERE id = $1`

	var tierID sql.NullInt64
	err := r.db.QueryRow(ctx, query, institutionID).Scan(&tierID)
	if errors.Is(err, pgx.ErrNoRows) {
		return sql.NullInt64{}, xerrors.ErrNotFound
	}
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("failed to load institution tier: %w", err)
	}

	return tierID, nil
}
