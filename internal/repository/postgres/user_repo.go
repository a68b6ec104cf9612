// internal/repository/postgres/user_repo.go
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

// UserRepository is this subsystem's window onto the users table. It reads
// institution membership and maintains the denormalized
// active_subscription_id pointer; everything else about users belongs to
// the identity service.
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID retrieves a user read model
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*catalog.User, error) {
	query := `
		SELECT id, full_name, email, institution_id, active_subscription_id
		FROM users
		WHERE id = $1
	`

	var u catalog.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.FullName, &u.Email, &u.InstitutionID, &u.ActiveSubscriptionID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &u, nil
}

// SetActiveSubscriptionWithTx points a user's active_subscription_id at the
// given subscription (or clears it when the id is null).
func (r *UserRepository) SetActiveSubscriptionWithTx(ctx context.Context, tx pgx.Tx, userID int64, subscriptionID sql.NullInt64) error {
	query := `UPDATE users SET active_subscription_id = $1, updated_at = NOW() WHERE id = $2`

	result, err := tx.Exec(ctx, query, subscriptionID, userID)
	if err != nil {
		return fmt.Errorf("failed to set active subscription pointer: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// ClearActiveSubscriptionRefWithTx clears active_subscription_id on any
// user row currently pointing at the given subscription. It is a
// consistency fix-up, not a targeted update: a no-op when data is already
// consistent, O(matching rows) otherwise.
func (r *UserRepository) ClearActiveSubscriptionRefWithTx(ctx context.Context, tx pgx.Tx, subscriptionID int64) error {
	query := `UPDATE users SET active_subscription_id = NULL, updated_at = NOW() WHERE active_subscription_id = $1`

	if _, err := tx.Exec(ctx, query, subscriptionID); err != nil {
		return fmt.Errorf("failed to clear active subscription pointer: %w", err)
	}

	return nil
}
