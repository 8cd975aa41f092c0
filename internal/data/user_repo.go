package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stepperslife/tickets/internal/data/pgxutil"
	"github.com/stepperslife/tickets/internal/domain/usersync"
	apperrors "github.com/stepperslife/tickets/internal/errors"
	"github.com/stepperslife/tickets/internal/ports"
)

var _ ports.UserStore = (*UserRepo)(nil)

// ErrUserNotFound is returned when no user matches the external id.
var ErrUserNotFound = errors.New("user not found")

// User is a row of the users table.
type User struct {
	ID             string    `db:"id"`
	ExternalUserID string    `db:"external_user_id"`
	Name           string    `db:"name"`
	Email          string    `db:"email"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

const userColumns = "id, external_user_id, name, email, created_at, updated_at"

// UserRepo is the Postgres-backed external user store.
type UserRepo struct {
	DB *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// UpsertUser inserts rec or updates the existing row with the same external id.
func (r *UserRepo) UpsertUser(ctx context.Context, rec usersync.SyncRecord) error {
	if rec.ExternalUserID == "" {
		return apperrors.Validation("user id is required")
	}

	const query = `
		INSERT INTO users (external_user_id, name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (external_user_id) DO UPDATE
		SET name = EXCLUDED.name, email = EXCLUDED.email, updated_at = now()`

	if _, err := r.DB.ExecContext(ctx, query, rec.ExternalUserID, rec.Name, rec.Email); err != nil {
		return fmt.Errorf("upsert user: %w", apperrors.MapDBError(err))
	}
	return nil
}

// GetByExternalID returns the user keyed by the identity provider's id.
func (r *UserRepo) GetByExternalID(ctx context.Context, externalID string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE external_user_id = $1`

	u, err := pgxutil.QueryOne[User](ctx, r.DB, query, externalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", apperrors.MapDBError(err))
	}
	return &u, nil
}

// Count returns the number of stored users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", apperrors.MapDBError(err))
	}
	return n, nil
}
