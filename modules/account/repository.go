package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/containercalc/containercalc/pkg/auth"
	"github.com/containercalc/containercalc/pkg/pg"
)

// Repository persists users and their credentials in Postgres.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a Postgres-backed auth storage. It panics on a nil
// pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	if db == nil {
		panic("account: db pool is required")
	}
	return &Repository{db: db}
}

var _ auth.Storage = (*Repository)(nil)

func (r *Repository) CreateUser(ctx context.Context, user *auth.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, name, company, created_at) VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Email, user.Name, user.Company, user.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return auth.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return r.scanUser(r.db.QueryRow(ctx,
		`SELECT id, email, name, company, created_at FROM users WHERE id = $1`, id))
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.scanUser(r.db.QueryRow(ctx,
		`SELECT id, email, name, company, created_at FROM users WHERE email = $1`, email))
}

func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	// Credentials are removed by the users FK cascade.
	if _, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (r *Repository) StorePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_credentials (user_id, password_hash, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (user_id) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = now()`,
		userID, hash,
	)
	if err != nil {
		return fmt.Errorf("store password hash: %w", err)
	}
	return nil
}

func (r *Repository) GetPasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	var hash []byte
	err := r.db.QueryRow(ctx,
		`SELECT password_hash FROM user_credentials WHERE user_id = $1`, userID,
	).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("get password hash: %w", err)
	}
	return hash, nil
}

func (r *Repository) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE user_credentials SET password_hash = $2, updated_at = now() WHERE user_id = $1`,
		userID, hash,
	)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (r *Repository) scanUser(row pgx.Row) (*auth.User, error) {
	var u auth.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Company, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
