// Package repo provides Postgres data access for account records using sqlx.
package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/accountforge/service-identity-go/internal/apperror"
	"github.com/accountforge/service-identity-go/internal/identity/entity"
)

// pq unique_violation
const uniqueViolation = "23505"

// UserRepo implements identity.Store on a Postgres users table.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the users table if not exists (idempotent).
// The partial unique index is what guarantees one live account per email;
// soft-deleted rows fall outside it so the address can be reused.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id VARCHAR(32) PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  deleted_at TIMESTAMPTZ
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_live ON users(email) WHERE deleted_at IS NULL;
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const userColumns = `id, email, password_hash, first_name, last_name, created_at, updated_at, deleted_at`

// Insert persists a new account row. Timestamps are store-managed and read
// back into u. A duplicate live email surfaces as ConstraintViolation.
func (r *UserRepo) Insert(ctx context.Context, u *entity.User) (*entity.User, error) {
	const q = `INSERT INTO users (id, email, password_hash, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, q, u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, apperror.New(apperror.KindConstraintViolation, "email already in use")
		}
		return nil, apperror.Newf(apperror.KindInternal, "insert user: %v", err)
	}
	return u, nil
}

// FindByEmail returns the live account for email, or nil when no live row
// matches. Soft-deleted rows are excluded.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email=$1 AND deleted_at IS NULL`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Newf(apperror.KindInternal, "find user by email: %v", err)
	}
	return &u, nil
}

// FindByID returns the live account for id, or nil when none exists.
func (r *UserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1 AND deleted_at IS NULL`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Newf(apperror.KindInternal, "find user by id: %v", err)
	}
	return &u, nil
}

// UpdateByID applies a partial update to a live row and returns the
// post-update record. A missing or deleted id fails with NotFound.
func (r *UserRepo) UpdateByID(ctx context.Context, id string, upd entity.UserUpdate) (*entity.User, error) {
	const q = `UPDATE users SET
		password_hash = COALESCE($2, password_hash),
		first_name = COALESCE($3, first_name),
		last_name = COALESCE($4, last_name),
		updated_at = NOW()
		WHERE id=$1 AND deleted_at IS NULL
		RETURNING ` + userColumns
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, id, upd.PasswordHash, upd.FirstName, upd.LastName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.New(apperror.KindNotFound, "unknown or deleted user")
		}
		return nil, apperror.Newf(apperror.KindInternal, "update user: %v", err)
	}
	return &u, nil
}

// SoftDeleteByID marks a live row deleted. Already-deleted and unknown ids
// are silent no-ops, so the operation is idempotent and never resurrects.
func (r *UserRepo) SoftDeleteByID(ctx context.Context, id string) error {
	const q = `UPDATE users SET deleted_at=NOW(), updated_at=NOW() WHERE id=$1 AND deleted_at IS NULL`
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return apperror.Newf(apperror.KindInternal, "soft delete user: %v", err)
	}
	return nil
}
