// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/taskflow/internal/core"
)

const userColumns = `
	id, email, password_hash, metadata, token_version,
	email_confirmed_at, confirm_token_hash, confirm_token_expires_at,
	reset_code_hash, reset_code_expires_at, created_at, updated_at`

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	ConfirmByTokenHash(ctx context.Context, tokenHash string) (*User, error)
	SetResetCode(
		ctx context.Context,
		id, codeHash string,
		expiresAt time.Time,
	) error
	GetByResetCodeHash(ctx context.Context, codeHash string) (*User, error)
	ClearResetCode(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, metadata,
			email_confirmed_at, confirm_token_hash, confirm_token_expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at, token_version`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Metadata,
		user.EmailConfirmedAt,
		user.ConfirmTokenHash,
		user.ConfirmTokenExpiresAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT` + userColumns + `
		FROM users WHERE id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := `SELECT` + userColumns + `
		FROM users WHERE email = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) IncrementTokenVersion(
	ctx context.Context,
	id string,
) error {
	query := `
		UPDATE users
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("increment token version: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ConfirmByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*User, error) {
	query := `
		UPDATE users
		SET email_confirmed_at = NOW(),
		    confirm_token_hash = NULL,
		    confirm_token_expires_at = NULL,
		    updated_at = NOW()
		WHERE confirm_token_hash = $1
			AND email_confirmed_at IS NULL
			AND confirm_token_expires_at > NOW()
		RETURNING` + userColumns

	var user User
	err := r.db.GetContext(ctx, &user, query, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("confirm email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("confirm email: %w", err)
	}

	return &user, nil
}

func (r *repository) SetResetCode(
	ctx context.Context,
	id, codeHash string,
	expiresAt time.Time,
) error {
	query := `
		UPDATE users
		SET reset_code_hash = $2,
		    reset_code_expires_at = $3,
		    updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, codeHash, expiresAt)
	if err != nil {
		return fmt.Errorf("set reset code: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set reset code: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set reset code: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) GetByResetCodeHash(
	ctx context.Context,
	codeHash string,
) (*User, error) {
	query := `SELECT` + userColumns + `
		FROM users
		WHERE reset_code_hash = $1 AND reset_code_expires_at > NOW()`

	var user User
	err := r.db.GetContext(ctx, &user, query, codeHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by reset code: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by reset code: %w", err)
	}

	return &user, nil
}

func (r *repository) ClearResetCode(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET reset_code_hash = NULL,
		    reset_code_expires_at = NULL,
		    updated_at = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("clear reset code: %w", err)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
