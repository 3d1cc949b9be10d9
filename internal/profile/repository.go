// AngelaMos | 2026
// repository.go

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/taskflow/internal/core"
)

type Repository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByID(ctx context.Context, id string) (*Profile, error)
	Update(ctx context.Context, profile *Profile) error
	List(ctx context.Context, params ListParams) ([]ProfileWithEmail, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, profile *Profile) error {
	query := `
		INSERT INTO profiles (id, first_name, last_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, profile, query,
		profile.ID,
		profile.FirstName,
		profile.LastName,
		profile.Role,
	)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Profile, error) {
	query := `
		SELECT id, first_name, last_name, role, created_at, updated_at
		FROM profiles
		WHERE id = $1`

	var profile Profile
	err := r.db.GetContext(ctx, &profile, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &profile, nil
}

func (r *repository) Update(ctx context.Context, profile *Profile) error {
	query := `
		UPDATE profiles
		SET first_name = $2, last_name = $3, role = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &profile.UpdatedAt, query,
		profile.ID,
		profile.FirstName,
		profile.LastName,
		profile.Role,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]ProfileWithEmail, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(u.email ILIKE $%d OR p.first_name ILIKE $%d OR p.last_name ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("p.role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM profiles p
		JOIN users u ON u.id = p.id
		WHERE %s`, whereClause)

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.first_name, p.last_name, p.role,
		       p.created_at, p.updated_at, u.email
		FROM profiles p
		JOIN users u ON u.id = p.id
		WHERE %s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var profiles []ProfileWithEmail
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}

	return profiles, total, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
