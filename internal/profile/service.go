// AngelaMos | 2026
// service.go

package profile

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/taskflow/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create inserts a profile for a freshly registered account. The role comes
// from the repository default unless explicitly given.
func (s *Service) Create(
	ctx context.Context,
	userID, firstName, lastName, role string,
) (*Profile, error) {
	if role == "" {
		role = RoleUser
	}
	if role != RoleUser && role != RoleAdmin {
		return nil, fmt.Errorf(
			"create profile: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	profile := &Profile{
		ID:        userID,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Profile, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateProfileRequest,
) (*Profile, error) {
	profile, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		profile.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		profile.LastName = *req.LastName
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

func (s *Service) UpdateRole(
	ctx context.Context,
	id, role string,
) (*Profile, error) {
	if role != RoleUser && role != RoleAdmin {
		return nil, fmt.Errorf(
			"update role: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	profile, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	profile.Role = role

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

func (s *Service) List(
	ctx context.Context,
	params ListParams,
) ([]ProfileWithEmail, int, error) {
	return s.repo.List(ctx, params)
}
