// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Email              string
	PasswordHash       string
	Metadata           Metadata
	Confirmed          bool
	ConfirmTokenHash   string
	ConfirmTokenExpiry time.Time
}

func (s *Service) Create(ctx context.Context, p CreateParams) (*User, error) {
	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(p.Email),
		PasswordHash: p.PasswordHash,
		Metadata:     p.Metadata,
	}

	if p.Confirmed {
		now := time.Now()
		user.EmailConfirmedAt = &now
	} else {
		user.ConfirmTokenHash = &p.ConfirmTokenHash
		user.ConfirmTokenExpiresAt = &p.ConfirmTokenExpiry
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(email))
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) ConfirmByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*User, error) {
	return s.repo.ConfirmByTokenHash(ctx, tokenHash)
}

func (s *Service) SetResetCode(
	ctx context.Context,
	userID, codeHash string,
	expiresAt time.Time,
) error {
	return s.repo.SetResetCode(ctx, userID, codeHash, expiresAt)
}

func (s *Service) GetByResetCodeHash(
	ctx context.Context,
	codeHash string,
) (*User, error) {
	return s.repo.GetByResetCodeHash(ctx, codeHash)
}

func (s *Service) ClearResetCode(ctx context.Context, userID string) error {
	return s.repo.ClearResetCode(ctx, userID)
}
