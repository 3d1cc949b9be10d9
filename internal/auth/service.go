// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/taskflow/internal/config"
	"github.com/carterperez-dev/taskflow/internal/core"
	"github.com/carterperez-dev/taskflow/internal/profile"
	"github.com/carterperez-dev/taskflow/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
	ErrEmailExists        = errors.New("email already exists")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrResetCodeInvalid   = errors.New("invalid or expired reset code")
)

// UserStore is the slice of the user service the auth flow needs.
type UserStore interface {
	Create(ctx context.Context, p user.CreateParams) (*user.User, error)
	GetByID(ctx context.Context, id string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, userID string) error
	ConfirmByTokenHash(ctx context.Context, tokenHash string) (*user.User, error)
	SetResetCode(
		ctx context.Context,
		userID, codeHash string,
		expiresAt time.Time,
	) error
	GetByResetCodeHash(ctx context.Context, codeHash string) (*user.User, error)
	ClearResetCode(ctx context.Context, userID string) error
}

// ProfileStore creates the profile row at registration and resolves roles
// for token claims.
type ProfileStore interface {
	Create(
		ctx context.Context,
		userID, firstName, lastName, role string,
	) (*profile.Profile, error)
	GetByID(ctx context.Context, id string) (*profile.Profile, error)
}

type Service struct {
	tokens       Repository
	jwt          *JWTManager
	users        UserStore
	profiles     ProfileStore
	redis        *redis.Client
	logger       *slog.Logger
	registration config.RegistrationConfig
}

func NewService(
	tokens Repository,
	jwtManager *JWTManager,
	users UserStore,
	profiles ProfileStore,
	redisClient *redis.Client,
	logger *slog.Logger,
	registration config.RegistrationConfig,
) *Service {
	return &Service{
		tokens:       tokens,
		jwt:          jwtManager,
		users:        users,
		profiles:     profiles,
		redis:        redisClient,
		logger:       logger,
		registration: registration,
	}
}

// Register creates the account, its profile row, and, when confirmation is
// disabled, an immediate session. The confirmation token is only ever logged
// since there is no mailer wired in.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	userAgent, ipAddress string,
) (*RegisterResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	params := user.CreateParams{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Metadata: user.Metadata{
			"first_name": req.FirstName,
			"last_name":  req.LastName,
		},
		Confirmed: !s.registration.RequireConfirmation,
	}

	var confirmToken string
	if s.registration.RequireConfirmation {
		confirmToken, err = core.GenerateSecureToken(32)
		if err != nil {
			return nil, fmt.Errorf("generate confirm token: %w", err)
		}
		params.ConfirmTokenHash = core.HashToken(confirmToken)
		params.ConfirmTokenExpiry = time.Now().
			Add(s.registration.ConfirmTokenExpire)
	}

	newUser, err := s.users.Create(ctx, params)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if _, err := s.profiles.Create(
		ctx,
		newUser.ID,
		req.FirstName,
		req.LastName,
		profile.RoleUser,
	); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	if s.registration.RequireConfirmation {
		s.logger.Info("confirmation token issued",
			"user_id", newUser.ID,
			"token", confirmToken,
		)

		return &RegisterResponse{
			User:              ToUserResponse(newUser),
			NeedsConfirmation: true,
		}, nil
	}

	session, err := s.createSession(
		ctx,
		newUser,
		profile.RoleUser,
		userAgent,
		ipAddress,
		"",
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &RegisterResponse{
		User:    ToUserResponse(newUser),
		Session: session,
	}, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*SessionResponse, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&u.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if s.registration.RequireConfirmation && !u.IsConfirmed() {
		return nil, ErrEmailNotConfirmed
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePassword(ctx, u.ID, newHash)
	}

	return s.createSession(
		ctx,
		u,
		s.roleFor(ctx, u.ID),
		userAgent,
		ipAddress,
		"",
		nil,
	)
}

func (s *Service) Refresh(
	ctx context.Context,
	refreshToken, userAgent, ipAddress string,
) (*SessionResponse, error) {
	tokenHash := core.HashToken(refreshToken)

	storedToken, err := s.tokens.FindByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	if storedToken.IsUsed {
		//nolint:errcheck // security revocation continues regardless
		_ = s.tokens.RevokeByFamilyID(ctx, storedToken.FamilyID)
		return nil, ErrTokenReuse
	}

	if !storedToken.IsValid() {
		if storedToken.IsRevoked() {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	u, err := s.users.GetByID(ctx, storedToken.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return s.createSession(
		ctx,
		u,
		s.roleFor(ctx, u.ID),
		userAgent,
		ipAddress,
		storedToken.FamilyID,
		&storedToken.ID,
	)
}

// Confirm marks the account email-confirmed by its one-time token.
func (s *Service) Confirm(ctx context.Context, token string) error {
	tokenHash := core.HashToken(token)

	u, err := s.users.ConfirmByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("confirm: %w", core.ErrTokenInvalid)
		}
		return fmt.Errorf("confirm: %w", err)
	}

	s.logger.Info("email confirmed", "user_id", u.ID)
	return nil
}

// RequestPasswordReset issues a reset code for the account. An unknown email
// succeeds silently to prevent enumeration.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}

	code, err := core.GenerateSecureToken(16)
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}

	expiresAt := time.Now().Add(s.registration.ResetCodeExpire)
	if err := s.users.SetResetCode(
		ctx,
		u.ID,
		core.HashToken(code),
		expiresAt,
	); err != nil {
		return fmt.Errorf("set reset code: %w", err)
	}

	s.logger.Info("password reset code issued",
		"user_id", u.ID,
		"code", code,
	)

	return nil
}

// ResetPassword consumes a reset code, sets the new password, and revokes
// every existing session.
func (s *Service) ResetPassword(
	ctx context.Context,
	email, code, newPassword string,
) error {
	u, err := s.users.GetByResetCodeHash(ctx, core.HashToken(code))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrResetCodeInvalid
		}
		return fmt.Errorf("find reset code: %w", err)
	}

	if u.Email != email {
		return ErrResetCodeInvalid
	}
	if u.ResetCodeExpiresAt == nil || time.Now().After(*u.ResetCodeExpiresAt) {
		return ErrResetCodeInvalid
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, u.ID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.users.ClearResetCode(ctx, u.ID); err != nil {
		return fmt.Errorf("clear reset code: %w", err)
	}

	if err := s.LogoutAll(ctx, u.ID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	return nil
}

func (s *Service) Logout(
	ctx context.Context,
	refreshToken, userID string,
) error {
	tokenHash := core.HashToken(refreshToken)

	storedToken, err := s.tokens.FindByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("find token: %w", err)
	}

	if storedToken.UserID != userID {
		return fmt.Errorf("logout: %w", core.ErrForbidden)
	}

	if err := s.tokens.RevokeByID(ctx, storedToken.ID); err != nil &&
		!errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("revoke token: %w", err)
	}

	return nil
}

func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}

	if err := s.users.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	return nil
}

func (s *Service) RevokeAccessToken(
	ctx context.Context,
	jti string,
	expiresAt time.Time,
) error {
	key := "blacklist:" + jti
	ttl := time.Until(expiresAt)

	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

func (s *Service) IsAccessTokenBlacklisted(
	ctx context.Context,
	jti string,
) (bool, error) {
	key := "blacklist:" + jti

	exists, err := s.redis.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}

	return exists > 0, nil
}

func (s *Service) GetActiveSessions(
	ctx context.Context,
	userID string,
) ([]SessionInfo, error) {
	tokens, err := s.tokens.GetActiveSessionsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}

	sessions := make([]SessionInfo, 0, len(tokens))
	for _, t := range tokens {
		sessions = append(sessions, SessionInfo{
			ID:        t.ID,
			UserAgent: t.UserAgent,
			IPAddress: t.IPAddress,
			CreatedAt: t.CreatedAt,
			ExpiresAt: t.ExpiresAt,
		})
	}

	return sessions, nil
}

func (s *Service) RevokeSession(
	ctx context.Context,
	userID, sessionID string,
) error {
	token, err := s.tokens.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}

	if token.UserID != userID {
		return fmt.Errorf("revoke session: %w", core.ErrForbidden)
	}

	if err := s.tokens.RevokeByID(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID, currentPassword, newPassword string,
) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, _, err := core.VerifyPasswordWithRehash(
		currentPassword,
		u.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.LogoutAll(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	return nil
}

func (s *Service) ValidateTokenVersion(
	ctx context.Context,
	userID string,
	tokenVersion int,
) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if tokenVersion < u.TokenVersion {
		return fmt.Errorf("validate token version: %w", core.ErrTokenRevoked)
	}

	return nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := ToUserResponse(u)
	return &resp, nil
}

// roleFor resolves the role claim from the profile row. A missing profile
// falls back to the default role rather than failing the sign-in.
func (s *Service) roleFor(ctx context.Context, userID string) string {
	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return profile.RoleUser
	}
	return p.Role
}

func (s *Service) createSession(
	ctx context.Context,
	u *user.User,
	role string,
	userAgent, ipAddress, familyID string,
	oldTokenID *string,
) (*SessionResponse, error) {
	accessToken, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:       u.ID,
		Role:         role,
		TokenVersion: u.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refreshData, err := s.jwt.CreateRefreshToken(u.ID, familyID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	newTokenID := uuid.New().String()

	refreshTokenEntity := &RefreshToken{
		ID:        newTokenID,
		UserID:    u.ID,
		TokenHash: refreshData.Hash,
		FamilyID:  refreshData.FamilyID,
		ExpiresAt: refreshData.ExpiresAt,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	if err := s.tokens.Create(ctx, refreshTokenEntity); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	if oldTokenID != nil {
		//nolint:errcheck // best-effort token chain tracking
		_ = s.tokens.MarkAsUsed(ctx, *oldTokenID, newTokenID)
	}

	ttl := s.jwt.AccessTokenTTL()

	return &SessionResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshData.Token,
		TokenType:    "Bearer",
		ExpiresIn:    int(ttl / time.Second),
		ExpiresAt:    time.Now().Add(ttl),
		User:         ToUserResponse(u),
	}, nil
}
