// AngelaMos | 2026
// dto.go

package auth

import (
	"time"

	"github.com/carterperez-dev/taskflow/internal/user"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type RegisterRequest struct {
	Email     string `json:"email"      validate:"required,email,max=255"`
	Password  string `json:"password"   validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name"  validate:"required,min=1,max=100"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ConfirmRequest struct {
	Token string `json:"token" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type PasswordResetConfirmRequest struct {
	Email       string `json:"email"        validate:"required,email,max=255"`
	Code        string `json:"code"         validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=128"`
}

type UserResponse struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	Metadata         map[string]any `json:"metadata"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at"`
	CreatedAt        time.Time      `json:"created_at"`
}

// SessionResponse is the token bundle handed to a signed-in client. The
// embedded user lets clients hydrate their auth state from a single call.
type SessionResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         UserResponse `json:"user"`
}

// RegisterResponse carries no session when the account still needs email
// confirmation.
type RegisterResponse struct {
	User              UserResponse     `json:"user"`
	Session           *SessionResponse `json:"session,omitempty"`
	NeedsConfirmation bool             `json:"needs_confirmation"`
}

type SessionInfo struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

func ToUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		Metadata:         u.Metadata,
		EmailConfirmedAt: u.EmailConfirmedAt,
		CreatedAt:        u.CreatedAt,
	}
}
