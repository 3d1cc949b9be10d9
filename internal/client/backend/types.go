// AngelaMos | 2026
// types.go

package backend

import (
	"time"
)

// RemoteUser is the account record as the backend returns it. Display name
// and role live in the profile row or the metadata bag, not here.
type RemoteUser struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	Metadata         map[string]any `json:"metadata"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at"`
	CreatedAt        time.Time      `json:"created_at"`
}

// Session bundles the token pair with the user it belongs to.
type Session struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	TokenType    string     `json:"token_type"`
	ExpiresIn    int        `json:"expires_in"`
	ExpiresAt    time.Time  `json:"expires_at"`
	User         RemoteUser `json:"user"`
}

func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

type ProfileRow struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskRow carries the backend's task representation: snake_case fields and
// the stored status vocabulary ("To Do", "In Progress", "Done").
type TaskRow struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`
	UserID      string     `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskInsert is the payload for creating a task. The owner is always taken
// from the bearer token server-side.
type TaskInsert struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// TaskPatch is a partial update; nil fields are left untouched.
// CompletedAt is doubly indirect so the patch can distinguish "leave it
// alone" (outer nil, omitted) from an explicit "completed_at": null
// (outer set, inner nil).
type TaskPatch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *string     `json:"status,omitempty"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	CompletedAt **time.Time `json:"completed_at,omitempty"`
}

// SetCompletedAt marks the completion time in the patch. A nil value
// serializes as an explicit null, clearing the column.
func (p *TaskPatch) SetCompletedAt(t *time.Time) {
	p.CompletedAt = &t
}

// AuthEvent identifies why an auth-change notification fired.
type AuthEvent string

const (
	EventInitialSession AuthEvent = "initial_session"
	EventSignedIn       AuthEvent = "signed_in"
	EventSignedOut      AuthEvent = "signed_out"
	EventTokenRefreshed AuthEvent = "token_refreshed"
)

// AuthCallback receives auth-change notifications. Session is nil when the
// event leaves the client signed out.
type AuthCallback func(event AuthEvent, session *Session)
