// AngelaMos | 2026
// entity.go

package user

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Metadata is the free-form signup payload (first_name, last_name,
// avatar_url, ...) stored alongside the account and echoed back to clients.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	case nil:
		*m = Metadata{}
		return nil
	default:
		return fmt.Errorf("scan metadata: unsupported type %T", src)
	}
}

func (m Metadata) String(key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

type User struct {
	ID                    string     `db:"id"`
	Email                 string     `db:"email"`
	PasswordHash          string     `db:"password_hash"`
	Metadata              Metadata   `db:"metadata"`
	TokenVersion          int        `db:"token_version"`
	EmailConfirmedAt      *time.Time `db:"email_confirmed_at"`
	ConfirmTokenHash      *string    `db:"confirm_token_hash"`
	ConfirmTokenExpiresAt *time.Time `db:"confirm_token_expires_at"`
	ResetCodeHash         *string    `db:"reset_code_hash"`
	ResetCodeExpiresAt    *time.Time `db:"reset_code_expires_at"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
}

func (u *User) IsConfirmed() bool {
	return u.EmailConfirmedAt != nil
}
