// AngelaMos | 2026
// entity.go

package profile

import (
	"time"
)

type Profile struct {
	ID        string    `db:"id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ProfileWithEmail joins the account email in for admin listings.
type ProfileWithEmail struct {
	Profile
	Email string `db:"email"`
}
