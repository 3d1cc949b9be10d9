// AngelaMos | 2026
// mapper.go

// Package session translates the backend's user representation into the
// application's User shape. Mapping is pure: no I/O, and identical inputs
// always produce identical output, which lets callers skip state updates
// when nothing changed.
package session

import (
	"net/url"
	"strings"

	"github.com/carterperez-dev/taskflow/internal/client/backend"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	AvatarURL string `json:"avatarUrl"`
	Role      string `json:"role"`
}

// MapRemoteUser builds a User from the remote account plus an optional
// profile row. Name and role prefer the profile, then the metadata bag,
// then defaults. A missing avatar is derived from the full name.
func MapRemoteUser(remote *backend.RemoteUser, profile *backend.ProfileRow) User {
	u := User{
		ID:    remote.ID,
		Email: remote.Email,
	}

	if profile != nil {
		u.FirstName = profile.FirstName
		u.LastName = profile.LastName
		u.Role = profile.Role
	}

	if u.FirstName == "" {
		u.FirstName = metaString(remote.Metadata, "first_name")
	}
	if u.LastName == "" {
		u.LastName = metaString(remote.Metadata, "last_name")
	}
	if u.Role == "" {
		u.Role = metaString(remote.Metadata, "role")
	}
	if u.Role == "" {
		u.Role = RoleUser
	}

	u.AvatarURL = metaString(remote.Metadata, "avatar_url")
	if u.AvatarURL == "" {
		u.AvatarURL = AvatarURL(u.FirstName, u.LastName)
	}

	return u
}

// AvatarURL derives a generated-avatar URL from the full name. The same
// name always yields the same URL.
func AvatarURL(firstName, lastName string) string {
	name := strings.TrimSpace(firstName + " " + lastName)
	return "https://ui-avatars.com/api/?name=" +
		url.QueryEscape(name) + "&background=random"
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}
