// AngelaMos | 2026
// mapper_test.go

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/taskflow/internal/client/backend"
)

func TestMapRemoteUserPrefersProfile(t *testing.T) {
	remote := &backend.RemoteUser{
		ID:    "u1",
		Email: "jane@example.com",
		Metadata: map[string]any{
			"first_name": "MetaFirst",
			"last_name":  "MetaLast",
			"role":       "admin",
		},
	}
	profile := &backend.ProfileRow{
		ID:        "u1",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      "user",
	}

	u := MapRemoteUser(remote, profile)

	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, "Jane", u.FirstName)
	assert.Equal(t, "Doe", u.LastName)
	assert.Equal(t, "user", u.Role, "profile role wins over metadata role")
}

func TestMapRemoteUserFallsBackToMetadata(t *testing.T) {
	remote := &backend.RemoteUser{
		ID:    "u2",
		Email: "sam@example.com",
		Metadata: map[string]any{
			"first_name": "Sam",
			"last_name":  "Smith",
			"role":       "admin",
		},
	}

	u := MapRemoteUser(remote, nil)

	assert.Equal(t, "Sam", u.FirstName)
	assert.Equal(t, "Smith", u.LastName)
	assert.Equal(t, "admin", u.Role)
}

func TestMapRemoteUserEmptyProfileRoleFallsBackToMetadata(t *testing.T) {
	remote := &backend.RemoteUser{
		ID:    "u2",
		Email: "sam@example.com",
		Metadata: map[string]any{
			"role": "admin",
		},
	}
	profile := &backend.ProfileRow{
		ID:        "u2",
		FirstName: "Sam",
		LastName:  "Smith",
	}

	u := MapRemoteUser(remote, profile)

	assert.Equal(t, "admin", u.Role, "empty profile role defers to metadata")
}

func TestMapRemoteUserDefaults(t *testing.T) {
	remote := &backend.RemoteUser{ID: "u3", Email: "x@example.com"}

	u := MapRemoteUser(remote, nil)

	assert.Equal(t, "", u.FirstName)
	assert.Equal(t, "", u.LastName)
	assert.Equal(t, RoleUser, u.Role)
	assert.NotEmpty(t, u.AvatarURL)
}

func TestMapRemoteUserExplicitAvatarWins(t *testing.T) {
	remote := &backend.RemoteUser{
		ID:    "u4",
		Email: "y@example.com",
		Metadata: map[string]any{
			"avatar_url": "https://cdn.example.com/me.png",
		},
	}

	u := MapRemoteUser(remote, nil)

	assert.Equal(t, "https://cdn.example.com/me.png", u.AvatarURL)
}

func TestMapRemoteUserDeterministic(t *testing.T) {
	remote := &backend.RemoteUser{
		ID:    "u5",
		Email: "z@example.com",
		Metadata: map[string]any{
			"first_name": "Ada",
			"last_name":  "Lovelace",
		},
	}

	first := MapRemoteUser(remote, nil)
	second := MapRemoteUser(remote, nil)

	assert.Equal(t, first, second)
}

func TestAvatarURLDeterministic(t *testing.T) {
	a := AvatarURL("Ada", "Lovelace")
	b := AvatarURL("Ada", "Lovelace")

	assert.Equal(t, a, b)
	assert.Contains(t, a, "ui-avatars.com")
	assert.Contains(t, a, "Ada+Lovelace")
}

func TestAvatarURLEscapesName(t *testing.T) {
	u := AvatarURL("Анна", "O'Brien")
	assert.NotContains(t, u, "'")
	assert.NotContains(t, u, " ")
}
