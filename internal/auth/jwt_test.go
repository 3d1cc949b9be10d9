// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/taskflow/internal/config"
	"github.com/carterperez-dev/taskflow/internal/core"
)

func testJWTManager(t *testing.T, accessExpire time.Duration) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "jwt.pem")
	publicPath := filepath.Join(dir, "jwt.pub.pem")

	require.NoError(t, GenerateKeyPair(privatePath, publicPath))

	manager, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:     privatePath,
		PublicKeyPath:      publicPath,
		AccessTokenExpire:  accessExpire,
		RefreshTokenExpire: 7 * 24 * time.Hour,
		Issuer:             "taskflow",
		Audience:           "taskflow-api",
	})
	require.NoError(t, err)

	return manager
}

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := testJWTManager(t, 15*time.Minute)

	token, err := manager.CreateAccessToken(AccessTokenClaims{
		UserID:       "u1",
		Role:         "admin",
		TokenVersion: 3,
	})
	require.NoError(t, err)

	claims, err := manager.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.NotEmpty(t, claims.JTI)
	assert.Greater(t, claims.ExpiresAt, time.Now().Unix())
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	manager := testJWTManager(t, -time.Minute)

	token, err := manager.CreateAccessToken(AccessTokenClaims{
		UserID: "u1",
		Role:   "user",
	})
	require.NoError(t, err)

	_, err = manager.VerifyAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	manager := testJWTManager(t, 15*time.Minute)

	_, err := manager.VerifyAccessToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyRejectsForeignIssuer(t *testing.T) {
	issuing := testJWTManager(t, 15*time.Minute)
	verifying := testJWTManager(t, 15*time.Minute)

	token, err := issuing.CreateAccessToken(AccessTokenClaims{
		UserID: "u1",
		Role:   "user",
	})
	require.NoError(t, err)

	// Different key pair entirely; signature check fails.
	_, err = verifying.VerifyAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestCreateRefreshTokenGeneratesFamily(t *testing.T) {
	manager := testJWTManager(t, 15*time.Minute)

	first, err := manager.CreateRefreshToken("u1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, first.Token)
	assert.NotEmpty(t, first.FamilyID)
	assert.True(t, manager.VerifyRefreshTokenHash(first.Token, first.Hash))

	second, err := manager.CreateRefreshToken("u1", first.FamilyID)
	require.NoError(t, err)
	assert.Equal(t, first.FamilyID, second.FamilyID, "rotation keeps the family")
	assert.NotEqual(t, first.Token, second.Token)
}
