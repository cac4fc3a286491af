package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewAuthManagerDefaults tests default configuration and the
// bootstrap admin user
func TestNewAuthManagerDefaults(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{})

	assert.Equal(t, 24*time.Hour, am.config.JWTExpiry)
	assert.Equal(t, 7*24*time.Hour, am.config.SessionExpiry)
	assert.Equal(t, 100, am.config.RateLimit)
	assert.NotEmpty(t, am.config.JWTSecret)

	admin, err := am.GetUserByUsername("admin")
	require.NoError(t, err)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", admin.ID)
	assert.Contains(t, admin.Roles, "admin")
}

// TestCreateUserWithPassword tests user creation and password validation
func TestCreateUserWithPassword(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{})

	user, err := am.CreateUserWithPassword("alice", "alice@example.com", "s3cret", []string{"user"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	assert.True(t, am.ValidatePassword(user, "s3cret"))
	assert.False(t, am.ValidatePassword(user, "wrong"))

	// Duplicate usernames are rejected
	_, err = am.CreateUserWithPassword("alice", "other@example.com", "x", []string{"user"})
	assert.Error(t, err)
}

// TestJWTRoundTrip tests token creation and validation
func TestJWTRoundTrip(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{JWTSecret: "test-secret"})

	user, err := am.CreateUserWithPassword("alice", "alice@example.com", "pw", []string{"user"})
	require.NoError(t, err)

	token, err := am.CreateJWTToken(user)
	require.NoError(t, err)

	claims, err := am.ValidateJWTToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "sql-copilot", claims.Issuer)
}

// TestValidateJWTTokenRejectsGarbage tests malformed token handling
func TestValidateJWTTokenRejectsGarbage(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{JWTSecret: "test-secret"})

	_, err := am.ValidateJWTToken("not.a.token")
	assert.Error(t, err)
}

// TestValidateJWTTokenRejectsInactiveUser verifies deactivated users are
// locked out even with a valid token
func TestValidateJWTTokenRejectsInactiveUser(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{JWTSecret: "test-secret"})

	user, err := am.CreateUserWithPassword("alice", "alice@example.com", "pw", []string{"user"})
	require.NoError(t, err)

	token, err := am.CreateJWTToken(user)
	require.NoError(t, err)

	user.Active = false
	_, err = am.ValidateJWTToken(token)
	assert.Error(t, err)
}

// TestAPIKeyLifecycle tests create, validate, list, revoke
func TestAPIKeyLifecycle(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{})

	user, err := am.CreateUserWithPassword("alice", "alice@example.com", "pw", []string{"user"})
	require.NoError(t, err)

	apiKey, err := am.CreateAPIKey(user.ID, "ci", []string{"query"}, 50, time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(apiKey.Key, "sqlc_"))

	gotUser, gotKey, err := am.ValidateAPIKey(apiKey.Key)
	require.NoError(t, err)
	assert.Equal(t, user.ID, gotUser.ID)
	assert.Equal(t, apiKey.ID, gotKey.ID)
	assert.False(t, gotKey.LastUsedAt.IsZero())

	// Listing never exposes the plaintext
	keys, err := am.ListAPIKeys(user.ID)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Empty(t, keys[0].Key)

	require.NoError(t, am.RevokeAPIKey(apiKey.ID))
	_, _, err = am.ValidateAPIKey(apiKey.Key)
	assert.Error(t, err)
}

// TestValidateAPIKeyExpired tests expiry enforcement
func TestValidateAPIKeyExpired(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{})

	user, err := am.CreateUserWithPassword("alice", "alice@example.com", "pw", []string{"user"})
	require.NoError(t, err)

	apiKey, err := am.CreateAPIKey(user.ID, "ci", nil, 50, -time.Hour)
	require.NoError(t, err)

	_, _, err = am.ValidateAPIKey(apiKey.Key)
	assert.Error(t, err)
}

// TestCleanupExpired tests removal of expired API keys
func TestCleanupExpired(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{})

	user, err := am.CreateUserWithPassword("alice", "alice@example.com", "pw", []string{"user"})
	require.NoError(t, err)

	_, err = am.CreateAPIKey(user.ID, "stale", nil, 50, -time.Hour)
	require.NoError(t, err)
	fresh, err := am.CreateAPIKey(user.ID, "fresh", nil, 50, time.Hour)
	require.NoError(t, err)

	am.CleanupExpired()

	keys, err := am.ListAPIKeys(user.ID)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, fresh.ID, keys[0].ID)
}

// TestSessionLifecycle tests Redis-backed session create/validate/revoke
func TestSessionLifecycle(t *testing.T) {
	am := NewTestAuthManager(AuthConfig{})

	user, err := am.CreateUserWithPassword("alice", "alice@example.com", "pw", []string{"user"})
	require.NoError(t, err)

	sessionID, err := am.CreateSession(user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	gotUser, err := am.ValidateSession(sessionID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, gotUser.ID)

	require.NoError(t, am.RevokeSession(sessionID))
	_, err = am.ValidateSession(sessionID)
	assert.Error(t, err)
}
