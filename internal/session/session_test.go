package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, expiry time.Duration) (*Manager, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewManager(rdb, expiry), mr
}

// TestSessionRoundTrip tests creating and retrieving a session
func TestSessionRoundTrip(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	ctx := context.Background()

	sessionID, err := m.Create(ctx, "user-1", "alice", "jwt-token", []string{"user"})
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	sess, err := m.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sess.UserID)
	assert.Equal(t, "alice", sess.Username)
	assert.Equal(t, "jwt-token", sess.Token)
	assert.Equal(t, []string{"user"}, sess.Roles)
}

// TestSessionNotFound tests lookup of an unknown session ID
func TestSessionNotFound(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)

	_, err := m.Get(context.Background(), "no-such-session")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")
}

// TestSessionSlidingExpiry tests that each Get pushes ExpiresAt forward
func TestSessionSlidingExpiry(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	ctx := context.Background()

	sessionID, err := m.Create(ctx, "user-1", "alice", "tok", nil)
	require.NoError(t, err)

	first, err := m.Get(ctx, sessionID)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	second, err := m.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.True(t, second.ExpiresAt.After(first.ExpiresAt))
	assert.True(t, second.LastSeen.After(first.LastSeen))
}

// TestSessionExpired tests that an expired session is rejected and removed
func TestSessionExpired(t *testing.T) {
	m, mr := newTestManager(t, 50*time.Millisecond)
	ctx := context.Background()

	sessionID, err := m.Create(ctx, "user-1", "alice", "tok", nil)
	require.NoError(t, err)

	// Move past the stored ExpiresAt without relying on Redis TTL
	time.Sleep(60 * time.Millisecond)

	_, err = m.Get(ctx, sessionID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
	assert.False(t, mr.Exists(sessionPrefix+sessionID))
}

// TestSessionDelete tests explicit logout
func TestSessionDelete(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	ctx := context.Background()

	sessionID, err := m.Create(ctx, "user-1", "alice", "tok", nil)
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, sessionID))

	_, err = m.Get(ctx, sessionID)
	assert.Error(t, err)
}

// TestSessionIDsAreUnique tests that generated IDs do not collide
func TestSessionIDsAreUnique(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id, err := m.Create(ctx, "user-1", "alice", "tok", nil)
		require.NoError(t, err)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
