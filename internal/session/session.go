// Package session stores authenticated user sessions in Redis with a
// sliding expiry.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	sessionPrefix = "session:"
	sessionIDLen  = 32
)

// Session represents user session data
type Session struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	LastSeen  time.Time `json:"last_seen"`
}

// Manager handles session storage and retrieval
type Manager struct {
	redis  *redis.Client
	expiry time.Duration
}

// NewManager creates a new session manager
func NewManager(redisClient *redis.Client, expiry time.Duration) *Manager {
	return &Manager{
		redis:  redisClient,
		expiry: expiry,
	}
}

// Create creates a new session and returns the session ID
func (m *Manager) Create(ctx context.Context, userID, username, token string, roles []string) (string, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	session := Session{
		UserID:    userID,
		Username:  username,
		Roles:     roles,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(m.expiry),
		LastSeen:  now,
	}

	if err := m.write(ctx, sessionID, &session); err != nil {
		return "", err
	}

	return sessionID, nil
}

// Get retrieves a session by ID. A hit slides the expiry forward so active
// users are not logged out mid-conversation.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	key := sessionPrefix + sessionID
	data, err := m.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		m.Delete(ctx, sessionID)
		return nil, fmt.Errorf("session expired")
	}

	now := time.Now()
	session.LastSeen = now
	session.ExpiresAt = now.Add(m.expiry)
	if err := m.write(ctx, sessionID, &session); err != nil {
		// Serving the session matters more than sliding its expiry
		return &session, nil
	}

	return &session, nil
}

// Delete removes a session
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	key := sessionPrefix + sessionID
	return m.redis.Del(ctx, key).Err()
}

func (m *Manager) write(ctx context.Context, sessionID string, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	key := sessionPrefix + sessionID
	if err := m.redis.Set(ctx, key, data, m.expiry).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// generateSessionID generates a cryptographically secure random session ID
func generateSessionID() (string, error) {
	b := make([]byte, sessionIDLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
