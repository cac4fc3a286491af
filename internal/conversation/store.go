// Package conversation persists per-user conversation history in a
// key-value store. Store faults degrade to empty history on read and are
// logged-and-swallowed on write; the pipeline never fails on them.
package conversation

import (
	"context"
	"encoding/json"

	goredis "github.com/go-redis/redis/v8"

	"github.com/seanankenbruck/sql-copilot/internal/observability"
)

const keyPrefix = "conversation:"

// Turn is one request/response pair: the free-text input (query or
// feedback) and the SQL it produced. Ordering is append-only,
// most-recent-last.
type Turn struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Store reads and writes per-user conversation history. Concurrent writers
// for the same user race with last-writer-wins semantics; callers must not
// rely on cross-request locking.
type Store interface {
	// Get returns the history for a user, empty on miss or fault
	Get(ctx context.Context, userID string) []Turn
	// Set replaces the history for a user; faults are logged, not returned
	Set(ctx context.Context, userID string, turns []Turn)
}

// RedisStore is the Redis-backed Store implementation
type RedisStore struct {
	client *goredis.Client
	logger *observability.Logger
}

// NewRedisStore creates a conversation store on the given Redis client
func NewRedisStore(client *goredis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		logger: observability.NewLogger("conversation-store"),
	}
}

// Get loads the conversation history for a user. A missing key, an
// unreachable store, or a corrupt payload all yield empty history.
func (s *RedisStore) Get(ctx context.Context, userID string) []Turn {
	data, err := s.client.Get(ctx, keyPrefix+userID).Result()
	if err == goredis.Nil {
		return nil
	}
	if err != nil {
		s.logger.Warn(ctx, "Failed to load conversation history", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil
	}

	var turns []Turn
	if err := json.Unmarshal([]byte(data), &turns); err != nil {
		s.logger.Warn(ctx, "Discarding corrupt conversation history", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil
	}
	return turns
}

// Set stores the conversation history for a user, best effort
func (s *RedisStore) Set(ctx context.Context, userID string, turns []Turn) {
	data, err := json.Marshal(turns)
	if err != nil {
		s.logger.Error(ctx, "Failed to marshal conversation history", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	if err := s.client.Set(ctx, keyPrefix+userID, data, 0).Err(); err != nil {
		s.logger.Error(ctx, "Failed to persist conversation history", err, map[string]interface{}{
			"user_id": userID,
			"turns":   len(turns),
		})
	}
}

// Ping checks store reachability, for health reporting
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
