package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	userKeyPrefix    = "user_sessions:"
)

// RedisStore implements Store on Redis. Session records are stored as JSON
// under a TTL'd key, so Redis itself evicts expired sessions; a per-user set
// of tokens supports DeleteByUserID.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Create stores a new session with a TTL matching its expiry.
func (r *RedisStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return ErrInvalidSession
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	userKey := userKeyPrefix + session.UserID.String()

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+session.Token, data, ttl)
	pipe.SAdd(ctx, userKey, session.Token)
	// The user set only needs to outlive the longest-lived session in it.
	pipe.Expire(ctx, userKey, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// GetByToken retrieves a session by token. Redis evicts expired keys, so a
// missing key normally means not found; the stored expiry is still checked
// at read time to close the eviction lag window.
func (r *RedisStore) GetByToken(ctx context.Context, token string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if session.IsExpired() {
		_ = r.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// Delete revokes a session. Deleting an absent token is a no-op.
func (r *RedisStore) Delete(ctx context.Context, token string) error {
	data, err := r.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to get session for delete: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+token)

	var session Session
	if err := json.Unmarshal(data, &session); err == nil {
		pipe.SRem(ctx, userKeyPrefix+session.UserID.String(), token)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: Redis expires session keys natively.
func (r *RedisStore) DeleteExpired(ctx context.Context) error {
	return nil
}

// DeleteByUserID revokes every session owned by the user.
func (r *RedisStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	userKey := userKeyPrefix + userID.String()

	tokens, err := r.client.SMembers(ctx, userKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to list user sessions: %w", err)
	}

	pipe := r.client.TxPipeline()
	for _, token := range tokens {
		pipe.Del(ctx, sessionKeyPrefix+token)
	}
	pipe.Del(ctx, userKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
