// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/libro/internal/platform/constants"
	"github.com/taibuivan/libro/internal/platform/sec"
)

// RedisStore implements [Store] using Redis keys with a TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-backed [Store].
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// redisKey never embeds the raw cookie value.
func redisKey(key string) string {
	return constants.RedisPrefixSession + sec.HashToken(key)
}

/*
Load retrieves the session stored under key.

Returns:
  - *Session: the stored session
  - error: [ErrNoSession] when the key is absent or expired
*/
func (repository *RedisStore) Load(ctx context.Context, key string) (*Session, error) {
	payload, err := repository.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("redis_session_decode_failed: %w", err)
	}

	return &session, nil
}

// Save stores session under key; Redis expires it after ttl.
func (repository *RedisStore) Save(ctx context.Context, key string, session *Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis_session_encode_failed: %w", err)
	}

	if err := repository.client.Set(ctx, redisKey(key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}

	return nil
}

// Delete removes the session under key.
func (repository *RedisStore) Delete(ctx context.Context, key string) error {
	if err := repository.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}
