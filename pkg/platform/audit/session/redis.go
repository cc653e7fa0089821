package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "audit:session:"

// RedisRegistry shares session ids between processes. The first writer wins
// through SETNX; the key's TTL slides on every lookup.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// RedisOption configures a RedisRegistry.
type RedisOption func(*RedisRegistry)

func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(r *RedisRegistry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func NewRedisRegistry(client *redis.Client, opts ...RedisOption) *RedisRegistry {
	r := &RedisRegistry{
		client: client,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *RedisRegistry) SessionID(ctx context.Context, key string) (string, error) {
	redisKey := sessionKeyPrefix + key
	candidate := NewID(r.now())

	created, err := r.client.SetNX(ctx, redisKey, candidate, r.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("claim session id: %w", err)
	}
	if created {
		return candidate, nil
	}

	id, err := r.client.Get(ctx, redisKey).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		if err := r.client.Set(ctx, redisKey, candidate, r.ttl).Err(); err != nil {
			return "", fmt.Errorf("store session id: %w", err)
		}
		return candidate, nil
	}
	if err != nil {
		return "", fmt.Errorf("read session id: %w", err)
	}
	if err := r.client.Expire(ctx, redisKey, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("refresh session ttl: %w", err)
	}
	return id, nil
}

func (r *RedisRegistry) Forget(ctx context.Context, key string) error {
	return r.client.Del(ctx, sessionKeyPrefix+key).Err()
}
