// Package ratelimit provides keyed admission control for the HTTP
// edge: one counter per client key (IP) per window, shared across
// gateway instances when Redis is available. It is separate from the
// per-form submission window owned by each subscriber.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyedLimiter admits or rejects an event for a client key.
type KeyedLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// New selects the best available backend: Redis when a client is
// provided (shared limits across hosts), otherwise in-memory.
func New(redisClient *redis.Client, limit int, window time.Duration) KeyedLimiter {
	if redisClient != nil {
		return NewRedisLimiter(redisClient, limit, window)
	}
	return NewMemoryLimiter(limit, window)
}
