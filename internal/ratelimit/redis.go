package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lua script for atomic check-and-increment. The key expires with the
// window, so counters clean themselves up.
const checkAndIncrScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local windowSec = tonumber(ARGV[2])

local current = tonumber(redis.call("GET", key) or "0")
if current >= limit then
    return {0, current}
end

local new = redis.call("INCR", key)
if new == 1 then
    redis.call("EXPIRE", key, windowSec)
end
return {1, new}
`

// RedisLimiter enforces a per-key fixed window backed by Redis.
type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a Redis-backed keyed limiter.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(checkAndIncrScript),
		limit:  limit,
		window: window,
	}
}

// Allow admits the event unless the key's window is exhausted. On
// Redis errors it admits and reports the error: an unreachable limiter
// must not take subscriptions down with it.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("subgw:edge:%s", key)
	windowSec := int(l.window / time.Second)
	if windowSec < 1 {
		windowSec = 1
	}

	result, err := l.script.Run(ctx, l.client, []string{redisKey}, l.limit, windowSec).Slice()
	if err != nil {
		log.Printf("[ratelimit] redis check failed for %s: %v", key, err)
		return true, err
	}
	if len(result) < 1 {
		return true, fmt.Errorf("ratelimit: unexpected script result %v", result)
	}

	allowed, ok := result[0].(int64)
	if !ok {
		return true, fmt.Errorf("ratelimit: unexpected script result %v", result)
	}
	return allowed == 1, nil
}
