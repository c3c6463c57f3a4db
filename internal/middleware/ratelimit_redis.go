package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// tokenBucketScript refills and takes one token atomically. State is a hash of
// the fractional token count and the last refill time in milliseconds; the key
// expires once the bucket would be full again.
var tokenBucketScript = redis.NewScript(`
local burst = tonumber(ARGV[1])
local period_ms = tonumber(ARGV[2])
local now_ms = tonumber(ARGV[3])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil or ts == nil then
  tokens = burst
  ts = now_ms
end

local elapsed = now_ms - ts
if elapsed < 0 then elapsed = 0 end
tokens = math.min(burst, tokens + elapsed / period_ms)

local allowed = 0
local retry_ms = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
else
  retry_ms = math.ceil((1 - tokens) * period_ms)
end

redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'ts', tostring(now_ms))
redis.call('PEXPIRE', KEYS[1], math.ceil(burst * period_ms))
return {allowed, math.floor(tokens), retry_ms}
`)

// RedisLimiter shares token buckets between API replicas through Redis.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	period time.Duration
	burst  int
	now    func() time.Time
}

// NewRedisLimiter creates a Redis-backed limiter with the same policy as
// MemoryLimiter. Keys are namespaced with prefix.
func NewRedisLimiter(client *redis.Client, prefix string, period time.Duration, burst int) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		period: period,
		burst:  burst,
		now:    time.Now,
	}
}

// Allow consumes one token for key if one is available.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := tokenBucketScript.Run(ctx, l.client,
		[]string{l.prefix + key},
		l.burst, l.period.Milliseconds(), l.now().UnixMilli(),
	).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("run token bucket script: %w", err)
	}

	values, ok := res.([]interface{})
	if !ok || len(values) != 3 {
		return Decision{}, fmt.Errorf("unexpected token bucket reply %T", res)
	}
	allowed, _ := values[0].(int64)
	remaining, _ := values[1].(int64)
	retryMs, _ := values[2].(int64)

	return Decision{
		Allowed:    allowed == 1,
		Limit:      l.burst,
		Remaining:  int(remaining),
		RetryAfter: time.Duration(retryMs) * time.Millisecond,
	}, nil
}

// Ping checks connectivity to the backing Redis server.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
