package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/sendai-ikuei-track/site-server/internal/telemetry"
)

const (
	rateLimitKeyPrefix    = "ratelimit:"
	rateLimitExpiryMargin = 10 * time.Second

	RateLimiterRedis    = "redis"
	RateLimiterMemory   = "memory"
	RateLimiterDisabled = "disabled"
)

// RateLimitDecision is the outcome of one limiter check. ResetAt is zero
// when the limiter does not know when the window rolls over.
type RateLimitDecision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RateLimiter counts events per key in a trailing window. Implementations
// never fail a request because of their own errors: a broken store allows
// the event and logs a warning.
type RateLimiter interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) RateLimitDecision
	Backend() string
}

func allowUnknown(limit int) RateLimitDecision {
	return RateLimitDecision{Allowed: true, Remaining: limit - 1}
}

// rateLimitScript is a Lua script for sliding window rate limiting.
// Times are unix milliseconds; ARGV[4] is a unique member for this event.
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

local count = redis.call('ZCARD', key)

if count >= limit then
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local resetAt = now + window
    if #oldest >= 2 then
        resetAt = tonumber(oldest[2]) + window
    end
    return {0, 0, resetAt}
end

redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window + tonumber(ARGV[5]))

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
return {1, limit - count - 1, tonumber(oldest[2]) + window}
`)

// RedisRateLimiter keeps one sorted set per key in Redis. The script runs
// atomically, so concurrent checks for the same key never over-admit.
type RedisRateLimiter struct {
	client  redis.Scripter
	timeout time.Duration
	now     func() time.Time
}

// NewRedisRateLimiter creates a limiter whose Redis round trip is bounded
// by timeout.
func NewRedisRateLimiter(client redis.Scripter, timeout time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:  client,
		timeout: timeout,
		now:     time.Now,
	}
}

func (rl *RedisRateLimiter) Backend() string {
	return RateLimiterRedis
}

// CheckLimit checks if a request is allowed under the rate limit
func (rl *RedisRateLimiter) CheckLimit(
	ctx context.Context,
	key string,
	limit int,
	window time.Duration,
) RateLimitDecision {
	if limit <= 0 {
		return RateLimitDecision{Allowed: true}
	}

	now := rl.now()
	fullKey := fmt.Sprintf("%s%s", rateLimitKeyPrefix, key)

	if rl.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rl.timeout)
		defer cancel()
	}

	result, err := rateLimitScript.Run(
		ctx,
		rl.client,
		[]string{fullKey},
		now.UnixMilli(),
		window.Milliseconds(),
		limit,
		uuid.NewString(),
		rateLimitExpiryMargin.Milliseconds(),
	).Int64Slice()

	if err != nil {
		log.Warn().
			Err(err).
			Str("key", key).
			Msg("rate limit check failed, allowing request")
		telemetry.GetMetrics().RateLimitStoreErrorsTotal.Add(ctx, 1)
		return allowUnknown(limit)
	}

	if len(result) != 3 {
		log.Warn().Str("key", key).Msg("unexpected rate limit result, allowing request")
		telemetry.GetMetrics().RateLimitStoreErrorsTotal.Add(ctx, 1)
		return allowUnknown(limit)
	}

	return RateLimitDecision{
		Allowed:   result[0] == 1,
		Remaining: int(result[1]),
		ResetAt:   time.UnixMilli(result[2]),
	}
}

// NoopRateLimiter allows everything. It stands in when no store is
// configured.
type NoopRateLimiter struct{}

func NewNoopRateLimiter() *NoopRateLimiter {
	return &NoopRateLimiter{}
}

func (NoopRateLimiter) Backend() string {
	return RateLimiterDisabled
}

func (NoopRateLimiter) CheckLimit(_ context.Context, _ string, limit int, _ time.Duration) RateLimitDecision {
	return allowUnknown(limit)
}
