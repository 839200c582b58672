package redisrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hits live in a sorted set scored by server time in microseconds, so every
// instance agrees on the window regardless of its own clock.
//
// KEYS[1] window key
// ARGV[1] window length (us)
// ARGV[2] limit
// ARGV[3] unique member
//
// Returns {allowed, hits, retry_after_us}.
const slidingWindowScript = `
local t = redis.call('TIME')
local now = tonumber(t[1]) * 1000000 + tonumber(t[2])
local window = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])

redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window)
local hits = redis.call('ZCARD', KEYS[1])

if hits >= limit then
  local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
  local wait = window
  if oldest[2] then
    wait = tonumber(oldest[2]) + window - now
  end
  return {0, hits, math.max(wait, 0)}
end

redis.call('ZADD', KEYS[1], now, ARGV[3])
redis.call('PEXPIRE', KEYS[1], math.ceil(window / 1000))
return {1, hits + 1, 0}
`

var slidingWindow = redis.NewScript(slidingWindowScript)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Hits       int64
	RetryAfter time.Duration
}

// SlidingWindowLimiter caps organizer writes per caller over a rolling window.
// Rejected attempts are not recorded, so a caller that keeps retrying is let
// back in as soon as the oldest accepted hit expires.
type SlidingWindowLimiter struct {
	rdb    *redis.Client
	scope  string
	limit  int
	window time.Duration
}

func NewSlidingWindowLimiter(rdb *redis.Client, scope string, limit int, window time.Duration) *SlidingWindowLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &SlidingWindowLimiter{rdb: rdb, scope: scope, limit: limit, window: window}
}

// Allow records a hit for subject when it fits in the window.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, subject string) (Decision, error) {
	const op = "redisrepo.SlidingWindowLimiter.Allow"

	res, err := slidingWindow.Run(ctx, l.rdb,
		[]string{KeyRateLimit(l.scope, subject)},
		l.window.Microseconds(), l.limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("%s: unexpected script reply %v", op, res)
	}

	return Decision{
		Allowed:    res[0] == 1,
		Hits:       res[1],
		RetryAfter: time.Duration(res[2]) * time.Microsecond,
	}, nil
}
