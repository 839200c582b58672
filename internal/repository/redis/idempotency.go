package redisrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClaimState says what the caller may do with an idempotency key.
type ClaimState int

const (
	// ClaimAcquired: the caller owns the key and must Complete or Abandon it.
	ClaimAcquired ClaimState = iota
	// ClaimPending: another request holds the key.
	ClaimPending
	// ClaimDone: a response was stored; Payload holds it.
	ClaimDone
)

type Claim struct {
	State   ClaimState
	Payload string
}

const pendingMarker = "\x00pending"

// KEYS[1] key, ARGV[1] marker, ARGV[2] lock ttl (ms).
// Returns {0, ""} when claimed, {1, ""} when pending, {2, payload} when done.
var claimScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then
  redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
  return {0, ''}
end
if v == ARGV[1] then
  return {1, ''}
end
return {2, v}
`)

// IdempotencyStore remembers the response body of a create request per
// caller and Idempotency-Key.
type IdempotencyStore struct {
	rdb       *redis.Client
	resultTTL time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, resultTTL time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, resultTTL: resultTTL}
}

// Claim atomically reserves key for lockTTL unless it is already reserved or
// holds a stored response.
func (s *IdempotencyStore) Claim(ctx context.Context, key string, lockTTL time.Duration) (Claim, error) {
	const op = "redisrepo.IdempotencyStore.Claim"

	res, err := claimScript.Run(ctx, s.rdb, []string{key}, pendingMarker, lockTTL.Milliseconds()).Slice()
	if err != nil {
		return Claim{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(res) != 2 {
		return Claim{}, fmt.Errorf("%s: unexpected script reply %v", op, res)
	}

	state, _ := res[0].(int64)
	payload, _ := res[1].(string)

	return Claim{State: ClaimState(state), Payload: payload}, nil
}

// Complete replaces the reservation with the response body.
func (s *IdempotencyStore) Complete(ctx context.Context, key, payload string) error {
	const op = "redisrepo.IdempotencyStore.Complete"

	if err := s.rdb.Set(ctx, key, payload, s.resultTTL).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Abandon drops the reservation so the client may retry with the same key.
func (s *IdempotencyStore) Abandon(ctx context.Context, key string) error {
	const op = "redisrepo.IdempotencyStore.Abandon"

	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
