package redisrepo

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tix-events/internal/domain"
	"github.com/kirinyoku/tix-events/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient connects to TEST_REDIS_ADDR (default localhost:6379) and
// skips when nothing answers.
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("skipping redis integration tests: %v", err)
	}

	t.Cleanup(func() { _ = rdb.Close() })

	return rdb
}

func TestKeys(t *testing.T) {
	id := uuid.MustParse("6f1c1c3e-7c1a-4b55-9d43-5d0d6f5b2a10")

	assert.Equal(t, "tixevents:v1:event:6f1c1c3e-7c1a-4b55-9d43-5d0d6f5b2a10", KeyEvent(id))
	assert.Equal(t, "tixevents:v1:events:changed", ChannelEventsChanged())
	assert.Equal(t, "tixevents:v1:rl:writes:user:1", KeyRateLimit("writes", "user:1"))
}

func TestCache_GetEvent(t *testing.T) {
	rdb := newTestClient(t)
	c := New(rdb)
	ctx := context.Background()

	e := domain.Event{ID: uuid.New(), Title: "Concert", Status: domain.StatusDraft}
	t.Cleanup(func() { _ = c.InvalidateEvent(ctx, e.ID) })

	var loads atomic.Int32
	load := func(context.Context) (domain.Event, error) {
		loads.Add(1)
		return e, nil
	}

	got, err := c.GetEvent(ctx, e.ID, time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)

	got, err = c.GetEvent(ctx, e.ID, time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "Concert", got.Title)
	assert.Equal(t, int32(1), loads.Load())

	require.NoError(t, c.InvalidateEvent(ctx, e.ID))

	_, err = c.GetEvent(ctx, e.ID, time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, int32(2), loads.Load())
}

func TestCache_LoaderErrorNotCached(t *testing.T) {
	rdb := newTestClient(t)
	c := New(rdb)
	ctx := context.Background()
	id := uuid.New()

	_, err := c.GetEvent(ctx, id, time.Minute, func(context.Context) (domain.Event, error) {
		return domain.Event{}, repository.ErrNotFound
	})
	require.True(t, errors.Is(err, repository.ErrNotFound))

	n, err := rdb.Exists(ctx, KeyEvent(id)).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCache_CorruptEntryReloaded(t *testing.T) {
	rdb := newTestClient(t)
	c := New(rdb)
	ctx := context.Background()
	id := uuid.New()
	t.Cleanup(func() { _ = c.InvalidateEvent(ctx, id) })

	require.NoError(t, rdb.Set(ctx, KeyEvent(id), "{not json", time.Minute).Err())

	got, err := c.GetEvent(ctx, id, time.Minute, func(context.Context) (domain.Event, error) {
		return domain.Event{ID: id, Title: "Reloaded"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Reloaded", got.Title)
}

func TestIdempotencyStore(t *testing.T) {
	rdb := newTestClient(t)
	s := NewIdempotencyStore(rdb, time.Minute)
	ctx := context.Background()
	key := KeyIdemCreateEvent(uuid.New(), "k1")
	t.Cleanup(func() { _ = s.Abandon(ctx, key) })

	claim, err := s.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	require.Equal(t, ClaimAcquired, claim.State)

	claim, err = s.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, ClaimPending, claim.State)

	require.NoError(t, s.Complete(ctx, key, `{"id":"x"}`))

	claim, err = s.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, ClaimDone, claim.State)
	assert.JSONEq(t, `{"id":"x"}`, claim.Payload)
}

func TestIdempotencyStore_AbandonFreesKey(t *testing.T) {
	rdb := newTestClient(t)
	s := NewIdempotencyStore(rdb, time.Minute)
	ctx := context.Background()
	key := KeyIdemCreateEvent(uuid.New(), "k2")
	t.Cleanup(func() { _ = s.Abandon(ctx, key) })

	_, err := s.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.Abandon(ctx, key))

	claim, err := s.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, ClaimAcquired, claim.State)
}

func TestSlidingWindowLimiter(t *testing.T) {
	rdb := newTestClient(t)
	l := NewSlidingWindowLimiter(rdb, "test", 2, time.Minute)
	ctx := context.Background()
	suffix := "user:" + uuid.NewString()
	t.Cleanup(func() { _ = rdb.Del(ctx, KeyRateLimit("test", suffix)).Err() })

	for i := range 2 {
		d, err := l.Allow(ctx, suffix)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, int64(i+1), d.Hits)
	}

	d, err := l.Allow(ctx, suffix)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, int64(2), d.Hits)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, d.RetryAfter, time.Minute)
}

func TestEventsPubSub_RoundTrip(t *testing.T) {
	rdb := newTestClient(t)
	ps := NewEventsPubSub(rdb)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan domain.StatusChanged, 1)
	go func() {
		_ = ps.Subscribe(ctx, func(_ context.Context, change domain.StatusChanged) {
			select {
			case got <- change:
			default:
			}
		})
	}()

	want := domain.StatusChanged{
		EventID: uuid.New(),
		From:    domain.StatusDraft,
		To:      domain.StatusPublished,
		At:      time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}

	// the subscription is asynchronous; publish until it is observed
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		require.NoError(t, ps.NotifyStatusChanged(ctx, want))
		select {
		case change := <-got:
			assert.Equal(t, want.EventID, change.EventID)
			assert.Equal(t, want.To, change.To)
			return
		case <-ticker.C:
		case <-ctx.Done():
			t.Fatal("no message received")
		}
	}
}
