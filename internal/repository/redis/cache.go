package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tix-events/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache is a JSON read-through cache of single events keyed by id.
type Cache struct {
	rdb *redis.Client
	sf  singleflight.Group
}

func New(client *redis.Client) *Cache {
	return &Cache{rdb: client}
}

// GetEvent returns the cached event or calls load. Concurrent misses for the
// same id share one load. Load errors are returned as is and never cached.
func (c *Cache) GetEvent(
	ctx context.Context,
	id uuid.UUID,
	ttl time.Duration,
	load func(ctx context.Context) (domain.Event, error),
) (domain.Event, error) {
	const op = "redisrepo.Cache.GetEvent"

	key := KeyEvent(id)

	e, ok, err := c.read(ctx, key)
	if err != nil {
		return domain.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	if ok {
		return e, nil
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.write(ctx, key, loaded, ttl)
		return loaded, nil
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	return v.(domain.Event), nil
}

func (c *Cache) InvalidateEvent(ctx context.Context, id uuid.UUID) error {
	const op = "redisrepo.Cache.InvalidateEvent"

	if err := c.rdb.Del(ctx, KeyEvent(id)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// read drops entries that no longer decode so the next call reloads them.
func (c *Cache) read(ctx context.Context, key string) (domain.Event, bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Event{}, false, nil
	}
	if err != nil {
		return domain.Event{}, false, err
	}

	var e domain.Event
	if err := json.Unmarshal(b, &e); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return domain.Event{}, false, nil
	}

	return e, true, nil
}

func (c *Cache) write(ctx context.Context, key string, e domain.Event, ttl time.Duration) {
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key, b, ttl).Err()
}
