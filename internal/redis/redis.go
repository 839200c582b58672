package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	// Addr is host:port or a redis:// URL. URL credentials win over Password.
	Addr      string
	Password  string
	DB        int
	PoolSize  int
	OpTimeout time.Duration
}

func (c Config) options() (*redis.Options, error) {
	if strings.HasPrefix(c.Addr, "redis://") || strings.HasPrefix(c.Addr, "rediss://") {
		opts, err := redis.ParseURL(c.Addr)
		if err != nil {
			return nil, err
		}
		if opts.Password == "" {
			opts.Password = c.Password
		}
		return c.tune(opts), nil
	}

	return c.tune(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	}), nil
}

func (c Config) tune(opts *redis.Options) *redis.Options {
	opts.ClientName = "tixevents"
	if c.PoolSize > 0 {
		opts.PoolSize = c.PoolSize
	}
	if c.OpTimeout > 0 {
		opts.ReadTimeout = c.OpTimeout
		opts.WriteTimeout = c.OpTimeout
	}
	return opts
}

// New connects to redis and pings it before returning.
func New(ctx context.Context, cfg Config) (*redis.Client, error) {
	const op = "redis.New"

	opts, err := cfg.options()
	if err != nil {
		return nil, fmt.Errorf("%s: parse addr: %w", op, err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return client, nil
}
