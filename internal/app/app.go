package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/kirinyoku/tix-events/internal/auth"
	"github.com/kirinyoku/tix-events/internal/broker"
	"github.com/kirinyoku/tix-events/internal/clock"
	"github.com/kirinyoku/tix-events/internal/config"
	"github.com/kirinyoku/tix-events/internal/domain"
	"github.com/kirinyoku/tix-events/internal/postgres"
	"github.com/kirinyoku/tix-events/internal/redis"
	"github.com/kirinyoku/tix-events/internal/repository/memory"
	postgresrepo "github.com/kirinyoku/tix-events/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/tix-events/internal/repository/redis"
	"github.com/kirinyoku/tix-events/internal/service/lifecycle"
	"github.com/kirinyoku/tix-events/internal/service/ports"
	httpgin "github.com/kirinyoku/tix-events/internal/transport/http/gin"
	"github.com/kirinyoku/tix-events/internal/uow"
	"github.com/kirinyoku/tix-events/internal/worker"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	pubsub     *redisrepo.EventsPubSub
	cache      *redisrepo.Cache
	closers    []func() error
}

// New wires storage, optional redis and AMQP collaborators, the lifecycle
// engine and the HTTP router. Resources opened before a failure are closed.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	events, unit, ready, err := a.initStorage(ctx)
	if err != nil {
		return nil, err
	}

	var (
		opts        []lifecycle.Option
		notifiers   []ports.StatusNotifier
		limiter     httpgin.RateLimiter
		idempotency httpgin.IdempotencyStore
	)

	if cfg.Redis.Addr != "" {
		rdb, err := redis.New(ctx, redis.Config{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			PoolSize:  cfg.Redis.PoolSize,
			OpTimeout: cfg.Redis.OpTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)

		a.cache = redisrepo.New(rdb)
		a.pubsub = redisrepo.NewEventsPubSub(rdb)
		opts = append(opts, lifecycle.WithCache(a.cache))
		notifiers = append(notifiers, a.pubsub)

		limiter = redisrepo.NewSlidingWindowLimiter(rdb, "writes", cfg.Lifecycle.RateLimitPerMinute, time.Minute)
		idempotency = redisrepo.NewIdempotencyStore(rdb, cfg.Lifecycle.IdempotencyTTL)

		ready = readyAll(ready, func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		logger.Info("redis enabled", slog.String("addr", cfg.Redis.Addr))
	}

	if cfg.AMQP.URL != "" {
		pub, err := broker.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize amqp: %w", err)
		}
		a.closers = append(a.closers, pub.Close)

		notifiers = append(notifiers, pub)
		logger.Info("amqp enabled", slog.String("exchange", cfg.AMQP.Exchange))
	}

	if len(notifiers) > 0 {
		opts = append(opts, lifecycle.WithNotifiers(notifiers...))
	}
	opts = append(opts, lifecycle.WithPublishPool(worker.NewPool(cfg.Lifecycle.PublishWorkers)))

	svc := lifecycle.New(events, unit, clock.NewSystem(), logger, lifecycle.Config{
		PublishLeadMonths: cfg.Lifecycle.PublishLeadMonths,
		EventCacheTTL:     cfg.Lifecycle.EventCacheTTL,
	}, opts...)

	verifier, err := auth.NewVerifier(auth.Config{
		Secret: []byte(cfg.Auth.Secret),
		Issuer: cfg.Auth.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	router, err := httpgin.NewRouter(httpgin.Deps{
		Events:      svc,
		Verifier:    verifier,
		Idempotency: idempotency,
		Limiter:     limiter,
		Ready:       ready,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize router: %w", err)
	}

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return a, nil
}

func (a *App) initStorage(ctx context.Context) (ports.EventStore, ports.UnitOfWork, func(context.Context) error, error) {
	switch a.cfg.Storage.Driver {
	case config.DriverMemory:
		a.logger.Warn("using in-memory storage; data is lost on restart")
		store := memory.NewEventStore()
		return store, store, nil, nil

	default:
		pool, err := postgres.New(ctx, postgres.Config{
			User:     a.cfg.Postgres.User,
			Password: a.cfg.Postgres.Password,
			Host:     a.cfg.Postgres.Host,
			Port:     a.cfg.Postgres.Port,
			Name:     a.cfg.Postgres.Name,
			SSLMode:  a.cfg.Postgres.SSLMode,
			MaxConns: a.cfg.Postgres.MaxConns,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })

		if a.cfg.Postgres.Migrate {
			if err := postgresrepo.Migrate(ctx, pool); err != nil {
				return nil, nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
			}
		}

		store := postgresrepo.NewStore(pool)
		return store.Events(), uow.NewUoW(store), store.Ping, nil
	}
}

func readyAll(checks ...func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Other instances publish their changes; drop our cached copy.
	if a.pubsub != nil && a.cache != nil {
		g.Go(func() error {
			err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, change domain.StatusChanged) {
				if err := a.cache.InvalidateEvent(ctx, change.EventID); err != nil {
					a.logger.Warn("cache invalidation from pubsub failed",
						slog.String("event_id", change.EventID.String()),
						slog.Any("error", err),
					)
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, goredis.ErrClosed) {
				return fmt.Errorf("events subscription: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("failed to close resource", slog.Any("error", err))
		}
	}
	a.closers = nil
}
