package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	minSecretLen = 32
)

type Config struct {
	Server    ServerConfig
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	Storage   StorageConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	AMQP      AMQPConfig
	Auth      AuthConfig
	Lifecycle LifecycleConfig
}

type ServerConfig struct {
	Host         string        `env:"SERVER_HOST"          envDefault:"localhost"`
	Port         int           `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT"  envDefault:"10s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
}

type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
}

type PostgresConfig struct {
	User     string `env:"POSTGRES_USER"`
	Password string `env:"POSTGRES_PASSWORD"`
	Name     string `env:"POSTGRES_DB"`
	Host     string `env:"POSTGRES_HOST"      envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT"      envDefault:"5432"`
	SSLMode  string `env:"POSTGRES_SSLMODE"   envDefault:"disable"`
	MaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	Migrate  bool   `env:"POSTGRES_MIGRATE"   envDefault:"true"`
}

// RedisConfig is optional; an empty Addr disables caching, pub/sub, rate
// limiting and idempotency.
type RedisConfig struct {
	Addr      string        `env:"REDIS_ADDR"`
	Password  string        `env:"REDIS_PASSWORD"`
	DB        int           `env:"REDIS_DB"         envDefault:"0"`
	PoolSize  int           `env:"REDIS_POOL_SIZE"  envDefault:"0"`
	OpTimeout time.Duration `env:"REDIS_OP_TIMEOUT" envDefault:"500ms"`
}

type AMQPConfig struct {
	URL      string `env:"AMQP_URL"`
	Exchange string `env:"AMQP_EXCHANGE" envDefault:"tixevents.events"`
}

type AuthConfig struct {
	Secret string `env:"JWT_SECRET"`
	Issuer string `env:"JWT_ISSUER"`
}

type LifecycleConfig struct {
	PublishLeadMonths  int           `env:"PUBLISH_LEAD_MONTHS"   envDefault:"3"`
	PublishWorkers     int           `env:"PUBLISH_WORKERS"       envDefault:"4"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	EventCacheTTL      time.Duration `env:"EVENT_CACHE_TTL"       envDefault:"60s"`
	IdempotencyTTL     time.Duration `env:"IDEMPOTENCY_TTL"       envDefault:"2h"`
}

// New loads .env when present, then parses the process environment.
func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Postgres.User == "" {
			return fmt.Errorf("missing POSTGRES_USER")
		}
		if c.Postgres.Password == "" {
			return fmt.Errorf("missing POSTGRES_PASSWORD")
		}
		if c.Postgres.Name == "" {
			return fmt.Errorf("missing POSTGRES_DB")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if len(c.Auth.Secret) < minSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLen)
	}

	if c.Lifecycle.PublishLeadMonths < 0 {
		return fmt.Errorf("invalid PUBLISH_LEAD_MONTHS %d", c.Lifecycle.PublishLeadMonths)
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// ParseLevel maps LOG_LEVEL to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return lvl, nil
}
