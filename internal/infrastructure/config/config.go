// Package config loads process settings from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	LockLocal = "local"
	LockRedis = "redis"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	StoreDriver string `env:"STORE_DRIVER, default=mongo"`
	LockDriver  string `env:"LOCK_DRIVER,  default=local"`

	Auth     AuthConfig
	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Rental   RentalConfig
	HTTP     HTTPConfig
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	TokenTTL   time.Duration `env:"JWT_TTL,     default=24h"`
	BcryptCost int           `env:"BCRYPT_COST, default=10"`

	// Optional bootstrap administrator, created at startup when both are set.
	AdminName     string `env:"ADMIN_NAME, default=Admin"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=car_rental"`
}

type PostgresConfig struct {
	URL string `env:"DATABASE_URL"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type RentalConfig struct {
	LockTTL         time.Duration `env:"RENTAL_LOCK_TTL,   default=10s"`
	DefaultPageSize int           `env:"PAGE_SIZE_DEFAULT, default=10"`
}

type HTTPConfig struct {
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS,   default=5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST, default=10"`
}

// Load reads configuration from environment variables using go-envconfig
// and validates it.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the process cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}

	if (c.Auth.AdminEmail == "") != (c.Auth.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}

	switch c.StoreDriver {
	case StoreMemory, StoreMongo:
	case StorePostgres:
		if c.Postgres.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.LockDriver {
	case LockLocal, LockRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown LOCK_DRIVER %q", c.LockDriver))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Warnings lists settings that start but are unsafe beyond one replica.
func (c *Config) Warnings() []string {
	var out []string
	if c.StoreDriver == StoreMongo && c.LockDriver == LockLocal {
		out = append(out, "STORE_DRIVER=mongo with LOCK_DRIVER=local only prevents double bookings within one process; use LOCK_DRIVER=redis when running more than one replica")
	}
	if c.StoreDriver == StoreMemory && c.IsProduction() {
		out = append(out, "STORE_DRIVER=memory loses all data on restart")
	}
	return out
}

// SeedAdmin reports whether a bootstrap administrator is configured.
func (c *Config) SeedAdmin() bool {
	return c.Auth.AdminEmail != "" && c.Auth.AdminPassword != ""
}

// IsProduction reports whether logs should be emitted as plain JSON.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
