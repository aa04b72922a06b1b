// @title                       BCR Car Rental API
// @version                     1.0
// @description                 Car catalog, identity and rental booking service.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	_ "github.com/bcr-rental/car-rental-api/docs"
	"github.com/bcr-rental/car-rental-api/internal/api"
	"github.com/bcr-rental/car-rental-api/internal/api/handler"
	"github.com/bcr-rental/car-rental-api/internal/api/metrics"
	"github.com/bcr-rental/car-rental-api/internal/core/pagination"
	"github.com/bcr-rental/car-rental-api/internal/core/ports"
	"github.com/bcr-rental/car-rental-api/internal/core/service"
	"github.com/bcr-rental/car-rental-api/internal/infrastructure/config"
	"github.com/bcr-rental/car-rental-api/internal/infrastructure/db/memory"
	"github.com/bcr-rental/car-rental-api/internal/infrastructure/db/mongo"
	"github.com/bcr-rental/car-rental-api/internal/infrastructure/db/postgres"
	"github.com/bcr-rental/car-rental-api/internal/infrastructure/db/redis"
	"github.com/bcr-rental/car-rental-api/internal/infrastructure/lock"
	"github.com/bcr-rental/car-rental-api/internal/infrastructure/security"
	"github.com/bcr-rental/car-rental-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// stores holds the adapters selected by STORE_DRIVER.
type stores struct {
	users   ports.UserRepository
	cars    ports.CarRepository
	rentals ports.RentalLedger
	checks  []handler.ReadinessCheck
	closers []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "car-rental-api",
	})

	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	locker, err := openLocker(ctx, cfg, st)
	if err != nil {
		return err
	}

	tokens := security.NewJWTTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	pages := pagination.Policy{DefaultPageSize: cfg.Rental.DefaultPageSize, MaxPageSize: pagination.MaxPageSize}

	authService := service.NewAuthService(st.users, security.NewBcryptHasher(cfg.Auth.BcryptCost), tokens, logger.Named("auth"))
	carService := service.NewCarService(st.cars, pages, logger.Named("catalog"))
	rentalService := service.NewRentalService(st.cars, st.rentals, metrics.InstrumentLocker(locker), pages, logger.Named("rental"))

	if cfg.SeedAdmin() {
		admin, err := authService.EnsureAdmin(ctx, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		log.Info().Str("user_id", admin.ID).Msg("admin account ready")
	}

	e := api.NewRouter(api.Deps{
		Auth:           authService,
		Cars:           carService,
		Rentals:        rentalService,
		Tokens:         tokens,
		Logger:         logger.Named("http"),
		Checks:         st.checks,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("store", cfg.StoreDriver).
			Str("lock", cfg.LockDriver).
			Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn().Msg("using in-memory store; data is lost on restart")
		mem := memory.NewStore()
		return &stores{users: mem.Users, cars: mem.Cars, rentals: mem.Rentals}, nil

	case config.StoreMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
		return &stores{
			users:   mongo.NewUserRepository(db),
			cars:    mongo.NewCarRepository(db),
			rentals: mongo.NewRentalLedger(db),
			checks: []handler.ReadinessCheck{{
				Name: "mongodb",
				Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) },
			}},
			closers: []func(){func() { _ = client.Disconnect(context.Background()) }},
		}, nil

	case config.StorePostgres:
		pool, err := postgres.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("connected to postgres")
		return &stores{
			users:   postgres.NewUserRepository(pool),
			cars:    postgres.NewCarRepository(pool),
			rentals: postgres.NewRentalLedger(pool),
			checks:  []handler.ReadinessCheck{{Name: "postgres", Ping: pool.Ping}},
			closers: []func(){pool.Close},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// openLocker returns the per-car lock. The redis client is registered on st
// for readiness and shutdown.
func openLocker(ctx context.Context, cfg *config.Config, st *stores) (ports.CarLocker, error) {
	if cfg.LockDriver != config.LockRedis {
		return lock.NewKeyed(), nil
	}

	client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return nil, err
	}
	st.checks = append(st.checks, handler.ReadinessCheck{
		Name: "redis",
		Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
	})
	st.closers = append(st.closers, func() { _ = client.Close() })
	return redis.NewCarLock(client, cfg.Rental.LockTTL), nil
}
