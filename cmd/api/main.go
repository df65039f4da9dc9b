package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"

	"github.com/storefront/ecommerce-api/internal/api"
	"github.com/storefront/ecommerce-api/internal/core/domain"
	"github.com/storefront/ecommerce-api/internal/core/ports"
	"github.com/storefront/ecommerce-api/internal/core/service"
	mongostore "github.com/storefront/ecommerce-api/internal/infrastructure/db/mongo"
	redisstore "github.com/storefront/ecommerce-api/internal/infrastructure/db/redis"
	"github.com/storefront/ecommerce-api/internal/infrastructure/queue"
	"github.com/storefront/ecommerce-api/internal/pkg/config"
	"github.com/storefront/ecommerce-api/pkg/logger"
)

const (
	serviceName     = "ecommerce-api"
	shutdownTimeout = 15 * time.Second
)

type accountServices struct {
	customers ports.AccountService
	staff     ports.AccountService
}

func main() {
	fx.New(
		fx.Provide(
			context.Background,
			config.Load,
			newLogger,
			newMongo,
			newRedis,
			newTokenService,
			newDispatcher,
			newAccountServices,
			newRouter,
		),
		fx.Invoke(startServer),
	).Run()
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})
}

func newMongo(ctx context.Context, lc fx.Lifecycle, cfg *config.Config, log zerolog.Logger) (*mongo.Database, error) {
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("disconnecting from mongodb")
			return client.Disconnect(ctx)
		},
	})
	return db, nil
}

// newRedis returns a nil client when REDIS_ADDR is unset; login throttling is
// then disabled.
func newRedis(ctx context.Context, lc fx.Lifecycle, cfg *config.Config, log zerolog.Logger) (*goredis.Client, error) {
	if cfg.Redis.Addr == "" {
		log.Warn().Msg("REDIS_ADDR not set, login throttling disabled")
		return nil, nil
	}

	client, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return nil, err
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return client.Close() },
	})
	return client, nil
}

func newTokenService(cfg *config.Config) (*service.TokenService, error) {
	return service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
}

func newDispatcher(lc fx.Lifecycle, cfg *config.Config, db *mongo.Database, log zerolog.Logger) *queue.Dispatcher {
	d := queue.NewDispatcher(cfg.Audit.Workers, mongostore.NewEventRepository(db), log.With().Str("component", "audit").Logger())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			d.Start()
			return nil
		},
		OnStop: d.Stop,
	})
	return d
}

func newAccountServices(
	ctx context.Context,
	cfg *config.Config,
	db *mongo.Database,
	rdb *goredis.Client,
	tokens *service.TokenService,
	dispatcher *queue.Dispatcher,
	log zerolog.Logger,
) (accountServices, error) {
	hasher := service.NewBcryptHasher(cfg.BcryptCost)

	opts := []service.Option{service.WithEventRecorder(dispatcher)}
	if rdb != nil {
		opts = append(opts, service.WithLoginLimiter(
			redisstore.NewLoginLimiter(rdb, cfg.Login.MaxAttempts, cfg.Login.Lockout),
		))
	}

	build := func(kind domain.Kind) (ports.AccountService, error) {
		repo := mongostore.NewAccountRepository(db, kind)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return service.NewAccountService(kind, repo, hasher, tokens, log, opts...), nil
	}

	customers, err := build(domain.KindCustomer)
	if err != nil {
		return accountServices{}, err
	}
	staff, err := build(domain.KindStaff)
	if err != nil {
		return accountServices{}, err
	}
	return accountServices{customers: customers, staff: staff}, nil
}

func newRouter(
	cfg *config.Config,
	log zerolog.Logger,
	db *mongo.Database,
	rdb *goredis.Client,
	svcs accountServices,
	tokens *service.TokenService,
) *echo.Echo {
	return api.NewRouter(api.Dependencies{
		Logger:         log,
		Customers:      svcs.customers,
		Staff:          svcs.staff,
		Verifier:       tokens,
		DB:             db,
		Redis:          rdb,
		RequestTimeout: cfg.RequestTimeout,
	})
}

func startServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg *config.Config, e *echo.Echo, log zerolog.Logger) {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + 2*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info().Str("addr", srv.Addr).Msg("http server listening")
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error().Err(err).Msg("http server stopped")
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("shutting down http server")
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
