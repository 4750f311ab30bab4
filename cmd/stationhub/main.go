package main

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

	"golang.org/x/sync/errgroup"

	"github.com/stationhub/stationhub/internal/app"
	"github.com/stationhub/stationhub/internal/audit"
	"github.com/stationhub/stationhub/internal/auth"
	"github.com/stationhub/stationhub/internal/masterdata/companies"
	"github.com/stationhub/stationhub/internal/masterdata/locations"
	"github.com/stationhub/stationhub/internal/masterdata/stations"
	"github.com/stationhub/stationhub/internal/observability"
	"github.com/stationhub/stationhub/internal/platform/cache"
	"github.com/stationhub/stationhub/internal/platform/db"
	"github.com/stationhub/stationhub/internal/rbac"
	"github.com/stationhub/stationhub/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("stationhub exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	if cfg.InsecureSecret {
		logger.Warn("JWT_SECRET not set, signing tokens with the insecure development secret")
	}

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	if err := observability.RegisterPoolStats(metrics.Registerer(), func() observability.PoolStats { return pool.Stat() }); err != nil {
		return err
	}

	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return err
	}

	rbacService := rbac.NewService(rbac.NewRepository(pool), logger)
	rbacMiddleware := rbac.Middleware{Resolver: rbacService, Logger: logger, Metrics: metrics}

	if cfg.SeedOnBoot {
		if err := seed(ctx, cfg, rbacService, hasher, logger); err != nil {
			return err
		}
	}

	authService := auth.NewService(auth.NewRepository(pool), hasher, tokens, auth.NewRedisRevocations(redisClient), rbacService, logger)
	usersService := users.NewService(users.NewRepository(pool), hasher, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Pool:             pool,
		AuthHandler:      auth.NewHandler(logger, authService, rbacService),
		UsersHandler:     users.NewHandler(logger, usersService, rbacService, rbacMiddleware),
		RBACHandler:      rbac.NewHandler(logger, rbacService, rbacMiddleware),
		CompaniesHandler: companies.NewHandler(logger, companies.NewService(companies.NewRepository(pool)), rbacMiddleware),
		StationsHandler:  stations.NewHandler(logger, stations.NewService(stations.NewRepository(pool)), rbacMiddleware),
		LocationsHandler: locations.NewHandler(logger, locations.NewService(locations.NewRepository(pool)), rbacMiddleware),
		AuditHandler:     audit.NewHandler(logger, audit.NewService(audit.NewRepository(pool)), rbacMiddleware),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func seed(ctx context.Context, cfg *app.Config, svc *rbac.Service, hasher *auth.Hasher, logger *slog.Logger) error {
	hash, err := hasher.Hash(cfg.SeedAdminPassword)
	if err != nil {
		return fmt.Errorf("seed: hash admin password: %w", err)
	}
	created, err := svc.Seed(ctx, &rbac.AdminAccount{
		Username:     cfg.SeedAdminUsername,
		Email:        cfg.SeedAdminEmail,
		PasswordHash: hash,
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if created {
		logger.Info("seeded default roles, permissions and administrator", slog.String("username", cfg.SeedAdminUsername))
	}
	return nil
}
