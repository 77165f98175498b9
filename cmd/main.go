package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AnthoniusHendriyanto/session-auth/config"
	"github.com/AnthoniusHendriyanto/session-auth/db"
	"github.com/AnthoniusHendriyanto/session-auth/internal/auth/handler"
	repo "github.com/AnthoniusHendriyanto/session-auth/internal/auth/repository/postgres"
	"github.com/AnthoniusHendriyanto/session-auth/internal/auth/service"
	"github.com/AnthoniusHendriyanto/session-auth/internal/logging"
	"github.com/AnthoniusHendriyanto/session-auth/internal/ratelimit"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server stopped", "error", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	dbPool, err := db.NewPostgresPool(ctx, cfg.DBURL, cfg.DBMaxConns)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	if err := db.Migrate(ctx, dbPool); err != nil {
		return err
	}

	var limiterStorage fiber.Storage
	if cfg.RedisURL != "" {
		storage, err := ratelimit.NewRedisStorageFromURL(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer storage.Close()
		limiterStorage = storage
	}

	accountRepo := repo.NewPostgresRepository(dbPool)
	tokenService := service.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessExpiryMin, cfg.RefreshExpiryMin)
	hasher := service.NewBcryptHasher(cfg.SaltRounds)
	userService := service.NewUserService(accountRepo, tokenService, hasher, log.With("component", "user_service"))
	authHandler := handler.NewAuthHandler(userService, tokenService)
	healthHandler := handler.NewHealthHandler(dbPool, log)

	window := time.Duration(cfg.RateLimitWindowMin) * time.Minute
	mw := handler.Middleware{
		Strict:       ratelimit.New("strict", cfg.StrictRateLimit, window, limiterStorage),
		API:          ratelimit.New("api", cfg.APIRateLimit, window, limiterStorage),
		AllowOrigins: cfg.CORSAllowOrigins,
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: cfg.Env == "production"})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	handler.RegisterRoutes(app, authHandler, healthHandler, mw)

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "port", cfg.Port, "env", cfg.Env)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info(context.Background(), "shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	}
}
