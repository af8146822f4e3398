package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medocupa/access-backend/internal/config"
	"github.com/medocupa/access-backend/internal/database"
	"github.com/medocupa/access-backend/internal/handler"
	"github.com/medocupa/access-backend/internal/logger"
	"github.com/medocupa/access-backend/internal/middleware"
	"github.com/medocupa/access-backend/internal/permcache"
	"github.com/medocupa/access-backend/internal/repository"
	"github.com/medocupa/access-backend/internal/router"
	"github.com/medocupa/access-backend/internal/service"
	"github.com/medocupa/access-backend/internal/validator"
	"github.com/medocupa/access-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("directory", cfg.DirectoryMode).
		Dur("permission_ttl", cfg.PermissionCacheTTL).
		Msg("Starting MedOcupa access backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	grantRepo := repository.NewGrantRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	var directory service.Directory
	switch cfg.DirectoryMode {
	case config.DirectoryModePostgres:
		directory = repository.NewIdentityRepository(pool)
	default:
		// Demo identities must also exist in Postgres for grants to
		// reference them. Run cmd/seed-demo once.
		demo, err := service.NewDemoDirectory(cfg.DemoPassword, cfg.BcryptCost)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build demo directory")
		}
		directory = demo
		log.Warn().Int("identities", len(service.DemoIdentities)).Msg("Demo directory enabled")
	}

	// ─── Permission Cache ──────────────────────────────────────────────
	permCache, memoryTier := permcache.NewFromConfig(cfg, rdb, log)

	// ─── Initialize Services ──────────────────────────────────────────
	notifier := service.NewNotifier(rdb, log)
	authService := service.NewAuthService(cfg, rdb)
	sessionService := service.NewSessionService(authService, directory, permCache, notifier, log)
	authorizer := service.NewAuthorizer(permCache, grantRepo, log)
	grantService := service.NewGrantService(grantRepo, directory, authorizer, permCache, notifier, log)
	userService := service.NewUserService(directory)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:   handler.NewAuthHandler(sessionService, authorizer, log),
		Menu:   handler.NewMenuHandler(authorizer),
		Role:   handler.NewRoleHandler(),
		Grant:  handler.NewGrantHandler(grantService, userService, log),
		WS:     handler.NewWSHandler(sessionService, notifier, authorizer, log, cfg.AllowedOrigins),
		System: handler.NewSystemHandler(pool, rdb, memoryTier),
	}

	guards := &router.Guards{
		Sessions:     sessionService,
		Authorizer:   authorizer,
		Notifier:     notifier,
		LoginLimiter: middleware.NewRateLimiter(rdb, "login", cfg.LoginRatePerMinute, time.Minute, log),
		Log:          log,
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	auditWorker := worker.NewAuditWorker(auditRepo, rdb, log)
	go func() {
		auditWorker.Start(workerCtx)
		close(workerDone)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(guards, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the audit worker and wait for its final flush.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Audit worker did not finish in time")
	}

	log.Info().Msg("Shutdown complete")
}
