package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/peptidedeals/peptidedeals_api/internal/cache"
	"github.com/peptidedeals/peptidedeals_api/internal/config"
	"github.com/peptidedeals/peptidedeals_api/internal/database"
	"github.com/peptidedeals/peptidedeals_api/internal/display"
	"github.com/peptidedeals/peptidedeals_api/internal/handler"
	"github.com/peptidedeals/peptidedeals_api/internal/middleware"
	"github.com/peptidedeals/peptidedeals_api/internal/repository"
	"github.com/peptidedeals/peptidedeals_api/internal/service"
	"github.com/peptidedeals/peptidedeals_api/internal/sse"
	"github.com/peptidedeals/peptidedeals_api/internal/worker"
	"github.com/peptidedeals/peptidedeals_api/pkg/peptideapi"
)

// main is the application entrypoint for the PeptideDeals API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting peptidedeals api")

	// 3. Connect database; an interrupt during startup aborts the retry loop.
	startupCtx, stopStartup := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	db, err := database.Connect(startupCtx, &cfg.DB)
	stopStartup()
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 3c. Display tables
	registry, err := display.LoadRegistry(cfg.Display.OverridesPath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.Display.OverridesPath).Msg("display overrides failed")
		fmt.Fprintf(os.Stderr, "display overrides failed: %v\n", err)
		os.Exit(1)
	}

	// 4. Upstream catalog API
	api := peptideapi.NewClient(peptideapi.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
		Debug:   !cfg.IsProduction(),
	})

	// 5. Caches and repositories
	catalogCache := cache.NewCatalogCache(redisClient, cfg.Cache.CatalogTTL)
	sessionStore := cache.NewSessionStore(redisClient, cfg.Cache.SessionTTL)
	snapshotRepo := repository.NewPriceSnapshotRepository(db)

	// 6. Initialize services
	catalogSvc := service.NewCatalogService(api, catalogCache, registry)
	historySvc := service.NewPriceHistoryService(snapshotRepo, catalogSvc)
	calculatorSvc := service.NewCalculatorService(catalogSvc)
	stackSvc := service.NewStackService(catalogSvc)
	sessionSvc := service.NewSessionService(sessionStore, api)
	adminSvc := service.NewAdminService(api, catalogSvc)

	// 7. SSE hub
	hub := sse.NewHub()

	// 8. Initialize middleware
	loginLimiter := middleware.NewLoginRateLimiter(5, time.Minute)
	sessionMw := middleware.NewSessionMiddleware(sessionSvc)

	// 9. Initialize handlers
	handlers := &Handlers{
		Health: handler.NewHealthHandler(catalogSvc, map[string]handler.Pinger{
			"redis":    redisClient,
			"database": snapshotRepo,
		}),
		Catalog:    handler.NewCatalogHandler(catalogSvc, historySvc),
		Calculator: handler.NewCalculatorHandler(calculatorSvc),
		Stack:      handler.NewStackHandler(stackSvc),
		Session:    handler.NewSessionHandler(sessionSvc, loginLimiter),
		Admin:      handler.NewAdminHandler(adminSvc),
		SSE:        handler.NewSSEHandler(hub),
	}

	// 10. Setup router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedHosts))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, sessionMw)

	// 11. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 12. Start workers
	go worker.NewCatalogSyncWorker(
		catalogSvc, historySvc, sse.NewHubNotifier(hub),
		cfg.Worker.SyncInterval,
		cfg.Worker.HistoryRetention,
	).Start(ctx)
	go loginLimiter.Cleanup(ctx, 5*time.Minute)

	// 13. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 14. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 15. Cancel context to stop workers
	cancel()

	// 16. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
