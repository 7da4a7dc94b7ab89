package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"permscope/internal/api"
	"permscope/internal/api/handlers"
	"permscope/internal/config"
	"permscope/internal/domain/services"
	"permscope/internal/infrastructure/cache"
	"permscope/internal/metrics"
	"permscope/internal/registry"
	"permscope/internal/streaming"
	"permscope/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting PermScope")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis backs rate limiting only; the service runs without it
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without rate limiting")
		} else {
			defer redisCache.Close()
		}
	}

	// Select the package registry backend
	pkgRegistry, err := newRegistry(cfg.Registry, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize package registry")
	}

	// Create WebSocket hub for real-time scan updates
	wsHub := streaming.NewWebSocketHub(log)
	go wsHub.Run(ctx)

	// Prometheus collectors
	m := metrics.New()

	// Initialize the analysis pipeline
	resolver := services.NewProtectionResolverWithTTL(pkgRegistry, cfg.Cache.ProtectionTTL, log)
	assembler := services.NewAssembler(pkgRegistry, resolver, log)
	scanner := services.NewScanService(pkgRegistry, assembler, cfg.Scan, wsHub, m, log)

	// Initialize handlers
	deps := handlers.Dependencies{
		Scanner:   scanner,
		Assembler: assembler,
		Resolver:  resolver,
		Cache:     redisCache,
		Hub:       wsHub,
		Logger:    log,
		Version:   cfg.App.Version,
	}
	h := handlers.NewHandlers(deps)

	// Create router
	router := api.NewRouter(*cfg, h, redisCache, m, log)
	httpHandler := router.Setup()

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Kick off an initial scan so the query layer has data
	scanner.StartScan(ctx, scanner.DefaultFilter())

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	// Cancel context to stop background goroutines
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}

// newRegistry selects the package registry backend from configuration.
func newRegistry(cfg config.RegistryConfig, log *logger.Logger) (registry.PackageRegistry, error) {
	switch cfg.Backend {
	case "adb", "":
		return registry.NewADBRegistry(registry.ADBConfig{
			ADBPath: cfg.ADBPath,
			Serial:  cfg.Serial,
			Timeout: cfg.Timeout,
		}, log), nil
	case "static":
		static := registry.NewStaticRegistry()
		if cfg.FixtureFile != "" {
			if err := static.LoadFixture(cfg.FixtureFile); err != nil {
				return nil, err
			}
		}
		return static, nil
	default:
		return nil, fmt.Errorf("unknown registry backend %q", cfg.Backend)
	}
}
