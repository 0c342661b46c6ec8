package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lexicon/internal/analytics"
	"lexicon/internal/cache"
	"lexicon/internal/config"
	"lexicon/internal/database"
	"lexicon/internal/handlers"
	"lexicon/internal/logger"
	"lexicon/internal/metrics"
	"lexicon/internal/repository"
	"lexicon/internal/security"
	"lexicon/internal/service"
)

const (
	stepDatabase = "Database connection"
	stepSchema   = "Schema bootstrap"
	stepCache    = "Cache connection"
	stepServices = "Initializing services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startup := handlers.NewStartup(stepDatabase, stepSchema, stepCache, stepServices)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      startup,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	cleanup, err := initialize(ctx, cfg, startup)
	if err != nil {
		log.Error("initialization failed", "error", err)
		shutdown(server, cfg.Server.ShutdownTimeout)
		os.Exit(1)
	}
	defer cleanup()

	log.Info("server ready", "database", cfg.Database.Type, "cache", cfg.Redis.Enabled, "kafka", cfg.Kafka.Enabled)

	select {
	case <-ctx.Done():
		log.Info("server shutting down")
	case err := <-serverErr:
		log.Error("server failed", "error", err)
	}

	shutdown(server, cfg.Server.ShutdownTimeout)
}

// initialize connects every dependency, tracking progress on startup, and
// installs the real router once done. The returned func releases resources.
func initialize(ctx context.Context, cfg *config.Config, startup *handlers.Startup) (func(), error) {
	log := logger.WithComponent("server")
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("close failed", "error", err)
			}
		}
	}

	startup.SetCurrentStep(stepDatabase)
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	closers = append(closers, db.Close)
	startup.CompleteStep(stepDatabase)

	startup.SetCurrentStep(stepSchema)
	if err := db.EnsureSchema(ctx); err != nil {
		cleanup()
		return nil, err
	}
	startup.CompleteStep(stepSchema)

	m := metrics.New()
	wordRepo := repository.NewWordRepository(db)
	searchRepo := repository.NewSearchRepository(db)

	lookup := service.NewLookupService(wordRepo).WithMetrics(m)
	if cfg.Lookup.RecordSearches {
		lookup.WithRecorder(searchRepo)
	}
	browse := service.NewBrowseService(wordRepo, searchRepo)

	health := handlers.NewHealthHandler(3 * time.Second)
	health.Register("database", db.PingContext)

	startup.SetCurrentStep(stepCache)
	if cfg.Redis.Enabled {
		store, err := cache.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			// The store is the source of truth; run uncached rather than not at all.
			log.Warn("redis unavailable, lookups will not be cached", "addr", cfg.Redis.Addr, "error", err)
		} else {
			closers = append(closers, store.Close)
			lc := cache.NewLookupCache(store, cfg.Redis.CacheTTL)
			lookup.WithCache(lc)
			health.Register("cache", lc.Ping)
		}
	}
	if cfg.Kafka.Enabled {
		pub := analytics.NewKafkaPublisher(cfg.Kafka)
		closers = append(closers, pub.Close)
		lookup.WithPublisher(pub)
	}
	startup.CompleteStep(stepCache)

	startup.SetCurrentStep(stepServices)
	templates, err := handlers.LoadTemplates()
	if err != nil {
		cleanup()
		return nil, err
	}

	trusted, err := security.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
	if err != nil {
		cleanup()
		return nil, err
	}
	limiter := security.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	limiter.TrustProxies(trusted)
	go limiter.RunCleanup(ctx, time.Hour)

	router := handlers.Router{
		Lookup:     handlers.NewLookupHandler(lookup, browse),
		Home:       handlers.NewHomeHandler(lookup, browse, templates),
		Health:     health,
		Startup:    startup,
		Middleware: handlers.NewMiddleware(limiter, m),
	}
	if cfg.Metrics.Enabled {
		router.MetricsHandler = m.Handler()
		router.MetricsPath = cfg.Metrics.Path
	}
	startup.CompleteStep(stepServices)

	startup.MarkReady(handlers.NewRouter(router))
	return cleanup, nil
}

func shutdown(server *http.Server, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
}
