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

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/weatherwise-service/internal/adapter/api"
	"github.com/couchcryptid/weatherwise-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/weatherwise-service/internal/adapter/kafka"
	"github.com/couchcryptid/weatherwise-service/internal/adapter/memory"
	"github.com/couchcryptid/weatherwise-service/internal/adapter/nominatim"
	"github.com/couchcryptid/weatherwise-service/internal/adapter/sqlite"
	"github.com/couchcryptid/weatherwise-service/internal/analysis"
	"github.com/couchcryptid/weatherwise-service/internal/config"
	"github.com/couchcryptid/weatherwise-service/internal/domain"
	"github.com/couchcryptid/weatherwise-service/internal/observability"
	"github.com/couchcryptid/weatherwise-service/internal/settings"
	"github.com/couchcryptid/weatherwise-service/internal/theme"
)

// refreshMargin is the time an auto-refresh gets on top of the simulated latency.
const refreshMargin = 30 * time.Second

func main() {
	// A missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Settings storage: SQLite when a path is configured, memory otherwise.
	var (
		kv     domain.KeyValueStore
		checks httpadapter.Checks
	)
	if cfg.SettingsDBPath != "" {
		db, err := sqlite.Open(ctx, cfg.SettingsDBPath)
		if err != nil {
			logger.Error("failed to open settings database", "path", cfg.SettingsDBPath, "error", err)
			os.Exit(1)
		}
		defer db.Close() //nolint:errcheck // closed on exit
		kv = db
		checks = append(checks, db)
		logger.Info("settings stored in sqlite", "path", cfg.SettingsDBPath)
	} else {
		kv = memory.NewKV()
		logger.Info("settings stored in memory")
	}

	store := settings.New(kv, cfg.SettingsKey, logger, metrics)
	current, err := store.Load(ctx)
	if err != nil {
		logger.Error("failed to load settings", "error", err)
		os.Exit(1)
	}
	checks = append(checks, store)

	// Place search (feature-flagged via GEOCODER_ENABLED).
	var geocoder domain.Geocoder
	if cfg.GeocoderEnabled {
		client := nominatim.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent, cfg.GeocoderTimeout, logger, metrics)
		limited := nominatim.NewRateLimitedGeocoder(client, cfg.GeocoderRateLimit)
		geocoder = nominatim.NewCachedGeocoder(limited, cfg.GeocoderCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("place search enabled", "base_url", cfg.GeocoderBaseURL, "cache_size", cfg.GeocoderCacheSize, "rate_limit", cfg.GeocoderRateLimit)
	} else {
		logger.Info("place search disabled")
	}

	// Theme bus.
	clock := clockwork.NewRealClock()
	var (
		publisher  domain.ThemePublisher
		subscriber domain.ThemeSubscriber
		closers    []func() error
	)
	switch cfg.ThemeBus {
	case config.ThemeBusKafka:
		writer := kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		closers = append(closers, writer.Close)
	default:
		hub := memory.NewHub()
		sub := hub.Subscribe()
		publisher, subscriber = hub, sub
		closers = append(closers, sub.Close)
	}

	themes := theme.New(store, kv, publisher, clock, logger, metrics)
	themes.Apply(current.Theme)
	store.OnChange(themes.OnSettingsChange)

	if cfg.ThemeBus == config.ThemeBusKafka {
		groupID := cfg.KafkaGroupID
		if groupID == "" {
			groupID = "weatherwise-theme-" + themes.Origin()
		}
		reader := kafkaadapter.NewReader(cfg, groupID, logger)
		subscriber = reader
		closers = append(closers, reader.Close)
	}
	logger.Info("theme bus ready", "backend", cfg.ThemeBus, "origin", themes.Origin())

	// Analysis and auto-refresh.
	svc := analysis.New(store, clock, cfg.SimulatedLatency, logger, metrics)
	refresher := analysis.NewRefresher(svc, analysis.RefreshTimeout(cfg.SimulatedLatency, refreshMargin), logger, metrics)
	store.OnChange(refresher.OnSettingsChange)
	refresher.OnSettingsChange(current)
	refresher.Start()

	handler := api.NewHandler(store, themes, svc, geocoder, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, api.NewRouter(handler), checks, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start theme listener.
	go func() {
		if err := themes.Listen(ctx, subscriber); err != nil {
			logger.Error("theme listener error", "error", err)
		}
	}()

	metrics.ServiceReady.Set(1)
	<-ctx.Done()
	logger.Info("shutting down")
	metrics.ServiceReady.Set(0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	refresher.Stop()
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Error("theme bus close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
