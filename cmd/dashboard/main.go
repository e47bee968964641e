package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	httpadapter "github.com/couchcryptid/odp-dashboard-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/odp-dashboard-service/internal/adapter/kafka"
	"github.com/couchcryptid/odp-dashboard-service/internal/adapter/mapbox"
	"github.com/couchcryptid/odp-dashboard-service/internal/config"
	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
	"github.com/couchcryptid/odp-dashboard-service/internal/observability"
	"github.com/couchcryptid/odp-dashboard-service/internal/pipeline"
	"github.com/couchcryptid/odp-dashboard-service/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	// Dataset events are optional; without brokers the service is always ready.
	var (
		publisher httpadapter.EventPublisher
		ready     sharedobs.ReadinessChecker
		closer    func() error
	)
	if cfg.KafkaEnabled() {
		pub := kafkaadapter.NewPublisher(cfg, metrics, logger)
		publisher, ready, closer = pub, pub, pub.Close
		logger.Info("dataset events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	api := httpadapter.NewAPI(httpadapter.Deps{
		Store:     session.NewStore(cfg.MaxSessions, metrics, logger),
		Pipeline:  pipeline.New(geocoder, logger, metrics),
		Publisher: publisher,
		Metrics:   metrics,
		Logger:    logger,
		MaxUpload: cfg.MaxUploadBytes,
	})
	srv := httpadapter.NewServer(cfg.HTTPAddr, api, ready, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if closer != nil {
		if err := closer(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
