package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/disaster-response-service/internal/adapter/fema"
	"github.com/couchcryptid/disaster-response-service/internal/adapter/gemini"
	"github.com/couchcryptid/disaster-response-service/internal/adapter/nominatim"
	"github.com/couchcryptid/disaster-response-service/internal/adapter/socialfeed"
	"github.com/couchcryptid/disaster-response-service/internal/config"
	"github.com/couchcryptid/disaster-response-service/internal/disasters"
	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/couchcryptid/disaster-response-service/internal/enrich"
	"github.com/couchcryptid/disaster-response-service/internal/events"
	"github.com/couchcryptid/disaster-response-service/internal/observability"
	"github.com/couchcryptid/disaster-response-service/internal/server"
	"github.com/couchcryptid/disaster-response-service/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	store, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	hub := events.NewHub(logger, func(n int) {
		metrics.SSESubscribers.Set(float64(n))
	})

	// Broadcast locally over SSE, and mirror to Kafka when enabled.
	var bus events.Publisher = hub
	if cfg.KafkaEnabled {
		kafkaPub := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		bus = events.Fanout{hub, kafkaPub}
		logger.Info("kafka event mirror enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	// Location extraction and image analysis are feature-flagged via
	// GEMINI_ENABLED; without a key those operations fail as unavailable.
	var extractor domain.LocationExtractor
	var analyzer domain.ImageAnalyzer
	if cfg.GeminiEnabled {
		client := gemini.NewClient(cfg.GeminiAPIKey, cfg.AdapterTimeout, logger)
		extractor = client
		analyzer = client
		logger.Info("gemini analysis enabled", "timeout", cfg.AdapterTimeout)
	} else {
		extractor = unavailableAnalysis{}
		analyzer = unavailableAnalysis{}
		logger.Info("gemini analysis disabled")
	}

	resolver := nominatim.NewClient(cfg.NominatimBaseURL, cfg.AdapterTimeout, logger)
	updates := fema.NewClient(cfg.UpdatesURL, cfg.AdapterTimeout, logger)
	feed := socialfeed.NewMockFeed()

	agg := enrich.NewAggregator(store, bus, clockwork.NewRealClock(), logger, metrics)
	geocoder := enrich.NewGeocoder(extractor, resolver, logger)
	enrichSvc := enrich.NewService(agg, geocoder, feed, updates, analyzer, store,
		cfg.EnrichmentTTL, cfg.ResourceRadiusMeters, logger)
	disasterSvc := disasters.NewService(store, bus, logger, metrics)

	srv := server.NewServer(cfg.HTTPAddr, disasterSvc, enrichSvc, hub, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := bus.Close(); err != nil {
		logger.Error("event publisher close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// unavailableAnalysis stands in when no generative-analysis provider is
// configured.
type unavailableAnalysis struct{}

func (unavailableAnalysis) ExtractLocation(context.Context, string) (string, error) {
	return "", errors.New("analysis provider not configured")
}

func (unavailableAnalysis) AnalyzeImage(context.Context, string, string) (string, error) {
	return "", errors.New("analysis provider not configured")
}
