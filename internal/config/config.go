// Package config loads service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// External data providers.
	GeminiAPIKey     string        `env:"GEMINI_API_KEY"`
	GeminiEnabled    bool          `env:"GEMINI_ENABLED"`
	NominatimBaseURL string        `env:"NOMINATIM_BASE_URL" envDefault:"https://nominatim.openstreetmap.org"`
	UpdatesURL       string        `env:"OFFICIAL_UPDATES_URL" envDefault:"https://www.fema.gov/press-releases"`
	AdapterTimeout   time.Duration `env:"ADAPTER_TIMEOUT" envDefault:"10s"`

	// Enrichment caching and resource search.
	EnrichmentTTL        time.Duration `env:"ENRICHMENT_TTL" envDefault:"1h"`
	ResourceRadiusMeters float64       `env:"RESOURCE_RADIUS_METERS" envDefault:"10000"`

	// Optional Kafka mirror of broadcast events.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"disaster-events"`
	KafkaEnabled bool     `env:"KAFKA_ENABLED"`
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.AdapterTimeout <= 0 {
		return nil, errors.New("ADAPTER_TIMEOUT must be positive")
	}
	if cfg.EnrichmentTTL < 0 {
		return nil, errors.New("ENRICHMENT_TTL must not be negative")
	}
	if cfg.ResourceRadiusMeters <= 0 {
		return nil, errors.New("RESOURCE_RADIUS_METERS must be positive")
	}
	if cfg.GeminiEnabled && cfg.GeminiAPIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required when GEMINI_ENABLED is set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}

	return cfg, nil
}
