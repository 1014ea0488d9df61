package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/disasters?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, time.Hour, cfg.EnrichmentTTL)
	assert.Equal(t, 10000.0, cfg.ResourceRadiusMeters)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.NominatimBaseURL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.GeminiEnabled)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/disasters")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("ENRICHMENT_TTL", "30m")
	t.Setenv("RESOURCE_RADIUS_METERS", "5000")
	t.Setenv("KAFKA_BROKERS", "kafka1:9092,kafka2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Minute, cfg.EnrichmentTTL)
	assert.Equal(t, 5000.0, cfg.ResourceRadiusMeters)
	assert.Equal(t, []string{"kafka1:9092", "kafka2:9092"}, cfg.KafkaBrokers)
}

func TestLoadRejectsInvalidDurations(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/disasters")
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoadGeminiRequiresKey(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/disasters")
	t.Setenv("GEMINI_ENABLED", "true")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoadZeroTTLDisablesCaching(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/disasters")
	t.Setenv("ENRICHMENT_TTL", "0s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.EnrichmentTTL)
}
