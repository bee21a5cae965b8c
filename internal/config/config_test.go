package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/atalaia")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequired(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 5*time.Minute, cfg.AccessTTL)
		assert.Equal(t, "neighborhood-alerts", cfg.KafkaAlertTopic)
		assert.Empty(t, cfg.KafkaBrokers)
		assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("overrides", func(t *testing.T) {
		setRequired(t)
		t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
		t.Setenv("JWT_TTL", "10m")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("PUBLIC_URL", "https://atalaia.app/")
		t.Setenv("ENV", "production")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
		assert.Equal(t, 10*time.Minute, cfg.AccessTTL)
		assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
		assert.Equal(t, "https://atalaia.app", cfg.PublicURL)
		assert.True(t, cfg.IsProduction())
	})

	t.Run("missing_required", func(t *testing.T) {
		t.Setenv("DB_URL", "")
		t.Setenv("NATS_URL", "nats://localhost:4222")
		t.Setenv("JWT_SECRET", "secret")

		_, err := Load()
		assert.Error(t, err)
	})
}
