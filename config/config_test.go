package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "ordersvc", cfg.App.Name)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mock", cfg.Database.Type)
	assert.Equal(t, 3, cfg.Database.Retry.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Database.Retry.InitialDelay)
	assert.Equal(t, "payments", cfg.Kafka.PaymentTopic)
	assert.Equal(t, 5, cfg.Kafka.MaxRedeliveries)
	assert.Equal(t, time.Second, cfg.Worker.PollInterval)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  env: production
database:
  type: mysql
  retry:
    max_attempts: 7
kafka:
  enabled: true
  brokers: ["k1:9092", "k2:9092"]
  dead_letter_topic: ""
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "mysql", cfg.Database.Type)
	assert.Equal(t, 7, cfg.Database.Retry.MaxAttempts)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Kafka.DeadLetterTopic)
	// untouched keys keep their defaults
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ORDERSVC_SERVER_PORT", "9090")
	t.Setenv("ORDERSVC_AUTH_JWT_SECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}
