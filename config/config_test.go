package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"deskhub/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30, cfg.Cache.AvailabilityTTL)
	assert.Equal(t, 3000, cfg.DB.Postgres.LockTimeoutMillis)
	assert.Equal(t, "5432", cfg.DB.Postgres.Write.Port)
	assert.Equal(t, "disable", cfg.DB.Postgres.Read.SSLMode)
	assert.Equal(t, "booking.notification", cfg.Kafka.Topics.Notification)
	assert.Equal(t, "booking.audit", cfg.Kafka.Topics.Audit)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DB_POSTGRES_WRITE_HOST", "primary.db")
	t.Setenv("DB_POSTGRES_LOCK_TIMEOUT_MILLIS", "750")
	t.Setenv("CACHE_AVAILABILITY_TTL", "10")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "primary.db", cfg.DB.Postgres.Write.Host)
	assert.Equal(t, 750, cfg.DB.Postgres.LockTimeoutMillis)
	assert.Equal(t, 10, cfg.Cache.AvailabilityTTL)
}

func TestLoad_DotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("KAFKA_BROKERS=kafka-1:9092,kafka-2:9092\nSERVER_PORT=9000\n"), 0o600))

	t.Setenv("SERVER_PORT", "7000")
	t.Cleanup(func() { _ = os.Unsetenv("KAFKA_BROKERS") })

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "7000", cfg.Server.Port)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("CACHE_TTL", "five minutes")

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Error(t, err)
}
