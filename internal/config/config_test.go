package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 72*time.Hour, cfg.CartTTL)
	assert.Equal(t, 5*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, "json", cfg.LogEncoding)
}

func TestRedisIsOptional(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.RedisURL)

	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DATABASE_URL", "user:pass@tcp(localhost:3306)/storefront?parseTime=true")
	t.Setenv("IDEMPOTENCY_TTL", "30m")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 30*time.Minute, cfg.IdempotencyTTL)
	assert.Equal(t, 50, cfg.DBMaxOpenConns)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDBURI)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	_, err := Load()
	assert.Error(t, err)
}
