package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, int64(64*1024), cfg.MaxRequestBodyBytes)
	assert.Equal(t, 30, cfg.SyncRateLimit)
	assert.Equal(t, 20, cfg.AuthRateLimit)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ODOMO_PORT", "9090")
	t.Setenv("ODOMO_JWT_EXPIRATION", "2h")
	t.Setenv("ODOMO_SYNC_RATE_LIMIT", "5")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, 5, cfg.SyncRateLimit)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("ODOMO_PORT", "not-a-number")
	t.Setenv("ODOMO_READ_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
}

func TestValidate(t *testing.T) {
	t.Run("missing database url", func(t *testing.T) {
		cfg := Config{MaxRequestBodyBytes: 1024, JWTExpiration: time.Hour}
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive body limit", func(t *testing.T) {
		cfg := Config{DatabaseURL: "postgres://x", JWTExpiration: time.Hour}
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive jwt expiration", func(t *testing.T) {
		cfg := Config{DatabaseURL: "postgres://x", MaxRequestBodyBytes: 1024}
		assert.Error(t, cfg.Validate())
	})
}
