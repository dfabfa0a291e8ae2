package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		t.Setenv("HTTP_PORT", "")
		t.Setenv("REQUEST_TIMEOUT", "")
		t.Setenv("CACHE_ENABLED", "")

		cfg := LoadFromEnv()

		assert.Equal(t, "development", cfg.AppEnv)
		assert.Equal(t, "sqlite3", cfg.DBDriver)
		assert.Equal(t, 5000, cfg.HTTPPort)
		assert.Equal(t, 50051, cfg.GRPCPort)
		assert.False(t, cfg.CacheEnabled)
		assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
		assert.Empty(t, cfg.JWTSecret)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("DB_DRIVER", "postgres")
		t.Setenv("HTTP_PORT", "8080")
		t.Setenv("CACHE_ENABLED", "true")
		t.Setenv("CACHE_TTL", "30s")
		t.Setenv("SUBMIT_RATE_LIMIT", "0.5")
		t.Setenv("REQUEST_TIMEOUT", "3s")

		cfg := LoadFromEnv()

		assert.Equal(t, "s3cret", cfg.JWTSecret)
		assert.Equal(t, "postgres", cfg.DBDriver)
		assert.Equal(t, 8080, cfg.HTTPPort)
		assert.True(t, cfg.CacheEnabled)
		assert.Equal(t, 30*time.Second, cfg.CacheTTL)
		assert.Equal(t, 0.5, cfg.SubmitRateLimit)
		assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	})

	t.Run("malformed values fall back", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "not-a-port")
		t.Setenv("CACHE_ENABLED", "maybe")
		t.Setenv("CACHE_TTL", "forever")

		cfg := LoadFromEnv()

		assert.Equal(t, 5000, cfg.HTTPPort)
		assert.False(t, cfg.CacheEnabled)
		assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{DBDriver: "sqlite3", HTTPPort: 5000, GRPCPort: 50051, JWTSecret: "x"}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.JWTSecret = ""
	assert.ErrorIs(t, cfg.Validate(), ErrMissingJWTSecret)

	cfg = valid()
	cfg.DBDriver = "mysql"
	assert.ErrorIs(t, cfg.Validate(), ErrUnsupportedDriver)

	cfg = valid()
	cfg.GRPCPort = 70000
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidPort)
}
