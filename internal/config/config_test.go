package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, "http://127.0.0.1:9090/api/auth/verify", cfg.Auth.VerifyURL)
	assert.Equal(t, "auth-token", cfg.Auth.CookieName)
	assert.Equal(t, "x-auth-token", cfg.Auth.TokenHeader)
	assert.Equal(t, 3*time.Second, cfg.Auth.VerifyTimeout())
	assert.Equal(t, time.Minute, cfg.RateLimit.Window())
	assert.Equal(t, 3, cfg.Saga.CompensationAttempts)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_VERIFY_TIMEOUT_MS", "250")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "10")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("POSTGRES_MAX_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Auth.VerifyTimeout())
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Window())
	assert.False(t, cfg.Postgres.RunMigrations)
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "x")

	_, err := Load()
	require.Error(t, err)
}
