package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("FAMILYTREE_ADDR", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")

	cfg := FromEnv()
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, int64(5<<20), cfg.Photo.MaxUploadBytes)
	assert.True(t, cfg.Auth.SecureCookies)
	assert.Equal(t, 10, cfg.RateLimit.AuthPerMinute)
	assert.False(t, cfg.RateLimit.Disabled)
	assert.Empty(t, cfg.Server.MetricsToken)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("FAMILYTREE_ADDR", ":9090")
	t.Setenv("TX_TIMEOUT", "2s")
	t.Setenv("SECURE_COOKIES", "false")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("METRICS_TOKEN", "ops")
	t.Setenv("RATE_LIMIT_DISABLED", "true")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.TxTimeout)
	assert.False(t, cfg.Auth.SecureCookies)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, "ops", cfg.Server.MetricsToken)
	assert.True(t, cfg.RateLimit.Disabled)
}
