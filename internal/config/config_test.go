package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "postgres")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Sentinel.MaxLoginAttempts)
	assert.Equal(t, 300*time.Second, cfg.Sentinel.RateLimitWindow)
	assert.Equal(t, 100, cfg.Sentinel.BotScoreThreshold)
	assert.Equal(t, "", cfg.Sentinel.IPReputationAPIKey)
	assert.Equal(t, 2*time.Second, cfg.Sentinel.ReputationTimeout)
	assert.Equal(t, 7, cfg.Sentinel.RetentionDays)
	assert.Equal(t, "demo", cfg.Sentinel.DemoUsername)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.False(t, cfg.Session.CookieSecure)
}

func TestLoad_RequiresDatabasePassword(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("MAX_LOGIN_ATTEMPTS", "10")
	t.Setenv("RATE_LIMIT_WINDOW", "10m")
	t.Setenv("BOT_SCORE_THRESHOLD", "150")
	t.Setenv("IP_REPUTATION_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Sentinel.MaxLoginAttempts)
	assert.Equal(t, 10*time.Minute, cfg.Sentinel.RateLimitWindow)
	assert.Equal(t, 150, cfg.Sentinel.BotScoreThreshold)
	assert.Equal(t, "test-key", cfg.Sentinel.IPReputationAPIKey)
}

func TestLoad_RejectsInvalidSentinelConfig(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero max attempts", "MAX_LOGIN_ATTEMPTS", "0"},
		{"zero threshold", "BOT_SCORE_THRESHOLD", "0"},
		{"zero retention", "ATTEMPT_RETENTION_DAYS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_PASSWORD", "postgres")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_ProductionUsesSecureCookies(t *testing.T) {
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Session.CookieSecure)
}
