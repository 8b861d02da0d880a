package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_TOKEN_KEYWORD", "")
	t.Setenv("DATABASE_TYPE", "")

	cfg := Load()
	assert.Equal(t, "Token", cfg.TokenKeyword)
	assert.Equal(t, "postgres", cfg.DBType)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_TOKEN_KEYWORD", "Bearer")
	t.Setenv("RATE_LIMIT_ENABLED", "yes")
	t.Setenv("DATABASE_MAX_OPEN_CONN", "7")

	cfg := Load()
	assert.Equal(t, "Bearer", cfg.TokenKeyword)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 7, cfg.DBMaxOpenConn)
}

func TestValidateAPISettings(t *testing.T) {
	require.NoError(t, validateAPISettings(DefaultAPISettings()))

	bad := DefaultAPISettings()
	bad.PageSize = 0
	require.Error(t, validateAPISettings(bad))

	bad = DefaultAPISettings()
	bad.MaxPageSize = 1
	require.Error(t, validateAPISettings(bad))

	bad = DefaultAPISettings()
	bad.OneTimeKeyTTL = -time.Second
	require.Error(t, validateAPISettings(bad))
}

func TestNilHolderFallsBackToDefaults(t *testing.T) {
	var h *SettingsHolder
	assert.Equal(t, DefaultAPISettings(), h.Get())
	assert.Equal(t, 5, NewStaticSettings(APISettings{RedeemBurst: 5}).Get().RedeemBurst)
}
