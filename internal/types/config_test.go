package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("SERPER_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("SCRAPER_TIMEOUT", "")

	config := LoadConfigFromEnv()

	assert.Empty(t, config.SerperAPIKey)
	assert.Equal(t, DefaultConfig().Timeout, config.Timeout)
	assert.True(t, config.Headless)
	assert.Zero(t, config.BreakerFailures, "breaker stays off unless configured")
}

func TestLoadConfigFromEnv_Breaker(t *testing.T) {
	t.Setenv("BREAKER_FAILURES", "3")
	t.Setenv("BREAKER_COOLDOWN", "30s")

	config := LoadConfigFromEnv()
	assert.Equal(t, uint32(3), config.BreakerFailures)
	assert.Equal(t, 30*time.Second, config.BreakerCooldown)

	t.Setenv("BREAKER_FAILURES", "-1")
	assert.Zero(t, LoadConfigFromEnv().BreakerFailures, "invalid count keeps the default")
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "legacy-key")
	t.Setenv("SERPER_API_KEY", "")
	t.Setenv("SCRAPER_TIMEOUT", "45s")
	t.Setenv("HEADLESS", "false")
	t.Setenv("BLOCK_ASSETS", "not-a-bool")
	t.Setenv("PROXY_SERVER", "http://proxy.local:8080")

	config := LoadConfigFromEnv()

	assert.Equal(t, "legacy-key", config.SerperAPIKey)
	assert.Equal(t, 45*time.Second, config.Timeout)
	assert.False(t, config.Headless)
	assert.True(t, config.BlockAssets, "invalid bool keeps the default")
	assert.Equal(t, "http://proxy.local:8080", config.ProxyServer)
}

func TestLoadConfigFromEnv_SerperKeyWins(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "legacy-key")
	t.Setenv("SERPER_API_KEY", "new-key")

	assert.Equal(t, "new-key", LoadConfigFromEnv().SerperAPIKey)
}

func TestSourceSelection_Enabled(t *testing.T) {
	selection := SourceSelection{"google": true, "kabum": true, "mercadolivre": false}

	enabled := selection.Enabled([]string{"kabum", "google", "mercadolivre"})

	assert.Equal(t, []string{"kabum", "google"}, enabled)
	assert.Empty(t, SourceSelection{}.Enabled([]string{"kabum"}))
}
