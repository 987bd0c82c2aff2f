package configuration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfiguration(t *testing.T) {
	t.Run("defaults_applied", func(t *testing.T) {
		require.NotZero(t, C.App.Port, "port should fall back to a default")
		assert.LessOrEqual(t, C.Estimate.TTLMinutes, 30)
		assert.Positive(t, C.RateLimit.Max)
		assert.NotEmpty(t, C.Pricing.MergePerMinute)
		assert.NotEmpty(t, C.Paystack.Currency)
	})

	t.Run("estimate_ttl_is_capped", func(t *testing.T) {
		cfg := Config{Estimate: Estimate{TTLMinutes: 90}}
		initDefaults(&cfg)
		assert.Equal(t, 30, cfg.Estimate.TTLMinutes)
	})

	t.Run("pricing_defaults", func(t *testing.T) {
		cfg := Config{}
		initDefaults(&cfg)
		assert.Equal(t, "1.00", cfg.Pricing.SrtPerMinute)
		assert.Equal(t, "1.50", cfg.Pricing.MergePerMinute)
		assert.Equal(t, "0.50", cfg.Pricing.TranslationPerMinute)
		assert.Equal(t, "0.25", cfg.Pricing.CustomizationPerMinute)
		assert.Equal(t, "3", cfg.Credits.Signup)
		assert.Equal(t, int64(100), cfg.RateLimit.Max)
		assert.Equal(t, 15, cfg.RateLimit.WindowMinutes)
	})
}

func TestGetConfigValue(t *testing.T) {
	t.Setenv("SUBTITLE_CREDIT_TEST_KEY", "from-env")
	assert.Equal(t, "from-env", getConfigValue("from-config", "SUBTITLE_CREDIT_TEST_KEY", "default"))
	assert.Equal(t, "from-config", getConfigValue("from-config", "SUBTITLE_CREDIT_UNSET_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "SUBTITLE_CREDIT_UNSET_KEY", "default"))
}

func TestReload_PicksUpEnvironment(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "7")
	t.Setenv("JOB_CALLBACK_KEY", "cb-key")
	Reload()
	t.Cleanup(Reload)

	assert.Equal(t, int64(7), C.RateLimit.Max)
	assert.Equal(t, "cb-key", C.SubtitleService.CallbackKey)
}
