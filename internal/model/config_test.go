package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPluginConfig(t *testing.T) {
	cfg := NewPluginConfig("email")

	assert.Equal(t, "email", cfg.Name)
	assert.True(t, cfg.Enabled)
	assert.Empty(t, cfg.Settings)
	assert.Equal(t, DefaultRetryCount, cfg.RetryCount)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.TimeoutSeconds)
}

func TestPluginConfigTimeout(t *testing.T) {
	cfg := NewPluginConfig("email")
	cfg.TimeoutSeconds = 5
	assert.Equal(t, 5*time.Second, cfg.Timeout())

	t.Run("Non-positive timeout falls back to the default", func(t *testing.T) {
		cfg.TimeoutSeconds = 0
		assert.Equal(t, DefaultTimeoutSeconds*time.Second, cfg.Timeout())
	})
}

func TestPluginConfigGetters(t *testing.T) {
	cfg := NewPluginConfig("file")
	cfg.Settings = map[string]any{
		"path":       "/var/advisories",
		"batch_size": float64(50), // JSON numbers decode as float64
		"workers":    3,
		"colorize":   true,
		"data_types": []any{"advisory", "sample", 7},
	}

	assert.Equal(t, "/var/advisories", cfg.String("path", ""))
	assert.Equal(t, "fallback", cfg.String("missing", "fallback"))
	assert.Equal(t, 50, cfg.Int("batch_size", 0))
	assert.Equal(t, 3, cfg.Int("workers", 0))
	assert.Equal(t, 10, cfg.Int("missing", 10))
	assert.True(t, cfg.Bool("colorize", false))
	assert.False(t, cfg.Bool("missing", false))
	assert.Equal(t, []string{"advisory", "sample"}, cfg.StringSlice("data_types"))
	assert.Nil(t, cfg.StringSlice("missing"))
}
