package model

import "time"

const (
	// DefaultRetryCount is the number of consecutive failures a plugin
	// tolerates before being demoted to ERROR
	DefaultRetryCount = 3
	// DefaultTimeoutSeconds bounds a single collect or send call
	DefaultTimeoutSeconds = 30
)

// PluginConfig holds the configuration for a single plugin instance.
// It is treated as immutable after construction and may be shared freely.
type PluginConfig struct {
	Name           string         `json:"name"`
	Enabled        bool           `json:"enabled"`
	Settings       map[string]any `json:"config"`
	RetryCount     int            `json:"retry_count"`
	TimeoutSeconds int            `json:"timeout"`
}

// NewPluginConfig creates a plugin configuration with defaults applied
func NewPluginConfig(name string) PluginConfig {
	return PluginConfig{
		Name:           name,
		Enabled:        true,
		Settings:       make(map[string]any),
		RetryCount:     DefaultRetryCount,
		TimeoutSeconds: DefaultTimeoutSeconds,
	}
}

// Timeout returns the per-call bound as a duration
func (c PluginConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// String returns a string setting, or def when absent or mistyped
func (c PluginConfig) String(key, def string) string {
	if v, ok := c.Settings[key].(string); ok {
		return v
	}
	return def
}

// Int returns an integer setting, or def when absent or mistyped.
// JSON numbers decode as float64, so both forms are accepted.
func (c PluginConfig) Int(key string, def int) int {
	switch v := c.Settings[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// Bool returns a boolean setting, or def when absent or mistyped
func (c PluginConfig) Bool(key string, def bool) bool {
	if v, ok := c.Settings[key].(bool); ok {
		return v
	}
	return def
}

// StringSlice returns a list-of-strings setting, or nil when absent
func (c PluginConfig) StringSlice(key string) []string {
	raw, ok := c.Settings[key].([]any)
	if !ok {
		return nil
	}
	var result []string
	for _, v := range raw {
		if s, ok := v.(string); ok {
			result = append(result, s)
		}
	}
	return result
}
