package plugin

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wqmon/wqengine/internal/model"
)

func TestNewBasePlugin(t *testing.T) {
	t.Run("Enabled config starts ENABLED", func(t *testing.T) {
		p := NewBasePlugin(model.NewPluginConfig("email"))
		assert.Equal(t, model.PluginEnabled, p.Status())
		assert.True(t, p.Enabled())
	})

	t.Run("Disabled config starts DISABLED", func(t *testing.T) {
		cfg := model.NewPluginConfig("email")
		cfg.Enabled = false

		p := NewBasePlugin(cfg)
		assert.Equal(t, model.PluginDisabled, p.Status())
		assert.False(t, p.Enabled())
	})
}

func TestBasePluginValidateConfig(t *testing.T) {
	p := NewBasePlugin(model.NewPluginConfig("email"))
	assert.True(t, p.ValidateConfig())

	unnamed := NewBasePlugin(model.NewPluginConfig(""))
	assert.False(t, unnamed.ValidateConfig())
}

func TestBasePluginErrorDemotion(t *testing.T) {
	cfg := model.NewPluginConfig("email")
	cfg.RetryCount = 3
	p := NewBasePlugin(cfg)

	failure := errors.New("smtp unreachable")

	p.HandleError(failure)
	p.HandleError(failure)
	assert.Equal(t, 2, p.ErrorCount())
	assert.Equal(t, model.PluginEnabled, p.Status())

	// Third error reaches retry_count and demotes the plugin
	p.HandleError(failure)
	assert.Equal(t, 3, p.ErrorCount())
	assert.Equal(t, model.PluginError, p.Status())

	t.Run("ERROR persists until Reset", func(t *testing.T) {
		p.HandleError(failure)
		assert.Equal(t, model.PluginError, p.Status())

		p.Reset()
		assert.Equal(t, 0, p.ErrorCount())
		assert.Equal(t, model.PluginEnabled, p.Status())
	})
}

func TestBasePluginResetKeepsDisabled(t *testing.T) {
	cfg := model.NewPluginConfig("email")
	cfg.Enabled = false
	p := NewBasePlugin(cfg)

	p.Reset()
	assert.Equal(t, model.PluginDisabled, p.Status())
}

func TestBaseCollectorPluginLastRun(t *testing.T) {
	p := NewBaseCollectorPlugin(model.NewPluginConfig("tide"))
	assert.True(t, p.LastRun().IsZero())

	now := time.Now()
	p.MarkRun(now)
	assert.Equal(t, now, p.LastRun())
}

func TestBaseOutputPluginShouldSend(t *testing.T) {
	p := NewBaseOutputPlugin(model.NewPluginConfig("file"), []string{"advisory"})

	advisory := model.NewAdvisory("a", "t", "d", model.SeverityLow, "src", nil)
	reading := model.NewSampleReading("s", "EB-04", "enterococcus", 1, "cfu/100ml", "src", time.Now())

	assert.True(t, p.ShouldSend(advisory))
	assert.False(t, p.ShouldSend(reading))
	assert.Equal(t, []string{"advisory"}, p.SupportedDataTypes())
}

func TestBaseOutputPluginSentCount(t *testing.T) {
	p := NewBaseOutputPlugin(model.NewPluginConfig("file"), nil)

	assert.Equal(t, 0, p.SentCount())
	p.MarkSent()
	p.MarkSent()
	assert.Equal(t, 2, p.SentCount())
}
