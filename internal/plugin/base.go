package plugin

import (
	"log/slog"
	"sync"
	"time"

	"github.com/wqmon/wqengine/internal/model"
)

// BasePlugin provides the status and error bookkeeping shared by all
// plugins. Counter methods are safe for concurrent use, since the engine
// invokes plugins from a worker pool.
type BasePlugin struct {
	cfg        model.PluginConfig
	status     model.PluginStatus
	errorCount int
	logger     *slog.Logger
	mu         sync.Mutex
}

// NewBasePlugin creates a base plugin from its configuration. The initial
// status follows the enabled flag.
func NewBasePlugin(cfg model.PluginConfig) BasePlugin {
	status := model.PluginEnabled
	if !cfg.Enabled {
		status = model.PluginDisabled
	}

	return BasePlugin{
		cfg:    cfg,
		status: status,
		logger: slog.Default().With("plugin", cfg.Name),
	}
}

// Name returns the plugin's unique registration key
func (p *BasePlugin) Name() string {
	return p.cfg.Name
}

// Config returns the plugin's configuration
func (p *BasePlugin) Config() model.PluginConfig {
	return p.cfg
}

// Status returns the current plugin status
func (p *BasePlugin) Status() model.PluginStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// SetStatus updates the plugin status
func (p *BasePlugin) SetStatus(status model.PluginStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setStatusLocked(status)
}

func (p *BasePlugin) setStatusLocked(status model.PluginStatus) {
	if p.status == status {
		return
	}
	p.status = status
	p.logger.Info("plugin status changed", "status", string(status))
}

// Enabled reports whether the plugin participates in cycles
func (p *BasePlugin) Enabled() bool {
	return p.Status() == model.PluginEnabled
}

// ErrorCount returns the number of recorded errors
func (p *BasePlugin) ErrorCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errorCount
}

// HandleError records a failure. Once the count reaches the configured
// retry count the plugin is demoted to ERROR and excluded from future
// cycles until Reset is called.
func (p *BasePlugin) HandleError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.errorCount++
	p.logger.Error("plugin error", "count", p.errorCount, "error", err)

	if p.errorCount >= p.cfg.RetryCount {
		p.setStatusLocked(model.PluginError)
	}
}

// Reset clears the error count and re-enables a demoted plugin
func (p *BasePlugin) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.errorCount = 0
	if p.status == model.PluginError {
		p.setStatusLocked(model.PluginEnabled)
	}
}

// ValidateConfig checks the plugin configuration for registration
func (p *BasePlugin) ValidateConfig() bool {
	return p.cfg.Name != ""
}

// Logger returns the plugin-scoped logger
func (p *BasePlugin) Logger() *slog.Logger {
	return p.logger
}

// BaseCollectorPlugin adds the last-run bookkeeping of collector plugins
type BaseCollectorPlugin struct {
	BasePlugin
	lastRun time.Time
	runMu   sync.Mutex
}

// NewBaseCollectorPlugin creates a collector plugin base
func NewBaseCollectorPlugin(cfg model.PluginConfig) BaseCollectorPlugin {
	return BaseCollectorPlugin{BasePlugin: NewBasePlugin(cfg)}
}

// LastRun returns the start time of the most recent collect call
func (p *BaseCollectorPlugin) LastRun() time.Time {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	return p.lastRun
}

// MarkRun records the start of a collect call
func (p *BaseCollectorPlugin) MarkRun(t time.Time) {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	p.lastRun = t
}

// BaseOutputPlugin adds the delivery bookkeeping of output plugins
type BaseOutputPlugin struct {
	BasePlugin
	supportedTypes []string
	sentCount      int
	sentMu         sync.Mutex
}

// NewBaseOutputPlugin creates an output plugin base. The supported types
// drive the default ShouldSend predicate.
func NewBaseOutputPlugin(cfg model.PluginConfig, supportedTypes []string) BaseOutputPlugin {
	return BaseOutputPlugin{
		BasePlugin:     NewBasePlugin(cfg),
		supportedTypes: supportedTypes,
	}
}

// SupportedDataTypes returns the item types this plugin handles
func (p *BaseOutputPlugin) SupportedDataTypes() []string {
	return append([]string(nil), p.supportedTypes...)
}

// ShouldSend reports whether the item's type is among the supported
// types. Concrete plugins may override for finer routing.
func (p *BaseOutputPlugin) ShouldSend(item model.DataItem) bool {
	for _, t := range p.supportedTypes {
		if t == item.ItemType() {
			return true
		}
	}
	return false
}

// SentCount returns the number of successful deliveries
func (p *BaseOutputPlugin) SentCount() int {
	p.sentMu.Lock()
	defer p.sentMu.Unlock()
	return p.sentCount
}

// MarkSent records one successful delivery
func (p *BaseOutputPlugin) MarkSent() {
	p.sentMu.Lock()
	defer p.sentMu.Unlock()
	p.sentCount++
}
