package model

import (
	"context"
	"time"
)

// Plugin is the base contract shared by collector and output plugins
type Plugin interface {
	// Name returns the plugin's unique registration key
	Name() string

	// Config returns the plugin's configuration
	Config() PluginConfig

	// Status returns the current plugin status
	Status() PluginStatus

	// SetStatus updates the plugin status
	SetStatus(status PluginStatus)

	// Enabled reports whether the plugin participates in cycles
	Enabled() bool

	// ErrorCount returns the number of recorded errors
	ErrorCount() int

	// HandleError records a failure and demotes the plugin to ERROR once
	// the count reaches the configured retry count
	HandleError(err error)

	// Reset clears the error count and re-enables a demoted plugin
	Reset()

	// ValidateConfig checks the plugin configuration for registration
	ValidateConfig() bool
}

// CollectorPlugin produces data items from an external source
type CollectorPlugin interface {
	Plugin

	// Collect gathers data items from the source. The context carries the
	// per-call timeout enforced by the engine; implementations should honor
	// cancellation but the engine stops waiting regardless.
	Collect(ctx context.Context) ([]DataItem, error)

	// DataType returns the category of data this plugin collects
	DataType() string

	// LastRun returns the start time of the most recent collect call,
	// zero if the plugin has never run
	LastRun() time.Time

	// MarkRun records the start of a collect call
	MarkRun(t time.Time)
}

// OutputPlugin delivers data items to an external destination
type OutputPlugin interface {
	Plugin

	// Send delivers one item. It must be safe to call concurrently for
	// different items.
	Send(ctx context.Context, item DataItem) error

	// ShouldSend reports whether this plugin applies to the item
	ShouldSend(item DataItem) bool

	// SupportedDataTypes returns the item types this plugin handles
	SupportedDataTypes() []string

	// SentCount returns the number of successful deliveries
	SentCount() int

	// MarkSent records one successful delivery
	MarkSent()
}
