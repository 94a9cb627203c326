package model

import "time"

// PluginStatus represents the current status of a plugin
type PluginStatus string

const (
	// PluginEnabled indicates the plugin participates in processing cycles
	PluginEnabled PluginStatus = "ENABLED"
	// PluginDisabled indicates the plugin is configured off
	PluginDisabled PluginStatus = "DISABLED"
	// PluginError indicates the plugin was demoted after repeated failures
	// and stays excluded until explicitly reset
	PluginError PluginStatus = "ERROR"
)

// EngineState represents the phase of the current processing cycle
type EngineState string

const (
	// StateIdle indicates no cycle is in progress
	StateIdle EngineState = "IDLE"
	// StateCollecting indicates collector plugins are being run
	StateCollecting EngineState = "COLLECTING"
	// StateProcessing indicates filters and processors are being applied
	StateProcessing EngineState = "PROCESSING"
	// StateDistributing indicates output plugins are being run
	StateDistributing EngineState = "DISTRIBUTING"
)

// ProcessMode selects how filters and processors are applied
type ProcessMode string

const (
	// PerItemMode applies filters and processors one item at a time
	PerItemMode ProcessMode = "per_item"
	// BatchMode applies filters and processors to the whole collected batch
	BatchMode ProcessMode = "batch"
)

// CollectorStatus is a read-only snapshot of one collector plugin
type CollectorStatus struct {
	Status     PluginStatus `json:"status"`
	DataType   string       `json:"data_type"`
	LastRun    *time.Time   `json:"last_run,omitempty"`
	ErrorCount int          `json:"error_count"`
}

// OutputStatus is a read-only snapshot of one output plugin
type OutputStatus struct {
	Status         PluginStatus `json:"status"`
	SupportedTypes []string     `json:"supported_types"`
	SentCount      int          `json:"sent_count"`
	ErrorCount     int          `json:"error_count"`
}

// EngineStatus is a read-only snapshot of the processing engine
type EngineStatus struct {
	Running    bool                       `json:"running"`
	State      EngineState                `json:"state"`
	TotalItems int                        `json:"total_items"`
	ConfigDirs []string                   `json:"config_directories"`
	Collectors map[string]CollectorStatus `json:"collector_plugins"`
	Outputs    map[string]OutputStatus    `json:"output_plugins"`
	Timestamp  time.Time                  `json:"timestamp"`
}

// CycleStats summarizes one collect/process/distribute pass
type CycleStats struct {
	Collected   int           `json:"collected"`
	Processed   int           `json:"processed"`
	Distributed int           `json:"distributed"`
	Errors      int           `json:"errors"`
	Duration    time.Duration `json:"duration"`
}
