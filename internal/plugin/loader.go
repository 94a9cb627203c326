package plugin

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/wqmon/wqengine/internal/model"
)

// Loader resolves plugin configurations from configuration directories
// and instantiates every plugin kind registered with the factory.
//
// Config directories are additive: the plugin config dirs are always
// searched, extra dirs are appended after them. Within that order, a
// later file for the same key overrides an earlier one. The loader is
// idempotent: unchanged directories and factory yield the same plugins.
type Loader struct {
	factory    *Factory
	configDirs []string
	logger     *slog.Logger
}

// NewLoader creates a loader over the given config directories
func NewLoader(factory *Factory, pluginConfigDirs, extraConfigDirs []string) *Loader {
	dirs := append([]string(nil), pluginConfigDirs...)
	dirs = append(dirs, extraConfigDirs...)

	return &Loader{
		factory:    factory,
		configDirs: dirs,
		logger:     slog.Default().With("component", "plugin_loader"),
	}
}

// ConfigDirs returns the directories searched for plugin configs
func (l *Loader) ConfigDirs() []string {
	return append([]string(nil), l.configDirs...)
}

// LoadConfigs scans the config directories for per-plugin JSON and INI
// files. The file's base name becomes the plugin key. A file that fails
// to parse is logged and skipped; it never aborts the scan.
func (l *Loader) LoadConfigs() map[string]model.PluginConfig {
	configs := make(map[string]model.PluginConfig)

	for _, dir := range l.configDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			l.logger.Warn("config directory not readable", "dir", dir, "error", err)
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			name := entry.Name()
			if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
				continue
			}

			ext := filepath.Ext(name)
			key := strings.TrimSuffix(name, ext)
			path := filepath.Join(dir, name)

			var (
				cfg      model.PluginConfig
				parseErr error
			)

			switch ext {
			case ".json":
				cfg, parseErr = parseJSONConfig(key, path)
			case ".ini":
				cfg, parseErr = parseINIConfig(key, path)
			default:
				continue
			}

			if parseErr != nil {
				l.logger.Error("failed to load plugin config", "path", path, "error", parseErr)
				continue
			}

			configs[key] = cfg
			l.logger.Info("loaded plugin config", "plugin", key, "path", path)
		}
	}

	return configs
}

// Load instantiates every registered plugin kind, pairing it with its
// configuration or the defaults when no config file exists. A kind whose
// constructor fails is logged and skipped.
func (l *Loader) Load() (map[string]model.CollectorPlugin, map[string]model.OutputPlugin) {
	configs := l.LoadConfigs()

	collectors := make(map[string]model.CollectorPlugin)
	for _, kind := range l.factory.CollectorKinds() {
		cfg, exists := configs[kind]
		if !exists {
			cfg = model.NewPluginConfig(kind)
		}

		p, err := l.factory.CreateCollector(kind, cfg)
		if err != nil {
			l.logger.Error("failed to build collector plugin", "kind", kind, "error", err)
			continue
		}
		collectors[p.Name()] = p
	}

	outputs := make(map[string]model.OutputPlugin)
	for _, kind := range l.factory.OutputKinds() {
		cfg, exists := configs[kind]
		if !exists {
			cfg = model.NewPluginConfig(kind)
		}

		p, err := l.factory.CreateOutput(kind, cfg)
		if err != nil {
			l.logger.Error("failed to build output plugin", "kind", kind, "error", err)
			continue
		}
		outputs[p.Name()] = p
	}

	return collectors, outputs
}

// configFile mirrors the recognized keys of a JSON plugin config
type configFile struct {
	Enabled    *bool          `json:"enabled"`
	Settings   map[string]any `json:"config"`
	RetryCount *int           `json:"retry_count"`
	Timeout    *int           `json:"timeout"`
}

func parseJSONConfig(key, path string) (model.PluginConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.PluginConfig{}, fmt.Errorf("reading config file: %w", err)
	}

	var file configFile
	if err := json.Unmarshal(data, &file); err != nil {
		return model.PluginConfig{}, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := model.NewPluginConfig(key)
	if file.Enabled != nil {
		cfg.Enabled = *file.Enabled
	}
	if file.Settings != nil {
		cfg.Settings = file.Settings
	}
	if file.RetryCount != nil {
		cfg.RetryCount = *file.RetryCount
	}
	if file.Timeout != nil {
		cfg.TimeoutSeconds = *file.Timeout
	}
	return cfg, nil
}

func parseINIConfig(key, path string) (model.PluginConfig, error) {
	file, err := ini.Load(path)
	if err != nil {
		return model.PluginConfig{}, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := model.NewPluginConfig(key)

	root := file.Section(ini.DefaultSection)
	if root.HasKey("enabled") {
		cfg.Enabled = root.Key("enabled").MustBool(true)
	}
	if root.HasKey("retry_count") {
		cfg.RetryCount = root.Key("retry_count").MustInt(model.DefaultRetryCount)
	}
	if root.HasKey("timeout") {
		cfg.TimeoutSeconds = root.Key("timeout").MustInt(model.DefaultTimeoutSeconds)
	}

	for _, k := range file.Section("config").Keys() {
		cfg.Settings[k.Name()] = k.Value()
	}

	return cfg, nil
}
