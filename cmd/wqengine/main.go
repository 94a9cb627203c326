package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wqmon/wqengine/internal/api"
	"github.com/wqmon/wqengine/internal/core"
	"github.com/wqmon/wqengine/internal/model"
	"github.com/wqmon/wqengine/internal/plugin"
	"github.com/wqmon/wqengine/internal/plugin/collectors"
	"github.com/wqmon/wqengine/internal/plugin/outputs"
)

var (
	configFile       string
	pluginConfigDirs []string
	extraConfigDirs  []string
	maxWorkers       int
	mode             string
	oneShot          bool
	intervalSeconds  int
	watchConfigs     bool
	apiEnabled       bool
	apiHost          string
	apiPort          int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wqengine",
		Short: "Water quality processing engine - collect, process, and distribute monitoring data",
		RunE:  run,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to engine configuration file")
	rootCmd.PersistentFlags().StringSliceVar(&pluginConfigDirs, "plugin-config-dir", nil, "Plugin configuration directories")
	rootCmd.PersistentFlags().StringSliceVar(&extraConfigDirs, "extra-config-dir", nil, "Additional configuration directories, searched after the plugin config dirs")
	rootCmd.PersistentFlags().IntVar(&maxWorkers, "workers", 0, "Worker pool size for plugin fan-out")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "", "Processing mode (per_item or batch)")
	rootCmd.PersistentFlags().BoolVar(&oneShot, "one-shot", false, "Run a single cycle and exit")
	rootCmd.PersistentFlags().IntVar(&intervalSeconds, "interval", 0, "Seconds between cycles")
	rootCmd.PersistentFlags().BoolVar(&watchConfigs, "watch-configs", false, "Reload plugins when config files change")

	rootCmd.PersistentFlags().BoolVar(&apiEnabled, "api", true, "Enable the status API server")
	rootCmd.PersistentFlags().StringVar(&apiHost, "api-host", "localhost", "Status API host")
	rootCmd.PersistentFlags().IntVar(&apiPort, "api-port", 8080, "Status API port")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	cfg, err := core.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	applyFlagOverrides(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	factory := plugin.NewFactory()
	registerBuiltins(factory)

	loader := plugin.NewLoader(factory, cfg.PluginConfigDirs, cfg.ExtraConfigDirs)

	engine := core.New(
		core.WithMaxWorkers(cfg.MaxWorkers),
		core.WithMode(cfg.Mode),
		core.WithConfigDirs(loader.ConfigDirs()),
	)

	// Items failing their own validation never enter the pipeline.
	engine.AddFilter(func(item model.DataItem) bool {
		return item.Validate()
	})

	registerLoaded(engine, loader, logger)
	engine.Start()
	defer engine.Stop()

	if watchConfigs {
		watcher, err := plugin.NewConfigWatcher(loader.ConfigDirs(), func() {
			reloadedCollectors, reloadedOutputs := loader.Load()
			engine.ReplacePlugins(reloadedCollectors, reloadedOutputs)
		})
		if err != nil {
			return fmt.Errorf("starting config watcher: %w", err)
		}
		watcher.Start()
		defer watcher.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var server *api.API
	if cfg.API.Enabled {
		server = api.New(engine, cfg.API.Host, cfg.API.Port)
		go func() {
			if err := server.Start(); err != nil {
				logger.Error("api server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Stop(shutdownCtx); err != nil {
				logger.Error("api shutdown failed", "error", err)
			}
		}()
	}

	if oneShot {
		engine.RunCycle(ctx)
		return nil
	}

	logger.Info("engine running", "interval", cfg.Interval().String())
	ticker := time.NewTicker(cfg.Interval())
	defer ticker.Stop()

	engine.RunCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-ticker.C:
			engine.RunCycle(ctx)
		}
	}
}

// applyFlagOverrides lets explicit flags win over the config file
func applyFlagOverrides(cmd *cobra.Command, cfg *core.Config) {
	flags := cmd.Flags()
	if flags.Changed("plugin-config-dir") {
		cfg.PluginConfigDirs = pluginConfigDirs
	}
	if flags.Changed("extra-config-dir") {
		cfg.ExtraConfigDirs = extraConfigDirs
	}
	if flags.Changed("workers") {
		cfg.MaxWorkers = maxWorkers
	}
	if flags.Changed("mode") {
		cfg.Mode = model.ProcessMode(mode)
	}
	if flags.Changed("interval") {
		cfg.IntervalSeconds = intervalSeconds
	}
	if flags.Changed("api") {
		cfg.API.Enabled = apiEnabled
	}
	if flags.Changed("api-host") {
		cfg.API.Host = apiHost
	}
	if flags.Changed("api-port") {
		cfg.API.Port = apiPort
	}
}

// registerBuiltins registers the built-in plugin kinds with the factory
func registerBuiltins(factory *plugin.Factory) {
	factory.RegisterCollector(collectors.AdvisoryFileKind, collectors.NewAdvisoryFileCollector)
	factory.RegisterCollector(collectors.SampleHTTPKind, collectors.NewSampleHTTPCollector)
	factory.RegisterOutput(outputs.StdoutKind, outputs.NewStdoutOutput)
	factory.RegisterOutput(outputs.FileKind, outputs.NewFileOutput)
}

// registerLoaded registers loader-built plugins; one plugin's failure
// never blocks the rest
func registerLoaded(engine *core.Engine, loader *plugin.Loader, logger *slog.Logger) {
	loadedCollectors, loadedOutputs := loader.Load()

	for _, p := range loadedCollectors {
		if err := engine.RegisterCollector(p); err != nil {
			logger.Error("skipping collector plugin", "plugin", p.Name(), "error", err)
		}
	}
	for _, p := range loadedOutputs {
		if err := engine.RegisterOutput(p); err != nil {
			logger.Error("skipping output plugin", "plugin", p.Name(), "error", err)
		}
	}
}
