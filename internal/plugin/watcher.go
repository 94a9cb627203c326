package plugin

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher watches the plugin config directories and invokes a
// callback when a config file is created, changed, or removed. Bursts of
// filesystem events are coalesced into a single callback.
type ConfigWatcher struct {
	watcher     *fsnotify.Watcher
	onChange    func()
	debounce    time.Duration
	logger      *slog.Logger
	stopChannel chan struct{}
}

// NewConfigWatcher creates a watcher over the given directories
func NewConfigWatcher(dirs []string, onChange func()) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	logger := slog.Default().With("component", "config_watcher")

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			logger.Warn("cannot watch config directory", "dir", dir, "error", err)
		}
	}

	return &ConfigWatcher{
		watcher:     watcher,
		onChange:    onChange,
		debounce:    500 * time.Millisecond,
		logger:      logger,
		stopChannel: make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine
func (w *ConfigWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("config watcher started")
}

// Stop halts the watcher
func (w *ConfigWatcher) Stop() {
	close(w.stopChannel)
	if err := w.watcher.Close(); err != nil {
		w.logger.Error("failed to close fsnotify watcher", "error", err)
	}
}

func (w *ConfigWatcher) watchLoop() {
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-w.stopChannel:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isConfigFile(event.Name) {
				continue
			}
			w.logger.Debug("config change detected", "file", event.Name, "op", event.Op.String())

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", "error", err)
		case <-fire:
			w.logger.Info("plugin configs changed, reloading")
			w.onChange()
		}
	}
}

func isConfigFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "_") || strings.HasPrefix(base, ".") {
		return false
	}
	ext := filepath.Ext(base)
	return ext == ".json" || ext == ".ini"
}
