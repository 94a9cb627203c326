package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wqmon/wqengine/internal/model"
	"github.com/wqmon/wqengine/internal/plugin"
)

// AdvisoryFileKind is the factory registration key for this collector
const AdvisoryFileKind = "advisory_file"

// advisoryDocument is the on-disk shape of one advisory file
type advisoryDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    string   `json:"severity"`
	Source      string   `json:"source"`
	Areas       []string `json:"areas"`
}

// AdvisoryFileCollector reads advisory JSON documents from a directory.
// Files already collected are skipped until their modification time
// changes.
type AdvisoryFileCollector struct {
	plugin.BaseCollectorPlugin
	path string
	seen map[string]time.Time
	mu   sync.Mutex
}

// NewAdvisoryFileCollector creates the collector from its configuration.
// The "path" setting names the advisory directory.
func NewAdvisoryFileCollector(cfg model.PluginConfig) (model.CollectorPlugin, error) {
	path := cfg.String("path", "")
	if path == "" {
		return nil, fmt.Errorf("advisory file collector %s: missing path setting", cfg.Name)
	}

	return &AdvisoryFileCollector{
		BaseCollectorPlugin: plugin.NewBaseCollectorPlugin(cfg),
		path:                path,
		seen:                make(map[string]time.Time),
	}, nil
}

// DataType returns the category of data this plugin collects
func (c *AdvisoryFileCollector) DataType() string {
	return model.AdvisoryItemType
}

// ValidateConfig requires a name and an advisory directory
func (c *AdvisoryFileCollector) ValidateConfig() bool {
	return c.BasePlugin.ValidateConfig() && c.path != ""
}

// Collect reads new or changed advisory documents
func (c *AdvisoryFileCollector) Collect(ctx context.Context) ([]model.DataItem, error) {
	matches, err := filepath.Glob(filepath.Join(c.path, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scanning advisory directory: %w", err)
	}

	var items []model.DataItem
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		info, err := os.Stat(path)
		if err != nil {
			c.Logger().Warn("cannot stat advisory file", "path", path, "error", err)
			continue
		}

		c.mu.Lock()
		last, exists := c.seen[path]
		c.mu.Unlock()
		if exists && !info.ModTime().After(last) {
			continue
		}

		item, err := c.readAdvisory(path)
		if err != nil {
			c.Logger().Warn("skipping unreadable advisory file", "path", path, "error", err)
			continue
		}
		items = append(items, item)

		c.mu.Lock()
		c.seen[path] = info.ModTime()
		c.mu.Unlock()
	}

	return items, nil
}

func (c *AdvisoryFileCollector) readAdvisory(path string) (*model.Advisory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc advisoryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Source == "" {
		doc.Source = c.Name()
	}

	severity := model.AdvisorySeverity(doc.Severity)
	switch severity {
	case model.SeverityLow, model.SeverityMedium, model.SeverityHigh, model.SeverityCritical:
	default:
		severity = model.SeverityMedium
	}

	advisory := model.NewAdvisory(doc.ID, doc.Title, doc.Description, severity, doc.Source, doc.Areas)
	advisory.AddMetadata("file", filepath.Base(path))
	return advisory, nil
}
