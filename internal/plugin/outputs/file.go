package outputs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wqmon/wqengine/internal/model"
	"github.com/wqmon/wqengine/internal/plugin"
)

// FileKind is the factory registration key for this output
const FileKind = "file"

// FileOutput writes each item as a JSON document into a directory,
// named after the item ID. A later delivery of the same item overwrites
// the earlier document.
type FileOutput struct {
	plugin.BaseOutputPlugin
	path string
}

// NewFileOutput creates the output from its configuration. The "path"
// setting names the target directory, created if absent.
func NewFileOutput(cfg model.PluginConfig) (model.OutputPlugin, error) {
	path := cfg.String("path", "")
	if path == "" {
		return nil, fmt.Errorf("file output %s: missing path setting", cfg.Name)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("file output %s: creating directory: %w", cfg.Name, err)
	}

	types := cfg.StringSlice("data_types")
	if len(types) == 0 {
		types = []string{model.AdvisoryItemType, model.SampleItemType}
	}

	return &FileOutput{
		BaseOutputPlugin: plugin.NewBaseOutputPlugin(cfg, types),
		path:             path,
	}, nil
}

// ValidateConfig requires a name and a target directory
func (o *FileOutput) ValidateConfig() bool {
	return o.BasePlugin.ValidateConfig() && o.path != ""
}

// Send writes one item to its JSON document. Distinct items write
// distinct files, so concurrent sends do not contend.
func (o *FileOutput) Send(_ context.Context, item model.DataItem) error {
	data, err := model.ItemJSON(item)
	if err != nil {
		return fmt.Errorf("encoding item %s: %w", item.ItemID(), err)
	}

	target := filepath.Join(o.path, item.ItemID()+".json")
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("writing item %s: %w", item.ItemID(), err)
	}
	return nil
}
