package outputs

import (
	"context"
	"fmt"
	"time"

	"github.com/wqmon/wqengine/internal/model"
	"github.com/wqmon/wqengine/internal/plugin"
)

// StdoutKind is the factory registration key for this output
const StdoutKind = "stdout"

// StdoutOutput writes items to standard output in text or JSON format
type StdoutOutput struct {
	plugin.BaseOutputPlugin
	format string
}

// NewStdoutOutput creates the output from its configuration. The
// "format" setting selects "text" (default) or "json"; "data_types"
// narrows the accepted item types.
func NewStdoutOutput(cfg model.PluginConfig) (model.OutputPlugin, error) {
	types := cfg.StringSlice("data_types")
	if len(types) == 0 {
		types = []string{model.AdvisoryItemType, model.SampleItemType}
	}

	return &StdoutOutput{
		BaseOutputPlugin: plugin.NewBaseOutputPlugin(cfg, types),
		format:           cfg.String("format", "text"),
	}, nil
}

// Send writes one item to stdout
func (o *StdoutOutput) Send(_ context.Context, item model.DataItem) error {
	if o.format == "json" {
		data, err := model.ItemJSON(item)
		if err != nil {
			return fmt.Errorf("encoding item %s: %w", item.ItemID(), err)
		}
		fmt.Println(string(data))
		return nil
	}

	switch it := item.(type) {
	case *model.Advisory:
		fmt.Printf("[%s] ADVISORY %s (%s): %s\n",
			it.UpdatedAt().Format(time.RFC3339), it.ItemID(), it.Severity, it.Title)
	case *model.SampleReading:
		fmt.Printf("[%s] SAMPLE %s %s=%g %s\n",
			it.SampledAt.Format(time.RFC3339), it.Site, it.Parameter, it.Value, it.Units)
	default:
		fmt.Printf("[%s] %s %s from %s\n",
			item.UpdatedAt().Format(time.RFC3339), item.ItemType(), item.ItemID(), item.Source())
	}
	return nil
}
