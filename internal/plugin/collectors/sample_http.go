package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wqmon/wqengine/internal/model"
	"github.com/wqmon/wqengine/internal/plugin"
)

// SampleHTTPKind is the factory registration key for this collector
const SampleHTTPKind = "sample_http"

// sampleDocument is the wire shape of one reading
type sampleDocument struct {
	ID        string  `json:"id"`
	Site      string  `json:"site"`
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
	Units     string  `json:"units"`
	SampledAt string  `json:"sampled_at"`
}

// SampleHTTPCollector fetches water-quality readings from an HTTP
// endpoint returning a JSON array of readings.
type SampleHTTPCollector struct {
	plugin.BaseCollectorPlugin
	url    string
	client *http.Client
}

// NewSampleHTTPCollector creates the collector from its configuration.
// The "url" setting names the endpoint.
func NewSampleHTTPCollector(cfg model.PluginConfig) (model.CollectorPlugin, error) {
	url := cfg.String("url", "")
	if url == "" {
		return nil, fmt.Errorf("sample http collector %s: missing url setting", cfg.Name)
	}

	return &SampleHTTPCollector{
		BaseCollectorPlugin: plugin.NewBaseCollectorPlugin(cfg),
		url:                 url,
		client:              &http.Client{},
	}, nil
}

// DataType returns the category of data this plugin collects
func (c *SampleHTTPCollector) DataType() string {
	return model.SampleItemType
}

// ValidateConfig requires a name and an endpoint URL
func (c *SampleHTTPCollector) ValidateConfig() bool {
	return c.BasePlugin.ValidateConfig() && c.url != ""
}

// Collect fetches and decodes the endpoint's readings
func (c *SampleHTTPCollector) Collect(ctx context.Context) ([]model.DataItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building sample request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching samples: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching samples: unexpected status %s", resp.Status)
	}

	var docs []sampleDocument
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decoding samples: %w", err)
	}

	items := make([]model.DataItem, 0, len(docs))
	for _, doc := range docs {
		id := doc.ID
		if id == "" {
			id = uuid.NewString()
		}

		sampledAt := time.Now()
		if doc.SampledAt != "" {
			if ts, err := time.Parse(time.RFC3339, doc.SampledAt); err == nil {
				sampledAt = ts
			}
		}

		reading := model.NewSampleReading(id, doc.Site, doc.Parameter, doc.Value, doc.Units, c.Name(), sampledAt)
		items = append(items, reading)
	}

	return items, nil
}
