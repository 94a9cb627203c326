package collectors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wqmon/wqengine/internal/model"
)

func sampleCollectorConfig(url string) model.PluginConfig {
	cfg := model.NewPluginConfig("sample_http")
	cfg.Settings = map[string]any{"url": url}
	return cfg
}

func TestNewSampleHTTPCollector(t *testing.T) {
	t.Run("Requires a url setting", func(t *testing.T) {
		_, err := NewSampleHTTPCollector(model.NewPluginConfig("sample_http"))
		assert.ErrorContains(t, err, "missing url setting")
	})

	t.Run("Declares the sample data type", func(t *testing.T) {
		c, err := NewSampleHTTPCollector(sampleCollectorConfig("http://localhost/samples"))
		require.NoError(t, err)
		assert.Equal(t, model.SampleItemType, c.DataType())
		assert.True(t, c.ValidateConfig())
	})
}

func TestSampleHTTPCollectorCollect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": "s-1", "site": "EB-04", "parameter": "enterococcus", "value": 104.5, "units": "cfu/100ml", "sampled_at": "2026-07-14T08:30:00Z"},
			{"site": "EB-05", "parameter": "ph", "value": 7.8}
		]`))
	}))
	defer server.Close()

	c, err := NewSampleHTTPCollector(sampleCollectorConfig(server.URL))
	require.NoError(t, err)

	items, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0].(*model.SampleReading)
	assert.Equal(t, "s-1", first.ItemID())
	assert.Equal(t, "EB-04", first.Site)
	assert.Equal(t, "enterococcus", first.Parameter)
	assert.Equal(t, 104.5, first.Value)
	assert.Equal(t, "sample_http", first.Source())
	assert.Equal(t, time.Date(2026, 7, 14, 8, 30, 0, 0, time.UTC), first.SampledAt)

	second := items[1].(*model.SampleReading)
	assert.NotEmpty(t, second.ItemID(), "missing id gets a generated one")
	assert.WithinDuration(t, time.Now(), second.SampledAt, 5*time.Second, "missing sample time falls back to now")
}

func TestSampleHTTPCollectorErrors(t *testing.T) {
	t.Run("Non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		c, err := NewSampleHTTPCollector(sampleCollectorConfig(server.URL))
		require.NoError(t, err)

		_, err = c.Collect(context.Background())
		assert.ErrorContains(t, err, "unexpected status")
	})

	t.Run("Malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{not json`))
		}))
		defer server.Close()

		c, err := NewSampleHTTPCollector(sampleCollectorConfig(server.URL))
		require.NoError(t, err)

		_, err = c.Collect(context.Background())
		assert.ErrorContains(t, err, "decoding samples")
	})

	t.Run("Cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		c, err := NewSampleHTTPCollector(sampleCollectorConfig(server.URL))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = c.Collect(ctx)
		assert.Error(t, err)
	})
}
