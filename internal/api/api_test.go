package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wqmon/wqengine/internal/core"
	"github.com/wqmon/wqengine/internal/model"
	"github.com/wqmon/wqengine/internal/plugin"
)

type staticCollector struct {
	plugin.BaseCollectorPlugin
	items []model.DataItem
}

func (c *staticCollector) DataType() string {
	return model.AdvisoryItemType
}

func (c *staticCollector) Collect(_ context.Context) ([]model.DataItem, error) {
	return c.items, nil
}

type discardOutput struct {
	plugin.BaseOutputPlugin
}

func (o *discardOutput) Send(_ context.Context, _ model.DataItem) error {
	return nil
}

func newTestAPI(t *testing.T) (*API, *core.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	advisory := model.NewAdvisory("adv-1", "High bacteria levels", "desc", model.SeverityHigh, "beach-monitor", nil)
	collector := &staticCollector{
		BaseCollectorPlugin: plugin.NewBaseCollectorPlugin(model.NewPluginConfig("beach")),
		items:               []model.DataItem{advisory},
	}
	output := &discardOutput{
		BaseOutputPlugin: plugin.NewBaseOutputPlugin(model.NewPluginConfig("stdout"), []string{model.AdvisoryItemType}),
	}

	engine := core.New()
	require.NoError(t, engine.RegisterCollector(collector))
	require.NoError(t, engine.RegisterOutput(output))

	return New(engine, "localhost", 8080), engine
}

func doRequest(a *API, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	a.router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	a, _ := newTestAPI(t)

	w := doRequest(a, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestGetStatus(t *testing.T) {
	a, engine := newTestAPI(t)
	engine.Start()

	w := doRequest(a, http.MethodGet, "/status")
	assert.Equal(t, http.StatusOK, w.Code)

	var status model.EngineStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.Running)
	assert.Equal(t, model.StateIdle, status.State)
	assert.Contains(t, status.Collectors, "beach")
	assert.Contains(t, status.Outputs, "stdout")
}

func TestGetPlugins(t *testing.T) {
	a, _ := newTestAPI(t)

	w := doRequest(a, http.MethodGet, "/plugins")
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "collector_plugins")
	assert.Contains(t, body, "output_plugins")
}

func TestResetPlugin(t *testing.T) {
	a, _ := newTestAPI(t)

	t.Run("Known plugin", func(t *testing.T) {
		w := doRequest(a, http.MethodPost, "/plugins/beach/reset")
		assert.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, true, body["reset"])
	})

	t.Run("Unknown plugin", func(t *testing.T) {
		w := doRequest(a, http.MethodPost, "/plugins/missing/reset")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRunCycleAndItems(t *testing.T) {
	a, _ := newTestAPI(t)

	w := doRequest(a, http.MethodPost, "/cycle")
	assert.Equal(t, http.StatusOK, w.Code)

	var stats model.CycleStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Collected)
	assert.Equal(t, 1, stats.Distributed)

	t.Run("GET /items lists the tracked item", func(t *testing.T) {
		w := doRequest(a, http.MethodGet, "/items")
		assert.Equal(t, http.StatusOK, w.Code)

		var items []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
		require.Len(t, items, 1)
		assert.Equal(t, "adv-1", items[0]["item_id"])
	})

	t.Run("GET /items/:id returns the item", func(t *testing.T) {
		w := doRequest(a, http.MethodGet, "/items/adv-1")
		assert.Equal(t, http.StatusOK, w.Code)

		var item map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
		assert.Equal(t, "High bacteria levels", item["title"])
	})

	t.Run("GET /items/:id for an unknown id is 404", func(t *testing.T) {
		w := doRequest(a, http.MethodGet, "/items/missing")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
