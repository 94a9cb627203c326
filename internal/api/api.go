package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/wqmon/wqengine/internal/api/docs"
	"github.com/wqmon/wqengine/internal/core"
)

// API exposes the engine status surface over REST
type API struct {
	engine *core.Engine
	router *gin.Engine
	server *http.Server
	host   string
	port   int
}

// New creates the API over a processing engine
// @title           Water Quality Engine API
// @version         1.0
// @description     Monitoring and control surface for the water-quality processing engine
// @host      localhost:8080
// @BasePath  /
func New(engine *core.Engine, host string, port int) *API {
	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%d", host, port)

	router := gin.Default()

	a := &API{
		engine: engine,
		router: router,
		host:   host,
		port:   port,
	}
	a.setupRoutes()
	return a
}

func (a *API) setupRoutes() {
	a.router.GET("/health", a.healthCheck)
	a.router.GET("/status", a.getStatus)

	plugins := a.router.Group("/plugins")
	{
		plugins.GET("", a.getPlugins)
		plugins.POST("/:name/reset", a.resetPlugin)
	}

	items := a.router.Group("/items")
	{
		items.GET("", a.getItems)
		items.GET("/:id", a.getItem)
	}

	a.router.POST("/cycle", a.runCycle)

	a.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Start starts the API server; it blocks until the server exits
func (a *API) Start() error {
	a.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", a.host, a.port),
		Handler: a.router,
	}
	return a.server.ListenAndServe()
}

// Stop shuts the API server down
func (a *API) Stop(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// healthCheck handles GET /health
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (a *API) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now(),
	})
}

// getStatus handles GET /status
// @Summary      Engine status snapshot
// @Description  Run state, tracked item count, and per-plugin status and counters
// @Tags         system
// @Produce      json
// @Success      200  {object}  model.EngineStatus
// @Router       /status [get]
func (a *API) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, a.engine.Status())
}

// getPlugins handles GET /plugins
// @Summary      Plugin status
// @Tags         plugins
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /plugins [get]
func (a *API) getPlugins(c *gin.Context) {
	status := a.engine.Status()
	c.JSON(http.StatusOK, gin.H{
		"collector_plugins": status.Collectors,
		"output_plugins":    status.Outputs,
	})
}

// resetPlugin handles POST /plugins/:name/reset
// @Summary      Reset a demoted plugin
// @Description  Clears the plugin's error count and re-enables it
// @Tags         plugins
// @Produce      json
// @Param        name  path  string  true  "Plugin name"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /plugins/{name}/reset [post]
func (a *API) resetPlugin(c *gin.Context) {
	name := c.Param("name")
	if !a.engine.ResetPlugin(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "plugin not found", "plugin": name})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plugin": name, "reset": true})
}

// getItems handles GET /items
// @Summary      Tracked items
// @Tags         items
// @Produce      json
// @Success      200  {array}  map[string]interface{}
// @Router       /items [get]
func (a *API) getItems(c *gin.Context) {
	items := a.engine.Items()
	result := make([]map[string]any, 0, len(items))
	for _, item := range items {
		result = append(result, item.ToMap())
	}
	c.JSON(http.StatusOK, result)
}

// getItem handles GET /items/:id
// @Summary      One tracked item
// @Tags         items
// @Produce      json
// @Param        id  path  string  true  "Item ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /items/{id} [get]
func (a *API) getItem(c *gin.Context) {
	id := c.Param("id")
	item, exists := a.engine.Item(id)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found", "item_id": id})
		return
	}
	c.JSON(http.StatusOK, item.ToMap())
}

// runCycle handles POST /cycle
// @Summary      Trigger one processing cycle
// @Description  Runs collect, process, and distribute once and returns the cycle stats
// @Tags         system
// @Produce      json
// @Success      200  {object}  model.CycleStats
// @Router       /cycle [post]
func (a *API) runCycle(c *gin.Context) {
	stats := a.engine.RunCycle(c.Request.Context())
	c.JSON(http.StatusOK, stats)
}
