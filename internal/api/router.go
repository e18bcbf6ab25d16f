// Package api wires the HTTP handlers, middleware and metrics into a gin engine.
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"battery-dispatch/internal/api/handlers"
	"battery-dispatch/internal/api/middleware"
	"battery-dispatch/internal/api/models"
	"battery-dispatch/internal/config"
	"battery-dispatch/internal/grid"
	"battery-dispatch/internal/metrics"
	"battery-dispatch/internal/simulation"
)

// Registry is where the service's metrics live and are served from.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// NewRouter builds the service's gin engine from cfg.
func NewRouter(cfg *config.Config, log zerolog.Logger, reg Registry) (*gin.Engine, error) {
	rec, err := metrics.NewRecorder(reg)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	simOpts := simulation.Options{
		DayMinutes: cfg.Optimizer.DayMinutes,
		MaxWork:    cfg.Optimizer.MaxWork,
	}
	simulateHandler := handlers.NewSimulateHandler(simOpts, cfg.Strategy, rec, log)
	strategyHandler := handlers.NewStrategyHandler(cfg.Strategy.Name, cfg.Optimizer.MaxWork)
	batteryHandler := handlers.NewBatteryHandler(cfg.Server.BatteryDir, log)
	priceHandler := handlers.NewPriceHandler(grid.Options{DayMinutes: cfg.Optimizer.DayMinutes})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	{
		api.POST("/simulate", simulateHandler.Simulate)
		api.POST("/simulate/compare", simulateHandler.Compare)
		api.POST("/simulate/ledger.csv", simulateHandler.LedgerCSV)
		api.POST("/prices/analyze", priceHandler.Analyze)

		api.GET("/strategies", strategyHandler.ListStrategies)
		api.GET("/batteries", batteryHandler.ListBatteries)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	serveStatic(router, cfg.Server.StaticDir, log)
	return router, nil
}

// serveStatic serves a single-page app from dir, if it exists. API paths
// that match no route keep a JSON 404.
func serveStatic(router *gin.Engine, dir string, log zerolog.Logger) {
	notFound := func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "NOT_FOUND", Message: "Not found"},
		})
	}
	if dir == "" {
		router.NoRoute(notFound)
		return
	}
	if _, err := os.Stat(dir); err != nil {
		log.Warn().Str("dir", dir).Msg("static directory not found, skipping static file serving")
		router.NoRoute(notFound)
		return
	}

	router.Static("/assets", filepath.Join(dir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(dir, "favicon.ico"))
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			notFound(c)
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	})
	log.Info().Str("dir", dir).Msg("serving static files")
}
