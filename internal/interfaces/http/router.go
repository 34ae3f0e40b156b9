// Package http wires the gin route tree and the HTTP server around it.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/interfaces/http/handlers"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware dependencies for the
// complete route tree.
type RouterConfig struct {
	ReportHandler    *handlers.ReportHandler
	ScreeningHandler *handlers.ScreeningHandler
	AnalyticsHandler *handlers.AnalyticsHandler
	HealthHandler    *handlers.HealthHandler

	Logger         logging.Logger
	MetricsHandler http.Handler
	HTTPMetrics    gin.HandlerFunc
	RateLimiter    *middleware.TokenBucketLimiter
	CORS           *middleware.CORSConfig
}

// NewRouter builds the full route tree.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	corsCfg := middleware.DefaultCORSConfig()
	if cfg.CORS != nil {
		corsCfg = *cfg.CORS
	}
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.RequestLogging(logger, "/healthz", "/readyz", "/metrics"))
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics)
	}
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")

	if h := cfg.ReportHandler; h != nil {
		api.POST("/reports", h.Process)
		api.POST("/reports/async", h.Submit)
		api.POST("/reports/batch", h.ProcessBatch)
		api.GET("/records", h.List)
		api.GET("/records/search", h.Search)
		api.GET("/records/stats", h.Stats)
		api.GET("/records/:id", h.Get)
		api.DELETE("/records/:id", h.Delete)
		api.POST("/records/:id/reprocess", h.Reprocess)
	}

	if h := cfg.ScreeningHandler; h != nil {
		api.POST("/screening/analyze", h.Analyze)
		api.GET("/screening/high-risk", h.HighRisk)
		api.GET("/screening/rules", h.Rules)
	}

	if h := cfg.AnalyticsHandler; h != nil {
		api.GET("/analytics/summary", h.Summary)
		api.GET("/analytics/top-diseases", h.TopDiseases)
		api.GET("/analytics/top-labs", h.TopLabs)
		api.GET("/analytics/trend", h.Trend)
		api.GET("/analytics/outbreaks", h.Outbreaks)
	}

	return r
}
