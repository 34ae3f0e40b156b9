package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts, latency, and in-flight gauge. The route
// template, not the raw path, becomes the label so cardinality stays flat.
func Metrics(m *prometheus.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.IncInFlight()
		c.Next()
		m.DecInFlight()
		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
