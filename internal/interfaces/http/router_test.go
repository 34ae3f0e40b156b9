package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/prometheus"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/interfaces/http/handlers"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/interfaces/http/middleware"
)

func TestNewRouter_HealthAndMetricsEndpoints(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := prometheus.NewHTTPMetrics(reg.Registerer())
	assert.NoError(t, err)

	router := NewRouter(RouterConfig{
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"noop": func(context.Context) error { return nil },
		}),
		MetricsHandler: reg.Handler(),
		HTTPMetrics:    middleware.Metrics(metrics),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "medner_http_requests_total")
}

func TestNewRouter_UnknownRouteIs404(t *testing.T) {
	router := NewRouter(RouterConfig{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRouter_RequestIDHeader(t *testing.T) {
	router := NewRouter(RouterConfig{
		HealthHandler: handlers.NewHealthHandler(nil),
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestNewRouter_RateLimiting(t *testing.T) {
	router := NewRouter(RouterConfig{
		HealthHandler: handlers.NewHealthHandler(nil),
		RateLimiter:   middleware.NewTokenBucketLimiter(0.001, 1),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
