package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetrics_ObserveRequest(t *testing.T) {
	reg := NewRegistry()
	m, err := NewHTTPMetrics(reg.Registerer())
	require.NoError(t, err)

	m.ObserveRequest("POST", "/api/v1/reports", 201, 30*time.Millisecond)
	m.ObserveRequest("POST", "/api/v1/reports", 201, 40*time.Millisecond)
	m.ObserveRequest("GET", "/api/v1/records/:id", 404, 5*time.Millisecond)

	count := testutil.ToFloat64(m.requests.WithLabelValues("POST", "/api/v1/reports", "201"))
	assert.Equal(t, float64(2), count)
	count = testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/records/:id", "404"))
	assert.Equal(t, float64(1), count)
}

func TestHTTPMetrics_EmptyRouteIsUnmatched(t *testing.T) {
	reg := NewRegistry()
	m, err := NewHTTPMetrics(reg.Registerer())
	require.NoError(t, err)

	m.ObserveRequest("GET", "", 404, time.Millisecond)
	count := testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404"))
	assert.Equal(t, float64(1), count)
}

func TestHTTPMetrics_InFlight(t *testing.T) {
	reg := NewRegistry()
	m, err := NewHTTPMetrics(reg.Registerer())
	require.NoError(t, err)

	m.IncInFlight()
	m.IncInFlight()
	m.DecInFlight()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.inFlight))
}

func TestNewHTTPMetrics_DoubleRegistrationFails(t *testing.T) {
	reg := NewRegistry()
	_, err := NewHTTPMetrics(reg.Registerer())
	require.NoError(t, err)
	_, err = NewHTTPMetrics(reg.Registerer())
	assert.Error(t, err)
}

func TestRegistry_HandlerServesMetrics(t *testing.T) {
	reg := NewRegistry()
	m, err := NewHTTPMetrics(reg.Registerer())
	require.NoError(t, err)
	m.ObserveRequest("GET", "/healthz", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "medner_http_requests_total"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
