package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/application/analytics"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

type fakeAnalyticsService struct {
	summary   *analytics.Summary
	top       []record.FrequencyCount
	trend     []record.TrendPoint
	outbreaks *analytics.OutbreakReport
	lastLimit int
	lastDays  int
	err       error
}

func (f *fakeAnalyticsService) Summary(context.Context) (*analytics.Summary, error) {
	return f.summary, f.err
}

func (f *fakeAnalyticsService) TopDiseases(_ context.Context, limit int) ([]record.FrequencyCount, error) {
	f.lastLimit = limit
	return f.top, f.err
}

func (f *fakeAnalyticsService) TopLabs(_ context.Context, limit int) ([]record.FrequencyCount, error) {
	f.lastLimit = limit
	return f.top, f.err
}

func (f *fakeAnalyticsService) UploadTrend(_ context.Context, days int) ([]record.TrendPoint, error) {
	f.lastDays = days
	return f.trend, f.err
}

func (f *fakeAnalyticsService) Outbreaks(context.Context) (*analytics.OutbreakReport, error) {
	return f.outbreaks, f.err
}

func analyticsRouter(svc AnalyticsService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAnalyticsHandler(svc)
	r.GET("/api/v1/analytics/summary", h.Summary)
	r.GET("/api/v1/analytics/top-diseases", h.TopDiseases)
	r.GET("/api/v1/analytics/top-labs", h.TopLabs)
	r.GET("/api/v1/analytics/trend", h.Trend)
	r.GET("/api/v1/analytics/outbreaks", h.Outbreaks)
	return r
}

func TestAnalyticsHandler_Summary(t *testing.T) {
	svc := &fakeAnalyticsService{summary: &analytics.Summary{
		Stats:            record.Stats{TotalRecords: 10},
		RiskDistribution: map[common.RiskLevel]int64{common.RiskHigh: 2},
	}}
	rec := doJSON(t, analyticsRouter(svc), http.MethodGet, "/api/v1/analytics/summary", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)
}

func TestAnalyticsHandler_TopDiseasesLimit(t *testing.T) {
	svc := &fakeAnalyticsService{top: []record.FrequencyCount{{Name: "influenza", Count: 4}}}
	rec := doJSON(t, analyticsRouter(svc), http.MethodGet, "/api/v1/analytics/top-diseases?limit=5", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, svc.lastLimit)

	rec = doJSON(t, analyticsRouter(svc), http.MethodGet, "/api/v1/analytics/top-diseases?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsHandler_TrendDays(t *testing.T) {
	svc := &fakeAnalyticsService{trend: []record.TrendPoint{{Day: time.Now(), Count: 1}}}
	rec := doJSON(t, analyticsRouter(svc), http.MethodGet, "/api/v1/analytics/trend?days=7", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, svc.lastDays)
}

func TestAnalyticsHandler_Outbreaks(t *testing.T) {
	svc := &fakeAnalyticsService{outbreaks: &analytics.OutbreakReport{
		Alerts:    []analytics.OutbreakAlert{{Disease: "measles", IncreaseRatio: 3.5, Severity: common.RiskHigh}},
		Threshold: 2.0,
	}}
	rec := doJSON(t, analyticsRouter(svc), http.MethodGet, "/api/v1/analytics/outbreaks", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	data := resp.Data.(map[string]any)
	alerts := data["alerts"].([]any)
	require.Len(t, alerts, 1)
}
