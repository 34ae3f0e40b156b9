package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/application/analytics"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
)

// AnalyticsService is the application surface the analytics handler needs.
type AnalyticsService interface {
	Summary(ctx context.Context) (*analytics.Summary, error)
	TopDiseases(ctx context.Context, limit int) ([]record.FrequencyCount, error)
	TopLabs(ctx context.Context, limit int) ([]record.FrequencyCount, error)
	UploadTrend(ctx context.Context, days int) ([]record.TrendPoint, error)
	Outbreaks(ctx context.Context) (*analytics.OutbreakReport, error)
}

// AnalyticsHandler serves /analytics.
type AnalyticsHandler struct {
	service AnalyticsService
}

// NewAnalyticsHandler wires the handler.
func NewAnalyticsHandler(service AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Summary returns store totals and the risk distribution.
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, summary)
}

// TopDiseases returns the most frequent diseases. limit defaults server-side.
func (h *AnalyticsHandler) TopDiseases(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		respondError(c, err)
		return
	}
	counts, err := h.service.TopDiseases(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, counts)
}

// TopLabs returns the most frequent lab tests.
func (h *AnalyticsHandler) TopLabs(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		respondError(c, err)
		return
	}
	counts, err := h.service.TopLabs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, counts)
}

// Trend returns daily upload counts for the trailing days.
func (h *AnalyticsHandler) Trend(c *gin.Context) {
	days, err := intQuery(c, "days", 0)
	if err != nil {
		respondError(c, err)
		return
	}
	trend, err := h.service.UploadTrend(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, trend)
}

// Outbreaks runs outbreak detection over recent disease mentions.
func (h *AnalyticsHandler) Outbreaks(c *gin.Context) {
	report, err := h.service.Outbreaks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, report)
}
