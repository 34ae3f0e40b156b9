package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/application/screening"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

// ScreeningService is the application surface the screening handler needs.
type ScreeningService interface {
	Rules() []screening.Rule
	Result(ctx context.Context, recordID common.ID) (*record.ScreeningResult, error)
	HighRisk(ctx context.Context, page common.Pagination) ([]*record.MedicalRecord, int64, error)
	Screen(ctx context.Context, rec *record.MedicalRecord) record.ScreeningResult
}

// ScreeningHandler serves /screening.
type ScreeningHandler struct {
	service ScreeningService
}

// NewScreeningHandler wires the handler.
func NewScreeningHandler(service ScreeningService) *ScreeningHandler {
	return &ScreeningHandler{service: service}
}

type analyzeRequest struct {
	RecordID string `json:"record_id"`
	// Ad-hoc screening input, used when record_id is empty.
	Diseases []string            `json:"diseases"`
	Labs     []record.LabResult  `json:"labs"`
}

// Analyze screens either a stored record (by record_id) or an ad-hoc set of
// diseases and labs.
func (h *ScreeningHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if req.RecordID != "" {
		result, err := h.service.Result(c.Request.Context(), common.ID(req.RecordID))
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, http.StatusOK, result)
		return
	}

	if len(req.Diseases) == 0 && len(req.Labs) == 0 {
		respondBadRequest(c, "record_id or diseases/labs are required")
		return
	}

	rec := &record.MedicalRecord{Labs: req.Labs}
	for _, name := range req.Diseases {
		rec.Diseases = append(rec.Diseases, record.Entity{
			Text: name,
			Type: record.EntityTypeDisease,
		})
	}
	result := h.service.Screen(c.Request.Context(), rec)
	respondOK(c, http.StatusOK, result)
}

// HighRisk lists records screened as HIGH, newest first.
func (h *ScreeningHandler) HighRisk(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	recs, total, err := h.service.HighRisk(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, recs, page, total)
}

// Rules returns the active screening rule set.
func (h *ScreeningHandler) Rules(c *gin.Context) {
	respondOK(c, http.StatusOK, h.service.Rules())
}
