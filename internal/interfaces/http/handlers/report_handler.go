package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/application/report"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

// ReportService is the application surface the report handler needs.
type ReportService interface {
	Process(ctx context.Context, text, filename string) (*report.ProcessResult, error)
	ProcessBatch(ctx context.Context, inputs []report.BatchInput) (*report.BatchReport, error)
	Submit(ctx context.Context, text, filename string) (string, error)
	Reprocess(ctx context.Context, id common.ID) (*report.ProcessResult, error)
	Get(ctx context.Context, id common.ID) (*record.MedicalRecord, error)
	List(ctx context.Context, page common.Pagination) ([]*record.MedicalRecord, int64, error)
	Search(ctx context.Context, query string, page common.Pagination) ([]*record.MedicalRecord, int64, error)
	Delete(ctx context.Context, id common.ID) error
	Stats(ctx context.Context) (*record.Stats, error)
}

// ReportHandler serves /reports and /records.
type ReportHandler struct {
	service ReportService
}

// NewReportHandler wires the handler.
func NewReportHandler(service ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

type submitReportRequest struct {
	Filename string `json:"filename"`
	Text     string `json:"text" binding:"required"`
}

type batchRequest struct {
	Reports []submitReportRequest `json:"reports" binding:"required"`
}

// Process runs the full pipeline on one report and returns the enriched
// record with its screening verdict.
func (h *ReportHandler) Process(c *gin.Context) {
	var req submitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "text is required")
		return
	}

	result, err := h.service.Process(c.Request.Context(), req.Text, req.Filename)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, result)
}

// Submit queues one report for asynchronous processing by a worker and
// returns the submission event ID.
func (h *ReportHandler) Submit(c *gin.Context) {
	var req submitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "text is required")
		return
	}

	eventID, err := h.service.Submit(c.Request.Context(), req.Text, req.Filename)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusAccepted, gin.H{"submission_id": eventID})
}

// ProcessBatch runs the pipeline over a batch of reports.
func (h *ReportHandler) ProcessBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "reports array is required")
		return
	}

	inputs := make([]report.BatchInput, 0, len(req.Reports))
	for _, r := range req.Reports {
		inputs = append(inputs, report.BatchInput{Text: r.Text, Filename: r.Filename})
	}
	result, err := h.service.ProcessBatch(c.Request.Context(), inputs)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}

// Reprocess re-runs the pipeline over the stored text of one record.
func (h *ReportHandler) Reprocess(c *gin.Context) {
	result, err := h.service.Reprocess(c.Request.Context(), common.ID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}

// Get returns one record.
func (h *ReportHandler) Get(c *gin.Context) {
	rec, err := h.service.Get(c.Request.Context(), common.ID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, rec)
}

// List returns records newest first.
func (h *ReportHandler) List(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	recs, total, err := h.service.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, recs, page, total)
}

// Search runs full-text search over records.
func (h *ReportHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondBadRequest(c, "q is required")
		return
	}
	page, err := pageFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	recs, total, err := h.service.Search(c.Request.Context(), query, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, recs, page, total)
}

// Delete removes one record everywhere.
func (h *ReportHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), common.ID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats returns aggregate store totals.
func (h *ReportHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}
