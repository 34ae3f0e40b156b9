package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Entity is a disease mention found in a report.
type Entity struct {
	Text       string  `json:"text"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Type       string  `json:"entity_type"`
	Confidence float64 `json:"confidence"`
}

// LabResult is a laboratory value extracted from a report.
type LabResult struct {
	Name        string  `json:"name"`
	Value       string  `json:"value"`
	Unit        string  `json:"unit,omitempty"`
	NormalRange string  `json:"normal_range,omitempty"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
	Confidence  float64 `json:"confidence"`
	Source      string  `json:"source"`
}

// MedicalRecord is a processed clinical report.
type MedicalRecord struct {
	ID         string      `json:"id"`
	Filename   string      `json:"filename,omitempty"`
	Text       string      `json:"text"`
	Diseases   []Entity    `json:"diseases"`
	Labs       []LabResult `json:"labs"`
	Summary    string      `json:"summary,omitempty"`
	RiskLevel  string      `json:"risk_level"`
	UploadedAt time.Time   `json:"uploaded_at"`
}

// TriggeredRule identifies a screening rule that matched a record.
type TriggeredRule struct {
	RuleID         string `json:"rule_id"`
	RuleName       string `json:"rule_name"`
	RiskLevel      string `json:"risk_level"`
	Recommendation string `json:"recommendation"`
}

// ScreeningResult is the risk verdict for a record.
type ScreeningResult struct {
	RecordID        string          `json:"record_id,omitempty"`
	RiskLevel       string          `json:"risk_level"`
	TriggeredRules  []TriggeredRule `json:"triggered_rules"`
	Recommendations []string        `json:"recommendations"`
	DiseasesFound   []string        `json:"diseases_found"`
	LabsFound       []string        `json:"labs_found"`
	DiseaseCount    int             `json:"disease_count"`
	LabCount        int             `json:"lab_count"`
	EvaluatedAt     time.Time       `json:"evaluated_at"`
}

// ProcessResult is the outcome of running the pipeline over one report.
type ProcessResult struct {
	Record    *MedicalRecord   `json:"record"`
	Screening *ScreeningResult `json:"screening,omitempty"`
}

// BatchInput is one report in a batch submission.
type BatchInput struct {
	Text     string `json:"text"`
	Filename string `json:"filename,omitempty"`
}

// BatchItemResult is the outcome of one slot in a batch run.
type BatchItemResult struct {
	Index  int            `json:"index"`
	Result *ProcessResult `json:"result,omitempty"`
	Error  *ErrorDetail   `json:"error,omitempty"`
}

// BatchReport is the consolidated outcome of a batch run.
type BatchReport struct {
	Items     []BatchItemResult `json:"items"`
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	ByRisk    map[string]int    `json:"by_risk"`
	Elapsed   time.Duration     `json:"elapsed"`
}

// Stats holds corpus-wide record counters.
type Stats struct {
	TotalRecords     int64 `json:"total_records"`
	TotalDiseases    int64 `json:"total_diseases"`
	TotalLabs        int64 `json:"total_labs"`
	DistinctDiseases int64 `json:"distinct_diseases"`
}

// RecordPage is one page of records plus pagination metadata.
type RecordPage struct {
	Records []MedicalRecord
	Meta    ResponseMeta
}

// ---------------------------------------------------------------------------
// Sub-client
// ---------------------------------------------------------------------------

// ReportsClient covers report submission and record retrieval.
type ReportsClient struct {
	client *Client
}

// Process submits one report and waits for the pipeline result.
func (r *ReportsClient) Process(ctx context.Context, text, filename string) (*ProcessResult, error) {
	if text == "" {
		return nil, fmt.Errorf("medner: report text is required")
	}
	body := map[string]string{"text": text}
	if filename != "" {
		body["filename"] = filename
	}
	var result ProcessResult
	if err := r.client.post(ctx, "/api/v1/reports", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitAsync enqueues a report for background processing and returns the
// submission id. The processed record becomes visible once a worker picks
// the event up.
func (r *ReportsClient) SubmitAsync(ctx context.Context, text, filename string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("medner: report text is required")
	}
	body := map[string]string{"text": text}
	if filename != "" {
		body["filename"] = filename
	}
	var result struct {
		SubmissionID string `json:"submission_id"`
	}
	if err := r.client.post(ctx, "/api/v1/reports/async", body, &result); err != nil {
		return "", err
	}
	return result.SubmissionID, nil
}

// ProcessBatch submits several reports in one call.
func (r *ReportsClient) ProcessBatch(ctx context.Context, inputs []BatchInput) (*BatchReport, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("medner: batch must contain at least one report")
	}
	body := map[string]interface{}{"reports": inputs}
	var report BatchReport
	if err := r.client.post(ctx, "/api/v1/reports/batch", body, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Reprocess reruns the pipeline over a stored record.
func (r *ReportsClient) Reprocess(ctx context.Context, recordID string) (*ProcessResult, error) {
	if recordID == "" {
		return nil, fmt.Errorf("medner: record id is required")
	}
	var result ProcessResult
	path := fmt.Sprintf("/api/v1/records/%s/reprocess", url.PathEscape(recordID))
	if err := r.client.post(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get fetches one record by id.
func (r *ReportsClient) Get(ctx context.Context, recordID string) (*MedicalRecord, error) {
	if recordID == "" {
		return nil, fmt.Errorf("medner: record id is required")
	}
	var rec MedicalRecord
	if err := r.client.get(ctx, "/api/v1/records/"+url.PathEscape(recordID), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns one page of records, newest first.
func (r *ReportsClient) List(ctx context.Context, page, pageSize int) (*RecordPage, error) {
	path := "/api/v1/records?" + pageQuery(page, pageSize).Encode()
	return r.listPage(ctx, path)
}

// Search runs a full-text query over record text and summaries.
func (r *ReportsClient) Search(ctx context.Context, query string, page, pageSize int) (*RecordPage, error) {
	if query == "" {
		return nil, fmt.Errorf("medner: search query is required")
	}
	q := pageQuery(page, pageSize)
	q.Set("q", query)
	return r.listPage(ctx, "/api/v1/records/search?"+q.Encode())
}

// Delete removes a record and its derived artifacts.
func (r *ReportsClient) Delete(ctx context.Context, recordID string) error {
	if recordID == "" {
		return fmt.Errorf("medner: record id is required")
	}
	return r.client.delete(ctx, "/api/v1/records/"+url.PathEscape(recordID))
}

// Stats returns corpus-wide counters.
func (r *ReportsClient) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := r.client.get(ctx, "/api/v1/records/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *ReportsClient) listPage(ctx context.Context, path string) (*RecordPage, error) {
	var page RecordPage
	if err := r.client.getList(ctx, path, &page.Records, &page.Meta); err != nil {
		return nil, err
	}
	return &page, nil
}

func pageQuery(page, pageSize int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	return q
}
