// Package record defines the core domain model of the MedicalNER service:
// medical records, the entities extracted from them, and the repository
// contracts the infrastructure layer implements.
package record

import (
	"strings"
	"time"

	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

// EntityType classifies an extracted entity.
const (
	EntityTypeDisease = "Disease"
	EntityTypeLab     = "Lab"
)

// Entity source labels for lab results.
const (
	SourceRegex = "regex"
	SourceRAG   = "rag"
)

// Entity is a disease span extracted from report text by the NER pipeline.
// Start and End are rune-safe byte offsets into the original text.
type Entity struct {
	Text       string  `json:"text"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Type       string  `json:"entity_type"`
	Confidence float64 `json:"confidence"`
}

// LabResult is a laboratory measurement extracted from report text.
// Results produced by the RAG strategy carry zero offsets; only the regex
// strategy knows where in the text the match occurred.
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

// Key returns the dedup key shared by both extraction strategies.
func (l LabResult) Key() string {
	return strings.ToLower(strings.TrimSpace(l.Name)) + ":" + l.Value
}

// TriggeredRule is a single screening rule that fired for a record.
type TriggeredRule struct {
	RuleID         string           `json:"rule_id"`
	RuleName       string           `json:"rule_name"`
	RiskLevel      common.RiskLevel `json:"risk_level"`
	Recommendation string           `json:"recommendation"`
}

// ScreeningResult is the rule-engine verdict for one record.
type ScreeningResult struct {
	RecordID        common.ID        `json:"record_id,omitempty"`
	RiskLevel       common.RiskLevel `json:"risk_level"`
	TriggeredRules  []TriggeredRule  `json:"triggered_rules"`
	Recommendations []string         `json:"recommendations"`
	DiseasesFound   []string         `json:"diseases_found"`
	LabsFound       []string         `json:"labs_found"`
	DiseaseCount    int              `json:"disease_count"`
	LabCount        int              `json:"lab_count"`
	EvaluatedAt     time.Time        `json:"evaluated_at"`
}

// MedicalRecord is the aggregate produced by the report pipeline: the raw
// text plus everything extracted from it.
type MedicalRecord struct {
	ID         common.ID        `json:"id"`
	Filename   string           `json:"filename,omitempty"`
	Text       string           `json:"text"`
	Diseases   []Entity         `json:"diseases"`
	Labs       []LabResult      `json:"labs"`
	Summary    string           `json:"summary,omitempty"`
	RiskLevel  common.RiskLevel `json:"risk_level"`
	UploadedAt time.Time        `json:"uploaded_at"`
}

// NewMedicalRecord builds a record with a fresh ID and upload timestamp.
// The text must be non-empty after trimming.
func NewMedicalRecord(text, filename string) (*MedicalRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New(errors.ErrCodeRecordEmptyText, "report text must not be empty")
	}
	return &MedicalRecord{
		ID:         common.NewID(),
		Filename:   filename,
		Text:       text,
		Diseases:   []Entity{},
		Labs:       []LabResult{},
		RiskLevel:  common.RiskLow,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// DiseaseNames returns the lowercased disease surface forms, in order.
func (r *MedicalRecord) DiseaseNames() []string {
	names := make([]string, 0, len(r.Diseases))
	for _, d := range r.Diseases {
		names = append(names, strings.ToLower(d.Text))
	}
	return names
}

// Stats is an aggregate snapshot over the record store.
type Stats struct {
	TotalRecords     int64 `json:"total_records"`
	TotalDiseases    int64 `json:"total_diseases"`
	TotalLabs        int64 `json:"total_labs"`
	DistinctDiseases int64 `json:"distinct_diseases"`
}

// FrequencyCount is a (name, count) pair for top-N analytics.
type FrequencyCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// DailyCount is the number of mentions of a disease on one calendar day.
type DailyCount struct {
	Disease string    `json:"disease"`
	Day     time.Time `json:"day"`
	Count   int       `json:"count"`
}

// TrendPoint is the number of records uploaded on one calendar day.
type TrendPoint struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}
