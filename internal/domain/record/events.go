package record

import (
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

// Event names published to the message bus.
const (
	EventReportSubmitted = "report.submitted"
	EventReportProcessed = "report.processed"
)

// ReportSubmittedEvent is published when raw text enters the system and is
// consumed by the async worker.
type ReportSubmittedEvent struct {
	common.BaseEvent
	Filename string `json:"filename,omitempty"`
	Text     string `json:"text"`
}

// NewReportSubmittedEvent wraps raw report text for async processing.
func NewReportSubmittedEvent(text, filename string) *ReportSubmittedEvent {
	return &ReportSubmittedEvent{
		BaseEvent: common.NewBaseEvent(""),
		Filename:  filename,
		Text:      text,
	}
}

// ReportProcessedEvent is published after the pipeline finishes a record.
type ReportProcessedEvent struct {
	common.BaseEvent
	RecordID     common.ID        `json:"record_id"`
	DiseaseCount int              `json:"disease_count"`
	LabCount     int              `json:"lab_count"`
	RiskLevel    common.RiskLevel `json:"risk_level"`
}

// NewReportProcessedEvent summarises a finished pipeline run.
func NewReportProcessedEvent(rec *MedicalRecord) *ReportProcessedEvent {
	return &ReportProcessedEvent{
		BaseEvent:    common.NewBaseEvent(string(rec.ID)),
		RecordID:     rec.ID,
		DiseaseCount: len(rec.Diseases),
		LabCount:     len(rec.Labs),
		RiskLevel:    rec.RiskLevel,
	}
}
