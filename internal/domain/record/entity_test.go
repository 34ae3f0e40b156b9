package record

import (
	"testing"

	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

func TestNewMedicalRecord(t *testing.T) {
	rec, err := NewMedicalRecord("Patient presents with diabetes.", "visit.txt")
	if err != nil {
		t.Fatalf("NewMedicalRecord: %v", err)
	}
	if err := rec.ID.Validate(); err != nil {
		t.Fatalf("record ID invalid: %v", err)
	}
	if rec.RiskLevel != common.RiskLow {
		t.Fatalf("fresh record risk = %s, want LOW", rec.RiskLevel)
	}
	if rec.UploadedAt.IsZero() {
		t.Fatal("uploaded_at must be set")
	}
	if rec.Diseases == nil || rec.Labs == nil {
		t.Fatal("entity slices must be non-nil for JSON stability")
	}
}

func TestNewMedicalRecordRejectsBlankText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := NewMedicalRecord(text, "")
		if !errors.IsCode(err, errors.ErrCodeRecordEmptyText) {
			t.Errorf("text %q: expected ErrCodeRecordEmptyText, got %v", text, err)
		}
	}
}

func TestDiseaseNamesLowercased(t *testing.T) {
	rec, _ := NewMedicalRecord("text", "")
	rec.Diseases = []Entity{
		{Text: "Type 2 Diabetes", Type: EntityTypeDisease},
		{Text: "HYPERTENSION", Type: EntityTypeDisease},
	}
	names := rec.DiseaseNames()
	if len(names) != 2 || names[0] != "type 2 diabetes" || names[1] != "hypertension" {
		t.Fatalf("DiseaseNames = %v", names)
	}
}

func TestLabResultKey(t *testing.T) {
	l := LabResult{Name: "  Glucose ", Value: "120"}
	if l.Key() != "glucose:120" {
		t.Fatalf("Key = %q, want glucose:120", l.Key())
	}
}

func TestReportProcessedEvent(t *testing.T) {
	rec, _ := NewMedicalRecord("text", "")
	rec.Diseases = []Entity{{Text: "asthma"}}
	rec.Labs = []LabResult{{Name: "WBC", Value: "7"}, {Name: "Glucose", Value: "90"}}
	rec.RiskLevel = common.RiskHigh

	ev := NewReportProcessedEvent(rec)
	if ev.RecordID != rec.ID {
		t.Fatal("event must carry the record ID")
	}
	if ev.AggregateID() != string(rec.ID) {
		t.Fatal("aggregate ID must match the record")
	}
	if ev.DiseaseCount != 1 || ev.LabCount != 2 {
		t.Fatalf("counts = %d/%d", ev.DiseaseCount, ev.LabCount)
	}
	if ev.RiskLevel != common.RiskHigh {
		t.Fatalf("risk = %s", ev.RiskLevel)
	}
	if ev.EventID() == "" || ev.OccurredAt().IsZero() {
		t.Fatal("base event fields must be populated")
	}
}
