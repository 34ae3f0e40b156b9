package labextract

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
)

func TestExtractorRegexOnly(t *testing.T) {
	e := NewExtractor(nil, nil, nil, nil)

	results := e.Extract(context.Background(), "Glucose: 185 mg/dL")

	require.NotEmpty(t, results)
	assert.Equal(t, record.SourceRegex, results[0].Source)
}

func TestExtractorRAGAddsNovelResults(t *testing.T) {
	gen := &stubGenerator{completion: `[
		{"test": "Glucose", "value": "185", "unit": "mg/dL", "normal_range": "70-110"},
		{"test": "Ferritin", "value": "12", "unit": "ng/mL", "normal_range": ""}
	]`}
	rag, emb := newRAGUnderTest(t, gen)
	emb.vectors["Glucose: 185 mg/dL and low iron stores."] = []float32{1, 0, 0}
	e := NewExtractor(NewRegexExtractor(), rag, nil, nil)

	results := e.Extract(context.Background(), "Glucose: 185 mg/dL and low iron stores.")

	glucose := findLab(results, "Glucose")
	require.NotNil(t, glucose)
	assert.Equal(t, record.SourceRegex, glucose.Source, "regex wins the shared result")

	ferritin := findLab(results, "Ferritin")
	require.NotNil(t, ferritin)
	assert.Equal(t, record.SourceRAG, ferritin.Source)
	assert.Equal(t, "12", ferritin.Value)
}

func TestExtractorRAGFailureDegradesToRegex(t *testing.T) {
	gen := &stubGenerator{err: fmt.Errorf("model offline")}
	rag, emb := newRAGUnderTest(t, gen)
	emb.vectors["WBC: 12.3 10^3/uL"] = []float32{0, 1, 0}
	e := NewExtractor(NewRegexExtractor(), rag, nil, nil)

	results := e.Extract(context.Background(), "WBC: 12.3 10^3/uL")

	wbc := findLab(results, "WBC")
	require.NotNil(t, wbc)
	assert.Equal(t, record.SourceRegex, wbc.Source)
}

func TestReconcileOrderAndPrecedence(t *testing.T) {
	fromRegex := []record.LabResult{
		{Name: "Glucose", Value: "185", Source: record.SourceRegex},
		{Name: "WBC", Value: "12.3", Source: record.SourceRegex},
	}
	fromRAG := []record.LabResult{
		{Name: "glucose", Value: "185", Source: record.SourceRAG}, // same key, case-folded
		{Name: "Ferritin", Value: "12", Source: record.SourceRAG},
	}

	out := reconcile(fromRegex, fromRAG)

	require.Len(t, out, 3)
	assert.Equal(t, "Glucose", out[0].Name)
	assert.Equal(t, record.SourceRegex, out[0].Source)
	assert.Equal(t, "WBC", out[1].Name)
	assert.Equal(t, "Ferritin", out[2].Name)
}

func TestReconcileEmptyInputs(t *testing.T) {
	assert.Empty(t, reconcile(nil, nil))

	onlyRAG := reconcile(nil, []record.LabResult{{Name: "Iron", Value: "40"}})
	assert.Len(t, onlyRAG, 1)
}
