package labextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
)

func findLab(results []record.LabResult, name string) *record.LabResult {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

func TestRegexExtractColonSeparated(t *testing.T) {
	e := NewRegexExtractor()

	results := e.Extract("Glucose: 185 mg/dL\nWBC: 12.3 10^3/uL")

	glucose := findLab(results, "Glucose")
	require.NotNil(t, glucose)
	assert.Equal(t, "185", glucose.Value)
	assert.Equal(t, "mg/dL", glucose.Unit)
	assert.InDelta(t, confidenceWithUnit, glucose.Confidence, 1e-9)
	assert.Equal(t, record.SourceRegex, glucose.Source)

	wbc := findLab(results, "WBC")
	require.NotNil(t, wbc)
	assert.Equal(t, "12.3", wbc.Value)
}

func TestRegexExtractMissingUnitLowersConfidence(t *testing.T) {
	e := NewRegexExtractor()

	results := e.Extract("Creatinine: 2.1")

	cr := findLab(results, "Creatinine")
	require.NotNil(t, cr)
	assert.Empty(t, cr.Unit)
	assert.InDelta(t, confidenceWithoutUnit, cr.Confidence, 1e-9)
}

func TestRegexExtractNamedWithoutSeparator(t *testing.T) {
	e := NewRegexExtractor()

	// No colon, so only the named pattern can catch it.
	results := e.Extract("Hemoglobin 10.2 g/dL on admission")

	hgb := findLab(results, "Hemoglobin")
	require.NotNil(t, hgb)
	assert.Equal(t, "10.2", hgb.Value)
	assert.Equal(t, "g/dL", hgb.Unit)
	assert.InDelta(t, confidenceNamed, hgb.Confidence, 1e-9)
}

func TestRegexExtractOffsetsPointIntoText(t *testing.T) {
	e := NewRegexExtractor()
	text := "History unremarkable. ALT: 88 U/L noted."

	results := e.Extract(text)

	alt := findLab(results, "ALT")
	require.NotNil(t, alt)
	assert.Equal(t, "ALT", text[alt.Start:alt.Start+3])
	assert.Greater(t, alt.End, alt.Start)
}

func TestRegexExtractDedupSameNameValue(t *testing.T) {
	e := NewRegexExtractor()

	results := e.Extract("Glucose: 185 mg/dL ... repeat Glucose: 185 mg/dL")

	count := 0
	for _, r := range results {
		if r.Key() == "glucose:185" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRegexExtractKeepsDistinctValues(t *testing.T) {
	e := NewRegexExtractor()

	results := e.Extract("Glucose: 185 mg/dL, later Glucose: 140 mg/dL")

	values := map[string]bool{}
	for _, r := range results {
		if r.Name == "Glucose" {
			values[r.Value] = true
		}
	}
	assert.True(t, values["185"])
	assert.True(t, values["140"])
}

func TestRegexExtractRejectsArtifacts(t *testing.T) {
	e := NewRegexExtractor()

	results := e.Extract("Page: 3\nRef: 88123\nDOB: 1970\nGlucose: 90 mg/dL")

	require.Len(t, results, 1)
	assert.Equal(t, "Glucose", results[0].Name)
}

func TestRegexExtractNoMatches(t *testing.T) {
	e := NewRegexExtractor()
	assert.Empty(t, e.Extract("Patient resting comfortably, no complaints."))
	assert.Empty(t, e.Extract(""))
}
