package labextract

import (
	"regexp"
	"strings"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
)

const unitAlternation = `mg/dL|mmol/L|g/dL|%|U/L|mEq/L|ng/mL|µg/dL|pg/mL|IU/L|mIU/L|×10[³⁹]|10\^3|10\^9`

var (
	// genericPattern catches "name: 123 unit" and "name = 123" layouts. The
	// lazy name group keeps it from swallowing whole lines; the validator
	// screens out the artifacts it still catches.
	genericPattern = regexp.MustCompile(
		`(?i)([A-Za-z][A-Za-z0-9\s/&\-]{2,30}?)\s*[:=]\s*([\d.,]+)\s*(` + unitAlternation + `)?`)

	// namedPattern anchors on known test names, tolerating a missing
	// separator ("Glucose 110 mg/dL").
	namedPattern = regexp.MustCompile(
		`(?i)\b(` + strings.Join(namedTestAlternation(), "|") + `)\b\s*[:=]?\s*([\d.,]+)\s*(` + unitAlternation + `)?`)
)

func namedTestAlternation() []string {
	alts := make([]string, len(knownTestNames))
	for i, n := range knownTestNames {
		alts[i] = regexp.QuoteMeta(n)
	}
	return alts
}

// Pattern-match confidences. Named matches are near certain; generic matches
// are stronger when a recognized unit follows the value.
const (
	confidenceNamed       = 0.95
	confidenceWithUnit    = 0.9
	confidenceWithoutUnit = 0.7
)

// RegexExtractor is the deterministic lab extraction strategy.
type RegexExtractor struct{}

// NewRegexExtractor returns a ready extractor. Patterns compile at package
// init, so construction never fails.
func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

// Extract scans text with both patterns, validates every candidate, and
// deduplicates on (name, value). Generic matches run first so their offsets
// survive when the named pattern finds the same result.
func (e *RegexExtractor) Extract(text string) []record.LabResult {
	results := make([]record.LabResult, 0, 8)
	seen := make(map[string]struct{})

	for _, m := range genericPattern.FindAllStringSubmatchIndex(text, -1) {
		name := strings.TrimSpace(text[m[2]:m[3]])
		value := strings.TrimSpace(text[m[4]:m[5]])
		unit := ""
		confidence := confidenceWithoutUnit
		if m[6] >= 0 {
			unit = text[m[6]:m[7]]
			confidence = confidenceWithUnit
		}
		appendCandidate(&results, seen, record.LabResult{
			Name:       name,
			Value:      value,
			Unit:       unit,
			Start:      m[0],
			End:        m[1],
			Confidence: confidence,
			Source:     record.SourceRegex,
		})
	}

	for _, m := range namedPattern.FindAllStringSubmatchIndex(text, -1) {
		name := strings.TrimSpace(text[m[2]:m[3]])
		value := strings.TrimSpace(text[m[4]:m[5]])
		unit := ""
		if m[6] >= 0 {
			unit = text[m[6]:m[7]]
		}
		appendCandidate(&results, seen, record.LabResult{
			Name:       name,
			Value:      value,
			Unit:       unit,
			Start:      m[0],
			End:        m[1],
			Confidence: confidenceNamed,
			Source:     record.SourceRegex,
		})
	}

	return results
}

// appendCandidate validates and dedups one candidate in match order.
func appendCandidate(results *[]record.LabResult, seen map[string]struct{}, r record.LabResult) {
	if !ValidateCandidate(r.Name, r.Value) {
		return
	}
	key := r.Key()
	if _, dup := seen[key]; dup {
		return
	}
	seen[key] = struct{}{}
	*results = append(*results, r)
}
