package labextract

import (
	"regexp"
	"strconv"
	"strings"
)

// falsePositivePatterns match document artifacts that the generic extraction
// pattern habitually mistakes for test names: page footers, reference
// numbers, demographic headers, addresses, and stray guideline fragments.
var falsePositivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^page\s+\d+`),
	regexp.MustCompile(`^\d+\s+of\s+\d+`),
	regexp.MustCompile(`^ref\s*:?\s*\d+`),
	regexp.MustCompile(`^dob\s*:?`),
	regexp.MustCompile(`^age\s*:?\s*\d+`),
	regexp.MustCompile(`^collected\s*:?`),
	regexp.MustCompile(`^printed\s*:?`),
	regexp.MustCompile(`^referred\s*:?`),
	regexp.MustCompile(`^dept\s*`),
	regexp.MustCompile(`^no\s*\.?\s*`),
	regexp.MustCompile(`^source\s*`),
	regexp.MustCompile(`^type\s*\d+`),
	regexp.MustCompile(`^\d{4}\s*$`),
	regexp.MustCompile(`^[a-z]\s+\d+$`),
	regexp.MustCompile(`^\d+\s*$`),
	regexp.MustCompile(`^[a-z]{1,2}\s*$`),
	regexp.MustCompile(`^departments?$`),
	regexp.MustCompile(`^jalans?$`),
	regexp.MustCompile(`^sel\s*\d+`),
	regexp.MustCompile(`^kdigo`),
	regexp.MustCompile(`^thresholds?$`),
	regexp.MustCompile(`^values?$`),
	regexp.MustCompile(`^within\s+\d+`),
	regexp.MustCompile(`^least\s+\d+`),
	regexp.MustCompile(`^increased\s+\d+`),
}

// knownTestNames whitelists exact lowercase names of real laboratory tests.
var knownTestNames = []string{
	"glucose", "wbc", "rbc", "hemoglobin", "hgb", "hematocrit", "hct",
	"platelet", "creatinine", "bun", "alt", "ast", "cholesterol",
	"triglyceride", "albumin", "bilirubin", "sodium", "potassium",
	"calcium", "phosphorus", "magnesium", "tsh", "t4", "t3", "hba1c",
	"hba", "ldl", "hdl", "crp", "esr", "pt", "inr", "aptt", "psa",
	"vitamin d", "vitamin b12", "folate", "iron", "ferritin", "uric acid",
	"alkaline phosphatase", "alp", "ggt", "ldh", "ck", "troponin", "bnp",
	"nt-probnp", "d-dimer", "fibrinogen", "protein", "globulin",
	"a/g ratio", "bicarbonate", "co2", "chloride", "anion gap",
	"osmolality", "urea", "egfr", "gfr", "microalbumin", "urine protein",
	"urine glucose",
}

// measurementKeywords mark names that read like a measurement even when the
// test itself is not in the whitelist.
var measurementKeywords = []string{
	"test", "level", "count", "concentration", "ratio", "index", "rate",
}

// excludedWords are standalone tokens that can never be a test name.
var excludedWords = map[string]struct{}{
	"page": {}, "of": {}, "ref": {}, "dob": {}, "age": {}, "no": {},
	"dept": {}, "source": {}, "type": {}, "collected": {}, "printed": {},
	"referred": {}, "departments": {}, "jalans": {}, "sel": {},
	"kdigo": {}, "thresholds": {}, "values": {}, "within": {},
	"least": {}, "increased": {}, "a": {}, "to": {}, "the": {},
	"and": {}, "or": {}, "is": {}, "are": {}, "was": {}, "were": {},
}

// ValidateCandidate decides whether a (name, value) pair extracted from
// report text is a plausible laboratory result. Checks run in a fixed order:
// artifact patterns and unparseable values reject first, the whitelist and
// measurement keywords accept, then length and stop-word checks reject, and
// anything left passes.
func ValidateCandidate(name, value string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	for _, p := range falsePositivePatterns {
		if p.MatchString(name) {
			return false
		}
	}
	if !parseableValue(value) {
		return false
	}
	for _, known := range knownTestNames {
		if name == known {
			return true
		}
	}
	for _, kw := range measurementKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	if len(name) < 3 || len(name) > 50 {
		return false
	}
	if _, excluded := excludedWords[name]; excluded {
		return false
	}
	return true
}

func parseableValue(value string) bool {
	v := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if v == "" {
		return false
	}
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}
