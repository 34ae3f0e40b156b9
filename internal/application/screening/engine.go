package screening

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

// noRiskRecommendation is returned when no rule triggers.
const noRiskRecommendation = "No specific risk factors identified. Routine follow-up recommended."

// numberPattern pulls the leading numeric portion out of a lab value string
// such as "185", "2.1", or "185 (H)".
var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

// Engine evaluates records against a fixed rule set. It is stateless and
// safe for concurrent use.
type Engine struct {
	rules []Rule
}

// NewEngine validates the rule set and builds an engine. nil rules fall back
// to DefaultRules.
func NewEngine(rules []Rule) (*Engine, error) {
	if rules == nil {
		rules = DefaultRules()
	}
	for i := range rules {
		if err := rules[i].Validate(); err != nil {
			return nil, err
		}
	}
	return &Engine{rules: rules}, nil
}

// Rules returns a copy of the engine's rule set.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Evaluate runs every rule against the record. The result risk level is the
// maximum over triggered rules, LOW when none trigger. Recommendations are
// deduplicated preserving first occurrence.
func (e *Engine) Evaluate(rec *record.MedicalRecord) record.ScreeningResult {
	diseases := rec.DiseaseNames()

	result := record.ScreeningResult{
		RecordID:        rec.ID,
		RiskLevel:       common.RiskLow,
		TriggeredRules:  []record.TriggeredRule{},
		Recommendations: []string{},
		DiseasesFound:   diseases,
		LabsFound:       labNames(rec.Labs),
		DiseaseCount:    len(rec.Diseases),
		LabCount:        len(rec.Labs),
		EvaluatedAt:     time.Now().UTC(),
	}

	seenRec := make(map[string]struct{})
	for _, rule := range e.rules {
		if !ruleMatches(rule, diseases, rec.Labs) {
			continue
		}
		result.TriggeredRules = append(result.TriggeredRules, record.TriggeredRule{
			RuleID:         rule.ID,
			RuleName:       rule.Name,
			RiskLevel:      rule.RiskLevel,
			Recommendation: rule.Recommendation,
		})
		result.RiskLevel = common.MaxRiskLevel(result.RiskLevel, rule.RiskLevel)
		if _, dup := seenRec[rule.Recommendation]; !dup && rule.Recommendation != "" {
			seenRec[rule.Recommendation] = struct{}{}
			result.Recommendations = append(result.Recommendations, rule.Recommendation)
		}
	}

	if len(result.TriggeredRules) == 0 {
		result.Recommendations = []string{noRiskRecommendation}
	}
	return result
}

// ruleMatches requires every condition to hold.
func ruleMatches(rule Rule, diseases []string, labs []record.LabResult) bool {
	for _, c := range rule.Conditions {
		if !conditionMatches(c, diseases, labs) {
			return false
		}
	}
	return true
}

func conditionMatches(c Condition, diseases []string, labs []record.LabResult) bool {
	switch c.Type {
	case ConditionDisease:
		return containsMatch(diseases, c.Contains, c.Operator)
	case ConditionLab:
		names := make([]string, 0, len(labs))
		for _, l := range labs {
			names = append(names, strings.ToLower(l.Name))
		}
		return containsMatch(names, c.Contains, c.Operator)
	case ConditionDiseaseCount:
		return compare(float64(len(diseases)), c.Operator, c.Value)
	case ConditionLabValue:
		lab, ok := findLab(labs, c.Lab)
		if !ok {
			return false
		}
		value, ok := parseLabValue(lab.Value)
		if !ok {
			return false
		}
		return compare(value, c.Operator, c.Value)
	default:
		return false
	}
}

// findLab returns the first lab whose name contains needle, or the first lab
// overall when needle is empty.
func findLab(labs []record.LabResult, needle string) (record.LabResult, bool) {
	if len(labs) == 0 {
		return record.LabResult{}, false
	}
	if needle == "" {
		return labs[0], true
	}
	needle = strings.ToLower(needle)
	for _, l := range labs {
		if strings.Contains(strings.ToLower(l.Name), needle) {
			return l, true
		}
	}
	return record.LabResult{}, false
}

func parseLabValue(raw string) (float64, bool) {
	m := numberPattern.FindString(strings.ReplaceAll(raw, ",", ""))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// containsMatch reports whether any of names contains needle
// (case-insensitive), inverted when the operator is not_contains.
func containsMatch(names []string, needle, op string) bool {
	needle = strings.ToLower(needle)
	found := false
	for _, n := range names {
		if strings.Contains(n, needle) {
			found = true
			break
		}
	}
	if canonicalOperator(op) == OpNotContains {
		return !found
	}
	return found
}

func compare(actual float64, op string, threshold float64) bool {
	switch canonicalOperator(op) {
	case OpGreaterThan:
		return actual > threshold
	case OpLessThan:
		return actual < threshold
	case OpAtLeast:
		return actual >= threshold
	case OpAtMost:
		return actual <= threshold
	case OpEqual:
		return actual == threshold
	default:
		return false
	}
}

func labNames(labs []record.LabResult) []string {
	names := make([]string, 0, len(labs))
	for _, l := range labs {
		names = append(names, l.Name)
	}
	return names
}
