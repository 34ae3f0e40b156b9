// Package screening evaluates processed medical records against a rule set
// and assigns a LOW, MEDIUM, or HIGH risk level with follow-up
// recommendations. Rules are conjunctive condition lists loaded from YAML,
// with a built-in default set.
package screening

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

// Condition types.
const (
	ConditionDisease      = "disease"
	ConditionLab          = "lab"
	ConditionDiseaseCount = "disease_count"
	ConditionLabValue     = "lab_value"
)

// Operators. Containment operators apply to disease and lab conditions,
// comparison operators to disease_count and lab_value conditions.
const (
	OpContains    = "contains"
	OpNotContains = "not_contains"
	OpGreaterThan = "greater_than"
	OpLessThan    = "less_than"
	OpAtLeast     = "greater_than_equal"
	OpAtMost      = "less_than_equal"
	OpEqual       = "equal"
)

// operatorAliases maps accepted short spellings to canonical operators.
var operatorAliases = map[string]string{
	"gt":  OpGreaterThan,
	"lt":  OpLessThan,
	"gte": OpAtLeast,
	"lte": OpAtMost,
	"eq":  OpEqual,
}

func canonicalOperator(op string) string {
	if full, ok := operatorAliases[op]; ok {
		return full
	}
	return op
}

// Condition is one conjunct of a rule.
//
//   - disease: a record disease mention must contain Contains
//     (case-insensitive); not_contains negates
//   - lab: a record lab name must contain Contains (case-insensitive);
//     not_contains negates
//   - disease_count: the number of disease mentions compared against Value
//     with Operator
//   - lab_value: the first lab whose name contains Lab has its numeric
//     value compared against Value with Operator; an empty Lab matches the
//     record's first lab
type Condition struct {
	Type     string  `yaml:"type" json:"type"`
	Contains string  `yaml:"contains,omitempty" json:"contains,omitempty"`
	Lab      string  `yaml:"lab,omitempty" json:"lab,omitempty"`
	Operator string  `yaml:"operator,omitempty" json:"operator,omitempty"`
	Value    float64 `yaml:"value,omitempty" json:"value,omitempty"`
}

// Rule is one screening rule. All conditions must hold for it to trigger.
type Rule struct {
	ID             string           `yaml:"id" json:"id"`
	Name           string           `yaml:"name" json:"name"`
	RiskLevel      common.RiskLevel `yaml:"risk_level" json:"risk_level"`
	Recommendation string           `yaml:"recommendation" json:"recommendation"`
	Conditions     []Condition      `yaml:"conditions" json:"conditions"`
}

// Validate checks the structural integrity of a rule.
func (r *Rule) Validate() error {
	if r.ID == "" {
		return errors.New(errors.ErrCodeScreeningRuleInvalid, "rule id is required")
	}
	if r.Name == "" {
		return errors.Newf(errors.ErrCodeScreeningRuleInvalid, "rule %s: name is required", r.ID)
	}
	if !r.RiskLevel.Valid() {
		return errors.Newf(errors.ErrCodeScreeningRuleInvalid, "rule %s: invalid risk level %q", r.ID, r.RiskLevel)
	}
	if len(r.Conditions) == 0 {
		return errors.Newf(errors.ErrCodeScreeningRuleInvalid, "rule %s: at least one condition is required", r.ID)
	}
	for i, c := range r.Conditions {
		switch c.Type {
		case ConditionDisease, ConditionLab:
			if c.Contains == "" {
				return errors.Newf(errors.ErrCodeScreeningRuleInvalid, "rule %s condition %d: contains is required", r.ID, i)
			}
			if !validContainmentOperator(c.Operator) {
				return errors.Newf(errors.ErrCodeScreeningRuleInvalid, "rule %s condition %d: invalid operator %q", r.ID, i, c.Operator)
			}
		case ConditionDiseaseCount, ConditionLabValue:
			if !validComparisonOperator(c.Operator) {
				return errors.Newf(errors.ErrCodeScreeningRuleInvalid, "rule %s condition %d: invalid operator %q", r.ID, i, c.Operator)
			}
		default:
			return errors.Newf(errors.ErrCodeScreeningRuleInvalid, "rule %s condition %d: unknown type %q", r.ID, i, c.Type)
		}
	}
	return nil
}

// An empty containment operator defaults to contains.
func validContainmentOperator(op string) bool {
	switch canonicalOperator(op) {
	case "", OpContains, OpNotContains:
		return true
	}
	return false
}

func validComparisonOperator(op string) bool {
	switch canonicalOperator(op) {
	case OpGreaterThan, OpLessThan, OpAtLeast, OpAtMost, OpEqual:
		return true
	}
	return false
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a YAML rule set from path.
func LoadRules(path string) ([]Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeScreeningRuleLoad, "screening: reading rules file")
	}
	var f rulesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeScreeningRuleLoad, "screening: parsing rules file")
	}
	if len(f.Rules) == 0 {
		return nil, errors.New(errors.ErrCodeScreeningRuleLoad, "screening: rules file defines no rules")
	}
	for i := range f.Rules {
		if err := f.Rules[i].Validate(); err != nil {
			return nil, err
		}
	}
	return f.Rules, nil
}

// DefaultRules returns the built-in rule set used when no rules file is
// configured.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:             "rule_001",
			Name:           "Diabetes with High Glucose",
			RiskLevel:      common.RiskHigh,
			Recommendation: "Refer to endocrinology for diabetes management",
			Conditions: []Condition{
				{Type: ConditionDisease, Contains: "diabetes"},
				{Type: ConditionLabValue, Lab: "glucose", Operator: OpGreaterThan, Value: 200},
			},
		},
		{
			ID:             "rule_002",
			Name:           "Hypertension with Chest Pain",
			RiskLevel:      common.RiskHigh,
			Recommendation: "Cardiac evaluation recommended. Monitor for angina symptoms.",
			Conditions: []Condition{
				{Type: ConditionDisease, Contains: "hypertension"},
				{Type: ConditionDisease, Contains: "chest pain"},
			},
		},
		{
			ID:             "rule_003",
			Name:           "Multiple Chronic Conditions",
			RiskLevel:      common.RiskMedium,
			Recommendation: "Consider comprehensive care management",
			Conditions: []Condition{
				{Type: ConditionDiseaseCount, Operator: OpAtLeast, Value: 3},
			},
		},
		{
			ID:             "rule_004",
			Name:           "Abnormal Liver Function",
			RiskLevel:      common.RiskMedium,
			Recommendation: "Liver function tests and hepatology consult if persistent",
			Conditions: []Condition{
				{Type: ConditionLabValue, Lab: "alt", Operator: OpGreaterThan, Value: 56},
			},
		},
		{
			ID:             "rule_005",
			Name:           "Anemia with Fatigue",
			RiskLevel:      common.RiskMedium,
			Recommendation: "Complete blood count and iron studies recommended",
			Conditions: []Condition{
				{Type: ConditionLabValue, Lab: "hemoglobin", Operator: OpLessThan, Value: 12},
				{Type: ConditionDisease, Contains: "fatigue"},
			},
		},
		{
			ID:             "rule_006",
			Name:           "COPD with Dyspnea",
			RiskLevel:      common.RiskMedium,
			Recommendation: "Pulmonary function tests and inhaler assessment",
			Conditions: []Condition{
				{Type: ConditionDisease, Contains: "copd"},
				{Type: ConditionDisease, Contains: "dyspnea"},
			},
		},
		{
			ID:             "rule_007",
			Name:           "Renal Impairment",
			RiskLevel:      common.RiskMedium,
			Recommendation: "Renal function panel and nephrology consult",
			Conditions: []Condition{
				{Type: ConditionLabValue, Lab: "creatinine", Operator: OpGreaterThan, Value: 1.3},
			},
		},
	}
}
