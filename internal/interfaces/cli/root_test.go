package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if stdin != "" {
		cmd.SetIn(strings.NewReader(stdin))
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeReport(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "medner dev")
	assert.Contains(t, out, "commit:")
}

func TestExtractCommand_JSON(t *testing.T) {
	path := writeReport(t, "Glucose: 250 mg/dL\nALT: 80 U/L\n")

	out, err := runCLI(t, "", "extract", path, "-o", "json")
	require.NoError(t, err)

	var labs []record.LabResult
	require.NoError(t, json.Unmarshal([]byte(out), &labs))
	require.NotEmpty(t, labs)

	names := make([]string, 0, len(labs))
	for _, lab := range labs {
		names = append(names, strings.ToLower(lab.Name))
	}
	assert.Contains(t, names, "glucose")
	assert.Contains(t, names, "alt")
}

func TestExtractCommand_Table(t *testing.T) {
	path := writeReport(t, "Glucose: 250 mg/dL\n")

	out, err := runCLI(t, "", "extract", path)
	require.NoError(t, err)
	assert.Contains(t, out, "TEST")
	assert.Contains(t, out, "Glucose")
	assert.Contains(t, out, "250")
}

func TestExtractCommand_Stdin(t *testing.T) {
	out, err := runCLI(t, "Hemoglobin: 10.5 g/dL\n", "extract", "-", "-o", "json")
	require.NoError(t, err)

	var labs []record.LabResult
	require.NoError(t, json.Unmarshal([]byte(out), &labs))
	require.NotEmpty(t, labs)
	assert.Equal(t, "10.5", labs[0].Value)
}

func TestExtractCommand_MissingFile(t *testing.T) {
	_, err := runCLI(t, "", "extract", filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestScreenCommand_TriggersHighRisk(t *testing.T) {
	path := writeReport(t, "Patient history of diabetes. Glucose: 250 mg/dL\n")

	out, err := runCLI(t, "", "screen", path, "--disease", "diabetes", "-o", "json")
	require.NoError(t, err)

	var result record.ScreeningResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "HIGH", string(result.RiskLevel))

	ruleIDs := make([]string, 0, len(result.TriggeredRules))
	for _, rule := range result.TriggeredRules {
		ruleIDs = append(ruleIDs, rule.RuleID)
	}
	assert.Contains(t, ruleIDs, "rule_001")
}

func TestScreenCommand_TextOutput(t *testing.T) {
	path := writeReport(t, "Routine checkup. Glucose: 95 mg/dL\n")

	out, err := runCLI(t, "", "screen", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Risk level: LOW")
	assert.Contains(t, out, "No rules triggered.")
}

func TestRulesCommand_Defaults(t *testing.T) {
	out, err := runCLI(t, "", "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "rule_001")
	assert.Contains(t, out, "Diabetes with High Glucose")
}

func TestRulesCommand_CustomFile(t *testing.T) {
	rulesYAML := `rules:
  - id: custom_001
    name: Custom Rule
    risk_level: HIGH
    recommendation: Escalate
    conditions:
      - type: disease
        contains: sepsis
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rulesYAML), 0o600))

	out, err := runCLI(t, "", "rules", "--rules", path)
	require.NoError(t, err)
	assert.Contains(t, out, "custom_001")
	assert.NotContains(t, out, "rule_001")
}

func TestOutbreaksCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/analytics/outbreaks", r.URL.Path)
		w.Write([]byte(`{
			"success": true,
			"data": {
				"alerts": [
					{"disease": "measles", "date": "2026-08-28T00:00:00Z", "count": 12, "previous_count": 4, "increase_ratio": 3.0, "severity": "HIGH"}
				],
				"threshold": 2.0,
				"analysis_period_days": 14,
				"generated_at": "2026-08-29T00:00:00Z"
			}
		}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, "", "outbreaks", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "measles")
	assert.Contains(t, out, "3.0x")
	assert.Contains(t, out, "HIGH")
}

func TestOutbreaksCommand_NoAlerts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": {"alerts": [], "threshold": 2.0, "analysis_period_days": 14}}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, "", "outbreaks", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "No outbreak signals")
}
