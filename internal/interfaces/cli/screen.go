package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/application/screening"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/intelligence/labextract"
)

func newScreenCmd(opts *RootOptions) *cobra.Command {
	var diseases []string

	cmd := &cobra.Command{
		Use:   "screen <report-file>",
		Short: "Screen a report against the risk rules",
		Long: "Extracts lab values from a clinical report file and evaluates the\n" +
			"screening rules against them. Disease findings are supplied with\n" +
			"--disease since entity recognition needs the full pipeline.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readReport(cmd, args[0])
			if err != nil {
				return err
			}

			rules, err := resolveRules(opts)
			if err != nil {
				return err
			}
			engine, err := screening.NewEngine(rules)
			if err != nil {
				return err
			}

			rec, err := record.NewMedicalRecord(text, args[0])
			if err != nil {
				return err
			}
			for _, d := range diseases {
				d = strings.TrimSpace(d)
				if d == "" {
					continue
				}
				rec.Diseases = append(rec.Diseases, record.Entity{
					Text:       d,
					Type:       record.EntityTypeDisease,
					Confidence: 1.0,
				})
			}
			rec.Labs = labextract.NewRegexExtractor().Extract(text)

			result := engine.Evaluate(rec)

			if opts.Output == "json" {
				return printJSON(cmd, result)
			}
			return printVerdict(cmd, result)
		},
	}

	cmd.Flags().StringSliceVar(&diseases, "disease", nil, "known disease finding (repeatable)")
	return cmd
}

func printVerdict(cmd *cobra.Command, result record.ScreeningResult) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Risk level: %s\n", result.RiskLevel)
	fmt.Fprintf(out, "Findings:   %d disease(s), %d lab value(s)\n", result.DiseaseCount, result.LabCount)

	if len(result.TriggeredRules) == 0 {
		fmt.Fprintln(out, "No rules triggered.")
		return nil
	}

	fmt.Fprintln(out, "Triggered rules:")
	for _, rule := range result.TriggeredRules {
		fmt.Fprintf(out, "  [%s] %s (%s)\n", rule.RuleID, rule.RuleName, rule.RiskLevel)
		if rule.Recommendation != "" {
			fmt.Fprintf(out, "      %s\n", rule.Recommendation)
		}
	}
	return nil
}
