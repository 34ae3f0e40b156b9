package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/intelligence/labextract"
)

func newExtractCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <report-file>",
		Short: "Extract laboratory values from a report file",
		Long:  "Runs the pattern-based lab extractor over a clinical report file\nand prints the laboratory values found. Use \"-\" to read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readReport(cmd, args[0])
			if err != nil {
				return err
			}

			labs := labextract.NewRegexExtractor().Extract(text)

			if opts.Output == "json" {
				return printJSON(cmd, labs)
			}
			return printLabs(cmd, labs)
		},
	}
}

func printLabs(cmd *cobra.Command, labs []record.LabResult) error {
	if len(labs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No lab values found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TEST\tVALUE\tUNIT\tNORMAL RANGE\tSOURCE")
	for _, lab := range labs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", lab.Name, lab.Value, lab.Unit, lab.NormalRange, lab.Source)
	}
	return w.Flush()
}
