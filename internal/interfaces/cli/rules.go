package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRulesCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Show the active screening rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := resolveRules(opts)
			if err != nil {
				return err
			}

			if opts.Output == "json" {
				return printJSON(cmd, rules)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tRISK\tCONDITIONS")
			for _, rule := range rules {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", rule.ID, rule.Name, rule.RiskLevel, len(rule.Conditions))
			}
			return w.Flush()
		},
	}
}
