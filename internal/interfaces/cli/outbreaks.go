package cli

import (
	"context"
	"fmt"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/client"
)

func newOutbreaksCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "outbreaks",
		Short: "Scan recent records for disease outbreak signals",
		Long:  "Asks the API server to scan recent disease mentions for day-over-day\nspikes and prints any alerts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := client.NewClient(opts.ServerAddr,
				client.WithHTTPClient(&http.Client{Timeout: opts.Timeout}))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()

			report, err := api.Analytics().Outbreaks(ctx)
			if err != nil {
				return err
			}

			if opts.Output == "json" {
				return printJSON(cmd, report)
			}
			return printOutbreaks(cmd, report)
		},
	}
}

func printOutbreaks(cmd *cobra.Command, report *client.OutbreakReport) error {
	out := cmd.OutOrStdout()
	if len(report.Alerts) == 0 {
		fmt.Fprintf(out, "No outbreak signals in the last %d days.\n", report.AnalysisPeriodDays)
		return nil
	}

	fmt.Fprintf(out, "%d outbreak signal(s), threshold %.1fx:\n", len(report.Alerts), report.Threshold)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DISEASE\tDATE\tCOUNT\tPREVIOUS\tINCREASE\tSEVERITY")
	for _, alert := range report.Alerts {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.1fx\t%s\n",
			alert.Disease, alert.Date.Format("2006-01-02"),
			alert.Count, alert.PreviousCount, alert.IncreaseRatio, alert.Severity)
	}
	return w.Flush()
}
