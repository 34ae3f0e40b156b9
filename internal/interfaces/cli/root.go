// Package cli implements the medner command line interface.
//
// extract and screen run entirely locally over a report file; outbreaks
// talks to a running API server.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/application/screening"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds global CLI flags shared by all subcommands.
type RootOptions struct {
	ServerAddr string
	RulesPath  string
	Output     string
	Timeout    time.Duration
}

// NewRootCommand creates the root cobra command with all subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "medner",
		Short:   "medner extracts diseases and lab values from clinical reports",
		Long:    "medner is a clinical report intelligence toolkit. It extracts disease\nmentions and laboratory values from free-text reports, screens them\nagainst risk rules, and surfaces disease outbreak signals.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ServerAddr, "server", "http://localhost:8080", "API server address")
	pf.StringVar(&opts.RulesPath, "rules", "", "screening rules YAML file (default: built-in rules)")
	pf.StringVarP(&opts.Output, "output", "o", "text", "output format (text, json)")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "server request timeout")

	cmd.AddCommand(
		newExtractCmd(opts),
		newScreenCmd(opts),
		newRulesCmd(opts),
		newOutbreaksCmd(opts),
		newVersionCmd(),
	)

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "medner %s\ncommit: %s\nbuilt:  %s\n", Version, GitCommit, BuildDate)
			return nil
		},
	}
}

// readReport reads the report text from the file argument, or from stdin
// when the argument is "-".
func readReport(cmd *cobra.Command, path string) (string, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading report: %w", err)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", fmt.Errorf("report %s is empty", path)
	}
	return text, nil
}

// resolveRules loads the rule set named by --rules, or the built-in set.
func resolveRules(opts *RootOptions) ([]screening.Rule, error) {
	if opts.RulesPath == "" {
		return screening.DefaultRules(), nil
	}
	return screening.LoadRules(opts.RulesPath)
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
