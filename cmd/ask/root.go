package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	appask "github.com/bryanwahyu/datascope/internal/application/ask"
	"github.com/bryanwahyu/datascope/internal/domain/ask"
	dslog "github.com/bryanwahyu/datascope/internal/log"
)

// Global flag values.
var (
	verbose bool
	quiet   bool
	noColor bool
	server  string
	page    string
	timeout time.Duration
	asJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "datascope-ask [question...]",
	Short: "Ask a question about a dataset report",
	Long: `datascope-ask sends a natural-language question to the ask endpoint of a
report page and prints the answer. The page path selects the dataset, for
example /report/air.csv.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       Version,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		level := "info"
		switch {
		case quiet:
			level = "warn"
		case verbose:
			level = "debug"
		}
		dslog.Setup(level)
		if noColor {
			color.NoColor = true
		}
	},
	RunE: runAsk,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.Flags().StringVarP(&server, "server", "s", "http://localhost:8080", "base URL of the datascope server")
	rootCmd.Flags().StringVarP(&page, "page", "p", "", "report page path, e.g. /report/air.csv (required)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "request timeout")
	rootCmd.Flags().BoolVar(&asJSON, "json", false, "print the outcome as JSON")
	_ = rootCmd.MarkFlagRequired("page")
}

func runAsk(cmd *cobra.Command, args []string) error {
	if _, err := ask.ParseReportPath(page); err != nil {
		return &exitCodeError{code: ExitInvalidArgs, msg: err.Error()}
	}

	sink := &terminalSink{}
	asker := appask.NewAsker(server, page, ask.StaticInput(strings.Join(args, " ")), sink)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	out, askErr := asker.AskData(ctx)
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		printOutcome(cmd.OutOrStdout(), out, sink.html)
	}

	switch {
	case askErr != nil:
		return &exitCodeError{code: ExitFailure, msg: askErr.Error()}
	case out.State == ask.StateEarlyReturn:
		return &exitCodeError{code: ExitInvalidArgs}
	case out.Response.Failed():
		return &exitCodeError{code: ExitServiceError}
	}
	return nil
}

func printOutcome(w io.Writer, out ask.Outcome, html string) {
	text := plainText(html)
	switch {
	case out.State == ask.StateFailure:
		color.New(color.FgRed).Fprintln(w, text)
	case out.State == ask.StateEarlyReturn, out.Response.Failed():
		color.New(color.FgYellow).Fprintln(w, text)
	default:
		color.New(color.FgGreen).Fprintln(w, text)
		printTable(w, out.Response.Table)
	}
}

// printTable prints a correlation table, "index" column first.
func printTable(w io.Writer, rows []map[string]any) {
	if len(rows) == 0 {
		return
	}
	bold := color.New(color.Bold)
	var cols []string
	for k := range rows[0] {
		if k != "index" {
			cols = append(cols, k)
		}
	}
	slices.Sort(cols)

	bold.Fprintf(w, "%-16s", "")
	for _, c := range cols {
		bold.Fprintf(w, "%12s", c)
	}
	fmt.Fprintln(w)
	for _, r := range rows {
		bold.Fprintf(w, "%-16v", r["index"])
		for _, c := range cols {
			fmt.Fprintf(w, "%12v", r[c])
		}
		fmt.Fprintln(w)
	}
}
