package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/producer-intervals/internal/config"
	"github.com/sells-group/producer-intervals/internal/ingest"
	"github.com/sells-group/producer-intervals/internal/model"
)

const maxContentWidth = 60

var validateStrict bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse the nomination file and report malformed lines",
	Long:  "Parses the source without computing intervals and prints every diagnostic. With --strict the command fails when any line was skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := validateSource(cmd, cfg)
		if err != nil {
			return err
		}
		if validateStrict && summary.skipped > 0 {
			return eris.Errorf("validate: %d malformed line(s)", summary.skipped)
		}
		return nil
	},
}

type validateSummary struct {
	lines    int
	records  int
	skipped  int
	warnings int
}

func validateSource(cmd *cobra.Command, c *config.Config) (validateSummary, error) {
	location := sourceLocation(c)

	rc, err := newOpener(c).Open(cmd.Context(), location)
	if err != nil {
		return validateSummary{}, ingest.Unreadable(location, err)
	}
	defer rc.Close() //nolint:errcheck

	parsed, err := ingest.NewParser(ingest.Options{AllowBlankWinner: c.Source.AllowBlankWinner}).ParseReader(rc)
	if err != nil {
		return validateSummary{}, ingest.Unreadable(location, err)
	}

	diags := parsed.Diagnostics
	summary := validateSummary{
		lines:   parsed.Lines,
		records: len(parsed.Records),
		skipped: parsed.Skipped(),
	}
	summary.warnings = len(diags) - summary.skipped

	out := cmd.OutOrStdout()
	if len(diags) > 0 {
		if err := printDiagnostics(out, diags); err != nil {
			return summary, err
		}
	}
	_, err = fmt.Fprintf(out, "%s: %d lines, %d records, %d skipped, %d warnings\n",
		location, summary.lines, summary.records, summary.skipped, summary.warnings)
	return summary, err
}

func printDiagnostics(w io.Writer, diags []model.Diagnostic) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Line", "Severity", "Reason", "Message", "Content"})

	data := make([][]string, 0, len(diags))
	for _, d := range diags {
		data = append(data, []string{
			strconv.Itoa(d.Line),
			string(d.Severity),
			string(d.Reason),
			d.Message,
			truncate(d.Content, maxContentWidth),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "exit non-zero when any line is skipped")
	rootCmd.AddCommand(validateCmd)
}
