package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/producer-intervals/internal/model"
)

var intervalsFormat string

var intervalsCmd = &cobra.Command{
	Use:   "intervals",
	Short: "Run the pipeline once and print the min/max producer intervals",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		out := cmd.OutOrStdout()
		switch intervalsFormat {
		case "json":
			return printResultJSON(out, env.Service.ResultJSON())
		case "table":
			return printResultTable(out, env.Service.Result())
		default:
			return eris.Errorf("intervals: unknown format %q (want table or json)", intervalsFormat)
		}
	},
}

func printResultJSON(w io.Writer, body []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return eris.Wrap(err, "intervals: indent json")
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

func printResultTable(w io.Writer, result model.ResultSet) error {
	if result.IsEmpty() {
		_, err := fmt.Fprintln(w, "no producer has won more than once")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Set", "Producer", "Interval", "Previous Win", "Following Win"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, set := range []struct {
		name      string
		intervals []model.Interval
	}{{"min", result.Min}, {"max", result.Max}} {
		for _, iv := range set.intervals {
			data = append(data, []string{
				set.name,
				iv.Producer,
				strconv.Itoa(iv.Interval),
				strconv.Itoa(iv.PreviousWin),
				strconv.Itoa(iv.FollowingWin),
			})
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func init() {
	intervalsCmd.Flags().StringVar(&intervalsFormat, "format", "table", "output format: table or json")
	rootCmd.AddCommand(intervalsCmd)
}
