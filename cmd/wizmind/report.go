package main

import (
	"fmt"
	"time"

	"wizmind/pod"
	"wizmind/runlog"
	"wizmind/script"

	"github.com/spf13/cobra"
)

var (
	reportDB    string
	reportKinds []string
	reportRuns  bool
)

var reportCmd = &cobra.Command{
	Use:       "report <script>",
	Short:     "Print the counts recorded by earlier runs of a script",
	Args:      cobra.ExactArgs(1),
	ValidArgs: script.Names(),
	RunE:      runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDB, "db", "", "Run log database (default from config)")
	reportCmd.Flags().StringSliceVar(&reportKinds, "kind", nil, "Count kinds to print, like tiles or items@5 (default garrisons, items, props)")
	reportCmd.Flags().BoolVar(&reportRuns, "runs", false, "List every run")
}

func runReport(cmd *cobra.Command, args []string) error {
	path := reportDB
	if path == "" {
		path = cfg.RunDB
	}
	store, err := runlog.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	name := args[0]

	if reportRuns {
		runs, err := store.Runs(name)
		if err != nil {
			return err
		}
		table := pod.NewTable(
			pod.ColumnSpec{Header: "Run", AlignRight: true},
			pod.ColumnSpec{Header: "Status"},
			pod.ColumnSpec{Header: "Started"},
			pod.ColumnSpec{Header: "Took", AlignRight: true},
			pod.ColumnSpec{Header: "Error"},
		)
		for _, run := range runs {
			took := ""
			if !run.Finished.IsZero() {
				took = run.Finished.Sub(run.Started).Round(time.Second).String()
			}
			table.AddRow(fmt.Sprint(run.Number), string(run.Status), run.Started.Local().Format(time.DateTime), took, run.Error)
		}
		if err := table.Render(out); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	if len(reportKinds) == 0 {
		return printTotals(out, store, name)
	}
	for _, kind := range reportKinds {
		totals, err := store.Totals(name, kind)
		if err != nil {
			return err
		}
		if err := printCounts(out, kind, totals); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	return nil
}
