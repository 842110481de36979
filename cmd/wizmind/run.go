package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"wizmind/action"
	"wizmind/input"
	"wizmind/mirror"
	"wizmind/runlog"
	"wizmind/script"

	"github.com/spf13/cobra"
)

var (
	runRuns int
	runDB   string
)

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Repeat a data collection script, self destructing between runs",
	Long: `Repeat a data collection script until --runs passes completed or until
interrupted. Every pass and its counts are recorded in the run log.

Scripts: ` + strings.Join(script.Names(), ", "),
	Args:      cobra.ExactArgs(1),
	ValidArgs: script.Names(),
	RunE:      runScript,
}

func init() {
	runCmd.Flags().IntVarP(&runRuns, "runs", "n", 0, "Passes to complete, 0 runs until interrupted")
	runCmd.Flags().StringVar(&runDB, "db", "", "Run log database (default from config)")
}

func runLogPath() string {
	if runDB != "" {
		return runDB
	}
	return cfg.RunDB
}

func runScript(cmd *cobra.Command, args []string) error {
	s, err := script.Lookup(args[0])
	if err != nil {
		return err
	}

	reader, err := attach()
	if err != nil {
		return err
	}
	proc := reader.Process()
	defer proc.Close()

	defs, err := loadDefinitions(proc)
	if err != nil {
		return err
	}
	sender, err := input.FindWindow(uint32(proc.GetPID()))
	if err != nil {
		return err
	}
	store, err := runlog.Open(runLogPath())
	if err != nil {
		return err
	}
	defer store.Close()

	m := mirror.New(reader, defs, cfg.Timings.MirrorOptions())
	// the controller sleeps after every typed command itself
	keys := input.NewKeyboard(sender, 0)
	c := action.New(m, keys, defs, cfg.Timings)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result, err := script.NewRunner(c, store).Run(ctx, s, runRuns)
	log.Infoln("Done running", s.Name(), "-", result.Completed, "completed,", result.Failed, "failed")
	if cfg.Verbose {
		log.Infoln("Timeout violations", m.TimeoutViolations(), "stale reads", m.StaleReads())
	}
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	if perr := printTotals(cmd.OutOrStdout(), store, s.Name()); perr != nil && err == nil {
		err = perr
	}
	return err
}

func printTotals(w io.Writer, store *runlog.Store, name string) error {
	summary, err := store.Summary(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d done, %d failed, %d unfinished\n", name,
		summary[runlog.StatusDone], summary[runlog.StatusFailed], summary[runlog.StatusRunning])

	for _, kind := range []string{script.KindGarrisons, script.KindItems, script.KindProps} {
		totals, err := store.Totals(name, kind)
		if err != nil {
			return err
		}
		if len(totals) == 0 {
			continue
		}
		fmt.Fprintln(w)
		if err := printCounts(w, kind, totals); err != nil {
			return err
		}
	}
	return nil
}
