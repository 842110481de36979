package main

import (
	"os"

	"wizmind/config"
	"wizmind/telemetry"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	processName string
	verbose     bool

	cfg *config.Config
	log = logger.NewLogger(coloransi.Color(coloransi.White, coloransi.Black, "wizmind"))
)

var rootCmd = &cobra.Command{
	Use:   "wizmind",
	Short: "Drive Cogmind through its -luigiai telemetry and collect map statistics",
	Long: `wizmind attaches to a Cogmind process started with -luigiai, mirrors the
telemetry block the game exposes, and drives the game with synthetic input.

Commands:
  locate  - find the game and its telemetry block
  inspect - print the telemetry block, live or from a saved dump
  dump    - save the game's memory for offline inspection
  run     - repeat a data collection script across fresh runs
  report  - print the counts recorded by earlier runs`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("process") {
			loaded.Process = processName
		}
		if cmd.Flags().Changed("verbose") {
			loaded.Verbose = verbose
		}
		cfg = loaded
		return cfg.Validate()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file (missing means defaults)")
	rootCmd.PersistentFlags().StringVar(&processName, "process", telemetry.DefaultProcessName, "Game process name")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print mirror statistics and extra detail")

	rootCmd.AddCommand(locateCmd, inspectCmd, dumpCmd, runCmd, reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
