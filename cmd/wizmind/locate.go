package main

import (
	"fmt"

	"wizmind/pod"

	"github.com/spf13/cobra"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Find the game process and its telemetry block",
	Args:  cobra.NoArgs,
	RunE:  runLocate,
}

func runLocate(cmd *cobra.Command, args []string) error {
	reader, err := attach()
	if err != nil {
		return err
	}
	proc := reader.Process()
	defer proc.Close()

	out := cmd.OutOrStdout()
	exe, err := proc.ExePath()
	if err != nil {
		exe = "unknown"
	}
	fmt.Fprintf(out, "%s pid %d (%s)\n", cfg.Process, proc.GetPID(), exe)
	fmt.Fprintf(out, "Telemetry block at %s\n", reader.BlockAddress().ToString())

	block, err := reader.ReadBlock()
	if err != nil {
		return err
	}
	return pod.Fprint(out, block)
}
