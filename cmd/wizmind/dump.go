package main

import (
	"fmt"

	"wizmind/process/memory_map"
	"wizmind/process_blob"

	"github.com/spf13/cobra"
)

var (
	dumpOut string
	dumpAll bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Save the game's memory to a directory for inspect --dump",
	Args:  cobra.NoArgs,
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpOut, "out", "o", "", "Output directory")
	dumpCmd.Flags().BoolVar(&dumpAll, "all", false, "Save every readable region, not just read-write memory")
	dumpCmd.MarkFlagRequired("out")
}

func runDump(cmd *cobra.Command, args []string) error {
	reader, err := attach()
	if err != nil {
		return err
	}
	proc := reader.Process()
	defer proc.Close()

	// the block and everything it points at live in read-write memory
	filter := func(region memory_map.MemoryMapItem) bool { return region.IsReadWrite() }
	if dumpAll {
		filter = nil
	}

	dump, err := process_blob.Capture(proc, cfg.Process, filter)
	if err != nil {
		return err
	}
	if err := dump.Save(dumpOut); err != nil {
		return err
	}

	size := uint(0)
	for _, region := range dump.MemoryMap {
		size += region.Size
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d regions, %d bytes, block at %s, to %s\n",
		len(dump.MemoryMap), size, reader.BlockAddress().ToString(), dumpOut)
	return nil
}
