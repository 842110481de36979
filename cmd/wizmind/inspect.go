package main

import (
	"fmt"
	"io"
	"strconv"

	"wizmind/analysis"
	"wizmind/definitions"
	"wizmind/hexdump"
	"wizmind/mirror"
	"wizmind/pod"
	"wizmind/process"
	"wizmind/process_blob"
	"wizmind/runlog"
	"wizmind/telemetry"

	"github.com/spf13/cobra"
)

var (
	inspectDump   string
	inspectRaw    bool
	inspectCounts bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the telemetry block, the player and what the map holds",
	Args:  cobra.NoArgs,
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectDump, "dump", "", "Read a dump directory written by the dump command instead of the live game")
	inspectCmd.Flags().BoolVar(&inspectRaw, "raw", false, "Hex dump the block with its fields marked")
	inspectCmd.Flags().BoolVar(&inspectCounts, "counts", false, "Count tiles, items and props on the map")
}

func inspectReader() (*telemetry.Reader, error) {
	if inspectDump == "" {
		return attach()
	}

	dump := process_blob.NewProcessDump()
	if err := dump.Load(inspectDump); err != nil {
		return nil, err
	}
	addr, err := telemetry.Locate(dump)
	if err != nil {
		return nil, fmt.Errorf("dump %s: %w", inspectDump, err)
	}
	log.Infoln("Loaded dump of", dump.Name, dump.GetPID(), "from", inspectDump)
	return telemetry.NewReader(dump, addr), nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	reader, err := inspectReader()
	if err != nil {
		return err
	}
	proc := reader.Process()
	defer proc.Close()

	out := cmd.OutOrStdout()
	block, err := reader.ReadBlock()
	if err != nil {
		return err
	}
	if err := pod.Fprint(out, block); err != nil {
		return err
	}
	if inspectRaw {
		if err := dumpBlock(out, reader, proc); err != nil {
			return err
		}
	}

	m := mirror.New(reader, namesOrEmpty(proc), cfg.Timings.MirrorOptions())
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Location: %s\n", locationName(block))
	fmt.Fprintf(out, "Map: %dx%d, turn %d\n", block.MapWidth, block.MapHeight, block.ActionReady)

	if pos, err := m.PlayerPosition(); err == nil {
		fmt.Fprintf(out, "Player at %s\n", pos)
	} else {
		log.Warn("Player position: ", err)
	}
	if cursor, err := m.CursorPosition(); err == nil {
		fmt.Fprintf(out, "Cursor at %s\n", cursor)
	}
	if err := printInventory(out, m); err != nil {
		return err
	}
	if err := printHacking(out, m); err != nil {
		return err
	}

	if inspectCounts {
		g, err := m.Snapshot()
		if err != nil {
			return err
		}
		for _, section := range []struct {
			title  string
			counts map[string]int
		}{
			{"Tiles", analysis.TileCounts(g)},
			{"Items", analysis.ItemCounts(g)},
			{"Props", analysis.PropCounts(g)},
		} {
			fmt.Fprintln(out)
			if err := printCounts(out, section.title, section.counts); err != nil {
				return err
			}
		}
	}

	if cfg.Verbose {
		fmt.Fprintf(out, "\nMirror: %s, generation %d, stale reads %d\n", m.State(), m.Generation(), m.StaleReads())
	}
	return nil
}

func locationName(block telemetry.Block) string {
	name := block.LocationMap.String()
	if m, ok := definitions.MapByType(block.LocationMap); ok {
		name = m.Name
	}
	return fmt.Sprintf("%s -%d", name, block.LocationDepth)
}

func dumpBlock(w io.Writer, reader *telemetry.Reader, proc process.Process) error {
	blob, err := reader.ReadBytes(reader.BlockAddress(), process.ProcessMemorySize(telemetry.BlockLayout.Extent))
	if err != nil {
		return err
	}
	mm, err := proc.GetMemoryMap()
	if err != nil {
		return err
	}

	options := hexdump.DefaultOptions()
	options.StartAddress = uint64(reader.BlockAddress())
	options.Annotations = hexdump.FromLayout(telemetry.BlockLayout)
	options.MemoryMap = mm
	fmt.Fprintln(w)
	hexdump.Fdump(w, blob.Data(), options)
	return nil
}

func printInventory(w io.Writer, m *mirror.Mirror) error {
	player, err := m.Player()
	if err != nil {
		return err
	}
	items, err := player.Inventory()
	if err != nil {
		return err
	}

	table := pod.NewTable(
		pod.ColumnSpec{Header: "Slot", AlignRight: true},
		pod.ColumnSpec{Header: "Item", MinWidth: 24},
		pod.ColumnSpec{Header: "Integrity", AlignRight: true},
		pod.ColumnSpec{Header: "Equipped"},
	)
	for i, item := range items {
		equipped := ""
		if item.Equipped() {
			equipped = "yes"
		}
		table.AddRow(strconv.Itoa(i+1), item.Name(), strconv.Itoa(int(item.Integrity())), equipped)
	}
	fmt.Fprintf(w, "\nInventory of %s, %d items\n", player.Name(), len(items))
	return table.Render(w)
}

func printHacking(w io.Writer, m *mirror.Mirror) error {
	h, err := m.Hacking()
	if err != nil || h == nil {
		return err
	}
	fmt.Fprintln(w, "\nMachine hacking")
	return pod.Fprint(w, h.Raw())
}

func printCounts(w io.Writer, title string, counts map[string]int) error {
	table := pod.NewTable(
		pod.ColumnSpec{Header: title, MinWidth: 24},
		pod.ColumnSpec{Header: "Count", AlignRight: true},
	)
	total := 0
	for _, name := range runlog.SortedNames(counts) {
		table.AddRow(name, strconv.Itoa(counts[name]))
		total += counts[name]
	}
	table.AddSeparator()
	table.AddRow("total", strconv.Itoa(total))
	return table.Render(w)
}
