package script

import (
	"wizmind/action"
	"wizmind/analysis"
	"wizmind/definitions"
	"wizmind/telemetry"
)

// garrisonDepths are the depths a Garrison can be entered from, deepest first
const (
	garrisonFirstDepth = 8
	garrisonLastDepth  = 1
)

// QuarantineContents jumps to Quarantine and counts what is there. A
// dropped MAIN.C Data Core identifies every item on the map.
type QuarantineContents struct{}

func (QuarantineContents) Name() string { return "quarantine-contents" }

const dataCore = "MAIN.C Data Core"

func (QuarantineContents) Run(c *action.Controller, rec Record) error {
	if err := c.GotoMapType(telemetry.MapQUA, definitions.NoMapDepth, false); err != nil {
		return err
	}
	if err := c.RevealMap(true); err != nil {
		return err
	}
	if err := c.GiveItem(dataCore); err != nil {
		return err
	}
	if err := c.DropItem(1); err != nil {
		return err
	}
	if err := c.Wait(); err != nil {
		return err
	}

	g, err := c.Mirror().Snapshot()
	if err != nil {
		return err
	}
	rec.Add(KindItems, analysis.ItemCounts(g))
	rec.Add(KindProps, analysis.PropCounts(g))
	return nil
}

// GarrisonContents visits the Garrison of every depth and counts its items,
// props and tiles
type GarrisonContents struct{}

func (GarrisonContents) Name() string { return "garrison-contents" }

func (GarrisonContents) Run(c *action.Controller, rec Record) error {
	for depth := garrisonFirstDepth; depth >= garrisonLastDepth; depth-- {
		if err := c.GotoMapType(telemetry.MapGAR, depth, false); err != nil {
			return err
		}
		// loop exits are only drawn once a turn has passed
		if err := c.Wait(); err != nil {
			return err
		}
		if err := c.RevealMap(true); err != nil {
			return err
		}
		if err := countMap(c, rec, depth); err != nil {
			return err
		}
	}
	return nil
}

func countMap(c *action.Controller, rec Record, depth int) error {
	g, err := c.Mirror().Snapshot()
	if err != nil {
		return err
	}
	rec.AddDepth(KindItems, depth, analysis.ItemCounts(g))
	rec.AddDepth(KindProps, depth, analysis.PropCounts(g))
	rec.AddDepth(KindTiles, depth, analysis.TileCounts(g))
	return nil
}

// GarrisonEntry walks the main maps and enters each one's Garrison the
// way a player would: hack the access open and take the stairs inside
type GarrisonEntry struct{}

func (GarrisonEntry) Name() string { return "garrison-entry" }

const godChip = "Architect God Chip A"

func (GarrisonEntry) Run(c *action.Controller, rec Record) error {
	// every hack succeeds with the chip attached
	if err := c.AttachItem(godChip); err != nil {
		return err
	}

	for depth := garrisonFirstDepth; depth >= garrisonLastDepth; depth-- {
		if err := c.GotoMainMap(depth, false); err != nil {
			return err
		}
		entered, err := c.TryFindAndEnterGarrison()
		if err != nil {
			return err
		}
		if !entered {
			rec.AddDepth(KindGarrisons, depth, map[string]int{"missing": 1})
			continue
		}
		rec.AddDepth(KindGarrisons, depth, map[string]int{"entered": 1})

		if err := c.RevealMap(true); err != nil {
			return err
		}
		if err := countMap(c, rec, depth); err != nil {
			return err
		}
	}
	return nil
}
