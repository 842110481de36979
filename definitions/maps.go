package definitions

import (
	"fmt"
	"strings"

	"wizmind/telemetry"
)

// NoMapDepth marks a map whose depth the goto command does not take
const NoMapDepth = 0

// MapDefinition is a map the wizard goto command can reach. Depths count
// down as the player climbs, so FirstDepth is the larger number.
type MapDefinition struct {
	Name            string
	Tag             string
	Type            telemetry.MapType
	FirstDepth      int
	LastDepth       int
	MainMap         bool
	MainMapRequired bool // branch only reachable from its main map
}

// HasDepth reports whether depth lies in the map's range
func (m MapDefinition) HasDepth(depth int) bool {
	return depth <= m.FirstDepth && depth >= m.LastDepth
}

// GotoCommand is the wizard console command that jumps to the map. Depth 10
// is entered as 0.
func (m MapDefinition) GotoCommand(depth int) string {
	if depth == NoMapDepth {
		return "goto " + m.Tag
	}
	return fmt.Sprintf("goto %s%d", m.Tag, depth%10)
}

type mapOption func(*MapDefinition)

func depths(first, last int) mapOption {
	return func(m *MapDefinition) { m.FirstDepth, m.LastDepth = first, last }
}

func mainMap(m *MapDefinition)         { m.MainMap = true }
func mainMapRequired(m *MapDefinition) { m.MainMapRequired = true }

func tag(t string) mapOption {
	return func(m *MapDefinition) { m.Tag = t }
}

func newMap(name string, mapType telemetry.MapType, options ...mapOption) MapDefinition {
	m := MapDefinition{Name: name, Type: mapType}
	for _, option := range options {
		option(&m)
	}
	if m.Tag == "" {
		m.Tag = name[:3]
	}
	return m
}

// Maps lists every map goto can reach. Scrapyard and Surface are left out,
// jumping to them crashes the game. Lair and Wartown need special modes.
var Maps = []MapDefinition{
	newMap("Materials", telemetry.MapMAT, depths(10, 8), mainMap),
	newMap("Factory", telemetry.MapFAC, depths(7, 4), mainMap),
	newMap("Research", telemetry.MapRES, depths(3, 2), mainMap),
	newMap("Access", telemetry.MapACC, depths(1, 1), mainMap),
	newMap("Mines", telemetry.MapMIN, depths(10, 9)),
	newMap("Exiles", telemetry.MapEXI),
	newMap("Storage", telemetry.MapSTO),
	newMap("Recycling", telemetry.MapREC),
	newMap("Scraptown", telemetry.MapSCR),
	newMap("Wastes", telemetry.MapWAS, depths(7, 4), mainMapRequired),
	// the -9 Storage Garrison only exists sometimes
	newMap("Garrison", telemetry.MapGAR, depths(8, 1), mainMapRequired),
	newMap("DSF", telemetry.MapDSF, depths(7, 2)),
	newMap("Subcaves", telemetry.MapSUB, depths(7, 2)),
	newMap("Lower Caves", telemetry.MapLOW, depths(7, 6)),
	newMap("Upper Caves", telemetry.MapUPP, depths(5, 4)),
	newMap("Proximity Caves", telemetry.MapPRO, depths(6, 3)),
	newMap("Deep Caves", telemetry.MapDEE),
	newMap("Zion", telemetry.MapZIO),
	newMap("Data Miner", telemetry.MapDAT),
	newMap("Zhirov", telemetry.MapZHI),
	newMap("Warlord", telemetry.MapWAR),
	newMap("Extension", telemetry.MapEXT),
	newMap("Cetus", telemetry.MapCET),
	newMap("Archives", telemetry.MapARC),
	newMap("Hub_04(d)", telemetry.MapHUB),
	newMap("Armory", telemetry.MapARM),
	newMap("Lab", telemetry.MapLAB),
	newMap("Quarantine", telemetry.MapQUA),
	newMap("Testing", telemetry.MapTES),
	newMap("Section 7", telemetry.MapSEC),
	newMap("Protoforge", telemetry.MapFRG, tag("Frg")),
	newMap("Command", telemetry.MapCOM),
}

// MapByType looks a map up by its telemetry type
func MapByType(mapType telemetry.MapType) (MapDefinition, bool) {
	for _, m := range Maps {
		if m.Type == mapType {
			return m, true
		}
	}
	return MapDefinition{}, false
}

// MapByName looks a map up by name, ignoring case
func MapByName(name string) (MapDefinition, bool) {
	for _, m := range Maps {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return MapDefinition{}, false
}

// MainMap returns the main map covering depth
func MainMap(depth int) (MapDefinition, bool) {
	for _, m := range Maps {
		if m.MainMap && m.HasDepth(depth) {
			return m, true
		}
	}
	return MapDefinition{}, false
}
