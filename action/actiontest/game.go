// Package actiontest wires a Controller to a fake game that answers the
// inputs the controller sends: moves, stairs, hacking popups, the wizard
// console, the map cursor, teleport clicks and self destruct.
package actiontest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wizmind/action"
	"wizmind/analysis"
	"wizmind/config"
	"wizmind/definitions"
	"wizmind/input"
	"wizmind/mirror"
	"wizmind/telemetry"
	"wizmind/telemetry/telemetrytest"
)

// Names registered in the fake definitions
const (
	GarrisonAccess = "Garrison Access"
	Terminal       = "Terminal"
	DataCore       = "MAIN.C Data Core"
	GodChip        = "Architect God Chip A"
)

var (
	PropIDs = map[string]int32{GarrisonAccess: 10, Terminal: 11}
	ItemIDs = map[string]int32{DataCore: 20, GodChip: 21}
	CellIDs = map[string]int32{"FLOOR": 1, "WALL": 2, "STAIRS": 3}
)

// Timings keeps every sleep short and every timeout small
func Timings() config.Timings {
	return config.Timings{
		PollInterval:            time.Millisecond,
		AdvancingTimeout:        50 * time.Millisecond,
		MapLoadTime:             100 * time.Millisecond,
		MapLoadSleep:            time.Millisecond,
		CursorMove:              time.Millisecond,
		CursorMoveTimeout:       200 * time.Millisecond,
		HackPopupLoadSleep:      time.Millisecond,
		HackingPopupLoadTimeout: 50 * time.Millisecond,
		HackDataRefresh:         time.Millisecond,
	}
}

// Location is a map and depth
type Location struct {
	Map   telemetry.MapType
	Depth int
}

type Game struct {
	*telemetrytest.Game

	Recorder   *input.Recorder
	Defs       *definitions.Definitions
	Mirror     *mirror.Mirror
	Controller *action.Controller

	// Frozen drops every input, like a game stuck in a menu
	Frozen bool
	// StairsTo is where stairs under the player lead
	StairsTo Location
	// OnMapLoad fills a map entered by goto, stairs or a new game
	OnMapLoad func(g *Game)

	Commands      []string
	Reveals       int
	SelfDestructs int
	Inventory     []string

	width, height int
	dir           string
	console       *strings.Builder
	cursorMode    bool
	periods       int
	destruct      []input.Key
}

// New returns a controller over a width x height Scrapyard map with the
// wizard key installed beside the fake executable
func New(tb testing.TB, width, height int) *Game {
	tb.Helper()

	g := &Game{
		Game:     telemetrytest.New(width, height),
		Recorder: &input.Recorder{},
		Defs:     definitions.Empty(),
		StairsTo: Location{Map: telemetry.MapMAT, Depth: 9},
		width:    width,
		height:   height,
		dir:      tb.TempDir(),
	}
	for name, id := range PropIDs {
		g.Defs.Props.Add(definitions.Definition{ID: id, Name: name})
	}
	for name, id := range ItemIDs {
		g.Defs.Items.Add(definitions.Definition{ID: id, Name: name})
	}
	for name, id := range CellIDs {
		g.Defs.Cells.Add(definitions.Definition{ID: id, Name: name})
	}

	g.Dump.Exe = filepath.Join(g.dir, "COGMIND.EXE")
	if err := os.WriteFile(filepath.Join(g.dir, action.WizardKeyFile), nil, 0o644); err != nil {
		tb.Fatal(err)
	}

	g.Recorder.OnStroke = g.stroke
	g.Recorder.OnSend = g.click

	timings := Timings()
	g.Mirror = mirror.New(g.Reader(), g.Defs, timings.MirrorOptions())
	g.Controller = action.New(g.Mirror, input.NewKeyboard(g.Recorder, 0), g.Defs, timings)
	return g
}

// RemoveWizardKey deletes the wizard key file
func (g *Game) RemoveWizardKey() {
	os.Remove(filepath.Join(g.dir, action.WizardKeyFile))
}

// PlaceGarrison builds a Garrison Access around the opening at (x, y): access
// pieces left, right and below it, the lower one interactive
func (g *Game) PlaceGarrison(x, y int) {
	id := PropIDs[GarrisonAccess]
	g.PlaceProp(x-1, y, telemetry.Prop{ID: id})
	g.PlaceProp(x+1, y, telemetry.Prop{ID: id})
	g.PlaceProp(x, y+1, telemetry.Prop{ID: id, InteractivePiece: true})
}

// Travel loads a blank map at loc and advances the turn
func (g *Game) Travel(loc Location) {
	g.SetMap(loc.Map, loc.Depth, g.width, g.height)
	for x := 0; x < g.width; x++ {
		for y := 0; y < g.height; y++ {
			g.SetCell(x, y, CellIDs["FLOOR"])
		}
	}
	g.cursorMode = false
	g.periods = 0
	if g.OnMapLoad != nil {
		g.OnMapLoad(g)
	}
	g.Advance()
}

func (g *Game) player() analysis.Point {
	x, y := g.PlayerPosition()
	return analysis.Point{X: x, Y: y}
}

func (g *Game) inBounds(p analysis.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

func numpad(key input.Key) (analysis.Direction, bool) {
	for _, dir := range append([]analysis.Direction{analysis.None}, analysis.Directions...) {
		if k, _ := action.DirectionKey(dir); k == key {
			return dir, true
		}
	}
	return analysis.None, false
}

func (g *Game) click(ev input.Event) {
	if g.Frozen || ev.Kind != input.ButtonDown {
		return
	}
	if ev.Button == input.ButtonRight && ev.Mods == input.ModAlt {
		x, y := g.Cursor()
		g.MovePlayer(x, y)
		g.Flush()
	}
}

func (g *Game) stroke(s input.Stroke) {
	if g.Frozen {
		return
	}

	if g.console != nil {
		g.consoleStroke(s)
		return
	}

	switch {
	case s.Key == input.KeyD && s.Mods == input.ModAltShift:
		g.console = &strings.Builder{}
	case s.Key == input.KeyK && s.Mods == input.ModAltCtrlShift:
		g.Reveals++
	case s.Key == input.KeyX:
		g.cursorMode = true
		x, y := g.PlayerPosition()
		g.SetCursor(x, y)
	case s.Key == input.KeyF2:
		g.cursorMode = false
	case s.Key == input.KeyEscape:
		if _, open := g.Hacking(); open {
			g.CloseHacking()
		}
	case s.Key == input.KeyA && s.Mods == input.ModNone:
		if _, open := g.Hacking(); open {
			g.UpdateHacking(func(h *telemetry.Hacking) {
				h.ActionReady++
				h.LastHackSuccess = true
			})
		}
	case s.Key == input.KeyOemPeriod && s.Mods == input.ModShift:
		g.periods++
		if g.periods == 2 {
			g.Travel(g.StairsTo)
		}
	case s.Mods == input.ModAlt && s.Key >= input.Key0 && s.Key <= input.Key9:
		g.drop(int(s.Key - input.Key0))
	default:
		if dir, ok := numpad(s.Key); ok {
			g.numpad(dir, s.Mods == input.ModShift)
			return
		}
		g.selfDestruct(s)
	}
}

func (g *Game) consoleStroke(s input.Stroke) {
	switch {
	case s.Key == input.KeyD && s.Mods == input.ModAltShift:
		g.console.Reset()
	case s.Key == input.KeyEscape:
		g.console = nil
	case s.Key == input.KeyEnter:
		command := g.console.String()
		g.console = nil
		g.execute(command)
	default:
		if r, ok := s.Rune(); ok {
			g.console.WriteRune(r)
		}
	}
}

func (g *Game) execute(command string) {
	g.Commands = append(g.Commands, command)

	verb, arg, _ := strings.Cut(command, " ")
	switch verb {
	case "g":
		for name := range ItemIDs {
			if strings.EqualFold(name, arg) {
				arg = name
			}
		}
		g.Inventory = append(g.Inventory, arg)
	case "goto":
		tag, depth := arg, int(g.Block.LocationDepth)
		if n := len(arg); n > 0 && arg[n-1] >= '0' && arg[n-1] <= '9' {
			tag, depth = arg[:n-1], int(arg[n-1]-'0')
			if depth == 0 {
				depth = 10
			}
		}
		for _, m := range definitions.Maps {
			if strings.EqualFold(m.Tag, tag) {
				g.Travel(Location{Map: m.Type, Depth: depth})
				return
			}
		}
	}
}

func (g *Game) numpad(dir analysis.Direction, shift bool) {
	dx, dy := dir.Delta()
	if g.cursorMode {
		if shift {
			dx, dy = dx*analysis.DefaultCursorStride, dy*analysis.DefaultCursorStride
		}
		x, y := g.Cursor()
		to := analysis.Point{X: x + dx, Y: y + dy}
		if g.inBounds(to) {
			g.SetCursor(to.X, to.Y)
		}
		return
	}

	if dir == analysis.None {
		g.Advance()
		return
	}
	to := g.player().Add(dx, dy)
	if !g.inBounds(to) {
		return
	}
	tile := g.Tile(to.X, to.Y)
	if !tile.Prop.IsNull() {
		if _, open := g.Hacking(); !open {
			g.OpenHacking(telemetry.Hacking{ActionReady: 1, DetectChance: 5})
		}
		return
	}
	g.MovePlayer(to.X, to.Y)
	g.Advance()
}

func (g *Game) drop(digit int) {
	slot := digit - 1
	if digit == 0 {
		slot = 9
	}
	if slot < len(g.Inventory) {
		name := g.Inventory[slot]
		g.Inventory = append(g.Inventory[:slot], g.Inventory[slot+1:]...)
		x, y := g.PlayerPosition()
		g.PlaceItem(x, y, telemetry.Item{ID: ItemIDs[name], Integrity: 100})
	}
	g.Advance()
}

var destructSequence = []input.Key{input.KeyOemQuestion, input.Key1, input.KeyB, input.KeyB, input.KeySpace}

func (g *Game) selfDestruct(s input.Stroke) {
	g.destruct = append(g.destruct, s.Key)
	n := len(g.destruct)
	if g.destruct[n-1] != destructSequence[n-1] {
		g.destruct = nil
		return
	}
	if n == len(destructSequence) {
		g.destruct = nil
		g.SelfDestructs++
		g.Inventory = nil
		g.Travel(Location{Map: telemetry.MapYRD, Depth: 10})
	}
}
