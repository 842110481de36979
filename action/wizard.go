package action

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"wizmind/analysis"
	"wizmind/definitions"
	"wizmind/input"
	"wizmind/mirror"
	"wizmind/telemetry"
)

// SlotKind is a part slot type the add slots command expands
type SlotKind int

const (
	SlotPower SlotKind = iota
	SlotPropulsion
	SlotUtility
	SlotWeapon
)

var slotCodes = map[SlotKind]string{
	SlotPower:      "po",
	SlotPropulsion: "pr",
	SlotUtility:    "ut",
	SlotWeapon:     "we",
}

// maxSlotsPerCommand is how many slots one "as" command can add
const maxSlotsPerCommand = 9

// EnsureWizardMode turns wizard mode on once per controller. The key file
// must exist beside the game executable or the game ignores the toggle.
func (c *Controller) EnsureWizardMode() error {
	if c.wizard {
		return nil
	}

	exe, err := c.mirror.Reader().Process().ExePath()
	if err != nil {
		return fmt.Errorf("locate game directory: %w", err)
	}
	keyPath := filepath.Join(filepath.Dir(exe), WizardKeyFile)
	if _, err := os.Stat(keyPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrWizardKeyMissing, keyPath)
		}
		return err
	}

	// the toggle twice leaves wizard mode on either way; when it was already
	// on the console is now open and escape closes it
	for range 2 {
		if err := c.tap(input.KeyD, input.ModAltShift); err != nil {
			return err
		}
	}
	if err := c.tap(input.KeyEscape, input.ModNone); err != nil {
		return err
	}
	time.Sleep(c.timings.EnterString)

	c.log.Infoln("Wizard mode enabled")
	c.wizard = true
	return nil
}

// EnterWizardCommand types command into the wizard console
func (c *Controller) EnterWizardCommand(command string) error {
	for i, r := range command {
		if !input.CanType(r) {
			return fmt.Errorf("wizard command %q: %w %q at offset %d", command, input.ErrUnsupportedCharacter, r, i)
		}
	}
	if err := c.EnsureWizardMode(); err != nil {
		return err
	}

	c.log.Debugln("Wizard command", command)
	if err := c.tap(input.KeyD, input.ModAltShift); err != nil {
		return err
	}
	time.Sleep(c.timings.WizardConsole)

	if err := c.keys.SendText(command, false); err != nil {
		return err
	}
	time.Sleep(c.timings.EnterString)

	if err := c.tap(input.KeyEnter, input.ModNone); err != nil {
		return err
	}
	time.Sleep(c.timings.EnterString)
	return nil
}

func (c *Controller) knownItem(name string) error {
	if _, ok := c.defs.ItemID(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, name)
	}
	return nil
}

// GiveItem spawns name in the inventory, or on the floor when it is full.
// Item data is not refreshed by wizard commands, so nothing is invalidated.
func (c *Controller) GiveItem(name string) error {
	if err := c.knownItem(name); err != nil {
		return err
	}
	return c.EnterWizardCommand("g " + name)
}

// AttachItem spawns name attached to the player, or in the inventory when
// no slot fits
func (c *Controller) AttachItem(name string) error {
	if err := c.knownItem(name); err != nil {
		return err
	}
	return c.EnterWizardCommand("a " + name)
}

// AddSlots adds n slots of kind
func (c *Controller) AddSlots(kind SlotKind, n int) error {
	code, ok := slotCodes[kind]
	if !ok {
		return fmt.Errorf("slot kind %d: %w", kind, ErrInvalidSlot)
	}
	for n > 0 {
		add := min(n, maxSlotsPerCommand)
		if err := c.EnterWizardCommand(fmt.Sprintf("as %s%d", code, add)); err != nil {
			return err
		}
		n -= add
	}
	return nil
}

// GotoMainMap jumps to the main map at depth
func (c *Controller) GotoMainMap(depth int, force bool) error {
	m, ok := definitions.MainMap(depth)
	if !ok {
		return fmt.Errorf("main map at depth %d: %w", depth, ErrInvalidDepth)
	}
	return c.GotoMap(m, depth, force)
}

// GotoMap jumps to m. Depth may be definitions.NoMapDepth when the map has
// only one. Unless force is set nothing happens when the player is already
// there. Branches that need their main map visited first go through it.
func (c *Controller) GotoMap(m definitions.MapDefinition, depth int, force bool) error {
	if depth != definitions.NoMapDepth {
		if depth < 1 || depth > 10 {
			return fmt.Errorf("depth %d: %w", depth, ErrInvalidDepth)
		}
		if !m.HasDepth(depth) {
			return fmt.Errorf("depth %d for %s: %w", depth, m.Name, ErrInvalidDepth)
		}
	}
	if err := c.EnsureWizardMode(); err != nil {
		return err
	}

	block, err := c.mirror.Read()
	if err != nil {
		return err
	}
	if !force && block.LocationMap == m.Type && (depth == definitions.NoMapDepth || int(block.LocationDepth) == depth) {
		return nil
	}

	if m.MainMapRequired {
		if depth == definitions.NoMapDepth {
			return fmt.Errorf("%s needs a depth: %w", m.Name, ErrInvalidDepth)
		}
		main, ok := definitions.MainMap(depth)
		if !ok {
			return fmt.Errorf("main map at depth %d: %w", depth, ErrInvalidDepth)
		}
		if block.LocationMap != main.Type || int(block.LocationDepth) != depth {
			if err := c.GotoMap(main, depth, force); err != nil {
				return fmt.Errorf("go to main map %s: %w", main.Name, err)
			}
			if block, err = c.mirror.Read(); err != nil {
				return err
			}
		}
	}

	c.log.Infoln("Going to", m.Name, "depth", depth)
	if err := c.EnterWizardCommand(m.GotoCommand(depth)); err != nil {
		return err
	}

	err = poll(c.timings.MapLoadTime, c.timings.MapLoadSleep, ErrMapChangeFailed, func() (bool, error) {
		c.mirror.Invalidate(mirror.NonAdvancing)
		now, err := c.mirror.Read()
		if err != nil {
			return false, err
		}
		return now.ActionReady != block.ActionReady &&
			now.LocationMap == m.Type &&
			(depth == definitions.NoMapDepth || int(now.LocationDepth) == depth), nil
	})
	if err != nil {
		return fmt.Errorf("%s depth %d: %w", m.Name, depth, err)
	}
	time.Sleep(c.timings.PostMapLoad)
	return nil
}

// GotoMapType is GotoMap for a map named by its telemetry type
func (c *Controller) GotoMapType(mapType telemetry.MapType, depth int, force bool) error {
	m, ok := definitions.MapByType(mapType)
	if !ok {
		return fmt.Errorf("map %s is not supported", mapType)
	}
	return c.GotoMap(m, depth, force)
}

// RevealMap shows room outlines and machines, and with full every tile and
// item as well
func (c *Controller) RevealMap(full bool) error {
	if err := c.EnsureWizardMode(); err != nil {
		return err
	}
	presses := 1
	if full {
		presses = 2
	}
	for range presses {
		if err := c.tap(input.KeyK, input.ModAltCtrlShift); err != nil {
			return err
		}
	}
	time.Sleep(c.timings.RevealMap)
	c.mirror.Invalidate(mirror.NonAdvancing)
	return nil
}

// TeleportTo moves the player to p with the wizard teleport click
func (c *Controller) TeleportTo(p analysis.Point) error {
	if err := c.EnsureWizardMode(); err != nil {
		return err
	}
	if err := c.MoveCursorTo(p); err != nil {
		return err
	}

	// leaving keyboard mode parks the mouse pointer on the focused tile
	if err := c.tap(input.KeyF2, input.ModNone); err != nil {
		return err
	}
	if err := c.keys.SendMousePress(input.ButtonRight, nil, input.ModAlt, false); err != nil {
		return err
	}
	c.mirror.Invalidate(mirror.NonAdvancing)
	return nil
}

// MoveCursorTo walks the keyboard map cursor onto p, one key per step,
// holding shift for stride steps
func (c *Controller) MoveCursorTo(p analysis.Point) error {
	block, err := c.mirror.Read()
	if err != nil {
		return err
	}
	planner := analysis.NewCursorPlanner(int(block.MapWidth), int(block.MapHeight))
	if p.X < 0 || p.Y < 0 || p.X >= planner.Width || p.Y >= planner.Height {
		return fmt.Errorf("cursor to %s: %w", p, ErrOffMap)
	}

	// X enters keyboard mode; from mouse mode it lands on the player, from
	// keyboard mode focus may be off, so X F2 X covers both
	for _, key := range []input.Key{input.KeyX, input.KeyF2, input.KeyX} {
		if err := c.tap(key, input.ModNone); err != nil {
			return err
		}
	}
	time.Sleep(c.timings.CursorAppear)

	presses := 0
	err = poll(c.timings.CursorMoveTimeout, c.timings.CursorMove, ErrCursorStuck, func() (bool, error) {
		c.mirror.Invalidate(mirror.NonAdvancing)
		at, err := c.mirror.CursorPosition()
		if err != nil {
			return false, err
		}
		if at == p {
			return true, nil
		}
		step, ok := planner.Next(at, p)
		if !ok {
			// cursor not drawn yet
			return false, nil
		}
		mods := input.ModNone
		if step.Stride {
			mods = input.ModShift
		}
		presses++
		return false, c.tap(directionKeys[step.Direction], mods)
	})
	if err != nil {
		return fmt.Errorf("cursor to %s: %w", p, err)
	}
	c.log.Debugln("Cursor reached", p, "in", presses, "presses")
	return nil
}

// garrisonOpening finds the tile in front of a Garrison Access: no prop of
// its own and Garrison Access on three cardinal sides. It returns the tile
// and the direction from it to the access.
func (c *Controller) garrisonOpening(g *analysis.Grid, access analysis.Point) (analysis.Point, analysis.Direction, bool) {
	for _, dir := range []analysis.Direction{analysis.Left, analysis.Right, analysis.Up, analysis.Down} {
		dx, dy := dir.Delta()
		at := access.Add(dx, dy)
		if !g.InBounds(at) || g.Cell(at).Prop != nil {
			continue
		}
		walls := 0
		for _, n := range g.Neighbors4(at) {
			if prop := g.Cell(n).Prop; prop != nil && c.props.Is(prop.Name, analysis.PropGarrisonAccess) {
				walls++
			}
		}
		if walls == 3 {
			return at, dir.Opposite(), true
		}
	}
	return analysis.Point{}, analysis.None, false
}

// TryFindAndEnterGarrison reveals the map, teleports in front of the
// nearest interactive Garrison Access, hacks it open and takes the stairs.
// It returns false when the map has no Garrison Access. The open hack is
// assumed to always succeed.
func (c *Controller) TryFindAndEnterGarrison() (bool, error) {
	if err := c.RevealMap(true); err != nil {
		return false, err
	}
	player, err := c.mirror.PlayerPosition()
	if err != nil {
		return false, err
	}
	g, err := c.mirror.Snapshot()
	if err != nil {
		return false, err
	}

	access := analysis.Nearest(analysis.FindPropTiles(g, c.props, analysis.PropGarrisonAccess, true), player)
	if access == nil {
		c.log.Infoln("No Garrison Access on this map")
		return false, nil
	}

	at, dir, ok := c.garrisonOpening(g, access.Point)
	if !ok {
		return false, fmt.Errorf("garrison access at %s: %w", access.Point, ErrNoGarrisonOpening)
	}

	if err := c.TeleportTo(at); err != nil {
		return false, err
	}
	if err := c.OpenHackingPopup(dir); err != nil {
		return false, err
	}
	// the open hack is always listed first
	if _, err := c.PerformHack(input.KeyA); err != nil {
		return false, err
	}
	if err := c.CloseHackingPopup(); err != nil {
		return false, err
	}
	if err := c.EnterStairs(nil, false); err != nil {
		return false, err
	}
	return true, nil
}
