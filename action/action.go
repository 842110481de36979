// Package action drives the game through synthetic input and waits on the
// mirror for the game to react. Every wait is a bounded poll; running out
// of time is reported with an error wrapping ErrTimeout so a script can
// reset the session instead of hanging.
package action

import (
	"errors"
	"fmt"
	"time"

	"wizmind/analysis"
	"wizmind/config"
	"wizmind/definitions"
	"wizmind/input"
	"wizmind/mirror"
	"wizmind/telemetry"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var ErrTimeout = errors.New("timed out")

var (
	ErrHackPopupOpen   = fmt.Errorf("failed to open machine hacking popup: %w", ErrTimeout)
	ErrHackIncomplete  = fmt.Errorf("failed to complete hack: %w", ErrTimeout)
	ErrStairsFailed    = fmt.Errorf("failed to take stairs to new map: %w", ErrTimeout)
	ErrMapChangeFailed = fmt.Errorf("failed to go to map: %w", ErrTimeout)
	ErrNoAdvance       = fmt.Errorf("turn counter did not advance: %w", ErrTimeout)
	ErrCursorStuck     = fmt.Errorf("cursor did not reach target: %w", ErrTimeout)
)

var (
	ErrHackNotReady      = errors.New("machine hacking popup is not ready")
	ErrHackPopupClose    = errors.New("failed to close the hacking popup")
	ErrWizardKeyMissing  = errors.New("wizard mode key is missing")
	ErrUnknownItem       = errors.New("item does not exist")
	ErrInvalidDepth      = errors.New("invalid depth")
	ErrInvalidSlot       = errors.New("invalid slot")
	ErrOffMap            = errors.New("point is off the map")
	ErrNoGarrisonOpening = errors.New("couldn't find open garrison tile")
)

// WizardKeyFile must sit beside the game executable for wizard mode to work
const WizardKeyFile = "wizard_access_private_key_do_not_share.txt"

// Controller is the single place the session changes game state. Like the
// mirror it wraps, it is driven from one goroutine.
type Controller struct {
	mirror  *mirror.Mirror
	keys    *input.Keyboard
	defs    *definitions.Definitions
	timings config.Timings

	tiles *analysis.Classifier[analysis.TileType]
	props *analysis.Classifier[analysis.PropType]

	wizard bool
	log    *logger.Logger
}

func New(m *mirror.Mirror, keys *input.Keyboard, defs *definitions.Definitions, timings config.Timings) *Controller {
	return &Controller{
		mirror:  m,
		keys:    keys,
		defs:    defs,
		timings: timings,
		tiles:   analysis.NewTileClassifier(),
		props:   analysis.NewPropClassifier(),
		log:     logger.NewLogger(coloransi.Color(coloransi.Yellow, coloransi.Black, "action")),
	}
}

func (c *Controller) Mirror() *mirror.Mirror {
	return c.mirror
}

func (c *Controller) Definitions() *definitions.Definitions {
	return c.defs
}

func (c *Controller) TileClassifier() *analysis.Classifier[analysis.TileType] {
	return c.tiles
}

func (c *Controller) PropClassifier() *analysis.Classifier[analysis.PropType] {
	return c.props
}

// Location returns the current map type and depth
func (c *Controller) Location() (telemetry.MapType, int, error) {
	block, err := c.mirror.Read()
	if err != nil {
		return telemetry.MapNone, 0, err
	}
	return block.LocationMap, int(block.LocationDepth), nil
}

var directionKeys = map[analysis.Direction]input.Key{
	analysis.DownLeft:  input.KeyNumPad1,
	analysis.Down:      input.KeyNumPad2,
	analysis.DownRight: input.KeyNumPad3,
	analysis.Left:      input.KeyNumPad4,
	analysis.None:      input.KeyNumPad5,
	analysis.Right:     input.KeyNumPad6,
	analysis.UpLeft:    input.KeyNumPad7,
	analysis.Up:        input.KeyNumPad8,
	analysis.UpRight:   input.KeyNumPad9,
}

// DirectionKey is the numpad key moving in dir
func DirectionKey(dir analysis.Direction) (input.Key, error) {
	key, ok := directionKeys[dir]
	if !ok {
		return 0, fmt.Errorf("invalid direction %s", dir)
	}
	return key, nil
}

func (c *Controller) tap(key input.Key, mods input.Modifier) error {
	return c.keys.SendKey(key, mods, false)
}

// poll calls done every interval until it reports true. Once timeout has
// passed the last check is followed by fail.
func poll(timeout, interval time.Duration, fail error, done func() (bool, error)) error {
	start := time.Now()
	deadline := start.Add(timeout)
	for {
		ok, err := done()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w after %v", fail, time.Since(start).Round(time.Millisecond))
		}
		time.Sleep(interval)
	}
}

// advance sends a turn-taking key and waits for the counter to move
func (c *Controller) advance(what string, key input.Key, mods input.Modifier) error {
	before, err := c.mirror.TurnCounter()
	if err != nil {
		return err
	}
	if err := c.tap(key, mods); err != nil {
		return err
	}

	c.mirror.Invalidate(mirror.Advancing)
	after, err := c.mirror.TurnCounter()
	if err != nil {
		return err
	}
	if after == before {
		return fmt.Errorf("%s: %w", what, ErrNoAdvance)
	}
	return nil
}

// Move steps one tile in dir
func (c *Controller) Move(dir analysis.Direction) error {
	if dir == analysis.None {
		return fmt.Errorf("move: invalid direction %s", dir)
	}
	key, err := DirectionKey(dir)
	if err != nil {
		return err
	}
	return c.advance("move "+dir.String(), key, input.ModNone)
}

// Wait passes one turn
func (c *Controller) Wait() error {
	return c.advance("wait", input.KeyNumPad5, input.ModNone)
}

// DropItem drops the inventory item in slot 0-9
func (c *Controller) DropItem(slot int) error {
	if slot < 0 || slot > 9 {
		return fmt.Errorf("drop slot %d: %w", slot, ErrInvalidSlot)
	}
	key := input.Key0
	if slot > 0 {
		key = input.Key1 + input.Key(slot-1)
	}
	return c.advance(fmt.Sprintf("drop slot %d", slot), key, input.ModAlt)
}

// CloseMenus escapes out of whatever popup may be open
func (c *Controller) CloseMenus() error {
	for range 2 {
		if err := c.tap(input.KeyEscape, input.ModNone); err != nil {
			return err
		}
	}
	time.Sleep(c.timings.EscapeMenu)
	c.mirror.Invalidate(mirror.NonAdvancing)
	return nil
}

// SelfDestruct ends the run from the game menu and starts a new one
func (c *Controller) SelfDestruct() error {
	steps := []struct {
		key   input.Key
		mods  input.Modifier
		sleep time.Duration
	}{
		{input.KeyOemQuestion, input.ModShift, c.timings.EscapeMenu},
		{input.Key1, input.ModNone, c.timings.EscapeMenu},
		{input.KeyB, input.ModNone, c.timings.SelfDestruct},
		{input.KeyB, input.ModNone, c.timings.GameOver},
		{input.KeySpace, input.ModNone, c.timings.NewGame},
	}

	c.log.Infoln("Self destructing")
	for _, step := range steps {
		if err := c.tap(step.key, step.mods); err != nil {
			return err
		}
		time.Sleep(step.sleep)
	}
	c.mirror.Invalidate(mirror.NonAdvancing)
	return nil
}
