// Package input synthesizes key and mouse events for the game window. It
// knows nothing about the game.
package input

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var (
	ErrUnsupportedCharacter = errors.New("unsupported character")
	ErrUnsupported          = errors.New("input injection not supported on this platform")
	ErrWindowNotFound       = errors.New("window not found")
)

type EventKind int

const (
	KeyDown EventKind = iota
	KeyUp
	ButtonDown
	ButtonUp
)

func (k EventKind) String() string {
	return [...]string{"key-down", "key-up", "button-down", "button-up"}[k]
}

// Event is one low level input message. Mods carries the modifiers held
// while a button event is sent.
type Event struct {
	Kind   EventKind
	Key    Key
	Button Button
	Pos    Position
	Mods   Modifier
}

func (e Event) String() string {
	switch e.Kind {
	case KeyDown, KeyUp:
		return fmt.Sprintf("%s %s", e.Kind, e.Key)
	}
	return fmt.Sprintf("%s %s at %d,%d mods %s", e.Kind, e.Button, e.Pos.X, e.Pos.Y, e.Mods)
}

// Sender delivers events to the target window. With wait the call returns
// once the window has processed the event; without it the event is only
// queued. Mixing both modes inside one action can reorder events.
type Sender interface {
	Send(ev Event, wait bool) error
	// CursorPosition is the pointer position in client coordinates
	CursorPosition() (Position, error)
}

// Keyboard turns keys, text and clicks into event sequences
type Keyboard struct {
	sender Sender
	// TextSettle is slept after SendText without wait, letting the target
	// drain its queue
	TextSettle time.Duration

	log *logger.Logger
}

func NewKeyboard(sender Sender, textSettle time.Duration) *Keyboard {
	return &Keyboard{
		sender:     sender,
		TextSettle: textSettle,
		log:        logger.NewLogger(coloransi.Color(coloransi.Cyan, coloransi.Black, "input")),
	}
}

func (k *Keyboard) pressModifiers(mods Modifier, wait bool) error {
	for _, mk := range modifierKeys {
		if mods.Has(mk.mod) {
			if err := k.sender.Send(Event{Kind: KeyDown, Key: mk.key}, wait); err != nil {
				return err
			}
		}
	}
	return nil
}

func (k *Keyboard) releaseModifiers(mods Modifier, wait bool) error {
	for i := len(modifierKeys) - 1; i >= 0; i-- {
		mk := modifierKeys[i]
		if mods.Has(mk.mod) {
			if err := k.sender.Send(Event{Kind: KeyUp, Key: mk.key}, wait); err != nil {
				return err
			}
		}
	}
	return nil
}

// SendKey presses alt, ctrl and shift as mods asks, taps key, then lets
// the modifiers go in reverse order
func (k *Keyboard) SendKey(key Key, mods Modifier, wait bool) error {
	k.log.Debugln("Key", key, "mods", mods)
	if err := k.pressModifiers(mods, wait); err != nil {
		return fmt.Errorf("send %s: %w", key, err)
	}
	if err := k.sender.Send(Event{Kind: KeyDown, Key: key}, wait); err != nil {
		return fmt.Errorf("send %s: %w", key, err)
	}
	if err := k.sender.Send(Event{Kind: KeyUp, Key: key}, wait); err != nil {
		return fmt.Errorf("send %s: %w", key, err)
	}
	if err := k.releaseModifiers(mods, wait); err != nil {
		return fmt.Errorf("send %s: %w", key, err)
	}
	return nil
}

// SendKeys taps each key without modifiers
func (k *Keyboard) SendKeys(keys []Key, wait bool) error {
	for _, key := range keys {
		if err := k.SendKey(key, ModNone, wait); err != nil {
			return err
		}
	}
	return nil
}

// SendText types s. Every character is checked before anything is sent.
func (k *Keyboard) SendText(s string, wait bool) error {
	lower := strings.ToLower(s)
	strokes := make([]Stroke, 0, len(lower))
	for i, r := range lower {
		st, ok := characters[r]
		if !ok {
			return fmt.Errorf("%w %q at offset %d of %q", ErrUnsupportedCharacter, r, i, s)
		}
		strokes = append(strokes, st)
	}

	for _, st := range strokes {
		if err := k.SendKey(st.Key, st.Mods, wait); err != nil {
			return err
		}
	}
	if !wait && k.TextSettle > 0 {
		time.Sleep(k.TextSettle)
	}
	return nil
}

// CanType reports whether SendText accepts r
func CanType(r rune) bool {
	_, ok := characters[unicode.ToLower(r)]
	return ok
}

// SendMousePress clicks button at pos, or at the current pointer position
// when pos is nil. The click is bracketed by the modifier keys like SendKey,
// and wait applies to every event of it.
func (k *Keyboard) SendMousePress(button Button, pos *Position, mods Modifier, wait bool) error {
	at := Position{}
	if pos != nil {
		at = *pos
	} else {
		current, err := k.sender.CursorPosition()
		if err != nil {
			return fmt.Errorf("cursor position: %w", err)
		}
		at = current
	}
	k.log.Debugln("Mouse", button, "at", at.X, at.Y, "mods", mods)

	if err := k.pressModifiers(mods, wait); err != nil {
		return err
	}
	if err := k.sender.Send(Event{Kind: ButtonDown, Button: button, Pos: at, Mods: mods}, wait); err != nil {
		return err
	}
	if err := k.sender.Send(Event{Kind: ButtonUp, Button: button, Pos: at, Mods: mods}, wait); err != nil {
		return err
	}
	return k.releaseModifiers(mods, wait)
}

// Recorder is a Sender that keeps every event. It stands in for the game
// window when running offline.
type Recorder struct {
	Events []Event
	Waits  []bool
	Cursor Position
	// OnSend runs after an event is recorded
	OnSend func(ev Event)
	// OnStroke runs when a non-modifier key goes down
	OnStroke func(s Stroke)

	held Modifier
}

func (r *Recorder) Send(ev Event, wait bool) error {
	r.Events = append(r.Events, ev)
	r.Waits = append(r.Waits, wait)
	if r.OnSend != nil {
		r.OnSend(ev)
	}

	mod, isMod := isModifier(ev.Key)
	switch {
	case ev.Kind == KeyDown && isMod:
		r.held |= mod
	case ev.Kind == KeyUp && isMod:
		r.held &^= mod
	case ev.Kind == KeyDown && r.OnStroke != nil:
		r.OnStroke(Stroke{Key: ev.Key, Mods: r.held})
	}
	return nil
}

func (r *Recorder) CursorPosition() (Position, error) {
	return r.Cursor, nil
}

// Reset forgets recorded events
func (r *Recorder) Reset() {
	r.Events = nil
	r.Waits = nil
	r.held = ModNone
}

// Stroke is a non-modifier key press and the modifiers held at the time
type Stroke struct {
	Key  Key
	Mods Modifier
}

func isModifier(key Key) (Modifier, bool) {
	for _, mk := range modifierKeys {
		if mk.key == key {
			return mk.mod, true
		}
	}
	return ModNone, false
}

// Strokes folds the recorded key events back into key presses
func (r *Recorder) Strokes() []Stroke {
	var held Modifier
	var out []Stroke
	for _, ev := range r.Events {
		switch ev.Kind {
		case KeyDown:
			if mod, ok := isModifier(ev.Key); ok {
				held |= mod
				continue
			}
			out = append(out, Stroke{Key: ev.Key, Mods: held})
		case KeyUp:
			if mod, ok := isModifier(ev.Key); ok {
				held &^= mod
			}
		}
	}
	return out
}
