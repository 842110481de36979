package input

import "fmt"

// Key is a Windows virtual key code
type Key uint32

const (
	KeyBack       Key = 0x08
	KeyTab        Key = 0x09
	KeyEnter      Key = 0x0D
	KeyShift      Key = 0x10
	KeyControl    Key = 0x11
	KeyMenu       Key = 0x12 // alt
	KeyEscape     Key = 0x1B
	KeySpace      Key = 0x20
	KeyArrowLeft  Key = 0x25
	KeyArrowUp    Key = 0x26
	KeyArrowRight Key = 0x27
	KeyArrowDown  Key = 0x28
)

// Key0 to Key9 and KeyA to KeyZ share their ASCII codes
const (
	Key0 Key = 0x30 + iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
)

const (
	KeyA Key = 0x41 + iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
)

const (
	KeyNumPad0 Key = 0x60 + iota
	KeyNumPad1
	KeyNumPad2
	KeyNumPad3
	KeyNumPad4
	KeyNumPad5
	KeyNumPad6
	KeyNumPad7
	KeyNumPad8
	KeyNumPad9
)

const (
	KeyF1 Key = 0x70 + iota
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

const (
	KeyOemSemicolon     Key = 0xBA
	KeyOemPlus          Key = 0xBB
	KeyOemComma         Key = 0xBC
	KeyOemMinus         Key = 0xBD
	KeyOemPeriod        Key = 0xBE
	KeyOemQuestion      Key = 0xBF
	KeyOemOpenBrackets  Key = 0xDB
	KeyOemCloseBrackets Key = 0xDD
	KeyOemQuotes        Key = 0xDE
)

func (k Key) String() string {
	switch {
	case k >= Key0 && k <= Key9, k >= KeyA && k <= KeyZ:
		return string(rune(k))
	case k >= KeyNumPad0 && k <= KeyNumPad9:
		return fmt.Sprintf("NumPad%d", k-KeyNumPad0)
	case k >= KeyF1 && k <= KeyF12:
		return fmt.Sprintf("F%d", k-KeyF1+1)
	}
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(0x%02X)", uint32(k))
}

var keyNames = map[Key]string{
	KeyBack: "Back", KeyTab: "Tab", KeyEnter: "Enter", KeyShift: "Shift",
	KeyControl: "Control", KeyMenu: "Alt", KeyEscape: "Escape", KeySpace: "Space",
	KeyArrowLeft: "Left", KeyArrowUp: "Up", KeyArrowRight: "Right", KeyArrowDown: "Down",
	KeyOemSemicolon: ";", KeyOemPlus: "=", KeyOemComma: ",", KeyOemMinus: "-",
	KeyOemPeriod: ".", KeyOemQuestion: "/", KeyOemOpenBrackets: "[",
	KeyOemCloseBrackets: "]", KeyOemQuotes: "'",
}

// Modifier is a set of held modifier keys
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModAlt   Modifier = 1 << 0
	ModCtrl  Modifier = 1 << 1
	ModShift Modifier = 1 << 2

	ModAltShift     = ModAlt | ModShift
	ModAltCtrlShift = ModAlt | ModCtrl | ModShift
)

func (m Modifier) Has(other Modifier) bool {
	return m&other == other
}

func (m Modifier) String() string {
	if m == ModNone {
		return "none"
	}
	s := ""
	for _, mk := range modifierKeys {
		if m.Has(mk.mod) {
			if s != "" {
				s += "+"
			}
			s += mk.key.String()
		}
	}
	return s
}

// modifierKeys is the press order; release runs backwards
var modifierKeys = []struct {
	mod Modifier
	key Key
}{
	{ModAlt, KeyMenu},
	{ModCtrl, KeyControl},
	{ModShift, KeyShift},
}

type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	}
	return fmt.Sprintf("Button(%d)", int(b))
}

// Position is a point in the target window's client area
type Position struct {
	X int
	Y int
}

// characters lists everything SendText can type. Upper case input is sent
// as lower case, the game console ignores case.
var characters = map[rune]Stroke{
	' ':  {KeySpace, ModNone},
	'"':  {KeyOemQuotes, ModShift},
	'\'': {KeyOemQuotes, ModNone},
	'-':  {KeyOemMinus, ModNone},
	'.':  {KeyOemPeriod, ModNone},
	'/':  {KeyOemQuestion, ModNone},
	'(':  {Key9, ModShift},
	')':  {Key0, ModShift},
	'_':  {KeyOemMinus, ModShift},
	'[':  {KeyOemOpenBrackets, ModNone},
	']':  {KeyOemCloseBrackets, ModNone},
}

// typed maps strokes back to the character they type
var typed = map[Stroke]rune{}

func init() {
	for r := '0'; r <= '9'; r++ {
		characters[r] = Stroke{Key0 + Key(r-'0'), ModNone}
	}
	for r := 'a'; r <= 'z'; r++ {
		characters[r] = Stroke{KeyA + Key(r-'a'), ModNone}
	}
	for r, s := range characters {
		typed[s] = r
	}
}

// Rune returns the character s types into a text field
func (s Stroke) Rune() (rune, bool) {
	r, ok := typed[s]
	return r, ok
}
