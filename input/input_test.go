package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendKeyOrder(t *testing.T) {
	tests := []struct {
		name string
		mods Modifier
		want []Event
	}{
		{
			name: "plain",
			mods: ModNone,
			want: []Event{{Kind: KeyDown, Key: KeyX}, {Kind: KeyUp, Key: KeyX}},
		},
		{
			name: "alt ctrl shift",
			mods: ModAltCtrlShift,
			want: []Event{
				{Kind: KeyDown, Key: KeyMenu},
				{Kind: KeyDown, Key: KeyControl},
				{Kind: KeyDown, Key: KeyShift},
				{Kind: KeyDown, Key: KeyX},
				{Kind: KeyUp, Key: KeyX},
				{Kind: KeyUp, Key: KeyShift},
				{Kind: KeyUp, Key: KeyControl},
				{Kind: KeyUp, Key: KeyMenu},
			},
		},
		{
			name: "alt shift",
			mods: ModAltShift,
			want: []Event{
				{Kind: KeyDown, Key: KeyMenu},
				{Kind: KeyDown, Key: KeyShift},
				{Kind: KeyDown, Key: KeyX},
				{Kind: KeyUp, Key: KeyX},
				{Kind: KeyUp, Key: KeyShift},
				{Kind: KeyUp, Key: KeyMenu},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Recorder{}
			k := NewKeyboard(rec, 0)
			require.NoError(t, k.SendKey(KeyX, tt.mods, true))
			assert.Equal(t, tt.want, rec.Events)
			for _, wait := range rec.Waits {
				assert.True(t, wait)
			}
		})
	}
}

func TestSendText(t *testing.T) {
	rec := &Recorder{}
	k := NewKeyboard(rec, 0)

	require.NoError(t, k.SendText(`G "Ion-9"`, false))
	assert.Equal(t, []Stroke{
		{KeyG, ModNone},
		{KeySpace, ModNone},
		{KeyOemQuotes, ModShift},
		{KeyI, ModNone},
		{KeyO, ModNone},
		{KeyN, ModNone},
		{KeyOemMinus, ModNone},
		{Key9, ModNone},
		{KeyOemQuotes, ModShift},
	}, rec.Strokes())
	for _, wait := range rec.Waits {
		assert.False(t, wait, "one mode per action")
	}
}

func TestSendTextUnsupported(t *testing.T) {
	rec := &Recorder{}
	k := NewKeyboard(rec, 0)

	err := k.SendText("goto Qua!", true)
	require.ErrorIs(t, err, ErrUnsupportedCharacter)
	assert.Contains(t, err.Error(), `'!'`)
	assert.Empty(t, rec.Events, "nothing sent before the bad character")

	assert.True(t, CanType('Q'))
	assert.False(t, CanType('%'))
}

func TestSendMousePress(t *testing.T) {
	rec := &Recorder{Cursor: Position{X: 120, Y: 45}}
	k := NewKeyboard(rec, 0)

	require.NoError(t, k.SendMousePress(ButtonRight, nil, ModAlt, true))
	require.Len(t, rec.Events, 4)
	assert.Equal(t, []bool{true, true, true, true}, rec.Waits)
	assert.Equal(t, Event{Kind: KeyDown, Key: KeyMenu}, rec.Events[0])
	assert.Equal(t, Event{Kind: ButtonDown, Button: ButtonRight, Pos: Position{120, 45}, Mods: ModAlt}, rec.Events[1])
	assert.Equal(t, ButtonUp, rec.Events[2].Kind)
	assert.Equal(t, Event{Kind: KeyUp, Key: KeyMenu}, rec.Events[3])

	rec.Reset()
	require.NoError(t, k.SendMousePress(ButtonLeft, &Position{X: 3, Y: 4}, ModNone, false))
	require.Len(t, rec.Events, 2)
	assert.Equal(t, Position{X: 3, Y: 4}, rec.Events[0].Pos)
	assert.Equal(t, []bool{false, false}, rec.Waits)
}

func TestKeyNames(t *testing.T) {
	assert.Equal(t, "NumPad5", KeyNumPad5.String())
	assert.Equal(t, "F2", KeyF2.String())
	assert.Equal(t, "K", KeyK.String())
	assert.Equal(t, "Escape", KeyEscape.String())
	assert.Equal(t, "Up", KeyArrowUp.String())
	assert.Equal(t, "key-up", KeyUp.String())
	assert.Equal(t, "Alt+Control+Shift", ModAltCtrlShift.String())
}

func TestStrokeRune(t *testing.T) {
	for _, r := range `goto gar0 "a" (b)_` {
		st, ok := characters[r]
		require.True(t, ok, "%q", r)
		back, ok := st.Rune()
		require.True(t, ok)
		assert.Equal(t, r, back)
	}

	_, ok := Stroke{Key: KeyF2}.Rune()
	assert.False(t, ok)
}

func TestRecorderOnStroke(t *testing.T) {
	var got []Stroke
	rec := &Recorder{OnStroke: func(s Stroke) { got = append(got, s) }}
	k := NewKeyboard(rec, 0)

	require.NoError(t, k.SendKey(KeyK, ModAltCtrlShift, false))
	require.NoError(t, k.SendKey(KeyNumPad6, ModShift, false))
	require.NoError(t, k.SendMousePress(ButtonRight, &Position{}, ModAlt, false))
	require.NoError(t, k.SendKey(KeyEscape, ModNone, false))

	assert.Equal(t, []Stroke{
		{KeyK, ModAltCtrlShift},
		{KeyNumPad6, ModShift},
		{KeyEscape, ModNone},
	}, got)
	assert.Equal(t, got, rec.Strokes())
}
