package action_test

import (
	"os"
	"testing"

	"wizmind/action"
	"wizmind/action/actiontest"
	"wizmind/analysis"
	"wizmind/definitions"
	"wizmind/input"
	"wizmind/mirror"
	"wizmind/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wizardToggle = []input.Stroke{
	{Key: input.KeyD, Mods: input.ModAltShift},
	{Key: input.KeyD, Mods: input.ModAltShift},
	{Key: input.KeyEscape},
}

func mapNamed(t *testing.T, name string) definitions.MapDefinition {
	t.Helper()
	m, ok := definitions.MapByName(name)
	require.True(t, ok, name)
	return m
}

func TestWizardKeyMissing(t *testing.T) {
	g := actiontest.New(t, 5, 5)
	g.RemoveWizardKey()

	require.ErrorIs(t, g.Controller.RevealMap(true), action.ErrWizardKeyMissing)
	assert.Empty(t, g.Recorder.Events)

	g.Dump.Exe = ""
	require.ErrorIs(t, g.Controller.RevealMap(true), os.ErrNotExist)
}

func TestRevealMap(t *testing.T) {
	g := actiontest.New(t, 5, 5)
	_, err := g.Mirror.Read()
	require.NoError(t, err)

	require.NoError(t, g.Controller.RevealMap(true))
	assert.Equal(t, mirror.Stale, g.Mirror.State())
	require.NoError(t, g.Controller.RevealMap(false))

	reveal := input.Stroke{Key: input.KeyK, Mods: input.ModAltCtrlShift}
	want := append(append([]input.Stroke{}, wizardToggle...), reveal, reveal, reveal)
	assert.Equal(t, want, g.Recorder.Strokes(), "wizard mode is enabled once")
	assert.Equal(t, 3, g.Reveals)
}

func TestWizardCommands(t *testing.T) {
	g := actiontest.New(t, 5, 5)

	require.NoError(t, g.Controller.GiveItem(actiontest.DataCore))
	require.NoError(t, g.Controller.AttachItem(actiontest.GodChip))
	require.NoError(t, g.Controller.AddSlots(action.SlotUtility, 19))
	require.NoError(t, g.Controller.AddSlots(action.SlotPower, 2))

	assert.Equal(t, []string{
		"g main.c data core",
		"a architect god chip a",
		"as ut9", "as ut9", "as ut1",
		"as po2",
	}, g.Commands)
	assert.Equal(t, []string{actiontest.DataCore}, g.Inventory)

	strokes := g.Recorder.Strokes()
	assert.Equal(t, wizardToggle, strokes[:3])
	assert.Equal(t, input.Stroke{Key: input.KeyD, Mods: input.ModAltShift}, strokes[3], "console opens")
	assert.Equal(t, input.Stroke{Key: input.KeyEnter}, strokes[len(strokes)-1])

	t.Run("rejected before typing", func(t *testing.T) {
		g.Recorder.Reset()
		require.ErrorIs(t, g.Controller.GiveItem("Ion Engine"), action.ErrUnknownItem)
		require.ErrorIs(t, g.Controller.AttachItem("Ion Engine"), action.ErrUnknownItem)
		require.ErrorIs(t, g.Controller.EnterWizardCommand("g 50%"), input.ErrUnsupportedCharacter)
		require.ErrorIs(t, g.Controller.AddSlots(action.SlotKind(9), 1), action.ErrInvalidSlot)
		assert.Empty(t, g.Recorder.Events)
	})
}

func TestGotoMap(t *testing.T) {
	tests := []struct {
		name  string
		start *actiontest.Location
		goto_ func(c *action.Controller) error
		want  []string
		at    actiontest.Location
	}{
		{
			name:  "single depth map keeps depth",
			goto_: func(c *action.Controller) error { return c.GotoMapType(telemetry.MapQUA, definitions.NoMapDepth, false) },
			want:  []string{"goto qua"},
			at:    actiontest.Location{Map: telemetry.MapQUA, Depth: 10},
		},
		{
			name:  "depth ten is typed as zero",
			goto_: func(c *action.Controller) error { return c.GotoMainMap(10, false) },
			want:  []string{"goto mat0"},
			at:    actiontest.Location{Map: telemetry.MapMAT, Depth: 10},
		},
		{
			name:  "branch goes through its main map",
			goto_: func(c *action.Controller) error { return c.GotoMapType(telemetry.MapGAR, 5, false) },
			want:  []string{"goto fac5", "goto gar5"},
			at:    actiontest.Location{Map: telemetry.MapGAR, Depth: 5},
		},
		{
			name:  "branch from its main map",
			start: &actiontest.Location{Map: telemetry.MapRES, Depth: 3},
			goto_: func(c *action.Controller) error { return c.GotoMapType(telemetry.MapGAR, 3, false) },
			want:  []string{"goto gar3"},
			at:    actiontest.Location{Map: telemetry.MapGAR, Depth: 3},
		},
		{
			name:  "already there",
			start: &actiontest.Location{Map: telemetry.MapFAC, Depth: 4},
			goto_: func(c *action.Controller) error { return c.GotoMainMap(4, false) },
			want:  nil,
			at:    actiontest.Location{Map: telemetry.MapFAC, Depth: 4},
		},
		{
			name:  "forced while there",
			start: &actiontest.Location{Map: telemetry.MapFAC, Depth: 4},
			goto_: func(c *action.Controller) error { return c.GotoMainMap(4, true) },
			want:  []string{"goto fac4"},
			at:    actiontest.Location{Map: telemetry.MapFAC, Depth: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := actiontest.New(t, 5, 5)
			if tt.start != nil {
				g.Travel(*tt.start)
			}

			require.NoError(t, tt.goto_(g.Controller))
			assert.Equal(t, tt.want, g.Commands)

			mapType, depth, err := g.Controller.Location()
			require.NoError(t, err)
			assert.Equal(t, tt.at, actiontest.Location{Map: mapType, Depth: depth})
		})
	}
}

func TestGotoMapErrors(t *testing.T) {
	garrison := mapNamed(t, "Garrison")

	tests := []struct {
		name  string
		m     definitions.MapDefinition
		depth int
	}{
		{"depth out of range", mapNamed(t, "Materials"), 11},
		{"depth not on map", garrison, 9},
		{"branch without depth", garrison, definitions.NoMapDepth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := actiontest.New(t, 5, 5)
			require.ErrorIs(t, g.Controller.GotoMap(tt.m, tt.depth, false), action.ErrInvalidDepth)
			assert.Empty(t, g.Commands)
		})
	}

	t.Run("no main map at depth", func(t *testing.T) {
		g := actiontest.New(t, 5, 5)
		require.ErrorIs(t, g.Controller.GotoMainMap(0, false), action.ErrInvalidDepth)
	})

	t.Run("map never loads", func(t *testing.T) {
		g := actiontest.New(t, 5, 5)
		g.Frozen = true
		err := g.Controller.GotoMap(mapNamed(t, "Quarantine"), definitions.NoMapDepth, false)
		require.ErrorIs(t, err, action.ErrMapChangeFailed)
		require.ErrorIs(t, err, action.ErrTimeout)
	})
}

func numpadStrokes(strokes []input.Stroke) int {
	n := 0
	for _, s := range strokes {
		if s.Key >= input.KeyNumPad1 && s.Key <= input.KeyNumPad9 {
			n++
		}
	}
	return n
}

func TestMoveCursorTo(t *testing.T) {
	from := analysis.Point{X: 2, Y: 3}
	tests := []analysis.Point{
		{X: 13, Y: 9},
		{X: 9, Y: 3},
		{X: 0, Y: 0},
		from,
	}

	for _, to := range tests {
		t.Run(to.String(), func(t *testing.T) {
			g := actiontest.New(t, 20, 12)
			g.MovePlayer(from.X, from.Y)

			require.NoError(t, g.Controller.MoveCursorTo(to))
			x, y := g.Cursor()
			assert.Equal(t, to, analysis.Point{X: x, Y: y})

			strokes := g.Recorder.Strokes()
			assert.Equal(t, []input.Stroke{{Key: input.KeyX}, {Key: input.KeyF2}, {Key: input.KeyX}}, strokes[:3])
			plan := analysis.NewCursorPlanner(20, 12).Plan(from, to)
			assert.Equal(t, len(plan), numpadStrokes(strokes), "one key per planned step")
		})
	}

	t.Run("off the map", func(t *testing.T) {
		g := actiontest.New(t, 20, 12)
		require.ErrorIs(t, g.Controller.MoveCursorTo(analysis.Point{X: 20, Y: 0}), action.ErrOffMap)
		assert.Empty(t, g.Recorder.Events)
	})

	t.Run("cursor ignores keys", func(t *testing.T) {
		g := actiontest.New(t, 20, 12)
		g.Frozen = true
		err := g.Controller.MoveCursorTo(analysis.Point{X: 9, Y: 9})
		require.ErrorIs(t, err, action.ErrCursorStuck)
		require.ErrorIs(t, err, action.ErrTimeout)
	})
}

func TestTeleportTo(t *testing.T) {
	g := actiontest.New(t, 20, 12)
	g.MovePlayer(1, 1)

	require.NoError(t, g.Controller.TeleportTo(analysis.Point{X: 11, Y: 7}))

	pos, err := g.Mirror.PlayerPosition()
	require.NoError(t, err)
	assert.Equal(t, analysis.Point{X: 11, Y: 7}, pos)

	events := g.Recorder.Events
	require.GreaterOrEqual(t, len(events), 4)
	click := events[len(events)-3]
	assert.Equal(t, input.ButtonDown, click.Kind)
	assert.Equal(t, input.ButtonRight, click.Button)
	assert.Equal(t, input.ModAlt, click.Mods)

	strokes := g.Recorder.Strokes()
	assert.Equal(t, input.Stroke{Key: input.KeyF2}, strokes[len(strokes)-1], "keyboard mode off before the click")
	assert.NotContains(t, g.Recorder.Waits, true, "every event of the teleport is posted")
}

func TestTryFindAndEnterGarrison(t *testing.T) {
	t.Run("enters", func(t *testing.T) {
		g := actiontest.New(t, 12, 12)
		g.Travel(actiontest.Location{Map: telemetry.MapFAC, Depth: 5})
		g.MovePlayer(1, 1)
		g.PlaceGarrison(6, 5)
		g.StairsTo = actiontest.Location{Map: telemetry.MapGAR, Depth: 5}

		entered, err := g.Controller.TryFindAndEnterGarrison()
		require.NoError(t, err)
		assert.True(t, entered)
		assert.Equal(t, 2, g.Reveals)

		mapType, depth, err := g.Controller.Location()
		require.NoError(t, err)
		assert.Equal(t, telemetry.MapGAR, mapType)
		assert.Equal(t, 5, depth)

		assert.Contains(t, g.Recorder.Strokes(), input.Stroke{Key: input.KeyNumPad2}, "hacked from above")
		h, err := g.Mirror.Hacking()
		require.NoError(t, err)
		assert.Nil(t, h)
	})

	t.Run("no garrison", func(t *testing.T) {
		g := actiontest.New(t, 12, 12)
		entered, err := g.Controller.TryFindAndEnterGarrison()
		require.NoError(t, err)
		assert.False(t, entered)
	})

	t.Run("no opening", func(t *testing.T) {
		g := actiontest.New(t, 12, 12)
		g.PlaceProp(4, 4, telemetry.Prop{ID: actiontest.PropIDs[actiontest.GarrisonAccess], InteractivePiece: true})
		_, err := g.Controller.TryFindAndEnterGarrison()
		require.ErrorIs(t, err, action.ErrNoGarrisonOpening)
	})
}
