package script_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"wizmind/action"
	"wizmind/action/actiontest"
	"wizmind/definitions"
	"wizmind/process"
	"wizmind/runlog"
	"wizmind/script"
	"wizmind/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *runlog.Store {
	t.Helper()
	s, err := runlog.Open(filepath.Join(t.TempDir(), "wizmind.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type funcScript struct {
	name string
	run  func(c *action.Controller, rec script.Record) error
}

func (f funcScript) Name() string { return f.name }

func (f funcScript) Run(c *action.Controller, rec script.Record) error {
	return f.run(c, rec)
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"garrison-contents", "garrison-entry", "quarantine-contents"}, script.Names())

	for _, name := range script.Names() {
		s, err := script.Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}

	_, err := script.Lookup("rif-loops")
	require.Error(t, err)
}

func TestRecord(t *testing.T) {
	rec := script.Record{}
	rec.Add(script.KindItems, map[string]int{"Ion Engine": 1})
	rec.AddDepth(script.KindItems, 5, map[string]int{"Ion Engine": 2, "Lrn. Laser": 1})

	assert.Equal(t, script.Record{
		"items":   {"Ion Engine": 3, "Lrn. Laser": 1},
		"items@5": {"Ion Engine": 2, "Lrn. Laser": 1},
	}, rec)
}

func TestRecoverable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("leave: %w", action.ErrStairsFailed), true},
		{action.ErrCursorStuck, true},
		{action.ErrNoGarrisonOpening, true},
		{fmt.Errorf("read tiles: %w", process.ErrShortRead), true},
		{process.ErrProcessExited, false},
		{action.ErrWizardKeyMissing, false},
		{action.ErrUnknownItem, false},
		{errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, script.Recoverable(tt.err))
		})
	}
}

func TestQuarantineContents(t *testing.T) {
	g := actiontest.New(t, 12, 12)
	store := openStore(t)

	result, err := script.NewRunner(g.Controller, store).Run(context.Background(), script.QuarantineContents{}, 2)
	require.NoError(t, err)
	assert.Equal(t, script.Result{Completed: 2}, result)
	assert.Equal(t, 2, g.SelfDestructs)
	assert.Equal(t, []string{"goto qua", "g main.c data core", "goto qua", "g main.c data core"}, g.Commands)

	items, err := store.Totals("quarantine-contents", script.KindItems)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{actiontest.DataCore: 2}, items)

	runs, err := store.Runs("quarantine-contents")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, run := range runs {
		assert.Equal(t, runlog.StatusDone, run.Status)
	}
}

func TestGarrisonContents(t *testing.T) {
	g := actiontest.New(t, 10, 10)
	g.OnMapLoad = func(g *actiontest.Game) {
		if g.Block.LocationMap == telemetry.MapGAR {
			g.PlaceProp(3, 3, telemetry.Prop{ID: actiontest.PropIDs[actiontest.Terminal]})
		}
	}
	store := openStore(t)

	result, err := script.NewRunner(g.Controller, store).Run(context.Background(), script.GarrisonContents{}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Completed)

	require.Len(t, g.Commands, 16)
	assert.Equal(t, []string{"goto mat8", "goto gar8", "goto fac7", "goto gar7"}, g.Commands[:4])
	assert.Equal(t, []string{"goto acc1", "goto gar1"}, g.Commands[14:])

	props, err := store.Totals("garrison-contents", script.KindProps)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{actiontest.Terminal: 8}, props)

	atFive, err := store.Totals("garrison-contents", script.DepthKind(script.KindProps, 5))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{actiontest.Terminal: 1}, atFive)

	tiles, err := store.Totals("garrison-contents", script.DepthKind(script.KindTiles, 1))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"FLOOR": 100}, tiles)
}

func TestGarrisonEntry(t *testing.T) {
	g := actiontest.New(t, 12, 12)
	g.OnMapLoad = func(g *actiontest.Game) {
		m, ok := definitions.MapByType(g.Block.LocationMap)
		depth := int(g.Block.LocationDepth)
		if !ok || !m.MainMap || depth == 3 {
			return
		}
		g.PlaceGarrison(6, 5)
		g.StairsTo = actiontest.Location{Map: telemetry.MapGAR, Depth: depth}
	}
	store := openStore(t)

	result, err := script.NewRunner(g.Controller, store).Run(context.Background(), script.GarrisonEntry{}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Completed)
	assert.Equal(t, "a architect god chip a", g.Commands[0])

	garrisons, err := store.Totals("garrison-entry", script.KindGarrisons)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"entered": 7, "missing": 1}, garrisons)

	atThree, err := store.Totals("garrison-entry", script.DepthKind(script.KindGarrisons, 3))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"missing": 1}, atThree)

	tiles, err := store.Totals("garrison-entry", script.DepthKind(script.KindTiles, 8))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"FLOOR": 144}, tiles)
}

func TestRunnerRecoversFromTimeouts(t *testing.T) {
	g := actiontest.New(t, 8, 8)
	store := openStore(t)

	calls := 0
	s := funcScript{name: "flaky", run: func(c *action.Controller, rec script.Record) error {
		calls++
		if err := c.GotoMainMap(5, false); err != nil {
			return err
		}
		if calls == 1 {
			return fmt.Errorf("leave: %w", action.ErrStairsFailed)
		}
		rec.Add(script.KindItems, map[string]int{"Ion Engine": 1})
		return nil
	}}

	result, err := script.NewRunner(g.Controller, store).Run(context.Background(), s, 1)
	require.NoError(t, err)
	assert.Equal(t, script.Result{Completed: 1, Failed: 1}, result)
	assert.Equal(t, 2, g.SelfDestructs)

	runs, err := store.Runs("flaky")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, runlog.StatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].Error, "failed to take stairs to new map")
	assert.Equal(t, runlog.StatusDone, runs[1].Status)
}

func TestRunnerStops(t *testing.T) {
	t.Run("unrecoverable error", func(t *testing.T) {
		g := actiontest.New(t, 8, 8)
		store := openStore(t)
		s := funcScript{name: "broken", run: func(*action.Controller, script.Record) error {
			return errors.New("boom")
		}}

		result, err := script.NewRunner(g.Controller, store).Run(context.Background(), s, 3)
		require.ErrorContains(t, err, "boom")
		assert.Equal(t, script.Result{Failed: 1}, result)
		assert.Zero(t, g.SelfDestructs)
	})

	t.Run("reset does not reach the Scrapyard", func(t *testing.T) {
		g := actiontest.New(t, 8, 8)
		store := openStore(t)
		s := funcScript{name: "stuck", run: func(c *action.Controller, rec script.Record) error {
			if err := c.GotoMainMap(5, false); err != nil {
				return err
			}
			g.Frozen = true
			return fmt.Errorf("wait: %w", action.ErrNoAdvance)
		}}

		_, err := script.NewRunner(g.Controller, store).Run(context.Background(), s, 1)
		require.ErrorIs(t, err, script.ErrResetFailed)
	})

	t.Run("context canceled", func(t *testing.T) {
		g := actiontest.New(t, 8, 8)
		store := openStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := script.NewRunner(g.Controller, store).Run(ctx, script.QuarantineContents{}, 0)
		require.ErrorIs(t, err, context.Canceled)

		runs, err := store.Runs("quarantine-contents")
		require.NoError(t, err)
		assert.Empty(t, runs)
	})
}
