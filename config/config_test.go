package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wizmind.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 200*time.Millisecond, cfg.Timings.EscapeMenu)
	assert.Equal(t, 10*time.Second, cfg.Timings.MapLoadTime)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
process: COGMIND.EXE
game_dir: /games/cogmind
timings:
  escape_menu: 50ms
  map_load_time: 3s
  non_advancing_timeout: 20ms
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "COGMIND.EXE", cfg.Process)
	assert.Equal(t, "/games/cogmind", cfg.GameDir)
	assert.Equal(t, "wizmind.db", cfg.RunDB)
	assert.Equal(t, 50*time.Millisecond, cfg.Timings.EscapeMenu)
	assert.Equal(t, 3*time.Second, cfg.Timings.MapLoadTime)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timings.SelfDestruct, "untouched keys keep defaults")

	opts := cfg.Timings.MirrorOptions()
	assert.Equal(t, time.Millisecond, opts.PollInterval)
	assert.Equal(t, 5*time.Second, opts.AdvancingTimeout)
	assert.Equal(t, 20*time.Millisecond, opts.NonAdvancingTimeout)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"negative sleep", "timings:\n  cursor_move: -5ms\n", "timings.cursor_move is negative"},
		{"zero poll", "timings:\n  poll_interval: 0s\n", "timings.poll_interval must be positive"},
		{"zero advancing", "timings:\n  advancing_timeout: 0s\n", "timings.advancing_timeout must be positive"},
		{"empty process", "process: \"\"\n", "process name is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "timings:\n  escape_menu: soon\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "wizmind.yaml")
	})
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WIZMIND_PROCESS", "cogmind-beta")
	t.Setenv("WIZMIND_GAME_DIR", "/opt/cogmind")
	t.Setenv("WIZMIND_RUN_DB", "/tmp/runs.db")
	t.Setenv("WIZMIND_VERBOSE", "true")

	cfg, err := Load(writeConfig(t, "process: Cogmind\nrun_db: here.db\n"))
	require.NoError(t, err)
	assert.Equal(t, "cogmind-beta", cfg.Process)
	assert.Equal(t, "/opt/cogmind", cfg.GameDir)
	assert.Equal(t, "/tmp/runs.db", cfg.RunDB)
	assert.True(t, cfg.Verbose)

	t.Run("bad bool", func(t *testing.T) {
		t.Setenv("WIZMIND_VERBOSE", "loud")
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.ErrorIs(t, err, ErrInvalid)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Timings.CursorMove = 40 * time.Millisecond
	cfg.GameDir = "/games/cogmind"

	path := filepath.Join(t.TempDir(), "nested", "wizmind.yaml")
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cursor_move: 40ms")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
