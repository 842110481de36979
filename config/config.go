// Package config loads wizmind.yaml: which process to attach to, where the
// game's name tables live, where runs are logged and how long every input
// waits for the game.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"wizmind/mirror"
	"wizmind/telemetry"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "wizmind.yaml"

var ErrInvalid = errors.New("invalid config")

type Config struct {
	// Process is the executable name to attach to
	Process string `yaml:"process"`
	// GameDir holds luigiAi/*.txt. Empty means the directory of the
	// attached executable.
	GameDir string `yaml:"game_dir,omitempty"`
	// RunDB is the sqlite file runs are logged to
	RunDB   string  `yaml:"run_db"`
	Verbose bool    `yaml:"verbose"`
	Timings Timings `yaml:"timings"`
}

// Timings are the sleeps and timeouts of the action protocol. yaml takes
// duration strings such as "200ms" or "10s".
type Timings struct {
	PollInterval        time.Duration `yaml:"poll_interval"`
	AdvancingTimeout    time.Duration `yaml:"advancing_timeout"`
	NonAdvancingTimeout time.Duration `yaml:"non_advancing_timeout"`

	EscapeMenu           time.Duration `yaml:"escape_menu"`
	EnterString          time.Duration `yaml:"enter_string"`
	WizardConsole        time.Duration `yaml:"wizard_console"`
	MapLoadTime          time.Duration `yaml:"map_load_time"`
	MapLoadSleep         time.Duration `yaml:"map_load_sleep"`
	PostMapLoad          time.Duration `yaml:"post_map_load"`
	MapLeaveConfirmation time.Duration `yaml:"map_leave_confirmation"`
	RevealMap            time.Duration `yaml:"reveal_map"`
	CursorAppear         time.Duration `yaml:"cursor_appear"`
	CursorMove           time.Duration `yaml:"cursor_move"`
	CursorMoveTimeout    time.Duration `yaml:"cursor_move_timeout"`

	HackPopupLoadSleep      time.Duration `yaml:"hack_popup_load_sleep"`
	HackingPopupLoadTimeout time.Duration `yaml:"hacking_popup_load_timeout"`
	PostHackPopupLoad       time.Duration `yaml:"post_hack_popup_load"`
	HackDataRefresh         time.Duration `yaml:"hack_data_refresh"`

	SelfDestruct time.Duration `yaml:"self_destruct"`
	GameOver     time.Duration `yaml:"game_over"`
	NewGame      time.Duration `yaml:"new_game"`
}

func DefaultTimings() Timings {
	return Timings{
		PollInterval:     time.Millisecond,
		AdvancingTimeout: 5 * time.Second,

		EscapeMenu:           200 * time.Millisecond,
		EnterString:          100 * time.Millisecond,
		WizardConsole:        500 * time.Millisecond,
		MapLoadTime:          10 * time.Second,
		MapLoadSleep:         50 * time.Millisecond,
		PostMapLoad:          time.Second,
		MapLeaveConfirmation: 100 * time.Millisecond,
		RevealMap:            250 * time.Millisecond,
		CursorAppear:         100 * time.Millisecond,
		CursorMove:           15 * time.Millisecond,
		CursorMoveTimeout:    10 * time.Second,

		HackPopupLoadSleep:      50 * time.Millisecond,
		HackingPopupLoadTimeout: 5 * time.Second,
		PostHackPopupLoad:       500 * time.Millisecond,
		HackDataRefresh:         50 * time.Millisecond,

		SelfDestruct: 1500 * time.Millisecond,
		GameOver:     time.Second,
		NewGame:      time.Second,
	}
}

func Default() *Config {
	return &Config{
		Process: telemetry.DefaultProcessName,
		RunDB:   "wizmind.db",
		Timings: DefaultTimings(),
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as yaml
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) applyEnvOverrides() error {
	if name := os.Getenv("WIZMIND_PROCESS"); name != "" {
		c.Process = name
	}
	if dir := os.Getenv("WIZMIND_GAME_DIR"); dir != "" {
		c.GameDir = dir
	}
	if path := os.Getenv("WIZMIND_RUN_DB"); path != "" {
		c.RunDB = path
	}
	if v := os.Getenv("WIZMIND_VERBOSE"); v != "" {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: WIZMIND_VERBOSE=%q", ErrInvalid, v)
		}
		c.Verbose = verbose
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Process == "" {
		return fmt.Errorf("%w: process name is empty", ErrInvalid)
	}
	return c.Timings.Validate()
}

func (t Timings) named() []struct {
	name  string
	value time.Duration
} {
	return []struct {
		name  string
		value time.Duration
	}{
		{"poll_interval", t.PollInterval},
		{"advancing_timeout", t.AdvancingTimeout},
		{"non_advancing_timeout", t.NonAdvancingTimeout},
		{"escape_menu", t.EscapeMenu},
		{"enter_string", t.EnterString},
		{"wizard_console", t.WizardConsole},
		{"map_load_time", t.MapLoadTime},
		{"map_load_sleep", t.MapLoadSleep},
		{"post_map_load", t.PostMapLoad},
		{"map_leave_confirmation", t.MapLeaveConfirmation},
		{"reveal_map", t.RevealMap},
		{"cursor_appear", t.CursorAppear},
		{"cursor_move", t.CursorMove},
		{"cursor_move_timeout", t.CursorMoveTimeout},
		{"hack_popup_load_sleep", t.HackPopupLoadSleep},
		{"hacking_popup_load_timeout", t.HackingPopupLoadTimeout},
		{"post_hack_popup_load", t.PostHackPopupLoad},
		{"hack_data_refresh", t.HackDataRefresh},
		{"self_destruct", t.SelfDestruct},
		{"game_over", t.GameOver},
		{"new_game", t.NewGame},
	}
}

// Validate rejects negative durations and the zero values a poll loop
// cannot run with
func (t Timings) Validate() error {
	for _, d := range t.named() {
		if d.value < 0 {
			return fmt.Errorf("%w: timings.%s is negative (%v)", ErrInvalid, d.name, d.value)
		}
	}
	if t.PollInterval == 0 {
		return fmt.Errorf("%w: timings.poll_interval must be positive", ErrInvalid)
	}
	if t.AdvancingTimeout == 0 {
		return fmt.Errorf("%w: timings.advancing_timeout must be positive", ErrInvalid)
	}
	return nil
}

// MirrorOptions are the cache polling settings
func (t Timings) MirrorOptions() mirror.Options {
	return mirror.Options{
		PollInterval:        t.PollInterval,
		AdvancingTimeout:    t.AdvancingTimeout,
		NonAdvancingTimeout: t.NonAdvancingTimeout,
	}
}
