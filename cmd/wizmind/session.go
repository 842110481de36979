package main

import (
	"fmt"
	"path/filepath"

	"wizmind/definitions"
	"wizmind/process"
	"wizmind/telemetry"
)

// attach finds the configured game process and its telemetry block
func attach() (*telemetry.Reader, error) {
	return telemetry.Attach(processFinder(), openProcess, cfg.Process)
}

func gameDir(proc process.Process) (string, error) {
	if cfg.GameDir != "" {
		return cfg.GameDir, nil
	}
	exe, err := proc.ExePath()
	if err != nil {
		return "", fmt.Errorf("game directory unknown, set game_dir: %w", err)
	}
	return filepath.Dir(exe), nil
}

// loadDefinitions reads the name tables shipped beside the game
func loadDefinitions(proc process.Process) (*definitions.Definitions, error) {
	dir, err := gameDir(proc)
	if err != nil {
		return nil, err
	}
	return definitions.Load(dir)
}

// namesOrEmpty is loadDefinitions for read only commands, which still work
// with ids in place of names
func namesOrEmpty(proc process.Process) *definitions.Definitions {
	defs, err := loadDefinitions(proc)
	if err != nil {
		log.Warn("Names unavailable, showing ids: ", err)
		return definitions.Empty()
	}
	return defs
}
