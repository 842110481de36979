package process

import (
	"path/filepath"
	"strings"
)

// ProcessFinder defines operations for discovering processes
type ProcessFinder interface {
	// FindProcessByName finds processes by their executable name.
	// Matching ignores case and a trailing ".exe".
	FindProcessByName(name string) ([]ProcessInfo, error)
}

// Opener opens a process handle for the given PID.
type Opener func(pid ProcessID) (Process, error)

// NameMatches compares an executable name or path against a process name.
// Case and a trailing ".exe" are ignored, so "Cogmind" matches "COGMIND.EXE".
func NameMatches(exe, name string) bool {
	if name == "" {
		return false
	}
	base := filepath.Base(strings.ReplaceAll(exe, `\`, "/"))
	return strings.EqualFold(trimExe(base), trimExe(name))
}

func trimExe(s string) string {
	if len(s) > 4 && strings.EqualFold(s[len(s)-4:], ".exe") {
		return s[:len(s)-4]
	}
	return s
}
