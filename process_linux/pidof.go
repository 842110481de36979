//go:build linux

package process_linux

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"wizmind/process"
)

// ProcessFinder scans /proc for processes by name
type ProcessFinder struct{}

var _ process.ProcessFinder = ProcessFinder{}

func NewProcessFinder() ProcessFinder {
	return ProcessFinder{}
}

// FindProcessByName returns all processes whose comm, exe basename or Wine
// command line executable matches name. Matching ignores case and ".exe".
func (ProcessFinder) FindProcessByName(name string) ([]process.ProcessInfo, error) {
	if name == "" {
		return nil, errors.New("empty name")
	}

	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("read /proc: %w", err)
	}

	selfPID := os.Getpid()
	var out []process.ProcessInfo

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid <= 0 {
			continue // not a PID dir
		}
		if pid == selfPID {
			continue
		}

		comm, _ := os.ReadFile(filepath.Join("/proc", e.Name(), "comm"))
		comm = bytesTrimNL(comm)

		// Resolve /proc/<pid>/exe symlink; may fail if zombie or permission
		exe, _ := os.Readlink(filepath.Join("/proc", e.Name(), "exe"))
		wine := wineExePath(pid)

		// comm is truncated to 15 bytes, so exe and the Wine argv[0] are
		// checked as well
		switch {
		case process.NameMatches(string(comm), name):
			out = append(out, process.ProcessInfo{PID: process.ProcessID(pid), Name: string(comm), Exe: firstNonEmpty(wine, exe)})
		case exe != "" && process.NameMatches(exe, name):
			out = append(out, process.ProcessInfo{PID: process.ProcessID(pid), Name: filepath.Base(exe), Exe: exe})
		case wine != "" && process.NameMatches(wine, name):
			out = append(out, process.ProcessInfo{PID: process.ProcessID(pid), Name: wine[strings.LastIndexAny(wine, `\/`)+1:], Exe: wine})
		}
	}

	return out, nil
}

// wineExePath returns argv[0] when it names a Windows executable, as Wine
// sets it for the game process, or "" otherwise
func wineExePath(pid int) string {
	cmdline, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "cmdline"))
	if err != nil || len(cmdline) == 0 {
		return ""
	}
	argv0, _, _ := bytes.Cut(cmdline, []byte{0})
	if !bytes.HasSuffix(bytes.ToLower(argv0), []byte(".exe")) {
		return ""
	}
	return string(argv0)
}

// ----- helpers -----

func procExists(pid int) bool {
	// Fast path: stat /proc/<pid>
	_, err := os.Stat(filepath.Join("/proc", strconv.Itoa(pid)))
	if err == nil {
		return true
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	// For transient errors (permission, EIO): fall back to kill 0
	return syscall.Kill(pid, 0) == nil
}

func bytesTrimNL(b []byte) []byte {
	// Trim trailing '\n' if present (comm has a newline).
	for len(b) > 0 {
		switch b[len(b)-1] {
		case '\n', '\r', ' ', '\t':
			b = b[:len(b)-1]
		default:
			return b
		}
	}
	return b
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
