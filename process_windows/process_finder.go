//go:build windows

package process_windows

import (
	"fmt"
	"unsafe"

	"wizmind/process"

	"golang.org/x/sys/windows"
)

// ProcessFinder enumerates processes through a Toolhelp32 snapshot
type ProcessFinder struct{}

var _ process.ProcessFinder = ProcessFinder{}

func NewProcessFinder() ProcessFinder {
	return ProcessFinder{}
}

// FindProcessByName matches the executable name, ignoring case and a trailing ".exe"
func (ProcessFinder) FindProcessByName(name string) ([]process.ProcessInfo, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("CreateToolhelp32Snapshot failed: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	var out []process.ProcessInfo
	for err = windows.Process32First(snapshot, &entry); err == nil; err = windows.Process32Next(snapshot, &entry) {
		exe := windows.UTF16ToString(entry.ExeFile[:])
		if process.NameMatches(exe, name) {
			out = append(out, process.ProcessInfo{
				PID:  process.ProcessID(entry.ProcessID),
				Name: exe,
			})
		}
	}

	return out, nil
}
