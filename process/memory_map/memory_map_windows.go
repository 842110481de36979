//go:build windows

package memory_map

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

const memMapped = 0x40000

// ReadMemoryMap walks the committed regions of a process with VirtualQueryEx.
// Guard and no-access pages are left out since they cannot be read.
func ReadMemoryMap(handle windows.Handle) ([]MemoryMapItem, error) {
	var memoryMap []MemoryMapItem
	var addr uintptr

	for {
		var mbi windows.MemoryBasicInformation
		if err := windows.VirtualQueryEx(handle, addr, &mbi, unsafe.Sizeof(mbi)); err != nil {
			break
		}
		if mbi.RegionSize == 0 {
			break
		}

		if mbi.State == windows.MEM_COMMIT && mbi.Protect&(windows.PAGE_GUARD|windows.PAGE_NOACCESS) == 0 {
			if perms := protectPerms(mbi.Protect, mbi.Type); perms != "" {
				memoryMap = append(memoryMap, MemoryMapItem{
					Address: uint64(mbi.BaseAddress),
					Size:    uint(mbi.RegionSize),
					Perms:   perms,
				})
			}
		}

		next := mbi.BaseAddress + mbi.RegionSize
		if next <= addr {
			break
		}
		addr = next
	}

	Sort(memoryMap)
	return memoryMap, nil
}

// protectPerms renders a page protection in the /proc/[pid]/maps style
func protectPerms(protect, typ uint32) string {
	share := byte('p')
	if typ == memMapped {
		share = 's'
	}

	var rwx string
	switch protect &^ (windows.PAGE_NOCACHE | windows.PAGE_WRITECOMBINE) {
	// only PAGE_READWRITE and PAGE_EXECUTE_READWRITE count as writable
	case windows.PAGE_READONLY, windows.PAGE_WRITECOPY:
		rwx = "r--"
	case windows.PAGE_READWRITE:
		rwx = "rw-"
	case windows.PAGE_EXECUTE:
		rwx = "--x"
	case windows.PAGE_EXECUTE_READ, windows.PAGE_EXECUTE_WRITECOPY:
		rwx = "r-x"
	case windows.PAGE_EXECUTE_READWRITE:
		rwx = "rwx"
	default:
		return ""
	}
	return rwx + string(share)
}
