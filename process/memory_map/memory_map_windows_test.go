//go:build windows

package memory_map

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/windows"
)

func TestProtectPerms(t *testing.T) {
	tests := []struct {
		name    string
		protect uint32
		typ     uint32
		want    string
	}{
		{"readwrite", windows.PAGE_READWRITE, 0x20000, "rw-p"},
		{"readwrite nocache", windows.PAGE_READWRITE | windows.PAGE_NOCACHE, 0x20000, "rw-p"},
		{"writecopy", windows.PAGE_WRITECOPY, 0x1000000, "r--p"},
		{"execute writecopy", windows.PAGE_EXECUTE_WRITECOPY, 0x1000000, "r-xp"},
		{"mapped", windows.PAGE_READONLY, memMapped, "r--s"},
		{"noaccess", windows.PAGE_NOACCESS, 0x20000, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := protectPerms(tt.protect, tt.typ)
			assert.Equal(t, tt.want, got)
			if got != "" {
				item := MemoryMapItem{Perms: got}
				assert.Equal(t, tt.protect&^windows.PAGE_NOCACHE == windows.PAGE_READWRITE, item.IsReadWrite())
			}
		})
	}
}
