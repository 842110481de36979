package process

import (
	"encoding/binary"
	"fmt"
)

// ProcessMemoryAddress represents a memory address within a process
type ProcessMemoryAddress uint64

func (pma ProcessMemoryAddress) ToString() string {
	return fmt.Sprintf("0x%X", uint64(pma))
}

// ProcessMemorySize represents a size of memory region
type ProcessMemorySize uint

func (pms ProcessMemorySize) ToString() string {
	return fmt.Sprintf("%d bytes", uint(pms))
}

// AOB (Array of Bytes) represents a pattern to search for in memory
type AOB struct {
	Pattern []byte // The byte pattern to search for
	Mask    []byte // Optional mask where 0xFF means exact match and 0x00 means wildcard
}

// IsValid checks if the AOB pattern is valid
func (aob AOB) IsValid() bool {
	return len(aob.Pattern) > 0 && (len(aob.Mask) == 0 || len(aob.Pattern) == len(aob.Mask))
}

// Match reports whether data starts with the pattern.
func (aob AOB) Match(data []byte) bool {
	if len(data) < len(aob.Pattern) {
		return false
	}
	for i, b := range aob.Pattern {
		mask := byte(0xFF)
		if len(aob.Mask) != 0 {
			mask = aob.Mask[i]
		}
		if data[i]&mask != b&mask {
			return false
		}
	}
	return true
}

func NewAOB(pattern, mask []byte) (AOB, error) {
	if len(pattern) != len(mask) {
		return AOB{}, fmt.Errorf("pattern and mask must be of the same length")
	}
	return AOB{Pattern: pattern, Mask: mask}, nil
}

// AOBFromWords builds an exact little endian pattern from consecutive 32-bit words.
func AOBFromWords(words ...uint32) AOB {
	pattern := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(pattern[i*4:], w)
	}
	return AOB{Pattern: pattern}
}
