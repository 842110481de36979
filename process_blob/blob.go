package process_blob

import (
	"encoding/binary"
	"fmt"

	"wizmind/process"
)

// ProcessBlob is a copy of process memory that remembers where it was read from
type ProcessBlob struct {
	baseaddress process.ProcessMemoryAddress
	data        []byte
}

func NewProcessBlob(baseAddress process.ProcessMemoryAddress, data []byte) *ProcessBlob {
	return &ProcessBlob{
		baseaddress: baseAddress,
		data:        data,
	}
}

// ReadBlob reads size bytes at addr from proc
func ReadBlob(proc process.Process, addr process.ProcessMemoryAddress, size process.ProcessMemorySize) (*ProcessBlob, error) {
	data, err := proc.ReadMemory(addr, size)
	if err != nil {
		return nil, err
	}
	return NewProcessBlob(addr, data), nil
}

func (p *ProcessBlob) Data() []byte {
	return p.data
}

func (p *ProcessBlob) Address() process.ProcessMemoryAddress {
	return p.baseaddress
}

func (p *ProcessBlob) slice(offset process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	end := uint64(offset) + uint64(size)
	if end > uint64(len(p.data)) {
		return nil, fmt.Errorf("offset 0x%x+%d out of bounds of %d byte blob at %s", uint64(offset), size, len(p.data), p.baseaddress.ToString())
	}
	return p.data[offset:end], nil
}

// OffsetUINT32 returns the little-endian word at offset
func (p *ProcessBlob) OffsetUINT32(offset process.ProcessMemoryAddress) (uint32, error) {
	data, err := p.slice(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(data), nil
}
