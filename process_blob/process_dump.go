package process_blob

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"wizmind/process"
	"wizmind/process/memory_map"

	"github.com/klauspost/compress/zstd"
)

// ProcessDump implements process.Process over memory held locally, either
// captured from a live process or built region by region
type ProcessDump struct {
	PID       process.ProcessID
	Name      string
	Exe       string
	MemoryMap []memory_map.MemoryMapItem
	Blobs     map[uint64][]byte // Address -> Data

	// OnRead runs before every ReadMemory, outside the lock
	OnRead func(addr process.ProcessMemoryAddress, size process.ProcessMemorySize)

	exited bool
	mu     sync.Mutex
}

var _ process.Process = (*ProcessDump)(nil)

type dumpMetadata struct {
	PID  process.ProcessID `json:"pid"`
	Name string            `json:"name"`
	Exe  string            `json:"exe,omitempty"`
}

// NewProcessDump creates a new ProcessDump instance
func NewProcessDump() *ProcessDump {
	return &ProcessDump{
		Blobs: make(map[uint64][]byte),
	}
}

// AddRegion maps data at addr. The region must not overlap an existing one.
func (p *ProcessDump) AddRegion(addr uint64, data []byte, perms string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.MemoryMap = append(p.MemoryMap, memory_map.MemoryMapItem{Address: addr, Size: uint(len(data)), Perms: perms})
	memory_map.Sort(p.MemoryMap)
	p.Blobs[addr] = data
}

// WriteAt overwrites bytes of an existing region
func (p *ProcessDump) WriteAt(addr process.ProcessMemoryAddress, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	region := memory_map.RegionFor(uint64(addr), p.MemoryMap)
	if region == nil {
		return process.ErrAddressNotMapped
	}
	blob := p.Blobs[region.Address]
	offset := uint64(addr) - region.Address
	if offset+uint64(len(data)) > uint64(len(blob)) {
		return fmt.Errorf("write of %d bytes at %s crosses the region end", len(data), addr.ToString())
	}
	copy(blob[offset:], data)
	return nil
}

// SetExited makes every following read fail with process.ErrProcessExited
func (p *ProcessDump) SetExited(exited bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exited = exited
}

func (p *ProcessDump) Open(pid process.ProcessID) error {
	return fmt.Errorf("Open not supported for ProcessDump, use Load")
}

func (p *ProcessDump) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Blobs = nil
	p.MemoryMap = nil
	return nil
}

func (p *ProcessDump) GetPID() process.ProcessID {
	return p.PID
}

func (p *ProcessDump) HasExited() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exited
}

func (p *ProcessDump) ExePath() (string, error) {
	if p.Exe == "" {
		return "", fmt.Errorf("dump of %q has no executable path: %w", p.Name, os.ErrNotExist)
	}
	return p.Exe, nil
}

func (p *ProcessDump) UpdateMemoryMap() error {
	return nil // Memory map is static in a dump
}

func (p *ProcessDump) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return memory_map.RegionFor(uint64(addr), p.MemoryMap) != nil
}

func (p *ProcessDump) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]memory_map.MemoryMapItem, len(p.MemoryMap))
	copy(result, p.MemoryMap)
	return result, nil
}

// ReadMemory copies bytes out of the region containing addr. A read running
// past the captured data is a short read, like a live process hitting an
// unmapped page.
func (p *ProcessDump) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if p.OnRead != nil {
		p.OnRead(addr, size)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.exited {
		return nil, process.ErrProcessExited
	}
	if size == 0 {
		return []byte{}, nil
	}

	region := memory_map.RegionFor(uint64(addr), p.MemoryMap)
	if region == nil {
		return nil, process.ErrAddressNotMapped
	}

	data, ok := p.Blobs[region.Address]
	if !ok {
		return nil, fmt.Errorf("no data for region 0x%x", region.Address)
	}

	offset := uint64(addr) - region.Address
	if offset+uint64(size) > uint64(len(data)) {
		return nil, fmt.Errorf("%w: expected %d, got %d", process.ErrShortRead, size, uint64(len(data))-offset)
	}

	result := make([]byte, size)
	copy(result, data[offset:offset+uint64(size)])
	return result, nil
}

// Capture copies the regions of proc accepted by filter into a new dump.
// Regions that fail to read are skipped.
func Capture(proc process.Process, name string, filter func(memory_map.MemoryMapItem) bool) (*ProcessDump, error) {
	mm, err := proc.GetMemoryMap()
	if err != nil {
		return nil, fmt.Errorf("failed to get memory map: %w", err)
	}

	dump := NewProcessDump()
	dump.PID = proc.GetPID()
	dump.Name = name
	if exe, err := proc.ExePath(); err == nil {
		dump.Exe = exe
	}

	for _, region := range mm {
		if !region.IsReadable() || (filter != nil && !filter(region)) {
			continue
		}
		data, err := proc.ReadMemory(process.ProcessMemoryAddress(region.Address), process.ProcessMemorySize(region.Size))
		if err != nil {
			if errors.Is(err, process.ErrProcessExited) {
				return nil, err
			}
			continue
		}
		dump.AddRegion(region.Address, data, region.Perms)
	}

	return dump, nil
}

func blobFilename(dirname string, region memory_map.MemoryMapItem) string {
	return filepath.Join(dirname, fmt.Sprintf("blob_0x%x_%d.bin.zst", region.Address, region.Size))
}

// Save writes metadata.json, process_memory_map.json and one zstd blob per region
func (p *ProcessDump) Save(dirname string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(dirname, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := writeJSON(filepath.Join(dirname, "metadata.json"), dumpMetadata{PID: p.PID, Name: p.Name, Exe: p.Exe}); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := writeJSON(filepath.Join(dirname, "process_memory_map.json"), p.MemoryMap); err != nil {
		return fmt.Errorf("failed to write memory map: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	for _, region := range p.MemoryMap {
		data, ok := p.Blobs[region.Address]
		if !ok {
			continue
		}
		if err := os.WriteFile(blobFilename(dirname, region), enc.EncodeAll(data, nil), 0o644); err != nil {
			return fmt.Errorf("failed to write blob 0x%x: %w", region.Address, err)
		}
	}

	return nil
}

// Load reads a dump written by Save
func (p *ProcessDump) Load(dirname string) error {
	var metadata dumpMetadata
	if err := readJSON(filepath.Join(dirname, "metadata.json"), &metadata); err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}

	var mm []memory_map.MemoryMapItem
	if err := readJSON(filepath.Join(dirname, "process_memory_map.json"), &mm); err != nil {
		return fmt.Errorf("failed to read memory map: %w", err)
	}
	memory_map.Sort(mm)

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return err
	}
	defer dec.Close()

	blobs := make(map[uint64][]byte, len(mm))
	for _, region := range mm {
		filename := blobFilename(dirname, region)
		raw, err := os.ReadFile(filename)
		if errors.Is(err, os.ErrNotExist) {
			continue // Blob not saved (e.g. not readable)
		}
		if err != nil {
			return fmt.Errorf("failed to read blob %s: %w", filename, err)
		}
		data, err := dec.DecodeAll(raw, nil)
		if err != nil {
			return fmt.Errorf("failed to decompress blob %s: %w", filename, err)
		}
		blobs[region.Address] = data
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.PID = metadata.PID
	p.Name = metadata.Name
	p.Exe = metadata.Exe
	p.MemoryMap = mm
	p.Blobs = blobs
	p.exited = false
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
