// Package search locates byte signatures in another process's memory
package search

import (
	"errors"
	"fmt"

	"wizmind/process"
	"wizmind/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var ErrSignatureNotFound = errors.New("signature not found")

// Searcher holds configuration for the search
type Searcher struct {
	Alignment  uint
	ChunkSize  uint
	MaxResults int
	Filter     func(memory_map.MemoryMapItem) bool

	log *logger.Logger
}

// Option is a function that configures a Searcher
type Option func(*Searcher)

// WithAlignment only tests addresses that are a multiple of align
func WithAlignment(align uint) Option {
	return func(s *Searcher) {
		s.Alignment = align
	}
}

// WithChunkSize bounds a single ReadMemory call
func WithChunkSize(size uint) Option {
	return func(s *Searcher) {
		s.ChunkSize = size
	}
}

// WithRegionFilter replaces the default committed read-write region filter
func WithRegionFilter(filter func(memory_map.MemoryMapItem) bool) Option {
	return func(s *Searcher) {
		s.Filter = filter
	}
}

// WithMaxResults stops the scan after n matches; 0 means no limit
func WithMaxResults(n int) Option {
	return func(s *Searcher) {
		s.MaxResults = n
	}
}

func newSearcher(options ...Option) *Searcher {
	s := &Searcher{
		Alignment: 4,
		ChunkSize: 1 << 20,
		Filter:    memory_map.MemoryMapItem.IsReadWrite,
		log:       logger.NewLogger(coloransi.Color(coloransi.ColorTeal, coloransi.Black, "search")),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.Alignment == 0 {
		s.Alignment = 1
	}
	if s.ChunkSize < s.Alignment {
		s.ChunkSize = s.Alignment
	}
	s.ChunkSize -= s.ChunkSize % s.Alignment
	return s
}

// Find returns every aligned address where aob matches, in address order
func Find(proc process.Process, aob process.AOB, options ...Option) ([]process.ProcessMemoryAddress, error) {
	if !aob.IsValid() {
		return nil, fmt.Errorf("invalid pattern of %d bytes", len(aob.Pattern))
	}
	s := newSearcher(options...)

	mm, err := proc.GetMemoryMap()
	if err != nil {
		return nil, fmt.Errorf("failed to get memory map: %w", err)
	}

	var results []process.ProcessMemoryAddress
	for _, region := range mm {
		if !s.Filter(region) {
			continue
		}
		found, err := s.scanRegion(proc, region, aob, s.MaxResults-len(results))
		if err != nil {
			return results, err
		}
		results = append(results, found...)
		if s.MaxResults > 0 && len(results) >= s.MaxResults {
			break
		}
	}

	return results, nil
}

// FindFirst returns the lowest matching address or ErrSignatureNotFound
func FindFirst(proc process.Process, aob process.AOB, options ...Option) (process.ProcessMemoryAddress, error) {
	results, err := Find(proc, aob, append(options, WithMaxResults(1))...)
	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, ErrSignatureNotFound
	}
	return results[0], nil
}

// scanRegion reads the region chunk by chunk. Each chunk is extended by the
// pattern length so matches straddling a chunk boundary are still seen.
func (s *Searcher) scanRegion(proc process.Process, region memory_map.MemoryMapItem, aob process.AOB, limit int) ([]process.ProcessMemoryAddress, error) {
	var results []process.ProcessMemoryAddress
	plen := uint64(len(aob.Pattern))
	align := uint64(s.Alignment)

	start := region.Address
	if rem := start % align; rem != 0 {
		start += align - rem
	}

	for pos := start; pos+plen <= region.End(); pos += uint64(s.ChunkSize) {
		size := min(uint64(s.ChunkSize)+plen-1, region.End()-pos)
		data, err := proc.ReadMemory(process.ProcessMemoryAddress(pos), process.ProcessMemorySize(size))
		if err != nil {
			if errors.Is(err, process.ErrProcessExited) {
				return nil, err
			}
			s.log.Debugln("Skipping unreadable chunk at", fmt.Sprintf("0x%x", pos), err)
			continue
		}

		for off := uint64(0); off < uint64(s.ChunkSize) && off+plen <= uint64(len(data)); off += align {
			if aob.Match(data[off:]) {
				results = append(results, process.ProcessMemoryAddress(pos+off))
				if limit > 0 && len(results) >= limit {
					return results, nil
				}
			}
		}
	}

	return results, nil
}
