package telemetry

import (
	"errors"
	"fmt"

	"wizmind/pod"
	"wizmind/process"
	"wizmind/process_blob"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// MaxReadSize bounds a single foreign read made by ReadArray
const MaxReadSize = 0x1000

var (
	ErrNullPointer = errors.New("null pointer")
	ErrBadMarker   = errors.New("telemetry block marker mismatch")
)

// Reader copies telemetry records out of the game process
type Reader struct {
	proc  process.Process
	block process.ProcessMemoryAddress
	log   *logger.Logger
}

func NewReader(proc process.Process, block process.ProcessMemoryAddress) *Reader {
	return &Reader{
		proc:  proc,
		block: block,
		log:   logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.Black, fmt.Sprintf("telemetry-%d", proc.GetPID()))),
	}
}

func (r *Reader) Process() process.Process {
	return r.proc
}

func (r *Reader) BlockAddress() process.ProcessMemoryAddress {
	return r.block
}

// ReadBytes reads size bytes at addr. Exited processes and short reads are errors.
func (r *Reader) ReadBytes(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) (*process_blob.ProcessBlob, error) {
	if r.proc.HasExited() {
		return nil, process.ErrProcessExited
	}
	blob, err := process_blob.ReadBlob(r.proc, addr, size)
	if err != nil {
		return nil, fmt.Errorf("read %d bytes at %s: %w", size, addr.ToString(), err)
	}
	if len(blob.Data()) != int(size) {
		return nil, fmt.Errorf("read at %s: %w: expected %d, got %d", addr.ToString(), process.ErrShortRead, size, len(blob.Data()))
	}
	return blob, nil
}

// ReadBlock reads the telemetry block and checks its marker
func (r *Reader) ReadBlock() (Block, error) {
	blob, err := r.ReadBytes(r.block, process.ProcessMemorySize(BlockLayout.Extent))
	if err != nil {
		return Block{}, fmt.Errorf("%s: %w", BlockLayout.Name, err)
	}

	// Both marker words must be intact before the rest is trusted
	for i, want := range []uint32{Magic1, Magic2} {
		got, err := blob.OffsetUINT32(process.ProcessMemoryAddress(4 * i))
		if err != nil {
			return Block{}, err
		}
		if got != want {
			return Block{}, fmt.Errorf("%w at %s: word %d is 0x%08x", ErrBadMarker, r.block.ToString(), i, got)
		}
	}
	return pod.Decode[Block](blob.Data())
}

// ReadRecord reads one T at addr
func ReadRecord[T any](r *Reader, addr Ptr32) (T, error) {
	if addr.IsNull() {
		var zero T
		l, err := pod.LayoutOf[T]()
		if err != nil {
			return zero, err
		}
		return zero, fmt.Errorf("%s: %w", l.Name, ErrNullPointer)
	}
	return readRecordAt[T](r, process.ProcessMemoryAddress(addr))
}

func readRecordAt[T any](r *Reader, addr process.ProcessMemoryAddress) (T, error) {
	var zero T
	l, err := pod.LayoutOf[T]()
	if err != nil {
		return zero, err
	}

	blob, err := r.ReadBytes(addr, process.ProcessMemorySize(l.Extent))
	if err != nil {
		return zero, fmt.Errorf("%s: %w", l.Name, err)
	}
	return pod.Decode[T](blob.Data())
}

// ReadArray reads count records starting at addr. Reads are split into
// chunks of whole records no larger than MaxReadSize.
func ReadArray[T any](r *Reader, addr Ptr32, count int) ([]T, error) {
	l, err := pod.LayoutOf[T]()
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return []T{}, nil
	}
	if addr.IsNull() {
		return nil, fmt.Errorf("%s[%d]: %w", l.Name, count, ErrNullPointer)
	}

	perChunk := max(1, int(MaxReadSize/l.Stride))
	out := make([]T, 0, count)

	for first := 0; first < count; first += perChunk {
		n := min(perChunk, count-first)
		start := process.ProcessMemoryAddress(addr) + process.ProcessMemoryAddress(uintptr(first)*l.Stride)
		size := uintptr(n-1)*l.Stride + l.Extent

		blob, err := r.ReadBytes(start, process.ProcessMemorySize(size))
		if err != nil {
			return nil, fmt.Errorf("%s[%d:%d]: %w", l.Name, first, first+n, err)
		}

		records, err := pod.DecodeArray[T](blob.Data(), n)
		if err != nil {
			return nil, err
		}
		out = append(out, records...)
	}

	return out, nil
}
