// Package mirror keeps a local copy of the game's telemetry block and
// decodes the records it points at.
//
// The cache is a small state machine. Empty has never read the block,
// Fresh holds a block, Stale has been invalidated and waits for the next
// Read to poll a new one. The turn counter in the block is the only clock
// the game offers, so every refresh decision compares counters.
package mirror

import (
	"fmt"
	"time"

	"wizmind/telemetry"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// unsetCounter is the counter before the first accepted read
const unsetCounter = 0

type State int

const (
	Empty State = iota
	Fresh
	Stale
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Invalidation tells Read what the caller expects the counter to do
type Invalidation int

const (
	// Advancing follows an action that takes a turn
	Advancing Invalidation = iota + 1
	// NonAdvancing follows a change that leaves the counter alone
	NonAdvancing
)

func (k Invalidation) String() string {
	switch k {
	case Advancing:
		return "advancing"
	case NonAdvancing:
		return "non-advancing"
	}
	return fmt.Sprintf("Invalidation(%d)", int(k))
}

// Names resolves ids through the game's name tables
type Names interface {
	CellName(id int32) string
	ItemName(id int32) string
	EntityName(id int32) string
	PropName(id int32) string
}

type Options struct {
	// PollInterval is the sleep between two block reads
	PollInterval time.Duration
	// AdvancingTimeout bounds the wait for a new counter after an advancing
	// invalidation; the block is then accepted anyway
	AdvancingTimeout time.Duration
	// NonAdvancingTimeout bounds the same wait after a non-advancing one.
	// Zero accepts the first poll.
	NonAdvancingTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		PollInterval:     time.Millisecond,
		AdvancingTimeout: 5 * time.Second,
	}
}

// Mirror is not safe for concurrent use. A session drives it from one
// goroutine.
type Mirror struct {
	reader *telemetry.Reader
	names  Names
	opts   Options
	log    *logger.Logger

	state      State
	block      telemetry.Block
	counter    int32
	pending    Invalidation
	generation uint64

	staleReads int
	timeouts   int

	// decoded once per generation
	grid    *Grid
	player  *Entity
	hacking *Hacking
}

func New(reader *telemetry.Reader, names Names, opts Options) *Mirror {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultOptions().PollInterval
	}
	return &Mirror{
		reader:  reader,
		names:   names,
		opts:    opts,
		log:     logger.NewLogger(coloransi.Color(coloransi.ColorLimeGreen, coloransi.Black, "mirror")),
		pending: Advancing,
	}
}

func (m *Mirror) Reader() *telemetry.Reader {
	return m.reader
}

func (m *Mirror) Names() Names {
	return m.names
}

func (m *Mirror) State() State {
	return m.state
}

// Generation counts invalidations. Views remember the generation they were
// decoded in.
func (m *Mirror) Generation() uint64 {
	return m.generation
}

// StaleReads counts view accesses made after the view's counter was superseded
func (m *Mirror) StaleReads() int {
	return m.staleReads
}

// TimeoutViolations counts advancing waits that ended by timeout
func (m *Mirror) TimeoutViolations() int {
	return m.timeouts
}

// LastCounter returns the last accepted turn counter without reading
func (m *Mirror) LastCounter() int32 {
	return m.counter
}

// Read returns the cached block, polling the game for a new one when the
// cache is not Fresh. A polled block is accepted when no counter has been
// seen yet, when its counter differs from the last one, or once the wait
// for the pending invalidation kind has timed out.
func (m *Mirror) Read() (telemetry.Block, error) {
	if m.state == Fresh {
		return m.block, nil
	}

	timeout := m.opts.AdvancingTimeout
	if m.pending == NonAdvancing {
		timeout = m.opts.NonAdvancingTimeout
	}

	start := time.Now()
	polls := 0
	for {
		block, err := m.reader.ReadBlock()
		if err != nil {
			return telemetry.Block{}, err
		}
		polls++

		elapsed := time.Since(start)
		switch {
		case m.counter == unsetCounter, block.ActionReady != m.counter:
		case elapsed >= timeout:
			if m.pending == Advancing {
				m.timeouts++
				m.log.Warn("Passed wait timeout: counter ", m.counter, " unchanged after ", elapsed)
			}
		default:
			time.Sleep(m.opts.PollInterval)
			continue
		}

		m.log.Debugln("Accepted counter", block.ActionReady, "after", polls, "polls, previous", m.counter)
		m.accept(block)
		return block, nil
	}
}

func (m *Mirror) accept(block telemetry.Block) {
	if m.state != Empty && (block.LocationMap != m.block.LocationMap || block.LocationDepth != m.block.LocationDepth) {
		m.log.Infoln("Map changed to", block.LocationMap, "depth", block.LocationDepth)
	}
	m.block = block
	m.counter = block.ActionReady
	m.state = Fresh
}

// Invalidate drops the cached block and every decoded view. The next Read
// polls according to kind.
func (m *Mirror) Invalidate(kind Invalidation) {
	if m.state == Fresh {
		m.state = Stale
	}
	m.pending = kind
	m.generation++
	m.grid = nil
	m.player = nil
	m.hacking = nil
}

// TurnCounter returns the counter of the cached block, reading one first
// when nothing is cached
func (m *Mirror) TurnCounter() (int32, error) {
	if m.state == Fresh {
		return m.counter, nil
	}
	block, err := m.Read()
	if err != nil {
		return 0, err
	}
	return block.ActionReady, nil
}

// stamp records when a view was decoded
type stamp struct {
	m          *Mirror
	counter    int32
	generation uint64
}

func (m *Mirror) stamp() stamp {
	return stamp{m: m, counter: m.counter, generation: m.generation}
}

func (s stamp) Counter() int32 {
	return s.counter
}

func (s stamp) Generation() uint64 {
	return s.generation
}

// Valid reports whether the view's counter is still the live one
func (s stamp) Valid() bool {
	return s.m.state == Fresh && s.m.counter == s.counter
}

// check logs and counts an access through a superseded view. It never
// fails the access.
func (s stamp) check() {
	if s.Valid() {
		return
	}
	s.m.staleReads++
	s.m.log.Warn("Accessing data after no longer valid: view counter ", s.counter, " generation ", s.generation,
		", live counter ", s.m.counter, " generation ", s.m.generation, " (", s.m.state, ")")
}
