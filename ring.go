package seqring

import (
	"fmt"
	"sync/atomic"
)

var ErrAlreadyLocked = fmt.Errorf("seqring: writer already locked")

// Ring is a fixed array of stamped slots shared between one writer and any
// number of readers. The zero value is ready to use: generation 0, all slot
// stamps 0, writer slot free.
//
// writeCursor and generation advance in lockstep, exactly one step per
// committed push, so generation always equals the number of pushes performed.
// Each hot field sits on its own cache line: readers poll slot stamps and
// generation while the writer bumps writeCursor, and sharing a line between
// them turns every push into cross-core traffic.
type Ring struct {
	_           [cacheLine]byte
	writeCursor uint64 // next slot position; owned by the writer, no atomics needed
	_           [cacheLine - 8]byte
	generation  atomic.Uint64 // pushes committed so far; snapshotted by new readers
	_           [cacheLine - 8]byte
	writeLocked atomic.Bool // true iff a WriteGuard is outstanding
	_           [cacheLine - 1]byte
	slots       [Capacity]slot
	_           [cacheLine]byte

	stats coreStats
}

// New creates an empty ring.
func New() *Ring {
	return &Ring{}
}

// TryWriter attempts to claim the ring's single writer slot.
// Returns ErrAlreadyLocked when a guard is already outstanding; it never
// blocks and never retries — a caller wanting to wait polls this itself.
// May be called concurrently from many goroutines.
func (r *Ring) TryWriter() (*WriteGuard, error) {
	if !r.writeLocked.CompareAndSwap(false, true) {
		return nil, ErrAlreadyLocked
	}
	return &WriteGuard{ring: r}, nil
}

// Reader creates a cursor positioned at the ring's current generation:
// it observes only messages pushed after this call.
// May be called concurrently with pushes and other readers.
func (r *Ring) Reader() *Reader {
	rd := &Reader{ring: r}
	rd.pos.Store(r.generation.Load())
	return rd
}

// Generation returns the number of pushes committed so far.
func (r *Ring) Generation() uint64 {
	return r.generation.Load()
}

// Stats retrieves a snapshot of the ring's operation counters.
func (r *Ring) Stats() RingStats {
	return RingStats{
		Pushes:       atomic.LoadUint64(&r.stats.pushes),
		Pops:         atomic.LoadUint64(&r.stats.pops),
		EmptyPolls:   atomic.LoadUint64(&r.stats.emptyPolls),
		Overruns:     atomic.LoadUint64(&r.stats.overruns),
		Skipped:      atomic.LoadUint64(&r.stats.skipped),
		ClaimRetries: atomic.LoadUint64(&r.stats.claimRetries),
	}
}
