package seqring

import (
	"sync/atomic"
)

// WriteGuard is the capability to push into a ring. At most one guard exists
// at a time, which is what lets Push touch writeCursor without atomics.
type WriteGuard struct {
	ring     *Ring
	released atomic.Bool
}

// Push publishes one message. It never blocks, never fails and never waits
// for any reader: once the ring has wrapped, the oldest message in the target
// slot is unconditionally destroyed. "Full" is not a writer-visible
// condition.
func (g *WriteGuard) Push(m Message) {
	g.PushUint64(m.Uint64())
}

// PushUint64 publishes the message packed into v, little-endian.
//
// Publish order is the seqlock protocol: payload first, stamp second. The
// stamp store releases the payload store, so a reader that observes stamp
// pos+1 is guaranteed to read the completed payload for that generation.
func (g *WriteGuard) PushUint64(v uint64) {
	r := g.ring
	pos := r.writeCursor
	s := &r.slots[pos&mask]

	s.payload.Store(v)
	s.stamp.Store(pos + 1)

	r.generation.Store(pos + 1)
	r.writeCursor = pos + 1
	atomic.AddUint64(&r.stats.pushes, 1)
}

// Release frees the writer slot, making the ring lockable again.
// Exactly-once: releasing a guard twice is a programming error and panics.
func (g *WriteGuard) Release() {
	if g.released.Swap(true) {
		panic("seqring: write guard released twice")
	}
	g.ring.writeLocked.Store(false)
}
