package seqring

import (
	"runtime"
	"sync/atomic"
)

// Reader is a consumption cursor over a Ring.
//
// A Reader used by a single goroutine observes the full message stream
// (broadcast: every cursor sees every push it didn't sleep through). A single
// *Reader shared between goroutines is a work-stealing consumer group:
// concurrent Pops race to claim successive generations and each message is
// delivered to exactly one winner.
//
// Because generation and slot position advance in lockstep on the writer
// side, the cursor needs only one number: pos is the generation this reader
// has consumed up to, and pos&mask is the slot it polls next. Keeping both in
// one word makes the claim step a single compare-and-swap.
type Reader struct {
	ring *Ring
	_    [cacheLine - 8]byte
	pos  atomic.Uint64
	_    [cacheLine - 8]byte
}

// Pop returns the next unseen message, or (Message{}, false) when the ring
// holds no new data for this cursor. It never blocks; callers wanting to wait
// poll it themselves.
//
// If the writer lapped this cursor, Pop silently resyncs so the generation
// currently held by the polled slot is the next one delivered; the messages
// in between are gone and are not reported as a distinct outcome. Safe to
// call concurrently through a shared *Reader.
func (rd *Reader) Pop() (Message, bool) {
	r := rd.ring
	var spins uint32
	for {
		pos := rd.pos.Load()
		s := &r.slots[pos&mask]

		stamp := s.stamp.Load()
		diff := int64(stamp) - int64(pos+1)

		if diff == 0 {
			// This slot holds generation pos+1, due next for this cursor.
			v := s.payload.Load()
			if s.stamp.Load() != stamp {
				// Writer lapped us between the stamp check and the payload
				// copy; the copy may belong to a newer generation. Re-run
				// the comparison, it will take the overrun branch.
				continue
			}
			if rd.pos.CompareAndSwap(pos, pos+1) {
				atomic.AddUint64(&r.stats.pops, 1)
				return MessageFromUint64(v), true
			}
			// Another goroutine claimed this generation, retry at the new pos.
			atomic.AddUint64(&r.stats.claimRetries, 1)
		} else if diff < 0 {
			// Slot still carries an old stamp: nothing new published for
			// this cursor yet.
			atomic.AddUint64(&r.stats.emptyPolls, 1)
			var zero Message
			return zero, false
		} else {
			// stamp > pos+1: the writer overwrote this slot before we read
			// it. Resync to stamp-1 so the slot's current occupant is
			// delivered next, dropping everything in between.
			if rd.pos.CompareAndSwap(pos, stamp-1) {
				atomic.AddUint64(&r.stats.overruns, 1)
				atomic.AddUint64(&r.stats.skipped, stamp-1-pos)
			}
			// On CAS failure another goroutine already moved the cursor;
			// either way, retry against the new position.
		}

		spins++
		if spins%goschedEvery == 0 {
			runtime.Gosched()
		}
	}
}

// Clone snapshots the cursor into an independent copy. From this point the
// clone and the original no longer share consumption progress; a message
// becomes observable by both.
func (rd *Reader) Clone() *Reader {
	c := &Reader{ring: rd.ring}
	c.pos.Store(rd.pos.Load())
	return c
}

// Position returns the generation this cursor has consumed up to.
func (rd *Reader) Position() uint64 {
	return rd.pos.Load()
}
