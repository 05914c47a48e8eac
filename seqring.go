// Package seqring implements a fixed-capacity single-producer/multi-consumer
// broadcast queue built on a seqlock publish protocol.
//
// The writer never blocks and never fails: every push overwrites the oldest
// slot once the ring wraps. Readers poll independently and detect being
// overrun by comparing per-slot generation stamps; a reader that fell behind
// resynchronizes to the oldest generation still held by the ring, silently
// dropping what the writer already destroyed. Slow readers lose messages by
// design; capacity is sized to the consumption rate, not enforced on the
// writer.
package seqring

import (
	"encoding/binary"
	"sync/atomic"
)

const (
	// Capacity is the fixed slot count of every Ring. Power of two so
	// positions wrap with a mask instead of a modulo.
	Capacity = 256
	mask     = Capacity - 1

	// MessageSize is the fixed payload width in bytes.
	MessageSize = 8

	cacheLine = 64

	goschedEvery = 64 // reduce runtime.Gosched() frequency in hot loops
)

// Message is one fixed-size payload.
type Message [MessageSize]byte

// MessageFromUint64 packs v into a Message, little-endian.
func MessageFromUint64(v uint64) Message {
	var m Message
	binary.LittleEndian.PutUint64(m[:], v)
	return m
}

// Uint64 unpacks the message bytes, little-endian.
func (m Message) Uint64() uint64 {
	return binary.LittleEndian.Uint64(m[:])
}

type slot struct {
	stamp   atomic.Uint64 // generation at which payload was last published (controls visibility)
	payload atomic.Uint64 // message bytes, stored whole so a racing overwrite can never tear a read
}
