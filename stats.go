package seqring

// coreStats counts ring operations. Writer-side and reader-side counters sit
// on separate cache lines: pushes is bumped on every push while reader
// counters are hammered by concurrent pops.
type coreStats struct {
	_      [cacheLine]byte
	pushes uint64
	_      [cacheLine - 8]byte

	pops         uint64
	emptyPolls   uint64
	overruns     uint64
	skipped      uint64
	claimRetries uint64
	_            [cacheLine - 40]byte
}

// RingStats is a point-in-time snapshot of a ring's counters.
type RingStats struct {
	Pushes     uint64 // messages published
	Pops       uint64 // messages delivered to some reader
	EmptyPolls uint64 // pops that found no new data

	Overruns     uint64 // resyncs after the writer lapped a reader
	Skipped      uint64 // messages dropped by resyncs, summed over all readers
	ClaimRetries uint64 // claim attempts lost to another goroutine on a shared cursor
}
