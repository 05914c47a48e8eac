package seqring

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valyala/fastrand"
)

// Work-stealing: many goroutines share one cursor; each message is delivered
// to exactly one of them. The writer is paced so it never overruns the group,
// making the exactly-once accounting deterministic.
func TestSharedReaderWorkStealing(t *testing.T) {
	const (
		n         = 50_000
		consumers = 4
	)

	r := New()
	g, err := r.TryWriter()
	require.NoError(t, err)
	rd := r.Reader()

	seen := make([]int32, n)
	var popped atomic.Uint64

	var wg sync.WaitGroup
	wg.Add(consumers)
	for c := 0; c < consumers; c++ {
		go func() {
			defer wg.Done()
			for popped.Load() < n {
				m, ok := rd.Pop()
				if !ok {
					runtime.Gosched()
					continue
				}
				v := m.Uint64()
				if v >= n {
					t.Errorf("popped out-of-range value %d", v)
					continue
				}
				atomic.AddInt32(&seen[v], 1)
				popped.Add(1)
			}
		}()
	}

	for i := uint64(0); i < n; i++ {
		// Keep fewer than Capacity messages in flight so no consumer is
		// ever overrun.
		for i-popped.Load() >= Capacity {
			runtime.Gosched()
		}
		g.PushUint64(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if seen[i] != 1 {
			t.Fatalf("value %d delivered %d times (expected exactly once)", i, seen[i])
		}
	}

	st := r.Stats()
	require.Equal(t, uint64(n), st.Pushes)
	require.Equal(t, uint64(n), st.Pops)
	require.Zero(t, st.Overruns)
}

// Soak: an unpaced writer lapping several independent readers. Each reader's
// stream must be strictly increasing (gaps only from overrun) and must end on
// the final value, which stays resident once the writer stops.
func TestIndependentReadersUnderOverrun(t *testing.T) {
	const (
		n       = 200_000
		readers = 3
	)

	r := New()
	g, err := r.TryWriter()
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(readers)
	for c := 0; c < readers; c++ {
		rd := r.Reader()
		go func() {
			defer wg.Done()
			last := int64(-1)
			for {
				m, ok := rd.Pop()
				if !ok {
					runtime.Gosched()
					continue
				}
				v := int64(m.Uint64())
				if v <= last {
					t.Errorf("stream went backwards: %d after %d", v, last)
					return
				}
				last = v
				if v == n-1 {
					return
				}
				if fastrand.Uint32n(64) == 0 {
					runtime.Gosched()
				}
			}
		}()
	}

	for i := uint64(0); i < n; i++ {
		g.PushUint64(i)
	}
	wg.Wait()
}

// A shared cursor that gets lapped resyncs exactly once per overrun and
// still delivers each surviving generation to one goroutine only.
func TestSharedReaderOverrunNoDuplicates(t *testing.T) {
	const (
		n         = 100_000
		consumers = 4
	)

	r := New()
	g, err := r.TryWriter()
	require.NoError(t, err)
	rd := r.Reader()

	seen := make([]int32, n)
	var done atomic.Bool

	var wg sync.WaitGroup
	wg.Add(consumers)
	for c := 0; c < consumers; c++ {
		go func() {
			defer wg.Done()
			for {
				m, ok := rd.Pop()
				if !ok {
					if done.Load() {
						// Drain whatever the writer left behind.
						if _, ok := rd.Pop(); !ok {
							return
						}
						continue
					}
					runtime.Gosched()
					continue
				}
				atomic.AddInt32(&seen[m.Uint64()], 1)
			}
		}()
	}

	for i := uint64(0); i < n; i++ {
		g.PushUint64(i)
	}
	done.Store(true)
	wg.Wait()

	for i := 0; i < n; i++ {
		if c := atomic.LoadInt32(&seen[i]); c > 1 {
			t.Fatalf("value %d delivered %d times", i, c)
		}
	}
}

func TestReaderPosition(t *testing.T) {
	r := New()
	g, err := r.TryWriter()
	require.NoError(t, err)
	rd := r.Reader()
	require.Zero(t, rd.Position())

	g.PushUint64(7)
	_, ok := rd.Pop()
	require.True(t, ok)
	require.Equal(t, uint64(1), rd.Position())
}

// Benchmark: four goroutines stealing from one shared cursor.
func BenchmarkSharedPop_1W4R(b *testing.B) {
	const consumers = 4

	r := New()
	g, err := r.TryWriter()
	if err != nil {
		b.Fatal(err)
	}
	rd := r.Reader()

	var popped atomic.Uint64
	var wg sync.WaitGroup
	wg.Add(consumers)
	for c := 0; c < consumers; c++ {
		go func() {
			defer wg.Done()
			for popped.Load() < uint64(b.N) {
				if _, ok := rd.Pop(); ok {
					popped.Add(1)
				} else {
					runtime.Gosched()
				}
			}
		}()
	}

	b.ResetTimer()
	for i := uint64(0); i < uint64(b.N); i++ {
		for i-popped.Load() >= Capacity {
			runtime.Gosched()
		}
		g.PushUint64(i)
	}
	wg.Wait()
	b.StopTimer()
}

// Benchmark: random payloads, exercising the pack/unpack path.
func BenchmarkPushPopRandomPayload(b *testing.B) {
	r := New()
	g, err := r.TryWriter()
	if err != nil {
		b.Fatal(err)
	}
	rd := r.Reader()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v := uint64(fastrand.Uint32())<<32 | uint64(fastrand.Uint32())
		g.PushUint64(v)
		if m, ok := rd.Pop(); !ok || m.Uint64() != v {
			b.Fatalf("lost message %d", v)
		}
	}
}
