package lockfree

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

// Sequential sanity: enqueue then dequeue must preserve FIFO order and
// respect capacity, mirrored across all four ring-queue cardinalities
// (spec.md §7, property "FIFO under isolation").
func TestRingQueueSequentialFIFO(t *testing.T) {
	const capacity = 16

	t.Run("MPMC", func(t *testing.T) {
		q := NewRingQueueMPMC[int](capacity)
		testRingQueueSequential(t, capacity, q.TryPush, q.TryPop)
	})
	t.Run("MPSC", func(t *testing.T) {
		q := NewRingQueueMPSC[int](capacity)
		testRingQueueSequential(t, capacity, q.TryPush, q.TryPop)
	})
	t.Run("SPMC", func(t *testing.T) {
		q := NewRingQueueSPMC[int](capacity)
		testRingQueueSequential(t, capacity, q.TryPush, q.TryPop)
	})
	t.Run("SPSC", func(t *testing.T) {
		q := NewRingQueueSPSC[int](capacity)
		testRingQueueSequential(t, capacity, q.TryPush, q.TryPop)
	})
	t.Run("BruteForceMPMC", func(t *testing.T) {
		q := NewRingQueueBruteForceMPMC[int](capacity)
		testRingQueueSequential(t, capacity, q.TryPush, q.TryPop)
	})
}

func testRingQueueSequential(t *testing.T, capacity uint64, push func(int) bool, pop func() (int, bool)) {
	t.Helper()
	for i := 0; i < int(capacity); i++ {
		if !push(i) {
			t.Fatalf("push failed at %d (ring unexpectedly full)", i)
		}
	}
	if push(999) {
		t.Fatalf("expected overflow push to fail")
	}
	for i := 0; i < int(capacity); i++ {
		v, ok := pop()
		if !ok {
			t.Fatalf("pop failed at %d (ring unexpectedly empty)", i)
		}
		if v != i {
			t.Fatalf("expected %d, got %d (FIFO violated)", i, v)
		}
	}
	if _, ok := pop(); ok {
		t.Fatalf("expected empty ring at the end")
	}
}

// Concurrent correctness: every enqueued value must be observed by exactly
// one consumer (spec.md §8, scenario "N producers / M consumers").
func TestRingQueueMPMCConcurrent(t *testing.T) {
	const (
		capacity    = 1 << 10
		n           = 100_000
		producers   = 8
		consumers   = 4
		perProducer = n / producers
	)

	q := NewRingQueueMPMC[int](capacity)
	seen := make([]int32, n)

	var pg sync.WaitGroup
	pg.Add(producers)
	for p := 0; p < producers; p++ {
		start := p * perProducer
		go func(from, to int) {
			defer pg.Done()
			for i := from; i < to; i++ {
				for !q.TryPush(i) {
					runtime.Gosched()
				}
			}
		}(start, start+perProducer)
	}

	done := make(chan struct{})
	var cg sync.WaitGroup
	cg.Add(consumers)
	for c := 0; c < consumers; c++ {
		go func() {
			defer cg.Done()
			for {
				v, ok := q.TryPop()
				if !ok {
					select {
					case <-done:
						return
					default:
						runtime.Gosched()
						continue
					}
				}
				atomic.AddInt32(&seen[v], 1)
			}
		}()
	}

	pg.Wait()
	for {
		sum := int32(0)
		for i := range seen {
			sum += atomic.LoadInt32(&seen[i])
		}
		if sum == n {
			break
		}
		runtime.Gosched()
	}
	close(done)
	cg.Wait()

	for i, count := range seen {
		if count != 1 {
			t.Fatalf("value %d seen %d times (expected 1)", i, count)
		}
	}
}

func TestRingQueueEmptyOnNewRing(t *testing.T) {
	q := NewRingQueueMPMC[int](8)
	if !q.Empty() {
		t.Fatalf("expected new ring to be empty")
	}
	q.TryPush(1)
	if q.Empty() {
		t.Fatalf("expected non-empty ring after push")
	}
}

func TestRingQueueCapacityMustBePow2(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for non-power-of-two capacity")
		}
	}()
	NewRingQueueMPMC[int](3)
}
