package lockfree

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/valyala/fastrand"
)

// TestRingQueueStressRandomizedInterleaving drives the MPMC ring queue
// across randomized producer/consumer counts, capacities, and backoff
// jitter pulled from fastrand rather than the teacher's hardcoded
// producer/consumer constants.
func TestRingQueueStressRandomizedInterleaving(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in -short mode")
	}

	for trial := 0; trial < 8; trial++ {
		capacity := uint64(1) << (4 + fastrand.Uint32n(6)) // 16..512
		producers := int(1 + fastrand.Uint32n(7))
		consumers := int(1 + fastrand.Uint32n(7))
		n := 2000 + int(fastrand.Uint32n(4000))
		perProducer := n / producers
		total := perProducer * producers

		q := NewRingQueueMPMC[int](capacity)
		seen := make([]int32, total)

		var pg sync.WaitGroup
		pg.Add(producers)
		for p := 0; p < producers; p++ {
			start := p * perProducer
			go func(from, to int) {
				defer pg.Done()
				for i := from; i < to; i++ {
					for !q.TryPush(i) {
						if fastrand.Uint32n(16) == 0 {
							runtime.Gosched()
						}
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
			if sum == int32(total) {
				break
			}
			runtime.Gosched()
		}
		close(done)
		cg.Wait()

		for i, count := range seen {
			if count != 1 {
				t.Fatalf("trial %d: value %d seen %d times (expected 1), capacity=%d producers=%d consumers=%d",
					trial, i, count, capacity, producers, consumers)
			}
		}
	}
}

// TestLinkedStackHazardStressRandomizedShape randomizes producer/consumer
// counts and registry size across trials, checking every pushed value is
// still popped exactly once under heavy hazard-record churn.
func TestLinkedStackHazardStressRandomizedShape(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in -short mode")
	}

	for trial := 0; trial < 6; trial++ {
		recordCount := int(4 + fastrand.Uint32n(29)) // 4..32
		producers := int(1 + fastrand.Uint32n(5))
		consumers := int(1 + fastrand.Uint32n(9))
		perProd := 500 + int(fastrand.Uint32n(1500))
		total := perProd * producers

		s := NewLinkedStackHazard[int](recordCount)
		seen := make([]int32, total)

		var pg sync.WaitGroup
		pg.Add(producers)
		for p := 0; p < producers; p++ {
			start := p * perProd
			go func(from, to int) {
				defer pg.Done()
				for i := from; i < to; i++ {
					s.Push(i)
				}
			}(start, start+perProd)
		}
		pg.Wait()

		var cg sync.WaitGroup
		cg.Add(consumers)
		for c := 0; c < consumers; c++ {
			go func() {
				defer cg.Done()
				for {
					v, ok := s.Pop()
					if !ok {
						return
					}
					if atomic.AddInt32(&seen[v], 1) != 1 {
						t.Errorf("trial %d: value %d popped more than once", trial, v)
					}
				}
			}()
		}
		cg.Wait()

		for i, count := range seen {
			if count != 1 {
				t.Fatalf("trial %d: value %d seen %d times (expected 1), recordCount=%d producers=%d consumers=%d",
					trial, i, count, recordCount, producers, consumers)
			}
		}
	}
}
