package lockfree

import (
	"fmt"
	"runtime"
	"sync/atomic"
)

// RingQueueMPMC is a bounded lock-free multi-producer/multi-consumer FIFO
// ring queue using Dmitry Vyukov's ticket protocol (spec.md §4.2). Both the
// producer and consumer counters are atomic because either side may have
// more than one thread.
type RingQueueMPMC[T any] struct {
	// Padding to avoid false sharing between the hot counters and the slot array header.
	_        [64]byte
	mask     uint64
	capacity uint64
	slots    []ticketSlot[T]
	_        [64]byte
	tail     atomic.Uint64 // next producer ticket
	_        [64]byte
	head     atomic.Uint64 // next consumer ticket
	_        [64]byte
}

// NewRingQueueMPMC creates a bounded MPMC ring queue. capacity must be a
// power of two.
func NewRingQueueMPMC[T any](capacity uint64) *RingQueueMPMC[T] {
	if !isPow2(capacity) {
		panic("lockfree: capacity must be a power of 2 and > 0")
	}
	slots := make([]ticketSlot[T], capacity)
	for i := uint64(0); i < capacity; i++ {
		slots[i].ticket.Store(i)
	}
	return &RingQueueMPMC[T]{mask: capacity - 1, capacity: capacity, slots: slots}
}

// Push blocking-enqueues v, spinning on its own reserved slot until the
// matching consumer cycle has freed it (spec.md §4.2.1).
func (q *RingQueueMPMC[T]) Push(v T) {
	pos := q.tail.Add(1) - 1
	slot := &q.slots[pos&q.mask]
	spinUntil(func() bool { return slot.ticket.Load() == pos })
	slot.val = v
	slot.ticket.Store(pos + 1)
}

// TryPush attempts a non-blocking enqueue, returning false if the ring is
// full for the reserved producer ticket (spec.md §4.2.3).
func (q *RingQueueMPMC[T]) TryPush(v T) bool {
	var spins uint32
	for {
		pos := q.tail.Load()
		slot := &q.slots[pos&q.mask]
		seq := slot.ticket.Load()
		diff := int64(seq) - int64(pos)

		switch {
		case diff == 0:
			if q.tail.CompareAndSwap(pos, pos+1) {
				slot.val = v
				slot.ticket.Store(pos + 1)
				return true
			}
		case diff < 0:
			return false
		}
		spins = backoff(spins)
	}
}

// Pop blocking-dequeues the next element, spinning on its own reserved slot
// until the matching producer cycle has published it (spec.md §4.2.2).
func (q *RingQueueMPMC[T]) Pop() T {
	pos := q.head.Add(1) - 1
	slot := &q.slots[pos&q.mask]
	spinUntil(func() bool { return slot.ticket.Load() == pos+1 })
	v := slot.val
	var zero T
	slot.val = zero
	slot.ticket.Store(pos + q.capacity)
	return v
}

// TryPop attempts a non-blocking dequeue, returning ok=false if the ring is
// empty for the reserved consumer ticket (spec.md §4.2.4). The slot's
// ticket is checked before head is ever advanced: a non-blocking operation
// must not alter container state on failure (spec.md §4.2.3), so a
// producer that has merely reserved but not yet published its slot must
// leave head untouched rather than consume the ticket and lose the
// element.
func (q *RingQueueMPMC[T]) TryPop() (T, bool) {
	var zero T
	var spins uint32
	for {
		pos := q.head.Load()
		slot := &q.slots[pos&q.mask]
		seq := slot.ticket.Load()
		diff := int64(seq) - int64(pos+1)

		switch {
		case diff == 0:
			if q.head.CompareAndSwap(pos, pos+1) {
				v := slot.val
				slot.val = zero
				slot.ticket.Store(pos + q.capacity)
				return v, true
			}
		case diff < 0:
			return zero, false
		}
		spins = backoff(spins)
	}
}

// Empty reports whether the queue currently has no elements in flight.
func (q *RingQueueMPMC[T]) Empty() bool {
	return q.head.Load() == q.tail.Load()
}

// Capacity returns the fixed ring capacity.
func (q *RingQueueMPMC[T]) Capacity() uint64 { return q.capacity }

// Describe reports this container's structural identity — storage layout,
// concurrency model, slot-sync protocol, and reclamation scheme — using
// the spec's tagged-variant enums in place of a printable C++ template
// parameter.
func (q *RingQueueMPMC[T]) Describe() string {
	return fmt.Sprintf("%s/%s/%s/reclaim:%s", StaticRingBuffer, MPMC, Ticket, NoReclaimer)
}

// spinsBetweenGosched bounds how many busy-wait iterations run before
// yielding the goroutine, mirroring goschedEvery in the teacher's mpmc.go.
const spinsBetweenGosched = 64

// spinUntil busy-waits for cond, periodically yielding the goroutine so a
// stalled counterpart does not starve the scheduler (spec.md §4.2.9).
func spinUntil(cond func() bool) {
	var spins uint32
	for !cond() {
		spins++
		if spins%spinsBetweenGosched == 0 {
			runtime.Gosched()
		}
	}
}

// backoff increments spins and yields periodically, returning the updated
// counter for the caller's loop variable.
func backoff(spins uint32) uint32 {
	spins++
	if spins%spinsBetweenGosched == 0 {
		runtime.Gosched()
	}
	return spins
}
