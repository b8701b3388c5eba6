package lockfree

import (
	"fmt"
	"sync/atomic"
)

// RingQueueMPSC is a bounded lock-free multi-producer/single-consumer FIFO
// ring queue. The consumer counter is a plain integer: spec.md §4.2.6
// requires only the producer side to pay for atomics when there is a
// single consumer thread.
type RingQueueMPSC[T any] struct {
	_        [64]byte
	mask     uint64
	capacity uint64
	slots    []ticketSlot[T]
	_        [64]byte
	tail     atomic.Uint64 // next producer ticket, shared by many producers
	_        [64]byte
	head     uint64 // next consumer ticket, owned by the single consumer
	_        [64]byte
}

// NewRingQueueMPSC creates a bounded MPSC ring queue. capacity must be a
// power of two.
func NewRingQueueMPSC[T any](capacity uint64) *RingQueueMPSC[T] {
	if !isPow2(capacity) {
		panic("lockfree: capacity must be a power of 2 and > 0")
	}
	slots := make([]ticketSlot[T], capacity)
	for i := uint64(0); i < capacity; i++ {
		slots[i].ticket.Store(i)
	}
	return &RingQueueMPSC[T]{mask: capacity - 1, capacity: capacity, slots: slots}
}

// Push blocking-enqueues v. Safe to call concurrently from many producers.
func (q *RingQueueMPSC[T]) Push(v T) {
	pos := q.tail.Add(1) - 1
	slot := &q.slots[pos&q.mask]
	spinUntil(func() bool { return slot.ticket.Load() == pos })
	slot.val = v
	slot.ticket.Store(pos + 1)
}

// TryPush attempts a non-blocking enqueue. Safe to call concurrently from
// many producers.
func (q *RingQueueMPSC[T]) TryPush(v T) bool {
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

// Pop blocking-dequeues the next element. MUST be called from a single
// consumer goroutine.
func (q *RingQueueMPSC[T]) Pop() T {
	pos := q.head
	slot := &q.slots[pos&q.mask]
	spinUntil(func() bool { return slot.ticket.Load() == pos+1 })
	q.head = pos + 1
	v := slot.val
	var zero T
	slot.val = zero
	slot.ticket.Store(pos + q.capacity)
	return v
}

// TryPop attempts a non-blocking dequeue. MUST be called from a single
// consumer goroutine.
func (q *RingQueueMPSC[T]) TryPop() (T, bool) {
	var zero T
	pos := q.head
	slot := &q.slots[pos&q.mask]
	if slot.ticket.Load() != pos+1 {
		return zero, false
	}
	q.head = pos + 1
	v := slot.val
	slot.val = zero
	slot.ticket.Store(pos + q.capacity)
	return v, true
}

// Empty reports whether the queue currently has no elements in flight.
// MUST be called from the consumer goroutine to be authoritative.
func (q *RingQueueMPSC[T]) Empty() bool {
	slot := &q.slots[q.head&q.mask]
	return slot.ticket.Load() != q.head+1
}

// Capacity returns the fixed ring capacity.
func (q *RingQueueMPSC[T]) Capacity() uint64 { return q.capacity }

// Describe reports this container's structural identity.
func (q *RingQueueMPSC[T]) Describe() string {
	return fmt.Sprintf("%s/%s/%s/reclaim:%s", StaticRingBuffer, MPSC, Ticket, NoReclaimer)
}
