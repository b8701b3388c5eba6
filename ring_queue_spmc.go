package lockfree

import (
	"fmt"
	"sync/atomic"
)

// RingQueueSPMC is a bounded lock-free single-producer/multi-consumer FIFO
// ring queue. The consumer counter is atomic and advanced by CAS or
// fetch-add. The producer counter is also an atomic.Uint64, not a plain
// integer: only the single producer writes it, with a plain Store and no
// read-modify-write, and Empty reads it from consumer goroutines.
type RingQueueSPMC[T any] struct {
	_        [64]byte
	mask     uint64
	capacity uint64
	slots    []ticketSlot[T]
	_        [64]byte
	tail     atomic.Uint64 // next producer ticket, written only by the single producer
	_        [64]byte
	head     atomic.Uint64 // next consumer ticket, shared by many consumers
	_        [64]byte
}

// NewRingQueueSPMC creates a bounded SPMC ring queue. capacity must be a
// power of two.
func NewRingQueueSPMC[T any](capacity uint64) *RingQueueSPMC[T] {
	if !isPow2(capacity) {
		panic("lockfree: capacity must be a power of 2 and > 0")
	}
	slots := make([]ticketSlot[T], capacity)
	for i := uint64(0); i < capacity; i++ {
		slots[i].ticket.Store(i)
	}
	return &RingQueueSPMC[T]{mask: capacity - 1, capacity: capacity, slots: slots}
}

// Push blocking-enqueues v. MUST be called from a single producer goroutine.
func (q *RingQueueSPMC[T]) Push(v T) {
	pos := q.tail.Load()
	slot := &q.slots[pos&q.mask]
	spinUntil(func() bool { return slot.ticket.Load() == pos })
	q.tail.Store(pos + 1)
	slot.val = v
	slot.ticket.Store(pos + 1)
}

// TryPush attempts a non-blocking enqueue. MUST be called from a single
// producer goroutine.
func (q *RingQueueSPMC[T]) TryPush(v T) bool {
	pos := q.tail.Load()
	slot := &q.slots[pos&q.mask]
	if slot.ticket.Load() != pos {
		return false
	}
	q.tail.Store(pos + 1)
	slot.val = v
	slot.ticket.Store(pos + 1)
	return true
}

// Pop blocking-dequeues the next element. Safe to call concurrently from
// many consumers.
func (q *RingQueueSPMC[T]) Pop() T {
	pos := q.head.Add(1) - 1
	slot := &q.slots[pos&q.mask]
	spinUntil(func() bool { return slot.ticket.Load() == pos+1 })
	v := slot.val
	var zero T
	slot.val = zero
	slot.ticket.Store(pos + q.capacity)
	return v
}

// TryPop attempts a non-blocking dequeue. Safe to call concurrently from
// many consumers. The slot's ticket is checked before head is advanced, so
// a producer mid-publish never causes a claimed-but-lost element.
func (q *RingQueueSPMC[T]) TryPop() (T, bool) {
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
func (q *RingQueueSPMC[T]) Empty() bool {
	return q.head.Load() == q.tail.Load()
}

// Capacity returns the fixed ring capacity.
func (q *RingQueueSPMC[T]) Capacity() uint64 { return q.capacity }

// Describe reports this container's structural identity.
func (q *RingQueueSPMC[T]) Describe() string {
	return fmt.Sprintf("%s/%s/%s/reclaim:%s", StaticRingBuffer, SPMC, Ticket, NoReclaimer)
}
