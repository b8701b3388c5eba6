package lockfree

import "fmt"

// RingQueueSPSC is a bounded lock-free single-producer/single-consumer FIFO
// ring queue. Both counters are plain integers: the only cross-thread
// synchronisation needed is the slot's own ticket, exactly as spec.md
// §4.2.6 describes for the SPSC specialisation ("the producer's slot
// publish itself is the synchronisation point").
type RingQueueSPSC[T any] struct {
	_        [64]byte
	mask     uint64
	capacity uint64
	slots    []ticketSlot[T]
	_        [64]byte
	tail     uint64 // next producer ticket, owned by the single producer
	_        [64]byte
	head     uint64 // next consumer ticket, owned by the single consumer
	_        [64]byte
}

// NewRingQueueSPSC creates a bounded SPSC ring queue. capacity must be a
// power of two.
func NewRingQueueSPSC[T any](capacity uint64) *RingQueueSPSC[T] {
	if !isPow2(capacity) {
		panic("lockfree: capacity must be a power of 2 and > 0")
	}
	slots := make([]ticketSlot[T], capacity)
	for i := uint64(0); i < capacity; i++ {
		slots[i].ticket.Store(i)
	}
	return &RingQueueSPSC[T]{mask: capacity - 1, capacity: capacity, slots: slots}
}

// Push blocking-enqueues v. MUST be called from the single producer
// goroutine; spins while the consumer has not yet freed the reserved slot.
func (q *RingQueueSPSC[T]) Push(v T) {
	pos := q.tail
	slot := &q.slots[pos&q.mask]
	spinUntil(func() bool { return slot.ticket.Load() == pos })
	q.tail = pos + 1
	slot.val = v
	slot.ticket.Store(pos + 1)
}

// TryPush attempts a non-blocking enqueue. MUST be called from the single
// producer goroutine.
func (q *RingQueueSPSC[T]) TryPush(v T) bool {
	pos := q.tail
	slot := &q.slots[pos&q.mask]
	if slot.ticket.Load() != pos {
		return false
	}
	q.tail = pos + 1
	slot.val = v
	slot.ticket.Store(pos + 1)
	return true
}

// Pop blocking-dequeues the next element. MUST be called from the single
// consumer goroutine; spins while the producer has not yet published.
func (q *RingQueueSPSC[T]) Pop() T {
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

// TryPop attempts a non-blocking dequeue. MUST be called from the single
// consumer goroutine.
func (q *RingQueueSPSC[T]) TryPop() (T, bool) {
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
func (q *RingQueueSPSC[T]) Empty() bool {
	slot := &q.slots[q.head&q.mask]
	return slot.ticket.Load() != q.head+1
}

// Capacity returns the fixed ring capacity.
func (q *RingQueueSPSC[T]) Capacity() uint64 { return q.capacity }

// Describe reports this container's structural identity.
func (q *RingQueueSPSC[T]) Describe() string {
	return fmt.Sprintf("%s/%s/%s/reclaim:%s", StaticRingBuffer, SPSC, Ticket, NoReclaimer)
}
