package lockfree

import (
	"fmt"
	"sync/atomic"
)

// LinkedStackHazard is an unbounded lock-free LIFO stack safe for any
// number of concurrent poppers, grounded on
// Concurrent_Stack_LF_Linked_Hazard_MPMC.hpp. Each Pop protects the node it
// is about to unlink with a hazard record before dereferencing it, so a
// concurrent Pop that has already CAS'd the same node off the stack cannot
// free it out from under this one; the node is instead retired into the
// registry and reclaimed only once no hazard record still protects it.
type LinkedStackHazard[T any] struct {
	_        [64]byte
	head     atomic.Pointer[linkedNode[T]]
	_        [64]byte
	registry *HazardRegistry[T]
}

// NewLinkedStackHazard creates an empty hazard-protected linked stack.
// recordCount is the reclamation registry size; 0 selects
// HazardPtrRecordCountDefault.
func NewLinkedStackHazard[T any](recordCount int) *LinkedStackHazard[T] {
	return &LinkedStackHazard[T]{registry: NewHazardRegistry[T](recordCount)}
}

// Push allocates a node for v and CAS-links it onto the head. Push never
// touches the hazard registry: only popped nodes can be concurrently
// dereferenced by a racing pop.
func (s *LinkedStackHazard[T]) Push(v T) {
	n := &linkedNode[T]{data: v}
	for {
		old := s.head.Load()
		n.next = old
		if s.head.CompareAndSwap(old, n) {
			return
		}
	}
}

// Pop removes and returns the head node's value, safe under any number of
// concurrent pushers and poppers. ok is false on an empty stack.
func (s *LinkedStackHazard[T]) Pop() (T, bool) {
	var zero T
	owner := s.registry.Acquire()
	defer func() {
		owner.Clear()
		owner.Release()
	}()

	for {
		old := s.head.Load()
		if old == nil {
			return zero, false
		}
		owner.Protect(old)
		// Re-check head hasn't already moved past the node we just
		// protected: the hazard record is only trustworthy once it
		// agrees with a fresh load (Hazard_Ptr_Owner::protect).
		if s.head.Load() != old {
			continue
		}
		// From here on, operate through the owned record rather than the
		// local pointer: protected is what reclamation actually checks.
		protected := owner.Get()
		next := protected.next
		if s.head.CompareAndSwap(protected, next) {
			v := protected.data
			owner.Clear()
			s.registry.Retire(protected)
			return v, true
		}
	}
}

// Empty reports whether the stack currently has no elements.
func (s *LinkedStackHazard[T]) Empty() bool {
	return s.head.Load() == nil
}

// Stats returns the underlying hazard registry's diagnostic counters.
func (s *LinkedStackHazard[T]) Stats() HazardStats {
	return s.registry.Stats()
}

// Close tears the stack down, forcibly reclaiming every retired node not
// yet reclaimed, whether or not a hazard record still protects it and
// whether or not a reclamation pass has run. Callers MUST ensure no concurrent Push or Pop is in flight before
// calling Close: Drain does not wait for hazard records to clear, the same
// single-threaded destructor sweep Concurrent_Stack_LF_Linked_Hazard_MPMC.hpp
// performs (spec.md §4.4's drain-on-exit guarantee).
func (s *LinkedStackHazard[T]) Close() {
	s.registry.Drain()
}

// Describe reports this container's structural identity. Reported as
// MPMC, the cardinality this implementation actually tolerates (see the
// type doc comment on why SPMC shares it).
func (s *LinkedStackHazard[T]) Describe() string {
	return fmt.Sprintf("%s/%s/reclaim:%s", Linked, MPMC, HazardPtr)
}

// SPMC and MPMC share the hazard-protected linked stack's implementation:
// push never contends on the registry, so the producer cardinality has no
// bearing on pop safety.
type LinkedStackSPMC[T any] = LinkedStackHazard[T]

func NewLinkedStackSPMC[T any](recordCount int) *LinkedStackSPMC[T] {
	return NewLinkedStackHazard[T](recordCount)
}

type LinkedStackMPMC[T any] = LinkedStackHazard[T]

func NewLinkedStackMPMC[T any](recordCount int) *LinkedStackMPMC[T] {
	return NewLinkedStackHazard[T](recordCount)
}
