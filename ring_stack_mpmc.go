package lockfree

import (
	"fmt"
	"sync/atomic"
)

// RingStackMPMC is a bounded multi-producer/multi-consumer LIFO
// ring stack over a single shared top counter (spec.md §4.2.5): push
// fetch-adds top, pop CAS-decrements it to claim the most recently
// published slot.
//
// The source (Concurrent_Stack_LF_Ring_Ticket_MPMC.hpp) synchronises each
// slot the same way the ring queue does: a monotonic ticket stored per
// slot, matched against the raw counter value the reservation returned.
// That match only holds if the counter advances in lockstep with how many
// times a slot index has cycled — true for the queue's head/tail, which
// only ever increase, but false here: top also decreases on every pop, so
// it can hand out a ticket value it already issued once before the slot
// has actually cycled capacity times, and the next occupant of that slot
// spins forever on a ticket the slot will never present again (push(A);
// push(B); pop(); push(C) deadlocks at push(C) for any capacity — see
// DESIGN.md). The defect is in the source itself, not just this port.
//
// This type instead synchronises each slot with the four-state flag the
// brute-force variant uses (bruteForceSlot): a push waits for
// popDone->pushInProgress on its slot, a pop waits for
// pushDone->popInProgress. The state machine only tracks lifecycle stage,
// never a numeric ticket, so it is correct for any sequence of pushes and
// pops regardless of how top moves — unlike the ticket queues, top's
// reservation and the slot's readiness are allowed to be momentarily out
// of step, and the state check (not the counter) is what a caller's
// TryPush/TryPop relies on.
//
// One consequence: this type is not lock-free the way the ring queue's
// ticket protocol is. A push or pop that wins the top CAS but lands on a
// slot still mid-transition must spin for the other side to finish,
// exactly as the brute-force variant does — the deviation trades the
// source's broken lock-freedom claim for a design that is actually
// correct under reuse.
type RingStackMPMC[T any] struct {
	_        [64]byte
	mask     uint64
	capacity uint64
	slots    []bruteForceSlot[T]
	_        [64]byte
	top      atomic.Uint64 // count of reserved slots; pushers fetch-add it, poppers CAS-decrement it
	_        [64]byte
}

// NewRingStackMPMC creates a bounded MPMC ring stack. capacity must be a
// power of two.
func NewRingStackMPMC[T any](capacity uint64) *RingStackMPMC[T] {
	if !isPow2(capacity) {
		panic("lockfree: capacity must be a power of 2 and > 0")
	}
	return &RingStackMPMC[T]{mask: capacity - 1, capacity: capacity, slots: make([]bruteForceSlot[T], capacity)}
}

// Push blocking-pushes v. The reservation always succeeds; the spin is on
// the slot itself, waiting for the previous occupant of this index to have
// been fully popped.
func (s *RingStackMPMC[T]) Push(v T) {
	var spins uint32
	pos := s.top.Add(1) - 1
	slot := &s.slots[pos&s.mask]
	for !slot.state.CompareAndSwap(uint32(popDone), uint32(pushInProgress)) {
		spins = backoff(spins)
	}
	slot.val = v
	slot.state.Store(uint32(pushDone))
}

// TryPush attempts a non-blocking push, failing without reserving a slot
// if the target slot is not actually free. Checking the slot before
// claiming top (rather than after) is what Push can afford to skip but a
// non-blocking operation cannot: a claim-then-check order would advance
// top past a slot still occupied by an unpopped element, the same failure
// mode as the ring queue's TryPop bug (see DESIGN.md).
func (s *RingStackMPMC[T]) TryPush(v T) bool {
	var spins uint32
	for {
		pos := s.top.Load()
		slot := &s.slots[pos&s.mask]
		if slot.state.Load() != uint32(popDone) {
			return false
		}
		if s.top.CompareAndSwap(pos, pos+1) {
			for !slot.state.CompareAndSwap(uint32(popDone), uint32(pushInProgress)) {
				spins = backoff(spins)
			}
			slot.val = v
			slot.state.Store(uint32(pushDone))
			return true
		}
		spins = backoff(spins)
	}
}

// Pop blocking-pops the most recently pushed element (LIFO), spinning
// while the stack appears empty and while the claimed slot's publish is
// still in flight.
func (s *RingStackMPMC[T]) Pop() T {
	var spins uint32
	for {
		top := s.top.Load()
		for top == 0 {
			spins = backoff(spins)
			top = s.top.Load()
		}
		if s.top.CompareAndSwap(top, top-1) {
			slot := &s.slots[(top-1)&s.mask]
			for !slot.state.CompareAndSwap(uint32(pushDone), uint32(popInProgress)) {
				spins = backoff(spins)
			}
			v := slot.val
			var zero T
			slot.val = zero
			slot.state.Store(uint32(popDone))
			return v
		}
		spins = backoff(spins)
	}
}

// TryPop attempts a non-blocking pop, returning ok=false if the stack is
// empty or the top slot is not yet published. Once top's CAS succeeds,
// this goroutine owns that slot's next pop; top may have moved away and
// back between the state check and the CAS, so a push may still be
// publishing into the slot, and the pop waits for pushDone as Pop does.
func (s *RingStackMPMC[T]) TryPop() (T, bool) {
	var zero T
	var spins uint32
	for {
		top := s.top.Load()
		if top == 0 {
			return zero, false
		}
		slot := &s.slots[(top-1)&s.mask]
		if slot.state.Load() != uint32(pushDone) {
			return zero, false
		}
		if s.top.CompareAndSwap(top, top-1) {
			for !slot.state.CompareAndSwap(uint32(pushDone), uint32(popInProgress)) {
				spins = backoff(spins)
			}
			v := slot.val
			slot.val = zero
			slot.state.Store(uint32(popDone))
			return v, true
		}
		spins = backoff(spins)
	}
}

// Empty reports whether the stack currently has no elements in flight.
func (s *RingStackMPMC[T]) Empty() bool { return s.top.Load() == 0 }

// Capacity returns the fixed ring capacity.
func (s *RingStackMPMC[T]) Capacity() uint64 { return s.capacity }

// Describe reports this container's structural identity.
func (s *RingStackMPMC[T]) Describe() string {
	return fmt.Sprintf("%s/%s/%s/reclaim:%s", StaticRingBuffer, MPMC, BruteForce, NoReclaimer)
}
