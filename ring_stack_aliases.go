package lockfree

// Unlike the ring queue, whose head and tail are two independent counters
// (one per role), the ring stack has a single shared top counter that both
// pushers and poppers mutate: push fetch-adds it, pop CAS-decrements it.
// Because both roles contend on the same word regardless of how many
// producer or consumer goroutines exist, no cardinality admits a cheaper
// non-atomic counter — every configuration needs the same CAS-guarded top.
// This mirrors the source (Concurrent_Stack_LF_Ring_Ticket_MPMC.hpp), which
// defines only the MPMC case and leaves no separate SPSC/MPSC/SPMC headers
// for this stack.
//
// The four cardinalities are therefore the same type; the aliases exist so
// callers can spell out the cardinality they intend without reading this
// comment.
type (
	RingStackSPSC[T any] = RingStackMPMC[T]
	RingStackMPSC[T any] = RingStackMPMC[T]
	RingStackSPMC[T any] = RingStackMPMC[T]
)

// NewRingStackSPSC is an alias constructor for RingStackMPMC; see the type
// alias comment above for why the cardinality does not change the
// implementation.
func NewRingStackSPSC[T any](capacity uint64) *RingStackSPSC[T] { return NewRingStackMPMC[T](capacity) }

// NewRingStackMPSC is an alias constructor for RingStackMPMC.
func NewRingStackMPSC[T any](capacity uint64) *RingStackMPSC[T] { return NewRingStackMPMC[T](capacity) }

// NewRingStackSPMC is an alias constructor for RingStackMPMC.
func NewRingStackSPMC[T any](capacity uint64) *RingStackSPMC[T] { return NewRingStackMPMC[T](capacity) }
