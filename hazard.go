package lockfree

import (
	"sync"
	"sync/atomic"
)

// linkedNode is the heap-allocated node shared by every linked stack
// variant (spec.md §3 "Linked node").
type linkedNode[T any] struct {
	data T
	next *linkedNode[T]
}

// hazardRecord is one registry slot: a published pointer that reclamation
// must treat as still reachable (spec.md §3 "Hazard record", §4.4).
type hazardRecord[T any] struct {
	_         [64]byte
	protected atomic.Pointer[linkedNode[T]]
	_         [64]byte
}

// HazardStats mirrors the teacher's TaskQStats diagnostics pattern
// (taskq.go), applied to the hazard registry instead of a job queue.
type HazardStats struct {
	Acquires  uint64
	Retires   uint64
	Reclaimed uint64
	Kept      uint64
}

// HazardRegistry is the fixed-size hazard-pointer record array plus
// deferred-reclamation retired list described in spec.md §4.4, grounded on
// Hazard_Ptr.hpp. One registry is owned by each hazard-protected linked
// container instance, matching spec.md §6's per-container construction
// parameter ("optional reclamation-registry size, default 128") rather
// than a single process-wide array — see DESIGN.md for why.
//
// Record acquisition is accelerated by an MPMC free-index ring preloaded
// with every record index, adapted from the teacher's array.go
// (ArrayMPMC/NewArrayMPMC): Acquire dequeues a free index in O(1) amortised
// instead of linearly CAS-scanning the array for an unowned record.
type HazardRegistry[T any] struct {
	records   []hazardRecord[T]
	freeIndex *RingQueueMPMC[int]

	mu       sync.Mutex
	retired  []retiredNode[T]
	stats    hazardStatsInternal
}

type hazardStatsInternal struct {
	acquires  atomic.Uint64
	retires   atomic.Uint64
	reclaimed atomic.Uint64
	kept      atomic.Uint64
}

type retiredNode[T any] struct {
	ptr *linkedNode[T]
}

// reclaimThreshold is when a retire triggers a reclamation pass, half the
// registry size per Hazard_Ptr.hpp's RECLAIM_TRESHOLD convention scaled to
// the configured registry size.
func reclaimThreshold(recordCount int) int {
	t := recordCount / 2
	if t < 1 {
		return 1
	}
	return t
}

// NewHazardRegistry builds a registry with recordCount hazard records
// (spec.md default 128).
func NewHazardRegistry[T any](recordCount int) *HazardRegistry[T] {
	if recordCount <= 0 {
		recordCount = HazardPtrRecordCountDefault
	}
	freeIndex := NewRingQueueMPMC[int](nextPow2(uint64(recordCount)))
	r := &HazardRegistry[T]{
		records:   make([]hazardRecord[T], recordCount),
		freeIndex: freeIndex,
	}
	for i := 0; i < recordCount; i++ {
		if !freeIndex.TryPush(i) {
			panic("lockfree: unreachable: free-index ring sized below record count")
		}
	}
	return r
}

// HazardPtrRecordCountDefault is the default hazard-pointer registry size
// (spec.md §3, §4.4).
const HazardPtrRecordCountDefault = 128

func nextPow2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}

// hazardOwner is the RAII-style handle returned by Acquire, the Go
// equivalent of Hazard_Ptr_Owner: protect/clear while held, then Release.
// Correctness only requires a record be owned while some pointer is
// published in it; unlike the source's thread-local sticky ownership, this
// handle is scoped to one pop call rather than reused across calls — Go has
// no cheap thread-identity primitive to key a sticky cache on (see
// DESIGN.md), and re-acquiring per call costs one free-index dequeue and
// enqueue, not a correctness gap.
type hazardOwner[T any] struct {
	registry *HazardRegistry[T]
	index    int
}

// Acquire claims a free hazard record. Panics with ErrRegistryExhausted if
// none remain, matching the source's std::terminate() "fatal programmer
// error" contract (spec.md §7).
func (r *HazardRegistry[T]) Acquire() *hazardOwner[T] {
	idx, ok := r.freeIndex.TryPop()
	if !ok {
		panic(ErrRegistryExhausted)
	}
	r.stats.acquires.Add(1)
	return &hazardOwner[T]{registry: r, index: idx}
}

// Protect publishes ptr into the owned hazard record.
func (h *hazardOwner[T]) Protect(ptr *linkedNode[T]) {
	h.registry.records[h.index].protected.Store(ptr)
}

// Get returns the pointer currently published in the owned hazard record.
func (h *hazardOwner[T]) Get() *linkedNode[T] {
	return h.registry.records[h.index].protected.Load()
}

// Clear removes the published pointer from the owned hazard record.
func (h *hazardOwner[T]) Clear() {
	h.registry.records[h.index].protected.Store(nil)
}

// Release returns the owned hazard record to the free-index ring. Clear
// MUST have been called first; Release does not imply Clear.
func (h *hazardOwner[T]) Release() {
	if !h.registry.freeIndex.TryPush(h.index) {
		panic("lockfree: unreachable: free-index ring overflowed on release")
	}
}

// snapshotHazards collects every currently published pointer, the plain
// acquire-load snapshot of Hazard_Ptr.hpp's snapshot_hazard_ptrs.
func (r *HazardRegistry[T]) snapshotHazards() map[*linkedNode[T]]struct{} {
	seen := make(map[*linkedNode[T]]struct{}, len(r.records))
	for i := range r.records {
		if p := r.records[i].protected.Load(); p != nil {
			seen[p] = struct{}{}
		}
	}
	return seen
}

// Retire appends old head to the retired list and triggers reclamation once
// the list crosses half the registry size (spec.md §4.4).
func (r *HazardRegistry[T]) Retire(ptr *linkedNode[T]) {
	r.mu.Lock()
	r.retired = append(r.retired, retiredNode[T]{ptr: ptr})
	shouldReclaim := len(r.retired) >= reclaimThreshold(len(r.records))
	r.mu.Unlock()
	r.stats.retires.Add(1)
	if shouldReclaim {
		r.TryReclaim()
	}
}

// TryReclaim runs one reclamation pass: anything not currently hazarded is
// freed; everything else is kept for the next pass (spec.md §4.4).
func (r *HazardRegistry[T]) TryReclaim() {
	r.mu.Lock()
	if len(r.retired) == 0 {
		r.mu.Unlock()
		return
	}
	pending := r.retired
	r.retired = nil
	r.mu.Unlock()

	hazarded := r.snapshotHazards()
	kept := make([]retiredNode[T], 0, len(pending))
	var reclaimed, keptCount uint64
	for _, ret := range pending {
		if _, protected := hazarded[ret.ptr]; protected {
			kept = append(kept, ret)
			keptCount++
		} else {
			reclaimed++
		}
	}
	r.stats.reclaimed.Add(reclaimed)
	r.stats.kept.Add(keptCount)

	if len(kept) > 0 {
		r.mu.Lock()
		r.retired = append(kept, r.retired...)
		r.mu.Unlock()
	}
}

// Drain forcibly reclaims every retired node regardless of hazards. Only
// safe to call when the owning container is being torn down
// single-threaded (mirrors the destructor sweep in
// Concurrent_Stack_LF_Linked_Hazard_MPMC.hpp).
func (r *HazardRegistry[T]) Drain() {
	r.mu.Lock()
	pending := r.retired
	r.retired = nil
	r.mu.Unlock()
	r.stats.reclaimed.Add(uint64(len(pending)))
}

// Stats returns a snapshot of the registry's diagnostic counters.
func (r *HazardRegistry[T]) Stats() HazardStats {
	return HazardStats{
		Acquires:  r.stats.acquires.Load(),
		Retires:   r.stats.retires.Load(),
		Reclaimed: r.stats.reclaimed.Load(),
		Kept:      r.stats.kept.Load(),
	}
}
