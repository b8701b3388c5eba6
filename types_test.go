package lockfree

import "testing"

// Describe is documentation/introspection only (spec.md §9's tagged-variant
// stand-in for a printable C++ template parameter); this just checks every
// container type wires the enums into a non-empty, stable string instead of
// leaving them dead.
func TestDescribe(t *testing.T) {
	cases := []struct {
		name     string
		describe func() string
	}{
		{"RingQueueMPMC", NewRingQueueMPMC[int](8).Describe},
		{"RingQueueMPSC", NewRingQueueMPSC[int](8).Describe},
		{"RingQueueSPMC", NewRingQueueSPMC[int](8).Describe},
		{"RingQueueSPSC", NewRingQueueSPSC[int](8).Describe},
		{"RingQueueBruteForceMPMC", NewRingQueueBruteForceMPMC[int](8).Describe},
		{"RingStackMPMC", NewRingStackMPMC[int](8).Describe},
		{"RingStackBruteForceMPMC", NewRingStackBruteForceMPMC[int](8).Describe},
		{"LinkedStack", NewLinkedStack[int]().Describe},
		{"LinkedStackHazard", NewLinkedStackHazard[int](0).Describe},
		{"BlockingQueue", NewBlockingQueue[int]().Describe},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.describe(); got == "" {
				t.Fatalf("expected a non-empty description")
			}
		})
	}
}

func TestEnumStringers(t *testing.T) {
	if got := Linked.String(); got != "linked" {
		t.Fatalf("expected %q, got %q", "linked", got)
	}
	if got := StaticRingBuffer.String(); got != "static-ring-buffer" {
		t.Fatalf("expected %q, got %q", "static-ring-buffer", got)
	}
	if got := MPMC.String(); got != "MPMC" {
		t.Fatalf("expected %q, got %q", "MPMC", got)
	}
	if got := Ticket.String(); got != "ticket" {
		t.Fatalf("expected %q, got %q", "ticket", got)
	}
	if got := BruteForce.String(); got != "brute-force" {
		t.Fatalf("expected %q, got %q", "brute-force", got)
	}
	if got := HazardPtr.String(); got != "hazard-ptr" {
		t.Fatalf("expected %q, got %q", "hazard-ptr", got)
	}
	if got := NoReclaimer.String(); got != "none" {
		t.Fatalf("expected %q, got %q", "none", got)
	}
	if got := StructureType(255).String(); got != "unknown" {
		t.Fatalf("expected unrecognised value to stringify to %q, got %q", "unknown", got)
	}
}
