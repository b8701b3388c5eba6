package lockfree

// StructureType identifies the backing storage of a container.
type StructureType uint8

const (
	Linked StructureType = iota
	StaticRingBuffer
)

func (s StructureType) String() string {
	switch s {
	case Linked:
		return "linked"
	case StaticRingBuffer:
		return "static-ring-buffer"
	default:
		return "unknown"
	}
}

// ConcurrencyModel identifies how many producers and consumers a container
// is built to tolerate concurrently.
type ConcurrencyModel uint8

const (
	SPSC ConcurrencyModel = iota
	SPMC
	MPSC
	MPMC
)

func (c ConcurrencyModel) String() string {
	switch c {
	case SPSC:
		return "SPSC"
	case SPMC:
		return "SPMC"
	case MPSC:
		return "MPSC"
	case MPMC:
		return "MPMC"
	default:
		return "unknown"
	}
}

// RingDesign selects the slot synchronisation protocol for a ring container.
type RingDesign uint8

const (
	Ticket RingDesign = iota
	BruteForce
)

func (r RingDesign) String() string {
	switch r {
	case Ticket:
		return "ticket"
	case BruteForce:
		return "brute-force"
	default:
		return "unknown"
	}
}

// Reclaimer selects the safe-memory-reclamation scheme for a linked
// container's pop path.
type Reclaimer uint8

const (
	NoReclaimer Reclaimer = iota
	HazardPtr
)

func (r Reclaimer) String() string {
	switch r {
	case NoReclaimer:
		return "none"
	case HazardPtr:
		return "hazard-ptr"
	default:
		return "unknown"
	}
}

// isPow2 reports whether capacity is a nonzero power of two, the
// construction precondition for every ring container (spec.md §6).
func isPow2(capacity uint64) bool {
	return capacity != 0 && capacity&(capacity-1) == 0
}
