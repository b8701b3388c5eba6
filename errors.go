package lockfree

import "fmt"

var (
	// ErrEmpty names the Empty condition. No operation in this package returns
	// it: TryPop and the unbounded Pop methods report Empty as ok=false.
	ErrEmpty = fmt.Errorf("lockfree: container is empty")
	// ErrFull names the Full condition. No operation in this package returns
	// it: TryPush reports Full as false.
	ErrFull = fmt.Errorf("lockfree: ring is full")
	// ErrTerminated names the drained-after-Stop condition of BlockingQueue.
	// BlockingQueue.Pop reports it as ok=false and does not return this value.
	ErrTerminated = fmt.Errorf("lockfree: queue terminated")
	// ErrRegistryExhausted is the panic value of HazardRegistry.Acquire when
	// every hazard record is owned and a new one is requested. Per spec.md §7
	// this is a fatal programmer error; Acquire never returns it, but it is
	// exported so a caller wrapping Acquire in recover() can identify the cause.
	ErrRegistryExhausted = fmt.Errorf("lockfree: hazard-pointer registry exhausted")
)
