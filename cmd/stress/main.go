// Command stress drives the ring and linked containers with configurable
// producer/consumer counts and reports throughput, the runnable
// counterpart to the benchmark shapes already exercised in the package's
// own *_test.go files.
package main

import (
	"flag"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aradilov/lockfree"
)

func main() {
	var (
		container = flag.String("container", "ring-mpmc", "ring-mpmc|ring-stack|linked-stack-hazard")
		capacity  = flag.Uint64("capacity", 1<<16, "ring capacity, power of two")
		producers = flag.Int("producers", runtime.GOMAXPROCS(0), "producer goroutines")
		consumers = flag.Int("consumers", runtime.GOMAXPROCS(0), "consumer goroutines")
		duration  = flag.Duration("duration", 2*time.Second, "run duration")
	)
	flag.Parse()

	var pushed, popped atomic.Int64
	stop := make(chan struct{})

	run := func(push func(int) bool, pop func() (int, bool)) {
		var wg sync.WaitGroup
		wg.Add(*producers + *consumers)
		for p := 0; p < *producers; p++ {
			go func() {
				defer wg.Done()
				i := 0
				for {
					select {
					case <-stop:
						return
					default:
					}
					if push(i) {
						pushed.Add(1)
						i++
					} else {
						runtime.Gosched()
					}
				}
			}()
		}
		for c := 0; c < *consumers; c++ {
			go func() {
				defer wg.Done()
				for {
					select {
					case <-stop:
						return
					default:
					}
					if _, ok := pop(); ok {
						popped.Add(1)
					} else {
						runtime.Gosched()
					}
				}
			}()
		}
		time.Sleep(*duration)
		close(stop)
		wg.Wait()
	}

	switch *container {
	case "ring-mpmc":
		q := lockfree.NewRingQueueMPMC[int](*capacity)
		run(q.TryPush, q.TryPop)
	case "ring-stack":
		s := lockfree.NewRingStackMPMC[int](*capacity)
		run(s.TryPush, s.TryPop)
	case "linked-stack-hazard":
		s := lockfree.NewLinkedStackHazard[int](128)
		run(func(v int) bool { s.Push(v); return true }, s.Pop)
	default:
		fmt.Printf("unknown container %q\n", *container)
		return
	}

	fmt.Printf("pushed=%d popped=%d duration=%s\n", pushed.Load(), popped.Load(), *duration)
}
