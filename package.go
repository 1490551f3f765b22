// Package strand provides a cooperative fiber scheduler and a typed,
// bounded channel that together form a substrate for structured
// message passing between execution contexts.
//
// Key components:
//
//   - Fiber: A stackful cooperative task that suspends only at
//     explicit yield points. Fibers are owned by a Scheduler and
//     never migrate between schedulers.
//
//   - Scheduler: Multiplexes fibers over a single host thread with a
//     round-robin dispatch loop. It also constructs cooperative
//     conditions whose waits yield instead of blocking the host.
//
//   - ThreadScheduler: Spawns worker threads, each pre-installed with
//     a fresh Scheduler in its context slot.
//
//   - Channel: A bounded FIFO with rendezvous fallback. A channel
//     brokers values between any combination of fibers and bare
//     threads; parked fibers yield cooperatively while parked threads
//     block on an OS condition variable.
//
//   - Context slots: Per-goroutine storage of the active scheduler,
//     plus reserved slots for layers built on top of this package.
//
//   - Synchronization primitives: Mutex, WaitGroup, Sema,
//     SingleFlight and Group, all built on the same context-sensitive
//     parking mechanism as the channel.
package strand
