package strand

import (
	"runtime"
	"sync"
)

// ThreadScheduler spawns OS worker threads, each pre-installed with a
// fresh fiber Scheduler in its context slot. It carries no state of
// its own; workers outlive it.
type ThreadScheduler struct{}

// NewThreadScheduler constructs a thread scheduler.
func NewThreadScheduler() *ThreadScheduler {
	return new(ThreadScheduler)
}

// Start runs task synchronously on the caller. It exists for symmetry
// with Scheduler.Start.
func (t *ThreadScheduler) Start(task func()) {
	task()
}

// Spawn starts a new worker pinned to its own OS thread. The worker
// installs a fresh Scheduler into its context slot, invokes task, and
// clears its slots on exit, normal or failing.
func (t *ThreadScheduler) Spawn(task func()) {
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer clearSlots()

		SetCurrentScheduler(NewScheduler())
		task()
	}()
}

// NewCond constructs a standard OS condition variable bound to l; a
// nil locker gets a fresh mutex. Callers that need a cooperative
// condition ask a fiber Scheduler instead.
func (t *ThreadScheduler) NewCond(l sync.Locker) Cond {
	return newOSCond(l)
}
