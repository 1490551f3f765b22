package strand

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/webriots/coro"
)

// FiberState describes the lifecycle of a Fiber.
type FiberState int32

const (
	// FiberReady means the fiber has been created but not yet resumed.
	FiberReady FiberState = iota
	// FiberRunning means the fiber body is currently executing.
	FiberRunning
	// FiberSuspended means the fiber yielded and is waiting to be
	// resumed.
	FiberSuspended
	// FiberTerminated means the fiber body returned or failed.
	FiberTerminated
)

// String returns the state name.
func (s FiberState) String() string {
	switch s {
	case FiberReady:
		return "ready"
	case FiberRunning:
		return "running"
	case FiberSuspended:
		return "suspended"
	case FiberTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Fiber is a stackful cooperative task. A fiber runs until it yields
// or terminates, is resumed only by its owning scheduler's dispatch
// loop, and never migrates between schedulers. Coroutine stacks are
// goroutine-backed and grow on demand.
type Fiber struct {
	sched   *Scheduler
	n       uint64
	resume  func(struct{}) (struct{}, bool)
	cancel  func()
	suspend func() struct{}
	state   atomic.Int32
	err     error
}

// newFiber wraps task in a coroutine owned by sched. The body
// installs the scheduler and the fiber itself into its goroutine's
// context slot before task runs, and clears the slot on exit. Any
// panic escaping task is captured as the fiber's failure; it never
// crosses the coroutine boundary.
func newFiber(sched *Scheduler, task func()) *Fiber {
	f := &Fiber{sched: sched, n: sched.fiberSeq.Add(1)}

	resume, cancel := coro.New(
		func(yield func(struct{}) struct{}, suspend func() struct{}) (z struct{}) {
			f.suspend = suspend

			s := ensureSlots()
			s.sched = sched
			s.fiber = f
			defer clearSlots()

			defer func() {
				if p := recover(); p != nil {
					f.err = asFiberError(p)
				}
			}()

			task()
			return
		},
	)

	f.resume = resume
	f.cancel = cancel
	return f
}

// run resumes the fiber until its next suspension point. A non-nil
// error means the fiber terminated with a failure that escaped its
// body; run never re-panics.
func (f *Fiber) run() error {
	if f.State() == FiberTerminated {
		return f.err
	}

	f.state.Store(int32(FiberRunning))
	if _, ok := f.resume(struct{}{}); !ok {
		f.state.Store(int32(FiberTerminated))
		return f.err
	}
	f.state.Store(int32(FiberSuspended))
	return nil
}

// release tears down a fiber that will never be resumed again so its
// coroutine stack is reclaimed.
func (f *Fiber) release() {
	if f.State() != FiberTerminated {
		f.state.Store(int32(FiberTerminated))
		f.cancel()
	}
}

// State returns the fiber's current lifecycle state.
func (f *Fiber) State() FiberState {
	return FiberState(f.state.Load())
}

// Yield suspends the calling fiber and returns control to its
// dispatcher. Outside any fiber it yields the processor instead of
// suspending, so it is always safe to call from code that might run
// on a bare thread.
func Yield() {
	yieldFrom(currentFiber())
}

// yieldFrom suspends f, or yields the processor when f is nil. Spin
// loops that already resolved the current fiber call this directly.
func yieldFrom(f *Fiber) {
	if f != nil {
		f.suspend()
		return
	}
	runtime.Gosched()
}

// asFiberError converts a recovered panic value into the fiber's
// failure.
func asFiberError(p any) error {
	if err, ok := p.(error); ok {
		return err
	}
	return fmt.Errorf("strand: fiber panic: %v", p)
}
