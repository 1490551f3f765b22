package strand

import (
	"context"
	"errors"
	"fmt"
	"runtime/trace"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

const (
	schedTraceTaskType = "strand-sched"
	traceCategory      = "strand"
)

// Scheduler multiplexes fibers over a single host thread. Fibers are
// dispatched strict round-robin in insertion order; a fiber runs
// until it yields or terminates, and terminated fibers are removed in
// the iteration that observes their termination. The dispatcher is
// not re-entrant.
type Scheduler struct {
	id         string
	fiberSeq   atomic.Uint64
	terminated atomic.Bool

	mu          sync.Mutex
	fibers      []*Fiber
	pos         int
	dispatching bool
}

// NewScheduler constructs an empty scheduler. The id is only used to
// label trace output.
func NewScheduler() *Scheduler {
	return &Scheduler{id: uuid.NewString()[:8]}
}

// Start wraps task in the scheduler's first fiber and runs the
// dispatch loop until no fibers remain or the scheduler stops. A
// failure that escaped a fiber body is returned; the termination
// signal exits cleanly with nil. Start while already dispatching is a
// no-op returning nil.
func (s *Scheduler) Start(task func()) error {
	s.mu.Lock()
	if s.dispatching {
		s.mu.Unlock()
		return nil
	}
	s.dispatching = true
	s.fibers = append(s.fibers, newFiber(s, task))
	s.mu.Unlock()

	ctx, tracer := trace.NewTask(context.Background(), schedTraceTaskType)
	defer tracer.End()
	s.logf(ctx, "START")

	err := s.dispatch(ctx)

	s.mu.Lock()
	s.dispatching = false
	s.mu.Unlock()
	return err
}

// Spawn creates a fiber for task and appends it to the tail of the
// ready list, then yields so the dispatcher reaches the newcomer
// promptly.
func (s *Scheduler) Spawn(task func()) {
	f := newFiber(s, task)
	s.mu.Lock()
	s.fibers = append(s.fibers, f)
	s.mu.Unlock()
	Yield()
}

// Stop requests dispatch shutdown. The flag is monotonic and observed
// between dispatch iterations; the running fiber is not interrupted.
func (s *Scheduler) Stop() {
	s.terminated.Store(true)
}

// NewCond constructs a cooperative condition bound to this scheduler.
// A nil locker defaults to the scheduler's internal fiber-list mutex.
// Supply a locker shared with the notifier to synchronize the
// condition across host threads.
func (s *Scheduler) NewCond(l sync.Locker) Cond {
	if l == nil {
		l = &s.mu
	}
	return &fiberCond{sched: s, l: l}
}

// dispatch is the round-robin resumption loop.
func (s *Scheduler) dispatch(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.terminated.Load() || len(s.fibers) == 0 {
			s.shutdownLocked(ctx)
			return nil
		}
		if s.pos >= len(s.fibers) {
			s.pos = 0
		}
		f := s.fibers[s.pos]
		s.mu.Unlock()

		if err := f.run(); err != nil {
			if errors.Is(err, ErrOwnerTerminated) {
				s.logf(ctx, "FIBER %d TERMINATE", f.n)
				s.mu.Lock()
				s.shutdownLocked(ctx)
				return nil
			}
			s.logf(ctx, "FIBER %d FAIL", f.n)
			s.mu.Lock()
			s.shutdownLocked(ctx)
			return err
		}

		s.mu.Lock()
		if f.State() == FiberTerminated {
			s.logf(ctx, "FIBER %d EXIT", f.n)
			if i := slices.Index(s.fibers, f); i >= 0 {
				s.fibers = slices.Delete(s.fibers, i, i+1)
			}
			if s.pos >= len(s.fibers) {
				s.pos = 0
			}
		} else {
			s.pos++
			if s.pos >= len(s.fibers) {
				s.pos = 0
			}
		}
		term := s.terminated.Load()
		s.mu.Unlock()

		if term {
			s.logf(ctx, "STOP")
			s.mu.Lock()
			s.shutdownLocked(ctx)
			return nil
		}
	}
}

// shutdownLocked empties the ready list and releases any still-live
// fibers so their coroutine stacks are reclaimed. Called with s.mu
// held; it unlocks before cancelling so fiber teardown never runs
// under the scheduler lock.
func (s *Scheduler) shutdownLocked(ctx context.Context) {
	live := s.fibers
	s.fibers = nil
	s.pos = 0
	s.mu.Unlock()

	for _, f := range live {
		if f.State() != FiberTerminated {
			s.logf(ctx, "FIBER %d RELEASE", f.n)
			f.release()
		}
	}
	s.logf(ctx, "DONE")
}

// logf emits a trace log entry labeled with the scheduler id.
func (s *Scheduler) logf(ctx context.Context, format string, args ...any) {
	if trace.IsEnabled() {
		trace.Log(ctx, traceCategory, s.id+" "+fmt.Sprintf(format, args...))
	}
}
