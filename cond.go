package strand

import (
	"sync"
	"sync/atomic"
	"time"
)

// Cond is a condition-variable analog served either cooperatively by
// a fiber scheduler or by an OS condition variable. Notify and
// NotifyAll are intentionally equivalent: the notified flag is a
// single boolean, and the first waiter to observe it consumes it.
type Cond interface {
	// Wait parks the caller until the condition is notified. A fiber
	// waits by yielding, never blocking its host thread; a bare
	// thread genuinely blocks. The notified flag is reset on return.
	Wait()

	// WaitFor waits like Wait but gives up once d has elapsed,
	// measured against a monotonic deadline taken on entry. It
	// reports whether the wait ended by notification. The notified
	// flag is reset on return either way.
	WaitFor(d time.Duration) bool

	// Notify marks the condition notified. A cooperative condition
	// then yields once so a waiter gets a prompt chance to observe
	// it; an OS condition signals one blocked waiter without yielding.
	Notify()

	// NotifyAll is equivalent to Notify: only one waiter observes the
	// flag because the woken waiter resets it.
	NotifyAll()
}

// fiberCond is the cooperative condition constructed by a Scheduler.
// Wait spins on yield until the notified flag is set. The flag is
// atomic so a peer on another host thread can notify a waiting fiber;
// the optional locker additionally serializes flag accesses with
// caller-held invariants.
type fiberCond struct {
	sched    *Scheduler
	l        sync.Locker
	notified atomic.Bool
}

func (c *fiberCond) Wait() {
	f := currentFiber()
	for !c.take() {
		yieldFrom(f)
	}
}

func (c *fiberCond) WaitFor(d time.Duration) bool {
	f := currentFiber()
	deadline := time.Now().Add(d)
	for !c.take() {
		if !time.Now().Before(deadline) {
			c.reset()
			return false
		}
		yieldFrom(f)
	}
	return true
}

func (c *fiberCond) Notify() {
	if c.l != nil {
		c.l.Lock()
		c.notified.Store(true)
		c.l.Unlock()
	} else {
		c.notified.Store(true)
	}
	Yield()
}

func (c *fiberCond) NotifyAll() {
	c.Notify()
}

// take consumes the notified flag, reporting whether it was set.
func (c *fiberCond) take() bool {
	if c.l != nil {
		c.l.Lock()
		defer c.l.Unlock()
	}
	return c.notified.CompareAndSwap(true, false)
}

// reset clears the notified flag unconditionally.
func (c *fiberCond) reset() {
	if c.l != nil {
		c.l.Lock()
		defer c.l.Unlock()
	}
	c.notified.Store(false)
}

// osCond wraps a standard condition variable with the same notified
// flag protocol as fiberCond. Wait acquires the locker itself; do not
// hold it around the call.
type osCond struct {
	l        sync.Locker
	cond     *sync.Cond
	notified bool
}

// newOSCond constructs an OS condition bound to l. A nil locker gets
// a fresh mutex of its own.
func newOSCond(l sync.Locker) *osCond {
	if l == nil {
		l = new(sync.Mutex)
	}
	return &osCond{l: l, cond: sync.NewCond(l)}
}

func (c *osCond) Wait() {
	c.l.Lock()
	for !c.notified {
		c.cond.Wait()
	}
	c.notified = false
	c.l.Unlock()
}

func (c *osCond) WaitFor(d time.Duration) bool {
	deadline := time.Now().Add(d)
	c.l.Lock()
	defer c.l.Unlock()
	for !c.notified {
		left := time.Until(deadline)
		if left <= 0 {
			c.notified = false
			return false
		}
		t := time.AfterFunc(left, c.cond.Broadcast)
		c.cond.Wait()
		t.Stop()
	}
	c.notified = false
	return true
}

func (c *osCond) Notify() {
	c.l.Lock()
	c.notified = true
	c.l.Unlock()
	c.cond.Signal()
}

func (c *osCond) NotifyAll() {
	c.l.Lock()
	c.notified = true
	c.l.Unlock()
	c.cond.Broadcast()
}

// newWaitCond picks the parking condition for the caller: a
// cooperative condition when the caller runs inside a fiber with a
// scheduler installed in its context slot, an OS condition variable
// with its own mutex otherwise. Wakers call Notify without knowing
// which kind of waiter they release.
func newWaitCond() Cond {
	if s := currentSlots(); s != nil && s.fiber != nil && s.sched != nil {
		return &fiberCond{sched: s.sched}
	}
	return newOSCond(nil)
}
