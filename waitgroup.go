package strand

import (
	"sync"

	"github.com/gammazero/deque"
)

// WaitGroup waits for a collection of fibers or threads to finish.
// Workers call Add(1) when they start and Done() when they finish;
// other contexts call Wait() to park until the counter reaches zero.
// Each waiter parks on its own condition, so reaching zero releases
// every waiter, not just the first.
type WaitGroup struct {
	noCopy noCopy
	mu     sync.Mutex
	n      int
	w      deque.Deque[Cond]
}

// Add adds delta to the counter. When the counter reaches zero, all
// parked waiters are released. A negative counter panics.
func (wg *WaitGroup) Add(delta int) {
	wg.mu.Lock()
	wg.n += delta
	if wg.n < 0 {
		wg.mu.Unlock()
		panic("strand: negative WaitGroup counter")
	}
	if wg.n > 0 || wg.w.Len() == 0 {
		wg.mu.Unlock()
		return
	}
	woken := make([]Cond, 0, wg.w.Len())
	for wg.w.Len() > 0 {
		woken = append(woken, wg.w.PopFront())
	}
	wg.mu.Unlock()

	for _, c := range woken {
		c.Notify()
	}
}

// Done decrements the counter by one.
func (wg *WaitGroup) Done() {
	wg.Add(-1)
}

// Wait parks the caller until the counter is zero. If it is already
// zero, Wait returns immediately.
func (wg *WaitGroup) Wait() {
	wg.mu.Lock()
	if wg.n == 0 {
		wg.mu.Unlock()
		return
	}
	c := newWaitCond()
	wg.w.PushBack(c)
	wg.mu.Unlock()
	c.Wait()
}
