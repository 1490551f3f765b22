package strand

import (
	"sync"

	"github.com/gammazero/deque"
)

// Sema is a counting semaphore for fibers and bare threads. Acquire
// parks on the channel's context-sensitive condition when no permit
// is available; Release hands a permit directly to the frontmost
// parked acquirer.
type Sema struct {
	noCopy noCopy
	mu     sync.Mutex
	n      int
	w      deque.Deque[Cond]
}

// NewSema constructs a semaphore holding n permits. It panics if n is
// negative.
func NewSema(n int) *Sema {
	if n < 0 {
		panic("strand: negative Sema permits")
	}
	return &Sema{n: n}
}

// Acquire takes a permit, parking the caller until one is available.
func (s *Sema) Acquire() {
	s.mu.Lock()
	if s.n > 0 {
		s.n--
		s.mu.Unlock()
		return
	}
	c := newWaitCond()
	s.w.PushBack(c)
	s.mu.Unlock()
	c.Wait()
}

// TryAcquire takes a permit without parking, reporting whether it
// succeeded.
func (s *Sema) TryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.n == 0 {
		return false
	}
	s.n--
	return true
}

// Release returns a permit. The permit passes directly to the
// frontmost parked acquirer, if any.
func (s *Sema) Release() {
	s.mu.Lock()
	if s.w.Len() > 0 {
		c := s.w.PopFront()
		s.mu.Unlock()
		c.Notify()
		return
	}
	s.n++
	s.mu.Unlock()
}

// WaitCount returns the number of parked acquirers.
func (s *Sema) WaitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Len()
}
