package strand

import (
	"sync"

	"github.com/gammazero/deque"
)

// Mutex provides mutual exclusion across fibers and bare threads. It
// allows only one holder at a time; contenders park on the same
// context-sensitive condition the channel uses, so a fiber contender
// yields while a thread contender blocks. Unlock hands the mutex
// directly to the longest-parked contender.
type Mutex struct {
	noCopy noCopy
	mu     sync.Mutex
	locked bool
	w      deque.Deque[Cond]
}

// Lock acquires the mutex, parking the caller until it is available.
func (m *Mutex) Lock() {
	m.mu.Lock()
	if !m.locked {
		m.locked = true
		m.mu.Unlock()
		return
	}
	c := newWaitCond()
	m.w.PushBack(c)
	m.mu.Unlock()
	c.Wait()
}

// TryLock acquires the mutex without parking, reporting whether it
// succeeded.
func (m *Mutex) TryLock() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked {
		return false
	}
	m.locked = true
	return true
}

// Unlock releases the mutex. Ownership transfers to the frontmost
// parked contender, if any. Unlocking an unlocked mutex panics.
func (m *Mutex) Unlock() {
	m.mu.Lock()
	if !m.locked {
		m.mu.Unlock()
		panic("strand: unlock of unlocked Mutex")
	}
	if m.w.Len() > 0 {
		c := m.w.PopFront()
		m.mu.Unlock()
		c.Notify()
		return
	}
	m.locked = false
	m.mu.Unlock()
}

// WaitCount returns the number of parked contenders.
func (m *Mutex) WaitCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.w.Len()
}
