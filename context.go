package strand

import (
	"runtime"
	"sync"
)

// slots is the per-goroutine context record. It holds the installed
// scheduler, the fiber currently hosting the goroutine (set only
// inside fiber bodies), and two reserved slots consumed by layers
// built on top of this package.
type slots struct {
	sched       *Scheduler
	fiber       *Fiber
	transceiver any
	waitmgr     any
}

var (
	slotMu  sync.RWMutex
	slotTab = make(map[uint64]*slots)
)

// gid parses the current goroutine's id out of the runtime.Stack
// header, which begins "goroutine NNN [". It is used only to key the
// slot table.
func gid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// currentSlots returns the calling goroutine's slots, or nil when
// none have been installed.
func currentSlots() *slots {
	g := gid()
	slotMu.RLock()
	s := slotTab[g]
	slotMu.RUnlock()
	return s
}

// ensureSlots returns the calling goroutine's slots, creating them on
// first use.
func ensureSlots() *slots {
	g := gid()
	slotMu.Lock()
	s := slotTab[g]
	if s == nil {
		s = new(slots)
		slotTab[g] = s
	}
	slotMu.Unlock()
	return s
}

// clearSlots removes the calling goroutine's slots. Thread-scheduler
// workers and fiber bodies call it on exit, so slot lifetime matches
// the lifetime of the context that installed them.
func clearSlots() {
	g := gid()
	slotMu.Lock()
	delete(slotTab, g)
	slotMu.Unlock()
}

// currentFiber returns the fiber hosting the calling goroutine, or
// nil when the caller is not running inside a fiber body.
func currentFiber() *Fiber {
	if s := currentSlots(); s != nil {
		return s.fiber
	}
	return nil
}

// CurrentScheduler returns the scheduler installed in the calling
// goroutine's context slot. It returns nil when no scheduler has been
// installed, which is how channel operations detect bare-thread
// callers.
func CurrentScheduler() *Scheduler {
	if s := currentSlots(); s != nil {
		return s.sched
	}
	return nil
}

// SetCurrentScheduler installs sched into the calling goroutine's
// context slot. The installer retains ownership of the scheduler and
// remains responsible for its teardown.
func SetCurrentScheduler(sched *Scheduler) {
	ensureSlots().sched = sched
}

// CurrentTransceiver returns the reserved transceiver slot. The core
// never reads it; it exists for the request/response layer built on
// top of this package.
func CurrentTransceiver() any {
	if s := currentSlots(); s != nil {
		return s.transceiver
	}
	return nil
}

// SetCurrentTransceiver stores v in the reserved transceiver slot.
func SetCurrentTransceiver(v any) {
	ensureSlots().transceiver = v
}

// CurrentWaitingManager returns the reserved waiting-manager slot.
// The core never reads it.
func CurrentWaitingManager() any {
	if s := currentSlots(); s != nil {
		return s.waitmgr
	}
	return nil
}

// SetCurrentWaitingManager stores v in the reserved waiting-manager
// slot.
func SetCurrentWaitingManager(v any) {
	ensureSlots().waitmgr = v
}
