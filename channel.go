package strand

import (
	"sync"

	"github.com/gammazero/deque"
)

// waiter carries one parked channel operation across a park/unpark
// boundary. Receivers carry a destination pointer; senders carry the
// offered value. ok records the delivery outcome and is written
// before the waiter is notified.
type waiter[T any] struct {
	dst  *T
	val  T
	ok   bool
	cond Cond
}

// Channel is a bounded FIFO of T with rendezvous fallback. Capacity 0
// means pure rendezvous: send and receive must pair before either
// proceeds. A channel brokers values between fibers sharing one
// thread, fibers across threads, and bare threads with no scheduler
// at all; each operation either completes synchronously or parks the
// caller on a per-operation waiter.
//
// Parked waiters are released in FIFO order, and buffered items are
// delivered in FIFO order. A send into a full, unclosed channel with
// no receivers parks indefinitely; TryReceive is the only
// non-blocking path.
type Channel[T any] struct {
	mu       sync.Mutex
	closed   bool
	capacity int
	buf      deque.Deque[T]
	sendq    deque.Deque[*waiter[T]]
	recvq    deque.Deque[*waiter[T]]
}

// NewChannel constructs a channel with the given capacity. It panics
// if capacity is negative.
func NewChannel[T any](capacity int) *Channel[T] {
	if capacity < 0 {
		panic("strand: negative channel capacity")
	}
	return &Channel[T]{capacity: capacity}
}

// Send delivers v to a parked receiver, or into the buffer when it
// has room; otherwise it parks the caller until a receiver takes v
// directly. A receiver takes a parked sender's value ahead of any
// buffered items. It reports whether the value was delivered:
// false means the channel closed before delivery, including a close
// that woke a parked sender.
func (ch *Channel[T]) Send(v T) bool {
	ch.mu.Lock()
	if ch.closed {
		ch.mu.Unlock()
		return false
	}
	if ch.recvq.Len() > 0 {
		w := ch.recvq.PopFront()
		*w.dst = v
		w.ok = true
		ch.mu.Unlock()
		w.cond.Notify()
		return true
	}
	if ch.buf.Len() < ch.capacity {
		ch.buf.PushBack(v)
		ch.mu.Unlock()
		return true
	}

	w := &waiter[T]{val: v, cond: newWaitCond()}
	ch.sendq.PushBack(w)
	ch.mu.Unlock()
	w.cond.Wait()
	return w.ok
}

// Receive takes a value into dst, parking the caller until one is
// available. It reports whether a value arrived: on a closed channel
// it writes T's zero value through dst and returns false.
func (ch *Channel[T]) Receive(dst *T) bool {
	ch.mu.Lock()
	if ch.closed {
		var zero T
		*dst = zero
		ch.mu.Unlock()
		return false
	}
	if ch.sendq.Len() > 0 {
		w := ch.sendq.PopFront()
		*dst = w.val
		w.ok = true
		ch.mu.Unlock()
		w.cond.Notify()
		return true
	}
	if ch.buf.Len() > 0 {
		*dst = ch.buf.PopFront()
		ch.mu.Unlock()
		return true
	}

	w := &waiter[T]{dst: dst, cond: newWaitCond()}
	ch.recvq.PushBack(w)
	ch.mu.Unlock()
	w.cond.Wait()
	return w.ok
}

// TryReceive is Receive without the park: when no value is
// immediately available it returns false instead of waiting. It never
// parks the caller; releasing a parked sender calls its condition's
// Notify, which yields once when both are cooperative fibers.
func (ch *Channel[T]) TryReceive(dst *T) bool {
	ch.mu.Lock()
	if ch.closed {
		var zero T
		*dst = zero
		ch.mu.Unlock()
		return false
	}
	if ch.sendq.Len() > 0 {
		w := ch.sendq.PopFront()
		*dst = w.val
		w.ok = true
		ch.mu.Unlock()
		w.cond.Notify()
		return true
	}
	if ch.buf.Len() > 0 {
		*dst = ch.buf.PopFront()
		ch.mu.Unlock()
		return true
	}
	ch.mu.Unlock()
	return false
}

// Close marks the channel closed, clears the buffer, and wakes every
// parked waiter in FIFO order. Woken receivers observe the zero value
// and a false return; woken senders observe a false return because
// their value was never delivered. Close is idempotent.
func (ch *Channel[T]) Close() {
	ch.mu.Lock()
	if ch.closed {
		ch.mu.Unlock()
		return
	}
	ch.closed = true

	woken := make([]*waiter[T], 0, ch.recvq.Len()+ch.sendq.Len())
	for ch.recvq.Len() > 0 {
		w := ch.recvq.PopFront()
		var zero T
		*w.dst = zero
		w.ok = false
		woken = append(woken, w)
	}
	ch.buf.Clear()
	for ch.sendq.Len() > 0 {
		w := ch.sendq.PopFront()
		w.ok = false
		woken = append(woken, w)
	}
	ch.mu.Unlock()

	for _, w := range woken {
		w.cond.Notify()
	}
}

// IsClosed reports a snapshot of the closed flag.
func (ch *Channel[T]) IsClosed() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.closed
}
