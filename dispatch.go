package strand

// Dispatch offloads fn to a worker spawned by ts and parks the caller
// until the result arrives back over a rendezvous channel. A fiber
// caller yields while the worker blocks, so the other fibers of its
// scheduler keep running; a bare-thread caller simply blocks. The
// worker side sends from outside any fiber, exercising the channel's
// OS-condition path against the caller's cooperative one.
func Dispatch[R any](ts *ThreadScheduler, fn func() (R, error)) (R, error) {
	type outcome struct {
		val R
		err error
	}

	ch := NewChannel[outcome](0)
	ts.Spawn(func() {
		var out outcome
		out.val, out.err = fn()
		ch.Send(out)
	})

	var out outcome
	ch.Receive(&out)
	return out.val, out.err
}
