package strand

import "errors"

// ErrOwnerTerminated is the termination signal. When it propagates
// out of a fiber body, the owning scheduler's dispatch loop exits
// cleanly instead of reporting a failure from Start.
var ErrOwnerTerminated = errors.New("strand: owner terminated")

// Terminate raises the termination signal from the calling fiber. The
// fiber's dispatcher observes it and shuts down, leaving any
// remaining fibers unresumed. Calling Terminate outside a fiber
// panics with ErrOwnerTerminated and nothing recovers it.
func Terminate() {
	panic(ErrOwnerTerminated)
}
