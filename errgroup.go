package strand

import (
	"context"
	"sync"
)

// Group runs fibers as a unit and collects the first error that
// occurs. The first error cancels the context shared by all fibers in
// the group.
type Group struct {
	sched  *Scheduler
	ctx    context.Context
	cancel context.CancelCauseFunc
	mu     sync.Mutex
	wg     WaitGroup
	err    error
}

// NewGroup creates an error group whose fibers run on s. The group
// context derives from ctx; a nil ctx means context.Background.
func (s *Scheduler) NewGroup(ctx context.Context) *Group {
	if ctx == nil {
		ctx = context.Background()
	}
	gctx, cancel := context.WithCancelCause(ctx)
	return &Group{sched: s, ctx: gctx, cancel: cancel}
}

// Go spawns a fiber running f with the group's context. If f returns
// an error, the group context is cancelled with it.
func (g *Group) Go(f func(context.Context) error) {
	g.wg.Add(1)
	g.sched.Spawn(func() {
		defer g.wg.Done()
		if err := f(g.ctx); err != nil {
			g.mu.Lock()
			if g.err == nil {
				g.err = err
				g.cancel(err)
			}
			g.mu.Unlock()
		}
	})
}

// Wait parks until every fiber in the group has finished, then
// returns the first error encountered, or nil. The group context is
// cancelled on return.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.mu.Lock()
	err := g.err
	g.mu.Unlock()
	g.cancel(err)
	return err
}
