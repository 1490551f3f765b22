package strand

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartRunsTask(t *testing.T) {
	r := require.New(t)

	s := NewScheduler()
	n := 0
	r.NoError(s.Start(func() { n++ }))
	r.Equal(1, n)
}

func TestRoundRobinOrder(t *testing.T) {
	r := require.New(t)

	s := NewScheduler()
	var order []string
	mark := func(l string) { order = append(order, l) }

	err := s.Start(func() {
		mark("r1")
		s.Spawn(func() {
			mark("a1")
			Yield()
			mark("a2")
		})
		mark("r2")
		s.Spawn(func() {
			mark("b1")
			Yield()
			mark("b2")
		})
		mark("r3")
	})

	r.NoError(err)
	r.Equal([]string{"r1", "a1", "r2", "a2", "b1", "r3", "b2"}, order)
}

func TestStartReentrant(t *testing.T) {
	r := require.New(t)

	s := NewScheduler()
	inner := false
	err := s.Start(func() {
		r.NoError(s.Start(func() { inner = true }))
	})

	r.NoError(err)
	r.False(inner)
}

func TestStop(t *testing.T) {
	r := require.New(t)

	s := NewScheduler()
	var spins atomic.Int64
	err := s.Start(func() {
		s.Spawn(func() {
			for {
				spins.Add(1)
				Yield()
			}
		})
		Yield()
		s.Stop()
	})

	r.NoError(err)
	r.Positive(spins.Load())

	at := spins.Load()
	time.Sleep(10 * time.Millisecond)
	r.Equal(at, spins.Load())
}

func TestTerminationSignal(t *testing.T) {
	r := require.New(t)

	s := NewScheduler()
	err := s.Start(func() {
		s.Spawn(func() {
			for {
				Yield()
			}
		})
		Terminate()
	})

	r.NoError(err)
}

func TestPropagatedFailure(t *testing.T) {
	r := require.New(t)

	boom := errors.New("boom")
	s := NewScheduler()
	err := s.Start(func() {
		s.Spawn(func() { panic(boom) })
	})

	r.Error(err)
	r.ErrorIs(err, boom)
}

func TestPropagatedPanicValue(t *testing.T) {
	r := require.New(t)

	s := NewScheduler()
	err := s.Start(func() { panic("uh oh") })

	r.Error(err)
	r.Contains(err.Error(), "uh oh")
}

func TestYieldOutsideFiber(t *testing.T) {
	require.NotPanics(t, Yield)
}

func TestFiberLifecycle(t *testing.T) {
	r := require.New(t)

	s := NewScheduler()
	var mid FiberState
	f := newFiber(s, func() {
		Yield()
	})
	r.Equal(FiberReady, f.State())

	r.NoError(f.run())
	mid = f.State()
	r.Equal(FiberSuspended, mid)

	r.NoError(f.run())
	r.Equal(FiberTerminated, f.State())
}

func TestFiberStateString(t *testing.T) {
	r := require.New(t)

	r.Equal("ready", FiberReady.String())
	r.Equal("running", FiberRunning.String())
	r.Equal("suspended", FiberSuspended.String())
	r.Equal("terminated", FiberTerminated.String())
}

func TestThreadSchedulerStart(t *testing.T) {
	r := require.New(t)

	ts := NewThreadScheduler()
	n := 0
	ts.Start(func() { n++ })
	r.Equal(1, n)
}

func TestSpawnManyFibersDrain(t *testing.T) {
	r := require.New(t)

	s := NewScheduler()
	var n atomic.Int64
	err := s.Start(func() {
		for i := 0; i < 100; i++ {
			s.Spawn(func() {
				Yield()
				n.Add(1)
			})
		}
	})

	r.NoError(err)
	r.Equal(int64(100), n.Load())
}
