package strand

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurrentSchedulerUnset(t *testing.T) {
	r := require.New(t)

	got := make(chan *Scheduler, 1)
	go func() {
		got <- CurrentScheduler()
	}()
	r.Nil(<-got)
}

func TestSetCurrentScheduler(t *testing.T) {
	r := require.New(t)

	s := NewScheduler()
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer clearSlots()
		SetCurrentScheduler(s)
		r.Same(s, CurrentScheduler())
	}()
	<-done
}

func TestSlotIsolation(t *testing.T) {
	r := require.New(t)

	s := NewScheduler()
	installed := make(chan struct{})
	release := make(chan struct{})
	go func() {
		defer clearSlots()
		SetCurrentScheduler(s)
		close(installed)
		<-release
	}()

	<-installed
	observed := make(chan *Scheduler, 1)
	go func() {
		observed <- CurrentScheduler()
	}()
	r.Nil(<-observed)
	close(release)
}

func TestReservedSlots(t *testing.T) {
	r := require.New(t)

	done := make(chan struct{})
	go func() {
		defer close(done)

		r.Nil(CurrentTransceiver())
		r.Nil(CurrentWaitingManager())

		SetCurrentTransceiver("trx")
		SetCurrentWaitingManager("wm")
		r.Equal("trx", CurrentTransceiver())
		r.Equal("wm", CurrentWaitingManager())

		// Teardown clears every slot for this context.
		clearSlots()
		r.Nil(CurrentTransceiver())
		r.Nil(CurrentWaitingManager())
		r.Nil(CurrentScheduler())
	}()
	<-done
}

func TestThreadSchedulerInstallsScheduler(t *testing.T) {
	r := require.New(t)

	ts := NewThreadScheduler()
	got := make(chan *Scheduler, 1)
	ts.Spawn(func() {
		got <- CurrentScheduler()
	})
	r.NotNil(<-got)
}

func TestFiberSeesOwnScheduler(t *testing.T) {
	r := require.New(t)

	s := NewScheduler()
	var got *Scheduler
	err := s.Start(func() {
		got = CurrentScheduler()
	})

	r.NoError(err)
	r.Same(s, got)
}
