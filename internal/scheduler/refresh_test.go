package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/compassd/compass/internal/logger"
	"github.com/compassd/compass/internal/updater"
)

type fakeStarter struct {
	starts  atomic.Int64
	cancels atomic.Int64
	err     error
	started chan struct{}
}

func newFakeStarter(err error) *fakeStarter {
	return &fakeStarter{err: err, started: make(chan struct{}, 8)}
}

func (f *fakeStarter) Start(ctx context.Context, l updater.Listener) error {
	f.starts.Add(1)
	select {
	case f.started <- struct{}{}:
	default:
	}
	return f.err
}

func (f *fakeStarter) Cancel() {
	f.cancels.Add(1)
}

func TestRefresherRunsImmediately(t *testing.T) {
	f := newFakeStarter(nil)
	r := NewRefresher(f, logger.NewNop(), time.Hour, make(chan struct{}, 1))

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer r.Stop()

	if got := f.starts.Load(); got != 1 {
		t.Errorf("starts = %d, want 1 immediate refresh", got)
	}
}

func TestRefresherManualTrigger(t *testing.T) {
	f := newFakeStarter(nil)
	trigger := make(chan struct{}, 1)
	r := NewRefresher(f, logger.NewNop(), time.Hour, trigger)

	if err := r.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer r.Stop()

	<-f.started // immediate refresh
	trigger <- struct{}{}

	select {
	case <-f.started:
	case <-time.After(3 * time.Second):
		t.Fatal("manual trigger did not run a refresh")
	}
	if got := f.starts.Load(); got != 2 {
		t.Errorf("starts = %d, want 2", got)
	}
}

func TestRefresherPeriodicTick(t *testing.T) {
	f := newFakeStarter(nil)
	r := NewRefresher(f, logger.NewNop(), 20*time.Millisecond, make(chan struct{}, 1))

	if err := r.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer r.Stop()

	<-f.started // immediate refresh
	select {
	case <-f.started: // first tick
	case <-time.After(3 * time.Second):
		t.Fatal("ticker did not run a refresh")
	}
}

func TestRefresherStopCancelsUpdater(t *testing.T) {
	f := newFakeStarter(nil)
	r := NewRefresher(f, logger.NewNop(), time.Hour, make(chan struct{}, 1))

	if err := r.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	r.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if f.cancels.Load() == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Errorf("cancels = %d, want 1 after Stop", f.cancels.Load())
}

func TestRefresherInProgressIsSkippedQuietly(t *testing.T) {
	f := newFakeStarter(updater.ErrUpdateInProgress)
	r := NewRefresher(f, logger.NewNop(), time.Hour, make(chan struct{}, 1))

	// Must not blow up; the in-flight session owns the cycle.
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	r.Stop()
}
