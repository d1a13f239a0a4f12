package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/compassd/compass/internal/directory"
	"github.com/compassd/compass/internal/logger"
	"github.com/compassd/compass/internal/updater"
)

// starter is the slice of the updater the refresher drives.
type starter interface {
	Start(ctx context.Context, l updater.Listener) error
	Cancel()
}

// Refresher periodically runs directory refresh cycles. It decides WHEN
// to refresh; the updater owns the single cycle. One attempt per tick,
// no retry: a failed cycle waits for the next interval or a manual
// trigger.
type Refresher struct {
	updater       starter
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

func NewRefresher(
	u starter,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *Refresher {
	return &Refresher{
		updater:       u,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs an immediate refresh and begins the periodic loop.
func (r *Refresher) Start(ctx context.Context) error {
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.refresh(ctx)
			case <-r.manualTrigger:
				r.logger.Info("manual directory refresh triggered")
				r.refresh(ctx)
			case <-r.stopCh:
				r.updater.Cancel()
				return
			case <-ctx.Done():
				r.updater.Cancel()
				return
			}
		}
	}()

	return nil
}

// Stop stops the refresher and cancels any in-flight cycle.
func (r *Refresher) Stop() {
	close(r.stopCh)
}

func (r *Refresher) refresh(ctx context.Context) {
	err := r.updater.Start(ctx, &logListener{logger: r.logger})
	if errors.Is(err, updater.ErrUpdateInProgress) {
		r.logger.Warn("directory refresh already in progress, skipping")
		return
	}
	if err != nil {
		r.logger.Error("failed to start directory refresh", logger.Error(err))
	}
}

// logListener reduces the updater's terminal callbacks to structured
// logs; the refresher has no UI to notify.
type logListener struct {
	logger logger.Logger
}

func (l *logListener) NoData() {
	l.logger.Warn("directory refresh aborted: no server to contact")
}

func (l *logListener) NetworkNotAvailable() {
	l.logger.Info("directory refresh skipped: network not available")
}

func (l *logListener) OfflineModeEnabled() {
	l.logger.Info("directory refresh skipped: offline mode enabled")
}

func (l *logListener) Error(err error) {
	l.logger.Error("directory refresh failed", logger.Error(err))
}

func (l *logListener) Updated(d *directory.Directory) {
	l.logger.Info("directory refresh complete",
		logger.Int("servers", d.Len()),
		logger.Time("timestamp", d.Timestamp()))
}
