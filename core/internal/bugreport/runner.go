package bugreport

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

var ErrRunInProgress = errors.New("a bug report is already being collected")

// Runner executes collections on a background goroutine, at most one at a
// time. A request made while a run is in flight is rejected, not queued.
type Runner struct {
	collector *Collector
	slot      *semaphore.Weighted
}

func NewRunner(c *Collector) *Runner {
	return &Runner{collector: c, slot: semaphore.NewWeighted(1)}
}

// Start launches a run and returns a channel that receives its Report once.
func (r *Runner) Start(ctx context.Context, notify Notifier) (<-chan Report, error) {
	if !r.slot.TryAcquire(1) {
		return nil, ErrRunInProgress
	}
	runID := uuid.NewString()
	done := make(chan Report, 1)
	go func() {
		rep := r.collector.Collect(ctx, runID, notify)
		r.slot.Release(1)
		done <- rep
		close(done)
	}()
	return done, nil
}

// Run starts a collection and waits for it to finish.
func (r *Runner) Run(ctx context.Context, notify Notifier) (Report, error) {
	done, err := r.Start(ctx, notify)
	if err != nil {
		return Report{}, err
	}
	return <-done, nil
}

func (r *Runner) Running() bool {
	if r.slot.TryAcquire(1) {
		r.slot.Release(1)
		return false
	}
	return true
}
