package scheduler

import (
	"context"
	"time"
)

// Ticker repeats a job at a fixed interval, starting immediately.
type Ticker struct {
	interval time.Duration
}

// NewTicker builds a scheduler; a non-positive interval runs the job once.
func NewTicker(interval time.Duration) *Ticker {
	return &Ticker{interval: interval}
}

// Run blocks until ctx is done or the job returns an error.
// Jobs never overlap: a tick that fires while a job runs is dropped.
func (t *Ticker) Run(ctx context.Context, job func(context.Context, time.Time) error) error {
	if job == nil {
		return nil
	}
	if err := job(ctx, time.Now()); err != nil {
		return err
	}
	if t.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if ctx.Err() != nil {
				return nil
			}
			if err := job(ctx, now); err != nil {
				return err
			}
		}
	}
}
