package scheduler

import (
	"context"
	"time"

	"AnesthUpdate/internal/ports"
)

// TickerScheduler drives daemon-mode batch runs on a fixed interval. The
// external scheduler (cron, CI) remains the primary trigger; this exists for
// long-running deployments.
type TickerScheduler struct {
	interval time.Duration
	done     chan struct{}
}

var _ ports.Scheduler = (*TickerScheduler)(nil)

// NewTickerScheduler builds a scheduler with the given run interval.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &TickerScheduler{interval: interval}
}

// Start runs the job immediately, then on every tick until Stop or context
// cancellation.
func (t *TickerScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if t.done != nil {
		return nil
	}

	done := make(chan struct{})
	t.done = done
	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case tick := <-ticker.C:
				job(tick)
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine. Safe to call more than once.
func (t *TickerScheduler) Stop(ctx context.Context) error {
	if t.done == nil {
		return nil
	}
	close(t.done)
	t.done = nil
	return nil
}
