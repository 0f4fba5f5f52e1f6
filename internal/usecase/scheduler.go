package usecase

import (
	"context"
	"time"

	"AnesthUpdate/internal/ports"
)

// Scheduler binds the ticker driver to the ingestion pipeline for daemon
// mode.
type Scheduler struct {
	driver ports.Scheduler
	batch  *Batch
}

// NewScheduler returns a helper to start/stop recurring batch runs.
func NewScheduler(driver ports.Scheduler, batch *Batch) *Scheduler {
	return &Scheduler{driver: driver, batch: batch}
}

// Start registers the batch pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.batch == nil {
		return nil
	}

	job := func(time.Time) {
		_ = s.batch.Run(ctx)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
