package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
)

// SeatReconciler fans out a seat recompute for every live subscription.
type SeatReconciler interface {
	Reconcile(ctx context.Context, d jobs.Dispatcher) error
}

// NoShowSweeper moves scheduled visits that never checked in to no_show.
type NoShowSweeper interface {
	SweepNoShows(ctx context.Context, cutoff time.Time) (int, error)
}

// LifecycleJobs holds the periodic jobs of the lifecycle core.
type LifecycleJobs struct {
	seats      SeatReconciler
	visits     NoShowSweeper
	dispatcher jobs.Dispatcher
	grace      time.Duration
	now        func() time.Time
}

func NewLifecycleJobs(seats SeatReconciler, visits NoShowSweeper, dispatcher jobs.Dispatcher, grace time.Duration) *LifecycleJobs {
	return &LifecycleJobs{
		seats:      seats,
		visits:     visits,
		dispatcher: dispatcher,
		grace:      grace,
		now:        time.Now,
	}
}

// RegisterJobs adds the jobs to the scheduler with the given intervals.
func (j *LifecycleJobs) RegisterJobs(scheduler *Scheduler, noShowEvery, reconcileEvery time.Duration) {
	scheduler.AddJob("visitor_no_show_sweep", noShowEvery, j.SweepNoShows)
	scheduler.AddJob("billing_seat_reconcile", reconcileEvery, j.ReconcileSeats)
}

// SweepNoShows marks scheduled visits whose end passed more than the grace period ago.
func (j *LifecycleJobs) SweepNoShows(ctx context.Context) error {
	cutoff := j.now().Add(-j.grace)
	n, err := j.visits.SweepNoShows(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("sweep no-shows: %w", err)
	}
	if n > 0 {
		slog.Info("Visits marked as no-show", "count", n, "cutoff", cutoff)
	}
	return nil
}

func (j *LifecycleJobs) ReconcileSeats(ctx context.Context) error {
	return j.seats.Reconcile(ctx, j.dispatcher)
}
