// Package scheduler runs a job once a day at a fixed wall-clock hour.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Chamindu18/task-management-system/internal/pkg/metrics"
)

// Job is the unit of work fired on each tick. It returns how many items it
// handled.
type Job interface {
	DispatchDue(ctx context.Context) (int, error)
}

// DailyRunner fires Job once per day at Hour:00 in Location.
type DailyRunner struct {
	job      Job
	hour     int
	location *time.Location
	log      zerolog.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// NewDailyRunner returns a runner for job. hour is clamped to 0..23 and a
// nil location means UTC.
func NewDailyRunner(job Job, hour int, location *time.Location, log zerolog.Logger) *DailyRunner {
	if hour < 0 || hour > 23 {
		hour = 8
	}
	if location == nil {
		location = time.UTC
	}
	return &DailyRunner{
		job:      job,
		hour:     hour,
		location: location,
		log:      log,
		now:      time.Now,
		after:    time.After,
	}
}

// Run blocks until ctx is done, firing the job at every scheduled hour.
// Job errors are logged and do not stop the loop.
func (r *DailyRunner) Run(ctx context.Context) error {
	for {
		wait := r.nextRun(r.now()).Sub(r.now())
		r.log.Debug().Dur("in", wait).Msg("next reminder run scheduled")

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-r.after(wait):
			r.fire(ctx)
		}
	}
}

func (r *DailyRunner) fire(ctx context.Context) {
	metrics.ReminderRunsTotal.WithLabelValues("schedule").Inc()
	start := r.now()
	n, err := r.job.DispatchDue(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("scheduled reminder run failed")
		return
	}
	r.log.Info().Int("queued", n).Dur("took", r.now().Sub(start)).Msg("scheduled reminder run complete")
}

// nextRun returns the first Hour:00 strictly after now.
func (r *DailyRunner) nextRun(now time.Time) time.Time {
	local := now.In(r.location)
	next := time.Date(local.Year(), local.Month(), local.Day(), r.hour, 0, 0, 0, r.location)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
