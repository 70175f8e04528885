package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type countingJob struct {
	calls atomic.Int32
	err   error
}

func (j *countingJob) DispatchDue(context.Context) (int, error) {
	j.calls.Add(1)
	return 1, j.err
}

func TestDailyRunner_NextRun(t *testing.T) {
	r := NewDailyRunner(&countingJob{}, 8, time.UTC, zerolog.Nop())

	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2025, 1, 1, 7, 59, 0, 0, time.UTC), time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)},
		{time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)},
		{time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC), time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := r.nextRun(tc.now); !got.Equal(tc.want) {
			t.Fatalf("nextRun(%s) = %s, want %s", tc.now, got, tc.want)
		}
	}
}

func TestDailyRunner_InvalidHourDefaults(t *testing.T) {
	r := NewDailyRunner(&countingJob{}, 42, nil, zerolog.Nop())
	if r.hour != 8 || r.location != time.UTC {
		t.Fatalf("unexpected defaults: hour=%d loc=%v", r.hour, r.location)
	}
}

func TestDailyRunner_RunFiresAndStops(t *testing.T) {
	job := &countingJob{err: errors.New("boom")}
	r := NewDailyRunner(job, 8, time.UTC, zerolog.Nop())

	ticks := make(chan time.Time)
	r.after = func(time.Duration) <-chan time.Time { return ticks }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	ticks <- time.Now()
	ticks <- time.Now()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil on cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not stop")
	}
	if job.calls.Load() != 2 {
		t.Fatalf("expected 2 runs despite job errors, got %d", job.calls.Load())
	}
}
