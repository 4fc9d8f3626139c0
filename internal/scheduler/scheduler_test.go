package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/watchpost/sentinel/internal/config"
)

func fastSchedule() config.ScheduleConfig {
	return config.ScheduleConfig{
		PollInterval:  config.Duration{Duration: 5 * time.Millisecond},
		ErrorCooldown: config.Duration{Duration: 20 * time.Millisecond},
	}
}

func TestNextDaily(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		name  string
		after time.Time
		hour  int
		min   int
		want  time.Time
	}{
		{
			"later today",
			time.Date(2026, 8, 25, 6, 0, 0, 0, loc), 8, 0,
			time.Date(2026, 8, 25, 8, 0, 0, 0, loc),
		},
		{
			"already passed rolls to tomorrow",
			time.Date(2026, 8, 25, 9, 0, 0, 0, loc), 8, 0,
			time.Date(2026, 8, 26, 8, 0, 0, 0, loc),
		},
		{
			"exactly at the mark rolls forward",
			time.Date(2026, 8, 25, 8, 0, 0, 0, loc), 8, 0,
			time.Date(2026, 8, 26, 8, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextDaily(tt.after, tt.hour, tt.min); !got.Equal(tt.want) {
				t.Errorf("nextDaily = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextWeekly(t *testing.T) {
	loc := time.UTC
	// 2026-08-25 is a Tuesday.
	tuesday := time.Date(2026, 8, 25, 12, 0, 0, 0, loc)

	tests := []struct {
		name  string
		after time.Time
		day   time.Weekday
		hour  int
		want  time.Time
	}{
		{
			"next sunday from tuesday",
			tuesday, time.Sunday, 2,
			time.Date(2026, 8, 30, 2, 0, 0, 0, loc),
		},
		{
			"same weekday later hour",
			tuesday, time.Tuesday, 23,
			time.Date(2026, 8, 25, 23, 0, 0, 0, loc),
		},
		{
			"same weekday earlier hour rolls a week",
			tuesday, time.Tuesday, 2,
			time.Date(2026, 9, 1, 2, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextWeekly(tt.after, tt.day, tt.hour, 0)
			if !got.Equal(tt.want) {
				t.Errorf("nextWeekly = %v, want %v", got, tt.want)
			}
			if got.Weekday() != tt.day {
				t.Errorf("nextWeekly landed on %v, want %v", got.Weekday(), tt.day)
			}
		})
	}
}

func TestRun_ExecutesIntervalJobs(t *testing.T) {
	s := New(fastSchedule(), zap.NewNop())

	var runs atomic.Int64
	s.Every("tick", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	if runs.Load() < 2 {
		t.Errorf("interval job ran %d times in 150ms, want at least 2", runs.Load())
	}
}

func TestRun_JobsRunSequentially(t *testing.T) {
	s := New(fastSchedule(), zap.NewNop())

	var inFlight atomic.Int64
	var overlapped atomic.Bool
	body := func(ctx context.Context) error {
		if inFlight.Add(1) > 1 {
			overlapped.Store(true)
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	}
	s.Every("a", 10*time.Millisecond, body)
	s.Every("b", 10*time.Millisecond, body)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	if overlapped.Load() {
		t.Error("jobs ran concurrently, want strictly sequential execution")
	}
}

func TestRun_ErrorTriggersCooldownAndSurvives(t *testing.T) {
	s := New(fastSchedule(), zap.NewNop())

	var failures, successes atomic.Int64
	s.Every("failing", 5*time.Millisecond, func(ctx context.Context) error {
		failures.Add(1)
		return errors.New("boom")
	})
	s.Every("healthy", 5*time.Millisecond, func(ctx context.Context) error {
		successes.Add(1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	if failures.Load() == 0 {
		t.Fatal("failing job never ran")
	}
	if successes.Load() == 0 {
		t.Error("healthy job starved after another job's failure")
	}
	// With a 20ms cooldown per failure, the failing job cannot have fired
	// anywhere near the no-cooldown rate.
	if failures.Load() > 10 {
		t.Errorf("failing job ran %d times in 200ms, cooldown not applied", failures.Load())
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := New(fastSchedule(), zap.NewNop())
	s.Every("tick", time.Hour, func(ctx context.Context) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
