// Package scheduler implements the supervisor's sleep-and-poll job loop.
// Jobs recur on fixed intervals or at daily/weekly wall-clock times. The loop
// is fully single-threaded and cooperative: jobs run strictly sequentially,
// and the loop blocks only on bounded sleeps. A job error is logged and
// followed by a cooldown before polling resumes; the loop itself terminates
// only on context cancellation.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/watchpost/sentinel/internal/config"
)

// JobFunc is one scheduled unit of work.
type JobFunc func(ctx context.Context) error

type job struct {
	name string
	next time.Time
	// following computes the run after the given time.
	following func(after time.Time) time.Time
	run       JobFunc
}

// Scheduler runs registered jobs on their schedules until cancelled.
type Scheduler struct {
	poll     time.Duration
	cooldown time.Duration
	jobs     []*job
	logger   *zap.Logger

	now func() time.Time
}

// New creates a scheduler with the configured poll interval and error cooldown.
func New(cfg config.ScheduleConfig, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		poll:     cfg.PollInterval.Duration,
		cooldown: cfg.ErrorCooldown.Duration,
		logger:   logger,
		now:      time.Now,
	}
}

// Every registers a job that runs on a fixed interval, first firing one
// interval after the scheduler starts.
func (s *Scheduler) Every(name string, interval time.Duration, run JobFunc) {
	s.jobs = append(s.jobs, &job{
		name: name,
		next: s.now().Add(interval),
		following: func(after time.Time) time.Time {
			return after.Add(interval)
		},
		run: run,
	})
}

// DailyAt registers a job that runs once a day at the given wall-clock time.
func (s *Scheduler) DailyAt(name string, hour, minute int, run JobFunc) {
	s.jobs = append(s.jobs, &job{
		name: name,
		next: nextDaily(s.now(), hour, minute),
		following: func(after time.Time) time.Time {
			return nextDaily(after, hour, minute)
		},
		run: run,
	})
}

// WeeklyAt registers a job that runs once a week at the given weekday and
// wall-clock time.
func (s *Scheduler) WeeklyAt(name string, day time.Weekday, hour, minute int, run JobFunc) {
	s.jobs = append(s.jobs, &job{
		name: name,
		next: nextWeekly(s.now(), day, hour, minute),
		following: func(after time.Time) time.Time {
			return nextWeekly(after, day, hour, minute)
		},
		run: run,
	})
}

// Run executes the polling loop until the context is cancelled. Pending jobs
// run sequentially in registration order; no job ever runs concurrently with
// another.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Scheduler started",
		zap.Int("jobs", len(s.jobs)),
		zap.Duration("poll_interval", s.poll))

	for {
		s.runPending(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		case <-time.After(s.poll):
		}
	}
}

// runPending runs every due job. An error reschedules the job normally but
// puts the whole loop into a cooldown sleep before anything else runs.
func (s *Scheduler) runPending(ctx context.Context) {
	for _, j := range s.jobs {
		if ctx.Err() != nil {
			return
		}
		if s.now().Before(j.next) {
			continue
		}

		err := j.run(ctx)
		j.next = j.following(s.now())

		if err != nil {
			s.logger.Error("Scheduled job failed",
				zap.String("job", j.name),
				zap.Error(err))
			s.sleep(ctx, s.cooldown)
		}
	}
}

func (s *Scheduler) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// nextDaily returns the first instant strictly after `after` that falls on
// the given wall-clock time.
func nextDaily(after time.Time, hour, minute int) time.Time {
	candidate := time.Date(after.Year(), after.Month(), after.Day(), hour, minute, 0, 0, after.Location())
	if !candidate.After(after) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// nextWeekly returns the first instant strictly after `after` that falls on
// the given weekday and wall-clock time.
func nextWeekly(after time.Time, day time.Weekday, hour, minute int) time.Time {
	offset := (int(day) - int(after.Weekday()) + 7) % 7
	candidate := time.Date(after.Year(), after.Month(), after.Day(), hour, minute, 0, 0, after.Location())
	candidate = candidate.AddDate(0, 0, offset)
	if !candidate.After(after) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}
