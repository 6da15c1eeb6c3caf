// Package scheduler repeats a job on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// JobFunc is one scheduled execution. run counts from 1.
type JobFunc func(ctx context.Context, run int, at time.Time) error

// Options tune scheduler behaviour.
type Options struct {
	Interval time.Duration
	// Align snaps runs to wall-clock multiples of Interval.
	Align bool
	// Immediate executes the first run without waiting.
	Immediate bool
	// MaxRuns stops the scheduler after that many runs; zero means unbounded.
	MaxRuns int
}

// Scheduler drives periodic re-scoring.
type Scheduler struct {
	opts   Options
	now    func() time.Time
	logger zerolog.Logger
}

// New constructs a Scheduler.
func New(opts Options, logger zerolog.Logger) (*Scheduler, error) {
	if opts.Interval <= 0 {
		return nil, errors.New("scheduler interval must be positive")
	}
	return &Scheduler{
		opts:   opts,
		now:    time.Now,
		logger: logger.With().Str("component", "scheduler").Logger(),
	}, nil
}

// Run blocks until ctx is cancelled or MaxRuns is reached. Job errors are
// logged and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context, job JobFunc) error {
	run := 0
	next := s.now()
	if !s.opts.Immediate {
		next = s.nextAfter(next)
	}

	for {
		if delay := next.Sub(s.now()); delay > 0 {
			s.logger.Debug().Time("next_run", next).Msg("waiting for next run")
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		run++
		at := s.now()
		if err := job(ctx, run, at); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error().Err(err).Int("run", run).Msg("scheduled run failed")
		}

		if s.opts.MaxRuns > 0 && run >= s.opts.MaxRuns {
			return nil
		}
		next = s.nextAfter(at)
	}
}

func (s *Scheduler) nextAfter(t time.Time) time.Time {
	if !s.opts.Align {
		return t.Add(s.opts.Interval)
	}
	next := t.Truncate(s.opts.Interval)
	if !next.After(t) {
		next = next.Add(s.opts.Interval)
	}
	return next
}
