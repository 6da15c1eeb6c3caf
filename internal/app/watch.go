package app

import (
	"context"
	"errors"
	"io"
	"os/signal"
	"syscall"
	"time"

	"wallet-credit-score/internal/scheduler"
)

// Watch re-runs Score every interval until SIGINT/SIGTERM. The first run
// starts immediately.
func (a *App) Watch(ctx context.Context, opts ScoreOptions, every time.Duration, out io.Writer) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched, err := scheduler.New(scheduler.Options{
		Interval:  every,
		Align:     true,
		Immediate: true,
	}, a.Logger)
	if err != nil {
		return err
	}

	a.Logger.Info().Dur("every", every).Msg("starting scheduled scoring")
	err = sched.Run(ctx, func(ctx context.Context, run int, at time.Time) error {
		a.Logger.Info().Int("run", run).Time("at", at).Msg("scheduled scoring run")
		return a.Score(ctx, opts, out)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	a.Logger.Info().Msg("scheduled scoring stopped")
	return nil
}
