// Package scheduler runs a task forever with a random pause between runs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

type Task func(ctx context.Context) error

type Runner struct {
	task Task
	min  time.Duration
	max  time.Duration
	rng  *rand.Rand
	// wait blocks for d or until ctx is done; swapped out in tests.
	wait func(ctx context.Context, d time.Duration) error
}

// NewRunner panics on a nil task. max below min is raised to min.
func NewRunner(task Task, min, max time.Duration, rng *rand.Rand) *Runner {
	if task == nil {
		panic("scheduler: nil task")
	}
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return &Runner{task: task, min: min, max: max, rng: rng, wait: sleepCtx}
}

// Run alternates between running the task and sleeping until ctx is
// cancelled, then returns ctx.Err(). Task errors and panics are logged.
func (r *Runner) Run(ctx context.Context) error {
	slog.Info("[Scheduler] Starting loop",
		slog.Duration("sleepMin", r.min),
		slog.Duration("sleepMax", r.max))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		if err := r.runTask(ctx); err != nil {
			slog.Error("[Scheduler] Run failed", slog.String("error", err.Error()))
		}
		slog.Info("[Scheduler] Run finished", slog.Duration("elapsed", time.Since(start)))

		d := r.NextDelay()
		slog.Info("[Scheduler] Sleeping", slog.Duration("duration", d))
		if err := r.wait(ctx, d); err != nil {
			slog.Info("[Scheduler] Stopping")
			return err
		}
	}
}

func (r *Runner) runTask(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("task panicked: %v", rec)
		}
	}()
	return r.task(ctx)
}

// NextDelay is uniform in [min, max].
func (r *Runner) NextDelay() time.Duration {
	span := r.max - r.min
	if span <= 0 {
		return r.min
	}
	return r.min + time.Duration(r.rng.Int64N(int64(span)+1))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
