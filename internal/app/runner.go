package app

import (
	"context"
	"errors"

	"github.com/bft-labs/sunshade/internal/decision"
	"github.com/bft-labs/sunshade/internal/ports"
	"github.com/bft-labs/sunshade/pkg/log"
)

// CycleRunner runs one duty cycle.
type CycleRunner interface {
	Run(ctx context.Context) Report
}

// CycleSource yields the cycle to run next. Implementations may rebuild the
// cycle from fresh configuration between calls.
type CycleSource interface {
	Next() (CycleRunner, error)
}

// StaticSource always yields the same cycle.
type StaticSource struct {
	Cycle CycleRunner
}

// Next returns s.Cycle.
func (s StaticSource) Next() (CycleRunner, error) {
	return s.Cycle, nil
}

// Runner repeats cycles separated by suspends, starting each cycle from the
// top as if the device had just woken.
type Runner struct {
	source    CycleSource
	suspender ports.Suspender
	logger    log.Logger
	once      bool
}

// NewRunner creates a runner. With once set, Run performs a single cycle and
// leaves the suspend to the caller.
func NewRunner(source CycleSource, suspender ports.Suspender, logger log.Logger, once bool) *Runner {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Runner{
		source:    source,
		suspender: suspender,
		logger:    logger,
		once:      once,
	}
}

// Run loops until ctx is done and returns the last report. Cancellation is a
// clean stop and yields a nil error; only a failing CycleSource returns one.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	var last Report
	for cycles := 1; ; cycles++ {
		if ctx.Err() != nil {
			return last, nil
		}

		cycle, err := r.source.Next()
		if err != nil {
			return last, err
		}
		last = cycle.Run(ctx)
		if r.once {
			return last, nil
		}

		sleep := last.Sleep
		if sleep <= 0 {
			sleep = decision.DefaultIdleSleep
		}
		r.logger.Debug("cycle finished",
			log.Int("cycle", cycles),
			log.Duration("sleep", sleep),
		)
		if err := r.suspender.Suspend(ctx, sleep); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return last, nil
			}
			r.logger.Warn("suspend interrupted", log.Err(err))
		}
	}
}
