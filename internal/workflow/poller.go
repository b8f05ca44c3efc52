package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/kr1x/gh-renovate/internal/models"
)

// Decision tells the poller what to do with the latest probe result
type Decision int

const (
	// PollContinue keeps polling after the next interval
	PollContinue Decision = iota
	// PollDone stops polling and returns the result
	PollDone
	// PollAbort stops polling with an error
	PollAbort
)

// intervalGrowth is the factor the poll interval grows by after each
// non-terminal poll, capped at the configured maximum.
const intervalGrowth = 1.2

// PollConfig configures one wait operation.
type PollConfig[T any] struct {
	// Name identifies the operation in timeout errors.
	Name string
	// Timeout is the wall-clock deadline for the whole wait.
	Timeout time.Duration
	// Interval is the initial sleep between probes.
	Interval time.Duration
	// MaxInterval caps interval growth.
	MaxInterval time.Duration
	// OnPoll observes each raw result and the elapsed time. It must not
	// affect control flow; it exists for status reporting.
	OnPoll func(result T, elapsed time.Duration)
	// NextInterval, when set, replaces the default growth schedule.
	NextInterval func(current time.Duration) time.Duration
}

// ErrPollAborted is returned when the condition signals PollAbort.
var ErrPollAborted = errors.New("polling aborted by condition")

// Poll repeatedly invokes probe until cond signals done or abort, or the
// timeout elapses. A probe failure is swallowed and polling continues, unless
// the timeout has already been exceeded, in which case the probe's own error
// takes precedence over the generic timeout error.
func Poll[T any](ctx context.Context, cfg PollConfig[T], probe func(ctx context.Context) (T, error), cond func(T) Decision) (T, error) {
	var zero T
	start := time.Now()
	interval := cfg.Interval

	for {
		result, err := probe(ctx)
		elapsed := time.Since(start)

		if err == nil {
			if cfg.OnPoll != nil {
				cfg.OnPoll(result, elapsed)
			}
			switch cond(result) {
			case PollDone:
				return result, nil
			case PollAbort:
				return zero, ErrPollAborted
			}
		}

		if elapsed >= cfg.Timeout {
			if err != nil {
				return zero, err
			}
			return zero, models.NewTimeoutError(cfg.Name, cfg.Timeout)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(interval):
		}

		if cfg.NextInterval != nil {
			interval = cfg.NextInterval(interval)
		} else {
			interval = time.Duration(float64(interval) * intervalGrowth)
			if interval > cfg.MaxInterval {
				interval = cfg.MaxInterval
			}
		}
	}
}
