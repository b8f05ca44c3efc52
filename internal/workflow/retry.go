package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kr1x/gh-renovate/internal/models"
)

// rateLimitMargin is added to a server-provided rate-limit reset time before
// the next attempt.
const rateLimitMargin = 2 * time.Second

// RetryConfig configures the transient-failure retry wrapper.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// InitialDelay is the sleep before the second attempt.
	InitialDelay time.Duration
	// MaxDelay caps the doubling backoff.
	MaxDelay time.Duration
	// Retryable decides whether a failure is worth another attempt.
	// Defaults to IsTransient.
	Retryable func(error) bool
}

// DefaultRetryConfig returns the retry settings used for host calls
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 2 * time.Second,
		MaxDelay:     30 * time.Second,
	}
}

// Retry executes op, re-attempting on transient failures with a doubling,
// capped backoff. A rate-limit error carrying a reset time sleeps until that
// time plus a safety margin instead of the computed delay. A non-transient
// failure, or exhaustion of attempts, returns the most recent error
// unchanged.
func Retry[T any](ctx context.Context, cfg RetryConfig, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	retryable := cfg.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryable(err) || attempt == cfg.MaxAttempts {
			break
		}

		sleep := delay
		if wait, ok := rateLimitWait(err); ok {
			sleep = wait
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(sleep):
		}

		delay *= 2
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return zero, lastErr
}

// rateLimitWait extracts the sleep until a rate-limit reset, if err carries
// one in the future.
func rateLimitWait(err error) (time.Duration, bool) {
	if !models.IsKind(err, models.ErrRateLimit) {
		return 0, false
	}
	var ghErr *models.Error
	if !errors.As(err, &ghErr) || ghErr.ResetTime.IsZero() {
		return 0, false
	}
	wait := time.Until(ghErr.ResetTime) + rateLimitMargin
	if wait <= 0 {
		return 0, false
	}
	return wait, true
}

// IsTransient is the default transience classifier: taxonomy-recoverable
// errors, common network failure signatures, and HTTP failures with a status
// of 429 or 500 and above.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if models.IsRecoverable(err) {
		return true
	}

	var ghErr *models.Error
	if errors.As(err, &ghErr) {
		if ghErr.StatusCode == 429 || ghErr.StatusCode >= 500 {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, sig := range []string{
		"connection reset",
		"timeout",
		"timed out",
		"socket",
		"network",
	} {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
