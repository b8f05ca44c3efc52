package models

import (
	"fmt"
	"time"
)

// MergeMethod represents how the host combines the branch on merge
type MergeMethod string

const (
	MergeMethodMerge  MergeMethod = "merge"
	MergeMethodSquash MergeMethod = "squash"
	MergeMethodRebase MergeMethod = "rebase"
)

// Options configures a batch run. Supplied once at batch entry and read-only
// thereafter.
type Options struct {
	// CITimeout bounds each wait for CI checks to settle.
	CITimeout time.Duration
	// RebaseTimeout bounds the wait for the update bot to push a new head.
	RebaseTimeout time.Duration
	// Method is the merge method requested from the host.
	Method MergeMethod
	// ContinueOnFailure keeps the batch going after a non-merged outcome.
	ContinueOnFailure bool
	// DryRun performs every read-only step but no mutating host call.
	DryRun bool
	// InterPRDelay is the pause between pull requests, giving the host time
	// to settle merge-driven side effects.
	InterPRDelay time.Duration
	// IgnoredChecks are check names that may legitimately stay pending
	// forever; an incomplete match is a deliberate skip, not a timeout.
	IgnoredChecks []string
}

// DefaultOptions returns the baseline configuration for a batch run
func DefaultOptions() Options {
	return Options{
		CITimeout:         30 * time.Minute,
		RebaseTimeout:     10 * time.Minute,
		Method:            MergeMethodSquash,
		ContinueOnFailure: true,
		InterPRDelay:      2 * time.Second,
		IgnoredChecks:     []string{"renovate/stability-days"},
	}
}

// Validate checks the options for values the host would reject
func (o Options) Validate() error {
	switch o.Method {
	case MergeMethodMerge, MergeMethodSquash, MergeMethodRebase:
	default:
		return NewValidationError(fmt.Sprintf("invalid merge method %q", o.Method))
	}
	if o.CITimeout <= 0 {
		return NewValidationError("CI timeout must be positive")
	}
	if o.RebaseTimeout <= 0 {
		return NewValidationError("rebase timeout must be positive")
	}
	return nil
}
