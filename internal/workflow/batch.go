package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kr1x/gh-renovate/internal/models"
	"github.com/kr1x/gh-renovate/pkg/logger"
)

// retriableReasons are skip/failure reason fragments worth a second pass:
// the blocking condition is transient and other merges in the batch may
// already have cleared it.
var retriableReasons = []string{
	"checks failed",
	"merge blocked",
	"needs rebase",
	"timed out",
	"timeout",
}

// ReasonRetriable checks if a non-merged reason qualifies for batch deferral
func ReasonRetriable(reason string) bool {
	lower := strings.ToLower(reason)
	for _, r := range retriableReasons {
		if strings.Contains(lower, r) {
			return true
		}
	}
	return false
}

// MergePullRequests is the batch entry point. It drives each pull request in
// order through the merge workflow, strictly sequentially: merging one PR
// changes the mergeability of the rest, so no two are ever mid-progression at
// once. A PR blocked by a transient condition on its first pass is deferred
// and reattempted once after the rest of the batch has been dequeued.
//
// The decision callback, when non-nil, is asked after every recorded
// non-merged outcome whether to keep going; it is only consulted when the
// options say to continue at all. The returned summary holds partial results
// when the context is cancelled mid-batch.
func MergePullRequests(ctx context.Context, host Host, repo string, prNumbers []int, opts models.Options, decide DecisionFunc, status StatusFunc) (*models.BatchSummary, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	wf := newMergeWorkflow(host, opts, status)
	return runBatch(ctx, wf, repo, prNumbers, opts, decide, status)
}

// runBatch is split from MergePullRequests so tests can inject a workflow
// with shortened pauses.
func runBatch(ctx context.Context, wf *mergeWorkflow, repo string, prNumbers []int, opts models.Options, decide DecisionFunc, status StatusFunc) (*models.BatchSummary, error) {
	log := logger.WithFields(logrus.Fields{"component": "batch", "repo": repo})
	summary := &models.BatchSummary{DryRun: opts.DryRun}

	queue := append([]int(nil), prNumbers...)
	var deferred []int
	retried := make(map[int]bool)

	status.printf("Processing %d pull requests in %s", len(queue), repo)
	log.WithField("count", len(queue)).Info("Starting merge batch")

	first := true
	for len(queue) > 0 || len(deferred) > 0 {
		if len(queue) == 0 {
			// Second pass: everything else has been dequeued once.
			status.printf("Retrying %d deferred pull requests", len(deferred))
			queue, deferred = deferred, nil
			continue
		}

		if err := ctx.Err(); err != nil {
			return summary, err
		}

		number := queue[0]
		queue = queue[1:]

		if !first && opts.InterPRDelay > 0 {
			// Give the host time to settle merge-driven side effects.
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(opts.InterPRDelay):
			}
		}
		first = false

		result := wf.Run(ctx, number)

		if result.Outcome != models.OutcomeMerged && !retried[number] && ReasonRetriable(result.Reason) {
			retried[number] = true
			deferred = append(deferred, number)
			status.printf("Deferring PR #%d for a second pass: %s", number, result.Reason)
			log.WithFields(logrus.Fields{"pr": number, "reason": result.Reason}).Info("Deferred pull request")
			continue
		}

		summary.Record(result)
		log.WithFields(logrus.Fields{"pr": number, "outcome": result.Outcome}).Info("Recorded outcome")

		if result.Outcome != models.OutcomeMerged {
			if !opts.ContinueOnFailure {
				status.printf("Stopping batch after PR #%d: %s", number, result.Reason)
				return summary, nil
			}
			if decide != nil && !decide(number, result.Reason) {
				status.printf("Stopping batch at user request after PR #%d", number)
				return summary, nil
			}
		}
	}

	status.printf("Batch complete: %d merged, %d skipped, %d failed",
		summary.Merged, summary.Skipped, summary.Failed)
	return summary, nil
}
