package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kr1x/gh-renovate/internal/models"
	"github.com/kr1x/gh-renovate/pkg/logger"
)

const (
	// progressionAttempts bounds the outer fail-safe loop around the whole
	// per-PR progression.
	progressionAttempts = 3
	// mergeAttempts bounds the merge/re-check loop inside the final step.
	mergeAttempts = 3
)

// mergeWorkflow drives exactly one pull request from its current remote state
// to merged, or to a terminal skip or failure. The snapshot is re-fetched at
// every step boundary because approvals, rebases and other PRs merging can
// all change mergeability.
type mergeWorkflow struct {
	host   Host
	opts   models.Options
	status StatusFunc
	log    *logrus.Entry

	retryCfg RetryConfig

	// attemptPause separates fail-safe restarts of the progression.
	attemptPause time.Duration
	// ciPollInterval / rebasePollInterval seed the poller schedules.
	ciPollInterval     time.Duration
	ciPollMaxInterval  time.Duration
	rebasePollInterval time.Duration
	rebasePollMax      time.Duration
}

func newMergeWorkflow(host Host, opts models.Options, status StatusFunc) *mergeWorkflow {
	return &mergeWorkflow{
		host:               host,
		opts:               opts,
		status:             status,
		log:                logger.WithField("component", "workflow"),
		retryCfg:           DefaultRetryConfig(),
		attemptPause:       5 * time.Second,
		ciPollInterval:     10 * time.Second,
		ciPollMaxInterval:  time.Minute,
		rebasePollInterval: 5 * time.Second,
		rebasePollMax:      30 * time.Second,
	}
}

// Run drives the progression for one pull request, restarting it from the top
// on blocked or needs-rebase signals, up to progressionAttempts times. It
// never returns an error: unexpected failures become a failed outcome.
func (w *mergeWorkflow) Run(ctx context.Context, prNumber int) models.MergeResult {
	var lastErr error

	for attempt := 1; attempt <= progressionAttempts; attempt++ {
		result, err := w.attempt(ctx, prNumber)
		if err == nil {
			return result
		}
		lastErr = err

		if attempt < progressionAttempts && progressionRetriable(err) {
			w.log.WithFields(logrus.Fields{"pr": prNumber, "attempt": attempt}).
				WithError(err).Info("Restarting merge workflow")
			w.status.printf("PR #%d blocked (%v), restarting workflow (attempt %d/%d)",
				prNumber, err, attempt+1, progressionAttempts)
			select {
			case <-ctx.Done():
				return failedResult(prNumber, "", ctx.Err())
			case <-time.After(w.attemptPause):
			}
			continue
		}
		break
	}

	return failedResult(prNumber, "", lastErr)
}

// progressionRetriable checks if the whole progression is worth restarting:
// remote state may have changed enough to clear the blockage.
func progressionRetriable(err error) bool {
	switch models.KindOf(err) {
	case models.ErrMergeBlocked, models.ErrNeedsRebase:
		return true
	}
	return false
}

func failedResult(prNumber int, title string, err error) models.MergeResult {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return models.MergeResult{
		PRNumber: prNumber,
		Title:    title,
		Outcome:  models.OutcomeFailed,
		Reason:   reason,
	}
}

// attempt runs the progression once. Expected business outcomes come back as
// a result with a nil error; only failures the outer loop must judge are
// returned as errors.
func (w *mergeWorkflow) attempt(ctx context.Context, prNumber int) (models.MergeResult, error) {
	skipped := func(title, reason string) (models.MergeResult, error) {
		w.status.printf("Skipping PR #%d: %s", prNumber, reason)
		return models.MergeResult{
			PRNumber: prNumber,
			Title:    title,
			Outcome:  models.OutcomeSkipped,
			Reason:   reason,
		}, nil
	}

	// Step 1: fresh snapshot and basic eligibility.
	pr, err := w.fetchPR(ctx, prNumber)
	if err != nil {
		return models.MergeResult{}, err
	}
	title := pr.Title
	w.status.printf("Processing PR #%d: %s", prNumber, title)

	switch {
	case pr.Merged:
		return skipped(title, "already merged")
	case !pr.IsOpen():
		return skipped(title, "closed")
	case pr.Draft:
		return skipped(title, "draft pull request")
	case pr.HasConflicts():
		return skipped(title, "has merge conflicts")
	}

	// Step 2: CI must settle green on the current head.
	if skip, err := w.ensureChecksPass(ctx, pr.HeadSHA); err != nil {
		return models.MergeResult{}, err
	} else if skip != "" {
		return skipped(title, skip)
	}

	// Step 3: make sure at least one approval exists.
	if err := w.ensureApproved(ctx, prNumber); err != nil {
		return models.MergeResult{}, err
	}

	// Steps 4 and 5: bring the branch up to date, twice. The second pass
	// catches a PR made newly behind by an earlier merge in the same batch.
	for i := 0; i < 2; i++ {
		if skip, err := w.ensureUpToDate(ctx, prNumber); err != nil {
			return models.MergeResult{}, err
		} else if skip != "" {
			return skipped(title, skip)
		}
	}

	// Step 6: in dry-run mode the merge would be the only remaining action.
	if w.opts.DryRun {
		w.status.printf("[DRY-RUN] Would merge PR #%d using %s method", prNumber, w.opts.Method)
		return models.MergeResult{
			PRNumber: prNumber,
			Title:    title,
			Outcome:  models.OutcomeMerged,
			Reason:   "would merge (dry-run)",
		}, nil
	}

	// Step 7: the merge itself, with bounded re-validation on blockage.
	return w.merge(ctx, prNumber, title)
}

// merge attempts the merge, re-validating CI and rebase state when the host
// reports the merge blocked, up to mergeAttempts times.
func (w *mergeWorkflow) merge(ctx context.Context, prNumber int, title string) (models.MergeResult, error) {
	merged := func(reason string) (models.MergeResult, error) {
		return models.MergeResult{
			PRNumber: prNumber,
			Title:    title,
			Outcome:  models.OutcomeMerged,
			Reason:   reason,
		}, nil
	}
	skipped := func(reason string) (models.MergeResult, error) {
		w.status.printf("Skipping PR #%d: %s", prNumber, reason)
		return models.MergeResult{
			PRNumber: prNumber,
			Title:    title,
			Outcome:  models.OutcomeSkipped,
			Reason:   reason,
		}, nil
	}

	for attempt := 1; attempt <= mergeAttempts; attempt++ {
		w.status.printf("Merging PR #%d using %s method", prNumber, w.opts.Method)
		commit, err := w.host.Merge(ctx, prNumber, w.opts.Method)
		if err == nil {
			w.status.printf("Merged PR #%d (%s)", prNumber, shortSHA(commit.SHA))
			w.log.WithFields(logrus.Fields{"pr": prNumber, "sha": commit.SHA}).Info("Pull request merged")
			return merged("")
		}

		switch models.KindOf(err) {
		case models.ErrAlreadyMerged:
			return merged("already merged by another actor")
		case models.ErrClosed:
			return skipped("closed before merge")
		case models.ErrConflicts:
			return skipped("has merge conflicts")
		case models.ErrMergeBlocked:
			if attempt == mergeAttempts {
				return models.MergeResult{}, err
			}
		default:
			return models.MergeResult{}, err
		}

		// Merge blocked: another actor or fresh checks may have changed the
		// picture since the last snapshot. Re-validate and try again.
		pr, ferr := w.fetchPR(ctx, prNumber)
		if ferr != nil {
			return models.MergeResult{}, ferr
		}
		if pr.Merged {
			return merged("already merged by another actor")
		}
		if !pr.IsOpen() {
			return skipped("closed before merge")
		}
		if skip, cerr := w.ensureChecksPass(ctx, pr.HeadSHA); cerr != nil {
			return models.MergeResult{}, cerr
		} else if skip != "" {
			return skipped(skip)
		}
		if skip, rerr := w.ensureUpToDate(ctx, prNumber); rerr != nil {
			return models.MergeResult{}, rerr
		} else if skip != "" {
			return skipped(skip)
		}
	}

	return models.MergeResult{}, models.NewPRStateError(models.ErrMergeBlocked, prNumber, "merge blocked")
}

// ensureChecksPass waits for CI on the given head commit. A non-empty skip
// reason means the PR cannot proceed; an error means something unexpected.
func (w *mergeWorkflow) ensureChecksPass(ctx context.Context, headSHA string) (string, error) {
	checks, err := w.fetchChecks(ctx, headSHA)
	if err != nil {
		return "", err
	}

	if ChecksPending(checks) && !HasIndefinitelyPendingCheck(checks, w.opts.IgnoredChecks) {
		w.status.printf("Waiting for CI checks on %s (%d/%d complete)",
			shortSHA(headSHA), checks.Completed, checks.Total)

		checks, err = Poll(ctx, PollConfig[*models.ChecksStatus]{
			Name:        fmt.Sprintf("CI checks on %s", shortSHA(headSHA)),
			Timeout:     w.opts.CITimeout,
			Interval:    w.ciPollInterval,
			MaxInterval: w.ciPollMaxInterval,
			OnPoll: func(s *models.ChecksStatus, elapsed time.Duration) {
				w.status.printf("CI checks on %s: %d/%d complete (%s elapsed)",
					shortSHA(headSHA), s.Completed, s.Total, elapsed.Round(time.Second))
			},
		}, func(ctx context.Context) (*models.ChecksStatus, error) {
			return w.host.ChecksStatus(ctx, headSHA)
		}, func(s *models.ChecksStatus) Decision {
			if ChecksPending(s) && !HasIndefinitelyPendingCheck(s, w.opts.IgnoredChecks) {
				return PollContinue
			}
			return PollDone
		})
		if err != nil {
			if models.IsKind(err, models.ErrTimeout) {
				return err.Error(), nil
			}
			return "", err
		}
	}

	if ChecksFailing(checks) {
		return "CI checks failed: " + FormatCheckFailures(checks), nil
	}
	if HasIndefinitelyPendingCheck(checks, w.opts.IgnoredChecks) {
		return "waiting on a policy gate check that will not resolve on its own", nil
	}
	return "", nil
}

// ensureApproved submits an approval unless one already exists.
func (w *mergeWorkflow) ensureApproved(ctx context.Context, prNumber int) error {
	info, err := w.fetchReviews(ctx, prNumber)
	if err != nil {
		return err
	}
	if info.Approved {
		return nil
	}

	if w.opts.DryRun {
		w.status.printf("[DRY-RUN] Would approve PR #%d", prNumber)
		return nil
	}

	w.status.printf("Approving PR #%d", prNumber)
	_, err = Retry(ctx, w.retryCfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, w.host.ApprovePullRequest(ctx, prNumber)
	})
	return err
}

// ensureUpToDate triggers a rebase when the snapshot reports the branch
// behind, dirty or not mergeable, then waits for the new head and its CI.
func (w *mergeWorkflow) ensureUpToDate(ctx context.Context, prNumber int) (string, error) {
	pr, err := w.fetchPR(ctx, prNumber)
	if err != nil {
		return "", err
	}
	if !pr.NeedsRebase() {
		return "", nil
	}

	if w.opts.DryRun {
		w.status.printf("[DRY-RUN] Would trigger rebase of PR #%d", prNumber)
		return "", nil
	}

	w.status.printf("PR #%d needs rebase (%s), triggering", prNumber, pr.MergeableState)
	mechanism, err := w.host.TriggerRebase(ctx, pr)
	if err != nil {
		return fmt.Sprintf("could not trigger rebase: %v", err), nil
	}
	w.status.printf("Rebase of PR #%d requested via %s", prNumber, mechanism)

	oldSHA := pr.HeadSHA
	rebased, err := Poll(ctx, PollConfig[*models.PullRequest]{
		Name:        fmt.Sprintf("rebase of PR #%d", prNumber),
		Timeout:     w.opts.RebaseTimeout,
		Interval:    w.rebasePollInterval,
		MaxInterval: w.rebasePollMax,
		OnPoll: func(p *models.PullRequest, elapsed time.Duration) {
			w.status.printf("Waiting for rebase of PR #%d (%s elapsed)", prNumber, elapsed.Round(time.Second))
		},
	}, func(ctx context.Context) (*models.PullRequest, error) {
		return w.host.PullRequest(ctx, prNumber)
	}, func(p *models.PullRequest) Decision {
		if p.HeadSHA != oldSHA && p.HeadSHA != "" {
			return PollDone
		}
		return PollContinue
	})
	if err != nil {
		if models.IsKind(err, models.ErrTimeout) {
			return err.Error(), nil
		}
		return "", err
	}

	w.status.printf("PR #%d rebased, new head %s", prNumber, shortSHA(rebased.HeadSHA))
	return w.ensureChecksPass(ctx, rebased.HeadSHA)
}

func (w *mergeWorkflow) fetchPR(ctx context.Context, prNumber int) (*models.PullRequest, error) {
	return Retry(ctx, w.retryCfg, func(ctx context.Context) (*models.PullRequest, error) {
		return w.host.PullRequest(ctx, prNumber)
	})
}

func (w *mergeWorkflow) fetchChecks(ctx context.Context, ref string) (*models.ChecksStatus, error) {
	return Retry(ctx, w.retryCfg, func(ctx context.Context) (*models.ChecksStatus, error) {
		return w.host.ChecksStatus(ctx, ref)
	})
}

func (w *mergeWorkflow) fetchReviews(ctx context.Context, prNumber int) (*models.ReviewInfo, error) {
	return Retry(ctx, w.retryCfg, func(ctx context.Context) (*models.ReviewInfo, error) {
		return w.host.Reviews(ctx, prNumber)
	})
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
