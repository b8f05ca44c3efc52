package workflow

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr1x/gh-renovate/internal/models"
)

func runTestBatch(t *testing.T, host Host, prNumbers []int, opts models.Options, decide DecisionFunc, status StatusFunc) *models.BatchSummary {
	t.Helper()
	wf := testWorkflow(host, opts, status)
	summary, err := runBatch(context.Background(), wf, "kr1x/fixture", prNumbers, opts, decide, status)
	require.NoError(t, err)
	return summary
}

func TestBatchMergesAllInOrder(t *testing.T) {
	host := &fakeHost{}
	summary := runTestBatch(t, host, []int{1, 2, 3}, testOptions(), nil, nil)

	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 3, summary.Merged)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)

	var order []int
	for _, r := range summary.Results {
		order = append(order, r.PRNumber)
	}
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestBatchDefersBlockedPRForSecondPass(t *testing.T) {
	// PR 2's merge stays blocked during the first pass and succeeds once the
	// deferred pass begins. The summary must show it reprocessed after PRs 1
	// and 3, with all three merged.
	secondPass := false
	host := &fakeHost{
		mergeFn: func(number, call int) error {
			if number == 2 && !secondPass {
				return models.NewPRStateError(models.ErrMergeBlocked, number, "merge blocked: not mergeable right now")
			}
			return nil
		},
	}

	var deferredMessages []string
	status := func(msg string) {
		if strings.Contains(msg, "Retrying") {
			secondPass = true
		}
		if strings.Contains(msg, "Deferring") {
			deferredMessages = append(deferredMessages, msg)
		}
	}

	summary := runTestBatch(t, host, []int{1, 2, 3}, testOptions(), nil, status)

	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 3, summary.Merged)
	assert.Len(t, deferredMessages, 1)

	var order []int
	for _, r := range summary.Results {
		order = append(order, r.PRNumber)
		assert.Equal(t, models.OutcomeMerged, r.Outcome)
	}
	assert.Equal(t, []int{1, 3, 2}, order, "the deferred PR must be reprocessed after the rest of the batch")
}

func TestBatchRecordsSecondPassFailureAsFinal(t *testing.T) {
	host := &fakeHost{
		mergeFn: func(number, call int) error {
			if number == 2 {
				return models.NewPRStateError(models.ErrMergeBlocked, number, "merge blocked: required status missing")
			}
			return nil
		},
	}

	summary := runTestBatch(t, host, []int{1, 2}, testOptions(), nil, nil)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Merged)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Results[1].PRNumber, "the retried PR is recorded last")
}

func TestBatchDoesNotDeferNonRetriableSkips(t *testing.T) {
	host := &fakeHost{}
	host.prFn = func(number, call int) (*models.PullRequest, error) {
		pr := openPR(number)
		if number == 2 {
			pr.Draft = true
		}
		return pr, nil
	}

	summary := runTestBatch(t, host, []int{1, 2, 3}, testOptions(), nil, nil)

	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 2, summary.Merged)
	assert.Equal(t, 1, summary.Skipped)

	var order []int
	for _, r := range summary.Results {
		order = append(order, r.PRNumber)
	}
	assert.Equal(t, []int{1, 2, 3}, order, "a draft skip is final and keeps its position")
}

func TestBatchStopsWhenConfiguredNotToContinue(t *testing.T) {
	host := &fakeHost{}
	host.prFn = func(number, call int) (*models.PullRequest, error) {
		pr := openPR(number)
		if number == 1 {
			pr.Draft = true
		}
		return pr, nil
	}

	opts := testOptions()
	opts.ContinueOnFailure = false
	summary := runTestBatch(t, host, []int{1, 2, 3}, opts, nil, nil)

	assert.Equal(t, 1, summary.Processed, "the batch must stop after the first non-merged outcome")
	assert.Equal(t, 1, summary.Skipped)
}

func TestBatchConsultsDecisionCallback(t *testing.T) {
	host := &fakeHost{}
	host.prFn = func(number, call int) (*models.PullRequest, error) {
		pr := openPR(number)
		if number == 1 {
			pr.Draft = true
		}
		return pr, nil
	}

	var asked []int
	decide := func(prNumber int, reason string) bool {
		asked = append(asked, prNumber)
		return false
	}

	summary := runTestBatch(t, host, []int{1, 2, 3}, testOptions(), decide, nil)

	assert.Equal(t, []int{1}, asked)
	assert.Equal(t, 1, summary.Processed)
}

func TestBatchDryRunSummary(t *testing.T) {
	host := &fakeHost{
		reviews: &models.ReviewInfo{},
	}
	opts := testOptions()
	opts.DryRun = true

	summary := runTestBatch(t, host, []int{42}, opts, nil, nil)

	assert.True(t, summary.DryRun)
	assert.Equal(t, 1, summary.Merged)
	assert.Equal(t, 0, host.mutations())
}

func TestReasonRetriable(t *testing.T) {
	testCases := []struct {
		reason    string
		retriable bool
	}{
		{"CI checks failed: lint (failure)", true},
		{"merge blocked: not mergeable right now", true},
		{"PR needs rebase", true},
		{"timed out after 30m0s waiting for CI checks on 1111111", true},
		{"already merged", false},
		{"closed", false},
		{"draft pull request", false},
		{"has merge conflicts", false},
		{"waiting on a policy gate check that will not resolve on its own", false},
	}

	for _, tc := range testCases {
		t.Run(tc.reason, func(t *testing.T) {
			assert.Equal(t, tc.retriable, ReasonRetriable(tc.reason))
		})
	}
}
