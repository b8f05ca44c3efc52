package workflow

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr1x/gh-renovate/internal/models"
)

// fakeHost is a hand-written host double. Behavior is customized per test via
// the function fields; mutating calls are counted so tests can assert that
// read-only paths stay read-only.
type fakeHost struct {
	prFn     func(number, call int) (*models.PullRequest, error)
	checksFn func(ref string, call int) (*models.ChecksStatus, error)
	reviews  *models.ReviewInfo
	mergeFn  func(number, call int) error

	prCalls      int
	checksCalls  int
	reviewCalls  int
	approveCalls int
	rebaseCalls  int
	mergeCalls   int
}

func (f *fakeHost) PullRequest(ctx context.Context, number int) (*models.PullRequest, error) {
	f.prCalls++
	if f.prFn != nil {
		return f.prFn(number, f.prCalls)
	}
	return openPR(number), nil
}

func (f *fakeHost) ChecksStatus(ctx context.Context, ref string) (*models.ChecksStatus, error) {
	f.checksCalls++
	if f.checksFn != nil {
		return f.checksFn(ref, f.checksCalls)
	}
	return successChecks(), nil
}

func (f *fakeHost) Reviews(ctx context.Context, number int) (*models.ReviewInfo, error) {
	f.reviewCalls++
	if f.reviews != nil {
		return f.reviews, nil
	}
	return &models.ReviewInfo{Approved: true, Approvers: []string{"octocat"}}, nil
}

func (f *fakeHost) ApprovePullRequest(ctx context.Context, number int) error {
	f.approveCalls++
	return nil
}

func (f *fakeHost) TriggerRebase(ctx context.Context, pr *models.PullRequest) (RebaseMechanism, error) {
	f.rebaseCalls++
	return RebaseViaCheckbox, nil
}

func (f *fakeHost) Merge(ctx context.Context, number int, method models.MergeMethod) (*models.MergeCommit, error) {
	f.mergeCalls++
	if f.mergeFn != nil {
		if err := f.mergeFn(number, f.mergeCalls); err != nil {
			return nil, err
		}
	}
	return &models.MergeCommit{SHA: "abc123def456", Merged: true}, nil
}

func (f *fakeHost) mutations() int {
	return f.approveCalls + f.rebaseCalls + f.mergeCalls
}

func openPR(number int) *models.PullRequest {
	mergeable := true
	return &models.PullRequest{
		Number:         number,
		Title:          "chore(deps): update dependency",
		State:          "open",
		Mergeable:      &mergeable,
		MergeableState: models.MergeableStateClean,
		HeadSHA:        "1111111111111111111111111111111111111111",
		HeadRef:        "renovate/dependency-1.x",
		BaseRef:        "main",
		Author:         "renovate[bot]",
	}
}

func successChecks() *models.ChecksStatus {
	return models.NewChecksStatus([]models.CheckDetail{
		{Name: "build", Completed: true, Conclusion: "success"},
		{Name: "test", Completed: true, Conclusion: "success"},
	})
}

func testOptions() models.Options {
	opts := models.DefaultOptions()
	opts.InterPRDelay = 0
	return opts
}

// testWorkflow builds a workflow with all pauses and poll intervals shrunk so
// tests run without real sleeping.
func testWorkflow(host Host, opts models.Options, status StatusFunc) *mergeWorkflow {
	wf := newMergeWorkflow(host, opts, status)
	wf.attemptPause = 0
	wf.ciPollInterval = 0
	wf.ciPollMaxInterval = 0
	wf.rebasePollInterval = 0
	wf.rebasePollMax = 0
	wf.retryCfg.InitialDelay = 0
	wf.retryCfg.MaxDelay = 0
	return wf
}

func TestWorkflowSkipsAlreadyMergedPR(t *testing.T) {
	host := &fakeHost{
		prFn: func(number, call int) (*models.PullRequest, error) {
			pr := openPR(number)
			pr.Merged = true
			pr.State = "closed"
			return pr, nil
		},
	}
	wf := testWorkflow(host, testOptions(), nil)

	result := wf.Run(context.Background(), 7)

	assert.Equal(t, models.OutcomeSkipped, result.Outcome)
	assert.Contains(t, result.Reason, "already merged")
	assert.Equal(t, 0, host.mutations(), "no mutating call may be issued")
}

func TestWorkflowSkipsClosedAndDraftPRs(t *testing.T) {
	testCases := []struct {
		name           string
		mutate         func(pr *models.PullRequest)
		expectedReason string
	}{
		{
			name:           "closed",
			mutate:         func(pr *models.PullRequest) { pr.State = "closed" },
			expectedReason: "closed",
		},
		{
			name:           "draft",
			mutate:         func(pr *models.PullRequest) { pr.Draft = true },
			expectedReason: "draft",
		},
		{
			name:           "conflicting",
			mutate:         func(pr *models.PullRequest) { pr.MergeableState = models.MergeableStateDirty },
			expectedReason: "conflicts",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			host := &fakeHost{
				prFn: func(number, call int) (*models.PullRequest, error) {
					pr := openPR(number)
					tc.mutate(pr)
					return pr, nil
				},
			}
			wf := testWorkflow(host, testOptions(), nil)

			result := wf.Run(context.Background(), 3)

			assert.Equal(t, models.OutcomeSkipped, result.Outcome)
			assert.Contains(t, result.Reason, tc.expectedReason)
			assert.Equal(t, 0, host.mutations())
		})
	}
}

func TestWorkflowSkipsOnFailingChecks(t *testing.T) {
	host := &fakeHost{
		checksFn: func(ref string, call int) (*models.ChecksStatus, error) {
			return models.NewChecksStatus([]models.CheckDetail{
				{Name: "build", Completed: true, Conclusion: "success"},
				{Name: "lint", Completed: true, Conclusion: "failure"},
				{Name: "integration", Completed: true, Conclusion: "timed_out"},
			}), nil
		},
	}
	wf := testWorkflow(host, testOptions(), nil)

	result := wf.Run(context.Background(), 12)

	assert.Equal(t, models.OutcomeSkipped, result.Outcome)
	assert.Contains(t, result.Reason, "CI checks failed")
	assert.Contains(t, result.Reason, "lint")
	assert.Contains(t, result.Reason, "integration")
	assert.Equal(t, 0, host.mutations(), "failing checks must not trigger approval, rebase or merge")
}

func TestWorkflowSkipsOnIndefinitelyPendingPolicyGate(t *testing.T) {
	host := &fakeHost{
		checksFn: func(ref string, call int) (*models.ChecksStatus, error) {
			return models.NewChecksStatus([]models.CheckDetail{
				{Name: "build", Completed: true, Conclusion: "success"},
				{Name: "renovate/stability-days", Completed: false},
			}), nil
		},
	}
	wf := testWorkflow(host, testOptions(), nil)

	result := wf.Run(context.Background(), 5)

	assert.Equal(t, models.OutcomeSkipped, result.Outcome)
	assert.Contains(t, result.Reason, "policy gate")
	assert.False(t, ReasonRetriable(result.Reason), "a policy gate skip must not be deferred for retry")
	assert.Equal(t, 0, host.mutations())
}

func TestWorkflowApprovesAndMerges(t *testing.T) {
	host := &fakeHost{
		reviews: &models.ReviewInfo{},
	}
	wf := testWorkflow(host, testOptions(), nil)

	result := wf.Run(context.Background(), 9)

	assert.Equal(t, models.OutcomeMerged, result.Outcome)
	assert.Equal(t, 1, host.approveCalls)
	assert.Equal(t, 1, host.mergeCalls)
	assert.Equal(t, 0, host.rebaseCalls)
}

func TestWorkflowRebasesBehindPR(t *testing.T) {
	// The PR starts behind its base; after the rebase trigger the host
	// reports a new head commit.
	host := &fakeHost{}
	host.prFn = func(number, call int) (*models.PullRequest, error) {
		pr := openPR(number)
		if host.rebaseCalls == 0 {
			pr.MergeableState = models.MergeableStateBehind
			return pr, nil
		}
		pr.HeadSHA = "2222222222222222222222222222222222222222"
		return pr, nil
	}
	wf := testWorkflow(host, testOptions(), nil)

	result := wf.Run(context.Background(), 4)

	assert.Equal(t, models.OutcomeMerged, result.Outcome)
	assert.Equal(t, 1, host.rebaseCalls)
	assert.Equal(t, 1, host.mergeCalls)
}

func TestWorkflowDryRunHappyPath(t *testing.T) {
	var messages []string
	host := &fakeHost{
		reviews: &models.ReviewInfo{},
	}
	opts := testOptions()
	opts.DryRun = true
	wf := testWorkflow(host, opts, func(msg string) {
		messages = append(messages, msg)
	})

	result := wf.Run(context.Background(), 42)

	assert.Equal(t, models.OutcomeMerged, result.Outcome)
	assert.Equal(t, 0, host.mutations(), "dry-run must not mutate anything")

	approveIdx := -1
	for i, msg := range messages {
		if strings.Contains(msg, "[DRY-RUN] Would approve PR #42") {
			approveIdx = i
			break
		}
	}
	require.GreaterOrEqual(t, approveIdx, 0, "expected a would-approve status, got %v", messages)
	require.Less(t, approveIdx+1, len(messages))
	assert.Contains(t, messages[approveIdx+1], "[DRY-RUN] Would merge PR #42",
		"the would-merge status must directly follow the would-approve status")
}

func TestWorkflowRecoversFromBlockedMerge(t *testing.T) {
	// The first merge call is refused; the re-validation pass should retry
	// and succeed without restarting the whole progression.
	host := &fakeHost{
		mergeFn: func(number, call int) error {
			if call == 1 {
				return models.NewPRStateError(models.ErrMergeBlocked, number, "merge blocked: base branch was modified")
			}
			return nil
		},
	}
	wf := testWorkflow(host, testOptions(), nil)

	result := wf.Run(context.Background(), 8)

	assert.Equal(t, models.OutcomeMerged, result.Outcome)
	assert.Equal(t, 2, host.mergeCalls)
}

func TestWorkflowReportsMergedByAnotherActor(t *testing.T) {
	merged := false
	host := &fakeHost{}
	host.prFn = func(number, call int) (*models.PullRequest, error) {
		pr := openPR(number)
		if merged {
			pr.Merged = true
			pr.State = "closed"
		}
		return pr, nil
	}
	host.mergeFn = func(number, call int) error {
		merged = true
		return models.NewPRStateError(models.ErrMergeBlocked, number, "merge blocked")
	}
	wf := testWorkflow(host, testOptions(), nil)

	result := wf.Run(context.Background(), 6)

	assert.Equal(t, models.OutcomeMerged, result.Outcome)
	assert.Contains(t, result.Reason, "another actor")
}

func TestWorkflowFailsAfterExhaustedAttempts(t *testing.T) {
	host := &fakeHost{
		mergeFn: func(number, call int) error {
			return models.NewPRStateError(models.ErrMergeBlocked, number, "merge blocked: required status")
		},
	}
	wf := testWorkflow(host, testOptions(), nil)

	result := wf.Run(context.Background(), 2)

	assert.Equal(t, models.OutcomeFailed, result.Outcome)
	assert.Contains(t, result.Reason, "merge blocked")
}
