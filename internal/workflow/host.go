package workflow

import (
	"context"

	"github.com/kr1x/gh-renovate/internal/models"
)

// RebaseMechanism names which rebase trigger succeeded.
type RebaseMechanism string

const (
	// RebaseViaCheckbox means the rebase checkbox in the PR body was ticked.
	RebaseViaCheckbox RebaseMechanism = "checkbox"
	// RebaseViaComment means the fallback bot-command comment was posted.
	RebaseViaComment RebaseMechanism = "comment"
)

// Host is the remote repository collaborator consumed by the workflow. The
// concrete implementation lives in internal/github; tests supply fakes.
type Host interface {
	// PullRequest fetches a fresh snapshot of the pull request.
	PullRequest(ctx context.Context, number int) (*models.PullRequest, error)
	// ChecksStatus fetches the combined CI signal set for a commit hash.
	ChecksStatus(ctx context.Context, ref string) (*models.ChecksStatus, error)
	// Reviews fetches the approval aggregate for the pull request.
	Reviews(ctx context.Context, number int) (*models.ReviewInfo, error)
	// ApprovePullRequest submits an approving review.
	ApprovePullRequest(ctx context.Context, number int) error
	// TriggerRebase asks the update bot to rebase the branch and reports
	// which mechanism fired.
	TriggerRebase(ctx context.Context, pr *models.PullRequest) (RebaseMechanism, error)
	// Merge performs the merge with the given method.
	Merge(ctx context.Context, number int, method models.MergeMethod) (*models.MergeCommit, error)
}
