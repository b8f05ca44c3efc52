package gh

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v57/github"

	"github.com/kr1x/gh-renovate/internal/models"
	"github.com/kr1x/gh-renovate/internal/workflow"
)

// Unchecked rebase checkbox as rendered into update-bot PR bodies.
const rebaseCheckbox = "[ ] <!-- rebase-check -->"

// TriggerRebase asks the update bot to rebase the branch. The preferred
// mechanism is ticking the rebase checkbox in the PR body; when the body has
// no checkbox, a bot-command comment is posted instead.
func (c *Client) TriggerRebase(ctx context.Context, pr *models.PullRequest) (workflow.RebaseMechanism, error) {
	if strings.Contains(pr.Body, rebaseCheckbox) {
		newBody := strings.Replace(pr.Body, rebaseCheckbox, "[x] <!-- rebase-check -->", 1)
		_, _, err := c.gh.PullRequests.Edit(ctx, c.owner, c.repo, pr.Number, &github.PullRequest{
			Body: github.String(newBody),
		})
		if err != nil {
			return "", c.mapError(fmt.Sprintf("tick rebase checkbox on PR #%d", pr.Number), err)
		}
		return workflow.RebaseViaCheckbox, nil
	}

	comment := &github.IssueComment{
		Body: github.String(rebaseCommand(pr.Author)),
	}
	_, _, err := c.gh.Issues.CreateComment(ctx, c.owner, c.repo, pr.Number, comment)
	if err != nil {
		return "", c.mapError(fmt.Sprintf("post rebase comment on PR #%d", pr.Number), err)
	}
	return workflow.RebaseViaComment, nil
}

// rebaseCommand picks the comment convention understood by the PR's bot.
func rebaseCommand(author string) string {
	if strings.Contains(author, "dependabot") {
		return "@dependabot rebase"
	}
	return "@renovatebot rebase"
}
