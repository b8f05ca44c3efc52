package gh

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"

	"github.com/kr1x/gh-renovate/internal/models"
)

// ChecksStatus fetches the combined CI signal set for a commit hash: native
// check runs plus legacy commit statuses. A name present in both sets is
// counted once, with the native check run taking precedence.
func (c *Client) ChecksStatus(ctx context.Context, ref string) (*models.ChecksStatus, error) {
	var details []models.CheckDetail
	seen := make(map[string]bool)

	opt := &github.ListCheckRunsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		runs, resp, err := c.gh.Checks.ListCheckRunsForRef(ctx, c.owner, c.repo, ref, opt)
		if err != nil {
			return nil, c.mapError(fmt.Sprintf("list check runs for %s", ref), err)
		}
		for _, run := range runs.CheckRuns {
			name := run.GetName()
			if seen[name] {
				continue
			}
			seen[name] = true
			details = append(details, models.CheckDetail{
				Name:       name,
				Completed:  run.GetStatus() == "completed",
				Conclusion: run.GetConclusion(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	statusOpt := &github.ListOptions{PerPage: 100}
	for {
		combined, resp, err := c.gh.Repositories.GetCombinedStatus(ctx, c.owner, c.repo, ref, statusOpt)
		if err != nil {
			return nil, c.mapError(fmt.Sprintf("get combined status for %s", ref), err)
		}
		for _, status := range combined.Statuses {
			name := status.GetContext()
			if seen[name] {
				continue
			}
			seen[name] = true
			state := status.GetState()
			details = append(details, models.CheckDetail{
				Name:       name,
				Completed:  state != "pending",
				Conclusion: state,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		statusOpt.Page = resp.NextPage
	}

	return models.NewChecksStatus(details), nil
}
