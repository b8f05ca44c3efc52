package gh

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"

	"github.com/kr1x/gh-renovate/internal/models"
)

// Reviews fetches the review history and collapses it into the approval
// aggregate.
func (c *Client) Reviews(ctx context.Context, number int) (*models.ReviewInfo, error) {
	opt := &github.ListOptions{PerPage: 100}

	var reviews []models.Review
	for {
		page, resp, err := c.gh.PullRequests.ListReviews(ctx, c.owner, c.repo, number, opt)
		if err != nil {
			return nil, c.mapError(fmt.Sprintf("list reviews for PR #%d", number), err)
		}
		for _, r := range page {
			reviews = append(reviews, models.Review{
				Reviewer:    r.GetUser().GetLogin(),
				State:       r.GetState(),
				SubmittedAt: r.GetSubmittedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	return models.NewReviewInfo(reviews), nil
}

// ApprovePullRequest submits an approving review
func (c *Client) ApprovePullRequest(ctx context.Context, number int) error {
	review := &github.PullRequestReviewRequest{
		Event: github.String("APPROVE"),
	}
	if _, _, err := c.gh.PullRequests.CreateReview(ctx, c.owner, c.repo, number, review); err != nil {
		return c.mapError(fmt.Sprintf("approve PR #%d", number), err)
	}
	return nil
}
