package gh

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/kr1x/gh-renovate/internal/models"
	"github.com/kr1x/gh-renovate/pkg/logger"
)

// Client talks to GitHub for a single repository. It implements the
// workflow's host interface.
type Client struct {
	gh    *github.Client
	owner string
	repo  string
	log   *logrus.Entry
}

// NewClient creates a GitHub client with the provided token, scoped to one
// repository.
func NewClient(ctx context.Context, token, owner, repo string) (*Client, error) {
	if token == "" {
		return nil, models.NewAuthError("GitHub token is required (set GITHUB_TOKEN)", nil)
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		gh:    github.NewClient(tc),
		owner: owner,
		repo:  repo,
		log:   logger.WithFields(logrus.Fields{"component": "github", "repo": owner + "/" + repo}),
	}, nil
}

// Verify checks the credential before any batch work begins
func (c *Client) Verify(ctx context.Context) error {
	if _, _, err := c.gh.Users.Get(ctx, ""); err != nil {
		return models.NewAuthError("failed to authenticate with GitHub", c.mapError("verify credentials", err))
	}
	return nil
}

// PullRequest fetches a fresh snapshot of the pull request
func (c *Client) PullRequest(ctx context.Context, number int) (*models.PullRequest, error) {
	pr, _, err := c.gh.PullRequests.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return nil, c.mapError(fmt.Sprintf("fetch PR #%d", number), err)
	}
	return convertPullRequest(pr), nil
}

// ListOpenPullRequests returns every open pull request, oldest first
func (c *Client) ListOpenPullRequests(ctx context.Context) ([]*models.PullRequest, error) {
	opt := &github.PullRequestListOptions{
		State:       "open",
		Sort:        "created",
		Direction:   "asc",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var all []*models.PullRequest
	for {
		prs, resp, err := c.gh.PullRequests.List(ctx, c.owner, c.repo, opt)
		if err != nil {
			return nil, c.mapError("list open PRs", err)
		}
		for _, pr := range prs {
			all = append(all, convertPullRequest(pr))
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return all, nil
}

// ListDependencyPullRequests returns the open pull requests that look like
// dependency updates: authored by an update bot or carrying the
// "dependencies" label.
func (c *Client) ListDependencyPullRequests(ctx context.Context) ([]*models.PullRequest, error) {
	all, err := c.ListOpenPullRequests(ctx)
	if err != nil {
		return nil, err
	}

	var deps []*models.PullRequest
	for _, pr := range all {
		if isDependencyBot(pr.Author) || pr.HasLabel("dependencies") {
			deps = append(deps, pr)
		}
	}
	return deps, nil
}

func isDependencyBot(author string) bool {
	if !strings.HasSuffix(author, "[bot]") {
		return false
	}
	return strings.Contains(author, "renovate") || strings.Contains(author, "dependabot")
}

// Merge performs the merge with the given method
func (c *Client) Merge(ctx context.Context, number int, method models.MergeMethod) (*models.MergeCommit, error) {
	result, _, err := c.gh.PullRequests.Merge(ctx, c.owner, c.repo, number, "", &github.PullRequestOptions{
		MergeMethod: string(method),
	})
	if err != nil {
		return nil, c.mapMergeError(number, err)
	}
	return &models.MergeCommit{
		SHA:    result.GetSHA(),
		Merged: result.GetMerged(),
	}, nil
}

// convertPullRequest maps the API representation to the immutable snapshot
func convertPullRequest(pr *github.PullRequest) *models.PullRequest {
	var labels []string
	for _, l := range pr.Labels {
		labels = append(labels, l.GetName())
	}
	return &models.PullRequest{
		Number:         pr.GetNumber(),
		Title:          pr.GetTitle(),
		Body:           pr.GetBody(),
		State:          pr.GetState(),
		Merged:         pr.GetMerged(),
		Draft:          pr.GetDraft(),
		Mergeable:      pr.Mergeable,
		MergeableState: pr.GetMergeableState(),
		HeadSHA:        pr.GetHead().GetSHA(),
		HeadRef:        pr.GetHead().GetRef(),
		BaseRef:        pr.GetBase().GetRef(),
		Author:         pr.GetUser().GetLogin(),
		Labels:         labels,
	}
}
