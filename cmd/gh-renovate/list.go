package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kr1x/gh-renovate/internal/gh"
	"github.com/kr1x/gh-renovate/internal/models"
	"github.com/kr1x/gh-renovate/internal/repositories"
	"github.com/kr1x/gh-renovate/internal/services"
	"github.com/kr1x/gh-renovate/pkg/config"
	"github.com/kr1x/gh-renovate/pkg/database"
	"github.com/kr1x/gh-renovate/pkg/logger"
)

func newListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list [OWNER/REPO]",
		Short: "List open dependency-update pull requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			recentSvc := services.NewRecentRepositoryService(repositories.NewRecentRepositoryRepository(database.DB))
			owner, repo, _, err := resolveRepo(args, recentSvc)
			if err != nil {
				return err
			}

			client, err := gh.NewClient(ctx, config.AppConfig.GitHub.Token, owner, repo)
			if err != nil {
				return err
			}

			var prs []*models.PullRequest
			if all {
				prs, err = client.ListOpenPullRequests(ctx)
			} else {
				prs, err = client.ListDependencyPullRequests(ctx)
			}
			if err != nil {
				return err
			}

			if err := recentSvc.Remember(owner, repo); err != nil {
				logger.Warnf("Could not record recent repository: %v", err)
			}

			if len(prs) == 0 {
				fmt.Println("No open pull requests found.")
				return nil
			}
			for _, pr := range prs {
				state := pr.MergeableState
				if pr.Draft {
					state = "draft"
				}
				fmt.Printf("#%-5d %-10s %s\n", pr.Number, state, pr.Title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "list every open PR, not just dependency updates")
	return cmd
}
