package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kr1x/gh-renovate/internal/gh"
	"github.com/kr1x/gh-renovate/internal/models"
	"github.com/kr1x/gh-renovate/internal/report"
	"github.com/kr1x/gh-renovate/internal/repositories"
	"github.com/kr1x/gh-renovate/internal/services"
	"github.com/kr1x/gh-renovate/internal/workflow"
	"github.com/kr1x/gh-renovate/pkg/config"
	"github.com/kr1x/gh-renovate/pkg/database"
	"github.com/kr1x/gh-renovate/pkg/logger"
)

type mergeFlags struct {
	all           bool
	dryRun        bool
	yes           bool
	noContinue    bool
	method        string
	ciTimeout     time.Duration
	rebaseTimeout time.Duration
	reportPath    string
}

func newMergeCmd() *cobra.Command {
	flags := &mergeFlags{}

	cmd := &cobra.Command{
		Use:   "merge [OWNER/REPO] [PR...]",
		Short: "Merge the given dependency-update pull requests",
		Long: `Merge drives each listed pull request to a merged, skipped or failed
outcome, in order. With --all, every open dependency-update PR is selected.
Without a repository argument the most recently used one is reused.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, args, flags)
		},
	}

	cfg := config.AppConfig
	cmd.Flags().BoolVar(&flags.all, "all", false, "select every open dependency-update PR")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "report intended actions without mutating anything")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "never prompt, always continue the batch")
	cmd.Flags().BoolVar(&flags.noContinue, "no-continue", false, "stop the batch on the first non-merged outcome")
	cmd.Flags().StringVar(&flags.method, "method", cfg.Merge.Method, "merge method: merge, squash or rebase")
	cmd.Flags().DurationVar(&flags.ciTimeout, "ci-timeout", cfg.Merge.CITimeout, "how long to wait for CI checks")
	cmd.Flags().DurationVar(&flags.rebaseTimeout, "rebase-timeout", cfg.Merge.RebaseTimeout, "how long to wait for a rebase")
	cmd.Flags().StringVar(&flags.reportPath, "report", "", "write an .xlsx report to this path")

	return cmd
}

func runMerge(cmd *cobra.Command, args []string, flags *mergeFlags) error {
	ctx := cmd.Context()

	recentSvc := services.NewRecentRepositoryService(repositories.NewRecentRepositoryRepository(database.DB))
	historySvc := services.NewHistoryService(repositories.NewMergeRunRepository(database.DB))

	owner, repo, rest, err := resolveRepo(args, recentSvc)
	if err != nil {
		return err
	}

	client, err := gh.NewClient(ctx, config.AppConfig.GitHub.Token, owner, repo)
	if err != nil {
		return err
	}
	if err := client.Verify(ctx); err != nil {
		return err
	}

	prNumbers, err := selectPullRequests(cmd, client, rest, flags.all)
	if err != nil {
		return err
	}
	if len(prNumbers) == 0 {
		fmt.Println("No pull requests to process.")
		return nil
	}

	if err := recentSvc.Remember(owner, repo); err != nil {
		logger.Warnf("Could not record recent repository: %v", err)
	}

	opts := models.DefaultOptions()
	opts.CITimeout = flags.ciTimeout
	opts.RebaseTimeout = flags.rebaseTimeout
	opts.Method = models.MergeMethod(flags.method)
	opts.DryRun = flags.dryRun
	opts.ContinueOnFailure = !flags.noContinue

	var decide workflow.DecisionFunc
	if !flags.yes {
		decide = promptToContinue
	}

	repoRef := owner + "/" + repo
	run, err := historySvc.StartRun(repoRef, opts.DryRun)
	if err != nil {
		logger.Warnf("Could not record merge run: %v", err)
	}

	summary, runErr := workflow.MergePullRequests(ctx, client, repoRef, prNumbers, opts, decide, func(msg string) {
		fmt.Println(msg)
	})
	if summary != nil {
		if run != nil {
			if err := historySvc.FinishRun(run, summary); err != nil {
				logger.Warnf("Could not record merge results: %v", err)
			}
		}
		printSummary(summary)
		if flags.reportPath != "" {
			if err := report.WriteExcel(flags.reportPath, repoRef, summary); err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", flags.reportPath)
		}
	}
	if runErr != nil {
		return runErr
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d pull requests failed", summary.Failed)
	}
	return nil
}

// resolveRepo picks the repository from the arguments or the recent list and
// returns the remaining arguments.
func resolveRepo(args []string, recentSvc *services.RecentRepositoryService) (string, string, []string, error) {
	if len(args) > 0 && strings.Contains(args[0], "/") {
		owner, repo, err := parseRepo(args[0])
		return owner, repo, args[1:], err
	}

	recent, err := recentSvc.MostRecent()
	if err != nil || recent == nil {
		return "", "", nil, models.NewValidationError("no repository given and no recent repository recorded")
	}
	fmt.Printf("Using recent repository %s\n", recent.FullName())
	return recent.Owner, recent.Name, args, nil
}

// selectPullRequests resolves the ordered PR list from arguments or --all
func selectPullRequests(cmd *cobra.Command, client *gh.Client, args []string, all bool) ([]int, error) {
	if all {
		prs, err := client.ListDependencyPullRequests(cmd.Context())
		if err != nil {
			return nil, err
		}
		numbers := make([]int, 0, len(prs))
		for _, pr := range prs {
			numbers = append(numbers, pr.Number)
		}
		return numbers, nil
	}

	var numbers []int
	for _, arg := range args {
		n, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
		if err != nil || n <= 0 {
			return nil, models.NewValidationError(fmt.Sprintf("invalid PR number %q", arg))
		}
		numbers = append(numbers, n)
	}
	return numbers, nil
}

// promptToContinue asks whether the batch should keep going after a
// non-merged outcome.
func promptToContinue(prNumber int, reason string) bool {
	fmt.Printf("PR #%d was not merged (%s). Continue with the remaining PRs? [Y/n] ", prNumber, reason)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "" || answer == "y" || answer == "yes"
}

func printSummary(summary *models.BatchSummary) {
	fmt.Println()
	mode := ""
	if summary.DryRun {
		mode = " (dry-run)"
	}
	fmt.Printf("Summary%s: %d processed, %d merged, %d skipped, %d failed\n",
		mode, summary.Processed, summary.Merged, summary.Skipped, summary.Failed)
	for _, r := range summary.Results {
		line := fmt.Sprintf("  #%-5d %-8s %s", r.PRNumber, r.Outcome, r.Title)
		if r.Reason != "" {
			line += fmt.Sprintf(": %s", r.Reason)
		}
		fmt.Println(line)
	}
}
