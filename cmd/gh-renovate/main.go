package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kr1x/gh-renovate/internal/models"
	"github.com/kr1x/gh-renovate/pkg/config"
	"github.com/kr1x/gh-renovate/pkg/database"
	"github.com/kr1x/gh-renovate/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "gh-renovate",
	Short: "Merge dependency-update pull requests in batches",
	Long: `gh-renovate drives batches of dependency-update pull requests from open
to merged: it waits for CI, approves, asks the update bot to rebase branches
that fall behind, and merges, deferring transiently blocked PRs to a second
pass so one stuck PR does not stall the batch.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func main() {
	logger.Init()

	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if err := database.Init(config.AppConfig.Database.Path); err != nil {
		logger.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(newMergeCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newHistoryCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseRepo splits an owner/name repository reference
func parseRepo(ref string) (string, string, error) {
	parts := strings.Split(ref, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", models.NewValidationError(
			fmt.Sprintf("invalid repository reference %q, expected OWNER/REPO", ref))
	}
	return parts[0], parts[1], nil
}
