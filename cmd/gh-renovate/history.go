package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kr1x/gh-renovate/internal/models"
	"github.com/kr1x/gh-renovate/internal/report"
	"github.com/kr1x/gh-renovate/internal/repositories"
	"github.com/kr1x/gh-renovate/internal/services"
	"github.com/kr1x/gh-renovate/pkg/database"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent merge runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			historySvc := services.NewHistoryService(repositories.NewMergeRunRepository(database.DB))

			runs, err := historySvc.RecentRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No merge runs recorded yet.")
				return nil
			}

			for _, run := range runs {
				mode := ""
				if run.DryRun {
					mode = " (dry-run)"
				}
				fmt.Printf("%s  %-30s %d merged, %d skipped, %d failed%s\n",
					run.StartedAt.Format(time.DateTime), run.Repository,
					run.Merged, run.Skipped, run.Failed, mode)
				fmt.Printf("    run id: %s\n", run.ID)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "how many runs to show")
	cmd.AddCommand(newHistoryExportCmd())
	return cmd
}

func newHistoryExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export [RUN-ID]",
		Short: "Export a recorded merge run as an .xlsx report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			historySvc := services.NewHistoryService(repositories.NewMergeRunRepository(database.DB))

			var run *models.MergeRun
			if len(args) == 1 {
				runs, err := historySvc.RecentRuns(100)
				if err != nil {
					return err
				}
				for _, r := range runs {
					if r.ID == args[0] {
						run = r
						break
					}
				}
				if run == nil {
					return models.NewValidationError(fmt.Sprintf("run %q not found", args[0]))
				}
			} else {
				runs, err := historySvc.RecentRuns(1)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					return models.NewValidationError("no merge runs recorded yet")
				}
				run = runs[0]
			}

			results, err := historySvc.RunResults(run.ID)
			if err != nil {
				return err
			}

			summary := &models.BatchSummary{DryRun: run.DryRun}
			for _, r := range results {
				summary.Record(models.MergeResult{
					PRNumber: r.PRNumber,
					Title:    r.Title,
					Outcome:  models.MergeOutcome(r.Outcome),
					Reason:   r.Reason,
				})
			}

			if err := report.WriteExcel(out, run.Repository, summary); err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "merge-report.xlsx", "output path for the report")
	return cmd
}
