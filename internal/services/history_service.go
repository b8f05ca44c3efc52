package services

import (
	"fmt"

	"github.com/kr1x/gh-renovate/internal/models"
	"github.com/kr1x/gh-renovate/internal/repositories"
)

type HistoryService struct {
	mergeRunRepo *repositories.MergeRunRepository
}

func NewHistoryService(mergeRunRepo *repositories.MergeRunRepository) *HistoryService {
	return &HistoryService{
		mergeRunRepo: mergeRunRepo,
	}
}

// StartRun records the beginning of a batch
func (s *HistoryService) StartRun(repository string, dryRun bool) (*models.MergeRun, error) {
	run := models.NewMergeRun(repository, dryRun)
	if err := s.mergeRunRepo.Create(run); err != nil {
		return nil, fmt.Errorf("failed to create merge run: %w", err)
	}
	return run, nil
}

// FinishRun records the batch summary against the run
func (s *HistoryService) FinishRun(run *models.MergeRun, summary *models.BatchSummary) error {
	run.Finish(summary)
	if err := s.mergeRunRepo.Update(run); err != nil {
		return fmt.Errorf("failed to update merge run: %w", err)
	}

	for _, result := range summary.Results {
		row := models.NewMergeRunResult(run.ID, result)
		if err := s.mergeRunRepo.CreateResult(row); err != nil {
			return fmt.Errorf("failed to record result for PR #%d: %w", result.PRNumber, err)
		}
	}
	return nil
}

// RecentRuns returns the most recent merge runs
func (s *HistoryService) RecentRuns(limit int) ([]*models.MergeRun, error) {
	return s.mergeRunRepo.GetRecentRuns(limit)
}

// RunResults returns the per-PR outcomes of a run
func (s *HistoryService) RunResults(runID string) ([]*models.MergeRunResult, error) {
	return s.mergeRunRepo.GetResults(runID)
}
