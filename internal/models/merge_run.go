package models

import (
	"time"

	"github.com/google/uuid"
)

// MergeRun is the persisted record of one batch run.
type MergeRun struct {
	ID         string     `json:"id"`
	Repository string     `json:"repository"`
	DryRun     bool       `json:"dry_run"`
	Processed  int        `json:"processed"`
	Merged     int        `json:"merged"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

// NewMergeRun creates a new MergeRun with a generated UUID
func NewMergeRun(repository string, dryRun bool) *MergeRun {
	return &MergeRun{
		ID:         uuid.New().String(),
		Repository: repository,
		DryRun:     dryRun,
		StartedAt:  time.Now(),
	}
}

// Finish stamps the run with its summary counts and completion time
func (r *MergeRun) Finish(summary *BatchSummary) {
	now := time.Now()
	r.Processed = summary.Processed
	r.Merged = summary.Merged
	r.Skipped = summary.Skipped
	r.Failed = summary.Failed
	r.FinishedAt = &now
}

// MergeRunResult is one persisted per-PR outcome belonging to a MergeRun.
type MergeRunResult struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	PRNumber  int       `json:"pr_number"`
	Title     string    `json:"title"`
	Outcome   string    `json:"outcome"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMergeRunResult creates a persisted result row from a MergeResult
func NewMergeRunResult(runID string, res MergeResult) *MergeRunResult {
	return &MergeRunResult{
		ID:        uuid.New().String(),
		RunID:     runID,
		PRNumber:  res.PRNumber,
		Title:     res.Title,
		Outcome:   string(res.Outcome),
		Reason:    res.Reason,
		CreatedAt: time.Now(),
	}
}
