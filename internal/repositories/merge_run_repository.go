package repositories

import (
	"database/sql"

	"github.com/kr1x/gh-renovate/internal/models"
)

type MergeRunRepository struct {
	db *sql.DB
}

func NewMergeRunRepository(db *sql.DB) *MergeRunRepository {
	return &MergeRunRepository{
		db: db,
	}
}

// Create persists a new merge run
func (r *MergeRunRepository) Create(run *models.MergeRun) error {
	query := `
		INSERT INTO merge_runs (id, repository, dry_run, processed, merged, skipped, failed, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(query,
		run.ID,
		run.Repository,
		run.DryRun,
		run.Processed,
		run.Merged,
		run.Skipped,
		run.Failed,
		run.StartedAt,
		run.FinishedAt,
	)

	return err
}

// Update persists the final counts of a merge run
func (r *MergeRunRepository) Update(run *models.MergeRun) error {
	query := `
		UPDATE merge_runs
		SET processed = $1, merged = $2, skipped = $3, failed = $4, finished_at = $5
		WHERE id = $6
	`

	_, err := r.db.Exec(query,
		run.Processed,
		run.Merged,
		run.Skipped,
		run.Failed,
		run.FinishedAt,
		run.ID,
	)

	return err
}

// CreateResult persists one per-PR outcome of a run
func (r *MergeRunRepository) CreateResult(result *models.MergeRunResult) error {
	query := `
		INSERT INTO merge_run_results (id, run_id, pr_number, title, outcome, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(query,
		result.ID,
		result.RunID,
		result.PRNumber,
		result.Title,
		result.Outcome,
		result.Reason,
		result.CreatedAt,
	)

	return err
}

// GetRecentRuns retrieves the most recent merge runs
func (r *MergeRunRepository) GetRecentRuns(limit int) ([]*models.MergeRun, error) {
	query := `
		SELECT id, repository, dry_run, processed, merged, skipped, failed, started_at, finished_at
		FROM merge_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.MergeRun
	for rows.Next() {
		run := &models.MergeRun{}
		err := rows.Scan(
			&run.ID,
			&run.Repository,
			&run.DryRun,
			&run.Processed,
			&run.Merged,
			&run.Skipped,
			&run.Failed,
			&run.StartedAt,
			&run.FinishedAt,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetResults retrieves the per-PR outcomes of a run in recorded order
func (r *MergeRunRepository) GetResults(runID string) ([]*models.MergeRunResult, error) {
	query := `
		SELECT id, run_id, pr_number, title, outcome, reason, created_at
		FROM merge_run_results
		WHERE run_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*models.MergeRunResult
	for rows.Next() {
		result := &models.MergeRunResult{}
		err := rows.Scan(
			&result.ID,
			&result.RunID,
			&result.PRNumber,
			&result.Title,
			&result.Outcome,
			&result.Reason,
			&result.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, rows.Err()
}
