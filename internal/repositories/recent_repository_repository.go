package repositories

import (
	"database/sql"
	"time"

	"github.com/kr1x/gh-renovate/internal/models"
)

type RecentRepositoryRepository struct {
	db *sql.DB
}

func NewRecentRepositoryRepository(db *sql.DB) *RecentRepositoryRepository {
	return &RecentRepositoryRepository{
		db: db,
	}
}

// Touch records a use of the repository, creating the entry if needed
func (r *RecentRepositoryRepository) Touch(owner, name string) error {
	query := `
		INSERT INTO recent_repositories (id, owner, name, use_count, last_used_at, created_at)
		VALUES ($1, $2, $3, 1, $4, $4)
		ON CONFLICT(owner, name) DO UPDATE SET
			use_count = use_count + 1,
			last_used_at = $4
	`

	entry := models.NewRecentRepository(owner, name)
	_, err := r.db.Exec(query, entry.ID, entry.Owner, entry.Name, time.Now())
	return err
}

// GetMostRecent retrieves the most recently used repositories
func (r *RecentRepositoryRepository) GetMostRecent(limit int) ([]*models.RecentRepository, error) {
	query := `
		SELECT id, owner, name, use_count, last_used_at, created_at
		FROM recent_repositories
		ORDER BY last_used_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repos []*models.RecentRepository
	for rows.Next() {
		repo := &models.RecentRepository{}
		err := rows.Scan(
			&repo.ID,
			&repo.Owner,
			&repo.Name,
			&repo.UseCount,
			&repo.LastUsedAt,
			&repo.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}

	return repos, rows.Err()
}
