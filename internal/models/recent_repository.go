package models

import (
	"time"

	"github.com/google/uuid"
)

// RecentRepository remembers a repository the user has worked on, so the CLI
// can offer it again without retyping.
type RecentRepository struct {
	ID         string    `json:"id"`
	Owner      string    `json:"owner"`
	Name       string    `json:"name"`
	UseCount   int       `json:"use_count"`
	LastUsedAt time.Time `json:"last_used_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewRecentRepository creates a new RecentRepository with a generated UUID
func NewRecentRepository(owner, name string) *RecentRepository {
	now := time.Now()
	return &RecentRepository{
		ID:         uuid.New().String(),
		Owner:      owner,
		Name:       name,
		UseCount:   1,
		LastUsedAt: now,
		CreatedAt:  now,
	}
}

// FullName returns the owner/name form of the repository
func (r *RecentRepository) FullName() string {
	return r.Owner + "/" + r.Name
}
