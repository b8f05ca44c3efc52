package services

import (
	"github.com/kr1x/gh-renovate/internal/models"
	"github.com/kr1x/gh-renovate/internal/repositories"
)

type RecentRepositoryService struct {
	recentRepo *repositories.RecentRepositoryRepository
}

func NewRecentRepositoryService(recentRepo *repositories.RecentRepositoryRepository) *RecentRepositoryService {
	return &RecentRepositoryService{
		recentRepo: recentRepo,
	}
}

// Remember records a use of the repository
func (s *RecentRepositoryService) Remember(owner, name string) error {
	return s.recentRepo.Touch(owner, name)
}

// MostRecent returns the most recently used repository, if any
func (s *RecentRepositoryService) MostRecent() (*models.RecentRepository, error) {
	repos, err := s.recentRepo.GetMostRecent(1)
	if err != nil {
		return nil, err
	}
	if len(repos) == 0 {
		return nil, nil
	}
	return repos[0], nil
}

// Recent returns the most recently used repositories
func (s *RecentRepositoryService) Recent(limit int) ([]*models.RecentRepository, error) {
	return s.recentRepo.GetMostRecent(limit)
}
