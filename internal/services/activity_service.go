package services

import (
	"github.com/taskboard/taskboard-api/internal/constants"
	"github.com/taskboard/taskboard-api/internal/models"
	"github.com/taskboard/taskboard-api/internal/repository"
)

// ActivityService serves the activity feed.
type ActivityService struct {
	activityRepo repository.ActivityRepository
}

// NewActivityService creates a new ActivityService.
func NewActivityService(activityRepo repository.ActivityRepository) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
	}
}

// Recent returns the newest activity entries, newest first.
func (s *ActivityService) Recent() ([]models.Activity, error) {
	activities, err := s.activityRepo.ListRecent(constants.RecentActivityLimit)
	if err != nil {
		return nil, storeErr("failed to list activities", err)
	}

	return activities, nil
}
