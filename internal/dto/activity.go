package dto

import (
	"time"

	"github.com/taskboard/taskboard-api/internal/models"
)

// ActivityDTO represents an activity log entry in API responses
type ActivityDTO struct {
	ID        uint64              `json:"id"`
	Type      models.ActivityType `json:"type"`
	Details   string              `json:"details"`
	User      *UserDTO            `json:"user,omitempty"`
	TaskID    *uint64             `json:"task_id"`
	TaskTitle string              `json:"task_title"`
	OldValue  *string             `json:"old_value"`
	NewValue  *string             `json:"new_value"`
	CreatedAt time.Time           `json:"created_at"`
}

// ToActivityDTO converts an Activity model to ActivityDTO
func ToActivityDTO(activity models.Activity) ActivityDTO {
	dto := ActivityDTO{
		ID:        activity.ID,
		Type:      activity.Type,
		Details:   activity.Details,
		TaskID:    activity.TaskID,
		TaskTitle: activity.TaskTitle,
		OldValue:  activity.OldValue,
		NewValue:  activity.NewValue,
		CreatedAt: activity.CreatedAt,
	}

	if activity.User.ID != 0 {
		user := ToUserDTO(activity.User)
		dto.User = &user
	}

	return dto
}

// ToActivityDTOs converts a slice of activities
func ToActivityDTOs(activities []models.Activity) []ActivityDTO {
	items := make([]ActivityDTO, len(activities))
	for i, activity := range activities {
		items[i] = ToActivityDTO(activity)
	}
	return items
}
