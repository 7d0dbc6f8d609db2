package models

import (
	"time"
)

type ActivityType string

const (
	ActivityCreateTodo        ActivityType = "CREATE_TODO"
	ActivityUpdateStatus      ActivityType = "UPDATE_STATUS"
	ActivityAssignUser        ActivityType = "ASSIGN_USER"
	ActivitySmartAssign       ActivityType = "SMART_ASSIGN"
	ActivityUpdateTitle       ActivityType = "UPDATE_TITLE"
	ActivityUpdateDescription ActivityType = "UPDATE_DESCRIPTION"
	ActivityUpdateDueDate     ActivityType = "UPDATE_DUE_DATE"
	ActivityDeleteTodo        ActivityType = "DELETE_TODO"
)

// Activity is an insert-only audit record. TaskTitle is snapshotted at write
// time so the entry stays readable after the task itself is deleted.
type Activity struct {
	ID        uint64       `gorm:"primarykey" json:"id"`
	Type      ActivityType `gorm:"type:varchar(30);not null" json:"type"`
	Details   string       `gorm:"type:text;not null" json:"details"`
	UserID    uint64       `gorm:"not null;index:idx_activities_user_created" json:"user_id"`
	TaskID    *uint64      `gorm:"index:idx_activities_task_created" json:"task_id"`
	TaskTitle string       `gorm:"type:varchar(100)" json:"task_title"`
	OldValue  *string      `gorm:"type:varchar(255)" json:"old_value"`
	NewValue  *string      `gorm:"type:varchar(255)" json:"new_value"`
	CreatedAt time.Time    `gorm:"index:idx_activities_user_created;index:idx_activities_task_created" json:"created_at"`

	// Relations
	User User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Task *Task `gorm:"foreignKey:TaskID" json:"-"`
}
