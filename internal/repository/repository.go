package repository

import (
	"github.com/taskboard/taskboard-api/internal/models"
	"github.com/taskboard/taskboard-api/internal/utils"
)

// TaskRepository defines the interface for task data access. Mutating methods
// accept the activity record that documents the change; task and activity are
// committed in a single transaction so history never diverges from state.
type TaskRepository interface {
	// Create persists a new task together with its creation activity
	Create(task *models.Task, activity *models.Activity) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// ListForUser retrieves tasks where the user is creator or assignee
	ListForUser(userID uint64, params utils.PaginationParams) ([]models.Task, int64, error)

	// Update saves a modified task; activity may be nil when the change
	// produced no loggable diff
	Update(task *models.Task, activity *models.Activity) error

	// Delete soft deletes a task and records the deletion activity
	Delete(task *models.Task, activity *models.Activity) error

	// TitleExists reports whether the creator already has a live task with
	// this title, excluding the given task ID
	TitleExists(creatorID uint64, title string, excludeID uint64) (bool, error)

	// LeastLoadedUser returns the user with the fewest non-done assigned
	// tasks, ties broken by lowest user ID
	LeastLoadedUser() (*models.User, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}

// ActivityRepository defines the interface for the activity feed
type ActivityRepository interface {
	// ListRecent returns the newest activity entries with actors resolved
	ListRecent(limit int) ([]models.Activity, error)
}
