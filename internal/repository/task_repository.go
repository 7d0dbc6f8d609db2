package repository

import (
	"context"
	"time"

	"github.com/taskboard/taskboard-api/internal/database"
	"github.com/taskboard/taskboard-api/internal/models"
	"github.com/taskboard/taskboard-api/internal/utils"
	"gorm.io/gorm"
)

// storeTimeout bounds every call into the persistence layer.
const storeTimeout = 5 * time.Second

func session(db *gorm.DB) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	return db.WithContext(ctx), cancel
}

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create persists a new task and its creation activity in one transaction
func (r *GormTaskRepository) Create(task *models.Task, activity *models.Activity) error {
	db, cancel := session(r.db)
	defer cancel()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}

		activity.TaskID = &task.ID
		activity.TaskTitle = task.Title
		return tx.Create(activity).Error
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	db, cancel := session(r.db)
	defer cancel()

	var task models.Task
	query := db
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// ListForUser retrieves tasks where the user is creator or assignee
func (r *GormTaskRepository) ListForUser(userID uint64, params utils.PaginationParams) ([]models.Task, int64, error) {
	db, cancel := session(r.db)
	defer cancel()

	query := db.Model(&models.Task{}).
		Where("tasks.creator_id = ? OR tasks.assignee_id = ?", userID, userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	err := query.
		Order("tasks.created_at DESC, tasks.id DESC").
		Scopes(database.Paginate(params)).
		Preload("Creator").
		Preload("Assignee").
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update saves a modified task together with its change activity
func (r *GormTaskRepository) Update(task *models.Task, activity *models.Activity) error {
	db, cancel := session(r.db)
	defer cancel()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}

		if activity == nil {
			return nil
		}

		activity.TaskID = &task.ID
		activity.TaskTitle = task.Title
		return tx.Create(activity).Error
	})
}

// Delete soft deletes a task and records the deletion activity. Existing
// activity rows stay untouched; their TaskTitle snapshot keeps history
// readable.
func (r *GormTaskRepository) Delete(task *models.Task, activity *models.Activity) error {
	db, cancel := session(r.db)
	defer cancel()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Task{}, task.ID).Error; err != nil {
			return err
		}

		activity.TaskID = &task.ID
		activity.TaskTitle = task.Title
		return tx.Create(activity).Error
	})
}

// TitleExists reports whether the creator already has a live task with this title
func (r *GormTaskRepository) TitleExists(creatorID uint64, title string, excludeID uint64) (bool, error) {
	db, cancel := session(r.db)
	defer cancel()

	var count int64
	query := db.Model(&models.Task{}).
		Where("creator_id = ? AND title = ?", creatorID, title)
	if excludeID != 0 {
		query = query.Where("id != ?", excludeID)
	}

	if err := query.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// LeastLoadedUser computes, per user, the count of assigned tasks that are
// not done, and returns the user with the minimum count. Users with zero
// tasks (or only done tasks) count as zero; ties go to the lowest user ID.
func (r *GormTaskRepository) LeastLoadedUser() (*models.User, error) {
	db, cancel := session(r.db)
	defer cancel()

	var user models.User
	err := db.Model(&models.User{}).
		Select("users.*").
		Joins("LEFT JOIN tasks ON tasks.assignee_id = users.id AND tasks.status != ? AND tasks.deleted_at IS NULL", models.TaskStatusDone).
		Group("users.id").
		Order("COUNT(tasks.id) ASC, users.id ASC").
		Limit(1).
		Take(&user).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}
