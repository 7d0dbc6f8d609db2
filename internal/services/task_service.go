package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/taskboard/taskboard-api/internal/constants"
	"github.com/taskboard/taskboard-api/internal/logging"
	"github.com/taskboard/taskboard-api/internal/models"
	"github.com/taskboard/taskboard-api/internal/realtime"
	"github.com/taskboard/taskboard-api/internal/repository"
	"github.com/taskboard/taskboard-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrNotTaskCreator       = errors.New("only the task creator can perform this action")
	ErrTaskPermissionDenied = errors.New("user does not have permission to modify this task")
	ErrDuplicateTitle       = errors.New("a task with this title already exists")
	ErrNoEligibleUser       = errors.New("no users available for assignment")
	ErrAssigneeNotFound     = errors.New("assignee does not exist")
	ErrStoreUnavailable     = errors.New("storage temporarily unavailable")
)

// ValidationError reports a field that failed input validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// TaskService handles task business logic: validation, persistence,
// smart assignment, activity recording and change broadcasting.
type TaskService struct {
	taskRepo    repository.TaskRepository
	userRepo    repository.UserRepository
	broadcaster realtime.Broadcaster
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, broadcaster realtime.Broadcaster) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		broadcaster: broadcaster,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
}

// UpdateTaskInput represents a partial patch. Nil pointers leave fields
// untouched; the Clear flags express an explicit null.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	DueDate       *time.Time
	ClearDueDate  bool
	AssigneeID    *uint64
	ClearAssignee bool
}

// List returns tasks where the user is creator or assignee
func (s *TaskService) List(userID uint64, params utils.PaginationParams) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.ListForUser(userID, params)
	if err != nil {
		return nil, 0, storeErr("failed to list tasks", err)
	}

	return tasks, total, nil
}

// Create validates the input and persists a new task together with its
// CREATE_TODO activity, then broadcasts both to connected observers.
func (s *TaskService) Create(input CreateTaskInput, creatorID uint64) (*models.Task, error) {
	title, err := s.validateTitle(input.Title, creatorID, 0)
	if err != nil {
		return nil, err
	}

	description, err := validateDescription(input.Description)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	if !status.Valid() {
		return nil, validationErr("status", fmt.Sprintf("invalid status: %s", status))
	}

	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !priority.Valid() {
		return nil, validationErr("priority", fmt.Sprintf("invalid priority: %s", priority))
	}

	task := &models.Task{
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		DueDate:     input.DueDate,
		CreatorID:   creatorID,
	}

	activity := &models.Activity{
		Type:    models.ActivityCreateTodo,
		Details: fmt.Sprintf("Task '%s' was created.", title),
		UserID:  creatorID,
	}

	if err := s.taskRepo.Create(task, activity); err != nil {
		return nil, storeErr("failed to create task", err)
	}

	created, err := s.taskRepo.FindByID(task.ID, "Creator", "Assignee")
	if err != nil {
		return nil, storeErr("failed to reload task", err)
	}

	activity.User = created.Creator
	s.broadcaster.Publish(realtime.Event{Type: realtime.EventTaskCreated, Payload: created})
	s.broadcaster.Publish(realtime.Event{Type: realtime.EventActivityCreated, Payload: activity})

	return created, nil
}

// Update applies a partial patch. The diff is computed against the row read
// in this request; a patch that changes nothing records no activity and
// broadcasts nothing. Returns the updated task and the changed-field set.
func (s *TaskService) Update(taskID uint64, input UpdateTaskInput, requestorID uint64) (*models.Task, []FieldChange, error) {
	task, err := s.taskRepo.FindByID(taskID, "Creator", "Assignee")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTaskNotFound
		}
		return nil, nil, storeErr("failed to find task", err)
	}

	if !canModify(task, requestorID) {
		return nil, nil, ErrTaskPermissionDenied
	}

	oldView := viewOf(task)
	oldPriority := task.Priority

	if input.Title != nil {
		title, err := s.validateTitle(*input.Title, task.CreatorID, task.ID)
		if err != nil {
			return nil, nil, err
		}
		task.Title = title
	}
	if input.Description != nil {
		description, err := validateDescription(*input.Description)
		if err != nil {
			return nil, nil, err
		}
		task.Description = description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, nil, validationErr("status", fmt.Sprintf("invalid status: %s", *input.Status))
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, nil, validationErr("priority", fmt.Sprintf("invalid priority: %s", *input.Priority))
		}
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.ClearAssignee {
		task.AssigneeID = nil
		task.Assignee = nil
	} else if input.AssigneeID != nil {
		assignee, err := s.userRepo.FindByID(*input.AssigneeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, ErrAssigneeNotFound
			}
			return nil, nil, storeErr("failed to find assignee", err)
		}
		task.AssigneeID = &assignee.ID
		task.Assignee = assignee
	}

	newView := viewOf(task)
	activityType, changes, details := diffTasks(oldView, newView)

	// Priority participates in the patch but not in the activity log; a
	// priority-only change still has to commit.
	if len(changes) == 0 && task.Priority == oldPriority {
		return task, nil, nil
	}

	var activity *models.Activity
	if len(changes) > 0 {
		activity = &models.Activity{
			Type:     activityType,
			Details:  details,
			UserID:   requestorID,
			OldValue: &changes[0].Old,
			NewValue: &changes[0].New,
		}
	}

	if err := s.taskRepo.Update(task, activity); err != nil {
		return nil, nil, storeErr("failed to update task", err)
	}

	s.broadcaster.Publish(realtime.Event{Type: realtime.EventTaskUpdated, Payload: task})
	if activity != nil {
		s.attachActor(activity, requestorID)
		s.broadcaster.Publish(realtime.Event{Type: realtime.EventActivityCreated, Payload: activity})
	}

	return task, changes, nil
}

// Delete removes a task. Only the creator may delete; the task's activity
// history is retained.
func (s *TaskService) Delete(taskID, requestorID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return storeErr("failed to find task", err)
	}

	if task.CreatorID != requestorID {
		return ErrNotTaskCreator
	}

	activity := &models.Activity{
		Type:    models.ActivityDeleteTodo,
		Details: fmt.Sprintf("Task '%s' was deleted.", task.Title),
		UserID:  requestorID,
	}

	if err := s.taskRepo.Delete(task, activity); err != nil {
		return storeErr("failed to delete task", err)
	}

	s.broadcaster.Publish(realtime.Event{Type: realtime.EventTaskDeleted, Payload: deletedTask{ID: task.ID}})
	s.attachActor(activity, requestorID)
	s.broadcaster.Publish(realtime.Event{Type: realtime.EventActivityCreated, Payload: activity})

	return nil
}

// SmartAssign reassigns the task to the least-loaded user and records a
// SMART_ASSIGN activity citing the previous assignee.
func (s *TaskService) SmartAssign(taskID, requestorID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Creator", "Assignee")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, storeErr("failed to find task", err)
	}

	best, err := s.taskRepo.LeastLoadedUser()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoEligibleUser
		}
		return nil, storeErr("failed to select assignee", err)
	}

	oldLabel := "unassigned"
	oldValue := "unassigned"
	if task.Assignee != nil {
		oldLabel = fmt.Sprintf("'%s'", task.Assignee.Name)
		oldValue = task.Assignee.Name
	}

	task.AssigneeID = &best.ID
	task.Assignee = best

	activity := &models.Activity{
		Type:     models.ActivitySmartAssign,
		Details:  fmt.Sprintf("Task '%s' was smart-assigned from %s to '%s'.", task.Title, oldLabel, best.Name),
		UserID:   requestorID,
		OldValue: &oldValue,
		NewValue: &best.Name,
	}

	if err := s.taskRepo.Update(task, activity); err != nil {
		return nil, storeErr("failed to smart-assign task", err)
	}

	s.broadcaster.Publish(realtime.Event{Type: realtime.EventTaskUpdated, Payload: task})
	s.attachActor(activity, requestorID)
	s.broadcaster.Publish(realtime.Event{Type: realtime.EventActivityCreated, Payload: activity})

	return task, nil
}

type deletedTask struct {
	ID uint64 `json:"id"`
}

func canModify(task *models.Task, userID uint64) bool {
	if task.CreatorID == userID {
		return true
	}
	return task.AssigneeID != nil && *task.AssigneeID == userID
}

// attachActor resolves the acting user for broadcast payloads. Enrichment
// only; a lookup failure is logged and the event goes out without it.
func (s *TaskService) attachActor(activity *models.Activity, userID uint64) {
	actor, err := s.userRepo.FindByID(userID)
	if err != nil {
		logging.Logger.Warnw("failed to resolve activity actor", "user_id", userID, "error", err)
		return
	}
	activity.User = *actor
}

func (s *TaskService) validateTitle(title string, creatorID, excludeTaskID uint64) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", validationErr("title", "title is required")
	}
	if utf8.RuneCountInString(trimmed) > constants.MaxTitleLength {
		return "", validationErr("title", fmt.Sprintf("title cannot exceed %d characters", constants.MaxTitleLength))
	}
	for _, reserved := range models.ReservedTitles {
		if trimmed == reserved {
			return "", validationErr("title", "task title cannot be a column name")
		}
	}

	exists, err := s.taskRepo.TitleExists(creatorID, trimmed, excludeTaskID)
	if err != nil {
		return "", storeErr("failed to check title uniqueness", err)
	}
	if exists {
		return "", ErrDuplicateTitle
	}

	return trimmed, nil
}

func validateDescription(description string) (string, error) {
	trimmed := strings.TrimSpace(description)
	if utf8.RuneCountInString(trimmed) > constants.MaxDescriptionLength {
		return "", validationErr("description", fmt.Sprintf("description cannot exceed %d characters", constants.MaxDescriptionLength))
	}
	return trimmed, nil
}

func storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrStoreUnavailable
	}
	return fmt.Errorf("%s: %w", op, err)
}
