package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/taskboard/taskboard-api/internal/models"
)

func uintPtr(v uint64) *uint64 {
	return &v
}

func TestDiffTasks_NoChanges(t *testing.T) {
	view := TaskView{Title: "Ship release", Status: models.TaskStatusTodo}

	typ, changes, details := diffTasks(view, view)

	assert.Empty(t, changes)
	assert.Empty(t, details)
	assert.Empty(t, typ)
}

func TestDiffTasks_StatusChange(t *testing.T) {
	old := TaskView{Title: "Ship release", Status: models.TaskStatusTodo}
	updated := TaskView{Title: "Ship release", Status: models.TaskStatusInProgress}

	typ, changes, details := diffTasks(old, updated)

	assert.Equal(t, models.ActivityUpdateStatus, typ)
	assert.Len(t, changes, 1)
	assert.Equal(t, "status", changes[0].Field)
	assert.Equal(t, "todo", changes[0].Old)
	assert.Equal(t, "in_progress", changes[0].New)
	assert.Equal(t, "moved task from 'todo' to 'in_progress'", details)
}

func TestDiffTasks_TitleChange(t *testing.T) {
	old := TaskView{Title: "Ship release", Status: models.TaskStatusTodo}
	updated := TaskView{Title: "Ship v2", Status: models.TaskStatusTodo}

	typ, _, details := diffTasks(old, updated)

	assert.Equal(t, models.ActivityUpdateTitle, typ)
	assert.Equal(t, "renamed task from 'Ship release' to 'Ship v2'", details)
}

func TestDiffTasks_AssigneeChange(t *testing.T) {
	old := TaskView{Title: "Ship release", Status: models.TaskStatusTodo}
	updated := TaskView{
		Title:        "Ship release",
		Status:       models.TaskStatusTodo,
		AssigneeID:   uintPtr(2),
		AssigneeName: "Bob",
	}

	typ, changes, details := diffTasks(old, updated)

	assert.Equal(t, models.ActivityAssignUser, typ)
	assert.Equal(t, "unassigned", changes[0].Old)
	assert.Equal(t, "Bob", changes[0].New)
	assert.Equal(t, "reassigned task from unassigned to Bob", details)
}

func TestDiffTasks_MultipleChanges_TypeFromFirstRule(t *testing.T) {
	old := TaskView{Title: "Ship release", Status: models.TaskStatusTodo}
	updated := TaskView{Title: "Ship v2", Status: models.TaskStatusDone}

	typ, changes, details := diffTasks(old, updated)

	assert.Equal(t, models.ActivityUpdateTitle, typ)
	assert.Len(t, changes, 2)
	assert.Equal(t, "renamed task from 'Ship release' to 'Ship v2' and moved task from 'todo' to 'done'", details)
}

func TestDiffTasks_ThreeChanges_CommaThenAnd(t *testing.T) {
	old := TaskView{Title: "Ship release", Status: models.TaskStatusTodo}
	updated := TaskView{
		Title:        "Ship v2",
		Status:       models.TaskStatusInProgress,
		AssigneeID:   uintPtr(3),
		AssigneeName: "Carol",
	}

	_, changes, details := diffTasks(old, updated)

	assert.Len(t, changes, 3)
	assert.Equal(t,
		"renamed task from 'Ship release' to 'Ship v2', moved task from 'todo' to 'in_progress' and reassigned task from unassigned to Carol",
		details)
}

func TestDiffTasks_DueDateChange(t *testing.T) {
	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	old := TaskView{Title: "Ship release", Status: models.TaskStatusTodo}
	updated := old
	updated.DueDate = &due

	typ, changes, details := diffTasks(old, updated)

	assert.Equal(t, models.ActivityUpdateDueDate, typ)
	assert.Equal(t, "none", changes[0].Old)
	assert.Equal(t, "2026-09-15", changes[0].New)
	assert.Equal(t, "changed due date from none to 2026-09-15", details)
}

func TestJoinClauses(t *testing.T) {
	assert.Equal(t, "", joinClauses(nil))
	assert.Equal(t, "a", joinClauses([]string{"a"}))
	assert.Equal(t, "a and b", joinClauses([]string{"a", "b"}))
	assert.Equal(t, "a, b and c", joinClauses([]string{"a", "b", "c"}))
}
