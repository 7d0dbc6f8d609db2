package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/taskboard/taskboard-api/internal/models"
)

// TaskView captures the change-relevant fields of a task, with the assignee
// resolved to a display name so diff sentences can cite people, not IDs.
type TaskView struct {
	Title        string
	Description  string
	Status       models.TaskStatus
	DueDate      *time.Time
	AssigneeID   *uint64
	AssigneeName string
}

func viewOf(task *models.Task) TaskView {
	view := TaskView{
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		DueDate:     task.DueDate,
		AssigneeID:  task.AssigneeID,
	}
	if task.Assignee != nil {
		view.AssigneeName = task.Assignee.Name
	}
	return view
}

// FieldChange is one entry in the changed-field set returned by an update.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// diffRule describes one diffable field: how to detect a change, how to
// phrase it, and which activity type it maps to. Rules are applied in a
// fixed order; the first matching rule decides the activity type.
type diffRule struct {
	field   string
	typ     models.ActivityType
	changed func(old, new TaskView) bool
	value   func(v TaskView) string
	clause  func(old, new TaskView) string
}

func assigneeLabel(v TaskView) string {
	if v.AssigneeID == nil {
		return "unassigned"
	}
	return v.AssigneeName
}

func dueDateLabel(v TaskView) string {
	if v.DueDate == nil {
		return "none"
	}
	return v.DueDate.Format("2006-01-02")
}

var diffRules = []diffRule{
	{
		field:   "title",
		typ:     models.ActivityUpdateTitle,
		changed: func(o, n TaskView) bool { return o.Title != n.Title },
		value:   func(v TaskView) string { return v.Title },
		clause: func(o, n TaskView) string {
			return fmt.Sprintf("renamed task from '%s' to '%s'", o.Title, n.Title)
		},
	},
	{
		field:   "status",
		typ:     models.ActivityUpdateStatus,
		changed: func(o, n TaskView) bool { return o.Status != n.Status },
		value:   func(v TaskView) string { return string(v.Status) },
		clause: func(o, n TaskView) string {
			return fmt.Sprintf("moved task from '%s' to '%s'", o.Status, n.Status)
		},
	},
	{
		field: "assignee",
		typ:   models.ActivityAssignUser,
		changed: func(o, n TaskView) bool {
			if (o.AssigneeID == nil) != (n.AssigneeID == nil) {
				return true
			}
			return o.AssigneeID != nil && *o.AssigneeID != *n.AssigneeID
		},
		value: assigneeLabel,
		clause: func(o, n TaskView) string {
			return fmt.Sprintf("reassigned task from %s to %s", assigneeLabel(o), assigneeLabel(n))
		},
	},
	{
		field:   "description",
		typ:     models.ActivityUpdateDescription,
		changed: func(o, n TaskView) bool { return o.Description != n.Description },
		value:   func(v TaskView) string { return v.Description },
		clause: func(o, n TaskView) string {
			return "updated the description"
		},
	},
	{
		field: "due_date",
		typ:   models.ActivityUpdateDueDate,
		changed: func(o, n TaskView) bool {
			if (o.DueDate == nil) != (n.DueDate == nil) {
				return true
			}
			return o.DueDate != nil && !o.DueDate.Equal(*n.DueDate)
		},
		value: dueDateLabel,
		clause: func(o, n TaskView) string {
			return fmt.Sprintf("changed due date from %s to %s", dueDateLabel(o), dueDateLabel(n))
		},
	},
}

// diffTasks applies the rules in order and returns the activity type of the
// first matching rule, the changed-field set, and the composed sentence.
// An empty change set means the update was a no-op for history purposes.
func diffTasks(old, new TaskView) (models.ActivityType, []FieldChange, string) {
	var (
		typ     models.ActivityType
		changes []FieldChange
		clauses []string
	)

	for _, rule := range diffRules {
		if !rule.changed(old, new) {
			continue
		}
		if typ == "" {
			typ = rule.typ
		}
		changes = append(changes, FieldChange{
			Field: rule.field,
			Old:   rule.value(old),
			New:   rule.value(new),
		})
		clauses = append(clauses, rule.clause(old, new))
	}

	return typ, changes, joinClauses(clauses)
}

// joinClauses joins with commas, the last pair with "and".
func joinClauses(clauses []string) string {
	switch len(clauses) {
	case 0:
		return ""
	case 1:
		return clauses[0]
	default:
		return strings.Join(clauses[:len(clauses)-1], ", ") + " and " + clauses[len(clauses)-1]
	}
}
