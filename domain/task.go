package domain

import "strings"

// Priority is the task urgency label.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Valid reports whether the priority is one of the known labels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Status is the workflow label carried by a task. It is independent from
// column placement: the board groups by task list, not by status.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusInReview   Status = "IN_REVIEW"
	StatusDone       Status = "DONE"
)

// Valid reports whether the status is one of the known workflow labels.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusInReview, StatusDone:
		return true
	}
	return false
}

// Display renders the status for humans ("IN_PROGRESS" -> "IN PROGRESS").
func (s Status) Display() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// Task is the unit of work owned by the remote task store. The local copy is
// a cache invalidated on every board reload.
type Task struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	TaskList    int64    `json:"task_list,omitempty"`
	Team        int64    `json:"team,omitempty"`
	Assignees   []int64  `json:"assignees,omitempty"`
	IsPublished bool     `json:"is_published"`
}

// AssigneeIDs returns a copy of the assignee set. The UI currently permits at
// most one assignee; the set shape leaves room for more without breaking the
// contract.
func (t *Task) AssigneeIDs() []int64 {
	if t == nil || len(t.Assignees) == 0 {
		return nil
	}
	out := make([]int64, len(t.Assignees))
	copy(out, t.Assignees)
	return out
}

// TaskPayload is the submit-time shape for a task create.
type TaskPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	Assignees   []int64  `json:"assignees"`
	Team        int64    `json:"team,omitempty"`
	TaskList    int64    `json:"task_list,omitempty"`
	Workspace   int64    `json:"workspace,omitempty"`
	IsPublished bool     `json:"is_published"`
}

// TaskPatch is a partial update. Nil fields are omitted from the request so
// the store only touches what the user actually edited.
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Assignees   []int64   `json:"assignees,omitempty"`
	Team        *int64    `json:"team,omitempty"`
	TaskList    *int64    `json:"task_list,omitempty"`
	IsPublished *bool     `json:"is_published,omitempty"`
}
