// Package tasks implements task management under projects: the request
// translation layer (status enum, assignee-by-username, partial updates),
// nested resolution by (task id, project id) pair, the duplicate-title
// guard, the global task filter, and the per-project status summary.
package tasks

import "time"

// Status is the task lifecycle state. Only the three literals below are
// valid; anything else on the wire is a field error, never coerced.
type Status string

const (
	StatusToDo       Status = "ToDo"
	StatusInProgress Status = "InProgress"
	StatusDone       Status = "Done"
)

// ParseStatus validates a wire-format status string.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusToDo, StatusInProgress, StatusDone:
		return Status(s), true
	}
	return "", false
}

// Task represents a task nested under a project. The parent project is
// rendered as its title and the assignee as a username-or-null; internal
// ids for either never appear in responses.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	ProjectName string     `json:"project_name"`
	AssignedTo  *string    `json:"assigned_to"`
}

// StatusSummary maps each status literal to a task count. All three keys
// are always present.
type StatusSummary map[Status]int

// NewStatusSummary returns a summary with every status zero-initialized.
func NewStatusSummary() StatusSummary {
	return StatusSummary{
		StatusToDo:       0,
		StatusInProgress: 0,
		StatusDone:       0,
	}
}
