package tasks

import (
	"bytes"
	"encoding/json"
	"time"
)

// OptionalString distinguishes the three wire states of a nullable string
// field: omitted (Set == false), explicit null (Set == true, Value == nil)
// and a value (Set == true, Value != nil). Plain pointers cannot tell
// omission apart from null, and the assignee update semantics need all
// three.
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON is only invoked when the field is present in the input, so
// its mere execution marks the field as set.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// CreateTaskRequest is the payload for creating a task. Status defaults to
// ToDo when absent; AssignedTo is a username, empty meaning unassigned.
type CreateTaskRequest struct {
	Title       string     `json:"title" example:"Draft homepage copy"`
	Description string     `json:"description"`
	Status      string     `json:"status" example:"ToDo"`
	DueDate     *time.Time `json:"due_date"`
	AssignedTo  string     `json:"assigned_to" example:"newuser"`
}

// UpdateTaskRequest is the payload for partial task updates. Omitted
// fields keep their prior values; for AssignedTo an explicit null clears
// the assignment.
type UpdateTaskRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Status      *string        `json:"status"`
	DueDate     *time.Time     `json:"due_date"`
	AssignedTo  OptionalString `json:"assigned_to"`
}

// Filter holds the independent, combinable dimensions of the global task
// filter. Zero values filter nothing on their dimension.
type Filter struct {
	Status     string
	AssignedTo string
	DueToday   bool
}
