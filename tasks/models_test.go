package tasks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input  string
		want   Status
		wantOK bool
	}{
		{"ToDo", StatusToDo, true},
		{"InProgress", StatusInProgress, true},
		{"Done", StatusDone, true},
		{"todo", "", false},
		{"TODO", "", false},
		{"In Progress", "", false},
		{"done", "", false},
		{"", "", false},
		{"Cancelled", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseStatus(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewStatusSummary(t *testing.T) {
	summary := NewStatusSummary()

	require.Len(t, summary, 3)
	assert.Equal(t, 0, summary[StatusToDo])
	assert.Equal(t, 0, summary[StatusInProgress])
	assert.Equal(t, 0, summary[StatusDone])
}

func TestStatusSummaryJSON(t *testing.T) {
	// All three keys must appear even when every count is zero.
	data, err := json.Marshal(NewStatusSummary())
	require.NoError(t, err)
	assert.JSONEq(t, `{"ToDo":0,"InProgress":0,"Done":0}`, string(data))
}

func TestTaskJSONNullAssignee(t *testing.T) {
	task := Task{
		ID:          "t1",
		Title:       "Draft homepage copy",
		Status:      StatusToDo,
		ProjectName: "Website redesign",
	}
	data, err := json.Marshal(task)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	// Unassigned renders as an explicit null, not an absent key.
	v, present := m["assigned_to"]
	assert.True(t, present)
	assert.Nil(t, v)
	assert.Equal(t, "Website redesign", m["project_name"])
}
