package tasks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalStringUnmarshal(t *testing.T) {
	t.Run("omitted field stays unset", func(t *testing.T) {
		var req UpdateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(`{"title":"x"}`), &req))
		assert.False(t, req.AssignedTo.Set)
		assert.Nil(t, req.AssignedTo.Value)
	})

	t.Run("explicit null is set with nil value", func(t *testing.T) {
		var req UpdateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(`{"assigned_to":null}`), &req))
		assert.True(t, req.AssignedTo.Set)
		assert.Nil(t, req.AssignedTo.Value)
	})

	t.Run("value is set with value", func(t *testing.T) {
		var req UpdateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(`{"assigned_to":"newuser"}`), &req))
		assert.True(t, req.AssignedTo.Set)
		require.NotNil(t, req.AssignedTo.Value)
		assert.Equal(t, "newuser", *req.AssignedTo.Value)
	})

	t.Run("non-string value is rejected", func(t *testing.T) {
		var req UpdateTaskRequest
		assert.Error(t, json.Unmarshal([]byte(`{"assigned_to":42}`), &req))
	})
}

func TestUpdateTaskRequestPartialDecode(t *testing.T) {
	var req UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"status":"Done"}`), &req))

	assert.Nil(t, req.Title)
	assert.Nil(t, req.Description)
	assert.Nil(t, req.DueDate)
	assert.False(t, req.AssignedTo.Set)
	require.NotNil(t, req.Status)
	assert.Equal(t, "Done", *req.Status)
}
