package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"auth error is 401", NewAuthError("invalid or expired token", nil), http.StatusUnauthorized},
		{"unauthorized error is 403", NewUnauthorizedError("authentication credentials were not provided", nil), http.StatusForbidden},
		{"not found error is 404", NewNotFoundError("project not found", nil), http.StatusNotFound},
		{"validation error is 400", NewValidationError("invalid username or password", nil), http.StatusBadRequest},
		{"field validation error is 400", NewFieldValidationError(map[string]string{"title": "this field is required"}), http.StatusBadRequest},
		{"bad request error is 400", NewBadRequestError("invalid project id", nil), http.StatusBadRequest},
		{"database error is 500", NewDatabaseError("failed to get project", nil), http.StatusInternalServerError},
		{"internal error is 500", NewInternalError("internal server error", nil), http.StatusInternalServerError},
		{"migration error is 500", NewMigrationError("failed to run migrations", nil), http.StatusInternalServerError},
		{"unknown type is 500", NewAppError(UnknownError, "boom", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestToResponse(t *testing.T) {
	t.Run("plain message", func(t *testing.T) {
		resp := NewNotFoundError("task not found", errors.New("no rows")).ToResponse()
		assert.Equal(t, "task not found", resp.Error)
		assert.Empty(t, resp.Errors)
	})

	t.Run("field errors take precedence", func(t *testing.T) {
		resp := NewFieldValidationError(map[string]string{
			"assigned_to": "user 'ghost' does not exist",
		}).ToResponse()
		assert.Empty(t, resp.Error)
		assert.Equal(t, "user 'ghost' does not exist", resp.Errors["assigned_to"])
	})

	t.Run("underlying error stays internal", func(t *testing.T) {
		resp := NewDatabaseError("failed to get project", errors.New("pq: connection refused")).ToResponse()
		assert.Equal(t, "failed to get project", resp.Error)
		assert.NotContains(t, resp.Error, "pq:")
	})
}

func TestErrorAndUnwrap(t *testing.T) {
	underlying := errors.New("no rows in result set")
	appErr := NewDatabaseError("failed to get task", underlying)

	assert.Equal(t, "failed to get task: no rows in result set", appErr.Error())
	assert.ErrorIs(t, appErr, underlying)

	bare := NewNotFoundError("task not found", nil)
	assert.Equal(t, "task not found", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestFromError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		got, ok := FromError(nil)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("plain error", func(t *testing.T) {
		_, ok := FromError(errors.New("boom"))
		assert.False(t, ok)
	})

	t.Run("direct app error", func(t *testing.T) {
		appErr := NewNotFoundError("project not found", nil)
		got, ok := FromError(appErr)
		require.True(t, ok)
		assert.Same(t, appErr, got)
	})

	t.Run("wrapped app error", func(t *testing.T) {
		appErr := NewAuthError("invalid or expired token", nil)
		wrapped := fmt.Errorf("resolving token: %w", appErr)
		got, ok := FromError(wrapped)
		require.True(t, ok)
		assert.Same(t, appErr, got)
	})
}

func TestTypePredicates(t *testing.T) {
	notFound := NewNotFoundError("user 'ghost' not found", nil)
	authErr := NewAuthError("invalid or expired token", nil)
	validation := NewFieldValidationError(map[string]string{"title": "this field is required"})

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(authErr))
	assert.True(t, IsAuthError(authErr))
	assert.False(t, IsAuthError(validation))
	assert.True(t, IsValidationError(validation))
	assert.False(t, IsValidationError(notFound))

	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))

	wrapped := fmt.Errorf("loading: %w", notFound)
	assert.True(t, IsNotFound(wrapped))
}
