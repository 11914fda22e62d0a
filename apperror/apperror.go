// Package apperror defines the application's error taxonomy and its mapping
// to HTTP status codes. Services return *AppError values; handlers convert
// them to JSON responses with a consistent shape, so no store-native error
// text or stack trace ever reaches a client.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType categorizes an application error.
type ErrorType int

const (
	// UnknownError is for unspecified errors.
	UnknownError ErrorType = iota
	// DatabaseError represents an error originating from the database.
	DatabaseError
	// AuthError represents an authentication failure (bad or unknown token,
	// invalid credentials).
	AuthError
	// UnauthorizedError represents an authorization failure (no credential
	// supplied, or insufficient permissions).
	UnauthorizedError
	// NotFoundError represents a resource that is absent or not visible to
	// the caller. Ownership failures and non-existence are deliberately
	// collapsed into this type so the two are indistinguishable.
	NotFoundError
	// ValidationError represents an input validation failure, optionally
	// carrying per-field messages.
	ValidationError
	// BadRequestError represents a generic malformed request.
	BadRequestError
	// InternalError represents an unexpected server-side failure.
	InternalError
	// MigrationError represents an error during database migrations.
	MigrationError
)

// AppError is the application's error type. Fields is populated only for
// validation errors that are attributable to named input fields.
type AppError struct {
	Type    ErrorType
	Message string
	Fields  map[string]string
	Err     error // underlying error, never exposed to clients
}

// Error satisfies the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error so errors.Is/errors.As can inspect
// the chain.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code for the error type.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case AuthError:
		// 401: the supplied credential failed authentication.
		return http.StatusUnauthorized
	case UnauthorizedError:
		// 403: no credential was supplied, or the caller lacks permission.
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	case ValidationError, BadRequestError:
		return http.StatusBadRequest
	case DatabaseError, InternalError, MigrationError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError creates a new AppError of an arbitrary type.
func NewAppError(errType ErrorType, message string, underlying error) *AppError {
	return &AppError{Type: errType, Message: message, Err: underlying}
}

// NewDatabaseError creates a new DatabaseError.
func NewDatabaseError(message string, underlying error) *AppError {
	return NewAppError(DatabaseError, message, underlying)
}

// NewAuthError creates a new AuthError.
func NewAuthError(message string, underlying error) *AppError {
	return NewAppError(AuthError, message, underlying)
}

// NewUnauthorizedError creates a new UnauthorizedError.
func NewUnauthorizedError(message string, underlying error) *AppError {
	return NewAppError(UnauthorizedError, message, underlying)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(message string, underlying error) *AppError {
	return NewAppError(NotFoundError, message, underlying)
}

// NewValidationError creates a ValidationError with a single message.
func NewValidationError(message string, underlying error) *AppError {
	return NewAppError(ValidationError, message, underlying)
}

// NewFieldValidationError creates a ValidationError carrying per-field
// messages, e.g. {"status": "must be one of ToDo, InProgress, Done"}.
func NewFieldValidationError(fields map[string]string) *AppError {
	return &AppError{Type: ValidationError, Message: "validation failed", Fields: fields}
}

// NewBadRequestError creates a new BadRequestError.
func NewBadRequestError(message string, underlying error) *AppError {
	return NewAppError(BadRequestError, message, underlying)
}

// NewInternalError creates a new InternalError.
func NewInternalError(message string, underlying error) *AppError {
	return NewAppError(InternalError, message, underlying)
}

// NewMigrationError creates a new MigrationError.
func NewMigrationError(message string, underlying error) *AppError {
	return NewAppError(MigrationError, message, underlying)
}

// ErrorResponse is the JSON payload sent to clients. Exactly one of Error
// or Errors is set: a single message, or a field→message map.
type ErrorResponse struct {
	Error  string            `json:"error,omitempty" example:"project not found"`
	Errors map[string]string `json:"errors,omitempty"`
}

// ToResponse converts an AppError to its client-facing representation.
// Only Message and Fields are included; the wrapped error stays internal.
func (e *AppError) ToResponse() ErrorResponse {
	if len(e.Fields) > 0 {
		return ErrorResponse{Errors: e.Fields}
	}
	return ErrorResponse{Error: e.Message}
}

// FromError attempts to convert a generic error to an *AppError.
func FromError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == NotFoundError
}

// IsAuthError reports whether err is an AuthError.
func IsAuthError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == AuthError
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ValidationError
}
