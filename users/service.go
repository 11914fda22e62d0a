// Package users provides user lookups for the rest of the application.
// Users themselves are immutable after registration, so this is a
// read-only surface: the task translator resolves assignee usernames here,
// and the task filter uses the same lookup to short-circuit on unknown
// usernames.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/taskdesk-go/apperror"
	"github.com/user/taskdesk-go/auth"
)

// Service defines the user lookup operations.
type Service interface {
	// GetByUsername resolves a username to a user, or a NotFoundError.
	GetByUsername(ctx context.Context, username string) (*auth.User, error)
}

type userServiceImpl struct {
	db *pgxpool.Pool
}

// NewService creates the user lookup service.
func NewService(db *pgxpool.Pool) Service {
	return &userServiceImpl{db: db}
}

func (s *userServiceImpl) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	var user auth.User
	query := `SELECT id::text, username, email, created_at FROM users WHERE username = $1`
	err := s.db.QueryRow(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user '%s' not found", username), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by username", err)
	}
	return &user, nil
}
