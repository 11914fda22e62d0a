// Package projects implements owner-scoped project management. A project
// belongs to exactly one user; only the owner can see or touch it, and a
// project that exists but belongs to someone else is indistinguishable
// from one that does not exist.
package projects

import "time"

// Project represents a project owned by a single user. The owner is
// rendered as a username, never as an internal id.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
}
