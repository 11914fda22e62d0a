// Package auth implements the credential store and the authentication
// gate: user registration, login, logout, and the bearer-token middleware
// that resolves `Authorization: Token <key>` headers to user identities.
package auth

import "time"

// User represents a user in the system. Users are created at registration
// and immutable thereafter; there are no update or delete endpoints.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // never exposed in responses
	CreatedAt      time.Time `json:"created_at"`
}

// Token is an opaque bearer credential mapped to a user. It carries no
// expiry: validity is existence in the store, and logout deletes it.
type Token struct {
	Key       string    `json:"key"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
