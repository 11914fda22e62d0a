package auth

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username string `json:"username" validate:"required" example:"newuser"`
	Email    string `json:"email" validate:"required,email" example:"user@example.com"`
	Password string `json:"password" validate:"required" example:"strongpassword123"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"newuser"`
	Password string `json:"password" validate:"required" example:"strongpassword123"`
}

// UserPayload is the user representation returned by register and login.
type UserPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthResponse is returned on successful registration or login.
type AuthResponse struct {
	User  UserPayload `json:"user"`
	Token string      `json:"token" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
}

// LogoutResponse acknowledges a logout. Logout is idempotent and returns
// 200 whether or not a valid token was presented.
type LogoutResponse struct {
	Message string `json:"message" example:"logged out"`
}
