package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/user/taskdesk-go/apperror"
)

// Handlers wraps the auth Service with HTTP handlers.
type Handlers struct {
	service Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// HandleRegister godoc
// @Summary User Registration
// @Description Registers a new user and returns the user together with a freshly minted token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "User registration details"
// @Success 201 {object} auth.AuthResponse "User created"
// @Failure 400 {object} apperror.ErrorResponse "Field validation errors, including duplicate username or email"
// @Router /register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		resp, err := h.service.Register(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}

// HandleLogin godoc
// @Summary User Login
// @Description Verifies credentials and returns the user's token, reusing an existing one when present.
// @Tags Auth
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "User login credentials"
// @Success 200 {object} auth.AuthResponse "Login successful"
// @Failure 400 {object} apperror.ErrorResponse "Invalid credentials or missing fields"
// @Router /login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleLogout godoc
// @Summary User Logout
// @Description Revokes the presented token. Idempotent: returns 200 even when no valid token is supplied.
// @Tags Auth
// @Produce json
// @Success 200 {object} auth.LogoutResponse "Logged out"
// @Router /logout [post]
// This route is deliberately not behind the token middleware: logging out
// with an absent or already-revoked token must still succeed.
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := ParseTokenHeader(r.Header.Get("Authorization"))
		if ok {
			if err := h.service.Logout(r.Context(), key); err != nil {
				WriteError(w, r, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, LogoutResponse{Message: "logged out"})
	}
}

// writeJSON serializes data to JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteJSON writes a JSON response. Exported so the other feature packages
// share one response-writing convention.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, data)
}

// WriteError converts any error into a standardized apperror response.
// Errors that are not *AppError are treated as internal and their text is
// withheld from the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}

	if appErr.StatusCode() >= http.StatusInternalServerError {
		log.Printf("error handling %s %s: %v", r.Method, r.URL.Path, appErr)
	}

	writeJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
