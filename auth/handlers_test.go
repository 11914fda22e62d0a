package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/taskdesk-go/apperror"
)

func TestHandleRegister(t *testing.T) {
	t.Run("success returns 201 with user and token", func(t *testing.T) {
		service := &fakeService{
			registerFn: func(_ context.Context, req RegisterRequest) (*AuthResponse, error) {
				return &AuthResponse{
					User: UserPayload{
						ID:       "6b1e2f1a-0000-0000-0000-000000000001",
						Username: req.Username,
						Email:    req.Email,
					},
					Token: "fresh-token",
				}, nil
			},
		}
		h := NewHandlers(service)

		body := `{"username":"newuser","email":"user@example.com","password":"strongpassword123"}`
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.HandleRegister()(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "newuser", resp.User.Username)
		assert.Equal(t, "fresh-token", resp.Token)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		h := NewHandlers(&fakeService{})

		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()

		h.HandleRegister()(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate username surfaces field error", func(t *testing.T) {
		service := &fakeService{
			registerFn: func(_ context.Context, _ RegisterRequest) (*AuthResponse, error) {
				return nil, apperror.NewFieldValidationError(map[string]string{
					"username": "username already exists",
				})
			},
		}
		h := NewHandlers(service)

		body := `{"username":"taken","email":"user@example.com","password":"pw"}`
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.HandleRegister()(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"errors":{"username":"username already exists"}}`, rec.Body.String())
	})
}

func TestHandleLogin(t *testing.T) {
	t.Run("success returns 200 with reused token", func(t *testing.T) {
		service := &fakeService{
			loginFn: func(_ context.Context, req LoginRequest) (*AuthResponse, error) {
				return &AuthResponse{
					User:  UserPayload{Username: req.Username},
					Token: "existing-token",
				}, nil
			},
		}
		h := NewHandlers(service)

		body := `{"username":"newuser","password":"strongpassword123"}`
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.HandleLogin()(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "existing-token", resp.Token)
	})

	t.Run("bad credentials are 400, not 401", func(t *testing.T) {
		service := &fakeService{
			loginFn: func(_ context.Context, _ LoginRequest) (*AuthResponse, error) {
				return nil, apperror.NewValidationError("invalid username or password", nil)
			},
		}
		h := NewHandlers(service)

		body := `{"username":"newuser","password":"wrong"}`
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.HandleLogin()(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"invalid username or password"}`, rec.Body.String())
	})
}

func TestHandleLogout(t *testing.T) {
	t.Run("valid token is revoked", func(t *testing.T) {
		var revoked string
		service := &fakeService{
			logoutFn: func(_ context.Context, key string) error {
				revoked = key
				return nil
			},
		}
		h := NewHandlers(service)

		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		req.Header.Set("Authorization", "Token abc123")
		rec := httptest.NewRecorder()

		h.HandleLogout()(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "abc123", revoked)
		assert.JSONEq(t, `{"message":"logged out"}`, rec.Body.String())
	})

	t.Run("missing token still returns 200", func(t *testing.T) {
		// Logout is idempotent: no header means nothing to revoke, and the
		// service must not even be called.
		service := &fakeService{
			logoutFn: func(_ context.Context, _ string) error {
				t.Fatal("Logout should not be called without a credential")
				return nil
			},
		}
		h := NewHandlers(service)

		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		rec := httptest.NewRecorder()

		h.HandleLogout()(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"logged out"}`, rec.Body.String())
	})
}

func TestWriteError(t *testing.T) {
	t.Run("app error keeps its message and code", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/projects/x", nil)

		WriteError(rec, req, apperror.NewNotFoundError("project not found", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"error":"project not found"}`, rec.Body.String())
	})

	t.Run("unexpected error text is withheld", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/projects", nil)

		WriteError(rec, req, assert.AnError)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
		assert.JSONEq(t, `{"error":"an unexpected error occurred"}`, rec.Body.String())
	})
}
