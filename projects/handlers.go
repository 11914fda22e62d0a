package projects

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/taskdesk-go/apperror"
	"github.com/user/taskdesk-go/auth"
)

// Handlers wraps the project Service with HTTP handlers.
type Handlers struct {
	service Service
}

// NewHandlers creates new project Handlers.
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the project routes on a router already guarded by
// the token middleware.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{projectID}", h.handleGet)
	r.Put("/{projectID}", h.handleUpdate)
	r.Delete("/{projectID}", h.handleDelete)
}

// handleList godoc
// @Summary List owned projects
// @Description Returns the caller's projects, newest first.
// @Tags Projects
// @Produce json
// @Security TokenAuth
// @Success 200 {array} projects.Project
// @Router /projects [get]
func (h *Handlers) handleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewUnauthorizedError("authentication required", nil))
		return
	}

	list, err := h.service.List(r.Context(), owner)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, list)
}

// handleCreate godoc
// @Summary Create a project
// @Tags Projects
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param projectBody body projects.CreateProjectRequest true "Project fields"
// @Success 201 {object} projects.Project
// @Failure 400 {object} apperror.ErrorResponse
// @Router /projects [post]
func (h *Handlers) handleCreate(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewUnauthorizedError("authentication required", nil))
		return
	}

	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
		return
	}
	defer r.Body.Close()

	p, err := h.service.Create(r.Context(), owner, req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusCreated, p)
}

// handleGet godoc
// @Summary Get a project
// @Description 404 whether the project is absent, malformed, or owned by someone else.
// @Tags Projects
// @Produce json
// @Security TokenAuth
// @Param projectID path string true "Project id"
// @Success 200 {object} projects.Project
// @Failure 404 {object} apperror.ErrorResponse
// @Router /projects/{projectID} [get]
func (h *Handlers) handleGet(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewUnauthorizedError("authentication required", nil))
		return
	}

	p, err := h.service.Get(r.Context(), owner, chi.URLParam(r, "projectID"))
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, p)
}

// handleUpdate godoc
// @Summary Update a project
// @Description Partial update: only supplied fields are applied.
// @Tags Projects
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param projectID path string true "Project id"
// @Param projectBody body projects.UpdateProjectRequest true "Fields to update"
// @Success 200 {object} projects.Project
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /projects/{projectID} [put]
func (h *Handlers) handleUpdate(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewUnauthorizedError("authentication required", nil))
		return
	}

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
		return
	}
	defer r.Body.Close()

	p, err := h.service.Update(r.Context(), owner, chi.URLParam(r, "projectID"), req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, p)
}

// handleDelete godoc
// @Summary Delete a project
// @Description Deletes the project and, via the schema cascade, its tasks.
// @Tags Projects
// @Security TokenAuth
// @Param projectID path string true "Project id"
// @Success 204 "Deleted"
// @Failure 404 {object} apperror.ErrorResponse
// @Router /projects/{projectID} [delete]
func (h *Handlers) handleDelete(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewUnauthorizedError("authentication required", nil))
		return
	}

	if err := h.service.Delete(r.Context(), owner, chi.URLParam(r, "projectID")); err != nil {
		auth.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
