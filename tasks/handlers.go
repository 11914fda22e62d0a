package tasks

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/taskdesk-go/apperror"
	"github.com/user/taskdesk-go/auth"
)

// Handlers wraps the task Service with HTTP handlers.
type Handlers struct {
	service Service
}

// NewHandlers creates new task Handlers.
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterProjectTaskRoutes mounts the nested task routes; the parent
// router supplies the {projectID} URL parameter and the token middleware.
func (h *Handlers) RegisterProjectTaskRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{taskID}", h.handleGet)
	r.Put("/{taskID}", h.handleUpdate)
	r.Delete("/{taskID}", h.handleDelete)
}

// handleList godoc
// @Summary List a project's tasks
// @Description 400 for a malformed project id, 404 for a well-formed but unknown one.
// @Tags Tasks
// @Produce json
// @Security TokenAuth
// @Param projectID path string true "Project id"
// @Success 200 {array} tasks.Task
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /projects/{projectID}/tasks [get]
func (h *Handlers) handleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewUnauthorizedError("authentication required", nil))
		return
	}

	list, err := h.service.ListByProject(r.Context(), owner, chi.URLParam(r, "projectID"))
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, list)
}

// handleCreate godoc
// @Summary Create a task
// @Description Status defaults to ToDo; assigned_to takes a username.
// @Tags Tasks
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param projectID path string true "Project id"
// @Param taskBody body tasks.CreateTaskRequest true "Task fields"
// @Success 201 {object} tasks.Task
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /projects/{projectID}/tasks [post]
func (h *Handlers) handleCreate(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewUnauthorizedError("authentication required", nil))
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
		return
	}
	defer r.Body.Close()

	task, err := h.service.Create(r.Context(), owner, chi.URLParam(r, "projectID"), req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusCreated, task)
}

// handleGet godoc
// @Summary Get a task
// @Description 404 unless the task exists under this exact project and owner.
// @Tags Tasks
// @Produce json
// @Security TokenAuth
// @Param projectID path string true "Project id"
// @Param taskID path string true "Task id"
// @Success 200 {object} tasks.Task
// @Failure 404 {object} apperror.ErrorResponse
// @Router /projects/{projectID}/tasks/{taskID} [get]
func (h *Handlers) handleGet(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewUnauthorizedError("authentication required", nil))
		return
	}

	task, err := h.service.Get(r.Context(), owner,
		chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID"))
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, task)
}

// handleUpdate godoc
// @Summary Update a task
// @Description Partial update; an explicit null assigned_to clears the assignment.
// @Tags Tasks
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param projectID path string true "Project id"
// @Param taskID path string true "Task id"
// @Param taskBody body tasks.UpdateTaskRequest true "Fields to update"
// @Success 200 {object} tasks.Task
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /projects/{projectID}/tasks/{taskID} [put]
func (h *Handlers) handleUpdate(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewUnauthorizedError("authentication required", nil))
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
		return
	}
	defer r.Body.Close()

	task, err := h.service.Update(r.Context(), owner,
		chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID"), req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, task)
}

// handleDelete godoc
// @Summary Delete a task
// @Tags Tasks
// @Security TokenAuth
// @Param projectID path string true "Project id"
// @Param taskID path string true "Task id"
// @Success 204 "Deleted"
// @Failure 404 {object} apperror.ErrorResponse
// @Router /projects/{projectID}/tasks/{taskID} [delete]
func (h *Handlers) handleDelete(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewUnauthorizedError("authentication required", nil))
		return
	}

	err := h.service.Delete(r.Context(), owner,
		chi.URLParam(r, "projectID"), chi.URLParam(r, "taskID"))
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSummary godoc
// @Summary Per-status task counts for a project
// @Description Always returns all three status keys, zero-filled.
// @Tags Tasks
// @Produce json
// @Security TokenAuth
// @Param projectID path string true "Project id"
// @Success 200 {object} tasks.StatusSummary
// @Failure 404 {object} apperror.ErrorResponse
// @Router /projects/{projectID}/summary [get]
func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewUnauthorizedError("authentication required", nil))
		return
	}

	summary, err := h.service.Summary(r.Context(), owner, chi.URLParam(r, "projectID"))
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, summary)
}

// HandleFilter godoc
// @Summary Filter tasks across all projects
// @Description Combines status, assigned_to (username) and due_today=true filters. Not scoped to the caller's projects.
// @Tags Tasks
// @Produce json
// @Security TokenAuth
// @Param status query string false "Task status" Enums(ToDo, InProgress, Done)
// @Param assigned_to query string false "Assignee username"
// @Param due_today query boolean false "Only tasks due today"
// @Success 200 {array} tasks.Task
// @Router /tasks [get]
func (h *Handlers) HandleFilter(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFromContext(r.Context()); !ok {
		auth.WriteError(w, r, apperror.NewUnauthorizedError("authentication required", nil))
		return
	}

	f := Filter{
		Status:     r.URL.Query().Get("status"),
		AssignedTo: r.URL.Query().Get("assigned_to"),
		DueToday:   r.URL.Query().Get("due_today") == "true",
	}

	list, err := h.service.Filter(r.Context(), f)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, list)
}
