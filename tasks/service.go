package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/taskdesk-go/apperror"
	"github.com/user/taskdesk-go/auth"
	"github.com/user/taskdesk-go/users"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// Service defines the task operations.
type Service interface {
	// ListByProject lists the project's tasks. This path keeps the
	// malformed-id / absent-project asymmetry: a malformed project id is a
	// 400, a well-formed but absent (or foreign) one is a 404.
	ListByProject(ctx context.Context, owner *auth.User, projectID string) ([]Task, error)
	// Create adds a task under the project, enforcing the per-project
	// duplicate-title guard before any write.
	Create(ctx context.Context, owner *auth.User, projectID string, req CreateTaskRequest) (*Task, error)
	// Get resolves a task by its (task id, project id) pair; any mismatch
	// or malformed id is a plain not-found.
	Get(ctx context.Context, owner *auth.User, projectID, taskID string) (*Task, error)
	// Update applies only the fields present in the request.
	Update(ctx context.Context, owner *auth.User, projectID, taskID string, req UpdateTaskRequest) (*Task, error)
	Delete(ctx context.Context, owner *auth.User, projectID, taskID string) error
	// Filter is the deliberately unscoped global task view.
	Filter(ctx context.Context, f Filter) ([]Task, error)
	// Summary counts the project's tasks per status.
	Summary(ctx context.Context, owner *auth.User, projectID string) (StatusSummary, error)
}

type taskServiceImpl struct {
	db    *pgxpool.Pool
	users users.Service
}

// NewService creates the task service. The users service resolves assignee
// usernames.
func NewService(db *pgxpool.Pool, users users.Service) Service {
	return &taskServiceImpl{db: db, users: users}
}

// taskSelect is the shared projection: the parent project contributes its
// title, the optional assignee its username.
const taskSelect = `SELECT t.id::text, t.title, t.description, t.status, t.due_date, t.created_at,
       p.title, u.username
FROM tasks t
JOIN projects p ON p.id = t.project_id
LEFT JOIN users u ON u.id = t.assigned_to`

func errTaskNotFound() *apperror.AppError {
	return apperror.NewNotFoundError("task not found", nil)
}

func errDuplicateTitle() *apperror.AppError {
	return apperror.NewFieldValidationError(map[string]string{
		"title": "a task with this title already exists in this project",
	})
}

func errInvalidStatus() *apperror.AppError {
	return apperror.NewFieldValidationError(map[string]string{
		"status": fmt.Sprintf("must be one of %s, %s, %s", StatusToDo, StatusInProgress, StatusDone),
	})
}

// projectRef carries the resolved parent project for rendering.
type projectRef struct {
	ID    string
	Title string
}

// lookupOwnedProject fetches a project scoped to its owner. The id must
// already be well-formed.
func (s *taskServiceImpl) lookupOwnedProject(ctx context.Context, owner *auth.User, projectID string) (*projectRef, error) {
	var ref projectRef
	err := s.db.QueryRow(ctx,
		`SELECT id::text, title FROM projects WHERE id = $1::uuid AND owner_id = $2::uuid`,
		projectID, owner.ID).Scan(&ref.ID, &ref.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("project not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get project", err)
	}
	return &ref, nil
}

// resolveProjectForNested resolves the project id of the nested task
// list/create path, where a malformed id is reported distinctly from an
// absent one. Unlike direct single-resource lookups, these two outcomes
// must not be collapsed here.
func (s *taskServiceImpl) resolveProjectForNested(ctx context.Context, owner *auth.User, projectID string) (*projectRef, error) {
	if _, err := uuid.Parse(projectID); err != nil {
		return nil, apperror.NewBadRequestError("invalid project id", nil)
	}
	return s.lookupOwnedProject(ctx, owner, projectID)
}

// resolveProjectCollapsed resolves a project id where malformed and absent
// are the same not-found outcome (used by the summary).
func (s *taskServiceImpl) resolveProjectCollapsed(ctx context.Context, owner *auth.User, projectID string) (*projectRef, error) {
	if _, err := uuid.Parse(projectID); err != nil {
		return nil, apperror.NewNotFoundError("project not found", nil)
	}
	return s.lookupOwnedProject(ctx, owner, projectID)
}

func (s *taskServiceImpl) ListByProject(ctx context.Context, owner *auth.User, projectID string) ([]Task, error) {
	ref, err := s.resolveProjectForNested(ctx, owner, projectID)
	if err != nil {
		return nil, err
	}

	query := taskSelect + `
WHERE t.project_id = $1::uuid
ORDER BY t.created_at DESC`
	rows, err := s.db.Query(ctx, query, ref.ID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list tasks", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

func (s *taskServiceImpl) Create(ctx context.Context, owner *auth.User, projectID string, req CreateTaskRequest) (*Task, error) {
	ref, err := s.resolveProjectForNested(ctx, owner, projectID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Title) == "" {
		return nil, apperror.NewFieldValidationError(map[string]string{
			"title": "this field is required",
		})
	}

	status := StatusToDo
	if req.Status != "" {
		parsed, ok := ParseStatus(req.Status)
		if !ok {
			return nil, errInvalidStatus()
		}
		status = parsed
	}

	// The assignee arrives as a username and must resolve to an existing
	// user; the stored value is the user's id.
	var assigneeID, assigneeName *string
	if req.AssignedTo != "" {
		user, err := s.users.GetByUsername(ctx, req.AssignedTo)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, apperror.NewFieldValidationError(map[string]string{
					"assigned_to": fmt.Sprintf("user '%s' does not exist", req.AssignedTo),
				})
			}
			return nil, err
		}
		assigneeID = &user.ID
		assigneeName = &user.Username
	}

	// Duplicate-title guard, checked before any write. The read-then-write
	// is not transactional; the unique index below is the backstop for a
	// lost race.
	var exists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM tasks WHERE project_id = $1::uuid AND title = $2)`,
		ref.ID, req.Title).Scan(&exists)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to check task title", err)
	}
	if exists {
		return nil, errDuplicateTitle()
	}

	task := &Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		DueDate:     req.DueDate,
		ProjectName: ref.Title,
		AssignedTo:  assigneeName,
	}
	query := `INSERT INTO tasks (project_id, title, description, status, due_date, assigned_to)
	          VALUES ($1::uuid, $2, $3, $4, $5, $6::uuid)
	          RETURNING id::text, created_at`
	err = s.db.QueryRow(ctx, query,
		ref.ID, task.Title, task.Description, string(task.Status), task.DueDate, assigneeID).
		Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, errDuplicateTitle()
		}
		return nil, apperror.NewDatabaseError("failed to create task", err)
	}
	return task, nil
}

func (s *taskServiceImpl) Get(ctx context.Context, owner *auth.User, projectID, taskID string) (*Task, error) {
	// Direct lookup: malformed ids, absent rows, mismatched pairs and
	// foreign owners all collapse into the same not-found.
	if _, err := uuid.Parse(projectID); err != nil {
		return nil, errTaskNotFound()
	}
	if _, err := uuid.Parse(taskID); err != nil {
		return nil, errTaskNotFound()
	}

	query := taskSelect + `
WHERE t.id = $1::uuid AND t.project_id = $2::uuid AND p.owner_id = $3::uuid`
	task, err := scanTask(s.db.QueryRow(ctx, query, taskID, projectID, owner.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errTaskNotFound()
		}
		return nil, apperror.NewDatabaseError("failed to get task", err)
	}
	return task, nil
}

func (s *taskServiceImpl) Update(ctx context.Context, owner *auth.User, projectID, taskID string, req UpdateTaskRequest) (*Task, error) {
	if _, err := s.Get(ctx, owner, projectID, taskID); err != nil {
		return nil, err
	}

	var setClauses []string
	var args []interface{}
	argID := 1

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, apperror.NewFieldValidationError(map[string]string{
				"title": "this field may not be blank",
			})
		}
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argID))
		args = append(args, *req.Title)
		argID++
	}
	if req.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argID))
		args = append(args, *req.Description)
		argID++
	}
	if req.Status != nil {
		status, ok := ParseStatus(*req.Status)
		if !ok {
			return nil, errInvalidStatus()
		}
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", argID))
		args = append(args, string(status))
		argID++
	}
	if req.DueDate != nil {
		setClauses = append(setClauses, fmt.Sprintf("due_date = $%d", argID))
		args = append(args, *req.DueDate)
		argID++
	}
	if req.AssignedTo.Set {
		if req.AssignedTo.Value == nil {
			// Explicit null clears the assignment; omission would have left
			// it untouched.
			setClauses = append(setClauses, "assigned_to = NULL")
		} else {
			user, err := s.users.GetByUsername(ctx, *req.AssignedTo.Value)
			if err != nil {
				if apperror.IsNotFound(err) {
					return nil, apperror.NewFieldValidationError(map[string]string{
						"assigned_to": fmt.Sprintf("user '%s' does not exist", *req.AssignedTo.Value),
					})
				}
				return nil, err
			}
			setClauses = append(setClauses, fmt.Sprintf("assigned_to = $%d::uuid", argID))
			args = append(args, user.ID)
			argID++
		}
	}

	if len(setClauses) == 0 {
		return s.Get(ctx, owner, projectID, taskID)
	}

	args = append(args, taskID, projectID)
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d::uuid AND project_id = $%d::uuid`,
		strings.Join(setClauses, ", "), argID, argID+1)

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// The per-project title uniqueness also holds on rename.
			return nil, errDuplicateTitle()
		}
		return nil, apperror.NewDatabaseError("failed to update task", err)
	}

	return s.Get(ctx, owner, projectID, taskID)
}

func (s *taskServiceImpl) Delete(ctx context.Context, owner *auth.User, projectID, taskID string) error {
	if _, err := uuid.Parse(projectID); err != nil {
		return errTaskNotFound()
	}
	if _, err := uuid.Parse(taskID); err != nil {
		return errTaskNotFound()
	}

	tag, err := s.db.Exec(ctx,
		`DELETE FROM tasks t
		 USING projects p
		 WHERE t.id = $1::uuid AND t.project_id = $2::uuid
		   AND p.id = t.project_id AND p.owner_id = $3::uuid`,
		taskID, projectID, owner.ID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return errTaskNotFound()
	}
	return nil
}

func (s *taskServiceImpl) Filter(ctx context.Context, f Filter) ([]Task, error) {
	// Assignee is filtered by username. An unknown username yields an
	// empty result set, not an error.
	var assigneeID *string
	if f.AssignedTo != "" {
		user, err := s.users.GetByUsername(ctx, f.AssignedTo)
		if err != nil {
			if apperror.IsNotFound(err) {
				return []Task{}, nil
			}
			return nil, err
		}
		assigneeID = &user.ID
	}

	query, args := buildFilterQuery(f, assigneeID, time.Now())
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to filter tasks", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

func (s *taskServiceImpl) Summary(ctx context.Context, owner *auth.User, projectID string) (StatusSummary, error) {
	ref, err := s.resolveProjectCollapsed(ctx, owner, projectID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT status, COUNT(*) FROM tasks WHERE project_id = $1::uuid GROUP BY status`,
		ref.ID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to summarize tasks", err)
	}
	defer rows.Close()

	summary := NewStatusSummary()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan summary row", err)
		}
		summary[Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to summarize tasks", err)
	}
	return summary, nil
}

// buildFilterQuery assembles the global filter query. Every dimension is
// optional and independent; today's calendar date, owned by the caller,
// handles due_today.
func buildFilterQuery(f Filter, assigneeID *string, now time.Time) (string, []interface{}) {
	query := taskSelect + `
WHERE 1=1`
	var args []interface{}
	argID := 1

	if f.Status != "" {
		query += fmt.Sprintf(" AND t.status = $%d", argID)
		args = append(args, f.Status)
		argID++
	}
	if assigneeID != nil {
		query += fmt.Sprintf(" AND t.assigned_to = $%d::uuid", argID)
		args = append(args, *assigneeID)
		argID++
	}
	if f.DueToday {
		// Compare calendar dates only, not time-of-day.
		query += fmt.Sprintf(" AND t.due_date::date = $%d::date", argID)
		args = append(args, now.Format("2006-01-02"))
		argID++
	}

	query += " ORDER BY t.created_at DESC"
	return query, args
}

// scanTask scans a single joined task row.
func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	var status string
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &t.DueDate,
		&t.CreatedAt, &t.ProjectName, &t.AssignedTo); err != nil {
		return nil, err
	}
	t.Status = Status(status)
	return &t, nil
}

// collectTasks drains joined task rows into a slice.
func collectTasks(rows pgx.Rows) ([]Task, error) {
	tasks := []Task{}
	for rows.Next() {
		var t Task
		var status string
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &status, &t.DueDate,
			&t.CreatedAt, &t.ProjectName, &t.AssignedTo); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan task", err)
		}
		t.Status = Status(status)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read tasks", err)
	}
	return tasks, nil
}
