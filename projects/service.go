package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/taskdesk-go/apperror"
	"github.com/user/taskdesk-go/auth"
)

// Service defines the project operations. Every method takes the
// authenticated owner; resolution is always scoped to them.
type Service interface {
	List(ctx context.Context, owner *auth.User) ([]Project, error)
	Create(ctx context.Context, owner *auth.User, req CreateProjectRequest) (*Project, error)
	Get(ctx context.Context, owner *auth.User, id string) (*Project, error)
	Update(ctx context.Context, owner *auth.User, id string, req UpdateProjectRequest) (*Project, error)
	Delete(ctx context.Context, owner *auth.User, id string) error
}

type projectServiceImpl struct {
	db *pgxpool.Pool
}

// NewService creates the project service.
func NewService(db *pgxpool.Pool) Service {
	return &projectServiceImpl{db: db}
}

// errProjectNotFound is the single outcome for malformed ids, absent rows
// and rows owned by someone else, so callers cannot probe for existence.
func errProjectNotFound() *apperror.AppError {
	return apperror.NewNotFoundError("project not found", nil)
}

func (s *projectServiceImpl) List(ctx context.Context, owner *auth.User) ([]Project, error) {
	query := `SELECT id::text, title, description, created_at
	          FROM projects
	          WHERE owner_id = $1::uuid
	          ORDER BY created_at DESC`
	rows, err := s.db.Query(ctx, query, owner.ID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list projects", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		p := Project{Owner: owner.Username}
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.CreatedAt); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan project", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list projects", err)
	}
	return projects, nil
}

func (s *projectServiceImpl) Create(ctx context.Context, owner *auth.User, req CreateProjectRequest) (*Project, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperror.NewFieldValidationError(map[string]string{
			"title": "this field is required",
		})
	}

	p := &Project{
		Title:       req.Title,
		Description: req.Description,
		Owner:       owner.Username,
	}
	query := `INSERT INTO projects (title, description, owner_id)
	          VALUES ($1, $2, $3::uuid)
	          RETURNING id::text, created_at`
	err := s.db.QueryRow(ctx, query, p.Title, p.Description, owner.ID).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create project", err)
	}
	return p, nil
}

func (s *projectServiceImpl) Get(ctx context.Context, owner *auth.User, id string) (*Project, error) {
	// A malformed identifier is reported exactly like a missing project.
	if _, err := uuid.Parse(id); err != nil {
		return nil, errProjectNotFound()
	}

	p := Project{Owner: owner.Username}
	query := `SELECT id::text, title, description, created_at
	          FROM projects
	          WHERE id = $1::uuid AND owner_id = $2::uuid`
	err := s.db.QueryRow(ctx, query, id, owner.ID).
		Scan(&p.ID, &p.Title, &p.Description, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errProjectNotFound()
		}
		return nil, apperror.NewDatabaseError("failed to get project", err)
	}
	return &p, nil
}

func (s *projectServiceImpl) Update(ctx context.Context, owner *auth.User, id string, req UpdateProjectRequest) (*Project, error) {
	// Existence and ownership first; also covers malformed ids.
	if _, err := s.Get(ctx, owner, id); err != nil {
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

	if len(setClauses) == 0 {
		// Nothing to apply; return the current state.
		return s.Get(ctx, owner, id)
	}

	args = append(args, id, owner.ID)
	query := fmt.Sprintf(`UPDATE projects SET %s
	          WHERE id = $%d::uuid AND owner_id = $%d::uuid
	          RETURNING id::text, title, description, created_at`,
		strings.Join(setClauses, ", "), argID, argID+1)

	p := Project{Owner: owner.Username}
	err := s.db.QueryRow(ctx, query, args...).
		Scan(&p.ID, &p.Title, &p.Description, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errProjectNotFound()
		}
		return nil, apperror.NewDatabaseError("failed to update project", err)
	}
	return &p, nil
}

func (s *projectServiceImpl) Delete(ctx context.Context, owner *auth.User, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errProjectNotFound()
	}

	// Tasks under the project are removed by the schema's ON DELETE CASCADE.
	tag, err := s.db.Exec(ctx,
		`DELETE FROM projects WHERE id = $1::uuid AND owner_id = $2::uuid`,
		id, owner.ID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete project", err)
	}
	if tag.RowsAffected() == 0 {
		return errProjectNotFound()
	}
	return nil
}
