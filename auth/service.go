package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/taskdesk-go/apperror"
	"github.com/user/taskdesk-go/config"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// Service defines the authentication operations. Handlers and the token
// middleware depend on this interface rather than the concrete
// implementation.
type Service interface {
	// Register creates a user and always mints a fresh token.
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	// Login verifies credentials and reuses the user's existing token,
	// minting one only if none exists.
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	// Logout revokes a token. Revoking an unknown key is not an error.
	Logout(ctx context.Context, key string) error
	// ResolveToken maps a token key to its user, or fails with an
	// authentication error.
	ResolveToken(ctx context.Context, key string) (*User, error)
}

type authServiceImpl struct {
	db       *pgxpool.Pool
	cfg      config.AuthConfig
	validate *validator.Validate
}

// NewService creates the authentication service.
func NewService(db *pgxpool.Pool, cfg config.AuthConfig) Service {
	return &authServiceImpl{
		db:       db,
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *authServiceImpl) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationToFieldErrors(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user := &User{
		Username:       req.Username,
		Email:          strings.ToLower(req.Email),
		HashedPassword: string(hashed),
	}

	query := `INSERT INTO users (username, email, password)
	          VALUES ($1, $2, $3)
	          RETURNING id::text, created_at`
	err = s.db.QueryRow(ctx, query, user.Username, user.Email, user.HashedPassword).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// The store-level unique constraints on (username, email) are
			// surfaced as field validation errors, never as a 500.
			if strings.Contains(pgErr.ConstraintName, "username") {
				return nil, apperror.NewFieldValidationError(map[string]string{
					"username": "username already exists",
				})
			}
			if strings.Contains(pgErr.ConstraintName, "email") {
				return nil, apperror.NewFieldValidationError(map[string]string{
					"email": "email already exists",
				})
			}
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	// Registration always mints a new token, even if the user somehow had
	// one already (it cannot: the user was just created).
	key, err := s.mintToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:  UserPayload{ID: user.ID, Username: user.Username, Email: user.Email},
		Token: key,
	}, nil
}

func (s *authServiceImpl) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationToFieldErrors(err)
	}

	var user User
	query := `SELECT id::text, username, email, password, created_at
	          FROM users WHERE username = $1`
	err := s.db.QueryRow(ctx, query, req.Username).
		Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Do not reveal whether the username or the password was wrong.
			return nil, apperror.NewValidationError("invalid username or password", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, apperror.NewValidationError("invalid username or password", nil)
	}

	// Token reuse invariant: repeated logins return the same token until a
	// logout revokes it.
	var key string
	err = s.db.QueryRow(ctx,
		`SELECT key FROM tokens WHERE user_id = $1::uuid ORDER BY created_at LIMIT 1`,
		user.ID).Scan(&key)
	if errors.Is(err, pgx.ErrNoRows) {
		key, err = s.mintToken(ctx, user.ID)
		if err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, apperror.NewDatabaseError("failed to look up token", err)
	}

	return &AuthResponse{
		User:  UserPayload{ID: user.ID, Username: user.Username, Email: user.Email},
		Token: key,
	}, nil
}

func (s *authServiceImpl) Logout(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM tokens WHERE key = $1`, key); err != nil {
		return apperror.NewDatabaseError("failed to revoke token", err)
	}
	return nil
}

func (s *authServiceImpl) ResolveToken(ctx context.Context, key string) (*User, error) {
	var user User
	query := `SELECT u.id::text, u.username, u.email, u.created_at
	          FROM tokens t
	          JOIN users u ON u.id = t.user_id
	          WHERE t.key = $1`
	err := s.db.QueryRow(ctx, query, key).
		Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewAuthError("invalid or expired token", nil)
		}
		return nil, apperror.NewDatabaseError("failed to resolve token", err)
	}
	return &user, nil
}

// mintToken stores a fresh opaque token for the user and returns its key.
func (s *authServiceImpl) mintToken(ctx context.Context, userID string) (string, error) {
	key := uuid.NewString()
	_, err := s.db.Exec(ctx,
		`INSERT INTO tokens (key, user_id) VALUES ($1, $2::uuid)`, key, userID)
	if err != nil {
		return "", apperror.NewDatabaseError("failed to create token", err)
	}
	return key, nil
}

// validationToFieldErrors converts validator errors into the field→message
// map the API reports for bad input.
func validationToFieldErrors(err error) *apperror.AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewBadRequestError("invalid request", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[field] = "this field is required"
		case "email":
			fields[field] = "must be a valid email address"
		default:
			fields[field] = fmt.Sprintf("failed %s validation", fe.Tag())
		}
	}
	return apperror.NewFieldValidationError(fields)
}
