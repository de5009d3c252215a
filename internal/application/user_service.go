package application

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/example/workspace-planner/internal/directory"
)

// minPasswordLength applies to accounts created through the service. Seeded
// accounts are exempt.
const minPasswordLength = 8

// UserDirectory captures the account operations needed by the user service.
type UserDirectory interface {
	Register(ctx context.Context, input directory.SeedUser) (directory.User, error)
	Lookup(ctx context.Context, id string) (directory.User, error)
	List(ctx context.Context) ([]directory.User, error)
}

// UserInput captures the fields of a new account.
type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     directory.Role
}

// UserService registers and looks up accounts on behalf of administrators.
type UserService struct {
	users  UserDirectory
	logger *slog.Logger
}

// NewUserService wires the user service to a directory.
func NewUserService(users UserDirectory, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: defaultLogger(logger)}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// Register creates an account. Only administrators may register users; the
// role defaults to EMPLOYEE.
func (s *UserService) Register(ctx context.Context, principal Principal, input UserInput) (user directory.User, err error) {
	logger := s.loggerWith(ctx, "Register", "principal_id", principal.UserID)
	defer func() {
		logOutcome(ctx, logger.With("user_id", user.ID), err, "user registration failed", "user registered")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if input.Role == "" {
		input.Role = directory.RoleEmployee
	}
	if vErr := validateUserInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	user, err = s.users.Register(ctx, directory.SeedUser{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     input.Role,
	})
	if errors.Is(err, directory.ErrInvalidUser) {
		vErr := &ValidationError{}
		vErr.add("user", err.Error())
		err = vErr
	}
	return
}

// Get returns one account. Employees may only read their own.
func (s *UserService) Get(ctx context.Context, principal Principal, id string) (user directory.User, err error) {
	logger := s.loggerWith(ctx, "Get", "principal_id", principal.UserID, "user_id", id)
	defer func() {
		logOutcome(ctx, logger, err, "user lookup failed", "user fetched")
	}()

	if !principal.IsAdmin && principal.UserID != id {
		err = ErrUnauthorized
		return
	}
	user, err = s.users.Lookup(ctx, id)
	if errors.Is(err, directory.ErrNotFound) {
		err = ErrNotFound
	}
	return
}

// List returns every account ordered by name. Administrators only.
func (s *UserService) List(ctx context.Context, principal Principal) (users []directory.User, err error) {
	logger := s.loggerWith(ctx, "List", "principal_id", principal.UserID)
	defer func() {
		logOutcome(ctx, logger.With("count", len(users)), err, "user listing failed", "users listed")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	users, err = s.users.List(ctx)
	return
}

func validateUserInput(input UserInput) *ValidationError {
	vErr := &ValidationError{}
	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}
	if len(input.Password) < minPasswordLength {
		vErr.add("password", "password must be at least 8 characters")
	}
	if !input.Role.Valid() {
		vErr.add("role", "role must be ADMIN or EMPLOYEE")
	}
	return vErr
}
