/*
Package auth implements user accounts and the HR role gate.

PURPOSE:
  Login/password accounts with one of two roles: HR staff, who may
  approve or reject leave requests, and regular employees. Passwords are
  compared as opaque strings; hashing is the credential collaborator's
  concern, not this package's.

ROLE GATING:
  The leave orchestrator does not check roles itself. Callers (the HTTP
  layer here) must gate approve/reject behind HasHRAccess before
  invoking the orchestrator.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
)

// =============================================================================
// TYPES
// =============================================================================

type Role string

const (
	RoleHR       Role = "HR"
	RoleEmployee Role = "Employee"
)

// ValidRole reports whether r is a recognized role.
func ValidRole(r Role) bool { return r == RoleHR || r == RoleEmployee }

// User is an account record. Password is an opaque secret.
type User struct {
	ID       int64
	Login    string
	Password string
	Role     Role
}

// IsHR reports whether the user holds the HR role.
func (u *User) IsHR() bool { return u.Role == RoleHR }

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidCredentials is returned on any login/password mismatch.
	// Deliberately does not reveal which of the two was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidRole is returned for roles outside {HR, Employee}.
	ErrInvalidRole = errors.New("invalid role (use HR or Employee)")

	// ErrDuplicateLogin is returned on login key collision.
	ErrDuplicateLogin = errors.New("login already exists")

	// ErrUserNotFound is returned when a referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmptyCredentials is returned when login or password is blank.
	ErrEmptyCredentials = errors.New("login and password are required")
)

// =============================================================================
// STORE CONTRACT
// =============================================================================

type UserStore interface {
	// CreateUser persists a new user, failing with ErrDuplicateLogin on
	// key collision.
	CreateUser(ctx context.Context, u User) (int64, error)

	// UserByLogin returns nil when no user matches.
	UserByLogin(ctx context.Context, login string) (*User, error)

	// UserByID returns nil when no user matches.
	UserByID(ctx context.Context, id int64) (*User, error)

	// ListUsers returns all users ordered by login.
	ListUsers(ctx context.Context) ([]User, error)

	// UpdateRole sets a user's role.
	UpdateRole(ctx context.Context, id int64, role Role) error

	// UpdatePassword sets a user's password.
	UpdatePassword(ctx context.Context, id int64, password string) error

	// DeleteUser removes a user record.
	DeleteUser(ctx context.Context, id int64) error
}

// =============================================================================
// SERVICE
// =============================================================================

// Service orchestrates account operations over an explicit store handle.
type Service struct {
	store UserStore
}

func NewService(store UserStore) *Service {
	return &Service{store: store}
}

// Authenticate returns the user on an exact login/password match.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*User, error) {
	if login == "" || password == "" {
		return nil, ErrEmptyCredentials
	}
	u, err := s.store.UserByLogin(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	if u == nil || u.Password != password {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// CreateUser registers an account with the given role.
func (s *Service) CreateUser(ctx context.Context, login, password string, role Role) (int64, error) {
	if !ValidRole(role) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if login == "" || password == "" {
		return 0, ErrEmptyCredentials
	}
	id, err := s.store.CreateUser(ctx, User{Login: login, Password: password, Role: role})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// HasHRAccess reports whether u may approve or reject leave requests.
func (s *Service) HasHRAccess(u *User) bool {
	return u != nil && u.IsHR()
}

// ListUsers returns all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.ListUsers(ctx)
}

// UpdateRole changes a user's role.
func (s *Service) UpdateRole(ctx context.Context, id int64, role Role) error {
	if !ValidRole(role) {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	u, err := s.store.UserByID(ctx, id)
	if err != nil {
		return fmt.Errorf("user lookup: %w", err)
	}
	if u == nil {
		return ErrUserNotFound
	}
	return s.store.UpdateRole(ctx, id, role)
}

// ChangePassword replaces a user's password after checking the old one.
func (s *Service) ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	if newPassword == "" {
		return ErrEmptyCredentials
	}
	u, err := s.store.UserByID(ctx, id)
	if err != nil {
		return fmt.Errorf("user lookup: %w", err)
	}
	if u == nil {
		return ErrUserNotFound
	}
	if u.Password != oldPassword {
		return ErrInvalidCredentials
	}
	return s.store.UpdatePassword(ctx, id, newPassword)
}

// DeleteUser removes an account.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	u, err := s.store.UserByID(ctx, id)
	if err != nil {
		return fmt.Errorf("user lookup: %w", err)
	}
	if u == nil {
		return ErrUserNotFound
	}
	return s.store.DeleteUser(ctx, id)
}
