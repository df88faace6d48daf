// Package auth is the identity collaborator: account signup, password
// authentication, bearer tokens and per-request role resolution.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/Shivanand-hulikatti/campus-events/internal/apperr"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
)

const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgNotAdmin           = "This account does not have admin privileges. Please use student login."
	MsgPasswordMismatch   = "Passwords don't match."
	MsgUsernameTaken      = "Username already exists."
	MsgEmailTaken         = "Email already exists."
	MsgPasswordTooLong    = "password must be at most 72 bytes."
)

// Column widths of the users table.
const (
	maxUsernameLen = 150
	maxNameLen     = 150
	maxEmailLen    = 254
)

// UserStore persists accounts.
type UserStore interface {
	CreateWithRole(ctx context.Context, u *model.User, role model.Role) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// RoleStore resolves the roles assigned to a user.
type RoleStore interface {
	RolesOf(ctx context.Context, userID string) (model.RoleSet, error)
}

// Session is the result of a successful login.
type Session struct {
	User        *model.User
	Roles       model.RoleSet
	AccessToken string
	ExpiresAt   time.Time
}

// Service implements signup, login and token identification.
type Service struct {
	users  UserStore
	roles  RoleStore
	tokens *Tokens
	logger *slog.Logger
}

// NewService constructs an auth Service.
func NewService(users UserStore, roles RoleStore, tokens *Tokens, logger *slog.Logger) *Service {
	return &Service{users: users, roles: roles, tokens: tokens, logger: logger}
}

// Signup creates an account holding the student role.
func (s *Service) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	first, err := cleanName(req.FirstName, "first_name")
	if err != nil {
		return nil, err
	}
	last, err := cleanName(req.LastName, "last_name")
	if err != nil {
		return nil, err
	}
	username := strings.TrimSpace(req.Username)
	if len(username) > maxUsernameLen {
		return nil, apperr.Validation(fmt.Sprintf("username must be at most %d characters.", maxUsernameLen))
	}
	email := strings.TrimSpace(req.Email)
	if len(email) > maxEmailLen {
		return nil, apperr.Validation(fmt.Sprintf("email must be at most %d characters.", maxEmailLen))
	}
	if req.Password != req.PasswordConfirm {
		return nil, apperr.Validation(MsgPasswordMismatch)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperr.Wrap(apperr.KindValidation, MsgPasswordTooLong, err)
		}
		return nil, err
	}
	u := &model.User{
		Username:     username,
		Email:        email,
		FirstName:    first,
		LastName:     last,
		PasswordHash: hash,
	}
	if err := s.users.CreateWithRole(ctx, u, model.RoleStudent); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, apperr.Wrap(apperr.KindValidation, MsgUsernameTaken, err)
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, apperr.Wrap(apperr.KindValidation, MsgEmailTaken, err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed up", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Authenticate returns the user whose credentials match, or a validation
// error when they do not.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Validation(MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	ok, err := CheckPassword(u.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Validation(MsgInvalidCredentials)
	}
	return u, nil
}

// Login authenticates the caller and issues an access token. An admin login
// is refused for accounts without an admin role.
func (s *Service) Login(ctx context.Context, req model.LoginRequest) (*Session, error) {
	u, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	roles, err := s.roles.RolesOf(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	if req.IsAdmin && !roles.IsAdmin() {
		return nil, apperr.PermissionDenied(MsgNotAdmin)
	}

	token, expires, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user logged in", "user_id", u.ID, "admin_login", req.IsAdmin)
	return &Session{User: u, Roles: roles, AccessToken: token, ExpiresAt: expires}, nil
}

// Identify resolves a bearer token into an Actor. Roles are loaded fresh on
// every call, so a revoked role takes effect on the next request.
func (s *Service) Identify(ctx context.Context, token string) (model.Actor, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return model.Actor{}, apperr.Wrap(apperr.KindUnauthenticated, ErrInvalidToken.Error(), err)
	}
	roles, err := s.roles.RolesOf(ctx, claims.Subject)
	if err != nil {
		return model.Actor{}, fmt.Errorf("load roles: %w", err)
	}
	return model.Actor{UserID: claims.Subject, Username: claims.Username, Roles: roles}, nil
}

// Me returns the account behind actor.
func (s *Service) Me(ctx context.Context, actor model.Actor) (*model.User, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthenticated("authentication required")
	}
	u, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Wrap(apperr.KindUnauthenticated, "account no longer exists", err)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// cleanName trims a personal name, requires at least two ASCII letters and
// nothing else, and capitalises it.
func cleanName(value, field string) (string, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return "", apperr.Validation(field + " cannot be empty or spaces only.")
	}
	if len(cleaned) < 2 {
		return "", apperr.Validation(field + " must be at least 2 characters.")
	}
	if len(cleaned) > maxNameLen {
		return "", apperr.Validation(fmt.Sprintf("%s must be at most %d characters.", field, maxNameLen))
	}
	for _, r := range cleaned {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return "", apperr.Validation("Only alphabets are allowed in " + field + ".")
		}
	}
	return strings.ToUpper(cleaned[:1]) + strings.ToLower(cleaned[1:]), nil
}
