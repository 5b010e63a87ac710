// Package accounts implements signup and login on top of the credential
// store, the password hasher and the token issuer.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hongminglow/campus-connect/internal/auth"
	"github.com/hongminglow/campus-connect/internal/models"
	"github.com/hongminglow/campus-connect/internal/models/dto"
	"github.com/hongminglow/campus-connect/internal/storage"
)

// Hasher is satisfied by *auth.PasswordHasher.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(digest, plaintext string) (bool, error)
}

// TokenIssuer is satisfied by *auth.TokenManager.
type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

// Session is a freshly issued token and the user it belongs to.
type Session struct {
	Token string
	User  models.User
}

// Service owns the signup and login flows.
type Service struct {
	users  storage.UserStore
	hasher Hasher
	tokens TokenIssuer
	log    logrus.FieldLogger
}

// NewService constructs the service.
func NewService(users storage.UserStore, hasher Hasher, tokens TokenIssuer, log logrus.FieldLogger) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens, log: log}
}

// Signup registers a user and issues a token for it.
func (s *Service) Signup(ctx context.Context, req dto.SignupRequest) (Session, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return Session{}, &ValidationError{Message: "All fields are required"}
	}
	role := models.RoleOrDefault(req.Role)
	if !role.Known() {
		s.log.WithFields(logrus.Fields{"email": email, "role": role}).Warn("signup with unrecognized role")
	}

	// The pre-check gives the common case a clean answer; the unique
	// constraint on email still decides concurrent signups below.
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return Session{}, ErrDuplicateEmail
	} else if !errors.Is(err, storage.ErrNotFound) {
		return Session{}, fmt.Errorf("%w: look up email: %w", ErrStorage, err)
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	created, err := s.users.CreateUser(ctx, models.User{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: digest,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return Session{}, ErrDuplicateEmail
		}
		return Session{}, fmt.Errorf("%w: create user: %w", ErrStorage, err)
	}

	return s.issue(created)
}

// Login verifies credentials and issues a token.
func (s *Service) Login(ctx context.Context, req dto.LoginRequest) (Session, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return Session{}, &ValidationError{Message: "Email and password required"}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("%w: look up email: %w", ErrStorage, err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, req.Password)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	if !ok {
		return Session{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *Service) issue(user models.User) (Session, error) {
	token, err := s.tokens.Issue(auth.Identity{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return Session{Token: token, User: user}, nil
}
