// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/google/uuid"

	"github.com/ledgerlite/ledgerlite/internal/auth"
	"github.com/ledgerlite/ledgerlite/internal/metrics"
	"github.com/ledgerlite/ledgerlite/internal/model"
	"github.com/ledgerlite/ledgerlite/internal/repository"
)

// Session/auth errors.
var (
	// ErrInvalidCredentials covers unknown email, wrong password, and
	// wrong role alike; the causes are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmptyPassword      = errors.New("password must not be empty")
	ErrInvalidRole        = errors.New("invalid role")
	ErrNoSession          = errors.New("no active session")
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// LandingView tells the client which view to show after authentication.
type LandingView string

const (
	LandingDashboard LandingView = "dashboard"
	LandingAdmin     LandingView = "admin"
)

func landingFor(role model.Role) LandingView {
	if role == model.RoleAdmin {
		return LandingAdmin
	}
	return LandingDashboard
}

// SessionService resolves login and registration against the users
// repository and holds the current session as its own store-backed value.
type SessionService struct {
	repo     *repository.Repository
	notifier *Notifier
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewSessionService creates a SessionService.
func NewSessionService(repo *repository.Repository, notifier *Notifier, logger *slog.Logger, recorder metrics.Recorder) *SessionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SessionService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		metrics:  recorder,
	}
}

// Credentials is the input for both registration and login.
type Credentials struct {
	Email    string
	Password string
	Role     string
}

// Register creates a new user and immediately establishes a session.
// Registration against an existing email always fails and never
// mutates the users collection.
func (s *SessionService) Register(ctx context.Context, input Credentials) (model.User, LandingView, error) {
	if !emailRegex.MatchString(input.Email) {
		return model.User{}, "", ErrInvalidEmail
	}
	if input.Password == "" {
		return model.User{}, "", ErrEmptyPassword
	}
	role := model.Role(input.Role)
	if !role.IsValid() {
		return model.User{}, "", ErrInvalidRole
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		ID:           uuid.New().String(),
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, "", ErrEmailExists
		}
		return model.User{}, "", err
	}

	if err := s.repo.SetSession(ctx, user); err != nil {
		return model.User{}, "", err
	}

	s.metrics.IncUserRegistered()
	s.logger.Info("user_registered", "user_id", user.ID, "role", string(role))

	return user.Sanitized(), landingFor(role), nil
}

// Login succeeds only when a user exists whose email, password, and
// role all match the input. Any single-field mismatch collapses to the
// same generic failure.
func (s *SessionService) Login(ctx context.Context, input Credentials) (model.User, LandingView, error) {
	user, err := s.repo.FindUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailure()
			return model.User{}, "", ErrInvalidCredentials
		}
		return model.User{}, "", err
	}

	ok, err := auth.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok || string(user.Role) != input.Role {
		s.metrics.IncLoginFailure()
		return model.User{}, "", ErrInvalidCredentials
	}

	if err := s.repo.SetSession(ctx, *user); err != nil {
		return model.User{}, "", err
	}

	s.metrics.IncLoginSuccess()
	s.logger.Info("user_logged_in", "user_id", user.ID, "role", string(user.Role))

	return user.Sanitized(), landingFor(user.Role), nil
}

// Logout clears the session only; no entity data is touched. Any
// standing budget alert for the departing user is dropped with it.
func (s *SessionService) Logout(ctx context.Context) error {
	if s.notifier != nil {
		if user, err := s.repo.GetSession(ctx); err == nil {
			s.notifier.Reset(user.ID)
		}
	}
	return s.repo.ClearSession(ctx)
}

// Current returns the session user, or ErrNoSession.
func (s *SessionService) Current(ctx context.Context) (model.User, error) {
	user, err := s.repo.GetSession(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoSession) {
			return model.User{}, ErrNoSession
		}
		return model.User{}, err
	}
	return *user, nil
}
