package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"roadward.org/internal/ids"
)

const (
	minUsernameLength = 3
	minPasswordLength = 6
)

// Service wraps account registration, credential verification and lookups.
type Service struct {
	store Store
	now   func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service backed by the given store.
func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("identity store is required")
	}
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates a new account. Role defaults to viewer when empty. The raw
// password is hashed before it reaches the store and is never persisted.
func (s *Service) Register(ctx context.Context, username, email, password string, role Role) (User, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLength {
		return User{}, fmt.Errorf("%w: username must be at least %d characters", ErrInvalidInput, minUsernameLength)
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if role == "" {
		role = RoleViewer
	}
	if !ValidRole(role) {
		return User{}, fmt.Errorf("%w: unsupported role %s", ErrInvalidInput, role)
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return User{}, fmt.Errorf("%w: user with this email or username already exists", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}
	if _, err := s.store.FindByUsername(ctx, username); err == nil {
		return User{}, fmt.Errorf("%w: user with this email or username already exists", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return User{}, err
	}
	now := s.now().UTC()
	return s.store.Create(ctx, User{
		ID:           ids.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Authenticate verifies email/password credentials. Unknown email and wrong
// password both surface the same ErrInvalidCredentials so callers cannot
// enumerate registered accounts.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID loads an account by id.
func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.store.Find(ctx, id)
}
