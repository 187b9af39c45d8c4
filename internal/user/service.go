package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/backoffice/internal/auth"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, u *User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type Service struct {
	repo Repository
	cost int
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost, now: time.Now}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *Service) WithHashCost(cost int) *Service {
	s.cost = cost
	return s
}

type CreateParams struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	IsStaff   bool
	IsActive  *bool // defaults to true
}

// UpdateParams carries a partial update. An empty Password keeps the
// current one.
type UpdateParams struct {
	FirstName *string
	LastName  *string
	Email     *string
	IsStaff   *bool
	IsActive  *bool
	Password  *string
}

func (s *Service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	return string(h), nil
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *Service) Create(ctx context.Context, p auth.Principal, params CreateParams) (*User, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(params.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}

	if params.Password == "" {
		return nil, ErrPasswordRequired
	}

	hash, err := s.hash(params.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:     username,
		PasswordHash: hash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        params.Email,
		IsStaff:      params.IsStaff,
		IsActive:     true,
	}

	if params.IsActive != nil {
		u.IsActive = *params.IsActive
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) Update(ctx context.Context, p auth.Principal, id uuid.UUID, params UpdateParams) (*User, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.FirstName != nil {
		u.FirstName = *params.FirstName
	}

	if params.LastName != nil {
		u.LastName = *params.LastName
	}

	if params.Email != nil {
		u.Email = *params.Email
	}

	if params.IsStaff != nil {
		u.IsStaff = *params.IsStaff
	}

	if params.IsActive != nil {
		u.IsActive = *params.IsActive
	}

	if params.Password != nil && *params.Password != "" {
		hash, err := s.hash(*params.Password)
		if err != nil {
			return nil, err
		}

		u.PasswordHash = hash
	}

	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if err := p.RequireStaff(); err != nil {
		return err
	}

	return s.repo.DeleteUser(ctx, id)
}

// Authenticate checks credentials and stamps the last login time. Unknown
// users, inactive users and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.repo.SetLastLogin(ctx, u.ID, now); err != nil {
		slog.Warn("failed to record last login", "user_id", u.ID, "error", err)
	} else {
		u.LastLogin = &now
	}

	return u, nil
}

// Principal loads the authorization context for a session's user. Staff and
// active flags always come from the store, never from the token.
func (s *Service) Principal(ctx context.Context, id uuid.UUID) (auth.Principal, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return auth.Principal{}, auth.ErrNotAuthenticated
		}

		return auth.Principal{}, err
	}

	if !u.IsActive {
		return auth.Principal{}, auth.ErrNotAuthenticated
	}

	return u.Principal(), nil
}

// EnsureAdmin creates a staff account with the given credentials unless the
// username already exists. It reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	hash, err := s.hash(password)
	if err != nil {
		return false, err
	}

	u := &User{Username: username, PasswordHash: hash, IsStaff: true, IsActive: true}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return false, nil
		}

		return false, err
	}

	slog.Info("created admin account", "username", username)

	return true, nil
}
