package employee

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/auth"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=employee
type Repository interface {
	CreateEmployee(ctx context.Context, e *Employee) error
	GetEmployee(ctx context.Context, id uuid.UUID) (*Employee, error)
	ListEmployees(ctx context.Context, filter ListFilter) ([]*Employee, error)
	UpdateEmployee(ctx context.Context, e *Employee) error
	DeleteEmployee(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type ListFilter struct {
	Active *bool
}

type CreateParams struct {
	FirstName  string
	LastName   string
	MiddleName string
	Position   string
	Phone      string
	Email      string
	HiredDate  *time.Time
	IsActive   *bool // defaults to true
}

type UpdateParams struct {
	FirstName  *string
	LastName   *string
	MiddleName *string
	Position   *string
	Phone      *string
	Email      *string
	HiredDate  *time.Time
	IsActive   *bool
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Employee, error) {
	return s.repo.ListEmployees(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Employee, error) {
	return s.repo.GetEmployee(ctx, id)
}

func (s *Service) Create(ctx context.Context, p auth.Principal, params CreateParams) (*Employee, error) {
	if err := p.RequireAuthenticated(); err != nil {
		return nil, err
	}

	first := strings.TrimSpace(params.FirstName)
	if first == "" {
		return nil, ErrFirstNameRequired
	}

	e := &Employee{
		FirstName:  first,
		LastName:   strings.TrimSpace(params.LastName),
		MiddleName: strings.TrimSpace(params.MiddleName),
		Position:   params.Position,
		Phone:      params.Phone,
		Email:      params.Email,
		HiredDate:  params.HiredDate,
		IsActive:   true,
	}

	if params.IsActive != nil {
		e.IsActive = *params.IsActive
	}

	if err := s.repo.CreateEmployee(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) Update(ctx context.Context, p auth.Principal, id uuid.UUID, params UpdateParams) (*Employee, error) {
	if err := p.RequireAuthenticated(); err != nil {
		return nil, err
	}

	e, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.FirstName != nil {
		first := strings.TrimSpace(*params.FirstName)
		if first == "" {
			return nil, ErrFirstNameRequired
		}

		e.FirstName = first
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}

	set(&e.LastName, params.LastName)
	set(&e.MiddleName, params.MiddleName)
	set(&e.Position, params.Position)
	set(&e.Phone, params.Phone)
	set(&e.Email, params.Email)

	if params.HiredDate != nil {
		e.HiredDate = params.HiredDate
	}

	if params.IsActive != nil {
		e.IsActive = *params.IsActive
	}

	if err := s.repo.UpdateEmployee(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

// Delete removes the employee together with all of their monthly entries.
func (s *Service) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if err := p.RequireStaff(); err != nil {
		return err
	}

	return s.repo.DeleteEmployee(ctx, id)
}
