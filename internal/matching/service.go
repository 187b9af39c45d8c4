package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindMatch returns the rule with the longest pattern contained in
	// description, or nil when none matches.
	FindMatch(ctx context.Context, description string) (*Rule, error)
	CreateRule(ctx context.Context, rule *Rule) error
	ListRules(ctx context.Context) ([]*Rule, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest tries to find a preferred description for the given raw description.
// Returns nil if no match found.
func (s *Service) Suggest(ctx context.Context, description string) (*Suggestion, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, nil
	}

	rule, err := s.repo.FindMatch(ctx, description)
	if err != nil {
		return nil, err
	}

	if rule == nil {
		return nil, nil
	}

	return &Suggestion{Description: rule.Description, MethodID: rule.MethodID}, nil
}

// Apply rewrites imported rows in place with their suggestions. A suggested
// payment method replaces the row's one.
func (s *Service) Apply(ctx context.Context, params []transaction.CreateParams) error {
	for i := range params {
		suggestion, err := s.Suggest(ctx, params[i].Description)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}

		if suggestion == nil {
			continue
		}

		params[i].Description = suggestion.Description
		if suggestion.MethodID != nil {
			params[i].MethodID = *suggestion.MethodID
		}
	}

	return nil
}

type LearnParams struct {
	Pattern     string
	Description string
	MethodID    *uuid.UUID
}

// Learn remembers a new mapping between a raw pattern and a preferred description.
func (s *Service) Learn(ctx context.Context, p auth.Principal, params LearnParams) (*Rule, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}

	rule := &Rule{
		Pattern:     strings.TrimSpace(params.Pattern),
		Description: strings.TrimSpace(params.Description),
		MethodID:    params.MethodID,
	}

	if rule.Pattern == "" {
		return nil, ErrPatternRequired
	}

	if rule.Description == "" {
		return nil, ErrDescriptionRequired
	}

	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return nil, err
	}

	return rule, nil
}

func (s *Service) Rules(ctx context.Context) ([]*Rule, error) {
	return s.repo.ListRules(ctx)
}
