package transaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/auth"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	SumByCurrency(ctx context.Context, filter ListFilter) ([]Sum, error)

	CreateMethod(ctx context.Context, method *Method) error
	ListMethods(ctx context.Context) ([]*Method, error)
	DeleteMethod(ctx context.Context, id uuid.UUID) error

	BeginImport(ctx context.Context, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, params []CreateParams) ([]*Transaction, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Type        Type
	Currency    Currency
	Amount      int64
	Description string
	Date        time.Time
	MethodID    uuid.UUID
}

// UpdateParams carries a partial update; nil fields are left untouched.
type UpdateParams struct {
	Type        *Type
	Currency    *Currency
	Amount      *int64
	Description *string
	Date        *time.Time
	MethodID    *uuid.UUID
}

type ListFilter struct {
	Type     *Type
	MethodID *uuid.UUID
	Currency *Currency
	DateFrom *time.Time
	DateTo   *time.Time
}

func (p *CreateParams) normalize() error {
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}

	return validate(p.Type, p.Currency, p.Amount, p.Date, p.MethodID)
}

func validate(typ Type, currency Currency, amount int64, date time.Time, methodID uuid.UUID) error {
	switch {
	case !typ.Valid():
		return ErrInvalidType
	case !currency.Valid():
		return ErrInvalidCurrency
	case amount < 0:
		return ErrNegativeAmount
	case date.IsZero():
		return ErrMissingDate
	case methodID == uuid.Nil:
		return ErrMissingMethod
	}

	return nil
}

func (s *Service) Create(ctx context.Context, p auth.Principal, params CreateParams) (*Transaction, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}

	if err := params.normalize(); err != nil {
		return nil, err
	}

	tx := newTransaction(params)
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) Update(ctx context.Context, p auth.Principal, id uuid.UUID, params UpdateParams) (*Transaction, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}

	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Type != nil {
		tx.Type = *params.Type
	}

	if params.Currency != nil {
		tx.Currency = *params.Currency
	}

	if params.Amount != nil {
		tx.Amount = *params.Amount
	}

	if params.Description != nil {
		tx.Description = *params.Description
	}

	if params.Date != nil {
		tx.Date = *params.Date
	}

	if params.MethodID != nil {
		tx.MethodID = *params.MethodID
	}

	if err := validate(tx.Type, tx.Currency, tx.Amount, tx.Date, tx.MethodID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if err := p.RequireStaff(); err != nil {
		return err
	}

	return s.repo.DeleteTransaction(ctx, id)
}

// Stats returns incomes, expenses and balance for every currency. A currency
// filter narrows the query, so the other currencies come back as zeros.
func (s *Service) Stats(ctx context.Context, filter ListFilter) (Stats, error) {
	sums, err := s.repo.SumByCurrency(ctx, filter)
	if err != nil {
		return nil, err
	}

	return Aggregate(sums), nil
}

func (s *Service) ListMethods(ctx context.Context) ([]*Method, error) {
	return s.repo.ListMethods(ctx)
}

func (s *Service) CreateMethod(ctx context.Context, p auth.Principal, name string) (*Method, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyMethodName
	}

	m := &Method{Name: name}
	if err := s.repo.CreateMethod(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

func (s *Service) DeleteMethod(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if err := p.RequireStaff(); err != nil {
		return err
	}

	return s.repo.DeleteMethod(ctx, id)
}

type ImportResult struct {
	Imported  []*Transaction
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Transaction
}

type dupKey struct {
	Date        string
	Amount      int64
	Type        Type
	Currency    Currency
	Description string
}

func keyOf(date time.Time, amount int64, typ Type, currency Currency, description string) dupKey {
	return dupKey{
		Date:        date.Format(time.DateOnly),
		Amount:      amount,
		Type:        typ,
		Currency:    currency,
		Description: description,
	}
}

// ImportBatch inserts parsed rows unless some of them already exist. When
// duplicates are found nothing is written and the caller gets both the
// conflicting rows and the ones that would have been new.
func (s *Service) ImportBatch(ctx context.Context, p auth.Principal, params []CreateParams) (*ImportResult, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}

	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	for i := range params {
		if err := params[i].normalize(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Transaction, len(duplicates))
	for _, d := range duplicates {
		lookup[keyOf(d.Date, d.Amount, d.Type, d.Currency, d.Description)] = d
	}

	var newParams []CreateParams

	var conflicts []Conflict

	for _, row := range params {
		existing, found := lookup[keyOf(row.Date, row.Amount, row.Type, row.Currency, row.Description)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: row, Existing: existing})
			continue
		}

		newParams = append(newParams, row)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	txs := paramsToTransactions(newParams)
	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: txs}, nil
}

// CreateBatch inserts rows the operator already confirmed, skipping the
// duplicate check.
func (s *Service) CreateBatch(ctx context.Context, p auth.Principal, params []CreateParams) ([]*Transaction, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}

	if len(params) == 0 {
		return nil, nil
	}

	for i := range params {
		if err := params[i].normalize(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	txs := paramsToTransactions(params)
	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return txs, nil
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return minDate, maxDate
}

func newTransaction(p CreateParams) *Transaction {
	return &Transaction{
		Type:        p.Type,
		Currency:    p.Currency,
		Amount:      p.Amount,
		Description: p.Description,
		Date:        p.Date,
		MethodID:    p.MethodID,
	}
}

func paramsToTransactions(params []CreateParams) []*Transaction {
	txs := make([]*Transaction, len(params))
	for i, p := range params {
		txs[i] = newTransaction(p)
	}

	return txs
}
