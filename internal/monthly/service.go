package monthly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/backoffice/internal/auth"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=monthly
type Repository interface {
	CreateEntry(ctx context.Context, e *Entry) error
	EnsureEntry(ctx context.Context, employeeID uuid.UUID, month time.Time) (*Entry, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListEntries(ctx context.Context, filter ListFilter) ([]*Entry, error)
	ListProducts(ctx context.Context, entryID uuid.UUID) ([]*Product, error)
	ListPayments(ctx context.Context, entryID uuid.UUID) ([]*Payment, error)

	Begin(ctx context.Context) (LedgerTx, error)
}

// LedgerTx is a unit of work over one entry. LockEntry holds the entry row
// until Commit or Rollback; SaveBalance only succeeds if the stored version
// still matches the one that was locked.
type LedgerTx interface {
	LockEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	SaveBalance(ctx context.Context, e *Entry) error

	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	CreatePayment(ctx context.Context, p *Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	DeletePayment(ctx context.Context, id uuid.UUID) error

	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type ListFilter struct {
	EmployeeID *uuid.UUID
	Month      *time.Time
}

type AddProductParams struct {
	EntryID      uuid.UUID
	Name         string
	Quantity     int64
	PricePerUnit decimal.Decimal
}

type AddPaymentParams struct {
	EntryID     uuid.UUID
	Amount      decimal.Decimal
	Description string
	PaymentDate time.Time
}

func (s *Service) CreateEntry(ctx context.Context, p auth.Principal, employeeID uuid.UUID, month time.Time) (*Entry, error) {
	if err := p.RequireAuthenticated(); err != nil {
		return nil, err
	}

	if employeeID == uuid.Nil {
		return nil, ErrEmployeeRequired
	}

	if month.IsZero() {
		return nil, ErrInvalidMonth
	}

	e := &Entry{EmployeeID: employeeID, Month: MonthOf(month), Balance: decimal.Zero}
	if err := s.repo.CreateEntry(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

// CurrentEntry returns the employee's entry for the current month, creating
// it with a zero balance on first use.
func (s *Service) CurrentEntry(ctx context.Context, p auth.Principal, employeeID uuid.UUID) (*Entry, error) {
	if err := p.RequireAuthenticated(); err != nil {
		return nil, err
	}

	if employeeID == uuid.Nil {
		return nil, ErrEmployeeRequired
	}

	return s.repo.EnsureEntry(ctx, employeeID, MonthOf(s.now()))
}

func (s *Service) ListEntries(ctx context.Context, filter ListFilter) ([]*Entry, error) {
	if filter.Month != nil {
		m := MonthOf(*filter.Month)
		filter.Month = &m
	}

	return s.repo.ListEntries(ctx, filter)
}

func (s *Service) GetEntry(ctx context.Context, id uuid.UUID) (*EntryDetail, error) {
	e, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	products, err := s.repo.ListProducts(ctx, id)
	if err != nil {
		return nil, err
	}

	payments, err := s.repo.ListPayments(ctx, id)
	if err != nil {
		return nil, err
	}

	return &EntryDetail{Entry: *e, Products: products, Payments: payments}, nil
}

// mutate runs fn inside a ledger transaction and persists the entry it
// returns. fn gets the locked entry and must not write the balance itself.
func (s *Service) mutate(
	ctx context.Context,
	locate func(ctx context.Context, tx LedgerTx) (uuid.UUID, error),
	fn func(ctx context.Context, tx LedgerTx, e Entry) (Entry, BalanceChange, error),
) (*Entry, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback()

	entryID, err := locate(ctx, tx)
	if err != nil {
		return nil, err
	}

	locked, err := tx.LockEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	next, change, err := fn(ctx, tx, *locked)
	if err != nil {
		return nil, err
	}

	if err := tx.SaveBalance(ctx, &next); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit ledger tx: %w", err)
	}

	slog.Info("monthly balance changed",
		"entry_id", change.EntryID,
		"before", change.Before.StringFixed(2),
		"after", change.After.StringFixed(2),
	)

	return &next, nil
}

func (s *Service) AddProduct(ctx context.Context, p auth.Principal, params AddProductParams) (*Product, *Entry, error) {
	if err := p.RequireAuthenticated(); err != nil {
		return nil, nil, err
	}

	product, err := NewProduct(params.EntryID, params.Name, params.Quantity, params.PricePerUnit)
	if err != nil {
		return nil, nil, err
	}

	entry, err := s.mutate(ctx,
		func(context.Context, LedgerTx) (uuid.UUID, error) { return params.EntryID, nil },
		func(ctx context.Context, tx LedgerTx, e Entry) (Entry, BalanceChange, error) {
			next, change, err := ApplyProduct(e, product)
			if err != nil {
				return e, BalanceChange{}, err
			}

			if err := tx.CreateProduct(ctx, &product); err != nil {
				return e, BalanceChange{}, err
			}

			return next, change, nil
		},
	)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return nil, nil, ErrEntryMissing
		}

		return nil, nil, err
	}

	return &product, entry, nil
}

func (s *Service) DeleteProduct(ctx context.Context, p auth.Principal, id uuid.UUID) (*Entry, error) {
	if err := p.RequireAuthenticated(); err != nil {
		return nil, err
	}

	var product *Product

	return s.mutate(ctx,
		func(ctx context.Context, tx LedgerTx) (uuid.UUID, error) {
			var err error

			product, err = tx.GetProduct(ctx, id)
			if err != nil {
				return uuid.Nil, err
			}

			return product.EntryID, nil
		},
		func(ctx context.Context, tx LedgerTx, e Entry) (Entry, BalanceChange, error) {
			next, change, err := RevertProduct(e, *product)
			if err != nil {
				return e, BalanceChange{}, err
			}

			if err := tx.DeleteProduct(ctx, id); err != nil {
				return e, BalanceChange{}, err
			}

			return next, change, nil
		},
	)
}

func (s *Service) AddPayment(ctx context.Context, p auth.Principal, params AddPaymentParams) (*Payment, *Entry, error) {
	if err := p.RequireAuthenticated(); err != nil {
		return nil, nil, err
	}

	payment, err := NewPayment(params.EntryID, params.Amount, params.PaymentDate, params.Description)
	if err != nil {
		return nil, nil, err
	}

	entry, err := s.mutate(ctx,
		func(context.Context, LedgerTx) (uuid.UUID, error) { return params.EntryID, nil },
		func(ctx context.Context, tx LedgerTx, e Entry) (Entry, BalanceChange, error) {
			next, change, err := ApplyPayment(e, payment)
			if err != nil {
				return e, BalanceChange{}, err
			}

			if err := tx.CreatePayment(ctx, &payment); err != nil {
				return e, BalanceChange{}, err
			}

			return next, change, nil
		},
	)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return nil, nil, ErrEntryMissing
		}

		return nil, nil, err
	}

	return &payment, entry, nil
}

func (s *Service) DeletePayment(ctx context.Context, p auth.Principal, id uuid.UUID) (*Entry, error) {
	if err := p.RequireAuthenticated(); err != nil {
		return nil, err
	}

	var payment *Payment

	return s.mutate(ctx,
		func(ctx context.Context, tx LedgerTx) (uuid.UUID, error) {
			var err error

			payment, err = tx.GetPayment(ctx, id)
			if err != nil {
				return uuid.Nil, err
			}

			return payment.EntryID, nil
		},
		func(ctx context.Context, tx LedgerTx, e Entry) (Entry, BalanceChange, error) {
			next, change, err := RevertPayment(e, *payment)
			if err != nil {
				return e, BalanceChange{}, err
			}

			if err := tx.DeletePayment(ctx, id); err != nil {
				return e, BalanceChange{}, err
			}

			return next, change, nil
		},
	)
}
