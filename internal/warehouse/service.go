package warehouse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/backoffice/internal/auth"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=warehouse
type Repository interface {
	CreateItem(ctx context.Context, item *Item) error
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	ListItems(ctx context.Context) ([]*Item, error)
	UpdateItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ListMovements(ctx context.Context, itemID uuid.UUID) ([]*Movement, error)

	Begin(ctx context.Context) (StockTx, error)
}

// StockTx is a unit of work over one item. LockItem holds the item row until
// Commit or Rollback; SaveStock only succeeds if the stored version still
// matches the one that was locked.
type StockTx interface {
	LockItem(ctx context.Context, id uuid.UUID) (*Item, error)
	SaveStock(ctx context.Context, item *Item) error

	CreateMovement(ctx context.Context, mv *Movement) error
	GetMovement(ctx context.Context, id uuid.UUID) (*Movement, error)
	DeleteMovement(ctx context.Context, id uuid.UUID) error

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

type CreateItemParams struct {
	Name        string
	Description string
	Quantity    int64
	QuantityKg  decimal.Decimal
}

// UpdateItemParams carries a partial update; nil fields are left untouched.
type UpdateItemParams struct {
	Name        *string
	Description *string
	Quantity    *int64
	QuantityKg  *decimal.Decimal
}

type AddMovementParams struct {
	ItemID      uuid.UUID
	Type        MovementType
	Quantity    int64
	QuantityKg  decimal.Decimal
	Date        time.Time // defaults to today
	Description string
}

func validateItem(item *Item) error {
	item.Name = strings.TrimSpace(item.Name)

	if item.Name == "" {
		return ErrNameRequired
	}

	if err := checkQuantity(item.Quantity); err != nil {
		return err
	}

	return checkKg(item.QuantityKg)
}

func (s *Service) ListItems(ctx context.Context) ([]*Item, error) {
	return s.repo.ListItems(ctx)
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*ItemDetail, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	movements, err := s.repo.ListMovements(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ItemDetail{Item: *item, Movements: movements}, nil
}

func (s *Service) CreateItem(ctx context.Context, p auth.Principal, params CreateItemParams) (*Item, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}

	item := &Item{
		Name:        params.Name,
		Description: params.Description,
		Quantity:    params.Quantity,
		QuantityKg:  params.QuantityKg,
	}

	if err := validateItem(item); err != nil {
		return nil, err
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, p auth.Principal, id uuid.UUID, params UpdateItemParams) (*Item, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}

	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		item.Name = *params.Name
	}

	if params.Description != nil {
		item.Description = *params.Description
	}

	if params.Quantity != nil {
		item.Quantity = *params.Quantity
	}

	if params.QuantityKg != nil {
		item.QuantityKg = *params.QuantityKg
	}

	if err := validateItem(item); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// DeleteItem removes the item together with its movement history.
func (s *Service) DeleteItem(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if err := p.RequireStaff(); err != nil {
		return err
	}

	return s.repo.DeleteItem(ctx, id)
}

func (s *Service) AddMovement(ctx context.Context, p auth.Principal, params AddMovementParams) (*Movement, *Item, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, nil, err
	}

	date := params.Date
	if date.IsZero() {
		date = s.now()
	}

	m, err := NewMovement(params.ItemID, params.Type, params.Quantity, params.QuantityKg, date, params.Description)
	if err != nil {
		return nil, nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin stock tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := tx.LockItem(ctx, params.ItemID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, nil, ErrItemMissing
		}

		return nil, nil, err
	}

	next, change, err := ApplyMovement(*locked, m)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.CreateMovement(ctx, &m); err != nil {
		return nil, nil, err
	}

	if err := s.save(ctx, tx, &next, change); err != nil {
		return nil, nil, err
	}

	return &m, &next, nil
}

func (s *Service) DeleteMovement(ctx context.Context, p auth.Principal, id uuid.UUID) (*Item, error) {
	if err := p.RequireStaff(); err != nil {
		return nil, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin stock tx: %w", err)
	}
	defer tx.Rollback()

	m, err := tx.GetMovement(ctx, id)
	if err != nil {
		return nil, err
	}

	locked, err := tx.LockItem(ctx, m.ItemID)
	if err != nil {
		return nil, err
	}

	next, change, err := RevertMovement(*locked, *m)
	if err != nil {
		return nil, err
	}

	if err := tx.DeleteMovement(ctx, id); err != nil {
		return nil, err
	}

	if err := s.save(ctx, tx, &next, change); err != nil {
		return nil, err
	}

	return &next, nil
}

func (s *Service) save(ctx context.Context, tx StockTx, item *Item, change StockChange) error {
	if err := tx.SaveStock(ctx, item); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit stock tx: %w", err)
	}

	slog.Info("warehouse stock changed",
		"item_id", change.ItemID,
		"quantity_before", change.QuantityBefore,
		"quantity_after", change.QuantityAfter,
		"kg_before", change.KgBefore.String(),
		"kg_after", change.KgAfter.String(),
	)

	return nil
}
