package warehouse

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/backoffice/internal/apperror"
)

var (
	ErrItemNotFound      = apperror.NotFound("Item not found")
	ErrItemMissing       = apperror.Validation("item not found")
	ErrMovementNotFound  = apperror.NotFound("Movement not found")
	ErrConcurrentUpdate  = apperror.Conflict("Item was modified concurrently, please retry")
	ErrNameRequired      = apperror.Validation("name is required")
	ErrInvalidType       = apperror.Validation("type must be one of: in, out")
	ErrNegativeQuantity  = apperror.Validation("quantity must not be negative")
	ErrInvalidQuantityKg = apperror.Validation("quantity_kg must be a non-negative amount with at most 3 decimal places")
	ErrEmptyMovement     = apperror.Validation("quantity or quantity_kg must be greater than zero")
	ErrQuantityTooLarge  = apperror.Validation("quantity must not exceed 1000000000000")
	ErrKgTooLarge        = apperror.Validation("quantity_kg must be less than 100000000000")
	ErrStockOutOfRange   = apperror.Validation("resulting stock is out of range")
)

type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

func (t MovementType) Valid() bool {
	return t == MovementIn || t == MovementOut
}

// Item is a stock-keeping unit. Quantity and QuantityKg are running totals
// maintained from movements and never drop below zero.
type Item struct {
	ID          uuid.UUID
	Name        string
	Description string
	Quantity    int64
	QuantityKg  decimal.Decimal
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Movement records a requested stock change. Quantities are stored as
// requested, even when an outgoing movement was clamped at zero stock.
type Movement struct {
	ID          uuid.UUID
	ItemID      uuid.UUID
	Type        MovementType
	Quantity    int64
	QuantityKg  decimal.Decimal
	Date        time.Time
	Description string
	CreatedAt   time.Time
}

type ItemDetail struct {
	Item
	Movements []*Movement
}
