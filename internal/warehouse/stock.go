package warehouse

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockChange records one adjustment of an item's running totals.
type StockChange struct {
	ItemID         uuid.UUID
	QuantityBefore int64
	QuantityAfter  int64
	KgBefore       decimal.Decimal
	KgAfter        decimal.Decimal
}

// MaxQuantity bounds piece counts on movements and items.
const MaxQuantity int64 = 1_000_000_000_000

// maxKg is the first weight quantity_kg NUMERIC(14,3) cannot hold.
var maxKg = decimal.New(1, 11)

func validKg(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Round(3))
}

func checkQuantity(q int64) error {
	switch {
	case q < 0:
		return ErrNegativeQuantity
	case q > MaxQuantity:
		return ErrQuantityTooLarge
	}

	return nil
}

func checkKg(d decimal.Decimal) error {
	switch {
	case !validKg(d):
		return ErrInvalidQuantityKg
	case d.GreaterThanOrEqual(maxKg):
		return ErrKgTooLarge
	}

	return nil
}

func NewMovement(itemID uuid.UUID, typ MovementType, quantity int64, kg decimal.Decimal, date time.Time, description string) (Movement, error) {
	if !typ.Valid() {
		return Movement{}, ErrInvalidType
	}

	if err := checkQuantity(quantity); err != nil {
		return Movement{}, err
	}

	if err := checkKg(kg); err != nil {
		return Movement{}, err
	}

	if quantity == 0 && kg.IsZero() {
		return Movement{}, ErrEmptyMovement
	}

	return Movement{
		ItemID:      itemID,
		Type:        typ,
		Quantity:    quantity,
		QuantityKg:  kg,
		Date:        date,
		Description: strings.TrimSpace(description),
	}, nil
}

func floorQuantity(q int64) int64 {
	return max(q, 0)
}

func floorKg(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}

	return d
}

// addQuantity reports false when a+b overflows int64.
func addQuantity(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}

	return sum, true
}

func shift(item Item, quantity int64, kg decimal.Decimal) (Item, StockChange, error) {
	sum, ok := addQuantity(item.Quantity, quantity)
	if !ok {
		return item, StockChange{}, ErrStockOutOfRange
	}

	nextQuantity := floorQuantity(sum)
	nextKg := floorKg(item.QuantityKg.Add(kg))

	if nextQuantity > MaxQuantity || nextKg.GreaterThanOrEqual(maxKg) {
		return item, StockChange{}, ErrStockOutOfRange
	}

	change := StockChange{
		ItemID:         item.ID,
		QuantityBefore: item.Quantity,
		QuantityAfter:  nextQuantity,
		KgBefore:       item.QuantityKg,
		KgAfter:        nextKg,
	}

	item.Quantity = nextQuantity
	item.QuantityKg = nextKg

	return item, change, nil
}

// ApplyMovement adds incoming stock or removes outgoing stock. Removing more
// than is on hand leaves the item at zero. Totals beyond MaxQuantity or the
// kg column range are rejected.
func ApplyMovement(item Item, m Movement) (Item, StockChange, error) {
	if m.Type == MovementIn {
		return shift(item, m.Quantity, m.QuantityKg)
	}

	return shift(item, -m.Quantity, m.QuantityKg.Neg())
}

// RevertMovement undoes m using its stored quantities. Because an outgoing
// movement stores the requested amount rather than what was actually
// removed, reverting a clamped movement can leave more stock than before it.
func RevertMovement(item Item, m Movement) (Item, StockChange, error) {
	if m.Type == MovementIn {
		return shift(item, -m.Quantity, m.QuantityKg.Neg())
	}

	return shift(item, m.Quantity, m.QuantityKg)
}
