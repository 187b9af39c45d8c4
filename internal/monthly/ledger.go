package monthly

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceChange records one adjustment of an entry's running balance.
type BalanceChange struct {
	EntryID uuid.UUID
	Before  decimal.Decimal
	After   decimal.Decimal
	Delta   decimal.Decimal
}

// Column limits: prices and payments are NUMERIC(14,2), product totals and
// balances NUMERIC(16,2).
var (
	maxAmount  = decimal.New(1, 12)
	maxBalance = decimal.New(1, 14)
)

func validMoney(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Round(2)) && d.LessThan(maxAmount)
}

// NewProduct validates a purchase and fixes its total as quantity × price.
func NewProduct(entryID uuid.UUID, name string, quantity int64, price decimal.Decimal) (Product, error) {
	name = strings.TrimSpace(name)

	switch {
	case name == "":
		return Product{}, ErrProductName
	case quantity <= 0 || quantity > math.MaxInt32:
		return Product{}, ErrInvalidQuantity
	case !validMoney(price):
		return Product{}, ErrInvalidPrice
	}

	total := price.Mul(decimal.NewFromInt(quantity))
	if total.GreaterThanOrEqual(maxBalance) {
		return Product{}, ErrTotalTooLarge
	}

	return Product{
		EntryID:      entryID,
		Name:         name,
		Quantity:     quantity,
		PricePerUnit: price,
		TotalAmount:  total,
	}, nil
}

func NewPayment(entryID uuid.UUID, amount decimal.Decimal, date time.Time, description string) (Payment, error) {
	switch {
	case !validMoney(amount):
		return Payment{}, ErrInvalidAmount
	case date.IsZero():
		return Payment{}, ErrPaymentDateNeeded
	}

	return Payment{
		EntryID:     entryID,
		Amount:      amount,
		Description: strings.TrimSpace(description),
		PaymentDate: date,
	}, nil
}

func adjust(e Entry, delta decimal.Decimal) (Entry, BalanceChange, error) {
	after := e.Balance.Add(delta)
	if after.Abs().GreaterThanOrEqual(maxBalance) {
		return e, BalanceChange{}, ErrBalanceOutOfRange
	}

	change := BalanceChange{
		EntryID: e.ID,
		Before:  e.Balance,
		After:   after,
		Delta:   delta,
	}
	e.Balance = after

	return e, change, nil
}

func ApplyProduct(e Entry, p Product) (Entry, BalanceChange, error) {
	return adjust(e, p.TotalAmount)
}

func RevertProduct(e Entry, p Product) (Entry, BalanceChange, error) {
	return adjust(e, p.TotalAmount.Neg())
}

func ApplyPayment(e Entry, p Payment) (Entry, BalanceChange, error) {
	return adjust(e, p.Amount.Neg())
}

func RevertPayment(e Entry, p Payment) (Entry, BalanceChange, error) {
	return adjust(e, p.Amount)
}
