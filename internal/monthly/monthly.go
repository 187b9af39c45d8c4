package monthly

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/backoffice/internal/apperror"
)

var (
	ErrEntryNotFound     = apperror.NotFound("Monthly entry not found")
	ErrEntryMissing      = apperror.Validation("monthly entry not found")
	ErrEntryExists       = apperror.Conflict("Monthly entry already exists for this employee and month")
	ErrEmployeeNotFound  = apperror.Validation("employee not found")
	ErrProductNotFound   = apperror.NotFound("Product not found")
	ErrPaymentNotFound   = apperror.NotFound("Payment not found")
	ErrConcurrentUpdate  = apperror.Conflict("Monthly entry was modified concurrently, please retry")
	ErrEmployeeRequired  = apperror.Validation("employee is required")
	ErrProductName       = apperror.Validation("product_name is required")
	ErrInvalidQuantity   = apperror.Validation("quantity must be between 1 and 2147483647")
	ErrInvalidPrice      = apperror.Validation("price_per_unit must be a non-negative amount below 1000000000000 with at most 2 decimal places")
	ErrInvalidAmount     = apperror.Validation("amount must be a non-negative amount below 1000000000000 with at most 2 decimal places")
	ErrTotalTooLarge     = apperror.Validation("total_amount must be below 100000000000000")
	ErrBalanceOutOfRange = apperror.Validation("resulting balance is out of range")
	ErrPaymentDateNeeded = apperror.Validation("payment_date is required")
	ErrInvalidMonth      = apperror.Validation("month must be formatted as YYYY-MM or YYYY-MM-DD")
)

// Entry is one employee's ledger for one calendar month. Balance is a
// running total: products add to it, payments subtract from it.
type Entry struct {
	ID           uuid.UUID
	EmployeeID   uuid.UUID
	EmployeeName string // loaded via JOIN
	Month        time.Time
	Balance      decimal.Decimal
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Product struct {
	ID           uuid.UUID
	EntryID      uuid.UUID
	Name         string
	Quantity     int64
	PricePerUnit decimal.Decimal
	TotalAmount  decimal.Decimal
	CreatedAt    time.Time
}

type Payment struct {
	ID          uuid.UUID
	EntryID     uuid.UUID
	Amount      decimal.Decimal
	Description string
	PaymentDate time.Time
	CreatedAt   time.Time
}

// EntryDetail is an entry with its products and payments.
type EntryDetail struct {
	Entry
	Products []*Product
	Payments []*Payment
}

// MonthOf returns the first day of t's month at midnight UTC.
func MonthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ParseMonth accepts "2006-01" or a full date and normalizes it to the first
// of the month.
func ParseMonth(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthOf(t), nil
		}
	}

	return time.Time{}, ErrInvalidMonth
}
