package transaction

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Currency is the lowercase ISO-like code stored with every transaction.
type Currency string

const (
	CurrencyUZS Currency = "uzs"
	CurrencyUSD Currency = "usd"
	CurrencyAFN Currency = "afn"
)

// DefaultCurrency is used when a caller does not name one.
const DefaultCurrency = CurrencyUZS

// Currencies lists every supported currency in display order.
var Currencies = []Currency{CurrencyUZS, CurrencyUSD, CurrencyAFN}

func (c Currency) Valid() bool {
	for _, known := range Currencies {
		if c == known {
			return true
		}
	}

	return false
}

// Code returns the uppercase form used in summaries and exports.
func (c Currency) Code() string {
	return strings.ToUpper(string(c))
}

// ParseCurrency accepts any casing and maps the empty string to DefaultCurrency.
func ParseCurrency(s string) (Currency, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultCurrency, nil
	}

	c := Currency(s)
	if !c.Valid() {
		return "", ErrInvalidCurrency
	}

	return c, nil
}

// Method is a payment method (cash, card, bank transfer, ...).
type Method struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Transaction represents a financial transaction.
type Transaction struct {
	ID          uuid.UUID
	Type        Type
	Currency    Currency
	Amount      int64 // whole currency units
	Description string
	Date        time.Time
	MethodID    uuid.UUID
	MethodName  string // loaded via JOIN
	CreatedAt   time.Time
}
