package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/backoffice/internal/format"
	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
)

const dbTimeout = 5 * time.Second

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// FormatAmount renders whole currency units with dot grouping and the
// currency code, e.g. "1.500.000 UZS".
func FormatAmount(amount int64, currency transaction.Currency) string {
	return format.Money(amount, currency.Code())
}

// FormatSigned prefixes incomes with "+" and expenses with "-".
func FormatSigned(tx *transaction.Transaction) string {
	sign := "+"
	if tx.Type == transaction.TypeExpense {
		sign = "-"
	}

	return sign + FormatAmount(tx.Amount, tx.Currency)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}
