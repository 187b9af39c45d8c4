package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/backoffice/internal/format"
	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
)

const (
	transactionsSheet = "Transactions"
	summarySheet      = "Summary"
)

var transactionHeaders = []string{"Date", "Type", "Currency", "Amount", "Payment method", "Description"}

var summaryHeaders = []string{"Currency", "Incomes", "Expenses", "Balance"}

// Service renders transaction listings into spreadsheets and plain text.
type Service struct {
	transactions *transaction.Service
}

// NewService creates a new export Service.
func NewService(txService *transaction.Service) *Service {
	return &Service{transactions: txService}
}

// WriteXLSX writes a workbook with every transaction matching filter and a
// per-currency summary sheet.
func (s *Service) WriteXLSX(ctx context.Context, w io.Writer, filter transaction.ListFilter) error {
	txs, err := s.transactions.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("listing transactions: %w", err)
	}

	stats, err := s.transactions.Stats(ctx, filter)
	if err != nil {
		return fmt.Errorf("computing stats: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	// Reuse the default sheet.
	if err := f.SetSheetName(f.GetSheetName(0), transactionsSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	if err := writeTransactions(f, txs); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}

	if err := writeSummary(f, stats); err != nil {
		return err
	}

	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

// Text renders the per-currency summary followed by one line per
// transaction matching filter.
func (s *Service) Text(ctx context.Context, filter transaction.ListFilter) (string, error) {
	txs, err := s.transactions.List(ctx, filter)
	if err != nil {
		return "", fmt.Errorf("listing transactions: %w", err)
	}

	stats, err := s.transactions.Stats(ctx, filter)
	if err != nil {
		return "", fmt.Errorf("computing stats: %w", err)
	}

	return Summary(stats) + "\n" + Lines(txs), nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}

		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	return nil
}

func writeTransactions(f *excelize.File, txs []*transaction.Transaction) error {
	if err := writeHeader(f, transactionsSheet, transactionHeaders); err != nil {
		return err
	}

	for i, tx := range txs {
		row := i + 2
		values := []any{
			tx.Date.Format("02.01.2006"),
			string(tx.Type),
			tx.Currency.Code(),
			tx.Amount,
			tx.MethodName,
			tx.Description,
		}

		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(transactionsSheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", row, err)
		}
	}

	_ = f.SetColWidth(transactionsSheet, "A", "A", 12)
	_ = f.SetColWidth(transactionsSheet, "B", "C", 10)
	_ = f.SetColWidth(transactionsSheet, "D", "D", 15)
	_ = f.SetColWidth(transactionsSheet, "E", "E", 18)
	_ = f.SetColWidth(transactionsSheet, "F", "F", 40)

	return nil
}

func writeSummary(f *excelize.File, stats transaction.Stats) error {
	if err := writeHeader(f, summarySheet, summaryHeaders); err != nil {
		return err
	}

	for i, c := range transaction.Currencies {
		t := stats[c]
		values := []any{c.Code(), t.Incomes, t.Expenses, t.Balance}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(summarySheet, cell, &values); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}

	_ = f.SetColWidth(summarySheet, "A", "D", 15)

	return nil
}

// Summary renders stats as one line per currency, e.g.
// "UZS: incomes 1.500.000, expenses 200.000, balance 1.300.000".
func Summary(stats transaction.Stats) string {
	var sb strings.Builder

	for _, c := range transaction.Currencies {
		t := stats[c]
		fmt.Fprintf(&sb, "%s: incomes %s, expenses %s, balance %s\n",
			c.Code(), format.Thousands(t.Incomes), format.Thousands(t.Expenses), format.Thousands(t.Balance))
	}

	return sb.String()
}

// Lines renders one bullet per transaction, signed by type.
func Lines(txs []*transaction.Transaction) string {
	var sb strings.Builder

	for _, tx := range txs {
		sign := "-"
		if tx.Type == transaction.TypeIncome {
			sign = "+"
		}

		method := tx.MethodName
		if method == "" {
			method = "-"
		}

		fmt.Fprintf(&sb, "* %s | %s | %s%s | %s\n",
			tx.Date.Format(time.DateOnly), tx.Description, sign, format.Money(tx.Amount, string(tx.Currency)), method)
	}

	return sb.String()
}
