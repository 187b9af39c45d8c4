package bankcsv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	enc "github.com/MrJamesThe3rd/backoffice/internal/encoding"
	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
)

var errNoProfile = errors.New("no matching CSV layout found: expected Date/Description with Amount or Income/Expense columns")

var dateLayouts = []string{
	time.DateOnly,
	"02.01.2006",
	"02/01/2006",
	"02-01-2006",
}

// Parser reads CSV exports and produces transaction params. It auto-detects
// the delimiter and the column layout by matching the header row against
// known profiles.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]transaction.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	content, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = detectDelimiter(content)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, colMap, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, errNoProfile
	}

	return parseRows(profile, colMap, rows[headerIdx+1:], headerIdx+1)
}

// detectDelimiter picks the most frequent of ';', ',' and tab over the
// first lines. Semicolon wins ties since decimal commas are common.
func detectDelimiter(content []byte) rune {
	lines := bytes.SplitN(content, []byte("\n"), 20)
	counts := map[rune]int{}

	for _, line := range lines {
		counts[';'] += bytes.Count(line, []byte(";"))
		counts[','] += bytes.Count(line, []byte(","))
		counts['\t'] += bytes.Count(line, []byte("\t"))
	}

	best := ';'
	for _, r := range []rune{',', '\t'} {
		if counts[r] > counts[best] {
			best = r
		}
	}

	return best
}

// colIndex maps lowercased column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a known profile.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name == "" {
				continue
			}

			if _, seen := cols[name]; !seen {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

// matchesProfile checks if all required columns of a profile are present.
func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts transactions from data rows using the matched profile.
// headerRowNum is the 0-based index of the header in the original file (for error messages).
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]transaction.CreateParams, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]

	currencyIdx := -1
	if idx, ok := cols[p.CurrencyCol]; ok && p.CurrencyCol != "" {
		currencyIdx = idx
	}

	var txs []transaction.CreateParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 2 // 1-based, skipping header

		date, ok := parseDate(row, dateIdx)
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, txType, ok, err := rowAmount(p, cols, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		if !ok {
			continue
		}

		var currency transaction.Currency
		if s := cellValue(row, currencyIdx); s != "" {
			currency, err = transaction.ParseCurrency(s)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", rowNum, err)
			}
		}

		txs = append(txs, transaction.CreateParams{
			Type:        txType,
			Currency:    currency,
			Amount:      amount,
			Description: desc,
			Date:        date,
		})
	}

	return txs, nil
}

// parseDate tries the known layouts on the given cell.
// Returns false for empty cells or unparseable values (footer rows, etc).
func parseDate(row []string, idx int) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	// Some banks append a time of day.
	if before, _, found := strings.Cut(s, " "); found {
		s = before
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// rowAmount extracts the amount and transaction type from a row based on the
// profile's amount mode. ok is false for rows without a non-zero amount.
func rowAmount(p *Profile, cols colIndex, row []string) (int64, transaction.Type, bool, error) {
	switch p.AmountMode {
	case amountSingle:
		return parseSingleAmount(row, cols[p.AmountCol])
	case amountSplit:
		return parseSplitAmount(row, cols[p.IncomeCol], cols[p.ExpenseCol])
	}

	return 0, "", false, nil
}

// parseSingleAmount handles a single signed amount column.
func parseSingleAmount(row []string, idx int) (int64, transaction.Type, bool, error) {
	s := cellValue(row, idx)
	if s == "" {
		return 0, "", false, nil
	}

	n, err := parseAmount(s)
	if err != nil {
		return 0, "", false, fmt.Errorf("invalid amount %q", s)
	}

	switch {
	case n < 0:
		return -n, transaction.TypeExpense, true, nil
	case n > 0:
		return n, transaction.TypeIncome, true, nil
	}

	return 0, "", false, nil
}

// parseSplitAmount handles separate income/expense columns. Expense is
// checked first.
func parseSplitAmount(row []string, incomeIdx, expenseIdx int) (int64, transaction.Type, bool, error) {
	for _, col := range []struct {
		idx int
		typ transaction.Type
	}{
		{expenseIdx, transaction.TypeExpense},
		{incomeIdx, transaction.TypeIncome},
	} {
		s := cellValue(row, col.idx)
		if s == "" {
			continue
		}

		n, err := parseAmount(s)
		if err != nil {
			return 0, "", false, fmt.Errorf("invalid amount %q", s)
		}

		if n != 0 {
			return abs(n), col.typ, true, nil
		}
	}

	return 0, "", false, nil
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
