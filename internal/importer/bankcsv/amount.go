package bankcsv

import (
	"errors"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var errNoDigits = errors.New("no digits")

// parseAmount parses a locally formatted amount into whole currency units.
// Grouping may use spaces, dots or commas; when both a dot and a comma occur
// the last one is the decimal separator. A single separator followed by
// exactly three digits is read as grouping.
// Examples: "1 500 000" -> 1500000, "1.234,56" -> 1235, "-588,40" -> -588.
func parseAmount(s string) (int64, error) {
	clean := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsDigit(r), r == '.', r == ',', r == '-', r == '+':
			return r
		}

		return -1
	}, s)

	if !strings.ContainsFunc(clean, unicode.IsDigit) {
		return 0, errNoDigits
	}

	clean = normalizeSeparators(clean)

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	return d.Round(0).IntPart(), nil
}

func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	if lastDot >= 0 && lastComma >= 0 {
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}

		return strings.ReplaceAll(s, ",", "")
	}

	sep := "."
	idx := lastDot
	if lastComma >= 0 {
		sep, idx = ",", lastComma
	}

	if idx < 0 {
		return s
	}

	if strings.Count(s, sep) > 1 || len(s)-idx-1 == 3 {
		return strings.ReplaceAll(s, sep, "")
	}

	return strings.Replace(s, sep, ".", 1)
}
