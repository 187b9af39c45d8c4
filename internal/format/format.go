// Package format renders amounts the way the back office prints them:
// dot-separated thousands and a comma before decimals.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.German)

// Thousands renders 1234567 as "1.234.567".
func Thousands(n int64) string {
	return printer.Sprintf("%d", n)
}

// Decimal renders d with two decimals, e.g. "1.234,50".
func Decimal(d decimal.Decimal) string {
	return decimalPlaces(d, 2)
}

// Kg renders a weight with three decimals, e.g. "12,500".
func Kg(d decimal.Decimal) string {
	return decimalPlaces(d, 3)
}

func decimalPlaces(d decimal.Decimal, places int32) string {
	abs := d.Abs().Round(places)
	whole := abs.IntPart()
	frac := abs.Sub(decimal.NewFromInt(whole)).StringFixed(places)

	var b strings.Builder
	if d.Round(places).IsNegative() {
		b.WriteByte('-')
	}

	b.WriteString(Thousands(whole))
	b.WriteByte(',')
	b.WriteString(frac[strings.IndexByte(frac, '.')+1:])

	return b.String()
}

// Money renders a whole amount with its currency code: "1.234.567 UZS".
func Money(n int64, currency string) string {
	return Thousands(n) + " " + strings.ToUpper(currency)
}
