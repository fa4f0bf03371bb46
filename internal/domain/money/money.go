// Package money formats catalog amounts for display.
package money

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// DefaultSymbol is the currency symbol used when none is configured.
const DefaultSymbol = "$"

// Formatter renders amounts as a currency symbol followed by a grouped
// whole-unit amount, e.g. 2500 -> "$2.500".
type Formatter struct {
	Symbol string
}

// New returns a Formatter using symbol, or DefaultSymbol when symbol is empty.
func New(symbol string) Formatter {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return Formatter{Symbol: symbol}
}

// Format renders amount. Fractional parts are rounded to whole units since
// catalog prices are whole numbers of the smallest currency unit.
func (f Formatter) Format(amount decimal.Decimal) string {
	symbol := f.Symbol
	if symbol == "" {
		symbol = DefaultSymbol
	}

	// BigComma groups with exact integer arithmetic; "." is the es-AR
	// thousands separator.
	digits := humanize.BigComma(amount.Round(0).BigInt())
	sign := ""
	if rest, ok := strings.CutPrefix(digits, "-"); ok {
		sign, digits = "-", rest
	}
	return sign + symbol + strings.ReplaceAll(digits, ",", ".")
}

// FormatFrom renders a "starting at" price used for variant listings.
func (f Formatter) FormatFrom(amount decimal.Decimal) string {
	return "Desde " + f.Format(amount)
}
