package reporter

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// FormatMoney renders an amount with thousands separators and two decimals,
// e.g. "$1,432,298.73" or "-$12.50"
func FormatMoney(d decimal.Decimal) string {
	amount := printer.Sprint(number.Decimal(d.Abs().Round(2).InexactFloat64(), number.Scale(2)))
	if d.Round(2).IsNegative() {
		return "-$" + amount
	}
	return "$" + amount
}

// FormatCount renders a count with thousands separators
func FormatCount(n int) string {
	return printer.Sprint(number.Decimal(n))
}

// FormatPercent renders part/whole as a percentage with one decimal. A zero
// whole renders as "n/a".
func FormatPercent(part, whole decimal.Decimal) string {
	if whole.IsZero() {
		return "n/a"
	}
	pct := part.Div(whole).Mul(decimal.NewFromInt(100)).Round(1)
	return pct.StringFixed(1) + "%"
}
