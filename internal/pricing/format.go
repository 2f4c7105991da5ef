package pricing

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Korean)

// FormatAmount renders an amount for display, rounded to whole currency units
// with grouping separators.
func FormatAmount(amount decimal.Decimal) string {
	return printer.Sprintf("₩%d", amount.Round(0).IntPart())
}

// FormatPercent renders a rate such as 0.325 as "32.5%".
func FormatPercent(rate decimal.Decimal) string {
	return rate.Mul(hundred).Round(1).String() + "%"
}
