package chart

import (
	"strings"

	"github.com/shopspring/decimal"

	"acconti/internal/core"
)

// CurrencyFormatter renders amounts as narrow-symbol currency strings,
// e.g. "$1,234.56". Construct one per call site; there is no package-wide
// shared instance.
type CurrencyFormatter struct {
	Symbol string
}

// NewCurrencyFormatter returns a formatter for US dollar display.
func NewCurrencyFormatter() CurrencyFormatter {
	return CurrencyFormatter{Symbol: "$"}
}

// Format renders d with two decimals and comma thousands groups.
func (f CurrencyFormatter) Format(d decimal.Decimal) string {
	neg := d.Sign() < 0
	s := d.Abs().StringFixed(2)
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(f.Symbol)
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
		if len(intPart) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(intPart); i += 3 {
		b.WriteString(intPart[i : i+3])
		if i+3 < len(intPart) {
			b.WriteByte(',')
		}
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}

// DateFormatter renders calendar dates as abbreviated month plus day,
// e.g. "Jan 5".
type DateFormatter struct {
	Layout string
}

// NewDateFormatter returns a formatter using the "Jan 5" layout.
func NewDateFormatter() DateFormatter {
	return DateFormatter{Layout: "Jan 2"}
}

// Format renders d under the configured layout.
func (f DateFormatter) Format(d core.Date) string {
	return d.Time.Format(f.Layout)
}
