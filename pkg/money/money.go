// Package money formats VND amounts for customer-facing text.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Format renders d rounded to whole dong with comma thousands separators.
func Format(d decimal.Decimal) string {
	raw := d.Round(0).StringFixed(0)
	negative := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")

	var b strings.Builder
	lead := len(raw) % 3
	if lead > 0 {
		b.WriteString(raw[:lead])
	}
	for i := lead; i < len(raw); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(raw[i : i+3])
	}
	if negative {
		return "-" + b.String()
	}
	return b.String()
}

// VND is Format with the currency suffix.
func VND(d decimal.Decimal) string {
	return Format(d) + " VND"
}
