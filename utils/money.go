package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount as US dollars like "$12,500.00", rounding half-up to cents.
func FormatMoney(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	if neg {
		amount = amount.Neg()
	}

	s := amount.StringFixed(2)
	whole, cents := s[:len(s)-3], s[len(s)-2:]

	var b strings.Builder
	// Pre-allocate: digits + separators + sign + $ + cents
	b.Grow(len(whole) + len(whole)/3 + 5)
	if neg {
		b.WriteString("-$")
	} else {
		b.WriteString("$")
	}

	// Insert separators from the left.
	rem := len(whole) % 3
	if rem == 0 {
		rem = 3
	}
	if rem > len(whole) {
		rem = len(whole)
	}
	b.WriteString(whole[:rem])
	for i := rem; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}
	b.WriteByte('.')
	b.WriteString(cents)

	return b.String()
}

// FormatPercent formats a rate such as 0.07 as "7%"
func FormatPercent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String() + "%"
}
