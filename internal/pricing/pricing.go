// Package pricing holds the quote arithmetic and the canonical display format
// for amounts. All arithmetic is exact (decimal) and happens before formatting.
package pricing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySuffix is appended to every formatted amount.
const CurrencySuffix = " руб."

// LineTotal returns count × unit in the decimal domain.
func LineTotal(count int64, unit decimal.Decimal) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(count))
}

// Sum adds amounts without intermediate rounding.
func Sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// FormatAmount renders d as "1 234 567.5 руб.": the integer part is grouped
// by three digits from the right with a space, the fractional part keeps the
// source precision minus trailing zeros.
func FormatAmount(d decimal.Decimal) string {
	s := d.String()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	out := sign + GroupThousands(intPart)
	if hasFrac {
		out += "." + frac
	}
	return out + CurrencySuffix
}

// FormatCount renders a quantity as a plain decimal string.
func FormatCount(n int64) string {
	return strconv.FormatInt(n, 10)
}

// GroupThousands inserts a space every three digits from the right of a
// string of digits.
func GroupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3)
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
