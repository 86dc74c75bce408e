// Package utils provides formatting and date helpers for debit notes.
package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// CurrencyKES is the currency code printed next to premium amounts.
const CurrencyKES = "KES"

// FormatKES formats an amount as Kenyan shillings with thousands grouping
// and two decimals, e.g. 58000 → "KES 58,000.00".
func FormatKES(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%s %s", sign, CurrencyKES, FormatAmount(amount))
}

// FormatAmount formats a non-negative amount with thousands grouping and
// two decimals, without a currency code.
func FormatAmount(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, decPart, _ := strings.Cut(s, ".")
	out := groupThousands(intPart) + "." + decPart
	if neg {
		return "-" + out
	}
	return out
}

// FormatRate formats a percentage rate, trimming trailing zeros.
// e.g. 3.5 → "3.5%", 4 → "4%"
func FormatRate(pct float64) string {
	s := strconv.FormatFloat(pct, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s + "%"
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
