// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount with the currency symbol, thousands
// separators and two decimals, e.g. "₹1,234.50".
func FormatMoney(symbol string, d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		// too large for int64, skip the separators
		return sign + symbol + fixed
	}
	return sign + symbol + FormatNumber(n) + "." + frac
}

// FormatMoneyShort formats an amount without decimals for chart labels,
// switching to K and M suffixes for large values.
func FormatMoneyShort(symbol string, d decimal.Decimal) string {
	f := d.InexactFloat64()
	switch {
	case f >= 1_000_000:
		return fmt.Sprintf("%s%.1fM", symbol, f/1_000_000)
	case f >= 10_000:
		return fmt.Sprintf("%s%.0fK", symbol, f/1_000)
	case f >= 1_000:
		return fmt.Sprintf("%s%.1fK", symbol, f/1_000)
	}
	return symbol + d.StringFixed(0)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-100 value as a whole percentage.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.0f%%", pct)
}

// FormatDelta formats an amount change with an explicit sign.
func FormatDelta(symbol string, delta decimal.Decimal) string {
	if delta.IsNegative() {
		return FormatMoney(symbol, delta)
	}
	return "+" + FormatMoney(symbol, delta)
}

// FormatDate formats a calendar date as "05 Jan 2024". Zero dates render
// as a dash.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 2006")
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
