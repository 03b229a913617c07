// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"

	"github.com/theirongolddev/cashraaga/internal/amount"
)

// FormatRupees formats an amount as whole rupees with Indian grouping.
// e.g., 800000 -> "₹8,00,000"
func FormatRupees(v float64) string {
	return amount.Rupees(v)
}

// FormatSignedRupees always carries a sign, for savings and deltas.
// e.g., 1200 -> "+₹1,200", -950 -> "-₹950"
func FormatSignedRupees(v float64) string {
	if amount.Format(v) == "0" {
		return "₹0"
	}
	if v > 0 {
		return "+" + amount.Rupees(v)
	}
	return amount.Rupees(v)
}

// FormatPercent formats a value that is already a percentage.
// e.g., 29.0625 -> "29.1%"
func FormatPercent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", p)
}

// FormatProbability formats a 0-1 float as a percentage string.
func FormatProbability(f float64) string {
	return FormatPercent(f * 100)
}

// FormatMonths formats a possibly fractional month count without rounding.
// e.g., 36 -> "36", 6.25 -> "6.25"
func FormatMonths(m float64) string {
	return strconv.FormatFloat(m, 'g', -1, 64)
}

// FormatShare formats the EMI share with two decimals so values just past
// a verdict threshold stay distinguishable.
// e.g., 30.01 -> "30.01%"
func FormatShare(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", p)
}

// FormatRange formats a low/high amount pair.
func FormatRange(r [2]float64) string {
	return FormatRupees(r[0]) + " to " + FormatRupees(r[1])
}
