// Package amount converts between free-text money input and numbers.
package amount

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Normalize parses user-typed numeric text into a finite number.
// Grouping commas and surrounding whitespace are ignored. Empty, malformed
// or non-finite input yields 0.
func Normalize(text string) float64 {
	clean := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if clean == "" {
		return 0
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Format renders v rounded to whole units with Indian digit grouping.
// e.g., 800000 -> "8,00,000", 1234.5 -> "1,235"
func Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}

	s := decimal.NewFromFloat(v).Round(0).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if s == "0" {
		neg = false
	}

	grouped := groupIndian(s)
	if neg {
		return "-" + grouped
	}
	return grouped
}

// Rupees formats v as a whole-rupee amount, e.g. "₹8,00,000".
func Rupees(v float64) string {
	f := Format(v)
	if strings.HasPrefix(f, "-") {
		return "-₹" + f[1:]
	}
	return "₹" + f
}

// groupIndian groups the last three digits, then pairs: 12345678 -> 1,23,45,678.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	parts = append(parts, tail)
	return strings.Join(parts, ",")
}
