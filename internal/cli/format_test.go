package cli

import (
	"math"
	"testing"
)

func TestFormatSignedRupees(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1200, "+₹1,200"},
		{-950, "-₹950"},
		{0, "₹0"},
		{0.2, "₹0"},
		{150000, "+₹1,50,000"},
	}
	for _, tt := range tests {
		if got := FormatSignedRupees(tt.in); got != tt.want {
			t.Errorf("FormatSignedRupees(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{29.0625, "29.1%"},
		{45, "45.0%"},
		{0, "0.0%"},
		{math.NaN(), "-"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.in); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := FormatProbability(0.4); got != "40.0%" {
		t.Errorf("FormatProbability(0.4) = %q, want 40.0%%", got)
	}
}

func TestFormatMonths(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{36, "36"},
		{6.5, "6.5"},
		{6.25, "6.25"},
		{30, "30"},
	}
	for _, tt := range tests {
		if got := FormatMonths(tt.in); got != tt.want {
			t.Errorf("FormatMonths(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatShare(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{30, "30.00%"},
		{30.01, "30.01%"},
		{45.01, "45.01%"},
		{29.062521086244768, "29.06%"},
		{math.Inf(1), "-"},
	}
	for _, tt := range tests {
		if got := FormatShare(tt.in); got != tt.want {
			t.Errorf("FormatShare(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatRange(t *testing.T) {
	if got := FormatRange([2]float64{5000, 110000}); got != "₹5,000 to ₹1,10,000" {
		t.Errorf("FormatRange = %q", got)
	}
}
