package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/cashraaga/internal/model"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestRenderTable_AlignsRupeeColumns(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Month", "Savings"},
		Rows: [][]string{
			{"2025-05", "₹7,000"},
			{"---"},
			{"2025-06", "-₹1,20,000"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	width := lipgloss.Width(lines[0])
	for i, l := range lines {
		if w := lipgloss.Width(l); w != width {
			t.Errorf("line %d width = %d, want %d: %q", i, w, width, l)
		}
	}
	if !strings.Contains(lines[3], "    ₹7,000") {
		t.Errorf("amount not right-aligned: %q", lines[3])
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Errorf("RenderTable(empty) = %q, want empty", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	tests := []struct {
		in   []float64
		want string
	}{
		{nil, ""},
		{[]float64{5, 5}, "▁▁"},
		{[]float64{-100, 0, 100}, "▁▄█"},
	}
	for _, tt := range tests {
		if got := RenderSparkline(tt.in); got != tt.want {
			t.Errorf("RenderSparkline(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderVerdict(t *testing.T) {
	if got := RenderVerdict(model.VerdictStretch); got != "Stretch" {
		t.Errorf("RenderVerdict(stretch) = %q, want Stretch", got)
	}
}
