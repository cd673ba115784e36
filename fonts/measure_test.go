package fonts

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCells(t *testing.T) {
	cases := map[string]int{
		"":      0,
		"abc":   3,
		"日本":    4,
		"ＡＢ":    4,
		"a日b":   4,
		"ｱｲ":    2, // halfwidth katakana
		"naïve": 5,
	}
	for in, want := range cases {
		if got := Cells(in); got != want {
			t.Fatalf("Cells(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestRatioMeasurer(t *testing.T) {
	m := NewRatioMeasurer()
	if got := m.Advance("abcdefghijk", 22); !near(got, 110) {
		t.Fatalf("advance = %v, want 110", got)
	}
	if got := m.CharsPerLine(110, 22); !near(got, 11) {
		t.Fatalf("chars per line = %v", got)
	}
	if got := (RatioMeasurer{}).Advance("ab", 11); !near(got, 10) {
		t.Fatalf("zero ratio should fall back to default, got %v", got)
	}
}
