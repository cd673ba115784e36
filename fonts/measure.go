// Package fonts measures text for line wrapping.
package fonts

import (
	"unicode/utf8"

	"golang.org/x/text/width"
)

// Measurer reports the advance of a string in points.
type Measurer interface {
	Advance(s string, size float64) float64
}

// DefaultCharRatio is the empirical font-size to character-width divisor:
// an average glyph is size/2.2 points wide.
const DefaultCharRatio = 2.2

// RatioMeasurer estimates advances from a fixed characters-per-point ratio.
// East Asian wide and fullwidth runes count as two cells.
type RatioMeasurer struct {
	Ratio float64
}

// NewRatioMeasurer returns a measurer using DefaultCharRatio.
func NewRatioMeasurer() RatioMeasurer { return RatioMeasurer{Ratio: DefaultCharRatio} }

func (m RatioMeasurer) Advance(s string, size float64) float64 {
	ratio := m.Ratio
	if ratio <= 0 {
		ratio = DefaultCharRatio
	}
	return float64(Cells(s)) * size / ratio
}

// Cells counts character cells, two for wide runes.
func Cells(s string) int {
	n := 0
	for len(s) > 0 {
		p, size := width.LookupString(s)
		if size == 0 {
			_, size = utf8.DecodeRuneInString(s)
			size = max(size, 1)
		}
		switch p.Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
		s = s[size:]
	}
	return n
}

// CharsPerLine is how many cells fit a width at a size under the ratio.
func (m RatioMeasurer) CharsPerLine(widthPt, size float64) float64 {
	if size <= 0 {
		return 0
	}
	ratio := m.Ratio
	if ratio <= 0 {
		ratio = DefaultCharRatio
	}
	return widthPt / (size / ratio)
}
