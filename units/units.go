package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	EMU         = 914400 // one inch
	OnePoint    = 12700
	EMUPerPixel = 9525 // 96 DPI

	// Values above this are taken to be EMU already.
	inchThreshold = 100
)

var ErrInvalidMeasure = errors.New("invalid measure")

// Axis selects which layout dimension a percentage scales against.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// ToEMU converts inches to EMU. Values over 100 are returned unchanged since
// no slide coordinate in inches gets that large.
func ToEMU(inches float64) int64 {
	if inches > inchThreshold {
		return int64(math.Round(inches))
	}
	return int64(math.Round(EMU * inches))
}

// ParseEMU parses the leading number of s ("1.5", "1.5in", "2 in") and applies ToEMU.
func ParseEMU(s string) (int64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(trimInchSuffix(s)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, ErrInvalidMeasure)
	}
	return ToEMU(v), nil
}

func trimInchSuffix(s string) string {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	switch {
	case strings.HasSuffix(lower, "in"):
		return s[:len(s)-2]
	case strings.HasSuffix(lower, "i"):
		return s[:len(s)-1]
	}
	return s
}

// Points converts a point value to EMU.
func Points(pt float64) int64 { return int64(math.Round(pt * OnePoint)) }

// Pixels converts a pixel count at 96 DPI to EMU.
func Pixels(px int) int64 { return int64(px) * EMUPerPixel }

// Inches reports an EMU value in inches.
func Inches(emu int64) float64 { return float64(emu) / EMU }

// LineHeight is the empirical line height for a font size: size*1.65/100 inches.
func LineHeight(fontSize float64) int64 { return ToEMU(fontSize * 1.65 / 100) }

type measureKind uint8

const (
	kindUnset measureKind = iota
	kindNumber
	kindPercent
	kindEMU
)

// Measure is a caller-facing length: a plain number (inches below 100, EMU
// otherwise) or a percentage of the slide. The zero value is unset.
type Measure struct {
	kind  measureKind
	value float64
}

// N returns a numeric measure.
func N(v float64) Measure { return Measure{kind: kindNumber, value: v} }

// In is N for values meant as inches; it reads better at call sites.
func In(inches float64) Measure { return N(inches) }

// Raw returns a measure already expressed in EMU.
func Raw(emu int64) Measure { return Measure{kind: kindEMU, value: float64(emu)} }

// Pct returns a percentage measure (50 means half the slide).
func Pct(p float64) Measure { return Measure{kind: kindPercent, value: p} }

// ParseMeasure accepts "1.5", "1.5in", "914400" or "50%". An empty string is unset.
func ParseMeasure(s string) (Measure, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Measure{}, nil
	}
	if strings.HasSuffix(s, "%") {
		p, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
		if err != nil {
			return Measure{}, fmt.Errorf("parse %q: %w", s, ErrInvalidMeasure)
		}
		return Pct(p), nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(trimInchSuffix(s)), 64)
	if err != nil {
		return Measure{}, fmt.Errorf("parse %q: %w", s, ErrInvalidMeasure)
	}
	return N(v), nil
}

// IsSet reports whether the measure carries a value.
func (m Measure) IsSet() bool { return m.kind != kindUnset }

// IsPercent reports whether the measure is relative to the slide.
func (m Measure) IsPercent() bool { return m.kind == kindPercent }

// Value returns the raw number held by the measure.
func (m Measure) Value() float64 { return m.value }

// Resolve converts the measure to EMU against the given layout.
func (m Measure) Resolve(axis Axis, l Layout) int64 {
	switch m.kind {
	case kindNumber:
		return ToEMU(m.value)
	case kindEMU:
		return int64(m.value)
	case kindPercent:
		if axis == AxisY {
			return int64(math.Round(m.value / 100 * float64(l.Height)))
		}
		return int64(math.Round(m.value / 100 * float64(l.Width)))
	}
	return 0
}

// ResolveOr resolves the measure, falling back to def when unset.
func (m Measure) ResolveOr(axis Axis, l Layout, def int64) int64 {
	if !m.IsSet() {
		return def
	}
	return m.Resolve(axis, l)
}

func (m Measure) String() string {
	switch m.kind {
	case kindNumber, kindEMU:
		return strconv.FormatFloat(m.value, 'f', -1, 64)
	case kindPercent:
		return strconv.FormatFloat(m.value, 'f', -1, 64) + "%"
	}
	return ""
}
