package fonts

import (
	"bytes"
	"fmt"
	"sync"
	"unicode"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// unitsPerEm is the shaping size; advances come back in 1/1000 em.
const unitsPerEm = 1000

// FaceMeasurer measures text by shaping it with a TrueType/OpenType face.
// It is safe for concurrent use.
type FaceMeasurer struct {
	face *gofont.Face

	mu     sync.Mutex
	shaper shaping.HarfbuzzShaper
	cache  map[string]float64
}

// NewFaceMeasurer parses a font file.
func NewFaceMeasurer(data []byte) (*FaceMeasurer, error) {
	face, err := gofont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &FaceMeasurer{face: face, cache: map[string]float64{}}, nil
}

// Advance returns the shaped width of s in points at size.
func (m *FaceMeasurer) Advance(s string, size float64) float64 {
	return m.em(s) * size / unitsPerEm
}

// em returns the advance of s in 1/1000 em, cached per string.
func (m *FaceMeasurer) em(s string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.cache[s]; ok {
		return v
	}
	runes := []rune(s)
	if len(runes) == 0 {
		return 0
	}
	script := DetectScript(runes)
	out := m.shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: scriptDirection(script),
		Face:      m.face,
		Size:      fixed.Int26_6(unitsPerEm * 64),
		Script:    script,
		Language:  language.DefaultLanguage(),
	})
	var adv float64
	for _, g := range out.Glyphs {
		adv += float64(g.XAdvance) / 64.0
	}
	m.cache[s] = adv
	return adv
}

func scriptDirection(script language.Script) di.Direction {
	switch script {
	case language.Arabic, language.Hebrew, language.Syriac, language.Thaana, language.Nko:
		return di.DirectionRTL
	default:
		return di.DirectionLTR
	}
}

// DetectScript returns the most frequent script in runes, Latin when none is known.
func DetectScript(runes []rune) language.Script {
	counts := make(map[language.Script]int)
	maxCount := 0
	best := language.Latin

	for _, r := range runes {
		script := scriptFromRune(r)
		if script == language.Unknown {
			continue
		}
		counts[script]++
		if counts[script] > maxCount {
			maxCount = counts[script]
			best = script
		}
	}
	return best
}

var scriptTables = []struct {
	table  *unicode.RangeTable
	script language.Script
}{
	{unicode.Arabic, language.Arabic},
	{unicode.Hebrew, language.Hebrew},
	{unicode.Latin, language.Latin},
	{unicode.Cyrillic, language.Cyrillic},
	{unicode.Greek, language.Greek},
	{unicode.Thai, language.Thai},
	{unicode.Devanagari, language.Devanagari},
	{unicode.Han, language.Han},
	{unicode.Hiragana, language.Hiragana},
	{unicode.Katakana, language.Katakana},
	{unicode.Hangul, language.Hangul},
}

func scriptFromRune(r rune) language.Script {
	for _, s := range scriptTables {
		if unicode.Is(s.table, r) {
			return s.script
		}
	}
	return language.Unknown
}
