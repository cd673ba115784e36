package fonts_test

import (
	"testing"

	"github.com/go-text/typesetting/language"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/wudi/pptxkit/fonts"
)

func TestDetectScript(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect language.Script
	}{
		{"Latin", "Hello World", language.Latin},
		{"Arabic", "مرحبا بالعالم", language.Arabic},
		{"Cyrillic", "Привет мир", language.Cyrillic},
		{"Mixed, Latin dominant", "Hello World مرحبا", language.Latin},
		{"Han", "你好世界", language.Han},
		{"Hangul", "안녕하세요", language.Hangul},
		{"Digits only", "12345", language.Latin},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := fonts.DetectScript([]rune(tc.input)); got != tc.expect {
				t.Fatalf("DetectScript(%q) = %v, want %v", tc.input, got, tc.expect)
			}
		})
	}
}

func TestFaceMeasurerMonospace(t *testing.T) {
	m, err := fonts.NewFaceMeasurer(gomono.TTF)
	if err != nil {
		t.Fatalf("load face: %v", err)
	}
	one := m.Advance("a", 10)
	if one <= 0 {
		t.Fatalf("advance of one glyph = %v", one)
	}
	if got := m.Advance("abcd", 10); got < 3.99*one || got > 4.01*one {
		t.Fatalf("monospace advance of 4 glyphs = %v, want %v", got, 4*one)
	}
	if got := m.Advance("abcd", 20); got < 7.99*one || got > 8.01*one {
		t.Fatalf("advance should scale with size, got %v", got)
	}
}

func TestFaceMeasurerProportional(t *testing.T) {
	m, err := fonts.NewFaceMeasurer(goregular.TTF)
	if err != nil {
		t.Fatalf("load face: %v", err)
	}
	if m.Advance("iiii", 12) >= m.Advance("WWWW", 12) {
		t.Fatalf("narrow glyphs should be shorter than wide ones")
	}
	if m.Advance("", 12) != 0 {
		t.Fatalf("empty string should have no advance")
	}
}

func TestNewFaceMeasurerRejectsGarbage(t *testing.T) {
	if _, err := fonts.NewFaceMeasurer([]byte("not a font")); err == nil {
		t.Fatalf("expected parse error")
	}
}
