package layout

import (
	"strings"

	"github.com/wudi/pptxkit/fonts"
)

// LineScanner splits cell text into wrapped lines, one per Scan call.
// Words are packed greedily; embedded newlines always end a line. The
// concatenation of every line equals the trimmed input, so wrapped text can
// be reassembled across pages. A scanner cannot be restarted.
type LineScanner struct {
	m      fonts.Measurer
	size   float64
	width  float64
	src    []string // source lines still to scan
	words  []string // words left on the current source line
	cur    string
	line   string
	queued []string
}

// NewLineScanner wraps text at size points into widthPt. A nil measurer
// uses the empirical character ratio.
func NewLineScanner(text string, size, widthPt float64, m fonts.Measurer) *LineScanner {
	if m == nil {
		m = fonts.NewRatioMeasurer()
	}
	return &LineScanner{
		m:     m,
		size:  size,
		width: widthPt,
		src:   strings.Split(strings.TrimSpace(text), "\n"),
	}
}

// Scan advances to the next line.
func (s *LineScanner) Scan() bool {
	for len(s.queued) == 0 {
		if !s.fill() {
			return false
		}
	}
	s.line, s.queued = s.queued[0], s.queued[1:]
	return true
}

// Line returns the line produced by the last Scan.
func (s *LineScanner) Line() string { return s.line }

// fill queues at least one line, or reports that input is exhausted.
func (s *LineScanner) fill() bool {
	if s.words == nil {
		if len(s.src) == 0 {
			return false
		}
		s.words = strings.Split(s.src[0], " ")
		s.src = s.src[1:]
	}
	for len(s.words) > 0 {
		w := s.words[0]
		s.words = s.words[1:]
		if s.cur == "" || s.fits(s.cur+w+" ") {
			s.cur += w + " "
			continue
		}
		s.queued = append(s.queued, s.cur)
		s.cur = w + " "
		return true
	}
	// Source line exhausted: drop the separator added after its last word.
	last := strings.TrimSuffix(s.cur, " ")
	if len(s.src) > 0 {
		last += "\n"
	}
	s.queued = append(s.queued, last)
	s.cur = ""
	s.words = nil
	return true
}

func (s *LineScanner) fits(line string) bool {
	return s.m.Advance(line, s.size) < s.width
}

// Lines drains a scanner over text.
func Lines(text string, size, widthPt float64, m fonts.Measurer) []string {
	sc := NewLineScanner(text, size, widthPt, m)
	var out []string
	for sc.Scan() {
		out = append(out, sc.Line())
	}
	return out
}
