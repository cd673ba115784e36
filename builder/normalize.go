package builder

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wudi/pptxkit/ir/semantic"
	"github.com/wudi/pptxkit/observability"
)

// normalizeAlign accepts any casing and prefix of the alignment names
// ("c", "Center", "mid" all mean center).
func normalizeAlign(s string) semantic.HAlign {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return semantic.AlignDefault
	}
	switch s[0] {
	case 'c', 'm':
		return semantic.AlignCenter
	case 'l':
		return semantic.AlignLeft
	case 'r':
		return semantic.AlignRight
	case 'j':
		return semantic.AlignJustify
	}
	return semantic.AlignDefault
}

func normalizeVAlign(s string, def semantic.VAlign) semantic.VAlign {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def
	}
	switch s[0] {
	case 't':
		return semantic.VAlignTop
	case 'c', 'm':
		return semantic.VAlignMiddle
	case 'b':
		return semantic.VAlignBottom
	}
	return def
}

// normalizeColor accepts RRGGBB with or without a leading '#'.
func normalizeColor(s string) (string, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return "", false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return "", false
		}
	}
	return strings.ToUpper(s), true
}

func colorOrEmpty(s string) string {
	c, _ := normalizeColor(s)
	return c
}

// marginsFrom expands one value to all sides or takes four as top, right,
// bottom, left.
func marginsFrom(v []float64) (semantic.Margins, bool) {
	switch len(v) {
	case 1:
		return semantic.Margins{Top: v[0], Right: v[0], Bottom: v[0], Left: v[0]}, true
	case 4:
		return semantic.Margins{Top: v[0], Right: v[1], Bottom: v[2], Left: v[3]}, true
	}
	return semantic.Margins{}, false
}

// Date field types accepted by AddTextRuns besides slidenum.
var dateFields = map[string]string{
	"datetime":   "1/2/2006",
	"datetime1":  "1/2/2006",
	"datetime2":  "Monday, January 2, 2006",
	"datetime3":  "2 January 2006",
	"datetime4":  "January 2, 2006",
	"datetime5":  "2-Jan-06",
	"datetime6":  "January 06",
	"datetime7":  "Jan-06",
	"datetime8":  "1/2/2006 3:04 PM",
	"datetime9":  "1/2/2006 3:04:05 PM",
	"datetime10": "15:04",
	"datetime11": "15:04:05",
	"datetime12": "3:04 PM",
	"datetime13": "3:04:05 PM",
}

// field returns the field type, its id and the placeholder text. Unknown
// types degrade to plain text.
func (b *builderImpl) field(kind, text string) (string, string, string) {
	kind = strings.ToLower(kind)
	if kind == "slidenum" {
		return kind, semantic.SlideNumberFieldID, text
	}
	layout, ok := dateFields[kind]
	if !ok {
		b.logger.Warn("unknown field type", observability.String("field", kind))
		return "", "", text
	}
	if text == "" {
		text = b.now().Format(layout)
	}
	return kind, fieldID(), text
}

func fieldID() string {
	return fmt.Sprintf("{%s}", strings.ToUpper(uuid.New().String()))
}
