package extensions

import (
	"context"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/wudi/pptxkit/ir/semantic"
	"github.com/wudi/pptxkit/units"
)

// BasicInspector counts what a presentation holds.
type BasicInspector struct{}

func (i *BasicInspector) Name() string  { return "BasicInspector" }
func (i *BasicInspector) Phase() Phase  { return PhaseInspect }
func (i *BasicInspector) Priority() int { return 100 }
func (i *BasicInspector) Execute(ctx context.Context, pres *semantic.Presentation) error {
	_, err := i.Inspect(ctx, pres)
	return err
}

func (i *BasicInspector) Inspect(_ context.Context, pres *semantic.Presentation) (*InspectionReport, error) {
	report := &InspectionReport{
		Title:      pres.Title,
		Layout:     pres.Layout.Name,
		SlideCount: len(pres.Slides),
		MediaCount: pres.MediaCount(),
	}
	for _, s := range pres.Slides {
		if s.Background != nil && s.Background.Image != nil {
			report.ImageCount++
		}
		report.ShapeCount += len(s.Shapes)
		for _, sh := range s.Shapes {
			switch v := sh.(type) {
			case *semantic.TextShape:
				report.TextRuns += len(v.Body.Runs)
			case *semantic.Picture:
				report.ImageCount++
			case *semantic.Table:
				report.TableCount++
				for _, row := range v.Rows {
					report.CellCount += len(row)
				}
			}
		}
	}
	return report, nil
}

// TextSanitizer removes characters XML 1.0 cannot carry from every text the
// writer emits. With Normalize set, text is also brought to NFC.
type TextSanitizer struct {
	Normalize bool
}

func (s *TextSanitizer) Name() string  { return "TextSanitizer" }
func (s *TextSanitizer) Phase() Phase  { return PhaseSanitize }
func (s *TextSanitizer) Priority() int { return 100 }
func (s *TextSanitizer) Execute(ctx context.Context, pres *semantic.Presentation) error {
	_, err := s.Sanitize(ctx, pres)
	return err
}

// xmlChar reports whether r may appear in an XML 1.0 document.
func xmlChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r < 0x20:
		return false
	case r >= 0xD800 && r <= 0xDFFF:
		return false
	case r == 0xFFFE, r == 0xFFFF:
		return false
	}
	return r <= utf8.MaxRune
}

func (s *TextSanitizer) transformer() transform.Transformer {
	strip := runes.Remove(runes.Predicate(func(r rune) bool { return !xmlChar(r) }))
	if s.Normalize {
		return transform.Chain(runes.ReplaceIllFormed(), strip, norm.NFC)
	}
	return transform.Chain(runes.ReplaceIllFormed(), strip)
}

func (s *TextSanitizer) Sanitize(ctx context.Context, pres *semantic.Presentation) (*SanitizationReport, error) {
	report := &SanitizationReport{}
	t := s.transformer()
	clean := func(field *string, slide int, what string) error {
		out, _, err := transform.String(t, *field)
		if err != nil {
			return fmt.Errorf("%s: %w", what, err)
		}
		if out != *field {
			*field = out
			report.ItemsFixed++
			report.Actions = append(report.Actions, SanitizationAction{
				Type:        "CleanText",
				Description: "Rewrote " + what,
				Slide:       slide,
			})
		}
		return nil
	}

	for _, f := range []struct {
		p    *string
		name string
	}{{&pres.Title, "title"}, {&pres.Author, "author"}, {&pres.Company, "company"}, {&pres.Subject, "subject"}} {
		if err := clean(f.p, 0, f.name); err != nil {
			return nil, err
		}
	}

	for _, sl := range pres.Slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, sh := range sl.Shapes {
			switch v := sh.(type) {
			case *semantic.TextShape:
				for i := range v.Body.Runs {
					if err := clean(&v.Body.Runs[i].Text, sl.Index, "text run"); err != nil {
						return nil, err
					}
				}
			case *semantic.Picture:
				if err := clean(&v.Descr, sl.Index, "image description"); err != nil {
					return nil, err
				}
			case *semantic.Table:
				for r := range v.Rows {
					for c := range v.Rows[r] {
						if err := clean(&v.Rows[r][c].Text, sl.Index, fmt.Sprintf("cell %d,%d", r, c)); err != nil {
							return nil, err
						}
					}
				}
			}
		}
	}
	return report, nil
}

// BoundsValidator flags shapes that cannot render: negative sizes are
// errors, frames reaching past the slide edge are warnings.
type BoundsValidator struct{}

func (v *BoundsValidator) Name() string  { return "BoundsValidator" }
func (v *BoundsValidator) Phase() Phase  { return PhaseValidate }
func (v *BoundsValidator) Priority() int { return 100 }
func (v *BoundsValidator) Execute(ctx context.Context, pres *semantic.Presentation) error {
	_, err := v.Validate(ctx, pres)
	return err
}

func frameOf(sh semantic.Shape) (semantic.Frame, bool) {
	switch v := sh.(type) {
	case *semantic.TextShape:
		return v.Frame, true
	case *semantic.AutoShape:
		return v.Frame, true
	case *semantic.Picture:
		return v.Frame, true
	case *semantic.Table:
		return v.Frame, true
	}
	return semantic.Frame{}, false
}

func (v *BoundsValidator) Validate(_ context.Context, pres *semantic.Presentation) (*ValidationReport, error) {
	report := &ValidationReport{Valid: true}
	layout := pres.Layout
	if layout.Width == 0 || layout.Height == 0 {
		layout = units.DefaultLayout()
	}
	for _, sl := range pres.Slides {
		for i, sh := range sl.Shapes {
			f, ok := frameOf(sh)
			if !ok {
				continue
			}
			loc := fmt.Sprintf("slide %d shape %d (%s)", sl.Index, i+1, sh.Kind())
			if f.CX < 0 || f.CY < 0 {
				report.Valid = false
				report.Errors = append(report.Errors, ValidationError{
					Code:     "BND001",
					Message:  fmt.Sprintf("negative size %dx%d", f.CX, f.CY),
					Location: loc,
				})
				continue
			}
			if f.X < 0 || f.Y < 0 || f.X+f.CX > layout.Width || f.Y+f.CY > layout.Height {
				report.Warnings = append(report.Warnings, ValidationWarning{
					Code:     "BND002",
					Message:  "shape extends past the slide",
					Location: loc,
				})
			}
		}
	}
	return report, nil
}

// Standard returns a hub with the inspector, sanitizer and bounds validator
// registered.
func Standard(h *HubImpl) *HubImpl {
	_ = h.Register(&BasicInspector{})
	_ = h.Register(&TextSanitizer{})
	_ = h.Register(&BoundsValidator{})
	return h
}
