package builder

import (
	"github.com/wudi/pptxkit/units"
)

// MasterTemplate is reusable slide furniture applied when a slide is added.
// Order of application: images, background, shapes, slide number.
type MasterTemplate struct {
	Title       string
	Background  *MasterBackground
	Images      []MasterImage
	Shapes      []MasterShape
	SlideNumber bool
	// Margin is used by table auto-paging, in inches: one value or
	// top/right/bottom/left.
	Margin []float64
}

// MasterBackground is a solid color or an image.
type MasterBackground struct {
	Color string
	Path  string
	Data  []byte
}

// MasterImage is placed on every slide using the master. Positions are in inches.
type MasterImage struct {
	Path       string
	Data       []byte
	X, Y, W, H float64
}

// MasterShapeKind selects what a master shape draws.
type MasterShapeKind string

const (
	MasterText MasterShapeKind = "text"
	MasterLine MasterShapeKind = "line"
)

// MasterShape is a text box or a line drawn on every slide.
type MasterShape struct {
	Kind    MasterShapeKind
	Text    string
	Options TextOptions
}

func (m *MasterTemplate) apply(sb *slideBuilderImpl) {
	for _, img := range m.Images {
		sb.AddImage(img.Path, units.In(img.X), units.In(img.Y), units.In(img.W), units.In(img.H), img.Data)
	}
	if bg := m.Background; bg != nil {
		switch {
		case bg.Path != "" || len(bg.Data) > 0:
			sb.SetBackgroundImage(bg.Path, bg.Data)
		case bg.Color != "":
			sb.SetBackground(bg.Color)
		}
	}
	for _, sh := range m.Shapes {
		switch sh.Kind {
		case MasterLine:
			sb.AddShape("line", sh.Options.ShapeOptions)
		default:
			sb.AddText(sh.Text, sh.Options)
		}
	}
	if m.SlideNumber {
		sb.SetSlideNumber(true)
	}
}

// Margins returns the paging margins in inches, top/right/bottom/left,
// defaulting to 0.5in on every side.
func (m *MasterTemplate) Margins() [4]float64 {
	out := [4]float64{0.5, 0.5, 0.5, 0.5}
	if m == nil {
		return out
	}
	switch len(m.Margin) {
	case 1:
		return [4]float64{m.Margin[0], m.Margin[0], m.Margin[0], m.Margin[0]}
	case 4:
		copy(out[:], m.Margin)
	}
	return out
}
