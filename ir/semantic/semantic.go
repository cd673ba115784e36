package semantic

import (
	"fmt"
	"time"

	"github.com/wudi/pptxkit/units"
)

// SlideNumberFieldID is the well-known field id shared by every slide number field.
const SlideNumberFieldID = "{F7021451-1387-4CA6-816F-3879F97B5CBC}"

// Presentation is the semantic representation of a deck. It owns its slides.
type Presentation struct {
	Title    string
	Author   string
	Company  string
	Subject  string
	Revision int
	Layout   units.Layout
	Created  time.Time
	Modified time.Time
	Slides   []*Slide
}

// Relationships returns every slide relationship in slide order.
func (p *Presentation) Relationships() []*Relationship {
	var out []*Relationship
	for _, s := range p.Slides {
		out = append(out, s.Rels...)
	}
	return out
}

// Pending returns the relationships whose payload has not been loaded yet.
func (p *Presentation) Pending() []*Relationship {
	var out []*Relationship
	for _, r := range p.Relationships() {
		if !r.Resolved() {
			out = append(out, r)
		}
	}
	return out
}

// MediaCount is the number of media entries the package will carry.
func (p *Presentation) MediaCount() int {
	n := 0
	for _, s := range p.Slides {
		n += len(s.Rels)
	}
	return n
}

// ApplyNaturalSizes sizes every auto-sized picture from its loaded payload
// and returns how many frames changed.
func (p *Presentation) ApplyNaturalSizes() int {
	n := 0
	for _, s := range p.Slides {
		for _, sh := range s.Shapes {
			pic, ok := sh.(*Picture)
			if !ok || !pic.AutoSize || pic.Rel == nil || pic.Rel.Width <= 0 || pic.Rel.Height <= 0 {
				continue
			}
			pic.Frame.CX = units.Pixels(pic.Rel.Width)
			pic.Frame.CY = units.Pixels(pic.Rel.Height)
			pic.AutoSize = false
			n++
		}
	}
	return n
}

// Slide models a single slide.
type Slide struct {
	Index       int    // 1-based, assigned on append
	Name        string // cSld name
	Background  *Background
	SlideNumber bool
	Shapes      []Shape // paint order
	Rels        []*Relationship
}

// NextRelID is the id the next relationship appended to the slide receives.
// rId1 is reserved for the slide layout.
func (s *Slide) NextRelID() int { return len(s.Rels) + 2 }

// Tables returns the table shapes on the slide in paint order.
func (s *Slide) Tables() []*Table {
	var out []*Table
	for _, sh := range s.Shapes {
		if t, ok := sh.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

// Background is either a solid color or an image relationship.
type Background struct {
	Color string // hex RGB
	Image *Relationship
}

// Relationship is an image reference scoped to one slide.
type Relationship struct {
	ID         int    // unique within the slide's rels part
	MediaIndex int    // presentation-wide media number
	Extension  string // png, jpeg
	Path       string // source location handed to the image loader
	Inline     []byte // caller-supplied bytes, decoded instead of loading Path
	Data       []byte // encoded payload, nil until resolved
	Width      int    // natural size in pixels, known after resolution
	Height     int
}

// RID is the relationship id as written in markup, e.g. rId2.
func (r *Relationship) RID() string { return fmt.Sprintf("rId%d", r.ID) }

// Target is the rels target relative to the slide part.
func (r *Relationship) Target() string {
	return fmt.Sprintf("../media/image%d.%s", r.MediaIndex, r.Extension)
}

// PartName is the package path of the media entry.
func (r *Relationship) PartName() string {
	return fmt.Sprintf("ppt/media/image%d.%s", r.MediaIndex, r.Extension)
}

// ContentType is the MIME type of the payload.
func (r *Relationship) ContentType() string { return "image/" + r.Extension }

// Resolved reports whether the payload is present.
func (r *Relationship) Resolved() bool { return len(r.Data) > 0 }

// ShapeKind tags the shape variants.
type ShapeKind string

const (
	KindText      ShapeKind = "text"
	KindAutoShape ShapeKind = "shape"
	KindPicture   ShapeKind = "image"
	KindTable     ShapeKind = "table"
)

// Shape is one descriptor in a slide's shape tree.
type Shape interface {
	shape()
	Kind() ShapeKind
}

// Frame is a shape's position and size in EMU.
type Frame struct {
	X, Y   int64
	CX, CY int64
	FlipH  bool
	FlipV  bool
	Rotate float64 // degrees
}

// Rot converts Rotate to the xfrm rot attribute (60000ths of a degree).
// Angles over 360 wrap once.
func (f Frame) Rot() int64 {
	deg := f.Rotate
	if deg > 360 {
		deg -= 360
	}
	return int64(deg * 60000)
}

// Shadow is an outer or inner shadow effect.
type Shadow struct {
	Inner   bool
	Blur    float64 // pt
	Offset  float64 // pt
	Angle   float64 // degrees
	Color   string
	Opacity float64 // 0..1
}

// ShapeStyle holds geometry, fill and outline.
type ShapeStyle struct {
	Preset       string // preset geometry, rect when empty
	Fill         string // hex RGB, noFill when empty
	Transparency int    // percent
	Line         string // outline color, no outline when empty
	LineSize     float64
	LineHead     string // arrow head type
	LineTail     string
	Shadows      []Shadow
}

// HAlign is paragraph alignment.
type HAlign string

const (
	AlignDefault HAlign = ""
	AlignLeft    HAlign = "left"
	AlignCenter  HAlign = "center"
	AlignRight   HAlign = "right"
	AlignJustify HAlign = "justify"
)

// VAlign is vertical anchoring of a text body or cell.
type VAlign string

const (
	VAlignDefault VAlign = ""
	VAlignTop     VAlign = "top"
	VAlignMiddle  VAlign = "middle"
	VAlignBottom  VAlign = "bottom"
)

// RunFormat is character formatting.
type RunFormat struct {
	Bold        bool
	Underline   bool
	FontSize    float64 // pt, inherited when zero
	FontFace    string
	Color       string
	CharSpacing float64 // pt
}

// TextRun is a span of text, or a field when Field is set.
type TextRun struct {
	Text      string
	Format    RunFormat
	BreakLine bool   // close the paragraph after this run
	Field     string // slidenum, datetime, ...
	FieldID   string
}

// Insets are text body insets in EMU.
type Insets struct {
	Top, Right, Bottom, Left int64
}

// TextBody is the text content of a shape.
type TextBody struct {
	Runs        []TextRun
	Align       HAlign
	VAlign      VAlign
	IndentLevel int
	Insets      *Insets
	AutoFit     bool
	ShrinkText  bool
	FontSize    float64 // carried to endParaRPr
}

// TextShape is a text box or a text-bearing shape.
type TextShape struct {
	Frame   Frame
	Style   ShapeStyle
	Body    TextBody
	TextBox bool
}

func (*TextShape) shape()          {}
func (*TextShape) Kind() ShapeKind { return KindText }

// AutoShape is a preset geometry without text.
type AutoShape struct {
	Frame Frame
	Style ShapeStyle
}

func (*AutoShape) shape()          {}
func (*AutoShape) Kind() ShapeKind { return KindAutoShape }

// Picture is an image placed on a slide.
type Picture struct {
	Frame    Frame
	Rel      *Relationship
	Descr    string
	AutoSize bool // take the natural size once the payload is loaded
}

func (*Picture) shape()          {}
func (*Picture) Kind() ShapeKind { return KindPicture }

// Table is a materialized grid: placeholder cells for merges are present.
type Table struct {
	Frame Frame
	ColW  []int64
	RowH  []int64
	Rows  [][]Cell
}

func (*Table) shape()          {}
func (*Table) Kind() ShapeKind { return KindTable }

// Merge marks a placeholder cell absorbed by a span.
type Merge uint8

const (
	MergeNone       Merge = iota
	MergeHorizontal       // merged into the cell on the left
	MergeVertical         // merged from the cell above
)

// Cell is one table cell.
type Cell struct {
	Text    string
	Format  CellFormat
	ColSpan int
	RowSpan int
	Merge   Merge
}

// Placeholder reports whether the cell stands in for a merged position.
func (c Cell) Placeholder() bool { return c.Merge != MergeNone }

// Margins are cell margins in points.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// CellFormat is per-cell formatting, falling back to table defaults.
type CellFormat struct {
	Align     HAlign
	VAlign    VAlign
	Bold      bool
	Underline bool
	FontFace  string
	FontSize  float64
	Color     string
	Fill      string
	Margin    *Margins
	Border    *Border
}

// BorderLine is one border side.
type BorderLine struct {
	Pt    *float64 // width in points, 1pt when nil
	Color string   // 666666 when empty
	Dash  bool
}

// Border describes cell borders in one of three forms, checked in order:
// a uniform color, per-side lines (top, right, bottom, left; nil means no
// line) or one line for all sides.
type Border struct {
	Color string
	Sides *[4]*BorderLine
	Line  *BorderLine
}
