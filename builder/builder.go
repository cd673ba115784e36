package builder

import (
	"errors"
	"fmt"
	"time"

	"github.com/wudi/pptxkit/ir/semantic"
	"github.com/wudi/pptxkit/observability"
	"github.com/wudi/pptxkit/units"
)

// PresentationBuilder provides a fluent API for deck construction.
type PresentationBuilder interface {
	SetTitle(title string) PresentationBuilder
	SetAuthor(author string) PresentationBuilder
	SetCompany(company string) PresentationBuilder
	SetSubject(subject string) PresentationBuilder
	SetRevision(rev int) PresentationBuilder
	// SetLayout selects a preset by name. Unknown names keep the current layout.
	SetLayout(name string) PresentationBuilder
	Layout() units.Layout
	AddSlide(master *MasterTemplate) SlideBuilder
	SlideCount() int
	Logger() observability.Logger
	// Build returns the presentation together with every construction error
	// recorded so far. The presentation is usable even when err is non-nil:
	// rejected tables are simply absent from it.
	Build() (*semantic.Presentation, error)
}

// SlideBuilder provides a fluent API for one slide. Invalid input is logged
// and ignored; the same builder is returned so chains stay intact.
type SlideBuilder interface {
	AddText(text string, opts TextOptions) SlideBuilder
	AddTextRuns(runs []TextRun, opts TextOptions) SlideBuilder
	AddShape(shape string, opts ShapeOptions) SlideBuilder
	AddImage(path string, x, y, w, h units.Measure, data []byte) SlideBuilder
	AddTable(rows [][]TableCell, frame TableFrame, opts TableOptions) SlideBuilder
	SetBackground(color string) SlideBuilder
	SetBackgroundImage(path string, data []byte) SlideBuilder
	SetSlideNumber(on bool) SlideBuilder
	PageNumber() int
	Slide() *semantic.Slide
	// Err reports the first construction error recorded on this slide.
	Err() error
	Finish() PresentationBuilder
}

// ShapeOptions configures geometry and styling shared by shapes and text.
type ShapeOptions struct {
	X, Y units.Measure // default 0
	W    units.Measure // default 10in
	H    units.Measure // default 0; text without an outline gets 0.3in

	FlipH  bool
	FlipV  bool
	Rotate float64 // degrees

	Fill         string // hex RGB; no fill when empty
	Transparency int    // fill transparency in percent
	Line         string // outline color; no outline when empty
	LineSize     float64
	LineHead     string // arrow type, e.g. triangle
	LineTail     string
	Shadows      []semantic.Shadow
}

// TextOptions configures a text shape. Run formatting fields apply to every
// run that does not carry its own options.
type TextOptions struct {
	ShapeOptions

	Shape     string // preset geometry, rect when empty
	IsTextBox bool

	Align       string // left|center|right|justify, prefix and case insensitive
	VAlign      string // top|middle|bottom, default middle
	IndentLevel int

	Bold        bool
	Underline   bool
	FontSize    float64 // points
	FontFace    string
	Color       string
	CharSpacing float64 // points

	Inset      *float64  // inches, all sides
	Margin     []float64 // points, one value or top/right/bottom/left
	AutoFit    bool      // resize shape to fit text
	ShrinkText bool      // shrink text on overflow
}

// TextRun is one run of AddTextRuns. A run with Field set renders a field
// (slidenum, datetime, datetime1..datetime13) instead of Text.
type TextRun struct {
	Text    string
	Field   string
	Options *RunOptions
}

// RunOptions overrides the shape-level run formatting for one run.
type RunOptions struct {
	Bold        bool
	Underline   bool
	FontSize    float64
	FontFace    string
	Color       string // falls back to the shape color
	CharSpacing float64
	BreakLine   bool // start a new paragraph after this run
}

// Option configures a PresentationBuilder.
type Option func(*builderImpl)

func WithLogger(l observability.Logger) Option {
	return func(b *builderImpl) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithLayout selects the initial layout preset.
func WithLayout(name string) Option { return func(b *builderImpl) { b.SetLayout(name) } }

func WithTitle(title string) Option     { return func(b *builderImpl) { b.title = title } }
func WithAuthor(author string) Option   { return func(b *builderImpl) { b.author = author } }
func WithCompany(company string) Option { return func(b *builderImpl) { b.company = company } }

// WithClock overrides the time source used for document dates and date fields.
func WithClock(now func() time.Time) Option {
	return func(b *builderImpl) {
		if now != nil {
			b.now = now
		}
	}
}

const (
	defaultTitle   = "Presentation"
	defaultAuthor  = "pptxkit"
	defaultCompany = "pptxkit"
)

type builderImpl struct {
	title    string
	author   string
	company  string
	subject  string
	revision int
	layout   units.Layout
	slides   []*semantic.Slide
	media    int
	logger   observability.Logger
	now      func() time.Time
	errs     []error
}

type slideBuilderImpl struct {
	parent *builderImpl
	slide  *semantic.Slide
	err    error
}

// New constructs a PresentationBuilder on the default 16:9 layout.
func New(opts ...Option) PresentationBuilder {
	b := &builderImpl{
		title:   defaultTitle,
		author:  defaultAuthor,
		company: defaultCompany,
		layout:  units.DefaultLayout(),
		logger:  observability.NopLogger{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *builderImpl) SetTitle(title string) PresentationBuilder {
	b.title = title
	return b
}

func (b *builderImpl) SetAuthor(author string) PresentationBuilder {
	b.author = author
	return b
}

func (b *builderImpl) SetCompany(company string) PresentationBuilder {
	b.company = company
	return b
}

func (b *builderImpl) SetSubject(subject string) PresentationBuilder {
	b.subject = subject
	return b
}

func (b *builderImpl) SetRevision(rev int) PresentationBuilder {
	b.revision = rev
	return b
}

func (b *builderImpl) SetLayout(name string) PresentationBuilder {
	l, ok := units.LayoutByName(name)
	if !ok {
		b.logger.Warn("unknown layout, keeping current", observability.String("layout", name), observability.String("current", b.layout.Name))
		return b
	}
	b.layout = l
	return b
}

func (b *builderImpl) Layout() units.Layout { return b.layout }

func (b *builderImpl) SlideCount() int { return len(b.slides) }

func (b *builderImpl) Logger() observability.Logger { return b.logger }

func (b *builderImpl) AddSlide(master *MasterTemplate) SlideBuilder {
	n := len(b.slides) + 1
	s := &semantic.Slide{Index: n, Name: fmt.Sprintf("Slide %d", n)}
	b.slides = append(b.slides, s)
	sb := &slideBuilderImpl{parent: b, slide: s}
	if master != nil {
		master.apply(sb)
	}
	return sb
}

func (b *builderImpl) Build() (*semantic.Presentation, error) {
	now := b.now()
	pres := &semantic.Presentation{
		Title:    b.title,
		Author:   b.author,
		Company:  b.company,
		Subject:  b.subject,
		Revision: b.revision,
		Layout:   b.layout,
		Created:  now,
		Modified: now,
		Slides:   b.slides,
	}
	return pres, errors.Join(b.errs...)
}

func (b *builderImpl) recordErr(err error) {
	b.errs = append(b.errs, err)
}

// nextMedia returns the presentation-wide media number for a new relationship.
func (b *builderImpl) nextMedia() int {
	b.media++
	return b.media
}

func (p *slideBuilderImpl) PageNumber() int { return p.slide.Index }

func (p *slideBuilderImpl) Slide() *semantic.Slide { return p.slide }

func (p *slideBuilderImpl) Err() error { return p.err }

func (p *slideBuilderImpl) Finish() PresentationBuilder { return p.parent }

func (p *slideBuilderImpl) SetSlideNumber(on bool) SlideBuilder {
	p.slide.SlideNumber = on
	return p
}

func (p *slideBuilderImpl) SetBackground(color string) SlideBuilder {
	c, ok := normalizeColor(color)
	if !ok {
		p.warn("invalid background color", observability.String("color", color))
		return p
	}
	p.slide.Background = &semantic.Background{Color: c}
	return p
}

func (p *slideBuilderImpl) SetBackgroundImage(path string, data []byte) SlideBuilder {
	if !hasExtension(path) && len(data) == 0 {
		p.warn("background image needs an extension", observability.String("path", path))
		return p
	}
	rel := p.addRel(path, backgroundExtension(path), data)
	p.slide.Background = &semantic.Background{Image: rel}
	return p
}

func (p *slideBuilderImpl) AddText(text string, opts TextOptions) SlideBuilder {
	return p.AddTextRuns([]TextRun{{Text: text}}, opts)
}

func (p *slideBuilderImpl) AddTextRuns(runs []TextRun, opts TextOptions) SlideBuilder {
	layout := p.parent.layout
	frame := resolveFrame(opts.ShapeOptions, layout)
	if opts.Line == "" && frame.CY == 0 {
		frame.CY = units.ToEMU(0.3)
	}
	style := resolveStyle(opts.ShapeOptions)
	style.Preset = presetGeometry(opts.Shape)

	body := semantic.TextBody{
		Align:       normalizeAlign(opts.Align),
		VAlign:      normalizeVAlign(opts.VAlign, semantic.VAlignMiddle),
		IndentLevel: opts.IndentLevel,
		AutoFit:     opts.AutoFit,
		ShrinkText:  opts.ShrinkText,
		FontSize:    opts.FontSize,
	}
	switch {
	case len(opts.Margin) > 0:
		m, ok := marginsFrom(opts.Margin)
		if !ok {
			p.warn("text margin needs 1 or 4 values", observability.Int("values", len(opts.Margin)))
			break
		}
		body.Insets = &semantic.Insets{
			Top:    units.Points(m.Top),
			Right:  units.Points(m.Right),
			Bottom: units.Points(m.Bottom),
			Left:   units.Points(m.Left),
		}
	case opts.Inset != nil:
		in := units.ToEMU(*opts.Inset)
		body.Insets = &semantic.Insets{Top: in, Right: in, Bottom: in, Left: in}
	}

	base := semantic.RunFormat{
		Bold:        opts.Bold,
		Underline:   opts.Underline,
		FontSize:    opts.FontSize,
		FontFace:    opts.FontFace,
		Color:       colorOrEmpty(opts.Color),
		CharSpacing: opts.CharSpacing,
	}
	for _, r := range runs {
		run := semantic.TextRun{Text: r.Text, Format: base}
		if o := r.Options; o != nil {
			run.Format = semantic.RunFormat{
				Bold:        o.Bold,
				Underline:   o.Underline,
				FontSize:    o.FontSize,
				FontFace:    o.FontFace,
				Color:       colorOrEmpty(o.Color),
				CharSpacing: o.CharSpacing,
			}
			if run.Format.Color == "" {
				run.Format.Color = base.Color
			}
			run.BreakLine = o.BreakLine
		}
		if r.Field != "" {
			run.Field, run.FieldID, run.Text = p.parent.field(r.Field, r.Text)
		}
		body.Runs = append(body.Runs, run)
	}

	p.slide.Shapes = append(p.slide.Shapes, &semantic.TextShape{
		Frame:   frame,
		Style:   style,
		Body:    body,
		TextBox: opts.IsTextBox,
	})
	return p
}

func (p *slideBuilderImpl) AddShape(shape string, opts ShapeOptions) SlideBuilder {
	style := resolveStyle(opts)
	style.Preset = presetGeometry(shape)
	p.slide.Shapes = append(p.slide.Shapes, &semantic.AutoShape{
		Frame: resolveFrame(opts, p.parent.layout),
		Style: style,
	})
	return p
}

func (p *slideBuilderImpl) AddTable(rows [][]TableCell, frame TableFrame, opts TableOptions) SlideBuilder {
	if len(rows) == 0 || len(rows[0]) == 0 {
		p.warn("addTable: rows expected")
		return p
	}
	t, err := buildTable(rows, frame, opts, p.parent.layout, p.parent.logger.With(observability.Int("slide", p.slide.Index)))
	if err != nil {
		err = fmt.Errorf("slide %d: %w", p.slide.Index, err)
		p.parent.logger.Error("table rejected", observability.Error("err", err))
		p.fail(err)
		return p
	}
	p.slide.Shapes = append(p.slide.Shapes, t)
	return p
}

func (p *slideBuilderImpl) warn(msg string, fields ...observability.Field) {
	p.parent.logger.Warn(msg, append(fields, observability.Int("slide", p.slide.Index))...)
}

func (p *slideBuilderImpl) fail(err error) {
	if p.err == nil {
		p.err = err
	}
	p.parent.recordErr(err)
}

func resolveFrame(o ShapeOptions, l units.Layout) semantic.Frame {
	return semantic.Frame{
		X:      o.X.ResolveOr(units.AxisX, l, 0),
		Y:      o.Y.ResolveOr(units.AxisY, l, 0),
		CX:     o.W.ResolveOr(units.AxisX, l, units.ToEMU(10)),
		CY:     o.H.ResolveOr(units.AxisY, l, 0),
		FlipH:  o.FlipH,
		FlipV:  o.FlipV,
		Rotate: o.Rotate,
	}
}

func resolveStyle(o ShapeOptions) semantic.ShapeStyle {
	return semantic.ShapeStyle{
		Fill:         colorOrEmpty(o.Fill),
		Transparency: clampPercent(o.Transparency),
		Line:         colorOrEmpty(o.Line),
		LineSize:     o.LineSize,
		LineHead:     o.LineHead,
		LineTail:     o.LineTail,
		Shadows:      o.Shadows,
	}
}

func clampPercent(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
