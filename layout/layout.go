// Package layout turns structured content into slides: tables are
// paginated across as many slides as they need, markdown becomes text
// slides.
package layout

import (
	"errors"
	"math"
	"time"

	"github.com/wudi/pptxkit/builder"
	"github.com/wudi/pptxkit/fonts"
	"github.com/wudi/pptxkit/observability"
	"github.com/wudi/pptxkit/units"
)

const defaultFontSize = 12

// Engine lays content out on slides of a presentation under construction.
type Engine struct {
	b builder.PresentationBuilder

	// Configuration
	DefaultFontSize float64
	Margins         Margins
	HeaderRepeat    bool
	Measurer        fonts.Measurer
	Master          *builder.MasterTemplate

	logger observability.Logger

	// Markdown state
	current builder.SlideBuilder
	cursorY int64
}

// Margins are slide margins in inches.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargins is half an inch on every side.
var DefaultMargins = Margins{Top: 0.5, Right: 0.5, Bottom: 0.5, Left: 0.5}

func marginsFromSlice(v []float64) (Margins, bool) {
	switch len(v) {
	case 1:
		return Margins{v[0], v[0], v[0], v[0]}, true
	case 4:
		return Margins{v[0], v[1], v[2], v[3]}, true
	}
	return Margins{}, false
}

// Option defines a configuration option for the Engine.
type Option func(*Engine)

// WithDefaultFontSize sets the font size of cells and text without one.
func WithDefaultFontSize(size float64) Option {
	return func(e *Engine) {
		e.DefaultFontSize = size
	}
}

// WithMargins sets the slide margins.
func WithMargins(m Margins) Option {
	return func(e *Engine) {
		e.Margins = m
	}
}

// WithHeaderRepeat repeats the first header row at the top of every page.
func WithHeaderRepeat(on bool) Option {
	return func(e *Engine) {
		e.HeaderRepeat = on
	}
}

// WithMeasurer replaces the empirical width estimate used for wrapping.
func WithMeasurer(m fonts.Measurer) Option {
	return func(e *Engine) {
		e.Measurer = m
	}
}

// WithMaster applies a master template to every slide the engine adds.
func WithMaster(m *builder.MasterTemplate) Option {
	return func(e *Engine) {
		e.Master = m
	}
}

func WithLogger(l observability.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a layout engine adding slides to b.
func NewEngine(b builder.PresentationBuilder, opts ...Option) *Engine {
	e := &Engine{
		b:               b,
		DefaultFontSize: defaultFontSize,
		Margins:         DefaultMargins,
		Measurer:        fonts.NewRatioMeasurer(),
		logger:          b.Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PageImage is an image added to every page of a paginated table.
type PageImage struct {
	Path       string
	Data       []byte
	X, Y, W, H units.Measure
}

// PageText is a text box added to every page.
type PageText struct {
	Text    string
	Options builder.TextOptions
}

// PageShape is a shape added to every page.
type PageShape struct {
	Shape   string
	Options builder.ShapeOptions
}

// PageTable is an extra table added to every page.
type PageTable struct {
	Rows    [][]builder.TableCell
	Frame   builder.TableFrame
	Options builder.TableOptions
}

// SlidesForTableOptions configures AddSlidesForTable.
type SlidesForTableOptions struct {
	// Margin in inches, one value or top/right/bottom/left. Takes precedence
	// over the master's margin, which takes precedence over the engine's.
	Margin          []float64
	Master          *builder.MasterTemplate
	AddHeaderToEach bool

	AddImage *PageImage
	AddText  *PageText
	AddShape *PageShape
	AddTable *PageTable
}

// ErrNoRows is returned by AddSlidesForTable for a table without rows.
var ErrNoRows = errors.New("table has no rows")

// AddSlidesForTable paginates t and adds one slide per page, each holding
// the page's rows at the top-left margin across the usable width.
func (e *Engine) AddSlidesForTable(t SourceTable, opts SlidesForTableOptions) ([]builder.SlideBuilder, error) {
	if len(t.Rows()) == 0 {
		e.logger.Warn("addSlidesForTable: no rows")
		return nil, ErrNoRows
	}
	start := time.Now()
	master := opts.Master
	if master == nil {
		master = e.Master
	}
	m := e.tableMargins(opts, master)
	l := e.b.Layout()
	usableW := l.Width - units.ToEMU(m.Left+m.Right)
	usableH := l.Height - units.ToEMU(m.Top+m.Bottom)
	colW := ColumnWidths(t, usableW)

	p := &Paginator{
		ColW:            colW,
		Height:          usableH,
		RepeatHeader:    opts.AddHeaderToEach || e.HeaderRepeat,
		DefaultFontSize: e.DefaultFontSize,
		Measurer:        e.Measurer,
	}
	pages := p.Paginate(t)

	grid := make([]float64, len(colW))
	for i, w := range colW {
		grid[i] = float64(w)
	}
	var slides []builder.SlideBuilder
	var errs []error
	for _, page := range pages {
		sb := e.b.AddSlide(master)
		sb.AddTable(page.Rows, builder.TableFrame{
			X: units.In(m.Left),
			Y: units.In(m.Top),
			W: units.Raw(usableW),
		}, builder.TableOptions{ColW: grid})
		e.addPageExtras(sb, opts)
		if err := sb.Err(); err != nil {
			errs = append(errs, err)
		}
		slides = append(slides, sb)
	}
	e.logger.Debug("table paginated",
		observability.Int("rows", len(t.Rows())),
		observability.Int("pages", len(pages)),
		observability.Duration(observability.MetricPaginateTime, time.Since(start)),
	)
	return slides, errors.Join(errs...)
}

func (e *Engine) tableMargins(opts SlidesForTableOptions, master *builder.MasterTemplate) Margins {
	if m, ok := marginsFromSlice(opts.Margin); ok {
		return m
	}
	if master != nil && len(master.Margin) > 0 {
		v := master.Margins()
		return Margins{v[0], v[1], v[2], v[3]}
	}
	return e.Margins
}

func (e *Engine) addPageExtras(sb builder.SlideBuilder, opts SlidesForTableOptions) {
	if img := opts.AddImage; img != nil {
		sb.AddImage(img.Path, img.X, img.Y, img.W, img.H, img.Data)
	}
	if txt := opts.AddText; txt != nil {
		sb.AddText(txt.Text, txt.Options)
	}
	if sh := opts.AddShape; sh != nil {
		sb.AddShape(sh.Shape, sh.Options)
	}
	if tb := opts.AddTable; tb != nil {
		sb.AddTable(tb.Rows, tb.Frame, tb.Options)
	}
}

// ColumnWidths apportions width across the grid columns of the first row
// in proportion to the source widths. Header MinWidth values win; without
// source widths the columns share width evenly.
func ColumnWidths(t SourceTable, width int64) []int64 {
	var first, head []SourceCell
	for _, group := range [][][]SourceCell{t.Head, t.Body, t.Foot} {
		if len(group) > 0 {
			first = group[0]
			break
		}
	}
	if len(t.Head) > 0 {
		head = t.Head[0]
	}

	var src []float64
	var mins []float64
	for _, c := range first {
		span := max(c.ColSpan, 1)
		for i := 0; i < span; i++ {
			src = append(src, math.Round(c.Width/float64(span)))
		}
	}
	for _, c := range head {
		for i := 0; i < max(c.ColSpan, 1); i++ {
			mins = append(mins, c.MinWidth)
		}
	}

	var total float64
	for _, w := range src {
		total += w
	}
	out := make([]int64, len(src))
	for i, w := range src {
		switch {
		case i < len(mins) && mins[i] > 0:
			out[i] = units.ToEMU(mins[i])
		case total > 0:
			out[i] = int64(math.Round(float64(width) * w / total))
		default:
			out[i] = width / int64(len(src))
		}
	}
	return out
}
