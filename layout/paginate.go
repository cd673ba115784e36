package layout

import (
	"sort"

	"github.com/wudi/pptxkit/builder"
	"github.com/wudi/pptxkit/fonts"
	"github.com/wudi/pptxkit/units"
)

// SourceTable is a table handed over by a table source: rows in header,
// body and footer groups, each cell carrying its text and computed style.
type SourceTable struct {
	Head [][]SourceCell
	Body [][]SourceCell
	Foot [][]SourceCell
}

// Rows returns every row in document order.
func (t SourceTable) Rows() [][]SourceCell {
	out := make([][]SourceCell, 0, len(t.Head)+len(t.Body)+len(t.Foot))
	out = append(out, t.Head...)
	out = append(out, t.Body...)
	return append(out, t.Foot...)
}

// SourceCell is one cell from a table source.
type SourceCell struct {
	Text    string
	ColSpan int
	RowSpan int
	// Width is the rendered width in pixels, used to apportion columns.
	Width float64
	// MinWidth, in inches, overrides the apportioned width of a header column.
	MinWidth float64
	Style    builder.CellOptions
}

// Page is one slide's worth of rows.
type Page struct {
	Rows [][]builder.TableCell
}

// Paginator splits a table into pages of at most Height EMU.
type Paginator struct {
	ColW            []int64 // grid column widths in EMU
	Height          int64   // usable table height in EMU
	RepeatHeader    bool
	DefaultFontSize float64
	Measurer        fonts.Measurer // ratio estimate when nil
}

type cellLines struct {
	lines  []string
	height int64 // per line, padding share included
}

// spanRun is a rowspan still covering rows below the cell that carries it.
type spanRun struct {
	col   int // grid column
	left  int // rows covered after the current one
	page  int // page holding the carrying cell
	style builder.CellOptions
}

// Paginate walks rows one visual line at a time; all cells of a row advance
// together. A page is flushed before a line pass that would overflow it.
// Rowspans crossing a break are cut at the page end and resumed on the next
// page by an empty cell carrying the remaining span.
func (p *Paginator) Paginate(t SourceTable) []Page {
	var (
		pages []Page
		rows  [][]builder.TableCell
		curH  int64
		runs  []*spanRun
	)
	var header []SourceCell
	if len(t.Head) > 0 {
		header = t.Head[0]
	}
	seeded := 0 // header rows at the top of the current page

	flush := func() bool {
		n := len(rows)
		for n > seeded && !hasText(rows[n-1]) {
			n--
		}
		if n <= seeded {
			// Only empty rows: drop them and keep filling this page.
			rows, curH = rows[:seeded], 0
			if seeded > 0 {
				curH = p.rowHeight(header)
			}
			for _, r := range runs {
				r.page = -1
			}
			return false
		}
		rows = rows[:n]
		clampRowSpans(rows)
		pages = append(pages, Page{Rows: rows})
		rows, curH, seeded = nil, 0, 0
		if p.RepeatHeader && header != nil {
			rows = append(rows, p.headerRow(header))
			curH += p.rowHeight(header)
			seeded = 1
		}
		return true
	}

	for _, src := range t.Rows() {
		var covers []*spanRun
		covered := map[int]bool{}
		for _, r := range runs {
			if r.left > 0 {
				r.left--
				covers = append(covers, r)
				covered[r.col] = true
			}
		}

		row := make([]builder.TableCell, len(src))
		cols := make([]int, len(src))
		wrapped := make([]cellLines, len(src))
		maxLines := 0
		grid := 0
		for i, c := range src {
			for covered[grid] {
				grid++
			}
			cols[i] = grid
			row[i] = builder.TableCell{ColSpan: c.ColSpan, RowSpan: c.RowSpan, Options: c.Style}
			span := max(c.ColSpan, 1)
			size := p.fontSize(c)
			wrapped[i].lines = Lines(c.Text, size, p.spanWidthPt(grid, span), p.Measurer)
			grid += span
			maxLines = max(maxLines, len(wrapped[i].lines))
		}
		for i, c := range src {
			wrapped[i].height = p.lineHeight(c, maxLines)
		}

		for idx := 0; idx < maxLines; idx++ {
			passH := p.passHeight(wrapped, idx)
			if curH+passH > p.Height && (len(rows) > seeded || hasText(row)) {
				if hasText(row) {
					rows = append(rows, withContinuations(row, cols, covers, len(pages)))
				}
				if flush() {
					for i := range row {
						row[i].Text = ""
					}
				}
			}
			for i := range row {
				if idx < len(wrapped[i].lines) {
					row[i].Text += wrapped[i].lines[idx]
				}
			}
			curH += passH
		}
		rows = append(rows, withContinuations(row, cols, covers, len(pages)))

		live := runs[:0]
		for _, r := range runs {
			if r.left > 0 {
				live = append(live, r)
			}
		}
		runs = live
		for i, c := range src {
			if c.RowSpan > 1 && c.ColSpan <= 1 {
				runs = append(runs, &spanRun{col: cols[i], left: c.RowSpan - 1, page: len(pages), style: c.Style})
			}
		}
	}
	n := len(rows)
	for n > seeded && !hasText(rows[n-1]) {
		n--
	}
	rows = rows[:n]
	if len(rows) > seeded || len(pages) == 0 {
		clampRowSpans(rows)
		pages = append(pages, Page{Rows: rows})
	}
	return pages
}

// withContinuations copies row for the page numbered page, inserting an
// empty cell for every covering run whose carrying cell is on an earlier
// page. cols holds the grid column of each cell of row.
func withContinuations(row []builder.TableCell, cols []int, covers []*spanRun, page int) []builder.TableCell {
	var conts []*spanRun
	for _, r := range covers {
		if r.page < page {
			conts = append(conts, r)
			r.page = page
		}
	}
	if len(conts) == 0 {
		return cloneRow(row)
	}
	sort.Slice(conts, func(i, j int) bool { return conts[i].col < conts[j].col })
	cont := func(r *spanRun) builder.TableCell {
		c := builder.TableCell{Options: r.style}
		if r.left > 0 {
			c.RowSpan = r.left + 1
		}
		return c
	}
	out := make([]builder.TableCell, 0, len(row)+len(conts))
	k := 0
	for i, c := range row {
		for k < len(conts) && conts[k].col < cols[i] {
			out = append(out, cont(conts[k]))
			k++
		}
		out = append(out, c)
	}
	for ; k < len(conts); k++ {
		out = append(out, cont(conts[k]))
	}
	return out
}

// clampRowSpans cuts every rowspan at the last row of the page.
func clampRowSpans(rows [][]builder.TableCell) {
	for i, row := range rows {
		for j := range row {
			if left := len(rows) - i; row[j].RowSpan > left {
				row[j].RowSpan = left
			}
		}
	}
}

func (p *Paginator) fontSize(c SourceCell) float64 {
	if c.Style.FontSize > 0 {
		return c.Style.FontSize
	}
	if p.DefaultFontSize > 0 {
		return p.DefaultFontSize
	}
	return defaultFontSize
}

// spanWidthPt is the width in points of span grid columns starting at col.
func (p *Paginator) spanWidthPt(col, span int) float64 {
	var w int64
	for i := col; i < col+span && i < len(p.ColW); i++ {
		w += p.ColW[i]
	}
	if w == 0 {
		w = units.EMU
	}
	return float64(w) / units.OnePoint
}

// lineHeight is the font line height plus the cell's vertical padding
// spread over the row's line count.
func (p *Paginator) lineHeight(c SourceCell, lines int) int64 {
	h := float64(units.LineHeight(p.fontSize(c)))
	if m := c.Style.Margin; len(m) == 4 && lines > 0 {
		h += float64(units.Points(m[0])+units.Points(m[2])) / float64(lines)
	} else if len(m) == 1 && lines > 0 {
		h += float64(2*units.Points(m[0])) / float64(lines)
	}
	return int64(h + 0.5)
}

// passHeight is the tallest line among cells that still have a line at idx.
func (p *Paginator) passHeight(cells []cellLines, idx int) int64 {
	var h, tallest int64
	for _, c := range cells {
		tallest = max(tallest, c.height)
		if idx < len(c.lines) {
			h = max(h, c.height)
		}
	}
	if h == 0 {
		return tallest
	}
	return h
}

func (p *Paginator) rowHeight(src []SourceCell) int64 {
	var h int64
	grid := 0
	for _, c := range src {
		span := max(c.ColSpan, 1)
		n := len(Lines(c.Text, p.fontSize(c), p.spanWidthPt(grid, span), p.Measurer))
		grid += span
		h = max(h, int64(n)*p.lineHeight(c, n))
	}
	return h
}

func (p *Paginator) headerRow(src []SourceCell) []builder.TableCell {
	row := make([]builder.TableCell, len(src))
	for i, c := range src {
		row[i] = builder.TableCell{Text: c.Text, ColSpan: c.ColSpan, Options: c.Style}
	}
	return row
}

func hasText(row []builder.TableCell) bool {
	for _, c := range row {
		if c.Text != "" {
			return true
		}
	}
	return false
}

func cloneRow(row []builder.TableCell) []builder.TableCell {
	return append([]builder.TableCell(nil), row...)
}
