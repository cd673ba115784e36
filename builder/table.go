package builder

import (
	"errors"
	"fmt"
	"sort"

	"github.com/wudi/pptxkit/ir/semantic"
	"github.com/wudi/pptxkit/observability"
	"github.com/wudi/pptxkit/units"
)

var (
	// ErrSpanConflict rejects a cell carrying both a colspan and a rowspan.
	ErrSpanConflict = errors.New("cell has both colspan and rowspan")
	ErrEmptyTable   = errors.New("table has no rows")
)

// CellError locates a rejected table cell by its input position.
type CellError struct {
	Row, Col int
	Err      error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("table cell [%d,%d]: %v", e.Row, e.Col, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

// TableCell is one input cell. Zero-valued options fall back to the table
// defaults in TableOptions.
type TableCell struct {
	Text    string
	ColSpan int
	RowSpan int
	Options CellOptions
}

// CellOptions formats one cell.
type CellOptions struct {
	Align     string
	VAlign    string
	Bold      bool
	Underline bool
	FontFace  string
	FontSize  float64
	Color     string
	Fill      string
	Margin    []float64 // points, one value or top/right/bottom/left
	Border    *semantic.Border
}

// TableFrame positions a table. X defaults to 0.5in, Y to 1in and W to the
// slide width less 0.5in. H is optional and only seeds row heights.
type TableFrame struct {
	X, Y, W, H units.Measure
}

// TableOptions holds column widths, row heights and cell defaults.
type TableOptions struct {
	// ColW is one width for every column or one width per column, in inches.
	ColW []float64
	// RowH is one height for every row or one per row, in inches.
	RowH []float64

	CellOptions
}

// Cell returns a plain text cell.
func Cell(text string) TableCell { return TableCell{Text: text} }

// NewTable materializes rows into a table on the given layout.
func NewTable(rows [][]TableCell, frame TableFrame, opts TableOptions, l units.Layout) (*semantic.Table, error) {
	return buildTable(rows, frame, opts, l, observability.NopLogger{})
}

func buildTable(rows [][]TableCell, frame TableFrame, opts TableOptions, l units.Layout, log observability.Logger) (*semantic.Table, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyTable
	}
	x := frame.X.ResolveOr(units.AxisX, l, units.EMU/2)
	y := frame.Y.ResolveOr(units.AxisY, l, units.EMU)
	cx := frame.W.ResolveOr(units.AxisX, l, l.Width-units.EMU/2)
	cy := frame.H.ResolveOr(units.AxisY, l, 0)

	cols := ColumnCount(rows[0])
	cells, err := materialize(rows, opts.CellOptions, log)
	if err != nil {
		return nil, err
	}

	t := &semantic.Table{
		Frame: semantic.Frame{X: x, Y: y, CX: cx, CY: cy},
		ColW:  columnWidths(opts.ColW, cols, cx),
		RowH:  rowHeights(opts.RowH, len(rows), cy),
		Rows:  cells,
	}
	if t.Frame.CY == 0 {
		t.Frame.CY = sum(t.RowH)
	}
	if t.Frame.CY == 0 {
		t.Frame.CY = units.EMU
	}
	return t, nil
}

// ColumnCount is the colspan-weighted width of a row.
func ColumnCount(row []TableCell) int {
	n := 0
	for _, c := range row {
		n += span(c.ColSpan)
	}
	return n
}

func span(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

func columnWidths(colW []float64, cols int, cx int64) []int64 {
	out := make([]int64, cols)
	var each int64 = units.EMU
	if cols > 0 && cx > 0 {
		each = cx / int64(cols)
	}
	for i := range out {
		switch {
		case len(colW) == 1:
			out[i] = units.ToEMU(colW[0])
		case i < len(colW):
			out[i] = units.ToEMU(colW[i])
		default:
			out[i] = each
		}
	}
	return out
}

func rowHeights(rowH []float64, rows int, cy int64) []int64 {
	out := make([]int64, rows)
	var each int64
	if cy > 0 {
		each = cy / int64(rows)
	}
	for i := range out {
		switch {
		case len(rowH) == 1:
			out[i] = units.ToEMU(rowH[0])
		case i < len(rowH):
			out[i] = units.ToEMU(rowH[i])
		default:
			out[i] = each
		}
	}
	return out
}

func sum(v []int64) int64 {
	var n int64
	for _, x := range v {
		n += x
	}
	return n
}

// materialize expands spans into explicit placeholder cells. A colspan of N
// is followed by N-1 hMerge cells. A rowspan of M puts one vMerge cell at the
// same grid column in each of the next M-1 rows, before any real cell that
// starts at or after that column.
func materialize(rows [][]TableCell, defaults CellOptions, log observability.Logger) ([][]semantic.Cell, error) {
	out := make([][]semantic.Cell, len(rows))
	pending := map[int]int{} // grid column -> rows still covered

	for r, row := range rows {
		var cells []semantic.Cell
		col := 0
		used := map[int]bool{}
		emitPending := func() {
			for pending[col] > 0 && !used[col] {
				cells = append(cells, semantic.Cell{Merge: semantic.MergeVertical})
				used[col] = true
				col++
			}
		}
		next := map[int]int{}

		for c, in := range row {
			emitPending()
			cs, rs := span(in.ColSpan), span(in.RowSpan)
			if cs > 1 && rs > 1 {
				return nil, &CellError{Row: r, Col: c, Err: ErrSpanConflict}
			}
			if rs > 1 {
				if left := len(rows) - r - 1; rs-1 > left {
					log.Warn("rowspan clamped to table end",
						observability.Int("row", r),
						observability.Int("col", c),
						observability.Int("rowspan", rs),
						observability.Int("max", left+1))
					rs = left + 1
				}
				if rs > 1 {
					next[col] = rs - 1
				}
			}
			cell := semantic.Cell{Text: in.Text, Format: cellFormat(in.Options, defaults, log)}
			if cs > 1 {
				cell.ColSpan = cs
			}
			if rs > 1 {
				cell.RowSpan = rs
			}
			cells = append(cells, cell)
			col++
			for i := 1; i < cs; i++ {
				cells = append(cells, semantic.Cell{Merge: semantic.MergeHorizontal})
				col++
			}
		}

		// Placeholders for covered columns past the last real cell.
		var rest []int
		for k, n := range pending {
			if n > 0 && !used[k] {
				rest = append(rest, k)
			}
		}
		sort.Ints(rest)
		for _, k := range rest {
			if k < col {
				log.Warn("rowspan overlaps a cell, placeholder dropped",
					observability.Int("row", r), observability.Int("col", k))
				continue
			}
			cells = append(cells, semantic.Cell{Merge: semantic.MergeVertical})
			used[k] = true
			col = k + 1
		}

		for k := range pending {
			if pending[k]--; pending[k] <= 0 {
				delete(pending, k)
			}
		}
		for k, n := range next {
			pending[k] = n
		}
		out[r] = cells
	}
	return out, nil
}

func cellFormat(o, def CellOptions, log observability.Logger) semantic.CellFormat {
	if o.Align == "" {
		o.Align = def.Align
	}
	if o.VAlign == "" {
		o.VAlign = def.VAlign
	}
	if !o.Bold {
		o.Bold = def.Bold
	}
	if !o.Underline {
		o.Underline = def.Underline
	}
	if o.FontFace == "" {
		o.FontFace = def.FontFace
	}
	if o.FontSize == 0 {
		o.FontSize = def.FontSize
	}
	if o.Color == "" {
		o.Color = def.Color
	}
	if o.Fill == "" {
		o.Fill = def.Fill
	}
	if o.Margin == nil {
		o.Margin = def.Margin
	}
	if o.Border == nil {
		o.Border = def.Border
	}

	f := semantic.CellFormat{
		Align:     normalizeAlign(o.Align),
		VAlign:    normalizeVAlign(o.VAlign, semantic.VAlignDefault),
		Bold:      o.Bold,
		Underline: o.Underline,
		FontFace:  o.FontFace,
		FontSize:  o.FontSize,
		Color:     colorOrEmpty(o.Color),
		Fill:      colorOrEmpty(o.Fill),
		Border:    o.Border,
	}
	if len(o.Margin) > 0 {
		if m, ok := marginsFrom(o.Margin); ok {
			f.Margin = &m
		} else {
			log.Warn("cell margin needs 1 or 4 values", observability.Int("values", len(o.Margin)))
		}
	}
	return f
}
