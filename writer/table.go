package writer

import (
	"fmt"
	"strings"

	"github.com/wudi/pptxkit/ir/semantic"
	"github.com/wudi/pptxkit/units"
)

const (
	tableURI         = "http://schemas.openxmlformats.org/drawingml/2006/table"
	tableModID       = "1579011935"
	defaultBorder    = "666666"
	borderMiterLimit = "400000"
)

// table builds the graphicFrame for one table. Ids follow tableNum*slideIndex.
func table(t *semantic.Table, ctx *SlideContext) *Node {
	num := ctx.TableNum * ctx.Slide.Index
	grid := El("a:tblGrid")
	for _, w := range t.ColW {
		grid.Add(El("a:gridCol").Set("w", w))
	}
	tbl := El("a:tbl", El("a:tblPr"), grid)
	for r, row := range t.Rows {
		var h int64
		if r < len(t.RowH) {
			h = t.RowH[r]
		}
		tr := El("a:tr").Set("h", h)
		for _, c := range row {
			tr.Add(tableCell(c))
		}
		tbl.Add(tr)
	}

	return El("p:graphicFrame",
		El("p:nvGraphicFramePr",
			El("p:cNvPr").Set("id", num+1).Set("name", fmt.Sprintf("Table %d", num)),
			El("p:cNvGraphicFramePr", El("a:graphicFrameLocks").Set("noGrp", "1")),
			El("p:nvPr", El("p:extLst", El("p:ext",
				El("p14:modId").Set("xmlns:p14", nsP14).Set("val", tableModID),
			).Set("uri", "{D42A27DB-BD31-4B8C-83A1-F6EECF244321}"))),
		),
		El("p:xfrm",
			El("a:off").Set("x", t.Frame.X).Set("y", t.Frame.Y),
			El("a:ext").Set("cx", t.Frame.CX).Set("cy", t.Frame.CY),
		),
		El("a:graphic", El("a:graphicData", tbl).Set("uri", tableURI)),
	)
}

func cellAlign(a semantic.HAlign) string {
	switch a {
	case semantic.AlignLeft:
		return "l"
	case semantic.AlignCenter:
		return "ctr"
	case semantic.AlignRight:
		return "r"
	case semantic.AlignJustify:
		return "just"
	}
	return ""
}

func cellAnchor(v semantic.VAlign) string {
	switch v {
	case semantic.VAlignTop:
		return "t"
	case semantic.VAlignMiddle:
		return "ctr"
	case semantic.VAlignBottom:
		return "b"
	}
	return ""
}

func tableCell(c semantic.Cell) *Node {
	switch c.Merge {
	case semantic.MergeHorizontal:
		return El("a:tc", El("a:tcPr")).Set("hMerge", "1")
	case semantic.MergeVertical:
		return El("a:tc", El("a:tcPr")).Set("vMerge", "1")
	}
	f := c.Format
	tc := El("a:tc").
		SetIf(c.ColSpan > 1, "gridSpan", c.ColSpan).
		SetIf(c.RowSpan > 1, "rowSpan", c.RowSpan)

	body := El("a:txBody", El("a:bodyPr"), El("a:lstStyle"))
	lines := strings.Split(c.Text, "\n")
	algn := cellAlign(f.Align)
	for i, line := range lines {
		p := El("a:p", El("a:pPr").SetIf(algn != "", "algn", algn), El("a:r", cellRPr(f), TextEl("a:t", line)))
		if i == len(lines)-1 {
			p.Add(El("a:endParaRPr").Set("lang", "en-US").Set("dirty", "0"))
		}
		body.Add(p)
	}
	tc.Add(body)

	pr := El("a:tcPr")
	if m := f.Margin; m != nil {
		pr.Set("marL", units.Points(m.Left)).
			Set("marR", units.Points(m.Right)).
			Set("marT", units.Points(m.Top)).
			Set("marB", units.Points(m.Bottom))
	}
	if a := cellAnchor(f.VAlign); a != "" {
		pr.Set("anchor", a)
	}
	pr.Add(borders(f.Border)...)
	if f.Fill != "" {
		pr.Add(solidFill(f.Fill, 0))
	}
	return tc.Add(pr)
}

func cellRPr(f semantic.CellFormat) *Node {
	n := El("a:rPr").Set("lang", "en-US").Set("dirty", "0").Set("smtClean", "0").
		SetIf(f.FontSize > 0, "sz", hundredths(f.FontSize)).
		SetIf(f.Bold, "b", "1").
		SetIf(f.Underline, "u", "sng")
	if f.Color != "" {
		n.Add(solidFill(f.Color, 0))
	}
	if f.FontFace != "" {
		n.Add(El("a:latin").Set("typeface", f.FontFace))
	}
	return n
}

// borderSides is the emission order; the index selects from a TRBL list.
var borderSides = [4]struct {
	name string
	trbl int
}{{"a:lnL", 3}, {"a:lnR", 1}, {"a:lnT", 0}, {"a:lnB", 2}}

func borders(b *semantic.Border) []*Node {
	if b == nil {
		return nil
	}
	out := make([]*Node, 0, 4)
	switch {
	case b.Color != "":
		for _, side := range borderSides {
			out = append(out, borderLine(side.name, units.OnePoint, b.Color))
		}
	case b.Sides != nil:
		for _, side := range borderSides {
			l := b.Sides[side.trbl]
			if l == nil {
				out = append(out, El(side.name, El("a:miter").Set("lim", borderMiterLimit)).Set("w", 0))
				continue
			}
			out = append(out, borderLine(side.name, lineWidth(l), lineColor(l)))
		}
	case b.Line != nil:
		dash := "solid"
		if b.Line.Dash {
			dash = "sysDash"
		}
		for _, side := range borderSides {
			n := borderLine(side.name, lineWidth(b.Line), lineColor(b.Line))
			n.Add(
				El("a:prstDash").Set("val", dash),
				El("a:round"),
				El("a:headEnd").Set("type", "none").Set("w", "med").Set("len", "med"),
				El("a:tailEnd").Set("type", "none").Set("w", "med").Set("len", "med"),
			)
			out = append(out, n)
		}
	}
	return out
}

func borderLine(name string, w int64, color string) *Node {
	return El(name, solidFill(color, 0)).
		Set("w", w).
		Set("cap", "flat").
		Set("cmpd", "sng").
		Set("algn", "ctr")
}

func lineWidth(l *semantic.BorderLine) int64 {
	if l.Pt == nil {
		return units.OnePoint
	}
	return units.Points(*l.Pt)
}

func lineColor(l *semantic.BorderLine) string {
	if l.Color == "" {
		return defaultBorder
	}
	return l.Color
}
