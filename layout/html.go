package layout

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/pptxkit/builder"
	"github.com/wudi/pptxkit/ir/semantic"
)

// ErrTableNotFound is returned by HTMLTableByID when no table has the id.
var ErrTableNotFound = errors.New("table not found")

// ParseHTMLTables reads every table in an HTML document. Cell styles come
// from inline style attributes; widths from the width attribute or style.
func ParseHTMLTables(r io.Reader) ([]SourceTable, error) {
	doc, err := parseHTML(r)
	if err != nil {
		return nil, err
	}
	var tables []SourceTable
	doc.Find("table").Each(func(_ int, s *goquery.Selection) {
		tables = append(tables, tableFromSelection(s))
	})
	return tables, nil
}

// HTMLTableByID reads the table with the given element id.
func HTMLTableByID(r io.Reader, id string) (SourceTable, error) {
	doc, err := parseHTML(r)
	if err != nil {
		return SourceTable{}, err
	}
	sel := doc.Find("table").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, ok := s.Attr("id")
		return ok && v == id
	})
	if sel.Length() == 0 {
		return SourceTable{}, fmt.Errorf("table %q: %w", id, ErrTableNotFound)
	}
	return tableFromSelection(sel.First()), nil
}

func parseHTML(r io.Reader) (*goquery.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

func tableFromSelection(table *goquery.Selection) SourceTable {
	var t SourceTable
	groups := []struct {
		sel  string
		rows *[][]SourceCell
	}{
		{"thead", &t.Head},
		{"tbody", &t.Body},
		{"tfoot", &t.Foot},
	}
	grouped := false
	for _, g := range groups {
		table.ChildrenFiltered(g.sel).Children().Filter("tr").Each(func(_ int, tr *goquery.Selection) {
			*g.rows = append(*g.rows, rowFromSelection(tr))
			grouped = true
		})
	}
	if !grouped {
		table.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
			t.Body = append(t.Body, rowFromSelection(tr))
		})
	}
	return t
}

func rowFromSelection(tr *goquery.Selection) []SourceCell {
	var cells []SourceCell
	tr.ChildrenFiltered("th, td").Each(func(_ int, td *goquery.Selection) {
		cells = append(cells, cellFromSelection(td))
	})
	return cells
}

func cellFromSelection(td *goquery.Selection) SourceCell {
	style := parseStyle(td.AttrOr("style", ""))
	c := SourceCell{
		Text:    cellText(td.Get(0)),
		ColSpan: attrInt(td, "colspan"),
		RowSpan: attrInt(td, "rowspan"),
		Width:   pixels(td.AttrOr("width", style["width"])),
	}
	if v, ok := td.Attr("data-pptx-min-width"); ok {
		c.MinWidth, _ = strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	if goquery.NodeName(td) == "th" {
		c.Style.Bold = true
	}
	applyStyle(&c.Style, style)
	return c
}

// cellText is the text content of n with <br> read as a newline.
func cellText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			sb.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return strings.TrimSpace(sb.String())
}

func attrInt(s *goquery.Selection, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s.AttrOr(name, "")))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// parseStyle splits an inline style attribute into lower-cased properties.
func parseStyle(s string) map[string]string {
	out := map[string]string{}
	for _, decl := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}

func applyStyle(o *builder.CellOptions, style map[string]string) {
	if v, ok := style["font-size"]; ok {
		o.FontSize = pixels(v)
	}
	switch w := style["font-weight"]; {
	case w == "bold" || w == "bolder":
		o.Bold = true
	case w != "":
		if n, err := strconv.Atoi(w); err == nil {
			o.Bold = n >= 500
		}
	}
	o.Color = cssColor(style["color"])
	if bg := style["background-color"]; bg != "" {
		o.Fill = cssColor(bg)
	} else if bg := style["background"]; bg != "" {
		o.Fill = cssColor(bg)
	}
	switch a := strings.ToLower(style["text-align"]); a {
	case "left", "center", "right", "justify":
		o.Align = a
	case "start":
		o.Align = "left"
	case "end":
		o.Align = "right"
	}
	switch v := strings.ToLower(style["vertical-align"]); v {
	case "top", "middle", "bottom":
		o.VAlign = v
	}
	if pad := boxValues(style, "padding", "padding-%s"); pad != nil {
		o.Margin = pad[:]
	}
	o.Border = cssBorder(style)
}

var boxSides = [4]string{"top", "right", "bottom", "left"}

// boxValues reads a TRBL shorthand and its per-side longhands, in pixels.
// Pixels map to points one to one.
func boxValues(style map[string]string, short, long string) *[4]float64 {
	var out [4]float64
	found := false
	if v, ok := style[short]; ok {
		f := strings.Fields(v)
		idx := [4][4]int{{0, 0, 0, 0}, {0, 1, 0, 1}, {0, 1, 2, 1}, {0, 1, 2, 3}}
		if n := len(f); n >= 1 && n <= 4 {
			for i := range out {
				out[i] = pixels(f[idx[n-1][i]])
			}
			found = true
		}
	}
	for i, side := range boxSides {
		if v, ok := style[fmt.Sprintf(long, side)]; ok {
			out[i] = pixels(v)
			found = true
		}
	}
	if !found {
		return nil
	}
	return &out
}

func cssBorder(style map[string]string) *semantic.Border {
	var sides [4]*semantic.BorderLine
	found := false
	if v, ok := style["border"]; ok {
		w, c := borderShorthand(v)
		for i := range sides {
			sides[i] = borderLine(w, c)
		}
		found = true
	}
	for i, side := range boxSides {
		key := "border-" + side
		if v, ok := style[key]; ok {
			w, c := borderShorthand(v)
			sides[i] = borderLine(w, c)
			found = true
		}
		if v, ok := style[key+"-width"]; ok {
			w := pixels(v)
			if sides[i] == nil {
				sides[i] = borderLine(w, "")
			} else {
				sides[i].Pt = &w
			}
			found = true
		}
		if v, ok := style[key+"-color"]; ok && sides[i] != nil {
			sides[i].Color = cssColor(v)
		}
	}
	if !found {
		return nil
	}
	return &semantic.Border{Sides: &sides}
}

func borderLine(w float64, color string) *semantic.BorderLine {
	if w <= 0 {
		return nil
	}
	return &semantic.BorderLine{Pt: &w, Color: color}
}

// borderShorthand picks the width and color out of "1px solid #ccc".
func borderShorthand(v string) (float64, string) {
	width, color := 1.0, ""
	for _, tok := range strings.Fields(cssFuncSpaces(v)) {
		switch {
		case tok == "none" || tok == "0":
			width = 0
		case tok[0] >= '0' && tok[0] <= '9' || tok[0] == '.':
			width = pixels(tok)
		case tok[0] == '#' || strings.HasPrefix(tok, "rgb"):
			color = cssColor(tok)
		}
	}
	return width, color
}

// cssFuncSpaces removes blanks inside rgb(...) so the value splits as one token.
func cssFuncSpaces(v string) string {
	var sb strings.Builder
	depth := 0
	for _, r := range v {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth > 0 && r == ' ' {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// pixels reads the number in a CSS length such as "12px" or "14".
func pixels(v string) float64 {
	v = strings.TrimSpace(strings.ToLower(v))
	v = strings.TrimSuffix(strings.TrimSuffix(v, "px"), "pt")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// cssColor converts #rgb, #rrggbb and rgb()/rgba() values to six hex digits.
// Fully transparent colors yield an empty string.
func cssColor(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	switch {
	case strings.HasPrefix(v, "#"):
		h := v[1:]
		if len(h) == 3 {
			h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
		}
		if len(h) != 6 {
			return ""
		}
		if _, err := strconv.ParseUint(h, 16, 32); err != nil {
			return ""
		}
		return strings.ToUpper(h)
	case strings.HasPrefix(v, "rgb"):
		open, end := strings.IndexByte(v, '('), strings.IndexByte(v, ')')
		if open < 0 || end < open {
			return ""
		}
		parts := strings.Split(v[open+1:end], ",")
		if len(parts) < 3 {
			return ""
		}
		if len(parts) == 4 {
			if a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64); err == nil && a == 0 {
				return ""
			}
		}
		var out strings.Builder
		for _, p := range parts[:3] {
			n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return ""
			}
			fmt.Fprintf(&out, "%02X", int(math.Max(0, math.Min(255, math.Round(n)))))
		}
		return out.String()
	}
	return ""
}

// RenderHTML renders an HTML document as slides. Headings and paragraphs
// stack like markdown blocks; each table is paginated onto its own slides.
func (e *Engine) RenderHTML(r io.Reader) error {
	doc, err := html.Parse(r)
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}
	e.current = nil
	err = e.walkHTML(doc)
	e.current = nil
	return err
}

func (e *Engine) walkHTML(n *html.Node) error {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			e.renderHTMLHeader(n)
			return nil
		case atom.P:
			e.renderBlock(plainRuns(cellText(n)), e.DefaultFontSize, 0)
			return nil
		case atom.Li:
			e.renderBlock(plainRuns(bullet+cellText(n)), e.DefaultFontSize, 1)
			return nil
		case atom.Hr:
			e.newSlide()
			return nil
		case atom.Table:
			_, err := e.AddSlidesForTable(tableFromSelection(goquery.NewDocumentFromNode(n).Selection), SlidesForTableOptions{})
			e.current = nil
			return err
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := e.walkHTML(c); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) renderHTMLHeader(n *html.Node) {
	size := e.DefaultFontSize * 1.25
	switch n.DataAtom {
	case atom.H1:
		size = e.DefaultFontSize * 2
		e.newSlide()
	case atom.H2:
		size = e.DefaultFontSize * 1.5
	}
	e.renderBlock([]builder.TextRun{{
		Text:    cellText(n),
		Options: &builder.RunOptions{Bold: true, FontSize: size},
	}}, size, 0)
}

func plainRuns(s string) []builder.TextRun {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return []builder.TextRun{{Text: s}}
}
