package scripting

import (
	"strconv"

	"github.com/wudi/pptxkit/builder"
	"github.com/wudi/pptxkit/ir/semantic"
	"github.com/wudi/pptxkit/layout"
	"github.com/wudi/pptxkit/units"
)

// opts wraps an exported script object. Keys are looked up under every
// alias given, so both font_size and fontSize work.
type opts map[string]interface{}

func asOpts(v interface{}) opts {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return opts{}
}

func (o opts) get(keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := o[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (o opts) str(keys ...string) string {
	v, ok := o.get(keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func (o opts) num(keys ...string) float64 {
	v, _ := o.get(keys...)
	return toFloat(v)
}

func (o opts) boolean(keys ...string) bool {
	v, _ := o.get(keys...)
	b, _ := v.(bool)
	return b
}

func (o opts) floats(keys ...string) []float64 {
	v, ok := o.get(keys...)
	if !ok {
		return nil
	}
	if list, ok := v.([]interface{}); ok {
		out := make([]float64, len(list))
		for i, x := range list {
			out[i] = toFloat(x)
		}
		return out
	}
	return []float64{toFloat(v)}
}

// measure reads a number (inches below 100, EMU above) or a string such as
// "50%" or "1.5in".
func (o opts) measure(keys ...string) units.Measure {
	v, ok := o.get(keys...)
	if !ok {
		return units.Measure{}
	}
	if s, ok := v.(string); ok {
		m, err := units.ParseMeasure(s)
		if err != nil {
			return units.Measure{}
		}
		return m
	}
	return units.N(toFloat(v))
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case float64:
		return t
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	}
	return 0
}

func shapeOptions(o opts) builder.ShapeOptions {
	so := builder.ShapeOptions{
		X:            o.measure("x"),
		Y:            o.measure("y"),
		W:            o.measure("w", "cx"),
		H:            o.measure("h", "cy"),
		FlipH:        o.boolean("flipH"),
		FlipV:        o.boolean("flipV"),
		Rotate:       o.num("rotate"),
		Fill:         o.str("fill"),
		Transparency: int(o.num("transparency")),
		Line:         o.str("line"),
		LineSize:     o.num("line_size", "lineSize"),
		LineHead:     o.str("line_head", "lineHead"),
		LineTail:     o.str("line_tail", "lineTail"),
	}
	if v, ok := o.get("shadow"); ok {
		s := asOpts(v)
		so.Shadows = []semantic.Shadow{{
			Inner:   s.str("type") == "inner",
			Blur:    s.num("blur"),
			Offset:  s.num("offset"),
			Angle:   s.num("angle"),
			Color:   s.str("color"),
			Opacity: s.num("opacity"),
		}}
	}
	return so
}

func textOptions(o opts) builder.TextOptions {
	to := builder.TextOptions{
		ShapeOptions: shapeOptions(o),
		Shape:        o.str("shape"),
		IsTextBox:    o.boolean("isTextBox"),
		Align:        o.str("align"),
		VAlign:       o.str("valign"),
		IndentLevel:  int(o.num("indentLevel")),
		Bold:         o.boolean("bold"),
		Underline:    o.boolean("underline"),
		FontSize:     o.num("font_size", "fontSize"),
		FontFace:     o.str("font_face", "fontFace"),
		Color:        o.str("color"),
		CharSpacing:  o.num("charSpacing"),
		Margin:       o.floats("margin"),
		AutoFit:      o.boolean("autoFit"),
		ShrinkText:   o.boolean("shrinkText"),
	}
	if _, ok := o.get("inset"); ok {
		in := o.num("inset")
		to.Inset = &in
	}
	return to
}

func runOptions(o opts) *builder.RunOptions {
	if len(o) == 0 {
		return nil
	}
	return &builder.RunOptions{
		Bold:        o.boolean("bold"),
		Underline:   o.boolean("underline"),
		FontSize:    o.num("font_size", "fontSize"),
		FontFace:    o.str("font_face", "fontFace"),
		Color:       o.str("color"),
		CharSpacing: o.num("charSpacing"),
		BreakLine:   o.boolean("breakLine"),
	}
}

// textRuns reads either a plain string or an array of {text, options}.
func textRuns(v interface{}) []builder.TextRun {
	list, ok := v.([]interface{})
	if !ok {
		return []builder.TextRun{{Text: asString(v)}}
	}
	runs := make([]builder.TextRun, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			runs = append(runs, builder.TextRun{Text: s})
			continue
		}
		r := asOpts(item)
		ro := asOpts(r["options"])
		runs = append(runs, builder.TextRun{
			Text:    r.str("text"),
			Field:   ro.str("field"),
			Options: runOptions(ro),
		})
	}
	return runs
}

func asString(v interface{}) string {
	return opts{"v": v}.str("v")
}

func cellOptions(o opts) builder.CellOptions {
	return builder.CellOptions{
		Align:     o.str("align"),
		VAlign:    o.str("valign"),
		Bold:      o.boolean("bold"),
		Underline: o.boolean("underline"),
		FontFace:  o.str("font_face", "fontFace"),
		FontSize:  o.num("font_size", "fontSize"),
		Color:     o.str("color"),
		Fill:      o.str("fill"),
		Margin:    o.floats("margin"),
		Border:    border(o),
	}
}

// border reads a color string, a {pt, color} line or a TRBL array of lines.
func border(o opts) *semantic.Border {
	v, ok := o.get("border")
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		return &semantic.Border{Color: t}
	case []interface{}:
		var sides [4]*semantic.BorderLine
		for i := 0; i < len(t) && i < 4; i++ {
			if t[i] != nil {
				sides[i] = borderLine(asOpts(t[i]))
			}
		}
		return &semantic.Border{Sides: &sides}
	}
	return &semantic.Border{Line: borderLine(asOpts(v))}
}

func borderLine(o opts) *semantic.BorderLine {
	l := &semantic.BorderLine{Color: o.str("color"), Dash: o.str("type") == "dash"}
	if _, ok := o.get("pt"); ok {
		pt := o.num("pt")
		l.Pt = &pt
	}
	return l
}

type tableCell struct {
	text    string
	colspan int
	rowspan int
	style   builder.CellOptions
}

// cells reads rows of strings, numbers or {text, options} objects.
func cells(v interface{}) [][]tableCell {
	rows, _ := v.([]interface{})
	out := make([][]tableCell, 0, len(rows))
	for _, r := range rows {
		list, _ := r.([]interface{})
		row := make([]tableCell, 0, len(list))
		for _, c := range list {
			m, ok := c.(map[string]interface{})
			if !ok {
				row = append(row, tableCell{text: asString(c)})
				continue
			}
			o := asOpts(m["options"])
			row = append(row, tableCell{
				text:    opts(m).str("text"),
				colspan: int(o.num("colspan")),
				rowspan: int(o.num("rowspan")),
				style:   cellOptions(o),
			})
		}
		out = append(out, row)
	}
	return out
}

func tableRows(v interface{}) [][]builder.TableCell {
	src := cells(v)
	out := make([][]builder.TableCell, len(src))
	for i, row := range src {
		out[i] = make([]builder.TableCell, len(row))
		for j, c := range row {
			out[i][j] = builder.TableCell{Text: c.text, ColSpan: c.colspan, RowSpan: c.rowspan, Options: c.style}
		}
	}
	return out
}

func sourceRows(v interface{}) [][]layout.SourceCell {
	src := cells(v)
	out := make([][]layout.SourceCell, len(src))
	for i, row := range src {
		out[i] = make([]layout.SourceCell, len(row))
		for j, c := range row {
			out[i][j] = layout.SourceCell{Text: c.text, ColSpan: c.colspan, RowSpan: c.rowspan, Style: c.style}
		}
	}
	return out
}

func tableFrame(o opts) builder.TableFrame {
	return builder.TableFrame{X: o.measure("x"), Y: o.measure("y"), W: o.measure("w", "cx"), H: o.measure("h", "cy")}
}

func tableOptions(o opts) builder.TableOptions {
	return builder.TableOptions{
		ColW:        o.floats("colW"),
		RowH:        o.floats("rowH"),
		CellOptions: cellOptions(o),
	}
}

// master reads {title, bkgd, images, objects, slideNumber, margin}. bkgd is
// a color or {path, data}; objects hold {text: {text, options}} or
// {line: {x, y, w, h, line, line_size}}.
func master(v interface{}) *builder.MasterTemplate {
	o, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	m := opts(o)
	sn, hasNumber := m.get("slideNumber")
	t := &builder.MasterTemplate{
		Title:       m.str("title"),
		SlideNumber: hasNumber && sn != false,
		Margin:      m.floats("margin"),
	}
	switch bg := o["bkgd"].(type) {
	case string:
		t.Background = &builder.MasterBackground{Color: bg}
	case map[string]interface{}:
		t.Background = &builder.MasterBackground{Path: imageSource(bg)}
	}
	if list, ok := o["images"].([]interface{}); ok {
		for _, item := range list {
			im := asOpts(item)
			t.Images = append(t.Images, builder.MasterImage{
				Path: imageSource(im),
				X:    im.num("x"),
				Y:    im.num("y"),
				W:    im.num("w", "cx"),
				H:    im.num("h", "cy"),
			})
		}
	}
	if list, ok := o["objects"].([]interface{}); ok {
		for _, item := range list {
			obj := asOpts(item)
			if txt, ok := obj["text"]; ok {
				to := asOpts(txt)
				t.Shapes = append(t.Shapes, builder.MasterShape{
					Kind:    builder.MasterText,
					Text:    to.str("text"),
					Options: textOptions(asOpts(to["options"])),
				})
			}
			if line, ok := obj["line"]; ok {
				t.Shapes = append(t.Shapes, builder.MasterShape{
					Kind:    builder.MasterLine,
					Options: builder.TextOptions{ShapeOptions: shapeOptions(asOpts(line))},
				})
			}
		}
	}
	return t
}

// imageSource is the path of an image object, or its data URL.
func imageSource(o opts) string {
	return o.str("path", "data")
}
