package layout

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/wudi/pptxkit/builder"
	"github.com/wudi/pptxkit/units"
)

const (
	monospaceFace = "Courier New"
	bullet        = "• "
	blockSpacing  = units.EMU / 10
)

// RenderMarkdown renders markdown as slides. A level-one heading or a
// thematic break starts a new slide; other blocks stack down the slide and
// flow onto a new one when they no longer fit. Tables are paginated.
func (e *Engine) RenderMarkdown(source string) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))
	src := []byte(source)
	doc := md.Parser().Parse(text.NewReader(src))

	e.current = nil
	err := e.walkMarkdown(doc, src)
	e.current = nil
	return err
}

func (e *Engine) walkMarkdown(node ast.Node, source []byte) error {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Heading:
			e.renderMarkdownHeading(n, source)
		case *ast.Paragraph, *ast.TextBlock:
			e.renderBlock(inlineRuns(n, source, e.DefaultFontSize), e.DefaultFontSize, 0)
		case *ast.List:
			e.renderMarkdownList(n, source, 0)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			e.renderMarkdownCode(n, source)
		case *ast.Blockquote:
			if err := e.walkMarkdown(n, source); err != nil {
				return err
			}
		case *ast.ThematicBreak:
			e.newSlide()
		case *extast.Table:
			if err := e.renderMarkdownTable(n, source); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) newSlide() {
	e.current = e.b.AddSlide(e.Master)
	e.cursorY = units.ToEMU(e.Margins.Top)
}

func (e *Engine) ensureSlide() {
	if e.current == nil {
		e.newSlide()
	}
}

func (e *Engine) contentWidth() int64 {
	return e.b.Layout().Width - units.ToEMU(e.Margins.Left+e.Margins.Right)
}

func (e *Engine) bottom() int64 {
	return e.b.Layout().Height - units.ToEMU(e.Margins.Bottom)
}

// blockHeight estimates the height of runs wrapped into the content width.
func (e *Engine) blockHeight(runs []builder.TextRun, size float64, indent int) int64 {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
		if r.Options != nil && r.Options.BreakLine {
			sb.WriteByte('\n')
		}
	}
	widthPt := float64(e.contentWidth()-int64(indent)*units.EMU/2) / units.OnePoint
	n := len(Lines(sb.String(), size, widthPt, e.Measurer))
	return int64(max(n, 1)) * units.LineHeight(size)
}

func (e *Engine) renderBlock(runs []builder.TextRun, size float64, indent int) {
	if len(runs) == 0 {
		return
	}
	e.ensureSlide()
	h := e.blockHeight(runs, size, indent)
	if e.cursorY+h > e.bottom() && len(e.current.Slide().Shapes) > 0 {
		e.newSlide()
	}
	left := e.Margins.Left + float64(indent)*0.5
	e.current.AddTextRuns(runs, builder.TextOptions{
		ShapeOptions: builder.ShapeOptions{
			X: units.In(left),
			Y: units.Raw(e.cursorY),
			W: units.Raw(e.contentWidth() - int64(indent)*units.EMU/2),
			H: units.Raw(h),
		},
		FontSize:  size,
		VAlign:    "top",
		IsTextBox: true,
		Inset:     new(float64),
	})
	e.cursorY += h + blockSpacing
}

func (e *Engine) renderMarkdownHeading(n *ast.Heading, source []byte) {
	size := e.DefaultFontSize * 1.25
	switch n.Level {
	case 1:
		size = e.DefaultFontSize * 2
		e.newSlide()
	case 2:
		size = e.DefaultFontSize * 1.5
	}
	runs := inlineRuns(n, source, size)
	for i := range runs {
		if runs[i].Options == nil {
			runs[i].Options = &builder.RunOptions{FontSize: size}
		}
		runs[i].Options.Bold = true
	}
	e.renderBlock(runs, size, 0)
}

func (e *Engine) renderMarkdownList(n *ast.List, source []byte, depth int) {
	idx := n.Start
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		marker := bullet
		if n.IsOrdered() {
			marker = itoa(idx) + ". "
			idx++
		}
		for block := item.FirstChild(); block != nil; block = block.NextSibling() {
			if sub, ok := block.(*ast.List); ok {
				e.renderMarkdownList(sub, source, depth+1)
				continue
			}
			runs := inlineRuns(block, source, e.DefaultFontSize)
			if marker != "" {
				runs = append([]builder.TextRun{{Text: marker}}, runs...)
				marker = ""
			}
			e.renderBlock(runs, e.DefaultFontSize, depth+1)
		}
	}
}

func (e *Engine) renderMarkdownCode(n ast.Node, source []byte) {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	code := strings.TrimRight(sb.String(), "\n")
	size := e.DefaultFontSize * 0.9
	e.renderBlock([]builder.TextRun{{
		Text:    code,
		Options: &builder.RunOptions{FontFace: monospaceFace, FontSize: size},
	}}, size, 0)
}

func (e *Engine) renderMarkdownTable(n *extast.Table, source []byte) error {
	var t SourceTable
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []SourceCell
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			c := SourceCell{Text: plainText(cell, source), Width: 1}
			if tc, ok := cell.(*extast.TableCell); ok {
				c.Style.Align = alignmentName(tc.Alignment)
			}
			if _, ok := row.(*extast.TableHeader); ok {
				c.Style.Bold = true
			}
			cells = append(cells, c)
		}
		if _, ok := row.(*extast.TableHeader); ok {
			t.Head = append(t.Head, cells)
		} else {
			t.Body = append(t.Body, cells)
		}
	}
	_, err := e.AddSlidesForTable(t, SlidesForTableOptions{AddHeaderToEach: true})
	e.current = nil
	return err
}

func alignmentName(a extast.Alignment) string {
	switch a {
	case extast.AlignLeft:
		return "left"
	case extast.AlignCenter:
		return "center"
	case extast.AlignRight:
		return "right"
	}
	return ""
}

// inlineRuns flattens the inline children of n into runs: strong text is
// bold, links are underlined, code spans use a monospace face.
func inlineRuns(n ast.Node, source []byte, size float64) []builder.TextRun {
	var runs []builder.TextRun
	var walk func(ast.Node, builder.RunOptions)
	walk = func(node ast.Node, f builder.RunOptions) {
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			switch v := c.(type) {
			case *ast.Text:
				txt := string(v.Segment.Value(source))
				if v.SoftLineBreak() {
					txt += " "
				}
				opts := f
				opts.BreakLine = v.HardLineBreak()
				runs = append(runs, builder.TextRun{Text: txt, Options: &opts})
			case *ast.String:
				opts := f
				runs = append(runs, builder.TextRun{Text: string(v.Value), Options: &opts})
			case *ast.CodeSpan:
				opts := f
				opts.FontFace = monospaceFace
				runs = append(runs, builder.TextRun{Text: plainText(v, source), Options: &opts})
			case *ast.Emphasis:
				next := f
				if v.Level >= 2 {
					next.Bold = true
				}
				walk(v, next)
			case *ast.Link:
				next := f
				next.Underline = true
				walk(v, next)
			case *ast.AutoLink:
				opts := f
				opts.Underline = true
				runs = append(runs, builder.TextRun{Text: string(v.Label(source)), Options: &opts})
			default:
				walk(c, f)
			}
		}
	}
	walk(n, builder.RunOptions{FontSize: size})
	return runs
}

// plainText concatenates the text segments below n.
func plainText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(source))
			if v.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

func itoa(n int) string {
	if n <= 0 {
		n = 1
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
