package writer

import (
	"strconv"
	"strings"

	"github.com/wudi/pptxkit/ir/semantic"
)

func anchor(v semantic.VAlign) string {
	switch v {
	case semantic.VAlignTop:
		return "t"
	case semantic.VAlignBottom:
		return "b"
	}
	return "ctr"
}

// paragraphAlign maps to pPr/@algn. Left is the inherited default and is not written.
func paragraphAlign(a semantic.HAlign) string {
	switch a {
	case semantic.AlignCenter:
		return "ctr"
	case semantic.AlignRight:
		return "r"
	case semantic.AlignJustify:
		return "just"
	}
	return ""
}

func bodyPr(b *semantic.TextBody) *Node {
	n := El("a:bodyPr").Set("wrap", "square").Set("rtlCol", "0").Set("anchor", anchor(b.VAlign))
	if in := b.Insets; in != nil {
		n.Set("bIns", in.Bottom).Set("lIns", in.Left).Set("rIns", in.Right).Set("tIns", in.Top)
	}
	switch {
	case b.ShrinkText:
		n.Add(El("a:normAutofit").Set("fontScale", "85000").Set("lnSpcReduction", "20000"))
	case b.AutoFit:
		n.Add(El("a:spAutoFit"))
	}
	return n
}

func pPr(b *semantic.TextBody) *Node {
	algn := paragraphAlign(b.Align)
	if algn == "" && b.IndentLevel <= 0 {
		return nil
	}
	return El("a:pPr").SetIf(algn != "", "algn", algn).SetIf(b.IndentLevel > 0, "lvl", b.IndentLevel)
}

func hundredths(pt float64) int64 { return int64(pt*100 + 0.5) }

func rPr(f semantic.RunFormat) *Node {
	n := El("a:rPr").Set("lang", "en-US").
		SetIf(f.FontSize > 0, "sz", hundredths(f.FontSize)).
		SetIf(f.Bold, "b", "1").
		SetIf(f.Underline, "u", "sng")
	if f.CharSpacing != 0 {
		n.Set("spc", hundredths(f.CharSpacing)).Set("kern", "0")
	}
	n.Set("dirty", "0").Set("smtClean", "0")
	if f.Color != "" {
		n.Add(solidFill(f.Color, 0))
	}
	if f.FontFace != "" {
		n.Add(
			El("a:latin").Set("typeface", f.FontFace).Set("pitchFamily", "34").Set("charset", "0"),
			El("a:cs").Set("typeface", f.FontFace).Set("pitchFamily", "34").Set("charset", "0"),
		)
	}
	return n
}

// textBody lays runs out as paragraphs. Embedded newlines and BreakLine runs
// start a new paragraph; every paragraph repeats the body's pPr.
func textBody(b *semantic.TextBody, s *semantic.Slide) *Node {
	body := El("p:txBody", bodyPr(b), El("a:lstStyle"))
	para := El("a:p", pPr(b))
	flush := func() {
		body.Add(para)
		para = El("a:p", pPr(b))
	}
	for _, run := range b.Runs {
		if run.Field != "" {
			para.Add(field(run, s))
		} else {
			for i, line := range strings.Split(run.Text, "\n") {
				if i > 0 {
					flush()
				}
				para.Add(El("a:r", rPr(run.Format), TextEl("a:t", line)))
			}
		}
		if run.BreakLine {
			flush()
		}
	}
	para.Add(El("a:endParaRPr").Set("lang", "en-US").SetIf(b.FontSize > 0, "sz", hundredths(b.FontSize)).Set("dirty", "0"))
	body.Add(para)
	return body
}

func field(run semantic.TextRun, s *semantic.Slide) *Node {
	text := run.Text
	id := run.FieldID
	if run.Field == "slidenum" {
		id = semantic.SlideNumberFieldID
		if s != nil {
			text = strconv.Itoa(s.Index)
		}
	}
	return El("a:fld", rPr(run.Format), TextEl("a:t", text)).Set("id", id).Set("type", run.Field)
}
