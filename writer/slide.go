package writer

import (
	"fmt"

	"github.com/wudi/pptxkit/ir/semantic"
	"github.com/wudi/pptxkit/units"
)

// Slide number placeholder geometry.
const (
	slideNumberShapeID = 25
	slideNumberX       = units.EMU * 3 / 10
	slideNumberY       = units.EMU * 52 / 10
	slideNumberCX      = 400000
	slideNumberCY      = 300000
)

// SlideContext is the per-slide state shape serializers see.
type SlideContext struct {
	Slide  *semantic.Slide
	Layout units.Layout
	// ShapeIndex is the zero-based position of the shape in the slide.
	ShapeIndex int
	// TableNum counts tables on the slide starting at 1.
	TableNum int
}

// ShapeSerializer maps one shape descriptor to its markup.
type ShapeSerializer interface {
	Serialize(shape semantic.Shape, ctx *SlideContext) (*Node, error)
}

type defaultShapeSerializer struct{}

func newShapeSerializer() ShapeSerializer { return defaultShapeSerializer{} }

func (s defaultShapeSerializer) Serialize(shape semantic.Shape, ctx *SlideContext) (*Node, error) {
	switch v := shape.(type) {
	case *semantic.TextShape:
		return textShape(v, ctx), nil
	case *semantic.AutoShape:
		return autoShape(v, ctx), nil
	case *semantic.Picture:
		return picture(v, ctx)
	case *semantic.Table:
		n := table(v, ctx)
		ctx.TableNum++
		return n, nil
	}
	return nil, fmt.Errorf("unsupported shape %T", shape)
}

// slide builds slideN.xml.
func slide(s *semantic.Slide, layout units.Layout, shapes ShapeSerializer) (*Node, error) {
	csld := El("p:cSld").Set("name", s.Name)
	if bg, err := background(s); err != nil {
		return nil, err
	} else if bg != nil {
		csld.Add(bg)
	}

	tree := El("p:spTree",
		El("p:nvGrpSpPr",
			El("p:cNvPr").Set("id", 1).Set("name", ""),
			El("p:cNvGrpSpPr"),
			El("p:nvPr"),
		),
		El("p:grpSpPr", El("a:xfrm",
			El("a:off").Set("x", 0).Set("y", 0),
			El("a:ext").Set("cx", 0).Set("cy", 0),
			El("a:chOff").Set("x", 0).Set("y", 0),
			El("a:chExt").Set("cx", 0).Set("cy", 0),
		)),
	)
	if s.SlideNumber {
		tree.Add(slideNumberShape())
	}

	ctx := &SlideContext{Slide: s, Layout: layout, TableNum: 1}
	for i, sh := range s.Shapes {
		ctx.ShapeIndex = i
		n, err := shapes.Serialize(sh, ctx)
		if err != nil {
			return nil, fmt.Errorf("slide %d shape %d: %w", s.Index, i+1, err)
		}
		tree.Add(n)
	}
	csld.Add(tree)

	return pml("p:sld").Add(
		csld,
		El("p:clrMapOvr", El("a:masterClrMapping")),
	), nil
}

func background(s *semantic.Slide) (*Node, error) {
	bg := s.Background
	if bg == nil {
		return nil, nil
	}
	if bg.Image != nil {
		if !hasRel(s, bg.Image) {
			return nil, fmt.Errorf("slide %d: background %s not in slide relationships", s.Index, bg.Image.RID())
		}
		return El("p:bg", El("p:bgPr",
			El("a:blipFill",
				El("a:blip", El("a:lum")).Set("r:embed", bg.Image.RID()),
				El("a:srcRect"),
				El("a:stretch", El("a:fillRect")),
			).Set("dpi", 0).Set("rotWithShape", 1),
			El("a:effectLst"),
		)), nil
	}
	if bg.Color == "" {
		return nil, nil
	}
	return El("p:bg", El("p:bgPr", solidFill(bg.Color, 0), El("a:effectLst"))), nil
}

func hasRel(s *semantic.Slide, r *semantic.Relationship) bool {
	for _, x := range s.Rels {
		if x == r {
			return true
		}
	}
	return false
}

func slideNumberShape() *Node {
	return El("p:sp",
		El("p:nvSpPr",
			El("p:cNvPr").Set("id", slideNumberShapeID).Set("name", fmt.Sprintf("Shape %d", slideNumberShapeID)),
			El("p:cNvSpPr"),
			El("p:nvPr", El("p:ph").Set("type", "sldNum").Set("sz", "quarter").Set("idx", "4294967295")),
		),
		El("p:spPr",
			El("a:xfrm",
				El("a:off").Set("x", int64(slideNumberX)).Set("y", int64(slideNumberY)),
				El("a:ext").Set("cx", slideNumberCX).Set("cy", slideNumberCY),
			),
			El("a:prstGeom", El("a:avLst")).Set("prst", "rect"),
			El("a:extLst", El("a:ext",
				El("ma14:wrappingTextBoxFlag").
					Set("val", "0").
					Set("xmlns:ma14", "http://schemas.microsoft.com/office/mac/drawingml/2011/main"),
			).Set("uri", "{C572A759-6A51-4108-AA02-DFA0A04FC94B}")),
		),
		El("p:txBody",
			El("a:bodyPr"),
			El("a:lstStyle"),
			El("a:p",
				El("a:pPr"),
				El("a:fld").Set("id", semantic.SlideNumberFieldID).Set("type", "slidenum"),
			),
		),
	)
}

// solidFill emits a solidFill; transparency is a percentage.
func solidFill(color string, transparency int) *Node {
	clr := El("a:srgbClr").Set("val", color)
	if transparency > 0 {
		clr.Add(El("a:alpha").Set("val", (100-transparency)*1000))
	}
	return El("a:solidFill", clr)
}

func xfrm(f semantic.Frame) *Node {
	n := El("a:xfrm").
		SetIf(f.FlipH, "flipH", "1").
		SetIf(f.FlipV, "flipV", "1").
		SetIf(f.Rotate != 0, "rot", f.Rot())
	return n.Add(
		El("a:off").Set("x", f.X).Set("y", f.Y),
		El("a:ext").Set("cx", f.CX).Set("cy", f.CY),
	)
}

func nvSpPr(ctx *SlideContext, textBox bool) *Node {
	return El("p:nvSpPr",
		El("p:cNvPr").Set("id", ctx.ShapeIndex+2).Set("name", fmt.Sprintf("Object %d", ctx.ShapeIndex+1)),
		El("p:cNvSpPr").SetIf(textBox, "txBox", "1"),
		El("p:nvPr"),
	)
}

func spPr(f semantic.Frame, st semantic.ShapeStyle) *Node {
	preset := st.Preset
	if preset == "" {
		preset = "rect"
	}
	n := El("p:spPr",
		xfrm(f),
		El("a:prstGeom", El("a:avLst")).Set("prst", preset),
	)
	if st.Fill != "" {
		n.Add(solidFill(st.Fill, st.Transparency))
	} else {
		n.Add(El("a:noFill"))
	}
	if st.Line != "" {
		ln := El("a:ln").SetIf(st.LineSize > 0, "w", units.Points(st.LineSize))
		ln.Add(solidFill(st.Line, 0))
		if st.LineHead != "" {
			ln.Add(El("a:headEnd").Set("type", st.LineHead))
		}
		if st.LineTail != "" {
			ln.Add(El("a:tailEnd").Set("type", st.LineTail))
		}
		n.Add(ln)
	}
	if len(st.Shadows) > 0 {
		effects := El("a:effectLst")
		for _, sh := range st.Shadows {
			effects.Add(shadow(sh))
		}
		n.Add(effects)
	}
	return n
}

func shadow(s semantic.Shadow) *Node {
	name := "a:outerShdw"
	if s.Inner {
		name = "a:innerShdw"
	}
	color := s.Color
	if color == "" {
		color = "000000"
	}
	clr := El("a:srgbClr").Set("val", color)
	if s.Opacity > 0 && s.Opacity < 1 {
		clr.Add(El("a:alpha").Set("val", int64(s.Opacity*100000)))
	}
	return El(name, clr).
		Set("blurRad", units.Points(s.Blur)).
		Set("dist", units.Points(s.Offset)).
		Set("dir", int64(s.Angle*60000)).
		SetIf(!s.Inner, "rotWithShape", "0")
}

func autoShape(a *semantic.AutoShape, ctx *SlideContext) *Node {
	return El("p:sp", nvSpPr(ctx, false), spPr(a.Frame, a.Style))
}

func textShape(t *semantic.TextShape, ctx *SlideContext) *Node {
	return El("p:sp",
		nvSpPr(ctx, t.TextBox),
		spPr(t.Frame, t.Style),
		textBody(&t.Body, ctx.Slide),
	)
}

func picture(p *semantic.Picture, ctx *SlideContext) (*Node, error) {
	if p.Rel == nil || !hasRel(ctx.Slide, p.Rel) {
		return nil, fmt.Errorf("picture %q has no relationship on slide %d", p.Descr, ctx.Slide.Index)
	}
	return El("p:pic",
		El("p:nvPicPr",
			El("p:cNvPr").
				Set("id", ctx.ShapeIndex+2).
				Set("name", fmt.Sprintf("Object %d", ctx.ShapeIndex+1)).
				Set("descr", p.Descr),
			El("p:cNvPicPr", El("a:picLocks").Set("noChangeAspect", "1")),
			El("p:nvPr"),
		),
		El("p:blipFill",
			El("a:blip").Set("r:embed", p.Rel.RID()).Set("cstate", "print"),
			El("a:stretch", El("a:fillRect")),
		),
		El("p:spPr",
			xfrm(p.Frame),
			El("a:prstGeom", El("a:avLst")).Set("prst", "rect"),
		),
	), nil
}
