package builder

import (
	"path"
	"strings"

	"github.com/wudi/pptxkit/ir/semantic"
	"github.com/wudi/pptxkit/observability"
	"github.com/wudi/pptxkit/units"
)

// Placed images are stored as png regardless of the source format.
const pictureExtension = "png"

// AddImage places an image. Width and height default to 1in; when both are
// unset the picture takes its natural size once the payload is loaded.
// data, when non-nil, is used instead of loading path.
func (p *slideBuilderImpl) AddImage(src string, x, y, w, h units.Measure, data []byte) SlideBuilder {
	if !hasExtension(src) && len(data) == 0 {
		p.warn("image path needs an extension", observability.String("path", src))
		return p
	}
	l := p.parent.layout
	rel := p.addRel(src, pictureExtension, data)
	p.slide.Shapes = append(p.slide.Shapes, &semantic.Picture{
		Frame: semantic.Frame{
			X:  x.ResolveOr(units.AxisX, l, 0),
			Y:  y.ResolveOr(units.AxisY, l, 0),
			CX: w.ResolveOr(units.AxisX, l, units.EMU),
			CY: h.ResolveOr(units.AxisY, l, units.EMU),
		},
		Rel:      rel,
		Descr:    imageDescr(src),
		AutoSize: !w.IsSet() && !h.IsSet(),
	})
	return p
}

// addRel appends a relationship with the next slide-local id and the next
// presentation-wide media number.
func (p *slideBuilderImpl) addRel(src, ext string, data []byte) *semantic.Relationship {
	rel := &semantic.Relationship{
		ID:         p.slide.NextRelID(),
		MediaIndex: p.parent.nextMedia(),
		Extension:  ext,
		Path:       src,
		Inline:     data,
	}
	p.slide.Rels = append(p.slide.Rels, rel)
	return rel
}

// hasExtension accepts data URLs and paths whose final element carries a dot.
func hasExtension(src string) bool {
	if src == "" {
		return false
	}
	if strings.HasPrefix(src, "data:image/") {
		return true
	}
	return strings.Contains(path.Base(src), ".")
}

// backgroundExtension keeps jpeg backgrounds as jpeg; everything else is png.
func backgroundExtension(src string) string {
	if strings.HasPrefix(src, "data:image/") {
		mime := strings.TrimPrefix(src, "data:image/")
		if i := strings.IndexAny(mime, ";,"); i >= 0 {
			mime = mime[:i]
		}
		return normalizeExtension(mime)
	}
	return normalizeExtension(strings.TrimPrefix(path.Ext(src), "."))
}

func normalizeExtension(ext string) string {
	switch strings.ToLower(ext) {
	case "jpg", "jpeg":
		return "jpeg"
	}
	return "png"
}

func imageDescr(src string) string {
	if strings.HasPrefix(src, "data:") {
		return "image"
	}
	return path.Base(src)
}
