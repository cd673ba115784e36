package writer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wudi/pptxkit/ir/semantic"
	"github.com/wudi/pptxkit/observability"
	"github.com/wudi/pptxkit/units"
)

// ErrUnresolved is returned when a relationship still lacks its payload at
// serialization time.
var ErrUnresolved = errors.New("relationship payload not resolved")

type impl struct {
	interceptors []Interceptor
	logger       observability.Logger
	shapes       ShapeSerializer
}

func (w *impl) Write(ctx context.Context, pres *semantic.Presentation, archive ArchiveWriter, cfg Config) error {
	parts, err := w.Parts(ctx, pres, cfg)
	if err != nil {
		return err
	}
	for i := range parts {
		for _, ic := range w.interceptors {
			if err := ic.BeforeWrite(ctx, &parts[i]); err != nil {
				return fmt.Errorf("interceptor rejected %s: %w", parts[i].Path, err)
			}
		}
	}
	if err := archive.WriteParts(ctx, parts); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	for _, ic := range w.interceptors {
		if err := ic.AfterWrite(ctx, parts); err != nil {
			return err
		}
	}
	return nil
}

// Parts serializes the presentation. Order: manifest, package rels, document
// properties, presentation rels, per-slide layout and slide parts, master,
// media, theme, presentation and the ppt-level settings.
func (w *impl) Parts(ctx context.Context, pres *semantic.Presentation, cfg Config) ([]Part, error) {
	if pres == nil {
		return nil, errors.New("nil presentation")
	}
	cfg = withDefaults(cfg)
	layout := pres.Layout
	if layout.Width == 0 || layout.Height == 0 {
		layout = units.DefaultLayout()
	}
	snapshot := *pres
	snapshot.Layout = layout

	now := cfg.Now()
	created, modified := pres.Created, pres.Modified
	if created.IsZero() {
		created = now
	}
	if modified.IsZero() {
		modified = created
	}

	var parts []Part
	xml := func(path string, root *Node) {
		parts = append(parts, Part{Path: path, Content: Document(root)})
	}

	xml("[Content_Types].xml", contentTypes(&snapshot))
	xml("_rels/.rels", rootRels())
	xml("docProps/app.xml", appProps(&snapshot, cfg))
	xml("docProps/core.xml", coreProps(&snapshot, created, modified))
	xml("ppt/_rels/presentation.xml.rels", presentationRels(&snapshot))

	for i, s := range pres.Slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.Index != i+1 {
			return nil, fmt.Errorf("slide at position %d has index %d", i+1, s.Index)
		}
		node, err := slide(s, layout, w.shapes)
		if err != nil {
			return nil, err
		}
		xml(fmt.Sprintf("ppt/slideLayouts/slideLayout%d.xml", s.Index), slideLayout())
		xml(fmt.Sprintf("ppt/slideLayouts/_rels/slideLayout%d.xml.rels", s.Index), slideLayoutRels())
		xml(fmt.Sprintf("ppt/slides/slide%d.xml", s.Index), node)
		xml(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", s.Index), slideRels(s))
	}

	xml("ppt/slideMasters/slideMaster1.xml", slideMaster(len(pres.Slides)))
	xml("ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRels(len(pres.Slides)))

	media := 0
	for _, s := range pres.Slides {
		for _, r := range s.Rels {
			if !r.Resolved() {
				return nil, fmt.Errorf("slide %d %s (%s): %w", s.Index, r.RID(), r.Path, ErrUnresolved)
			}
			parts = append(parts, Part{Path: r.PartName(), Content: r.Data, Binary: true})
			media++
		}
	}

	xml("ppt/theme/theme1.xml", theme())
	xml("ppt/presentation.xml", presentation(&snapshot))
	xml("ppt/presProps.xml", presProps())
	xml("ppt/tableStyles.xml", tableStyles())
	xml("ppt/viewProps.xml", viewProps())

	w.logger.Debug("package assembled",
		observability.Int("slides", len(pres.Slides)),
		observability.Int("media", media),
		observability.Int("parts", len(parts)),
	)
	return parts, nil
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Application == "" {
		cfg.Application = def.Application
	}
	if cfg.AppVersion == "" {
		cfg.AppVersion = def.AppVersion
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return cfg
}
