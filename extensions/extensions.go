// Package extensions runs ordered passes over a finished presentation before
// it is exported: inspectors report, sanitizers repair, transformers rewrite
// and validators reject.
package extensions

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/wudi/pptxkit/ir/semantic"
	"github.com/wudi/pptxkit/observability"
)

// ErrInvalid is returned by Hub.Execute when a validator reports errors.
var ErrInvalid = errors.New("presentation failed validation")

type Phase int

const (
	PhaseInspect Phase = iota
	PhaseSanitize
	PhaseTransform
	PhaseValidate
)

func (p Phase) String() string { return []string{"Inspect", "Sanitize", "Transform", "Validate"}[p] }

type Extension interface {
	Name() string
	Phase() Phase
	Priority() int
	Execute(ctx context.Context, pres *semantic.Presentation) error
}

// Inspector is an extension that inspects the presentation and produces a report.
type Inspector interface {
	Extension
	Inspect(ctx context.Context, pres *semantic.Presentation) (*InspectionReport, error)
}

// Sanitizer is an extension that cleans up the presentation in place.
type Sanitizer interface {
	Extension
	Sanitize(ctx context.Context, pres *semantic.Presentation) (*SanitizationReport, error)
}

type Transformer interface {
	Extension
	Transform(ctx context.Context, pres *semantic.Presentation) error
}

type Validator interface {
	Extension
	Validate(ctx context.Context, pres *semantic.Presentation) (*ValidationReport, error)
}

type InspectionReport struct {
	Title      string
	Layout     string
	SlideCount int
	ShapeCount int
	TextRuns   int
	TableCount int
	CellCount  int
	ImageCount int // pictures and background images
	MediaCount int // media parts the package will carry
}

type SanitizationReport struct {
	ItemsFixed int
	Actions    []SanitizationAction
}

type SanitizationAction struct {
	Type        string
	Description string
	Slide       int // 0 for presentation properties
}

type ValidationReport struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationWarning
}

type ValidationError struct {
	Code     string
	Message  string
	Location string
}

type ValidationWarning struct {
	Code     string
	Message  string
	Location string
}

type Hub interface {
	Register(ext Extension) error
	Execute(ctx context.Context, pres *semantic.Presentation) error
	Extensions(phase Phase) []Extension
}

type HubImpl struct {
	exts   map[Phase][]Extension
	logger observability.Logger
}

func NewHub(logger observability.Logger) *HubImpl {
	if logger == nil {
		logger = observability.NopLogger{}
	}
	return &HubImpl{exts: make(map[Phase][]Extension), logger: logger}
}

func (h *HubImpl) Register(ext Extension) error {
	if ext == nil {
		return errors.New("nil extension")
	}
	ph := ext.Phase()
	h.exts[ph] = append(h.exts[ph], ext)
	sort.SliceStable(h.exts[ph], func(i, j int) bool { return h.exts[ph][i].Priority() < h.exts[ph][j].Priority() })
	return nil
}

// Execute runs every phase in order. Inspection and sanitization reports are
// logged; validator errors stop the run.
func (h *HubImpl) Execute(ctx context.Context, pres *semantic.Presentation) error {
	phases := []Phase{PhaseInspect, PhaseSanitize, PhaseTransform, PhaseValidate}
	for _, ph := range phases {
		for _, e := range h.exts[ph] {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := h.run(ctx, e, pres); err != nil {
				return fmt.Errorf("%s: %w", e.Name(), err)
			}
		}
	}
	return nil
}

func (h *HubImpl) run(ctx context.Context, e Extension, pres *semantic.Presentation) error {
	log := h.logger.With(observability.String("extension", e.Name()))
	switch x := e.(type) {
	case Inspector:
		rep, err := x.Inspect(ctx, pres)
		if err != nil {
			return err
		}
		log.Debug("inspected",
			observability.Int(observability.MetricSlideCount, rep.SlideCount),
			observability.Int("shapes", rep.ShapeCount),
			observability.Int("tables", rep.TableCount),
			observability.Int(observability.MetricMediaCount, rep.MediaCount),
		)
	case Sanitizer:
		rep, err := x.Sanitize(ctx, pres)
		if err != nil {
			return err
		}
		if rep.ItemsFixed > 0 {
			log.Warn("sanitized", observability.Int("fixed", rep.ItemsFixed))
		}
	case Validator:
		rep, err := x.Validate(ctx, pres)
		if err != nil {
			return err
		}
		for _, w := range rep.Warnings {
			log.Warn(w.Message, observability.String("code", w.Code), observability.String("location", w.Location))
		}
		if !rep.Valid {
			for _, ve := range rep.Errors {
				log.Error(ve.Message, observability.String("code", ve.Code), observability.String("location", ve.Location))
			}
			return fmt.Errorf("%w: %d errors", ErrInvalid, len(rep.Errors))
		}
	default:
		return e.Execute(ctx, pres)
	}
	return nil
}

func (h *HubImpl) Extensions(phase Phase) []Extension {
	return append([]Extension(nil), h.exts[phase]...)
}
