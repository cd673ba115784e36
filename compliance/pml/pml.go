// Package pml validates PresentationML structure: the slide list in
// presentation.xml, its relationships, slide layouts and the slide count
// reported in the extended properties.
package pml

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"strconv"

	"github.com/wudi/pptxkit/compliance"
	"github.com/wudi/pptxkit/writer"
)

const Standard = "PresentationML"

const (
	nsR     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	relBase = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"

	presentationPart = "ppt/presentation.xml"
	appPart          = "docProps/app.xml"

	// Slide size bounds accepted by PowerPoint: 1in to 56in.
	minSlideEMU = 914400
	maxSlideEMU = 51206400
	minSlideID  = 256
	maxSlideID  = 2147483647
)

// Violation codes.
const (
	CodeNoPresentation = "PML001"
	CodeSlideCount     = "PML002" // sldIdLst, slide parts and app.xml disagree
	CodeSlideID        = "PML003"
	CodeNoLayout       = "PML004"
	CodeSlideSize      = "PML005"
	CodeSlideRel       = "PML006" // sldId r:id missing or not a slide relationship
	CodeNoMaster       = "PML007"
)

var slidePart = regexp.MustCompile(`^ppt/slides/slide[0-9]+\.xml$`)

type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

type slideRef struct {
	id  string
	rid string
}

type presentationInfo struct {
	slides  []slideRef
	masters int
	cx, cy  int64
	hasSize bool
}

func (v *Validator) Validate(ctx context.Context, parts []writer.Part) (*compliance.Report, error) {
	rep := compliance.NewReport(Standard)
	index := compliance.Index(parts)

	pres, ok := index[presentationPart]
	if !ok {
		rep.Error(CodeNoPresentation, "", "%s is missing", presentationPart)
		return rep, nil
	}
	info, err := scanPresentation(pres.Content)
	if err != nil {
		rep.Error(CodeNoPresentation, presentationPart, "cannot decode: %v", err)
		return rep, nil
	}

	if info.masters == 0 {
		rep.Error(CodeNoMaster, presentationPart, "sldMasterIdLst is empty")
	}
	if !info.hasSize {
		rep.Error(CodeSlideSize, presentationPart, "sldSz is missing")
	} else if !inRange(info.cx) || !inRange(info.cy) {
		rep.Error(CodeSlideSize, presentationPart, "slide size %dx%d outside %d..%d EMU", info.cx, info.cy, minSlideEMU, maxSlideEMU)
	}

	var presRels map[string]compliance.Rel
	if p, ok := index[compliance.RelsFor(presentationPart)]; ok {
		rels, err := compliance.ParseRels(p.Content)
		if err != nil {
			rep.Error(CodeSlideRel, p.Path, "cannot decode: %v", err)
		}
		presRels = make(map[string]compliance.Rel, len(rels))
		for _, r := range rels {
			presRels[r.ID] = r
		}
	}

	seen := map[int64]bool{}
	for _, s := range info.slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, err := strconv.ParseInt(s.id, 10, 64)
		switch {
		case err != nil || id < minSlideID || id > maxSlideID:
			rep.Error(CodeSlideID, presentationPart, "slide id %q outside %d..%d", s.id, minSlideID, maxSlideID)
		case seen[id]:
			rep.Error(CodeSlideID, presentationPart, "slide id %d repeated", id)
		}
		seen[id] = true

		r, ok := presRels[s.rid]
		if !ok || r.Type != relBase+"slide" {
			rep.Error(CodeSlideRel, presentationPart, "slide %s: %s is not a slide relationship", s.id, s.rid)
			continue
		}
		checkLayout(rep, index, compliance.ResolveTarget(presentationPart, r.Target))
	}

	slideParts := 0
	for _, p := range parts {
		if slidePart.MatchString(p.Path) {
			slideParts++
		}
	}
	if slideParts != len(info.slides) {
		rep.Error(CodeSlideCount, presentationPart, "%d slides listed, %d slide parts", len(info.slides), slideParts)
	}
	if app, ok := index[appPart]; ok {
		if n, ok := appSlides(app.Content); ok && n != len(info.slides) {
			rep.Error(CodeSlideCount, appPart, "Slides is %d, presentation lists %d", n, len(info.slides))
		}
	}
	return rep, nil
}

func checkLayout(rep *compliance.Report, index map[string]writer.Part, slide string) {
	relsName := compliance.RelsFor(slide)
	p, ok := index[relsName]
	if !ok {
		rep.Error(CodeNoLayout, slide, "no relationships part")
		return
	}
	rels, err := compliance.ParseRels(p.Content)
	if err != nil {
		rep.Error(CodeNoLayout, relsName, "cannot decode: %v", err)
		return
	}
	for _, r := range rels {
		if r.Type == relBase+"slideLayout" {
			return
		}
	}
	rep.Error(CodeNoLayout, slide, "slide has no slideLayout relationship")
}

func inRange(v int64) bool { return v >= minSlideEMU && v <= maxSlideEMU }

// scanPresentation walks presentation.xml tokens. sldId carries both id and
// r:id, so attributes are told apart by namespace.
func scanPresentation(data []byte) (presentationInfo, error) {
	var info presentationInfo
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return info, nil
		}
		if err != nil {
			return info, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "sldMasterId":
			info.masters++
		case "sldId":
			var ref slideRef
			for _, a := range start.Attr {
				switch {
				case a.Name.Local == "id" && a.Name.Space == "":
					ref.id = a.Value
				case a.Name.Local == "id" && a.Name.Space == nsR:
					ref.rid = a.Value
				}
			}
			info.slides = append(info.slides, ref)
		case "sldSz":
			info.hasSize = true
			for _, a := range start.Attr {
				n, _ := strconv.ParseInt(a.Value, 10, 64)
				switch a.Name.Local {
				case "cx":
					info.cx = n
				case "cy":
					info.cy = n
				}
			}
		}
	}
}

func appSlides(data []byte) (int, bool) {
	var props struct {
		Slides *int `xml:"Slides"`
	}
	if err := xml.Unmarshal(data, &props); err != nil || props.Slides == nil {
		return 0, false
	}
	return *props.Slides, true
}
