package pml

import (
	"bytes"
	"context"
	"testing"

	"github.com/wudi/pptxkit/builder"
	"github.com/wudi/pptxkit/compliance"
	"github.com/wudi/pptxkit/writer"
)

func packageParts(t *testing.T, slides int, layout string) []writer.Part {
	t.Helper()
	b := builder.New(builder.WithLayout(layout))
	for i := 0; i < slides; i++ {
		b.AddSlide(nil).AddText("Slide", builder.TextOptions{})
	}
	pres, err := b.Build()
	if err != nil {
		t.Fatalf("build deck: %v", err)
	}
	parts, err := (&writer.WriterBuilder{}).Build().Parts(context.Background(), pres, writer.DefaultConfig())
	if err != nil {
		t.Fatalf("parts: %v", err)
	}
	return parts
}

func replace(parts []writer.Part, name string, content []byte) []writer.Part {
	out := append([]writer.Part{}, parts...)
	for i := range out {
		if out[i].Path == name {
			out[i].Content = content
		}
	}
	return out
}

func part(t *testing.T, parts []writer.Part, name string) []byte {
	t.Helper()
	p, ok := compliance.Index(parts)[name]
	if !ok {
		t.Fatalf("part %s missing", name)
	}
	return p.Content
}

func report(t *testing.T, parts []writer.Part) *compliance.Report {
	t.Helper()
	rep, err := NewValidator().Validate(context.Background(), parts)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	return rep
}

func TestValidateWrittenDecks(t *testing.T) {
	for _, layout := range []string{"LAYOUT_4x3", "LAYOUT_16x9", "LAYOUT_16x10", "LAYOUT_WIDE"} {
		for _, n := range []int{0, 2} {
			if rep := report(t, packageParts(t, n, layout)); !rep.Compliant {
				t.Fatalf("%s with %d slides: %v", layout, n, rep.Err())
			}
		}
	}
}

func TestValidateSlideCount(t *testing.T) {
	parts := packageParts(t, 2, "LAYOUT_16x9")
	app := bytes.Replace(part(t, parts, appPart), []byte("<Slides>2</Slides>"), []byte("<Slides>3</Slides>"), 1)
	rep := report(t, replace(parts, appPart, app))
	if rep.Compliant || !rep.Has(CodeSlideCount) {
		t.Fatalf("app slide count mismatch not reported: %+v", rep.Violations)
	}

	var fewer []writer.Part
	for _, p := range parts {
		if p.Path != "ppt/slides/slide2.xml" {
			fewer = append(fewer, p)
		}
	}
	if rep := report(t, fewer); !rep.Has(CodeSlideCount) {
		t.Fatalf("missing slide part not reported: %+v", rep.Violations)
	}
}

func TestValidateSlideLayoutRelationship(t *testing.T) {
	parts := packageParts(t, 1, "LAYOUT_16x9")
	empty := []byte(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"/>`)
	rep := report(t, replace(parts, "ppt/slides/_rels/slide1.xml.rels", empty))
	if !rep.Has(CodeNoLayout) {
		t.Fatalf("slide without layout not reported: %+v", rep.Violations)
	}
}

func TestValidatePresentationPart(t *testing.T) {
	parts := packageParts(t, 1, "LAYOUT_16x9")
	pres := part(t, parts, presentationPart)

	cases := []struct {
		name     string
		old, new string
		code     string
	}{
		{"slide id below range", `<p:sldId id="256"`, `<p:sldId id="12"`, CodeSlideID},
		{"unknown relationship", `r:id="rId2"`, `r:id="rId99"`, CodeSlideRel},
		{"tiny slide", `<p:sldSz cx="9144000"`, `<p:sldSz cx="100"`, CodeSlideSize},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !bytes.Contains(pres, []byte(tc.old)) {
				t.Fatalf("fixture lacks %s", tc.old)
			}
			mutated := bytes.Replace(pres, []byte(tc.old), []byte(tc.new), 1)
			if rep := report(t, replace(parts, presentationPart, mutated)); !rep.Has(tc.code) {
				t.Fatalf("expected %s, got %+v", tc.code, rep.Violations)
			}
		})
	}

	var noPres []writer.Part
	for _, p := range parts {
		if p.Path != presentationPart {
			noPres = append(noPres, p)
		}
	}
	if rep := report(t, noPres); !rep.Has(CodeNoPresentation) {
		t.Fatalf("missing presentation not reported")
	}
}
