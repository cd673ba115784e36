package writer

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/wudi/pptxkit/builder"
	"github.com/wudi/pptxkit/ir/semantic"
	"github.com/wudi/pptxkit/units"
)

// xmlElem is a decoded element tree used to inspect parts.
type xmlElem struct {
	Name     xml.Name
	Attrs    map[string]string
	Text     string
	Children []*xmlElem
}

func parseXML(t *testing.T, data []byte) *xmlElem {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(data))
	var stack []*xmlElem
	var root *xmlElem
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		switch v := tok.(type) {
		case xml.StartElement:
			e := &xmlElem{Name: v.Name, Attrs: map[string]string{}}
			for _, a := range v.Attr {
				e.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, e)
			} else {
				root = e
			}
			stack = append(stack, e)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(v)
			}
		}
	}
	if root == nil {
		t.Fatalf("empty document")
	}
	return root
}

func (e *xmlElem) all(local string) []*xmlElem {
	var out []*xmlElem
	var walk func(*xmlElem)
	walk = func(x *xmlElem) {
		if x.Name.Local == local {
			out = append(out, x)
		}
		for _, c := range x.Children {
			walk(c)
		}
	}
	walk(e)
	return out
}

func fixedConfig() Config {
	cfg := DefaultConfig()
	cfg.Now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return cfg
}

var pngStub = []byte("\x89PNG\r\n\x1a\nstub")

// resolveAll stands in for the resource resolver.
func resolveAll(p *semantic.Presentation) {
	for _, r := range p.Pending() {
		r.Data = pngStub
	}
}

func buildDeck(t *testing.T, slides int) *semantic.Presentation {
	t.Helper()
	b := builder.New().SetTitle("Deck")
	for i := 0; i < slides; i++ {
		b.AddSlide(nil).AddText(fmt.Sprintf("slide %d", i+1), builder.TextOptions{}).Finish()
	}
	pres, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return pres
}

func writeParts(t *testing.T, pres *semantic.Presentation) *MemoryArchive {
	t.Helper()
	arch := &MemoryArchive{}
	w := (&WriterBuilder{}).WithInterceptor(WellFormedInterceptor{}).Build()
	if err := w.Write(context.Background(), pres, arch, fixedConfig()); err != nil {
		t.Fatalf("write: %v", err)
	}
	return arch
}

func part(t *testing.T, arch *MemoryArchive, path string) *xmlElem {
	t.Helper()
	p, ok := arch.Part(path)
	if !ok {
		t.Fatalf("missing part %s", path)
	}
	return parseXML(t, p.Content)
}

func TestWriter_PartOrder(t *testing.T) {
	pres := buildDeck(t, 2)
	pres.Slides[1].Rels = append(pres.Slides[1].Rels, &semantic.Relationship{
		ID: 2, MediaIndex: 1, Extension: "png", Data: pngStub,
	})
	arch := writeParts(t, pres)

	var got []string
	for _, p := range arch.Parts {
		got = append(got, p.Path)
	}
	want := []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"docProps/app.xml",
		"docProps/core.xml",
		"ppt/_rels/presentation.xml.rels",
		"ppt/slideLayouts/slideLayout1.xml",
		"ppt/slideLayouts/_rels/slideLayout1.xml.rels",
		"ppt/slides/slide1.xml",
		"ppt/slides/_rels/slide1.xml.rels",
		"ppt/slideLayouts/slideLayout2.xml",
		"ppt/slideLayouts/_rels/slideLayout2.xml.rels",
		"ppt/slides/slide2.xml",
		"ppt/slides/_rels/slide2.xml.rels",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideMasters/_rels/slideMaster1.xml.rels",
		"ppt/media/image1.png",
		"ppt/theme/theme1.xml",
		"ppt/presentation.xml",
		"ppt/presProps.xml",
		"ppt/tableStyles.xml",
		"ppt/viewProps.xml",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("part order:\n%s", strings.Join(got, "\n"))
	}
}

func TestWriter_ContentTypesPerSlide(t *testing.T) {
	pres := buildDeck(t, 3)
	types := part(t, writeParts(t, pres), "[Content_Types].xml")
	counts := map[string]int{}
	for _, o := range types.all("Override") {
		name := o.Attrs["PartName"]
		switch {
		case strings.HasPrefix(name, "/ppt/slideMasters/"):
			counts["master"]++
		case strings.HasPrefix(name, "/ppt/slideLayouts/"):
			counts["layout"]++
		case strings.HasPrefix(name, "/ppt/slides/"):
			counts["slide"]++
		}
	}
	for _, k := range []string{"master", "layout", "slide"} {
		if counts[k] != 3 {
			t.Fatalf("%s overrides = %d, want 3", k, counts[k])
		}
	}
	if len(types.all("Default")) != 4 {
		t.Fatalf("defaults = %d", len(types.all("Default")))
	}
}

func TestWriter_PresentationSizeAndIDs(t *testing.T) {
	pres := buildDeck(t, 2)
	pres.Layout, _ = units.LayoutByName(units.LayoutWide)
	arch := writeParts(t, pres)

	doc := part(t, arch, "ppt/presentation.xml")
	sz := doc.all("sldSz")[0]
	if sz.Attrs["cx"] != "12191996" || sz.Attrs["cy"] != "6858000" || sz.Attrs["type"] != "custom" {
		t.Fatalf("sldSz = %v", sz.Attrs)
	}
	ids := doc.all("sldId")
	if len(ids) != 2 || ids[0].Attrs["id"] != "256" || ids[1].Attrs["id"] != "257" {
		t.Fatalf("slide ids not sequential: %d entries", len(ids))
	}

	rels := part(t, arch, "ppt/_rels/presentation.xml.rels").all("Relationship")
	if len(rels) != 1+2+4 {
		t.Fatalf("presentation rels = %d", len(rels))
	}
	for i, r := range rels {
		if r.Attrs["Id"] != fmt.Sprintf("rId%d", i+1) {
			t.Fatalf("rel %d id = %s", i, r.Attrs["Id"])
		}
	}
	app := part(t, arch, "docProps/app.xml")
	if f := app.all("PresentationFormat")[0].Text; f != "Widescreen" {
		t.Fatalf("format = %q", f)
	}
}

func TestWriter_CoreProperties(t *testing.T) {
	pres := buildDeck(t, 1)
	pres.Subject = "Q&A"
	pres.Created = time.Time{}
	pres.Modified = time.Time{}
	core := part(t, writeParts(t, pres), "docProps/core.xml")

	if got := core.all("subject")[0].Text; got != "Q&A" {
		t.Fatalf("subject = %q", got)
	}
	if got := core.all("created")[0].Text; got != "2024-01-02T03:04:05Z" {
		t.Fatalf("created = %q", got)
	}
	if got := core.all("revision")[0].Text; got != "1" {
		t.Fatalf("revision = %q", got)
	}
}

func TestWriter_TextParagraphs(t *testing.T) {
	b := builder.New()
	b.AddSlide(nil).AddText("Hello\nWorld", builder.TextOptions{Align: "center", FontSize: 14})
	pres, _ := b.Build()
	sld := part(t, writeParts(t, pres), "ppt/slides/slide1.xml")

	paras := sld.all("txBody")[0].all("p")
	if len(paras) != 2 {
		t.Fatalf("paragraphs = %d", len(paras))
	}
	for i, want := range []string{"Hello", "World"} {
		if got := paras[i].all("t")[0].Text; got != want {
			t.Fatalf("paragraph %d text = %q", i, got)
		}
		if paras[i].all("pPr")[0].Attrs["algn"] != "ctr" {
			t.Fatalf("paragraph %d lost alignment", i)
		}
	}
	if len(paras[1].all("endParaRPr")) != 1 || len(paras[0].all("endParaRPr")) != 0 {
		t.Fatalf("endParaRPr should close the last paragraph only")
	}
	if sz := sld.all("rPr")[0].Attrs["sz"]; sz != "1400" {
		t.Fatalf("run size = %q", sz)
	}
	body := sld.all("bodyPr")[0]
	if body.Attrs["anchor"] != "ctr" {
		t.Fatalf("anchor = %q", body.Attrs["anchor"])
	}
}

func TestWriter_SlideNumberField(t *testing.T) {
	b := builder.New()
	b.AddSlide(nil).Finish()
	b.AddSlide(nil).SetSlideNumber(true).AddTextRuns([]builder.TextRun{{Field: "slidenum"}}, builder.TextOptions{})
	pres, _ := b.Build()
	sld := part(t, writeParts(t, pres), "ppt/slides/slide2.xml")

	flds := sld.all("fld")
	if len(flds) != 2 {
		t.Fatalf("fields = %d", len(flds))
	}
	for _, f := range flds {
		if f.Attrs["id"] != semantic.SlideNumberFieldID || f.Attrs["type"] != "slidenum" {
			t.Fatalf("field = %v", f.Attrs)
		}
	}
	if got := flds[1].all("t")[0].Text; got != "2" {
		t.Fatalf("slide number text = %q", got)
	}
}

func TestWriter_SlideRelsSequential(t *testing.T) {
	b := builder.New()
	b.AddSlide(nil).
		AddImage("a.png", units.In(1), units.In(1), units.In(1), units.In(1), nil).
		AddImage("b.png", units.In(2), units.In(1), units.In(1), units.In(1), nil).
		SetBackgroundImage("bg.jpg", nil)
	pres, _ := b.Build()
	resolveAll(pres)
	arch := writeParts(t, pres)

	rels := part(t, arch, "ppt/slides/_rels/slide1.xml.rels").all("Relationship")
	if len(rels) != 4 {
		t.Fatalf("rels = %d", len(rels))
	}
	for i, r := range rels {
		if r.Attrs["Id"] != fmt.Sprintf("rId%d", i+1) {
			t.Fatalf("rel %d id = %s", i, r.Attrs["Id"])
		}
	}
	if rels[3].Attrs["Target"] != "../media/image3.jpeg" {
		t.Fatalf("background target = %s", rels[3].Attrs["Target"])
	}

	sld := part(t, arch, "ppt/slides/slide1.xml")
	blips := sld.all("blip")
	if len(blips) != 3 || blips[0].Attrs["embed"] != "rId4" {
		t.Fatalf("background blip should come first and reference rId4: %v", blips)
	}
	if blips[1].Attrs["embed"] != "rId2" || blips[2].Attrs["embed"] != "rId3" {
		t.Fatalf("picture blips = %v %v", blips[1].Attrs, blips[2].Attrs)
	}
	if _, ok := arch.Part("ppt/media/image3.jpeg"); !ok {
		t.Fatalf("media part missing")
	}
}

func TestWriter_UnresolvedMedia(t *testing.T) {
	b := builder.New()
	b.AddSlide(nil).AddImage("a.png", units.Measure{}, units.Measure{}, units.Measure{}, units.Measure{}, nil)
	pres, _ := b.Build()
	_, err := (&WriterBuilder{}).Build().Parts(context.Background(), pres, fixedConfig())
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
}

func TestWriter_TableMarkup(t *testing.T) {
	pt := 2.0
	b := builder.New()
	b.AddSlide(nil).AddTable([][]builder.TableCell{
		{{Text: "head", ColSpan: 2}, {Text: "side", RowSpan: 2}},
		{builder.Cell("a"), builder.Cell("b")},
	}, builder.TableFrame{}, builder.TableOptions{CellOptions: builder.CellOptions{
		Border: &semantic.Border{Sides: &[4]*semantic.BorderLine{
			{Color: "FF0000"}, nil, {Pt: &pt}, {Color: "00FF00"},
		}},
		Margin: []float64{1, 2, 3, 4},
	}})
	pres, _ := b.Build()
	sld := part(t, writeParts(t, pres), "ppt/slides/slide1.xml")

	frame := sld.all("graphicFrame")[0]
	if name := frame.all("cNvPr")[0].Attrs["name"]; name != "Table 1" {
		t.Fatalf("table name = %q", name)
	}
	if cols := frame.all("gridCol"); len(cols) != 3 {
		t.Fatalf("grid columns = %d", len(cols))
	}
	rows := frame.all("tr")
	first := rows[0].all("tc")
	if len(first) != 3 || first[0].Attrs["gridSpan"] != "2" || first[1].Attrs["hMerge"] != "1" || first[2].Attrs["rowSpan"] != "2" {
		t.Fatalf("first row = %v %v %v", first[0].Attrs, first[1].Attrs, first[2].Attrs)
	}
	second := rows[1].Children
	if len(second) != 3 || second[2].Attrs["vMerge"] != "1" {
		t.Fatalf("second row should end with a vMerge placeholder")
	}

	pr := first[0].Children[len(first[0].Children)-1]
	if pr.Name.Local != "tcPr" {
		t.Fatalf("tcPr should close the cell, got %s", pr.Name.Local)
	}
	if pr.Attrs["marL"] != fmt.Sprint(units.Points(4)) || pr.Attrs["marT"] != fmt.Sprint(units.Points(1)) {
		t.Fatalf("margins = %v", pr.Attrs)
	}
	var order []string
	for _, c := range pr.Children {
		order = append(order, c.Name.Local)
	}
	if strings.Join(order, ",") != "lnL,lnR,lnT,lnB" {
		t.Fatalf("border order = %v", order)
	}
	if pr.Children[1].Attrs["w"] != "0" {
		t.Fatalf("missing right side should be zero width")
	}
	if pr.Children[3].Attrs["w"] != fmt.Sprint(units.Points(2)) {
		t.Fatalf("bottom width = %s", pr.Children[3].Attrs["w"])
	}
	if clr := pr.Children[0].all("srgbClr")[0].Attrs["val"]; clr != "00FF00" {
		t.Fatalf("left color = %s", clr)
	}
}

func TestWriter_InterceptorRejects(t *testing.T) {
	pres := buildDeck(t, 1)
	w := (&WriterBuilder{}).WithInterceptor(rejectSlides{}).Build()
	err := w.Write(context.Background(), pres, &MemoryArchive{}, fixedConfig())
	if err == nil || !strings.Contains(err.Error(), "ppt/slides/slide1.xml") {
		t.Fatalf("expected rejection, got %v", err)
	}
}

type rejectSlides struct{}

func (rejectSlides) BeforeWrite(_ context.Context, p *Part) error {
	if strings.HasPrefix(p.Path, "ppt/slides/slide") {
		return errors.New("no slides")
	}
	return nil
}

func (rejectSlides) AfterWrite(context.Context, []Part) error { return nil }

func TestWellFormedInterceptor(t *testing.T) {
	bad := &Part{Path: "x.xml", Content: []byte("<a><b></a>")}
	if err := (WellFormedInterceptor{}).BeforeWrite(context.Background(), bad); !errors.Is(err, ErrMalformedPart) {
		t.Fatalf("expected ErrMalformedPart, got %v", err)
	}
	bin := &Part{Path: "ppt/media/image1.png", Content: pngStub, Binary: true}
	if err := (WellFormedInterceptor{}).BeforeWrite(context.Background(), bin); err != nil {
		t.Fatalf("binary parts are not checked: %v", err)
	}
}

func TestZipArchiveRoundTrip(t *testing.T) {
	pres := buildDeck(t, 1)
	var buf bytes.Buffer
	w := (&WriterBuilder{}).Build()
	modified := time.Date(2024, 1, 2, 3, 4, 6, 0, time.UTC)
	if err := w.Write(context.Background(), pres, NewZipArchive(&buf, CompressionDeflate, modified), fixedConfig()); err != nil {
		t.Fatalf("write: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	if zr.File[0].Name != "[Content_Types].xml" {
		t.Fatalf("first entry = %s", zr.File[0].Name)
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if !bytes.HasPrefix(data, []byte(XMLHeader)) {
		t.Fatalf("entry missing XML header")
	}
}
