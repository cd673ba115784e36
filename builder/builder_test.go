package builder

import (
	"errors"
	"testing"
	"time"

	"github.com/wudi/pptxkit/ir/semantic"
	"github.com/wudi/pptxkit/observability"
	"github.com/wudi/pptxkit/units"
)

func fixedClock() time.Time { return time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC) }

func TestBuilder_DefaultsAndMetadata(t *testing.T) {
	b := New(WithClock(fixedClock)).SetTitle("Quarterly").SetAuthor("Ops").SetRevision(3)
	b.AddSlide(nil).Finish()
	b.AddSlide(nil).Finish()

	pres, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if pres.Title != "Quarterly" || pres.Author != "Ops" || pres.Revision != 3 {
		t.Fatalf("unexpected metadata: %+v", pres)
	}
	if pres.Company != defaultCompany {
		t.Fatalf("company = %q", pres.Company)
	}
	if pres.Layout.Name != units.Layout16x9 {
		t.Fatalf("default layout = %s", pres.Layout.Name)
	}
	if !pres.Created.Equal(fixedClock()) {
		t.Fatalf("created = %v", pres.Created)
	}
	for i, s := range pres.Slides {
		if s.Index != i+1 {
			t.Fatalf("slide %d has index %d", i, s.Index)
		}
	}
	if pres.Slides[1].Name != "Slide 2" {
		t.Fatalf("slide name = %q", pres.Slides[1].Name)
	}
}

func TestBuilder_SetLayout(t *testing.T) {
	rec := &observability.Recorder{}
	b := New(WithLogger(rec))
	b.SetLayout(units.LayoutWide)
	if l := b.Layout(); l.Width != 12191996 || l.Height != 6858000 {
		t.Fatalf("wide layout = %dx%d", l.Width, l.Height)
	}
	b.SetLayout("LAYOUT_BOGUS")
	if b.Layout().Name != units.LayoutWide {
		t.Fatalf("unknown layout replaced current: %s", b.Layout().Name)
	}
	if rec.Count(observability.LevelWarn) != 1 {
		t.Fatalf("expected one warning, got %+v", rec.Entries())
	}
}

func TestSlide_AddTextNormalizesOptions(t *testing.T) {
	b := New()
	s := b.AddSlide(nil).AddText("Hello", TextOptions{
		ShapeOptions: ShapeOptions{X: units.In(1), Y: units.Pct(50)},
		Align:        "Cent",
		VAlign:       "b",
		Color:        "#ff0000",
		FontSize:     18,
		Margin:       []float64{5},
	}).Slide()

	ts, ok := s.Shapes[0].(*semantic.TextShape)
	if !ok {
		t.Fatalf("expected text shape, got %T", s.Shapes[0])
	}
	if ts.Frame.X != units.EMU || ts.Frame.Y != 5143500/2 {
		t.Fatalf("frame = %+v", ts.Frame)
	}
	if ts.Frame.CX != 10*units.EMU {
		t.Fatalf("default width = %d", ts.Frame.CX)
	}
	if ts.Frame.CY != units.ToEMU(0.3) {
		t.Fatalf("text without outline should get 0.3in height, got %d", ts.Frame.CY)
	}
	if ts.Body.Align != semantic.AlignCenter || ts.Body.VAlign != semantic.VAlignBottom {
		t.Fatalf("alignment = %s/%s", ts.Body.Align, ts.Body.VAlign)
	}
	if ts.Body.Insets == nil || ts.Body.Insets.Left != units.Points(5) {
		t.Fatalf("insets = %+v", ts.Body.Insets)
	}
	if got := ts.Body.Runs[0].Format.Color; got != "FF0000" {
		t.Fatalf("run color = %q", got)
	}
	if ts.Style.Preset != "rect" {
		t.Fatalf("preset = %q", ts.Style.Preset)
	}
}

func TestSlide_DefaultVAlignIsMiddle(t *testing.T) {
	s := New().AddSlide(nil).AddText("x", TextOptions{}).Slide()
	if got := s.Shapes[0].(*semantic.TextShape).Body.VAlign; got != semantic.VAlignMiddle {
		t.Fatalf("valign = %q", got)
	}
}

func TestSlide_RunOptionsOverrideShape(t *testing.T) {
	s := New().AddSlide(nil).AddTextRuns([]TextRun{
		{Text: "a"},
		{Text: "b", Options: &RunOptions{Bold: true, BreakLine: true}},
	}, TextOptions{FontSize: 20, Color: "00FF00"}).Slide()

	runs := s.Shapes[0].(*semantic.TextShape).Body.Runs
	if runs[0].Format.FontSize != 20 {
		t.Fatalf("first run should inherit size, got %v", runs[0].Format.FontSize)
	}
	if runs[1].Format.FontSize != 0 || !runs[1].Format.Bold {
		t.Fatalf("run options should replace shape formatting: %+v", runs[1].Format)
	}
	if runs[1].Format.Color != "00FF00" {
		t.Fatalf("run color should fall back to shape color: %q", runs[1].Format.Color)
	}
	if !runs[1].BreakLine {
		t.Fatalf("break line lost")
	}
}

func TestSlide_Fields(t *testing.T) {
	b := New(WithClock(fixedClock))
	s := b.AddSlide(nil).AddTextRuns([]TextRun{
		{Field: "slidenum"},
		{Field: "datetime"},
	}, TextOptions{}).Slide()

	runs := s.Shapes[0].(*semantic.TextShape).Body.Runs
	if runs[0].FieldID != semantic.SlideNumberFieldID {
		t.Fatalf("slidenum id = %q", runs[0].FieldID)
	}
	if runs[1].Text != "3/9/2024" {
		t.Fatalf("date text = %q", runs[1].Text)
	}
	if id := runs[1].FieldID; len(id) != 38 || id[0] != '{' || id[37] != '}' {
		t.Fatalf("field id = %q", id)
	}
}

func TestSlide_ImageRelationships(t *testing.T) {
	b := New()
	s1 := b.AddSlide(nil).
		AddImage("logo.png", units.In(1), units.In(1), units.In(2), units.In(1), nil).
		AddImage("photo.jpg", units.Measure{}, units.Measure{}, units.Measure{}, units.Measure{}, nil).
		Slide()
	s2 := b.AddSlide(nil).
		SetBackgroundImage("bg.JPG", nil).
		Slide()

	if len(s1.Rels) != 2 {
		t.Fatalf("expected two rels, got %d", len(s1.Rels))
	}
	for i, r := range s1.Rels {
		if r.ID != i+2 {
			t.Fatalf("rel %d id = %d", i, r.ID)
		}
		if r.Extension != "png" {
			t.Fatalf("picture extension = %s", r.Extension)
		}
	}
	if s2.Rels[0].ID != 2 {
		t.Fatalf("second slide should restart ids, got %d", s2.Rels[0].ID)
	}
	if s2.Rels[0].MediaIndex != 3 {
		t.Fatalf("media index should continue across slides, got %d", s2.Rels[0].MediaIndex)
	}
	if s2.Rels[0].Extension != "jpeg" {
		t.Fatalf("background extension = %s", s2.Rels[0].Extension)
	}
	if s2.Background == nil || s2.Background.Image != s2.Rels[0] {
		t.Fatalf("background not bound to rel")
	}

	pic := s1.Shapes[1].(*semantic.Picture)
	if !pic.AutoSize || pic.Frame.CX != units.EMU {
		t.Fatalf("unsized picture: %+v", pic)
	}
	if s1.Shapes[0].(*semantic.Picture).AutoSize {
		t.Fatalf("sized picture should not auto size")
	}
}

func TestSlide_ImageWithoutExtensionIgnored(t *testing.T) {
	rec := &observability.Recorder{}
	s := New(WithLogger(rec)).AddSlide(nil).
		AddImage("noext", units.Measure{}, units.Measure{}, units.Measure{}, units.Measure{}, nil).
		Slide()
	if len(s.Shapes) != 0 || len(s.Rels) != 0 {
		t.Fatalf("invalid image should be ignored")
	}
	if rec.Count(observability.LevelWarn) != 1 {
		t.Fatalf("expected warning")
	}
}

func TestSlide_AddShapePreset(t *testing.T) {
	s := New().AddSlide(nil).
		AddShape("Oval", ShapeOptions{Fill: "0088CC"}).
		AddShape("no such shape", ShapeOptions{}).
		AddShape("line", ShapeOptions{Line: "000000"}).
		Slide()
	want := []string{"ellipse", "rect", "line"}
	for i, w := range want {
		if got := s.Shapes[i].(*semantic.AutoShape).Style.Preset; got != w {
			t.Fatalf("shape %d preset = %q, want %q", i, got, w)
		}
	}
}

func TestMasterTemplateOrder(t *testing.T) {
	master := &MasterTemplate{
		Background: &MasterBackground{Color: "112233"},
		Images:     []MasterImage{{Path: "corner.png", X: 0.1, Y: 0.1, W: 1, H: 0.5}},
		Shapes: []MasterShape{
			{Kind: MasterText, Text: "Confidential", Options: TextOptions{FontSize: 9}},
			{Kind: MasterLine, Options: TextOptions{ShapeOptions: ShapeOptions{Line: "CCCCCC"}}},
		},
		SlideNumber: true,
	}
	s := New().AddSlide(master).Slide()
	if len(s.Shapes) != 3 {
		t.Fatalf("expected 3 shapes, got %d", len(s.Shapes))
	}
	if s.Shapes[0].Kind() != semantic.KindPicture || s.Shapes[1].Kind() != semantic.KindText || s.Shapes[2].Kind() != semantic.KindAutoShape {
		t.Fatalf("unexpected order: %s %s %s", s.Shapes[0].Kind(), s.Shapes[1].Kind(), s.Shapes[2].Kind())
	}
	if s.Background == nil || s.Background.Color != "112233" || !s.SlideNumber {
		t.Fatalf("master background or numbering not applied")
	}
	if m := master.Margins(); m != [4]float64{0.5, 0.5, 0.5, 0.5} {
		t.Fatalf("default margins = %v", m)
	}
}

func TestBuild_CollectsTableErrors(t *testing.T) {
	b := New()
	sb := b.AddSlide(nil).AddTable([][]TableCell{
		{{Text: "bad", ColSpan: 2, RowSpan: 2}, Cell("x")},
	}, TableFrame{}, TableOptions{})
	if sb.Err() == nil {
		t.Fatalf("slide should record the error")
	}
	if len(sb.Slide().Shapes) != 0 {
		t.Fatalf("rejected table should not be added")
	}
	pres, err := b.Build()
	if !errors.Is(err, ErrSpanConflict) {
		t.Fatalf("build error = %v", err)
	}
	if pres == nil || len(pres.Slides) != 1 {
		t.Fatalf("presentation should still be returned")
	}
}
