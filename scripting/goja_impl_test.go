package scripting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wudi/pptxkit/builder"
	"github.com/wudi/pptxkit/ir/semantic"
	"github.com/wudi/pptxkit/layout"
	"github.com/wudi/pptxkit/units"
)

func TestGojaEngine_ContextCancellation(t *testing.T) {
	engine := NewEngine()

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	if _, err := engine.Execute(ctx, "while (true) {}"); err == nil || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline error, got %v", err)
	}

	if _, err := engine.Execute(context.Background(), "1 + 1"); err != nil {
		t.Fatalf("engine should recover after cancellation, got %v", err)
	}
}

func TestGojaEngine_ImmediateCancel(t *testing.T) {
	engine := NewEngine()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.Execute(ctx, "42"); err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled error, got %v", err)
	}
}

func runDeck(t *testing.T, deck *Deck, script string) *semantic.Presentation {
	t.Helper()
	engine := NewEngine()
	if err := engine.RegisterDeck(deck); err != nil {
		t.Fatalf("register deck: %v", err)
	}
	if _, err := engine.Execute(context.Background(), script); err != nil {
		t.Fatalf("execute: %v", err)
	}
	pres, err := deck.Builder.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return pres
}

func TestGojaEngine_BuildsSlides(t *testing.T) {
	script := `
pptx.setLayout("LAYOUT_WIDE").setTitle("Scripted");
var slide = pptx.addNewSlide();
slide.addText("Hello", { x: 1, y: "10%", w: 4, h: 0.5, font_size: 18, bold: true, color: "#ff0000" })
     .addText([{ text: "Page " }, { text: "", options: { field: "slidenum" } }], { x: 1, y: 1 })
     .addShape(pptx.shapes.ROUNDED_RECTANGLE, { x: 1, y: 2, w: 2, h: 1, fill: "0000FF" })
     .addTable([["a", { text: "b", options: { colspan: 2 } }], ["c", "d", "e"]], { x: 1, y: 3, colW: [1, 1, 1] })
     .back("EEEEEE");
slide.getPageNumber();
`
	deck := &Deck{Builder: builder.New()}
	pres := runDeck(t, deck, script)

	if pres.Title != "Scripted" || pres.Layout.Width != 12191996 {
		t.Fatalf("presentation properties = %q %+v", pres.Title, pres.Layout)
	}
	if len(pres.Slides) != 1 {
		t.Fatalf("expected one slide, got %d", len(pres.Slides))
	}
	s := pres.Slides[0]
	if len(s.Shapes) != 4 || s.Background == nil || s.Background.Color != "EEEEEE" {
		t.Fatalf("unexpected slide %+v", s)
	}

	hello := s.Shapes[0].(*semantic.TextShape)
	if hello.Frame.Y != pres.Layout.Height/10 || hello.Body.Runs[0].Format.FontSize != 18 || hello.Body.Runs[0].Format.Color != "FF0000" {
		t.Fatalf("text shape = %+v", hello)
	}
	if runs := s.Shapes[1].(*semantic.TextShape).Body.Runs; len(runs) != 2 || runs[1].Field != "slidenum" {
		t.Fatalf("field run = %+v", runs)
	}
	if shape := s.Shapes[2].(*semantic.AutoShape); shape.Style.Preset != "roundRect" || shape.Style.Fill != "0000FF" {
		t.Fatalf("auto shape = %+v", shape.Style)
	}
	tbl := s.Shapes[3].(*semantic.Table)
	if len(tbl.ColW) != 3 || tbl.ColW[0] != units.EMU || tbl.Rows[0][1].ColSpan != 2 || !tbl.Rows[0][2].Placeholder() {
		t.Fatalf("table = %+v", tbl)
	}
}

func TestGojaEngine_MasterAndPaging(t *testing.T) {
	script := `
var master = { title: "Corp", bkgd: "FFFFFF", margin: [0.5, 0.5, 0.5, 0.5],
  objects: [{ text: { text: "Confidential", options: { x: 0.5, y: 5, w: 4 } } }] };
var rows = [];
for (var i = 0; i < 80; i++) rows.push(["row " + i, i]);
pptx.addSlidesForTable(rows, { master: master, addText: { text: "footer", opts: { x: 6, y: 5 } } });
`
	deck := &Deck{Builder: builder.New()}
	pres := runDeck(t, deck, script)
	if len(pres.Slides) < 2 {
		t.Fatalf("expected the table to page, got %d slides", len(pres.Slides))
	}
	for i, s := range pres.Slides {
		if s.Background == nil || s.Background.Color != "FFFFFF" {
			t.Fatalf("slide %d: master background missing", i)
		}
		if len(s.Tables()) != 1 {
			t.Fatalf("slide %d: expected a table", i)
		}
		first := s.Shapes[0].(*semantic.TextShape)
		if first.Body.Runs[0].Text != "Confidential" {
			t.Fatalf("slide %d: master text missing", i)
		}
	}
}

func TestGojaEngine_TableByID(t *testing.T) {
	deck := &Deck{
		Builder: builder.New(),
		Tables: func(id string) (layout.SourceTable, error) {
			if id != "report" {
				return layout.SourceTable{}, layout.ErrTableNotFound
			}
			return layout.SourceTable{Body: [][]layout.SourceCell{{{Text: "x"}}}}, nil
		},
	}
	pres := runDeck(t, deck, `var n = pptx.addSlidesForTable("report");`)
	if len(pres.Slides) != 1 {
		t.Fatalf("expected one slide, got %d", len(pres.Slides))
	}

	engine := NewEngine()
	if err := engine.RegisterDeck(&Deck{Builder: builder.New()}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := engine.Execute(context.Background(), `pptx.addSlidesForTable("report")`); err == nil {
		t.Fatalf("expected an error without a table source")
	}
}

func TestConstName(t *testing.T) {
	cases := map[string]string{
		"Rounded Rectangle":            "ROUNDED_RECTANGLE",
		"Snip Single Corner Rectangle": "SNIP_SINGLE_CORNER_RECTANGLE",
		"Oval":                         "OVAL",
	}
	for in, want := range cases {
		if got := constName(in); got != want {
			t.Fatalf("constName(%q) = %q, want %q", in, got, want)
		}
	}
}
