package scripting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/dop251/goja"

	"github.com/wudi/pptxkit/builder"
	"github.com/wudi/pptxkit/layout"
)

// ErrNoTableSource is thrown by addSlidesForTable when given a table id
// without a table source.
var ErrNoTableSource = errors.New("no table source for table id")

type GojaEngine struct {
	vm *goja.Runtime
}

func NewEngine() *GojaEngine {
	vm := goja.New()
	return &GojaEngine{vm: vm}
}

func (e *GojaEngine) Execute(ctx context.Context, script string) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	defer e.vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := e.vm.RunString(script)
	if err != nil {
		if interruptedErr, ok := err.(*goja.InterruptedError); ok {
			if cause := interruptedErr.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, err
	}
	return val.Export(), nil
}

// RegisterDeck exposes the pptx global: presentation properties, shape
// names, addNewSlide and addSlidesForTable.
func (e *GojaEngine) RegisterDeck(deck *Deck) error {
	if deck == nil || deck.Builder == nil {
		return errors.New("deck has no builder")
	}
	if deck.Layout == nil {
		deck.Layout = layout.NewEngine(deck.Builder)
	}
	b := deck.Builder
	pptx := e.vm.NewObject()

	setters := map[string]func(string){
		"setLayout":  func(s string) { b.SetLayout(s) },
		"setTitle":   func(s string) { b.SetTitle(s) },
		"setAuthor":  func(s string) { b.SetAuthor(s) },
		"setCompany": func(s string) { b.SetCompany(s) },
		"setSubject": func(s string) { b.SetSubject(s) },
	}
	for name, set := range setters {
		if err := pptx.Set(name, func(call goja.FunctionCall) goja.Value {
			set(call.Argument(0).String())
			return pptx
		}); err != nil {
			return err
		}
	}
	if err := pptx.Set("setRevision", func(call goja.FunctionCall) goja.Value {
		b.SetRevision(int(call.Argument(0).ToInteger()))
		return pptx
	}); err != nil {
		return err
	}

	shapes := e.vm.NewObject()
	for display, prst := range builder.PresetDisplayNames() {
		if err := shapes.Set(constName(display), prst); err != nil {
			return err
		}
	}
	if err := pptx.Set("shapes", shapes); err != nil {
		return err
	}

	if err := pptx.Set("addNewSlide", func(call goja.FunctionCall) goja.Value {
		return e.slideObject(b.AddSlide(master(call.Argument(0).Export())))
	}); err != nil {
		return err
	}

	if err := pptx.Set("addSlidesForTable", func(call goja.FunctionCall) goja.Value {
		t, err := e.sourceTable(deck, call.Argument(0).Export())
		if err != nil {
			panic(e.vm.NewGoError(err))
		}
		o := asOpts(call.Argument(1).Export())
		slides, err := deck.Layout.AddSlidesForTable(t, slidesForTableOptions(o))
		if err != nil {
			panic(e.vm.NewGoError(err))
		}
		return e.vm.ToValue(len(slides))
	}); err != nil {
		return err
	}

	return e.vm.Set("pptx", pptx)
}

func (e *GojaEngine) sourceTable(deck *Deck, v interface{}) (layout.SourceTable, error) {
	if id, ok := v.(string); ok {
		if deck.Tables == nil {
			return layout.SourceTable{}, fmt.Errorf("%s: %w", id, ErrNoTableSource)
		}
		return deck.Tables(id)
	}
	return layout.SourceTable{Body: sourceRows(v)}, nil
}

func slidesForTableOptions(o opts) layout.SlidesForTableOptions {
	out := layout.SlidesForTableOptions{
		Margin:          o.floats("margin"),
		Master:          master(o["master"]),
		AddHeaderToEach: o.boolean("addHeaderToEach"),
	}
	if v, ok := o.get("addImage"); ok {
		im := asOpts(v)
		out.AddImage = &layout.PageImage{
			Path: imageSource(im),
			X:    im.measure("x"),
			Y:    im.measure("y"),
			W:    im.measure("w", "cx"),
			H:    im.measure("h", "cy"),
		}
	}
	if v, ok := o.get("addText"); ok {
		t := asOpts(v)
		out.AddText = &layout.PageText{Text: t.str("text"), Options: textOptions(asOpts(t["opts"]))}
	}
	if v, ok := o.get("addShape"); ok {
		s := asOpts(v)
		out.AddShape = &layout.PageShape{Shape: s.str("shape"), Options: shapeOptions(asOpts(s["opts"]))}
	}
	if v, ok := o.get("addTable"); ok {
		t := asOpts(v)
		to := asOpts(t["opts"])
		out.AddTable = &layout.PageTable{Rows: tableRows(t["rows"]), Frame: tableFrame(to), Options: tableOptions(to)}
	}
	return out
}

// slideObject wraps a slide builder; every method returns the wrapper so
// scripts can chain calls.
func (e *GojaEngine) slideObject(sb builder.SlideBuilder) goja.Value {
	obj := e.vm.NewObject()
	methods := map[string]func(goja.FunctionCall){
		"addText": func(call goja.FunctionCall) {
			sb.AddTextRuns(textRuns(call.Argument(0).Export()), textOptions(asOpts(call.Argument(1).Export())))
		},
		"addShape": func(call goja.FunctionCall) {
			sb.AddShape(call.Argument(0).String(), shapeOptions(asOpts(call.Argument(1).Export())))
		},
		"addImage": func(call goja.FunctionCall) {
			o := asOpts(call.Argument(0).Export())
			sb.AddImage(imageSource(o), o.measure("x"), o.measure("y"), o.measure("w", "cx"), o.measure("h", "cy"), nil)
		},
		"addTable": func(call goja.FunctionCall) {
			o := asOpts(call.Argument(1).Export())
			sb.AddTable(tableRows(call.Argument(0).Export()), tableFrame(o), tableOptions(o))
		},
		"back": func(call goja.FunctionCall) {
			sb.SetBackground(call.Argument(0).String())
		},
		"bkgd": func(call goja.FunctionCall) {
			sb.SetBackground(call.Argument(0).String())
		},
		"bkgdImage": func(call goja.FunctionCall) {
			sb.SetBackgroundImage(imageSource(asOpts(call.Argument(0).Export())), nil)
		},
		"slideNumber": func(call goja.FunctionCall) {
			sb.SetSlideNumber(call.Argument(0).ToBoolean())
		},
	}
	for name, fn := range methods {
		_ = obj.Set(name, func(call goja.FunctionCall) goja.Value {
			fn(call)
			return obj
		})
	}
	_ = obj.Set("getPageNumber", func(goja.FunctionCall) goja.Value {
		return e.vm.ToValue(sb.PageNumber())
	})
	return obj
}

// constName turns "Rounded Rectangle" into ROUNDED_RECTANGLE.
func constName(display string) string {
	fields := strings.FieldsFunc(display, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.ToUpper(strings.Join(fields, "_"))
}
