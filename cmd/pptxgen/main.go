package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/wudi/pptxkit/builder"
	"github.com/wudi/pptxkit/compliance"
	"github.com/wudi/pptxkit/compliance/opc"
	"github.com/wudi/pptxkit/compliance/pml"
	"github.com/wudi/pptxkit/extensions"
	"github.com/wudi/pptxkit/ir"
	"github.com/wudi/pptxkit/layout"
	"github.com/wudi/pptxkit/observability"
	"github.com/wudi/pptxkit/resources"
	"github.com/wudi/pptxkit/scripting"
	"github.com/wudi/pptxkit/writer"
)

type options struct {
	script   string
	html     string
	tableID  string
	markdown string
	layout   string
	title    string
	out      string
	logLevel string
	validate bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pptxgen: %v\n", err)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "pptxgen: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: pptxgen (-script deck.js | -html page.html [-table id] | -markdown notes.md) [flags]\n")
		flag.PrintDefaults()
	}
	flag.StringVar(&opts.script, "script", "", "JavaScript deck script using the pptx global")
	flag.StringVar(&opts.html, "html", "", "HTML page; its tables are paged onto slides")
	flag.StringVar(&opts.tableID, "table", "", "Only page the table with this id")
	flag.StringVar(&opts.markdown, "markdown", "", "Markdown notes; each top-level heading starts a slide")
	flag.StringVar(&opts.layout, "layout", "LAYOUT_16x9", "Slide layout name")
	flag.StringVar(&opts.title, "title", "", "Presentation title")
	flag.StringVar(&opts.out, "o", "out.pptx", "Output file")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.validate, "validate", true, "Check package and PresentationML structure after writing")
	flag.Parse()

	inputs := 0
	for _, in := range []string{opts.script, opts.markdown} {
		if in != "" {
			inputs++
		}
	}
	if opts.html != "" && opts.script == "" {
		inputs++
	}
	if inputs != 1 {
		flag.Usage()
		return options{}, errors.New("exactly one of -script, -html or -markdown is required")
	}
	if opts.tableID != "" && opts.html == "" {
		return options{}, errors.New("-table needs -html")
	}
	return opts, nil
}

func run(ctx context.Context, opts options) error {
	level, err := observability.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	logger := observability.NewWriterLogger(os.Stderr, level)

	b := builder.New(builder.WithLogger(logger), builder.WithLayout(opts.layout), builder.WithTitle(opts.title))
	engine := layout.NewEngine(b, layout.WithLogger(logger))

	var base string
	switch {
	case opts.script != "":
		base = filepath.Dir(opts.script)
		if err := runScript(ctx, opts, b, engine); err != nil {
			return err
		}
	case opts.markdown != "":
		base = filepath.Dir(opts.markdown)
		src, err := os.ReadFile(opts.markdown)
		if err != nil {
			return err
		}
		if err := engine.RenderMarkdown(string(src)); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
	default:
		base = filepath.Dir(opts.html)
		if err := renderHTML(opts, engine); err != nil {
			return err
		}
	}

	pres, err := b.Build()
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	wb := (&writer.WriterBuilder{}).WithLogger(logger).WithInterceptor(writer.WellFormedInterceptor{})
	if opts.validate {
		ic := compliance.NewInterceptor(opc.NewValidator(), pml.NewValidator())
		ic.OnReport = func(r *compliance.Report) {
			for _, v := range r.Violations {
				if v.Severity == compliance.SeverityWarning {
					logger.Debug("package advisory", observability.String("standard", r.Standard), observability.String("violation", v.String()))
				}
			}
		}
		wb.WithInterceptor(ic)
	}
	pipeline := ir.NewPipeline(
		ir.WithLogger(logger),
		ir.WithWriter(wb.Build()),
		ir.WithExtensions(extensions.Standard(extensions.NewHub(logger))),
		ir.WithResolver(resources.NewResolver(resources.NewFileLoader(base), resources.WithLogger(logger))),
	)
	if err := pipeline.WriteFile(ctx, pres, opts.out); err != nil {
		return err
	}
	logger.Info("wrote presentation",
		observability.String("path", opts.out),
		observability.Int(observability.MetricSlideCount, len(pres.Slides)),
	)
	return nil
}

func runScript(ctx context.Context, opts options, b builder.PresentationBuilder, engine *layout.Engine) error {
	src, err := os.ReadFile(opts.script)
	if err != nil {
		return err
	}
	deck := &scripting.Deck{Builder: b, Layout: engine}
	if opts.html != "" {
		page, err := os.ReadFile(opts.html)
		if err != nil {
			return err
		}
		deck.Tables = func(id string) (layout.SourceTable, error) {
			return layout.HTMLTableByID(bytes.NewReader(page), id)
		}
	}
	vm := scripting.NewEngine()
	if err := vm.RegisterDeck(deck); err != nil {
		return err
	}
	if _, err := vm.Execute(ctx, string(src)); err != nil {
		return fmt.Errorf("run %s: %w", opts.script, err)
	}
	return nil
}

func renderHTML(opts options, engine *layout.Engine) error {
	f, err := os.Open(opts.html)
	if err != nil {
		return err
	}
	defer f.Close()
	if opts.tableID == "" {
		if err := engine.RenderHTML(f); err != nil {
			return fmt.Errorf("render html: %w", err)
		}
		return nil
	}
	t, err := layout.HTMLTableByID(f, opts.tableID)
	if err != nil {
		return err
	}
	_, err = engine.AddSlidesForTable(t, layout.SlidesForTableOptions{AddHeaderToEach: true})
	return err
}
