// Package ir runs the export pipeline: a built presentation has its media
// resolved, is serialized into package parts and handed to an archive.
package ir

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/wudi/pptxkit/extensions"
	"github.com/wudi/pptxkit/ir/semantic"
	"github.com/wudi/pptxkit/observability"
	"github.com/wudi/pptxkit/resources"
	"github.com/wudi/pptxkit/writer"
)

type Pipeline struct {
	resolver *resources.Resolver
	writer   writer.Writer
	config   writer.Config
	hub      extensions.Hub
	tracer   observability.Tracer
	logger   observability.Logger
}

// Option defines a configuration option for the Pipeline.
type Option func(*Pipeline)

// WithResolver replaces the default file, URL and data-URL resolver.
func WithResolver(r *resources.Resolver) Option {
	return func(p *Pipeline) { p.resolver = r }
}

func WithWriter(w writer.Writer) Option {
	return func(p *Pipeline) { p.writer = w }
}

// WithExtensions runs hub over the presentation once media is resolved.
func WithExtensions(hub extensions.Hub) Option {
	return func(p *Pipeline) { p.hub = hub }
}

func WithConfig(cfg writer.Config) Option {
	return func(p *Pipeline) { p.config = cfg }
}

func WithTracer(t observability.Tracer) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.tracer = t
		}
	}
}

func WithLogger(l observability.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPipeline constructs a pipeline. Unless replaced, media is read from the
// file system, HTTP or data URLs and parts are checked for well-formedness.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		config: writer.DefaultConfig(),
		tracer: observability.NopTracer(),
		logger: observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.resolver == nil {
		p.resolver = resources.NewResolver(resources.NewFileLoader(""), resources.WithLogger(p.logger))
	}
	if p.writer == nil {
		p.writer = (&writer.WriterBuilder{}).
			WithLogger(p.logger).
			WithInterceptor(writer.WellFormedInterceptor{}).
			Build()
	}
	return p
}

// Export orchestrates resolve -> extensions -> serialize -> archive.
func (p *Pipeline) Export(ctx context.Context, pres *semantic.Presentation, archive writer.ArchiveWriter) error {
	start := time.Now()

	rctx, span := p.tracer.StartSpan(ctx, "pptx.resolve")
	span.SetTag(observability.MetricMediaCount, pres.MediaCount())
	err := p.resolver.Resolve(rctx, pres)
	finish(span, err)
	if err != nil {
		return fmt.Errorf("resolve media: %w", err)
	}

	if p.hub != nil {
		ectx, span := p.tracer.StartSpan(ctx, "pptx.extensions")
		err := p.hub.Execute(ectx, pres)
		finish(span, err)
		if err != nil {
			return fmt.Errorf("extensions: %w", err)
		}
	}

	sctx, span := p.tracer.StartSpan(ctx, "pptx.serialize")
	span.SetTag(observability.MetricSlideCount, len(pres.Slides))
	err = p.writer.Write(sctx, pres, &tracedArchive{next: archive, tracer: p.tracer}, p.config)
	finish(span, err)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	p.logger.Info("presentation exported",
		observability.Int(observability.MetricSlideCount, len(pres.Slides)),
		observability.Int(observability.MetricMediaCount, pres.MediaCount()),
		observability.Duration(observability.MetricExportTime, time.Since(start)),
	)
	return nil
}

// WriteFile exports pres as a zip package at path.
func (p *Pipeline) WriteFile(ctx context.Context, pres *semantic.Presentation, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	err = p.Export(ctx, pres, writer.NewZipArchive(f, p.config.Compression, pres.Modified))
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close output: %w", cerr)
	}
	return err
}

// tracedArchive opens the archive span around the final write.
type tracedArchive struct {
	next   writer.ArchiveWriter
	tracer observability.Tracer
}

func (a *tracedArchive) WriteParts(ctx context.Context, parts []writer.Part) error {
	ctx, span := a.tracer.StartSpan(ctx, "pptx.archive")
	span.SetTag(observability.MetricPartCount, len(parts))
	err := a.next.WriteParts(ctx, parts)
	finish(span, err)
	return err
}

func finish(span observability.Span, err error) {
	if err != nil {
		span.SetError(err)
	}
	span.Finish()
}
