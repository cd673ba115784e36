package writer

import (
	"context"
	"time"

	"github.com/wudi/pptxkit/ir/semantic"
	"github.com/wudi/pptxkit/observability"
)

// Compression selects how the archive stores parts.
type Compression int

const (
	CompressionDeflate Compression = iota
	CompressionStore
)

type Config struct {
	Application string // docProps/app.xml Application
	AppVersion  string
	Compression Compression
	// Now stamps docProps/core.xml when the presentation carries no dates.
	Now func() time.Time
}

// DefaultConfig is the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		Application: "Microsoft Office PowerPoint",
		AppVersion:  "15.0000",
		Compression: CompressionDeflate,
		Now:         time.Now,
	}
}

// Part is one entry of the package.
type Part struct {
	Path    string
	Content []byte
	Binary  bool
}

// ArchiveWriter turns an ordered list of parts into the final container.
type ArchiveWriter interface {
	WriteParts(ctx context.Context, parts []Part) error
}

// Writer serializes a presentation into package parts.
type Writer interface {
	// Parts returns every part of the package in emission order.
	Parts(ctx context.Context, pres *semantic.Presentation, cfg Config) ([]Part, error)
	// Write produces the parts and hands them to archive in one call.
	Write(ctx context.Context, pres *semantic.Presentation, archive ArchiveWriter, cfg Config) error
}

// Interceptor observes or rewrites parts before they reach the archive.
type Interceptor interface {
	BeforeWrite(ctx context.Context, part *Part) error
	AfterWrite(ctx context.Context, parts []Part) error
}

type WriterBuilder struct {
	interceptors []Interceptor
	logger       observability.Logger
	shapes       ShapeSerializer
}

func (b *WriterBuilder) WithInterceptor(i Interceptor) *WriterBuilder {
	b.interceptors = append(b.interceptors, i)
	return b
}

func (b *WriterBuilder) WithLogger(l observability.Logger) *WriterBuilder {
	b.logger = l
	return b
}

// WithShapeSerializer replaces the serializer used for slide shapes.
func (b *WriterBuilder) WithShapeSerializer(s ShapeSerializer) *WriterBuilder {
	b.shapes = s
	return b
}

func (b *WriterBuilder) Build() Writer {
	w := &impl{interceptors: b.interceptors, logger: b.logger, shapes: b.shapes}
	if w.logger == nil {
		w.logger = observability.NopLogger{}
	}
	if w.shapes == nil {
		w.shapes = newShapeSerializer()
	}
	return w
}
