package ir

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/wudi/pptxkit/builder"
	"github.com/wudi/pptxkit/extensions"
	"github.com/wudi/pptxkit/ir/semantic"
	"github.com/wudi/pptxkit/observability"
	"github.com/wudi/pptxkit/resources"
	"github.com/wudi/pptxkit/units"
	"github.com/wudi/pptxkit/writer"
)

type recordedSpan struct {
	name     string
	tags     map[string]interface{}
	err      error
	finished bool
}

type recordingTracer struct {
	mu    sync.Mutex
	spans []*recordedSpan
}

func (t *recordingTracer) StartSpan(ctx context.Context, name string) (context.Context, observability.Span) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := &recordedSpan{name: name, tags: map[string]interface{}{}}
	t.spans = append(t.spans, s)
	return ctx, s
}

func (s *recordedSpan) SetTag(key string, value interface{}) { s.tags[key] = value }
func (s *recordedSpan) SetError(err error)                   { s.err = err }
func (s *recordedSpan) Finish()                              { s.finished = true }

func pngData(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func testDeck(t *testing.T, data []byte, path string) *semantic.Presentation {
	t.Helper()
	b := builder.New(builder.WithClock(func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }))
	b.AddSlide(nil).
		AddText("Quarterly results", builder.TextOptions{}).
		AddImage(path, units.In(1), units.In(1), units.Measure{}, units.Measure{}, data)
	pres, err := b.Build()
	if err != nil {
		t.Fatalf("build deck: %v", err)
	}
	return pres
}

func TestPipelineExport(t *testing.T) {
	tracer := &recordingTracer{}
	p := NewPipeline(WithTracer(tracer))
	archive := &writer.MemoryArchive{}

	pres := testDeck(t, pngData(t), "chart.png")
	if err := p.Export(context.Background(), pres, archive); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, ok := archive.Part("ppt/media/image1.png"); !ok {
		t.Fatalf("media part missing")
	}
	if _, ok := archive.Part("[Content_Types].xml"); !ok {
		t.Fatalf("manifest missing")
	}

	want := []string{"pptx.resolve", "pptx.serialize", "pptx.archive"}
	if len(tracer.spans) != len(want) {
		t.Fatalf("expected %d spans, got %d", len(want), len(tracer.spans))
	}
	for i, s := range tracer.spans {
		if s.name != want[i] || !s.finished || s.err != nil {
			t.Fatalf("span %d = %+v", i, s)
		}
	}
	if n := tracer.spans[2].tags[observability.MetricPartCount]; n != len(archive.Parts) {
		t.Fatalf("part count tag = %v, want %d", n, len(archive.Parts))
	}
}

func TestPipelineExportResolveFailure(t *testing.T) {
	tracer := &recordingTracer{}
	p := NewPipeline(WithTracer(tracer), WithResolver(resources.NewResolver(nil)))
	archive := &writer.MemoryArchive{}

	err := p.Export(context.Background(), testDeck(t, nil, "chart.png"), archive)
	if !errors.Is(err, resources.ErrNoLoader) {
		t.Fatalf("expected ErrNoLoader, got %v", err)
	}
	if len(archive.Parts) != 0 {
		t.Fatalf("archive written despite failure")
	}
	if len(tracer.spans) != 1 || tracer.spans[0].err == nil {
		t.Fatalf("resolve span should carry the error: %+v", tracer.spans)
	}
}

func TestPipelineWriteFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "deck.pptx")
	if err := NewPipeline().WriteFile(context.Background(), testDeck(t, pngData(t), "chart.png"), out); err != nil {
		t.Fatalf("write file: %v", err)
	}
	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()
	if len(zr.File) == 0 || zr.File[0].Name != "[Content_Types].xml" {
		t.Fatalf("manifest should be the first entry")
	}
}

func TestPipelineExtensions(t *testing.T) {
	tracer := &recordingTracer{}
	hub := extensions.Standard(extensions.NewHub(nil))
	p := NewPipeline(WithTracer(tracer), WithExtensions(hub))
	archive := &writer.MemoryArchive{}

	b := builder.New()
	b.AddSlide(nil).AddText("bell\x07 ok", builder.TextOptions{})
	pres, err := b.Build()
	if err != nil {
		t.Fatalf("build deck: %v", err)
	}
	if err := p.Export(context.Background(), pres, archive); err != nil {
		t.Fatalf("export: %v", err)
	}
	if tracer.spans[1].name != "pptx.extensions" {
		t.Fatalf("extensions span missing: %+v", tracer.spans)
	}
	slide, _ := archive.Part("ppt/slides/slide1.xml")
	if bytes.Contains(slide.Content, []byte("\x07")) || !bytes.Contains(slide.Content, []byte("bell ok")) {
		t.Fatalf("control character reached the slide part")
	}

	bad := builder.New()
	bad.AddSlide(nil).AddShape("rect", builder.ShapeOptions{W: units.In(1), H: units.In(1)})
	broken, _ := bad.Build()
	broken.Slides[0].Shapes[0].(*semantic.AutoShape).Frame.CX = -1
	err = NewPipeline(WithExtensions(hub)).Export(context.Background(), broken, &writer.MemoryArchive{})
	if !errors.Is(err, extensions.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}
