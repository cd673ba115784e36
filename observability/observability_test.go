package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNopTracer(t *testing.T) {
	tracer := NopTracer()
	ctx := context.Background()
	ctx2, span := tracer.StartSpan(ctx, "test")
	if ctx2 != ctx {
		t.Fatalf("nop tracer should return same context")
	}
	span.SetTag("key", "value")
	span.SetError(nil)
	span.Finish()
}

func TestWriterLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	base := NewWriterLogger(&buf, LevelWarn).(*writerLogger)
	base.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	log := base.With(String("slide", "3"))
	log.Info("hidden")
	log.Warn("rowspan clamped", Int("row", 4), Error("err", errors.New("boom")))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info entry should be filtered: %q", out)
	}
	if out != "2024-05-01 09:30:00 [WARN] rowspan clamped slide=3 row=4 err=boom\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": LevelDebug, "INFO": LevelInfo, "warning": LevelWarn, "error": LevelError, "off": LevelOff, "": LevelInfo}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestRecorderSharesEntriesWithChildren(t *testing.T) {
	rec := &Recorder{}
	child := rec.With(String("component", "layout"))
	child.Warn("page break")
	rec.Info("done")

	entries := rec.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Fields["component"] != "layout" {
		t.Fatalf("child fields lost: %+v", entries[0])
	}
	if rec.Count(LevelWarn) != 1 {
		t.Fatalf("expected one warning")
	}
}

func TestWriterLoggerOff(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriterLogger(&buf, LevelOff)
	log.Error("nothing")
	if buf.Len() != 0 {
		t.Fatalf("off level should write nothing, got %q", buf.String())
	}
}
