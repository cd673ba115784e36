package compliance_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wudi/pptxkit/builder"
	"github.com/wudi/pptxkit/compliance"
	"github.com/wudi/pptxkit/compliance/opc"
	"github.com/wudi/pptxkit/compliance/pml"
	"github.com/wudi/pptxkit/writer"
)

type rejectAll struct{}

func (rejectAll) Validate(context.Context, []writer.Part) (*compliance.Report, error) {
	rep := compliance.NewReport("Test")
	rep.Warn("T000", "", "advisory")
	rep.Error("T001", "ppt/presentation.xml", "always wrong")
	return rep, nil
}

func TestInterceptorPassesWrittenDeck(t *testing.T) {
	b := builder.New()
	b.AddSlide(nil).AddText("One", builder.TextOptions{})
	b.AddSlide(nil).AddText("Two", builder.TextOptions{})
	pres, err := b.Build()
	if err != nil {
		t.Fatalf("build deck: %v", err)
	}

	var reports []*compliance.Report
	ic := compliance.NewInterceptor(opc.NewValidator(), pml.NewValidator())
	ic.OnReport = func(r *compliance.Report) { reports = append(reports, r) }
	w := (&writer.WriterBuilder{}).WithInterceptor(ic).Build()

	var archive writer.MemoryArchive
	if err := w.Write(context.Background(), pres, &archive, writer.DefaultConfig()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(reports) != 2 || reports[0].Standard != opc.Standard || reports[1].Standard != pml.Standard {
		t.Fatalf("reports = %+v", reports)
	}
	for _, r := range reports {
		if !r.Compliant {
			t.Fatalf("%s: %v", r.Standard, r.Err())
		}
	}
}

func TestInterceptorRejects(t *testing.T) {
	pres, _ := builder.New().Build()
	w := (&writer.WriterBuilder{}).WithInterceptor(compliance.NewInterceptor(rejectAll{})).Build()
	err := w.Write(context.Background(), pres, &writer.MemoryArchive{}, writer.DefaultConfig())
	if !errors.Is(err, compliance.ErrNonCompliant) {
		t.Fatalf("expected ErrNonCompliant, got %v", err)
	}
	if msg := err.Error(); !strings.Contains(msg, "T001") || strings.Contains(msg, "T000") {
		t.Fatalf("error should list errors only: %s", msg)
	}
}

func TestReport(t *testing.T) {
	rep := compliance.NewReport("Test")
	rep.Warn("W1", "", "minor")
	if !rep.Compliant || rep.Err() != nil {
		t.Fatalf("warnings must not break compliance")
	}
	rep.Error("E1", "a.xml", "bad %d", 1)
	if rep.Compliant || !rep.Has("E1") || rep.Has("E2") {
		t.Fatalf("report = %+v", rep)
	}
	if got := rep.Violations[1].String(); got != "E1: bad 1 (a.xml)" {
		t.Fatalf("violation string = %q", got)
	}
	if rep.Violations[0].Severity.String() != "warning" {
		t.Fatalf("severity = %v", rep.Violations[0].Severity)
	}
}

func TestPartNames(t *testing.T) {
	if got := compliance.RelsFor("ppt/slides/slide1.xml"); got != "ppt/slides/_rels/slide1.xml.rels" {
		t.Fatalf("RelsFor = %s", got)
	}
	if got := compliance.SourceOf("ppt/slides/_rels/slide1.xml.rels"); got != "ppt/slides/slide1.xml" {
		t.Fatalf("SourceOf = %s", got)
	}
	if compliance.SourceOf("_rels/.rels") != "" || compliance.RelsFor("") != "_rels/.rels" {
		t.Fatalf("package relationships misnamed")
	}
	if got := compliance.ResolveTarget("ppt/slides/slide1.xml", "../media/image1.png"); got != "ppt/media/image1.png" {
		t.Fatalf("ResolveTarget = %s", got)
	}
	if got := compliance.ResolveTarget("", "ppt/presentation.xml"); got != "ppt/presentation.xml" {
		t.Fatalf("ResolveTarget from package = %s", got)
	}
	if !compliance.IsRels("_rels/.rels") || compliance.IsRels("ppt/slides/slide1.xml") {
		t.Fatalf("IsRels misclassifies")
	}
}
