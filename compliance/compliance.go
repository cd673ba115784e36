// Package compliance checks an assembled package against the Open Packaging
// Conventions and PresentationML structure rules. Validators run over the
// ordered part list produced by the writer.
package compliance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wudi/pptxkit/writer"
)

// ErrNonCompliant is returned by the Interceptor when a validator reports
// error-level violations.
var ErrNonCompliant = errors.New("package is not compliant")

// Severity grades a violation. Only errors make a report non-compliant.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Violation represents a compliance violation.
type Violation struct {
	Code        string
	Description string
	Location    string // part name, or empty for package-wide problems
	Severity    Severity
}

func (v Violation) String() string {
	if v.Location == "" {
		return fmt.Sprintf("%s: %s", v.Code, v.Description)
	}
	return fmt.Sprintf("%s: %s (%s)", v.Code, v.Description, v.Location)
}

// Report details compliance status.
type Report struct {
	Compliant  bool
	Standard   string // e.g. "OPC", "PresentationML"
	Violations []Violation
}

// NewReport starts a compliant report for standard.
func NewReport(standard string) *Report {
	return &Report{Compliant: true, Standard: standard}
}

// Error records an error-level violation.
func (r *Report) Error(code, location, format string, args ...interface{}) {
	r.Violations = append(r.Violations, Violation{Code: code, Description: fmt.Sprintf(format, args...), Location: location})
	r.Compliant = false
}

// Warn records a violation that does not affect compliance.
func (r *Report) Warn(code, location, format string, args ...interface{}) {
	r.Violations = append(r.Violations, Violation{
		Code:        code,
		Description: fmt.Sprintf(format, args...),
		Location:    location,
		Severity:    SeverityWarning,
	})
}

// Has reports whether a violation with code was recorded.
func (r *Report) Has(code string) bool {
	for _, v := range r.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

// Err summarizes error-level violations, or returns nil when compliant.
func (r *Report) Err() error {
	if r.Compliant {
		return nil
	}
	var msgs []string
	for _, v := range r.Violations {
		if v.Severity == SeverityError {
			msgs = append(msgs, v.String())
		}
	}
	return fmt.Errorf("%s: %w: %s", r.Standard, ErrNonCompliant, strings.Join(msgs, "; "))
}

// Validator checks an assembled package against one standard.
type Validator interface {
	Validate(ctx context.Context, parts []writer.Part) (*Report, error)
}

// Interceptor runs validators once every part has been produced and fails
// the write when any of them reports an error-level violation.
type Interceptor struct {
	Validators []Validator
	// OnReport, when set, receives every report including compliant ones.
	OnReport func(*Report)
}

// NewInterceptor returns an interceptor running validators in order.
func NewInterceptor(validators ...Validator) *Interceptor {
	return &Interceptor{Validators: validators}
}

func (i *Interceptor) BeforeWrite(context.Context, *writer.Part) error { return nil }

func (i *Interceptor) AfterWrite(ctx context.Context, parts []writer.Part) error {
	var errs []error
	for _, v := range i.Validators {
		rep, err := v.Validate(ctx, parts)
		if err != nil {
			return err
		}
		if i.OnReport != nil {
			i.OnReport(rep)
		}
		if err := rep.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
