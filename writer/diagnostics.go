package writer

import "fmt"

// Diagnostic is one validation finding, tied to the class or method it
// concerns.
type Diagnostic struct {
	Context string // descriptor or signature the finding is about
	Message string
}

func (d Diagnostic) String() string {
	if d.Context == "" {
		return d.Message
	}

	return fmt.Sprintf("%s: %s", d.Context, d.Message)
}

// Reporter receives validation diagnostics. Fatal diagnostics abort the
// writer before any output bytes are produced; Generate then returns an
// error wrapping the corresponding errs sentinel.
type Reporter interface {
	Fatal(d Diagnostic)
	Error(d Diagnostic)
	Warning(d Diagnostic)
}

// CollectingReporter retains every diagnostic it receives. It is the
// default reporter.
type CollectingReporter struct {
	Fatals   []Diagnostic
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// NewCollectingReporter creates an empty collecting reporter.
func NewCollectingReporter() *CollectingReporter {
	return &CollectingReporter{}
}

// Fatal implements Reporter.
func (r *CollectingReporter) Fatal(d Diagnostic) {
	r.Fatals = append(r.Fatals, d)
}

// Error implements Reporter.
func (r *CollectingReporter) Error(d Diagnostic) {
	r.Errors = append(r.Errors, d)
}

// Warning implements Reporter.
func (r *CollectingReporter) Warning(d Diagnostic) {
	r.Warnings = append(r.Warnings, d)
}
