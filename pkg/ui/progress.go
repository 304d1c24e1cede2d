package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"thoreinstein.com/autopr/pkg/workflow"
)

// preflight reports whether step runs before the start banner. Such steps
// have no progress line.
func preflight(step workflow.Step) bool {
	return step == workflow.StepVerifyClean
}

// StartBanner prints the start banner once the working tree has been found
// clean, so a dirty tree aborts without it.
type StartBanner struct {
	out  io.Writer
	once sync.Once
}

// NewStartBanner creates a StartBanner writing to w.
func NewStartBanner(w io.Writer) *StartBanner {
	return &StartBanner{out: w}
}

// StageStarted implements workflow.Observer.
func (b *StartBanner) StageStarted(workflow.Step) {}

// StageSucceeded prints the banner after the clean check.
func (b *StartBanner) StageSucceeded(step workflow.Step) {
	if preflight(step) {
		b.once.Do(func() { PrintStart(b.out) })
	}
}

// StageFailed implements workflow.Observer.
func (b *StartBanner) StageFailed(workflow.Step, error) {}

// SpinnerObserver animates one spinner per workflow stage and leaves a
// Done/Failed line behind when the stage resolves.
type SpinnerObserver struct {
	mu      sync.Mutex
	out     io.Writer
	active  *spinner.Spinner
	current workflow.Step
}

// NewSpinnerObserver creates a SpinnerObserver writing to w.
func NewSpinnerObserver(w io.Writer) *SpinnerObserver {
	return &SpinnerObserver{out: w}
}

// StageStarted starts the spinner for step.
func (o *SpinnerObserver) StageStarted(step workflow.Step) {
	if preflight(step) {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopLocked()
	o.current = step
	o.active = spinner.New(
		spinner.CharSets[14],
		100*time.Millisecond,
		spinner.WithColor("cyan"),
		spinner.WithSuffix(" "+step.Label()),
		spinner.WithWriter(o.out),
	)
	o.active.Start()
}

// StageSucceeded stops the spinner and marks step done.
func (o *SpinnerObserver) StageSucceeded(step workflow.Step) {
	o.finish(step, Success.Sprint("Done"))
}

// StageFailed stops the spinner and marks step failed.
func (o *SpinnerObserver) StageFailed(step workflow.Step, _ error) {
	o.finish(step, Failure.Sprint("Failed"))
}

func (o *SpinnerObserver) finish(step workflow.Step, status string) {
	if preflight(step) {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopLocked()
	_, _ = fmt.Fprintf(o.out, "%s %s\n", step.Label(), status)
}

func (o *SpinnerObserver) stopLocked() {
	if o.active != nil {
		o.active.Stop()
		o.active = nil
	}
}

// PlainObserver prints one line per stage transition. It is used when the
// output is not a terminal.
type PlainObserver struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPlainObserver creates a PlainObserver writing to w.
func NewPlainObserver(w io.Writer) *PlainObserver {
	return &PlainObserver{out: w}
}

// StageStarted prints the stage label.
func (o *PlainObserver) StageStarted(step workflow.Step) {
	if preflight(step) {
		return
	}
	o.printf("%s...\n", step.Label())
}

// StageSucceeded prints the stage as done.
func (o *PlainObserver) StageSucceeded(step workflow.Step) {
	if preflight(step) {
		return
	}
	o.printf("%s Done\n", step.Label())
}

// StageFailed prints the stage as failed.
func (o *PlainObserver) StageFailed(step workflow.Step, _ error) {
	if preflight(step) {
		return
	}
	o.printf("%s Failed\n", step.Label())
}

func (o *PlainObserver) printf(format string, args ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = fmt.Fprintf(o.out, format, args...)
}

// NewObserver picks the progress renderer for w. It returns nil when progress
// is disabled.
func NewObserver(w io.Writer, enabled bool) workflow.Observer {
	if !enabled {
		return nil
	}
	if IsTerminal(w) {
		return NewSpinnerObserver(w)
	}
	return NewPlainObserver(w)
}

var (
	_ workflow.Observer = (*SpinnerObserver)(nil)
	_ workflow.Observer = (*PlainObserver)(nil)
	_ workflow.Observer = (*StartBanner)(nil)
)
