// Package report is the diagnostics handler for the desugaring engine. It
// distinguishes the three error kinds of the error-handling design: fatal
// compile errors (interface-scoped, other interfaces still run), internal
// assertions (abort the run), and benign skips (silent, counted only).
// Terminal output follows the teacher compiler's colorized banner/spinner
// style, built on github.com/pterm/pterm.
package report

import (
	"sync"
	"time"

	"github.com/jianglei12138/deshim/internal/config"
)

// Reporter accumulates diagnostics for one run and is safe for concurrent
// use by the planner's per-interface goroutines.
type Reporter struct {
	mu sync.Mutex

	level config.LogLevel

	fatalCount  int
	benignSkips int
	fatals      []FatalError

	start time.Time
}

// New creates a Reporter at the given log level.
func New(level config.LogLevel) *Reporter {
	return &Reporter{level: level, start: time.Now()}
}

// FatalError is one fatal compile error, scoped to the interface that
// produced it.
type FatalError struct {
	Interface string
	Message   string
}

func (e FatalError) Error() string { return e.Interface + ": " + e.Message }

// ReportFatal records a fatal compile error for iface and (if the log level
// permits) prints it. The offending interface's planning stops, but the run
// continues processing other interfaces -- the run as a whole is still
// failed once planning finishes, per Failed().
func (r *Reporter) ReportFatal(iface, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := FatalError{Interface: iface, Message: sprintf(format, args...)}
	r.fatals = append(r.fatals, e)
	r.fatalCount++

	if r.level > config.LogSilent {
		displayFatal(e)
	}
}

// ReportICE reports an internal compiler error: a post-synthesis invariant
// violation or other condition that should never happen. ICEs are always
// displayed, regardless of log level, and the caller is expected to abort
// the run immediately afterward.
func (r *Reporter) ReportICE(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	displayICE(sprintf(format, args...))
}

// RecordBenignSkip increments the silent benign-skip counter: a method
// already owned by emulated dispatch, or a library static method never
// invoked from program code. These are never displayed, only counted for
// the end-of-run summary.
func (r *Reporter) RecordBenignSkip() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.benignSkips++
}

// Failed reports whether any fatal error has been recorded.
func (r *Reporter) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fatalCount > 0
}

// Fatals returns a snapshot of every fatal error recorded so far.
func (r *Reporter) Fatals() []FatalError {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]FatalError, len(r.fatals))
	copy(out, r.fatals)
	return out
}

// BenignSkipCount returns the number of benign skips recorded so far.
func (r *Reporter) BenignSkipCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.benignSkips
}

// ReportConfigError reports a fatal configuration error, prior to any
// interface-scoped processing (there is no interface to scope it to yet).
func (r *Reporter) ReportConfigError(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg := sprintf(format, args...)
	r.fatals = append(r.fatals, FatalError{Interface: "<config>", Message: msg})
	r.fatalCount++
	if r.level > config.LogSilent {
		displayConfigError(msg)
	}
}

// BeginPhase announces the start of a named pipeline phase (planning,
// synthesis, checking, ...), when the log level is verbose.
func (r *Reporter) BeginPhase(name string) {
	if r.level == config.LogVerbose {
		displayBeginPhase(name)
	}
}

// EndPhase announces the end of the current phase.
func (r *Reporter) EndPhase(success bool) {
	if r.level == config.LogVerbose {
		displayEndPhase(success)
	}
}

// Summary prints the end-of-run summary line.
func (r *Reporter) Summary() {
	if r.level == config.LogSilent {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	displaySummary(r.fatalCount, r.benignSkips, time.Since(r.start))
}
