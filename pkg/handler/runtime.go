package handler

import "time"

// Runtime is the run-wide state handlers share. It belongs to a single
// dispatch loop and is not safe for concurrent use.
type Runtime struct {
	// Follow is set when the input is a growing file
	Follow bool
	// StartTime is when the run began
	StartTime time.Time

	now         func() time.Time
	emitted     bool
	interrupted bool
}

// NewRuntime creates the shared handler state for one run
func NewRuntime(follow bool, start time.Time) *Runtime {
	return &Runtime{
		Follow:    follow,
		StartTime: start,
		now:       time.Now,
	}
}

// Now returns the current time
func (r *Runtime) Now() time.Time {
	return r.now()
}

// SetClock replaces the time source
func (r *Runtime) SetClock(now func() time.Time) {
	r.now = now
}

// Emitted reports whether the current line was already written to the screen
func (r *Runtime) Emitted() bool {
	return r.emitted
}

// MarkEmitted records that the current line reached the screen
func (r *Runtime) MarkEmitted() {
	r.emitted = true
}

// EndLine clears per-line state. The dispatch loop calls it once per line
// after every pattern was tried.
func (r *Runtime) EndLine() {
	r.emitted = false
}

// Interrupt records that the run was cancelled by a signal. Close hooks that
// would otherwise wait skip waiting.
func (r *Runtime) Interrupt() {
	r.interrupted = true
}

// Interrupted reports whether Interrupt was called
func (r *Runtime) Interrupted() bool {
	return r.interrupted
}
