// Package interfaces defines the core interfaces used throughout the application.
package interfaces

import (
	"context"

	"github.com/Veraticus/linewatch/pkg/types"
)

// Handler acts on a line matched by the pattern with the given index.
type Handler interface {
	Invoke(index int, line string) error
}

// HookParticipant is implemented by handlers that take part in lifecycle
// events. Events is read once, when the hook table is built.
type HookParticipant interface {
	Events() []types.Event
	OnHook(event types.Event) error
}

// LineSource produces input lines.
// Next returns io.EOF when a finite source is exhausted.
type LineSource interface {
	Next(ctx context.Context) (types.Line, error)
	Close() error
}

// Repositioner is implemented by sources that can rewind to the offset
// recorded after the last delivered line.
type Repositioner interface {
	Reposition() error
}

// CommandRunner spawns shell commands without waiting for them.
type CommandRunner interface {
	// Run starts command; when stdin is non-nil it is written to the
	// command's standard input.
	Run(command string, stdin []byte) error
	// Wait waits for started commands until they exit or ctx is done
	Wait(ctx context.Context) error
}

// RateLimiter limits notification frequency.
type RateLimiter interface {
	Allow() bool
}

// StatusReporter receives delivery outcomes.
type StatusReporter interface {
	ReportSending()
	ReportSuccess()
	ReportFailure()
}
