// Package testutil provides thread-safe test doubles shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Veraticus/linewatch/pkg/interfaces"
	"github.com/Veraticus/linewatch/pkg/notification"
	"github.com/Veraticus/linewatch/pkg/types"
)

// MockNotifier is a thread-safe mock implementation of notification.Notifier for testing
type MockNotifier struct {
	mu            sync.Mutex
	notifications []notification.Notification
	attempts      []notification.Notification // Track all send attempts
	sendErr       error
}

// NewMockNotifier creates a new mock notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Send implements the Notifier interface
func (m *MockNotifier) Send(n notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts = append(m.attempts, n)
	if m.sendErr != nil {
		return m.sendErr
	}

	m.notifications = append(m.notifications, n)
	return nil
}

// GetNotifications returns a copy of successfully sent notifications
func (m *MockNotifier) GetNotifications() []notification.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]notification.Notification, len(m.notifications))
	copy(result, m.notifications)
	return result
}

// GetAttempts returns a copy of all attempted sends (including failures)
func (m *MockNotifier) GetAttempts() []notification.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]notification.Notification, len(m.attempts))
	copy(result, m.attempts)
	return result
}

// SetError sets the error to return on Send calls
func (m *MockNotifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// MockRunner records commands instead of running them
type MockRunner struct {
	mu       sync.Mutex
	commands []string
	stdins   [][]byte
	runErr   error
	waits    int
	// expired counts Wait calls whose context was already done
	expired int
}

var _ interfaces.CommandRunner = (*MockRunner)(nil)

// NewMockRunner creates a new mock command runner
func NewMockRunner() *MockRunner {
	return &MockRunner{}
}

// Run implements the CommandRunner interface
func (m *MockRunner) Run(command string, stdin []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.runErr != nil {
		return m.runErr
	}
	m.commands = append(m.commands, command)
	m.stdins = append(m.stdins, stdin)
	return nil
}

// Wait implements the CommandRunner interface
func (m *MockRunner) Wait(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waits++
	if ctx.Err() != nil {
		m.expired++
	}
	return nil
}

// SetError sets the error Run returns
func (m *MockRunner) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runErr = err
}

// Commands returns the commands run so far
func (m *MockRunner) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.commands...)
}

// Stdins returns the stdin given to each command, nil when none was piped
func (m *MockRunner) Stdins() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.stdins...)
}

// WaitCount returns how many times Wait was called
func (m *MockRunner) WaitCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waits
}

// ExpiredWaits returns how many Wait calls got an already finished context,
// meaning the caller did not wait at all
func (m *MockRunner) ExpiredWaits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expired
}

// Recorder collects handler invocations and hook calls in the order they
// happen, across several RecordingHandlers
type Recorder struct {
	mu     sync.Mutex
	events []string
}

// Record appends an event
func (r *Recorder) Record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns the recorded events
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// RecordingHandler records "<kind><index>:<line>" for each invocation and
// "<kind>:<event>" for each hook it declared
type RecordingHandler struct {
	Kind     types.Kind
	Recorder *Recorder
	Hooks    []types.Event
	Err      error
}

// Invoke implements the Handler interface
func (h *RecordingHandler) Invoke(index int, line string) error {
	h.Recorder.Record(fmt.Sprintf("%s%d:%s", h.Kind, index, line))
	return h.Err
}

// Events implements the HookParticipant interface
func (h *RecordingHandler) Events() []types.Event {
	return h.Hooks
}

// OnHook implements the HookParticipant interface
func (h *RecordingHandler) OnHook(event types.Event) error {
	h.Recorder.Record(fmt.Sprintf("%s:%s", h.Kind, event))
	return h.Err
}

// SliceSource is a LineSource over fixed lines
type SliceSource struct {
	mu     sync.Mutex
	lines  []string
	next   int
	closed bool
	// Repositions counts calls to Reposition
	Repositions int
}

var (
	_ interfaces.LineSource   = (*SliceSource)(nil)
	_ interfaces.Repositioner = (*SliceSource)(nil)
)

// NewSliceSource creates a source that yields lines then io.EOF
func NewSliceSource(lines ...string) *SliceSource {
	return &SliceSource{lines: lines}
}

// Next implements the LineSource interface
func (s *SliceSource) Next(ctx context.Context) (types.Line, error) {
	if err := ctx.Err(); err != nil {
		return types.Line{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next >= len(s.lines) {
		return types.Line{}, io.EOF
	}
	s.next++
	return types.Line{Text: s.lines[s.next-1], Number: s.next}, nil
}

// Reposition implements the Repositioner interface
func (s *SliceSource) Reposition() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Repositions++
	return nil
}

// Close implements the LineSource interface
func (s *SliceSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called
func (s *SliceSource) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// StaticPatterns maps pattern indexes to expression text
type StaticPatterns map[int]string

// Expr returns the expression for index
func (p StaticPatterns) Expr(index int) string {
	return p[index]
}
