// Package process spawns the shell commands linewatch runs on behalf of the
// operator. Command strings are trusted input: they run through the shell with
// the invoking user's privileges and are not sandboxed.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"

	"github.com/Veraticus/linewatch/pkg/interfaces"
	"golang.org/x/sync/errgroup"
)

// ErrCommandLimit is returned by Run when max_commands commands are still
// running
var ErrCommandLimit = errors.New("command limit reached")

// Stats counts what a Manager did with the commands it was given
type Stats struct {
	Started int
	Failed  int
	Dropped int
	Running int
}

// Manager starts detached shell commands and reaps them in the background
type Manager struct {
	shell  string
	logger *slog.Logger
	group  errgroup.Group

	mu    sync.Mutex
	stats Stats
}

// Ensure Manager implements CommandRunner
var _ interfaces.CommandRunner = (*Manager)(nil)

// NewManager creates a new process manager. At most limit commands run at
// once; limit <= 0 means no limit. Commands over the limit are dropped, never
// queued.
func NewManager(shell string, limit int, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		shell:  shell,
		logger: logger,
	}
	if limit > 0 {
		m.group.SetLimit(limit)
	}
	return m
}

// Run starts command through the shell. It returns once the command was
// started (or failed to start); it does not wait for it to finish. Output is
// discarded. When the concurrency limit is reached the command is not run and
// ErrCommandLimit is returned.
func (m *Manager) Run(command string, stdin []byte) error {
	// #nosec G204 - commands are operator supplied and trusted
	cmd := exec.Command(m.shell, "-c", command)
	setDetached(cmd)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	startErr := make(chan error, 1)
	ok := m.group.TryGo(func() error {
		if err := cmd.Start(); err != nil {
			startErr <- err
			return nil
		}
		m.mu.Lock()
		m.stats.Running++
		m.mu.Unlock()
		startErr <- nil

		if err := cmd.Wait(); err != nil {
			m.logger.Debug("command exited with error", "command", command, "error", err)
		}
		m.mu.Lock()
		m.stats.Running--
		m.mu.Unlock()
		return nil
	})
	if !ok {
		m.mu.Lock()
		m.stats.Dropped++
		m.mu.Unlock()
		return fmt.Errorf("%w: not running %q", ErrCommandLimit, command)
	}

	err := <-startErr

	m.mu.Lock()
	if err != nil {
		m.stats.Failed++
	} else {
		m.stats.Started++
	}
	m.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to start command: %w", err)
	}
	return nil
}

// Wait blocks until every started command has exited or ctx is done. Commands
// still running when ctx ends are left running; that is not an error.
func (m *Manager) Wait(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- m.group.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		m.logger.Debug("leaving commands running", "running", m.Stats().Running)
		return nil
	}
}

// Stats returns a snapshot of the command counters
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}
