package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"
)

// TailProcess runs a follow command (for example "tail -n 0 -F {file}") on
// a pseudo-terminal. Programs that buffer stdout when writing to a pipe flush
// each line to a terminal, so lines arrive as soon as they are written.
type TailProcess struct {
	cmd *exec.Cmd
	pty *os.File

	mu     sync.Mutex
	closed bool
}

// Ensure TailProcess can be consumed as a stream
var _ io.ReadCloser = (*TailProcess)(nil)

// ExpandFollowCommand substitutes {file} in command with path
func ExpandFollowCommand(command, path string) string {
	return strings.ReplaceAll(command, "{file}", path)
}

// StartTail starts command through shell with its output on a PTY
func StartTail(shell, command string) (*TailProcess, error) {
	// #nosec G204 - the follow command is operator supplied and trusted
	cmd := exec.Command(shell, "-c", command)

	f, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to start PTY: %w", err)
	}

	return &TailProcess{
		cmd: cmd,
		pty: f,
	}, nil
}

// Read reads command output. The PTY reports EIO once the command exited
// and its output drained; that is reported as io.EOF.
func (t *TailProcess) Read(p []byte) (int, error) {
	n, err := t.pty.Read(p)
	if err != nil && errors.Is(err, syscall.EIO) {
		err = io.EOF
	}
	return n, err
}

// Process returns the underlying process
func (t *TailProcess) Process() *os.Process {
	return t.cmd.Process
}

// Close stops the command and releases the PTY
func (t *TailProcess) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	if t.cmd.ProcessState == nil && t.cmd.Process != nil {
		// Send SIGTERM first for graceful shutdown
		if err := t.cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
			_ = t.cmd.Process.Kill()
		}
	}
	_ = t.cmd.Wait()

	return t.pty.Close()
}
