// Package input turns stdin, a file or a growing file into a sequence of
// lines.
package input

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/linewatch/pkg/interfaces"
	"github.com/Veraticus/linewatch/pkg/process"
)

// ErrInputNotFound is returned when the input file does not exist
var ErrInputNotFound = errors.New("input file not found")

// Options selects and configures the input
type Options struct {
	// Path is the input file; empty means standard input
	Path   string
	Follow bool

	// PollInterval bounds how long a follower waits between checks when no
	// file event arrives
	PollInterval time.Duration
	// FollowCommand, when set, follows the file through a subprocess instead
	// of natively. {file} is replaced with Path.
	FollowCommand string
	Shell         string

	// Stdin replaces os.Stdin
	Stdin  io.Reader
	Logger *slog.Logger
}

// Open opens the input described by opts
func Open(opts Options) (interfaces.LineSource, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Path == "" {
		stdin := opts.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		// Following a pipe is meaningless; the flag is ignored
		return newStreamSource(stdin, nil, false), nil
	}

	info, err := os.Stat(opts.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, opts.Path)
		}
		return nil, fmt.Errorf("failed to stat input: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("input %s is a directory", opts.Path)
	}

	if !opts.Follow {
		// #nosec G304 - the input path is operator supplied
		f, err := os.Open(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		return newStreamSource(f, f, true), nil
	}

	if opts.FollowCommand != "" {
		shell := opts.Shell
		if shell == "" {
			shell = "/bin/sh"
		}
		tp, err := process.StartTail(shell, process.ExpandFollowCommand(opts.FollowCommand, opts.Path))
		if err != nil {
			return nil, fmt.Errorf("failed to start follow command: %w", err)
		}
		opts.Logger.Debug("following input through subprocess", "command", opts.FollowCommand, "pid", tp.Process().Pid)
		return newStreamSource(tp, tp, false), nil
	}

	return newFollower(opts.Path, opts.PollInterval, opts.Logger)
}

// trimEOL strips a trailing "\n" and a "\r" before it
func trimEOL(text string) string {
	text = strings.TrimSuffix(text, "\n")
	return strings.TrimSuffix(text, "\r")
}
