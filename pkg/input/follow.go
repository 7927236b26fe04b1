package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/linewatch/pkg/interfaces"
	"github.com/Veraticus/linewatch/pkg/types"
	"github.com/fsnotify/fsnotify"
)

const defaultPollInterval = time.Second

// follower delivers lines appended to a file after it was opened, like
// tail -F. offset is the byte offset just past the last delivered line; a
// read that ends in an unterminated line rewinds there so the line is
// delivered once, complete, after the writer finishes it.
type follower struct {
	path   string
	poll   time.Duration
	logger *slog.Logger

	file   *os.File
	reader *bufio.Reader
	offset int64
	number int

	// backlog holds lines drained from a replaced file, delivered before
	// anything from its successor
	backlog []types.Line

	watcher *fsnotify.Watcher
	wake    chan struct{}
}

var (
	_ interfaces.LineSource   = (*follower)(nil)
	_ interfaces.Repositioner = (*follower)(nil)
)

func newFollower(path string, poll time.Duration, logger *slog.Logger) (*follower, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input path: %w", err)
	}
	if poll <= 0 {
		poll = defaultPollInterval
	}

	// #nosec G304 - the input path is operator supplied
	file, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("failed to open input: %w", err)
	}

	// Only data appended from now on is delivered
	end, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to seek to end of input: %w", err)
	}

	f := &follower{
		path:   abs,
		poll:   poll,
		logger: logger,
		file:   file,
		reader: bufio.NewReader(file),
		offset: end,
		wake:   make(chan struct{}, 1),
	}
	f.watch()
	return f, nil
}

// watch subscribes to changes of the file's directory, so that writes,
// truncation and replacement all wake the follower. Without a watcher the
// follower still polls.
func (f *follower) watch() {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		f.logger.Debug("file events unavailable, polling", "error", err)
		return
	}
	if err := w.Add(filepath.Dir(f.path)); err != nil {
		f.logger.Debug("file events unavailable, polling", "error", err)
		_ = w.Close()
		return
	}
	f.watcher = w

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) == f.path {
					f.notify()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				f.logger.Debug("file watcher error", "error", err)
			}
		}
	}()
}

func (f *follower) notify() {
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// Next blocks until a complete new line is available or ctx is done
func (f *follower) Next(ctx context.Context) (types.Line, error) {
	for {
		if err := ctx.Err(); err != nil {
			return types.Line{}, err
		}

		if len(f.backlog) > 0 {
			line := f.backlog[0]
			f.backlog = f.backlog[1:]
			return line, nil
		}

		line, ok, err := f.readLine()
		if err != nil {
			return types.Line{}, err
		}
		if ok {
			return line, nil
		}

		if err := f.wait(ctx); err != nil {
			return types.Line{}, err
		}
		if err := f.checkFile(); err != nil {
			return types.Line{}, err
		}
	}
}

// readLine returns the next complete line, or ok=false after rewinding to
// the recorded offset when only a partial line (or nothing) is available
func (f *follower) readLine() (types.Line, bool, error) {
	text, err := f.reader.ReadString('\n')
	if err == nil {
		f.offset += int64(len(text))
		f.number++
		return types.Line{Text: trimEOL(text), Number: f.number, Offset: f.offset}, true, nil
	}
	if !errors.Is(err, io.EOF) {
		return types.Line{}, false, fmt.Errorf("failed to read input: %w", err)
	}
	if err := f.seek(f.offset); err != nil {
		return types.Line{}, false, err
	}
	return types.Line{}, false, nil
}

// Reposition moves the file back to the offset after the last delivered
// line. Buffered data already starts there, so only an empty buffer needs a
// seek.
func (f *follower) Reposition() error {
	if len(f.backlog) > 0 || f.reader.Buffered() > 0 {
		return nil
	}
	return f.seek(f.offset)
}

func (f *follower) seek(offset int64) error {
	if _, err := f.file.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek input: %w", err)
	}
	f.reader.Reset(f.file)
	return nil
}

func (f *follower) wait(ctx context.Context) error {
	timer := time.NewTimer(f.poll)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-f.wake:
	case <-timer.C:
	}
	return nil
}

// checkFile handles truncation and replacement of the followed file
func (f *follower) checkFile() error {
	current, err := f.file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat input: %w", err)
	}

	onDisk, err := os.Stat(f.path)
	if err != nil {
		// Mid-rotation; keep the old handle until a new file appears
		return nil
	}

	if !os.SameFile(current, onDisk) {
		// #nosec G304 - the input path is operator supplied
		replacement, err := os.Open(f.path)
		if err != nil {
			return nil
		}
		f.logger.Info("input replaced, reopening", "path", f.path)
		f.drain()
		_ = f.file.Close()
		f.file = replacement
		f.offset = 0
		f.reader.Reset(f.file)
		return nil
	}

	if current.Size() < f.offset {
		f.logger.Info("input truncated, reading from start", "path", f.path)
		f.offset = 0
		return f.seek(0)
	}
	return nil
}

// drain queues whatever the current file still holds past offset. The file
// is finished, so a trailing unterminated line is delivered too.
func (f *follower) drain() {
	for {
		text, err := f.reader.ReadString('\n')
		if len(text) > 0 {
			f.offset += int64(len(text))
			f.number++
			f.backlog = append(f.backlog, types.Line{Text: trimEOL(text), Number: f.number, Offset: f.offset})
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				f.logger.Warn("failed to drain replaced input", "path", f.path, "error", err)
			}
			return
		}
	}
}

// Close stops watching and closes the file
func (f *follower) Close() error {
	if f.watcher != nil {
		_ = f.watcher.Close()
	}
	return f.file.Close()
}
