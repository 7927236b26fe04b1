package handler

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/Veraticus/linewatch/pkg/interfaces"
	"github.com/Veraticus/linewatch/pkg/types"
)

// logHandler appends matched lines to one file per index. Files are created
// (or truncated) on the first match and stay open until close.
type logHandler struct {
	paths  map[int]string
	follow bool

	files   map[int]*os.File
	writers map[int]*bufio.Writer
}

func newLogHandler(env *Env) (interfaces.Handler, error) {
	paths := env.Registry.Args(types.KindLog)
	for index, path := range paths {
		if path == "" {
			return nil, fmt.Errorf("log%d needs a file name", index)
		}
	}
	return &logHandler{
		paths:   paths,
		follow:  env.Runtime.Follow,
		files:   make(map[int]*os.File),
		writers: make(map[int]*bufio.Writer),
	}, nil
}

func (h *logHandler) Invoke(index int, line string) error {
	f, ok := h.files[index]
	if !ok {
		path, bound := h.paths[index]
		if !bound {
			return fmt.Errorf("no log file for index %d", index)
		}
		var err error
		// #nosec G304 - log paths are operator supplied
		f, err = os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		h.files[index] = f
		if !h.follow {
			h.writers[index] = bufio.NewWriter(f)
		}
	}

	if w, buffered := h.writers[index]; buffered {
		_, err := w.WriteString(line + "\n")
		return err
	}
	// Following: unbuffered so readers of the log see lines at once
	_, err := f.WriteString(line + "\n")
	return err
}

func (h *logHandler) Events() []types.Event {
	return []types.Event{types.EventClose}
}

func (h *logHandler) OnHook(event types.Event) error {
	if event != types.EventClose {
		return nil
	}

	indexes := make([]int, 0, len(h.files))
	for index := range h.files {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)

	var errs []error
	for _, index := range indexes {
		if w, ok := h.writers[index]; ok {
			if err := w.Flush(); err != nil {
				errs = append(errs, fmt.Errorf("flush log%d: %w", index, err))
			}
		}
		if err := h.files[index].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log%d: %w", index, err))
		}
	}
	h.files = make(map[int]*os.File)
	h.writers = make(map[int]*bufio.Writer)
	return errors.Join(errs...)
}
