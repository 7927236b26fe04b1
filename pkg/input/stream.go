package input

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/Veraticus/linewatch/pkg/types"
)

type lineResult struct {
	line types.Line
	err  error
}

// streamSource reads a stream on its own goroutine so that a blocked read
// never keeps Next from seeing cancellation
type streamSource struct {
	closer    io.Closer
	lines     chan lineResult
	done      chan struct{}
	closeOnce sync.Once
}

func newStreamSource(r io.Reader, closer io.Closer, seekable bool) *streamSource {
	s := &streamSource{
		closer: closer,
		lines:  make(chan lineResult),
		done:   make(chan struct{}),
	}
	go s.read(bufio.NewReader(r), seekable)
	return s
}

func (s *streamSource) read(br *bufio.Reader, seekable bool) {
	defer close(s.lines)

	var offset int64
	number := 0
	for {
		text, err := br.ReadString('\n')
		if len(text) > 0 {
			offset += int64(len(text))
			number++
			line := types.Line{Text: trimEOL(text), Number: number}
			if seekable {
				line.Offset = offset
			}
			select {
			case s.lines <- lineResult{line: line}:
			case <-s.done:
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				select {
				case s.lines <- lineResult{err: err}:
				case <-s.done:
				}
			}
			return
		}
	}
}

// Next returns the next line, io.EOF at the end of the stream or the
// context's error once it is cancelled
func (s *streamSource) Next(ctx context.Context) (types.Line, error) {
	if err := ctx.Err(); err != nil {
		return types.Line{}, err
	}
	select {
	case <-ctx.Done():
		return types.Line{}, ctx.Err()
	case r, ok := <-s.lines:
		if !ok {
			return types.Line{}, io.EOF
		}
		return r.line, r.err
	}
}

// Close stops the reader goroutine and closes the stream
func (s *streamSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if s.closer != nil {
			err = s.closer.Close()
		}
	})
	return err
}
