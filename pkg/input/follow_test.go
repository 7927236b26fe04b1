package input

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/linewatch/pkg/interfaces"
)

func appendTo(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(text); err != nil {
		t.Fatal(err)
	}
}

func openFollow(t *testing.T, initial string) (string, interfaces.LineSource) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, []byte(initial), 0600); err != nil {
		t.Fatal(err)
	}
	src, err := Open(Options{Path: path, Follow: true, PollInterval: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = src.Close() })
	return path, src
}

func nextWithin(src interfaces.LineSource, d time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	line, err := src.Next(ctx)
	return line.Text, err
}

func expectLine(t *testing.T, src interfaces.LineSource, want string) {
	t.Helper()
	got, err := nextWithin(src, 5*time.Second)
	if err != nil {
		t.Fatalf("Next() error = %v, want %q", err, want)
	}
	if got != want {
		t.Fatalf("Next() = %q, want %q", got, want)
	}
	if rp, ok := src.(interfaces.Repositioner); ok {
		if err := rp.Reposition(); err != nil {
			t.Fatalf("Reposition() error = %v", err)
		}
	}
}

func expectNothing(t *testing.T, src interfaces.LineSource) {
	t.Helper()
	got, err := nextWithin(src, 150*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Next() = %q, %v; want no line", got, err)
	}
}

func TestFollowSkipsBacklog(t *testing.T) {
	path, src := openFollow(t, "old line\n")

	expectNothing(t, src)
	appendTo(t, path, "new line\n")
	expectLine(t, src, "new line")
}

func TestFollowPartialLineDeliveredOnce(t *testing.T) {
	path, src := openFollow(t, "")

	appendTo(t, path, "first\n")
	expectLine(t, src, "first")

	appendTo(t, path, "par")
	expectNothing(t, src)

	appendTo(t, path, "tial\r\n")
	expectLine(t, src, "partial")

	expectNothing(t, src)

	appendTo(t, path, "a\nb\n")
	expectLine(t, src, "a")
	expectLine(t, src, "b")
	expectNothing(t, src)
}

func TestFollowTruncation(t *testing.T) {
	path, src := openFollow(t, "a fairly long line that was already there\n")

	if err := os.WriteFile(path, []byte("fresh\n"), 0600); err != nil {
		t.Fatal(err)
	}
	expectLine(t, src, "fresh")
}

func TestFollowReplacement(t *testing.T) {
	path, src := openFollow(t, "before\n")

	appendTo(t, path, "last of old\n")
	expectLine(t, src, "last of old")

	tmp := filepath.Join(filepath.Dir(path), "app.log.new")
	if err := os.WriteFile(tmp, []byte("first of new\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	expectLine(t, src, "first of new")
}

func TestFollowReplacementDrainsOldFile(t *testing.T) {
	path, src := openFollow(t, "")
	appendTo(t, path, "a\n")
	expectLine(t, src, "a")

	// Written to the old file before it was rotated away, never read yet
	appendTo(t, path, "b\nc")

	next := path + ".new"
	if err := os.WriteFile(next, []byte("d\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(next, path); err != nil {
		t.Fatal(err)
	}

	f, ok := src.(*follower)
	if !ok {
		t.Fatalf("Open() returned %T, want *follower", src)
	}
	if err := f.checkFile(); err != nil {
		t.Fatalf("checkFile() error = %v", err)
	}

	expectLine(t, src, "b")
	expectLine(t, src, "c")
	expectLine(t, src, "d")
}

func TestFollowCancellation(t *testing.T) {
	_, src := openFollow(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := src.Next(ctx)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Next() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Next() did not return after cancellation")
	}
}
