package notification

import "strings"

// Batch is the text collected for one recipient and pattern
type Batch struct {
	To      string
	Pattern string
	Lines   []string
}

// Text returns the batched lines, each followed by a newline
func (b Batch) Text() string {
	var sb strings.Builder
	for _, line := range b.Lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

type batchKey struct {
	to      string
	pattern string
}

// Batcher groups lines per recipient and pattern until flushed. It is not
// safe for concurrent use; the dispatch loop owns it.
type Batcher struct {
	order   []batchKey
	pending map[batchKey]*Batch
}

// NewBatcher creates a new batcher
func NewBatcher() *Batcher {
	return &Batcher{
		pending: make(map[batchKey]*Batch),
	}
}

// Add appends line to the batch for (to, pattern)
func (b *Batcher) Add(to, pattern, line string) {
	key := batchKey{to: to, pattern: pattern}
	batch, ok := b.pending[key]
	if !ok {
		batch = &Batch{To: to, Pattern: pattern}
		b.pending[key] = batch
		b.order = append(b.order, key)
	}
	batch.Lines = append(batch.Lines, line)
}

// Len returns the number of pending batches
func (b *Batcher) Len() int {
	return len(b.order)
}

// Flush hands every pending batch to callback in the order the batches were
// first created, then clears them
func (b *Batcher) Flush(callback func(Batch)) {
	order := b.order
	pending := b.pending
	b.order = nil
	b.pending = make(map[batchKey]*Batch)

	for _, key := range order {
		callback(*pending[key])
	}
}
