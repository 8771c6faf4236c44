// Package contextbuf holds the rolling conversion context shared by every
// request in a process.
package contextbuf

import "sync"

const DefaultLimit = 200

// Buffer is a bounded text buffer. Lengths are counted in runes. Text is
// stored as runes, so invalid UTF-8 given to Append or Set reads back with
// each bad byte replaced by U+FFFD.
type Buffer struct {
	mu    sync.RWMutex
	text  []rune
	limit int
}

func New(limit int) *Buffer {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Buffer{limit: limit}
}

func (b *Buffer) Limit() int {
	return b.limit
}

func (b *Buffer) Current() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.text)
}

func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.text)
}

// Append adds text to the end and keeps only the trailing Limit runes.
func (b *Buffer) Append(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := append(b.text, []rune(text)...)
	if over := len(next) - b.limit; over > 0 {
		next = next[over:]
	}
	// Copy so the dropped prefix does not pin the old backing array.
	b.text = append([]rune(nil), next...)
}

// Set replaces the content without applying the limit; an operator edit is
// kept whole until the next Append trims it. Valid UTF-8 reads back unchanged.
func (b *Buffer) Set(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = []rune(text)
}

func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = nil
}
