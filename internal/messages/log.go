package messages

import "sync"

// Log is the process-wide notification log: an append-only sequence of
// human-readable status lines that a display surface reads back.
//
// A Log is created once by the composition root and handed to every
// collaborator that reports to it. It is safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries []string
}

// New returns an empty Log.
func New() *Log {
	return &Log{}
}

// Add appends msg to the log.
func (l *Log) Add(msg string) {
	l.mu.Lock()
	l.entries = append(l.entries, msg)
	l.mu.Unlock()
}

// Messages returns a copy of the entries in insertion order.
func (l *Log) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear drops every entry. It is meant for display surfaces that offer a
// reset; gateway operations never call it.
func (l *Log) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}
