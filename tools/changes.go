// File change tracking shared by the write and edit tools.

package tools

import "sync"

// FileChange records one mutation applied to the workspace.
type FileChange struct {
	Action   string `json:"action"` // created, overwritten, edited
	Path     string `json:"path"`
	Filename string `json:"filename"`
	Lines    int    `json:"lines,omitempty"`
	Added    int    `json:"added,omitempty"`
	Removed  int    `json:"removed,omitempty"`
}

// ChangeLog accumulates file changes across a loop's lifetime.
// Safe for use by tools running on behalf of one loop instance.
type ChangeLog struct {
	mu      sync.Mutex
	changes []FileChange
}

// NewChangeLog creates an empty change log.
func NewChangeLog() *ChangeLog {
	return &ChangeLog{}
}

// Record appends a change entry.
func (l *ChangeLog) Record(change FileChange) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.changes = append(l.changes, change)
}

// Len returns the number of recorded changes.
func (l *ChangeLog) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.changes)
}

// Since returns a copy of the changes recorded at or after index from.
func (l *ChangeLog) Since(from int) []FileChange {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if from < 0 || from > len(l.changes) {
		return nil
	}
	out := make([]FileChange, len(l.changes)-from)
	copy(out, l.changes[from:])
	return out
}

// Tail returns a copy of the last n changes.
func (l *ChangeLog) Tail(n int) []FileChange {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.changes) {
		n = len(l.changes)
	}
	out := make([]FileChange, n)
	copy(out, l.changes[len(l.changes)-n:])
	return out
}
