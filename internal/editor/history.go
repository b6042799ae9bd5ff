// Package editor holds the undo/redo history of one task being edited and the
// session that binds it to the task store.
package editor

import (
	"time"

	"github.com/sadopc/taskflow/internal/store"
)

// DefaultHistoryLimit caps how many snapshots a History keeps.
const DefaultHistoryLimit = 200

// Snapshot is the editable part of a task at one point in an edit.
type Snapshot struct {
	Title     string
	Content   string
	Status    store.Status
	Priority  store.Priority
	ChangedAt time.Time
	Changed   bool
}

// History is a linear undo stack with a cursor. Pushing after an undo drops
// every snapshot past the cursor. It is not safe for concurrent use.
type History struct {
	entries []Snapshot
	cursor  int
	limit   int
}

// NewHistory returns an empty history holding at most limit snapshots; the
// oldest are dropped first. limit < 1 means DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	return &History{cursor: -1, limit: limit}
}

// Reset empties the history.
func (h *History) Reset() {
	h.entries = nil
	h.cursor = -1
}

// Seed makes s the only snapshot.
func (h *History) Seed(s Snapshot) {
	h.entries = []Snapshot{s}
	h.cursor = 0
}

// Push appends s after the cursor and moves the cursor onto it.
func (h *History) Push(s Snapshot) {
	h.entries = append(h.entries[:h.cursor+1], s)
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = append(h.entries[:0], h.entries[over:]...)
	}
	h.cursor = len(h.entries) - 1
}

func (h *History) CanUndo() bool { return h.cursor > 0 }

func (h *History) CanRedo() bool { return h.cursor >= 0 && h.cursor < len(h.entries)-1 }

// Undo steps back one snapshot. At the oldest snapshot it returns false and
// leaves the cursor alone.
func (h *History) Undo() (Snapshot, bool) {
	if !h.CanUndo() {
		return Snapshot{}, false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Redo steps forward one snapshot, saturating like Undo.
func (h *History) Redo() (Snapshot, bool) {
	if !h.CanRedo() {
		return Snapshot{}, false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

func (h *History) Len() int { return len(h.entries) }

// Cursor is -1 for an empty history.
func (h *History) Cursor() int { return h.cursor }

// Current returns the snapshot under the cursor.
func (h *History) Current() (Snapshot, bool) {
	if h.cursor < 0 {
		return Snapshot{}, false
	}
	return h.entries[h.cursor], true
}
