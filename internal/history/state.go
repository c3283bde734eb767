// Package history implements the undo/redo log over executed batches.
//
// State is a value type and every transition returns a new State, so a
// host can keep it wherever it keeps the rest of its view state. Manager
// wraps a State for callers that want a shared, locked instance.
package history

import (
	"time"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/action"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

// DefaultMaxSize bounds the log when no size is configured.
const DefaultMaxSize = 100

// State is the history log and its cursor. CurrentIndex is in
// [-1, len(Entries)-1]; -1 means nothing can be undone.
type State struct {
	Entries      []types.HistoryEntry
	CurrentIndex int
	NextID       int64
	MaxSize      int
}

// NewState returns an empty log bounded to maxSize entries.
func NewState(maxSize int) State {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return State{CurrentIndex: -1, NextID: 1, MaxSize: maxSize}
}

func (s State) limit() int {
	if s.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return s.MaxSize
}

// Action is a state transition.
type Action interface {
	apply(State) State
}

// Apply returns the state after a. The receiver is not modified.
func (s State) Apply(a Action) State {
	return a.apply(s)
}

func (s State) CanUndo() bool { return s.CurrentIndex > -1 }

func (s State) CanRedo() bool { return s.CurrentIndex < len(s.Entries)-1 }

// Current returns the entry under the cursor.
func (s State) Current() (types.HistoryEntry, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Entries) {
		return types.HistoryEntry{}, false
	}
	return s.Entries[s.CurrentIndex], true
}

// Snapshot returns a copy suitable for serialization.
func (s State) Snapshot() types.HistorySnapshot {
	entries := make([]types.HistoryEntry, len(s.Entries))
	copy(entries, s.Entries)
	return types.HistorySnapshot{
		Entries:      entries,
		CurrentIndex: s.CurrentIndex,
		CanUndo:      s.CanUndo(),
		CanRedo:      s.CanRedo(),
		MaxSize:      s.MaxSize,
	}
}

// AddEntry drops every entry after the cursor, appends a new entry and
// evicts the oldest entries beyond MaxSize. The cursor ends on the new entry.
type AddEntry struct {
	Commands  action.Batch
	Report    *types.ExecutionReport
	Timestamp time.Time
}

func (a AddEntry) apply(s State) State {
	keep := s.CurrentIndex + 1
	if keep > len(s.Entries) {
		keep = len(s.Entries)
	}

	entries := make([]types.HistoryEntry, keep, keep+1)
	copy(entries, s.Entries[:keep])
	entries = append(entries, types.HistoryEntry{
		ID:        s.NextID,
		Timestamp: a.Timestamp,
		Commands:  append(action.Batch(nil), a.Commands...),
		Report:    a.Report,
	})

	if limit := s.limit(); len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	s.Entries = entries
	s.CurrentIndex = len(entries) - 1
	s.NextID++
	return s
}

// Undo moves the cursor back one entry, stopping at -1.
type Undo struct{}

func (Undo) apply(s State) State {
	if s.CurrentIndex > -1 {
		s.CurrentIndex--
	}
	return s
}

// Redo moves the cursor forward one entry, stopping at the last entry.
type Redo struct{}

func (Redo) apply(s State) State {
	if s.CurrentIndex < len(s.Entries)-1 {
		s.CurrentIndex++
	}
	return s
}

// GoTo moves the cursor to Index when -1 <= Index < len(Entries).
type GoTo struct {
	Index int
}

func (g GoTo) apply(s State) State {
	if g.Index >= -1 && g.Index < len(s.Entries) {
		s.CurrentIndex = g.Index
	}
	return s
}

// Clear empties the log and restarts id allocation.
type Clear struct{}

func (Clear) apply(s State) State {
	s.Entries = nil
	s.CurrentIndex = -1
	s.NextID = 1
	return s
}

// Replace swaps in a whole log, keeping the newest MaxSize entries. The
// cursor moves to the last entry and ids continue after the largest one.
type Replace struct {
	Entries []types.HistoryEntry
}

func (r Replace) apply(s State) State {
	entries := r.Entries
	if limit := s.limit(); len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	s.Entries = append([]types.HistoryEntry(nil), entries...)
	s.CurrentIndex = len(s.Entries) - 1
	s.NextID = 1
	for _, e := range s.Entries {
		if e.ID >= s.NextID {
			s.NextID = e.ID + 1
		}
	}
	return s
}
