package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/action"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

var (
	ErrNotSequence  = errors.New("history is not a JSON array")
	ErrInvalidEntry = errors.New("invalid history entry")
)

// Manager owns a State behind a mutex.
type Manager struct {
	mu       sync.Mutex
	state    State
	now      func() time.Time
	onChange func(types.HistorySnapshot)
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxSize bounds the log. Values <= 0 select DefaultMaxSize.
func WithMaxSize(n int) Option {
	return func(m *Manager) { m.state = NewState(n) }
}

// WithClock overrides the entry timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithOnChange registers fn to run after every transition that changed
// the log or the cursor. It runs outside the manager's lock.
func WithOnChange(fn func(types.HistorySnapshot)) Option {
	return func(m *Manager) { m.onChange = fn }
}

// NewManager creates an empty manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		state: NewState(DefaultMaxSize),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// dispatch applies a and reports whether anything changed.
func (m *Manager) dispatch(a Action) (State, bool) {
	m.mu.Lock()
	prev := m.state
	next := prev.Apply(a)
	m.state = next
	m.mu.Unlock()

	_, replaced := a.(Replace)
	changed := replaced ||
		next.CurrentIndex != prev.CurrentIndex ||
		len(next.Entries) != len(prev.Entries) ||
		next.NextID != prev.NextID
	if changed && m.onChange != nil {
		m.onChange(next.Snapshot())
	}
	return next, changed
}

// AddEntry records a batch and its report and returns the new entry.
func (m *Manager) AddEntry(commands []action.Command, report *types.ExecutionReport) types.HistoryEntry {
	next, _ := m.dispatch(AddEntry{
		Commands:  commands,
		Report:    report,
		Timestamp: m.now(),
	})
	return next.Entries[len(next.Entries)-1]
}

// Undo moves the cursor back. It returns false at the floor.
func (m *Manager) Undo() bool {
	_, changed := m.dispatch(Undo{})
	return changed
}

// Redo moves the cursor forward. It returns false at the cap.
func (m *Manager) Redo() bool {
	_, changed := m.dispatch(Redo{})
	return changed
}

// GoToEntry moves the cursor to i. Out-of-range indexes are ignored and
// report false.
func (m *Manager) GoToEntry(i int) bool {
	m.mu.Lock()
	n := len(m.state.Entries)
	m.mu.Unlock()
	if i < -1 || i >= n {
		return false
	}
	m.dispatch(GoTo{Index: i})
	return true
}

// Clear empties the log.
func (m *Manager) Clear() {
	m.dispatch(Clear{})
}

// State returns the current state. Its Entries slice must not be modified.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Snapshot() types.HistorySnapshot { return m.State().Snapshot() }

func (m *Manager) Entries() []types.HistoryEntry { return m.Snapshot().Entries }

func (m *Manager) CurrentIndex() int { return m.State().CurrentIndex }

func (m *Manager) CanUndo() bool { return m.State().CanUndo() }

func (m *Manager) CanRedo() bool { return m.State().CanRedo() }

// ExportHistory encodes the entries as a JSON array.
func (m *Manager) ExportHistory() ([]byte, error) {
	entries := m.Entries()
	return json.MarshalIndent(entries, "", "  ")
}

// ImportHistory replaces the log with the entries in data. The payload
// must be a JSON array of well-formed entries; otherwise nothing changes.
func (m *Manager) ImportHistory(data []byte) error {
	entries, err := DecodeEntries(data)
	if err != nil {
		return err
	}
	m.Load(entries)
	return nil
}

// Load replaces the log with entries without further validation.
func (m *Manager) Load(entries []types.HistoryEntry) {
	m.dispatch(Replace{Entries: entries})
}

// DecodeEntries parses and validates a JSON array of history entries.
func DecodeEntries(data []byte) ([]types.HistoryEntry, error) {
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsArray() {
		return nil, ErrNotSequence
	}

	var entries []types.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if err := validateEntries(entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []types.HistoryEntry{}
	}
	return entries, nil
}

func validateEntries(entries []types.HistoryEntry) error {
	seen := make(map[int64]bool, len(entries))
	for i, e := range entries {
		if e.ID <= 0 {
			return fmt.Errorf("%w: entry %d: id must be positive", ErrInvalidEntry, i)
		}
		if seen[e.ID] {
			return fmt.Errorf("%w: entry %d: duplicate id %d", ErrInvalidEntry, i, e.ID)
		}
		seen[e.ID] = true

		r := e.Report
		if r == nil {
			return fmt.Errorf("%w: entry %d: missing report", ErrInvalidEntry, i)
		}
		if r.SuccessCount+r.FailureCount != r.TotalCommands || r.TotalCommands != len(r.Results) {
			return fmt.Errorf("%w: entry %d: report counts do not match its results", ErrInvalidEntry, i)
		}
	}
	return nil
}
