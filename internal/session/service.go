// Package session ties the executor, the history log and its persistence
// together for one session id.
package session

import (
	"context"
	"sync"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/event"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/executor"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/history"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/logging"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/action"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

// Service runs batches, records them in the history log and persists the
// log after every change. Operations that change the log hold mu from
// execution through persistence.
type Service struct {
	mu sync.Mutex

	exec    *executor.Executor
	history *history.Manager
	tracker *Tracker
	bus     *event.Bus
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithBus publishes history.changed and session.saved events to bus.
func WithBus(bus *event.Bus) ServiceOption {
	return func(s *Service) { s.bus = bus }
}

// NewService creates a session service. tracker may be nil, in which case
// nothing is persisted.
func NewService(exec *executor.Executor, hist *history.Manager, tracker *Tracker, opts ...ServiceOption) *Service {
	s := &Service{
		exec:    exec,
		history: hist,
		tracker: tracker,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Executor() *executor.Executor { return s.exec }

func (s *Service) History() *history.Manager { return s.history }

// SessionID returns the persisted session id, or "" without a tracker.
func (s *Service) SessionID() string {
	if s.tracker == nil {
		return ""
	}
	return s.tracker.SessionID()
}

// Restore loads the persisted log into the history manager and returns
// the number of entries restored.
func (s *Service) Restore(ctx context.Context) int {
	if s.tracker == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.tracker.Load(ctx)
	s.history.Load(entries)
	if cursor, ok := s.tracker.LoadCursor(ctx); ok && cursor < len(entries)-1 {
		s.history.GoToEntry(cursor)
	}
	s.changed()
	logging.Debug().Str("session", s.tracker.SessionID()).Int("entries", len(entries)).Msg("session restored")
	return len(s.history.Entries())
}

// Run parses and executes raw, then records the batch. Payloads that
// produce no commands are reported but not recorded.
func (s *Service) Run(ctx context.Context, raw string, opts executor.Options) *types.ExecutionReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := s.exec.ExecuteFromJSON(ctx, raw, opts)
	s.record(ctx, report)
	return report
}

// RunCommands executes already decoded commands and records the batch.
func (s *Service) RunCommands(ctx context.Context, commands []action.Command, opts executor.Options) *types.ExecutionReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := s.exec.Execute(ctx, commands, opts)
	s.record(ctx, report)
	return report
}

func (s *Service) record(ctx context.Context, report *types.ExecutionReport) {
	if report.TotalCommands == 0 {
		return
	}
	s.history.AddEntry(report.Commands(), report)
	s.changed()
	s.persist(ctx)
}

// Undo moves the history cursor back and persists the log.
func (s *Service) Undo(ctx context.Context) bool {
	return s.move(ctx, s.history.Undo)
}

// Redo moves the history cursor forward and persists the log.
func (s *Service) Redo(ctx context.Context) bool {
	return s.move(ctx, s.history.Redo)
}

// GoTo moves the history cursor to index.
func (s *Service) GoTo(ctx context.Context, index int) bool {
	return s.move(ctx, func() bool { return s.history.GoToEntry(index) })
}

func (s *Service) move(ctx context.Context, step func() bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved := step()
	if moved {
		s.changed()
		s.persist(ctx)
	}
	return moved
}

// ClearHistory empties the log and removes the persisted copy.
func (s *Service) ClearHistory(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history.Clear()
	s.changed()
	if s.tracker != nil {
		s.tracker.Clear(ctx)
	}
}

// Export returns the history log as JSON.
func (s *Service) Export() ([]byte, error) {
	return s.history.ExportHistory()
}

// Import replaces the history log and persists it. On error the log is unchanged.
func (s *Service) Import(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.history.ImportHistory(data); err != nil {
		return err
	}
	s.changed()
	s.persist(ctx)
	return nil
}

func (s *Service) persist(ctx context.Context) {
	if s.tracker == nil {
		return
	}
	entries := s.history.Entries()
	if !s.tracker.Save(ctx, entries) {
		return
	}
	s.tracker.SaveCursor(ctx, s.history.CurrentIndex())
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.Event{
		Type: event.SessionSaved,
		Data: event.SessionSavedData{SessionID: s.tracker.SessionID(), Entries: len(entries)},
	})
}

func (s *Service) changed() {
	if s.bus == nil {
		return
	}
	snap := s.history.Snapshot()
	s.bus.Publish(event.Event{
		Type: event.HistoryChanged,
		Data: event.HistoryChangedData{
			Size:         len(snap.Entries),
			CurrentIndex: snap.CurrentIndex,
			CanUndo:      snap.CanUndo,
			CanRedo:      snap.CanRedo,
		},
	})
}
