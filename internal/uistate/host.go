// Package uistate is an in-memory model of the prompt builder's UI. Its
// capabilities are what the server, CLI and MCP tools execute commands
// against.
package uistate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/event"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/executor"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/logging"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/storage"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/action"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

// KeyPrefix namespaces persisted UI state in the store.
const KeyPrefix = "ltx-ui-state-"

// MaxToasts bounds the toasts kept in the state.
const MaxToasts = 20

var (
	ErrUnknownMode  = errors.New("unknown mode")
	ErrUnknownTone  = errors.New("unknown editor tone")
	ErrUnknownField = errors.New("unknown field")
)

// Host owns a UIState and mutates it through its capabilities.
type Host struct {
	mu          sync.RWMutex
	state       types.UIState
	knownFields map[string]bool
	bus         *event.Bus
	now         func() time.Time
}

// Option configures a Host.
type Option func(*Host)

// WithKnownFields rejects form fields outside fields. An empty list accepts any field.
func WithKnownFields(fields []string) Option {
	return func(h *Host) {
		if len(fields) == 0 {
			h.knownFields = nil
			return
		}
		h.knownFields = make(map[string]bool, len(fields))
		for _, f := range fields {
			h.knownFields[f] = true
		}
	}
}

// WithBus publishes state.changed and toast.shown events to bus.
func WithBus(bus *event.Bus) Option {
	return func(h *Host) { h.bus = bus }
}

// WithClock overrides the toast timestamp source.
func WithClock(now func() time.Time) Option {
	return func(h *Host) { h.now = now }
}

// NewHost creates a host in the default state.
func NewHost(opts ...Option) *Host {
	h := &Host{
		state: types.DefaultUIState(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// State returns a copy of the current state.
func (h *Host) State() types.UIState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state.Clone()
}

// Reset restores the default state, keeping nothing.
func (h *Host) Reset() {
	h.mu.Lock()
	h.state = types.DefaultUIState()
	h.mu.Unlock()
}

// Capabilities returns the full capability set backed by this host.
func (h *Host) Capabilities() executor.Capabilities {
	return executor.Capabilities{
		OpenSettings: func(ctx context.Context) error {
			return h.update(action.TypeOpenSettings, func(s *types.UIState) error {
				s.SettingsOpen = true
				return nil
			})
		},
		SetMode: func(ctx context.Context, mode string) error {
			return h.update(action.TypeSetMode, func(s *types.UIState) error {
				if !contains(action.Modes, mode) {
					return fmt.Errorf("%w %q", ErrUnknownMode, mode)
				}
				s.Mode = mode
				return nil
			})
		},
		SetStep: func(ctx context.Context, step int) error {
			return h.update(action.TypeSetStep, func(s *types.UIState) error {
				s.Step = step
				return nil
			})
		},
		SetEditorTone: func(ctx context.Context, tone string) error {
			return h.update(action.TypeSetEditorTone, func(s *types.UIState) error {
				if !contains(action.EditorTones, tone) {
					return fmt.Errorf("%w %q", ErrUnknownTone, tone)
				}
				s.EditorTone = tone
				return nil
			})
		},
		SetNSFW: func(ctx context.Context, enabled bool) error {
			return h.update(action.TypeSetNSFW, func(s *types.UIState) error {
				s.NSFW = enabled
				return nil
			})
		},
		TogglePreview: func(ctx context.Context) error {
			return h.update(action.TypeTogglePreview, func(s *types.UIState) error {
				s.PreviewOpen = !s.PreviewOpen
				return nil
			})
		},
		UpdateUIPref: func(ctx context.Context, update executor.RecordUpdater) error {
			return h.update(action.TypeUpdateUIPref, func(s *types.UIState) error {
				s.UIPrefs = update(s.UIPrefs)
				return nil
			})
		},
		UpdateOllamaSetting: func(ctx context.Context, update executor.RecordUpdater) error {
			return h.update(action.TypeUpdateOllamaSetting, func(s *types.UIState) error {
				s.OllamaSettings = update(s.OllamaSettings)
				return nil
			})
		},
		SetFieldValue: func(ctx context.Context, field, value string) error {
			return h.update(action.TypeSetFieldValue, func(s *types.UIState) error {
				if err := h.checkField(field); err != nil {
					return err
				}
				s.Fields[field] = value
				return nil
			})
		},
		ClearField: func(ctx context.Context, field string) error {
			return h.update(action.TypeClearField, func(s *types.UIState) error {
				if err := h.checkField(field); err != nil {
					return err
				}
				delete(s.Fields, field)
				return nil
			})
		},
		BulkSetValues: func(ctx context.Context, entries []executor.FieldValue) error {
			return h.update(action.TypeBulkSetValues, func(s *types.UIState) error {
				for _, e := range entries {
					if err := h.checkField(e.Field); err != nil {
						return err
					}
				}
				for _, e := range entries {
					s.Fields[e.Field] = e.Value
				}
				return nil
			})
		},
		SetChatModel: func(ctx context.Context, model string) error {
			return h.update(action.TypeSetChatModel, func(s *types.UIState) error {
				s.ChatModel = model
				return nil
			})
		},
		OpenChatSystemPrompt: func(ctx context.Context) error {
			return h.update(action.TypeOpenChatSystemPrompt, func(s *types.UIState) error {
				s.SystemPromptOpen = true
				s.ChatMinimized = false
				return nil
			})
		},
		SetChatMinimized: func(ctx context.Context, minimized bool) error {
			return h.update(action.TypeSetChatMinimized, func(s *types.UIState) error {
				s.ChatMinimized = minimized
				return nil
			})
		},
		ShowToast: func(ctx context.Context, message string) {
			h.toast(message)
		},
	}
}

// update applies fn to a copy of the state and commits it only on success.
func (h *Host) update(t action.Type, fn func(*types.UIState) error) error {
	h.mu.Lock()
	next := h.state.Clone()
	if err := fn(&next); err != nil {
		h.mu.Unlock()
		return err
	}
	if next.Fields == nil {
		next.Fields = types.FieldValues{}
	}
	h.state = next
	snapshot := next.Clone()
	h.mu.Unlock()

	if h.bus != nil {
		h.bus.Publish(event.Event{
			Type: event.StateChanged,
			Data: event.StateChangedData{Command: t, State: snapshot},
		})
	}
	return nil
}

func (h *Host) toast(message string) {
	h.mu.Lock()
	h.state.Toasts = append(h.state.Toasts, types.Toast{Message: message, Time: h.now()})
	if n := len(h.state.Toasts); n > MaxToasts {
		h.state.Toasts = append([]types.Toast(nil), h.state.Toasts[n-MaxToasts:]...)
	}
	h.mu.Unlock()

	logging.Debug().Str("message", message).Msg("toast")
	if h.bus != nil {
		h.bus.Publish(event.Event{
			Type: event.ToastShown,
			Data: event.ToastShownData{Message: message},
		})
	}
}

func (h *Host) checkField(field string) error {
	if h.knownFields != nil && !h.knownFields[field] {
		return fmt.Errorf("%w %q", ErrUnknownField, field)
	}
	return nil
}

// Save persists the state under KeyPrefix+sessionID.
func (h *Host) Save(ctx context.Context, store storage.Store, sessionID string) error {
	data, err := json.Marshal(h.State())
	if err != nil {
		return fmt.Errorf("failed to encode ui state: %w", err)
	}
	return store.Set(ctx, KeyPrefix+sessionID, data)
}

// Load replaces the state with the one persisted for sessionID. A missing
// key leaves the state untouched and returns storage.ErrNotFound.
func (h *Host) Load(ctx context.Context, store storage.Store, sessionID string) error {
	data, err := store.Get(ctx, KeyPrefix+sessionID)
	if err != nil {
		return err
	}

	state := types.DefaultUIState()
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to decode ui state: %w", err)
	}
	if state.Fields == nil {
		state.Fields = types.FieldValues{}
	}
	if state.UIPrefs == nil {
		state.UIPrefs = action.Record{}
	}
	if state.OllamaSettings == nil {
		state.OllamaSettings = action.Record{}
	}

	h.mu.Lock()
	h.state = state
	h.mu.Unlock()
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
