package types

import (
	"time"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/action"
)

// UIState is the host application's view state as driven by commands.
type UIState struct {
	Mode             string        `json:"mode"`
	Step             int           `json:"step"`
	EditorTone       string        `json:"editorTone"`
	NSFW             bool          `json:"nsfw"`
	PreviewOpen      bool          `json:"previewOpen"`
	SettingsOpen     bool          `json:"settingsOpen"`
	ChatMinimized    bool          `json:"chatMinimized"`
	ChatModel        string        `json:"chatModel,omitempty"`
	SystemPromptOpen bool          `json:"systemPromptOpen"`
	Fields           FieldValues   `json:"fields"`
	UIPrefs          action.Record `json:"uiPrefs"`
	OllamaSettings   action.Record `json:"ollamaSettings"`
	Toasts           []Toast       `json:"toasts,omitempty"`
}

// FieldValues maps form field names to their text.
type FieldValues map[string]string

// Toast is a notification shown to the user.
type Toast struct {
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// DefaultUIState returns the state of a freshly opened host.
func DefaultUIState() UIState {
	return UIState{
		Mode:           "cinematic",
		Step:           1,
		EditorTone:     "balanced",
		Fields:         FieldValues{},
		UIPrefs:        action.Record{},
		OllamaSettings: action.Record{},
	}
}

// Clone returns a deep copy of the state.
func (s UIState) Clone() UIState {
	out := s
	out.Fields = make(FieldValues, len(s.Fields))
	for k, v := range s.Fields {
		out.Fields[k] = v
	}
	out.UIPrefs = s.UIPrefs.Clone()
	out.OllamaSettings = s.OllamaSettings.Clone()
	out.Toasts = append([]Toast(nil), s.Toasts...)
	return out
}
