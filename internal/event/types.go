package event

import (
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/action"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

// CommandFailedData is the data for command.failed events.
type CommandFailedData struct {
	Index   int         `json:"index"`
	Type    action.Type `json:"commandType"`
	Message string      `json:"message"`
	Error   string      `json:"error"`
}

// ToastShownData is the data for toast.shown events.
type ToastShownData struct {
	Message string `json:"message"`
}

// ReportCreatedData is the data for report.created events.
type ReportCreatedData struct {
	Report *types.ExecutionReport `json:"report"`
}

// HistoryChangedData is the data for history.changed events.
type HistoryChangedData struct {
	Size         int  `json:"size"`
	CurrentIndex int  `json:"currentIndex"`
	CanUndo      bool `json:"canUndo"`
	CanRedo      bool `json:"canRedo"`
}

// StateChangedData is the data for state.changed events.
type StateChangedData struct {
	Command action.Type   `json:"commandType"`
	State   types.UIState `json:"state"`
}

// SessionSavedData is the data for session.saved events.
type SessionSavedData struct {
	SessionID string `json:"sessionID"`
	Entries   int    `json:"entries"`
}
