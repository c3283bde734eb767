package types

import (
	"time"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/action"
)

// HistoryEntry pairs a submitted batch with the report it produced.
// Entries are never mutated after creation.
type HistoryEntry struct {
	ID        int64            `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Commands  action.Batch     `json:"commands"`
	Report    *ExecutionReport `json:"report"`
}

// HistorySnapshot is the navigable view of a history log.
type HistorySnapshot struct {
	Entries      []HistoryEntry `json:"entries"`
	CurrentIndex int            `json:"currentIndex"`
	CanUndo      bool           `json:"canUndo"`
	CanRedo      bool           `json:"canRedo"`
	MaxSize      int            `json:"maxSize"`
}
