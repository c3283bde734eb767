package executor

import (
	"context"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/action"
)

// FieldValue is one form field assignment of a bulkSetValues command.
type FieldValue struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// RecordUpdater computes the next preferences record from the previous
// one. The host applies it to whatever record it currently holds.
type RecordUpdater func(prev action.Record) action.Record

// Capabilities is the set of host functions the executor can drive.
// Every field is optional: a nil capability means the host does not
// support the effect, and the command is reported successful without it.
// A returned error (or a panic) fails the command.
type Capabilities struct {
	OpenSettings         func(ctx context.Context) error
	SetMode              func(ctx context.Context, mode string) error
	SetStep              func(ctx context.Context, step int) error
	SetEditorTone        func(ctx context.Context, tone string) error
	SetNSFW              func(ctx context.Context, enabled bool) error
	TogglePreview        func(ctx context.Context) error
	UpdateUIPref         func(ctx context.Context, update RecordUpdater) error
	UpdateOllamaSetting  func(ctx context.Context, update RecordUpdater) error
	SetFieldValue        func(ctx context.Context, field, value string) error
	ClearField           func(ctx context.Context, field string) error
	BulkSetValues        func(ctx context.Context, entries []FieldValue) error
	SetChatModel         func(ctx context.Context, model string) error
	OpenChatSystemPrompt func(ctx context.Context) error
	SetChatMinimized     func(ctx context.Context, minimized bool) error

	// ShowToast displays a notification. It is used for failed commands
	// and parse errors unless the run is silent.
	ShowToast func(ctx context.Context, message string)
}

// setKey returns an updater that stores value under key, leaving prev untouched.
func setKey(key string, value action.Value) RecordUpdater {
	return func(prev action.Record) action.Record {
		next := prev.Clone()
		next[key] = value
		return next
	}
}
