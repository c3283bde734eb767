package uistate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/event"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/executor"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/storage"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

func run(t *testing.T, h *Host, raw string) *types.ExecutionReport {
	t.Helper()
	return executor.New(h.Capabilities()).ExecuteFromJSON(context.Background(), raw, executor.Options{})
}

func TestHost_DefaultState(t *testing.T) {
	s := NewHost().State()
	assert.Equal(t, "cinematic", s.Mode)
	assert.Equal(t, 1, s.Step)
	assert.Equal(t, "balanced", s.EditorTone)
	assert.NotNil(t, s.Fields)
}

func TestHost_AppliesEveryCommand(t *testing.T) {
	h := NewHost()

	report := run(t, h, `[
		{"type":"setMode","value":"animation"},
		{"type":"setStep","value":12},
		{"type":"setEditorTone","value":"energetic"},
		{"type":"setNsfw","value":true},
		{"type":"togglePreview"},
		{"type":"openSettings"},
		{"type":"setChatMinimized","value":true},
		{"type":"openChatSystemPrompt"},
		{"type":"setChatModel","value":"mistral"},
		{"type":"setFieldValue","field":"subject","value":"a fox"},
		{"type":"bulkSetValues","entries":{"genre":"Fantasy","tone":"Whimsical","subject":"a red fox"}},
		{"type":"clearField","field":"tone"},
		{"type":"updateUiPref","key":"theme","value":"dark"},
		{"type":"updateOllamaSetting","key":"temperature","value":0.4}
	]`)
	require.Equal(t, 14, report.SuccessCount, report.Failures())

	s := h.State()
	assert.Equal(t, "animation", s.Mode)
	assert.Equal(t, 12, s.Step)
	assert.Equal(t, "energetic", s.EditorTone)
	assert.True(t, s.NSFW)
	assert.True(t, s.PreviewOpen)
	assert.True(t, s.SettingsOpen)
	assert.False(t, s.ChatMinimized, "opening the system prompt restores the chat")
	assert.True(t, s.SystemPromptOpen)
	assert.Equal(t, "mistral", s.ChatModel)
	assert.Equal(t, types.FieldValues{"subject": "a red fox", "genre": "Fantasy"}, s.Fields)
	assert.Equal(t, `"dark"`, s.UIPrefs["theme"].String())
	assert.Equal(t, "0.4", s.OllamaSettings["temperature"].String())
}

func TestHost_RejectsUnknownModeAndTone(t *testing.T) {
	h := NewHost()

	report := run(t, h, `[{"type":"setMode","value":"vaporwave"},{"type":"setEditorTone","value":"balanced"}]`)
	require.Equal(t, 1, report.FailureCount)
	assert.Equal(t, "Command failed", report.Results[0].Message)
	assert.Contains(t, report.Results[0].Error, "unknown mode")
	assert.Equal(t, "cinematic", h.State().Mode)
}

func TestHost_KnownFields(t *testing.T) {
	h := NewHost(WithKnownFields([]string{"genre", "tone"}))

	report := run(t, h, `[
		{"type":"setFieldValue","field":"genre","value":"Noir"},
		{"type":"setFieldValue","field":"budget","value":"high"},
		{"type":"bulkSetValues","entries":{"tone":"Grim","color":"teal"}}
	]`)

	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 2, report.FailureCount)
	assert.Equal(t, types.FieldValues{"genre": "Noir"}, h.State().Fields, "bulk set is all or nothing")
}

func TestHost_ToastsAreBounded(t *testing.T) {
	h := NewHost(WithClock(func() time.Time { return time.Unix(0, 0) }))
	toast := h.Capabilities().ShowToast

	for i := 0; i < MaxToasts+5; i++ {
		toast(context.Background(), "hello")
	}
	assert.Len(t, h.State().Toasts, MaxToasts)
}

func TestHost_FailedCommandsToast(t *testing.T) {
	h := NewHost()
	run(t, h, `[{"type":"setStep","value":0}]`)

	toasts := h.State().Toasts
	require.Len(t, toasts, 1)
	assert.Contains(t, toasts[0].Message, "between 1 and 22")
}

func TestHost_PublishesEvents(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()

	var changed []event.StateChangedData
	var toasts []string
	received := make(chan struct{}, 10)
	defer bus.Subscribe(event.StateChanged, func(e event.Event) {
		changed = append(changed, e.Data.(event.StateChangedData))
		received <- struct{}{}
	})()
	defer bus.Subscribe(event.ToastShown, func(e event.Event) {
		toasts = append(toasts, e.Data.(event.ToastShownData).Message)
		received <- struct{}{}
	})()

	h := NewHost(WithBus(bus))
	run(t, h, `[{"type":"setMode","value":"drone"},{"type":"setNsfw","value":"maybe"}]`)

	for i := 0; i < 2; i++ {
		select {
		case <-received:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for events")
		}
	}

	require.Len(t, changed, 1)
	assert.Equal(t, "drone", changed[0].State.Mode)
	require.Len(t, toasts, 1)
	assert.Contains(t, toasts[0], "value must be boolean")
}

func TestHost_SaveLoad(t *testing.T) {
	store := storage.NewMemory()
	ctx := context.Background()

	h := NewHost()
	run(t, h, `[{"type":"setStep","value":9},{"type":"updateUiPref","key":"layout","value":{"cols":2}}]`)
	require.NoError(t, h.Save(ctx, store, "s1"))

	restored := NewHost()
	require.NoError(t, restored.Load(ctx, store, "s1"))
	assert.Equal(t, 9, restored.State().Step)
	assert.Equal(t, `{"cols":2}`, restored.State().UIPrefs["layout"].String())

	err := NewHost().Load(ctx, store, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	restored.Reset()
	assert.Equal(t, 1, restored.State().Step)
}
