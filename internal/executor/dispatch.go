package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/action"
)

// invalidError is a semantic validation failure. The capability is not invoked.
type invalidError struct {
	typ    action.Type
	reason string
}

func (e *invalidError) Error() string { return e.reason }

func invalid(t action.Type, reason string) *invalidError {
	return &invalidError{typ: t, reason: reason}
}

var errUnknownType = errors.New("unknown command type")

var (
	stepRangeMsg = fmt.Sprintf("Step must be between %d and %d", action.MinStep, action.MaxStep)
	toneListMsg  = "Must be one of: " + strings.Join(action.EditorTones, ", ")
)

// dispatch validates cmd and invokes the matching capability. It returns
// the success message, or an error that is either an *invalidError,
// errUnknownType, or whatever the capability returned.
func dispatch(ctx context.Context, caps *Capabilities, cmd action.Command) (string, error) {
	switch c := cmd.(type) {
	case action.OpenSettings:
		return "Opened settings", call0(ctx, caps.OpenSettings)

	case action.TogglePreview:
		return "Toggled preview", call0(ctx, caps.TogglePreview)

	case action.OpenChatSystemPrompt:
		return "Opened chat system prompt", call0(ctx, caps.OpenChatSystemPrompt)

	case action.SetMode:
		mode, ok := c.Value.AsString()
		if !ok {
			return "", invalid(c.Type(), "value must be string")
		}
		return fmt.Sprintf("Set mode to %s", mode), call1(ctx, caps.SetMode, mode)

	case action.SetStep:
		step, ok := c.Value.AsInt()
		if !ok || step < action.MinStep || step > action.MaxStep {
			return "", invalid(c.Type(), stepRangeMsg)
		}
		return fmt.Sprintf("Set step to %d", step), call1(ctx, caps.SetStep, step)

	case action.SetEditorTone:
		tone, ok := c.Value.AsString()
		if !ok || !contains(action.EditorTones, tone) {
			return "", invalid(c.Type(), toneListMsg)
		}
		return fmt.Sprintf("Set editor tone to %s", tone), call1(ctx, caps.SetEditorTone, tone)

	case action.SetNSFW:
		enabled, ok := c.Value.AsBool()
		if !ok {
			return "", invalid(c.Type(), "value must be boolean")
		}
		return fmt.Sprintf("%s NSFW content", enabledWord(enabled)), call1(ctx, caps.SetNSFW, enabled)

	case action.SetChatMinimized:
		minimized, ok := c.Value.AsBool()
		if !ok {
			return "", invalid(c.Type(), "value must be boolean")
		}
		msg := "Restored chat"
		if minimized {
			msg = "Minimized chat"
		}
		return msg, call1(ctx, caps.SetChatMinimized, minimized)

	case action.SetChatModel:
		model, ok := c.Value.AsString()
		if !ok {
			return "", invalid(c.Type(), "value must be string")
		}
		return fmt.Sprintf("Set chat model to %s", model), call1(ctx, caps.SetChatModel, model)

	case action.SetFieldValue:
		field, fok := c.Field.AsString()
		value, vok := c.Value.AsString()
		if !fok || field == "" || !vok {
			return "", invalid(c.Type(), "field and value are required")
		}
		return fmt.Sprintf("Set %s", field), call2(ctx, caps.SetFieldValue, field, value)

	case action.ClearField:
		field, ok := c.Field.AsString()
		if !ok || field == "" {
			return "", invalid(c.Type(), "field is required")
		}
		return fmt.Sprintf("Cleared %s", field), call1(ctx, caps.ClearField, field)

	case action.BulkSetValues:
		if c.Entries.Kind() != action.KindObject {
			return "", invalid(c.Type(), "entries must be an object")
		}
		members := c.Entries.Entries()
		entries := make([]FieldValue, 0, len(members))
		for _, m := range members {
			entries = append(entries, FieldValue{Field: m.Key, Value: m.Value.Text()})
		}
		return fmt.Sprintf("Set %d fields", len(entries)), call1(ctx, caps.BulkSetValues, entries)

	case action.UpdateUIPref:
		key, ok := c.Key.AsString()
		if !ok || key == "" {
			return "", invalid(c.Type(), "key is required")
		}
		return fmt.Sprintf("Updated UI preference %s", key), call1(ctx, caps.UpdateUIPref, setKey(key, c.Value))

	case action.UpdateOllamaSetting:
		key, ok := c.Key.AsString()
		if !ok || key == "" {
			return "", invalid(c.Type(), "key is required")
		}
		return fmt.Sprintf("Updated Ollama setting %s", key), call1(ctx, caps.UpdateOllamaSetting, setKey(key, c.Value))

	default:
		return "", errUnknownType
	}
}

func call0(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func call1[T any](ctx context.Context, fn func(context.Context, T) error, a T) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, a)
}

func call2[A, B any](ctx context.Context, fn func(context.Context, A, B) error, a A, b B) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, a, b)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func enabledWord(b bool) string {
	if b {
		return "Enabled"
	}
	return "Disabled"
}
