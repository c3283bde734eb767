package action

import (
	"encoding/json"
	"fmt"
)

// Type is the discriminant carried in a command's "type" field.
type Type string

const (
	TypeSetFieldValue        Type = "setFieldValue"
	TypeClearField           Type = "clearField"
	TypeBulkSetValues        Type = "bulkSetValues"
	TypeSetMode              Type = "setMode"
	TypeSetStep              Type = "setStep"
	TypeSetEditorTone        Type = "setEditorTone"
	TypeSetNSFW              Type = "setNsfw"
	TypeTogglePreview        Type = "togglePreview"
	TypeOpenSettings         Type = "openSettings"
	TypeSetChatMinimized     Type = "setChatMinimized"
	TypeUpdateUIPref         Type = "updateUiPref"
	TypeUpdateOllamaSetting  Type = "updateOllamaSetting"
	TypeSetChatModel         Type = "setChatModel"
	TypeOpenChatSystemPrompt Type = "openChatSystemPrompt"
)

// Step bounds for setStep.
const (
	MinStep = 1
	MaxStep = 22
)

// Modes lists the host's application modes.
var Modes = []string{"cinematic", "classic", "drone", "animation", "photography", "nsfw"}

// EditorTones lists the accepted editor tones.
var EditorTones = []string{"melancholic", "balanced", "energetic", "dramatic"}

// schema holds the required payload keys of each variant, in declaration order.
var schema = []struct {
	typ      Type
	required []string
	summary  string
}{
	{TypeSetFieldValue, []string{"field", "value"}, "Set a single form field"},
	{TypeClearField, []string{"field"}, "Clear a single form field"},
	{TypeBulkSetValues, []string{"entries"}, "Set several form fields at once"},
	{TypeSetMode, []string{"value"}, "Switch the application mode"},
	{TypeSetStep, []string{"value"}, "Jump to a builder step (1-22)"},
	{TypeSetEditorTone, []string{"value"}, "Change the editor tone"},
	{TypeSetNSFW, []string{"value"}, "Enable or disable NSFW content"},
	{TypeTogglePreview, nil, "Toggle the prompt preview panel"},
	{TypeOpenSettings, nil, "Open the settings panel"},
	{TypeSetChatMinimized, []string{"value"}, "Minimize or restore the chat"},
	{TypeUpdateUIPref, []string{"key", "value"}, "Update a UI preference"},
	{TypeUpdateOllamaSetting, []string{"key", "value"}, "Update an Ollama setting"},
	{TypeSetChatModel, []string{"value"}, "Select the chat model"},
	{TypeOpenChatSystemPrompt, nil, "Open the chat system prompt editor"},
}

// Spec describes one command variant for help output and tool schemas.
type Spec struct {
	Type     Type     `json:"type"`
	Required []string `json:"required"`
	Summary  string   `json:"summary"`
}

// Specs returns the variant table in declaration order.
func Specs() []Spec {
	out := make([]Spec, len(schema))
	for i, s := range schema {
		out[i] = Spec{Type: s.typ, Required: append([]string{}, s.required...), Summary: s.summary}
	}
	return out
}

// Types returns every command type in declaration order.
func Types() []Type {
	out := make([]Type, len(schema))
	for i, s := range schema {
		out[i] = s.typ
	}
	return out
}

// RequiredFields returns the payload keys a variant must carry.
func RequiredFields(t Type) []string {
	for _, s := range schema {
		if s.typ == t {
			return append([]string{}, s.required...)
		}
	}
	return nil
}

// Command is a single typed instruction emitted by the assistant.
// The set of implementations is closed to this package.
type Command interface {
	Type() Type
	isCommand()
}

// SetFieldValue sets one form field.
type SetFieldValue struct {
	Field Value `json:"field"`
	Value Value `json:"value"`
}

// ClearField empties one form field.
type ClearField struct {
	Field Value `json:"field"`
}

// BulkSetValues sets several form fields from an object of field → value.
type BulkSetValues struct {
	Entries Value `json:"entries"`
}

// SetMode switches the application mode. Value must be one of Modes
// for the reference host; other hosts may accept more.
type SetMode struct {
	Value Value `json:"value"`
}

// SetStep jumps the prompt builder to a step between MinStep and MaxStep.
type SetStep struct {
	Value Value `json:"value"`
}

// SetEditorTone changes the editor tone. Value must be one of EditorTones.
type SetEditorTone struct {
	Value Value `json:"value"`
}

// SetNSFW enables or disables NSFW content. Value must be a boolean.
type SetNSFW struct {
	Value Value `json:"value"`
}

// TogglePreview flips the prompt preview panel.
type TogglePreview struct{}

// OpenSettings opens the settings panel.
type OpenSettings struct{}

// SetChatMinimized minimizes (true) or restores (false) the chat window.
type SetChatMinimized struct {
	Value Value `json:"value"`
}

// UpdateUIPref writes Value under Key in the UI preferences record.
type UpdateUIPref struct {
	Key   Value `json:"key"`
	Value Value `json:"value"`
}

// UpdateOllamaSetting writes Value under Key in the Ollama settings record.
type UpdateOllamaSetting struct {
	Key   Value `json:"key"`
	Value Value `json:"value"`
}

// SetChatModel selects the model used by the chat assistant.
type SetChatModel struct {
	Value Value `json:"value"`
}

// OpenChatSystemPrompt opens the chat system prompt editor.
type OpenChatSystemPrompt struct{}

func (SetFieldValue) Type() Type        { return TypeSetFieldValue }
func (ClearField) Type() Type           { return TypeClearField }
func (BulkSetValues) Type() Type        { return TypeBulkSetValues }
func (SetMode) Type() Type              { return TypeSetMode }
func (SetStep) Type() Type              { return TypeSetStep }
func (SetEditorTone) Type() Type        { return TypeSetEditorTone }
func (SetNSFW) Type() Type              { return TypeSetNSFW }
func (TogglePreview) Type() Type        { return TypeTogglePreview }
func (OpenSettings) Type() Type         { return TypeOpenSettings }
func (SetChatMinimized) Type() Type     { return TypeSetChatMinimized }
func (UpdateUIPref) Type() Type         { return TypeUpdateUIPref }
func (UpdateOllamaSetting) Type() Type  { return TypeUpdateOllamaSetting }
func (SetChatModel) Type() Type         { return TypeSetChatModel }
func (OpenChatSystemPrompt) Type() Type { return TypeOpenChatSystemPrompt }

func (SetFieldValue) isCommand()        {}
func (ClearField) isCommand()           {}
func (BulkSetValues) isCommand()        {}
func (SetMode) isCommand()              {}
func (SetStep) isCommand()              {}
func (SetEditorTone) isCommand()        {}
func (SetNSFW) isCommand()              {}
func (TogglePreview) isCommand()        {}
func (OpenSettings) isCommand()         {}
func (SetChatMinimized) isCommand()     {}
func (UpdateUIPref) isCommand()         {}
func (UpdateOllamaSetting) isCommand()  {}
func (SetChatModel) isCommand()         {}
func (OpenChatSystemPrompt) isCommand() {}

// Normalize returns the value form of cmd. Pointers to variants satisfy
// Command through their value methods; Normalize dereferences them so
// callers can switch on value types only. A nil pointer yields nil.
func Normalize(cmd Command) Command {
	switch c := cmd.(type) {
	case *SetFieldValue:
		return deref(c)
	case *ClearField:
		return deref(c)
	case *BulkSetValues:
		return deref(c)
	case *SetMode:
		return deref(c)
	case *SetStep:
		return deref(c)
	case *SetEditorTone:
		return deref(c)
	case *SetNSFW:
		return deref(c)
	case *TogglePreview:
		return deref(c)
	case *OpenSettings:
		return deref(c)
	case *SetChatMinimized:
		return deref(c)
	case *UpdateUIPref:
		return deref(c)
	case *UpdateOllamaSetting:
		return deref(c)
	case *SetChatModel:
		return deref(c)
	case *OpenChatSystemPrompt:
		return deref(c)
	}
	return cmd
}

func deref[T Command](p *T) Command {
	if p == nil {
		return nil
	}
	return *p
}

// marshalTagged encodes payload as a JSON object with "type" as its first member.
func marshalTagged(t Type, payload any) ([]byte, error) {
	tag, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s command: %w", t, err)
	}
	out := append([]byte(`{"type":`), tag...)
	if len(body) > 2 {
		out = append(out, ',')
		out = append(out, body[1:]...)
		return out, nil
	}
	return append(out, '}'), nil
}

// MarshalJSON encodes the command with its "type" tag first.
func (c SetFieldValue) MarshalJSON() ([]byte, error) {
	type payload SetFieldValue
	return marshalTagged(c.Type(), payload(c))
}

// MarshalJSON encodes the command with its "type" tag first.
func (c ClearField) MarshalJSON() ([]byte, error) {
	type payload ClearField
	return marshalTagged(c.Type(), payload(c))
}

// MarshalJSON encodes the command with its "type" tag first.
func (c BulkSetValues) MarshalJSON() ([]byte, error) {
	type payload BulkSetValues
	return marshalTagged(c.Type(), payload(c))
}

// MarshalJSON encodes the command with its "type" tag first.
func (c SetMode) MarshalJSON() ([]byte, error) {
	type payload SetMode
	return marshalTagged(c.Type(), payload(c))
}

// MarshalJSON encodes the command with its "type" tag first.
func (c SetStep) MarshalJSON() ([]byte, error) {
	type payload SetStep
	return marshalTagged(c.Type(), payload(c))
}

// MarshalJSON encodes the command with its "type" tag first.
func (c SetEditorTone) MarshalJSON() ([]byte, error) {
	type payload SetEditorTone
	return marshalTagged(c.Type(), payload(c))
}

// MarshalJSON encodes the command with its "type" tag first.
func (c SetNSFW) MarshalJSON() ([]byte, error) {
	type payload SetNSFW
	return marshalTagged(c.Type(), payload(c))
}

// MarshalJSON encodes the command with its "type" tag first.
func (c TogglePreview) MarshalJSON() ([]byte, error) {
	return marshalTagged(c.Type(), struct{}{})
}

// MarshalJSON encodes the command with its "type" tag first.
func (c OpenSettings) MarshalJSON() ([]byte, error) {
	return marshalTagged(c.Type(), struct{}{})
}

// MarshalJSON encodes the command with its "type" tag first.
func (c SetChatMinimized) MarshalJSON() ([]byte, error) {
	type payload SetChatMinimized
	return marshalTagged(c.Type(), payload(c))
}

// MarshalJSON encodes the command with its "type" tag first.
func (c UpdateUIPref) MarshalJSON() ([]byte, error) {
	type payload UpdateUIPref
	return marshalTagged(c.Type(), payload(c))
}

// MarshalJSON encodes the command with its "type" tag first.
func (c UpdateOllamaSetting) MarshalJSON() ([]byte, error) {
	type payload UpdateOllamaSetting
	return marshalTagged(c.Type(), payload(c))
}

// MarshalJSON encodes the command with its "type" tag first.
func (c SetChatModel) MarshalJSON() ([]byte, error) {
	type payload SetChatModel
	return marshalTagged(c.Type(), payload(c))
}

// MarshalJSON encodes the command with its "type" tag first.
func (c OpenChatSystemPrompt) MarshalJSON() ([]byte, error) {
	return marshalTagged(c.Type(), struct{}{})
}

// Batch is an ordered list of commands that round-trips through JSON.
type Batch []Command

func (b Batch) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Command(b))
}

// UnmarshalJSON decodes every element strictly; one malformed command
// fails the whole batch.
func (b *Batch) UnmarshalJSON(data []byte) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return err
	}
	out := make(Batch, 0, len(elems))
	for i, elem := range elems {
		cmd, err := Decode(elem)
		if err != nil {
			return fmt.Errorf("command %d: %w", i, err)
		}
		out = append(out, cmd)
	}
	*b = out
	return nil
}
