package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/tidwall/gjson"
)

var (
	ErrInvalidJSON  = errors.New("invalid JSON")
	ErrNotObject    = errors.New("command must be a JSON object")
	ErrMissingType  = errors.New("command type is missing or not a string")
	ErrUnknownType  = errors.New("unknown command type")
	ErrMissingField = errors.New("missing required field")
)

// StructureError describes why a candidate is not a well-formed command.
type StructureError struct {
	// Type is the discriminant as it appeared in the input, if any.
	Type string
	// Missing lists required keys that were absent.
	Missing []string
	// Suggestion is the closest known type for an unrecognized one.
	Suggestion Type
	Err        error
}

func (e *StructureError) Error() string {
	switch {
	case errors.Is(e.Err, ErrUnknownType) && e.Suggestion != "":
		return fmt.Sprintf("unknown command type %q, did you mean %q?", e.Type, e.Suggestion)
	case errors.Is(e.Err, ErrUnknownType):
		return fmt.Sprintf("unknown command type %q", e.Type)
	case errors.Is(e.Err, ErrMissingField):
		return fmt.Sprintf("%s is missing required field(s): %s", e.Type, strings.Join(e.Missing, ", "))
	}
	return e.Err.Error()
}

func (e *StructureError) Unwrap() error { return e.Err }

// LookupType resolves a discriminant to a known Type. Matching falls
// back to case-insensitive comparison so "setNSFW" resolves to setNsfw.
func LookupType(name string) (Type, bool) {
	for _, s := range schema {
		if string(s.typ) == name {
			return s.typ, true
		}
	}
	for _, s := range schema {
		if strings.EqualFold(string(s.typ), name) {
			return s.typ, true
		}
	}
	return "", false
}

// suggestType returns the closest known type within a small edit distance.
func suggestType(name string) Type {
	name = strings.ToLower(name)
	if name == "" {
		return ""
	}
	best, bestDist := Type(""), -1
	for _, s := range schema {
		d := levenshtein.ComputeDistance(name, strings.ToLower(string(s.typ)))
		if bestDist < 0 || d < bestDist {
			best, bestDist = s.typ, d
		}
	}
	limit := len(name) / 3
	if limit < 2 {
		limit = 2
	}
	if bestDist > limit {
		return ""
	}
	return best
}

// IsValid reports whether raw is a structurally valid command: a JSON
// object whose "type" names a known variant and which carries every
// required key. Values are checked for presence only.
func IsValid(raw json.RawMessage) bool {
	_, err := Decode(raw)
	return err == nil
}

// Decode validates raw structurally and returns the typed command.
// Repeated keys resolve to their last occurrence. Errors are always
// *StructureError.
func Decode(raw json.RawMessage) (Command, error) {
	if !gjson.ValidBytes(raw) {
		return nil, &StructureError{Err: ErrInvalidJSON}
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, &StructureError{Err: ErrNotObject}
	}

	fields := members(doc)

	tag := fields["type"]
	if tag.Type != gjson.String {
		return nil, &StructureError{Err: ErrMissingType}
	}
	t, ok := LookupType(tag.Str)
	if !ok {
		return nil, &StructureError{Type: tag.Str, Suggestion: suggestType(tag.Str), Err: ErrUnknownType}
	}

	var missing []string
	for _, key := range RequiredFields(t) {
		if _, ok := fields[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &StructureError{Type: string(t), Missing: missing, Err: ErrMissingField}
	}

	field := func(key string) Value {
		return RawValue([]byte(fields[key].Raw))
	}

	switch t {
	case TypeSetFieldValue:
		return SetFieldValue{Field: field("field"), Value: field("value")}, nil
	case TypeClearField:
		return ClearField{Field: field("field")}, nil
	case TypeBulkSetValues:
		return BulkSetValues{Entries: field("entries")}, nil
	case TypeSetMode:
		return SetMode{Value: field("value")}, nil
	case TypeSetStep:
		return SetStep{Value: field("value")}, nil
	case TypeSetEditorTone:
		return SetEditorTone{Value: field("value")}, nil
	case TypeSetNSFW:
		return SetNSFW{Value: field("value")}, nil
	case TypeTogglePreview:
		return TogglePreview{}, nil
	case TypeOpenSettings:
		return OpenSettings{}, nil
	case TypeSetChatMinimized:
		return SetChatMinimized{Value: field("value")}, nil
	case TypeUpdateUIPref:
		return UpdateUIPref{Key: field("key"), Value: field("value")}, nil
	case TypeUpdateOllamaSetting:
		return UpdateOllamaSetting{Key: field("key"), Value: field("value")}, nil
	case TypeSetChatModel:
		return SetChatModel{Value: field("value")}, nil
	case TypeOpenChatSystemPrompt:
		return OpenChatSystemPrompt{}, nil
	}
	return nil, &StructureError{Type: tag.Str, Err: ErrUnknownType}
}
