package action

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"

	"github.com/tidwall/gjson"
)

// Kind identifies the JSON shape held by a Value.
type Kind int

const (
	KindAbsent Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "absent"
	}
}

// Value is an opaque JSON value carried by a command payload.
// The protocol never interprets it beyond the typed accessors below;
// the raw bytes are threaded to capabilities unchanged.
type Value struct {
	raw json.RawMessage
}

// RawValue wraps already-encoded JSON. The bytes are copied.
func RawValue(raw []byte) Value {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Value{}
	}
	return Value{raw: append(json.RawMessage(nil), raw...)}
}

// ValueOf encodes v. Values that cannot be encoded become absent.
func ValueOf(v any) Value {
	data, err := json.Marshal(v)
	if err != nil {
		return Value{}
	}
	return Value{raw: data}
}

func (v Value) result() gjson.Result {
	return gjson.ParseBytes(v.raw)
}

// Kind reports the JSON shape of the value.
func (v Value) Kind() Kind {
	if len(v.raw) == 0 {
		return KindAbsent
	}
	r := v.result()
	switch r.Type {
	case gjson.Null:
		return KindNull
	case gjson.True, gjson.False:
		return KindBool
	case gjson.Number:
		return KindNumber
	case gjson.String:
		return KindString
	case gjson.JSON:
		if r.IsArray() {
			return KindArray
		}
		return KindObject
	}
	return KindAbsent
}

// IsAbsent reports whether the value was never set.
func (v Value) IsAbsent() bool { return len(v.raw) == 0 }

// AsString returns the string payload when the value is a JSON string.
func (v Value) AsString() (string, bool) {
	if v.Kind() != KindString {
		return "", false
	}
	return v.result().Str, true
}

// AsBool returns the boolean payload when the value is true or false.
func (v Value) AsBool() (bool, bool) {
	if v.Kind() != KindBool {
		return false, false
	}
	return v.result().Type == gjson.True, true
}

// AsInt returns the integer payload when the value is a finite number
// without a fractional part. 3 and 3.0 are both integers.
func (v Value) AsInt() (int, bool) {
	if v.Kind() != KindNumber {
		return 0, false
	}
	n := v.result().Num
	if math.IsInf(n, 0) || math.IsNaN(n) || n != math.Trunc(n) {
		return 0, false
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, false
	}
	return int(n), true
}

// Text renders the value for a text field: strings as-is, everything
// else as compact JSON.
func (v Value) Text() string {
	if s, ok := v.AsString(); ok {
		return s
	}
	return v.String()
}

// Entry is one key/value pair of a JSON object, in document order.
type Entry struct {
	Key   string
	Value Value
}

// Entries returns the members of an object value in document order.
// A repeated key keeps the position of its first occurrence and the value
// of its last, as encoding/json does. It returns nil for any other kind.
func (v Value) Entries() []Entry {
	if v.Kind() != KindObject {
		return nil
	}
	var entries []Entry
	seen := map[string]int{}
	v.result().ForEach(func(key, val gjson.Result) bool {
		k, raw := key.String(), RawValue([]byte(val.Raw))
		if i, ok := seen[k]; ok {
			entries[i].Value = raw
			return true
		}
		seen[k] = len(entries)
		entries = append(entries, Entry{Key: k, Value: raw})
		return true
	})
	return entries
}

// members indexes the top-level members of an object document by key.
// The last occurrence of a repeated key wins.
func members(doc gjson.Result) map[string]gjson.Result {
	out := map[string]gjson.Result{}
	doc.ForEach(func(key, val gjson.Result) bool {
		out[key.String()] = val
		return true
	})
	return out
}

// Interface decodes the value into plain Go values (map[string]any,
// []any, float64, string, bool, nil).
func (v Value) Interface() any {
	if len(v.raw) == 0 {
		return nil
	}
	var out any
	if err := json.Unmarshal(v.raw, &out); err != nil {
		return nil
	}
	return out
}

// Equal compares two values by their decoded content.
func (v Value) Equal(other Value) bool {
	a, err := json.Marshal(v.Interface())
	if err != nil {
		return false
	}
	b, err := json.Marshal(other.Interface())
	if err != nil {
		return false
	}
	return v.Kind() == other.Kind() && bytes.Equal(a, b)
}

// String returns the compact JSON encoding.
func (v Value) String() string {
	if len(v.raw) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v.raw); err != nil {
		return string(v.raw)
	}
	return buf.String()
}

func (v Value) MarshalJSON() ([]byte, error) {
	if len(v.raw) == 0 {
		return []byte("null"), nil
	}
	return v.raw, nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	*v = RawValue(data)
	return nil
}

// Record is a string-keyed bag of opaque values, used for UI
// preferences and Ollama settings.
type Record map[string]Value

// Clone returns a shallow copy; Values are immutable so that is enough.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Keys returns the record keys sorted.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
