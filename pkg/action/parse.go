package action

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	parseErrorPrefix  = "Parse error: "
	invalidElementMsg = "Invalid structure or missing required fields"
	invalidRootMsg    = "Root: Expected array of commands or single command object"
)

// ParseResult is the outcome of ParseCommands. Commands holds every
// accepted command in input order; Errors holds one human-readable line
// per rejected element (or a single parse/root error).
type ParseResult struct {
	Commands []Command `json:"commands"`
	Errors   []string  `json:"errors"`
}

// OK reports whether the payload parsed without any rejected element.
func (r ParseResult) OK() bool { return len(r.Errors) == 0 }

// ParseCommands turns raw model output into validated commands.
//
// The root may be a JSON array of commands or a single command object.
// Invalid array elements are dropped and reported by index; the rest of
// the batch is kept. ParseCommands never panics.
func ParseCommands(raw string) (result ParseResult) {
	result = ParseResult{Commands: []Command{}, Errors: []string{}}
	defer func() {
		if r := recover(); r != nil {
			result = ParseResult{
				Commands: []Command{},
				Errors:   []string{fmt.Sprintf("%s%v", parseErrorPrefix, r)},
			}
		}
	}()

	var root json.RawMessage
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		result.Errors = append(result.Errors, parseErrorPrefix+err.Error())
		return result
	}
	root = bytes.TrimSpace(root)

	switch {
	case len(root) > 0 && root[0] == '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(root, &elems); err != nil {
			result.Errors = append(result.Errors, parseErrorPrefix+err.Error())
			return result
		}
		for i, elem := range elems {
			cmd, err := Decode(elem)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Command %d: %s (%v)", i, invalidElementMsg, err))
				continue
			}
			result.Commands = append(result.Commands, cmd)
		}
	case len(root) > 0 && root[0] == '{':
		cmd, err := Decode(root)
		if err != nil {
			result.Errors = append(result.Errors, invalidRootMsg)
			return result
		}
		result.Commands = append(result.Commands, cmd)
	default:
		result.Errors = append(result.Errors, invalidRootMsg)
	}
	return result
}
