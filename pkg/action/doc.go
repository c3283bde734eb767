// Package action defines the command protocol an assistant uses to drive
// the host UI.
//
// A payload is either a JSON array of command objects or a single command
// object. Every command carries a "type" discriminant naming one of a
// closed set of variants:
//
//	[
//	  {"type": "setMode", "value": "cinematic"},
//	  {"type": "setStep", "value": 3},
//	  {"type": "bulkSetValues", "entries": {"genre": "Sci-fi", "tone": "Epic"}}
//	]
//
// Parsing is split in two layers. ParseCommands and Decode accept a
// command when it is structurally sound: an object, a known type, and
// every required key present. Whether the values make sense (a step in
// range, a tone from the allowed list) is decided later by the executor,
// which reports such problems per command instead of rejecting the batch.
//
// Payload values are kept as opaque JSON (Value) so that preferences and
// settings can be threaded to the host without interpretation.
package action
