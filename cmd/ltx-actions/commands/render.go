package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/action"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

// Renderer prints reports, history and schema either as colored text or
// as indented JSON.
type Renderer struct {
	out  io.Writer
	json bool
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer, jsonOutput bool) *Renderer {
	return &Renderer{out: out, json: jsonOutput}
}

var (
	okLabel   = color.New(color.FgGreen, color.Bold).Sprint
	failLabel = color.New(color.FgRed, color.Bold).Sprint
	dimText   = color.New(color.FgHiBlack).Sprint
	headText  = color.New(color.FgCyan, color.Bold).Sprint
	addText   = color.New(color.FgGreen).Sprint
	delText   = color.New(color.FgRed).Sprint
	toastText = color.New(color.FgYellow).Sprint
)

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.out, string(data))
	return err
}

// Report prints an execution report.
func (r *Renderer) Report(report *types.ExecutionReport) error {
	if r.json {
		return r.JSON(report)
	}
	for _, msg := range report.ParseErrors {
		fmt.Fprintf(r.out, "%s %s\n", failLabel("parse"), msg)
	}
	for _, res := range report.Results {
		name := "unknown"
		if res.Command != nil {
			name = string(res.Command.Type())
		}
		if res.Success {
			fmt.Fprintf(r.out, "%s %-18s %s\n", okLabel("✓"), name, res.Message)
			continue
		}
		fmt.Fprintf(r.out, "%s %-18s %s: %s\n", failLabel("✗"), name, res.Message, res.Error)
	}
	fmt.Fprintln(r.out, dimText(fmt.Sprintf("%d commands, %d succeeded, %d failed in %s",
		report.TotalCommands, report.SuccessCount, report.FailureCount, report.Duration)))
	return nil
}

// ValidationResult is the JSON shape of the validate command.
type ValidationResult struct {
	Valid    bool         `json:"valid"`
	Commands action.Batch `json:"commands"`
	Errors   []string     `json:"errors"`
}

// Validation prints the outcome of parsing a batch without running it.
func (r *Renderer) Validation(result action.ParseResult) error {
	res := ValidationResult{
		Valid:    result.OK() && len(result.Commands) > 0,
		Commands: result.Commands,
		Errors:   result.Errors,
	}
	if res.Errors == nil {
		res.Errors = []string{}
	}
	if r.json {
		return r.JSON(res)
	}
	for _, cmd := range result.Commands {
		fmt.Fprintf(r.out, "%s %s\n", okLabel("✓"), cmd.Type())
	}
	for _, msg := range result.Errors {
		fmt.Fprintf(r.out, "%s %s\n", failLabel("✗"), msg)
	}
	if res.Valid {
		fmt.Fprintln(r.out, dimText(fmt.Sprintf("%d valid commands", len(result.Commands))))
	} else if len(result.Commands) == 0 && len(result.Errors) == 0 {
		fmt.Fprintln(r.out, failLabel("no commands"))
	}
	return nil
}

// Schema prints the command catalog.
func (r *Renderer) Schema() error {
	specs := action.Specs()
	if r.json {
		return r.JSON(map[string]any{
			"commands":    specs,
			"modes":       action.Modes,
			"editorTones": action.EditorTones,
			"minStep":     action.MinStep,
			"maxStep":     action.MaxStep,
		})
	}
	for _, spec := range specs {
		fields := ""
		if len(spec.Required) > 0 {
			fields = " " + dimText("("+strings.Join(spec.Required, ", ")+")")
		}
		fmt.Fprintf(r.out, "%s%s\n    %s\n", headText(string(spec.Type)), fields, spec.Summary)
	}
	fmt.Fprintf(r.out, "\nmodes: %s\n", strings.Join(action.Modes, ", "))
	fmt.Fprintf(r.out, "editor tones: %s\n", strings.Join(action.EditorTones, ", "))
	fmt.Fprintf(r.out, "steps: %d-%d\n", action.MinStep, action.MaxStep)
	return nil
}

// History prints a history snapshot with a marker on the current entry.
func (r *Renderer) History(snap types.HistorySnapshot) error {
	if r.json {
		if snap.Entries == nil {
			snap.Entries = []types.HistoryEntry{}
		}
		return r.JSON(snap)
	}
	if len(snap.Entries) == 0 {
		fmt.Fprintln(r.out, dimText("history is empty"))
		return nil
	}
	for i, entry := range snap.Entries {
		marker := " "
		if i == snap.CurrentIndex {
			marker = headText("›")
		}
		line := fmt.Sprintf("%s %3d  %s  %s", marker, i, entry.Timestamp.Format("2006-01-02 15:04:05"), summarize(entry.Commands))
		if i > snap.CurrentIndex {
			line = dimText(line)
		}
		fmt.Fprintln(r.out, line)
	}
	fmt.Fprintln(r.out, dimText(fmt.Sprintf("position %d of %d (undo: %t, redo: %t)",
		snap.CurrentIndex+1, len(snap.Entries), snap.CanUndo, snap.CanRedo)))
	return nil
}

// Moved prints the result of an undo, redo or goto.
func (r *Renderer) Moved(verb string, moved bool, snap types.HistorySnapshot) error {
	if r.json {
		return r.JSON(struct {
			Moved   bool                  `json:"moved"`
			History types.HistorySnapshot `json:"history"`
		}{moved, snap})
	}
	if !moved {
		fmt.Fprintf(r.out, "%s nothing to %s\n", dimText("·"), verb)
		return nil
	}
	fmt.Fprintf(r.out, "%s %s: position %d of %d\n", okLabel("✓"), verb, snap.CurrentIndex+1, len(snap.Entries))
	return nil
}

// Toasts prints notifications raised during a run.
func (r *Renderer) Toasts(toasts []types.Toast) {
	if r.json {
		return
	}
	for _, t := range toasts {
		fmt.Fprintf(r.out, "%s %s\n", toastText("!"), t.Message)
	}
}

// StateDiff prints a line diff between two UI states.
func (r *Renderer) StateDiff(before, after types.UIState) error {
	text, added, removed, err := stateDiff(before, after)
	if err != nil {
		return err
	}
	if r.json {
		return r.JSON(map[string]any{"diff": text, "additions": added, "deletions": removed})
	}
	if text == "" {
		fmt.Fprintln(r.out, dimText("state unchanged"))
		return nil
	}
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			fmt.Fprintln(r.out, addText(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprintln(r.out, delText(line))
		default:
			fmt.Fprintln(r.out, dimText(line))
		}
	}
	return nil
}

// stateDiff renders the indented JSON of both states and diffs them line by
// line. Unchanged lines are prefixed with a space.
func stateDiff(before, after types.UIState) (string, int, int, error) {
	a, err := json.MarshalIndent(before, "", "  ")
	if err != nil {
		return "", 0, 0, err
	}
	b, err := json.MarshalIndent(after, "", "  ")
	if err != nil {
		return "", 0, 0, err
	}
	if string(a) == string(b) {
		return "", 0, 0, nil
	}

	dmp := diffmatchpatch.New()
	ca, cb, lineArray := dmp.DiffLinesToChars(string(a)+"\n", string(b)+"\n")
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lineArray)

	var sb strings.Builder
	added, removed := 0, 0
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				added++
			case diffmatchpatch.DiffDelete:
				removed++
			}
		}
	}
	return sb.String(), added, removed, nil
}

func summarize(commands action.Batch) string {
	if len(commands) == 0 {
		return "(empty)"
	}
	names := make([]string, 0, len(commands))
	for _, cmd := range commands {
		names = append(names, string(cmd.Type()))
	}
	const limit = 4
	if len(names) > limit {
		return strings.Join(names[:limit], ", ") + fmt.Sprintf(" +%d more", len(names)-limit)
	}
	return strings.Join(names, ", ")
}
