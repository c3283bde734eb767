// Package types provides the core data types shared by the executor,
// history, server and CLI.
package types

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/action"
)

// CommandResult is the outcome of executing one command.
// Error is set only when Success is false.
type CommandResult struct {
	Command  action.Command `json:"command"`
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Error    string         `json:"error,omitempty"`
	Duration time.Duration  `json:"duration,omitempty"`
}

func (r *CommandResult) UnmarshalJSON(data []byte) error {
	type alias CommandResult
	var aux struct {
		alias
		Command json.RawMessage `json:"command"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = CommandResult(aux.alias)
	r.Command = nil
	if len(aux.Command) > 0 && string(aux.Command) != "null" {
		cmd, err := action.Decode(aux.Command)
		if err != nil {
			return fmt.Errorf("result command: %w", err)
		}
		r.Command = cmd
	}
	return nil
}

// ExecutionReport aggregates the results of one batch.
// SuccessCount + FailureCount == TotalCommands == len(Results), and
// Results follow the order the commands were submitted in.
type ExecutionReport struct {
	Timestamp     time.Time       `json:"timestamp"`
	TotalCommands int             `json:"totalCommands"`
	SuccessCount  int             `json:"successCount"`
	FailureCount  int             `json:"failureCount"`
	Results       []CommandResult `json:"results"`
	Duration      time.Duration   `json:"duration"`

	// ParseErrors carries parser rejections when the batch came from raw text.
	ParseErrors []string `json:"parseErrors,omitempty"`
}

// Commands returns the executed commands in submission order.
func (r *ExecutionReport) Commands() []action.Command {
	if r == nil {
		return nil
	}
	out := make([]action.Command, 0, len(r.Results))
	for _, res := range r.Results {
		out = append(out, res.Command)
	}
	return out
}

// Failures returns the failed results.
func (r *ExecutionReport) Failures() []CommandResult {
	if r == nil {
		return nil
	}
	var out []CommandResult
	for _, res := range r.Results {
		if !res.Success {
			out = append(out, res)
		}
	}
	return out
}

// Stats are rollup counters over every report an executor has produced
// since it was created or last cleared.
type Stats struct {
	TotalReports  int     `json:"totalReports"`
	TotalCommands int     `json:"totalCommands"`
	TotalSuccess  int     `json:"totalSuccess"`
	TotalFailures int     `json:"totalFailures"`
	SuccessRate   float64 `json:"successRate"`
}
