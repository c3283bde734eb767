// Package executor runs command batches against host capabilities and
// keeps the run log of the reports it produced.
package executor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/event"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/logging"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/action"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

// Options control a single run.
type Options struct {
	// SkipErrors suppresses toasts for failed commands and parse errors.
	SkipErrors bool `json:"skipErrors,omitempty"`
	// Silent suppresses every toast.
	Silent bool `json:"silent,omitempty"`
}

func (o Options) notify() bool { return !o.SkipErrors && !o.Silent }

// Executor runs batches strictly in order, one capability call at a time.
// Batches submitted concurrently are serialized.
type Executor struct {
	caps Capabilities
	bus  *event.Bus
	now  func() time.Time

	runMu sync.Mutex

	mu      sync.RWMutex
	reports []*types.ExecutionReport
	stats   types.Stats
}

// Option configures an Executor.
type Option func(*Executor)

// WithBus publishes command.failed and report.created events to bus.
func WithBus(bus *event.Bus) Option {
	return func(e *Executor) { e.bus = bus }
}

// WithClock overrides the time source used for timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// New creates an executor over the given capabilities.
func New(caps Capabilities, opts ...Option) *Executor {
	e := &Executor{
		caps: caps,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecuteFromJSON parses raw and executes the accepted commands. Parse
// errors are attached to the report; the first one is shown as a toast
// unless the run skips errors or is silent.
func (e *Executor) ExecuteFromJSON(ctx context.Context, raw string, opts Options) *types.ExecutionReport {
	parsed := action.ParseCommands(raw)
	if len(parsed.Errors) > 0 {
		logging.Debug().Strs("errors", parsed.Errors).Msg("command payload had parse errors")
		if opts.notify() {
			e.toast(ctx, parsed.Errors[0])
		}
	}

	report := e.Execute(ctx, parsed.Commands, opts)
	report.ParseErrors = parsed.Errors
	return report
}

// Execute runs commands in order and returns the aggregate report. It
// never fails: validation errors, capability errors and capability panics
// become failed results and the batch continues. The context is passed to
// capabilities but a started batch is never abandoned.
func (e *Executor) Execute(ctx context.Context, commands []action.Command, opts Options) *types.ExecutionReport {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	log := logging.Component("executor")
	start := e.now()

	report := &types.ExecutionReport{
		Timestamp:     start,
		TotalCommands: len(commands),
		Results:       make([]types.CommandResult, 0, len(commands)),
	}

	for i, cmd := range commands {
		cmd = action.Normalize(cmd)
		result := e.run(ctx, cmd)
		report.Results = append(report.Results, result)

		if result.Success {
			report.SuccessCount++
			continue
		}
		report.FailureCount++

		clog := logging.Command(i, typeOf(cmd))
		clog.Debug().Str("error", result.Error).Msg("command failed")

		if e.bus != nil {
			e.bus.PublishSync(event.Event{
				Type: event.CommandFailed,
				Data: event.CommandFailedData{
					Index:   i,
					Type:    typeOf(cmd),
					Message: result.Message,
					Error:   result.Error,
				},
			})
		}
		if opts.notify() {
			e.toast(ctx, fmt.Sprintf("%s: %s", result.Message, result.Error))
		}
	}

	report.Duration = nonNegative(e.now().Sub(start))

	e.record(report)

	log.Debug().
		Int("total", report.TotalCommands).
		Int("success", report.SuccessCount).
		Int("failure", report.FailureCount).
		Dur("duration", report.Duration).
		Msg("batch executed")

	if e.bus != nil {
		e.bus.PublishSync(event.Event{
			Type: event.ReportCreated,
			Data: event.ReportCreatedData{Report: report},
		})
	}
	return report
}

// run executes one command inside the failure boundary.
func (e *Executor) run(ctx context.Context, cmd action.Command) (result types.CommandResult) {
	start := e.now()
	result.Command = cmd

	defer func() {
		if r := recover(); r != nil {
			logging.Error().
				Str("type", typeName(cmd)).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("capability panicked")
			result.Success = false
			result.Message = "Command failed"
			result.Error = fmt.Sprint(r)
		}
		result.Duration = nonNegative(e.now().Sub(start))
	}()

	msg, err := dispatch(ctx, &e.caps, cmd)

	var inv *invalidError
	switch {
	case err == nil:
		result.Success = true
		result.Message = msg
	case errors.As(err, &inv):
		result.Message = fmt.Sprintf("Invalid %s command", inv.typ)
		result.Error = inv.reason
	case errors.Is(err, errUnknownType):
		result.Message = "Unknown command type"
		result.Error = fmt.Sprintf("unsupported command %q", typeName(cmd))
	default:
		result.Message = "Command failed"
		result.Error = err.Error()
	}
	return result
}

// toast shows message through the host, ignoring hosts that panic.
func (e *Executor) toast(ctx context.Context, message string) {
	if e.caps.ShowToast == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logging.Warn().Interface("panic", r).Msg("toast capability panicked")
		}
	}()
	e.caps.ShowToast(ctx, message)
}

func (e *Executor) record(report *types.ExecutionReport) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reports = append(e.reports, report)
	e.stats.TotalReports++
	e.stats.TotalCommands += report.TotalCommands
	e.stats.TotalSuccess += report.SuccessCount
	e.stats.TotalFailures += report.FailureCount
	if e.stats.TotalCommands > 0 {
		e.stats.SuccessRate = float64(e.stats.TotalSuccess) / float64(e.stats.TotalCommands) * 100
	}
}

// Stats returns the rollup counters. SuccessRate is 0 until a command has run.
func (e *Executor) Stats() types.Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stats
}

// Reports returns the run log, oldest first.
func (e *Executor) Reports() []*types.ExecutionReport {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]*types.ExecutionReport(nil), e.reports...)
}

// LastReport returns the most recent report, or nil.
func (e *Executor) LastReport() *types.ExecutionReport {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.reports) == 0 {
		return nil
	}
	return e.reports[len(e.reports)-1]
}

// ClearHistory resets the run log, the counters and the last report.
func (e *Executor) ClearHistory() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reports = nil
	e.stats = types.Stats{}
}

func typeOf(cmd action.Command) action.Type {
	if cmd == nil {
		return ""
	}
	return cmd.Type()
}

func typeName(cmd action.Command) string {
	if cmd == nil {
		return "<nil>"
	}
	return string(cmd.Type())
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
