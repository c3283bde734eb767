// Package actions provides an MCP server that lets an assistant drive the
// prompt builder UI with action commands.
package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/executor"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/session"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/uistate"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/action"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/pkg/types"
)

// Tool names.
const (
	ToolExecute  = "execute_ui_commands"
	ToolValidate = "validate_ui_commands"
	ToolGetState = "get_ui_state"
	ToolUndo     = "undo_ui_commands"
	ToolRedo     = "redo_ui_commands"
)

// MoveResult is returned by the undo and redo tools.
type MoveResult struct {
	Moved        bool `json:"moved"`
	CurrentIndex int  `json:"currentIndex"`
	Size         int  `json:"size"`
	CanUndo      bool `json:"canUndo"`
	CanRedo      bool `json:"canRedo"`
}

type handlers struct {
	service *session.Service
	host    *uistate.Host
}

// NewServer creates an MCP server whose tools run against service and
// report the state of host.
func NewServer(service *session.Service, host *uistate.Host) *server.MCPServer {
	s := server.NewMCPServer(
		"ltx-actions",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	h := &handlers{service: service, host: host}

	executeTool := mcp.NewTool(ToolExecute,
		mcp.WithDescription("Executes UI commands against the prompt builder. "+
			"commands is a JSON array of command objects (or a single object). "+
			"Valid types: "+typeList()),
		mcp.WithString("commands",
			mcp.Required(),
			mcp.Description("JSON command payload"),
		),
		mcp.WithBoolean("skipErrors",
			mcp.Description("Do not show toasts for failed commands"),
		),
		mcp.WithBoolean("silent",
			mcp.Description("Do not show any toasts"),
		),
	)
	s.AddTool(executeTool, h.execute)

	validateTool := mcp.NewTool(ToolValidate,
		mcp.WithDescription("Parses and validates UI commands without executing them"),
		mcp.WithString("commands",
			mcp.Required(),
			mcp.Description("JSON command payload"),
		),
	)
	s.AddTool(validateTool, h.validate)

	stateTool := mcp.NewTool(ToolGetState,
		mcp.WithDescription("Returns the current UI state of the prompt builder"),
	)
	s.AddTool(stateTool, h.getState)

	undoTool := mcp.NewTool(ToolUndo,
		mcp.WithDescription("Moves the command history cursor back by one batch"),
	)
	s.AddTool(undoTool, h.undo)

	redoTool := mcp.NewTool(ToolRedo,
		mcp.WithDescription("Moves the command history cursor forward by one batch"),
	)
	s.AddTool(redoTool, h.redo)

	return s
}

func typeList() string {
	all := action.Types()
	names := make([]string, len(all))
	for i, t := range all {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// execute handles execute_ui_commands. A payload that yields no command
// is reported as a tool error.
func (h *handlers) execute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("commands")
	if err != nil {
		return mcp.NewToolResultError("commands argument is required"), nil
	}
	opts := executor.Options{
		SkipErrors: request.GetBool("skipErrors", false),
		Silent:     request.GetBool("silent", false),
	}

	report := h.service.Run(ctx, raw, opts)
	text, err := encode(report)
	if err != nil {
		return nil, err
	}
	if report.TotalCommands == 0 && len(report.ParseErrors) > 0 {
		return mcp.NewToolResultError(text), nil
	}
	return mcp.NewToolResultText(text), nil
}

// validate handles validate_ui_commands.
func (h *handlers) validate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("commands")
	if err != nil {
		return mcp.NewToolResultError("commands argument is required"), nil
	}

	result := action.ParseCommands(raw)
	text, err := encode(result)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return mcp.NewToolResultError(text), nil
	}
	return mcp.NewToolResultText(text), nil
}

// getState handles get_ui_state.
func (h *handlers) getState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := encode(h.host.State())
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(text), nil
}

func (h *handlers) undo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.moveResult(h.service.Undo(ctx))
}

func (h *handlers) redo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.moveResult(h.service.Redo(ctx))
}

func (h *handlers) moveResult(moved bool) (*mcp.CallToolResult, error) {
	text, err := encode(newMoveResult(moved, h.service.History().Snapshot()))
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(text), nil
}

func newMoveResult(moved bool, snap types.HistorySnapshot) MoveResult {
	return MoveResult{
		Moved:        moved,
		CurrentIndex: snap.CurrentIndex,
		Size:         len(snap.Entries),
		CanUndo:      snap.CanUndo,
		CanRedo:      snap.CanRedo,
	}
}

func encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode tool result: %w", err)
	}
	return string(data), nil
}
