// Package mcpserver exposes the capture controller as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/go-scripts/teamscribe/internal/controller"
	"github.com/go-scripts/teamscribe/pkg/capture"
)

// Controller is what the tools drive.
type Controller interface {
	Extract(ctx context.Context) (capture.Report, error)
	Export(ctx context.Context, req controller.ExportRequest) (controller.ExportResult, error)
	Stop() bool
	Status() capture.Status
}

// Tools holds the tool handlers.
type Tools struct {
	ctrl Controller
	log  *log.Logger
}

// New registers the tools on a new MCP server.
func New(ctrl Controller, version string, logger *log.Logger) *server.MCPServer {
	s := server.NewMCPServer("teamscribe", version, server.WithToolCapabilities(false))
	t := &Tools{ctrl: ctrl, log: logger}

	s.AddTool(mcp.NewTool("extract_transcript",
		mcp.WithDescription("Scroll the open meeting transcript from top to bottom and return its entries, speakers and duration."),
	), t.Extract)

	s.AddTool(mcp.NewTool("stop_extraction",
		mcp.WithDescription("Stop the running extraction. The pending extract call returns what was captured so far."),
	), t.Stop)

	s.AddTool(mcp.NewTool("export_transcript",
		mcp.WithDescription("Capture the open transcript and write it as a JSON document named YYMMDD_PROJECT_Transcripcion.json."),
		mcp.WithString("project_name",
			mcp.Description("Project label for the file name and metadata. Defaults to the last used project, then the page title."),
		),
	), t.Export)

	s.AddTool(mcp.NewTool("capture_status",
		mcp.WithDescription("Report whether a capture is running and how many rows it has captured."),
	), t.Status)

	return s
}

// Serve runs the server on stdin and stdout until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// Extract handles extract_transcript.
func (t *Tools) Extract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := t.ctrl.Extract(ctx)
	if err != nil {
		return t.failure("extract_transcript", err), nil
	}
	return jsonResult(report.Result)
}

// Stop handles stop_extraction.
func (t *Tools) Stop(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]bool{"stopping": t.ctrl.Stop()})
}

// Export handles export_transcript.
func (t *Tools) Export(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := t.ctrl.Export(ctx, controller.ExportRequest{
		ProjectName: req.GetString("project_name", ""),
	})
	if err != nil {
		return t.failure("export_transcript", err), nil
	}
	return jsonResult(struct {
		Filename string           `json:"filename"`
		Path     string           `json:"path"`
		Stats    controller.Stats `json:"stats"`
	}{out.Filename, out.Path, out.Stats})
}

// Status handles capture_status.
func (t *Tools) Status(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.ctrl.Status())
}

func (t *Tools) failure(tool string, err error) *mcp.CallToolResult {
	if !errors.Is(err, capture.ErrAlreadyInProgress) &&
		!errors.Is(err, controller.ErrPageMismatch) &&
		!errors.Is(err, controller.ErrNoEntriesFound) {
		t.log.Error("tool failed", "tool", tool, "err", err)
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
