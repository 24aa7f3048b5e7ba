// Package mcp exposes the review engine as a tool-call server over the
// mark3labs/mcp-go stdio transport: review_plan, review_code,
// review_precommit, review_status, review_history.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/reviewbridge/reviewbridge/internal/handlers"
	"github.com/reviewbridge/reviewbridge/internal/reviewer"
)

// Server wraps the review handlers and exposes them as MCP tools.
type Server struct {
	h *handlers.Handlers
}

// NewServer creates the MCP server wrapper.
func NewServer(h *handlers.Handlers) *Server {
	return &Server{h: h}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("reviewbridge", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.reviewPlanTool())
	srv.AddTool(s.reviewCodeTool())
	srv.AddTool(s.reviewPrecommitTool())
	srv.AddTool(s.reviewStatusTool())
	srv.AddTool(s.reviewHistoryTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

func (s *Server) reviewPlanTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("review_plan",
		mcp.WithDescription("Review a proposed implementation plan before code is written. Returns a JSON verdict (approve/revise/reject), a summary, and a list of findings."),
		mcp.WithString("plan", mcp.Required(), mcp.Description("The plan text to review")),
		mcp.WithString("context", mcp.Description("Additional context: related code, prior discussion, constraints")),
		mcp.WithArray("focus", mcp.Description("Focus areas, e.g. [\"security\",\"performance\"]"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("depth", mcp.Description("Review depth: quick or thorough (default: thorough)")),
		mcp.WithString("session_id", mcp.Description("Resume a prior review thread by session id")),
	)
	return tool, s.handleReviewPlan
}

func (s *Server) handleReviewPlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plan, err := request.RequireString("plan")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: plan"), nil
	}

	req := reviewer.PlanRequest{
		Plan:      plan,
		Context:   request.GetString("context", ""),
		Focus:     stringArray(request, "focus"),
		Depth:     request.GetString("depth", ""),
		SessionID: request.GetString("session_id", ""),
	}

	result, err := s.h.ReviewPlan(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) reviewCodeTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("review_code",
		mcp.WithDescription("Review a code diff for correctness, style, and risk. Large diffs are chunked and merged automatically. Returns a JSON verdict (approve/request_changes/reject), a summary, and a list of findings."),
		mcp.WithString("diff", mcp.Required(), mcp.Description("Unified diff text to review")),
		mcp.WithString("context", mcp.Description("Additional context for the change")),
		mcp.WithArray("criteria", mcp.Description("Review criteria, e.g. [\"correctness\",\"style\",\"tests\"]"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("session_id", mcp.Description("Resume a prior review thread by session id")),
	)
	return tool, s.handleReviewCode
}

func (s *Server) handleReviewCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	diff, err := request.RequireString("diff")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: diff"), nil
	}

	req := reviewer.CodeRequest{
		Diff:      diff,
		Context:   request.GetString("context", ""),
		Criteria:  stringArray(request, "criteria"),
		SessionID: request.GetString("session_id", ""),
	}

	result, err := s.h.ReviewCode(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) reviewPrecommitTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("review_precommit",
		mcp.WithDescription("Review the currently staged changes before commit. Reads the staged diff automatically unless one is provided. Returns ready_to_commit, blockers, and warnings; no staged changes is reported as a non-blocking warning, not an error."),
		mcp.WithString("diff", mcp.Description("Explicit diff to review; overrides auto-detected staged changes even when empty")),
		mcp.WithBoolean("auto_diff", mcp.Description("Whether to auto-read the staged diff when none is provided (default: true)")),
		mcp.WithArray("checklist", mcp.Description("Checklist items to verify before commit, e.g. [\"tests pass\",\"no debug logging\"]"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("session_id", mcp.Description("Resume a prior review thread by session id")),
	)
	return tool, s.handleReviewPrecommit
}

func (s *Server) handleReviewPrecommit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := handlers.PrecommitInput{
		SessionID: request.GetString("session_id", ""),
		Checklist: stringArray(request, "checklist"),
	}
	if raw, ok := request.GetArguments()["diff"]; ok {
		if str, ok := raw.(string); ok {
			in.Diff = &str
		}
	}
	if raw, ok := request.GetArguments()["auto_diff"]; ok {
		if b, ok := raw.(bool); ok {
			in.AutoDiff = &b
		}
	}

	result, err := s.h.ReviewPrecommit(ctx, in, handlers.ToolCallSurface)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) reviewStatusTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("review_status",
		mcp.WithDescription("Check a review session's lifecycle status: in_progress, completed, failed, or not_found. Includes elapsed_seconds when the session exists."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id to look up")),
	)
	return tool, s.handleReviewStatus
}

func (s *Server) handleReviewStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}

	result, err := s.h.Status(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) reviewHistoryTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("review_history",
		mcp.WithDescription("List past review log entries, either all entries for a session or the most recent entries across all sessions."),
		mcp.WithString("session_id", mcp.Description("Restrict to one session's history")),
		mcp.WithNumber("last_n", mcp.Description("Limit to the N most recent entries when session_id is not given (default 10)")),
	)
	return tool, s.handleReviewHistory
}

func (s *Server) handleReviewHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var lastN *int
	if raw, ok := request.GetArguments()["last_n"]; ok {
		if f, ok := raw.(float64); ok {
			n := int(f)
			lastN = &n
		}
	}

	result, err := s.h.History(ctx, sessionID, lastN)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// stringArray reads a JSON array argument as []string. Non-string elements
// are skipped rather than rejected, so a caller's stray non-string entry
// degrades gracefully instead of failing the whole tool call.
func stringArray(request mcp.CallToolRequest, key string) []string {
	raw, ok := request.GetArguments()[key]
	if !ok {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, v := range items {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
