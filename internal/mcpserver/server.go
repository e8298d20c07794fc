// Package mcpserver exposes a prediction session as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/comigor/sentiment-go/internal/logger"
	"github.com/comigor/sentiment-go/internal/prediction"
	"github.com/comigor/sentiment-go/internal/session"
)

// Tool names.
const (
	ToolAnalyze = "analyze_sentiment"
	ToolHistory = "sentiment_history"
)

// Server serves one session to an MCP client.
type Server struct {
	ctrl *session.Controller
	mcp  *server.MCPServer
}

type historyPayload struct {
	History []prediction.Result   `json:"history"`
	Stats   prediction.Statistics `json:"stats"`
}

// New registers the tools for ctrl.
func New(ctrl *session.Controller, version string) *Server {
	s := &Server{
		ctrl: ctrl,
		mcp:  server.NewMCPServer("sentiment", version, server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(mcp.NewTool(ToolAnalyze,
		mcp.WithDescription("Classify the sentiment (positive, neutral, negative) of a text, including Moroccan Darija. Returns the label, per-label confidence and the analyzed text."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to analyze")),
	), s.handleAnalyze)

	s.mcp.AddTool(mcp.NewTool(ToolHistory,
		mcp.WithDescription("List the most recent analyses of this session, newest first, with per-label statistics."),
	), s.handleHistory)

	return s
}

// ServeStdio blocks serving MCP over stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleAnalyze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text is blank; nothing to analyze"), nil
	}

	result, ok, err := s.ctrl.Analyze(ctx, text)
	if err != nil {
		logger.L.Warn("analyze tool failed", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError("no result was produced"), nil
	}
	return jsonResult(result)
}

func (s *Server) handleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v := s.ctrl.View()
	return jsonResult(historyPayload{History: v.History, Stats: v.Stats})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}
