// Package mcpserver exposes the explanation flow as an MCP tool so editors and
// agents can decode jargon without the CLI.
package mcpserver

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/comigor/jargone-go/internal/logger"
	"github.com/comigor/jargone-go/internal/relay"
	"github.com/comigor/jargone-go/internal/render"
)

const ToolName = "explain_jargon"

// Server answers explain_jargon calls through a relay worker.
type Server struct {
	worker relay.Handler
}

func New(worker relay.Handler) *Server {
	return &Server{worker: worker}
}

// MCP builds the MCP server with the tool registered.
func (s *Server) MCP(version string) *server.MCPServer {
	srv := server.NewMCPServer("jargone", version, server.WithToolCapabilities(false))
	tool := mcp.NewTool(ToolName,
		mcp.WithDescription("Explain jargon, acronyms and terms of art in a piece of text."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The text to explain")),
		mcp.WithString("explanation_level", mcp.Enum("basic", "detailed", "expert"), mcp.Description("How deep the explanation should go")),
		mcp.WithString("user_role", mcp.Description("Role of the reader, e.g. engineer")),
		mcp.WithString("additional_context", mcp.Description("Extra context about where the text comes from")),
	)
	srv.AddTool(tool, s.Explain)
	return srv
}

// Serve runs the MCP server over stdio until stdin closes.
func (s *Server) Serve(version string) error {
	return server.ServeStdio(s.MCP(version))
}

// Explain is the explain_jargon tool handler.
func (s *Server) Explain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := request.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	port := relay.Connect(ctx, s.worker)
	if err := port.Post(relay.Payload{
		Question:          text,
		ExplanationLevel:  request.GetString("explanation_level", ""),
		UserRole:          request.GetString("user_role", ""),
		AdditionalContext: request.GetString("additional_context", ""),
	}); err != nil {
		return nil, err
	}
	resp, err := port.Receive(ctx)
	if err != nil {
		return nil, err
	}

	switch relay.Classify(resp) {
	case relay.KindBlocked:
		return mcp.NewToolResultError("the provider requires browser verification before answering"), nil
	case relay.KindError:
		return mcp.NewToolResultError(relay.ErrorText(resp)), nil
	}
	e, err := render.Parse(resp)
	if err != nil {
		logger.L.Warn("unparseable explanation", "error", err)
		return mcp.NewToolResultError("Error parsing response: " + err.Error()), nil
	}
	return mcp.NewToolResultText(render.Markdown(e)), nil
}
