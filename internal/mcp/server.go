// Package mcp exposes the concierge over the Model Context Protocol, so
// agent frontends can ask guest questions and inspect stored knowledge.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/guestdesk/concierge/internal/config"
	"github.com/guestdesk/concierge/internal/engine"
	"github.com/guestdesk/concierge/internal/knowledge"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the concierge tools.
type Server struct {
	cfg       *config.Config
	engine    *engine.Engine
	knowledge *knowledge.Store
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(cfg *config.Config, eng *engine.Engine, ks *knowledge.Store) *Server {
	s := &Server{cfg: cfg, engine: eng, knowledge: ks}

	s.mcp = server.NewMCPServer(
		"concierge",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(askConciergeTool, s.handleAskConcierge)
	s.mcp.AddTool(listPropertiesTool, s.handleListProperties)
	s.mcp.AddTool(getKnowledgeTool, s.handleGetKnowledge)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
