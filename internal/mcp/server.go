package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/pageutil/internal/pending"
)

// Version is set via ldflags at build time.
var Version = "dev"

// StringBackend resolves catalog strings.
type StringBackend interface {
	GetString(ctx context.Context, identifier, component string, a any) (string, error)
}

// RegistryBackend reads a live pending registry. Only a running server
// has one worth watching, so Local does not implement it.
type RegistryBackend interface {
	Status(ctx context.Context) (pending.Status, error)
	WaitIdle(ctx context.Context, poll time.Duration) error
}

// Backend is the full tool set, served by client.Client.
type Backend interface {
	StringBackend
	RegistryBackend
}

// Server wraps an MCP server that exposes the registry and catalog tools.
type Server struct {
	strings  StringBackend
	registry RegistryBackend
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server over backend. The pending tools are
// registered only when backend also implements RegistryBackend.
func NewServer(backend StringBackend) *Server {
	s := &Server{strings: backend}
	if rb, ok := backend.(RegistryBackend); ok {
		s.registry = rb
	}

	s.mcp = server.NewMCPServer(
		"pageutil",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	if s.registry != nil {
		s.mcp.AddTool(pendingCountTool, s.handlePendingCount)
		s.mcp.AddTool(waitForIdleTool, s.handleWaitForIdle)
	}
	s.mcp.AddTool(getStringTool, s.handleGetString)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
