package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/codeatlas-mcp/internal/lookup"
	"github.com/dshills/codeatlas-mcp/internal/store"
)

const (
	// ServerName is the MCP server name
	ServerName = "codeatlas-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp    *server.MCPServer
	store  *store.Store
	lookup *lookup.Index
}

// NewServer creates a new MCP server instance
func NewServer(cfg store.Config) *Server {
	st := store.New(cfg)

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:    mcpServer,
		store:  st,
		lookup: lookup.New(st),
	}

	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(scanWorkspaceTool(), s.handleScanWorkspace)
	s.mcp.AddTool(rescanFileTool(), s.handleRescanFile)
	s.mcp.AddTool(lookupUnitsTool(), s.handleLookupUnits)
	s.mcp.AddTool(getLastScanTool(), s.handleGetLastScan)
}
