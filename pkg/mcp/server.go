// Package mcp exposes the props analysis as MCP tools over stdio.
package mcp

import (
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/tsproptypes/pkg/mcplog"
	"github.com/gnana997/tsproptypes/pkg/scanner"
)

const serverVersion = "0.1.0-dev"

// Server implements the MCP server for tsproptypes.
type Server struct {
	mcpServer *server.MCPServer
	scanner   *scanner.Scanner
	config    scanner.ScanConfig
	root      string
	logger    *mcplog.Logger // nil disables call logging
}

// NewServer creates a server that analyzes files under root. Tool paths are
// resolved against root and may not leave it.
func NewServer(s *scanner.Scanner, cfg scanner.ScanConfig, root string, logger *mcplog.Logger) (*Server, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}
	srv := &Server{scanner: s, config: cfg, root: absRoot, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(srv.loggingMiddleware()))
	}
	srv.mcpServer = server.NewMCPServer("tsproptypes", serverVersion, opts...)

	srv.mcpServer.AddTools(
		server.ServerTool{Tool: parseFileTool(), Handler: srv.handleParseFile},
		server.ServerTool{Tool: scanDirectoryTool(), Handler: srv.handleScanDirectory},
	)
	return srv, nil
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
