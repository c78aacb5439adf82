package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/shehryarbajwa/tvsnap/internal/stats"
)

const (
	serverName    = "tvsnap"
	serverVersion = "1.0.0"
)

// Capturer produces chart snapshots for the tool surface.
type Capturer interface {
	Capture(ctx context.Context, ticker, interval string) ([]byte, error)
}

// Server adapts the capture engine to the MCP tool protocol.
type Server struct {
	mcp    *server.MCPServer
	engine Capturer
	stats  *stats.Collector
}

// New creates the MCP server and registers the tool surface.
func New(engine Capturer, collector *stats.Collector) *Server {
	s := &Server{
		mcp: server.NewMCPServer(
			serverName,
			serverVersion,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
		engine: engine,
		stats:  collector,
	}
	s.registerTools()
	return s
}

// ServeStdio serves the MCP protocol over stdin/stdout until EOF.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}
