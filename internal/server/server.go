// Package server assembles the MCP server: it registers the tool set with
// the ambient middleware chain around every handler, registers prompts, and
// rejects invalid registrations at construction time.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/LuiccianDev/mcp-word-office/internal/config"
	"github.com/LuiccianDev/mcp-word-office/internal/tools"
	"github.com/LuiccianDev/mcp-word-office/internal/validation"
)

const (
	// Name and Version identify the server to MCP clients.
	Name    = "word-mcp"
	Version = "1.0.0"
)

const instructions = `This server creates, edits, formats, and protects Word
(.docx) documents inside a set of allowed directories. Relative filenames
resolve into the first allowed directory. Every tool returns a JSON envelope
with a "status" field: branch on "success" or "error", and on "error_type"
for programmatic handling of failures.`

// New builds the MCP server from a tool set. Every handler is wrapped in the
// ambient chain (logging, recovery, metrics, rate limiting); a duplicate tool
// name is a construction error.
func New(cfg config.Config, log zerolog.Logger, ts []tools.Tool) (*server.MCPServer, error) {
	s := server.NewMCPServer(Name, Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	ambient := []validation.Middleware{
		validation.WithLogging(log),
		validation.WithRecovery(log),
		validation.WithMetrics(),
		validation.WithRateLimit(limiter(cfg)),
	}

	seen := make(map[string]bool, len(ts))
	for _, t := range ts {
		if t.Def.Name == "" {
			return nil, fmt.Errorf("tool with empty name")
		}
		if seen[t.Def.Name] {
			return nil, fmt.Errorf("duplicate tool name %q", t.Def.Name)
		}
		seen[t.Def.Name] = true
		s.AddTool(t.Def, server.ToolHandlerFunc(validation.Chain(t.Handler, ambient...)))
	}

	registerPrompts(s)
	return s, nil
}

// ServeStdio runs the server over stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// limiter builds the shared token bucket, or nil when limiting is disabled.
func limiter(cfg config.Config) *rate.Limiter {
	if cfg.RateRPS <= 0 {
		return nil
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RateRPS), burst)
}
