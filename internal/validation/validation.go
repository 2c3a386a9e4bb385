// Package validation implements the middleware chain wrapped around every
// tool handler: document and writability preconditions, panic recovery,
// structured invocation logging, rate limiting, and metrics.
//
// Middlewares compose with Chain, where the first listed middleware is the
// outermost. Precondition failures short-circuit the chain and return a
// structured error envelope to the caller; they are never protocol errors.
package validation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/LuiccianDev/mcp-word-office/internal/docx"
	"github.com/LuiccianDev/mcp-word-office/internal/worderr"
)

// Handler is the tool handler signature used throughout the server.
type Handler func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Middleware wraps a Handler with a cross-cutting concern.
type Middleware func(Handler) Handler

// Resolver maps a caller-supplied filename to an absolute path inside the
// allowed directories. It fails for paths escaping the sandbox.
type Resolver func(filename string) (string, error)

// Chain composes middlewares around h. The first middleware listed is the
// outermost: Chain(h, a, b) runs a before b before h.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RequireDocument validates that the named parameter refers to an existing,
// readable Word document before the handler runs. The checks run in a fixed
// order: parameter present, path allowed, file exists, .docx extension,
// package opens.
func RequireDocument(resolve Resolver, param string) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			op := req.Params.Name

			filename, ok := StringArg(req, param)
			if !ok || filename == "" {
				return worderr.Handle(worderr.Validation("missing required parameter %q", param), "", op).MCP(), nil
			}

			path, err := resolve(filename)
			if err != nil {
				return worderr.Handle(err, filename, op).MCP(), nil
			}

			if _, err := os.Stat(path); err != nil {
				return worderr.Handle(err, filename, op).MCP(), nil
			}

			if ext := strings.ToLower(filepath.Ext(path)); ext != docx.Extension {
				return worderr.Handle(worderr.Validation("%s is not a Word document (expected %s)", filename, docx.Extension), filename, op).MCP(), nil
			}

			if _, err := docx.Open(path); err != nil {
				if errors.Is(err, docx.ErrNotWordDocument) {
					err = worderr.Wrap(worderr.KindDocumentProcessing, err, "cannot read document")
				}
				return worderr.Handle(err, filename, op).MCP(), nil
			}

			return next(ctx, req)
		}
	}
}

// RequireWritable validates that the named parameter refers to an existing
// file the server may write. The probe opens the file for writing and never
// creates or modifies anything; a missing file is a failure, not an
// invitation to create it.
func RequireWritable(resolve Resolver, param string) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			op := req.Params.Name

			filename, ok := StringArg(req, param)
			if !ok || filename == "" {
				return worderr.Handle(worderr.Validation("missing required parameter %q", param), "", op).MCP(), nil
			}

			path, err := resolve(filename)
			if err != nil {
				return worderr.Handle(err, filename, op).MCP(), nil
			}

			if err := probeWritable(path); err != nil {
				return worderr.Handle(err, filename, op).MCP(), nil
			}

			return next(ctx, req)
		}
	}
}

func probeWritable(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	return f.Close()
}
