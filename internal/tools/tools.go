// Package tools defines the tool surface exposed over the protocol: one
// mcp.Tool definition plus a handler per operation, grouped by concern
// (document lifecycle, content, formatting, extended, notes, protection).
//
// Handlers receive validated requests: per-tool preconditions (document
// validity, writability) are attached here as middleware, while ambient
// middleware (logging, recovery, metrics, rate limiting) is attached by the
// server around every tool uniformly.
package tools

import (
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/LuiccianDev/mcp-word-office/internal/config"
	"github.com/LuiccianDev/mcp-word-office/internal/docx"
	"github.com/LuiccianDev/mcp-word-office/internal/validation"
	"github.com/LuiccianDev/mcp-word-office/internal/worderr"
)

// Deps carries what tool handlers need from the environment.
type Deps struct {
	Cfg config.Config
	Log zerolog.Logger
}

// Tool pairs a protocol definition with its fully wrapped handler.
type Tool struct {
	Def     mcp.Tool
	Handler validation.Handler
}

// All returns the complete tool set.
func All(deps Deps) []Tool {
	var out []Tool
	out = append(out, documentTools(deps)...)
	out = append(out, contentTools(deps)...)
	out = append(out, formatTools(deps)...)
	out = append(out, extendedTools(deps)...)
	out = append(out, noteTools(deps)...)
	out = append(out, protectionTools(deps)...)
	return out
}

// Resolve maps a caller-supplied filename to an absolute path and enforces
// the allowed-directory sandbox. Relative names land in the first allowed
// directory.
func (d Deps) Resolve(filename string) (string, error) {
	path := filename
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.Cfg.AllowedDirs[0], path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", worderr.Wrap(worderr.KindValidation, err, "resolving %s", filename)
	}
	abs = filepath.Clean(abs)
	if !d.Cfg.PathAllowed(abs) {
		return "", worderr.New(worderr.KindPermissionDenied, "path %s is outside the allowed directories", filename)
	}
	return abs, nil
}

// ensureDocx appends the document extension when the caller omitted it.
func ensureDocx(filename string) string {
	if filepath.Ext(filename) == "" {
		return filename + docx.Extension
	}
	return filename
}

// mutate opens the document at path, applies fn, and saves in place.
func mutate(path string, fn func(*docx.Document) error) error {
	doc, err := docx.Open(path)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return doc.Save(path)
}
