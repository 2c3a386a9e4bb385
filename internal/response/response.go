// Package response defines the two terminal response shapes every tool
// returns: OperationResult for success and OperationError for failure.
//
// These are the only shapes that cross the tool boundary. A handler never
// lets an error escape as a protocol-level failure; it is always rendered
// into one of these envelopes so callers can branch on `status` and
// `error_type` programmatically.
//
// Example error payload:
//
//	{
//	  "status": "error",
//	  "error_type": "file_not_found",
//	  "message": "file '/docs/report.docx' does not exist",
//	  "suggestion": "Check that the file path is correct and the file exists.",
//	  "recoverable": false
//	}
package response

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusSuccess and StatusError are the only legal values of the `status`
// field.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// OperationResult is the success envelope.
type OperationResult struct {
	// Always "success".
	Status string `json:"status"`
	// Human-readable outcome, safe to show to users.
	Message string `json:"message"`
	// Optional structured payload (counts, paths, previews).
	Details map[string]any `json:"details,omitempty"`
}

// OperationError is the failure envelope.
type OperationError struct {
	// Always "error".
	Status string `json:"status"`
	// Stable, machine-readable taxonomy value (see worderr.Kind).
	ErrorType string `json:"error_type"`
	// Human-readable description, includes file/operation context when known.
	Message string `json:"message"`
	// Optional remediation hint.
	Suggestion string `json:"suggestion,omitempty"`
	// Whether retrying the same call after fixing the underlying condition
	// may succeed.
	Recoverable bool `json:"recoverable"`
	// Optional structured payload.
	Details map[string]any `json:"details,omitempty"`
}

// Success builds an OperationResult with a formatted message.
func Success(format string, args ...any) *OperationResult {
	return &OperationResult{
		Status:  StatusSuccess,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetails attaches a details map and returns the result for chaining.
func (r *OperationResult) WithDetails(details map[string]any) *OperationResult {
	r.Details = details
	return r
}

// WithDetails attaches a details map and returns the error for chaining.
func (e *OperationError) WithDetails(details map[string]any) *OperationError {
	e.Details = details
	return e
}

// JSON renders the envelope as indented JSON. Marshaling these shapes cannot
// fail for the field types used; a marshal error falls back to a minimal
// literal rather than panicking.
func (r *OperationResult) JSON() string { return marshal(r) }

// JSON renders the envelope as indented JSON.
func (e *OperationError) JSON() string { return marshal(e) }

// MCP renders the success envelope as an MCP tool result.
func (r *OperationResult) MCP() *mcp.CallToolResult {
	return mcp.NewToolResultText(r.JSON())
}

// MCP renders the failure envelope as an MCP tool result with the error flag
// set. The payload still travels as text content: the error is data for the
// caller, not a transport failure.
func (e *OperationError) MCP() *mcp.CallToolResult {
	res := mcp.NewToolResultText(e.JSON())
	res.IsError = true
	return res
}

func marshal(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return `{"status":"error","error_type":"unknown","message":"response serialization failed","recoverable":true}`
	}
	return string(b)
}
