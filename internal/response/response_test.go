package response

import (
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestSuccess_JSONShape(t *testing.T) {
	r := Success("created %s", "report.docx").WithDetails(map[string]any{"path": "/docs/report.docx"})

	var got OperationResult
	if err := json.Unmarshal([]byte(r.JSON()), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Status != StatusSuccess {
		t.Fatalf("expected status %q; got %q", StatusSuccess, got.Status)
	}
	if got.Message != "created report.docx" {
		t.Fatalf("expected formatted message; got %q", got.Message)
	}
	if got.Details["path"] != "/docs/report.docx" {
		t.Fatalf("expected details carried; got %v", got.Details)
	}
}

func TestErrorEnvelope_MCPSetsErrorFlag(t *testing.T) {
	e := &OperationError{
		Status:      StatusError,
		ErrorType:   "file_not_found",
		Message:     "file missing",
		Recoverable: false,
	}

	res := e.MCP()
	if !res.IsError {
		t.Fatal("expected IsError on the tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content; got %T", res.Content[0])
	}
	var got OperationError
	if err := json.Unmarshal([]byte(tc.Text), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ErrorType != "file_not_found" || got.Recoverable {
		t.Fatalf("unexpected envelope: %+v", got)
	}
}

func TestSuccess_MCPIsNotError(t *testing.T) {
	res := Success("ok").MCP()
	if res.IsError {
		t.Fatal("success result must not set IsError")
	}
}
