package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerPrompts adds the guidance prompts. They carry no document state;
// each renders a single user message from its arguments.
func registerPrompts(s *server.MCPServer) {
	s.AddPrompt(mcp.NewPrompt("docx",
		mcp.WithPromptDescription("Guidance for creating a well-structured Word document"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("Subject of the document to create"),
		),
	), docxPrompt)

	s.AddPrompt(mcp.NewPrompt("docx_tips",
		mcp.WithPromptDescription("Practical tips for working with the Word document tools"),
	), docxTipsPrompt)

	s.AddPrompt(mcp.NewPrompt("docx_analyze",
		mcp.WithPromptDescription("Guidance for analyzing an existing Word document"),
		mcp.WithArgument("filename",
			mcp.ArgumentDescription("Document to analyze"),
			mcp.RequiredArgument(),
		),
	), docxAnalyzePrompt)
}

func docxPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	if topic == "" {
		topic = "the requested subject"
	}
	text := fmt.Sprintf(`Create a Word document about %s. Work in this order:
1. word_create_document with a descriptive filename, title, and author.
2. word_add_heading for the document title (level 1) and each section (level 2).
3. word_add_paragraph for the body text, one paragraph per idea.
4. word_add_table for any tabular data, pre-filled through the data argument.
5. word_add_table_of_contents once all headings exist.
6. word_get_document_outline to review the structure before finishing.
Use word_format_text sparingly for emphasis, and footnotes for sources.`, topic)
	return promptResult("Document creation guidance", text), nil
}

func docxTipsPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	text := strings.TrimSpace(`
Tips for the Word document tools:
- Filenames are relative to the allowed documents directory; the .docx
  extension is appended when missing.
- Every tool answers with a JSON envelope. Check "status" before continuing
  and read "suggestion" on errors; "recoverable" tells you whether a retry
  after fixing the input can succeed.
- Paragraph and table indexes are zero-based and count only top-level
  elements. Use word_get_document_outline to find the right index.
- word_search_and_replace reports a replacement count and a diff preview, so
  verify the preview instead of re-reading the whole document.
- Protect documents last: an encrypted document rejects every editing tool
  until word_unprotect_document restores it.`)
	return promptResult("Usage tips", text), nil
}

func docxAnalyzePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	filename := req.Params.Arguments["filename"]
	if filename == "" {
		return nil, fmt.Errorf("missing required argument: filename")
	}
	text := fmt.Sprintf(`Analyze the Word document %q:
1. word_get_document_info for metadata and paragraph/table/word counts.
2. word_get_document_outline for the heading structure and table shapes.
3. word_get_document_text when the full content is needed.
4. word_find_text to locate specific passages instead of scanning manually.
5. word_verify_document to report protection state and signature validity.
Summarize structure first, then content, then any integrity findings.`, filename)
	return promptResult("Document analysis guidance", text), nil
}

func promptResult(description, text string) *mcp.GetPromptResult {
	return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	})
}
