package tools

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/LuiccianDev/mcp-word-office/internal/document"
	"github.com/LuiccianDev/mcp-word-office/internal/docx"
	"github.com/LuiccianDev/mcp-word-office/internal/response"
	"github.com/LuiccianDev/mcp-word-office/internal/validation"
	"github.com/LuiccianDev/mcp-word-office/internal/worderr"
)

func extendedTools(deps Deps) []Tool {
	resolve := validation.Resolver(deps.Resolve)

	return []Tool{
		{
			Def: mcp.NewTool("word_get_paragraph_text",
				mcp.WithDescription("Return the text and style of a single paragraph by index."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to read")),
				mcp.WithNumber("paragraph_index", mcp.Required(), mcp.Description("Zero-based paragraph index")),
			),
			Handler: validation.Chain(getParagraphText(deps), validation.RequireDocument(resolve, "filename")),
		},
		{
			Def: mcp.NewTool("word_find_text",
				mcp.WithDescription("Find occurrences of a text with paragraph indexes, positions, and context."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to search")),
				mcp.WithString("text_to_find", mcp.Required(), mcp.Description("Text to look for")),
				mcp.WithBoolean("match_case", mcp.Description("Case-sensitive matching, default true")),
				mcp.WithBoolean("whole_word", mcp.Description("Match only on word boundaries, default false")),
			),
			Handler: validation.Chain(findText(deps), validation.RequireDocument(resolve, "filename")),
		},
		{
			Def: mcp.NewTool("word_convert_to_pdf",
				mcp.WithDescription("Convert a document to PDF using a local LibreOffice installation."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to convert")),
				mcp.WithString("output_filename", mcp.Description("Target PDF name, default '<name>.pdf' next to the source")),
			),
			Handler: validation.Chain(convertToPDF(deps), validation.RequireDocument(resolve, "filename")),
		},
		{
			Def: mcp.NewTool("word_compare_documents",
				mcp.WithDescription("Compare the text of two documents and summarize the differences."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("First document")),
				mcp.WithString("other_filename", mcp.Required(), mcp.Description("Second document")),
			),
			Handler: validation.Chain(compareDocuments(deps),
				validation.RequireDocument(resolve, "filename"),
				validation.RequireDocument(resolve, "other_filename"),
			),
		},
	}
}

func getParagraphText(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "get paragraph text"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		idx, ok := validation.IntArg(req, "paragraph_index")
		if !ok || idx < 0 {
			return worderr.Handle(worderr.Validation("paragraph_index must be a non-negative integer"), filename, op).MCP(), nil
		}

		doc, err := docx.Open(path)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		paras := doc.Paragraphs()
		if idx >= len(paras) {
			return worderr.Handle(worderr.Validation("paragraph index %d out of range (document has %d paragraphs)", idx, len(paras)), filename, op).MCP(), nil
		}

		return response.Success("Paragraph %d of %s", idx, filename).
			WithDetails(map[string]any{
				"text":  paras[idx].Text(),
				"style": paras[idx].Style,
			}).MCP(), nil
	}
}

func findText(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "find text"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		query, ok := validation.StringArg(req, "text_to_find")
		if !ok || query == "" {
			return worderr.Handle(worderr.Validation("text_to_find must not be empty"), filename, op).MCP(), nil
		}
		matchCase, ok := validation.BoolArg(req, "match_case")
		if !ok {
			matchCase = true
		}
		wholeWord, _ := validation.BoolArg(req, "whole_word")

		doc, err := docx.Open(path)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		matches := document.FindText(doc, query, matchCase, wholeWord)

		return response.Success("Found %d occurrence(s) of %q in %s", len(matches), query, filename).
			WithDetails(map[string]any{"matches": matches}).MCP(), nil
	}
}

func convertToPDF(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "convert to pdf"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		soffice, err := findLibreOffice()
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		outDir := filepath.Dir(path)
		cctx, cancel := context.WithTimeout(ctx, deps.Cfg.PDFTimeout)
		defer cancel()

		cmd := exec.CommandContext(cctx, soffice, "--headless", "--convert-to", "pdf", "--outdir", outDir, path)
		out, err := cmd.CombinedOutput()
		if err != nil {
			if cctx.Err() == context.DeadlineExceeded {
				return worderr.Handle(worderr.FileOp("pdf conversion timed out after %s", deps.Cfg.PDFTimeout), filename, op).MCP(), nil
			}
			return worderr.Handle(worderr.Wrap(worderr.KindFileOperation, err, "libreoffice conversion failed: %s", strings.TrimSpace(string(out))), filename, op).MCP(), nil
		}

		produced := strings.TrimSuffix(path, docx.Extension) + ".pdf"
		if _, err := os.Stat(produced); err != nil {
			return worderr.Handle(worderr.FileOp("conversion reported success but %s was not produced", produced), filename, op).MCP(), nil
		}

		target := produced
		if outName, ok := validation.StringArg(req, "output_filename"); ok && outName != "" {
			target, err = deps.Resolve(outName)
			if err != nil {
				return worderr.Handle(err, outName, op).MCP(), nil
			}
			if target != produced {
				if err := os.Rename(produced, target); err != nil {
					return worderr.Handle(err, outName, op).MCP(), nil
				}
			}
		}

		deps.Log.Info().Str("pdf", target).Msg("document converted to pdf")
		return response.Success("Converted %s to PDF", filename).
			WithDetails(map[string]any{"pdf_path": target}).MCP(), nil
	}
}

// findLibreOffice locates the conversion binary, preferring soffice.
func findLibreOffice() (string, error) {
	for _, name := range []string{"soffice", "libreoffice"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", worderr.Config("LibreOffice is not installed or not on PATH (needed for PDF conversion)")
}

func compareDocuments(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "compare documents"
		first, _ := validation.StringArg(req, "filename")
		second, _ := validation.StringArg(req, "other_filename")

		firstPath, err := deps.Resolve(first)
		if err != nil {
			return worderr.Handle(err, first, op).MCP(), nil
		}
		secondPath, err := deps.Resolve(second)
		if err != nil {
			return worderr.Handle(err, second, op).MCP(), nil
		}

		docA, err := docx.Open(firstPath)
		if err != nil {
			return worderr.Handle(err, first, op).MCP(), nil
		}
		docB, err := docx.Open(secondPath)
		if err != nil {
			return worderr.Handle(err, second, op).MCP(), nil
		}

		textA := document.ExtractText(docA)
		textB := document.ExtractText(docB)

		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(textA, textB, false)
		diffs = dmp.DiffCleanupSemantic(diffs)

		inserted, deleted := 0, 0
		for _, d := range diffs {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				inserted += len([]rune(d.Text))
			case diffmatchpatch.DiffDelete:
				deleted += len([]rune(d.Text))
			}
		}
		identical := inserted == 0 && deleted == 0

		msg := "Documents %s and %s differ"
		if identical {
			msg = "Documents %s and %s have identical text"
		}
		details := map[string]any{
			"identical":          identical,
			"characters_added":   inserted,
			"characters_removed": deleted,
		}
		if !identical {
			details["preview"] = diffPreview(textA, textB)
		}
		return response.Success(msg, first, second).WithDetails(details).MCP(), nil
	}
}
