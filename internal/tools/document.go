package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/LuiccianDev/mcp-word-office/internal/document"
	"github.com/LuiccianDev/mcp-word-office/internal/docx"
	"github.com/LuiccianDev/mcp-word-office/internal/response"
	"github.com/LuiccianDev/mcp-word-office/internal/validation"
	"github.com/LuiccianDev/mcp-word-office/internal/worderr"
)

func documentTools(deps Deps) []Tool {
	resolve := validation.Resolver(deps.Resolve)

	return []Tool{
		{
			Def: mcp.NewTool("word_create_document",
				mcp.WithDescription("Create a new Word document with optional metadata. Relative filenames are created inside the allowed documents directory."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Name of the document to create (.docx appended when missing)")),
				mcp.WithString("title", mcp.Description("Document title property")),
				mcp.WithString("author", mcp.Description("Document author property")),
				mcp.WithString("subject", mcp.Description("Document subject property")),
			),
			Handler: createDocument(deps),
		},
		{
			Def: mcp.NewTool("word_get_document_info",
				mcp.WithDescription("Report document metadata: core properties, size, and paragraph/table/word counts."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to inspect")),
			),
			Handler: validation.Chain(getDocumentInfo(deps), validation.RequireDocument(resolve, "filename")),
		},
		{
			Def: mcp.NewTool("word_get_document_text",
				mcp.WithDescription("Extract the full text of a document: paragraphs in order, then table content."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to read")),
			),
			Handler: validation.Chain(getDocumentText(deps), validation.RequireDocument(resolve, "filename")),
		},
		{
			Def: mcp.NewTool("word_get_document_outline",
				mcp.WithDescription("Summarize document structure: paragraph previews with styles and table dimensions with corner previews."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to outline")),
			),
			Handler: validation.Chain(getDocumentOutline(deps), validation.RequireDocument(resolve, "filename")),
		},
		{
			Def: mcp.NewTool("word_list_available_documents",
				mcp.WithDescription("List the .docx files in the allowed directories (or one subdirectory of them)."),
				mcp.WithString("directory", mcp.Description("Optional directory to list instead of every allowed directory")),
			),
			Handler: listAvailableDocuments(deps),
		},
		{
			Def: mcp.NewTool("word_copy_document",
				mcp.WithDescription("Copy a document. The destination defaults to '<name>_copy.docx' next to the source."),
				mcp.WithString("source_filename", mcp.Required(), mcp.Description("Document to copy")),
				mcp.WithString("destination_filename", mcp.Description("Target filename; must stay inside the allowed directories")),
			),
			Handler: validation.Chain(copyDocument(deps), validation.RequireDocument(resolve, "source_filename")),
		},
		{
			Def: mcp.NewTool("word_merge_documents",
				mcp.WithDescription("Merge several documents into a new one, in order, with page breaks between sources."),
				mcp.WithString("target_filename", mcp.Required(), mcp.Description("Document to create with the merged content")),
				mcp.WithArray("source_filenames", mcp.Required(), mcp.Description("Documents to merge, in order"),
					mcp.Items(map[string]any{"type": "string"})),
				mcp.WithBoolean("add_page_breaks", mcp.Description("Insert a page break between sources, default true")),
			),
			Handler: mergeDocuments(deps),
		},
	}
}

func createDocument(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filename, ok := validation.StringArg(req, "filename")
		if !ok || filename == "" {
			return worderr.Handle(worderr.Validation("missing required parameter %q", "filename"), "", "create document").MCP(), nil
		}
		filename = ensureDocx(filename)

		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, "create document").MCP(), nil
		}
		if _, err := os.Stat(path); err == nil {
			return worderr.Handle(worderr.Validation("document %s already exists", filename), filename, "create document").MCP(), nil
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return worderr.Handle(err, filename, "create document").MCP(), nil
		}

		doc := docx.New()
		title, _ := validation.StringArg(req, "title")
		author, _ := validation.StringArg(req, "author")
		subject, _ := validation.StringArg(req, "subject")
		doc.Properties.Title = title
		doc.Properties.Author = author
		doc.Properties.Subject = subject

		if err := doc.Save(path); err != nil {
			return worderr.Handle(err, filename, "create document").MCP(), nil
		}

		deps.Log.Info().Str("path", path).Msg("document created")
		return response.Success("Document %s created successfully", filename).
			WithDetails(map[string]any{"path": path}).MCP(), nil
	}
}

func getDocumentInfo(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, "get document info").MCP(), nil
		}

		info, err := document.Inspect(path)
		if err != nil {
			return worderr.Handle(err, filename, "get document info").MCP(), nil
		}
		return response.Success("Document information for %s", filename).
			WithDetails(map[string]any{"info": info}).MCP(), nil
	}
}

func getDocumentText(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, "get document text").MCP(), nil
		}

		doc, err := docx.Open(path)
		if err != nil {
			return worderr.Handle(err, filename, "get document text").MCP(), nil
		}
		text := document.ExtractText(doc)
		return response.Success("Extracted text from %s", filename).
			WithDetails(map[string]any{"text": text}).MCP(), nil
	}
}

func getDocumentOutline(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, "get document outline").MCP(), nil
		}

		doc, err := docx.Open(path)
		if err != nil {
			return worderr.Handle(err, filename, "get document outline").MCP(), nil
		}
		outline := document.BuildOutline(doc)
		return response.Success("Document outline for %s", filename).
			WithDetails(map[string]any{"outline": outline}).MCP(), nil
	}
}

func listAvailableDocuments(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dirs := deps.Cfg.AllowedDirs
		if dir, ok := validation.StringArg(req, "directory"); ok && dir != "" {
			path, err := deps.Resolve(dir)
			if err != nil {
				return worderr.Handle(err, dir, "list documents").MCP(), nil
			}
			dirs = []string{path}
		}

		type entry struct {
			Name   string  `json:"name"`
			Dir    string  `json:"directory"`
			SizeKB float64 `json:"size_kb"`
		}
		var docs []entry
		for _, dir := range dirs {
			items, err := os.ReadDir(dir)
			if os.IsNotExist(err) {
				continue
			}
			if err != nil {
				return worderr.Handle(err, dir, "list documents").MCP(), nil
			}
			for _, it := range items {
				name := it.Name()
				if it.IsDir() || strings.HasPrefix(name, "~$") ||
					!strings.EqualFold(filepath.Ext(name), docx.Extension) {
					continue
				}
				fi, err := it.Info()
				if err != nil {
					continue
				}
				docs = append(docs, entry{
					Name:   name,
					Dir:    dir,
					SizeKB: float64(fi.Size()) / 1024.0,
				})
			}
		}

		return response.Success("Found %d Word document(s)", len(docs)).
			WithDetails(map[string]any{"documents": docs}).MCP(), nil
	}
}

func copyDocument(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		source, _ := validation.StringArg(req, "source_filename")
		srcPath, err := deps.Resolve(source)
		if err != nil {
			return worderr.Handle(err, source, "copy document").MCP(), nil
		}

		dest, ok := validation.StringArg(req, "destination_filename")
		if !ok || dest == "" {
			base := srcPath
			if strings.EqualFold(filepath.Ext(srcPath), docx.Extension) {
				base = srcPath[:len(srcPath)-len(docx.Extension)]
			}
			dest = base + "_copy" + docx.Extension
		} else {
			dest = ensureDocx(dest)
		}
		dstPath, err := deps.Resolve(dest)
		if err != nil {
			return worderr.Handle(err, dest, "copy document").MCP(), nil
		}

		if err := document.CopyFile(srcPath, dstPath); err != nil {
			return worderr.Handle(err, dest, "copy document").MCP(), nil
		}
		return response.Success("Copied %s to %s", source, filepath.Base(dstPath)).
			WithDetails(map[string]any{"destination": dstPath}).MCP(), nil
	}
}

func mergeDocuments(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "merge documents"

		target, ok := validation.StringArg(req, "target_filename")
		if !ok || target == "" {
			return worderr.Handle(worderr.Validation("missing required parameter %q", "target_filename"), "", op).MCP(), nil
		}
		target = ensureDocx(target)
		sources, ok := validation.StringSliceArg(req, "source_filenames")
		if !ok || len(sources) == 0 {
			return worderr.Handle(worderr.Validation("source_filenames must be a non-empty list"), target, op).MCP(), nil
		}

		targetPath, err := deps.Resolve(target)
		if err != nil {
			return worderr.Handle(err, target, op).MCP(), nil
		}

		paths := make([]string, 0, len(sources))
		for _, src := range sources {
			p, err := deps.Resolve(src)
			if err != nil {
				return worderr.Handle(err, src, op).MCP(), nil
			}
			if _, err := os.Stat(p); err != nil {
				return worderr.Handle(err, src, op).MCP(), nil
			}
			paths = append(paths, p)
		}

		pageBreaks, ok := validation.BoolArg(req, "add_page_breaks")
		if !ok {
			pageBreaks = true
		}
		if err := document.Merge(targetPath, paths, pageBreaks); err != nil {
			return worderr.Handle(err, target, op).MCP(), nil
		}
		return response.Success("Merged %d document(s) into %s", len(sources), target).
			WithDetails(map[string]any{
				"target":  targetPath,
				"sources": fmt.Sprintf("%v", sources),
			}).MCP(), nil
	}
}
