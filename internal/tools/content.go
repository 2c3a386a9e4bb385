package tools

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/LuiccianDev/mcp-word-office/internal/document"
	"github.com/LuiccianDev/mcp-word-office/internal/docx"
	"github.com/LuiccianDev/mcp-word-office/internal/response"
	"github.com/LuiccianDev/mcp-word-office/internal/validation"
	"github.com/LuiccianDev/mcp-word-office/internal/worderr"
)

func contentTools(deps Deps) []Tool {
	resolve := validation.Resolver(deps.Resolve)

	// Every content tool mutates an existing document: document validity is
	// checked before writability.
	wrap := func(h validation.Handler) validation.Handler {
		return validation.Chain(h,
			validation.RequireDocument(resolve, "filename"),
			validation.RequireWritable(resolve, "filename"),
		)
	}

	return []Tool{
		{
			Def: mcp.NewTool("word_add_heading",
				mcp.WithDescription("Append a heading paragraph at the given level (1-9)."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to modify")),
				mcp.WithString("text", mcp.Required(), mcp.Description("Heading text")),
				mcp.WithNumber("level", mcp.Description("Heading level 1-9, default 1")),
			),
			Handler: wrap(addHeading(deps)),
		},
		{
			Def: mcp.NewTool("word_add_paragraph",
				mcp.WithDescription("Append a text paragraph, optionally with a named paragraph style."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to modify")),
				mcp.WithString("text", mcp.Required(), mcp.Description("Paragraph text")),
				mcp.WithString("style", mcp.Description("Paragraph style name; unknown styles fall back to Normal")),
			),
			Handler: wrap(addParagraph(deps)),
		},
		{
			Def: mcp.NewTool("word_add_table",
				mcp.WithDescription("Append a table, optionally pre-filled with data clipped to the grid."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to modify")),
				mcp.WithNumber("rows", mcp.Required(), mcp.Description("Row count, positive")),
				mcp.WithNumber("cols", mcp.Required(), mcp.Description("Column count, positive")),
				mcp.WithArray("data", mcp.Description("Optional 2D array of cell strings, row by row"),
					mcp.Items(map[string]any{"type": "array", "items": map[string]any{"type": "string"}})),
			),
			Handler: wrap(addTable(deps)),
		},
		{
			Def: mcp.NewTool("word_add_picture",
				mcp.WithDescription("Append an image as an inline picture, optionally scaled to a width in inches."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to modify")),
				mcp.WithString("image_path", mcp.Required(), mcp.Description("Path to a PNG, JPEG, or GIF image")),
				mcp.WithNumber("width", mcp.Description("Target width in inches; 0 keeps the native size")),
			),
			Handler: wrap(addPicture(deps)),
		},
		{
			Def: mcp.NewTool("word_add_page_break",
				mcp.WithDescription("Append a page break."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to modify")),
			),
			Handler: wrap(addPageBreak(deps)),
		},
		{
			Def: mcp.NewTool("word_add_table_of_contents",
				mcp.WithDescription("Insert a table of contents built from the document's headings at the start of the body."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to modify")),
				mcp.WithString("title", mcp.Description("TOC title, default 'Table of Contents'")),
				mcp.WithNumber("max_level", mcp.Description("Deepest heading level to include, default 3")),
			),
			Handler: wrap(addTableOfContents(deps)),
		},
		{
			Def: mcp.NewTool("word_delete_paragraph",
				mcp.WithDescription("Delete the paragraph at the given zero-based index."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to modify")),
				mcp.WithNumber("paragraph_index", mcp.Required(), mcp.Description("Zero-based paragraph index")),
			),
			Handler: wrap(deleteParagraph(deps)),
		},
		{
			Def: mcp.NewTool("word_search_and_replace",
				mcp.WithDescription("Replace every occurrence of a text in paragraphs and table cells."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to modify")),
				mcp.WithString("find_text", mcp.Required(), mcp.Description("Text to find")),
				mcp.WithString("replace_text", mcp.Required(), mcp.Description("Replacement text")),
			),
			Handler: wrap(searchAndReplace(deps)),
		},
	}
}

func addHeading(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "add heading"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		text, ok := validation.StringArg(req, "text")
		if !ok || text == "" {
			return worderr.Handle(worderr.Validation("heading text must not be empty"), filename, op).MCP(), nil
		}
		level, ok := validation.IntArg(req, "level")
		if !ok {
			level = 1
		}
		if level < 1 || level > 9 {
			return worderr.Handle(worderr.Validation("heading level must be between 1 and 9, got %d", level), filename, op).MCP(), nil
		}

		if err := mutate(path, func(doc *docx.Document) error {
			doc.AddHeading(text, level)
			return nil
		}); err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		return response.Success("Heading '%s' (level %d) added to %s", text, level, filename).MCP(), nil
	}
}

func addParagraph(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "add paragraph"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		text, ok := validation.StringArg(req, "text")
		if !ok {
			return worderr.Handle(worderr.Validation("missing required parameter %q", "text"), filename, op).MCP(), nil
		}
		style, _ := validation.StringArg(req, "style")

		styleFellBack := false
		if err := mutate(path, func(doc *docx.Document) error {
			p := doc.AddParagraph(text)
			if style != "" {
				if doc.HasStyle(style) {
					p.Style = style
				} else {
					styleFellBack = true
				}
			}
			return nil
		}); err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		res := response.Success("Paragraph added to %s", filename)
		if styleFellBack {
			res = response.Success("Paragraph added to %s (style %q not found, used Normal)", filename, style)
		}
		return res.MCP(), nil
	}
}

func addTable(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "add table"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		rows, rok := validation.IntArg(req, "rows")
		cols, cok := validation.IntArg(req, "cols")
		if !rok || !cok || rows < 1 || cols < 1 {
			return worderr.Handle(worderr.Validation("rows and cols must be positive integers"), filename, op).MCP(), nil
		}
		data := tableData(req)

		if err := mutate(path, func(doc *docx.Document) error {
			tbl := doc.AddTable(rows, cols)
			for r := 0; r < rows && r < len(data); r++ {
				for c := 0; c < cols && c < len(data[r]); c++ {
					tbl.Cell(r, c).SetText(data[r][c])
				}
			}
			return nil
		}); err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		return response.Success("Table (%dx%d) added to %s", rows, cols, filename).MCP(), nil
	}
}

// tableData reads the optional 2D string array argument; malformed entries
// are ignored rather than failing the whole call.
func tableData(req mcp.CallToolRequest) [][]string {
	raw, ok := req.GetArguments()["data"]
	if !ok {
		return nil
	}
	rows, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells, ok := r.([]any)
		if !ok {
			out = append(out, nil)
			continue
		}
		row := make([]string, 0, len(cells))
		for _, c := range cells {
			if s, ok := c.(string); ok {
				row = append(row, s)
			} else {
				row = append(row, fmt.Sprintf("%v", c))
			}
		}
		out = append(out, row)
	}
	return out
}

func addPicture(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "add picture"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		imagePath, ok := validation.StringArg(req, "image_path")
		if !ok || imagePath == "" {
			return worderr.Handle(worderr.Validation("missing required parameter %q", "image_path"), filename, op).MCP(), nil
		}
		st, err := os.Stat(imagePath)
		if err != nil {
			return worderr.Handle(err, imagePath, op).MCP(), nil
		}
		if st.Size() == 0 {
			return worderr.Handle(worderr.Validation("image file %s is empty", imagePath), filename, op).MCP(), nil
		}
		width, _ := validation.FloatArg(req, "width")
		if width < 0 {
			return worderr.Handle(worderr.Validation("width must be positive inches, got %v", width), filename, op).MCP(), nil
		}

		if err := mutate(path, func(doc *docx.Document) error {
			return doc.AddPicture(imagePath, width)
		}); err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		return response.Success("Picture %s added to %s", imagePath, filename).MCP(), nil
	}
}

func addPageBreak(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "add page break"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		if err := mutate(path, func(doc *docx.Document) error {
			doc.AddPageBreak()
			return nil
		}); err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		return response.Success("Page break added to %s", filename).MCP(), nil
	}
}

func addTableOfContents(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "add table of contents"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		title, _ := validation.StringArg(req, "title")
		maxLevel, ok := validation.IntArg(req, "max_level")
		if !ok {
			maxLevel = 3
		}

		entries := 0
		if err := mutate(path, func(doc *docx.Document) error {
			n, err := document.InsertTOC(doc, title, maxLevel)
			entries = n
			return err
		}); err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		return response.Success("Table of contents with %d entries added to %s", entries, filename).
			WithDetails(map[string]any{"entries": entries}).MCP(), nil
	}
}

func deleteParagraph(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "delete paragraph"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		idx, ok := validation.IntArg(req, "paragraph_index")
		if !ok || idx < 0 {
			return worderr.Handle(worderr.Validation("paragraph_index must be a non-negative integer"), filename, op).MCP(), nil
		}

		if err := mutate(path, func(doc *docx.Document) error {
			if !doc.RemoveParagraph(idx) {
				return worderr.Validation("paragraph index %d out of range (document has %d paragraphs)", idx, len(doc.Paragraphs()))
			}
			return nil
		}); err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		return response.Success("Paragraph %d deleted from %s", idx, filename).MCP(), nil
	}
}

func searchAndReplace(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "search and replace"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		find, ok := validation.StringArg(req, "find_text")
		if !ok || find == "" {
			return worderr.Handle(worderr.Validation("find_text must not be empty"), filename, op).MCP(), nil
		}
		repl, ok := validation.StringArg(req, "replace_text")
		if !ok {
			return worderr.Handle(worderr.Validation("missing required parameter %q", "replace_text"), filename, op).MCP(), nil
		}

		count := 0
		var before, after string
		if err := mutate(path, func(doc *docx.Document) error {
			before = document.ExtractText(doc)
			count = document.Replace(doc, find, repl)
			after = document.ExtractText(doc)
			return nil
		}); err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		details := map[string]any{"replacements": count}
		if count > 0 {
			details["preview"] = diffPreview(before, after)
		}
		return response.Success("Replaced %d occurrence(s) of %q in %s", count, find, filename).
			WithDetails(details).MCP(), nil
	}
}

// diffPreview renders a compact, plain-text change summary: unchanged text
// is clipped to its edges, deletions appear as [-...] and insertions as
// [+...].
func diffPreview(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			sb.WriteString(clipMiddle(d.Text, 40))
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-")
			sb.WriteString(d.Text)
			sb.WriteString("]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("[+")
			sb.WriteString(d.Text)
			sb.WriteString("]")
		}
	}
	out := sb.String()
	const limit = 500
	if len(out) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut] + "..."
	}
	return out
}

// clipMiddle keeps the edges of long unchanged spans so changes stay in
// context.
func clipMiddle(s string, edge int) string {
	runes := []rune(s)
	if len(runes) <= 2*edge {
		return s
	}
	return string(runes[:edge]) + " ... " + string(runes[len(runes)-edge:])
}
