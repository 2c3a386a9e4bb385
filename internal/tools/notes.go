package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/LuiccianDev/mcp-word-office/internal/document"
	"github.com/LuiccianDev/mcp-word-office/internal/docx"
	"github.com/LuiccianDev/mcp-word-office/internal/response"
	"github.com/LuiccianDev/mcp-word-office/internal/validation"
	"github.com/LuiccianDev/mcp-word-office/internal/worderr"
)

func noteTools(deps Deps) []Tool {
	resolve := validation.Resolver(deps.Resolve)
	wrap := func(h validation.Handler) validation.Handler {
		return validation.Chain(h,
			validation.RequireDocument(resolve, "filename"),
			validation.RequireWritable(resolve, "filename"),
		)
	}

	return []Tool{
		{
			Def: mcp.NewTool("word_add_footnote",
				mcp.WithDescription("Attach a footnote to a paragraph: a superscript number in the text and a numbered entry in the footnotes section."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to modify")),
				mcp.WithNumber("paragraph_index", mcp.Required(), mcp.Description("Zero-based paragraph index")),
				mcp.WithString("text", mcp.Required(), mcp.Description("Footnote text")),
			),
			Handler: wrap(addFootnote(deps)),
		},
		{
			Def: mcp.NewTool("word_add_endnote",
				mcp.WithDescription("Attach an endnote to a paragraph: a superscript marker in the text and a numbered entry in the endnotes section."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to modify")),
				mcp.WithNumber("paragraph_index", mcp.Required(), mcp.Description("Zero-based paragraph index")),
				mcp.WithString("text", mcp.Required(), mcp.Description("Endnote text")),
			),
			Handler: wrap(addEndnote(deps)),
		},
		{
			Def: mcp.NewTool("word_convert_footnotes_to_endnotes",
				mcp.WithDescription("Move every footnote entry into the endnotes section."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to modify")),
			),
			Handler: wrap(convertFootnotesToEndnotes(deps)),
		},
		{
			Def: mcp.NewTool("word_customize_footnote_style",
				mcp.WithDescription("Customize footnote appearance and numbering (1, 2, 3 / i, ii, iii / a, b, c / *, †, ‡)."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to modify")),
				mcp.WithString("numbering_format", mcp.Description("Marker sequence: '1, 2, 3', 'i, ii, iii', 'a, b, c', or '*, †, ‡'")),
				mcp.WithNumber("start_number", mcp.Description("First marker position in the sequence, default 1")),
				mcp.WithString("font_name", mcp.Description("Font family for footnote entries")),
				mcp.WithNumber("font_size", mcp.Description("Font size in points for footnote entries")),
			),
			Handler: wrap(customizeFootnoteStyle(deps)),
		},
	}
}

func addFootnote(deps Deps) validation.Handler {
	return noteAdder(deps, "add footnote", document.AddFootnote)
}

func addEndnote(deps Deps) validation.Handler {
	return noteAdder(deps, "add endnote", document.AddEndnote)
}

// noteAdder factors the shared footnote/endnote handler shape.
func noteAdder(deps Deps, op string, add func(*docx.Document, int, string) (int, error)) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		idx, ok := validation.IntArg(req, "paragraph_index")
		if !ok || idx < 0 {
			return worderr.Handle(worderr.Validation("paragraph_index must be a non-negative integer"), filename, op).MCP(), nil
		}
		text, ok := validation.StringArg(req, "text")
		if !ok {
			return worderr.Handle(worderr.Validation("missing required parameter %q", "text"), filename, op).MCP(), nil
		}

		num := 0
		if err := mutate(path, func(doc *docx.Document) error {
			n, err := add(doc, idx, text)
			num = n
			return err
		}); err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		return response.Success("Note %d added to paragraph %d of %s", num, idx, filename).
			WithDetails(map[string]any{"number": num}).MCP(), nil
	}
}

func convertFootnotesToEndnotes(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "convert footnotes to endnotes"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		moved := 0
		if err := mutate(path, func(doc *docx.Document) error {
			moved = document.ConvertFootnotesToEndnotes(doc)
			return nil
		}); err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		return response.Success("Converted %d footnote(s) to endnotes in %s", moved, filename).
			WithDetails(map[string]any{"converted": moved}).MCP(), nil
	}
}

func customizeFootnoteStyle(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "customize footnote style"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		var opts document.NoteStyleOptions
		opts.NumberingFormat, _ = validation.StringArg(req, "numbering_format")
		opts.StartNumber, _ = validation.IntArg(req, "start_number")
		opts.Font, _ = validation.StringArg(req, "font_name")
		opts.SizePt, _ = validation.IntArg(req, "font_size")

		renumbered := 0
		if err := mutate(path, func(doc *docx.Document) error {
			n, err := document.CustomizeFootnoteStyle(doc, opts)
			renumbered = n
			return err
		}); err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		return response.Success("Footnote style updated in %s", filename).
			WithDetails(map[string]any{"renumbered": renumbered}).MCP(), nil
	}
}
