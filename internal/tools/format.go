package tools

import (
	"context"
	"regexp"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/LuiccianDev/mcp-word-office/internal/document"
	"github.com/LuiccianDev/mcp-word-office/internal/docx"
	"github.com/LuiccianDev/mcp-word-office/internal/response"
	"github.com/LuiccianDev/mcp-word-office/internal/validation"
	"github.com/LuiccianDev/mcp-word-office/internal/worderr"
)

func formatTools(deps Deps) []Tool {
	resolve := validation.Resolver(deps.Resolve)
	wrap := func(h validation.Handler) validation.Handler {
		return validation.Chain(h,
			validation.RequireDocument(resolve, "filename"),
			validation.RequireWritable(resolve, "filename"),
		)
	}

	return []Tool{
		{
			Def: mcp.NewTool("word_format_text",
				mcp.WithDescription("Format a character range inside a paragraph: bold, italic, underline, color, size, font."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to modify")),
				mcp.WithNumber("paragraph_index", mcp.Required(), mcp.Description("Zero-based paragraph index")),
				mcp.WithNumber("start_pos", mcp.Required(), mcp.Description("Start character offset, inclusive")),
				mcp.WithNumber("end_pos", mcp.Required(), mcp.Description("End character offset, exclusive")),
				mcp.WithBoolean("bold", mcp.Description("Set or clear bold")),
				mcp.WithBoolean("italic", mcp.Description("Set or clear italic")),
				mcp.WithBoolean("underline", mcp.Description("Set or clear underline")),
				mcp.WithString("color", mcp.Description("Named color or hex RRGGBB")),
				mcp.WithNumber("font_size", mcp.Description("Font size in points")),
				mcp.WithString("font_name", mcp.Description("Font family name")),
			),
			Handler: wrap(formatText(deps)),
		},
		{
			Def: mcp.NewTool("word_create_custom_style",
				mcp.WithDescription("Define a named paragraph style with the given formatting, usable by later paragraphs."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to modify")),
				mcp.WithString("style_name", mcp.Required(), mcp.Description("Display name of the new style")),
				mcp.WithBoolean("bold", mcp.Description("Bold text")),
				mcp.WithBoolean("italic", mcp.Description("Italic text")),
				mcp.WithNumber("font_size", mcp.Description("Font size in points")),
				mcp.WithString("font_name", mcp.Description("Font family name")),
				mcp.WithString("color", mcp.Description("Named color or hex RRGGBB")),
				mcp.WithString("base_style", mcp.Description("Style to inherit from, default Normal")),
			),
			Handler: wrap(createCustomStyle(deps)),
		},
		{
			Def: mcp.NewTool("word_format_table",
				mcp.WithDescription("Apply borders, header-row emphasis, and shading to a table."),
				mcp.WithString("filename", mcp.Required(), mcp.Description("Document to modify")),
				mcp.WithNumber("table_index", mcp.Required(), mcp.Description("Zero-based table index")),
				mcp.WithBoolean("has_header_row", mcp.Description("Bold and shade the first row")),
				mcp.WithString("border_style", mcp.Description("One of: none, single, double, thick")),
				mcp.WithString("shading", mcp.Description("Header fill as named color or hex RRGGBB")),
			),
			Handler: wrap(formatTable(deps)),
		},
	}
}

var hexColorRe = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

// namedColors maps the color names accepted alongside raw hex values.
var namedColors = map[string]string{
	"black":   "000000",
	"white":   "FFFFFF",
	"red":     "FF0000",
	"green":   "008000",
	"blue":    "0000FF",
	"yellow":  "FFFF00",
	"cyan":    "00FFFF",
	"magenta": "FF00FF",
	"gray":    "808080",
	"grey":    "808080",
	"orange":  "FFA500",
	"purple":  "800080",
	"brown":   "A52A2A",
	"pink":    "FFC0CB",
}

// normalizeColor resolves a named color or hex string (with or without a
// leading '#') to uppercase RRGGBB.
func normalizeColor(s string) (string, bool) {
	if hex, ok := namedColors[strings.ToLower(s)]; ok {
		return hex, true
	}
	trimmed := strings.TrimPrefix(s, "#")
	if hexColorRe.MatchString(trimmed) {
		return strings.ToUpper(trimmed), true
	}
	return "", false
}

func formatText(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "format text"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		idx, iok := validation.IntArg(req, "paragraph_index")
		start, sok := validation.IntArg(req, "start_pos")
		end, eok := validation.IntArg(req, "end_pos")
		if !iok || !sok || !eok {
			return worderr.Handle(worderr.Validation("paragraph_index, start_pos, and end_pos are required integers"), filename, op).MCP(), nil
		}

		var f document.RunFormat
		if b, ok := validation.BoolArg(req, "bold"); ok {
			f.Bold = &b
		}
		if i, ok := validation.BoolArg(req, "italic"); ok {
			f.Italic = &i
		}
		if u, ok := validation.BoolArg(req, "underline"); ok {
			f.Underline = &u
		}
		if c, ok := validation.StringArg(req, "color"); ok && c != "" {
			hex, valid := normalizeColor(c)
			if !valid {
				return worderr.Handle(worderr.Validation("unknown color %q (use a name or hex RRGGBB)", c), filename, op).MCP(), nil
			}
			f.Color = hex
		}
		if size, ok := validation.IntArg(req, "font_size"); ok {
			if size < 1 {
				return worderr.Handle(worderr.Validation("font_size must be positive, got %d", size), filename, op).MCP(), nil
			}
			f.SizePt = size
		}
		if name, ok := validation.StringArg(req, "font_name"); ok {
			f.Font = name
		}

		if err := mutate(path, func(doc *docx.Document) error {
			paras := doc.Paragraphs()
			if idx < 0 || idx >= len(paras) {
				return worderr.Validation("paragraph index %d out of range (document has %d paragraphs)", idx, len(paras))
			}
			return document.FormatRange(paras[idx], start, end, f)
		}); err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		return response.Success("Formatted characters [%d, %d) of paragraph %d in %s", start, end, idx, filename).MCP(), nil
	}
}

func createCustomStyle(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "create custom style"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		styleName, ok := validation.StringArg(req, "style_name")
		if !ok || strings.TrimSpace(styleName) == "" {
			return worderr.Handle(worderr.Validation("style_name must not be empty"), filename, op).MCP(), nil
		}

		def := &docx.StyleDef{
			Name:    styleName,
			Type:    docx.StyleParagraph,
			BasedOn: "Normal",
		}
		if b, ok := validation.BoolArg(req, "bold"); ok {
			def.Bold = &b
		}
		if i, ok := validation.BoolArg(req, "italic"); ok {
			def.Italic = &i
		}
		if size, ok := validation.IntArg(req, "font_size"); ok && size > 0 {
			def.SizePt = size
		}
		if name, ok := validation.StringArg(req, "font_name"); ok {
			def.Font = name
		}
		if c, ok := validation.StringArg(req, "color"); ok && c != "" {
			hex, valid := normalizeColor(c)
			if !valid {
				return worderr.Handle(worderr.Validation("unknown color %q (use a name or hex RRGGBB)", c), filename, op).MCP(), nil
			}
			def.Color = hex
		}
		if base, ok := validation.StringArg(req, "base_style"); ok && base != "" {
			def.BasedOn = base
		}

		if err := mutate(path, func(doc *docx.Document) error {
			if def.BasedOn != "" && !doc.HasStyle(def.BasedOn) {
				return worderr.Style("base style %q does not exist in the document", def.BasedOn)
			}
			doc.DefineStyle(def)
			return nil
		}); err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		return response.Success("Style %q created in %s", styleName, filename).MCP(), nil
	}
}

func formatTable(deps Deps) validation.Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		const op = "format table"
		filename, _ := validation.StringArg(req, "filename")
		path, err := deps.Resolve(filename)
		if err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}

		idx, ok := validation.IntArg(req, "table_index")
		if !ok || idx < 0 {
			return worderr.Handle(worderr.Validation("table_index must be a non-negative integer"), filename, op).MCP(), nil
		}

		var tf document.TableFormat
		tf.HasHeaderRow, _ = validation.BoolArg(req, "has_header_row")
		if border, ok := validation.StringArg(req, "border_style"); ok && border != "" {
			switch border {
			case "none":
				tf.BorderVal = "nil"
			case "single", "double", "thick":
				tf.BorderVal = border
			default:
				return worderr.Handle(worderr.Validation("unknown border style %q (use none, single, double, or thick)", border), filename, op).MCP(), nil
			}
		}
		if shade, ok := validation.StringArg(req, "shading"); ok && shade != "" {
			hex, valid := normalizeColor(shade)
			if !valid {
				return worderr.Handle(worderr.Validation("unknown shading color %q", shade), filename, op).MCP(), nil
			}
			tf.HeaderShade = hex
		}

		if err := mutate(path, func(doc *docx.Document) error {
			tables := doc.Tables()
			if idx >= len(tables) {
				return worderr.Validation("table index %d out of range (document has %d tables)", idx, len(tables))
			}
			document.FormatTable(tables[idx], tf)
			return nil
		}); err != nil {
			return worderr.Handle(err, filename, op).MCP(), nil
		}
		return response.Success("Table %d formatted in %s", idx, filename).MCP(), nil
	}
}
