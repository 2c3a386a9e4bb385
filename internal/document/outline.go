package document

import (
	"github.com/LuiccianDev/mcp-word-office/internal/docx"
)

const (
	paragraphPreviewLimit = 100
	cellPreviewLimit      = 20
	tablePreviewRows      = 3
	tablePreviewCols      = 3
)

// OutlineParagraph is one paragraph entry in the structure outline.
type OutlineParagraph struct {
	Index   int    `json:"index"`
	Style   string `json:"style,omitempty"`
	Preview string `json:"preview"`
}

// OutlineTable is one table entry in the structure outline. Preview holds at
// most the top-left 3x3 cells, each clipped to 20 runes.
type OutlineTable struct {
	Index   int        `json:"index"`
	Rows    int        `json:"rows"`
	Columns int        `json:"columns"`
	Preview [][]string `json:"preview"`
}

// Outline is the document structure summary.
type Outline struct {
	Paragraphs []OutlineParagraph `json:"paragraphs"`
	Tables     []OutlineTable     `json:"tables"`
}

// BuildOutline summarizes the document structure: every top-level paragraph
// with a clipped preview, and every table with its dimensions and a corner
// preview.
func BuildOutline(doc *docx.Document) *Outline {
	out := &Outline{}
	for i, p := range doc.Paragraphs() {
		out.Paragraphs = append(out.Paragraphs, OutlineParagraph{
			Index:   i,
			Style:   p.Style,
			Preview: clip(p.Text(), paragraphPreviewLimit),
		})
	}
	for i, t := range doc.Tables() {
		out.Tables = append(out.Tables, OutlineTable{
			Index:   i,
			Rows:    len(t.Rows),
			Columns: t.Columns(),
			Preview: tablePreview(t),
		})
	}
	return out
}

func tablePreview(t *docx.Table) [][]string {
	rows := len(t.Rows)
	if rows > tablePreviewRows {
		rows = tablePreviewRows
	}
	preview := make([][]string, 0, rows)
	for r := 0; r < rows; r++ {
		cols := len(t.Rows[r].Cells)
		if cols > tablePreviewCols {
			cols = tablePreviewCols
		}
		row := make([]string, 0, cols)
		for c := 0; c < cols; c++ {
			row = append(row, clip(t.Rows[r].Cells[c].Text(), cellPreviewLimit))
		}
		preview = append(preview, row)
	}
	return preview
}

// clip truncates to limit runes, appending an ellipsis when cut.
func clip(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
