package document

import (
	"unicode/utf8"

	"github.com/LuiccianDev/mcp-word-office/internal/docx"
	"github.com/LuiccianDev/mcp-word-office/internal/worderr"
)

// RunFormat describes formatting to apply to a text range. Nil booleans and
// zero values leave the corresponding attribute untouched.
type RunFormat struct {
	Bold      *bool
	Italic    *bool
	Underline *bool
	Color     string
	SizePt    int
	Font      string
}

// FormatRange applies formatting to the rune range [start, end) of a
// paragraph's text. Runs partially covered by the range are split so the
// formatting lands exactly on the requested characters; formatting outside
// the range is preserved.
func FormatRange(p *docx.Paragraph, start, end int, f RunFormat) error {
	total := utf8.RuneCountInString(p.Text())
	if start < 0 || end > total || start >= end {
		return worderr.Validation("invalid text range [%d, %d) for paragraph of length %d", start, end, total)
	}

	var out []*docx.Run
	offset := 0
	for _, r := range p.Runs {
		n := utf8.RuneCountInString(r.Text)
		if n == 0 {
			// page breaks and drawings carry no text and are never split
			out = append(out, r)
			continue
		}
		runStart, runEnd := offset, offset+n
		offset = runEnd

		ovStart, ovEnd := maxI(runStart, start), minI(runEnd, end)
		if ovStart >= ovEnd {
			out = append(out, r)
			continue
		}

		runes := []rune(r.Text)
		if ovStart > runStart {
			out = append(out, cloneRun(r, string(runes[:ovStart-runStart])))
		}
		mid := cloneRun(r, string(runes[ovStart-runStart:ovEnd-runStart]))
		applyFormat(mid, f)
		out = append(out, mid)
		if ovEnd < runEnd {
			out = append(out, cloneRun(r, string(runes[ovEnd-runStart:])))
		}
	}
	p.Runs = out
	return nil
}

func cloneRun(r *docx.Run, text string) *docx.Run {
	c := *r
	c.Text = text
	return &c
}

func applyFormat(r *docx.Run, f RunFormat) {
	if f.Bold != nil {
		r.Bold = *f.Bold
	}
	if f.Italic != nil {
		r.Italic = *f.Italic
	}
	if f.Underline != nil {
		r.Underline = *f.Underline
	}
	if f.Color != "" {
		r.Color = f.Color
	}
	if f.SizePt > 0 {
		r.SizePt = f.SizePt
	}
	if f.Font != "" {
		r.Font = f.Font
	}
}

// TableFormat describes table-level decoration.
type TableFormat struct {
	HasHeaderRow bool
	HeaderShade  string // hex fill for the first row, "" for none
	BorderVal    string // border style for every cell, "" leaves borders alone
}

// FormatTable applies uniform borders and optional header-row shading.
func FormatTable(t *docx.Table, f TableFormat) {
	if len(t.Rows) == 0 {
		return
	}
	for i, row := range t.Rows {
		for _, cell := range row.Cells {
			if f.BorderVal != "" {
				cell.BorderVal = f.BorderVal
			}
			if f.HasHeaderRow && i == 0 && f.HeaderShade != "" {
				cell.Shading = f.HeaderShade
			}
		}
	}
	if f.HasHeaderRow {
		for _, cell := range t.Rows[0].Cells {
			for _, p := range cell.Paragraphs {
				for _, r := range p.Runs {
					r.Bold = true
				}
			}
		}
	}
}

func maxI(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minI(a, b int) int {
	if a < b {
		return a
	}
	return b
}
