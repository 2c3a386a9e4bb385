package document

import (
	"testing"

	"github.com/LuiccianDev/mcp-word-office/internal/docx"
)

func boolp(v bool) *bool { return &v }

func TestFormatRange_SplitsSingleRun(t *testing.T) {
	doc := docx.New()
	p := doc.AddParagraph("make this word bold")

	// "this" is runes [5, 9)
	if err := FormatRange(p, 5, 9, RunFormat{Bold: boolp(true)}); err != nil {
		t.Fatalf("FormatRange: %v", err)
	}

	if len(p.Runs) != 3 {
		t.Fatalf("expected 3 runs after split; got %d", len(p.Runs))
	}
	if p.Runs[0].Text != "make " || p.Runs[0].Bold {
		t.Fatalf("prefix run wrong: %+v", p.Runs[0])
	}
	if p.Runs[1].Text != "this" || !p.Runs[1].Bold {
		t.Fatalf("target run wrong: %+v", p.Runs[1])
	}
	if p.Runs[2].Text != " word bold" || p.Runs[2].Bold {
		t.Fatalf("suffix run wrong: %+v", p.Runs[2])
	}
	if p.Text() != "make this word bold" {
		t.Fatalf("text must be unchanged; got %q", p.Text())
	}
}

func TestFormatRange_SpansRuns(t *testing.T) {
	doc := docx.New()
	p := doc.AddParagraph("alpha ")
	r2 := p.AddRun("beta")
	r2.Italic = true

	// cover "ha bet": runes [3, 9)
	if err := FormatRange(p, 3, 9, RunFormat{Underline: boolp(true), Color: "0000FF"}); err != nil {
		t.Fatalf("FormatRange: %v", err)
	}
	if p.Text() != "alpha beta" {
		t.Fatalf("text changed: %q", p.Text())
	}

	// first run splits into "alp" + "ha ", second into "bet" + "a"
	if len(p.Runs) != 4 {
		t.Fatalf("expected 4 runs; got %d", len(p.Runs))
	}
	if p.Runs[1].Text != "ha " || !p.Runs[1].Underline || p.Runs[1].Color != "0000FF" {
		t.Fatalf("first covered segment wrong: %+v", p.Runs[1])
	}
	// covered part of the italic run keeps italic and gains underline
	if p.Runs[2].Text != "bet" || !p.Runs[2].Italic || !p.Runs[2].Underline {
		t.Fatalf("second covered segment wrong: %+v", p.Runs[2])
	}
	if p.Runs[3].Text != "a" || !p.Runs[3].Italic || p.Runs[3].Underline {
		t.Fatalf("uncovered tail wrong: %+v", p.Runs[3])
	}
}

func TestFormatRange_InvalidRange(t *testing.T) {
	doc := docx.New()
	p := doc.AddParagraph("short")

	for _, tc := range [][2]int{{-1, 3}, {2, 2}, {3, 1}, {0, 99}} {
		if err := FormatRange(p, tc[0], tc[1], RunFormat{Bold: boolp(true)}); err == nil {
			t.Fatalf("expected error for range [%d, %d)", tc[0], tc[1])
		}
	}
	if len(p.Runs) != 1 || p.Runs[0].Bold {
		t.Fatal("failed format must not mutate the paragraph")
	}
}

func TestFormatRange_ExplicitOff(t *testing.T) {
	doc := docx.New()
	p := doc.AddParagraph("")
	r := p.AddRun("loud")
	r.Bold = true

	if err := FormatRange(p, 0, 4, RunFormat{Bold: boolp(false), SizePt: 18}); err != nil {
		t.Fatal(err)
	}
	if p.Runs[0].Bold {
		t.Fatal("expected bold cleared")
	}
	if p.Runs[0].SizePt != 18 {
		t.Fatalf("expected size applied; got %d", p.Runs[0].SizePt)
	}
}

func TestFormatTable(t *testing.T) {
	doc := docx.New()
	tbl := doc.AddTable(3, 2)
	tbl.Cell(0, 0).SetText("Name")
	tbl.Cell(0, 1).SetText("Value")
	tbl.Cell(1, 0).SetText("a")

	FormatTable(tbl, TableFormat{
		HasHeaderRow: true,
		HeaderShade:  "D9D9D9",
		BorderVal:    "single",
	})

	for _, cell := range tbl.Rows[0].Cells {
		if cell.Shading != "D9D9D9" {
			t.Fatalf("expected header shading; got %q", cell.Shading)
		}
		for _, p := range cell.Paragraphs {
			for _, r := range p.Runs {
				if !r.Bold {
					t.Fatal("expected bold header text")
				}
			}
		}
	}
	if tbl.Cell(1, 0).Shading != "" {
		t.Fatal("body rows must not be shaded")
	}
	if tbl.Cell(2, 1).BorderVal != "single" {
		t.Fatal("expected borders on every cell")
	}
}
