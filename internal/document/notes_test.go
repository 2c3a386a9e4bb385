package document

import (
	"strings"
	"testing"

	"github.com/LuiccianDev/mcp-word-office/internal/docx"
)

func TestAddFootnote(t *testing.T) {
	doc := docx.New()
	doc.AddParagraph("claim needing a source")
	doc.AddParagraph("another paragraph")

	num, err := AddFootnote(doc, 0, "see annual report, p. 12")
	if err != nil {
		t.Fatalf("AddFootnote: %v", err)
	}
	if num != 1 {
		t.Fatalf("expected footnote number 1; got %d", num)
	}

	paras := doc.Paragraphs()
	target := paras[0]
	marker := target.Runs[len(target.Runs)-1]
	if marker.Text != "1" || !marker.Superscript {
		t.Fatalf("expected superscript marker run; got %+v", marker)
	}

	if idx := findHeading(doc, "Footnotes"); idx < 0 {
		t.Fatal("expected a Footnotes section heading")
	}
	entries := noteEntries(doc, "Footnotes")
	if len(entries) != 1 || entries[0].Text() != "1. see annual report, p. 12" {
		t.Fatalf("unexpected entries: %d", len(entries))
	}
	if entries[0].Style != "Footnote Text" {
		t.Fatalf("expected Footnote Text style; got %q", entries[0].Style)
	}
	if !doc.HasStyle("Footnote Text") {
		t.Fatal("expected note style defined")
	}

	// Second footnote numbers sequentially.
	num, err = AddFootnote(doc, 1, "second source")
	if err != nil {
		t.Fatal(err)
	}
	if num != 2 {
		t.Fatalf("expected footnote number 2; got %d", num)
	}
}

func TestAddFootnote_Validation(t *testing.T) {
	doc := docx.New()
	doc.AddParagraph("only one")

	if _, err := AddFootnote(doc, 5, "x"); err == nil {
		t.Fatal("expected out-of-range error")
	}
	if _, err := AddFootnote(doc, 0, "  "); err == nil {
		t.Fatal("expected empty-text error")
	}

	// Attaching to the footnotes section itself is rejected.
	if _, err := AddFootnote(doc, 0, "fine"); err != nil {
		t.Fatal(err)
	}
	headingIdx := findHeading(doc, "Footnotes")
	if _, err := AddFootnote(doc, headingIdx, "nested"); err == nil {
		t.Fatal("expected rejection inside the footnotes section")
	}
}

func TestAddEndnote(t *testing.T) {
	doc := docx.New()
	doc.AddParagraph("body")
	num, err := AddEndnote(doc, 0, "endnote detail")
	if err != nil {
		t.Fatal(err)
	}
	if num != 1 {
		t.Fatalf("expected endnote 1; got %d", num)
	}
	if findHeading(doc, "Endnotes") < 0 {
		t.Fatal("expected an Endnotes section")
	}
}

func TestConvertFootnotesToEndnotes(t *testing.T) {
	doc := docx.New()
	doc.AddParagraph("first")
	doc.AddParagraph("second")
	if _, err := AddFootnote(doc, 0, "note one"); err != nil {
		t.Fatal(err)
	}
	if _, err := AddFootnote(doc, 1, "note two"); err != nil {
		t.Fatal(err)
	}

	moved := ConvertFootnotesToEndnotes(doc)
	if moved != 2 {
		t.Fatalf("expected 2 moved; got %d", moved)
	}

	fn, en := CountNotes(doc)
	if fn != 0 || en != 2 {
		t.Fatalf("expected 0 footnotes and 2 endnotes; got %d/%d", fn, en)
	}
	if findHeading(doc, "Footnotes") >= 0 {
		t.Fatal("footnotes section must be removed")
	}
	entries := noteEntries(doc, "Endnotes")
	if entries[0].Text() != "1. note one" || entries[1].Text() != "2. note two" {
		t.Fatalf("unexpected renumbering: %q, %q", entries[0].Text(), entries[1].Text())
	}
}

func TestConvertFootnotesToEndnotes_NoFootnotes(t *testing.T) {
	doc := docx.New()
	doc.AddParagraph("nothing to move")
	if moved := ConvertFootnotesToEndnotes(doc); moved != 0 {
		t.Fatalf("expected 0 moved; got %d", moved)
	}
}

func TestCustomizeFootnoteStyle(t *testing.T) {
	doc := docx.New()
	if _, err := CustomizeFootnoteStyle(doc, NoteStyleOptions{Font: "Georgia", SizePt: 8, Color: "444444"}); err != nil {
		t.Fatal(err)
	}

	def := doc.LookupStyle("Footnote Text")
	if def == nil {
		t.Fatal("expected style to be created")
	}
	if def.Font != "Georgia" || def.SizePt != 8 || def.Color != "444444" {
		t.Fatalf("style not customized: %+v", def)
	}

	// Partial updates keep prior values.
	if _, err := CustomizeFootnoteStyle(doc, NoteStyleOptions{SizePt: 10}); err != nil {
		t.Fatal(err)
	}
	def = doc.LookupStyle("Footnote Text")
	if def.Font != "Georgia" || def.SizePt != 10 {
		t.Fatalf("partial update wrong: %+v", def)
	}
}

func TestCustomizeFootnoteStyle_Renumbering(t *testing.T) {
	doc := docx.New()
	doc.AddParagraph("first claim")
	doc.AddParagraph("second claim")
	if _, err := AddFootnote(doc, 0, "alpha"); err != nil {
		t.Fatal(err)
	}
	if _, err := AddFootnote(doc, 1, "beta"); err != nil {
		t.Fatal(err)
	}

	n, err := CustomizeFootnoteStyle(doc, NoteStyleOptions{NumberingFormat: "i, ii, iii"})
	if err != nil {
		t.Fatalf("CustomizeFootnoteStyle: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 renumbered; got %d", n)
	}

	paras := doc.Paragraphs()
	m1 := paras[0].Runs[len(paras[0].Runs)-1]
	m2 := paras[1].Runs[len(paras[1].Runs)-1]
	if m1.Text != "i" || m2.Text != "ii" {
		t.Fatalf("expected roman markers; got %q, %q", m1.Text, m2.Text)
	}
	entries := noteEntries(doc, "Footnotes")
	if entries[0].Text() != "i. alpha" || entries[1].Text() != "ii. beta" {
		t.Fatalf("expected renumbered entries; got %q, %q", entries[0].Text(), entries[1].Text())
	}

	if _, err := CustomizeFootnoteStyle(doc, NoteStyleOptions{NumberingFormat: "I, II, III"}); err == nil {
		t.Fatal("expected unknown format to be rejected")
	}
}

func TestNoteSymbol(t *testing.T) {
	cases := []struct {
		format string
		n      int
		want   string
	}{
		{"1, 2, 3", 4, "4"},
		{"i, ii, iii", 4, "iv"},
		{"a, b, c", 2, "b"},
		{"a, b, c", 27, "27"}, // exhausted -> numeric
		{"*, †, ‡", 2, "†"},
		{"*, †, ‡", 5, "5"}, // exhausted -> numeric
	}
	for _, tc := range cases {
		if got := noteSymbol(tc.format, tc.n); got != tc.want {
			t.Fatalf("noteSymbol(%q, %d): expected %q; got %q", tc.format, tc.n, got, tc.want)
		}
	}
}

func TestInsertTOC(t *testing.T) {
	doc := docx.New()
	doc.AddHeading("Introduction", 1)
	doc.AddParagraph("intro body")
	doc.AddHeading("Methods", 1)
	doc.AddHeading("Sampling", 2)
	doc.AddHeading("Too Deep", 3)

	n, err := InsertTOC(doc, "", 2)
	if err != nil {
		t.Fatalf("InsertTOC: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 entries; got %d", n)
	}

	paras := doc.Paragraphs()
	if paras[0].Text() != "Table of Contents" || paras[0].Style != "Heading 1" {
		t.Fatalf("expected default title heading; got %q/%q", paras[0].Text(), paras[0].Style)
	}
	if paras[1].Text() != "Introduction" {
		t.Fatalf("expected first entry; got %q", paras[1].Text())
	}
	if paras[3].Text() != "    Sampling" {
		t.Fatalf("expected indented level-2 entry; got %q", paras[3].Text())
	}
	if !paras[4].Runs[0].PageBreak {
		t.Fatal("expected a page break after the TOC")
	}
	// Original first heading follows the TOC block.
	if paras[5].Text() != "Introduction" || paras[5].Style != "Heading 1" {
		t.Fatalf("expected original body preserved; got %q", paras[5].Text())
	}
}

func TestInsertTOC_InvalidDepth(t *testing.T) {
	doc := docx.New()
	if _, err := InsertTOC(doc, "TOC", 0); err == nil {
		t.Fatal("expected error for depth 0")
	}
	if _, err := InsertTOC(doc, "TOC", 10); err == nil {
		t.Fatal("expected error for depth 10")
	}
}

func TestHeadingLevel(t *testing.T) {
	cases := map[string]int{
		"Heading 1":     1,
		"Heading 9":     9,
		"Heading 12":    0,
		"Normal":        0,
		"":              0,
		"Footnote Text": 0,
	}
	for style, want := range cases {
		if got := headingLevel(style); got != want {
			t.Fatalf("headingLevel(%q): expected %d; got %d", style, want, got)
		}
	}
}

func TestNotes_SurviveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	doc := docx.New()
	doc.AddParagraph("sourced claim")
	if _, err := AddFootnote(doc, 0, "the source"); err != nil {
		t.Fatal(err)
	}
	path := dir + "/notes.docx"
	if err := doc.Save(path); err != nil {
		t.Fatal(err)
	}

	got, err := docx.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	fn, _ := CountNotes(got)
	if fn != 1 {
		t.Fatalf("expected footnote to survive round-trip; got %d", fn)
	}
	marker := got.Paragraphs()[0].Runs
	if !marker[len(marker)-1].Superscript {
		t.Fatal("expected superscript marker after round-trip")
	}
	if !strings.Contains(got.Paragraphs()[2].Text(), "the source") {
		t.Fatalf("expected entry text; got %q", got.Paragraphs()[2].Text())
	}
}
