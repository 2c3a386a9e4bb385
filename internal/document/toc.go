package document

import (
	"fmt"
	"strings"

	"github.com/LuiccianDev/mcp-word-office/internal/docx"
	"github.com/LuiccianDev/mcp-word-office/internal/worderr"
)

// InsertTOC builds a static table of contents from the document's heading
// paragraphs and inserts it at the start of the body, preceded by a title
// heading. Headings deeper than maxLevel are skipped; nested levels are
// indented. It returns the number of entries.
//
// The TOC is plain text, not a Word field: it reflects the headings at the
// time of insertion and does not refresh inside Word.
func InsertTOC(doc *docx.Document, title string, maxLevel int) (int, error) {
	if maxLevel < 1 || maxLevel > 9 {
		return 0, worderr.Validation("toc depth must be between 1 and 9, got %d", maxLevel)
	}
	if title == "" {
		title = "Table of Contents"
	}

	type entry struct {
		text  string
		level int
	}
	var entries []entry
	for _, p := range doc.Paragraphs() {
		lvl := headingLevel(p.Style)
		if lvl == 0 || lvl > maxLevel {
			continue
		}
		if text := p.Text(); text != "" {
			entries = append(entries, entry{text: text, level: lvl})
		}
	}

	titlePara := &docx.Paragraph{Style: "Heading 1", Runs: []*docx.Run{{Text: title}}}
	blocks := make([]docx.Block, 0, len(entries)+2)
	blocks = append(blocks, titlePara)
	for _, e := range entries {
		blocks = append(blocks, &docx.Paragraph{Runs: []*docx.Run{{
			Text: strings.Repeat("    ", e.level-1) + e.text,
		}}})
	}
	blocks = append(blocks, &docx.Paragraph{Runs: []*docx.Run{{PageBreak: true}}})

	doc.Body = append(blocks, doc.Body...)
	return len(entries), nil
}

// headingLevel parses the level out of a "Heading N" style name, returning 0
// for non-heading styles.
func headingLevel(style string) int {
	var lvl int
	if _, err := fmt.Sscanf(style, "Heading %d", &lvl); err != nil {
		return 0
	}
	if lvl < 1 || lvl > 9 {
		return 0
	}
	return lvl
}
