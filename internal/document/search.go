package document

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/LuiccianDev/mcp-word-office/internal/docx"
)

// Match is one occurrence of a search term.
type Match struct {
	ParagraphIndex int    `json:"paragraph_index"`
	Position       int    `json:"position"` // rune offset within the paragraph
	Context        string `json:"context"`
}

// FindText locates every occurrence of query in the top-level paragraphs.
// matchCase toggles case sensitivity; wholeWord requires the match to sit on
// word boundaries.
func FindText(doc *docx.Document, query string, matchCase, wholeWord bool) []Match {
	if query == "" {
		return nil
	}
	var out []Match
	for i, p := range doc.Paragraphs() {
		text := p.Text()
		for _, pos := range findAll(text, query, matchCase, wholeWord) {
			out = append(out, Match{
				ParagraphIndex: i,
				Position:       utf8.RuneCountInString(text[:pos]),
				Context:        contextAround(text, pos, len(query)),
			})
		}
	}
	return out
}

// findAll returns the byte offsets of every (optionally boundary-checked)
// occurrence of query in text.
func findAll(text, query string, matchCase, wholeWord bool) []int {
	haystack, needle := text, query
	if !matchCase {
		haystack = strings.ToLower(haystack)
		needle = strings.ToLower(needle)
	}

	var offsets []int
	for start := 0; ; {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			break
		}
		pos := start + idx
		if !wholeWord || onWordBoundary(text, pos, len(needle)) {
			offsets = append(offsets, pos)
		}
		start = pos + len(needle)
	}
	return offsets
}

func onWordBoundary(text string, pos, length int) bool {
	if pos > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:pos])
		if isWordRune(r) {
			return false
		}
	}
	if pos+length < len(text) {
		r, _ := utf8.DecodeRuneInString(text[pos+length:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// contextAround clips a window of up to 30 bytes either side of the match,
// aligned to rune boundaries.
func contextAround(text string, pos, length int) string {
	const window = 30
	start := pos - window
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	end := pos + length + window
	if end > len(text) {
		end = len(text)
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return text[start:end]
}

// Replace substitutes every occurrence of find with repl across top-level
// paragraphs and table cells, returning the number of replacements.
//
// Matches contained in a single run keep that run's formatting. A match that
// spans runs collapses the paragraph to one run carrying the first run's
// formatting; mixed formatting inside the matched region cannot be preserved.
func Replace(doc *docx.Document, find, repl string) int {
	if find == "" {
		return 0
	}
	total := 0
	for _, p := range doc.Paragraphs() {
		total += replaceInParagraph(p, find, repl)
	}
	for _, t := range doc.Tables() {
		for _, row := range t.Rows {
			for _, cell := range row.Cells {
				for _, p := range cell.Paragraphs {
					total += replaceInParagraph(p, find, repl)
				}
			}
		}
	}
	return total
}

func replaceInParagraph(p *docx.Paragraph, find, repl string) int {
	if !strings.Contains(p.Text(), find) {
		return 0
	}

	// First pass: matches fully inside individual runs.
	count := 0
	for _, r := range p.Runs {
		if n := strings.Count(r.Text, find); n > 0 {
			r.Text = strings.ReplaceAll(r.Text, find, repl)
			count += n
		}
	}

	// Remaining matches span run boundaries: collapse to a single run.
	if rest := strings.Count(p.Text(), find); rest > 0 {
		collapsed := strings.ReplaceAll(p.Text(), find, repl)
		keep := firstTextRun(p)
		keep.Text = collapsed
		p.Runs = []*docx.Run{keep}
		count += rest
	}
	return count
}

// firstTextRun picks the formatting carrier for a collapsed paragraph.
func firstTextRun(p *docx.Paragraph) *docx.Run {
	for _, r := range p.Runs {
		if r.Text != "" {
			return r
		}
	}
	return &docx.Run{}
}
