package document

import (
	"fmt"
	"strings"

	"github.com/LuiccianDev/mcp-word-office/internal/docx"
	"github.com/LuiccianDev/mcp-word-office/internal/worderr"
)

// Footnotes and endnotes are rendered as visible sections at the end of the
// document: a superscript reference number in the source paragraph and a
// numbered entry under a "Footnotes" or "Endnotes" heading. The note text
// uses the "Footnote Text" / "Endnote Text" styles, created on demand.

const (
	footnotesHeading = "Footnotes"
	endnotesHeading  = "Endnotes"

	footnoteStyle = "Footnote Text"
	endnoteStyle  = "Endnote Text"
)

// AddFootnote attaches a footnote to the paragraph at index: a superscript
// number in the paragraph and a numbered entry in the footnotes section.
// It returns the assigned footnote number.
func AddFootnote(doc *docx.Document, paragraphIndex int, text string) (int, error) {
	return addNote(doc, paragraphIndex, text, footnotesHeading, footnoteStyle, "")
}

// AddEndnote attaches an endnote to the paragraph at index. The in-text
// marker is a superscript asterisk; the entry itself is numbered.
func AddEndnote(doc *docx.Document, paragraphIndex int, text string) (int, error) {
	return addNote(doc, paragraphIndex, text, endnotesHeading, endnoteStyle, "*")
}

func addNote(doc *docx.Document, paragraphIndex int, text, heading, style, marker string) (int, error) {
	paras := doc.Paragraphs()
	if paragraphIndex < 0 || paragraphIndex >= len(paras) {
		return 0, worderr.Validation("paragraph index %d out of range (document has %d paragraphs)", paragraphIndex, len(paras))
	}
	if strings.TrimSpace(text) == "" {
		return 0, worderr.Validation("note text must not be empty")
	}
	target := paras[paragraphIndex]
	if isNoteSectionMember(doc, target, heading) {
		return 0, worderr.Validation("cannot attach a note inside the %s section", strings.ToLower(heading))
	}

	num := len(noteEntries(doc, heading)) + 1
	if marker == "" {
		marker = fmt.Sprintf("%d", num)
	}

	ref := target.AddRun(marker)
	ref.Superscript = true

	ensureNoteStyle(doc, style)
	ensureNoteSection(doc, heading)
	entry := doc.AddParagraph(fmt.Sprintf("%d. %s", num, text))
	entry.Style = style

	return num, nil
}

// ConvertFootnotesToEndnotes moves every footnote entry into the endnotes
// section, renumbering after any existing endnotes. It returns the number of
// entries moved.
func ConvertFootnotesToEndnotes(doc *docx.Document) int {
	entries := noteEntries(doc, footnotesHeading)
	if len(entries) == 0 {
		return 0
	}

	existing := len(noteEntries(doc, endnotesHeading))
	ensureNoteStyle(doc, endnoteStyle)
	ensureNoteSection(doc, endnotesHeading)

	for i, entry := range entries {
		text := stripNoteNumber(entry.Text())
		moved := doc.AddParagraph(fmt.Sprintf("%d. %s", existing+i+1, text))
		moved.Style = endnoteStyle
	}

	removeNoteSection(doc, footnotesHeading)
	return len(entries)
}

// NoteStyleOptions customizes the footnote entry style and numbering.
type NoteStyleOptions struct {
	// NumberingFormat selects the marker sequence: "1, 2, 3" (default),
	// "i, ii, iii", "a, b, c", or "*, †, ‡". Sequences extend numerically
	// once exhausted.
	NumberingFormat string
	StartNumber     int // 1-based; 0 means 1
	Font            string
	SizePt          int
	Color           string
}

// CustomizeFootnoteStyle updates the footnote entry style, creating it when
// absent, and renumbers existing footnote markers and entries when a
// numbering format or start number is given. It returns the number of
// footnotes renumbered.
//
// Marker renumbering relies on a superscript-run scan: any superscript run
// outside the notes sections is treated as a footnote marker, in document
// order. Superscript runs used for other purposes will be renumbered too.
func CustomizeFootnoteStyle(doc *docx.Document, opts NoteStyleOptions) (int, error) {
	ensureNoteStyle(doc, footnoteStyle)
	def := doc.LookupStyle(footnoteStyle)
	if opts.Font != "" {
		def.Font = opts.Font
	}
	if opts.SizePt > 0 {
		def.SizePt = opts.SizePt
	}
	if opts.Color != "" {
		def.Color = opts.Color
	}

	if opts.NumberingFormat == "" && opts.StartNumber == 0 {
		return 0, nil
	}
	format := opts.NumberingFormat
	if format == "" {
		format = "1, 2, 3"
	}
	if !knownNumberingFormat(format) {
		return 0, worderr.Validation("unknown numbering format %q", format)
	}
	start := opts.StartNumber
	if start <= 0 {
		start = 1
	}
	return renumberFootnotes(doc, format, start), nil
}

// renumberFootnotes rewrites footnote markers (superscript runs outside the
// notes sections) and entry prefixes with the selected sequence.
func renumberFootnotes(doc *docx.Document, format string, start int) int {
	entries := noteEntries(doc, footnotesHeading)

	var markers []*docx.Run
	for _, p := range doc.Paragraphs() {
		if isNoteSectionMember(doc, p, footnotesHeading) || isNoteSectionMember(doc, p, endnotesHeading) {
			continue
		}
		for _, r := range p.Runs {
			if r.Superscript && r.Text != "" && r.Text != "*" {
				markers = append(markers, r)
			}
		}
	}

	for i, m := range markers {
		m.Text = noteSymbol(format, start+i)
	}
	for i, e := range entries {
		text := stripNoteNumber(e.Text())
		e.Runs = []*docx.Run{{Text: fmt.Sprintf("%s. %s", noteSymbol(format, start+i), text)}}
	}
	if len(markers) > len(entries) {
		return len(markers)
	}
	return len(entries)
}

func knownNumberingFormat(format string) bool {
	switch format {
	case "1, 2, 3", "i, ii, iii", "a, b, c", "*, †, ‡":
		return true
	}
	return false
}

// noteSymbol renders the n-th (1-based) marker in the chosen sequence,
// falling back to the decimal number once a finite sequence runs out.
func noteSymbol(format string, n int) string {
	switch format {
	case "i, ii, iii":
		return lowerRoman(n)
	case "a, b, c":
		if n >= 1 && n <= 26 {
			return string(rune('a' + n - 1))
		}
	case "*, †, ‡":
		symbols := []string{"*", "†", "‡", "§"}
		if n >= 1 && n <= len(symbols) {
			return symbols[n-1]
		}
	}
	return fmt.Sprintf("%d", n)
}

func lowerRoman(n int) string {
	if n < 1 || n > 3999 {
		return fmt.Sprintf("%d", n)
	}
	values := []struct {
		v int
		s string
	}{
		{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
		{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
		{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
	}
	var sb strings.Builder
	for _, p := range values {
		for n >= p.v {
			sb.WriteString(p.s)
			n -= p.v
		}
	}
	return sb.String()
}

// CountNotes returns the number of footnote and endnote entries.
func CountNotes(doc *docx.Document) (footnotes, endnotes int) {
	return len(noteEntries(doc, footnotesHeading)), len(noteEntries(doc, endnotesHeading))
}

func ensureNoteStyle(doc *docx.Document, name string) {
	if doc.HasStyle(name) {
		return
	}
	doc.DefineStyle(&docx.StyleDef{
		Name:    name,
		Type:    docx.StyleParagraph,
		BasedOn: "Normal",
		SizePt:  9,
	})
}

// ensureNoteSection appends the section heading when missing. Sections live
// at the end of the body; the footnotes section, if present, precedes a
// later-created endnotes section only by insertion order.
func ensureNoteSection(doc *docx.Document, heading string) {
	if findHeading(doc, heading) >= 0 {
		return
	}
	doc.AddHeading(heading, 2)
}

// findHeading returns the paragraph index of the section heading, or -1.
func findHeading(doc *docx.Document, heading string) int {
	for i, p := range doc.Paragraphs() {
		if strings.HasPrefix(p.Style, "Heading") && p.Text() == heading {
			return i
		}
	}
	return -1
}

// noteEntries returns the numbered entry paragraphs following the section
// heading, stopping at the next heading.
func noteEntries(doc *docx.Document, heading string) []*docx.Paragraph {
	paras := doc.Paragraphs()
	start := findHeading(doc, heading)
	if start < 0 {
		return nil
	}
	var out []*docx.Paragraph
	for _, p := range paras[start+1:] {
		if strings.HasPrefix(p.Style, "Heading") {
			break
		}
		if p.Text() != "" {
			out = append(out, p)
		}
	}
	return out
}

// isNoteSectionMember reports whether the paragraph is the section heading
// or one of its entries.
func isNoteSectionMember(doc *docx.Document, p *docx.Paragraph, heading string) bool {
	start := findHeading(doc, heading)
	if start < 0 {
		return false
	}
	paras := doc.Paragraphs()
	if paras[start] == p {
		return true
	}
	for _, e := range noteEntries(doc, heading) {
		if e == p {
			return true
		}
	}
	return false
}

// removeNoteSection deletes the section heading and everything up to the
// next heading (or the end of the document).
func removeNoteSection(doc *docx.Document, heading string) {
	start := findHeading(doc, heading)
	if start < 0 {
		return
	}
	span := 0
	for _, p := range doc.Paragraphs()[start+1:] {
		if strings.HasPrefix(p.Style, "Heading") {
			break
		}
		span++
	}
	for i := 0; i < span; i++ {
		doc.RemoveParagraph(start + 1)
	}
	doc.RemoveParagraph(start)
}

func stripNoteNumber(text string) string {
	if i := strings.Index(text, ". "); i > 0 && i <= 4 {
		return text[i+2:]
	}
	return text
}
