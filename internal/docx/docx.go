// Package docx is a minimal WordprocessingML codec: it reads and writes the
// subset of the .docx package format that the document tools manipulate:
// paragraphs and runs with direct formatting, tables, cell borders and
// shading, paragraph styles, core properties, page breaks, and inline
// pictures.
//
// The codec is deliberately lossy for foreign documents: parts it does not
// model (numbering, sections, headers/footers, comments, the footnotes part)
// are dropped on a read/modify/save cycle. Documents produced by this package
// round-trip losslessly through it.
package docx

import (
	"errors"
	"strings"
)

// Extension is the expected file extension for documents handled here.
const Extension = ".docx"

// ErrNotWordDocument is returned by Open when the file is not a readable
// .docx package (not a zip archive, or missing the main document part).
// Callers distinguish this from generic open failures.
var ErrNotWordDocument = errors.New("not a Word document package")

// Block is a top-level body element: *Paragraph or *Table.
type Block interface{ block() }

// Paragraph is a sequence of runs with an optional named paragraph style.
type Paragraph struct {
	// Style is the display name of the paragraph style ("Heading 1",
	// "Normal"). Empty means unstyled, which renders as Normal.
	Style string
	Runs  []*Run
}

func (*Paragraph) block() {}

// Run is a span of text sharing one set of direct formatting, or a page
// break, or an inline picture.
type Run struct {
	Text        string
	Bold        bool
	Italic      bool
	Underline   bool
	Superscript bool
	Subscript   bool
	Color       string // hex RRGGBB, empty for automatic
	SizePt      int    // font size in points, 0 for inherited
	Font        string // ascii/hAnsi font name, empty for inherited

	// PageBreak marks a run that renders as a page break instead of text.
	PageBreak bool

	// picture, when non-nil, renders as an inline drawing. Managed through
	// Document.AddPicture.
	picture *picture
}

// Table is a grid of rows with an optional named table style.
type Table struct {
	Style string
	Rows  []*Row
}

func (*Table) block() {}

// Row is a table row.
type Row struct {
	Cells []*Cell
}

// Cell holds block paragraphs plus optional per-cell decoration.
type Cell struct {
	Paragraphs []*Paragraph
	// Shading is a hex RRGGBB fill, empty for none.
	Shading string
	// BorderVal is the border style applied to all four sides
	// ("nil", "single", "double", "thick"); empty means inherited.
	BorderVal string
}

// picture is an inline image bound to a media part by relationship ID.
type picture struct {
	relID     string
	widthEMU  int64
	heightEMU int64
}

// mediaPart is an image payload stored under word/media/.
type mediaPart struct {
	name        string // e.g. "image1.png"
	contentType string // e.g. "image/png"
	data        []byte
}

// Document is an in-memory .docx package.
type Document struct {
	Body       []Block
	Properties CoreProperties

	styles *styleSheet
	media  []mediaPart
}

// New creates an empty document seeded with the base styles (Normal,
// Heading 1-9, Table Grid).
func New() *Document {
	return &Document{styles: defaultStyles()}
}

// Paragraphs returns the top-level paragraphs in body order. Paragraphs
// inside table cells are not included; see Table.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, b := range d.Body {
		if p, ok := b.(*Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

// Tables returns the top-level tables in body order.
func (d *Document) Tables() []*Table {
	var out []*Table
	for _, b := range d.Body {
		if t, ok := b.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

// AddParagraph appends a paragraph with a single plain run. An empty text
// yields a paragraph with no runs.
func (d *Document) AddParagraph(text string) *Paragraph {
	p := &Paragraph{}
	if text != "" {
		p.Runs = append(p.Runs, &Run{Text: text})
	}
	d.Body = append(d.Body, p)
	return p
}

// AddHeading appends a heading paragraph at the given level (1-9) using the
// corresponding Heading style. The style is created on demand when missing.
func (d *Document) AddHeading(text string, level int) *Paragraph {
	name := headingStyleName(level)
	d.styles.ensureHeading(level)
	p := d.AddParagraph(text)
	p.Style = name
	return p
}

// AddPageBreak appends a paragraph holding a single page-break run.
func (d *Document) AddPageBreak() {
	d.Body = append(d.Body, &Paragraph{Runs: []*Run{{PageBreak: true}}})
}

// AddTable appends a rows×cols table of empty cells. Dimensions must be
// positive. The Table Grid style is applied when present.
func (d *Document) AddTable(rows, cols int) *Table {
	t := &Table{}
	if d.HasStyle("Table Grid") {
		t.Style = "Table Grid"
	}
	for i := 0; i < rows; i++ {
		r := &Row{}
		for j := 0; j < cols; j++ {
			r.Cells = append(r.Cells, &Cell{Paragraphs: []*Paragraph{{}}})
		}
		t.Rows = append(t.Rows, r)
	}
	d.Body = append(d.Body, t)
	return t
}

// RemoveParagraph removes the idx-th top-level paragraph (0-based over
// Paragraphs(), not over Body). Reports whether a paragraph was removed.
func (d *Document) RemoveParagraph(idx int) bool {
	n := -1
	for i, b := range d.Body {
		if _, ok := b.(*Paragraph); ok {
			n++
			if n == idx {
				d.Body = append(d.Body[:i], d.Body[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Text returns the concatenated text of the paragraph's runs. Page-break and
// picture runs contribute nothing.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// AddRun appends a plain text run and returns it for formatting.
func (p *Paragraph) AddRun(text string) *Run {
	r := &Run{Text: text}
	p.Runs = append(p.Runs, r)
	return r
}

// Text returns the cell content with inner paragraphs joined by newlines.
func (c *Cell) Text() string {
	parts := make([]string, 0, len(c.Paragraphs))
	for _, p := range c.Paragraphs {
		parts = append(parts, p.Text())
	}
	return strings.Join(parts, "\n")
}

// SetText replaces the cell content with a single plain paragraph.
func (c *Cell) SetText(text string) {
	p := &Paragraph{}
	if text != "" {
		p.Runs = []*Run{{Text: text}}
	}
	c.Paragraphs = []*Paragraph{p}
}

// Cell returns the cell at (row, col), or nil when out of range.
func (t *Table) Cell(row, col int) *Cell {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r.Cells) {
		return nil
	}
	return r.Cells[col]
}

// Columns returns the column count of the widest row.
func (t *Table) Columns() int {
	max := 0
	for _, r := range t.Rows {
		if len(r.Cells) > max {
			max = len(r.Cells)
		}
	}
	return max
}
