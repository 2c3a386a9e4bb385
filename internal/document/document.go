// Package document builds document-level operations on top of the docx
// codec: metadata reporting, text extraction, structure outlines, search
// and replace, and file-level copy/merge.
package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/LuiccianDev/mcp-word-office/internal/docx"
)

// Info is the metadata summary reported for a document.
type Info struct {
	Filename       string `json:"filename"`
	SizeBytes      int64  `json:"size_bytes"`
	Title          string `json:"title,omitempty"`
	Author         string `json:"author,omitempty"`
	Subject        string `json:"subject,omitempty"`
	Keywords       string `json:"keywords,omitempty"`
	LastModifiedBy string `json:"last_modified_by,omitempty"`
	Revision       int    `json:"revision,omitempty"`
	Created        string `json:"created,omitempty"`
	Modified       string `json:"modified,omitempty"`
	ParagraphCount int    `json:"paragraph_count"`
	TableCount     int    `json:"table_count"`
	WordCount      int    `json:"word_count"`
}

// Inspect opens the document and gathers its metadata summary.
func Inspect(path string) (*Info, error) {
	doc, err := docx.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Filename:       filepath.Base(path),
		SizeBytes:      st.Size(),
		Title:          doc.Properties.Title,
		Author:         doc.Properties.Author,
		Subject:        doc.Properties.Subject,
		Keywords:       doc.Properties.Keywords,
		LastModifiedBy: doc.Properties.LastModifiedBy,
		Revision:       doc.Properties.Revision,
		ParagraphCount: len(doc.Paragraphs()),
		TableCount:     len(doc.Tables()),
		WordCount:      countWords(ExtractText(doc)),
	}
	if !doc.Properties.Created.IsZero() {
		info.Created = doc.Properties.Created.Format("2006-01-02T15:04:05Z07:00")
	}
	if !doc.Properties.Modified.IsZero() {
		info.Modified = doc.Properties.Modified.Format("2006-01-02T15:04:05Z07:00")
	}
	return info, nil
}

// ExtractText returns the full document text: top-level paragraphs in body
// order, then table content row by row with cells joined by tabs. Paragraphs
// are separated by newlines.
func ExtractText(doc *docx.Document) string {
	var sb strings.Builder
	for _, p := range doc.Paragraphs() {
		sb.WriteString(p.Text())
		sb.WriteString("\n")
	}
	for _, t := range doc.Tables() {
		for _, row := range t.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, c := range row.Cells {
				cells = append(cells, c.Text())
			}
			sb.WriteString(strings.Join(cells, "\t"))
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func countWords(text string) int {
	return len(strings.FieldsFunc(text, unicode.IsSpace))
}

// CopyFile duplicates a document byte for byte, preserving parts the codec
// does not model. The destination must not already exist.
func CopyFile(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("destination already exists: %s", dst)
	} else if !os.IsNotExist(err) {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// Merge appends the bodies of the source documents, in order, into a new
// document written to dst. With pageBreaks set, a page break separates
// consecutive sources.
func Merge(dst string, sources []string, pageBreaks bool) error {
	if len(sources) == 0 {
		return fmt.Errorf("no source documents to merge")
	}
	merged := docx.New()
	for i, src := range sources {
		doc, err := docx.Open(src)
		if err != nil {
			return fmt.Errorf("merge source %s: %w", src, err)
		}
		if i > 0 && pageBreaks {
			merged.AddPageBreak()
		}
		for _, def := range styleDefs(doc) {
			if !merged.HasStyle(def.Name) {
				merged.DefineStyle(def)
			}
		}
		merged.Body = append(merged.Body, doc.Body...)
	}
	return merged.Save(dst)
}

func styleDefs(doc *docx.Document) []*docx.StyleDef {
	names := doc.StyleNames()
	defs := make([]*docx.StyleDef, 0, len(names))
	for _, n := range names {
		if def := doc.LookupStyle(n); def != nil {
			defs = append(defs, def)
		}
	}
	return defs
}
