package docx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"
)

// Open reads a .docx package from disk. It returns ErrNotWordDocument
// (wrapped) when the file exists but is not a readable Word package, so
// callers can distinguish "bad document" from "bad path".
func Open(name string) (*Document, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotWordDocument)
		}
		return nil, err
	}
	defer zr.Close()
	return readPackage(&zr.Reader, name)
}

func readPackage(zr *zip.Reader, name string) (*Document, error) {
	parts := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		parts[path.Clean(f.Name)] = f
	}

	main, ok := parts["word/document.xml"]
	if !ok {
		return nil, fmt.Errorf("%s: missing main document part: %w", name, ErrNotWordDocument)
	}

	doc := &Document{styles: defaultStyles()}

	if f, ok := parts["word/styles.xml"]; ok {
		if err := withPart(f, func(r io.Reader) error { return doc.readStyles(r) }); err != nil {
			return nil, fmt.Errorf("%s: styles part: %w", name, err)
		}
	}
	if f, ok := parts["docProps/core.xml"]; ok {
		if err := withPart(f, func(r io.Reader) error { return doc.readCoreProps(r) }); err != nil {
			return nil, fmt.Errorf("%s: core properties: %w", name, err)
		}
	}

	rels := map[string]string{} // rId -> target
	if f, ok := parts["word/_rels/document.xml.rels"]; ok {
		if err := withPart(f, func(r io.Reader) error {
			var err error
			rels, err = readRelationships(r)
			return err
		}); err != nil {
			return nil, fmt.Errorf("%s: document relationships: %w", name, err)
		}
	}

	if err := withPart(main, func(r io.Reader) error { return doc.readBody(r) }); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", name, ErrNotWordDocument, err)
	}

	// Carry media parts referenced by inline drawings so they survive a save.
	doc.loadMedia(parts, rels)

	return doc, nil
}

func withPart(f *zip.File, fn func(io.Reader) error) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return fn(rc)
}

// readBody walks word/document.xml and rebuilds the block list.
func (d *Document) readBody(r io.Reader) error {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "p":
			p, err := d.readParagraph(dec)
			if err != nil {
				return err
			}
			d.Body = append(d.Body, p)
		case "tbl":
			t, err := d.readTable(dec)
			if err != nil {
				return err
			}
			d.Body = append(d.Body, t)
		}
	}
}

// readParagraph consumes tokens until the matching </w:p>.
func (d *Document) readParagraph(dec *xml.Decoder) (*Paragraph, error) {
	p := &Paragraph{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "pStyle":
				if id := attr(el, "val"); id != "" {
					if def := d.styles.byID[id]; def != nil {
						p.Style = def.Name
					} else {
						p.Style = id
					}
				}
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			case "r":
				run, err := d.readRun(dec)
				if err != nil {
					return nil, err
				}
				p.Runs = append(p.Runs, run)
			}
		case xml.EndElement:
			if el.Name.Local == "p" {
				return p, nil
			}
		}
	}
}

// readRun consumes tokens until the matching </w:r>.
func (d *Document) readRun(dec *xml.Decoder) (*Run, error) {
	run := &Run{}
	var text strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "b":
				run.Bold = attr(el, "val") != "false" && attr(el, "val") != "0"
			case "i":
				run.Italic = attr(el, "val") != "false" && attr(el, "val") != "0"
			case "u":
				run.Underline = attr(el, "val") != "none"
			case "vertAlign":
				switch attr(el, "val") {
				case "superscript":
					run.Superscript = true
				case "subscript":
					run.Subscript = true
				}
			case "color":
				run.Color = attr(el, "val")
			case "sz":
				if hp, err := strconv.Atoi(attr(el, "val")); err == nil {
					run.SizePt = hp / 2
				}
			case "rFonts":
				run.Font = attr(el, "ascii")
			case "br":
				if attr(el, "type") == "page" {
					run.PageBreak = true
				}
			case "t":
				inText = true
				continue
			case "drawing":
				pic, err := readDrawing(dec)
				if err != nil {
					return nil, err
				}
				run.picture = pic
				continue
			}
			// Leaf property elements may be self-closing or not; Skip is a
			// no-op for the former path since the decoder already consumed
			// the end tag for self-closed elements.
			if el.Name.Local != "t" && el.Name.Local != "rPr" {
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.CharData:
			if inText {
				text.Write(el)
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "r":
				run.Text = text.String()
				return run, nil
			}
		}
	}
}

// readDrawing extracts the relationship ID and extent from an inline
// drawing, consuming through </w:drawing>.
func readDrawing(dec *xml.Decoder) (*picture, error) {
	pic := &picture{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "extent":
				pic.widthEMU, _ = strconv.ParseInt(attr(el, "cx"), 10, 64)
				pic.heightEMU, _ = strconv.ParseInt(attr(el, "cy"), 10, 64)
			case "blip":
				pic.relID = attr(el, "embed")
			}
		case xml.EndElement:
			if el.Name.Local == "drawing" {
				if pic.relID == "" {
					return nil, nil
				}
				return pic, nil
			}
		}
	}
}

// readTable consumes tokens until the matching </w:tbl>.
func (d *Document) readTable(dec *xml.Decoder) (*Table, error) {
	t := &Table{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "tblStyle":
				if id := attr(el, "val"); id != "" {
					if def := d.styles.byID[id]; def != nil {
						t.Style = def.Name
					} else {
						t.Style = id
					}
				}
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			case "tr":
				row, err := d.readRow(dec)
				if err != nil {
					return nil, err
				}
				t.Rows = append(t.Rows, row)
			}
		case xml.EndElement:
			if el.Name.Local == "tbl" {
				return t, nil
			}
		}
	}
}

func (d *Document) readRow(dec *xml.Decoder) (*Row, error) {
	row := &Row{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "tc" {
				cell, err := d.readCell(dec)
				if err != nil {
					return nil, err
				}
				row.Cells = append(row.Cells, cell)
			}
		case xml.EndElement:
			if el.Name.Local == "tr" {
				return row, nil
			}
		}
	}
}

func (d *Document) readCell(dec *xml.Decoder) (*Cell, error) {
	cell := &Cell{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "shd":
				if fill := attr(el, "fill"); fill != "" && fill != "auto" {
					cell.Shading = fill
				}
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			case "top": // one side is enough to recover the uniform value
				if v := attr(el, "val"); v != "" {
					cell.BorderVal = v
				}
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			case "p":
				p, err := d.readParagraph(dec)
				if err != nil {
					return nil, err
				}
				cell.Paragraphs = append(cell.Paragraphs, p)
			}
		case xml.EndElement:
			if el.Name.Local == "tc" {
				return cell, nil
			}
		}
	}
}

// readStyles parses word/styles.xml into the style sheet, replacing the
// default seed so foreign sheets are reflected faithfully.
func (d *Document) readStyles(r io.Reader) error {
	sheet := newStyleSheet()
	dec := xml.NewDecoder(r)

	var cur *StyleDef
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "style":
				cur = &StyleDef{
					ID:   attr(el, "styleId"),
					Type: StyleType(attr(el, "type")),
				}
			case "name":
				if cur != nil {
					cur.Name = attr(el, "val")
				}
			case "basedOn":
				if cur != nil {
					cur.BasedOn = attr(el, "val")
				}
			case "b":
				if cur != nil {
					v := attr(el, "val") != "false" && attr(el, "val") != "0"
					cur.Bold = &v
				}
			case "i":
				if cur != nil {
					v := attr(el, "val") != "false" && attr(el, "val") != "0"
					cur.Italic = &v
				}
			case "sz":
				if cur != nil {
					if hp, err := strconv.Atoi(attr(el, "val")); err == nil {
						cur.SizePt = hp / 2
					}
				}
			case "color":
				if cur != nil {
					cur.Color = attr(el, "val")
				}
			case "rFonts":
				if cur != nil {
					cur.Font = attr(el, "ascii")
				}
			}
		case xml.EndElement:
			if el.Name.Local == "style" && cur != nil {
				if cur.Name == "" {
					cur.Name = cur.ID
				}
				// basedOn carries a style ID on the wire; display names are
				// resolved after the whole sheet is read.
				sheet.add(cur)
				cur = nil
			}
		}
	}

	for _, id := range sheet.order {
		def := sheet.byID[id]
		if base, ok := sheet.byID[def.BasedOn]; ok {
			def.BasedOn = base.Name
		}
	}
	if len(sheet.order) > 0 {
		d.styles = sheet
	}
	return nil
}

// readCoreProps parses docProps/core.xml.
func (d *Document) readCoreProps(r io.Reader) error {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		var target *string
		switch se.Name.Local {
		case "title":
			target = &d.Properties.Title
		case "subject":
			target = &d.Properties.Subject
		case "creator":
			target = &d.Properties.Author
		case "keywords":
			target = &d.Properties.Keywords
		case "lastModifiedBy":
			target = &d.Properties.LastModifiedBy
		case "revision", "created", "modified":
			// handled below
		default:
			continue
		}

		var v struct {
			Value string `xml:",chardata"`
		}
		if err := dec.DecodeElement(&v, &se); err != nil {
			return err
		}
		text := strings.TrimSpace(v.Value)
		switch {
		case target != nil:
			*target = text
		case se.Name.Local == "revision":
			if n, err := strconv.Atoi(text); err == nil {
				d.Properties.Revision = n
			}
		case se.Name.Local == "created":
			if ts, err := time.Parse(time.RFC3339, text); err == nil {
				d.Properties.Created = ts
			}
		case se.Name.Local == "modified":
			if ts, err := time.Parse(time.RFC3339, text); err == nil {
				d.Properties.Modified = ts
			}
		}
	}
}

// readRelationships parses a .rels part into an rId -> target map.
func readRelationships(r io.Reader) (map[string]string, error) {
	rels := map[string]string{}
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return rels, nil
		}
		if err != nil {
			return nil, err
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			id, target := attr(se, "Id"), attr(se, "Target")
			if id != "" && target != "" {
				rels[id] = target
			}
		}
	}
}

// loadMedia pulls referenced image payloads out of the archive so they can
// be written back on save.
func (d *Document) loadMedia(parts map[string]*zip.File, rels map[string]string) {
	refs := map[string]bool{}
	for _, b := range d.Body {
		p, ok := b.(*Paragraph)
		if !ok {
			continue
		}
		for _, r := range p.Runs {
			if r.picture != nil {
				refs[r.picture.relID] = true
			}
		}
	}
	for id := range refs {
		target, ok := rels[id]
		if !ok {
			continue
		}
		f, ok := parts[path.Clean("word/"+target)]
		if !ok {
			continue
		}
		_ = withPart(f, func(r io.Reader) error {
			data, err := io.ReadAll(r)
			if err != nil {
				return err
			}
			d.media = append(d.media, mediaPart{
				name:        path.Base(target),
				contentType: contentTypeForImage(path.Ext(target)),
				data:        data,
			})
			// Keep the run pointed at its (possibly renumbered) part.
			d.rebind(id, path.Base(target))
			return nil
		})
	}
}

// rebind rewrites a picture relID to the canonical ID derived from the part
// name, so save-time relationship emission stays consistent.
func (d *Document) rebind(oldID, partName string) {
	newID := "rIdMedia" + strings.TrimSuffix(partName, path.Ext(partName))
	for _, b := range d.Body {
		p, ok := b.(*Paragraph)
		if !ok {
			continue
		}
		for _, r := range p.Runs {
			if r.picture != nil && r.picture.relID == oldID {
				r.picture.relID = newID
			}
		}
	}
}

// attr returns the value of the named attribute, matching by local name.
func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
