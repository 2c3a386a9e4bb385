package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"

	relTypeDocument  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeCoreProps = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relTypeStyles    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relTypeImage     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

// Save writes the package to disk atomically: the archive is assembled in a
// temporary file in the target directory and renamed over the destination,
// so a failed save never leaves a truncated document behind.
func (d *Document) Save(name string) error {
	now := time.Now().UTC().Truncate(time.Second)
	if d.Properties.Created.IsZero() {
		d.Properties.Created = now
	}
	d.Properties.Modified = now
	if d.Properties.Revision == 0 {
		d.Properties.Revision = 1
	}

	dir := filepath.Dir(name)
	tmp, err := os.CreateTemp(dir, ".docx-save-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if err := d.write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, name); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (d *Document) write(w io.Writer) error {
	zw := zip.NewWriter(w)

	media := append([]mediaPart(nil), d.media...)
	sort.Slice(media, func(i, j int) bool { return media[i].name < media[j].name })

	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", d.contentTypesXML(media)},
		{"_rels/.rels", packageRelsXML()},
		{"word/document.xml", d.documentXML()},
		{"word/_rels/document.xml.rels", documentRelsXML(media)},
		{"word/styles.xml", d.stylesXML()},
		{"docProps/core.xml", d.corePropsXML()},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(f, p.body); err != nil {
			return err
		}
	}
	for _, m := range media {
		f, err := zw.Create("word/media/" + m.name)
		if err != nil {
			return err
		}
		if _, err := f.Write(m.data); err != nil {
			return err
		}
	}
	return zw.Close()
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

func (d *Document) contentTypesXML(media []mediaPart) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	sb.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	sb.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)

	seen := map[string]bool{}
	for _, m := range media {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(m.name)), ".")
		if ext == "" || seen[ext] {
			continue
		}
		seen[ext] = true
		fmt.Fprintf(&sb, `<Default Extension="%s" ContentType="%s"/>`, ext, m.contentType)
	}

	sb.WriteString(`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`)
	sb.WriteString(`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>`)
	sb.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	sb.WriteString(`</Types>`)
	return sb.String()
}

func packageRelsXML() string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	fmt.Fprintf(&sb, `<Relationship Id="rId1" Type="%s" Target="word/document.xml"/>`, relTypeDocument)
	fmt.Fprintf(&sb, `<Relationship Id="rId2" Type="%s" Target="docProps/core.xml"/>`, relTypeCoreProps)
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

func documentRelsXML(media []mediaPart) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	fmt.Fprintf(&sb, `<Relationship Id="rId1" Type="%s" Target="styles.xml"/>`, relTypeStyles)
	for _, m := range media {
		fmt.Fprintf(&sb, `<Relationship Id="%s" Type="%s" Target="media/%s"/>`,
			mediaRelID(m.name), relTypeImage, m.name)
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

// mediaRelID derives the stable relationship ID for a media part name.
func mediaRelID(name string) string {
	return "rIdMedia" + strings.TrimSuffix(name, filepath.Ext(name))
}

func (d *Document) documentXML() string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	fmt.Fprintf(&sb, `<w:document xmlns:w="%s" xmlns:r="%s" xmlns:wp="%s" xmlns:a="%s" xmlns:pic="%s">`,
		nsW, nsR, nsWP, nsA, nsPic)
	sb.WriteString(`<w:body>`)
	for _, b := range d.Body {
		switch el := b.(type) {
		case *Paragraph:
			d.writeParagraph(&sb, el)
		case *Table:
			d.writeTable(&sb, el)
		}
	}
	sb.WriteString(`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/>` +
		`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720" w:gutter="0"/>` +
		`</w:sectPr>`)
	sb.WriteString(`</w:body></w:document>`)
	return sb.String()
}

func (d *Document) writeParagraph(sb *strings.Builder, p *Paragraph) {
	sb.WriteString(`<w:p>`)
	if p.Style != "" && !strings.EqualFold(p.Style, "Normal") {
		fmt.Fprintf(sb, `<w:pPr><w:pStyle w:val="%s"/></w:pPr>`, escape(d.styleIDFor(p.Style)))
	}
	for _, r := range p.Runs {
		writeRun(sb, r)
	}
	sb.WriteString(`</w:p>`)
}

// styleIDFor resolves a display name to the sheet's ID, falling back to the
// derived ID when the style is not defined.
func (d *Document) styleIDFor(name string) string {
	if def := d.styles.byName(name); def != nil {
		return def.ID
	}
	return StyleID(name)
}

func writeRun(sb *strings.Builder, r *Run) {
	sb.WriteString(`<w:r>`)
	writeRunProps(sb, r)
	switch {
	case r.PageBreak:
		sb.WriteString(`<w:br w:type="page"/>`)
	case r.picture != nil:
		writeDrawing(sb, r.picture)
	default:
		fmt.Fprintf(sb, `<w:t xml:space="preserve">%s</w:t>`, escape(r.Text))
	}
	sb.WriteString(`</w:r>`)
}

func writeRunProps(sb *strings.Builder, r *Run) {
	var props strings.Builder
	if r.Font != "" {
		fmt.Fprintf(&props, `<w:rFonts w:ascii="%s" w:hAnsi="%s"/>`, escape(r.Font), escape(r.Font))
	}
	if r.Bold {
		props.WriteString(`<w:b/>`)
	}
	if r.Italic {
		props.WriteString(`<w:i/>`)
	}
	if r.Underline {
		props.WriteString(`<w:u w:val="single"/>`)
	}
	if r.Color != "" {
		fmt.Fprintf(&props, `<w:color w:val="%s"/>`, escape(r.Color))
	}
	if r.SizePt > 0 {
		fmt.Fprintf(&props, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, r.SizePt*2, r.SizePt*2)
	}
	if r.Superscript {
		props.WriteString(`<w:vertAlign w:val="superscript"/>`)
	} else if r.Subscript {
		props.WriteString(`<w:vertAlign w:val="subscript"/>`)
	}
	if props.Len() > 0 {
		sb.WriteString(`<w:rPr>`)
		sb.WriteString(props.String())
		sb.WriteString(`</w:rPr>`)
	}
}

func writeDrawing(sb *strings.Builder, pic *picture) {
	name := strings.TrimPrefix(pic.relID, "rIdMedia")
	fmt.Fprintf(sb, `<w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%d" cy="%d"/>`+
		`<wp:docPr id="1" name="%s"/>`+
		`<a:graphic><a:graphicData uri="%s">`+
		`<pic:pic>`+
		`<pic:nvPicPr><pic:cNvPr id="1" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing>`,
		pic.widthEMU, pic.heightEMU, escape(name), nsPic, escape(name), escape(pic.relID),
		pic.widthEMU, pic.heightEMU)
}

func (d *Document) writeTable(sb *strings.Builder, t *Table) {
	sb.WriteString(`<w:tbl>`)
	sb.WriteString(`<w:tblPr>`)
	if t.Style != "" {
		fmt.Fprintf(sb, `<w:tblStyle w:val="%s"/>`, escape(d.styleIDFor(t.Style)))
	}
	sb.WriteString(`<w:tblW w:w="0" w:type="auto"/>`)
	sb.WriteString(`</w:tblPr>`)

	cols := t.Columns()
	sb.WriteString(`<w:tblGrid>`)
	for i := 0; i < cols; i++ {
		sb.WriteString(`<w:gridCol/>`)
	}
	sb.WriteString(`</w:tblGrid>`)

	for _, row := range t.Rows {
		sb.WriteString(`<w:tr>`)
		for _, cell := range row.Cells {
			d.writeCell(sb, cell)
		}
		sb.WriteString(`</w:tr>`)
	}
	sb.WriteString(`</w:tbl>`)
}

func (d *Document) writeCell(sb *strings.Builder, c *Cell) {
	sb.WriteString(`<w:tc>`)
	if c.Shading != "" || c.BorderVal != "" {
		sb.WriteString(`<w:tcPr>`)
		if c.BorderVal != "" {
			sb.WriteString(`<w:tcBorders>`)
			for _, side := range [...]string{"top", "left", "bottom", "right"} {
				fmt.Fprintf(sb, `<w:%s w:val="%s" w:sz="4" w:space="0" w:color="000000"/>`, side, escape(c.BorderVal))
			}
			sb.WriteString(`</w:tcBorders>`)
		}
		if c.Shading != "" {
			fmt.Fprintf(sb, `<w:shd w:val="clear" w:color="auto" w:fill="%s"/>`, escape(c.Shading))
		}
		sb.WriteString(`</w:tcPr>`)
	}
	// A cell must contain at least one paragraph.
	if len(c.Paragraphs) == 0 {
		sb.WriteString(`<w:p/>`)
	}
	for _, p := range c.Paragraphs {
		d.writeParagraph(sb, p)
	}
	sb.WriteString(`</w:tc>`)
}

func (d *Document) stylesXML() string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	fmt.Fprintf(&sb, `<w:styles xmlns:w="%s">`, nsW)
	for _, id := range d.styles.order {
		def := d.styles.byID[id]
		styleType := def.Type
		if styleType == "" {
			styleType = StyleParagraph
		}
		fmt.Fprintf(&sb, `<w:style w:type="%s" w:styleId="%s">`, styleType, escape(def.ID))
		fmt.Fprintf(&sb, `<w:name w:val="%s"/>`, escape(def.Name))
		if def.BasedOn != "" {
			fmt.Fprintf(&sb, `<w:basedOn w:val="%s"/>`, escape(StyleID(def.BasedOn)))
		}
		writeStyleProps(&sb, def)
		if styleType == StyleTable {
			// Single-line borders so styled tables render a visible grid.
			sb.WriteString(`<w:tblPr><w:tblBorders>`)
			for _, side := range [...]string{"top", "left", "bottom", "right", "insideH", "insideV"} {
				fmt.Fprintf(&sb, `<w:%s w:val="single" w:sz="4" w:space="0" w:color="000000"/>`, side)
			}
			sb.WriteString(`</w:tblBorders></w:tblPr>`)
		}
		sb.WriteString(`</w:style>`)
	}
	sb.WriteString(`</w:styles>`)
	return sb.String()
}

func writeStyleProps(sb *strings.Builder, def *StyleDef) {
	var props strings.Builder
	if def.Font != "" {
		fmt.Fprintf(&props, `<w:rFonts w:ascii="%s" w:hAnsi="%s"/>`, escape(def.Font), escape(def.Font))
	}
	if def.Bold != nil {
		if *def.Bold {
			props.WriteString(`<w:b/>`)
		} else {
			props.WriteString(`<w:b w:val="false"/>`)
		}
	}
	if def.Italic != nil {
		if *def.Italic {
			props.WriteString(`<w:i/>`)
		} else {
			props.WriteString(`<w:i w:val="false"/>`)
		}
	}
	if def.Color != "" {
		fmt.Fprintf(&props, `<w:color w:val="%s"/>`, escape(def.Color))
	}
	if def.SizePt > 0 {
		fmt.Fprintf(&props, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, def.SizePt*2, def.SizePt*2)
	}
	if props.Len() > 0 {
		sb.WriteString(`<w:rPr>`)
		sb.WriteString(props.String())
		sb.WriteString(`</w:rPr>`)
	}
}

func (d *Document) corePropsXML() string {
	p := d.Properties
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<cp:coreProperties` +
		` xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"` +
		` xmlns:dc="http://purl.org/dc/elements/1.1/"` +
		` xmlns:dcterms="http://purl.org/dc/terms/"` +
		` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`)
	fmt.Fprintf(&sb, `<dc:title>%s</dc:title>`, escape(p.Title))
	fmt.Fprintf(&sb, `<dc:subject>%s</dc:subject>`, escape(p.Subject))
	fmt.Fprintf(&sb, `<dc:creator>%s</dc:creator>`, escape(p.Author))
	fmt.Fprintf(&sb, `<cp:keywords>%s</cp:keywords>`, escape(p.Keywords))
	fmt.Fprintf(&sb, `<cp:lastModifiedBy>%s</cp:lastModifiedBy>`, escape(p.LastModifiedBy))
	fmt.Fprintf(&sb, `<cp:revision>%s</cp:revision>`, strconv.Itoa(p.Revision))
	fmt.Fprintf(&sb, `<dcterms:created xsi:type="dcterms:W3CDTF">%s</dcterms:created>`, p.Created.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, `<dcterms:modified xsi:type="dcterms:W3CDTF">%s</dcterms:modified>`, p.Modified.UTC().Format(time.RFC3339))
	sb.WriteString(`</cp:coreProperties>`)
	return sb.String()
}

// escape XML-escapes a value for element or attribute context.
func escape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
