package docx

import (
	"fmt"
	"strings"
	"time"
)

// StyleType distinguishes the style families the codec models.
type StyleType string

const (
	StyleParagraph StyleType = "paragraph"
	StyleCharacter StyleType = "character"
	StyleTable     StyleType = "table"
)

// StyleDef describes one style in the styles part. Formatting fields are
// pointers so "unset" and "explicitly off" stay distinct.
type StyleDef struct {
	ID      string
	Name    string
	Type    StyleType
	BasedOn string // display name of the base style, "" for none

	Bold   *bool
	Italic *bool
	SizePt int
	Font   string
	Color  string // hex RRGGBB
}

// styleSheet keeps definition order stable so saved documents diff cleanly.
type styleSheet struct {
	order []string // style IDs
	byID  map[string]*StyleDef
}

func newStyleSheet() *styleSheet {
	return &styleSheet{byID: make(map[string]*StyleDef)}
}

func (s *styleSheet) add(def *StyleDef) {
	if def.ID == "" {
		def.ID = StyleID(def.Name)
	}
	if _, exists := s.byID[def.ID]; !exists {
		s.order = append(s.order, def.ID)
	}
	s.byID[def.ID] = def
}

func (s *styleSheet) byName(name string) *StyleDef {
	id := StyleID(name)
	if def, ok := s.byID[id]; ok {
		return def
	}
	// Fall back to a case-insensitive display-name scan for foreign
	// documents whose IDs do not follow the usual derivation.
	for _, def := range s.byID {
		if strings.EqualFold(def.Name, name) {
			return def
		}
	}
	return nil
}

func (s *styleSheet) ensureHeading(level int) {
	name := headingStyleName(level)
	if s.byName(name) != nil {
		return
	}
	b := true
	s.add(&StyleDef{
		Name:    name,
		Type:    StyleParagraph,
		BasedOn: "Normal",
		Bold:    &b,
		SizePt:  headingSizePt(level),
	})
}

// StyleID derives a WordprocessingML style ID from a display name by
// stripping everything but letters and digits ("Heading 1" -> "Heading1").
func StyleID(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func headingStyleName(level int) string {
	return fmt.Sprintf("Heading %d", level)
}

// headingSizePt mirrors the conventional Word ladder for heading sizes.
func headingSizePt(level int) int {
	switch level {
	case 1:
		return 16
	case 2:
		return 14
	case 3:
		return 13
	default:
		return 12
	}
}

// defaultStyles seeds the sheet every new document starts from.
func defaultStyles() *styleSheet {
	s := newStyleSheet()
	s.add(&StyleDef{Name: "Normal", Type: StyleParagraph})
	for lvl := 1; lvl <= 9; lvl++ {
		s.ensureHeading(lvl)
	}
	s.add(&StyleDef{Name: "Table Grid", Type: StyleTable, BasedOn: "Normal"})
	return s
}

// HasStyle reports whether a style with the given display name (or derived
// ID) exists in the document.
func (d *Document) HasStyle(name string) bool {
	return d.styles.byName(name) != nil
}

// StyleNames returns the display names of all defined styles in definition
// order.
func (d *Document) StyleNames() []string {
	out := make([]string, 0, len(d.styles.order))
	for _, id := range d.styles.order {
		out = append(out, d.styles.byID[id].Name)
	}
	return out
}

// LookupStyle returns the definition for a display name, or nil.
func (d *Document) LookupStyle(name string) *StyleDef {
	return d.styles.byName(name)
}

// DefineStyle adds or replaces a style definition. The ID is derived from
// the name when unset.
func (d *Document) DefineStyle(def *StyleDef) {
	d.styles.add(def)
}

// CoreProperties are the document metadata stored in docProps/core.xml.
type CoreProperties struct {
	Title          string
	Subject        string
	Author         string
	Keywords       string
	LastModifiedBy string
	Revision       int
	Created        time.Time
	Modified       time.Time
}
