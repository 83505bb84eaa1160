// Package report renders a consolidated BOM into the output formats the
// kibom command and server support.
package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/kuro68k/kibom/internal/bom"
	"github.com/kuro68k/kibom/internal/lookup"
	"github.com/kuro68k/kibom/internal/model"
)

// Writer renders a Document in one format.
type Writer interface {
	Write(w io.Writer, doc Document) error
	// Ext is the file extension, without the dot, used for generated files.
	Ext() string
}

// Document is everything a writer needs to render one BOM.
type Document struct {
	Header model.Header            `json:"header"`
	Groups []model.DesignatorGroup `json:"groups"`
	NoFit  []model.DesignatorGroup `json:"no_fit,omitempty"`
	// Defaults supplies group headings. It may be nil.
	Defaults *lookup.Defaults `json:"-"`
}

// NewDocument builds a renderable document from a consolidation result.
// NoPart records are removed here so writers never see them.
func NewDocument(header model.Header, res bom.Result, defaults *lookup.Defaults) Document {
	return Document{
		Header:   header,
		Groups:   bom.Visible(res.Groups),
		NoFit:    bom.Visible(res.NoFit),
		Defaults: defaults,
	}
}

// Columns is the header row of the tabular formats.
var Columns = []string{"No.", "Qty.", "Reference", "Value", "Type", "Manufacturer Part No.", "Notes"}

// Section is one designator group projected onto Columns.
type Section struct {
	Designator string
	// Title is the long name of the designator, or the designator itself.
	Title string
	// Subtitle names the default part type, e.g. "All 0603 1% unless otherwise stated".
	Subtitle string
	Rows     [][]string
}

// Sections projects groups onto table rows. Item numbers run on across
// sections starting from 1.
func Sections(groups []model.DesignatorGroup, defaults *lookup.Defaults) []Section {
	out := make([]Section, 0, len(groups))
	item := 1
	for _, g := range groups {
		s := Section{Designator: g.Designator, Title: g.Designator}
		if def, ok := defaults.Lookup(g.Designator); ok {
			s.Title = def.LongName
			if def.HasDefault() {
				s.Subtitle = "All " + def.DefaultType + " unless otherwise stated"
			}
		}
		for _, c := range g.Components {
			s.Rows = append(s.Rows, []string{
				strconv.Itoa(item),
				strconv.Itoa(c.Count),
				c.RefText(),
				c.Value,
				TypeText(c),
				c.PartNo,
				c.Note,
			})
			item++
		}
		out = append(out, s)
	}
	return out
}

// TypeText is the Type column: footprint, code and precision.
func TypeText(c model.Component) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.FootprintDisplay(), c.Code, c.Precision} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// headerRows lists the title block fields in display order. Company is
// omitted when blank.
func headerRows(h model.Header) [][2]string {
	rows := [][2]string{
		{"Title", h.Title},
		{"Date", h.Date},
		{"Source", h.Source},
		{"Revision", h.Revision},
	}
	if h.Company != "" {
		rows = append(rows, [2]string{"Company", h.Company})
	}
	return rows
}

var writers = map[string]func() Writer{
	"tsv":  func() Writer { return TSVWriter{} },
	"md":   func() Writer { return MarkdownWriter{} },
	"xlsx": func() Writer { return XLSXWriter{} },
	"pdf":  func() Writer { return PDFWriter{} },
	"json": func() Writer { return JSONWriter{Indent: true} },
	"text": func() Writer { return TextWriter{} },
}

// Formats lists the names accepted by ForFormat.
func Formats() []string {
	return []string{"tsv", "md", "xlsx", "pdf", "json", "text"}
}

// ForFormat returns the writer registered under name.
func ForFormat(name string) (Writer, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "markdown" {
		key = "md"
	}
	fn, ok := writers[key]
	if !ok {
		return nil, eris.Errorf("report: unknown format %q", name)
	}
	return fn(), nil
}
