// Package kicad decodes KiCad netlist/BOM XML exports into components.
package kicad

import (
	"context"
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/kuro68k/kibom/internal/model"
)

// ErrNoComponents is returned when the export has no components element.
var ErrNoComponents = eris.New("kicad: export has no components element")

// Document is a decoded export.
type Document struct {
	Header     model.Header
	Components []model.Component
	// Skipped holds components that could not be decoded.
	Skipped []model.Warning
}

type xmlDesign struct {
	Source string     `xml:"source"`
	Date   string     `xml:"date"`
	Sheets []xmlSheet `xml:"sheet"`
}

type xmlSheet struct {
	TitleBlock xmlTitleBlock `xml:"title_block"`
}

type xmlTitleBlock struct {
	Title   string `xml:"title"`
	Company string `xml:"company"`
	Rev     string `xml:"rev"`
	Date    string `xml:"date"`
	Source  string `xml:"source"`
}

type xmlComp struct {
	Ref        string        `xml:"ref,attr"`
	Value      string        `xml:"value"`
	Footprint  string        `xml:"footprint"`
	Fields     []xmlField    `xml:"fields>field"`
	Properties []xmlProperty `xml:"property"`
}

type xmlField struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// xmlProperty is the KiCad 6+ form, e.g. <property name="dnp"/>.
type xmlProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// LoadFile opens path and decodes it with Load.
func LoadFile(ctx context.Context, path string) (*Document, error) {
	f, err := os.Open(path) //nolint:gosec // user-supplied export path
	if err != nil {
		return nil, eris.Wrapf(err, "kicad: open %s", path)
	}
	defer f.Close() //nolint:errcheck
	return Load(ctx, f)
}

// Load decodes an export in a single pass. Components missing their ref
// attribute are skipped and reported in Document.Skipped.
func Load(ctx context.Context, r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "kicad: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	doc := &Document{}
	sawComponents := false
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "kicad: context cancelled")
		}

		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "kicad: read token")
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch se.Name.Local {
		case "design":
			var d xmlDesign
			if err := decoder.DecodeElement(&d, &se); err != nil {
				return nil, eris.Wrap(err, "kicad: decode design")
			}
			doc.Header = headerFrom(d)
		case "components":
			sawComponents = true
		case "comp":
			var xc xmlComp
			if err := decoder.DecodeElement(&xc, &se); err != nil {
				return nil, eris.Wrap(err, "kicad: decode comp")
			}
			c, ok := componentFrom(xc)
			if !ok {
				doc.Skipped = append(doc.Skipped, model.Warning{
					Kind: model.WarnMalformedComp,
					Err:  eris.Errorf("comp element has no ref attribute (value %q)", strings.TrimSpace(xc.Value)),
				})
				continue
			}
			zap.L().Debug("kicad: component",
				zap.String("ref", c.Reference),
				zap.String("value", c.Value),
				zap.String("footprint", c.Footprint),
			)
			doc.Components = append(doc.Components, c)
		}
	}

	if !sawComponents {
		return nil, ErrNoComponents
	}
	return doc, nil
}

func headerFrom(d xmlDesign) model.Header {
	h := model.Header{
		Date:   strings.TrimSpace(d.Date),
		Source: strings.TrimSpace(d.Source),
	}
	if len(d.Sheets) == 0 {
		return h
	}
	tb := d.Sheets[0].TitleBlock
	h.Title = strings.TrimSpace(tb.Title)
	h.Company = strings.TrimSpace(tb.Company)
	h.Revision = strings.TrimSpace(tb.Rev)
	if s := strings.TrimSpace(tb.Source); s != "" {
		h.Source = s
	}
	return h
}

func componentFrom(xc xmlComp) (model.Component, bool) {
	ref := strings.TrimSpace(xc.Ref)
	if ref == "" {
		return model.Component{}, false
	}
	c := model.Component{
		Reference: ref,
		Value:     strings.TrimSpace(xc.Value),
		Footprint: strings.TrimSpace(xc.Footprint),
		Count:     1,
	}
	for _, f := range xc.Fields {
		model.ParseFieldKind(f.Name).Apply(&c, strings.TrimSpace(f.Value))
	}
	for _, p := range xc.Properties {
		if k := model.ParseFieldKind(p.Name); k == model.FieldNoFit {
			k.Apply(&c, p.Value)
		}
	}
	return c, true
}
