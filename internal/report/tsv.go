package report

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/kuro68k/kibom/internal/model"
)

// TSVWriter writes the tab separated layout: a title block, then per group
// a heading line followed by one line per record.
type TSVWriter struct{}

func (TSVWriter) Ext() string { return "tsv" }

func (TSVWriter) Write(w io.Writer, doc Document) error {
	bw := bufio.NewWriter(w)
	for _, r := range headerRows(doc.Header) {
		writeTSVLine(bw, r[0], r[1])
	}
	bw.WriteString("\n") //nolint:errcheck

	writeTSVGroups(bw, doc, doc.Groups)
	if len(doc.NoFit) > 0 {
		writeTSVLine(bw, "Not fitted")
		bw.WriteString("\n") //nolint:errcheck
		writeTSVGroups(bw, doc, doc.NoFit)
	}

	if err := bw.Flush(); err != nil {
		return eris.Wrap(err, "report: write tsv")
	}
	return nil
}

func writeTSVGroups(bw *bufio.Writer, doc Document, groups []model.DesignatorGroup) {
	for _, g := range groups {
		values := strconv.Itoa(g.Len())
		if def, ok := doc.Defaults.Lookup(g.Designator); ok {
			fields := []string{def.LongName, values + " values"}
			if def.HasDefault() {
				fields = append(fields, def.DefaultType+" unless otherwise stated")
			}
			writeTSVLine(bw, fields...)
		} else {
			writeTSVLine(bw, g.Designator, values)
		}

		for _, c := range g.Components {
			writeTSVLine(bw,
				strconv.Itoa(c.Count),
				c.RefText(),
				c.Value,
				c.PartNo,
				c.FootprintDisplay(),
				c.Precision,
			)
		}
		bw.WriteString("\n") //nolint:errcheck
	}
}

// writeTSVLine ignores write errors; bufio.Writer keeps the first one and
// returns it from Flush.
func writeTSVLine(bw *bufio.Writer, fields ...string) {
	bw.WriteString(strings.Join(fields, "\t")) //nolint:errcheck
	bw.WriteString("\n")                       //nolint:errcheck
}
