package report

import (
	"bufio"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
)

// TextWriter prints a plain listing of each group, suitable for a terminal.
type TextWriter struct{}

func (TextWriter) Ext() string { return "txt" }

func (TextWriter) Write(w io.Writer, doc Document) error {
	bw := bufio.NewWriter(w)
	for _, g := range doc.Groups {
		bw.WriteString("Group: " + g.Designator + " (" + strconv.Itoa(g.Len()) + ")\n") //nolint:errcheck
		if def, ok := doc.Defaults.Lookup(g.Designator); ok {
			bw.WriteString("(" + def.LongName) //nolint:errcheck
			if def.HasDefault() {
				bw.WriteString(", " + def.DefaultType + " unless otherwise stated") //nolint:errcheck
			}
			bw.WriteString(")\n") //nolint:errcheck
		}
		for _, c := range g.Components {
			writeTSVLine(bw, "", c.RefText(), c.Value, c.FootprintNormalized)
		}
		bw.WriteString("\n") //nolint:errcheck
	}
	for _, g := range doc.NoFit {
		for _, c := range g.Components {
			writeTSVLine(bw, "not fitted", c.RefText(), c.Value, c.FootprintNormalized)
		}
	}
	if err := bw.Flush(); err != nil {
		return eris.Wrap(err, "report: write text")
	}
	return nil
}
