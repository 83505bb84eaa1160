package report

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// JSONWriter encodes the Document. Components keep their reference lists so
// the output can be consumed without re-parsing reference text.
type JSONWriter struct {
	Indent bool
}

func (JSONWriter) Ext() string { return "json" }

func (j JSONWriter) Write(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return eris.Wrap(err, "report: encode json")
	}
	return nil
}

// DecodeJSON reads a Document written by JSONWriter. Defaults are not part
// of the encoding and stay nil.
func DecodeJSON(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, eris.Wrap(err, "report: decode json")
	}
	return doc, nil
}
