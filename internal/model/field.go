package model

import "strings"

// FieldKind identifies a recognised custom BOM field on a component.
type FieldKind int

const (
	FieldUnknown   FieldKind = iota
	FieldFootprint           // bom_footprint: display footprint override
	FieldPrecision           // precision / tolerance
	FieldNote                // bom_note
	FieldPartNo              // bom_partno: manufacturer part number
	FieldCode                // code
	FieldNoFit               // bom_nofit / dnp
)

// fieldKinds maps lowercase field names to kinds. Names not listed here are
// ignored.
var fieldKinds = map[string]FieldKind{
	"bom_footprint": FieldFootprint,
	"precision":     FieldPrecision,
	"bom_note":      FieldNote,
	"bom_partno":    FieldPartNo,
	"code":          FieldCode,
	"bom_nofit":     FieldNoFit,
	"dnp":           FieldNoFit,
}

// ParseFieldKind resolves a field name case-insensitively.
func ParseFieldKind(name string) FieldKind {
	if k, ok := fieldKinds[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k
	}
	return FieldUnknown
}

// String returns the canonical field name.
func (k FieldKind) String() string {
	switch k {
	case FieldFootprint:
		return "bom_footprint"
	case FieldPrecision:
		return "precision"
	case FieldNote:
		return "bom_note"
	case FieldPartNo:
		return "bom_partno"
	case FieldCode:
		return "code"
	case FieldNoFit:
		return "bom_nofit"
	default:
		return "unknown"
	}
}

// Apply stores a field value on c according to its kind. Unknown kinds are
// a no-op. A no-fit field marks the part unless its value is a false-ish
// literal.
func (k FieldKind) Apply(c *Component, value string) {
	switch k {
	case FieldFootprint:
		c.FootprintOverride = value
	case FieldPrecision:
		c.Precision = value
	case FieldNote:
		c.Note = value
	case FieldPartNo:
		c.PartNo = value
	case FieldCode:
		c.Code = value
	case FieldNoFit:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "0", "no", "false", "n":
			c.NoFit = false
		default:
			c.NoFit = true
		}
	}
}
