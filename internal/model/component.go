package model

import "strings"

// RefSeparator joins merged references in display text.
const RefSeparator = ", "

// Component is a single part from the design export. After consolidation it
// represents every part that shares its MergeKey.
type Component struct {
	Reference           string   `json:"reference"`
	References          []string `json:"references"`
	Value               string   `json:"value"`
	NumericValue        float64  `json:"-"`
	Footprint           string   `json:"footprint"`
	FootprintOverride   string   `json:"footprint_override,omitempty"`
	FootprintNormalized string   `json:"footprint_normalized"`
	Precision           string   `json:"precision,omitempty"`
	PartNo              string   `json:"part_no,omitempty"`
	Note                string   `json:"note,omitempty"`
	Code                string   `json:"code,omitempty"`
	NoPart              bool     `json:"no_part,omitempty"`
	NoFit               bool     `json:"no_fit,omitempty"`
	Count               int      `json:"count"`
}

// MergeKey is the attribute signature two components must share to be
// listed on one BOM line.
type MergeKey struct {
	Value     string
	Footprint string
	Code      string
	Note      string
	PartNo    string
	Precision string
}

// MergeKey returns the component's merge signature. NumericValue and the
// references never take part in it.
func (c Component) MergeKey() MergeKey {
	return MergeKey{
		Value:     c.Value,
		Footprint: c.Footprint,
		Code:      c.Code,
		Note:      c.Note,
		PartNo:    c.PartNo,
		Precision: c.Precision,
	}
}

// Designator returns the prefix of the component's reference, or "" when
// the reference has no digit.
func (c Component) Designator() string {
	d, _ := RefPrefix(c.Reference)
	return d
}

// Refs returns the references folded into this component. A component that
// has not been through the merger yet reports its own reference.
func (c Component) Refs() []string {
	if len(c.References) == 0 && c.Reference != "" {
		return []string{c.Reference}
	}
	return c.References
}

// RefText is the display form of the reference list.
func (c Component) RefText() string {
	return strings.Join(c.Refs(), RefSeparator)
}

// FootprintDisplay returns the normalized footprint, or the raw footprint
// when no normalized form exists.
func (c Component) FootprintDisplay() string {
	if c.FootprintNormalized != "" {
		return c.FootprintNormalized
	}
	return c.Footprint
}

// DesignatorGroup holds the components sharing one designator prefix.
type DesignatorGroup struct {
	Designator string      `json:"designator"`
	Components []Component `json:"components"`
}

// Len returns the number of records in the group.
func (g DesignatorGroup) Len() int {
	return len(g.Components)
}

// Parts returns the total number of physical parts in the group.
func (g DesignatorGroup) Parts() int {
	n := 0
	for _, c := range g.Components {
		n += c.Count
	}
	return n
}
