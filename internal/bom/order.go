package bom

import (
	"cmp"
	"slices"
	"strings"

	"github.com/kuro68k/kibom/internal/model"
)

// ReferenceNumber returns the integer following the designator prefix of
// ref, or -1 when there is none.
func ReferenceNumber(ref string) int {
	return model.RefNumber(ref)
}

// SortReferences returns refs in natural order ("R1, R2, R10"). References
// without a number sort first; equal numbers keep their input order.
func SortReferences(refs []string) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = strings.TrimSpace(r)
	}
	slices.SortStableFunc(out, func(a, b string) int {
		return cmp.Compare(ReferenceNumber(a), ReferenceNumber(b))
	})
	return out
}

// sortRecordRefs orders a merged record's references and points Reference
// at the first of them.
func sortRecordRefs(c model.Component) model.Component {
	c.References = SortReferences(c.Refs())
	if len(c.References) > 0 {
		c.Reference = c.References[0]
	}
	return c
}

// SortGroups returns groups ordered by designator, lexicographically.
func SortGroups(groups []model.DesignatorGroup) []model.DesignatorGroup {
	out := slices.Clone(groups)
	slices.SortStableFunc(out, func(a, b model.DesignatorGroup) int {
		return strings.Compare(a.Designator, b.Designator)
	})
	return out
}

// SortListing returns a copy of g with its records ordered by the number of
// each record's first reference, so R1 lists before R5 before R10.
func SortListing(g model.DesignatorGroup) model.DesignatorGroup {
	out := model.DesignatorGroup{Designator: g.Designator, Components: slices.Clone(g.Components)}
	slices.SortStableFunc(out.Components, func(a, b model.Component) int {
		return cmp.Compare(firstRefNumber(a), firstRefNumber(b))
	})
	return out
}

func firstRefNumber(c model.Component) int {
	refs := c.Refs()
	if len(refs) == 0 {
		return -1
	}
	return ReferenceNumber(refs[0])
}
