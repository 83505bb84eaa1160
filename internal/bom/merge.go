package bom

import (
	"slices"

	"github.com/kuro68k/kibom/internal/model"
)

// Merge collapses runs of adjacent components that share a MergeKey into a
// single record carrying every folded reference. g should already be sorted
// with SortByValue so that equal values sit next to each other. The input
// group is not modified.
//
// Merge is idempotent: a group whose neighbouring records all differ in key
// comes back unchanged.
func Merge(g model.DesignatorGroup) model.DesignatorGroup {
	out := model.DesignatorGroup{
		Designator: g.Designator,
		Components: make([]model.Component, 0, len(g.Components)),
	}
	for _, c := range g.Components {
		if n := len(out.Components); n > 0 && out.Components[n-1].MergeKey() == c.MergeKey() {
			bucket := &out.Components[n-1]
			bucket.References = append(bucket.References, c.Refs()...)
			bucket.Count = len(bucket.References)
			// a merged line is only hidden when every folded part is
			bucket.NoPart = bucket.NoPart && c.NoPart
			bucket.NoFit = bucket.NoFit && c.NoFit
			continue
		}
		seed := c
		seed.References = slices.Clone(c.Refs())
		seed.Count = len(seed.References)
		out.Components = append(out.Components, seed)
	}
	return out
}
