package bom

import (
	"cmp"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/kuro68k/kibom/internal/model"
)

// ErrUnclassifiable is returned by Classify for references without a digit.
var ErrUnclassifiable = eris.New("reference has no designator prefix")

// Classify returns the designator of ref: the characters before its first
// digit. A reference such as "42" has the empty designator.
func Classify(ref string) (string, error) {
	d, ok := model.RefPrefix(ref)
	if !ok {
		return "", eris.Wrapf(ErrUnclassifiable, "classify %q", ref)
	}
	return d, nil
}

// BuildGroups partitions components by designator. Groups appear in the
// order their designator is first seen and keep their members' input order.
func BuildGroups(components []model.Component) []model.DesignatorGroup {
	var groups []model.DesignatorGroup
	index := make(map[string]int)
	for _, c := range components {
		d := c.Designator()
		i, ok := index[d]
		if !ok {
			i = len(groups)
			index[d] = i
			groups = append(groups, model.DesignatorGroup{Designator: d})
		}
		groups[i].Components = append(groups[i].Components, c)
	}
	return groups
}

// SortByValue returns a copy of g ordered by ascending NumericValue. Equal
// values keep their relative order and invalid values come first.
func SortByValue(g model.DesignatorGroup) model.DesignatorGroup {
	out := model.DesignatorGroup{Designator: g.Designator, Components: slices.Clone(g.Components)}
	slices.SortStableFunc(out.Components, func(a, b model.Component) int {
		return cmp.Compare(a.NumericValue, b.NumericValue)
	})
	return out
}
