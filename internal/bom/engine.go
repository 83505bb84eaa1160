// Package bom consolidates a flat component list into an ordered,
// deduplicated bill of materials.
//
// The pipeline is classify → group → sort by value → merge → sort references
// → order groups → order listings. Every stage returns new values and the
// package holds no mutable state, so Consolidate may be called concurrently
// with shared lookup tables.
package bom

import (
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kuro68k/kibom/internal/lookup"
	"github.com/kuro68k/kibom/internal/model"
)

// Listing selects the record order inside each group of the final BOM.
type Listing string

const (
	// ListingByReference orders records by their first reference number.
	ListingByReference Listing = "reference"
	// ListingByValue keeps the ascending-value order produced by the merger.
	ListingByValue Listing = "value"
)

// ParseListing maps a config string onto a Listing.
func ParseListing(s string) (Listing, error) {
	switch Listing(strings.ToLower(strings.TrimSpace(s))) {
	case "", ListingByReference:
		return ListingByReference, nil
	case ListingByValue:
		return ListingByValue, nil
	default:
		return "", eris.Errorf("bom: unknown listing order %q", s)
	}
}

// noPartMarker in a footprint name marks a pad-only part.
const noPartMarker = "no part"

// Options controls a Consolidate run.
type Options struct {
	Scale           Scale
	Listing         Listing
	RemoveUnknown   bool // unmatched footprints normalize to ""
	StripUnderscore bool // underscores in normalized footprints become spaces
}

// DefaultOptions matches the behaviour of the kibom command line.
func DefaultOptions() Options {
	return Options{
		Scale:           ScaleSI,
		Listing:         ListingByReference,
		RemoveUnknown:   true,
		StripUnderscore: true,
	}
}

// Result is the consolidated BOM.
type Result struct {
	// Groups are the fitted parts, ordered by designator. NoPart records are
	// kept here; use Visible before rendering.
	Groups []model.DesignatorGroup
	// NoFit lists parts placed in the design but not populated.
	NoFit    []model.DesignatorGroup
	Warnings []model.Warning
}

// Components returns the number of records across all fitted groups.
func (r Result) Components() int {
	n := 0
	for _, g := range r.Groups {
		n += g.Len()
	}
	return n
}

// Consolidate runs the full pipeline over components. Problems with a single
// component are returned as warnings and never stop the batch: unparsable
// values sort first, unclassifiable references are dropped and parts without
// a footprint are flagged NoPart.
func Consolidate(components []model.Component, tables lookup.Tables, opts Options) Result {
	var res Result
	fitted := make([]model.Component, 0, len(components))
	var noFit []model.Component

	for _, c := range components {
		p, warns, ok := prepare(c, tables, opts)
		res.Warnings = append(res.Warnings, warns...)
		if !ok {
			continue
		}
		if p.NoFit {
			noFit = append(noFit, p)
		} else {
			fitted = append(fitted, p)
		}
	}

	res.Groups = consolidateGroups(fitted, opts)
	res.NoFit = consolidateGroups(noFit, opts)

	zap.L().Debug("bom: consolidated",
		zap.Int("input", len(components)),
		zap.Int("groups", len(res.Groups)),
		zap.Int("records", res.Components()),
		zap.Int("no_fit_groups", len(res.NoFit)),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res
}

func consolidateGroups(components []model.Component, opts Options) []model.DesignatorGroup {
	groups := BuildGroups(components)
	for i, g := range groups {
		g = Merge(SortByValue(g))
		for j, c := range g.Components {
			g.Components[j] = sortRecordRefs(c)
		}
		if opts.Listing != ListingByValue {
			g = SortListing(g)
		}
		groups[i] = g
	}
	return SortGroups(groups)
}

// prepare derives the computed fields of c. ok is false when c cannot be
// placed in any group.
func prepare(c model.Component, tables lookup.Tables, opts Options) (model.Component, []model.Warning, bool) {
	var warns []model.Warning
	c.Reference = strings.TrimSpace(c.Reference)

	if _, err := Classify(c.Reference); err != nil {
		return c, append(warns, model.Warning{Reference: c.Reference, Kind: model.WarnUnclassifiable, Err: err}), false
	}

	c.References = []string{c.Reference}
	c.Count = 1

	c.NumericValue = ParseValue(c.Value, opts.Scale)
	if IsInvalid(c.NumericValue) {
		warns = append(warns, model.Warning{
			Reference: c.Reference,
			Kind:      model.WarnMalformedValue,
			Err:       eris.Errorf("value %q has no numeric literal", c.Value),
		})
	}

	switch {
	case strings.TrimSpace(c.Footprint) == "":
		c.NoPart = true
		warns = append(warns, model.Warning{Reference: c.Reference, Kind: model.WarnMissingFootprint})
	case strings.Contains(strings.ToLower(c.Footprint), noPartMarker):
		c.NoPart = true
	}

	if c.FootprintOverride != "" {
		c.FootprintNormalized = c.FootprintOverride
	} else {
		c.FootprintNormalized = tables.Substitutions.Substitute(c.Footprint, opts.RemoveUnknown, opts.StripUnderscore)
	}
	return c, warns, true
}

// Visible returns the groups as they should be rendered: NoPart records are
// dropped and groups left without records are omitted.
func Visible(groups []model.DesignatorGroup) []model.DesignatorGroup {
	var out []model.DesignatorGroup
	for _, g := range groups {
		kept := slices.DeleteFunc(slices.Clone(g.Components), func(c model.Component) bool {
			return c.NoPart
		})
		if len(kept) == 0 {
			continue
		}
		out = append(out, model.DesignatorGroup{Designator: g.Designator, Components: kept})
	}
	return out
}
