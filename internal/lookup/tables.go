// Package lookup holds the read-only tables the BOM engine consults: footprint
// substitutions and per-designator defaults.
package lookup

import (
	"slices"
	"strings"
)

// Substitution replaces any footprint containing Search with Replace.
type Substitution struct {
	Search  string `yaml:"search" json:"search"`
	Replace string `yaml:"replace" json:"replace"`
}

// Substitutions is an ordered substitution table. It is immutable once built
// and safe for concurrent use. A nil *Substitutions has no entries.
type Substitutions struct {
	entries []Substitution
}

// NewSubstitutions builds a table from entries, preserving their order.
func NewSubstitutions(entries []Substitution) *Substitutions {
	return &Substitutions{entries: slices.Clone(entries)}
}

// Len returns the number of entries.
func (s *Substitutions) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns a copy of the table in order.
func (s *Substitutions) Entries() []Substitution {
	if s == nil {
		return nil
	}
	return slices.Clone(s.entries)
}

// Substitute returns the replacement of the first entry whose Search is
// contained in in. When nothing matches, in is returned unchanged, or ""
// if removeUnknown is set. stripUnderscore turns underscores in the result
// into spaces.
func (s *Substitutions) Substitute(in string, removeUnknown, stripUnderscore bool) string {
	out, matched := in, false
	if s != nil {
		for _, e := range s.entries {
			if strings.Contains(in, e.Search) {
				out, matched = e.Replace, true
				break
			}
		}
	}
	if !matched && removeUnknown {
		return ""
	}
	if stripUnderscore {
		out = strings.ReplaceAll(out, "_", " ")
	}
	return out
}

// NoDefault marks a designator that has a long name but no default part type.
const NoDefault = "N/A"

// Default describes a designator class for report headings.
type Default struct {
	Designator  string `yaml:"designator" json:"designator"`
	LongName    string `yaml:"long_name" json:"long_name"`
	DefaultType string `yaml:"default_type" json:"default_type"`
}

// HasDefault reports whether the class names a default part type.
func (d Default) HasDefault() bool {
	t := strings.TrimSpace(d.DefaultType)
	return t != "" && !strings.EqualFold(t, NoDefault)
}

// Heading is the group heading text used by the report writers.
func (d Default) Heading() string {
	if d.HasDefault() {
		return d.LongName + " (all " + d.DefaultType + " unless otherwise stated)"
	}
	return d.LongName
}

// Defaults maps designators to their Default. It is immutable once built and
// safe for concurrent use. A nil *Defaults finds nothing.
type Defaults struct {
	order []Default
	index map[string]int
}

// NewDefaults builds a table from entries. When a designator is listed twice
// the first entry wins.
func NewDefaults(entries []Default) *Defaults {
	d := &Defaults{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if _, dup := d.index[e.Designator]; dup {
			continue
		}
		d.index[e.Designator] = len(d.order)
		d.order = append(d.order, e)
	}
	return d
}

// Lookup returns the Default for designator.
func (d *Defaults) Lookup(designator string) (Default, bool) {
	if d == nil {
		return Default{}, false
	}
	i, ok := d.index[designator]
	if !ok {
		return Default{}, false
	}
	return d.order[i], true
}

// All returns every entry in load order.
func (d *Defaults) All() []Default {
	if d == nil {
		return nil
	}
	return slices.Clone(d.order)
}

// Len returns the number of designators in the table.
func (d *Defaults) Len() int {
	if d == nil {
		return 0
	}
	return len(d.order)
}

// Tables bundles the lookup tables for one process run.
type Tables struct {
	Substitutions *Substitutions
	Defaults      *Defaults
}
