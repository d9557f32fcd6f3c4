package emission

import (
	"strings"

	"esg-assessment-service/internal/domain"
)

// Selection is a hierarchical pick into the factor table. A parent-level
// change always invalidates the child selections below it.
type Selection struct {
	Category    string `json:"category"`
	Separate    string `json:"separate"`
	RawMaterial string `json:"rawMaterial"`

	resolved *domain.FactorEntry
}

// SetCategory replaces the category and clears separate, raw material and
// any resolved entry.
func (s *Selection) SetCategory(category string) {
	s.Category = category
	s.Separate = ""
	s.RawMaterial = ""
	s.resolved = nil
}

// SetSeparate replaces the subcategory and clears the raw material and any
// resolved entry.
func (s *Selection) SetSeparate(separate string) {
	s.Separate = separate
	s.RawMaterial = ""
	s.resolved = nil
}

// SetRawMaterial replaces the raw material and clears any resolved entry.
func (s *Selection) SetRawMaterial(rawMaterial string) {
	s.RawMaterial = rawMaterial
	s.resolved = nil
}

// Resolved returns the entry last resolved for this selection, if any.
func (s *Selection) Resolved() (domain.FactorEntry, bool) {
	if s.resolved == nil {
		return domain.FactorEntry{}, false
	}
	return *s.resolved, true
}

// Resolve finds the table row matching all three keys exactly and case
// sensitively. A miss is a normal mid-selection state, not an error: the
// second return is false and the caller should clear unit/factor fields.
func Resolve(sel Selection, table []domain.FactorEntry) (domain.FactorEntry, bool) {
	for _, entry := range table {
		if entry.Category == sel.Category &&
			entry.Separate == sel.Separate &&
			entry.RawMaterial == sel.RawMaterial {
			return entry, true
		}
	}
	return domain.FactorEntry{}, false
}

// ResolveInto resolves and records the hit on the selection itself.
func ResolveInto(sel *Selection, table []domain.FactorEntry) (domain.FactorEntry, bool) {
	entry, ok := Resolve(*sel, table)
	if ok {
		sel.resolved = &entry
	} else {
		sel.resolved = nil
	}
	return entry, ok
}

// Rule is a declarative include/exclude filter on one tag dimension.
// Include keeps rows whose tag value contains any listed token; Exclude
// keeps rows containing none. A nil rule means no filtering.
type Rule struct {
	Include []string
	Exclude []string
}

func (r *Rule) matches(value string) bool {
	if r == nil {
		return true
	}
	if len(r.Include) > 0 {
		hit := false
		for _, token := range r.Include {
			if strings.Contains(value, token) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	for _, token := range r.Exclude {
		if strings.Contains(value, token) {
			return false
		}
	}
	return true
}

// RuleSet narrows the selectable table rows for one active category before
// the three-key lookup. Each field filters its own dimension.
type RuleSet struct {
	Scope    *Rule
	State    *Rule
	Separate *Rule
}

// Filter returns the rows passing every rule of the set. A nil set keeps
// everything.
func (rs *RuleSet) Filter(table []domain.FactorEntry) []domain.FactorEntry {
	if rs == nil {
		return table
	}
	filtered := make([]domain.FactorEntry, 0, len(table))
	for _, entry := range table {
		if rs.Scope.matches(entry.ScopeTag) &&
			rs.State.matches(entry.State) &&
			rs.Separate.matches(entry.Separate) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// Options lists the distinct values selectable at each level of the cascade
// for the given partial selection, preserving table order.
type Options struct {
	Categories   []string `json:"categories"`
	Separates    []string `json:"separates"`
	RawMaterials []string `json:"rawMaterials"`
}

// OptionsFor computes the cascading option lists from the (already filtered)
// table. Separates are scoped to the selected category, raw materials to the
// selected category+separate pair.
func OptionsFor(sel Selection, table []domain.FactorEntry) Options {
	var opts Options
	seenCat := map[string]struct{}{}
	seenSep := map[string]struct{}{}
	seenRaw := map[string]struct{}{}
	for _, entry := range table {
		if _, ok := seenCat[entry.Category]; !ok {
			seenCat[entry.Category] = struct{}{}
			opts.Categories = append(opts.Categories, entry.Category)
		}
		if entry.Category != sel.Category {
			continue
		}
		if _, ok := seenSep[entry.Separate]; !ok {
			seenSep[entry.Separate] = struct{}{}
			opts.Separates = append(opts.Separates, entry.Separate)
		}
		if entry.Separate != sel.Separate {
			continue
		}
		if _, ok := seenRaw[entry.RawMaterial]; !ok {
			seenRaw[entry.RawMaterial] = struct{}{}
			opts.RawMaterials = append(opts.RawMaterials, entry.RawMaterial)
		}
	}
	return opts
}
