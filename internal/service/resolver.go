package service

import (
	"sort"
	"strconv"
	"strings"

	"github.com/powens/iowa-disclosure-api/internal/domain"
)

// narrowOrder fixes the order dimensions are applied in. Category goes first
// so its catch-all is computed against the set the other filters have not
// touched yet; the result is order-independent either way since all filters
// AND together.
var narrowOrder = []domain.Dimension{
	domain.DimCategory,
	domain.DimElectionYear,
	domain.DimParty,
	domain.DimOffice,
	domain.DimDistrict,
	domain.DimCandidate,
	domain.DimCommittee,
}

// optionDimensions are the dimensions reported in the options map. Category
// buckets are static, so the category widget is driven by the committee_type
// values instead.
var optionDimensions = []domain.Dimension{
	domain.DimCommitteeType,
	domain.DimElectionYear,
	domain.DimParty,
	domain.DimOffice,
	domain.DimDistrict,
	domain.DimCandidate,
	domain.DimCommittee,
}

// ResolveOptions narrows the committee index by every set dimension except
// exclude, then reports the distinct values remaining per dimension along
// with the narrowed set itself. Pass an empty exclude to apply everything
// (the fully-matched set).
//
// Dimensions whose column never resolved against the dataset are omitted
// from the options map entirely, so callers can tell "column absent" apart
// from "no values survive the current selection". It never fails: whatever
// columns exist are used, best effort.
func ResolveOptions(idx domain.CommitteeIndex, sel domain.FilterSelection, exclude domain.Dimension) (map[domain.Dimension][]string, []domain.Committee) {
	matched := Narrow(idx, sel, exclude)

	options := make(map[domain.Dimension][]string)
	for _, dim := range optionDimensions {
		if !idx.HasColumn(dim) {
			continue
		}
		options[dim] = distinctValues(matched, dim)
	}
	return options, matched
}

// Narrow applies every set dimension except exclude to the index, in the
// fixed order, and returns the surviving committees.
func Narrow(idx domain.CommitteeIndex, sel domain.FilterSelection, exclude domain.Dimension) []domain.Committee {
	working := idx.Committees

	for _, dim := range narrowOrder {
		if dim == exclude || !idx.HasColumn(dim) {
			continue
		}
		switch dim {
		case domain.DimCategory:
			if len(sel.Categories) > 0 {
				working = filterByCategory(working, sel.Categories)
			}
		case domain.DimCandidate:
			if sel.Candidate != "" {
				working = filterBy(working, func(c domain.Committee) bool {
					return domain.MatchesSubstring(c.Candidate, sel.Candidate)
				})
			}
		default:
			if value := selectionValue(sel, dim); value != "" {
				working = filterBy(working, func(c domain.Committee) bool {
					return c.Field(dim) == value
				})
			}
		}
	}
	return working
}

// selectionValue returns the single-valued selection for a dimension.
func selectionValue(sel domain.FilterSelection, dim domain.Dimension) string {
	switch dim {
	case domain.DimElectionYear:
		return sel.ElectionYear
	case domain.DimParty:
		return sel.Party
	case domain.DimOffice:
		return sel.Office
	case domain.DimDistrict:
		return sel.District
	case domain.DimCommittee:
		return sel.Committee
	}
	return ""
}

func filterBy(committees []domain.Committee, keep func(domain.Committee) bool) []domain.Committee {
	out := committees[:0:0]
	for _, c := range committees {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// filterByCategory expands the selected buckets to committee-type strings
// (including the Other catch-all, computed against the types actually in the
// working set) and keeps committees whose type matches.
func filterByCategory(committees []domain.Committee, categories []string) []domain.Committee {
	allTypes := make([]string, 0)
	seen := make(map[string]bool)
	for _, c := range committees {
		if c.Type != "" && !seen[c.Type] {
			seen[c.Type] = true
			allTypes = append(allTypes, c.Type)
		}
	}

	wanted := domain.ExpandCategories(categories, allTypes)
	if len(wanted) == 0 {
		return committees
	}
	return filterBy(committees, func(c domain.Committee) bool {
		return wanted[c.Type]
	})
}

// distinctValues collects the sorted distinct non-empty values of a
// dimension's field. Election years sort descending (newest first); all
// other dimensions ascending, case-insensitively.
func distinctValues(committees []domain.Committee, dim domain.Dimension) []string {
	seen := make(map[string]bool)
	var values []string
	for _, c := range committees {
		v := c.Field(dim)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}

	if dim == domain.DimElectionYear {
		sort.Slice(values, func(i, j int) bool { return yearLess(values[j], values[i]) })
	} else {
		sort.Slice(values, func(i, j int) bool {
			a, b := strings.ToLower(values[i]), strings.ToLower(values[j])
			if a == b {
				return values[i] < values[j]
			}
			return a < b
		})
	}
	return values
}

// yearLess compares year-like values numerically when possible, falling back
// to string order for non-numeric entries.
func yearLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}

// Results converts matched committees to the result-list shape, one entry
// per distinct committee name, sorted by name.
func Results(matched []domain.Committee) []domain.CommitteeResult {
	byName := make(map[string]domain.CommitteeResult)
	var names []string
	for _, c := range matched {
		if _, ok := byName[c.Name]; ok {
			continue
		}
		byName[c.Name] = domain.CommitteeResult{
			Name:   c.Name,
			Type:   c.Type,
			Office: c.Office,
			Party:  c.Party,
		}
		names = append(names, c.Name)
	}
	sort.Strings(names)

	results := make([]domain.CommitteeResult, 0, len(names))
	for _, name := range names {
		results = append(results, byName[name])
	}
	return results
}
