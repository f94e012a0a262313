package domain

import "strings"

// Dimension identifies one filter axis over the committee index.
type Dimension string

const (
	DimCategory      Dimension = "category"
	DimCommitteeType Dimension = "committee_type"
	DimElectionYear  Dimension = "election_year"
	DimParty         Dimension = "party"
	DimOffice        Dimension = "office"
	DimDistrict      Dimension = "district"
	DimCandidate     Dimension = "candidate_name"
	DimCommittee     Dimension = "committee_name"
)

// Committee is one normalized row of the committee index.
// Name is the only field guaranteed non-empty; all others are optional
// (empty string means the source row had no value).
type Committee struct {
	Name         string `json:"committee_name"`
	Candidate    string `json:"candidate_name,omitempty"`
	Type         string `json:"committee_type,omitempty"`
	Party        string `json:"party,omitempty"`
	Office       string `json:"office,omitempty"`
	District     string `json:"district,omitempty"`
	ElectionYear string `json:"election_year,omitempty"`
}

// Field returns the committee value backing the given dimension.
// DimCategory has no field of its own; it narrows through DimCommitteeType.
func (c Committee) Field(d Dimension) string {
	switch d {
	case DimCommitteeType:
		return c.Type
	case DimElectionYear:
		return c.ElectionYear
	case DimParty:
		return c.Party
	case DimOffice:
		return c.Office
	case DimDistrict:
		return c.District
	case DimCandidate:
		return c.Candidate
	case DimCommittee:
		return c.Name
	}
	return ""
}

// CommitteeIndex is the full committee record set together with the set of
// logical columns that actually resolved against the upstream dataset.
// A dimension missing from Columns was not present in the data at all,
// which readers must distinguish from "present but no surviving values".
type CommitteeIndex struct {
	Committees []Committee
	Columns    map[Dimension]string // dimension -> source column that matched
}

// HasColumn reports whether the dataset carried any alias for the dimension.
func (idx CommitteeIndex) HasColumn(d Dimension) bool {
	if d == DimCategory {
		d = DimCommitteeType
	}
	_, ok := idx.Columns[d]
	return ok
}

// FilterSelection is the user's current choice across the filter dimensions.
// Zero values mean "unset"; unset dimensions never restrict the index.
// Dimensions combine with logical AND.
type FilterSelection struct {
	Categories   []string `json:"category,omitempty"`
	ElectionYear string   `json:"election_year,omitempty"`
	Party        string   `json:"party,omitempty"`
	Office       string   `json:"office,omitempty"`
	District     string   `json:"district,omitempty"`
	Candidate    string   `json:"candidate_name,omitempty"` // case-insensitive substring
	Committee    string   `json:"committee_name,omitempty"` // exact match
}

// IsZero reports whether no dimension is set.
func (s FilterSelection) IsZero() bool {
	return len(s.Categories) == 0 && s.ElectionYear == "" && s.Party == "" &&
		s.Office == "" && s.District == "" && s.Candidate == "" && s.Committee == ""
}

// CategoryOther is the catch-all bucket: besides its explicit type list it
// matches every committee type not claimed by any bucket.
const CategoryOther = "Other"

// CommitteeCategories maps each category bucket to the raw committee-type
// strings it covers, as published by the IECDB datasets.
var CommitteeCategories = map[string][]string{
	"Statewide": {
		"Governor", "Attorney General", "Auditor of State", "Secretary of State",
		"Secretary of Agriculture", "Treasurer of State",
	},
	"Legislature": {"State House", "State Senate"},
	"City":        {"City Candidate - City Council", "City Candidate - Mayor"},
	"County": {
		"County Candidate - Attorney", "County Candidate - Auditor",
		"County Candidate - Recorder", "County Candidate - Sheriff",
		"County Candidate - Supervisor", "County Candidate - Treasurer",
	},
	"PAC": {"City PAC", "Iowa PAC", "County PAC"},
	CategoryOther: {
		"Other Political Subdivision Candidate", "School Board Candidate",
		"School Board or Other Political Subdivision PAC", "State Central Committee",
		"Local Ballot Issue",
	},
}

// CategoryNames lists the buckets in display order.
var CategoryNames = []string{"Statewide", "Legislature", "City", "County", "PAC", CategoryOther}

// knownCommitteeTypes is the union of every bucket's explicit type list.
func knownCommitteeTypes() map[string]bool {
	known := make(map[string]bool)
	for _, types := range CommitteeCategories {
		for _, t := range types {
			known[t] = true
		}
	}
	return known
}

// ExpandCategories converts selected buckets to the set of committee-type
// strings they match. When "Other" is selected, allTypesInData is consulted
// to include types that belong to no bucket's explicit list.
func ExpandCategories(categories []string, allTypesInData []string) map[string]bool {
	types := make(map[string]bool)
	if len(categories) == 0 {
		return types
	}

	var hasOther bool
	for _, cat := range categories {
		if cat == CategoryOther {
			hasOther = true
		}
		for _, t := range CommitteeCategories[cat] {
			types[t] = true
		}
	}

	if hasOther {
		known := knownCommitteeTypes()
		for _, t := range allTypesInData {
			if !known[t] {
				types[t] = true
			}
		}
	}
	return types
}

// CommitteeResult is one entry of the search result list.
type CommitteeResult struct {
	Name   string `json:"name"`
	Type   string `json:"type,omitempty"`
	Office string `json:"office,omitempty"`
	Party  string `json:"party,omitempty"`
}

// MatchesSubstring reports whether value contains needle, case-insensitively.
// An empty value never matches.
func MatchesSubstring(value, needle string) bool {
	if value == "" {
		return false
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(needle))
}
