// Package schema normalizes raw portal rows into typed records.
//
// The IECDB datasets drifted across years and filers, so each logical field
// may arrive under one of several column names. Every logical field has a
// static, ordered alias chain; the first alias present anywhere in a record
// set wins, and the choice is made once per dataset rather than per row.
package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/powens/iowa-disclosure-api/internal/domain"
)

// Alias chains, in resolution order.
var (
	committeeNameAliases = []string{"committee_name", "committee_nm", "committee"}
	candidateAliases     = []string{"candidate_name", "candidate_nm", "candidate", "name"}
	committeeTypeAliases = []string{"committee_type", "type", "type_nm", "committee_type_nm"}
	electionYearAliases  = []string{"election_year", "election_yr", "year", "election_year_text"}
	partyAliases         = []string{"party", "party_nm", "party_name", "political_party"}
	officeAliases        = []string{"office", "office_sought", "office_nm", "office_name"}
	districtAliases      = []string{"district", "district_nbr", "district_number", "district_num"}

	contribDateAliases   = []string{"date", "contribution_date", "transaction_date"}
	expendDateAliases    = []string{"date", "expenditure_date", "transaction_date"}
	contribAmountAliases = []string{"amount", "contribution_amount", "transaction_amount"}
	expendAmountAliases  = []string{"amount", "expenditure_amount", "transaction_amount"}
	transTypeAliases     = []string{"transaction_type", "trans_type", "type", "contribution_type", "transaction_cd", "trans_cd"}
	stateAliases         = []string{"state", "contributor_state", "state_cd", "state_code"}
	recipientAliases     = []string{"recipient", "recipient_nm", "payee", "payee_nm", "vendor", "vendor_nm", "expenditure_recipient"}
)

// dimensionAliases maps each filterable dimension to its alias chain.
var dimensionAliases = map[domain.Dimension][]string{
	domain.DimCommittee:     committeeNameAliases,
	domain.DimCandidate:     candidateAliases,
	domain.DimCommitteeType: committeeTypeAliases,
	domain.DimElectionYear:  electionYearAliases,
	domain.DimParty:         partyAliases,
	domain.DimOffice:        officeAliases,
	domain.DimDistrict:      districtAliases,
}

// resolveColumn returns the first alias present in any row, or "".
func resolveColumn(rows []domain.Row, aliases []string) string {
	for _, alias := range aliases {
		for _, row := range rows {
			if _, ok := row[alias]; ok {
				return alias
			}
		}
	}
	return ""
}

// stringValue stringifies a raw cell; nil becomes "".
func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		// JSON numbers decode as float64; years etc. should not print as 2024.00.
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// ParseAmount coerces a raw cell to a monetary amount. Unparseable or
// missing values return nil, never an error.
func ParseAmount(v any) *float64 {
	switch val := v.(type) {
	case float64:
		return &val
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(val, "$"), ",", ""))
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}

// dateLayouts covers the portal's floating-timestamp format plus the plain
// forms seen in older vintages of the datasets.
var dateLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"01/02/2006",
}

// ParseDate coerces a raw cell to a timestamp. Unparseable or missing
// values return nil, never an error.
func ParseDate(v any) *time.Time {
	s := stringValue(v)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// columnOrder collects the union of keys across rows in first-seen order,
// so exports reproduce the upstream column layout.
func columnOrder(rows []domain.Row) []string {
	var order []string
	seen := make(map[string]bool)
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
		}
	}
	return order
}

// NormalizeCommittees builds the committee index from raw rows. Rows without
// a committee name are dropped; the returned Columns map records which
// dimensions resolved at all.
func NormalizeCommittees(rows []domain.Row) domain.CommitteeIndex {
	idx := domain.CommitteeIndex{Columns: make(map[domain.Dimension]string)}

	cols := make(map[domain.Dimension]string)
	for dim, aliases := range dimensionAliases {
		if col := resolveColumn(rows, aliases); col != "" {
			cols[dim] = col
			idx.Columns[dim] = col
		}
	}
	nameCol, ok := cols[domain.DimCommittee]
	if !ok {
		return idx
	}

	for _, row := range rows {
		name := stringValue(row[nameCol])
		if name == "" {
			continue
		}
		c := domain.Committee{Name: name}
		if col, ok := cols[domain.DimCandidate]; ok {
			c.Candidate = stringValue(row[col])
		}
		if col, ok := cols[domain.DimCommitteeType]; ok {
			c.Type = stringValue(row[col])
		}
		if col, ok := cols[domain.DimElectionYear]; ok {
			c.ElectionYear = stringValue(row[col])
		}
		if col, ok := cols[domain.DimParty]; ok {
			c.Party = stringValue(row[col])
		}
		if col, ok := cols[domain.DimOffice]; ok {
			c.Office = stringValue(row[col])
		}
		if col, ok := cols[domain.DimDistrict]; ok {
			c.District = stringValue(row[col])
		}
		idx.Committees = append(idx.Committees, c)
	}
	return idx
}

// personName joins first and last name cells.
func personName(row domain.Row) string {
	return strings.TrimSpace(strings.TrimSpace(stringValue(row["first_nm"])) + " " + stringValue(row["last_nm"]))
}

// counterparty derives the display name for the other side of a transaction:
// the organization when present, otherwise the person's name.
func counterparty(row domain.Row) string {
	if org := stringValue(row["organization_nm"]); org != "" {
		return org
	}
	return personName(row)
}

// NormalizeContributions builds a transaction set from raw contribution rows.
// Missing alias groups leave the corresponding fields zero-valued, so the
// affected aggregates simply contribute nothing.
func NormalizeContributions(rows []domain.Row) domain.TransactionSet {
	committeeCol := resolveColumn(rows, committeeNameAliases)
	dateCol := resolveColumn(rows, contribDateAliases)
	amountCol := resolveColumn(rows, contribAmountAliases)
	typeCol := resolveColumn(rows, transTypeAliases)
	stateCol := resolveColumn(rows, stateAliases)

	set := domain.TransactionSet{Columns: columnOrder(rows), Raw: rows}
	for _, row := range rows {
		t := domain.Transaction{
			Kind:        domain.KindContribution,
			Contributor: counterparty(row),
		}
		if committeeCol != "" {
			t.Committee = stringValue(row[committeeCol])
		}
		if dateCol != "" {
			t.Date = ParseDate(row[dateCol])
		}
		if amountCol != "" {
			t.Amount = ParseAmount(row[amountCol])
		}
		if typeCol != "" {
			t.Type = stringValue(row[typeCol])
		}
		if stateCol != "" {
			t.State = stringValue(row[stateCol])
		}
		set.Transactions = append(set.Transactions, t)
	}
	return set
}

// NormalizeExpenditures builds a transaction set from raw expenditure rows.
// The recipient falls back through organization, person name (with state),
// then the payee alias chain.
func NormalizeExpenditures(rows []domain.Row) domain.TransactionSet {
	committeeCol := resolveColumn(rows, committeeNameAliases)
	dateCol := resolveColumn(rows, expendDateAliases)
	amountCol := resolveColumn(rows, expendAmountAliases)
	stateCol := resolveColumn(rows, stateAliases)
	recipientCol := resolveColumn(rows, recipientAliases)

	set := domain.TransactionSet{Columns: columnOrder(rows), Raw: rows}
	for _, row := range rows {
		t := domain.Transaction{Kind: domain.KindExpenditure}
		if committeeCol != "" {
			t.Committee = stringValue(row[committeeCol])
		}
		if dateCol != "" {
			t.Date = ParseDate(row[dateCol])
		}
		if amountCol != "" {
			t.Amount = ParseAmount(row[amountCol])
		}
		if stateCol != "" {
			t.State = stringValue(row[stateCol])
		}
		t.Recipient = recipientName(row, recipientCol, t.State)
		set.Transactions = append(set.Transactions, t)
	}
	return set
}

func recipientName(row domain.Row, recipientCol, state string) string {
	if org := stringValue(row["organization_nm"]); org != "" {
		return org
	}
	if person := personName(row); person != "" {
		if state != "" {
			return person + " (" + state + ")"
		}
		return person
	}
	if recipientCol != "" {
		if r := stringValue(row[recipientCol]); r != "" {
			return r
		}
	}
	return "Unknown"
}
