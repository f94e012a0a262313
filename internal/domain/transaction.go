package domain

import (
	"strings"
	"time"
)

// Row is one raw record as returned by the upstream portal. Values are kept
// untyped; the schema package coerces them into Transaction / Committee.
type Row map[string]any

// TransactionKind partitions financial events into the two source datasets.
type TransactionKind string

const (
	KindContribution TransactionKind = "contribution"
	KindExpenditure  TransactionKind = "expenditure"
)

// CashContributionType marks a genuine monetary inflow. Contributions of any
// other type (in-kind, loans, ...) count toward total raised but never toward
// cash-on-hand.
const CashContributionType = "CON"

// Transaction is one normalized financial event. Date and Amount are nil when
// the source value was missing or unparseable; such records are excluded from
// dated aggregates and sums but stay in raw exports.
type Transaction struct {
	Committee   string
	Kind        TransactionKind
	Date        *time.Time
	Amount      *float64
	Type        string // transaction-type code, contributions only
	Contributor string // organization, else "first last"
	Recipient   string // expenditures: organization, else person, else payee alias
	State       string
}

// IsCash reports whether a contribution is a cash contribution, matching the
// type code case-insensitively after trimming whitespace.
func (t Transaction) IsCash() bool {
	return strings.EqualFold(strings.TrimSpace(t.Type), CashContributionType)
}

// TransactionSet couples normalized transactions with the raw rows they came
// from (index-aligned) and the source column order, for pass-through exports.
type TransactionSet struct {
	Transactions []Transaction
	Raw          []Row
	Columns      []string
}

// Filter returns the subset of the set whose transaction dates fall inside
// the window. Records without a parseable date are dropped for any bounded
// window but kept for the all-time window.
func (s TransactionSet) Filter(w Window) TransactionSet {
	if w.IsAllTime() {
		return s
	}
	out := TransactionSet{Columns: s.Columns}
	for i, t := range s.Transactions {
		if t.Date == nil || !w.Contains(*t.Date) {
			continue
		}
		out.Transactions = append(out.Transactions, t)
		out.Raw = append(out.Raw, s.Raw[i])
	}
	return out
}

// DatasetMetadata describes an upstream dataset's freshness.
type DatasetMetadata struct {
	Dataset   string     `json:"dataset"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
