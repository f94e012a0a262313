package domain

import "time"

// windowKind discriminates the Window sum type.
type windowKind int

const (
	windowAll windowKind = iota
	windowYear
	windowRange
)

// Window is the sub-filter applied to a committee's transactions when
// reconciling cash on hand: all time, a single calendar year, or a closed
// date interval. Exactly one variant is active at a time; callers that
// receive both a year and a range must reject the combination rather than
// intersect them.
type Window struct {
	kind  windowKind
	year  int
	start time.Time
	end   time.Time
}

// AllTime returns the unbounded window.
func AllTime() Window { return Window{kind: windowAll} }

// ForYear returns a window covering one calendar year.
func ForYear(year int) Window { return Window{kind: windowYear, year: year} }

// ForRange returns a window covering [start, end], inclusive on both ends.
func ForRange(start, end time.Time) Window {
	return Window{kind: windowRange, start: start, end: end}
}

// IsAllTime reports whether the window places no bound on dates.
func (w Window) IsAllTime() bool { return w.kind == windowAll }

// Year returns the selected year, if the window is a year window.
func (w Window) Year() (int, bool) { return w.year, w.kind == windowYear }

// Range returns the selected interval, if the window is a range window.
func (w Window) Range() (start, end time.Time, ok bool) {
	return w.start, w.end, w.kind == windowRange
}

// Start returns the first instant covered by the window. The second return
// is false for the all-time window, which has no lower bound.
func (w Window) Start() (time.Time, bool) {
	switch w.kind {
	case windowYear:
		return time.Date(w.year, time.January, 1, 0, 0, 0, 0, time.UTC), true
	case windowRange:
		return w.start, true
	}
	return time.Time{}, false
}

// Contains reports whether the date falls inside the window.
func (w Window) Contains(t time.Time) bool {
	switch w.kind {
	case windowYear:
		return t.Year() == w.year
	case windowRange:
		return !t.Before(w.start) && !t.After(w.end)
	}
	return true
}

// LedgerRow is one year of the cash-on-hand reconciliation. Contributions
// holds cash contributions only; EndingBalance is the running balance after
// this year's net. The field names and order are a compatibility surface
// shared by the JSON API and the PDF report.
type LedgerRow struct {
	Year          int     `json:"year"`
	Contributions float64 `json:"contributions"`
	Expenditures  float64 `json:"expenditures"`
	Net           float64 `json:"net"`
	EndingBalance float64 `json:"ending_balance"`
}

// LedgerResult is the full reconciliation output. Rows are sorted ascending
// by year; EndingBalance equals the last row's running balance, or
// StartingBalance when no transactions fall inside the window.
type LedgerResult struct {
	StartingBalance float64     `json:"starting_balance"`
	EndingBalance   float64     `json:"ending_balance"`
	Rows            []LedgerRow `json:"rows"`
}

// CommitteeSummary aggregates a committee's headline numbers for the
// detail view and the PDF report.
type CommitteeSummary struct {
	Name              string     `json:"name"`
	Candidate         string     `json:"candidate,omitempty"`
	Type              string     `json:"type,omitempty"`
	Party             string     `json:"party,omitempty"`
	Office            string     `json:"office,omitempty"`
	District          string     `json:"district,omitempty"`
	TotalRaised       float64    `json:"total_raised"`
	TotalSpent        float64    `json:"total_spent"`
	CashOnHand        float64    `json:"cash_on_hand"`
	StartingBalance   float64    `json:"starting_balance"`
	ContributionCount int        `json:"contribution_count"`
	ExpenditureCount  int        `json:"expenditure_count"`
	EarliestActivity  *time.Time `json:"earliest_activity,omitempty"`
	LatestActivity    *time.Time `json:"latest_activity,omitempty"`
	LatestDataDate    *time.Time `json:"latest_data_date,omitempty"` // unfiltered history
}
