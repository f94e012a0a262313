package service

import (
	"sort"
	"time"

	"github.com/powens/iowa-disclosure-api/internal/domain"
)

// Reconcile rebuilds a committee's running cash balance from its full
// transaction history under the given window.
//
// Only cash contributions (type "CON") move the balance; every other
// contribution type is ignored here even though it counts toward total
// raised. For a bounded window the starting balance is the committee's net
// cash position strictly before the window start, so the ledger picks up
// exactly where the prior period left off. Records without a parseable date
// or amount contribute nothing.
func Reconcile(contributions, expenditures []domain.Transaction, w domain.Window) domain.LedgerResult {
	var cash []domain.Transaction
	for _, t := range contributions {
		if t.IsCash() {
			cash = append(cash, t)
		}
	}

	var starting float64
	if start, bounded := w.Start(); bounded {
		starting = sumBefore(cash, start) - sumBefore(expenditures, start)
	}

	years := yearsInWindow(contributions, expenditures, w)

	result := domain.LedgerResult{
		StartingBalance: starting,
		EndingBalance:   starting,
	}
	running := starting
	for _, year := range years {
		contrib := sumInYear(cash, w, year)
		expend := sumInYear(expenditures, w, year)
		net := contrib - expend
		running += net
		result.Rows = append(result.Rows, domain.LedgerRow{
			Year:          year,
			Contributions: contrib,
			Expenditures:  expend,
			Net:           net,
			EndingBalance: running,
		})
	}
	result.EndingBalance = running
	return result
}

// TotalAmount sums every parseable amount inside the window, regardless of
// transaction type. This feeds total raised / total spent, which unlike the
// ledger include non-cash contribution types. Undated records count only for
// the all-time window; a bounded window is a dated aggregate.
func TotalAmount(transactions []domain.Transaction, w domain.Window) float64 {
	var total float64
	for _, t := range transactions {
		if t.Amount == nil {
			continue
		}
		if !w.IsAllTime() && (t.Date == nil || !w.Contains(*t.Date)) {
			continue
		}
		total += *t.Amount
	}
	return total
}

// sumBefore sums amounts dated strictly before the cutoff.
func sumBefore(transactions []domain.Transaction, cutoff time.Time) float64 {
	var total float64
	for _, t := range transactions {
		if t.Date == nil || t.Amount == nil {
			continue
		}
		if t.Date.Before(cutoff) {
			total += *t.Amount
		}
	}
	return total
}

// yearsInWindow collects the ascending set of years covered by dated records
// inside the window, across both transaction kinds. All contributions count
// here (not just cash), so a year with only non-cash activity still gets a
// zero-net row.
func yearsInWindow(contributions, expenditures []domain.Transaction, w domain.Window) []int {
	seen := make(map[int]bool)
	collect := func(transactions []domain.Transaction) {
		for _, t := range transactions {
			if t.Date == nil || !w.Contains(*t.Date) {
				continue
			}
			seen[t.Date.Year()] = true
		}
	}
	collect(contributions)
	collect(expenditures)

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// sumInYear sums amounts dated in the given year, still bounded by the
// window (a date range may cover only part of a year).
func sumInYear(transactions []domain.Transaction, w domain.Window, year int) float64 {
	var total float64
	for _, t := range transactions {
		if t.Date == nil || t.Amount == nil {
			continue
		}
		if t.Date.Year() != year || !w.Contains(*t.Date) {
			continue
		}
		total += *t.Amount
	}
	return total
}

// ActivitySpan returns the earliest and latest dated activity across both
// record sets within the window. Nil results mean no dated records survive.
func ActivitySpan(contributions, expenditures []domain.Transaction, w domain.Window) (earliest, latest *time.Time) {
	consider := func(transactions []domain.Transaction) {
		for _, t := range transactions {
			if t.Date == nil || !w.Contains(*t.Date) {
				continue
			}
			d := *t.Date
			if earliest == nil || d.Before(*earliest) {
				earliest = &d
			}
			if latest == nil || d.After(*latest) {
				latest = &d
			}
		}
	}
	consider(contributions)
	consider(expenditures)
	return earliest, latest
}
