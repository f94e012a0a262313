package service

import (
	"sort"

	"github.com/powens/iowa-disclosure-api/internal/domain"
)

const topN = 5

// BuildCharts computes the five summary aggregations for a committee's
// window-filtered transactions. Charts use all contributions (not just
// cash), matching the totals rather than the ledger.
func BuildCharts(contributions, expenditures []domain.Transaction, w domain.Window) domain.ChartData {
	var contribs, expends []domain.Transaction
	for _, t := range contributions {
		if w.IsAllTime() || (t.Date != nil && w.Contains(*t.Date)) {
			contribs = append(contribs, t)
		}
	}
	for _, t := range expenditures {
		if w.IsAllTime() || (t.Date != nil && w.Contains(*t.Date)) {
			expends = append(expends, t)
		}
	}

	return domain.ChartData{
		StatesByDonors: statesByDonors(contribs),
		StatesByAmount: statesByAmount(contribs),
		TopDonors:      topDonors(contribs),
		MonthlyTotals:  monthlyTotals(contribs),
		TopRecipients:  topRecipients(expends),
	}
}

// statesByDonors ranks states by the number of distinct donors.
func statesByDonors(contribs []domain.Transaction) []domain.RankedEntry {
	donors := make(map[string]map[string]bool)
	for _, t := range contribs {
		if t.State == "" || t.Contributor == "" {
			continue
		}
		if donors[t.State] == nil {
			donors[t.State] = make(map[string]bool)
		}
		donors[t.State][t.Contributor] = true
	}

	entries := make([]domain.RankedEntry, 0, len(donors))
	for state, set := range donors {
		entries = append(entries, domain.RankedEntry{Label: state, Count: len(set)})
	}
	sortByCount(entries)
	entries = truncate(entries)

	var total int
	for _, e := range entries {
		total += e.Count
	}
	for i := range entries {
		if total > 0 {
			entries[i].Share = float64(entries[i].Count) / float64(total)
		}
	}
	return entries
}

// statesByAmount ranks states by total donation amount.
func statesByAmount(contribs []domain.Transaction) []domain.RankedEntry {
	return rankBySum(contribs, func(t domain.Transaction) string { return t.State })
}

// topDonors ranks donors by total donation amount, labelling each with the
// donor's state when known.
func topDonors(contribs []domain.Transaction) []domain.RankedEntry {
	return rankBySum(contribs, func(t domain.Transaction) string {
		if t.Contributor == "" {
			return ""
		}
		if t.State != "" {
			return t.Contributor + " (" + t.State + ")"
		}
		return t.Contributor
	})
}

// topRecipients ranks expenditure recipients by total amount.
func topRecipients(expends []domain.Transaction) []domain.RankedEntry {
	return rankBySum(expends, func(t domain.Transaction) string { return t.Recipient })
}

// monthlyTotals sums contribution amounts per calendar month, ascending.
func monthlyTotals(contribs []domain.Transaction) []domain.MonthlyPoint {
	byMonth := make(map[string]float64)
	for _, t := range contribs {
		if t.Date == nil || t.Amount == nil {
			continue
		}
		byMonth[t.Date.Format("2006-01")] += *t.Amount
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	points := make([]domain.MonthlyPoint, 0, len(months))
	for _, m := range months {
		points = append(points, domain.MonthlyPoint{Month: m, Amount: byMonth[m]})
	}
	return points
}

// rankBySum groups transactions by label, sums their amounts, and returns
// the top entries with their share of the top-group total.
func rankBySum(transactions []domain.Transaction, label func(domain.Transaction) string) []domain.RankedEntry {
	sums := make(map[string]float64)
	for _, t := range transactions {
		l := label(t)
		if l == "" || t.Amount == nil {
			continue
		}
		sums[l] += *t.Amount
	}

	entries := make([]domain.RankedEntry, 0, len(sums))
	for l, amount := range sums {
		entries = append(entries, domain.RankedEntry{Label: l, Amount: amount})
	}
	sortByAmount(entries)
	entries = truncate(entries)

	var total float64
	for _, e := range entries {
		total += e.Amount
	}
	for i := range entries {
		if total > 0 {
			entries[i].Share = entries[i].Amount / total
		}
	}
	return entries
}

func sortByAmount(entries []domain.RankedEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Amount == entries[j].Amount {
			return entries[i].Label < entries[j].Label
		}
		return entries[i].Amount > entries[j].Amount
	})
}

func sortByCount(entries []domain.RankedEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count == entries[j].Count {
			return entries[i].Label < entries[j].Label
		}
		return entries[i].Count > entries[j].Count
	})
}

func truncate(entries []domain.RankedEntry) []domain.RankedEntry {
	if len(entries) > topN {
		return entries[:topN]
	}
	return entries
}
