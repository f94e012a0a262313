package service_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/powens/iowa-disclosure-api/internal/domain"
	"github.com/powens/iowa-disclosure-api/internal/service"
)

func TestBuildCharts_TopDonors(t *testing.T) {
	contributions := []domain.Transaction{
		{Kind: domain.KindContribution, Date: date(2024, 1, 5), Amount: amount(100), Contributor: "Alice Adams", State: "IA"},
		{Kind: domain.KindContribution, Date: date(2024, 2, 5), Amount: amount(400), Contributor: "Alice Adams", State: "IA"},
		{Kind: domain.KindContribution, Date: date(2024, 3, 5), Amount: amount(300), Contributor: "Acme Corp"},
		{Kind: domain.KindContribution, Date: date(2024, 4, 5), Amount: amount(9000), Contributor: "Bob Brown", State: "MN", Type: "LOAN"},
	}

	charts := service.BuildCharts(contributions, nil, domain.AllTime())

	if len(charts.TopDonors) != 3 {
		t.Fatalf("expected 3 donors, got %d", len(charts.TopDonors))
	}
	// Loans still count toward donor totals; only the ledger is cash-gated.
	if charts.TopDonors[0].Label != "Bob Brown (MN)" || charts.TopDonors[0].Amount != 9000 {
		t.Errorf("top donor = %+v, want Bob Brown (MN) at 9000", charts.TopDonors[0])
	}
	if charts.TopDonors[1].Label != "Alice Adams (IA)" || charts.TopDonors[1].Amount != 500 {
		t.Errorf("second donor = %+v, want Alice Adams (IA) at 500", charts.TopDonors[1])
	}
	if charts.TopDonors[2].Label != "Acme Corp" {
		t.Errorf("donor without state should use the bare name, got %q", charts.TopDonors[2].Label)
	}

	var shares float64
	for _, e := range charts.TopDonors {
		shares += e.Share
	}
	if shares < 0.999 || shares > 1.001 {
		t.Errorf("shares sum to %v, want 1", shares)
	}
}

func TestBuildCharts_TruncatesToTopFive(t *testing.T) {
	var contributions []domain.Transaction
	for i := 0; i < 8; i++ {
		contributions = append(contributions, domain.Transaction{
			Kind:        domain.KindContribution,
			Date:        date(2024, 1, i+1),
			Amount:      amount(float64(100 * (i + 1))),
			Contributor: fmt.Sprintf("Donor %d", i),
		})
	}

	charts := service.BuildCharts(contributions, nil, domain.AllTime())

	if len(charts.TopDonors) != 5 {
		t.Fatalf("expected top 5 donors, got %d", len(charts.TopDonors))
	}
	if charts.TopDonors[0].Label != "Donor 7" {
		t.Errorf("largest donor first, got %q", charts.TopDonors[0].Label)
	}
}

func TestBuildCharts_StatesByDonorsCountsDistinct(t *testing.T) {
	contributions := []domain.Transaction{
		{Kind: domain.KindContribution, Date: date(2024, 1, 1), Amount: amount(10), Contributor: "A", State: "IA"},
		{Kind: domain.KindContribution, Date: date(2024, 1, 2), Amount: amount(10), Contributor: "A", State: "IA"},
		{Kind: domain.KindContribution, Date: date(2024, 1, 3), Amount: amount(10), Contributor: "B", State: "IA"},
		{Kind: domain.KindContribution, Date: date(2024, 1, 4), Amount: amount(10), Contributor: "C", State: "MN"},
	}

	charts := service.BuildCharts(contributions, nil, domain.AllTime())

	if len(charts.StatesByDonors) != 2 {
		t.Fatalf("expected 2 states, got %d", len(charts.StatesByDonors))
	}
	if charts.StatesByDonors[0].Label != "IA" || charts.StatesByDonors[0].Count != 2 {
		t.Errorf("IA = %+v, want 2 distinct donors", charts.StatesByDonors[0])
	}
}

func TestBuildCharts_MonthlyTotalsAscending(t *testing.T) {
	contributions := []domain.Transaction{
		{Kind: domain.KindContribution, Date: date(2024, 3, 10), Amount: amount(30)},
		{Kind: domain.KindContribution, Date: date(2024, 1, 10), Amount: amount(10)},
		{Kind: domain.KindContribution, Date: date(2024, 1, 20), Amount: amount(15)},
		{Kind: domain.KindContribution, Date: date(2023, 12, 31), Amount: amount(5)},
	}

	charts := service.BuildCharts(contributions, nil, domain.AllTime())

	want := []domain.MonthlyPoint{
		{Month: "2023-12", Amount: 5},
		{Month: "2024-01", Amount: 25},
		{Month: "2024-03", Amount: 30},
	}
	if !reflect.DeepEqual(charts.MonthlyTotals, want) {
		t.Errorf("monthly totals = %v, want %v", charts.MonthlyTotals, want)
	}
}

func TestBuildCharts_WindowFiltersBothSets(t *testing.T) {
	contributions := []domain.Transaction{
		{Kind: domain.KindContribution, Date: date(2023, 5, 1), Amount: amount(100), Contributor: "Old Donor"},
		{Kind: domain.KindContribution, Date: date(2024, 5, 1), Amount: amount(200), Contributor: "New Donor"},
	}
	expenditures := []domain.Transaction{
		{Kind: domain.KindExpenditure, Date: date(2023, 6, 1), Amount: amount(50), Recipient: "Old Vendor"},
		{Kind: domain.KindExpenditure, Date: date(2024, 6, 1), Amount: amount(75), Recipient: "New Vendor"},
	}

	charts := service.BuildCharts(contributions, expenditures, domain.ForYear(2024))

	if len(charts.TopDonors) != 1 || charts.TopDonors[0].Label != "New Donor" {
		t.Errorf("donors = %v, want only New Donor", charts.TopDonors)
	}
	if len(charts.TopRecipients) != 1 || charts.TopRecipients[0].Label != "New Vendor" {
		t.Errorf("recipients = %v, want only New Vendor", charts.TopRecipients)
	}
}
