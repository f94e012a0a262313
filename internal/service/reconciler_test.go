package service_test

import (
	"math"
	"testing"
	"time"

	"github.com/powens/iowa-disclosure-api/internal/domain"
	"github.com/powens/iowa-disclosure-api/internal/service"
)

func date(y, m, d int) *time.Time {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return &t
}

func amount(v float64) *float64 { return &v }

func contribution(d *time.Time, v float64, typ string) domain.Transaction {
	return domain.Transaction{Kind: domain.KindContribution, Date: d, Amount: amount(v), Type: typ}
}

func expenditure(d *time.Time, v float64) domain.Transaction {
	return domain.Transaction{Kind: domain.KindExpenditure, Date: d, Amount: amount(v)}
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestReconcile_YearWindowCarriesPriorBalance(t *testing.T) {
	contributions := []domain.Transaction{
		contribution(date(2022, 3, 1), 1000, "CON"),
		contribution(date(2023, 6, 15), 500, "CON"),
		contribution(date(2024, 2, 10), 500, "CON"),
	}
	expenditures := []domain.Transaction{
		expenditure(date(2023, 9, 1), 500),
		expenditure(date(2024, 5, 20), 300),
	}

	result := service.Reconcile(contributions, expenditures, domain.ForYear(2024))

	// 1500 raised minus 500 spent before 2024-01-01.
	if !almostEqual(result.StartingBalance, 1000) {
		t.Errorf("starting balance = %v, want 1000", result.StartingBalance)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Rows))
	}
	row := result.Rows[0]
	if row.Year != 2024 || !almostEqual(row.Contributions, 500) ||
		!almostEqual(row.Expenditures, 300) || !almostEqual(row.Net, 200) ||
		!almostEqual(row.EndingBalance, 1200) {
		t.Errorf("unexpected row: %+v", row)
	}
	if !almostEqual(result.EndingBalance, 1200) {
		t.Errorf("ending balance = %v, want 1200", result.EndingBalance)
	}
}

func TestReconcile_AllTimeRunningBalance(t *testing.T) {
	contributions := []domain.Transaction{
		contribution(date(2022, 1, 10), 2000, "CON"),
		contribution(date(2023, 4, 1), 1000, "CON"),
	}
	expenditures := []domain.Transaction{
		expenditure(date(2022, 11, 5), 500),
		expenditure(date(2023, 8, 20), 1200),
	}

	result := service.Reconcile(contributions, expenditures, domain.AllTime())

	if result.StartingBalance != 0 {
		t.Errorf("all-time starting balance = %v, want 0", result.StartingBalance)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	if !almostEqual(result.Rows[0].EndingBalance, 1500) {
		t.Errorf("2022 ending balance = %v, want 1500", result.Rows[0].EndingBalance)
	}
	if !almostEqual(result.Rows[1].EndingBalance, 1300) {
		t.Errorf("2023 ending balance = %v, want 1300", result.Rows[1].EndingBalance)
	}
	// Each row's ending balance equals the prior row's plus this year's net.
	running := result.StartingBalance
	for _, row := range result.Rows {
		running += row.Net
		if !almostEqual(row.EndingBalance, running) {
			t.Errorf("year %d breaks balance continuity: %v != %v", row.Year, row.EndingBalance, running)
		}
	}
}

func TestReconcile_NonCashExcludedFromBalance(t *testing.T) {
	contributions := []domain.Transaction{
		contribution(date(2023, 2, 1), 10000, "LOAN"),
		contribution(date(2023, 3, 1), 250, "INK"),
		contribution(date(2024, 1, 15), 400, "con "), // code matching is trimmed, case-insensitive
	}
	expenditures := []domain.Transaction{
		expenditure(date(2023, 7, 1), 100),
	}

	result := service.Reconcile(contributions, expenditures, domain.AllTime())

	if len(result.Rows) != 2 {
		t.Fatalf("expected rows for 2023 and 2024, got %d", len(result.Rows))
	}
	// 2023 has activity (a loan and an expenditure) but no cash raised.
	if !almostEqual(result.Rows[0].Contributions, 0) || !almostEqual(result.Rows[0].Net, -100) {
		t.Errorf("2023 row = %+v, want zero contributions and net -100", result.Rows[0])
	}
	if !almostEqual(result.Rows[1].Contributions, 400) {
		t.Errorf("2024 row = %+v, want 400 in cash contributions", result.Rows[1])
	}
	if !almostEqual(result.EndingBalance, 300) {
		t.Errorf("ending balance = %v, want 300", result.EndingBalance)
	}
}

func TestReconcile_RangeWindowBoundsInclusive(t *testing.T) {
	contributions := []domain.Transaction{
		contribution(date(2024, 1, 1), 100, "CON"),
		contribution(date(2024, 6, 30), 200, "CON"),
		contribution(date(2024, 7, 1), 400, "CON"),
	}

	w := domain.ForRange(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	)
	result := service.Reconcile(contributions, nil, w)

	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Rows))
	}
	if !almostEqual(result.Rows[0].Contributions, 300) {
		t.Errorf("in-range contributions = %v, want 300", result.Rows[0].Contributions)
	}
}

func TestReconcile_UndatedAndUnparseableIgnored(t *testing.T) {
	contributions := []domain.Transaction{
		{Kind: domain.KindContribution, Date: nil, Amount: amount(999), Type: "CON"},
		{Kind: domain.KindContribution, Date: date(2024, 3, 1), Amount: nil, Type: "CON"},
		contribution(date(2024, 3, 2), 50, "CON"),
	}

	result := service.Reconcile(contributions, nil, domain.ForYear(2024))

	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Rows))
	}
	if !almostEqual(result.Rows[0].Contributions, 50) {
		t.Errorf("contributions = %v, want 50", result.Rows[0].Contributions)
	}
}

func TestTotalAmount_IncludesAllContributionTypes(t *testing.T) {
	contributions := []domain.Transaction{
		contribution(date(2024, 1, 1), 100, "CON"),
		contribution(date(2024, 2, 1), 5000, "LOAN"),
		{Kind: domain.KindContribution, Date: nil, Amount: amount(25), Type: "CON"},
	}

	if total := service.TotalAmount(contributions, domain.AllTime()); !almostEqual(total, 5125) {
		t.Errorf("all-time total = %v, want 5125 (undated records count)", total)
	}
	if total := service.TotalAmount(contributions, domain.ForYear(2024)); !almostEqual(total, 5100) {
		t.Errorf("2024 total = %v, want 5100 (undated records excluded)", total)
	}
}

func TestActivitySpan(t *testing.T) {
	contributions := []domain.Transaction{
		contribution(date(2022, 5, 1), 10, "CON"),
		contribution(date(2024, 8, 15), 10, "CON"),
	}
	expenditures := []domain.Transaction{
		expenditure(date(2025, 1, 3), 10),
	}

	earliest, latest := service.ActivitySpan(contributions, expenditures, domain.AllTime())
	if earliest == nil || !earliest.Equal(*date(2022, 5, 1)) {
		t.Errorf("earliest = %v, want 2022-05-01", earliest)
	}
	if latest == nil || !latest.Equal(*date(2025, 1, 3)) {
		t.Errorf("latest = %v, want 2025-01-03", latest)
	}

	earliest, latest = service.ActivitySpan(contributions, expenditures, domain.ForYear(2023))
	if earliest != nil || latest != nil {
		t.Errorf("expected nil span for an empty year, got %v / %v", earliest, latest)
	}
}
