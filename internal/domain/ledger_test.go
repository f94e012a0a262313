package domain_test

import (
	"testing"
	"time"

	"github.com/powens/iowa-disclosure-api/internal/domain"
)

func TestWindow_Contains(t *testing.T) {
	all := domain.AllTime()
	if !all.Contains(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("all-time window must contain everything")
	}

	year := domain.ForYear(2024)
	if !year.Contains(time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)) {
		t.Error("year window must contain the last instant of the year")
	}
	if year.Contains(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("year window must not contain the next year")
	}

	r := domain.ForRange(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	)
	if !r.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) ||
		!r.Contains(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Error("range window bounds are inclusive")
	}
	if r.Contains(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("range window must exclude dates past the end")
	}
}

func TestWindow_Start(t *testing.T) {
	if _, ok := domain.AllTime().Start(); ok {
		t.Error("all-time window has no start")
	}

	start, ok := domain.ForYear(2024).Start()
	if !ok || !start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("year window start = %v", start)
	}

	from := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	start, ok = domain.ForRange(from, from.AddDate(0, 1, 0)).Start()
	if !ok || !start.Equal(from) {
		t.Errorf("range window start = %v", start)
	}
}

func TestTransaction_IsCash(t *testing.T) {
	tests := []struct {
		typ  string
		want bool
	}{
		{"CON", true},
		{"con", true},
		{" CON ", true},
		{"LOAN", false},
		{"INK", false},
		{"", false},
	}
	for _, tt := range tests {
		tx := domain.Transaction{Type: tt.typ}
		if got := tx.IsCash(); got != tt.want {
			t.Errorf("IsCash(%q) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestExpandCategories_OtherCatchAll(t *testing.T) {
	allTypes := []string{"Governor", "State House", "Totally New Type", "School Board Candidate"}

	types := domain.ExpandCategories([]string{"Other"}, allTypes)

	if !types["School Board Candidate"] {
		t.Error("explicit Other types must match")
	}
	if !types["Totally New Type"] {
		t.Error("types outside every bucket must fall into Other")
	}
	if types["Governor"] || types["State House"] {
		t.Error("types claimed by a bucket must not fall into Other")
	}
}
