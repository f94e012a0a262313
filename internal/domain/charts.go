package domain

// RankedEntry is one bar of a top-N chart. Share is the entry's fraction of
// the chart's own total (matching the percentage labels the frontend draws).
type RankedEntry struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount,omitempty"`
	Count  int     `json:"count,omitempty"`
	Share  float64 `json:"share"`
}

// MonthlyPoint is one point of the donations-over-time line, keyed by
// calendar month in YYYY-MM form.
type MonthlyPoint struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// ChartData carries the five summary aggregations for a committee within the
// active window.
type ChartData struct {
	StatesByDonors []RankedEntry  `json:"states_by_donors"`
	StatesByAmount []RankedEntry  `json:"states_by_amount"`
	TopDonors      []RankedEntry  `json:"top_donors"`
	MonthlyTotals  []MonthlyPoint `json:"monthly_totals"`
	TopRecipients  []RankedEntry  `json:"top_recipients"`
}
