package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/powens/iowa-disclosure-api/internal/domain"
)

// WindowLabel names the reporting window on the cover line.
func WindowLabel(w domain.Window) string {
	if year, ok := w.Year(); ok {
		return fmt.Sprintf("Calendar year %d", year)
	}
	if start, end, ok := w.Range(); ok {
		return start.Format("2006-01-02") + " through " + end.Format("2006-01-02")
	}
	return "All time"
}

// BuildPDF renders the committee summary report. The ledger table mirrors the
// JSON ledger rows exactly, so the two surfaces never disagree.
func BuildPDF(summary *domain.CommitteeSummary, ledger *domain.LedgerResult, charts *domain.ChartData, w domain.Window) ([]byte, error) {
	reportID := uuid.NewString()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10,
			fmt.Sprintf("Report %s - generated %s - page %d",
				reportID, time.Now().UTC().Format("2006-01-02 15:04 MST"), pdf.PageNo()),
			"", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, summary.Name, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if summary.Candidate != "" {
		pdf.CellFormat(0, 6, "Candidate: "+summary.Candidate, "", 1, "L", false, 0, "")
	}
	detail := summary.Type
	if summary.Party != "" {
		detail += " - " + summary.Party
	}
	if summary.Office != "" {
		detail += " - " + summary.Office
		if summary.District != "" {
			detail += " (District " + summary.District + ")"
		}
	}
	if detail != "" {
		pdf.CellFormat(0, 6, detail, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, "Window: "+WindowLabel(w), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	writeTotals(pdf, summary)
	writeLedger(pdf, ledger)
	writeRanking(pdf, "Top Donors", charts.TopDonors)
	writeRanking(pdf, "Top Recipients", charts.TopRecipients)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTotals(pdf *fpdf.Fpdf, summary *domain.CommitteeSummary) {
	sectionHeader(pdf, "Totals")

	rows := []struct {
		label string
		value string
	}{
		{"Total raised", money(summary.TotalRaised)},
		{"Total spent", money(summary.TotalSpent)},
		{"Cash on hand", money(summary.CashOnHand)},
		{"Contributions", fmt.Sprintf("%d", summary.ContributionCount)},
		{"Expenditures", fmt.Sprintf("%d", summary.ExpenditureCount)},
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, r := range rows {
		pdf.CellFormat(50, 6, r.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, r.value, "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

func writeLedger(pdf *fpdf.Fpdf, ledger *domain.LedgerResult) {
	sectionHeader(pdf, "Cash on Hand by Year")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(90, 6, "Starting balance", "", 0, "L", false, 0, "")
	pdf.CellFormat(38, 6, money(ledger.StartingBalance), "", 1, "R", false, 0, "")
	pdf.Ln(2)

	headers := []string{"Year", "Contributions", "Expenditures", "Net", "Ending Balance"}
	widths := []float64{20, 38, 38, 38, 38}

	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range ledger.Rows {
		pdf.CellFormat(widths[0], 6, fmt.Sprintf("%d", row.Year), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, money(row.Contributions), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, money(row.Expenditures), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, money(row.Net), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, money(row.EndingBalance), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(widths[0]+widths[1]+widths[2]+widths[3], 7, "Ending balance", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[4], 7, money(ledger.EndingBalance), "1", 1, "R", false, 0, "")
	pdf.Ln(4)
}

func writeRanking(pdf *fpdf.Fpdf, title string, entries []domain.RankedEntry) {
	if len(entries) == 0 {
		return
	}
	sectionHeader(pdf, title)

	pdf.SetFont("Helvetica", "", 9)
	for _, e := range entries {
		pdf.CellFormat(120, 6, e.Label, "", 0, "L", false, 0, "")
		pdf.CellFormat(38, 6, money(e.Amount), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

func sectionHeader(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
