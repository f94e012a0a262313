package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/powens/iowa-disclosure-api/internal/domain"
	"github.com/powens/iowa-disclosure-api/internal/report"
	"github.com/powens/iowa-disclosure-api/internal/service"

	"go.uber.org/zap"
)

// GET /v1/committees/{name}/contributions.csv
// GET /v1/committees/{name}/expenditures.csv
//
// Streams the committee's raw window-filtered rows, columns exactly as the
// portal published them.
func csvHandler(ledger *service.Ledger, dataset string, logger *zap.Logger) http.HandlerFunc {
	kind := domain.KindContribution
	if dataset == "expenditures" {
		kind = domain.KindExpenditure
	}

	return func(w http.ResponseWriter, r *http.Request) {
		window, err := parseWindow(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		name := committeeName(r)

		set, err := ledger.Transactions(r.Context(), name, kind, window)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s_%s.csv"`, exportSlug(name), dataset))
		if err := report.WriteCSV(w, set); err != nil {
			logger.Error("csv export failed",
				zap.String("committee", name),
				zap.String("dataset", dataset),
				zap.Error(err),
			)
		}
	}
}

// GET /v1/committees/{name}/report.pdf
func pdfHandler(ledger *service.Ledger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := parseWindow(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		name := committeeName(r)
		ctx := r.Context()

		summary, err := ledger.Summary(ctx, name, window)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		reconciliation, err := ledger.Reconciliation(ctx, name, window)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		charts, err := ledger.Charts(ctx, name, window)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		doc, err := report.BuildPDF(summary, reconciliation, charts, window)
		if err != nil {
			logger.Error("pdf export failed", zap.String("committee", name), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "report generation failed")
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s_report.pdf"`, exportSlug(name)))
		w.Write(doc)
	}
}

// exportSlug makes a committee name safe for a download filename.
func exportSlug(name string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '_'
		}
		return -1
	}, name)
	if slug == "" {
		return "committee"
	}
	return slug
}
