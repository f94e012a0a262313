package handler

import (
	"net/http"
	"net/url"

	"github.com/powens/iowa-disclosure-api/internal/domain"
	"github.com/powens/iowa-disclosure-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// committeeName extracts the committee name path parameter. Names contain
// spaces and punctuation, so clients send them percent-encoded.
func committeeName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// GET /v1/committees/{name}/summary
func summaryHandler(ledger *service.Ledger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := parseWindow(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		summary, err := ledger.Summary(r.Context(), committeeName(r), window)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

// GET /v1/committees/{name}/ledger
func ledgerHandler(ledger *service.Ledger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := parseWindow(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		result, err := ledger.Reconciliation(r.Context(), committeeName(r), window)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// GET /v1/committees/{name}/charts
func chartsHandler(ledger *service.Ledger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := parseWindow(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		charts, err := ledger.Charts(r.Context(), committeeName(r), window)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, charts)
	}
}

type metadataResponse struct {
	Datasets []domain.DatasetMetadata `json:"datasets"`
}

// GET /v1/metadata
func metadataHandler(ledger *service.Ledger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meta, err := ledger.Metadata(r.Context())
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, metadataResponse{Datasets: meta})
	}
}
