package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/powens/iowa-disclosure-api/internal/domain"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var validation *domain.ErrValidation
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &external):
		logger.Error("upstream failure", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseSelection reads the filter dimensions from query parameters.
// Categories accept both repeated parameters and comma-separated lists.
func parseSelection(r *http.Request) domain.FilterSelection {
	q := r.URL.Query()

	var categories []string
	for _, raw := range q["category"] {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				categories = append(categories, c)
			}
		}
	}

	return domain.FilterSelection{
		Categories:   categories,
		ElectionYear: strings.TrimSpace(q.Get("election_year")),
		Party:        strings.TrimSpace(q.Get("party")),
		Office:       strings.TrimSpace(q.Get("office")),
		District:     strings.TrimSpace(q.Get("district")),
		Candidate:    strings.TrimSpace(q.Get("candidate")),
		Committee:    strings.TrimSpace(q.Get("committee")),
	}
}

// parseWindow reads the reporting window from query parameters: either a
// single "year" or a "from"/"to" date pair, never both. No parameters means
// all time.
func parseWindow(r *http.Request) (domain.Window, error) {
	q := r.URL.Query()
	yearParam := strings.TrimSpace(q.Get("year"))
	fromParam := strings.TrimSpace(q.Get("from"))
	toParam := strings.TrimSpace(q.Get("to"))

	if yearParam != "" && (fromParam != "" || toParam != "") {
		return domain.Window{}, &domain.ErrValidation{
			Field:   "year",
			Message: "year and from/to are mutually exclusive",
		}
	}

	if yearParam != "" {
		year, err := strconv.Atoi(yearParam)
		if err != nil {
			return domain.Window{}, &domain.ErrValidation{Field: "year", Message: "must be a number"}
		}
		return domain.ForYear(year), nil
	}

	if fromParam != "" || toParam != "" {
		if fromParam == "" || toParam == "" {
			return domain.Window{}, &domain.ErrValidation{
				Field:   "from",
				Message: "from and to must be provided together",
			}
		}
		from, err := time.Parse("2006-01-02", fromParam)
		if err != nil {
			return domain.Window{}, &domain.ErrValidation{Field: "from", Message: "must be YYYY-MM-DD"}
		}
		to, err := time.Parse("2006-01-02", toParam)
		if err != nil {
			return domain.Window{}, &domain.ErrValidation{Field: "to", Message: "must be YYYY-MM-DD"}
		}
		if to.Before(from) {
			return domain.Window{}, &domain.ErrValidation{Field: "to", Message: "must not precede from"}
		}
		// Make the upper bound inclusive for the whole day.
		return domain.ForRange(from, to.Add(24*time.Hour-time.Nanosecond)), nil
	}

	return domain.AllTime(), nil
}

// parseExclude validates the optional exclude parameter against the known
// filter dimensions.
func parseExclude(r *http.Request) (domain.Dimension, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("exclude"))
	if raw == "" {
		return "", nil
	}
	dim := domain.Dimension(raw)
	switch dim {
	case domain.DimCategory, domain.DimCommitteeType, domain.DimElectionYear,
		domain.DimParty, domain.DimOffice, domain.DimDistrict,
		domain.DimCandidate, domain.DimCommittee:
		return dim, nil
	}
	return "", &domain.ErrValidation{Field: "exclude", Message: "unknown dimension: " + raw}
}

// parseActiveSince reads the optional activity cutoff date.
func parseActiveSince(r *http.Request) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("active_since"))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "active_since", Message: "must be YYYY-MM-DD"}
	}
	return &t, nil
}
