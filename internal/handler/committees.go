package handler

import (
	"net/http"

	"github.com/powens/iowa-disclosure-api/internal/domain"
	"github.com/powens/iowa-disclosure-api/internal/service"

	"go.uber.org/zap"
)

// optionsResponse carries the per-dimension filter options plus the
// committees matching the full selection.
type optionsResponse struct {
	Options    map[domain.Dimension][]string `json:"options"`
	Committees []domain.CommitteeResult      `json:"committees"`
}

// GET /v1/committees/options
//
// Narrows the committee index by every set filter (minus the optional
// exclude dimension) and reports the distinct values remaining per
// dimension. Dimensions absent from the upstream dataset are omitted from
// the options map.
func optionsHandler(search *service.Search, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exclude, err := parseExclude(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		sel := parseSelection(r)

		options, committees, err := search.Options(r.Context(), sel, exclude)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, optionsResponse{Options: options, Committees: committees})
	}
}

type committeesResponse struct {
	Committees []domain.CommitteeResult `json:"committees"`
	Count      int                      `json:"count"`
}

// GET /v1/committees
//
// Lists committees matching the filter selection, optionally restricted to
// those with contribution activity since a given date.
func committeesHandler(search *service.Search, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeSince, err := parseActiveSince(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		sel := parseSelection(r)

		committees, err := search.Find(r.Context(), sel, activeSince)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, committeesResponse{Committees: committees, Count: len(committees)})
	}
}
