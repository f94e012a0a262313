package service

import (
	"context"
	"fmt"
	"time"

	"github.com/powens/iowa-disclosure-api/internal/domain"
	"github.com/powens/iowa-disclosure-api/internal/infra/observability"
	"github.com/powens/iowa-disclosure-api/internal/port"
	"github.com/powens/iowa-disclosure-api/internal/schema"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/disclosure")

const indexCacheKey = "committee_index"

// Search resolves filter options and committee lists over the committee
// registry dataset. The normalized index is cached without expiry; a restart
// picks up new registrations, which the portal publishes rarely.
type Search struct {
	fetcher              port.DatasetFetcher
	committeeDataset     string
	contributionsDataset string
	indexCache           port.Cache[domain.CommitteeIndex]
	activityCache        port.Cache[map[string]bool]
	metrics              *observability.Metrics
	logger               *zap.Logger
}

// NewSearch creates the search service with all dependencies injected.
func NewSearch(
	fetcher port.DatasetFetcher,
	committeeDataset, contributionsDataset string,
	indexCache port.Cache[domain.CommitteeIndex],
	activityCache port.Cache[map[string]bool],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Search {
	return &Search{
		fetcher:              fetcher,
		committeeDataset:     committeeDataset,
		contributionsDataset: contributionsDataset,
		indexCache:           indexCache,
		activityCache:        activityCache,
		metrics:              metrics,
		logger:               logger,
	}
}

// Index returns the normalized committee index, fetching the full registry
// dataset on the first call.
func (s *Search) Index(ctx context.Context) (domain.CommitteeIndex, error) {
	ctx, span := tracer.Start(ctx, "Search.Index")
	defer span.End()

	if idx, ok := s.indexCache.Get(indexCacheKey); ok {
		s.metrics.IncrCacheHit("index")
		return idx, nil
	}
	s.metrics.IncrCacheMiss("index")

	rows, err := s.fetcher.FetchAll(ctx, s.committeeDataset)
	if err != nil {
		s.metrics.IncrUpstreamError("committees")
		s.logger.Error("failed to fetch committee registry",
			zap.String("dataset", s.committeeDataset),
			zap.Error(err),
		)
		return domain.CommitteeIndex{}, fmt.Errorf("committee registry fetch: %w", err)
	}
	s.metrics.AddRecordsFetched("committees", len(rows))

	idx := schema.NormalizeCommittees(rows)
	s.logger.Info("committee index loaded",
		zap.Int("raw_rows", len(rows)),
		zap.Int("committees", len(idx.Committees)),
	)
	s.indexCache.Set(indexCacheKey, idx)
	return idx, nil
}

// Options narrows the index by every set dimension except exclude and
// reports the distinct values remaining per dimension, plus the committees
// matching the full selection.
func (s *Search) Options(ctx context.Context, sel domain.FilterSelection, exclude domain.Dimension) (map[domain.Dimension][]string, []domain.CommitteeResult, error) {
	ctx, span := tracer.Start(ctx, "Search.Options")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("options", time.Since(start))
	}()

	idx, err := s.Index(ctx)
	if err != nil {
		return nil, nil, err
	}

	options, _ := ResolveOptions(idx, sel, exclude)
	matched := Narrow(idx, sel, "")
	return options, Results(matched), nil
}

// Find returns the committees matching the selection. When activeSince is
// non-nil the list is further restricted to committees with contributions on
// or after that date, resolved server-side against the contributions dataset.
func (s *Search) Find(ctx context.Context, sel domain.FilterSelection, activeSince *time.Time) ([]domain.CommitteeResult, error) {
	ctx, span := tracer.Start(ctx, "Search.Find")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("find", time.Since(start))
	}()

	idx, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}
	results := Results(Narrow(idx, sel, ""))

	if activeSince == nil {
		return results, nil
	}
	active, err := s.activeCommittees(ctx, *activeSince)
	if err != nil {
		return nil, err
	}
	filtered := results[:0:0]
	for _, r := range results {
		if active[r.Name] {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// activeCommittees returns the set of committee names with contributions on
// or after the given date. The contributions dataset publishes under fixed
// column names, so the server-side query names them directly rather than
// going through alias resolution.
func (s *Search) activeCommittees(ctx context.Context, since time.Time) (map[string]bool, error) {
	ctx, span := tracer.Start(ctx, "Search.activeCommittees")
	defer span.End()
	span.SetAttributes(attribute.String("since", since.Format("2006-01-02")))

	cacheKey := "active_since:" + since.Format("2006-01-02")
	if names, ok := s.activityCache.Get(cacheKey); ok {
		s.metrics.IncrCacheHit("transactions")
		return names, nil
	}
	s.metrics.IncrCacheMiss("transactions")

	rows, err := s.fetcher.Fetch(ctx, s.contributionsDataset, port.Query{
		Select: "DISTINCT committee_nm",
		Where:  fmt.Sprintf("date >= '%s'", since.Format("2006-01-02T00:00:00")),
		Limit:  200000,
	})
	if err != nil {
		s.metrics.IncrUpstreamError("contributions")
		return nil, fmt.Errorf("active committee query: %w", err)
	}

	names := make(map[string]bool, len(rows))
	for _, row := range rows {
		if name, ok := row["committee_nm"].(string); ok && name != "" {
			names[name] = true
		}
	}
	s.activityCache.Set(cacheKey, names)
	return names, nil
}
