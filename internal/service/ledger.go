package service

import (
	"context"
	"fmt"
	"time"

	"github.com/powens/iowa-disclosure-api/internal/domain"
	"github.com/powens/iowa-disclosure-api/internal/infra/observability"
	"github.com/powens/iowa-disclosure-api/internal/infra/socrata"
	"github.com/powens/iowa-disclosure-api/internal/port"
	"github.com/powens/iowa-disclosure-api/internal/schema"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CommitteeData couples a committee's full contribution and expenditure
// history. Both datasets are pulled unwindowed so one cache entry serves
// every window the caller asks for.
type CommitteeData struct {
	Contributions domain.TransactionSet
	Expenditures  domain.TransactionSet
}

// Ledger serves per-committee financial views: summaries, cash-on-hand
// reconciliation, chart aggregations, and raw exports.
type Ledger struct {
	fetcher              port.DatasetFetcher
	search               *Search
	contributionsDataset string
	expendituresDataset  string
	txCache              port.Cache[CommitteeData]
	metaCache            port.Cache[[]domain.DatasetMetadata]
	metrics              *observability.Metrics
	logger               *zap.Logger

	datasets map[string]string // logical name -> dataset id, for metadata
}

// NewLedger creates the ledger service with all dependencies injected.
func NewLedger(
	fetcher port.DatasetFetcher,
	search *Search,
	committeeDataset, contributionsDataset, expendituresDataset string,
	txCache port.Cache[CommitteeData],
	metaCache port.Cache[[]domain.DatasetMetadata],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Ledger {
	return &Ledger{
		fetcher:              fetcher,
		search:               search,
		contributionsDataset: contributionsDataset,
		expendituresDataset:  expendituresDataset,
		txCache:              txCache,
		metaCache:            metaCache,
		metrics:              metrics,
		logger:               logger,
		datasets: map[string]string{
			"committees":    committeeDataset,
			"contributions": contributionsDataset,
			"expenditures":  expendituresDataset,
		},
	}
}

// Load fetches a committee's full transaction history, both kinds
// concurrently, and caches the normalized result. A committee with no record
// in either dataset is reported as not found.
func (l *Ledger) Load(ctx context.Context, committee string) (CommitteeData, error) {
	ctx, span := tracer.Start(ctx, "Ledger.Load")
	defer span.End()
	span.SetAttributes(attribute.String("committee", committee))

	if committee == "" {
		return CommitteeData{}, &domain.ErrValidation{Field: "committee", Message: "must not be empty"}
	}

	cacheKey := "tx:" + committee
	if data, ok := l.txCache.Get(cacheKey); ok {
		l.metrics.IncrCacheHit("transactions")
		return data, nil
	}
	l.metrics.IncrCacheMiss("transactions")

	where := fmt.Sprintf("committee_nm='%s'", socrata.EscapeString(committee))

	var contribRows, expendRows []domain.Row
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := l.fetcher.Fetch(gCtx, l.contributionsDataset, port.Query{Select: "*", Where: where})
		if err != nil {
			l.metrics.IncrUpstreamError("contributions")
			return fmt.Errorf("contributions fetch: %w", err)
		}
		contribRows = rows
		return nil
	})
	g.Go(func() error {
		rows, err := l.fetcher.Fetch(gCtx, l.expendituresDataset, port.Query{Select: "*", Where: where})
		if err != nil {
			l.metrics.IncrUpstreamError("expenditures")
			return fmt.Errorf("expenditures fetch: %w", err)
		}
		expendRows = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		l.logger.Error("failed to load committee history",
			zap.String("committee", committee),
			zap.Error(err),
		)
		return CommitteeData{}, err
	}
	l.metrics.AddRecordsFetched("contributions", len(contribRows))
	l.metrics.AddRecordsFetched("expenditures", len(expendRows))

	if len(contribRows) == 0 && len(expendRows) == 0 {
		return CommitteeData{}, &domain.ErrNotFound{Resource: "committee", ID: committee}
	}

	data := CommitteeData{
		Contributions: schema.NormalizeContributions(contribRows),
		Expenditures:  schema.NormalizeExpenditures(expendRows),
	}
	l.txCache.Set(cacheKey, data)
	return data, nil
}

// Summary builds the headline numbers for a committee under the window.
func (l *Ledger) Summary(ctx context.Context, committee string, w domain.Window) (*domain.CommitteeSummary, error) {
	ctx, span := tracer.Start(ctx, "Ledger.Summary")
	defer span.End()

	start := time.Now()
	defer func() {
		l.metrics.RecordRequestDuration("summary", time.Since(start))
	}()

	data, err := l.Load(ctx, committee)
	if err != nil {
		return nil, err
	}

	contribs := data.Contributions.Transactions
	expends := data.Expenditures.Transactions
	rec := Reconcile(contribs, expends, w)

	summary := &domain.CommitteeSummary{
		Name:              committee,
		TotalRaised:       TotalAmount(contribs, w),
		TotalSpent:        TotalAmount(expends, w),
		CashOnHand:        rec.EndingBalance,
		StartingBalance:   rec.StartingBalance,
		ContributionCount: len(data.Contributions.Filter(w).Transactions),
		ExpenditureCount:  len(data.Expenditures.Filter(w).Transactions),
	}
	summary.EarliestActivity, summary.LatestActivity = ActivitySpan(contribs, expends, w)
	_, summary.LatestDataDate = ActivitySpan(contribs, expends, domain.AllTime())

	// Registry details are best effort; a committee can have filings without
	// a registry row.
	if idx, err := l.search.Index(ctx); err == nil {
		for _, c := range idx.Committees {
			if c.Name == committee {
				summary.Candidate = c.Candidate
				summary.Type = c.Type
				summary.Party = c.Party
				summary.Office = c.Office
				summary.District = c.District
				break
			}
		}
	}
	return summary, nil
}

// Reconciliation rebuilds the committee's running cash balance under the window.
func (l *Ledger) Reconciliation(ctx context.Context, committee string, w domain.Window) (*domain.LedgerResult, error) {
	ctx, span := tracer.Start(ctx, "Ledger.Reconciliation")
	defer span.End()

	start := time.Now()
	defer func() {
		l.metrics.RecordRequestDuration("ledger", time.Since(start))
	}()

	data, err := l.Load(ctx, committee)
	if err != nil {
		return nil, err
	}
	result := Reconcile(data.Contributions.Transactions, data.Expenditures.Transactions, w)
	return &result, nil
}

// Charts computes the summary chart aggregations under the window.
func (l *Ledger) Charts(ctx context.Context, committee string, w domain.Window) (*domain.ChartData, error) {
	ctx, span := tracer.Start(ctx, "Ledger.Charts")
	defer span.End()

	start := time.Now()
	defer func() {
		l.metrics.RecordRequestDuration("charts", time.Since(start))
	}()

	data, err := l.Load(ctx, committee)
	if err != nil {
		return nil, err
	}
	charts := BuildCharts(data.Contributions.Transactions, data.Expenditures.Transactions, w)
	return &charts, nil
}

// Transactions returns the window-filtered transaction set of one kind, raw
// rows included, for exports.
func (l *Ledger) Transactions(ctx context.Context, committee string, kind domain.TransactionKind, w domain.Window) (domain.TransactionSet, error) {
	ctx, span := tracer.Start(ctx, "Ledger.Transactions")
	defer span.End()

	data, err := l.Load(ctx, committee)
	if err != nil {
		return domain.TransactionSet{}, err
	}
	switch kind {
	case domain.KindExpenditure:
		return data.Expenditures.Filter(w), nil
	default:
		return data.Contributions.Filter(w), nil
	}
}

// Metadata reports the freshness of all three upstream datasets.
func (l *Ledger) Metadata(ctx context.Context) ([]domain.DatasetMetadata, error) {
	ctx, span := tracer.Start(ctx, "Ledger.Metadata")
	defer span.End()

	const cacheKey = "dataset_metadata"
	if meta, ok := l.metaCache.Get(cacheKey); ok {
		l.metrics.IncrCacheHit("metadata")
		return meta, nil
	}
	l.metrics.IncrCacheMiss("metadata")

	names := []string{"committees", "contributions", "expenditures"}
	meta := make([]domain.DatasetMetadata, len(names))

	g, gCtx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			m, err := l.fetcher.Metadata(gCtx, l.datasets[name])
			if err != nil {
				l.metrics.IncrUpstreamError(name)
				return fmt.Errorf("%s metadata: %w", name, err)
			}
			meta[i] = *m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.metaCache.Set(cacheKey, meta)
	return meta, nil
}
