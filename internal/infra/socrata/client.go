// Package socrata implements the open-data portal client (SODA API).
// All dataset pulls go through a shared circuit breaker, retry with
// exponential backoff, and a bulkhead capping concurrent requests.
package socrata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/powens/iowa-disclosure-api/internal/domain"
	"github.com/powens/iowa-disclosure-api/internal/infra/resilience"
	"github.com/powens/iowa-disclosure-api/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("socrata")

// DefaultLimit caps how many records one pull returns. The portal defaults
// to 1000 without an explicit $limit, which would silently truncate.
const DefaultLimit = 500000

// Client talks to a Socrata-backed open-data portal.
type Client struct {
	httpClient *http.Client
	baseURL    string
	appToken   string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
	logger     *zap.Logger
}

// NewClient creates a portal client. appToken may be empty; unauthenticated
// requests work but are throttled harder by the portal.
func NewClient(httpClient *http.Client, baseURL, appToken string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	maxConc := cfg.MaxConcurrency
	if maxConc <= 0 {
		maxConc = 1
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		appToken:   appToken,
		cb:         cb,
		bulkhead:   resilience.NewBulkhead(maxConc),
		cfg:        cfg,
		logger:     logger,
	}
}

// EscapeString escapes a string literal for interpolation into a SoQL
// where clause (single quotes double up).
func EscapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// FetchAll pulls every record of a dataset.
func (c *Client) FetchAll(ctx context.Context, dataset string) ([]domain.Row, error) {
	return c.Fetch(ctx, dataset, port.Query{Select: "*"})
}

// Fetch pulls records matching a SoQL query, with retry, circuit breaker,
// bulkhead, and tracing.
func (c *Client) Fetch(ctx context.Context, dataset string, q port.Query) ([]domain.Row, error) {
	ctx, span := tracer.Start(ctx, "Socrata.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("socrata.dataset", dataset))

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, &domain.ErrExternalService{Service: "socrata", Err: err}
	}
	defer c.bulkhead.Release()

	var rows []domain.Row

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resourceURL(dataset, q), nil)
			if err != nil {
				return err
			}
			if c.appToken != "" {
				req.Header.Set("X-App-Token", c.appToken)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return &domain.ErrNotFound{Resource: "dataset", ID: dataset}
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("portal returned status %d for dataset %s", resp.StatusCode, dataset)
			}

			rows = nil
			return json.NewDecoder(resp.Body).Decode(&rows)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return rows, nil
	})

	if err != nil {
		c.logger.Warn("dataset fetch failed",
			zap.String("dataset", dataset),
			zap.Error(err),
		)
		return nil, wrapFetchError(err)
	}

	return result.([]domain.Row), nil
}

// Metadata reports a dataset's last update time from the portal's views API.
// The field name drifted across portal versions, so three are tried in turn.
func (c *Client) Metadata(ctx context.Context, dataset string) (*domain.DatasetMetadata, error) {
	ctx, span := tracer.Start(ctx, "Socrata.Metadata")
	defer span.End()
	span.SetAttributes(attribute.String("socrata.dataset", dataset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/views/"+url.PathEscape(dataset)+".json", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "socrata", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ErrExternalService{
			Service: "socrata",
			Err:     fmt.Errorf("views API returned status %d", resp.StatusCode),
		}
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &domain.ErrExternalService{Service: "socrata", Err: err}
	}

	meta := &domain.DatasetMetadata{Dataset: dataset}
	for _, field := range []string{"rowsUpdatedAt", "updatedAt", "viewLastModified"} {
		if t := parseUpdatedAt(payload[field]); t != nil {
			meta.UpdatedAt = t
			break
		}
	}
	return meta, nil
}

func (c *Client) resourceURL(dataset string, q port.Query) string {
	params := url.Values{}
	if q.Select != "" {
		params.Set("$select", q.Select)
	}
	if q.Where != "" {
		params.Set("$where", q.Where)
	}
	if q.Order != "" {
		params.Set("$order", q.Order)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	params.Set("$limit", strconv.Itoa(limit))

	return c.baseURL + "/resource/" + url.PathEscape(dataset) + ".json?" + params.Encode()
}

func wrapFetchError(err error) error {
	var notFound *domain.ErrNotFound
	if errors.As(err, &notFound) {
		return err
	}
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return &domain.ErrCircuitOpen{Service: "socrata"}
	}
	return &domain.ErrExternalService{Service: "socrata", Err: err}
}

// parseUpdatedAt accepts Unix timestamps (seconds or milliseconds) and
// ISO strings, the formats the views API has served over time.
func parseUpdatedAt(v any) *time.Time {
	switch val := v.(type) {
	case float64:
		secs := int64(val)
		if val > 1e10 { // milliseconds
			secs = int64(val / 1000)
		}
		t := time.Unix(secs, 0).UTC()
		return &t
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, val); err == nil {
				t = t.UTC()
				return &t
			}
		}
	}
	return nil
}
