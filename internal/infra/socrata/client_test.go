package socrata_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/powens/iowa-disclosure-api/internal/domain"
	"github.com/powens/iowa-disclosure-api/internal/infra/resilience"
	"github.com/powens/iowa-disclosure-api/internal/infra/socrata"
	"github.com/powens/iowa-disclosure-api/internal/port"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, srv *httptest.Server, token string) *socrata.Client {
	t.Helper()
	cfg := resilience.Config{MaxRetries: 0, InitialBackoff: time.Millisecond, MaxConcurrency: 2}
	return socrata.NewClient(srv.Client(), srv.URL, token, resilience.NewCircuitBreaker("test"), cfg, zap.NewNop())
}

func TestFetch_BuildsSoQLRequest(t *testing.T) {
	var gotPath, gotToken string
	var gotQuery map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotToken = r.Header.Get("X-App-Token")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"committee_nm":"Friends of Smith"}]`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, "secret-token")
	rows, err := client.Fetch(context.Background(), "smfg-ds7h", port.Query{
		Select: "*",
		Where:  "committee_nm='Friends of Smith'",
		Order:  "date DESC",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0]["committee_nm"] != "Friends of Smith" {
		t.Errorf("unexpected rows: %v", rows)
	}

	if gotPath != "/resource/smfg-ds7h.json" {
		t.Errorf("path = %q", gotPath)
	}
	if gotToken != "secret-token" {
		t.Errorf("app token header = %q", gotToken)
	}
	if got := gotQuery["$where"]; len(got) != 1 || got[0] != "committee_nm='Friends of Smith'" {
		t.Errorf("$where = %v", got)
	}
	// The portal silently truncates without an explicit $limit.
	if got := gotQuery["$limit"]; len(got) != 1 || got[0] != "500000" {
		t.Errorf("$limit = %v, want 500000", got)
	}
}

func TestFetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, "")
	_, err := client.Fetch(context.Background(), "missing", port.Query{})

	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cfg := resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxConcurrency: 1}
	client := socrata.NewClient(srv.Client(), srv.URL, "", resilience.NewCircuitBreaker("retry-test"), cfg, zap.NewNop())

	if _, err := client.Fetch(context.Background(), "5dtu-swbk", port.Query{}); err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestFetch_WrapsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, "")
	_, err := client.Fetch(context.Background(), "5dtu-swbk", port.Query{})

	var external *domain.ErrExternalService
	if !errors.As(err, &external) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}

func TestMetadata_ParsesUnixSeconds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/views/5dtu-swbk.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"rowsUpdatedAt": 1717200000}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, "")
	meta, err := client.Metadata(context.Background(), "5dtu-swbk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Unix(1717200000, 0).UTC()
	if meta.UpdatedAt == nil || !meta.UpdatedAt.Equal(want) {
		t.Errorf("updated at = %v, want %v", meta.UpdatedAt, want)
	}
}

func TestMetadata_FallsBackAcrossFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"viewLastModified": "2024-06-01T12:00:00Z"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, "")
	meta, err := client.Metadata(context.Background(), "3adi-mht4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.UpdatedAt == nil || meta.UpdatedAt.Format("2006-01-02") != "2024-06-01" {
		t.Errorf("updated at = %v", meta.UpdatedAt)
	}
}

func TestEscapeString(t *testing.T) {
	if got := socrata.EscapeString("O'Brien for Senate"); got != "O''Brien for Senate" {
		t.Errorf("EscapeString = %q", got)
	}
}
