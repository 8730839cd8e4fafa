package docsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
)

func TestNew_NoStorage(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error when no storage provided")
	}
}

func TestNew_MongoAndBackendExclusive(t *testing.T) {
	_, err := New(context.Background(),
		WithMongo("mongodb://localhost:27017", "db", "docs"),
		WithBackend("http://localhost:8000", "docsearch", SchemaSnake),
	)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestNew_MissingCollection(t *testing.T) {
	_, err := New(context.Background(), WithMongo("mongodb://localhost:27017", "db", ""))
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestNew_UnknownSchema(t *testing.T) {
	_, err := New(context.Background(), WithBackend("http://localhost:8000", "docsearch", Schema("kebab")))
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestNew_RegistrationRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no capacity", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(context.Background(), WithBackend(srv.URL, "docsearch", SchemaCamel))
	if !errors.Is(err, ErrRegistration) {
		t.Fatalf("expected ErrRegistration, got %v", err)
	}
}

func TestNew_StoreUnreachableReleasesRegistration(t *testing.T) {
	var unregistered atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/modules/output/register":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"mongo_address":"mongodb://127.0.0.1:1","mongo_database":"db",` +
				`"mongo_collection":"docs","qdrant_address":""}`))
		case "/modules/output/unregister":
			unregistered.Add(1)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	_, err := New(context.Background(),
		WithBackend(srv.URL, "docsearch", SchemaSnake),
		WithReadinessTimeout(300*time.Millisecond),
	)
	if !errors.Is(err, ErrStorageConnection) {
		t.Fatalf("expected ErrStorageConnection, got %v", err)
	}
	if got := unregistered.Load(); got != 1 {
		t.Errorf("unregister calls = %d, want 1", got)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithMongo("mongodb://localhost:27017", "archive", "documents").apply(cfg)
	if cfg.mongoURI != "mongodb://localhost:27017" {
		t.Errorf("uri = %q", cfg.mongoURI)
	}
	if cfg.mongoDatabase != "archive" || cfg.mongoCollection != "documents" {
		t.Errorf("coords = (%q, %q), want (archive, documents)", cfg.mongoDatabase, cfg.mongoCollection)
	}

	cfg2 := &clientConfig{}
	WithBackend("http://backend:8000", "search", SchemaCamel).apply(cfg2)
	WithSelfAddress("http://search:8080").apply(cfg2)
	WithBackendTimeout(3 * time.Second).apply(cfg2)
	if cfg2.backendAddress != "http://backend:8000" || cfg2.moduleName != "search" {
		t.Errorf("backend = (%q, %q)", cfg2.backendAddress, cfg2.moduleName)
	}
	if cfg2.schema != SchemaCamel {
		t.Errorf("schema = %q, want camel", cfg2.schema)
	}
	if cfg2.selfAddress != "http://search:8080" {
		t.Errorf("selfAddress = %q", cfg2.selfAddress)
	}
	if cfg2.backendTimeout != 3*time.Second {
		t.Errorf("backendTimeout = %v, want 3s", cfg2.backendTimeout)
	}

	cfg3 := &clientConfig{}
	WithQueryTimeout(time.Second).apply(cfg3)
	WithReadinessTimeout(5 * time.Second).apply(cfg3)
	if cfg3.queryTimeout != time.Second || cfg3.readinessTimeout != 5*time.Second {
		t.Errorf("timeouts = (%v, %v)", cfg3.queryTimeout, cfg3.readinessTimeout)
	}

	cfg4 := &clientConfig{}
	logger := slog.Default()
	WithLogger(logger).apply(cfg4)
	if cfg4.logger != logger {
		t.Error("expected logger to be set")
	}

	cfg5 := &clientConfig{}
	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg5)
	if cfg5.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestClient_Search(t *testing.T) {
	var got query.Query
	svc := &mockSearchUC{
		searchFn: func(_ context.Context, q query.Query) ([]domdoc.Preview, error) {
			got = q
			return []domdoc.Preview{
				domdoc.NewPreview("u1", "Alpha", []string{"dog"}, "s1"),
				domdoc.NewPreview("u2", "Beta", nil, "s2"),
			}, nil
		},
	}
	c := wireClient(&mockStore{}, svc, &mockHealthUC{}, nil, nil)

	docs, err := c.Search(context.Background(), Query{Text: Text("hello"), Tags: []string{"dog"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Mode() != mode.Combined {
		t.Errorf("mode = %q, want combined", got.Mode())
	}
	if len(docs) != 2 {
		t.Fatalf("len = %d, want 2", len(docs))
	}
	if docs[0].UUID != "u1" || docs[0].Title != "Alpha" || docs[0].Short != "s1" {
		t.Errorf("docs[0] = %+v", docs[0])
	}
	if len(docs[0].Tags) != 1 || docs[0].Tags[0] != "dog" {
		t.Errorf("docs[0].Tags = %v, want [dog]", docs[0].Tags)
	}
	if docs[1].Tags == nil {
		t.Error("docs[1].Tags should be empty, not nil")
	}
}

func TestClient_SearchEmptyResult(t *testing.T) {
	svc := &mockSearchUC{
		searchFn: func(_ context.Context, _ query.Query) ([]domdoc.Preview, error) {
			return []domdoc.Preview{}, nil
		},
	}
	c := wireClient(&mockStore{}, svc, &mockHealthUC{}, nil, nil)

	docs, err := c.Search(context.Background(), Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Errorf("docs = %v, want empty non-nil", docs)
	}
}

func TestClient_SearchError(t *testing.T) {
	svc := &mockSearchUC{
		searchFn: func(_ context.Context, _ query.Query) ([]domdoc.Preview, error) {
			return nil, ErrQuery
		},
	}
	c := wireClient(&mockStore{}, svc, &mockHealthUC{}, nil, nil)

	_, err := c.Search(context.Background(), Query{Tags: []string{"x"}})
	if !errors.Is(err, ErrQuery) {
		t.Fatalf("expected ErrQuery, got %v", err)
	}
}

func TestClient_MatchingTags(t *testing.T) {
	svc := &mockSearchUC{
		tagsFn: func(_ context.Context, hint string, limit int) ([]string, error) {
			if hint != "do" || limit != 5 {
				t.Errorf("args = (%q, %d), want (do, 5)", hint, limit)
			}
			return []string{"dog", "dogma"}, nil
		},
	}
	c := wireClient(&mockStore{}, svc, &mockHealthUC{}, nil, nil)

	tags, err := c.MatchingTags(context.Background(), "do", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tags) != 2 {
		t.Errorf("tags = %v, want 2 entries", tags)
	}
}

func TestClient_Health(t *testing.T) {
	h := &mockHealthUC{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{healthuc.CheckDatabase: healthuc.CheckError},
	}}
	c := wireClient(&mockStore{}, &mockSearchUC{}, h, nil, nil)

	st := c.Health(context.Background())
	if st.Status != "degraded" {
		t.Errorf("status = %q, want degraded", st.Status)
	}
	if st.Checks["database"] != "error" {
		t.Errorf("checks = %v", st.Checks)
	}
}

func TestClient_Ping(t *testing.T) {
	s := &mockStore{pingErr: errors.New("down")}
	c := wireClient(s, &mockSearchUC{}, &mockHealthUC{}, nil, nil)

	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}
	s.pingErr = nil
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_CloseReleasesOnce(t *testing.T) {
	s := &mockStore{}
	reg := &mockRegistrar{err: errors.New("backend gone")}
	c := wireClient(s, &mockSearchUC{}, &mockHealthUC{}, reg, nil)

	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("unregister failure must not surface: %v", err)
	}
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if reg.calls != 1 {
		t.Errorf("unregister calls = %d, want 1", reg.calls)
	}
	if s.closed != 1 {
		t.Errorf("store closes = %d, want 1", s.closed)
	}
}

func TestClient_CloseStoreError(t *testing.T) {
	s := &mockStore{closeErr: errors.New("disconnect failed")}
	c := wireClient(s, &mockSearchUC{}, &mockHealthUC{}, nil, nil)

	if err := c.Close(context.Background()); err == nil {
		t.Fatal("expected close error")
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	c := &Client{store: nil}
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_CallsAfterCloseFail(t *testing.T) {
	s := &mockStore{}
	c := wireClient(s, &mockSearchUC{}, &mockHealthUC{}, nil, nil)
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	ctx := context.Background()

	if err := c.Ping(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Ping: expected ErrClosed, got %v", err)
	}
	if _, err := c.Search(ctx, Query{Tags: []string{"cat"}}); !errors.Is(err, ErrClosed) {
		t.Errorf("Search: expected ErrClosed, got %v", err)
	}
	if _, err := c.MatchingTags(ctx, "c", 5); !errors.Is(err, ErrClosed) {
		t.Errorf("MatchingTags: expected ErrClosed, got %v", err)
	}
	st := c.Health(ctx)
	if st.Status != "degraded" || st.Checks["database"] != "error" {
		t.Errorf("Health after close = %+v", st)
	}
}

func TestClient_ConcurrentClose(t *testing.T) {
	s := &mockStore{}
	reg := &mockRegistrar{}
	c := wireClient(s, &mockSearchUC{}, &mockHealthUC{}, reg, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = c.Close(context.Background())
		}()
		go func() {
			defer wg.Done()
			if err := c.Ping(context.Background()); err != nil && !errors.Is(err, ErrClosed) {
				t.Errorf("Ping: %v", err)
			}
		}()
	}
	wg.Wait()

	if s.closed != 1 {
		t.Errorf("store closes = %d, want 1", s.closed)
	}
	if reg.calls != 1 {
		t.Errorf("unregister calls = %d, want 1", reg.calls)
	}
}

func TestObserver_NilSafe(t *testing.T) {
	// nil observer should not panic.
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.observe("test", time.Now(), errors.New("err"))
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("search", time.Now().Add(-10*time.Millisecond), nil)
	obs.observe("search", time.Now(), errors.New("fail"))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "docsearch_sdk_operations_total" {
			found = true
			if len(f.GetMetric()) != 2 {
				t.Errorf("expected 2 metric samples, got %d", len(f.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("docsearch_sdk_operations_total not found")
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := newObserver(nil, reg); err != nil {
		t.Fatalf("first observer: %v", err)
	}
	if _, err := newObserver(nil, reg); err != nil {
		t.Fatalf("second observer on same registry: %v", err)
	}
}

func TestObserver_WithLogger(t *testing.T) {
	obs, err := newObserver(slog.Default(), nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("test.op", time.Now(), nil)
	obs.observe("test.op", time.Now(), errors.New("test error"))
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "ok"},
		{"invalid", fmt.Errorf("wrap: %w", ErrInvalidQuery), "invalid"},
		{"query", fmt.Errorf("wrap: %w", ErrQuery), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outcome(tt.err); got != tt.want {
				t.Errorf("outcome = %q, want %q", got, tt.want)
			}
		})
	}
}
