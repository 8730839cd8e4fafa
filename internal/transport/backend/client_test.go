package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

type recorded struct {
	method      string
	path        string
	contentType string
	body        map[string]any
}

// newBackend starts a fake backend answering every request with status and body.
func newBackend(t *testing.T, status int, body string) (*httptest.Server, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		rec := recorded{method: r.Method, path: r.URL.Path, contentType: r.Header.Get("Content-Type")}
		_ = json.Unmarshal(raw, &rec.body)
		calls = append(calls, rec)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newClient(t *testing.T, baseURL string, schema Schema, self string) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: baseURL, ModuleName: "docsearch", SelfAddress: self, Schema: schema})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

const (
	camelBody = `{"mongoAddress":"mongodb://m:27017","mongoDatabase":"db","mongoCollection":"docs","qdrantAddress":"http://q:6333"}`
	snakeBody = `{"mongo_address":"mongodb://m:27017","mongo_database":"db","mongo_collection":"docs","qdrant_address":"http://q:6333"}`
)

func TestRegister_Schemas(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
		body   string
	}{
		{"camel", SchemaCamel, camelBody},
		{"snake", SchemaSnake, snakeBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := newBackend(t, http.StatusOK, tt.body)
			c := newClient(t, srv.URL, tt.schema, "")

			got, err := c.Register(context.Background())
			if err != nil {
				t.Fatalf("Register: %v", err)
			}
			want := domain.StorageConfig{
				MongoAddress:    "mongodb://m:27017",
				MongoDatabase:   "db",
				MongoCollection: "docs",
				QdrantAddress:   "http://q:6333",
			}
			if got != want {
				t.Errorf("got %+v, want %+v", got, want)
			}

			if len(*calls) != 1 {
				t.Fatalf("expected one request, got %d", len(*calls))
			}
			call := (*calls)[0]
			if call.method != http.MethodPost || call.path != "/modules/output/register" {
				t.Errorf("unexpected request %s %s", call.method, call.path)
			}
			if call.contentType != "application/json" {
				t.Errorf("content type = %q", call.contentType)
			}
			if call.body["name"] != "docsearch" {
				t.Errorf("name = %v", call.body["name"])
			}
			if _, ok := call.body["address"]; ok {
				t.Error("address must be omitted when no self address is configured")
			}
		})
	}
}

func TestRegister_SendsSelfAddress(t *testing.T) {
	srv, calls := newBackend(t, http.StatusOK, snakeBody)
	c := newClient(t, srv.URL+"/", SchemaSnake, "http://docsearch:8080")

	if _, err := c.Register(context.Background()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	call := (*calls)[0]
	if call.path != "/modules/output/register" {
		t.Errorf("trailing slash not trimmed: %s", call.path)
	}
	if call.body["address"] != "http://docsearch:8080" {
		t.Errorf("address = %v", call.body["address"])
	}
}

func TestRegister_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		schema  Schema
		wantMsg string
	}{
		{"service unavailable", http.StatusServiceUnavailable, "maintenance", SchemaCamel, "503"},
		{"created is not ok", http.StatusCreated, camelBody, SchemaCamel, "201"},
		{"not json", http.StatusOK, "<html>", SchemaCamel, "decode"},
		{"wrong schema", http.StatusOK, snakeBody, SchemaCamel, "missing"},
		{"missing fields", http.StatusOK, `{"mongo_address":"x"}`, SchemaSnake, "mongo database"},
		{"wrong type", http.StatusOK, `{"mongo_address":1}`, SchemaSnake, "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newBackend(t, tt.status, tt.body)
			c := newClient(t, srv.URL, tt.schema, "")

			_, err := c.Register(context.Background())
			if !errors.Is(err, domain.ErrRegistration) {
				t.Fatalf("expected ErrRegistration, got %v", err)
			}
			if !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(tt.wantMsg)) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestRegister_ErrorQuotesBody(t *testing.T) {
	srv, _ := newBackend(t, http.StatusServiceUnavailable, strings.Repeat("x", 2000))
	c := newClient(t, srv.URL, SchemaCamel, "")

	_, err := c.Register(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(err.Error()) > 1000 {
		t.Errorf("error body not truncated: %d bytes", len(err.Error()))
	}
	if !strings.Contains(err.Error(), `"docsearch"`) {
		t.Errorf("error should name the module: %v", err)
	}
}

func TestRegister_Unreachable(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK, camelBody)
	url := srv.URL
	srv.Close()

	c := newClient(t, url, SchemaCamel, "")
	before := testutil.ToFloat64(metrics.BackendRequestsTotal.WithLabelValues("register", "error"))

	if _, err := c.Register(context.Background()); !errors.Is(err, domain.ErrRegistration) {
		t.Fatalf("expected ErrRegistration, got %v", err)
	}
	after := testutil.ToFloat64(metrics.BackendRequestsTotal.WithLabelValues("register", "error"))
	if after != before+1 {
		t.Errorf("error counter = %f, want %f", after, before+1)
	}
}

func TestRegister_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := New(Config{
		BaseURL: srv.URL, ModuleName: "docsearch", Schema: SchemaCamel, Timeout: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Register(context.Background()); !errors.Is(err, domain.ErrRegistration) {
		t.Fatalf("expected ErrRegistration, got %v", err)
	}
}

func TestUnregister(t *testing.T) {
	srv, calls := newBackend(t, http.StatusOK, "ignored")
	c := newClient(t, srv.URL, SchemaCamel, "")

	if err := c.Unregister(context.Background()); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	call := (*calls)[0]
	if call.method != http.MethodPost || call.path != "/modules/output/unregister" {
		t.Errorf("unexpected request %s %s", call.method, call.path)
	}
	if len(call.body) != 0 {
		t.Errorf("expected empty object body, got %v", call.body)
	}
}

func TestUnregister_Failures(t *testing.T) {
	srv, _ := newBackend(t, http.StatusInternalServerError, "")
	c := newClient(t, srv.URL, SchemaCamel, "")
	if err := c.Unregister(context.Background()); !errors.Is(err, domain.ErrUnregistration) {
		t.Fatalf("expected ErrUnregistration, got %v", err)
	}

	down, _ := newBackend(t, http.StatusOK, "")
	url := down.URL
	down.Close()
	c = newClient(t, url, SchemaCamel, "")
	if err := c.Unregister(context.Background()); !errors.Is(err, domain.ErrUnregistration) {
		t.Fatalf("expected ErrUnregistration, got %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing backend", Config{ModuleName: "m", Schema: SchemaCamel}},
		{"missing module", Config{BaseURL: "http://b", Schema: SchemaCamel}},
		{"missing schema", Config{BaseURL: "http://b", ModuleName: "m"}},
		{"unknown schema", Config{BaseURL: "http://b", ModuleName: "m", Schema: "kebab"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); !errors.Is(err, domain.ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}
