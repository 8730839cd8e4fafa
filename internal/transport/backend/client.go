package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

const (
	registerPath   = "/modules/output/register"
	unregisterPath = "/modules/output/unregister"

	// maxErrorBody bounds the response text quoted in registration errors.
	maxErrorBody = 512
	// maxResponseBody bounds the registration response read into memory.
	maxResponseBody = 1 << 20
)

// Config configures the backend client.
type Config struct {
	// BaseURL is the backend address, e.g. "http://backend:8080".
	BaseURL    string
	ModuleName string
	// SelfAddress is sent as "address" when the backend needs to call back; empty omits it.
	SelfAddress string
	Schema      Schema
	// Timeout bounds each request; 0 means no timeout.
	Timeout time.Duration
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// Client performs the module registration exchange with the orchestrating backend.
type Client struct {
	baseURL     string
	moduleName  string
	selfAddress string
	schema      Schema
	http        *http.Client
}

// New validates cfg and constructs a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: backend address is required", domain.ErrConfiguration)
	}
	if cfg.ModuleName == "" {
		return nil, fmt.Errorf("%w: module name is required", domain.ErrConfiguration)
	}
	if !cfg.Schema.IsValid() {
		return nil, fmt.Errorf("%w: unknown registration schema %q", domain.ErrConfiguration, cfg.Schema)
	}

	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		moduleName:  cfg.ModuleName,
		selfAddress: cfg.SelfAddress,
		schema:      cfg.Schema,
		http:        &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: cfg.Timeout}
	}
	return c, nil
}

// Register announces the module and returns the storage parameters assigned by the backend.
// Any non-200 status or undecodable body fails with domain.ErrRegistration. There is no retry.
func (c *Client) Register(ctx context.Context) (domain.StorageConfig, error) {
	payload, err := json.Marshal(registerPayload{Name: c.moduleName, Address: c.selfAddress})
	if err != nil {
		return domain.StorageConfig{}, fmt.Errorf("%w: encode payload: %w", domain.ErrRegistration, err)
	}

	resp, err := c.post(ctx, registerPath, payload)
	if err != nil {
		observe("register", "error")
		return domain.StorageConfig{}, fmt.Errorf("%w: module %q on backend %q: %w",
			domain.ErrRegistration, c.moduleName, c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()
	observe("register", strconv.Itoa(resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return domain.StorageConfig{}, fmt.Errorf("%w: read response: %w", domain.ErrRegistration, err)
	}

	if resp.StatusCode != http.StatusOK {
		return domain.StorageConfig{}, fmt.Errorf("%w: module %q on backend %q, got status %d: %s",
			domain.ErrRegistration, c.moduleName, c.baseURL, resp.StatusCode, truncate(body, maxErrorBody))
	}

	storage, err := decodeStorage(c.schema, body)
	if err != nil {
		return domain.StorageConfig{}, fmt.Errorf("%w: %w", domain.ErrRegistration, err)
	}
	if err := storage.Validate(); err != nil {
		return domain.StorageConfig{}, fmt.Errorf("%w: %s response: %w", domain.ErrRegistration, c.schema, err)
	}
	return storage, nil
}

// Unregister releases the registration. The response body is ignored.
func (c *Client) Unregister(ctx context.Context) error {
	resp, err := c.post(ctx, unregisterPath, []byte("{}"))
	if err != nil {
		observe("unregister", "error")
		return fmt.Errorf("%w: module %q on backend %q: %w", domain.ErrUnregistration, c.moduleName, c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
	observe("unregister", strconv.Itoa(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: module %q on backend %q, got status %d",
			domain.ErrUnregistration, c.moduleName, c.baseURL, resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	return resp, nil
}

func observe(op, status string) {
	metrics.BackendRequestsTotal.WithLabelValues(op, status).Inc()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
