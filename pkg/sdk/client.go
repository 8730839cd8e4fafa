package docsearch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	dbmongo "github.com/kailas-cloud/docsearch/internal/db/mongo"
	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	searchrepo "github.com/kailas-cloud/docsearch/internal/repository/search"
	"github.com/kailas-cloud/docsearch/internal/transport/backend"
	"github.com/kailas-cloud/docsearch/internal/usecase/discovery"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultHealthTimeout    = 2 * time.Second
	appName                 = "docsearch-sdk"
)

// Internal interfaces, swapped for mocks in tests.
type searchUseCase interface {
	Search(ctx context.Context, q query.Query) ([]domdoc.Preview, error)
	MatchingTags(ctx context.Context, hint string, limit int) ([]string, error)
}

type store interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type registrar interface {
	Unregister(ctx context.Context) error
}

// Client is the docsearch SDK entry point. Safe for concurrent use.
type Client struct {
	// mu guards closed; operations hold it for reading so Close waits for them.
	mu     sync.RWMutex
	closed bool

	store     store
	searchSvc searchUseCase
	healthSvc healthUseCase
	registrar registrar
	obs       *observer
}

// New resolves the document store, connects to it and waits until it answers.
// Exactly one of WithMongo or WithBackend is required.
// The provided context bounds registration and the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	storage, reg, err := resolveStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s, err := dbmongo.NewStore(ctx, dbmongo.Config{
		URI:          storage.MongoAddress,
		Database:     storage.MongoDatabase,
		Collection:   storage.MongoCollection,
		AppName:      appName,
		QueryTimeout: cfg.queryTimeout,
	})
	if err != nil {
		releaseRegistration(ctx, reg, obs)
		return nil, fmt.Errorf("%w: %w", ErrStorageConnection, err)
	}

	if err := s.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		_ = s.Close(ctx)
		releaseRegistration(ctx, reg, obs)
		return nil, fmt.Errorf("%w: document store not ready: %w", ErrStorageConnection, err)
	}

	searchSvc := searchuc.New(searchrepo.New(s))
	healthSvc := healthuc.New(s, defaultHealthTimeout)
	return wireClient(s, searchSvc, healthSvc, reg, obs), nil
}

// resolveStorage returns the store coordinates and, in registration mode,
// the registrar to release on Close.
func resolveStorage(ctx context.Context, cfg *clientConfig) (domain.StorageConfig, registrar, error) {
	static := cfg.mongoURI != "" || cfg.mongoDatabase != "" || cfg.mongoCollection != ""
	registered := cfg.backendAddress != ""

	switch {
	case static && registered:
		return domain.StorageConfig{}, nil, fmt.Errorf("%w: WithMongo and WithBackend are mutually exclusive", ErrConfiguration)
	case static:
		storage, err := discovery.NewStatic(domain.StorageConfig{
			MongoAddress:    cfg.mongoURI,
			MongoDatabase:   cfg.mongoDatabase,
			MongoCollection: cfg.mongoCollection,
		}).Resolve(ctx)
		return storage, nil, err
	case registered:
		bc, err := backend.New(backend.Config{
			BaseURL:     cfg.backendAddress,
			ModuleName:  cfg.moduleName,
			SelfAddress: cfg.selfAddress,
			Schema:      cfg.schema,
			Timeout:     cfg.backendTimeout,
		})
		if err != nil {
			return domain.StorageConfig{}, nil, err
		}
		start := time.Now()
		storage, err := bc.Register(ctx)
		if err != nil {
			return domain.StorageConfig{}, nil, err
		}
		if cfg.logger != nil {
			cfg.logger.Info("registered with backend",
				"module", cfg.moduleName,
				"database", storage.MongoDatabase,
				"collection", storage.MongoCollection,
				"duration", time.Since(start),
			)
		}
		return storage, bc, nil
	default:
		return domain.StorageConfig{}, nil, errors.New(
			"docsearch: storage required (use WithMongo or WithBackend)",
		)
	}
}

func wireClient(s store, searchSvc searchUseCase, healthSvc healthUseCase, reg registrar, obs *observer) *Client {
	return &Client{
		store:     s,
		searchSvc: searchSvc,
		healthSvc: healthSvc,
		registrar: reg,
		obs:       obs,
	}
}

// releaseRegistration unregisters best effort; failures are only observed.
func releaseRegistration(ctx context.Context, reg registrar, obs *observer) {
	if reg == nil {
		return
	}
	start := time.Now()
	obs.observe("unregister", start, reg.Unregister(ctx))
}

// Close releases the backend registration, if any, then disconnects from the store.
// It waits for in-flight calls. Calling Close more than once is safe; later calls
// on the client fail with ErrClosed.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	releaseRegistration(ctx, c.registrar, c.obs)
	if c.store == nil {
		return nil
	}
	if err := c.store.Close(ctx); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// acquire takes the read lock unless the client is closed.
// The caller must call the returned release func.
func (c *Client) acquire() (release func(), err error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, ErrClosed
	}
	return c.mu.RUnlock, nil
}

// Ping checks document store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	release, err := c.acquire()
	if err != nil {
		return err
	}
	defer release()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search returns documents matching q sorted by title ascending.
// A query with neither Text nor Tags returns an empty slice.
func (c *Client) Search(ctx context.Context, q Query) (docs []Document, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	release, err := c.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	previews, err := c.searchSvc.Search(ctx, q.toDomain())
	if err != nil {
		return nil, err
	}
	docs = make([]Document, len(previews))
	for i, p := range previews {
		docs[i] = documentFromDomain(p)
	}
	return docs, nil
}

// MatchingTags returns up to limit distinct tags containing hint.
func (c *Client) MatchingTags(ctx context.Context, hint string, limit int) (tags []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("matching_tags", start, err) }()

	release, err := c.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	return c.searchSvc.MatchingTags(ctx, hint, limit)
}
