package discovery

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

var (
	_ Discoverer = (*Static)(nil)
	_ Discoverer = (*Registered)(nil)
)

// Static returns storage parameters supplied directly by configuration. No network call occurs.
type Static struct {
	cfg domain.StorageConfig
}

// NewStatic creates a Static discoverer.
func NewStatic(cfg domain.StorageConfig) *Static {
	return &Static{cfg: cfg}
}

// Resolve validates and returns the configured storage parameters.
func (s *Static) Resolve(_ context.Context) (domain.StorageConfig, error) {
	if err := s.cfg.Validate(); err != nil {
		return domain.StorageConfig{}, fmt.Errorf("static storage config: %w", err)
	}
	return s.cfg, nil
}

// Release is a no-op.
func (s *Static) Release(_ context.Context) {}

// Registered obtains storage parameters by registering with the backend.
type Registered struct {
	registrar Registrar
	logger    *zap.Logger

	mu         sync.Mutex
	registered bool
}

// NewRegistered creates a Registered discoverer.
func NewRegistered(registrar Registrar, logger *zap.Logger) *Registered {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registered{registrar: registrar, logger: logger}
}

// Resolve performs exactly one registration call. Failure is domain.ErrRegistration.
func (r *Registered) Resolve(ctx context.Context) (domain.StorageConfig, error) {
	cfg, err := r.registrar.Register(ctx)
	if err != nil {
		return domain.StorageConfig{}, fmt.Errorf("register: %w", err)
	}

	r.mu.Lock()
	r.registered = true
	r.mu.Unlock()

	r.logger.Info("Registered with backend",
		zap.String("mongo_address", redactURI(cfg.MongoAddress)),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.String("mongo_collection", cfg.MongoCollection),
	)
	return cfg, nil
}

// Release unregisters after a successful Resolve. Failures are logged and never returned.
func (r *Registered) Release(ctx context.Context) {
	r.mu.Lock()
	registered := r.registered
	r.registered = false
	r.mu.Unlock()

	if !registered {
		return
	}
	if err := r.registrar.Unregister(ctx); err != nil {
		r.logger.Warn("Failed to unregister from backend", zap.Error(err))
		return
	}
	r.logger.Info("Unregistered from backend")
}
