package discovery

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// Discoverer resolves the storage configuration once at startup and releases it at shutdown.
type Discoverer interface {
	Resolve(ctx context.Context) (domain.StorageConfig, error)
	Release(ctx context.Context)
}

// Registrar performs the registration exchange with the orchestrating backend.
type Registrar interface {
	Register(ctx context.Context) (domain.StorageConfig, error)
	Unregister(ctx context.Context) error
}
