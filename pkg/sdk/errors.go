package docsearch

import (
	"errors"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrConfiguration     = domain.ErrConfiguration
	ErrRegistration      = domain.ErrRegistration
	ErrStorageConnection = domain.ErrStorageConnection
	ErrQuery             = domain.ErrQuery
	ErrInvalidQuery      = domain.ErrInvalidQuery

	// ErrClosed is returned by calls made after Close.
	ErrClosed = errors.New("docsearch: client closed")
)
