package domain

import "errors"

var (
	// ErrConfiguration signals malformed or missing static configuration.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrRegistration signals a failed registration exchange with the backend.
	ErrRegistration = errors.New("backend registration failed")
	// ErrUnregistration signals a failed deregistration on shutdown.
	ErrUnregistration = errors.New("backend unregistration failed")
	// ErrStorageConnection signals that the document store could not be reached at startup.
	ErrStorageConnection = errors.New("storage connection failed")
	// ErrQuery signals a failed search or autocomplete operation.
	ErrQuery = errors.New("query failed")
	// ErrInvalidQuery signals a caller contract violation (e.g. negative limit).
	ErrInvalidQuery = errors.New("invalid query")
)
