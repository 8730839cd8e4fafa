package db

import (
	"context"
	"time"
)

// Store is the document store facade combining all sub-interfaces.
type Store interface {
	Pinger
	Finder
	Aggregator
	Close(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Finder runs filtered, sorted and projected reads.
type Finder interface {
	// Find decodes every matching document into results, which must be a pointer to a slice.
	// A decode failure on any document fails the whole call.
	Find(ctx context.Context, q *FindQuery, results any) error
}

// Aggregator runs aggregation reads.
type Aggregator interface {
	// Distinct returns distinct element values of an array field matching q.
	Distinct(ctx context.Context, q *DistinctQuery) ([]string, error)
}
