package search

import (
	"context"

	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
)

// Repository defines the storage contract for search operations.
type Repository interface {
	SearchByTags(ctx context.Context, tags []string) ([]domdoc.Preview, error)
	SearchInText(ctx context.Context, text string) ([]domdoc.Preview, error)
	SearchCombined(ctx context.Context, text string, tags []string) ([]domdoc.Preview, error)
	MatchingTags(ctx context.Context, hint string, limit int) ([]string, error)
}
