package db

import "github.com/kailas-cloud/docsearch/internal/domain/search/filter"

// SortField orders results by one field.
type SortField struct {
	Field      string
	Descending bool
}

// FindQuery is the input for a filtered document read.
type FindQuery struct {
	Filter filter.Expression
	Sort   []SortField
	// Fields limits the returned fields; the store's internal id is always excluded.
	Fields []string
}

// DistinctQuery is the input for a distinct array-element aggregation.
// Field is unwound to one element per row, filtered by Match, grouped, and truncated to Limit.
type DistinctQuery struct {
	Field string
	Match filter.Condition
	Limit int
}
