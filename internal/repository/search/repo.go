package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/docsearch/internal/db"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/filter"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Find(ctx context.Context, q *db.FindQuery, results any) error
	Distinct(ctx context.Context, q *db.DistinctQuery) ([]string, error)
}

// Repo implements usecase/search.Repository on a document store.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchByTags returns documents carrying at least one of tags.
func (r *Repo) SearchByTags(ctx context.Context, tags []string) ([]domdoc.Preview, error) {
	in, err := filter.NewAnyOf(domdoc.FieldTags, tags)
	if err != nil {
		return nil, fmt.Errorf("tag filter: %w", err)
	}
	expr, err := filter.NewExpression([]filter.Condition{in}, nil)
	if err != nil {
		return nil, fmt.Errorf("tag filter: %w", err)
	}
	return r.find(ctx, expr)
}

// SearchInText returns documents whose transcription or abstract contains text, ignoring case.
func (r *Repo) SearchInText(ctx context.Context, text string) ([]domdoc.Preview, error) {
	inTranscription, err := filter.NewContains(domdoc.FieldTranscription, text)
	if err != nil {
		return nil, fmt.Errorf("text filter: %w", err)
	}
	inShort, err := filter.NewContains(domdoc.FieldShort, text)
	if err != nil {
		return nil, fmt.Errorf("text filter: %w", err)
	}
	expr, err := filter.NewExpression(nil, []filter.Condition{inTranscription, inShort})
	if err != nil {
		return nil, fmt.Errorf("text filter: %w", err)
	}
	return r.find(ctx, expr)
}

// SearchCombined returns documents carrying one of tags whose transcription contains text.
// The abstract is not consulted.
func (r *Repo) SearchCombined(ctx context.Context, text string, tags []string) ([]domdoc.Preview, error) {
	in, err := filter.NewAnyOf(domdoc.FieldTags, tags)
	if err != nil {
		return nil, fmt.Errorf("combined filter: %w", err)
	}
	inTranscription, err := filter.NewContains(domdoc.FieldTranscription, text)
	if err != nil {
		return nil, fmt.Errorf("combined filter: %w", err)
	}
	expr, err := filter.NewExpression([]filter.Condition{in, inTranscription}, nil)
	if err != nil {
		return nil, fmt.Errorf("combined filter: %w", err)
	}
	return r.find(ctx, expr)
}

// MatchingTags returns up to limit distinct tags containing hint, ignoring case.
func (r *Repo) MatchingTags(ctx context.Context, hint string, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}
	match, err := filter.NewContains(domdoc.FieldTags, hint)
	if err != nil {
		return nil, fmt.Errorf("tag hint filter: %w", err)
	}

	tags, err := r.store.Distinct(ctx, &db.DistinctQuery{
		Field: domdoc.FieldTags,
		Match: match,
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("distinct tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

func (r *Repo) find(ctx context.Context, expr filter.Expression) ([]domdoc.Preview, error) {
	q := &db.FindQuery{
		Filter: expr,
		Sort:   []db.SortField{{Field: domdoc.FieldTitle}},
		Fields: domdoc.PreviewFields,
	}

	var rows []previewDTO
	if err := r.store.Find(ctx, q, &rows); err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	return previewsFromDTO(rows), nil
}
