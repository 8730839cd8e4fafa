package search

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// autocompleteLabel is the metrics mode label for tag autocomplete.
const autocompleteLabel = "autocomplete"

// Service handles document search in tag, text and combined modes plus tag autocomplete.
// It is stateless and safe for concurrent use.
type Service struct {
	repo Repository
}

// New creates a search service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Search runs the query shape selected by q.Mode(). Results are sorted by title.
// A query with neither text nor tags matches nothing and does not reach storage.
func (s *Service) Search(ctx context.Context, q query.Query) ([]domdoc.Preview, error) {
	m := q.Mode()
	start := time.Now()

	docs, err := s.dispatch(ctx, q, m)
	observe(string(m), start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %s search: %w", domain.ErrQuery, m, err)
	}
	if docs == nil {
		docs = []domdoc.Preview{}
	}
	return docs, nil
}

func (s *Service) dispatch(ctx context.Context, q query.Query, m mode.Mode) ([]domdoc.Preview, error) {
	text, _ := q.Text()

	switch m {
	case mode.Tags:
		return s.repo.SearchByTags(ctx, q.Tags())
	case mode.Text:
		return s.repo.SearchInText(ctx, text)
	case mode.Combined:
		return s.repo.SearchCombined(ctx, text, q.Tags())
	case mode.None:
		return []domdoc.Preview{}, nil
	default:
		return nil, fmt.Errorf("unsupported search mode: %s", m)
	}
}

// MatchingTags returns up to limit distinct tags containing hint, ignoring case.
// A negative limit fails with domain.ErrInvalidQuery; zero returns an empty list.
func (s *Service) MatchingTags(ctx context.Context, hint string, limit int) ([]string, error) {
	h, err := query.NewTagHint(hint, limit)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tags, err := s.repo.MatchingTags(ctx, h.Hint(), h.Limit())
	observe(autocompleteLabel, start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: tag autocomplete: %w", domain.ErrQuery, err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

func observe(label string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(label, status).Inc()
	metrics.SearchDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
}
