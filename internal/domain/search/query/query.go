package query

import (
	"fmt"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/mode"
)

// Query is a request-scoped document search: optional free text plus an ordered tag list.
// An absent text is distinct from an empty one.
type Query struct {
	text    string
	hasText bool
	tags    []string
}

// New creates a Query. A nil text means no text predicate.
func New(text *string, tags []string) Query {
	q := Query{tags: make([]string, len(tags))}
	copy(q.tags, tags)
	if text != nil {
		q.text = *text
		q.hasText = true
	}
	return q
}

// Text returns the free text and whether it was supplied.
func (q Query) Text() (string, bool) { return q.text, q.hasText }

// Tags returns the requested tags in request order.
func (q Query) Tags() []string { return q.tags }

// Mode selects the search shape from the populated fields.
func (q Query) Mode() mode.Mode {
	switch {
	case q.hasText && len(q.tags) > 0:
		return mode.Combined
	case q.hasText:
		return mode.Text
	case len(q.tags) > 0:
		return mode.Tags
	default:
		return mode.None
	}
}

// TagHint is a validated autocomplete request.
type TagHint struct {
	hint  string
	limit int
}

// MaxTagLimit caps the number of tags one autocomplete call may return.
const MaxTagLimit = 1000

// NewTagHint validates the autocomplete parameters. A negative limit is a caller error;
// a limit above MaxTagLimit is clamped to it.
func NewTagHint(hint string, limit int) (TagHint, error) {
	if limit < 0 {
		return TagHint{}, fmt.Errorf("%w: limit must not be negative, got %d", domain.ErrInvalidQuery, limit)
	}
	return TagHint{hint: hint, limit: min(limit, MaxTagLimit)}, nil
}

// Hint returns the substring to look for.
func (h TagHint) Hint() string { return h.hint }

// Limit returns the maximum number of tags to return.
func (h TagHint) Limit() int { return h.limit }
