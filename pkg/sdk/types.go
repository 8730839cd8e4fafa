package docsearch

import (
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/transport/backend"
)

// Schema is the field naming of the backend registration response.
type Schema = backend.Schema

// Registration response schemas.
const (
	SchemaCamel = backend.SchemaCamel
	SchemaSnake = backend.SchemaSnake
)

// Query selects documents. A nil Text means no text predicate; an empty Text matches every document.
// With both Text and Tags set, Text is matched against the transcription only.
type Query struct {
	Text *string
	Tags []string
}

// Text returns a pointer to s for use in Query.
func Text(s string) *string { return &s }

func (q Query) toDomain() query.Query {
	return query.New(q.Text, q.Tags)
}

// Document is a search hit. The transcription is never returned.
type Document struct {
	UUID  string
	Title string
	Tags  []string
	Short string
}

func documentFromDomain(p domdoc.Preview) Document {
	return Document{
		UUID:  p.UUID(),
		Title: p.Title(),
		Tags:  p.Tags(),
		Short: p.Short(),
	}
}
