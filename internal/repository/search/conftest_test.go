package search

import (
	"context"
	"reflect"
	"testing"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	findFn     func(ctx context.Context, q *db.FindQuery, results any) error
	distinctFn func(ctx context.Context, q *db.DistinctQuery) ([]string, error)
}

func (m *mockStore) Find(ctx context.Context, q *db.FindQuery, results any) error {
	if m.findFn != nil {
		return m.findFn(ctx, q, results)
	}
	return nil
}

func (m *mockStore) Distinct(ctx context.Context, q *db.DistinctQuery) ([]string, error) {
	if m.distinctFn != nil {
		return m.distinctFn(ctx, q)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms)
	return repo, ms
}

// fill writes rows into the slice pointer handed to Find.
func fill(t *testing.T, results any, rows []previewDTO) {
	t.Helper()
	dst, ok := results.(*[]previewDTO)
	if !ok {
		t.Fatalf("results type = %T, want *[]previewDTO", results)
	}
	*dst = rows
}

func equalStrings(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
