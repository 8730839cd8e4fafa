package docsearch

import (
	"context"

	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, q query.Query) ([]domdoc.Preview, error)
	tagsFn   func(ctx context.Context, hint string, limit int) ([]string, error)
}

func (m *mockSearchUC) Search(ctx context.Context, q query.Query) ([]domdoc.Preview, error) {
	return m.searchFn(ctx, q)
}

func (m *mockSearchUC) MatchingTags(ctx context.Context, hint string, limit int) ([]string, error) {
	return m.tagsFn(ctx, hint, limit)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}

// --- store mock ---

type mockStore struct {
	pingErr  error
	closeErr error
	closed   int
}

func (m *mockStore) Ping(_ context.Context) error { return m.pingErr }

func (m *mockStore) Close(_ context.Context) error {
	m.closed++
	return m.closeErr
}

// --- registrar mock ---

type mockRegistrar struct {
	err   error
	calls int
}

func (m *mockRegistrar) Unregister(_ context.Context) error {
	m.calls++
	return m.err
}
