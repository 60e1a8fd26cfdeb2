package search

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain/query"
	"github.com/kailas-cloud/askdex/internal/domain/schema"
	"github.com/kailas-cloud/askdex/internal/index"
)

// mockClient implements the consumer interface for tests.
type mockClient struct {
	searchFn func(ctx context.Context, q *index.Query) (*index.Result, error)
	queries  []*index.Query
}

func (m *mockClient) Search(ctx context.Context, q *index.Query) (*index.Result, error) {
	m.queries = append(m.queries, q)
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &index.Result{}, nil
}

// mockResolver returns a fixed mapping.
type mockResolver struct {
	mapping schema.Mapping
}

func (m *mockResolver) Resolve(context.Context) schema.Mapping { return m.mapping }

func testMapping() schema.Mapping {
	return schema.NewMapping(map[schema.Field]string{
		schema.FieldAuthor:       "metadata_author",
		schema.FieldContentType:  "metadata_storage_content_type",
		schema.FieldExtension:    "metadata_storage_file_extension",
		schema.FieldTitle:        "title",
		schema.FieldLastModified: "metadata_storage_last_modified",
		schema.FieldSize:         "metadata_storage_size",
		schema.FieldIdentifier:   "metadata_storage_path",
	})
}

func newTestRepo(t *testing.T, mapping schema.Mapping) (*Repo, *mockClient) {
	t.Helper()
	mc := &mockClient{}
	repo := New(mc, &mockResolver{mapping: mapping}, zap.NewNop())
	return repo, mc
}

func mustQuery(t *testing.T, text string) query.Query {
	t.Helper()
	q, err := query.New(text)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return q
}
