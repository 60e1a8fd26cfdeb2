package rag

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/document"
	"github.com/kailas-cloud/askdex/internal/domain/facet"
	"github.com/kailas-cloud/askdex/internal/domain/query"
)

// longContent exceeds the usable-content threshold.
const longContent = "The group expanded into two new markets during the third quarter, " +
	"with revenue growth of 12 percent across both regions."

// --- Mocks ---

type mockSearcher struct {
	docs    []document.Document
	total   int64
	err     error
	pingErr error

	searchCalls  int
	lastQuery    query.Query
	lastCriteria query.Criteria
	lastTop      int
}

func (m *mockSearcher) Search(
	_ context.Context, q query.Query, criteria query.Criteria, top int,
) ([]document.Document, int64, error) {
	m.searchCalls++
	m.lastQuery = q
	m.lastCriteria = criteria
	m.lastTop = top
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.docs, m.total, nil
}

func (m *mockSearcher) Ping(_ context.Context) error { return m.pingErr }

type mockFacetSource struct {
	groups facet.Groups
	calls  int
}

func (m *mockFacetSource) Facets(_ context.Context) facet.Groups {
	m.calls++
	return m.groups
}

type mockGenerator struct {
	result domain.CompletionResult
	err    error

	calls   int
	lastReq domain.CompletionRequest
}

func (m *mockGenerator) Generate(
	_ context.Context, req domain.CompletionRequest,
) (domain.CompletionResult, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return domain.CompletionResult{}, m.err
	}
	return m.result, nil
}

type mockChecker struct {
	err error
}

func (m *mockChecker) HealthCheck(_ context.Context) error { return m.err }

type countingCounter struct {
	calls int
}

func (c *countingCounter) Count(text string) int {
	c.calls++
	return len(text) / 4
}

// --- Fixtures ---

func testDoc(id, title, content string, score float64) document.Document {
	return document.Reconstruct(id, title, content, "Jane Doe", "Report", "PDF",
		time.Time{}, "1 KB", score, nil)
}

func newTestService(searcher *mockSearcher, gen *mockGenerator) *Service {
	return New(searcher, &mockFacetSource{}, gen, &mockChecker{}, nil, zap.NewNop())
}

func mustQuery(t *testing.T, text string) query.Query {
	t.Helper()
	q, err := query.New(text)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return q
}

func mustOptions(t *testing.T, temperature float64, maxTokens, topDocuments int) query.Options {
	t.Helper()
	opts, err := query.NewOptions(temperature, maxTokens, topDocuments)
	if err != nil {
		t.Fatalf("query.NewOptions: %v", err)
	}
	return opts
}
