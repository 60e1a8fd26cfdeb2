package rag

import (
	"context"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/document"
	"github.com/kailas-cloud/askdex/internal/domain/facet"
	"github.com/kailas-cloud/askdex/internal/domain/query"
)

// Searcher retrieves ranked documents from the index and probes its
// availability.
type Searcher interface {
	Search(ctx context.Context, q query.Query, criteria query.Criteria, top int) ([]document.Document, int64, error)
	Ping(ctx context.Context) error
}

// FacetSource lists the filterable value histograms of the index.
type FacetSource interface {
	Facets(ctx context.Context) facet.Groups
}

// Generator produces a completion for an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error)
}

// GenerationChecker verifies generation backend availability.
type GenerationChecker interface {
	HealthCheck(ctx context.Context) error
}

// TokenCounter estimates prompt sizes for observability.
type TokenCounter interface {
	Count(text string) int
}
