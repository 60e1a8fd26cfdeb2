// Package rag orchestrates the retrieval-augmented answer pipeline: search,
// context assembly, generation, confidence scoring and citations.
package rag

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/answer"
	"github.com/kailas-cloud/askdex/internal/domain/document"
	"github.com/kailas-cloud/askdex/internal/domain/facet"
	"github.com/kailas-cloud/askdex/internal/domain/query"
	"github.com/kailas-cloud/askdex/internal/metrics"
)

// NoResultsResponse is returned when retrieval finds nothing. Generation is
// skipped entirely on that path.
const NoResultsResponse = "I couldn't find any relevant documents for your query. " +
	"Please try rephrasing your question or adjusting your filters."

// NoResultsModel marks answers that never reached the generation backend.
const NoResultsModel = "none"

// Service runs the pipeline. Safe for concurrent use; each call carries its
// own state.
type Service struct {
	searcher  Searcher
	facets    FacetSource
	generator Generator
	checker   GenerationChecker
	tokens    TokenCounter
	logger    *zap.Logger
}

// New creates the pipeline service. tokens can be nil.
func New(
	searcher Searcher, facets FacetSource,
	generator Generator, checker GenerationChecker,
	tokens TokenCounter, logger *zap.Logger,
) *Service {
	return &Service{
		searcher:  searcher,
		facets:    facets,
		generator: generator,
		checker:   checker,
		tokens:    tokens,
		logger:    logger,
	}
}

// ProcessQuery answers a query from retrieved documents: search, assemble
// context, generate, score. Citations follow backend retrieval order at
// every stage.
func (s *Service) ProcessQuery(
	ctx context.Context, q query.Query, criteria query.Criteria, opts query.Options,
) (answer.Answer, error) {
	start := time.Now()

	s.logger.Info("processing query",
		zap.String("query", q.Text()),
		zap.Int("top_documents", opts.TopDocuments()))

	docs, total, err := s.searcher.Search(ctx, q, criteria, opts.TopDocuments())
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("error").Inc()
		return answer.Answer{}, fmt.Errorf("search documents: %w", err)
	}

	if len(docs) == 0 {
		elapsed := time.Since(start)
		metrics.QueriesTotal.WithLabelValues("no_results").Inc()
		metrics.QueryDuration.Observe(elapsed.Seconds())
		s.logger.Info("no documents retrieved", zap.String("query", q.Text()))
		return answer.New(NoResultsResponse, []document.Source{},
			noResultsConfidence, 0, elapsed.Seconds(), NoResultsModel), nil
	}

	asm := assemble(docs)

	s.logger.Debug("context assembled",
		zap.Int("retrieved", len(docs)),
		zap.Int64("total_matches", total),
		zap.Int("usable", asm.usable),
		zap.Bool("fallback", asm.fallback))

	if s.tokens != nil {
		estimate := s.tokens.Count(asm.systemPrompt) + s.tokens.Count(q.Text())
		metrics.PromptTokensEstimate.Observe(float64(estimate))
		s.logger.Debug("prompt size estimated", zap.Int("tokens", estimate))
	}

	res, err := s.generator.Generate(ctx, domain.CompletionRequest{
		SystemPrompt: asm.systemPrompt,
		UserPrompt:   q.Text(),
		Temperature:  opts.Temperature(),
		MaxTokens:    opts.MaxTokens(),
	})
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("error").Inc()
		return answer.Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	confidence := scoreConfidence(docs, asm.fallback, res.Finished)

	sources := make([]document.Source, len(docs))
	for i, d := range docs {
		sources[i] = document.SourceOf(d)
	}

	elapsed := time.Since(start)

	outcome := "answered"
	if asm.fallback {
		outcome = "fallback"
	}
	metrics.QueriesTotal.WithLabelValues(outcome).Inc()
	metrics.QueryDuration.Observe(elapsed.Seconds())
	metrics.QueryConfidence.Observe(confidence)

	s.logger.Info("query processed",
		zap.Int("sources", len(sources)),
		zap.Int("tokens", res.TotalTokens),
		zap.Float64("confidence", confidence),
		zap.Duration("duration", elapsed))

	return answer.New(res.Content, sources, confidence,
		res.TotalTokens, elapsed.Seconds(), res.Model), nil
}

// SearchDocuments runs retrieval alone, without generation. top is clamped
// to the configured bounds.
func (s *Service) SearchDocuments(
	ctx context.Context, q query.Query, criteria query.Criteria, top int,
) ([]document.Document, int64, error) {
	if top <= 0 {
		top = query.DefaultTopDocuments
	}
	if top > query.MaxTopDocuments {
		top = query.MaxTopDocuments
	}

	docs, totalCount, err := s.searcher.Search(ctx, q, criteria, top)
	if err != nil {
		return nil, 0, fmt.Errorf("search documents: %w", err)
	}
	return docs, totalCount, nil
}

// AvailableFilters returns the facet histograms for the filter UI.
func (s *Service) AvailableFilters(ctx context.Context) facet.Groups {
	return s.facets.Facets(ctx)
}
