// Package askdex provides an embedded client for the askdex
// retrieval-augmented query pipeline: ask natural-language questions
// against an indexed document corpus and receive answers with cited
// sources and a bounded confidence estimate.
//
//	client, _ := askdex.New(
//	    askdex.WithSearchIndex("https://acme.search.windows.net", "documents", searchKey),
//	    askdex.WithAzureOpenAI("https://acme.openai.azure.com", openaiKey),
//	    askdex.WithModel("gpt-4"),
//	)
//	defer client.Close()
//
//	result, _ := client.ProcessQuery(ctx, "expansion risk", askdex.Filters{}, nil)
//	fmt.Println(result.Response, result.Confidence)
package askdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/cache"
	cacheRedis "github.com/kailas-cloud/askdex/internal/cache/redis"
	"github.com/kailas-cloud/askdex/internal/domain/document"
	"github.com/kailas-cloud/askdex/internal/domain/facet"
	"github.com/kailas-cloud/askdex/internal/domain/query"
	domschema "github.com/kailas-cloud/askdex/internal/domain/schema"
	"github.com/kailas-cloud/askdex/internal/index/azure"
	"github.com/kailas-cloud/askdex/internal/repository/facetcache"
	searchrepo "github.com/kailas-cloud/askdex/internal/repository/search"
	openaiGen "github.com/kailas-cloud/askdex/internal/transport/openai"
	raguc "github.com/kailas-cloud/askdex/internal/usecase/rag"
	schemauc "github.com/kailas-cloud/askdex/internal/usecase/schema"
)

// Filters restricts which documents a query may match. Every criterion is
// optional; an empty criterion imposes no constraint.
type Filters struct {
	Authors       []string
	Categories    []string
	DocumentTypes []string
	DocumentIDs   []string
	DateStart     time.Time
	DateEnd       time.Time
}

// QueryOptions are per-query generation parameters. Zero values fall back
// to the client defaults.
type QueryOptions struct {
	Temperature  float64
	MaxTokens    int
	TopDocuments int
}

// Source is one citation of a generated answer, in retrieval rank order.
type Source struct {
	Name             string
	Author           string
	Relevance        float64 // raw backend score
	DisplayRelevance float64 // 0..1, presentation only
	Type             string
	Category         string
	ID               string
}

// Result is the answer-with-citations outcome of one query.
type Result struct {
	Response       string
	Sources        []Source
	Confidence     float64
	Tokens         int
	ProcessingTime float64
	Model          string
}

// Document is one normalized retrieved document.
type Document struct {
	ID           string
	Title        string
	Content      string
	Author       string
	Category     string
	Type         string
	LastModified time.Time
	Size         string
	Score        float64
	Status       string
}

// Facet is one (value, count) pair of a filter histogram.
type Facet struct {
	Value string
	Count int64
}

// FacetGroups holds the three filterable histograms of the index.
type FacetGroups struct {
	Authors       []Facet
	Categories    []Facet
	DocumentTypes []Facet
}

// ConnectionStatus reports per-backend connectivity.
type ConnectionStatus struct {
	Search     bool
	Generation bool
	Errors     []string
}

// Client is the askdex embedded-use entry point.
type Client struct {
	rag        *raguc.Service
	resolver   *schemauc.Service
	cacheStore cache.Store
	defaults   query.Options
}

// New creates a Client. The search index connection and a generation API
// key are required; construction fails fast on missing configuration.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		model:         "gpt-4",
		searchTimeout: 30 * time.Second,
		temperature:   query.DefaultTemperature,
		maxTokens:     query.DefaultMaxTokens,
		topDocuments:  query.DefaultTopDocuments,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	indexClient, err := azure.New(&azure.Config{
		Endpoint:   cfg.searchEndpoint,
		IndexName:  cfg.searchIndex,
		APIKey:     cfg.searchAPIKey,
		APIVersion: cfg.searchAPIVersion,
		Timeout:    cfg.searchTimeout,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("askdex: %w", err)
	}

	generator, err := openaiGen.NewGenerator(&openaiGen.Config{
		APIKey:          cfg.openaiAPIKey,
		BaseURL:         cfg.openaiBaseURL,
		AzureEndpoint:   cfg.azureEndpoint,
		AzureAPIVersion: cfg.azureAPIVersion,
		Model:           cfg.model,
		Provider:        cfg.provider,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("askdex: %w", err)
	}

	defaults, err := query.NewOptions(cfg.temperature, cfg.maxTokens, cfg.topDocuments)
	if err != nil {
		return nil, fmt.Errorf("askdex: invalid defaults: %w", err)
	}

	resolver := schemauc.New(indexClient, logger)
	searchRepo := searchrepo.New(indexClient, resolver, logger)

	var facetSource raguc.FacetSource = searchRepo
	var cacheStore cache.Store
	if len(cfg.cacheAddrs) > 0 {
		cacheStore, err = cacheRedis.NewStore(cacheRedis.Config{
			Addrs:    cfg.cacheAddrs,
			Username: cfg.cacheUsername,
			Password: cfg.cachePassword,
			DB:       cfg.cacheDB,
		})
		if err != nil {
			return nil, fmt.Errorf("askdex: create cache store: %w", err)
		}
		facetSource = facetcache.New(searchRepo, cacheStore, cfg.cacheTTL, nil, logger)
	}

	estimator := raguc.NewEstimator(cfg.model)
	ragSvc := raguc.New(searchRepo, facetSource, generator, generator, estimator, logger)

	return &Client{
		rag:        ragSvc,
		resolver:   resolver,
		cacheStore: cacheStore,
		defaults:   defaults,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.cacheStore != nil {
		c.cacheStore.Close()
	}
}

// ProcessQuery answers a question from retrieved documents. opts may be
// nil; omitted fields fall back to the client defaults.
func (c *Client) ProcessQuery(
	ctx context.Context, question string, filters Filters, opts *QueryOptions,
) (Result, error) {
	if question == "" {
		return Result{}, errors.New("askdex: query is required")
	}

	q, err := query.New(question)
	if err != nil {
		return Result{}, fmt.Errorf("askdex: %w", err)
	}

	criteria, err := toCriteria(filters)
	if err != nil {
		return Result{}, err
	}

	options, err := c.toOptions(opts)
	if err != nil {
		return Result{}, err
	}

	ans, err := c.rag.ProcessQuery(ctx, q, criteria, options)
	if err != nil {
		return Result{}, fmt.Errorf("askdex: %w", err)
	}

	sources := make([]Source, len(ans.Sources()))
	for i, s := range ans.Sources() {
		sources[i] = Source{
			Name:             s.Name(),
			Author:           s.Author(),
			Relevance:        s.Relevance(),
			DisplayRelevance: s.DisplayRelevance(),
			Type:             s.Type(),
			Category:         s.Category(),
			ID:               s.ID(),
		}
	}

	return Result{
		Response:       ans.Response(),
		Sources:        sources,
		Confidence:     ans.Confidence(),
		Tokens:         ans.Tokens(),
		ProcessingTime: ans.ProcessingTime(),
		Model:          ans.Model(),
	}, nil
}

// SearchDocuments runs retrieval alone, without generation. A blank query
// matches all documents.
func (c *Client) SearchDocuments(
	ctx context.Context, question string, filters Filters, top int,
) ([]Document, int64, error) {
	q, err := query.New(question)
	if err != nil {
		return nil, 0, fmt.Errorf("askdex: %w", err)
	}

	criteria, err := toCriteria(filters)
	if err != nil {
		return nil, 0, err
	}

	docs, total, err := c.rag.SearchDocuments(ctx, q, criteria, top)
	if err != nil {
		return nil, 0, fmt.Errorf("askdex: %w", err)
	}

	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = toDocument(d)
	}
	return out, total, nil
}

// AvailableFilters returns the filterable value histograms of the index.
func (c *Client) AvailableFilters(ctx context.Context) FacetGroups {
	groups := c.rag.AvailableFilters(ctx)
	return FacetGroups{
		Authors:       toFacets(groups.Authors()),
		Categories:    toFacets(groups.Categories()),
		DocumentTypes: toFacets(groups.DocumentTypes()),
	}
}

// TestConnection probes both backends independently.
func (c *Client) TestConnection(ctx context.Context) ConnectionStatus {
	report := c.rag.TestConnection(ctx)
	return ConnectionStatus{
		Search:     report.Search,
		Generation: report.Generation,
		Errors:     report.Errors,
	}
}

// Schema returns the resolved logical-to-physical field mapping, probing
// the index on first use.
func (c *Client) Schema(ctx context.Context) map[string]string {
	mapping := c.resolver.Resolve(ctx)
	fields := make(map[string]string, mapping.Len())
	for _, logical := range domschema.Fields() {
		if name, ok := mapping.Resolve(logical); ok {
			fields[string(logical)] = name
		}
	}
	return fields
}

func toCriteria(f Filters) (query.Criteria, error) {
	dates, err := query.NewDateRange(f.DateStart, f.DateEnd)
	if err != nil {
		return query.Criteria{}, fmt.Errorf("askdex: %w", err)
	}
	c, err := query.NewCriteria(f.Authors, f.Categories, f.DocumentTypes, f.DocumentIDs, dates)
	if err != nil {
		return query.Criteria{}, fmt.Errorf("askdex: %w", err)
	}
	return c, nil
}

func (c *Client) toOptions(opts *QueryOptions) (query.Options, error) {
	if opts == nil {
		return c.defaults, nil
	}

	temperature := opts.Temperature
	if temperature == 0 {
		temperature = c.defaults.Temperature()
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.defaults.MaxTokens()
	}
	topDocuments := opts.TopDocuments
	if topDocuments == 0 {
		topDocuments = c.defaults.TopDocuments()
	}

	o, err := query.NewOptions(temperature, maxTokens, topDocuments)
	if err != nil {
		return query.Options{}, fmt.Errorf("askdex: %w", err)
	}
	return o, nil
}

func toDocument(d document.Document) Document {
	return Document{
		ID:           d.ID(),
		Title:        d.Title(),
		Content:      d.Content(),
		Author:       d.Author(),
		Category:     d.Category(),
		Type:         d.Type(),
		LastModified: d.LastModified(),
		Size:         d.Size(),
		Score:        d.Score(),
		Status:       d.Status(),
	}
}

func toFacets(ff []facet.Facet) []Facet {
	out := make([]Facet, len(ff))
	for i, f := range ff {
		out[i] = Facet{Value: f.Value(), Count: f.Count()}
	}
	return out
}
