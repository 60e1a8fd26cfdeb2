// Package azure implements the index boundary against the Azure AI Search
// REST API (documents search endpoint).
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/query"
	"github.com/kailas-cloud/askdex/internal/index"
	"github.com/kailas-cloud/askdex/internal/metrics"
)

const (
	defaultAPIVersion = "2023-11-01"
	defaultTimeout    = 30 * time.Second

	maxErrorBody = 64 << 10
)

// Client is an index.Client speaking the Azure AI Search documents API.
type Client struct {
	searchURL  string
	indexName  string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds the search index connection settings.
type Config struct {
	Endpoint   string
	IndexName  string
	APIKey     string
	APIVersion string
	Timeout    time.Duration
	Logger     *zap.Logger
}

// New creates a search index client. Endpoint, index name and API key
// are required; the API version and timeout have working defaults.
func New(cfg *Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("search endpoint required: %w", domain.ErrConfiguration)
	}
	if cfg.IndexName == "" {
		return nil, fmt.Errorf("search index name required: %w", domain.ErrConfiguration)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("search api key required: %w", domain.ErrConfiguration)
	}

	version := cfg.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	searchURL := fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s",
		strings.TrimRight(cfg.Endpoint, "/"),
		url.PathEscape(cfg.IndexName),
		url.QueryEscape(version))

	return &Client{
		searchURL:  searchURL,
		indexName:  cfg.IndexName,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

type searchRequest struct {
	Search     string   `json:"search"`
	Filter     string   `json:"filter,omitempty"`
	Top        int      `json:"top"`
	Count      bool     `json:"count"`
	Facets     []string `json:"facets,omitempty"`
	SearchMode string   `json:"searchMode"`
}

type searchResponse struct {
	Count  int64                   `json:"@odata.count"`
	Facets map[string][]facetEntry `json:"@search.facets"`
	Value  []map[string]any        `json:"value"`
}

type facetEntry struct {
	Value any   `json:"value"`
	Count int64 `json:"count"`
}

// Search implements index.Client. A Top of zero requests no documents,
// which the backend accepts for facet-only and probe queries.
func (c *Client) Search(ctx context.Context, q *index.Query) (*index.Result, error) {
	text := q.Text
	if text == "" {
		text = query.Wildcard
	}

	body, err := json.Marshal(searchRequest{
		Search:     text,
		Filter:     buildFilter(q.Criteria, q.Fields),
		Top:        q.Top,
		Count:      true,
		Facets:     q.Facets,
		SearchMode: "all",
	})
	if err != nil {
		return nil, domain.NewSearchError(fmt.Errorf("marshal search request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewSearchError(fmt.Errorf("new search request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	start := time.Now()

	resp, err := c.httpClient.Do(req)

	duration := time.Since(start)

	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(c.indexName, "error").Inc()
		metrics.SearchErrorsTotal.WithLabelValues(c.indexName, "network").Inc()
		return nil, domain.NewNetworkError(domain.ServiceSearch,
			fmt.Errorf("execute search request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.SearchRequestsTotal.WithLabelValues(c.indexName, "error").Inc()
		metrics.SearchErrorsTotal.WithLabelValues(c.indexName, "api_error").Inc()
		return nil, parseAPIError(resp)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(c.indexName, "error").Inc()
		metrics.SearchErrorsTotal.WithLabelValues(c.indexName, "decode").Inc()
		return nil, domain.NewSearchError(fmt.Errorf("decode search response: %w", err))
	}

	metrics.SearchRequestsTotal.WithLabelValues(c.indexName, "success").Inc()
	metrics.SearchRequestDuration.WithLabelValues(c.indexName).Observe(duration.Seconds())

	result := convertResponse(&parsed)

	c.logger.Debug("search completed",
		zap.Int("hits", len(result.Hits)),
		zap.Int64("total", result.Total),
		zap.Duration("duration", duration))

	return result, nil
}

func convertResponse(parsed *searchResponse) *index.Result {
	result := &index.Result{
		Total: parsed.Count,
		Hits:  make([]index.Hit, 0, len(parsed.Value)),
	}

	for _, entry := range parsed.Value {
		hit := index.Hit{Fields: make(map[string]any, len(entry))}
		for k, v := range entry {
			switch {
			case k == "@search.score":
				if f, ok := v.(float64); ok {
					hit.Score = f
				}
			case k == "@search.highlights":
				hit.Highlights = flattenHighlights(v)
			case strings.HasPrefix(k, "@"):
				// other OData annotations are not document fields
			default:
				hit.Fields[k] = v
			}
		}
		result.Hits = append(result.Hits, hit)
	}

	if len(parsed.Facets) > 0 {
		result.Facets = make(map[string][]index.FacetValue, len(parsed.Facets))
		for field, entries := range parsed.Facets {
			values := make([]index.FacetValue, 0, len(entries))
			for _, e := range entries {
				values = append(values, index.FacetValue{Value: facetLabel(e.Value), Count: e.Count})
			}
			result.Facets[field] = values
		}
	}

	return result
}

// facetLabel renders a facet bucket value; buckets over non-string fields
// arrive as numbers or booleans.
func facetLabel(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func flattenHighlights(v any) []string {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	var out []string
	for _, fragments := range m {
		list, ok := fragments.([]any)
		if !ok {
			continue
		}
		for _, f := range list {
			if s, ok := f.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// parseAPIError extracts a human-readable error from a non-2xx response.
// The backend wraps failures in an {"error":{"code","message"}} envelope.
func parseAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var parsed struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		if parsed.Error.Code != "" {
			return domain.NewSearchError(fmt.Errorf("search API error %d: %s: %s",
				resp.StatusCode, parsed.Error.Code, parsed.Error.Message))
		}
		return domain.NewSearchError(fmt.Errorf("search API error %d: %s",
			resp.StatusCode, parsed.Error.Message))
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return domain.NewSearchError(fmt.Errorf("search API error %d: %s", resp.StatusCode, msg))
}
