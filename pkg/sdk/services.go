package sdk

import "context"

// ProcessQuery runs the full retrieval-augmented pipeline.
func (c *Client) ProcessQuery(ctx context.Context, req RAGRequest) (RAGResult, error) {
	var out RAGResult
	if err := c.post(ctx, "/api/rag", req, &out); err != nil {
		return RAGResult{}, err
	}
	return out, nil
}

// Search runs retrieval alone, without generation.
func (c *Client) Search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	var out SearchResult
	if err := c.post(ctx, "/api/search", req, &out); err != nil {
		return SearchResult{}, err
	}
	return out, nil
}

// Facets lists the filterable value histograms of the index.
func (c *Client) Facets(ctx context.Context) (FacetGroups, error) {
	var out FacetGroups
	if err := c.get(ctx, "/api/facets", &out); err != nil {
		return FacetGroups{}, err
	}
	return out, nil
}

// Health runs the backend connectivity self-test. A degraded server
// answers 503, surfaced as an *APIError.
func (c *Client) Health(ctx context.Context) (HealthReport, error) {
	var out HealthReport
	if err := c.get(ctx, "/health", &out); err != nil {
		return HealthReport{}, err
	}
	return out, nil
}

// Schema returns the resolved index field mapping.
func (c *Client) Schema(ctx context.Context) (SchemaInfo, error) {
	var out SchemaInfo
	if err := c.get(ctx, "/api/schema", &out); err != nil {
		return SchemaInfo{}, err
	}
	return out, nil
}

// Config returns the non-secret server configuration.
func (c *Client) Config(ctx context.Context) (ConfigInfo, error) {
	var out ConfigInfo
	if err := c.get(ctx, "/api/config", &out); err != nil {
		return ConfigInfo{}, err
	}
	return out, nil
}
