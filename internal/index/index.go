// Package index defines the boundary to the external document index: the
// request and response shapes a search adapter must speak. The index is
// externally managed and schema-uncertain; hits are raw field bags.
package index

import (
	"context"

	"github.com/kailas-cloud/askdex/internal/domain/query"
	"github.com/kailas-cloud/askdex/internal/domain/schema"
)

// Query is one search request against the document index.
type Query struct {
	Text     string         // free text, or the wildcard
	Criteria query.Criteria // structured filters, rendered by the adapter
	Fields   schema.Mapping // resolved physical fields for filter rendering
	Top      int            // maximum hits to return (0 = facet/probe only)
	Facets   []string       // facet parameters, e.g. "metadata_author,count:50"
}

// Hit is one matched item: the raw field bag plus the backend-assigned
// relevance score and optional highlight fragments.
type Hit struct {
	Fields     map[string]any
	Score      float64
	Highlights []string
}

// FacetValue is one value/count pair of a facet histogram.
type FacetValue struct {
	Value string
	Count int64
}

// Result is the index response to a Query. Hits preserve backend rank order.
type Result struct {
	Total  int64
	Hits   []Hit
	Facets map[string][]FacetValue
}

// Client executes search requests against the document index.
type Client interface {
	Search(ctx context.Context, q *Query) (*Result, error)
}
