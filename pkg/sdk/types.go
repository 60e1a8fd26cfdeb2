package sdk

// Filters restricts which documents a query may match. Empty criteria
// impose no constraint.
type Filters struct {
	Authors       []string   `json:"authors,omitempty"`
	Categories    []string   `json:"categories,omitempty"`
	DocumentTypes []string   `json:"document_types,omitempty"`
	DocumentIDs   []string   `json:"document_ids,omitempty"`
	DateRange     *DateRange `json:"date_range,omitempty"`
}

// DateRange is a calendar-date window (YYYY-MM-DD, inclusive). An empty
// boundary leaves that side open.
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// RAGRequest is one retrieval-augmented query.
type RAGRequest struct {
	Query        string   `json:"query"`
	Filters      *Filters `json:"filters,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	MaxTokens    *int     `json:"max_tokens,omitempty"`
	TopDocuments *int     `json:"top_documents,omitempty"`
}

// Source is one citation, in retrieval rank order.
type Source struct {
	Name             string  `json:"name"`
	Author           string  `json:"author"`
	Relevance        float64 `json:"relevance"`
	DisplayRelevance float64 `json:"display_relevance"`
	Type             string  `json:"type"`
	Category         string  `json:"category"`
	ID               string  `json:"id"`
}

// RAGResult is the answer-with-citations response.
type RAGResult struct {
	Response       string   `json:"response"`
	Sources        []Source `json:"sources"`
	Confidence     float64  `json:"confidence"`
	Tokens         int      `json:"tokens"`
	ProcessingTime float64  `json:"processing_time"`
	Model          string   `json:"model"`
}

// SearchRequest is a retrieval-only query.
type SearchRequest struct {
	Query   string   `json:"query"`
	Filters *Filters `json:"filters,omitempty"`
	Top     int      `json:"top,omitempty"`
}

// Document is one normalized retrieved document.
type Document struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	Author       string  `json:"author"`
	Category     string  `json:"category"`
	Type         string  `json:"type"`
	LastModified string  `json:"last_modified,omitempty"`
	Size         string  `json:"size"`
	Score        float64 `json:"score"`
	Status       string  `json:"status"`
}

// SearchResult is the retrieval-only response.
type SearchResult struct {
	Documents  []Document `json:"documents"`
	TotalCount int64      `json:"total_count"`
}

// Facet is one (value, count) pair of a filter histogram.
type Facet struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// FacetGroups holds the three filterable histograms of the index.
type FacetGroups struct {
	Authors       []Facet `json:"authors"`
	Categories    []Facet `json:"categories"`
	DocumentTypes []Facet `json:"document_types"`
}

// HealthReport is the backend connectivity self-test outcome.
type HealthReport struct {
	Status    string            `json:"status"`
	Services  map[string]string `json:"services"`
	Errors    []string          `json:"errors,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// Healthy reports whether every backend probe passed.
func (r HealthReport) Healthy() bool { return r.Status == "healthy" }

// SchemaInfo is the resolved index field mapping (debug surface).
type SchemaInfo struct {
	Fields     map[string]string `json:"fields"`
	Discovered []string          `json:"discovered_fields"`
}

// ConfigInfo reports non-secret server configuration.
type ConfigInfo struct {
	SearchConfigured     bool   `json:"search_configured"`
	GenerationConfigured bool   `json:"generation_configured"`
	CacheEnabled         bool   `json:"cache_enabled"`
	IndexName            string `json:"index_name"`
	Model                string `json:"model"`
	Provider             string `json:"provider"`
}
