// Package facet models value/count histograms used to populate filter UI.
package facet

// Facet is one (value, count) pair from a field histogram.
type Facet struct {
	value string
	count int64
}

// New creates a Facet.
func New(value string, count int64) Facet {
	return Facet{value: value, count: count}
}

// Value returns the facet value.
func (f Facet) Value() string { return f.value }

// Count returns how many matching documents carry the value.
func (f Facet) Count() int64 { return f.count }

// Groups holds the three canonical facet groups. A group whose field could
// not be resolved or fetched is empty, never an error.
type Groups struct {
	authors       []Facet
	categories    []Facet
	documentTypes []Facet
}

// NewGroups creates the canonical facet groups.
func NewGroups(authors, categories, documentTypes []Facet) Groups {
	return Groups{authors: authors, categories: categories, documentTypes: documentTypes}
}

// Authors returns the author facets.
func (g Groups) Authors() []Facet { return g.authors }

// Categories returns the category facets.
func (g Groups) Categories() []Facet { return g.categories }

// DocumentTypes returns the document-type facets.
func (g Groups) DocumentTypes() []Facet { return g.documentTypes }

// IsEmpty reports whether every group is empty.
func (g Groups) IsEmpty() bool {
	return len(g.authors) == 0 && len(g.categories) == 0 && len(g.documentTypes) == 0
}
