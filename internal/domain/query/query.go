// Package query holds the validated inputs of the retrieval pipeline:
// the free-text query, the structured filter criteria and the generation
// options.
package query

import (
	"fmt"
	"strings"
	"time"
)

// Wildcard matches every document in the index.
const Wildcard = "*"

// Input limits and defaults.
const (
	MaxQueryLength        = 4096
	MaxValuesPerCriterion = 32
	DefaultTemperature    = 0.7
	DefaultMaxTokens      = 2000
	MaxMaxTokens          = 8192
	DefaultTopDocuments   = 10
	MaxTopDocuments       = 50
)

// Query is a normalized free-text search query.
type Query struct {
	text string
}

// New trims and normalizes query text. Blank text becomes the wildcard,
// which matches all documents.
func New(text string) (Query, error) {
	text = strings.TrimSpace(text)
	if len(text) > MaxQueryLength {
		return Query{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if text == "" {
		text = Wildcard
	}
	return Query{text: text}, nil
}

// Text returns the query text.
func (q Query) Text() string { return q.text }

// IsWildcard reports whether the query matches all documents.
func (q Query) IsWildcard() bool { return q.text == Wildcard }

// Criteria is the structured filter input. Every criterion is optional;
// an empty criterion imposes no constraint.
type Criteria struct {
	authors     []string
	categories  []string
	extensions  []string
	documentIDs []string
	dates       DateRange
}

// NewCriteria validates and normalizes filter criteria. Blank values inside
// a criterion are dropped rather than matched literally.
func NewCriteria(authors, categories, extensions, documentIDs []string, dates DateRange) (Criteria, error) {
	c := Criteria{
		authors:     cleanValues(authors),
		categories:  cleanValues(categories),
		extensions:  cleanValues(extensions),
		documentIDs: cleanValues(documentIDs),
		dates:       dates,
	}
	if len(c.authors) > MaxValuesPerCriterion {
		return Criteria{}, fmt.Errorf("too many authors values (max %d)", MaxValuesPerCriterion)
	}
	if len(c.categories) > MaxValuesPerCriterion {
		return Criteria{}, fmt.Errorf("too many categories values (max %d)", MaxValuesPerCriterion)
	}
	if len(c.extensions) > MaxValuesPerCriterion {
		return Criteria{}, fmt.Errorf("too many extensions values (max %d)", MaxValuesPerCriterion)
	}
	if len(c.documentIDs) > MaxValuesPerCriterion {
		return Criteria{}, fmt.Errorf("too many document_ids values (max %d)", MaxValuesPerCriterion)
	}
	return c, nil
}

// Authors returns the author criterion values.
func (c Criteria) Authors() []string { return c.authors }

// Categories returns the category criterion values.
func (c Criteria) Categories() []string { return c.categories }

// Extensions returns the document-type extension criterion values.
func (c Criteria) Extensions() []string { return c.extensions }

// DocumentIDs returns the explicit document-id allowlist.
func (c Criteria) DocumentIDs() []string { return c.documentIDs }

// Dates returns the date-range criterion.
func (c Criteria) Dates() DateRange { return c.dates }

// IsEmpty reports whether no criterion is set.
func (c Criteria) IsEmpty() bool {
	return len(c.authors) == 0 && len(c.categories) == 0 && len(c.extensions) == 0 &&
		len(c.documentIDs) == 0 && c.dates.IsEmpty()
}

func cleanValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// DateRange restricts last-modified timestamps to a calendar-date window.
// A zero boundary leaves that side open.
type DateRange struct {
	start time.Time
	end   time.Time
}

// NewDateRange validates a calendar-date window.
func NewDateRange(start, end time.Time) (DateRange, error) {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return DateRange{}, fmt.Errorf("date range end is before start")
	}
	return DateRange{start: start, end: end}, nil
}

// Start returns the inclusive start date (zero when open).
func (r DateRange) Start() time.Time { return r.start }

// End returns the inclusive end date (zero when open).
func (r DateRange) End() time.Time { return r.end }

// IsEmpty reports whether both boundaries are open.
func (r DateRange) IsEmpty() bool { return r.start.IsZero() && r.end.IsZero() }

// Options are the per-request generation parameters.
type Options struct {
	temperature  float64
	maxTokens    int
	topDocuments int
}

// NewOptions validates and normalizes generation parameters.
// Defaults: maxTokens=2000, topDocuments=10. Temperature must be in [0,1].
func NewOptions(temperature float64, maxTokens, topDocuments int) (Options, error) {
	if temperature < 0 || temperature > 1 {
		return Options{}, fmt.Errorf("temperature must be between 0 and 1")
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if maxTokens > MaxMaxTokens {
		maxTokens = MaxMaxTokens
	}
	if topDocuments <= 0 {
		topDocuments = DefaultTopDocuments
	}
	if topDocuments > MaxTopDocuments {
		topDocuments = MaxTopDocuments
	}
	return Options{temperature: temperature, maxTokens: maxTokens, topDocuments: topDocuments}, nil
}

// DefaultOptions returns the default generation parameters.
func DefaultOptions() Options {
	return Options{
		temperature:  DefaultTemperature,
		maxTokens:    DefaultMaxTokens,
		topDocuments: DefaultTopDocuments,
	}
}

// Temperature returns the sampling temperature.
func (o Options) Temperature() float64 { return o.temperature }

// MaxTokens returns the output token budget.
func (o Options) MaxTokens() int { return o.maxTokens }

// TopDocuments returns how many documents to retrieve.
func (o Options) TopDocuments() int { return o.topDocuments }
