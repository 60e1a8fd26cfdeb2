// Package search adapts the document index into the retrieval surface the
// pipeline consumes: filtered document search, canonical facet groups and
// a connectivity probe.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain/document"
	"github.com/kailas-cloud/askdex/internal/domain/facet"
	"github.com/kailas-cloud/askdex/internal/domain/query"
	"github.com/kailas-cloud/askdex/internal/domain/schema"
	"github.com/kailas-cloud/askdex/internal/index"
)

// Facet page sizes for the filter UI.
const (
	authorFacetCount   = 50
	categoryFacetCount = 20
	typeFacetCount     = 20
)

// client is the consumer interface for index operations (ISP).
type client interface {
	Search(ctx context.Context, q *index.Query) (*index.Result, error)
}

// resolver supplies the memoized logical-to-physical field mapping.
type resolver interface {
	Resolve(ctx context.Context) schema.Mapping
}

// Repo implements the retrieval side of the pipeline against the index.
type Repo struct {
	client   client
	resolver resolver
	logger   *zap.Logger
}

// New creates a search repository.
func New(c client, r resolver, logger *zap.Logger) *Repo {
	return &Repo{client: c, resolver: r, logger: logger}
}

// Search runs one filtered query and normalizes the hits into documents,
// preserving backend rank order.
func (r *Repo) Search(
	ctx context.Context, q query.Query, criteria query.Criteria, top int,
) ([]document.Document, int64, error) {
	mapping := r.resolver.Resolve(ctx)

	res, err := r.client.Search(ctx, &index.Query{
		Text:     q.Text(),
		Criteria: criteria,
		Fields:   mapping,
		Top:      top,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("search documents: %w", err)
	}

	docs := make([]document.Document, 0, len(res.Hits))
	for _, hit := range res.Hits {
		docs = append(docs, normalize(hit, mapping))
	}
	return docs, res.Total, nil
}

// Facets fetches the three canonical facet groups. A group whose field is
// unmapped comes back empty, and one group's failure does not block the
// others.
func (r *Repo) Facets(ctx context.Context) facet.Groups {
	mapping := r.resolver.Resolve(ctx)

	authors := r.fetchGroup(ctx, mapping, schema.FieldAuthor, authorFacetCount, nil)
	categories := r.fetchGroup(ctx, mapping, schema.FieldContentType, categoryFacetCount, nil)
	types := r.fetchGroup(ctx, mapping, schema.FieldExtension, typeFacetCount, typeValue)

	return facet.NewGroups(authors, categories, types)
}

// Ping issues a minimal query to verify index connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if _, err := r.client.Search(ctx, &index.Query{Text: "test", Top: 1}); err != nil {
		return fmt.Errorf("ping index: %w", err)
	}
	return nil
}

func (r *Repo) fetchGroup(
	ctx context.Context, m schema.Mapping, logical schema.Field, count int,
	convert func(string) string,
) []facet.Facet {
	field, ok := m.Resolve(logical)
	if !ok {
		return nil
	}

	res, err := r.client.Search(ctx, &index.Query{
		Text:   query.Wildcard,
		Fields: m,
		Top:    0,
		Facets: []string{fmt.Sprintf("%s,count:%d", field, count)},
	})
	if err != nil {
		r.logger.Warn("facet group fetch failed",
			zap.String("field", field), zap.Error(err))
		return nil
	}

	entries := res.Facets[field]
	out := make([]facet.Facet, 0, len(entries))
	for _, e := range entries {
		if e.Count <= 0 {
			continue
		}
		value := strings.TrimSpace(e.Value)
		if convert != nil {
			value = convert(value)
		}
		if value == "" {
			continue
		}
		out = append(out, facet.New(value, e.Count))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// typeValue renders an extension facet bucket as a display document type.
func typeValue(v string) string {
	return strings.ToUpper(strings.TrimPrefix(v, "."))
}
