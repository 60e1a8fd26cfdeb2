// Package schema resolves the logical filter fields to the physical field
// names of the live index.
package schema

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain/query"
	domschema "github.com/kailas-cloud/askdex/internal/domain/schema"
	"github.com/kailas-cloud/askdex/internal/index"
)

// synonyms lists, per logical field, the substrings that identify a
// physical field name. Earlier entries take priority. Title deliberately
// omits "name": storage name fields usually hold raw filenames, and the
// normalizer derives better titles from the identifier.
var synonyms = map[domschema.Field][]string{
	domschema.FieldAuthor:       {"author", "creator", "writer", "by"},
	domschema.FieldContentType:  {"content_type", "contenttype", "document_type", "documenttype", "mime", "file_type", "filetype"},
	domschema.FieldExtension:    {"extension", "file_ext", "suffix"},
	domschema.FieldTitle:        {"title", "subject", "heading"},
	domschema.FieldLastModified: {"last_modified", "lastmodified", "modified", "updated", "update_date", "creation_date", "date"},
	domschema.FieldSize:         {"size", "content_length", "length", "bytes"},
	domschema.FieldIdentifier:   {"storage_path", "document_id", "documentid", "parent_id", "docid"},
}

// Service discovers the field mapping by probing one sample document.
// The index schema is externally managed, so nothing guarantees fixed
// field names; the probe runs once and its outcome is kept for the
// process lifetime.
type Service struct {
	prober Prober
	logger *zap.Logger

	once    sync.Once
	mapping domschema.Mapping
	fields  []string
}

// New creates a schema resolver.
func New(prober Prober, logger *zap.Logger) *Service {
	return &Service{prober: prober, logger: logger}
}

// Resolve returns the field mapping, probing the index on first use.
// Concurrent first callers share a single probe. A failed or empty probe
// memoizes an empty mapping: filters and facets degrade to unavailable
// instead of failing every query.
func (s *Service) Resolve(ctx context.Context) domschema.Mapping {
	s.once.Do(func() {
		s.mapping = s.probe(ctx)
	})
	return s.mapping
}

// Fields returns the physical field names discovered by the probe, in
// sorted order, resolving the schema on first use. Empty when the probe
// failed or the index has no documents.
func (s *Service) Fields(ctx context.Context) []string {
	s.Resolve(ctx)
	return s.fields
}

func (s *Service) probe(ctx context.Context) domschema.Mapping {
	res, err := s.prober.Search(ctx, &index.Query{Text: query.Wildcard, Top: 1})
	if err != nil {
		s.logger.Warn("schema probe failed, field filters unavailable", zap.Error(err))
		return domschema.Mapping{}
	}
	if len(res.Hits) == 0 {
		s.logger.Warn("schema probe returned no documents, field filters unavailable")
		return domschema.Mapping{}
	}

	available := make([]string, 0, len(res.Hits[0].Fields))
	for name := range res.Hits[0].Fields {
		available = append(available, name)
	}
	sort.Strings(available)
	s.fields = available

	m := match(available)
	s.logger.Info("index schema resolved",
		zap.Int("available_fields", len(available)),
		zap.Int("mapped_fields", m.Len()))
	return m
}

// match resolves each logical field against the sorted list of available
// physical field names.
func match(available []string) domschema.Mapping {
	lowered := make([]string, len(available))
	for i, name := range available {
		lowered[i] = strings.ToLower(name)
	}

	fields := make(map[domschema.Field]string, len(synonyms))
	for _, logical := range domschema.Fields() {
		if name := firstMatch(available, lowered, synonyms[logical]); name != "" {
			fields[logical] = name
		}
	}
	return domschema.NewMapping(fields)
}

// firstMatch scans synonyms in priority order and returns the first
// physical field whose lowered name contains the synonym.
func firstMatch(available, lowered, syns []string) string {
	for _, syn := range syns {
		for i, name := range lowered {
			if strings.Contains(name, syn) {
				return available[i]
			}
		}
	}
	return ""
}
