// Package facetcache caches facet histograms in a key-value store so the
// filter UI does not hit the index on every page load.
package facetcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/cache"
	"github.com/kailas-cloud/askdex/internal/domain/facet"
)

const cacheKey = "askdex:facets:v1"

// DefaultTTL bounds filter UI staleness when no TTL is configured.
const DefaultTTL = 5 * time.Minute

// source is the consumer interface for the upstream facet fetch (ISP).
type source interface {
	Facets(ctx context.Context) facet.Groups
}

// store is the consumer interface for the cache backend (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSource serves facet groups from the cache, falling through to the
// upstream source. Cache failures degrade to a direct fetch.
type CachedSource struct {
	inner      source
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner source,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedSource{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Facets returns cached groups or fetches from the upstream source. Empty
// upstream results are never cached, so a transient index failure does not
// pin an empty filter UI for the whole TTL.
func (c *CachedSource) Facets(ctx context.Context) facet.Groups {
	if groups, ok := c.getFromCache(ctx); ok {
		c.incCache("hit")
		return groups
	}

	c.incCache("miss")

	groups := c.inner.Facets(ctx)
	if !groups.IsEmpty() {
		c.putToCache(ctx, groups)
	}
	return groups
}

func (c *CachedSource) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedSource) getFromCache(ctx context.Context) (facet.Groups, bool) {
	data, err := c.store.Get(ctx, cacheKey)
	if err != nil {
		if !errors.Is(err, cache.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached facets", zap.Error(err))
		}
		return facet.Groups{}, false
	}

	groups, err := decodeGroups(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached facets", zap.Error(err))
		return facet.Groups{}, false
	}
	return groups, true
}

func (c *CachedSource) putToCache(ctx context.Context, groups facet.Groups) {
	data, err := encodeGroups(groups)
	if err != nil {
		c.logger.Warn("Failed to encode facets", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, cacheKey, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache facets", zap.Error(err))
	}
}

type facetPayload struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

type groupsPayload struct {
	Authors       []facetPayload `json:"authors"`
	Categories    []facetPayload `json:"categories"`
	DocumentTypes []facetPayload `json:"document_types"`
}

func encodeGroups(g facet.Groups) ([]byte, error) {
	return json.Marshal(groupsPayload{
		Authors:       encodeFacets(g.Authors()),
		Categories:    encodeFacets(g.Categories()),
		DocumentTypes: encodeFacets(g.DocumentTypes()),
	})
}

func decodeGroups(data []byte) (facet.Groups, error) {
	var p groupsPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return facet.Groups{}, err
	}
	return facet.NewGroups(
		decodeFacets(p.Authors),
		decodeFacets(p.Categories),
		decodeFacets(p.DocumentTypes),
	), nil
}

func encodeFacets(facets []facet.Facet) []facetPayload {
	out := make([]facetPayload, len(facets))
	for i, f := range facets {
		out[i] = facetPayload{Value: f.Value(), Count: f.Count()}
	}
	return out
}

func decodeFacets(payloads []facetPayload) []facet.Facet {
	if len(payloads) == 0 {
		return nil
	}
	out := make([]facet.Facet, len(payloads))
	for i, p := range payloads {
		out[i] = facet.New(p.Value, p.Count)
	}
	return out
}
