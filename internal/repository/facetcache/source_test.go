package facetcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/cache"
	"github.com/kailas-cloud/askdex/internal/domain/facet"
)

// --- Mocks ---

type mockSource struct {
	groups facet.Groups
	calls  int
}

func (m *mockSource) Facets(_ context.Context) facet.Groups {
	m.calls++
	return m.groups
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, cache.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func testGroups() facet.Groups {
	return facet.NewGroups(
		[]facet.Facet{facet.New("Jane Doe", 12), facet.New("Bob Lee", 3)},
		[]facet.Facet{facet.New("application/pdf", 9)},
		[]facet.Facet{facet.New("PDF", 9), facet.New("DOCX", 2)},
	)
}

func newTestCachedSource(inner *mockSource) (*CachedSource, *mockKVStore) {
	ms := &mockKVStore{}
	cs := New(inner, ms, time.Minute, nil, zap.NewNop())
	return cs, ms
}

// --- Tests ---

func TestFacets_CacheMiss(t *testing.T) {
	inner := &mockSource{groups: testGroups()}
	cs, ms := newTestCachedSource(inner)

	var setKey string
	var setTTL time.Duration
	ms.setFn = func(_ context.Context, key string, _ []byte, ttl time.Duration) error {
		setKey = key
		setTTL = ttl
		return nil
	}

	got := cs.Facets(context.Background())

	if inner.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", inner.calls)
	}
	if len(got.Authors()) != 2 || got.Authors()[0].Value() != "Jane Doe" {
		t.Errorf("unexpected authors: %v", got.Authors())
	}
	if setKey != cacheKey {
		t.Errorf("unexpected cache key: %s", setKey)
	}
	if setTTL != time.Minute {
		t.Errorf("unexpected ttl: %s", setTTL)
	}
}

func TestFacets_CacheHit(t *testing.T) {
	inner := &mockSource{groups: facet.Groups{}}
	cs, ms := newTestCachedSource(inner)

	cached, err := encodeGroups(testGroups())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return cached, nil
	}

	got := cs.Facets(context.Background())

	if inner.calls != 0 {
		t.Fatalf("expected no upstream call on hit, got %d", inner.calls)
	}
	if len(got.Authors()) != 2 || got.Authors()[1].Count() != 3 {
		t.Errorf("unexpected authors: %v", got.Authors())
	}
	if len(got.DocumentTypes()) != 2 || got.DocumentTypes()[0].Value() != "PDF" {
		t.Errorf("unexpected document types: %v", got.DocumentTypes())
	}
}

func TestFacets_CacheErrorDegradesToFetch(t *testing.T) {
	inner := &mockSource{groups: testGroups()}
	cs, ms := newTestCachedSource(inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, &cache.Error{Op: cache.OpGet, Err: errors.New("connection refused")}
	}

	got := cs.Facets(context.Background())

	if inner.calls != 1 {
		t.Fatalf("expected fetch despite cache error, got %d calls", inner.calls)
	}
	if got.IsEmpty() {
		t.Error("expected upstream groups")
	}
}

func TestFacets_CorruptPayloadDegradesToFetch(t *testing.T) {
	inner := &mockSource{groups: testGroups()}
	cs, ms := newTestCachedSource(inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte("{not json"), nil
	}

	if got := cs.Facets(context.Background()); got.IsEmpty() {
		t.Error("expected upstream groups")
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", inner.calls)
	}
}

func TestFacets_EmptyUpstreamNotCached(t *testing.T) {
	inner := &mockSource{groups: facet.Groups{}}
	cs, ms := newTestCachedSource(inner)

	var setCalled bool
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		setCalled = true
		return nil
	}

	if got := cs.Facets(context.Background()); !got.IsEmpty() {
		t.Errorf("expected empty groups, got %v", got)
	}
	if setCalled {
		t.Error("empty groups must not be cached")
	}
}

func TestFacets_SetFailureStillReturnsGroups(t *testing.T) {
	inner := &mockSource{groups: testGroups()}
	cs, ms := newTestCachedSource(inner)

	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		return &cache.Error{Op: cache.OpSet, Err: errors.New("connection refused")}
	}

	if got := cs.Facets(context.Background()); got.IsEmpty() {
		t.Error("expected upstream groups despite cache put failure")
	}
}

func TestNew_DefaultTTL(t *testing.T) {
	cs := New(&mockSource{}, &mockKVStore{}, 0, nil, zap.NewNop())
	if cs.ttl != DefaultTTL {
		t.Errorf("expected default ttl, got %s", cs.ttl)
	}
}
