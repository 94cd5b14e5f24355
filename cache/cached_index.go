package cache

// PrimarySearcher is the part of a disk_index facade that caching
// decorates: a single key -> postings_data_ref lookup. Both
// index.InvertedIndex.SearchPrimary(term_id) and
// index.ForwardIndex.SearchPrimary(doc_id) already satisfy this
// structurally; package cache does not import package index to avoid a
// dependency cycle (index will, in turn, be wrapped by this decorator at
// the construction-driver/CLI wiring layer).
type PrimarySearcher[K comparable, V any] interface {
	SearchPrimary(key K) (V, error)
}

// CachedIndex wraps an Index whose SearchPrimary is expensive (a page
// fault into the mmapped postings blob) behind a Map cache, per spec
// §4.8's cached_index<Index, Cache>: SearchPrimary checks the cache
// first, falls through to the base index on a miss, installs the fetched
// value, and returns it.
type CachedIndex[K comparable, V any] struct {
	base  PrimarySearcher[K, V]
	cache Map[K, V]
}

// NewCachedIndex wraps base with cache.
func NewCachedIndex[K comparable, V any](base PrimarySearcher[K, V], cache Map[K, V]) *CachedIndex[K, V] {
	return &CachedIndex[K, V]{base: base, cache: cache}
}

// SearchPrimary returns the cached value for key if present, otherwise
// fetches it from the base index, caches it, and returns it.
func (c *CachedIndex[K, V]) SearchPrimary(key K) (V, error) {
	if v, ok := c.cache.Find(key); ok {
		return v, nil
	}
	v, err := c.base.SearchPrimary(key)
	if err != nil {
		var zero V
		return zero, err
	}
	c.cache.Insert(key, v)
	return v, nil
}

// ClearCache drops every cached entry.
func (c *CachedIndex[K, V]) ClearCache() { c.cache.Clear() }
