package cache

// ShardCache is the shard_cache<K,V,Map> wrapper of spec §4.8: N
// independent shards, each holding one instance of some Map[K,V]
// implementation, selected by hash(key) mod N. Each shard synchronizes
// itself internally (every Map implementation in this package already
// does); cross-shard operations like Len are not supported as an atomic
// whole, matching the spec's "cross-shard operations are not supported".
type ShardCache[K comparable, V any] struct {
	shards []Map[K, V]
	hash   func(K) uint64
}

// NewShardCache builds a ShardCache over n shards, each constructed by
// newShard, sharded by hash.
func NewShardCache[K comparable, V any](n int, hash func(K) uint64, newShard func() Map[K, V]) *ShardCache[K, V] {
	shards := make([]Map[K, V], n)
	for i := range shards {
		shards[i] = newShard()
	}
	return &ShardCache[K, V]{shards: shards, hash: hash}
}

func (c *ShardCache[K, V]) shardFor(key K) Map[K, V] {
	return c.shards[c.hash(key)%uint64(len(c.shards))]
}

func (c *ShardCache[K, V]) Find(key K) (V, bool) { return c.shardFor(key).Find(key) }

func (c *ShardCache[K, V]) Insert(key K, value V) { c.shardFor(key).Insert(key, value) }

// Clear drops every shard's contents. This is the one "whole cache"
// operation the spec still expects to work (clear_cache()); it is simply
// N independent per-shard clears, not an atomic cross-shard operation.
func (c *ShardCache[K, V]) Clear() {
	for _, s := range c.shards {
		s.Clear()
	}
}

// Len sums per-shard lengths. Unlike Clear this is not claimed to be an
// atomic snapshot across shards — it is a best-effort diagnostic total,
// consistent with the spec's "cross-shard operations (e.g. size) are not
// supported" as a strict guarantee.
func (c *ShardCache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.Len()
	}
	return total
}

// HashUint64 is the identity hash for term_id/doc_id-shaped keys (already
// densely, uniformly distributed small integers), the common case for
// sharding a search_primary cache.
func HashUint64[K ~uint64](k K) uint64 { return uint64(k) }
