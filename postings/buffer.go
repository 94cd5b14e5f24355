package postings

import "sort"

// Buffer is the in-memory, per-worker accumulator described in spec §4.5
// step 1: a sorted-on-flush container keyed by primary key (term_id for the
// inverted index, doc_id for the forward index), each holding the pairs
// accumulated so far. Callers are expected to call Add with strictly
// increasing S per key within one flush cycle (true of construction, which
// processes documents — and therefore secondary keys — in increasing order
// per worker); Add does not re-sort.
type Buffer[V Value] struct {
	byKey map[uint64]*Data[V]
	pairs int
}

// NewBuffer returns an empty accumulator.
func NewBuffer[V Value]() *Buffer[V] {
	return &Buffer[V]{byKey: make(map[uint64]*Data[V])}
}

// Add records one (key, S, V) posting, creating the key's Data on first use.
func (b *Buffer[V]) Add(key, s uint64, v V) {
	d, ok := b.byKey[key]
	if !ok {
		d = &Data[V]{Key: key}
		b.byKey[key] = d
	}
	d.Pairs = append(d.Pairs, Pair[V]{S: s, V: v})
	b.pairs++
}

// Merge folds another Data's pairs into this buffer under the same key,
// used when a single worker accumulates the same key across documents
// processed in separate batches.
func (b *Buffer[V]) Merge(key uint64, pairs []Pair[V]) {
	d, ok := b.byKey[key]
	if !ok {
		d = &Data[V]{Key: key}
		b.byKey[key] = d
	}
	d.Pairs = append(d.Pairs, pairs...)
	b.pairs += len(pairs)
}

// PairCount is a cheap proxy for memory usage, used to drive the
// flush-by-watermark policy.
func (b *Buffer[V]) PairCount() int { return b.pairs }

// KeyCount returns the number of distinct primary keys currently buffered.
func (b *Buffer[V]) KeyCount() int { return len(b.byKey) }

// Sorted returns the buffered Data in ascending key order, each with its
// Pairs sorted ascending by S (a defensive sort; well-behaved callers
// already produce ascending S, but a chunk file's records must be
// gap-encodable regardless).
func (b *Buffer[V]) Sorted() []*Data[V] {
	out := make([]*Data[V], 0, len(b.byKey))
	for _, d := range b.byKey {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	for _, d := range out {
		sort.Slice(d.Pairs, func(i, j int) bool { return d.Pairs[i].S < d.Pairs[j].S })
	}
	return out
}

// Reset discards all buffered data so the Buffer can be reused after a flush.
func (b *Buffer[V]) Reset() {
	b.byKey = make(map[uint64]*Data[V])
	b.pairs = 0
}
