// Package postings implements postings_data/postings_stream (spec §4.4) and
// the external-memory chunk/merge machinery that builds a postings_file from
// an unordered stream of per-document term counts (spec §4.5). The same
// machinery serves both the inverted index (key=term_id, secondary=doc_id)
// and the forward index (key=doc_id, secondary=term_id); only the value type
// varies, hence the Value type parameter.
//
// Grounded on zoekt's ngram posting list construction (contentprovider.go,
// the docid-delta-coded posting streams in read.go) generalized from
// fixed-width trigram postings to the spec's arbitrary (gap, value) pairs,
// and on the RoaringBitmap/roaring package's pattern of a lazy iterator over
// a packed byte stream.
package postings

import "github.com/meta-toolkit/metago/packed"

// Value is the constraint on postings values: unsigned term/doc counts in
// the common case, or float64 for accumulators (e.g. Rocchio centroids)
// that need fractional weights.
type Value interface {
	~uint64 | ~float64
}

// Pair is one (secondary-key, value) posting.
type Pair[V Value] struct {
	S uint64
	V V
}

// Data is the materialized postings_data<K, S, V> for a single primary key:
// Pairs sorted ascending by S, S values unique.
type Data[V Value] struct {
	Key   uint64
	Pairs []Pair[V]
}

// TotalCounts sums V over all pairs, matching the total_counts invariant.
func (d *Data[V]) TotalCounts() V {
	var total V
	for _, p := range d.Pairs {
		total += p.V
	}
	return total
}

// Size returns the number of (S, V) pairs.
func (d *Data[V]) Size() int { return len(d.Pairs) }

// ValueCodec supplies the packed encode/decode pair for V, since Go generics
// cannot dispatch on the underlying type of a type parameter at compile
// time. Codecs are supplied explicitly by callers (postings.Uint64Codec or
// postings.Float64Codec) rather than inferred.
type ValueCodec[V Value] struct {
	Encode func(w *packed.Writer, v V)
	Decode func(r *packed.Reader) V
}

// Uint64Codec packs V as an unsigned LEB128 varint; used for term/doc
// frequency counts, the overwhelming common case.
var Uint64Codec = ValueCodec[uint64]{
	Encode: func(w *packed.Writer, v uint64) { w.Uvarint(v) },
	Decode: func(r *packed.Reader) uint64 { return r.Uvarint() },
}

// Float64Codec packs V as 8 bytes little-endian IEEE-754; used where values
// are fractional weights rather than integral counts.
var Float64Codec = ValueCodec[float64]{
	Encode: func(w *packed.Writer, v float64) { w.Float64(v) },
	Decode: func(r *packed.Reader) float64 { return r.Float64() },
}
