package postings

import "github.com/meta-toolkit/metago/packed"

// Stream is postings_stream<S, V>: size() and total_counts() are decoded up
// front and are O(1); Next lazily decodes one more (gap, value) pair per
// call, adding the gap to the running secondary key.
type Stream[V Value] struct {
	r     *packed.Reader
	codec ValueCodec[V]
	size  uint64
	total V
	left  uint64
	last  uint64
}

// NewStream wraps raw (a packed size/total_counts/(gap,value)* record, as
// produced by Data.WriteTo) for lazy decoding.
func NewStream[V Value](raw []byte, codec ValueCodec[V]) (*Stream[V], error) {
	r := packed.NewReader(raw)
	size := r.Uvarint()
	total := codec.Decode(r)
	if r.Err() != nil {
		return nil, r.Err()
	}
	return &Stream[V]{r: r, codec: codec, size: size, total: total, left: size}, nil
}

// Size returns the number of (S, V) pairs, decoded without iterating.
func (s *Stream[V]) Size() uint64 { return s.size }

// TotalCounts returns the sum of V over all pairs, decoded without iterating.
func (s *Stream[V]) TotalCounts() V { return s.total }

// Valid reports whether Next may be called.
func (s *Stream[V]) Valid() bool { return s.left > 0 }

// Next decodes the next (S, V) pair, where S is reconstructed by adding the
// stored gap to the running secondary key.
func (s *Stream[V]) Next() (uint64, V, error) {
	if s.left == 0 {
		var zero V
		return 0, zero, errEmptyStream
	}
	gap := s.r.Uvarint()
	val := s.codec.Decode(s.r)
	if s.r.Err() != nil {
		var zero V
		return 0, zero, s.r.Err()
	}
	s.last += gap
	s.left--
	return s.last, val, nil
}

// Collect drains the stream into a Data value. Intended for tests and small
// postings lists; callers on the hot query path should iterate with Next
// instead.
func (s *Stream[V]) Collect() (*Data[V], error) {
	d := &Data[V]{Pairs: make([]Pair[V], 0, s.size)}
	for s.Valid() {
		sv, v, err := s.Next()
		if err != nil {
			return nil, err
		}
		d.Pairs = append(d.Pairs, Pair[V]{S: sv, V: v})
	}
	return d, nil
}

// WriteTo packs d into w using codec: size, total_counts, then size
// (gap, value) pairs. Pairs must already be sorted ascending by S.
func WriteTo[V Value](w *packed.Writer, d *Data[V], codec ValueCodec[V]) {
	w.Uvarint(uint64(len(d.Pairs)))
	codec.Encode(w, d.TotalCounts())
	var last uint64
	for _, p := range d.Pairs {
		w.Uvarint(p.S - last)
		codec.Encode(w, p.V)
		last = p.S
	}
}
