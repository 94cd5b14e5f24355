// Package heap implements fixed_heap (spec §4.11): a bounded top-k
// container built on container/heap, the standard way to do the "push to
// min-heap, pop root past capacity, drain sorted" idiom that zoekt's
// eval.go applies to keep per-shard match counts bounded (ShardMaxMatchCount)
// — generalized here to the spec's explicit comparator-keyed push/pop.
package heap

import "container/heap"

// Less reports whether a sorts before b under the caller's desired
// best-first ordering (e.g. "higher score is better" for ranked results).
type Less[T any] func(a, b T) bool

// FixedHeap is a bounded container holding at most K elements: Push
// inserts and, once size exceeds K, evicts the current worst element
// (the minimum under less). ExtractTop drains every element in best-first
// order (descending under less).
type FixedHeap[T any] struct {
	k    int
	less Less[T]
	h    *minHeap[T]
}

// New returns an empty FixedHeap bounded at k elements, ordered best-first
// by less (i.e. less(a, b) == true means a ranks ahead of b).
func New[T any](k int, less Less[T]) *FixedHeap[T] {
	h := &minHeap[T]{less: less}
	heap.Init(h)
	return &FixedHeap[T]{k: k, less: less, h: h}
}

// Push inserts x, then pops the current worst element if the heap now
// holds more than k elements.
func (f *FixedHeap[T]) Push(x T) {
	heap.Push(f.h, x)
	if f.k > 0 && f.h.Len() > f.k {
		heap.Pop(f.h)
	}
}

// Len returns the number of elements currently held.
func (f *FixedHeap[T]) Len() int { return f.h.Len() }

// ExtractTop drains the heap and returns its elements sorted best-first
// (descending under less), consuming the heap.
func (f *FixedHeap[T]) ExtractTop() []T {
	n := f.h.Len()
	out := make([]T, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = heap.Pop(f.h).(T)
	}
	return out
}

// minHeap is a container/heap.Interface over T ordered by the *worst*
// element first (i.e. the reverse of less), so that popping the root
// always evicts the current worst element under the caller's comparator.
type minHeap[T any] struct {
	items []T
	less  Less[T]
}

func (h *minHeap[T]) Len() int { return len(h.items) }

// Less inverts the caller's comparator: the heap root must be the worst
// element (so Push+overflow-Pop evicts it), while ExtractTop still wants
// best-first order.
func (h *minHeap[T]) Less(i, j int) bool { return h.less(h.items[j], h.items[i]) }

func (h *minHeap[T]) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *minHeap[T]) Push(x interface{}) { h.items = append(h.items, x.(T)) }

func (h *minHeap[T]) Pop() interface{} {
	old := h.items
	n := len(old)
	x := old[n-1]
	h.items = old[:n-1]
	return x
}
