package heap_test

import (
	"testing"

	"github.com/meta-toolkit/metago/heap"
	"github.com/stretchr/testify/require"
)

func TestFixedHeapKeepsTopKByScoreDescending(t *testing.T) {
	type scored struct {
		id    int
		score float64
	}
	less := func(a, b scored) bool { return a.score > b.score } // higher score ranks first

	h := heap.New[scored](3, less)
	for _, s := range []scored{{1, 5}, {2, 9}, {3, 1}, {4, 7}, {5, 3}} {
		h.Push(s)
	}
	require.Equal(t, 3, h.Len())

	top := h.ExtractTop()
	require.Len(t, top, 3)
	require.Equal(t, 2, top[0].id) // score 9
	require.Equal(t, 4, top[1].id) // score 7
	require.Equal(t, 1, top[2].id) // score 5
}

func TestFixedHeapUnbounded(t *testing.T) {
	less := func(a, b int) bool { return a > b }
	h := heap.New[int](0, less)
	for _, v := range []int{3, 1, 4, 1, 5, 9, 2, 6} {
		h.Push(v)
	}
	require.Equal(t, 8, h.Len())
	top := h.ExtractTop()
	require.Equal(t, []int{9, 6, 5, 4, 3, 2, 1, 1}, top)
}

func TestFixedHeapTiesBreakByInsertionUnspecified(t *testing.T) {
	less := func(a, b int) bool { return a > b }
	h := heap.New[int](2, less)
	h.Push(1)
	h.Push(1)
	h.Push(1)
	require.Equal(t, 2, h.Len())
	top := h.ExtractTop()
	require.Equal(t, []int{1, 1}, top)
}
