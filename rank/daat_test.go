package rank

import (
	"testing"

	"github.com/meta-toolkit/metago/ids"
	"github.com/meta-toolkit/metago/packed"
	"github.com/meta-toolkit/metago/postings"
	"github.com/stretchr/testify/require"
)

// fakeIndex is a minimal in-memory Index for exercising the DAAT loop's
// boundary rules without building a real on-disk index.
type fakeIndex struct {
	numDocs    int
	avgDL      float64
	totalTerms uint64
	streams    map[ids.TermID][]postings.Pair[uint64]
	docSizes   map[ids.DocID]uint64
}

func (f *fakeIndex) NumDocs() int                { return f.numDocs }
func (f *fakeIndex) AvgDocLength() float64       { return f.avgDL }
func (f *fakeIndex) TotalCorpusTerms() uint64    { return f.totalTerms }
func (f *fakeIndex) UniqueTerms(ids.DocID) (uint64, error) { return 0, nil }

func (f *fakeIndex) DocSize(doc ids.DocID) (uint64, error) { return f.docSizes[doc], nil }

func (f *fakeIndex) DocFreq(term ids.TermID) (uint64, error) {
	return uint64(len(f.streams[term])), nil
}

func (f *fakeIndex) TotalNumOccurrences(term ids.TermID) (uint64, error) {
	var total uint64
	for _, p := range f.streams[term] {
		total += p.V
	}
	return total, nil
}

func (f *fakeIndex) StreamFor(term ids.TermID) (*postings.Stream[uint64], bool) {
	pairs, ok := f.streams[term]
	if !ok {
		pairs = nil
	}
	w := packed.NewWriter()
	postings.WriteTo(w, &postings.Data[uint64]{Pairs: pairs}, postings.Uint64Codec)
	s, err := postings.NewStream[uint64](w.Bytes(), postings.Uint64Codec)
	if err != nil {
		return nil, false
	}
	return s, true
}

func TestDAATSkipsOutOfVocabularyQuery(t *testing.T) {
	idx := &fakeIndex{numDocs: 3, avgDL: 2, totalTerms: 6, streams: map[ids.TermID][]postings.Pair[uint64]{}}
	ctx, err := NewContext(idx, map[ids.TermID]float64{ids.TermID(99): 1})
	require.NoError(t, err)
	require.True(t, ctx.Empty())

	results, err := NewBM25().Rank(idx, ctx, 10, nil)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestDAATTiesBreakByDocIDAscending(t *testing.T) {
	idx := &fakeIndex{
		numDocs:    2,
		avgDL:      1,
		totalTerms: 2,
		docSizes:   map[ids.DocID]uint64{0: 1, 1: 1},
		streams: map[ids.TermID][]postings.Pair[uint64]{
			1: {{S: 0, V: 1}, {S: 1, V: 1}},
		},
	}
	ctx, err := NewContext(idx, map[ids.TermID]float64{1: 1})
	require.NoError(t, err)

	// A scorer returning the same value for every term contribution
	// produces an exact tie between doc 0 and doc 1.
	constant := func(ScoreData) float64 { return 5 }
	results, err := daatRank(idx, ctx, 10, nil, constant, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, ids.DocID(0), results[0].Doc)
	require.Equal(t, ids.DocID(1), results[1].Doc)
}

func TestDAATFilterExcludesDocuments(t *testing.T) {
	idx := &fakeIndex{
		numDocs:    2,
		avgDL:      1,
		totalTerms: 2,
		docSizes:   map[ids.DocID]uint64{0: 1, 1: 1},
		streams: map[ids.TermID][]postings.Pair[uint64]{
			1: {{S: 0, V: 1}, {S: 1, V: 1}},
		},
	}
	ctx, err := NewContext(idx, map[ids.TermID]float64{1: 1})
	require.NoError(t, err)

	filter := func(d ids.DocID) bool { return d != ids.DocID(0) }
	results, err := daatRank(idx, ctx, 10, filter, func(ScoreData) float64 { return 1 }, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, ids.DocID(1), results[0].Doc)
}

type docSetExcluder map[ids.DocID]bool

func (e docSetExcluder) Contains(doc ids.DocID) bool { return e[doc] }

func TestComposeFilterRejectsExcludedBeforeNext(t *testing.T) {
	excluder := docSetExcluder{2: true}
	nextCalls := map[ids.DocID]bool{}
	next := func(d ids.DocID) bool {
		nextCalls[d] = true
		return d != ids.DocID(1)
	}

	filter := ComposeFilter(excluder, next)

	require.False(t, filter(2))
	require.False(t, nextCalls[2], "next must not run once excluder already rejected the doc")

	require.False(t, filter(1))
	require.True(t, filter(0))
}

func TestComposeFilterWithNilExcluderAndNextAdmitsEverything(t *testing.T) {
	filter := ComposeFilter(nil, nil)
	require.True(t, filter(0))
	require.True(t, filter(42))
}
