package rank_test

import (
	"path/filepath"
	"testing"

	"github.com/meta-toolkit/metago/diskvec"
	"github.com/meta-toolkit/metago/ids"
	"github.com/meta-toolkit/metago/index"
	"github.com/meta-toolkit/metago/metastore"
	"github.com/meta-toolkit/metago/postings"
	"github.com/meta-toolkit/metago/rank"
	"github.com/meta-toolkit/metago/vocab"
	"github.com/stretchr/testify/require"
)

// buildScenarioIndex extends spec §8 scenario 6's three-document corpus
// (d0="cat dog", d1="cat cat fish", d2="dog fish bird") with two filler
// documents that do not contain "cat", so doc_freq("cat")==2 against
// num_docs==5 rather than 3. With only three documents, Okapi BM25's
// Robertson-Sparck-Jones idf for a term occurring in 2 of 3 documents
// clamps to exactly 0 (idf = log(1.5/2.5), negative), which would make
// every document's score 0 and collapse the ranking to an arbitrary tie —
// a known degenerate case of that idf on tiny corpora, not a property of
// this ranker. The filler documents keep doc_freq("cat") and every
// per-document term_freq/doc_size untouched while giving idf room to stay
// positive, so the test exercises the ranker's actual discriminative
// behavior: the length-normalized term-frequency component still favors
// d1 (tf=2) over d0 (tf=1) once idf is no longer exactly zero.
func buildScenarioIndex(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	terms := []string{"apple", "banana", "bird", "cat", "dog", "fig", "fish", "grape", "melon"}
	vw, err := vocab.NewWriter(filepath.Join(dir, "termids.mapping"), filepath.Join(dir, "termids.mapping.inverse"), 4096)
	require.NoError(t, err)
	for _, term := range terms {
		_, err := vw.Insert(term)
		require.NoError(t, err)
	}
	require.NoError(t, vw.Finalize())

	// term ids: apple0 banana1 bird2 cat3 dog4 fig5 fish6 grape7 melon8
	// docs: d0="cat dog", d1="cat cat fish", d2="dog fish bird",
	//       d3="apple banana", d4="grape melon fig"
	invBuf := postings.NewBuffer[uint64]()
	invBuf.Add(2, 2, 1) // bird: d2=1
	invBuf.Add(3, 0, 1) // cat: d0=1
	invBuf.Add(3, 1, 2) // cat: d1=2
	invBuf.Add(4, 0, 1) // dog: d0=1
	invBuf.Add(4, 2, 1) // dog: d2=1
	invBuf.Add(6, 1, 1) // fish: d1=1
	invBuf.Add(6, 2, 1) // fish: d2=1
	invBuf.Add(0, 3, 1) // apple: d3=1
	invBuf.Add(1, 3, 1) // banana: d3=1
	invBuf.Add(7, 4, 1) // grape: d4=1
	invBuf.Add(8, 4, 1) // melon: d4=1
	invBuf.Add(5, 4, 1) // fig: d4=1
	invChunkDir := t.TempDir()
	invChunk, err := postings.NewChunkWriter[uint64](invChunkDir, postings.Uint64Codec).Flush(invBuf)
	require.NoError(t, err)
	require.NoError(t, postings.Build([]postings.ChunkInfo{invChunk}, postings.Uint64Codec, uint64(len(terms)),
		filepath.Join(dir, "postings.index"), filepath.Join(dir, "postings.index_index"), invChunkDir))

	fwdBuf := postings.NewBuffer[uint64]()
	fwdBuf.Add(0, 3, 1)
	fwdBuf.Add(0, 4, 1)
	fwdBuf.Add(1, 3, 2)
	fwdBuf.Add(1, 6, 1)
	fwdBuf.Add(2, 2, 1)
	fwdBuf.Add(2, 4, 1)
	fwdBuf.Add(2, 6, 1)
	fwdBuf.Add(3, 0, 1)
	fwdBuf.Add(3, 1, 1)
	fwdBuf.Add(4, 5, 1)
	fwdBuf.Add(4, 7, 1)
	fwdBuf.Add(4, 8, 1)
	fwdChunkDir := t.TempDir()
	fwdChunk, err := postings.NewChunkWriter[uint64](fwdChunkDir, postings.Uint64Codec).Flush(fwdBuf)
	require.NoError(t, err)
	require.NoError(t, postings.Build([]postings.ChunkInfo{fwdChunk}, postings.Uint64Codec, 5,
		filepath.Join(dir, "forward.index"), filepath.Join(dir, "forward.index_index"), fwdChunkDir))

	sizes, err := diskvec.CreateUint64VectorWriter(filepath.Join(dir, "docs.sizes"))
	require.NoError(t, err)
	for _, n := range []uint64{2, 3, 3, 2, 3} {
		require.NoError(t, sizes.Append(n))
	}
	require.NoError(t, sizes.Close())

	uniq, err := diskvec.CreateUint64VectorWriter(filepath.Join(dir, "corpus.uniqueterms"))
	require.NoError(t, err)
	for _, n := range []uint64{2, 2, 3, 2, 3} {
		require.NoError(t, uniq.Append(n))
	}
	require.NoError(t, uniq.Close())

	labels, err := diskvec.CreateUint32VectorWriter(filepath.Join(dir, "docs.labels"))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, labels.Append(0))
	}
	require.NoError(t, labels.Close())
	require.NoError(t, index.WriteLabelMap(filepath.Join(dir, "labelids.mapping"), []string{""}))

	schema := []metastore.FieldSchema{
		{Name: "name", Type: metastore.FieldString},
		{Name: "path", Type: metastore.FieldString},
	}
	mw, err := metastore.NewWriter(filepath.Join(dir, "metadata.db"), filepath.Join(dir, "metadata.index"), schema)
	require.NoError(t, err)
	docs := []struct {
		length, unique uint64
		name           string
	}{
		{2, 2, "d0"}, {3, 2, "d1"}, {3, 3, "d2"}, {2, 2, "d3"}, {3, 3, "d4"},
	}
	for i, d := range docs {
		require.NoError(t, mw.Write(ids.DocID(i), d.length, d.unique, map[string]interface{}{
			"name": d.name,
			"path": "/corpus/" + d.name,
		}))
	}
	require.NoError(t, mw.Close())

	return dir
}

// buildLiteralScenarioIndex builds exactly spec §8 scenario 6's corpus:
// d0="cat dog", d1="cat cat fish", d2="dog fish bird", nothing added or
// removed.
func buildLiteralScenarioIndex(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	// term ids: bird0 cat1 dog2 fish3
	terms := []string{"bird", "cat", "dog", "fish"}
	vw, err := vocab.NewWriter(filepath.Join(dir, "termids.mapping"), filepath.Join(dir, "termids.mapping.inverse"), 4096)
	require.NoError(t, err)
	for _, term := range terms {
		_, err := vw.Insert(term)
		require.NoError(t, err)
	}
	require.NoError(t, vw.Finalize())

	invBuf := postings.NewBuffer[uint64]()
	invBuf.Add(0, 2, 1) // bird: d2=1
	invBuf.Add(1, 0, 1) // cat: d0=1
	invBuf.Add(1, 1, 2) // cat: d1=2
	invBuf.Add(2, 0, 1) // dog: d0=1
	invBuf.Add(2, 2, 1) // dog: d2=1
	invBuf.Add(3, 1, 1) // fish: d1=1
	invBuf.Add(3, 2, 1) // fish: d2=1
	invChunkDir := t.TempDir()
	invChunk, err := postings.NewChunkWriter[uint64](invChunkDir, postings.Uint64Codec).Flush(invBuf)
	require.NoError(t, err)
	require.NoError(t, postings.Build([]postings.ChunkInfo{invChunk}, postings.Uint64Codec, uint64(len(terms)),
		filepath.Join(dir, "postings.index"), filepath.Join(dir, "postings.index_index"), invChunkDir))

	fwdBuf := postings.NewBuffer[uint64]()
	fwdBuf.Add(0, 1, 1)
	fwdBuf.Add(0, 2, 1)
	fwdBuf.Add(1, 1, 2)
	fwdBuf.Add(1, 3, 1)
	fwdBuf.Add(2, 0, 1)
	fwdBuf.Add(2, 2, 1)
	fwdBuf.Add(2, 3, 1)
	fwdChunkDir := t.TempDir()
	fwdChunk, err := postings.NewChunkWriter[uint64](fwdChunkDir, postings.Uint64Codec).Flush(fwdBuf)
	require.NoError(t, err)
	require.NoError(t, postings.Build([]postings.ChunkInfo{fwdChunk}, postings.Uint64Codec, 3,
		filepath.Join(dir, "forward.index"), filepath.Join(dir, "forward.index_index"), fwdChunkDir))

	sizes, err := diskvec.CreateUint64VectorWriter(filepath.Join(dir, "docs.sizes"))
	require.NoError(t, err)
	for _, n := range []uint64{2, 3, 3} {
		require.NoError(t, sizes.Append(n))
	}
	require.NoError(t, sizes.Close())

	uniq, err := diskvec.CreateUint64VectorWriter(filepath.Join(dir, "corpus.uniqueterms"))
	require.NoError(t, err)
	for _, n := range []uint64{2, 2, 3} {
		require.NoError(t, uniq.Append(n))
	}
	require.NoError(t, uniq.Close())

	labels, err := diskvec.CreateUint32VectorWriter(filepath.Join(dir, "docs.labels"))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, labels.Append(0))
	}
	require.NoError(t, labels.Close())
	require.NoError(t, index.WriteLabelMap(filepath.Join(dir, "labelids.mapping"), []string{""}))

	schema := []metastore.FieldSchema{
		{Name: "name", Type: metastore.FieldString},
		{Name: "path", Type: metastore.FieldString},
	}
	mw, err := metastore.NewWriter(filepath.Join(dir, "metadata.db"), filepath.Join(dir, "metadata.index"), schema)
	require.NoError(t, err)
	docs := []struct {
		length, unique uint64
		name           string
	}{
		{2, 2, "d0"}, {3, 2, "d1"}, {3, 3, "d2"},
	}
	for i, d := range docs {
		require.NoError(t, mw.Write(ids.DocID(i), d.length, d.unique, map[string]interface{}{
			"name": d.name,
			"path": "/corpus/" + d.name,
		}))
	}
	require.NoError(t, mw.Close())

	return dir
}

// TestBM25TinyIndexScenario asserts spec §8 scenario 6's index-quantity
// properties and BM25 ranking against the literal three-document corpus,
// with no filler documents substituted in.
//
// The index-quantity properties hold exactly as specified. The ranking
// order does not: scenario 6 states querying "cat" returns [d1, d0], but
// §4.10 also mandates idf = log((N-df+0.5)/(df+0.5)) clamped at 0 from
// below, and at N=3, df("cat")=2 that idf is log(0.6) clamped to exactly
// 0 — zeroing BM25's score for every candidate and collapsing the ranking
// to a tie, broken by the DAAT loop's doc_id-ascending tie rule into
// [d0, d1]. This is a genuine contradiction between §4.10's formula and
// §8's expected order on this exact corpus size; since §4.10 is explicit
// about clamping and this ranker implements it faithfully, the assertion
// below is the order the spec's own formula actually produces, not the
// order scenario 6's prose states.
func TestBM25TinyIndexScenario(t *testing.T) {
	dir := buildLiteralScenarioIndex(t)
	idx, err := index.OpenInverted(dir, nil)
	require.NoError(t, err)
	defer idx.Close()

	df, err := idx.DocFreq(idTermID(t, idx, "cat"))
	require.NoError(t, err)
	require.EqualValues(t, 2, df)

	tf, err := idx.TermFreq(idTermID(t, idx, "cat"), ids.DocID(1))
	require.NoError(t, err)
	require.EqualValues(t, 2, tf)

	require.InDelta(t, float64(2+3+3)/3, idx.AvgDocLength(), 1e-9)

	catID := idTermID(t, idx, "cat")
	ctx, err := rank.NewContext(idx, map[ids.TermID]float64{catID: 1})
	require.NoError(t, err)

	results, err := rank.NewBM25().Rank(idx, ctx, 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 2) // d2 has no "cat" occurrence and is absent
	for _, r := range results {
		require.NotEqual(t, ids.DocID(2), r.Doc)
	}
	require.Equal(t, 0.0, results[0].Score)
	require.Equal(t, 0.0, results[1].Score)
	// idf clamps to 0 for both candidates, so BM25 ties at score 0 and the
	// tie-break (doc_id ascending) decides the order: [d0, d1], not the
	// [d1, d0] scenario 6's prose describes.
	require.Equal(t, ids.DocID(0), results[0].Doc)
	require.Equal(t, ids.DocID(1), results[1].Doc)
}

func idTermID(t *testing.T, idx *index.InvertedIndex, term string) ids.TermID {
	t.Helper()
	id, ok := idx.GetTermID(term)
	require.True(t, ok)
	return id
}

func TestBM25RanksByLengthNormalizedTermFrequency(t *testing.T) {
	dir := buildScenarioIndex(t)
	idx, err := index.OpenInverted(dir, nil)
	require.NoError(t, err)
	defer idx.Close()

	catID, ok := idx.GetTermID("cat")
	require.True(t, ok)

	ctx, err := rank.NewContext(idx, map[ids.TermID]float64{catID: 1})
	require.NoError(t, err)
	require.False(t, ctx.Empty())

	results, err := rank.NewBM25().Rank(idx, ctx, 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, ids.DocID(1), results[0].Doc) // d1: tf=2, ranks first
	require.Equal(t, ids.DocID(0), results[1].Doc) // d0: tf=1
	require.Greater(t, results[0].Score, results[1].Score)
}

func TestRocchioExpandsQueryFromFeedback(t *testing.T) {
	dir := buildScenarioIndex(t)
	idx, err := index.OpenInverted(dir, nil)
	require.NoError(t, err)
	defer idx.Close()
	fwd, err := index.OpenForward(dir)
	require.NoError(t, err)
	defer fwd.Close()

	catID, ok := idx.GetTermID("cat")
	require.True(t, ok)

	bm25 := rank.NewBM25()
	rocchio := rank.NewRocchio(bm25, fwd)
	results, err := rocchio.Rank(idx, map[ids.TermID]float64{catID: 1}, 10, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	// d1 (the strongest "cat" match) should still rank at or above d0 once
	// the query is expanded with the feedback centroid's own terms (fish,
	// dog), since both appear in d1's or d0's rows too.
	require.Equal(t, ids.DocID(1), results[0].Doc)
}
