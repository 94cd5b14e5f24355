package build_test

import (
	"path/filepath"
	"testing"

	"github.com/meta-toolkit/metago/analysis"
	"github.com/meta-toolkit/metago/build"
	"github.com/meta-toolkit/metago/corpus"
	"github.com/meta-toolkit/metago/index"
	"github.com/stretchr/testify/require"
)

func newAnalyzer(t *testing.T) analysis.Analyzer {
	t.Helper()
	az, err := analysis.Create("ngram-word", map[string]interface{}{"ngram": 1})
	require.NoError(t, err)
	return az
}

func TestBuilderProducesLoadableIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	opts := build.Options{IndexDir: dir, Parallelism: 3, FlushEveryNDocs: 1}

	b, err := build.NewBuilder(opts, newAnalyzer(t))
	require.NoError(t, err)

	docs := []*corpus.Document{
		{Name: "d0", Path: "d0", Content: []byte("the cat sat on the mat"), ClassLabel: "animals"},
		{Name: "d1", Path: "d1", Content: []byte("the dog sat on the rug"), ClassLabel: "animals"},
		{Name: "d2", Path: "d2", Content: []byte("stocks and bonds rallied today"), ClassLabel: "finance"},
	}
	for _, d := range docs {
		require.NoError(t, b.Add(d))
	}
	require.NoError(t, b.Finish())

	idx, err := index.OpenInverted(dir, newAnalyzer(t))
	require.NoError(t, err)
	defer idx.Close()
	require.Equal(t, 3, idx.NumDocs())

	catID, ok := idx.GetTermID("cat")
	require.True(t, ok)
	df, err := idx.DocFreq(catID)
	require.NoError(t, err)
	require.Equal(t, uint64(1), df)

	satID, ok := idx.GetTermID("sat")
	require.True(t, ok)
	df, err = idx.DocFreq(satID)
	require.NoError(t, err)
	require.Equal(t, uint64(2), df)

	fwd, err := index.OpenForward(dir)
	require.NoError(t, err)
	defer fwd.Close()
	size, err := fwd.DocSize(0)
	require.NoError(t, err)
	require.Equal(t, uint64(6), size)
}

func TestBuilderRejectsAddAfterFinish(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	opts := build.Options{IndexDir: dir, Parallelism: 1}
	b, err := build.NewBuilder(opts, newAnalyzer(t))
	require.NoError(t, err)
	require.NoError(t, b.Add(&corpus.Document{Name: "d0", Content: []byte("hello world")}))
	require.NoError(t, b.Finish())
	require.Error(t, b.Add(&corpus.Document{Name: "d1", Content: []byte("too late")}))
}

func TestBuilderEmptyCorpus(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	opts := build.Options{IndexDir: dir, Parallelism: 2}
	b, err := build.NewBuilder(opts, newAnalyzer(t))
	require.NoError(t, err)
	require.NoError(t, b.Finish())

	idx, err := index.OpenInverted(dir, newAnalyzer(t))
	require.NoError(t, err)
	defer idx.Close()
	require.Equal(t, 0, idx.NumDocs())
}
