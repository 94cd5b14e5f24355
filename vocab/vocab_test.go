package vocab_test

import (
	"path/filepath"
	"testing"

	"github.com/meta-toolkit/metago/vocab"
	"github.com/stretchr/testify/require"
)

func buildVocab(t *testing.T, terms []string, blockSize int) *vocab.Reader {
	t.Helper()
	dir := t.TempDir()
	treePath := filepath.Join(dir, "termids.mapping")
	invPath := filepath.Join(dir, "termids.mapping.inverse")

	w, err := vocab.NewWriter(treePath, invPath, blockSize)
	require.NoError(t, err)
	for _, term := range terms {
		_, err := w.Insert(term)
		require.NoError(t, err)
	}
	require.NoError(t, w.Finalize())

	r, err := vocab.Open(treePath, invPath)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func fourteenTerms() []string {
	// a..n, 14 terms.
	terms := make([]string, 14)
	for i := range terms {
		terms[i] = string(rune('a' + i))
	}
	return terms
}

func TestVocabularyRoundTripFullBlocks(t *testing.T) {
	r := buildVocab(t, fourteenTerms(), 32) // power-of-two block size
	require.EqualValues(t, 14, r.Size())

	id, ok := r.Find("a")
	require.True(t, ok)
	require.EqualValues(t, 0, id)

	id, ok = r.Find("n")
	require.True(t, ok)
	require.EqualValues(t, 13, id)

	_, ok = r.Find("z")
	require.False(t, ok)

	term, ok := r.FindTerm(7)
	require.True(t, ok)
	require.Equal(t, "h", term)
}

func TestVocabularyRoundTripPartialBlocks(t *testing.T) {
	r := buildVocab(t, fourteenTerms(), 64) // different (still power-of-two) block size
	require.EqualValues(t, 14, r.Size())

	id, ok := r.Find("a")
	require.True(t, ok)
	require.EqualValues(t, 0, id)

	id, ok = r.Find("n")
	require.True(t, ok)
	require.EqualValues(t, 13, id)

	_, ok = r.Find("z")
	require.False(t, ok)

	term, ok := r.FindTerm(7)
	require.True(t, ok)
	require.Equal(t, "h", term)
}

func TestVocabularyFullRoundTripAllTerms(t *testing.T) {
	terms := []string{"apple", "banana", "cherry", "date", "elderberry", "fig", "grape",
		"honeydew", "kiwi", "lemon", "mango", "nectarine", "orange", "papaya", "quince",
		"raspberry", "strawberry", "tangerine"}
	r := buildVocab(t, terms, vocab.DefaultBlockSize)

	for i, term := range terms {
		id, ok := r.Find(term)
		require.True(t, ok, term)
		require.EqualValues(t, i, id)

		back, ok := r.FindTerm(id)
		require.True(t, ok)
		require.Equal(t, term, back)
	}

	_, ok := r.Find("not-a-term")
	require.False(t, ok)
}

func TestVocabularyRejectsUnsortedInsert(t *testing.T) {
	dir := t.TempDir()
	w, err := vocab.NewWriter(filepath.Join(dir, "t"), filepath.Join(dir, "i"), 64)
	require.NoError(t, err)
	_, err = w.Insert("b")
	require.NoError(t, err)
	_, err = w.Insert("a")
	require.Error(t, err)
}

func TestVocabularyRejectsNonPowerOfTwoBlockSize(t *testing.T) {
	dir := t.TempDir()
	_, err := vocab.NewWriter(filepath.Join(dir, "t"), filepath.Join(dir, "i"), 100)
	require.Error(t, err)
}
