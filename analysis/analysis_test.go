package analysis_test

import (
	"testing"

	"github.com/meta-toolkit/metago/analysis"
	"github.com/stretchr/testify/require"
)

// fixedStream replays a fixed token slice, used to test filters in
// isolation from any particular upstream tokenizer.
type fixedStream struct {
	toks []string
	pos  int
}

func newFixedStream(toks ...string) *fixedStream { return &fixedStream{toks: toks} }

func (s *fixedStream) SetContent(string) { s.pos = 0 }
func (s *fixedStream) Valid() bool       { return s.pos < len(s.toks) }
func (s *fixedStream) Next() (string, error) {
	if !s.Valid() {
		return "", analysis.ErrEmptyStream
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}
func (s *fixedStream) Clone() analysis.TokenStream {
	return &fixedStream{toks: s.toks, pos: s.pos}
}

func drain(t *testing.T, ts analysis.TokenStream) []string {
	t.Helper()
	var out []string
	for ts.Valid() {
		tok, err := ts.Next()
		require.NoError(t, err)
		out = append(out, tok)
	}
	return out
}

func TestWhitespaceTokenizerAlternatesRuns(t *testing.T) {
	ts := analysis.NewWhitespaceTokenizer()
	ts.SetContent("a  b")
	require.Equal(t, []string{"a", "  ", "b"}, drain(t, ts))
}

func TestEnglishNormalizerScenario(t *testing.T) {
	ts := analysis.NewWhitespaceTokenizer()
	norm := analysis.NewEnglishNormalizerFilter(ts)
	norm.SetContent("\"This \t\n\f\ris a quote,'' said Dr. Smith.")

	want := []string{
		"``", "This", " ", "is", " ", "a", " ", "quote", ",", "''",
		" ", "said", " ", "Dr", ".", " ", "Smith", ".",
	}
	require.Equal(t, want, drain(t, norm))
}

func TestEnglishNormalizerPreservesIntraWordHyphenSplitsDashRun(t *testing.T) {
	ts := analysis.NewWhitespaceTokenizer()
	norm := analysis.NewEnglishNormalizerFilter(ts)
	norm.SetContent("ex-parrot -- gone")
	require.Equal(t, []string{"ex-parrot", " ", "--", " ", "gone"}, drain(t, norm))
}

func TestLengthFilterBypassesSentenceMarkers(t *testing.T) {
	inner := newFixedStream("<s>", "a", "bb", "ccc", "dddd", "</s>")
	f := analysis.NewLengthFilter(inner, 2, 3)
	f.SetContent("")
	require.Equal(t, []string{"<s>", "bb", "ccc", "</s>"}, drain(t, f))
}

func TestBlankFilterDropsWhitespaceOnlyTokens(t *testing.T) {
	inner := newFixedStream("a", " ", "", "b", "\t")
	f := analysis.NewBlankFilter(inner)
	f.SetContent("")
	require.Equal(t, []string{"a", "b"}, drain(t, f))
}

func TestEmptySentenceFilterDropsEmptyPairs(t *testing.T) {
	inner := newFixedStream("<s>", "</s>", "<s>", "word", "</s>")
	f := analysis.NewEmptySentenceFilter(inner)
	f.SetContent("")
	require.Equal(t, []string{"<s>", "word", "</s>"}, drain(t, f))
}

func TestListFilterAcceptMode(t *testing.T) {
	inner := newFixedStream("cat", "dog", "bird")
	words := map[string]struct{}{"cat": {}, "bird": {}}
	f := analysis.NewListFilter(inner, words, analysis.ListAccept)
	f.SetContent("")
	require.Equal(t, []string{"cat", "bird"}, drain(t, f))
}

func TestListFilterRejectMode(t *testing.T) {
	inner := newFixedStream("cat", "dog", "bird")
	words := map[string]struct{}{"dog": {}}
	f := analysis.NewListFilter(inner, words, analysis.ListReject)
	f.SetContent("")
	require.Equal(t, []string{"cat", "bird"}, drain(t, f))
}

func TestNgramWordAnalyzerUnigram(t *testing.T) {
	a, err := analysis.Create("ngram-word", map[string]interface{}{"ngram": 1})
	require.NoError(t, err)
	fm, err := a.Analyze("cat dog cat")
	require.NoError(t, err)
	require.EqualValues(t, 2, fm["cat"])
	require.EqualValues(t, 1, fm["dog"])
}

func TestNgramWordAnalyzerBigram(t *testing.T) {
	a, err := analysis.Create("ngram-word", map[string]interface{}{"ngram": 2})
	require.NoError(t, err)
	fm, err := a.Analyze("the cat sat")
	require.NoError(t, err)
	require.EqualValues(t, 1, fm["the_cat"])
	require.EqualValues(t, 1, fm["cat_sat"])
}

func TestSentenceBoundaryFilterWrapsSentences(t *testing.T) {
	ts := analysis.NewWhitespaceTokenizer()
	sb := analysis.NewSentenceBoundaryFilter(ts)
	sb.SetContent("Dr. Smith left. She returned")
	got := drain(t, sb)
	require.Contains(t, got, "<s>")
	require.Contains(t, got, "</s>")
	// "Dr." does not end the sentence (abbreviation exception); "left." does.
	leftIdx, endIdx := -1, -1
	for i, tok := range got {
		if tok == "left." {
			leftIdx = i
		}
		if tok == "</s>" && endIdx == -1 {
			endIdx = i
		}
	}
	require.Greater(t, leftIdx, -1)
	require.Greater(t, endIdx, leftIdx)
}
