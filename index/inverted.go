package index

import (
	"path/filepath"
	"sort"

	"github.com/meta-toolkit/metago/analysis"
	"github.com/meta-toolkit/metago/corpus"
	"github.com/meta-toolkit/metago/ids"
	"github.com/meta-toolkit/metago/postings"
)

// InvertedIndex is the disk_index facade keyed by term_id: postings run
// doc_id ascending within each term's row. Query-time tokenization lives
// here (not in package analysis) because it must use the exact vocabulary
// the index was built with, turning unseen query terms into silent misses
// rather than new vocabulary entries.
type InvertedIndex struct {
	*baseIndex
	postings *postings.File[uint64]
	analyzer analysis.Analyzer
}

// OpenInverted loads the inverted_index view of a previously built index
// directory. analyzer must be the same (or an equivalent) analyzer the
// index was built with, so query-time tokenization matches the vocabulary.
func OpenInverted(dir string, analyzer analysis.Analyzer) (*InvertedIndex, error) {
	base, err := openBase(dir)
	if err != nil {
		return nil, err
	}
	pf, err := postings.OpenFile(filepath.Join(dir, postingsBlob), filepath.Join(dir, postingsLocations), postings.Uint64Codec)
	if err != nil {
		base.close()
		return nil, err
	}
	return &InvertedIndex{baseIndex: base, postings: pf, analyzer: analyzer}, nil
}

// Close releases all underlying mappings.
func (idx *InvertedIndex) Close() error {
	err1 := idx.postings.Close()
	err2 := idx.baseIndex.close()
	if err1 != nil {
		return err1
	}
	return err2
}

// Tokenize runs the index's analyzer over document and resolves the
// resulting term strings to term_ids via the vocabulary, dropping any term
// the vocabulary has never seen (an out-of-vocabulary query term can never
// match a posting, so it contributes nothing and is silently omitted
// rather than erroring).
func (idx *InvertedIndex) Tokenize(document *corpus.Document) (map[ids.TermID]uint64, error) {
	text, err := document.Text()
	if err != nil {
		return nil, err
	}
	fm, err := idx.analyzer.Analyze(string(text))
	if err != nil {
		return nil, err
	}
	out := make(map[ids.TermID]uint64, len(fm))
	for term, count := range fm {
		tid, ok := idx.GetTermID(term)
		if !ok {
			continue
		}
		out[tid] += count
	}
	return out, nil
}

// SearchPrimary returns the full postings_data row for term, or an empty
// one if term is outside the key space. This is the override point a
// caching decorator (package cache) intercepts.
func (idx *InvertedIndex) SearchPrimary(term ids.TermID) (*postings.Data[uint64], error) {
	s, err := idx.postings.Find(uint64(term))
	if err != nil {
		return nil, err
	}
	return s.Collect()
}

// StreamFor returns a lazy, non-caching postings_stream for term. The
// second return is false only on a decode error; a term outside the key
// space still yields a valid, empty stream (true), matching the
// default-constructed postings_data rule.
func (idx *InvertedIndex) StreamFor(term ids.TermID) (*postings.Stream[uint64], bool) {
	s, err := idx.postings.Find(uint64(term))
	if err != nil {
		return nil, false
	}
	return s, true
}

// DocFreq returns the number of documents containing term.
func (idx *InvertedIndex) DocFreq(term ids.TermID) (uint64, error) {
	s, err := idx.postings.Find(uint64(term))
	if err != nil {
		return 0, err
	}
	return s.Size(), nil
}

// TotalNumOccurrences returns the total number of occurrences of term
// across the whole corpus (sum of per-document term counts).
func (idx *InvertedIndex) TotalNumOccurrences(term ids.TermID) (uint64, error) {
	s, err := idx.postings.Find(uint64(term))
	if err != nil {
		return 0, err
	}
	return s.TotalCounts(), nil
}

// TermFreq returns the number of occurrences of term within doc (0 if
// term does not occur in doc).
func (idx *InvertedIndex) TermFreq(term ids.TermID, doc ids.DocID) (uint64, error) {
	data, err := idx.SearchPrimary(term)
	if err != nil {
		return 0, err
	}
	i := sort.Search(len(data.Pairs), func(i int) bool { return data.Pairs[i].S >= uint64(doc) })
	if i < len(data.Pairs) && data.Pairs[i].S == uint64(doc) {
		return data.Pairs[i].V, nil
	}
	return 0, nil
}

// TotalCorpusTerms returns the total number of term occurrences across the
// whole corpus (the sum of every document's length).
func (idx *InvertedIndex) TotalCorpusTerms() uint64 {
	var total uint64
	for i := 0; i < idx.NumDocs(); i++ {
		total += idx.docSizes.Get(i)
	}
	return total
}

// AvgDocLength returns the mean document length over the corpus.
func (idx *InvertedIndex) AvgDocLength() float64 {
	n := idx.NumDocs()
	if n == 0 {
		return 0
	}
	return float64(idx.TotalCorpusTerms()) / float64(n)
}
