// Package rank implements ranker_context, the DAAT (document-at-a-time)
// scoring loop, the five scoring functions of spec §4.10, and the Rocchio
// pseudo-relevance feedback wrapper (spec §4.9).
//
// Grounded on zoekt's score.go (scoreFilesUsingBM25, the BM25 constant
// defaults k1/b) and the top-k collection idiom of eval.go, generalized
// from "file matches carrying many scoring signals" down to the spec's
// narrow ScoreData -> float64 scoring function contract, plus the
// pack's bm25-style scoring-parameter shape (configurable constants,
// sane conventional defaults) for the LM-family scorers zoekt itself
// does not implement.
package rank

// ScoreData is the pure-function input every scoring function consumes
// (spec §4.10): one query term's contribution to one document's score,
// plus the corpus-wide statistics every scorer needs. No scorer reads raw
// postings outside the DAAT loop that assembles this struct.
type ScoreData struct {
	// DocTermCount ("dtc") is the number of occurrences of the query term
	// in this document.
	DocTermCount uint64
	// CorpusTermCount is the total number of occurrences of the query
	// term across the whole corpus.
	CorpusTermCount uint64
	// DocCount ("df") is the number of documents containing the query
	// term at least once.
	DocCount uint64
	// QueryTermWeight ("qtw") is the weight assigned to this term by the
	// query (usually its query-side term frequency).
	QueryTermWeight float64

	// DocSize ("ds") is the document's total term count (length).
	DocSize uint64
	// DocUniqueTerms is the document's distinct term count.
	DocUniqueTerms uint64

	// NumDocs ("N") is the corpus-wide document count.
	NumDocs uint64
	// AvgDocLength is the corpus-wide mean document length.
	AvgDocLength float64
	// TotalCorpusTerms is the corpus-wide sum of document lengths.
	TotalCorpusTerms uint64
}
