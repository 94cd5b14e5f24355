package rank

import (
	"sort"

	"github.com/meta-toolkit/metago/ids"
	"github.com/meta-toolkit/metago/postings"
)

// ForwardSource is the slice of ForwardIndex Rocchio needs: a document's
// whole term vector, to build the feedback centroid.
type ForwardSource interface {
	SearchPrimary(doc ids.DocID) (*postings.Data[uint64], error)
}

// ScoringRanker is a Ranker that also exposes its underlying Scorer.
// Rocchio uses Rank for both of its passes and ScoreOne to weight candidate
// expansion terms; the type
// constraint exists so Rocchio can accept any of this package's concrete
// scorers (or a caller's own) interchangeably.
type ScoringRanker interface {
	Ranker
	Scorer
}

// Rocchio implements pseudo-relevance feedback query expansion (spec
// §4.9): run an initial ranking, build a centroid term vector from the
// top k-prime results' forward-index rows, expand the query with the
// highest-weighted centroid terms, and re-rank with the expanded query.
type Rocchio struct {
	Inner   ScoringRanker
	Forward ForwardSource

	Alpha    float64
	Beta     float64
	KPrime   int
	MaxTerms int
}

// NewRocchio returns a Rocchio wrapper around inner using forward for
// feedback-document term vectors, with the spec's documented defaults
// (alpha=1.0, beta=0.8, k'=10, max_terms=50).
func NewRocchio(inner ScoringRanker, forward ForwardSource) *Rocchio {
	return &Rocchio{Inner: inner, Forward: forward, Alpha: 1.0, Beta: 0.8, KPrime: 10, MaxTerms: 50}
}

// Rank runs feedback-expanded ranking. Unlike a plain Ranker, Rocchio takes
// the original query term weights directly rather than an already-built
// Context, since it must build two contexts in sequence (the initial pass
// and the expanded pass) from the same starting query.
func (r *Rocchio) Rank(idx Index, queryWeights map[ids.TermID]float64, numResults int, filter Filter) ([]Result, error) {
	initialCtx, err := NewContext(idx, queryWeights)
	if err != nil {
		return nil, err
	}
	feedback, err := r.Inner.Rank(idx, initialCtx, r.KPrime, filter)
	if err != nil {
		return nil, err
	}
	if len(feedback) == 0 {
		finalCtx, err := NewContext(idx, queryWeights)
		if err != nil {
			return nil, err
		}
		return r.Inner.Rank(idx, finalCtx, numResults, filter)
	}

	centroid := make(map[ids.TermID]float64)
	var avgFeedbackSize float64
	for _, res := range feedback {
		row, err := r.Forward.SearchPrimary(res.Doc)
		if err != nil {
			return nil, err
		}
		for _, p := range row.Pairs {
			centroid[ids.TermID(p.S)] += float64(p.V)
		}
		sz, err := idx.DocSize(res.Doc)
		if err != nil {
			return nil, err
		}
		avgFeedbackSize += float64(sz)
	}
	n := float64(len(feedback))
	avgFeedbackSize /= n
	for t := range centroid {
		centroid[t] /= n
	}

	// Select the top max_terms centroid terms by the wrapped ranker's own
	// score_one, treating the centroid as a pseudo-document of average
	// feedback-set length: this is what distinguishes Rocchio expansion
	// from a plain "pick the most frequent feedback terms" heuristic.
	type weighted struct {
		term   ids.TermID
		weight float64
	}
	ranked := make([]weighted, 0, len(centroid))
	for t, tf := range centroid {
		df, err := idx.DocFreq(t)
		if err != nil {
			return nil, err
		}
		total, err := idx.TotalNumOccurrences(t)
		if err != nil {
			return nil, err
		}
		sd := ScoreData{
			DocTermCount:     uint64(tf),
			CorpusTermCount:  total,
			DocCount:         df,
			QueryTermWeight:  1,
			DocSize:          uint64(avgFeedbackSize),
			NumDocs:          uint64(idx.NumDocs()),
			AvgDocLength:     idx.AvgDocLength(),
			TotalCorpusTerms: idx.TotalCorpusTerms(),
		}
		ranked = append(ranked, weighted{t, r.Inner.ScoreOne(sd)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		return ranked[i].term < ranked[j].term
	})
	if len(ranked) > r.MaxTerms {
		ranked = ranked[:r.MaxTerms]
	}

	newWeights := make(map[ids.TermID]float64, len(queryWeights)+len(ranked))
	for t, w := range queryWeights {
		newWeights[t] += r.Alpha * w
	}
	for _, rw := range ranked {
		newWeights[rw.term] += r.Beta * centroid[rw.term]
	}

	finalCtx, err := NewContext(idx, newWeights)
	if err != nil {
		return nil, err
	}
	return r.Inner.Rank(idx, finalCtx, numResults, filter)
}
