package rank

import "math"

// DirichletPrior implements Bayesian-smoothed (Dirichlet prior) language
// model scoring (spec §4.10).
type DirichletPrior struct {
	Mu float64
}

// NewDirichletPrior returns a Dirichlet-prior scorer with the spec's
// documented default (mu=2000).
func NewDirichletPrior() *DirichletPrior {
	return &DirichletPrior{Mu: 2000}
}

// ScoreOne implements Scorer. p_c is the term's corpus-wide collection
// probability, corpus_term_count / total_corpus_terms.
func (s *DirichletPrior) ScoreOne(d ScoreData) float64 {
	pc := float64(d.CorpusTermCount) / float64(d.TotalCorpusTerms)
	dtc := float64(d.DocTermCount)
	ds := float64(d.DocSize)
	return math.Log(1+dtc/(s.Mu*pc)) + d.QueryTermWeight*math.Log(s.Mu/(ds+s.Mu))
}

// Rank implements Ranker via the shared DAAT driver.
func (s *DirichletPrior) Rank(idx Index, ctx *Context, numResults int, filter Filter) ([]Result, error) {
	return daatRank(idx, ctx, numResults, filter, s.ScoreOne, nil, nil)
}
