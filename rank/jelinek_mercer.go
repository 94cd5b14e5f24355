package rank

import "math"

// JelinekMercer implements linearly-interpolated (Jelinek-Mercer smoothed)
// language model scoring (spec §4.10).
type JelinekMercer struct {
	Lambda float64
}

// NewJelinekMercer returns a Jelinek-Mercer scorer with the spec's
// documented default (lambda=0.7).
func NewJelinekMercer() *JelinekMercer {
	return &JelinekMercer{Lambda: 0.7}
}

// ScoreOne implements Scorer.
func (s *JelinekMercer) ScoreOne(d ScoreData) float64 {
	pc := float64(d.CorpusTermCount) / float64(d.TotalCorpusTerms)
	dtc := float64(d.DocTermCount)
	ds := float64(d.DocSize)
	p := s.Lambda*pc + (1-s.Lambda)*dtc/ds
	if p <= 0 {
		return 0
	}
	return math.Log(p)
}

// Rank implements Ranker via the shared DAAT driver.
func (s *JelinekMercer) Rank(idx Index, ctx *Context, numResults int, filter Filter) ([]Result, error) {
	return daatRank(idx, ctx, numResults, filter, s.ScoreOne, nil, nil)
}
