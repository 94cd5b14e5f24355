package rank

import "math"

// AbsoluteDiscount implements absolute-discounting smoothed language model
// scoring (spec §4.10): every non-zero document term count is discounted by
// a flat delta, and the discounted probability mass is redistributed
// across the vocabulary in proportion to each term's collection
// probability.
type AbsoluteDiscount struct {
	Delta float64
}

// NewAbsoluteDiscount returns an absolute-discount scorer with the spec's
// documented default (delta=0.7).
func NewAbsoluteDiscount() *AbsoluteDiscount {
	return &AbsoluteDiscount{Delta: 0.7}
}

// ScoreOne implements Scorer.
func (s *AbsoluteDiscount) ScoreOne(d ScoreData) float64 {
	pc := float64(d.CorpusTermCount) / float64(d.TotalCorpusTerms)
	ds := float64(d.DocSize)
	dtc := float64(d.DocTermCount)
	discounted := dtc - s.Delta
	if discounted < 0 {
		discounted = 0
	}
	p := discounted/ds + (s.Delta*float64(d.DocUniqueTerms)/ds)*pc
	if p <= 0 {
		return 0
	}
	return d.QueryTermWeight * math.Log(p)
}

// Rank implements Ranker via the shared DAAT driver.
func (s *AbsoluteDiscount) Rank(idx Index, ctx *Context, numResults int, filter Filter) ([]Result, error) {
	return daatRank(idx, ctx, numResults, filter, s.ScoreOne, nil, nil)
}
