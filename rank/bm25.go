package rank

import "math"

// BM25 implements Okapi BM25 scoring (spec §4.10) with the conventional
// default constants. k3 affects only long queries (query-side term
// frequency saturation); it is carried for completeness even though
// NewContext currently feeds query_term_weight as a plain count.
type BM25 struct {
	K1 float64
	B  float64
	K3 float64
}

// NewBM25 returns a BM25 scorer with the spec's documented defaults
// (k1=1.2, b=0.75, k3=500).
func NewBM25() *BM25 {
	return &BM25{K1: 1.2, B: 0.75, K3: 500}
}

// ScoreOne implements Scorer.
func (s *BM25) ScoreOne(d ScoreData) float64 {
	idf := math.Log((float64(d.NumDocs) - float64(d.DocCount) + 0.5) / (float64(d.DocCount) + 0.5))
	if idf < 0 {
		idf = 0
	}
	lengthNorm := 1 - s.B + s.B*float64(d.DocSize)/d.AvgDocLength
	tf := float64(d.DocTermCount)
	num := tf * (s.K1 + 1)
	den := tf + s.K1*lengthNorm
	qtf := (s.K3 + 1) * d.QueryTermWeight / (s.K3 + d.QueryTermWeight)
	return idf * (num / den) * qtf
}

// Rank implements Ranker via the shared DAAT driver.
func (s *BM25) Rank(idx Index, ctx *Context, numResults int, filter Filter) ([]Result, error) {
	return daatRank(idx, ctx, numResults, filter, s.ScoreOne, nil, nil)
}
