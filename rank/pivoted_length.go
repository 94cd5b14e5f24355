package rank

import "math"

// PivotedLength implements pivoted document length normalization scoring
// (spec §4.10): tf is normalized against a pivot (the average document
// length) rather than the document's own length alone, tempering BM25's
// bias against long documents with legitimately broad vocabularies.
type PivotedLength struct {
	Slope float64
}

// NewPivotedLength returns a pivoted-length scorer with the spec's
// documented default slope (s=0.2). The pivot is always the corpus's
// average document length.
func NewPivotedLength() *PivotedLength {
	return &PivotedLength{Slope: 0.2}
}

// ScoreOne implements Scorer.
func (s *PivotedLength) ScoreOne(d ScoreData) float64 {
	idf := math.Log((float64(d.NumDocs) + 1) / float64(d.DocCount))
	tf := float64(d.DocTermCount)
	normalizedTF := (1 + math.Log(1+math.Log(tf))) /
		(1 - s.Slope + s.Slope*float64(d.DocSize)/d.AvgDocLength)
	return normalizedTF * idf * d.QueryTermWeight
}

// Rank implements Ranker via the shared DAAT driver.
func (s *PivotedLength) Rank(idx Index, ctx *Context, numResults int, filter Filter) ([]Result, error) {
	return daatRank(idx, ctx, numResults, filter, s.ScoreOne, nil, nil)
}
