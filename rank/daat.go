package rank

import (
	"github.com/meta-toolkit/metago/heap"
	"github.com/meta-toolkit/metago/ids"
)

// Result is one scored document (spec §4.9's rank() output).
type Result struct {
	Doc   ids.DocID
	Score float64
}

// Filter excludes a candidate document from the result set before it is
// offered to the top-k heap (e.g. tombstones, a label restriction). A nil
// Filter admits every document.
type Filter func(ids.DocID) bool

// Excluder reports whether a doc_id is excluded, the shape of
// index.Tombstones' Contains method. ComposeFilter accepts this narrow
// interface rather than a concrete type so package rank never needs to
// import package index.
type Excluder interface {
	Contains(ids.DocID) bool
}

// ComposeFilter builds the filter cmd/meta-query drives a search through:
// excluder's O(1) membership check runs first, rejecting a doc outright;
// anything excluder doesn't reject falls through to next, the caller's own
// predicate. A nil excluder or next is treated as admitting everything.
func ComposeFilter(excluder Excluder, next Filter) Filter {
	return func(doc ids.DocID) bool {
		if excluder != nil && excluder.Contains(doc) {
			return false
		}
		if next != nil {
			return next(doc)
		}
		return true
	}
}

// Scorer is the per-term scoring function contract of spec §4.10:
// score_one computes one query term's contribution to one document's
// score. The DAAT loop sums this across every term matching a document.
type Scorer interface {
	ScoreOne(ScoreData) float64
}

// Ranker is the full ranking contract of spec §4.9: given an already
// assembled Context, produce up to numResults documents ordered
// best-first, subject to filter.
type Ranker interface {
	Rank(idx Index, ctx *Context, numResults int, filter Filter) ([]Result, error)
}

// daatRank is the document-at-a-time driver shared by every concrete
// scorer in this package: repeatedly advance to the smallest current
// doc_id across all cursors, sum score_one over every cursor positioned
// there, then advance just those cursors. A document with at least one
// matching term is always offered to the heap, even if its summed score is
// exactly 0 — the DAAT loop by construction never visits a document with
// zero matching terms, so no separate "still counts" check is needed.
//
// initialScore and initialScoreEnd are rarely-used hooks a stateful
// ranker (Rocchio's inner pass) can use to prepare or finalize per-query
// state; every plain scorer in this package passes no-ops.
func daatRank(idx Index, ctx *Context, numResults int, filter Filter,
	scoreOne func(ScoreData) float64,
	initialScore func(*Context),
	initialScoreEnd func(*Context),
) ([]Result, error) {
	if ctx.Empty() {
		return nil, nil
	}
	if initialScore != nil {
		initialScore(ctx)
	}

	less := func(a, b Result) bool {
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Doc < b.Doc // ties break by doc_id ascending
	}
	h := heap.New[Result](numResults, less)

	numDocs := uint64(idx.NumDocs())
	avgDL := idx.AvgDocLength()
	totalTerms := idx.TotalCorpusTerms()

	for {
		doc, ok := ctx.minDoc()
		if !ok {
			break
		}
		var score float64
		var docSize, docUnique uint64
		sizeKnown := false
		for _, c := range ctx.cursors {
			if !c.valid || c.curDoc != doc {
				continue
			}
			if !sizeKnown {
				var err error
				docSize, err = idx.DocSize(ids.DocID(doc))
				if err != nil {
					return nil, err
				}
				docUnique, err = idx.UniqueTerms(ids.DocID(doc))
				if err != nil {
					return nil, err
				}
				sizeKnown = true
			}
			sd := ScoreData{
				DocTermCount:     c.curVal,
				CorpusTermCount:  c.corpusTermCount,
				DocCount:         c.docFreq,
				QueryTermWeight:  c.weight,
				DocSize:          docSize,
				DocUniqueTerms:   docUnique,
				NumDocs:          numDocs,
				AvgDocLength:     avgDL,
				TotalCorpusTerms: totalTerms,
			}
			score += scoreOne(sd)
			if err := c.advance(); err != nil {
				return nil, err
			}
		}
		d := ids.DocID(doc)
		if filter == nil || filter(d) {
			h.Push(Result{Doc: d, Score: score})
		}
	}

	if initialScoreEnd != nil {
		initialScoreEnd(ctx)
	}
	return h.ExtractTop(), nil
}
