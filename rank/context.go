package rank

import (
	"sort"

	"github.com/meta-toolkit/metago/ids"
	"github.com/meta-toolkit/metago/postings"
)

// Index is the slice of InvertedIndex that ranker_context and the DAAT loop
// need: enough to open a term's postings stream and to fill in a
// ScoreData's corpus-wide fields. Any *index.InvertedIndex already
// satisfies this structurally, so package rank never imports package index
// and no import cycle can form.
type Index interface {
	NumDocs() int
	AvgDocLength() float64
	TotalCorpusTerms() uint64
	DocFreq(term ids.TermID) (uint64, error)
	TotalNumOccurrences(term ids.TermID) (uint64, error)
	StreamFor(term ids.TermID) (*postings.Stream[uint64], bool)
	DocSize(doc ids.DocID) (uint64, error)
	UniqueTerms(doc ids.DocID) (uint64, error)
}

// termCursor tracks one query term's position in its postings stream during
// the DAAT walk.
type termCursor struct {
	term   ids.TermID
	weight float64
	stream *postings.Stream[uint64]

	valid  bool
	curDoc uint64
	curVal uint64

	docFreq         uint64
	corpusTermCount uint64
}

func (c *termCursor) advance() error {
	if !c.stream.Valid() {
		c.valid = false
		return nil
	}
	d, v, err := c.stream.Next()
	if err != nil {
		return err
	}
	c.curDoc, c.curVal = d, v
	c.valid = true
	return nil
}

// Context is ranker_context (spec §4.9): one cursor per weighted query
// term, each primed to its first posting.
type Context struct {
	cursors []*termCursor
}

// NewContext assembles a ranker_context from idx for the given query term
// weights (typically each term's query-side term frequency). Terms with a
// non-positive weight, or that are outside idx's key space (an empty
// stream), contribute no cursor: a query entirely of such terms yields a
// Context with zero cursors, and Rank on it returns an empty result set
// rather than an error.
func NewContext(idx Index, weights map[ids.TermID]float64) (*Context, error) {
	ctx := &Context{}
	// Iterate in a stable order so construction is deterministic even
	// though map iteration order is not; term_id is already a stable key.
	terms := make([]ids.TermID, 0, len(weights))
	for t := range weights {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i] < terms[j] })

	for _, t := range terms {
		w := weights[t]
		if w <= 0 {
			continue
		}
		stream, ok := idx.StreamFor(t)
		if !ok {
			continue
		}
		if !stream.Valid() {
			continue
		}
		df, err := idx.DocFreq(t)
		if err != nil {
			return nil, err
		}
		total, err := idx.TotalNumOccurrences(t)
		if err != nil {
			return nil, err
		}
		c := &termCursor{term: t, weight: w, stream: stream, docFreq: df, corpusTermCount: total}
		if err := c.advance(); err != nil {
			return nil, err
		}
		if c.valid {
			ctx.cursors = append(ctx.cursors, c)
		}
	}
	return ctx, nil
}

// Empty reports whether the context has no live query-term cursors, i.e.
// the query matched nothing in the vocabulary.
func (ctx *Context) Empty() bool { return len(ctx.cursors) == 0 }

// minDoc returns the smallest curDoc among still-valid cursors, and whether
// any cursor is still valid.
func (ctx *Context) minDoc() (uint64, bool) {
	found := false
	var min uint64
	for _, c := range ctx.cursors {
		if !c.valid {
			continue
		}
		if !found || c.curDoc < min {
			min = c.curDoc
			found = true
		}
	}
	return min, found
}
