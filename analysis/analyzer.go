package analysis

import (
	"strings"
	"sync"

	"github.com/meta-toolkit/metago/metaerr"
)

// FeatureMap is the term-count accumulator an Analyzer emits for one
// document. It is defined here (rather than reused from package corpus) to
// keep analysis free of a dependency on the transient document type; build
// code converts between the two trivially.
type FeatureMap map[string]uint64

// Analyzer drives a TokenStream over a document's text and emits a
// FeatureMap. Concrete analyzers are registered by id string (spec §9's
// "registration table keyed by id string for user-pluggable extensions");
// selection happens via the `method` configuration key.
type Analyzer interface {
	Analyze(text string) (FeatureMap, error)
	// Clone returns an independent analyzer sharing no mutable state, so a
	// worker pool can hand one clone per goroutine.
	Clone() Analyzer
}

// Factory constructs an Analyzer from configuration-supplied parameters.
type Factory func(params map[string]interface{}) (Analyzer, error)

var (
	registryMu sync.Mutex
	registry   = map[string]Factory{}
)

// Register adds a named analyzer constructor to the process-wide registry.
// Registration happens at program start, before any Create call, per spec
// §9's factory-singleton replacement.
func Register(id string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[id] = factory
}

// Create looks up id in the registry and constructs an analyzer from params.
func Create(id string, params map[string]interface{}) (Analyzer, error) {
	registryMu.Lock()
	factory, ok := registry[id]
	registryMu.Unlock()
	if !ok {
		return nil, metaerr.Wrap(metaerr.ErrConfig, nil, "no analyzer registered for method %q", id)
	}
	return factory(params)
}

func init() {
	Register("ngram-word", func(params map[string]interface{}) (Analyzer, error) {
		n := 1
		if v, ok := params["ngram"]; ok {
			switch x := v.(type) {
			case int:
				n = x
			case int64:
				n = int(x)
			case float64:
				n = int(x)
			}
		}
		if n < 1 {
			return nil, metaerr.Wrap(metaerr.ErrConfig, nil, "ngram-word: ngram must be >= 1, got %d", n)
		}
		chain, ok := params["chain"].(TokenStream)
		if !ok || chain == nil {
			chain = defaultChain()
		}
		return &NgramWordAnalyzer{n: n, chain: chain}, nil
	})
}

// defaultChain is the filter chain used when configuration supplies no
// explicit chain: whitespace tokenizer -> English normalizer -> blank
// filter. It adds no sentence markers, so a document's length counts its
// word tokens only.
func defaultChain() TokenStream {
	var ts TokenStream = NewWhitespaceTokenizer()
	ts = NewEnglishNormalizerFilter(ts)
	ts = NewBlankFilter(ts)
	return ts
}

// NgramWordAnalyzer slides a window of n tokens across the stream, emitting
// the underscore-joined n-gram for every full window (spec §4.2).
type NgramWordAnalyzer struct {
	n     int
	chain TokenStream
}

// NewNgramWordAnalyzer builds an analyzer with window size n over chain.
func NewNgramWordAnalyzer(n int, chain TokenStream) *NgramWordAnalyzer {
	return &NgramWordAnalyzer{n: n, chain: chain}
}

func (a *NgramWordAnalyzer) Analyze(text string) (FeatureMap, error) {
	a.chain.SetContent(text)
	fm := make(FeatureMap)
	window := make([]string, 0, a.n)
	for a.chain.Valid() {
		tok, err := a.chain.Next()
		if err != nil {
			return nil, err
		}
		window = append(window, tok)
		if len(window) > a.n {
			window = window[1:]
		}
		if len(window) == a.n {
			fm[strings.Join(window, "_")]++
		}
	}
	return fm, nil
}

func (a *NgramWordAnalyzer) Clone() Analyzer {
	return &NgramWordAnalyzer{n: a.n, chain: a.chain.Clone()}
}
