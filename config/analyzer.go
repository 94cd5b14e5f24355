package config

import (
	"github.com/meta-toolkit/metago/analysis"
	"github.com/meta-toolkit/metago/metaerr"
)

// BuildAnalyzer constructs an analysis.Analyzer from one `[[analyzers]]`
// entry, building its nested filter chain bottom-up before handing the
// result to the analyzer's own factory via the "chain" params key.
//
// Filters have no registration table of their own (spec §9 reserves that
// for analyzers and classifiers); the small closed set below is
// constructed directly, matching the filter chain's own "each filter holds
// a boxed inner source" shape in package analysis.
func BuildAnalyzer(cfg AnalyzerConfig) (analysis.Analyzer, error) {
	chain, err := buildChain(cfg.Filter)
	if err != nil {
		return nil, err
	}
	params := map[string]interface{}{
		"ngram": cfg.Ngram,
		"chain": chain,
	}
	return analysis.Create(cfg.Method, params)
}

func buildChain(filters []FilterConfig) (analysis.TokenStream, error) {
	if len(filters) == 0 {
		return defaultChain(), nil
	}
	var ts analysis.TokenStream = analysis.NewWhitespaceTokenizer()
	for _, f := range filters {
		next, err := applyFilter(ts, f)
		if err != nil {
			return nil, err
		}
		ts = next
	}
	return ts, nil
}

// defaultChain mirrors package analysis's own unconfigured default, used
// when an `[[analyzers]]` entry declares no explicit filter chain.
func defaultChain() analysis.TokenStream {
	var ts analysis.TokenStream = analysis.NewWhitespaceTokenizer()
	ts = analysis.NewEnglishNormalizerFilter(ts)
	ts = analysis.NewBlankFilter(ts)
	return ts
}

func applyFilter(inner analysis.TokenStream, f FilterConfig) (analysis.TokenStream, error) {
	switch f.Type {
	case "length":
		return analysis.NewLengthFilter(inner, f.Min, f.Max), nil
	case "icu-tokenizer", "english-normalizer":
		return analysis.NewEnglishNormalizerFilter(inner), nil
	case "sentence-boundary":
		return analysis.NewSentenceBoundaryFilter(inner), nil
	case "empty-sentence":
		return analysis.NewEmptySentenceFilter(inner), nil
	case "blank":
		return analysis.NewBlankFilter(inner), nil
	case "list":
		if f.File == "" {
			return nil, metaerr.Wrap(metaerr.ErrConfig, nil, "config: list filter requires `file`")
		}
		words, err := analysis.LoadWordList(f.File)
		if err != nil {
			return nil, err
		}
		mode := analysis.ListReject
		if f.Method == "accept" {
			mode = analysis.ListAccept
		}
		return analysis.NewListFilter(inner, words, mode), nil
	default:
		return nil, metaerr.Wrap(metaerr.ErrConfig, nil, "config: unknown filter type %q", f.Type)
	}
}
