package config

import (
	"github.com/meta-toolkit/metago/ids"
	"github.com/meta-toolkit/metago/metaerr"
	"github.com/meta-toolkit/metago/rank"
)

// Ranker is the uniform entry point cmd/meta-query drives the DAAT loop
// through. Package rank's own Ranker interface takes an already-assembled
// *rank.Context, but Rocchio needs the raw query weights to build its own
// two internal passes (spec §4.9) and so exposes a differently shaped
// Rank method; Ranker hides that asymmetry behind one call signature for
// every configured method.
type Ranker func(idx rank.Index, weights map[ids.TermID]float64, numResults int, filter rank.Filter) ([]rank.Result, error)

// BuildRanker constructs the configured `[ranker]` method, wrapping it in
// Rocchio pseudo-relevance feedback when `[ranker.feedback]` is present.
// forward is only consulted when feedback is configured.
func BuildRanker(cfg RankerConfig, forward rank.ForwardSource) (Ranker, error) {
	scorer, err := buildScorer(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Feedback == nil {
		return func(idx rank.Index, weights map[ids.TermID]float64, numResults int, filter rank.Filter) ([]rank.Result, error) {
			ctx, err := rank.NewContext(idx, weights)
			if err != nil {
				return nil, err
			}
			return scorer.Rank(idx, ctx, numResults, filter)
		}, nil
	}

	roc := rank.NewRocchio(scorer, forward)
	fb := cfg.Feedback
	if fb.Alpha > 0 {
		roc.Alpha = fb.Alpha
	}
	if fb.Beta > 0 {
		roc.Beta = fb.Beta
	}
	if fb.K > 0 {
		roc.KPrime = fb.K
	}
	if fb.MaxTerms > 0 {
		roc.MaxTerms = fb.MaxTerms
	}
	return func(idx rank.Index, weights map[ids.TermID]float64, numResults int, filter rank.Filter) ([]rank.Result, error) {
		return roc.Rank(idx, weights, numResults, filter)
	}, nil
}

func buildScorer(cfg RankerConfig) (rank.ScoringRanker, error) {
	switch cfg.Method {
	case "bm25", "":
		s := rank.NewBM25()
		if cfg.K1 > 0 {
			s.K1 = cfg.K1
		}
		if cfg.B > 0 {
			s.B = cfg.B
		}
		if cfg.K3 > 0 {
			s.K3 = cfg.K3
		}
		return s, nil
	case "dirichlet-prior":
		s := rank.NewDirichletPrior()
		if cfg.Mu > 0 {
			s.Mu = cfg.Mu
		}
		return s, nil
	case "jelinek-mercer":
		s := rank.NewJelinekMercer()
		if cfg.Lambda > 0 {
			s.Lambda = cfg.Lambda
		}
		return s, nil
	case "absolute-discount":
		s := rank.NewAbsoluteDiscount()
		if cfg.Lambda > 0 {
			s.Delta = cfg.Lambda
		}
		return s, nil
	case "pivoted-length":
		s := rank.NewPivotedLength()
		if cfg.S > 0 {
			s.Slope = cfg.S
		}
		return s, nil
	default:
		return nil, metaerr.Wrap(metaerr.ErrConfig, nil, "config: unknown ranker method %q", cfg.Method)
	}
}
