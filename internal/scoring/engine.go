// Package scoring combines the signal fingerprint, learned weights, the
// optional NLP boost, and the optional propensity prediction into a
// score/confidence/priority triple with ranked product recommendations.
package scoring

import (
	"math"
	"sort"

	"github.com/fuelsignal/leadgen-cli/internal/config"
	"github.com/fuelsignal/leadgen-cli/internal/model"
	"github.com/fuelsignal/leadgen-cli/internal/nlp"
)

// WeightReader is the scorer's read-only view of the learned weight table.
// The feedback learner is the single writer.
type WeightReader interface {
	Multiplier(industry, term string) float64
}

// staticWeights returns 1.0 for every key; used when no table is wired.
type staticWeights struct{}

func (staticWeights) Multiplier(string, string) float64 { return 1.0 }

// Features is the scoring input for one lead.
type Features struct {
	Industry    string
	Fingerprint model.Fingerprint
	NLP         nlp.Summary
	Propensity  *float64
}

// Result is the scoring output. Score is in [0,100], Confidence in [0,1],
// and Priority is a pure function of both against the configured thresholds.
type Result struct {
	Score      float64
	Confidence float64
	Priority   model.Priority
	Products   []string
}

// Engine scores lead features. Concurrent Score calls are safe: the engine
// holds no mutable state and reads weights through the single-writer table.
type Engine struct {
	cfg     config.ScoringConfig
	weights WeightReader
}

// NewEngine creates a scoring engine. A nil WeightReader means uniform 1.0
// multipliers.
func NewEngine(cfg config.ScoringConfig, weights WeightReader) *Engine {
	if weights == nil {
		weights = staticWeights{}
	}
	return &Engine{cfg: cfg, weights: weights}
}

// Score computes the result for one lead's features. Missing industry or an
// empty fingerprint is a designed degrade path: scoring proceeds with low
// confidence, never an error.
func (e *Engine) Score(f Features) Result {
	// Base: weighted signal votes, scaled and saturated.
	raw := 0.0
	votes := make(map[string]float64)
	for _, hit := range f.Fingerprint {
		w := hit.Weight * e.weights.Multiplier(f.Industry, hit.Term)
		raw += w
		votes[hit.Product] += w
	}
	base := math.Min(e.cfg.BaseCap, raw*e.cfg.BaseScale)

	// NLP boost, bounded [0,5].
	boost := float64(nlp.Boost(f.NLP))
	if boost > 5 {
		boost = 5
	}

	// Propensity contributes only when a model prediction exists.
	prop := 0.0
	if f.Propensity != nil {
		prop = clamp01(*f.Propensity) * e.cfg.PropensityWeight
	}

	score := clamp(base+boost+prop, 0, 100)
	confidence := e.confidence(f)

	return Result{
		Score:      score,
		Confidence: confidence,
		Priority:   e.priority(score, confidence),
		Products:   rankProducts(votes),
	}
}

// confidence grows with distinct trigger terms and product diversity, gets
// a bump when a propensity prediction exists, and is capped low for a lone
// signal. Monotone: more corroborating signals never lower it.
func (e *Engine) confidence(f Features) float64 {
	terms := len(f.Fingerprint.Terms())
	products := len(f.Fingerprint.Products())

	if terms == 0 {
		return 0.05
	}
	c := 0.1 + 0.12*float64(terms) + 0.04*float64(products)
	if f.Propensity != nil {
		c += 0.1
	}
	if terms == 1 && c > 0.4 {
		c = 0.4
	}
	return clamp01(c)
}

// priority maps (score, confidence) to a tier. The HIGH gate requires both
// thresholds; either LOW threshold pulls the lead down.
func (e *Engine) priority(score, confidence float64) model.Priority {
	if score >= e.cfg.HighScore && confidence >= e.cfg.HighConfidence {
		return model.PriorityHigh
	}
	if score < e.cfg.LowScore || confidence < e.cfg.LowConfidence {
		return model.PriorityLow
	}
	return model.PriorityMedium
}

// rankProducts orders product categories by accumulated weighted vote,
// descending, ties broken by category name.
func rankProducts(votes map[string]float64) []string {
	out := make([]string, 0, len(votes))
	for p := range votes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if votes[out[i]] != votes[out[j]] {
			return votes[out[i]] > votes[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }
