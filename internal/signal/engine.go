package signal

import (
	"strings"

	"github.com/fuelsignal/leadgen-cli/internal/model"
)

// Engine extracts signal fingerprints from raw text against a rule set.
// Extraction is a pure function of its input: the same text always yields
// the same fingerprint, ordered by first occurrence with lexical
// tie-breaking on the trigger term.
type Engine struct {
	rules   RuleSet
	maxHits int
}

// NewEngine creates a signal engine. maxHits <= 0 means no cap.
func NewEngine(rules RuleSet, maxHits int) *Engine {
	return &Engine{rules: rules, maxHits: maxHits}
}

// fillTemplate substitutes {term} and {industry} in a reasoning template.
func fillTemplate(tmpl, term, industry string) string {
	out := strings.ReplaceAll(tmpl, "{term}", term)
	if industry == "" || industry == IndustryUnknown {
		industry = "the target segment"
	}
	return strings.ReplaceAll(out, "{industry}", industry)
}

// Extract builds the signal fingerprint for a text. Matching is substring
// based over the lowercased text; a term may contribute several product
// entries but each (term, product) pair appears at most once.
func (e *Engine) Extract(text, industry string) model.Fingerprint {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil
	}

	type match struct {
		rule Rule
		pos  int
	}
	var matches []match
	for _, r := range e.rules.Rules {
		pos := strings.Index(lower, r.Term)
		if pos < 0 {
			continue
		}
		matches = append(matches, match{rule: r, pos: pos})
	}

	// Order by first occurrence, ties by term.
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0; j-- {
			a, b := matches[j-1], matches[j]
			if b.pos < a.pos || (b.pos == a.pos && b.rule.Term < a.rule.Term) {
				matches[j-1], matches[j] = b, a
			} else {
				break
			}
		}
	}

	seen := make(map[string]bool)
	var fp model.Fingerprint
	for _, m := range matches {
		for _, entry := range m.rule.Entries {
			pairKey := m.rule.Term + "\x00" + entry.Product
			if seen[pairKey] {
				continue
			}
			seen[pairKey] = true
			fp = append(fp, model.SignalHit{
				Term:      m.rule.Term,
				Product:   entry.Product,
				Reasoning: fillTemplate(entry.Reasoning, m.rule.Term, industry),
				Weight:    m.rule.Weight,
				Position:  m.pos,
			})
			if e.maxHits > 0 && len(fp) >= e.maxHits {
				return fp
			}
		}
	}
	return fp
}
