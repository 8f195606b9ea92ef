// Package learning closes the feedback loop: officer outcomes adjust
// per-industry term weights, and accumulated outcomes train the propensity
// model used on subsequent scoring runs.
package learning

import (
	"sort"
	"sync"

	"github.com/fuelsignal/leadgen-cli/internal/model"
)

// Table holds learned (industry, term) multipliers. Reads are served to the
// scoring engine concurrently; the learner is the single writer.
type Table struct {
	mu      sync.RWMutex
	weights map[string]map[string]float64
}

func NewTable() *Table {
	return &Table{weights: make(map[string]map[string]float64)}
}

// Multiplier returns the learned multiplier for (industry, term), defaulting
// to the neutral 1.0 for any key never adjusted.
func (t *Table) Multiplier(industry, term string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if m, ok := t.weights[industry]; ok {
		if v, ok := m[term]; ok {
			return v
		}
	}
	return 1.0
}

func (t *Table) set(industry, term string, v float64) {
	m, ok := t.weights[industry]
	if !ok {
		m = make(map[string]float64)
		t.weights[industry] = m
	}
	m[term] = v
}

// Load replaces the table contents with persisted entries.
func (t *Table) Load(entries []model.WeightEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.weights = make(map[string]map[string]float64)
	for _, e := range entries {
		t.set(e.Industry, e.Term, e.Multiplier)
	}
}

// Snapshot returns every non-default entry sorted by (industry, term) so
// persistence and replay are deterministic.
func (t *Table) Snapshot() []model.WeightEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []model.WeightEntry
	for industry, m := range t.weights {
		for term, v := range m {
			out = append(out, model.WeightEntry{Industry: industry, Term: term, Multiplier: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Industry != out[j].Industry {
			return out[i].Industry < out[j].Industry
		}
		return out[i].Term < out[j].Term
	})
	return out
}
