package model

import "time"

// SignalHit is one (trigger term, product category) pair extracted from a
// lead's text, with its filled reasoning sentence and configured weight.
type SignalHit struct {
	Term      string  `json:"term"`
	Product   string  `json:"product"`
	Reasoning string  `json:"reasoning"`
	Weight    float64 `json:"weight"`
	Position  int     `json:"position"`
}

// Fingerprint is the ordered set of signal hits extracted from one text.
// Order is by first occurrence in the text, ties broken by term; each
// (term, product) pair appears at most once.
type Fingerprint []SignalHit

// Terms returns the distinct trigger terms in first-occurrence order.
func (f Fingerprint) Terms() []string {
	seen := make(map[string]bool, len(f))
	var out []string
	for _, h := range f {
		if !seen[h.Term] {
			seen[h.Term] = true
			out = append(out, h.Term)
		}
	}
	return out
}

// Products returns the distinct product categories in first-occurrence order.
func (f Fingerprint) Products() []string {
	seen := make(map[string]bool, len(f))
	var out []string
	for _, h := range f {
		if !seen[h.Product] {
			seen[h.Product] = true
			out = append(out, h.Product)
		}
	}
	return out
}

// FeatureSnapshot is the immutable feature vector recorded with a feedback
// event. It is what the propensity model trains on and predicts from.
type FeatureSnapshot struct {
	Industry    string   `json:"industry"`
	Source      string   `json:"source"`
	Priority    Priority `json:"priority"`
	Score       float64  `json:"score"`
	Confidence  float64  `json:"confidence"`
	IntentScore int      `json:"intent_score"`
	Terms       []string `json:"terms"`
}

// FeedbackEvent is an immutable record of one officer outcome for a lead.
// Events are append-only; the ordered log is the training set for the
// propensity model and the input to weight updates.
type FeedbackEvent struct {
	ID        string          `json:"id"`
	LeadID    string          `json:"lead_id"`
	Outcome   LeadStatus      `json:"outcome"`
	OfficerID *int64          `json:"officer_id,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	Features  FeatureSnapshot `json:"features"`
	CreatedAt time.Time       `json:"created_at"`
}

// WeightEntry is one persisted scoring-weight multiplier keyed by
// (industry, signal term).
type WeightEntry struct {
	Industry   string  `json:"industry"`
	Term       string  `json:"term"`
	Multiplier float64 `json:"multiplier"`
}
