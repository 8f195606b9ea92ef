// Package model defines the lead record, its status state machine, and the
// feedback types shared by the signal, scoring, and learning packages.
package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// LeadStatus represents the lifecycle state of a lead.
type LeadStatus string

const (
	StatusNew       LeadStatus = "New"
	StatusAssigned  LeadStatus = "Assigned"
	StatusAccepted  LeadStatus = "Accepted"
	StatusRejected  LeadStatus = "Rejected"
	StatusConverted LeadStatus = "Converted"
)

// Priority is the coarse actionability tier derived from score and confidence.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// transitions is the allowed status transition table. Rejected and Converted
// are terminal. Conversion must pass through Accepted.
var transitions = map[LeadStatus][]LeadStatus{
	StatusNew:       {StatusAssigned, StatusAccepted, StatusRejected},
	StatusAssigned:  {StatusAccepted, StatusRejected},
	StatusAccepted:  {StatusConverted, StatusRejected},
	StatusRejected:  {},
	StatusConverted: {},
}

// CanTransition reports whether moving a lead from one status to another is legal.
func CanTransition(from, to LeadStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns an error naming both states when the transition
// is illegal; nil otherwise.
func ValidateTransition(from, to LeadStatus) error {
	if !CanTransition(from, to) {
		return eris.Errorf("model: invalid status transition %s -> %s", from, to)
	}
	return nil
}

// GeneratesFeedback reports whether a transition to the given status is a
// terminal officer outcome that produces a feedback event. Assignment is a
// routing action, not an outcome.
func GeneratesFeedback(to LeadStatus) bool {
	return to == StatusAccepted || to == StatusRejected || to == StatusConverted
}

// RawItem is one unscored item supplied by a source collaborator.
type RawItem struct {
	Company   string `json:"company"`
	RawText   string `json:"raw_text"`
	Source    string `json:"source"`
	SourceURL string `json:"source_url"`
}

// Lead is the central record produced by the discovery pipeline. Score,
// confidence, and priority are written only at creation and on explicit
// rescoring; officers may only change status, assignment, and notes.
type Lead struct {
	ID           string      `json:"id"`
	CompanyKey   string      `json:"company_key"`
	CompanyName  string      `json:"company_name"`
	Industry     string      `json:"industry"`
	Source       string      `json:"source"`
	SourceURL    string      `json:"source_url"`
	RawText      string      `json:"raw_text"`
	Summary      string      `json:"summary,omitempty"`
	IntentScore  int         `json:"intent_score"`
	Fingerprint  Fingerprint `json:"fingerprint"`
	Products     []string    `json:"products"`
	Clues        []string    `json:"clues,omitempty"`
	Actions      []string    `json:"actions,omitempty"`
	Score        float64     `json:"score"`
	Confidence   float64     `json:"confidence"`
	Priority     Priority    `json:"priority"`
	Propensity   *float64    `json:"propensity,omitempty"`
	Status       LeadStatus  `json:"status"`
	OfficerID    *int64      `json:"officer_id,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Snapshot captures the lead's scoring features at a point in time. It is
// embedded immutably in every feedback event and forms the propensity
// training set.
func (l *Lead) Snapshot() FeatureSnapshot {
	terms := l.Fingerprint.Terms()
	return FeatureSnapshot{
		Industry:    l.Industry,
		Source:      l.Source,
		Priority:    l.Priority,
		Score:       l.Score,
		Confidence:  l.Confidence,
		IntentScore: l.IntentScore,
		Terms:       terms,
	}
}

// Officer is a sales officer who can be assigned leads.
type Officer struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
	Email  string `json:"email,omitempty"`
	Region string `json:"region,omitempty"`
	Active bool   `json:"active"`
}

// Notification is one delivered (or deliverable) message, logged so mobile
// clients can poll and duplicate sends are avoided.
type Notification struct {
	ID        string    `json:"id"`
	OfficerID *int64    `json:"officer_id,omitempty"`
	Channel   string    `json:"channel"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	LeadID    string    `json:"lead_id,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}
