package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/fuelsignal/leadgen-cli/internal/model"
)

// ErrNotFound is returned (wrapped) when a requested record does not exist.
var ErrNotFound = eris.New("store: not found")

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	Status     model.LeadStatus `json:"status,omitempty"`
	Priority   model.Priority   `json:"priority,omitempty"`
	CompanyKey string           `json:"company_key,omitempty"`
	MinScore   float64          `json:"min_score,omitempty"`
	Limit      int              `json:"limit,omitempty"`
	Offset     int              `json:"offset,omitempty"`
}

// Store defines the persistence interface for the lead pipeline.
type Store interface {
	// Leads
	CreateLead(ctx context.Context, lead *model.Lead) error
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	// FindOpenLead returns the existing non-terminal lead for the same
	// company and raw text, or nil when discovery should create a new one.
	FindOpenLead(ctx context.Context, companyKey, rawText string) (*model.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	UpdateLeadStatus(ctx context.Context, id string, status model.LeadStatus, officerID *int64) error
	UpdateLeadScore(ctx context.Context, id string, score, confidence float64, priority model.Priority, propensity *float64) error

	// Company aliases
	UpsertCompanyAlias(ctx context.Context, companyKey, alias string) error
	GetCompanyAliases(ctx context.Context, companyKey string) ([]string, error)

	// Scoring weights
	SaveWeights(ctx context.Context, entries []model.WeightEntry) error
	LoadWeights(ctx context.Context) ([]model.WeightEntry, error)

	// Feedback log, append-only, listed in creation order
	AppendFeedback(ctx context.Context, event *model.FeedbackEvent) error
	ListFeedback(ctx context.Context) ([]model.FeedbackEvent, error)

	// Officers
	CreateOfficer(ctx context.Context, officer *model.Officer) error
	GetOfficer(ctx context.Context, id int64) (*model.Officer, error)
	ListOfficers(ctx context.Context, activeOnly bool) ([]model.Officer, error)

	// Notification log
	LogNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, officerID *int64, limit int) ([]model.Notification, error)

	// Propensity model blobs
	SaveModel(ctx context.Context, name string, data []byte) error
	LoadModel(ctx context.Context, name string) ([]byte, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
