// Package notify pushes lead alerts to officers and logs every send so
// clients can poll the notification history.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fuelsignal/leadgen-cli/internal/config"
	"github.com/fuelsignal/leadgen-cli/internal/model"
	"github.com/fuelsignal/leadgen-cli/internal/store"
)

// Notifier delivers lead alerts. Delivery failures are reported as errors
// but the pipeline treats them as non-fatal.
type Notifier interface {
	NewLead(ctx context.Context, lead *model.Lead) error
	Assigned(ctx context.Context, lead *model.Lead, officer *model.Officer) error
}

// Nop is the disabled notifier.
type Nop struct{}

func (Nop) NewLead(context.Context, *model.Lead) error { return nil }

func (Nop) Assigned(context.Context, *model.Lead, *model.Officer) error { return nil }

// Webhook posts JSON alert payloads to a configured URL and logs each send
// to the store. New-lead alerts below the confidence floor are suppressed.
type Webhook struct {
	cfg    config.NotifyConfig
	store  store.Store
	client *http.Client
}

func NewWebhook(cfg config.NotifyConfig, st store.Store) *Webhook {
	return &Webhook{
		cfg:    cfg,
		store:  st,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type payload struct {
	Type       string   `json:"type"`
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	LeadID     string   `json:"lead_id"`
	Company    string   `json:"company"`
	Priority   string   `json:"priority"`
	Score      float64  `json:"score"`
	Confidence float64  `json:"confidence"`
	Products   []string `json:"products,omitempty"`
	OfficerID  *int64   `json:"officer_id,omitempty"`
}

func (w *Webhook) NewLead(ctx context.Context, lead *model.Lead) error {
	if !w.cfg.OnNewLead {
		return nil
	}
	if lead.Confidence < w.cfg.MinConfidence {
		zap.L().Debug("new lead alert suppressed",
			zap.String("lead_id", lead.ID),
			zap.Float64("confidence", lead.Confidence))
		return nil
	}
	p := payload{
		Type:       "new_lead",
		Title:      fmt.Sprintf("New %s priority lead: %s", lead.Priority, lead.CompanyName),
		Body:       lead.Summary,
		LeadID:     lead.ID,
		Company:    lead.CompanyName,
		Priority:   string(lead.Priority),
		Score:      lead.Score,
		Confidence: lead.Confidence,
		Products:   lead.Products,
	}
	return w.send(ctx, p, nil)
}

func (w *Webhook) Assigned(ctx context.Context, lead *model.Lead, officer *model.Officer) error {
	if !w.cfg.OnAssign {
		return nil
	}
	p := payload{
		Type:       "lead_assigned",
		Title:      fmt.Sprintf("Lead assigned to %s: %s", officer.Name, lead.CompanyName),
		Body:       lead.Summary,
		LeadID:     lead.ID,
		Company:    lead.CompanyName,
		Priority:   string(lead.Priority),
		Score:      lead.Score,
		Confidence: lead.Confidence,
		Products:   lead.Products,
		OfficerID:  &officer.ID,
	}
	return w.send(ctx, p, &officer.ID)
}

func (w *Webhook) send(ctx context.Context, p payload, officerID *int64) error {
	if w.cfg.WebhookURL != "" {
		body, err := json.Marshal(p)
		if err != nil {
			return eris.Wrap(err, "notify: marshal payload")
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.WebhookURL, bytes.NewReader(body))
		if err != nil {
			return eris.Wrap(err, "notify: build request")
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			return eris.Wrap(err, "notify: post webhook")
		}
		resp.Body.Close()
		if resp.StatusCode >= 300 {
			return eris.Errorf("notify: webhook status %d", resp.StatusCode)
		}
	}

	err := w.store.LogNotification(ctx, &model.Notification{
		OfficerID: officerID,
		Channel:   "webhook",
		Type:      p.Type,
		Title:     p.Title,
		Body:      p.Body,
		LeadID:    p.LeadID,
	})
	return eris.Wrap(err, "notify: log")
}
