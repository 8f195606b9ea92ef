// Package pipeline orchestrates discovery: raw items in, resolved, analyzed,
// scored, deduplicated leads out, plus the feedback loop that adapts scoring
// over time.
package pipeline

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fuelsignal/leadgen-cli/internal/config"
	"github.com/fuelsignal/leadgen-cli/internal/dossier"
	"github.com/fuelsignal/leadgen-cli/internal/entity"
	"github.com/fuelsignal/leadgen-cli/internal/learning"
	"github.com/fuelsignal/leadgen-cli/internal/model"
	"github.com/fuelsignal/leadgen-cli/internal/nlp"
	"github.com/fuelsignal/leadgen-cli/internal/notify"
	"github.com/fuelsignal/leadgen-cli/internal/scoring"
	"github.com/fuelsignal/leadgen-cli/internal/signal"
	"github.com/fuelsignal/leadgen-cli/internal/source"
	"github.com/fuelsignal/leadgen-cli/internal/store"
)

// propensityModelName keys the persisted model blob in the store.
const propensityModelName = "propensity"

// Pipeline wires the discovery and feedback collaborators around a store.
type Pipeline struct {
	cfg      *config.Config
	store    store.Store
	resolver *entity.Resolver
	registry *entity.Registry
	signals  *signal.Engine
	scorer   *scoring.Engine
	analyzer nlp.Analyzer
	table    *learning.Table
	learner  *learning.Learner
	trainer  *learning.Trainer
	notifier notify.Notifier

	// weightsMu serializes weight apply+persist so concurrent outcomes
	// cannot write stale multipliers to the store.
	weightsMu sync.Mutex
}

// New assembles a pipeline from configuration. The weight table starts
// neutral; call Init to load persisted weights and the propensity model.
func New(cfg *config.Config, st store.Store, analyzer nlp.Analyzer, notifier notify.Notifier) (*Pipeline, error) {
	rules := signal.DefaultRules()
	if cfg.Signals.RulesPath != "" {
		loaded, err := signal.LoadRules(cfg.Signals.RulesPath)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: load rules")
		}
		rules = loaded
	}

	if analyzer == nil {
		analyzer = nlp.Rule{}
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	table := learning.NewTable()
	return &Pipeline{
		cfg:      cfg,
		store:    st,
		resolver: entity.NewResolver(cfg.Entity.Suffixes),
		registry: entity.NewRegistry(),
		signals:  signal.NewEngine(rules, cfg.Signals.MaxHits),
		scorer:   scoring.NewEngine(cfg.Scoring, table),
		analyzer: analyzer,
		table:    table,
		learner:  learning.NewLearner(cfg.Learning, table),
		trainer:  learning.NewTrainer(cfg.Learning),
		notifier: notifier,
	}, nil
}

// Init loads the persisted weight table and propensity model so scoring
// continues from the last adapted state.
func (p *Pipeline) Init(ctx context.Context) error {
	entries, err := p.store.LoadWeights(ctx)
	if err != nil {
		return eris.Wrap(err, "pipeline: load weights")
	}
	p.table.Load(entries)

	blob, err := p.store.LoadModel(ctx, propensityModelName)
	if err != nil {
		return eris.Wrap(err, "pipeline: load model")
	}
	if blob != nil {
		m, err := learning.UnmarshalModel(blob)
		if err != nil {
			return eris.Wrap(err, "pipeline: decode model")
		}
		p.trainer.SetModel(m)
	}
	return nil
}

// Weights returns the live weight table snapshot.
func (p *Pipeline) Weights() []model.WeightEntry { return p.table.Snapshot() }

// ProcessItem turns one raw item into a persisted lead. A second sighting of
// the same company and text returns the existing open lead unchanged.
func (p *Pipeline) ProcessItem(ctx context.Context, item model.RawItem) (*model.Lead, error) {
	text := nlp.CleanText(item.RawText)
	if text == "" {
		return nil, eris.New("pipeline: item has no text")
	}
	summary := p.analyzer.Analyze(text)

	company := strings.TrimSpace(item.Company)
	if company == "" && len(summary.Organizations) > 0 {
		company = summary.Organizations[0]
	}
	key := p.resolver.Resolve(company)
	if company != "" && p.registry.Observe(key, company) {
		if err := p.store.UpsertCompanyAlias(ctx, key, company); err != nil {
			zap.L().Warn("alias upsert failed", zap.String("company_key", key), zap.Error(err))
		}
	}

	existing, err := p.store.FindOpenLead(ctx, key, item.RawText)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		zap.L().Debug("duplicate item",
			zap.String("company_key", key),
			zap.String("lead_id", existing.ID))
		return existing, nil
	}

	industry := signal.DetectIndustry(text, summary.KeyPhrases...)
	fp := p.signals.Extract(text, industry)

	// First pass scores on rules alone; the propensity model then predicts
	// from that snapshot and the second pass folds the prediction in.
	feats := scoring.Features{Industry: industry, Fingerprint: fp, NLP: summary}
	result := p.scorer.Score(feats)
	snap := model.FeatureSnapshot{
		Industry:    industry,
		Source:      item.Source,
		Priority:    result.Priority,
		Score:       result.Score,
		Confidence:  result.Confidence,
		IntentScore: summary.IntentScore,
		Terms:       fp.Terms(),
	}
	propensity := p.trainer.Predict(snap)
	if propensity != nil {
		feats.Propensity = propensity
		result = p.scorer.Score(feats)
	}

	products := result.Products
	if len(products) == 0 {
		products = signal.ProductsForIndustry(industry)
	}

	leadSummary := summary.Summary
	if leadSummary == "" {
		leadSummary = nlp.ExtractiveSummary(text, 2, 240)
	}

	if company == "" {
		company = "Unknown"
	}
	lead := &model.Lead{
		CompanyKey:  key,
		CompanyName: company,
		Industry:    industry,
		Source:      item.Source,
		SourceURL:   item.SourceURL,
		RawText:     item.RawText,
		Summary:     leadSummary,
		IntentScore: summary.IntentScore,
		Fingerprint: fp,
		Products:    products,
		Clues:       signal.RequirementClues(text, summary.KeyPhrases),
		Actions:     dossier.SuggestedActions(result.Priority, products),
		Score:       result.Score,
		Confidence:  result.Confidence,
		Priority:    result.Priority,
		Propensity:  propensity,
		Status:      model.StatusNew,
	}
	if err := p.store.CreateLead(ctx, lead); err != nil {
		return nil, err
	}

	zap.L().Info("lead created",
		zap.String("lead_id", lead.ID),
		zap.String("company", lead.CompanyName),
		zap.String("priority", string(lead.Priority)),
		zap.Float64("score", lead.Score))

	if err := p.notifier.NewLead(ctx, lead); err != nil {
		zap.L().Warn("new lead notification failed", zap.String("lead_id", lead.ID), zap.Error(err))
	}
	return lead, nil
}

// ItemFailure records one item that could not be processed in a batch.
type ItemFailure struct {
	Item model.RawItem `json:"item"`
	Err  string        `json:"error"`
}

// BatchResult is the outcome of one discovery run. Leads are ordered by
// score descending.
type BatchResult struct {
	Leads    []*model.Lead `json:"leads"`
	Failures []ItemFailure `json:"failures,omitempty"`
}

// RunBatch processes items concurrently with a bounded worker count.
// Per-item failures are collected, not fatal; only context cancellation
// aborts the batch.
func (p *Pipeline) RunBatch(ctx context.Context, items []model.RawItem) (*BatchResult, error) {
	limit := p.cfg.Batch.MaxConcurrent
	if limit <= 0 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	res := &BatchResult{}

	for _, item := range items {
		item := item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lead, err := p.ProcessItem(gctx, item)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failures = append(res.Failures, ItemFailure{Item: item, Err: err.Error()})
				return nil
			}
			res.Leads = append(res.Leads, lead)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: batch canceled")
	}

	sort.SliceStable(res.Leads, func(i, j int) bool {
		if res.Leads[i].Score != res.Leads[j].Score {
			return res.Leads[i].Score > res.Leads[j].Score
		}
		return res.Leads[i].CompanyKey < res.Leads[j].CompanyKey
	})
	return res, nil
}

// Discover fetches from every source and processes the results as one batch.
func (p *Pipeline) Discover(ctx context.Context, fetchers []source.Fetcher) (*BatchResult, error) {
	items := source.FetchAll(ctx, fetchers)
	return p.RunBatch(ctx, items)
}

// RecordOutcome applies an officer decision to a lead. Terminal outcomes
// append a feedback event and fold it into the weight table; assignment only
// routes and notifies. The returned event is nil for routing transitions.
func (p *Pipeline) RecordOutcome(ctx context.Context, leadID string, outcome model.LeadStatus, officerID *int64, notes string) (*model.FeedbackEvent, error) {
	lead, err := p.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if err := model.ValidateTransition(lead.Status, outcome); err != nil {
		return nil, err
	}

	if err := p.store.UpdateLeadStatus(ctx, leadID, outcome, officerID); err != nil {
		return nil, err
	}
	lead.Status = outcome
	if officerID != nil {
		lead.OfficerID = officerID
	}

	if outcome == model.StatusAssigned && officerID != nil {
		officer, err := p.store.GetOfficer(ctx, *officerID)
		if err != nil {
			return nil, err
		}
		if err := p.notifier.Assigned(ctx, lead, officer); err != nil {
			zap.L().Warn("assignment notification failed", zap.String("lead_id", leadID), zap.Error(err))
		}
	}

	if !model.GeneratesFeedback(outcome) {
		return nil, nil
	}

	event := &model.FeedbackEvent{
		LeadID:    leadID,
		Outcome:   outcome,
		OfficerID: officerID,
		Notes:     notes,
		Features:  lead.Snapshot(),
	}
	if err := p.store.AppendFeedback(ctx, event); err != nil {
		return nil, err
	}

	p.weightsMu.Lock()
	changed := p.learner.Apply(*event)
	var saveErr error
	if len(changed) > 0 {
		saveErr = p.store.SaveWeights(ctx, changed)
	}
	p.weightsMu.Unlock()
	if saveErr != nil {
		return nil, eris.Wrap(saveErr, "pipeline: persist weights")
	}
	return event, nil
}

// Rescore recomputes score, confidence, priority, and propensity for one
// lead using the current weights and model. Status and assignment are left
// untouched.
func (p *Pipeline) Rescore(ctx context.Context, leadID string) (*model.Lead, error) {
	lead, err := p.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	text := nlp.CleanText(lead.RawText)
	summary := p.analyzer.Analyze(text)

	feats := scoring.Features{Industry: lead.Industry, Fingerprint: lead.Fingerprint, NLP: summary}
	result := p.scorer.Score(feats)
	snap := model.FeatureSnapshot{
		Industry:    lead.Industry,
		Source:      lead.Source,
		Priority:    result.Priority,
		Score:       result.Score,
		Confidence:  result.Confidence,
		IntentScore: summary.IntentScore,
		Terms:       lead.Fingerprint.Terms(),
	}
	propensity := p.trainer.Predict(snap)
	if propensity != nil {
		feats.Propensity = propensity
		result = p.scorer.Score(feats)
	}

	if err := p.store.UpdateLeadScore(ctx, leadID, result.Score, result.Confidence, result.Priority, propensity); err != nil {
		return nil, err
	}
	lead.Score = result.Score
	lead.Confidence = result.Confidence
	lead.Priority = result.Priority
	lead.Propensity = propensity
	return lead, nil
}

// RescoreOpen rescores every non-terminal lead, returning how many were
// recomputed.
func (p *Pipeline) RescoreOpen(ctx context.Context) (int, error) {
	count := 0
	for _, status := range []model.LeadStatus{model.StatusNew, model.StatusAssigned, model.StatusAccepted} {
		leads, err := p.store.ListLeads(ctx, store.LeadFilter{Status: status, Limit: 1000})
		if err != nil {
			return count, err
		}
		for i := range leads {
			if _, err := p.Rescore(ctx, leads[i].ID); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

// Retrain fits the propensity model from the full feedback history and
// persists it when training succeeds.
func (p *Pipeline) Retrain(ctx context.Context) (learning.RetrainResult, error) {
	events, err := p.store.ListFeedback(ctx)
	if err != nil {
		return learning.RetrainResult{}, err
	}

	res, err := p.trainer.Retrain(ctx, events)
	if err != nil {
		return learning.RetrainResult{}, err
	}
	if res.Status == learning.RetrainOK {
		blob, err := p.trainer.Model().Marshal()
		if err != nil {
			return res, err
		}
		if err := p.store.SaveModel(ctx, propensityModelName, blob); err != nil {
			return res, eris.Wrap(err, "pipeline: persist model")
		}
	}
	return res, nil
}
