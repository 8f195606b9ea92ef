package learning

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/fuelsignal/leadgen-cli/internal/config"
	"github.com/fuelsignal/leadgen-cli/internal/model"
)

// Retrain statuses.
const (
	RetrainOK           = "ok"
	RetrainInsufficient = "insufficient_data"
)

// RetrainResult reports the outcome of one training run.
type RetrainResult struct {
	Status      string             `json:"status"`
	Samples     int                `json:"samples"`
	Importances map[string]float64 `json:"importances,omitempty"`
}

// Trainer owns the live propensity model. The model is swapped atomically
// after a successful retrain, so scoring reads never see a half-trained
// model; an insufficient or failed run leaves the prior model serving.
type Trainer struct {
	cfg   config.LearningConfig
	model atomic.Pointer[Model]
}

func NewTrainer(cfg config.LearningConfig) *Trainer {
	return &Trainer{cfg: cfg}
}

// Model returns the live model, nil until the first successful retrain or
// SetModel from persisted state.
func (t *Trainer) Model() *Model { return t.model.Load() }

// SetModel installs a previously persisted model.
func (t *Trainer) SetModel(m *Model) { t.model.Store(m) }

// Predict returns the live model's prediction for a snapshot, or nil when no
// model is serving yet. Callers score without the propensity component in
// that case.
func (t *Trainer) Predict(s model.FeatureSnapshot) *float64 {
	m := t.model.Load()
	if m == nil {
		return nil
	}
	p := m.Predict(s)
	return &p
}

// Retrain fits a new model from the full event history. Below the minimum
// event count the run reports insufficient data and the prior model keeps
// serving.
func (t *Trainer) Retrain(ctx context.Context, events []model.FeedbackEvent) (RetrainResult, error) {
	var samples [][]float64
	var labels []float64
	for _, ev := range events {
		y, ok := label(ev.Outcome)
		if !ok {
			continue
		}
		samples = append(samples, featureVector(ev.Features))
		labels = append(labels, y)
	}

	if len(samples) < t.cfg.MinTrainingEvents {
		zap.L().Info("retrain skipped",
			zap.Int("samples", len(samples)),
			zap.Int("required", t.cfg.MinTrainingEvents))
		return RetrainResult{Status: RetrainInsufficient, Samples: len(samples)}, nil
	}

	m, err := fit(samples, labels, t.cfg.Epochs, t.cfg.StepSize, ctx.Err)
	if err != nil {
		return RetrainResult{}, err
	}
	m.TrainedAt = time.Now().UTC().Format(time.RFC3339)
	t.model.Store(m)

	zap.L().Info("model retrained", zap.Int("samples", m.Samples))
	return RetrainResult{Status: RetrainOK, Samples: m.Samples, Importances: m.Importances()}, nil
}

// RetrainAsync runs Retrain on its own goroutine and delivers the result on
// the returned channel. The channel closes without a value when training
// fails or is canceled.
func (t *Trainer) RetrainAsync(ctx context.Context, events []model.FeedbackEvent) <-chan RetrainResult {
	out := make(chan RetrainResult, 1)
	go func() {
		defer close(out)
		res, err := t.Retrain(ctx, events)
		if err != nil {
			zap.L().Warn("async retrain failed", zap.Error(err))
			return
		}
		out <- res
	}()
	return out
}
