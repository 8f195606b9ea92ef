package learning

import (
	"go.uber.org/zap"

	"github.com/fuelsignal/leadgen-cli/internal/config"
	"github.com/fuelsignal/leadgen-cli/internal/model"
)

// Learner folds feedback events into the weight table. All writes go through
// Apply under the table's lock, so concurrent feedback arrival serializes to
// the same result as sequential replay in arrival order.
type Learner struct {
	cfg   config.LearningConfig
	table *Table
}

func NewLearner(cfg config.LearningConfig, table *Table) *Learner {
	return &Learner{cfg: cfg, table: table}
}

// Table returns the weight table the learner writes to.
func (l *Learner) Table() *Table { return l.table }

// step returns the signed learning step for an outcome, zero for outcomes
// that carry no signal.
func (l *Learner) step(outcome model.LeadStatus) float64 {
	switch outcome {
	case model.StatusAccepted:
		return l.cfg.LearningRate
	case model.StatusConverted:
		return 2 * l.cfg.LearningRate
	case model.StatusRejected:
		return -l.cfg.LearningRate
	default:
		return 0
	}
}

// Apply adjusts the multiplier for every term in the event's feature
// snapshot and returns the entries that changed. Multipliers are clamped to
// the configured band so no single term can dominate or vanish.
func (l *Learner) Apply(event model.FeedbackEvent) []model.WeightEntry {
	step := l.step(event.Outcome)
	if step == 0 || len(event.Features.Terms) == 0 {
		return nil
	}

	industry := event.Features.Industry
	l.table.mu.Lock()
	defer l.table.mu.Unlock()

	var changed []model.WeightEntry
	for _, term := range event.Features.Terms {
		cur := 1.0
		if m, ok := l.table.weights[industry]; ok {
			if v, ok := m[term]; ok {
				cur = v
			}
		}
		next := cur + step
		if next < l.cfg.MinWeight {
			next = l.cfg.MinWeight
		}
		if next > l.cfg.MaxWeight {
			next = l.cfg.MaxWeight
		}
		if next == cur {
			continue
		}
		l.table.set(industry, term, next)
		changed = append(changed, model.WeightEntry{Industry: industry, Term: term, Multiplier: next})
	}
	if len(changed) > 0 {
		zap.L().Debug("weights adjusted",
			zap.String("industry", industry),
			zap.String("outcome", string(event.Outcome)),
			zap.Int("terms", len(changed)))
	}
	return changed
}

// Replay rebuilds the table from an ordered event history. Events must be in
// creation order; the result is deterministic for a given sequence.
func (l *Learner) Replay(events []model.FeedbackEvent) {
	l.table.Load(nil)
	for _, ev := range events {
		l.Apply(ev)
	}
}
