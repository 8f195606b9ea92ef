package learning

import (
	"encoding/json"
	"math"

	"github.com/rotisserie/eris"

	"github.com/fuelsignal/leadgen-cli/internal/model"
)

// featureNames fixes the feature order for training, prediction, and
// importances. New features append here; serialized models carry their own
// weight vector and stay loadable.
var featureNames = []string{
	"score",
	"confidence",
	"intent_score",
	"term_count",
	"priority_high",
	"priority_medium",
}

// Model is a logistic regression over a lead's feature snapshot, predicting
// the probability that the lead converts. Training is full-batch gradient
// descent over a fixed event order, so identical histories produce identical
// models.
type Model struct {
	Bias      float64   `json:"bias"`
	Weights   []float64 `json:"weights"`
	Samples   int       `json:"samples"`
	TrainedAt string    `json:"trained_at,omitempty"`
}

// featureVector maps a snapshot onto the fixed feature order. Score and
// intent are normalized to [0,1] so no raw feature dwarfs the rest.
func featureVector(s model.FeatureSnapshot) []float64 {
	high, medium := 0.0, 0.0
	switch s.Priority {
	case model.PriorityHigh:
		high = 1
	case model.PriorityMedium:
		medium = 1
	}
	return []float64{
		s.Score / 100,
		s.Confidence,
		float64(s.IntentScore) / 100,
		math.Min(float64(len(s.Terms))/5, 1),
		high,
		medium,
	}
}

// label maps an outcome to a training target. Accepted and Converted are
// positives, Rejected is the negative class, anything else carries no label.
func label(outcome model.LeadStatus) (float64, bool) {
	switch outcome {
	case model.StatusAccepted, model.StatusConverted:
		return 1, true
	case model.StatusRejected:
		return 0, true
	default:
		return 0, false
	}
}

func sigmoid(z float64) float64 { return 1 / (1 + math.Exp(-z)) }

// Predict returns the conversion probability for a snapshot, in [0,1].
func (m *Model) Predict(s model.FeatureSnapshot) float64 {
	x := featureVector(s)
	z := m.Bias
	for i, w := range m.Weights {
		if i >= len(x) {
			break
		}
		z += w * x[i]
	}
	return sigmoid(z)
}

// Importances returns each feature's share of the total absolute weight,
// summing to 1 when any weight is nonzero.
func (m *Model) Importances() map[string]float64 {
	total := 0.0
	for _, w := range m.Weights {
		total += math.Abs(w)
	}
	out := make(map[string]float64, len(featureNames))
	for i, name := range featureNames {
		if i >= len(m.Weights) {
			break
		}
		if total == 0 {
			out[name] = 0
			continue
		}
		out[name] = math.Abs(m.Weights[i]) / total
	}
	return out
}

func (m *Model) Marshal() ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, eris.Wrap(err, "learning: marshal model")
	}
	return b, nil
}

func UnmarshalModel(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrap(err, "learning: unmarshal model")
	}
	return &m, nil
}

// fit trains a fresh model on labeled samples with full-batch gradient
// descent. check is consulted once per epoch so a canceled context stops a
// long run promptly.
func fit(samples [][]float64, labels []float64, epochs int, step float64, check func() error) (*Model, error) {
	m := &Model{Weights: make([]float64, len(featureNames)), Samples: len(samples)}
	n := float64(len(samples))
	for epoch := 0; epoch < epochs; epoch++ {
		if err := check(); err != nil {
			return nil, err
		}
		gradBias := 0.0
		grad := make([]float64, len(m.Weights))
		for i, x := range samples {
			z := m.Bias
			for j, w := range m.Weights {
				z += w * x[j]
			}
			delta := sigmoid(z) - labels[i]
			gradBias += delta
			for j := range grad {
				grad[j] += delta * x[j]
			}
		}
		m.Bias -= step * gradBias / n
		for j := range m.Weights {
			m.Weights[j] -= step * grad[j] / n
		}
	}
	return m, nil
}
