package learning

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelsignal/leadgen-cli/internal/model"
)

func trainingEvents(n int) []model.FeedbackEvent {
	// Half strong leads that closed, half weak leads that were rejected.
	var out []model.FeedbackEvent
	for i := 0; i < n/2; i++ {
		out = append(out, model.FeedbackEvent{
			Outcome: model.StatusConverted,
			Features: model.FeatureSnapshot{
				Industry:    "Cement",
				Priority:    model.PriorityHigh,
				Score:       85,
				Confidence:  0.8,
				IntentScore: 60,
				Terms:       []string{"tender", "petcoke", "expansion"},
			},
		})
		out = append(out, model.FeedbackEvent{
			Outcome: model.StatusRejected,
			Features: model.FeatureSnapshot{
				Industry:    "General Industrial",
				Priority:    model.PriorityLow,
				Score:       20,
				Confidence:  0.15,
				IntentScore: 5,
				Terms:       []string{"announce"},
			},
		})
	}
	return out
}

func TestRetrainInsufficientData(t *testing.T) {
	tr := NewTrainer(testLearningConfig())
	prior := &Model{Bias: 0.5, Weights: make([]float64, len(featureNames))}
	tr.SetModel(prior)

	res, err := tr.Retrain(context.Background(), trainingEvents(8))
	require.NoError(t, err)
	assert.Equal(t, RetrainInsufficient, res.Status)
	assert.Equal(t, 8, res.Samples)

	// The prior model keeps serving.
	assert.Same(t, prior, tr.Model())
}

func TestRetrainSeparatesClasses(t *testing.T) {
	tr := NewTrainer(testLearningConfig())
	require.Nil(t, tr.Predict(model.FeatureSnapshot{}))

	res, err := tr.Retrain(context.Background(), trainingEvents(40))
	require.NoError(t, err)
	assert.Equal(t, RetrainOK, res.Status)
	assert.Equal(t, 40, res.Samples)

	strong := tr.Predict(model.FeatureSnapshot{
		Priority: model.PriorityHigh, Score: 90, Confidence: 0.85, IntentScore: 70,
		Terms: []string{"tender", "petcoke", "expansion"},
	})
	weak := tr.Predict(model.FeatureSnapshot{
		Priority: model.PriorityLow, Score: 15, Confidence: 0.1, IntentScore: 0,
		Terms: []string{"announce"},
	})
	require.NotNil(t, strong)
	require.NotNil(t, weak)
	assert.Greater(t, *strong, *weak)
	assert.GreaterOrEqual(t, *strong, 0.0)
	assert.LessOrEqual(t, *strong, 1.0)
}

func TestRetrainSkipsUnlabeledOutcomes(t *testing.T) {
	tr := NewTrainer(testLearningConfig())
	events := trainingEvents(20)
	for i := 0; i < 20; i++ {
		events = append(events, model.FeedbackEvent{Outcome: model.StatusAssigned})
	}
	res, err := tr.Retrain(context.Background(), events)
	require.NoError(t, err)
	assert.Equal(t, 20, res.Samples)
}

func TestRetrainDeterministic(t *testing.T) {
	events := trainingEvents(40)
	a := NewTrainer(testLearningConfig())
	b := NewTrainer(testLearningConfig())
	_, err := a.Retrain(context.Background(), events)
	require.NoError(t, err)
	_, err = b.Retrain(context.Background(), events)
	require.NoError(t, err)

	assert.Equal(t, a.Model().Bias, b.Model().Bias)
	assert.Equal(t, a.Model().Weights, b.Model().Weights)
}

func TestRetrainCanceled(t *testing.T) {
	tr := NewTrainer(testLearningConfig())
	prior := &Model{Weights: make([]float64, len(featureNames))}
	tr.SetModel(prior)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tr.Retrain(ctx, trainingEvents(40))
	require.Error(t, err)
	assert.Same(t, prior, tr.Model())
}

func TestImportancesNormalized(t *testing.T) {
	tr := NewTrainer(testLearningConfig())
	res, err := tr.Retrain(context.Background(), trainingEvents(40))
	require.NoError(t, err)

	total := 0.0
	for name, v := range res.Importances {
		assert.GreaterOrEqual(t, v, 0.0, "importance %s", name)
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Contains(t, res.Importances, "confidence")
}

func TestModelRoundTrip(t *testing.T) {
	tr := NewTrainer(testLearningConfig())
	_, err := tr.Retrain(context.Background(), trainingEvents(40))
	require.NoError(t, err)

	blob, err := tr.Model().Marshal()
	require.NoError(t, err)
	loaded, err := UnmarshalModel(blob)
	require.NoError(t, err)

	snap := model.FeatureSnapshot{Priority: model.PriorityHigh, Score: 75, Confidence: 0.7, Terms: []string{"tender"}}
	assert.Equal(t, tr.Model().Predict(snap), loaded.Predict(snap))
}

func TestRetrainAsync(t *testing.T) {
	tr := NewTrainer(testLearningConfig())
	select {
	case res := <-tr.RetrainAsync(context.Background(), trainingEvents(40)):
		assert.Equal(t, RetrainOK, res.Status)
	case <-time.After(10 * time.Second):
		t.Fatal("retrain did not finish")
	}
	require.NotNil(t, tr.Model())
}
