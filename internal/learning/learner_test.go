package learning

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelsignal/leadgen-cli/internal/config"
	"github.com/fuelsignal/leadgen-cli/internal/model"
)

func testLearningConfig() config.LearningConfig {
	return config.LearningConfig{
		LearningRate:      0.05,
		MinWeight:         0.25,
		MaxWeight:         4.0,
		MinTrainingEvents: 10,
		Epochs:            300,
		StepSize:          0.1,
	}
}

func event(outcome model.LeadStatus, industry string, terms ...string) model.FeedbackEvent {
	return model.FeedbackEvent{
		Outcome:  outcome,
		Features: model.FeatureSnapshot{Industry: industry, Terms: terms},
	}
}

func TestTableDefaults(t *testing.T) {
	table := NewTable()
	assert.Equal(t, 1.0, table.Multiplier("Cement", "tender"))
	assert.Empty(t, table.Snapshot())
}

func TestTableLoadSnapshot(t *testing.T) {
	table := NewTable()
	table.Load([]model.WeightEntry{
		{Industry: "Marine", Term: "bunker", Multiplier: 1.3},
		{Industry: "Cement", Term: "tender", Multiplier: 0.8},
		{Industry: "Cement", Term: "petcoke", Multiplier: 1.6},
	})

	assert.Equal(t, 1.6, table.Multiplier("Cement", "petcoke"))
	assert.Equal(t, 1.0, table.Multiplier("Cement", "bunker"))

	// Snapshot orders by industry then term.
	snap := table.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "petcoke", snap[0].Term)
	assert.Equal(t, "tender", snap[1].Term)
	assert.Equal(t, "Marine", snap[2].Industry)
}

func TestLearnerOutcomeSteps(t *testing.T) {
	tests := []struct {
		name    string
		outcome model.LeadStatus
		want    float64
	}{
		{"accepted raises", model.StatusAccepted, 1.05},
		{"converted raises double", model.StatusConverted, 1.10},
		{"rejected lowers", model.StatusRejected, 0.95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLearner(testLearningConfig(), NewTable())
			changed := l.Apply(event(tt.outcome, "Cement", "tender"))
			require.Len(t, changed, 1)
			assert.InDelta(t, tt.want, changed[0].Multiplier, 1e-9)
			assert.InDelta(t, tt.want, l.Table().Multiplier("Cement", "tender"), 1e-9)
		})
	}
}

func TestLearnerNeutralOutcomes(t *testing.T) {
	l := NewLearner(testLearningConfig(), NewTable())
	assert.Nil(t, l.Apply(event(model.StatusNew, "Cement", "tender")))
	assert.Nil(t, l.Apply(event(model.StatusAssigned, "Cement", "tender")))
	assert.Nil(t, l.Apply(event(model.StatusAccepted, "Cement")))
	assert.Equal(t, 1.0, l.Table().Multiplier("Cement", "tender"))
}

func TestLearnerClamps(t *testing.T) {
	l := NewLearner(testLearningConfig(), NewTable())

	// 2*lr per conversion: 30 conversions would reach 4.0 exactly, more
	// must not push past the ceiling.
	for i := 0; i < 40; i++ {
		l.Apply(event(model.StatusConverted, "Cement", "petcoke"))
	}
	assert.InDelta(t, 4.0, l.Table().Multiplier("Cement", "petcoke"), 1e-9)

	for i := 0; i < 40; i++ {
		l.Apply(event(model.StatusRejected, "Marine", "bunker"))
	}
	assert.InDelta(t, 0.25, l.Table().Multiplier("Marine", "bunker"), 1e-9)

	// At the clamp further events report no change.
	assert.Nil(t, l.Apply(event(model.StatusRejected, "Marine", "bunker")))
}

func TestLearnerIndustryIsolation(t *testing.T) {
	l := NewLearner(testLearningConfig(), NewTable())
	l.Apply(event(model.StatusAccepted, "Cement", "tender"))
	assert.Equal(t, 1.0, l.Table().Multiplier("Marine", "tender"))
}

func TestReplayDeterminism(t *testing.T) {
	events := []model.FeedbackEvent{
		event(model.StatusAccepted, "Cement", "tender", "petcoke"),
		event(model.StatusRejected, "Cement", "tender"),
		event(model.StatusConverted, "Marine", "bunker"),
		event(model.StatusAccepted, "Cement", "expansion"),
	}

	a := NewLearner(testLearningConfig(), NewTable())
	a.Replay(events)
	b := NewLearner(testLearningConfig(), NewTable())
	b.Replay(events)
	assert.Equal(t, a.Table().Snapshot(), b.Table().Snapshot())

	// Replay resets prior state before folding.
	b.Table().Load([]model.WeightEntry{{Industry: "Power", Term: "boiler", Multiplier: 2.0}})
	b.Replay(events)
	assert.Equal(t, a.Table().Snapshot(), b.Table().Snapshot())
}

func TestConcurrentApplyMatchesReplay(t *testing.T) {
	// Additive steps away from the clamps commute, so concurrent arrival
	// must settle on the same table as ordered replay.
	var events []model.FeedbackEvent
	for i := 0; i < 10; i++ {
		events = append(events,
			event(model.StatusAccepted, "Cement", "tender"),
			event(model.StatusRejected, "Cement", "expansion"),
			event(model.StatusConverted, "Marine", "bunker"),
		)
	}

	concurrent := NewLearner(testLearningConfig(), NewTable())
	var wg sync.WaitGroup
	for _, ev := range events {
		wg.Add(1)
		go func(ev model.FeedbackEvent) {
			defer wg.Done()
			concurrent.Apply(ev)
		}(ev)
	}
	wg.Wait()

	replayed := NewLearner(testLearningConfig(), NewTable())
	replayed.Replay(events)

	want := replayed.Table().Snapshot()
	got := concurrent.Table().Snapshot()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Industry, got[i].Industry)
		assert.Equal(t, want[i].Term, got[i].Term)
		assert.InDelta(t, want[i].Multiplier, got[i].Multiplier, 1e-9)
	}
}
