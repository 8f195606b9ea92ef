package dossier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelsignal/leadgen-cli/internal/model"
)

func TestCardsKeepRankingOrder(t *testing.T) {
	cards := Cards([]string{"Petcoke", "Bitumen"})
	require.Len(t, cards, 2)
	assert.Equal(t, "Petcoke", cards[0].Product)
	assert.Equal(t, "Bitumen", cards[1].Product)
	assert.NotEmpty(t, cards[0].Pitch)
	assert.NotEmpty(t, cards[0].Counter)
}

func TestCardsUnknownProductGetsGeneric(t *testing.T) {
	cards := Cards([]string{"Specialty Products"})
	require.Len(t, cards, 1)
	assert.Equal(t, "Specialty Products", cards[0].Product)
	assert.Equal(t, genericCard.Pitch, cards[0].Pitch)
}

func TestSuggestedActions(t *testing.T) {
	tests := []struct {
		name     string
		priority model.Priority
		products []string
		contains string
	}{
		{"high gets same day call", model.PriorityHigh, []string{"Petcoke"}, "within 24 hours"},
		{"medium verifies first", model.PriorityMedium, nil, "second source"},
		{"low goes to monitoring", model.PriorityLow, nil, "monitoring list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions := SuggestedActions(tt.priority, tt.products)
			require.NotEmpty(t, actions)
			joined := ""
			for _, a := range actions {
				joined += a + "\n"
			}
			assert.Contains(t, joined, tt.contains)
		})
	}

	withProduct := SuggestedActions(model.PriorityHigh, []string{"Bitumen", "Lubes"})
	assert.Contains(t, withProduct[len(withProduct)-1], "Bitumen battlecard")
}

func TestPitchScript(t *testing.T) {
	lead := &model.Lead{
		CompanyName: "ABC Cement Ltd",
		Industry:    "Cement",
		Products:    []string{"Petcoke", "Furnace Oil"},
		Fingerprint: model.Fingerprint{
			{Term: "expansion", Product: "Industrial Fuels"},
		},
	}
	script := PitchScript(lead)
	assert.Contains(t, script, "ABC Cement Ltd")
	assert.Contains(t, script, `"expansion"`)
	assert.Contains(t, script, "Cement operations")
	assert.Contains(t, script, "Petcoke is the likely first requirement")
	assert.Contains(t, script, "Also explore Furnace Oil")

	// Sparse leads still get a usable script.
	bare := PitchScript(&model.Lead{CompanyName: "XYZ Co", Industry: "Unknown"})
	assert.Contains(t, bare, "XYZ Co")
	assert.Contains(t, bare, "fuel procurement")
}
