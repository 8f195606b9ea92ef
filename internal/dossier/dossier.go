// Package dossier renders officer-facing collateral for a lead: product
// battlecards, suggested next actions, and a short pitch script.
package dossier

import (
	"fmt"
	"strings"

	"github.com/fuelsignal/leadgen-cli/internal/model"
)

// Battlecard is a one-screen product brief an officer can read before a call.
type Battlecard struct {
	Product   string   `json:"product"`
	Pitch     string   `json:"pitch"`
	Proof     []string `json:"proof"`
	Objection string   `json:"objection"`
	Counter   string   `json:"counter"`
}

// battlecards is the static product playbook. Unmapped products get a
// generic card so the dossier is never empty.
var battlecards = map[string]Battlecard{
	"Bitumen": {
		Product:   "Bitumen",
		Pitch:     "Paving and industrial grade bitumen with depot-level availability near major road corridors.",
		Proof:     []string{"Consistent penetration grade supply for highway contractors", "Bulk and packed delivery options"},
		Objection: "We already have a rate contract with another supplier.",
		Counter:   "Ask for their delivered cost at site; depot proximity usually wins on freight alone.",
	},
	"Industrial Fuels": {
		Product:   "Industrial Fuels",
		Pitch:     "Boiler and furnace fuels sized to plant consumption, with scheduled deliveries that match shift patterns.",
		Proof:     []string{"Calorific value certificates with every batch", "Flexible credit terms for recurring offtake"},
		Objection: "Our current fuel works fine.",
		Counter:   "Offer a trial lot and a side-by-side cost per ton of steam comparison.",
	},
	"Furnace Oil": {
		Product:   "Furnace Oil",
		Pitch:     "Stable viscosity furnace oil for continuous process heating.",
		Proof:     []string{"Low sludge formulations reduce burner maintenance"},
		Objection: "Switching suppliers risks a quality dip mid-campaign.",
		Counter:   "Share batch test reports up front and guarantee spec on the first three deliveries.",
	},
	"Petcoke": {
		Product:   "Petcoke",
		Pitch:     "High calorific petcoke for kilns and captive power, priced against imported parity.",
		Proof:     []string{"Sulphur and moisture specs published per lot", "Rail and road dispatch from coastal terminals"},
		Objection: "Imported petcoke is cheaper on paper.",
		Counter:   "Walk through landed cost with port handling and demurrage included.",
	},
	"Marine Fuel": {
		Product:   "Marine Fuel",
		Pitch:     "Compliant low sulphur marine fuels with bunker delivery at major ports.",
		Proof:     []string{"MARPOL compliant grades", "Barge and pipeline bunkering slots"},
		Objection: "We bunker at a cheaper foreign port.",
		Counter:   "Compare voyage deviation cost against the per ton saving.",
	},
	"Bunker": {
		Product:   "Bunker",
		Pitch:     "Scheduled bunker supply aligned to vessel calls, with quality surveys on request.",
		Proof:     []string{"Port-side availability reduces waiting time"},
		Objection: "Bunker quality disputes are a headache.",
		Counter:   "Joint sampling at delivery with retained samples for every stem.",
	},
	"LSHS": {
		Product:   "LSHS",
		Pitch:     "Low sulphur heavy stock for utilities under emission limits.",
		Proof:     []string{"Meets stack emission norms without flue gas treatment"},
		Objection: "We plan to move to gas eventually.",
		Counter:   "Bridge the transition years with a short flexible contract.",
	},
	"ATF": {
		Product:   "ATF",
		Pitch:     "Aviation turbine fuel with into-plane service at scheduled and charter fields.",
		Proof:     []string{"Full traceability from refinery to wingtip"},
		Objection: "Airport fueling is locked to the incumbent.",
		Counter:   "Quote for charter and general aviation volumes the incumbent ignores.",
	},
	"Lubes": {
		Product:   "Lubes",
		Pitch:     "Industrial lubricant range with oil condition monitoring bundled in.",
		Proof:     []string{"Extended drain intervals cut total lubricant spend"},
		Objection: "Lubricants are a small line item.",
		Counter:   "Position it as machine uptime insurance, not an oil purchase.",
	},
}

var genericCard = Battlecard{
	Pitch:     "Reliable supply with transparent quality certification and predictable delivery windows.",
	Proof:     []string{"Pan-regional depot network", "Dedicated key account manager"},
	Objection: "We are satisfied with our current arrangement.",
	Counter:   "Ask what their last supply disruption cost and how it was compensated.",
}

// Cards returns one battlecard per recommended product, in the lead's
// product ranking order.
func Cards(products []string) []Battlecard {
	out := make([]Battlecard, 0, len(products))
	for _, p := range products {
		if card, ok := battlecards[p]; ok {
			out = append(out, card)
			continue
		}
		card := genericCard
		card.Product = p
		out = append(out, card)
	}
	return out
}

// SuggestedActions returns the next steps an officer should take, ordered by
// urgency. High priority leads get a same-day call plan; low priority leads
// go to a monitoring cadence.
func SuggestedActions(priority model.Priority, products []string) []string {
	var actions []string
	switch priority {
	case model.PriorityHigh:
		actions = append(actions,
			"Call the procurement contact within 24 hours",
			"Prepare a delivered-cost quote for the top product",
		)
	case model.PriorityMedium:
		actions = append(actions,
			"Verify the signal with a second source before outreach",
			"Schedule an introductory call this week",
		)
	default:
		actions = append(actions,
			"Add to the monitoring list and recheck in 30 days",
		)
	}
	if len(products) > 0 {
		actions = append(actions, fmt.Sprintf("Lead with the %s battlecard", products[0]))
	}
	return actions
}

// PitchScript renders a short opening script referencing what was observed,
// so the call starts from the buyer's own news rather than a cold pitch.
func PitchScript(lead *model.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Opening: We noticed %s", lead.CompanyName)
	if len(lead.Fingerprint) > 0 {
		fmt.Fprintf(&b, " in connection with %q", lead.Fingerprint[0].Term)
	}
	b.WriteString(".\n")

	if lead.Industry != "" && lead.Industry != "Unknown" {
		fmt.Fprintf(&b, "Context: We supply several %s operations in the region.\n", lead.Industry)
	}
	if products := lead.Products; len(products) > 0 {
		fmt.Fprintf(&b, "Offer: Based on the activity, %s is the likely first requirement.\n", products[0])
		if len(products) > 1 {
			fmt.Fprintf(&b, "Expand: Also explore %s.\n", strings.Join(products[1:], ", "))
		}
	}
	b.WriteString("Close: Ask for the name of the person who owns fuel procurement.")
	return b.String()
}
