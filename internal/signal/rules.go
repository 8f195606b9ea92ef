// Package signal maps free-text procurement events to product categories
// with human-readable reasoning. The rule table is data, not code: new
// triggers and products are YAML additions.
package signal

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Entry maps a trigger to one product category with a reasoning template.
// Templates may contain {term} and {industry} placeholders.
type Entry struct {
	Product   string `yaml:"product"`
	Reasoning string `yaml:"reasoning"`
}

// Rule is one trigger term with its product entries and base weight.
type Rule struct {
	Term    string  `yaml:"term"`
	Weight  float64 `yaml:"weight"`
	Entries []Entry `yaml:"entries"`
}

// RuleSet is the loadable trigger -> product mapping.
type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a rule set from a YAML file. Weights default to 1.0 and
// negative weights are rejected.
func LoadRules(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, eris.Wrapf(err, "signal: read rules %s", path)
	}
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, eris.Wrapf(err, "signal: parse rules %s", path)
	}
	for i := range rs.Rules {
		r := &rs.Rules[i]
		if r.Term == "" {
			return RuleSet{}, eris.Errorf("signal: rule %d has empty term", i)
		}
		// Matching runs against lowercased text, so terms must be too.
		r.Term = strings.ToLower(r.Term)
		if r.Weight < 0 {
			return RuleSet{}, eris.Errorf("signal: rule %q has negative weight", r.Term)
		}
		if r.Weight == 0 {
			r.Weight = 1.0
		}
	}
	return rs, nil
}

// DefaultRules returns the built-in trigger -> product mapping for the
// fuel and industrial-products portfolio.
func DefaultRules() RuleSet {
	return RuleSet{Rules: []Rule{
		{Term: "expansion", Weight: 1.5, Entries: []Entry{
			{Product: "Bitumen", Reasoning: "{industry} expansion ({term}) implies new construction and paving, driving bitumen demand."},
			{Product: "Industrial Fuels", Reasoning: "Expansion ({term}) increases boiler and furnace load, raising industrial fuel requirements."},
			{Product: "Furnace Oil", Reasoning: "Added capacity from {term} typically needs furnace oil for process heating."},
		}},
		{Term: "new plant", Weight: 1.5, Entries: []Entry{
			{Product: "Industrial Fuels", Reasoning: "A new plant ({term}) requires captive power and process fuel from day one."},
			{Product: "Furnace Oil", Reasoning: "New plant commissioning ({term}) typically runs on furnace oil for boilers."},
			{Product: "Petcoke", Reasoning: "New cement or steel capacity ({term}) consumes petcoke as kiln fuel."},
		}},
		{Term: "tender", Weight: 1.2, Entries: []Entry{
			{Product: "Industrial Fuels", Reasoning: "An open tender ({term}) signals active procurement in the {industry} segment."},
			{Product: "Bitumen", Reasoning: "Tenders in infrastructure ({term}) frequently include bitumen supply lines."},
		}},
		{Term: "marine", Weight: 1.0, Entries: []Entry{
			{Product: "Marine Fuel", Reasoning: "Marine operations ({term}) require IMO-compliant bunker-grade marine fuel."},
			{Product: "LSHS", Reasoning: "Marine segment ({term}) uses low-sulphur heavy stock per emission norms."},
			{Product: "Bunker", Reasoning: "Vessel activity ({term}) implies bunkering demand at port."},
		}},
		{Term: "shipping", Weight: 1.0, Entries: []Entry{
			{Product: "Marine Fuel", Reasoning: "Shipping operations ({term}) consume marine fuels on scheduled routes."},
			{Product: "Bunker", Reasoning: "Shipping lines ({term}) contract bunker fuel at calling ports."},
		}},
		{Term: "road", Weight: 1.0, Entries: []Entry{
			{Product: "Bitumen", Reasoning: "Road projects ({term}) use viscosity-grade bitumen for paving and overlay."},
			{Product: "Paving Grade", Reasoning: "Road work ({term}) calls for paving-grade bitumen (VG-30/VG-40)."},
		}},
		{Term: "highway", Weight: 1.2, Entries: []Entry{
			{Product: "Bitumen", Reasoning: "Highway construction ({term}) requires paving-grade bitumen, VG-30 typical."},
			{Product: "VGB", Reasoning: "Highway specs ({term}) frequently mandate viscosity-grade bitumen."},
		}},
		{Term: "cement", Weight: 1.0, Entries: []Entry{
			{Product: "Petcoke", Reasoning: "Cement manufacture ({term}) burns petcoke in kilns and grinding units."},
			{Product: "Furnace Oil", Reasoning: "Cement plants ({term}) use furnace oil for kiln startup and heating."},
		}},
		{Term: "construction", Weight: 1.0, Entries: []Entry{
			{Product: "Bitumen", Reasoning: "Construction activity ({term}) needs bitumen for roads and site work."},
			{Product: "Industrial Fuels", Reasoning: "Construction sites ({term}) run equipment and temporary power on industrial fuels."},
		}},
		{Term: "boiler", Weight: 1.0, Entries: []Entry{
			{Product: "Industrial Fuels", Reasoning: "Boiler operations ({term}) in the {industry} segment consume industrial fuels continuously."},
			{Product: "Furnace Oil", Reasoning: "Boilers ({term}) commonly fire furnace oil or LSHS."},
		}},
		{Term: "power", Weight: 0.8, Entries: []Entry{
			{Product: "Furnace Oil", Reasoning: "Power generation ({term}) and DG sets run on furnace oil."},
			{Product: "LSHS", Reasoning: "Power and utility plants ({term}) use LSHS where emission norms require it."},
		}},
		{Term: "refinery", Weight: 1.0, Entries: []Entry{
			{Product: "Specialty Products", Reasoning: "Refinery/petrochemical activity ({term}) consumes specialty products and feedstocks."},
			{Product: "Lubes", Reasoning: "Refining operations ({term}) drive lube and specialty demand."},
		}},
		{Term: "aviation", Weight: 1.0, Entries: []Entry{
			{Product: "ATF", Reasoning: "Aviation activity ({term}) requires aviation turbine fuel to spec."},
			{Product: "Jet Fuel", Reasoning: "Airport and fleet operations ({term}) contract jet fuel supply."},
		}},
	}}
}
