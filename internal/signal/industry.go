package signal

import "strings"

// IndustryUnknown is the fallback classification when no keywords match.
const IndustryUnknown = "Unknown"

// industryKeywords maps an industry classification to its signal keywords.
// Specific industries are preferred over General Industrial, which is a
// fallback only.
var industryKeywords = map[string][]string{
	"Cement":                  {"cement", "clinker", "kiln", "grinding", "limestone"},
	"Marine":                  {"marine", "shipping", "vessel", "port", "bunker", "maritime"},
	"Construction / Roads":    {"road", "highway", "bitumen", "asphalt", "paving", "construction", "infrastructure"},
	"Power / Utilities":       {"power", "generation", "furnace", "boiler", "industrial fuel", "dg set"},
	"Refinery / Petrochemical": {"refinery", "petrochemical", "cracker", "lube", "specialty product"},
	"Mining / Steel":          {"mining", "steel", "iron", "ore", "pellet"},
	"Aviation":                {"aviation", "atf", "airport", "jet fuel"},
	"Manufacturing":           {"manufacturing", "factory", "plant", "production", "assembly"},
	"General Industrial":      {"industrial", "tender", "procurement", "supply"},
}

// industryProducts maps an industry to its default product recommendations,
// used when the fingerprint itself is empty.
var industryProducts = map[string][]string{
	"Cement":                  {"Petcoke", "Furnace Oil", "Industrial Fuels"},
	"Marine":                  {"Marine Fuel", "LSHS", "Bunker"},
	"Construction / Roads":    {"Bitumen", "VGB", "Paving Grade"},
	"Power / Utilities":       {"Furnace Oil", "LSHS", "Industrial Fuels"},
	"Refinery / Petrochemical": {"Specialty Products", "Lubes", "Feedstocks"},
	"Mining / Steel":          {"Industrial Fuels", "Furnace Oil", "Petcoke"},
	"Aviation":                {"ATF", "Jet Fuel"},
	"Manufacturing":           {"Industrial Fuels", "Furnace Oil"},
	"General Industrial":      {"Industrial Fuels", "Furnace Oil", "LSHS"},
}

// industryOrder fixes the evaluation order so detection is deterministic.
var industryOrder = []string{
	"Cement",
	"Marine",
	"Construction / Roads",
	"Power / Utilities",
	"Refinery / Petrochemical",
	"Mining / Steel",
	"Aviation",
	"Manufacturing",
	"General Industrial",
}

// DetectIndustry classifies the text into an industry by keyword count,
// preferring specific industries and falling back to General Industrial,
// then Unknown. extra is appended to the matching text (e.g. NLP key
// phrases) to improve recall.
func DetectIndustry(text string, extra ...string) string {
	lower := strings.ToLower(text)
	if len(extra) > 0 {
		lower += " " + strings.ToLower(strings.Join(extra, " "))
	}

	best := IndustryUnknown
	bestScore := 0
	for _, industry := range industryOrder {
		if industry == "General Industrial" {
			continue
		}
		score := 0
		for _, kw := range industryKeywords[industry] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = industry
		}
	}
	if best != IndustryUnknown {
		return best
	}
	for _, kw := range industryKeywords["General Industrial"] {
		if strings.Contains(lower, kw) {
			return "General Industrial"
		}
	}
	return IndustryUnknown
}

// ProductsForIndustry returns the default product recommendations for an
// industry; industrial fuels when the industry is unknown.
func ProductsForIndustry(industry string) []string {
	if p, ok := industryProducts[industry]; ok {
		out := make([]string, len(p))
		copy(out, p)
		return out
	}
	return []string{"Industrial Fuels"}
}

// procurementSignals are the keyword clues collected for the dossier.
var procurementSignals = []string{
	"tender", "rfp", "rfi", "contract", "procurement", "supply", "requirement",
	"expansion", "capacity", "new plant", "order", "bid", "purchase",
}

// RequirementClues extracts short requirement clues from the text, plus any
// NLP key phrases, capped for display.
func RequirementClues(text string, phrases []string) []string {
	lower := strings.ToLower(text)
	var clues []string
	for _, sig := range procurementSignals {
		if strings.Contains(lower, sig) {
			clues = append(clues, "Procurement signal: "+sig)
		}
	}
	for _, industry := range industryOrder {
		for _, kw := range industryKeywords[industry] {
			if strings.Contains(lower, kw) {
				clues = append(clues, "Industry signal: "+industry+" ("+kw+")")
				break
			}
		}
	}
	for _, p := range phrases {
		clues = append(clues, "Phrase: "+p)
	}
	if len(clues) > 14 {
		clues = clues[:14]
	}
	return clues
}
