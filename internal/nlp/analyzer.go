// Package nlp provides the optional text-analysis collaborator: key
// phrases, organization candidates, procurement intent, and an extractive
// summary. Absence of analysis never affects pipeline correctness, only
// the scoring boost.
package nlp

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Summary is the best-effort analysis of one raw text.
type Summary struct {
	KeyPhrases    []string `json:"key_phrases,omitempty"`
	Organizations []string `json:"organizations,omitempty"`
	IntentScore   int      `json:"intent_score"`
	Summary       string   `json:"summary,omitempty"`
}

// Analyzer is the NLP collaborator interface. Implementations must be safe
// for concurrent use and must never fail: a degraded or empty Summary is
// the error path.
type Analyzer interface {
	Analyze(text string) Summary
}

// Noop is the absent-collaborator implementation; scoring proceeds with a
// zero boost.
type Noop struct{}

// Analyze returns an empty summary.
func (Noop) Analyze(string) Summary { return Summary{} }

// Boost converts a summary into the scoring boost: +3 when at least two
// key phrases were found, +2 when any organization entity was found,
// capped at 5.
func Boost(s Summary) int {
	boost := 0
	if len(s.KeyPhrases) >= 2 {
		boost += 3
	}
	if len(s.Organizations) > 0 {
		boost += 2
	}
	if boost > 5 {
		boost = 5
	}
	return boost
}

var (
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe  = regexp.MustCompile(`\s+`)
	wordRe   = regexp.MustCompile(`\b[a-z0-9]{2,}\b`)
	orgRe    = regexp.MustCompile(`\b([A-Z][A-Za-z0-9&\s]+?(?:Ltd|Limited|Corp|Corporation|India|Pvt|Co|Inc))\b`)
	sentSpRe = regexp.MustCompile(`[.!?]+`)
)

// CleanText strips HTML tags and normalizes whitespace.
func CleanText(raw string) string {
	text := tagRe.ReplaceAllString(raw, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"is": true, "are": true, "was": true, "were": true, "with": true,
	"near": true, "new": true, "this": true, "that": true,
}

// signalWords are the domain terms that make a phrase or sentence worth
// keeping.
var signalWords = map[string]bool{
	"fuel": true, "fuels": true, "cement": true, "marine": true, "bitumen": true,
	"tender": true, "supply": true, "contract": true, "expansion": true,
	"industrial": true, "road": true, "construction": true, "shipping": true,
	"vessel": true, "vessels": true, "procurement": true, "refinery": true,
	"power": true, "aviation": true, "mining": true, "steel": true,
	"bunkering": true, "bituminous": true, "asphalt": true, "petcoke": true,
	"furnace": true, "bunker": true, "maritime": true, "highway": true,
	"paving": true, "lube": true, "ore": true, "boiler": true, "plant": true,
}

// Intent tiers: stronger signals get higher weight; total capped at 100.
var (
	intentStrong = []string{"tender", "rfp", "rfi", "contract", "procurement", "bid", "order", "purchase"}
	intentMedium = []string{"expansion", "capacity", "new plant", "supply", "requirement", "fuel supply"}
	intentWeak   = []string{"announce", "plan", "consider", "seek", "invite", "float"}
)

// IntentScore rates 0-100 how strongly the text signals buying intent.
func IntentScore(text string) int {
	lower := strings.ToLower(CleanText(text))
	if lower == "" {
		return 0
	}
	score := 0
	for _, w := range intentStrong {
		if strings.Contains(lower, w) {
			score += 25
		}
	}
	for _, w := range intentMedium {
		if strings.Contains(lower, w) {
			score += 12
		}
	}
	for _, w := range intentWeak {
		if strings.Contains(lower, w) {
			score += 5
		}
	}
	if score > 100 {
		score = 100
	}
	return score
}

// Rule is the dependency-free analyzer: regex tokenization, n-gram key
// phrases, pattern-matched organization names. It is the degrade path when
// richer NLP is unavailable.
type Rule struct{}

// Analyze implements Analyzer.
func (Rule) Analyze(text string) Summary {
	clean := CleanText(text)
	return Summary{
		KeyPhrases:    KeyPhrases(clean, 12),
		Organizations: orgCandidates(clean),
		IntentScore:   IntentScore(clean),
		Summary:       ExtractiveSummary(clean, 2, 280),
	}
}

func tokens(text string) []string {
	raw := wordRe.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if !stopwords[t] {
			out = append(out, t)
		}
	}
	return out
}

func ngrams(toks []string, n int) []string {
	if len(toks) < n {
		return nil
	}
	out := make([]string, 0, len(toks)-n+1)
	for i := 0; i+n <= len(toks); i++ {
		out = append(out, strings.Join(toks[i:i+n], " "))
	}
	return out
}

func phraseScore(p string) int {
	score := 0
	for _, w := range strings.Fields(p) {
		if signalWords[w] {
			score++
		}
	}
	return score
}

// KeyPhrases extracts signal-bearing 2- and 3-word phrases, ordered by
// score (stable on input order for ties), deduplicated and capped.
func KeyPhrases(text string, max int) []string {
	toks := tokens(text)
	if len(toks) < 2 {
		return nil
	}
	candidates := append(ngrams(toks, 2), ngrams(toks, 3)...)

	type scored struct {
		phrase string
		score  int
	}
	var kept []scored
	for _, p := range candidates {
		if s := phraseScore(p); s > 0 {
			kept = append(kept, scored{p, s})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].score > kept[j].score })

	seen := make(map[string]bool, len(kept))
	var out []string
	for _, k := range kept {
		if seen[k.phrase] {
			continue
		}
		seen[k.phrase] = true
		out = append(out, k.phrase)
		if len(out) >= max {
			break
		}
	}
	return out
}

// orgCandidates finds "X Ltd" style organization names in the raw-cased text.
func orgCandidates(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range orgRe.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if len(name) < 4 || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
		if len(out) >= 10 {
			break
		}
	}
	return out
}

// ExtractiveSummary picks the sentences with the most signal words.
func ExtractiveSummary(text string, maxSentences, maxLen int) string {
	clean := CleanText(text)
	if clean == "" {
		return ""
	}
	var sentences []string
	for _, s := range sentSpRe.Split(clean, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) == 0 {
		return truncate(clean, maxLen)
	}

	type scored struct {
		sent  string
		score int
	}
	ranked := make([]scored, 0, len(sentences))
	for _, s := range sentences {
		score := 0
		lower := strings.ToLower(s)
		for w := range signalWords {
			if strings.Contains(lower, w) {
				score++
			}
		}
		ranked = append(ranked, scored{s, score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	n := maxSentences
	if n > len(ranked) {
		n = len(ranked)
	}
	chosen := make([]string, 0, n)
	for _, r := range ranked[:n] {
		chosen = append(chosen, r.sent)
	}
	return truncate(strings.Join(chosen, ". "), maxLen)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	// Back the cut up to a rune boundary so multi-byte text stays valid.
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
