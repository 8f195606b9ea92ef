package nlp

import (
	"strings"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"
)

// Prose wraps the rule analyzer with prose-based named-entity extraction,
// adding entities the suffix regex misses. Any prose failure falls back to
// the rule analyzer alone.
type Prose struct {
	rule Rule
}

// NewProse creates the prose-backed analyzer.
func NewProse() *Prose {
	return &Prose{}
}

// Analyze implements Analyzer.
func (p *Prose) Analyze(text string) Summary {
	s := p.rule.Analyze(text)

	clean := CleanText(text)
	if clean == "" {
		return s
	}
	// Entity models are per-document; cap input so a giant article does not
	// dominate the discovery cycle.
	if len(clean) > 5000 {
		clean = clean[:5000]
	}

	doc, err := prose.NewDocument(clean, prose.WithSegmentation(false))
	if err != nil {
		zap.L().Debug("nlp: prose analysis failed, using rule analyzer only", zap.Error(err))
		return s
	}

	seen := make(map[string]bool, len(s.Organizations))
	for _, o := range s.Organizations {
		seen[o] = true
	}
	for _, ent := range doc.Entities() {
		name := strings.TrimSpace(ent.Text)
		if len(name) < 3 || seen[name] {
			continue
		}
		seen[name] = true
		s.Organizations = append(s.Organizations, name)
		if len(s.Organizations) >= 10 {
			break
		}
	}
	return s
}
