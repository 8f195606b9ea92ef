// Package entity canonicalizes company names so duplicate mentions of the
// same organization resolve to one key.
package entity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UnknownKey is the sentinel key for empty or unusable company names. The
// pipeline always has a key to work with, never an error.
const UnknownKey = "unknown"

// DefaultSuffixes is the built-in list of legal-entity suffixes stripped
// from the end of a name, longest-match first.
func DefaultSuffixes() []string {
	return []string{
		"private limited",
		"pvt ltd",
		"pvt limited",
		"pvt",
		"ltd",
		"limited",
		"incorporated",
		"inc",
		"corporation",
		"corp",
		"llp",
		"llc",
		"co",
		"company",
		"india",
		"ind",
	}
}

// Resolver normalizes raw company names into canonical keys. It performs no
// lookups or I/O; resolution is deterministic and idempotent.
type Resolver struct {
	suffixes []string
}

// NewResolver creates a resolver with the given suffix list; nil or empty
// means the built-in defaults.
func NewResolver(suffixes []string) *Resolver {
	if len(suffixes) == 0 {
		suffixes = DefaultSuffixes()
	}
	cleaned := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	// Longest first so "pvt ltd" is stripped before "ltd".
	for i := 1; i < len(cleaned); i++ {
		for j := i; j > 0 && len(cleaned[j]) > len(cleaned[j-1]); j-- {
			cleaned[j], cleaned[j-1] = cleaned[j-1], cleaned[j]
		}
	}
	return &Resolver{suffixes: cleaned}
}

// stripDiacritics removes combining marks after NFD decomposition.
var stripDiacritics = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Resolve returns the canonical key for a raw company name.
// "Tata Motors Ltd", "TATA MOTORS" and "Tata Motors Limited" all resolve to
// "tata motors". Empty or whitespace-only input resolves to UnknownKey.
func (r *Resolver) Resolve(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return UnknownKey
	}

	if out, _, err := transform.String(stripDiacritics, s); err == nil {
		s = out
	}

	// Replace punctuation with spaces and collapse runs.
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			b.WriteRune(c)
		} else {
			b.WriteRune(' ')
		}
	}
	s = strings.Join(strings.Fields(b.String()), " ")

	// Repeatedly strip trailing legal suffixes ("abc cement pvt ltd" loses
	// both "pvt ltd" and any remaining "ltd").
	for {
		stripped := false
		for _, suf := range r.suffixes {
			if s == suf {
				// A name that is nothing but a suffix stays as-is rather
				// than collapsing to empty.
				continue
			}
			if strings.HasSuffix(s, " "+suf) {
				s = strings.TrimSpace(strings.TrimSuffix(s, " "+suf))
				stripped = true
			}
		}
		if !stripped {
			break
		}
	}

	if s == "" {
		return UnknownKey
	}
	return s
}
