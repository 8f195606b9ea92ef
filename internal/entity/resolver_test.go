package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	r := NewResolver(nil)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Tata Motors", "tata motors"},
		{"ltd suffix", "Tata Motors Ltd", "tata motors"},
		{"limited suffix", "Tata Motors Limited", "tata motors"},
		{"pvt ltd", "ABC Cement Pvt Ltd", "abc cement"},
		{"private limited", "ABC Cement Private Limited", "abc cement"},
		{"caps", "TATA MOTORS LTD.", "tata motors"},
		{"punctuation", "Tata-Motors, Ltd.", "tata motors"},
		{"whitespace", "  Tata   Motors  ", "tata motors"},
		{"stacked suffixes", "Acme Co Ltd", "acme"},
		{"diacritics", "Ingénico Corporation", "ingenico"},
		{"empty", "", UnknownKey},
		{"whitespace only", "   ", UnknownKey},
		{"punctuation only", "---", UnknownKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.in))
		})
	}
}

func TestResolveDistinctCompanies(t *testing.T) {
	r := NewResolver(nil)

	// Same organization, different spellings.
	assert.Equal(t, r.Resolve("Tata Motors Ltd"), r.Resolve("Tata Motors"))

	// Different organizations stay distinct.
	assert.NotEqual(t, r.Resolve("Tata Motors"), r.Resolve("Tata Steel"))
}

func TestResolveIdempotent(t *testing.T) {
	r := NewResolver(nil)

	for _, in := range []string{"Tata Motors Ltd", "ABC CEMENT LIMITED", "Ingénico, Inc.", ""} {
		once := r.Resolve(in)
		assert.Equal(t, once, r.Resolve(once), "resolve must be idempotent for %q", in)
	}
}

func TestResolveCustomSuffixes(t *testing.T) {
	r := NewResolver([]string{"gmbh"})

	assert.Equal(t, "siemens", r.Resolve("Siemens GmbH"))
	// Default suffixes are no longer active.
	assert.Equal(t, "tata motors ltd", r.Resolve("Tata Motors Ltd"))
}

func TestRegistryObserve(t *testing.T) {
	reg := NewRegistry()

	assert.True(t, reg.Observe("tata motors", "Tata Motors Ltd"))
	// A second distinct alias of a known key is still new.
	assert.True(t, reg.Observe("tata motors", "Tata Motors"))
	assert.False(t, reg.Observe("tata motors", "Tata Motors Ltd")) // duplicate alias

	assert.Equal(t, []string{"Tata Motors Ltd", "Tata Motors"}, reg.Aliases("tata motors"))
	assert.Empty(t, reg.Aliases("nobody"))
}
