package entity

import "sync"

// Registry accumulates observed raw aliases per canonical key within a
// discovery cycle. Keys are never removed; persistence happens through the
// store, this is the in-memory view used for dedup.
type Registry struct {
	mu      sync.Mutex
	aliases map[string][]string
}

// NewRegistry creates an empty alias registry.
func NewRegistry() *Registry {
	return &Registry{aliases: make(map[string][]string)}
}

// Observe records a raw alias under its canonical key and reports whether
// this alias is new for the key, so every distinct raw name triggers exactly
// one persistence write.
func (r *Registry) Observe(key, raw string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.aliases[key]
	for _, a := range existing {
		if a == raw {
			return false
		}
	}
	r.aliases[key] = append(existing, raw)
	return true
}

// Aliases returns the observed raw names for a canonical key.
func (r *Registry) Aliases(key string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.aliases[key]))
	copy(out, r.aliases[key])
	return out
}
