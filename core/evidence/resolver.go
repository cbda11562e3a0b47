// Package evidence resolves audit artifact ids against the evidence library.
package evidence

import (
	"strings"

	"ccf-policy/core/dataset"
)

// Library looks up one evidence record by id.
type Library interface {
	EvidenceByID(id string) (dataset.EvidenceRecord, bool)
}

type Item struct {
	ID     string `json:"id"`
	Domain string `json:"domain"`
	Title  string `json:"title"`
}

type Resolver struct {
	lib Library
}

func NewResolver(lib Library) *Resolver {
	return &Resolver{lib: lib}
}

// Resolve keeps the caller's order, drops unknown ids and repeats.
func (r *Resolver) Resolve(ids []string) []Item {
	out := make([]Item, 0, len(ids))
	if r == nil || r.lib == nil {
		return out
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rec, ok := r.lib.EvidenceByID(id)
		if !ok {
			continue
		}
		out = append(out, Item{ID: id, Domain: rec.Domain, Title: rec.Title})
	}
	return out
}
