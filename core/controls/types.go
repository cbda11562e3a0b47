// Package controls holds the typed control record shared by the loader, the
// mapping engine and the renderer, together with the framework catalogue.
package controls

import "sort"

// Control is one common control as loaded from the guidance (or framework)
// records. It is built once at the load boundary and never mutated after.
type Control struct {
	ID                     string               `json:"ccf_id"`
	Domain                 string               `json:"control_domain"`
	Name                   string               `json:"control_name"`
	Description            string               `json:"control_description"`
	ImplementationGuidance string               `json:"implementation_guidance,omitempty"`
	TestingProcedure       string               `json:"testing_procedure,omitempty"`
	Theme                  string               `json:"control_theme,omitempty"`
	Type                   string               `json:"control_type,omitempty"`
	PolicyStandard         string               `json:"policy_standard"`
	AuditArtifacts         []string             `json:"audit_artifacts"`
	References             map[string][]string  `json:"references,omitempty"`
	Indicators             map[string]Indicator `json:"indicators,omitempty"`
}

// Refs returns the inline references for a framework key.
func (c Control) Refs(framework string) []string {
	if c.References == nil {
		return nil
	}
	return c.References[framework]
}

// HasRefs reports whether the control carries at least one inline reference
// for the framework.
func (c Control) HasRefs(framework string) bool {
	return len(c.Refs(framework)) > 0
}

// ReferencedFrameworks lists framework keys with inline references, sorted.
func (c Control) ReferencedFrameworks() []string {
	out := make([]string, 0, len(c.References))
	for k, v := range c.References {
		if len(v) > 0 {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// SortByID orders controls by identifier in place.
func SortByID(list []Control) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}
