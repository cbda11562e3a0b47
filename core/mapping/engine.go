// Package mapping selects controls for a policy and builds the forward
// (control to framework) and reverse (framework to control) crosswalks.
package mapping

import (
	"sort"

	"ccf-policy/core/controls"
	"ccf-policy/core/refs"
)

// Source is the read side of the loaded dataset the engine needs.
type Source interface {
	Controls() []controls.Control
	ControlsByPolicyStandard(name string) []controls.Control
	ControlByID(id string) (controls.Control, bool)
	MappingFor(id string) map[string][]string
	FrameworkControls() []controls.Control
}

type Engine struct {
	src Source
}

func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

// ForwardRow is one (control, framework) pair with its references.
type ForwardRow struct {
	ControlID     string   `json:"control_id"`
	Framework     string   `json:"framework"`
	FrameworkName string   `json:"framework_name"`
	Refs          []string `json:"refs"`
}

// ReverseRow is one (framework, reference) pair with the controls citing it.
type ReverseRow struct {
	Framework     string   `json:"framework"`
	FrameworkName string   `json:"framework_name"`
	Reference     string   `json:"reference"`
	ControlIDs    []string `json:"control_ids"`
}

// Refs returns the sorted union of mapping-table and inline references of
// one control for one framework.
func (e *Engine) Refs(c controls.Control, framework string) []string {
	var all []string
	if m := e.src.MappingFor(c.ID); m != nil {
		all = append(all, m[framework]...)
	}
	all = append(all, c.Refs(framework)...)
	return refs.SortedUnique(all)
}

// matches reports whether the control has a non-empty reference for any of
// the frameworks in either source. The OR across both sources lets a control
// qualify through inline refs alone even when the mapping table disagrees.
func (e *Engine) matches(c controls.Control, frameworks []string) bool {
	for _, fw := range frameworks {
		if len(e.Refs(c, fw)) > 0 {
			return true
		}
	}
	return false
}

// SelectControls returns the guidance controls of a policy standard that map
// to at least one of the frameworks, sorted by id.
func (e *Engine) SelectControls(policyStandard string, frameworks []string) []controls.Control {
	frameworks = controls.NormalizeFrameworks(frameworks)
	out := []controls.Control{}
	for _, c := range e.src.ControlsByPolicyStandard(policyStandard) {
		if e.matches(c, frameworks) {
			out = append(out, c)
		}
	}
	controls.SortByID(out)
	return out
}

// SelectControlIDs resolves an explicit control list. Unknown ids are skipped
// and repeats collapsed; the result is sorted by id.
func (e *Engine) SelectControlIDs(ids []string) []controls.Control {
	out := []controls.Control{}
	seen := map[string]struct{}{}
	for _, id := range refs.Unique(ids) {
		c, ok := e.src.ControlByID(id)
		if !ok {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	controls.SortByID(out)
	return out
}

// ForwardTable lists every (control, framework) pair with at least one
// reference, sorted by control id then framework display name.
func (e *Engine) ForwardTable(list []controls.Control, frameworks []string) []ForwardRow {
	frameworks = controls.NormalizeFrameworks(frameworks)
	rows := []ForwardRow{}
	for _, c := range list {
		for _, fw := range frameworks {
			r := e.Refs(c, fw)
			if len(r) == 0 {
				continue
			}
			rows = append(rows, ForwardRow{
				ControlID:     c.ID,
				Framework:     fw,
				FrameworkName: controls.DisplayName(fw),
				Refs:          r,
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ControlID != rows[j].ControlID {
			return rows[i].ControlID < rows[j].ControlID
		}
		if rows[i].FrameworkName != rows[j].FrameworkName {
			return rows[i].FrameworkName < rows[j].FrameworkName
		}
		return rows[i].Framework < rows[j].Framework
	})
	return dedupeForward(rows)
}

// dedupeForward merges rows of a control listed twice in the input.
func dedupeForward(rows []ForwardRow) []ForwardRow {
	out := rows[:0]
	for _, r := range rows {
		if n := len(out); n > 0 && out[n-1].ControlID == r.ControlID && out[n-1].Framework == r.Framework {
			out[n-1].Refs = refs.SortedUnique(append(out[n-1].Refs, r.Refs...))
			continue
		}
		out = append(out, r)
	}
	return out
}

// ReverseTable inverts the forward table: one row per (framework, reference)
// listing the sorted ids of the controls that cite it.
func (e *Engine) ReverseTable(list []controls.Control, frameworks []string) []ReverseRow {
	return Invert(e.ForwardTable(list, frameworks))
}

// Invert groups forward rows by (framework, reference).
func Invert(forward []ForwardRow) []ReverseRow {
	type key struct{ fw, ref string }
	groups := map[key][]string{}
	for _, row := range forward {
		for _, ref := range row.Refs {
			k := key{row.Framework, ref}
			groups[k] = append(groups[k], row.ControlID)
		}
	}
	rows := make([]ReverseRow, 0, len(groups))
	for k, ids := range groups {
		rows = append(rows, ReverseRow{
			Framework:     k.fw,
			FrameworkName: controls.DisplayName(k.fw),
			Reference:     k.ref,
			ControlIDs:    refs.SortedUnique(ids),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].FrameworkName != rows[j].FrameworkName {
			return rows[i].FrameworkName < rows[j].FrameworkName
		}
		if rows[i].Framework != rows[j].Framework {
			return rows[i].Framework < rows[j].Framework
		}
		return rows[i].Reference < rows[j].Reference
	})
	return rows
}
