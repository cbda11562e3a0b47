package mapping

import (
	"sort"
	"strings"

	"ccf-policy/core/controls"
)

const noStandard = "N/A"

// AnalysisRow is one mapped control of the framework applicability table.
type AnalysisRow struct {
	ControlID      string              `json:"control_id"`
	ControlName    string              `json:"control_name"`
	PolicyStandard string              `json:"policy_standard"`
	Refs           map[string][]string `json:"refs"`
}

type Coverage struct {
	Framework   string  `json:"framework"`
	DisplayName string  `json:"display_name"`
	Controls    int     `json:"controls"`
	Percent     float64 `json:"percent"`
}

// Analysis is the framework mapping report over the applicability table.
type Analysis struct {
	Frameworks []controls.Framework `json:"frameworks"`
	Rows       []AnalysisRow        `json:"rows"`
	Coverage   []Coverage           `json:"coverage"`
}

func (a Analysis) Total() int { return len(a.Rows) }

// Analyze matches the framework applicability records against the selected
// frameworks and computes per-framework coverage of the mapped set. A row's
// refs are the same union Refs gives the policy tables. Names loaded from
// processed JSON are already single-line; firstLine only trims datasets built
// in memory.
func (e *Engine) Analyze(frameworks []string) Analysis {
	frameworks = controls.NormalizeFrameworks(frameworks)
	a := Analysis{Rows: []AnalysisRow{}, Coverage: make([]Coverage, 0, len(frameworks))}
	for _, fw := range frameworks {
		a.Frameworks = append(a.Frameworks, controls.Framework{Key: fw, DisplayName: controls.DisplayName(fw)})
	}

	for _, c := range e.src.FrameworkControls() {
		row := AnalysisRow{ControlID: c.ID, ControlName: firstLine(c.Name), PolicyStandard: noStandard, Refs: map[string][]string{}}
		for _, fw := range frameworks {
			if r := e.Refs(c, fw); len(r) > 0 {
				row.Refs[fw] = r
			}
		}
		if len(row.Refs) == 0 {
			continue
		}
		if g, ok := e.src.ControlByID(c.ID); ok && g.PolicyStandard != "" {
			row.PolicyStandard = g.PolicyStandard
		}
		a.Rows = append(a.Rows, row)
	}
	sort.SliceStable(a.Rows, func(i, j int) bool { return a.Rows[i].ControlID < a.Rows[j].ControlID })

	for _, fw := range a.Frameworks {
		cov := Coverage{Framework: fw.Key, DisplayName: fw.DisplayName}
		for _, row := range a.Rows {
			if len(row.Refs[fw.Key]) > 0 {
				cov.Controls++
			}
		}
		if len(a.Rows) > 0 {
			cov.Percent = float64(cov.Controls) / float64(len(a.Rows)) * 100
		}
		a.Coverage = append(a.Coverage, cov)
	}
	return a
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}

// StandardSummary describes one policy standard of the guidance table.
type StandardSummary struct {
	Name     string   `json:"name"`
	Controls int      `json:"controls"`
	Domains  []string `json:"domains"`
}

// Standards summarizes the guidance controls per policy standard, sorted by
// name.
func (e *Engine) Standards() []StandardSummary {
	byName := map[string]*StandardSummary{}
	domains := map[string]map[string]struct{}{}
	for _, c := range e.src.Controls() {
		if c.PolicyStandard == "" {
			continue
		}
		s, ok := byName[c.PolicyStandard]
		if !ok {
			s = &StandardSummary{Name: c.PolicyStandard}
			byName[c.PolicyStandard] = s
			domains[c.PolicyStandard] = map[string]struct{}{}
		}
		s.Controls++
		if c.Domain != "" {
			domains[c.PolicyStandard][c.Domain] = struct{}{}
		}
	}
	out := make([]StandardSummary, 0, len(byName))
	for name, s := range byName {
		for d := range domains[name] {
			s.Domains = append(s.Domains, d)
		}
		sort.Strings(s.Domains)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
