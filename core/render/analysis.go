package render

import (
	"fmt"
	"strings"
	"time"

	"ccf-policy/core/mapping"
)

// AnalysisMarkdown renders a framework mapping analysis: title, coverage
// summary and the control by framework matrix.
func AnalysisMarkdown(a mapping.Analysis, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Framework Mapping Analysis (%s)\n\n", now.Format("2006-01-02"))
	b.WriteString("### Summary\n")
	fmt.Fprintf(&b, "Total Controls Mapped: %d\n\n", a.Total())
	for _, c := range a.Coverage {
		fmt.Fprintf(&b, "- %s: %d controls (%.1f%%)\n", c.DisplayName, c.Controls, c.Percent)
	}
	b.WriteString("\n### Mapping Table\n")

	header := []string{"Control ID", "Control Name", "Document Name"}
	for _, fw := range a.Frameworks {
		header = append(header, fw.DisplayName)
	}
	b.WriteString(row(header...) + "\n")
	b.WriteString("|" + strings.Repeat("---|", len(header)) + "\n")
	for _, r := range a.Rows {
		cells := []string{r.ControlID, r.ControlName, r.PolicyStandard}
		for _, fw := range a.Frameworks {
			if refs := r.Refs[fw.Key]; len(refs) > 0 {
				cells = append(cells, strings.Join(refs, ", "))
			} else {
				cells = append(cells, "-")
			}
		}
		b.WriteString(row(cells...) + "\n")
	}
	return b.String()
}
