package render

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"ccf-policy/core/evidence"
	"ccf-policy/core/mapping"
)

const controlSectionTemplate = `### ${control_id} - ${control_name}

#### Control Information
| **Type** | **Theme** |
|:-----|:------|
| ${control_type} | ${control_theme} |

#### Policy Description
${policy_description}

#### Implementation Requirements
${formatted_implementation}

#### Testing Procedures
${formatted_testing}

#### Audit Requirements
Evidence Required:

| **ID** | **Domain** | **Title** |
|:---|:-------|:------|
${evidence_table}
`

// ControlBlock carries the values of one rendered control section.
type ControlBlock struct {
	ID             string
	Name           string
	Type           string
	Theme          string
	Description    string
	Implementation string
	Testing        string
	Evidence       []evidence.Item
}

// ControlSection renders one control as a level-3 Markdown section.
func ControlSection(b ControlBlock) string {
	out, err := Render(controlSectionTemplate, Bundle{
		"control_id":               b.ID,
		"control_name":             orDash(b.Name),
		"control_type":             cell(orDash(b.Type)),
		"control_theme":            cell(orDash(b.Theme)),
		"policy_description":       b.Description,
		"formatted_implementation": Numbered(b.Implementation),
		"formatted_testing":        Numbered(b.Testing),
		"evidence_table":           EvidenceRows(b.Evidence),
	})
	if err != nil {
		// the bundle above binds every name of the fixed template
		panic(err)
	}
	return out
}

// ControlSections joins several control sections with a blank line.
func ControlSections(blocks []ControlBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, ControlSection(b))
	}
	return strings.Join(parts, "\n")
}

var enumMarker = regexp.MustCompile(`^(?:\(\d+\)|\d+[.)]|[a-z]\)|[-*•])\s+`)

// Numbered reflows free text into a 1..N list. Items are split on newlines
// and after sentence terminators followed by whitespace; leading enumeration
// markers are dropped before renumbering.
func Numbered(text string) string {
	var items []string
	for _, line := range strings.Split(splitInlineMarkers(strings.ReplaceAll(text, "\r\n", "\n")), "\n") {
		for _, sentence := range splitSentences(line) {
			item := strings.TrimSpace(enumMarker.ReplaceAllString(strings.TrimSpace(sentence)+" ", ""))
			if item != "" {
				items = append(items, item)
			}
		}
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, item)
	}
	return b.String()
}

var (
	leadingNumber = regexp.MustCompile(`^\s*(?:\(\d+\)|\d+[.)])\s+`)
	inlineNumber  = regexp.MustCompile(`\s+(\(\d+\)|\d+[.)])\s+`)
)

// splitInlineMarkers breaks "1. A 2. B" onto separate lines. Only lines that
// open with a numeric marker are split, and a marker must be followed by
// whitespace, so "TLS 1.2" stays intact.
func splitInlineMarkers(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if leadingNumber.MatchString(line) {
			lines[i] = inlineNumber.ReplaceAllString(line, "\n$1 ")
		}
	}
	return strings.Join(lines, "\n")
}

var bareMarker = regexp.MustCompile(`^(?:\(\d+\)|\d+[.)]|[a-z]\))$`)

func splitSentences(line string) []string {
	var out []string
	runes := []rune(line)
	start := 0
	for i := 0; i < len(runes)-1; i++ {
		switch runes[i] {
		case '.', '!', '?':
		default:
			continue
		}
		if !unicode.IsSpace(runes[i+1]) {
			continue
		}
		seg := strings.TrimSpace(string(runes[start : i+1]))
		if bareMarker.MatchString(seg) {
			continue
		}
		out = append(out, seg)
		start = i + 1
	}
	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		out = append(out, rest)
	}
	return out
}

// ForwardRows renders "| control | framework | refs |" lines.
func ForwardRows(rows []mapping.ForwardRow) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, row(r.ControlID, r.FrameworkName, strings.Join(r.Refs, ", ")))
	}
	return strings.Join(lines, "\n")
}

// ReverseRows renders "| framework | reference | controls |" lines.
func ReverseRows(rows []mapping.ReverseRow) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, row(r.FrameworkName, r.Reference, strings.Join(r.ControlIDs, ", ")))
	}
	return strings.Join(lines, "\n")
}

// EvidenceRows renders "| id | domain | title |" lines.
func EvidenceRows(items []evidence.Item) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, row(it.ID, orDash(it.Domain), orDash(it.Title)))
	}
	return strings.Join(lines, "\n")
}

func row(cells ...string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = cell(c)
	}
	return "| " + strings.Join(escaped, " | ") + " |"
}

func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
