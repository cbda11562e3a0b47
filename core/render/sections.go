package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SectionKind groups catalogue entries by the shape of their body.
type SectionKind string

const (
	KindMetadata   SectionKind = "metadata"
	KindText       SectionKind = "text"
	KindList       SectionKind = "list"
	KindTable      SectionKind = "table"
	KindControls   SectionKind = "controls"
	KindReferences SectionKind = "framework-reference"
	KindCompliance SectionKind = "compliance-monitoring"
	KindReview     SectionKind = "review-cycle"
)

// SectionSpec selects a catalogue section for composition. Title overrides
// the catalogue title when set.
type SectionSpec struct {
	Type  string `json:"type" yaml:"type"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Section is one catalogue entry.
type Section struct {
	Type        string      `json:"type"`
	Title       string      `json:"title"`
	Kind        SectionKind `json:"kind"`
	Description string      `json:"description"`
	Required    bool        `json:"required,omitempty"`
	Body        string      `json:"body"`
}

type UnknownSectionTypeError struct {
	Type string
}

func (e *UnknownSectionTypeError) Error() string {
	return fmt.Sprintf("unknown section type %q", e.Type)
}

func (e *UnknownSectionTypeError) Code() string { return "render.unknown_section" }

const (
	forwardTableHeader = "| **Control ID** | **Framework** | **Reference** |\n|:----------|:----------|:---------|"
	reverseTableHeader = "| **Framework** | **Reference** | **Controls** |\n|:----------|:----------|:---------|"
)

var metadataFields = []string{"version", "date", "classification", "owner"}

func metadataBody() string {
	title := cases.Title(language.English)
	lines := make([]string, 0, len(metadataFields))
	for _, f := range metadataFields {
		lines = append(lines, fmt.Sprintf("- **%s:** ${%s}", title.String(f), f))
	}
	return strings.Join(lines, "\n")
}

var catalogue = []Section{
	{
		Type: "document_control", Title: "Document Control", Kind: KindMetadata,
		Description: "Track document metadata including version, date, classification, and owner",
		Body:        metadataBody(),
	},
	{
		Type: "executive_summary", Title: "Executive Summary", Kind: KindText,
		Description: "A brief overview of the policy's purpose and key points",
		Body: "This document outlines the comprehensive requirements for ${policy_standard_lower}. " +
			"The policy is designed to ensure consistent and secure practices across the organization.",
	},
	{
		Type: "purpose", Title: "Purpose", Kind: KindText,
		Description: "Define the main objectives and goals of this policy",
		Body: `This policy defines requirements for ${policy_standard_lower} with the following objectives:
1. Establish clear governance and accountability
2. Ensure regulatory compliance
3. Protect organizational assets and data
4. Enable secure business operations`,
	},
	{
		Type: "scope", Title: "Scope", Kind: KindList,
		Description: "Specify who and what this policy applies to",
		Body: `This policy applies to:
- All employees and contractors
- All systems and data
- Third-party service providers
- Business partners with access to systems`,
	},
	{
		Type: "definitions", Title: "Definitions", Kind: KindTable,
		Description: "Define key terms and concepts used in the policy",
		Body: `| **Term** | **Definition** |
|:---------|:--------------|
| Control | A measure designed to provide reasonable assurance regarding the achievement of objectives |
| Policy | A formal statement of rules and requirements that must be met |
| Standard | A mandatory requirement that supports policies |
| Procedure | A documented method to implement policies and standards |`,
	},
	{
		Type: "policy_requirements", Title: "Policy Requirements", Kind: KindControls,
		Description: "Core policy controls and requirements", Required: true,
		Body: "${control_sections}",
	},
	{
		Type: "framework_references", Title: "Framework References", Kind: KindReferences,
		Description: "Map policy controls to compliance frameworks", Required: true,
		Body: forwardTableHeader + "\n${framework_references}",
	},
	{
		Type: "reverse_framework_references", Title: "Reverse Framework References", Kind: KindReferences,
		Description: "List the controls behind each framework reference",
		Body:        reverseTableHeader + "\n${reverse_framework_references}",
	},
	{
		Type: "compliance", Title: "Compliance and Monitoring", Kind: KindCompliance,
		Description: "Define how compliance will be measured and enforced",
		Body: `### Compliance Measurement
- Regular assessments will be conducted to ensure compliance
- Automated monitoring tools will be used where applicable
- Quarterly compliance reports will be generated

### Non-Compliance
Violations of this policy may result in:
1. Disciplinary action
2. Termination of employment
3. Legal action if warranted`,
	},
	{
		Type: "review", Title: "Review and Updates", Kind: KindReview,
		Description: "Specify review cycle and update procedures",
		Body: `- This policy will be reviewed annually
- Next scheduled review: ${next_review_date}
- Updates will be made in response to:
  - Changes in business requirements
  - New security threats
  - Regulatory changes
  - Lessons learned from incidents`,
	},
	{
		Type: "document_history", Title: "Document History", Kind: KindMetadata,
		Description: "Record released versions and their approvals",
		Body: `| **Version** | **Date** | **Changes** | **Approved By** |
|:------------|:---------|:------------|:----------------|
| ${version} | ${current_date} | Initial Release | ${owner} |`,
	},
}

// Sections returns the catalogue in its canonical order.
func Sections() []Section {
	return append([]Section(nil), catalogue...)
}

// LookupSection finds a catalogue entry by type.
func LookupSection(typ string) (Section, bool) {
	for _, s := range catalogue {
		if s.Type == typ {
			return s, true
		}
	}
	return Section{}, false
}

// SectionByTitle maps a rendered level-2 title back to a catalogue entry.
func SectionByTitle(title string) (Section, bool) {
	for _, s := range catalogue {
		if strings.EqualFold(s.Title, strings.TrimSpace(title)) {
			return s, true
		}
	}
	return Section{}, false
}

// Compose builds template content: the document title followed by one
// level-2 section per spec, in order.
func Compose(specs []SectionSpec) (string, error) {
	var b strings.Builder
	b.WriteString("# ${policy_standard}\n")
	for _, spec := range specs {
		sec, ok := LookupSection(strings.TrimSpace(spec.Type))
		if !ok {
			return "", &UnknownSectionTypeError{Type: spec.Type}
		}
		title := sec.Title
		if t := strings.Join(strings.Fields(spec.Title), " "); t != "" {
			title = Escape(t)
		}
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", title, sec.Body)
	}
	return b.String(), nil
}

// SectionBody is a level-2 section of a document with its text.
type SectionBody struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ExtractSections returns the level-2 headers of a document in order.
func ExtractSections(text string) []string {
	bodies := ExtractSectionBodies(text)
	out := make([]string, 0, len(bodies))
	for _, s := range bodies {
		out = append(out, s.Title)
	}
	return out
}

// ExtractSectionBodies splits a document on level-2 headers. Text before the
// first header is dropped; fenced code blocks are never split.
func ExtractSectionBodies(text string) []SectionBody {
	var out []SectionBody
	var body []string
	inFence := false
	flush := func() {
		if len(out) > 0 {
			out[len(out)-1].Body = strings.TrimSpace(strings.Join(body, "\n"))
		}
		body = body[:0]
	}
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}
		if !inFence && strings.HasPrefix(line, "## ") {
			flush()
			out = append(out, SectionBody{Title: strings.TrimSpace(line[3:])})
			continue
		}
		body = append(body, line)
	}
	flush()
	return out
}
