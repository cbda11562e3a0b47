package render

import (
	"strings"
	"testing"

	"ccf-policy/core/evidence"
	"ccf-policy/core/mapping"
	"github.com/stretchr/testify/require"
)

func TestNumbered(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"sentences", "Define roles. Review access!  Log it?", "1. Define roles.\n2. Review access!\n3. Log it?"},
		{"renumbers", "1. First step. 2. Second step.\n3) Third", "1. First step.\n2. Second step.\n3. Third"},
		{"markers", "- bullet\n* star\n• dot\n(4) paren\na) letter", "1. bullet\n2. star\n3. dot\n4. paren\n5. letter"},
		{"decimals", "Use TLS 1.2 or later.", "1. Use TLS 1.2 or later."},
		{"blank lines", "one\n\n\ntwo", "1. one\n2. two"},
		{"inline list", "1. Configure MFA 2. Review logs", "1. Configure MFA\n2. Review logs"},
		{"inline list three", "1. Configure MFA 2. Review logs 3) Rotate keys", "1. Configure MFA\n2. Review logs\n3. Rotate keys"},
		{"inline list decimals", "1. Use TLS 1.2 only 2. Disable SSL", "1. Use TLS 1.2 only\n2. Disable SSL"},
		{"prose with number", "Keep backups for version 2. Then test restores.", "1. Keep backups for version 2.\n2. Then test restores."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Numbered(tc.in))
		})
	}
}

func TestControlSection(t *testing.T) {
	out := ControlSection(ControlBlock{
		ID:             "AC-01",
		Name:           "Access Policy",
		Type:           "Preventive",
		Description:    "Costs $5 for ${nothing}.",
		Implementation: "Define roles. Review access.",
		Evidence:       []evidence.Item{{ID: "E-1", Domain: "Access", Title: "User | list"}},
	})
	require.True(t, strings.HasPrefix(out, "### AC-01 - Access Policy\n"))
	require.Contains(t, out, "| Preventive | - |")
	require.Contains(t, out, "Costs $5 for ${nothing}.")
	require.Contains(t, out, "1. Define roles.\n2. Review access.")
	require.Contains(t, out, `| E-1 | Access | User \| list |`)
}

func TestRows(t *testing.T) {
	fwd := ForwardRows([]mapping.ForwardRow{
		{ControlID: "AC-01", FrameworkName: "ISO 27001", Refs: []string{"A.9.1", "A.9.2"}},
		{ControlID: "AC-02", FrameworkName: "SOC 2", Refs: []string{"CC6.1"}},
	})
	require.Equal(t, "| AC-01 | ISO 27001 | A.9.1, A.9.2 |\n| AC-02 | SOC 2 | CC6.1 |", fwd)

	rev := ReverseRows([]mapping.ReverseRow{{FrameworkName: "ISO 27001", Reference: "A.9.1", ControlIDs: []string{"AC-01", "AC-02"}}})
	require.Equal(t, "| ISO 27001 | A.9.1 | AC-01, AC-02 |", rev)

	require.Equal(t, "", EvidenceRows(nil))
	require.Equal(t, "| E-2 | - | - |", EvidenceRows([]evidence.Item{{ID: "E-2"}}))
}
