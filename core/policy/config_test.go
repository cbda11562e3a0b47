package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseConfigJSON(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{
		"policy_standard": " Access Control ",
		"selected_frameworks": ["iso_27001", "soc_2", "iso_27001"],
		"template_id": "detailed",
		"control_ids": ["AC-01"]
	}`), "")
	require.NoError(t, err)
	require.Equal(t, "Access Control", cfg.PolicyStandard)
	require.Equal(t, []string{"iso_27001", "soc_2"}, cfg.SelectedFrameworks)
	require.Equal(t, "detailed", cfg.TemplateID)
	require.Equal(t, []string{"AC-01"}, cfg.ControlIDs)
}

func TestParseConfigYAML(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
policy_standard: Access Control
selected_frameworks:
  - nist_cybersecurity
version: "2.1"
owner: Security Office
`), "yaml")
	require.NoError(t, err)
	require.Equal(t, "Access Control", cfg.PolicyStandard)
	require.Equal(t, []string{"nist_cybersecurity"}, cfg.SelectedFrameworks)
	require.Equal(t, "2.1", cfg.Version)
	require.Equal(t, "Security Office", cfg.Owner)
}

func TestParseConfigMissingFields(t *testing.T) {
	_, err := ParseConfig([]byte(`{}`), "json")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{"policy_standard", "selected_frameworks"}, verr.Fields)
	require.Equal(t, "policy.validation", verr.Code())

	_, err = ParseConfig([]byte(`{"policy_standard": "X", "selected_frameworks": []}`), "json")
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{"selected_frameworks"}, verr.Fields)
}

func TestParseConfigWrongTypes(t *testing.T) {
	_, err := ParseConfig([]byte(`{"policy_standard": 4, "selected_frameworks": "iso_27001"}`), "json")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{"policy_standard", "selected_frameworks"}, verr.Fields)
}

func TestParseConfigMalformed(t *testing.T) {
	_, err := ParseConfig([]byte(`{"policy_standard": `), "json")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = ParseConfig([]byte(`a: b`), "toml")
	require.Error(t, err)
}

func TestReviewCycle(t *testing.T) {
	from := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	yearly, err := NewReviewCycle("")
	require.NoError(t, err)
	require.Equal(t, DefaultReviewSchedule, yearly.Spec())
	require.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), yearly.Next(from))

	half, err := NewReviewCycle("0 0 1 */6 *")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), half.Next(from))

	_, err = NewReviewCycle("sometimes")
	require.Error(t, err)

	require.Equal(t, from.AddDate(1, 0, 0), ReviewCycle{}.Next(from))
}
