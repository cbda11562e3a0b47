package controls

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisplayNameKnownAndFallback(t *testing.T) {
	require.Equal(t, "ISO 27001", DisplayName("iso_27001"))
	require.Equal(t, "TX-RAMP Level 1", DisplayName("tx_ramp_L1"))
	require.Equal(t, "GDPR_V3", DisplayName("gdpr_v3"))
}

func TestFrameworksSortedByDisplayName(t *testing.T) {
	list := Frameworks()
	require.Len(t, list, len(FrameworkKeys))
	for i := 1; i < len(list); i++ {
		require.LessOrEqual(t, list[i-1].DisplayName, list[i].DisplayName)
	}
}

func TestNormalizeFrameworks(t *testing.T) {
	got := NormalizeFrameworks([]string{" iso_27001", "", "soc_2", "iso_27001"})
	require.Equal(t, []string{"iso_27001", "soc_2"}, got)
}

func TestRefFieldHelpers(t *testing.T) {
	require.True(t, IsRefField("iso_27001_ref"))
	require.False(t, IsRefField("_ref"))
	require.False(t, IsRefField("control_name"))
	require.Equal(t, "soc_2", FrameworkFromRefField(RefField("soc_2")))
}

func TestParseIndicator(t *testing.T) {
	require.Equal(t, IndicatorPresent, ParseIndicator(" x "))
	require.Equal(t, IndicatorAbsent, ParseIndicator("yes"))
	require.Equal(t, IndicatorAbsent, ParseIndicator(""))
}

func TestControlRefs(t *testing.T) {
	c := Control{ID: "AC-01", References: map[string][]string{"iso_27001": {"A.9.1"}, "soc_2": {}}}
	require.True(t, c.HasRefs("iso_27001"))
	require.False(t, c.HasRefs("soc_2"))
	require.False(t, c.HasRefs("pci_dss_v4"))
	require.Equal(t, []string{"iso_27001"}, c.ReferencedFrameworks())
}
