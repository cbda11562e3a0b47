package mapping

import (
	"testing"

	"ccf-policy/core/controls"
	"ccf-policy/core/dataset"
	"github.com/stretchr/testify/require"
)

func analysisDataset() *dataset.DataSet {
	guidance := []controls.Control{
		{ID: "AC-01", Domain: "Access", PolicyStandard: "Access Standard"},
		{ID: "AC-02", Domain: "Identity", PolicyStandard: "Access Standard"},
		{ID: "BC-01", Domain: "Continuity", PolicyStandard: "Continuity Standard"},
	}
	framework := []controls.Control{
		{ID: "AC-02", Name: "Accounts\nsecond line", References: map[string][]string{"soc_2": {"CC6.2"}}},
		{ID: "AC-01", Name: "Access", References: map[string][]string{"iso_27001": {"A.9.1"}, "soc_2": {"CC6.1"}}},
		{ID: "ZZ-99", Name: "Orphan", References: map[string][]string{"iso_27001": {"A.1"}}},
		{ID: "NO-00", Name: "Unmapped"},
	}
	return dataset.New(guidance, framework, nil, nil)
}

func TestAnalyzeCoverage(t *testing.T) {
	a := NewEngine(analysisDataset()).Analyze([]string{"iso_27001", "soc_2"})
	require.Equal(t, 3, a.Total())
	require.Equal(t, []string{"AC-01", "AC-02", "ZZ-99"}, []string{a.Rows[0].ControlID, a.Rows[1].ControlID, a.Rows[2].ControlID})
	require.Equal(t, "Accounts", a.Rows[1].ControlName)
	require.Equal(t, "Access Standard", a.Rows[0].PolicyStandard)
	require.Equal(t, "N/A", a.Rows[2].PolicyStandard)

	require.Len(t, a.Coverage, 2)
	require.Equal(t, "ISO 27001", a.Coverage[0].DisplayName)
	require.Equal(t, 2, a.Coverage[0].Controls)
	require.InDelta(t, 66.7, a.Coverage[0].Percent, 0.1)
	require.Equal(t, 2, a.Coverage[1].Controls)
}

func TestAnalyzeNothingMapped(t *testing.T) {
	a := NewEngine(analysisDataset()).Analyze([]string{"pci_dss_v4"})
	require.Zero(t, a.Total())
	require.Equal(t, 0.0, a.Coverage[0].Percent)
}

func TestStandards(t *testing.T) {
	got := NewEngine(analysisDataset()).Standards()
	require.Equal(t, []StandardSummary{
		{Name: "Access Standard", Controls: 2, Domains: []string{"Access", "Identity"}},
		{Name: "Continuity Standard", Controls: 1, Domains: []string{"Continuity"}},
	}, got)
}

func TestAnalyzeMergesMappingTableRefs(t *testing.T) {
	ds := dataset.New(
		[]controls.Control{{ID: "AC-01", PolicyStandard: "Access Standard"}},
		[]controls.Control{{ID: "AC-01", Name: "Access", References: map[string][]string{"iso_27001": {"A.9.2"}}}},
		dataset.Mapping{"AC-01": {"iso_27001": {"A.9.1"}, "soc_2": {"CC6.1"}}},
		nil,
	)
	a := NewEngine(ds).Analyze([]string{"iso_27001", "soc_2"})
	require.Equal(t, 1, a.Total())
	require.Equal(t, []string{"A.9.1", "A.9.2"}, a.Rows[0].Refs["iso_27001"])
	require.Equal(t, []string{"CC6.1"}, a.Rows[0].Refs["soc_2"])
	require.Equal(t, 100.0, a.Coverage[1].Percent)
}
