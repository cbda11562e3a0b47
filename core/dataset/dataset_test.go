package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ccf-policy/core/controls"
	"ccf-policy/core/utils"
	"github.com/stretchr/testify/require"
)

const (
	fixtureControls = `{"controls": [
  {"ccf_id": "AC-01", "control_name": "Access Policy", "iso_27001": "x", "soc_2": null, "iso_27001_ref": "A.9.1\nA.9.2, A.9.1"}
]}`
	fixtureGuidance = `{"controls": [
  {"ccf_id": "AC-01", "control_domain": "Access Control", "control_name": "Access  Policy",
   "control_description": "Define “access” rules.", "policy_standard": "Access Control Standard",
   "audit_artifacts": "E-1\nE-2\nE-1", "iso_27001_ref": ["A.9.1", " "], "control_type": "Preventive"},
  {"ccf_id": "BC-01", "control_domain": "Continuity", "control_name": "Backups",
   "control_description": "Back up data.", "policy_standard": "Continuity Standard", "audit_artifacts": null},
  {"ccf_id": "AC-01", "control_domain": "Dup", "control_name": "Dup",
   "control_description": "Dup.", "policy_standard": "Access Control Standard"}
]}`
	fixtureMapping = `{
  "AC-01": {"iso_27001_ref": " A.9.1 , ,A.9.1", "soc_2_ref": []},
  "BC-01": {"iso_22301_ref": ["8.3"]}
}`
	fixtureEvidence = `{
  "E-1": {"evidence_domain": "Access", "evidence_title": "Access list"},
  "E-2": {"evidence_domain": "Access", "evidence_title": null}
}`
)

func writeFixture(t *testing.T, dir string, files map[string]string) Sources {
	t.Helper()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return SourcesFromDir(dir)
}

func fixtureFiles() map[string]string {
	return map[string]string{
		ControlsFile: fixtureControls,
		GuidanceFile: fixtureGuidance,
		MappingFile:  fixtureMapping,
		EvidenceFile: fixtureEvidence,
	}
}

func TestLoadJoinsAndNormalizes(t *testing.T) {
	ds, err := Load(writeFixture(t, t.TempDir(), fixtureFiles()))
	require.NoError(t, err)

	c, ok := ds.ControlByID("AC-01")
	require.True(t, ok)
	require.Equal(t, "Access Policy", c.Name)
	require.Equal(t, `Define "access" rules.`, c.Description)
	require.Equal(t, []string{"E-1", "E-2"}, c.AuditArtifacts)
	require.Equal(t, []string{"A.9.1"}, c.Refs("iso_27001"))
	require.Equal(t, "Preventive", c.Type)

	require.Equal(t, []string{"A.9.1"}, ds.MappingFor("AC-01")["iso_27001"])
	require.Empty(t, ds.MappingFor("AC-01")["soc_2"])
	require.Equal(t, []string{"8.3"}, ds.Mapping().Refs("BC-01", "iso_22301"))

	fw := ds.FrameworkControls()
	require.Len(t, fw, 1)
	require.Equal(t, controls.IndicatorPresent, fw[0].Indicators["iso_27001"])
	require.Equal(t, controls.IndicatorAbsent, fw[0].Indicators["soc_2"])
	_, known := fw[0].Indicators["pci_dss_v4"]
	require.False(t, known)
	require.Equal(t, []string{"A.9.1", "A.9.2"}, fw[0].Refs("iso_27001"))
}

func TestLoadKeepsFirstDuplicateID(t *testing.T) {
	ds, err := Load(writeFixture(t, t.TempDir(), fixtureFiles()))
	require.NoError(t, err)
	require.Len(t, ds.Controls(), 2)
	c, _ := ds.ControlByID("AC-01")
	require.Equal(t, "Access Control", c.Domain)
}

func TestQueries(t *testing.T) {
	ds, err := Load(writeFixture(t, t.TempDir(), fixtureFiles()))
	require.NoError(t, err)

	got := ds.ControlsByPolicyStandard("Access Control Standard")
	require.Len(t, got, 1)
	require.Equal(t, "AC-01", got[0].ID)
	require.Empty(t, ds.ControlsByPolicyStandard("Nope"))

	require.Equal(t, []string{"Access Control Standard", "Continuity Standard"}, ds.PolicyStandards())
	require.Equal(t, []string{"Access Control", "Continuity"}, ds.Domains())

	ev := ds.Evidence([]string{"E-2", "missing", "E-1"})
	require.Len(t, ev, 2)
	require.Equal(t, "E-2", ev[0].ID)
	require.Equal(t, "", ev[0].Title)
	require.Equal(t, "Access list", ev[1].Title)

	require.Equal(t, Counts{Guidance: 2, Framework: 1, Mapped: 2, Evidence: 2}, ds.Counts())
}

func TestLoadMissingFile(t *testing.T) {
	files := fixtureFiles()
	delete(files, EvidenceFile)
	_, err := Load(writeFixture(t, t.TempDir(), files))
	var fm *FileMissingError
	require.True(t, errors.As(err, &fm))
	require.Equal(t, EvidenceFile, filepath.Base(fm.Path))
	require.True(t, IsFileMissing(err))
}

func TestLoadFormatErrors(t *testing.T) {
	cases := map[string]string{
		"not json":     `{"controls": [`,
		"wrong shape":  `{"controls": 5}`,
		"missing root": `{"rows": []}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			files := fixtureFiles()
			files[GuidanceFile] = body
			_, err := Load(writeFixture(t, t.TempDir(), files))
			var fe *FormatError
			require.True(t, errors.As(err, &fe), "got %v", err)
		})
	}

	files := fixtureFiles()
	files[MappingFile] = `{"AC-01": "A.9.1"}`
	_, err := Load(writeFixture(t, t.TempDir(), files))
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
}

func TestLoadSchemaError(t *testing.T) {
	files := fixtureFiles()
	files[GuidanceFile] = `{"controls": [{"ccf_id": "AC-09", "control_domain": "X", "control_name": "Y", "policy_standard": "Z", "control_description": "  "}]}`
	_, err := Load(writeFixture(t, t.TempDir(), files))
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "AC-09", se.Record)
	require.Equal(t, []string{controls.FieldDescription}, se.Missing)
	require.Contains(t, se.Error(), "control_description")
}

func TestNormalizeRecordIdempotent(t *testing.T) {
	raw := map[string]any{
		"ccf_id":              " AC-01 ",
		"control_description": "  “Quoted”   text ",
		"iso_27001_ref":       "A.1, A.2\nA.1",
		"iso_27001":           "X",
		"audit_artifacts":     "E-1\n\nE-1",
		"notes":               "N/A",
	}
	once := NormalizeRecord(raw)
	twice := NormalizeRecord(once)
	require.Equal(t, once, twice)
	require.Equal(t, `"Quoted" text`, once["control_description"])
	require.Equal(t, []string{"A.1", "A.2"}, once["iso_27001_ref"])
	require.Equal(t, []string{"E-1"}, once["audit_artifacts"])
	require.Nil(t, once["notes"])
	require.Equal(t, "AC-01", once["ccf_id"])
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "", CleanText(nil))
	require.Equal(t, "", CleanText("N/A"))
	require.Equal(t, "it's done", CleanText("it’s\n  done"))
	require.Equal(t, "é", CleanText("é"))
}

func TestProcessWritesSidecars(t *testing.T) {
	raw := t.TempDir()
	out := filepath.Join(t.TempDir(), "processed")
	csvs := map[string]string{
		ControlsCSV: "\ufeffccf_id,control_name,iso_27001,iso_27001_ref,soc_2,soc_2_ref\n" +
			"AC-01,Access,X,\"A.9.1\nA.9.2\",,N/A\n",
		GuidanceCSV: "ccf_id,control_domain,control_name,control_description,policy_standard,audit_artifacts\n" +
			"AC-01,Access Control,Access,Define <rules> & roles.,Access Control Standard,\"E-1\nE-1\"\n",
		EvidenceCSV: "reference_id,evidence_domain,evidence_title\nE-1,Access,Access list\n",
	}
	for name, body := range csvs {
		require.NoError(t, os.WriteFile(filepath.Join(raw, name), []byte(body), 0o644))
	}

	report, err := Process(context.Background(), raw, out, utils.NopLogger())
	require.NoError(t, err)
	require.Equal(t, 1, report.Controls)
	require.Len(t, report.Files, 4)

	body, err := os.ReadFile(filepath.Join(out, GuidanceFile))
	require.NoError(t, err)
	require.Contains(t, string(body), "Define <rules> & roles.")

	ds, err := Load(SourcesFromDir(out))
	require.NoError(t, err)
	require.Equal(t, []string{"A.9.1", "A.9.2"}, ds.MappingFor("AC-01")["iso_27001"])
	require.Empty(t, ds.MappingFor("AC-01")["soc_2"])
	require.Contains(t, ds.MappingFor("AC-01"), "pci_dss_v4")
	c, ok := ds.ControlByID("AC-01")
	require.True(t, ok)
	require.Equal(t, []string{"E-1"}, c.AuditArtifacts)
	require.Len(t, ds.Evidence(c.AuditArtifacts), 1)
}

func TestProcessErrors(t *testing.T) {
	raw := t.TempDir()
	_, err := Process(context.Background(), raw, t.TempDir(), utils.NopLogger())
	require.True(t, IsFileMissing(err))

	require.NoError(t, os.WriteFile(filepath.Join(raw, ControlsCSV), []byte("ccf_id\nAC-01\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(raw, GuidanceCSV), []byte("ccf_id,control_name\nAC-01,x\n"), 0o644))
	_, err = Process(context.Background(), raw, t.TempDir(), utils.NopLogger())
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	require.ElementsMatch(t, []string{"control_domain", "control_description", "policy_standard"}, se.Missing)

	require.NoError(t, os.WriteFile(filepath.Join(raw, GuidanceCSV), []byte("ccf_id,control_domain\nAC-01,x,extra\n"), 0o644))
	_, err = Process(context.Background(), raw, t.TempDir(), utils.NopLogger())
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
}

func TestProcessRejectsRowsLoadWouldReject(t *testing.T) {
	raw := t.TempDir()
	out := filepath.Join(t.TempDir(), "processed")
	csvs := map[string]string{
		ControlsCSV: "ccf_id,control_name\nAC-01,Access\nAC-02,Reviews\n",
		GuidanceCSV: "ccf_id,control_domain,control_name,control_description,policy_standard\n" +
			"AC-01,Access Control,Access,Define roles.,Access Control Standard\n" +
			"AC-02,Access Control,Reviews,,Access Control Standard\n",
		EvidenceCSV: "reference_id,evidence_domain,evidence_title\n",
	}
	for name, body := range csvs {
		require.NoError(t, os.WriteFile(filepath.Join(raw, name), []byte(body), 0o644))
	}

	_, err := Process(context.Background(), raw, out, utils.NopLogger())
	var se *SchemaError
	require.True(t, errors.As(err, &se), "got %v", err)
	require.Equal(t, "AC-02", se.Record)
	require.Equal(t, []string{controls.FieldDescription}, se.Missing)
	require.NoFileExists(t, filepath.Join(out, GuidanceFile))

	csvs[GuidanceCSV] = "ccf_id,control_domain,control_name,control_description,policy_standard\n" +
		"AC-01,Access Control,Access,Define roles.,Access Control Standard\n" +
		"AC-02,Access Control,Reviews,Review access.,Access Control Standard\n"
	require.NoError(t, os.WriteFile(filepath.Join(raw, GuidanceCSV), []byte(csvs[GuidanceCSV]), 0o644))
	_, err = Process(context.Background(), raw, out, utils.NopLogger())
	require.NoError(t, err)
	ds, err := Load(SourcesFromDir(out))
	require.NoError(t, err)
	require.Equal(t, 2, ds.Counts().Guidance)
}
