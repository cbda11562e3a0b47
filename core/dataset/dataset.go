// Package dataset loads the processed control sidecars into an in-memory,
// read-only join of guidance, framework mapping and evidence records.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"ccf-policy/core/controls"
	"ccf-policy/core/refs"
)

const (
	ControlsFile = "controls.json"
	GuidanceFile = "control_guidance.json"
	MappingFile  = "controls_mapping.json"
	EvidenceFile = "evidence.json"
)

// Sources names the four processed sidecar files.
type Sources struct {
	Controls string
	Guidance string
	Mapping  string
	Evidence string
}

func SourcesFromDir(dir string) Sources {
	return Sources{
		Controls: filepath.Join(dir, ControlsFile),
		Guidance: filepath.Join(dir, GuidanceFile),
		Mapping:  filepath.Join(dir, MappingFile),
		Evidence: filepath.Join(dir, EvidenceFile),
	}
}

// Mapping is control id -> framework key -> references.
type Mapping map[string]map[string][]string

// Refs returns the mapped references of one control for one framework.
func (m Mapping) Refs(controlID, framework string) []string {
	if m == nil {
		return nil
	}
	return m[controlID][framework]
}

type EvidenceRecord struct {
	ID     string `json:"id"`
	Domain string `json:"evidence_domain"`
	Title  string `json:"evidence_title"`
}

// DataSet is the loaded join. It is safe for concurrent readers.
type DataSet struct {
	guidance     []controls.Control
	guidanceByID map[string]int
	framework    []controls.Control
	mapping      Mapping
	evidence     map[string]EvidenceRecord
}

// New assembles a DataSet from already typed parts. Guidance controls with a
// repeated id keep their first occurrence.
func New(guidance, framework []controls.Control, mapping Mapping, evidence []EvidenceRecord) *DataSet {
	ds := &DataSet{
		guidanceByID: make(map[string]int, len(guidance)),
		framework:    append([]controls.Control(nil), framework...),
		mapping:      Mapping{},
		evidence:     make(map[string]EvidenceRecord, len(evidence)),
	}
	for _, c := range guidance {
		if _, dup := ds.guidanceByID[c.ID]; dup {
			continue
		}
		ds.guidanceByID[c.ID] = len(ds.guidance)
		ds.guidance = append(ds.guidance, c)
	}
	for id, byFw := range mapping {
		clean := make(map[string][]string, len(byFw))
		for fw, list := range byFw {
			clean[fw] = refs.Unique(list)
		}
		ds.mapping[id] = clean
	}
	for _, e := range evidence {
		ds.evidence[e.ID] = e
	}
	return ds
}

// Load reads and validates all four sidecars.
func Load(src Sources) (*DataSet, error) {
	frameworkRecs, err := loadRecords(src.Controls, nil)
	if err != nil {
		return nil, err
	}
	guidanceRecs, err := loadRecords(src.Guidance, controls.RequiredGuidanceFields)
	if err != nil {
		return nil, err
	}
	mapping, err := loadMapping(src.Mapping)
	if err != nil {
		return nil, err
	}
	evidence, err := loadEvidence(src.Evidence)
	if err != nil {
		return nil, err
	}
	return New(guidanceRecs, frameworkRecs, mapping, evidence), nil
}

func readJSON(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FileMissingError{Path: path}
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &FormatError{Path: path, Reason: "not valid JSON", Err: err}
	}
	return doc, nil
}

func loadRecords(path string, required []string) ([]controls.Control, error) {
	doc, err := readJSON(path)
	if err != nil {
		return nil, err
	}
	if err := checkShape(path, recordsShape, doc); err != nil {
		return nil, err
	}
	items := doc.(map[string]any)["controls"].([]any)
	out := make([]controls.Control, 0, len(items))
	for i, item := range items {
		raw := item.(map[string]any)
		if err := checkRecord(path, i, raw, required); err != nil {
			return nil, err
		}
		out = append(out, controlFromRecord(NormalizeRecord(raw)))
	}
	return out, nil
}

func loadMapping(path string) (Mapping, error) {
	doc, err := readJSON(path)
	if err != nil {
		return nil, err
	}
	if err := checkShape(path, mappingShape, doc); err != nil {
		return nil, err
	}
	out := Mapping{}
	for id, v := range doc.(map[string]any) {
		byFw := map[string][]string{}
		for key, raw := range v.(map[string]any) {
			byFw[controls.FrameworkFromRefField(key)] = refs.Unique(refs.Normalize(raw))
		}
		out[strings.TrimSpace(id)] = byFw
	}
	return out, nil
}

func loadEvidence(path string) ([]EvidenceRecord, error) {
	doc, err := readJSON(path)
	if err != nil {
		return nil, err
	}
	if err := checkShape(path, evidenceShape, doc); err != nil {
		return nil, err
	}
	m := doc.(map[string]any)
	out := make([]EvidenceRecord, 0, len(m))
	for _, id := range sortedKeys(m) {
		rec := m[id].(map[string]any)
		out = append(out, EvidenceRecord{
			ID:     strings.TrimSpace(id),
			Domain: CleanText(rec["evidence_domain"]),
			Title:  CleanText(rec["evidence_title"]),
		})
	}
	return out, nil
}

// Controls returns all guidance controls in source order.
func (d *DataSet) Controls() []controls.Control {
	return append([]controls.Control(nil), d.guidance...)
}

// ControlsByPolicyStandard filters guidance controls, keeping source order.
func (d *DataSet) ControlsByPolicyStandard(name string) []controls.Control {
	var out []controls.Control
	for _, c := range d.guidance {
		if c.PolicyStandard == name {
			out = append(out, c)
		}
	}
	return out
}

func (d *DataSet) ControlByID(id string) (controls.Control, bool) {
	i, ok := d.guidanceByID[strings.TrimSpace(id)]
	if !ok {
		return controls.Control{}, false
	}
	return d.guidance[i], true
}

// FrameworkControls returns the records of the framework applicability table.
func (d *DataSet) FrameworkControls() []controls.Control {
	return append([]controls.Control(nil), d.framework...)
}

// MappingFor returns framework key -> references for one control. The result
// must not be modified.
func (d *DataSet) MappingFor(id string) map[string][]string {
	return d.mapping[id]
}

func (d *DataSet) Mapping() Mapping {
	return d.mapping
}

func (d *DataSet) EvidenceByID(id string) (EvidenceRecord, bool) {
	e, ok := d.evidence[strings.TrimSpace(id)]
	return e, ok
}

// Evidence resolves ids in order; unknown ids are skipped.
func (d *DataSet) Evidence(ids []string) []EvidenceRecord {
	out := make([]EvidenceRecord, 0, len(ids))
	for _, id := range ids {
		if e, ok := d.EvidenceByID(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// PolicyStandards lists the distinct policy standards, sorted.
func (d *DataSet) PolicyStandards() []string {
	set := map[string]struct{}{}
	for _, c := range d.guidance {
		if c.PolicyStandard != "" {
			set[c.PolicyStandard] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// Domains lists the distinct control domains, sorted.
func (d *DataSet) Domains() []string {
	set := map[string]struct{}{}
	for _, c := range d.guidance {
		if c.Domain != "" {
			set[c.Domain] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// Counts summarizes the loaded tables.
type Counts struct {
	Guidance  int `json:"guidance"`
	Framework int `json:"framework"`
	Mapped    int `json:"mapped"`
	Evidence  int `json:"evidence"`
}

func (d *DataSet) Counts() Counts {
	return Counts{
		Guidance:  len(d.guidance),
		Framework: len(d.framework),
		Mapped:    len(d.mapping),
		Evidence:  len(d.evidence),
	}
}
