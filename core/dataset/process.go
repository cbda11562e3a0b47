package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"ccf-policy/core/controls"
	"ccf-policy/core/refs"
	"ccf-policy/core/utils"
)

const (
	ControlsCSV = "controls.csv"
	GuidanceCSV = "control_guidance.csv"
	EvidenceCSV = "evidence.csv"

	evidenceIDColumn     = "reference_id"
	evidenceDomainColumn = "evidence_domain"
	evidenceTitleColumn  = "evidence_title"
)

// ProcessReport summarizes one CSV to JSON conversion.
type ProcessReport struct {
	Controls int      `json:"controls"`
	Guidance int      `json:"guidance"`
	Evidence int      `json:"evidence"`
	Files    []string `json:"files"`
}

// Process converts the raw CSV exports in rawDir into the four JSON sidecars
// in processedDir.
func Process(ctx context.Context, rawDir, processedDir string, logger *utils.Logger) (ProcessReport, error) {
	var report ProcessReport
	logger.Printf("dataset: processing %s -> %s", rawDir, processedDir)

	controlRows, _, err := readCSV(filepath.Join(rawDir, ControlsCSV))
	if err != nil {
		return report, err
	}
	guidancePath := filepath.Join(rawDir, GuidanceCSV)
	guidanceRows, guidanceHeader, err := readCSV(guidancePath)
	if err != nil {
		return report, err
	}
	if missing := missingColumns(guidanceHeader, controls.RequiredGuidanceFields); len(missing) > 0 {
		return report, &SchemaError{Source: guidancePath, Missing: missing}
	}
	evidencePath := filepath.Join(rawDir, EvidenceCSV)
	evidenceRows, evidenceHeader, err := readCSV(evidencePath)
	if err != nil {
		return report, err
	}
	if missing := missingColumns(evidenceHeader, []string{evidenceIDColumn, evidenceDomainColumn, evidenceTitleColumn}); len(missing) > 0 {
		return report, &SchemaError{Source: evidencePath, Missing: missing}
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	controlRecs := normalizeRows(controlRows)
	guidanceRecs := normalizeRows(guidanceRows)
	for i, rec := range guidanceRecs {
		if err := checkRecord(guidancePath, i, rec, controls.RequiredGuidanceFields); err != nil {
			return report, err
		}
		if _, ok := rec[controls.FieldAuditArtifacts]; !ok {
			rec[controls.FieldAuditArtifacts] = []string{}
		}
	}

	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return report, fmt.Errorf("create %s: %w", processedDir, err)
	}
	outputs := []struct {
		name string
		doc  any
	}{
		{ControlsFile, map[string]any{"controls": controlRecs}},
		{GuidanceFile, map[string]any{"controls": guidanceRecs}},
		{MappingFile, buildMapping(controlRecs)},
		{EvidenceFile, buildEvidence(evidenceRows)},
	}
	for _, out := range outputs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		path := filepath.Join(processedDir, out.name)
		if err := writeJSONFile(path, out.doc); err != nil {
			return report, err
		}
		logger.Printf("dataset: wrote %s", path)
		report.Files = append(report.Files, path)
	}
	report.Controls = len(controlRecs)
	report.Guidance = len(guidanceRecs)
	report.Evidence = len(evidenceRows)
	return report, nil
}

// readCSV returns rows keyed by header. Null spellings become nil.
func readCSV(path string) ([]map[string]any, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, &FileMissingError{Path: path}
		}
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.LazyQuotes = true
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, &FormatError{Path: path, Reason: "empty file"}
		}
		return nil, nil, &FormatError{Path: path, Reason: "unreadable header", Err: err}
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	var rows []map[string]any
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, &FormatError{Path: path, Reason: "malformed row", Err: err}
		}
		row := make(map[string]any, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if refs.IsNull(rec[i]) {
				row[col] = nil
			} else {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}

func missingColumns(header, required []string) []string {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	var missing []string
	for _, r := range required {
		if _, ok := have[r]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}

func normalizeRows(rows []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, NormalizeRecord(row))
	}
	return out
}

// buildMapping extracts control id -> ref column -> refs from the normalized
// framework records. Every known framework gets a key, possibly empty.
func buildMapping(recs []map[string]any) map[string]map[string][]string {
	out := make(map[string]map[string][]string, len(recs))
	for _, rec := range recs {
		id := strings.TrimSpace(asString(rec[controls.FieldID]))
		if id == "" {
			continue
		}
		byRef := make(map[string][]string, len(controls.FrameworkKeys))
		for _, fw := range controls.FrameworkKeys {
			byRef[controls.RefField(fw)] = []string{}
		}
		for key, val := range rec {
			if list, ok := val.([]string); ok && controls.IsRefField(key) {
				byRef[key] = list
			}
		}
		out[id] = byRef
	}
	return out
}

func buildEvidence(rows []map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any, len(rows))
	for _, row := range rows {
		id := strings.TrimSpace(asString(row[evidenceIDColumn]))
		if id == "" {
			continue
		}
		out[id] = map[string]any{
			evidenceDomainColumn: CleanValue(row[evidenceDomainColumn]),
			evidenceTitleColumn:  CleanValue(row[evidenceTitleColumn]),
		}
	}
	return out
}

func writeJSONFile(path string, doc any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
