package dataset

import (
	"fmt"
	"sort"
	"strings"

	"ccf-policy/core/controls"
	"ccf-policy/core/refs"
)

// NormalizeRecord applies the load-boundary cleanup to one raw record and
// returns a new map. It is shared by CSV processing and JSON loading, and is
// idempotent.
func NormalizeRecord(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for key, val := range raw {
		switch {
		case controls.IsRefField(key):
			out[key] = refs.Unique(refs.Normalize(val))
		case key == controls.FieldAuditArtifacts:
			out[key] = CleanArtifacts(val)
		case isTextField(key):
			if s := CleanText(val); s != "" {
				out[key] = s
			} else {
				out[key] = nil
			}
		case isIndicatorField(key):
			if controls.ParseIndicator(asString(val)) == controls.IndicatorPresent {
				out[key] = string(controls.IndicatorPresent)
			} else {
				out[key] = nil
			}
		default:
			out[key] = CleanValue(val)
		}
	}
	return out
}

// missingFields lists the required keys absent (or blank) in a record.
func missingFields(raw map[string]any, required []string) []string {
	var missing []string
	for _, f := range required {
		v, ok := raw[f]
		if !ok || v == nil || refs.IsNull(asString(v)) {
			missing = append(missing, f)
		}
	}
	return missing
}

// checkRecord fails with a SchemaError naming the record when a required
// field is absent or blank. CSV processing and JSON loading apply the same
// rule.
func checkRecord(source string, index int, raw map[string]any, required []string) error {
	missing := missingFields(raw, required)
	if len(missing) == 0 {
		return nil
	}
	record := strings.TrimSpace(asString(raw[controls.FieldID]))
	if record == "" {
		record = fmt.Sprintf("record %d", index)
	}
	return &SchemaError{Source: source, Record: record, Missing: missing}
}

// controlFromRecord builds a typed control from a normalized record.
func controlFromRecord(rec map[string]any) controls.Control {
	c := controls.Control{
		ID:                     strings.TrimSpace(asString(rec[controls.FieldID])),
		Domain:                 strings.TrimSpace(asString(rec[controls.FieldDomain])),
		Name:                   asString(rec[controls.FieldName]),
		Description:            asString(rec[controls.FieldDescription]),
		ImplementationGuidance: asString(rec[controls.FieldImplementationGuidance]),
		TestingProcedure:       asString(rec[controls.FieldTestingProcedure]),
		Theme:                  strings.TrimSpace(asString(rec[controls.FieldTheme])),
		Type:                   strings.TrimSpace(asString(rec[controls.FieldType])),
		PolicyStandard:         strings.TrimSpace(asString(rec[controls.FieldPolicyStandard])),
		AuditArtifacts:         []string{},
		References:             map[string][]string{},
		Indicators:             map[string]controls.Indicator{},
	}
	if arts, ok := rec[controls.FieldAuditArtifacts].([]string); ok {
		c.AuditArtifacts = arts
	}
	for key, val := range rec {
		switch {
		case controls.IsRefField(key):
			if list, ok := val.([]string); ok {
				c.References[controls.FrameworkFromRefField(key)] = list
			}
		case isIndicatorField(key):
			if val == nil {
				c.Indicators[key] = controls.IndicatorAbsent
			} else {
				c.Indicators[key] = controls.ParseIndicator(asString(val))
			}
		}
	}
	return c
}

func isTextField(key string) bool {
	for _, f := range controls.TextFields {
		if f == key {
			return true
		}
	}
	return false
}

func isIndicatorField(key string) bool {
	for _, f := range controls.FrameworkKeys {
		if f == key {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
