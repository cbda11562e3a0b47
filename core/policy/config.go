// Package policy turns a policy configuration into a rendered policy
// document: control selection, crosswalk tables, evidence, template
// substitution and output files.
package policy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"ccf-policy/core/controls"
)

// Config selects what goes into one generated policy.
type Config struct {
	PolicyStandard     string   `json:"policy_standard" yaml:"policy_standard"`
	SelectedFrameworks []string `json:"selected_frameworks" yaml:"selected_frameworks"`
	TemplateID         string   `json:"template_id,omitempty" yaml:"template_id,omitempty"`
	ControlIDs         []string `json:"control_ids,omitempty" yaml:"control_ids,omitempty"`
	Version            string   `json:"version,omitempty" yaml:"version,omitempty"`
	Classification     string   `json:"classification,omitempty" yaml:"classification,omitempty"`
	Owner              string   `json:"owner,omitempty" yaml:"owner,omitempty"`
}

type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "missing required fields"
	}
	return fmt.Sprintf("invalid policy config: %s: %s", reason, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Code() string { return "policy.validation" }

const configSchema = `{
  "type": "object",
  "properties": {
    "policy_standard": {"type": "string"},
    "selected_frameworks": {"type": "array", "items": {"type": "string"}},
    "template_id": {"type": ["string", "null"]},
    "control_ids": {"type": ["array", "null"], "items": {"type": "string"}},
    "version": {"type": ["string", "number", "null"]},
    "classification": {"type": ["string", "null"]},
    "owner": {"type": ["string", "null"]}
  }
}`

var configShape = func() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource("ccf://policy/config.json", strings.NewReader(configSchema)); err != nil {
		panic(err)
	}
	return c.MustCompile("ccf://policy/config.json")
}()

// ParseConfig decodes a JSON or YAML policy configuration. An empty format
// sniffs the payload: a leading '{' means JSON.
func ParseConfig(data []byte, format string) (Config, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "yaml"
		if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
			format = "json"
		}
	}
	var doc any
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return Config{}, &ValidationError{Reason: "malformed json: " + err.Error()}
		}
	case "yaml", "yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, &ValidationError{Reason: "malformed yaml: " + err.Error()}
		}
		normalized, err := toJSONValue(raw)
		if err != nil {
			return Config{}, &ValidationError{Reason: "malformed yaml: " + err.Error()}
		}
		doc = normalized
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", format)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	if err := configShape.Validate(doc); err != nil {
		return Config{}, &ValidationError{Fields: invalidFields(err), Reason: "invalid field types"}
	}
	m, _ := doc.(map[string]any)
	cfg := Config{
		PolicyStandard:     stringField(m["policy_standard"]),
		SelectedFrameworks: stringList(m["selected_frameworks"]),
		TemplateID:         stringField(m["template_id"]),
		ControlIDs:         stringList(m["control_ids"]),
		Version:            stringField(m["version"]),
		Classification:     stringField(m["classification"]),
		Owner:              stringField(m["owner"]),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports missing required fields and normalizes framework keys.
func (c *Config) Validate() error {
	c.PolicyStandard = strings.TrimSpace(c.PolicyStandard)
	c.TemplateID = strings.TrimSpace(c.TemplateID)
	c.SelectedFrameworks = controls.NormalizeFrameworks(c.SelectedFrameworks)
	var missing []string
	if c.PolicyStandard == "" {
		missing = append(missing, "policy_standard")
	}
	if len(c.SelectedFrameworks) == 0 {
		missing = append(missing, "selected_frameworks")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func invalidFields(err error) []string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	seen := map[string]struct{}{}
	var walk func(v *jsonschema.ValidationError)
	walk = func(v *jsonschema.ValidationError) {
		if len(v.Causes) == 0 {
			field := strings.TrimPrefix(v.InstanceLocation, "/")
			if i := strings.Index(field, "/"); i >= 0 {
				field = field[:i]
			}
			if field != "" {
				seen[field] = struct{}{}
			}
			return
		}
		for _, c := range v.Causes {
			walk(c)
		}
	}
	walk(verr)
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func toJSONValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func stringField(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := stringField(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}
