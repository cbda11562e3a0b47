package dataset

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	recordsSchema = `{
  "type": "object",
  "required": ["controls"],
  "properties": {
    "controls": {"type": "array", "items": {"type": "object"}}
  }
}`
	mappingSchema = `{
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "additionalProperties": {"type": ["array", "string", "number", "null"]}
  }
}`
	evidenceSchema = `{
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "properties": {
      "evidence_domain": {"type": ["string", "number", "null"]},
      "evidence_title": {"type": ["string", "number", "null"]}
    }
  }
}`
)

var (
	recordsShape  = mustCompile("ccf://dataset/records.json", recordsSchema)
	mappingShape  = mustCompile("ccf://dataset/mapping.json", mappingSchema)
	evidenceShape = mustCompile("ccf://dataset/evidence.json", evidenceSchema)
)

func mustCompile(url, schema string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(url, strings.NewReader(schema)); err != nil {
		panic(fmt.Sprintf("dataset: add schema %s: %v", url, err))
	}
	s, err := c.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("dataset: compile schema %s: %v", url, err))
	}
	return s
}

func checkShape(path string, shape *jsonschema.Schema, doc any) error {
	if err := shape.Validate(doc); err != nil {
		return &FormatError{Path: path, Reason: "unexpected document shape", Err: err}
	}
	return nil
}
