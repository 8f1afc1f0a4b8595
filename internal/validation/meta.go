// Package validation checks sidecar metadata documents against the fixed
// cross-boundary contract before any buffer reconstruction happens.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/rendis/opgraph/pkg/schema"
)

// metaSchemaJSON is the JSON Schema for sidecar metadata documents.
// Embedded as a constant to avoid filesystem dependencies. A document either
// carries a per-column schema (frame payloads) or a single valueType
// (matrix payloads).
const metaSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://opgraph.dev/schemas/meta.json",
  "type": "object",
  "required": ["numRows", "numCols"],
  "properties": {
    "numRows": { "type": "integer", "minimum": 0 },
    "numCols": { "type": "integer", "minimum": 0 },
    "valueType": { "$ref": "#/$defs/value_type" },
    "schema": {
      "type": "array",
      "items": { "$ref": "#/$defs/column" }
    }
  },
  "anyOf": [
    { "required": ["valueType"] },
    { "required": ["schema"] }
  ],
  "additionalProperties": false,
  "$defs": {
    "column": {
      "type": "object",
      "required": ["label", "valueType"],
      "properties": {
        "label": { "type": "string" },
        "valueType": { "$ref": "#/$defs/value_type" }
      },
      "additionalProperties": false
    },
    "value_type": {
      "type": "string",
      "enum": ["f64", "f32", "si64", "si32", "si8", "ui64", "ui32", "ui8"]
    }
  }
}`

// MetaValidator validates sidecar metadata documents using JSON Schema
// Draft 2020-12. Safe for concurrent use once constructed.
type MetaValidator struct {
	metaSchema *jsonschema.Schema
}

// NewMetaValidator creates a MetaValidator with the metadata schema
// pre-compiled.
func NewMetaValidator() (*MetaValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(metaSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal meta schema: %w", err)
	}
	if err := c.AddResource("https://opgraph.dev/schemas/meta.json", doc); err != nil {
		return nil, fmt.Errorf("add meta schema resource: %w", err)
	}

	compiled, err := c.Compile("https://opgraph.dev/schemas/meta.json")
	if err != nil {
		return nil, fmt.Errorf("compile meta schema: %w", err)
	}

	return &MetaValidator{metaSchema: compiled}, nil
}

// Validate checks a metadata document against the schema plus the structural
// invariants JSON Schema cannot express (schema length vs. numCols).
func (v *MetaValidator) Validate(m *schema.Meta) error {
	if m == nil {
		return schema.NewError(schema.ErrCodeValidation, "sidecar metadata is nil")
	}

	doc, err := toJSONValue(m)
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "failed to serialize sidecar metadata").WithCause(err)
	}

	if err := v.metaSchema.Validate(doc); err != nil {
		return toOpGraphError(err)
	}

	if len(m.Schema) > 0 && len(m.Schema) != m.NumCols {
		return schema.NewErrorf(schema.ErrCodeValidation,
			"sidecar schema lists %d columns but numCols is %d", len(m.Schema), m.NumCols)
	}

	return nil
}

// toJSONValue round-trips a Go value through JSON encoding/decoding so that
// numeric values become json.Number (required by the jsonschema library).
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
}

// toOpGraphError converts a jsonschema.ValidationError into an OpGraphError
// with the leaf violations flattened into readable messages.
func toOpGraphError(err error) *schema.OpGraphError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	}

	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeValidation, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}

	msg := fmt.Sprintf("sidecar metadata validation failed with %d errors", len(violations))
	return schema.NewError(schema.ErrCodeValidation, msg).
		WithDetails(map[string]any{"violations": violations})
}

// collectViolations walks a ValidationError tree and collects leaf error
// messages with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
