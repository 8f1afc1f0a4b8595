package schema

import (
	"encoding/json"
	"os"
)

// ColumnMeta describes one column in a sidecar metadata document.
type ColumnMeta struct {
	Label     string `json:"label"`
	ValueType string `json:"valueType"`
}

// Meta is the sidecar metadata document written next to staged or
// file-channel CSV payloads. Frames carry a per-column schema; matrices
// carry a single value type. The JSON shape is part of the engine contract.
type Meta struct {
	NumRows   int          `json:"numRows"`
	NumCols   int          `json:"numCols"`
	ValueType string       `json:"valueType,omitempty"`
	Schema    []ColumnMeta `json:"schema,omitempty"`
}

// WriteFile serializes the document to path as indented JSON.
func (m *Meta) WriteFile(path string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return NewError(ErrCodeStaging, "marshal sidecar metadata").WithCause(err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return NewError(ErrCodeStaging, "write sidecar metadata").WithCause(err)
	}
	return nil
}

// ReadMetaFile loads and decodes a sidecar metadata document.
func ReadMetaFile(path string) (*Meta, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, NewError(ErrCodeStaging, "read sidecar metadata").WithCause(err)
	}
	var m Meta
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, NewError(ErrCodeStaging, "decode sidecar metadata").WithCause(err)
	}
	return &m, nil
}

// ColumnTypes resolves the schema's value type names to codes, in column
// order. For matrix documents (no schema) it returns NumCols copies of the
// single value type.
func (m *Meta) ColumnTypes() ([]ValueType, error) {
	if len(m.Schema) == 0 {
		vt, err := ParseValueType(m.ValueType)
		if err != nil {
			return nil, err
		}
		vts := make([]ValueType, m.NumCols)
		for i := range vts {
			vts[i] = vt
		}
		return vts, nil
	}
	vts := make([]ValueType, len(m.Schema))
	for i, col := range m.Schema {
		vt, err := ParseValueType(col.ValueType)
		if err != nil {
			return nil, err
		}
		vts[i] = vt
	}
	return vts, nil
}

// Labels returns the schema's column labels, or nil for matrix documents.
func (m *Meta) Labels() []string {
	if len(m.Schema) == 0 {
		return nil
	}
	labels := make([]string, len(m.Schema))
	for i, col := range m.Schema {
		labels[i] = col.Label
	}
	return labels
}
